package service

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stubhq/stublink/internal/app/geo"
	"github.com/stubhq/stublink/internal/app/model"
)

type mockClickLog struct {
	mu     sync.Mutex
	addFn  func(ctx context.Context, hostname, key string, timestamp int64, event []byte) (bool, error)
	events [][]byte
}

func (m *mockClickLog) AddIfAbsent(ctx context.Context, hostname, key string, timestamp int64, event []byte) (bool, error) {
	m.mu.Lock()
	m.events = append(m.events, event)
	m.mu.Unlock()
	if m.addFn != nil {
		return m.addFn(ctx, hostname, key, timestamp, event)
	}
	return true, nil
}

func TestClickRecorder_EventShape(t *testing.T) {
	log := &mockClickLog{}
	r := NewClickRecorder(ClickRecorderDeps{Clicks: log})
	fixed := time.UnixMilli(1700000000000)
	r.now = func() time.Time { return fixed }

	r.record("stub.sh", "abc", ClickContext{
		IP:        "203.0.113.7",
		UserAgent: "Mozilla/5.0 (Linux; Android 14; Pixel 8) Mobile",
		Referer:   "https://t.co/xyz",
	})

	if len(log.events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(log.events))
	}

	var event model.ClickEvent
	if err := json.Unmarshal(log.events[0], &event); err != nil {
		t.Fatalf("decode event: %v", err)
	}
	if event.ID == "" {
		t.Fatal("expected event id to be set")
	}
	if event.Hostname != "stub.sh" || event.Key != "abc" {
		t.Fatalf("unexpected series %s/%s", event.Hostname, event.Key)
	}
	if event.Referer != "https://t.co/xyz" {
		t.Fatalf("unexpected referer %q", event.Referer)
	}
	if event.Timestamp != fixed.UnixMilli() {
		t.Fatalf("unexpected timestamp %d", event.Timestamp)
	}
	if event.Geo != (geo.Info{}) {
		t.Fatalf("expected unknown geo without a database, got %+v", event.Geo)
	}
	if event.UA.OS == "" {
		t.Fatal("expected parsed user-agent descriptor")
	}
}

func TestClickRecorder_DuplicateTimestampDropped(t *testing.T) {
	calls := 0
	log := &mockClickLog{
		addFn: func(ctx context.Context, hostname, key string, timestamp int64, event []byte) (bool, error) {
			calls++
			// First writer wins; the log refuses the second insert.
			return calls == 1, nil
		},
	}
	r := NewClickRecorder(ClickRecorderDeps{Clicks: log})
	fixed := time.UnixMilli(1700000000000)
	r.now = func() time.Time { return fixed }

	r.record("stub.sh", "abc", ClickContext{IP: "203.0.113.7"})
	r.record("stub.sh", "abc", ClickContext{IP: "203.0.113.8"})

	if calls != 2 {
		t.Fatalf("expected both inserts to be attempted, got %d", calls)
	}
}

func TestClickRecorder_WriteErrorSwallowed(t *testing.T) {
	log := &mockClickLog{
		addFn: func(ctx context.Context, hostname, key string, timestamp int64, event []byte) (bool, error) {
			return false, context.DeadlineExceeded
		},
	}
	r := NewClickRecorder(ClickRecorderDeps{Clicks: log})

	// Must not panic or propagate anywhere.
	r.record("stub.sh", "abc", ClickContext{IP: "203.0.113.7"})
}

func TestClickRecorder_WriteDeadlineBounded(t *testing.T) {
	log := &mockClickLog{
		addFn: func(ctx context.Context, hostname, key string, timestamp int64, event []byte) (bool, error) {
			deadline, ok := ctx.Deadline()
			if !ok {
				t.Error("expected a deadline on the click-log write")
			} else if time.Until(deadline) > defaultRecordTimeout {
				t.Errorf("deadline too far out: %v", time.Until(deadline))
			}
			return true, nil
		},
	}
	r := NewClickRecorder(ClickRecorderDeps{Clicks: log})
	r.record("stub.sh", "abc", ClickContext{})
}
