package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/stubhq/stublink/internal/app/geo"
	"github.com/stubhq/stublink/internal/app/model"
	"github.com/stubhq/stublink/internal/app/repository"
	"github.com/stubhq/stublink/internal/app/ua"
	"github.com/stubhq/stublink/internal/infra/metrics"
	"go.uber.org/zap"
)

// defaultRecordTimeout bounds the detached click-log write so it cannot
// leak when the store is slow.
const defaultRecordTimeout = 5 * time.Second

// ClickContext carries the request attributes a click event is built from.
type ClickContext struct {
	IP        string
	UserAgent string
	Referer   string
}

// ClickRecorder appends click events to the per-link log and fans them out
// to JetStream for the archive consumer. Failures are logged and counted,
// never surfaced to the response path.
type ClickRecorder struct {
	logger  *zap.Logger
	clicks  repository.ClickLog
	geo     geo.Lookup
	js      nats.JetStreamContext
	timeout time.Duration
	now     func() time.Time
}

// ClickRecorderDeps groups the recorder's collaborators. JetStream is
// optional; without it events are only written to the click log.
type ClickRecorderDeps struct {
	Logger    *zap.Logger
	Clicks    repository.ClickLog
	Geo       geo.Lookup
	JetStream nats.JetStreamContext
}

// NewClickRecorder creates a recorder with the provided dependencies.
func NewClickRecorder(deps ClickRecorderDeps) *ClickRecorder {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	lookup := deps.Geo
	if lookup == nil {
		lookup = geo.Unavailable()
	}
	return &ClickRecorder{
		logger:  logger,
		clicks:  deps.Clicks,
		geo:     lookup,
		js:      deps.JetStream,
		timeout: defaultRecordTimeout,
		now:     time.Now,
	}
}

// Record fires a detached write of one click event. It returns
// immediately; the write runs on its own deadline, decoupled from the
// request that triggered it.
func (r *ClickRecorder) Record(hostname, key string, click ClickContext) {
	go r.record(hostname, key, click)
}

func (r *ClickRecorder) record(hostname, key string, click ClickContext) {
	event := model.ClickEvent{
		ID:        uuid.New().String(),
		Hostname:  hostname,
		Key:       key,
		Geo:       r.geo.Lookup(click.IP),
		UA:        ua.Describe(click.UserAgent),
		Referer:   click.Referer,
		Timestamp: r.now().UnixMilli(),
	}

	data, err := json.Marshal(event)
	if err != nil {
		r.logger.Error("failed to encode click event", zap.Error(err))
		metrics.ClicksRecordedTotal.WithLabelValues(metrics.ClickFailed).Inc()
		return
	}

	// Detached from the request lifecycle on purpose: a client disconnect
	// must not cancel telemetry, but the write stays bounded.
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	inserted, err := r.clicks.AddIfAbsent(ctx, hostname, key, event.Timestamp, data)
	if err != nil {
		r.logger.Error("failed to record click",
			zap.String("hostname", hostname),
			zap.String("key", key),
			zap.Error(err))
		metrics.ClicksRecordedTotal.WithLabelValues(metrics.ClickFailed).Inc()
		return
	}
	if !inserted {
		// First writer at this timestamp wins; this event is discarded.
		metrics.ClicksRecordedTotal.WithLabelValues(metrics.ClickDuplicate).Inc()
		return
	}

	metrics.ClicksRecordedTotal.WithLabelValues(metrics.ClickRecorded).Inc()

	if r.js != nil {
		if _, err := r.js.Publish(model.ClickStreamSubject, data); err != nil {
			r.logger.Error("failed to publish click event",
				zap.String("id", event.ID),
				zap.Error(err))
		}
	}
}
