package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/nats-io/nats.go"
	"github.com/stubhq/stublink/internal/app/model"
	apprepository "github.com/stubhq/stublink/internal/app/repository"
	"go.uber.org/zap"
)

// seenCapacity sizes the redelivery filter; at 1% false positives a
// duplicate-looking event is skipped, which is acceptable for telemetry.
const (
	seenCapacity          = 1_000_000
	seenFalsePositiveRate = 0.01
)

// ClickConsumer drains click events from JetStream into the Postgres
// archive for the dashboard's reporting queries.
type ClickConsumer struct {
	js       nats.JetStreamContext
	logger   *zap.Logger
	repo     apprepository.ClickArchiveRepository
	seen     *bloom.BloomFilter
	stopChan chan struct{}
}

// NewClickConsumer creates a new click archive consumer.
func NewClickConsumer(js nats.JetStreamContext, logger *zap.Logger, repo apprepository.ClickArchiveRepository) *ClickConsumer {
	return &ClickConsumer{
		js:       js,
		logger:   logger,
		repo:     repo,
		seen:     bloom.NewWithEstimates(seenCapacity, seenFalsePositiveRate),
		stopChan: make(chan struct{}),
	}
}

// Start ensures the stream and durable consumer exist and begins draining.
func (c *ClickConsumer) Start() error {
	_, err := c.js.StreamInfo(model.ClickStreamName)
	if err != nil {
		_, err = c.js.AddStream(&nats.StreamConfig{
			Name:     model.ClickStreamName,
			Subjects: []string{model.ClickStreamSubject},
			MaxBytes: model.ClickStreamMaxBytes,
		})
		if err != nil {
			return fmt.Errorf("failed to create stream: %w", err)
		}
	}

	_, err = c.js.ConsumerInfo(model.ClickStreamName, model.ClickConsumerName)
	if err != nil {
		_, err = c.js.AddConsumer(model.ClickStreamName, &nats.ConsumerConfig{
			Durable:   model.ClickConsumerName,
			AckPolicy: nats.AckExplicitPolicy,
		})
		if err != nil {
			return fmt.Errorf("failed to create consumer: %w", err)
		}
	}

	sub, err := c.js.PullSubscribe(model.ClickStreamSubject, model.ClickConsumerName)
	if err != nil {
		return fmt.Errorf("failed to subscribe: %w", err)
	}

	go c.consume(sub)
	return nil
}

// Stop ends the drain loop after the in-flight fetch completes. The
// durable consumer is left in place for the next start.
func (c *ClickConsumer) Stop() {
	close(c.stopChan)
}

// msgDisposition tells the drain loop how to settle a message.
type msgDisposition int

const (
	ackMsg msgDisposition = iota
	nakMsg
	termMsg
)

func (c *ClickConsumer) consume(sub *nats.Subscription) {
	ctx := context.Background()
	for {
		select {
		case <-c.stopChan:
			c.logger.Info("click archive consumer stopped")
			return
		default:
		}

		msgs, err := sub.Fetch(10, nats.MaxWait(5*time.Second))
		if err != nil && err != nats.ErrTimeout {
			c.logger.Error("failed to fetch messages", zap.Error(err))
			continue
		}

		for _, msg := range msgs {
			switch c.process(ctx, msg.Data) {
			case nakMsg:
				msg.Nak()
			case termMsg:
				msg.Term()
			default:
				msg.Ack()
			}
		}
	}
}

// process settles one message body: malformed payloads are terminated
// since redelivery cannot fix them, archive failures are retried, and
// everything else is acknowledged.
func (c *ClickConsumer) process(ctx context.Context, data []byte) msgDisposition {
	var event model.ClickEvent
	if err := json.Unmarshal(data, &event); err != nil {
		c.logger.Error("dropping malformed click event", zap.Error(err))
		return termMsg
	}

	// Skip redeliveries that already made it into the archive. The ID is
	// marked seen only after a successful write so a retried event is not
	// mistaken for a duplicate.
	if c.seen.TestString(event.ID) {
		return ackMsg
	}

	if err := c.repo.Create(ctx, archiveRow(event)); err != nil {
		c.logger.Error("failed to archive click event",
			zap.String("id", event.ID),
			zap.String("hostname", event.Hostname),
			zap.String("key", event.Key),
			zap.Error(err))
		return nakMsg
	}
	c.seen.AddString(event.ID)

	c.logger.Debug("click event archived",
		zap.String("id", event.ID),
		zap.String("hostname", event.Hostname),
		zap.String("key", event.Key),
		zap.Int64("timestamp", event.Timestamp),
	)

	return ackMsg
}

func archiveRow(event model.ClickEvent) *model.ClickArchive {
	return &model.ClickArchive{
		ID:        event.ID,
		Hostname:  event.Hostname,
		LinkKey:   event.Key,
		Country:   event.Geo.Country,
		Region:    event.Geo.Region,
		City:      event.Geo.City,
		Browser:   event.UA.Browser,
		OS:        event.UA.OS,
		Device:    event.UA.Device,
		Referer:   event.Referer,
		Timestamp: event.Timestamp,
	}
}
