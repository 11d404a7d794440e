package model

import (
	"github.com/stubhq/stublink/internal/app/geo"
	"github.com/stubhq/stublink/internal/app/ua"
)

// ClickEvent is one analytics record of a single resolution request.
// Timestamp is in milliseconds and doubles as the score of the event in
// the per-link sorted click log.
type ClickEvent struct {
	ID        string        `json:"id"`
	Hostname  string        `json:"hostname"`
	Key       string        `json:"key"`
	Geo       geo.Info      `json:"geo"`
	UA        ua.Descriptor `json:"ua"`
	Referer   string        `json:"referer,omitempty"`
	Timestamp int64         `json:"timestamp"`
}

const (
	ClickStreamName     = "CLICKS"
	ClickStreamSubject  = "clicks.resolved"
	ClickConsumerName   = "click-archiver"
	ClickStreamMaxBytes = 1024 * 1024 * 100 // 100MB
)
