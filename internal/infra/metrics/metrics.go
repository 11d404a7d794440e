// Package metrics registers the resolver's Prometheus collectors on the
// default registry served by the metrics endpoint.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ResolutionsTotal counts terminal resolution outcomes.
	ResolutionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stublink_resolutions_total",
		Help: "Terminal link resolution outcomes by kind.",
	}, []string{"outcome"})

	// ClicksRecordedTotal counts click recording attempts by result.
	ClicksRecordedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stublink_clicks_recorded_total",
		Help: "Click recording attempts by result.",
	}, []string{"status"})
)

// Outcome label values for ResolutionsTotal.
const (
	OutcomeRedirect  = "redirect"
	OutcomePassword  = "password_challenge"
	OutcomeEmbed     = "embed"
	OutcomeDeepLink  = "deeplink"
	OutcomeNotFound  = "not_found"
	OutcomeError     = "error"
	OutcomeMalformed = "malformed"
)

// Status label values for ClicksRecordedTotal.
const (
	ClickRecorded  = "recorded"
	ClickDuplicate = "duplicate"
	ClickFailed    = "failed"
)
