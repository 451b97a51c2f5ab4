// Package metrics holds the business counters exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	leadsSubmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leads_submitted_total",
			Help: "Total number of leads submitted through the contact form",
		},
		[]string{"service"},
	)

	leadStatusChanges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lead_status_changes_total",
			Help: "Total number of lead status updates",
		},
		[]string{"status"},
	)

	notifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lead_notifications_total",
			Help: "Lead notification attempts by channel and outcome",
		},
		[]string{"channel", "outcome"},
	)

	logins = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "admin_logins_total",
			Help: "Admin login attempts by outcome",
		},
		[]string{"outcome"},
	)

	facebookFetches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "facebook_posts_fetch_total",
			Help: "Facebook Graph API fetches by outcome",
		},
		[]string{"outcome"},
	)
)

const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeCached  = "cached"
)

func RecordLeadSubmitted(service string) {
	leadsSubmitted.WithLabelValues(service).Inc()
}

func RecordStatusChange(status string) {
	leadStatusChanges.WithLabelValues(status).Inc()
}

// RecordNotification counts one delivery attempt. channel is "smtp" or "queue".
func RecordNotification(channel string, ok bool) {
	notifications.WithLabelValues(channel, outcome(ok)).Inc()
}

func RecordLogin(ok bool) {
	logins.WithLabelValues(outcome(ok)).Inc()
}

func RecordFacebookFetch(result string) {
	facebookFetches.WithLabelValues(result).Inc()
}

func outcome(ok bool) string {
	if ok {
		return OutcomeSuccess
	}
	return OutcomeFailure
}
