// Package metrics exposes Prometheus counters for the item and auth flows
// and the HTTP RED metrics recorded by Middleware.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Item metrics
	itemCreateAttemptsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "todo_item_create_attempts_total",
			Help: "Total number of item insert attempts, including retries",
		},
	)

	itemIDConflictsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "todo_item_id_conflicts_total",
			Help: "Total number of item inserts rejected because the generated id was taken",
		},
	)

	itemIDExhaustedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "todo_item_id_exhausted_total",
			Help: "Total number of item creates that could not allocate an id",
		},
	)

	itemsCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "todo_items_created_total",
			Help: "Total number of items created",
		},
	)

	// Auth metrics
	authRegistrationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "auth_registrations_total",
			Help: "Total number of user registrations",
		},
	)

	authLoginsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "auth_logins_total",
			Help: "Total number of user logins",
		},
	)

	authLoginsFailed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "auth_logins_failed_total",
			Help: "Total number of failed login attempts",
		},
	)
)

func RecordCreateAttempt() { itemCreateAttemptsTotal.Inc() }
func RecordIDConflict()    { itemIDConflictsTotal.Inc() }
func RecordIDExhausted()   { itemIDExhaustedTotal.Inc() }
func RecordItemCreated()   { itemsCreatedTotal.Inc() }

// RecordRegistration increments registration counter
func RecordRegistration() {
	authRegistrationsTotal.Inc()
}

// RecordLogin increments login counter
func RecordLogin() {
	authLoginsTotal.Inc()
}

// RecordLoginFailed increments failed login counter
func RecordLoginFailed() {
	authLoginsFailed.Inc()
}

// Handler returns the Prometheus metrics handler
func Handler() http.Handler {
	return promhttp.Handler()
}
