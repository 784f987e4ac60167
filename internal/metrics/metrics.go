package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "quadra",
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint.",
		},
		[]string{"endpoint"},
	)

	reservationsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "quadra",
			Name:      "reservations_created_total",
			Help:      "Reservations successfully created.",
		},
	)

	slotConflicts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "quadra",
			Name:      "slot_conflicts_total",
			Help:      "Reservation attempts rejected because the slot was taken.",
		},
	)

	notificationsEmitted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "quadra",
			Name:      "notifications_emitted_total",
			Help:      "Notifications written to user inboxes.",
		},
	)

	notificationsFailed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "quadra",
			Name:      "notifications_failed_total",
			Help:      "Notification fan-out tasks that exhausted retries.",
		},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			httpRequests,
			reservationsCreated,
			slotConflicts,
			notificationsEmitted,
			notificationsFailed,
		)
	})
}

// IncHTTP increments the counter for an endpoint label.
func IncHTTP(endpoint string) {
	httpRequests.WithLabelValues(endpoint).Inc()
}

func IncReservationCreated() {
	reservationsCreated.Inc()
}

func IncSlotConflict() {
	slotConflicts.Inc()
}

func IncNotificationEmitted() {
	notificationsEmitted.Inc()
}

func IncNotificationFailed() {
	notificationsFailed.Inc()
}
