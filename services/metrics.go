package services

import "github.com/prometheus/client_golang/prometheus"

var (
	notificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mycalendar_notifications_total",
			Help: "Notifications handed to the sink, by delivery mode and result",
		},
		[]string{"mode", "result"},
	)
	schedulingConflictsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mycalendar_scheduling_conflicts_total",
			Help: "Bookings rejected because they overlap an existing commitment",
		},
		[]string{"operation"},
	)
)

// RegisterMetrics registers the domain counters. Call this from main.go
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(notificationsTotal)
	reg.MustRegister(schedulingConflictsTotal)
}
