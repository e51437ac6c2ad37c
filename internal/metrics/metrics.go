package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	NotificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notify_notifications_total",
			Help: "Database notifications received, by channel.",
		},
		[]string{"channel"},
	)
	TranslationDropsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notify_translation_drops_total",
			Help: "Notifications dropped because the payload could not be translated.",
		},
		[]string{"channel"},
	)
	EventsDeliveredTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notify_events_delivered_total",
			Help: "Events pushed onto subscriber buffers, by event name.",
		},
		[]string{"event"},
	)
	EventsDroppedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "notify_events_dropped_total",
			Help: "Buffered events dropped because a slow consumer overflowed.",
		},
	)
	LiveHandles = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "notify_live_handles",
			Help: "Currently attached stream connections.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		NotificationsTotal,
		TranslationDropsTotal,
		EventsDeliveredTotal,
		EventsDroppedTotal,
		LiveHandles,
	)
}
