package chat

import "github.com/prometheus/client_golang/prometheus"

var (
	ConnectedSessions = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "teaparty_connected_sessions",
		Help: "Number of currently connected sessions",
	})

	LoggedInUsers = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "teaparty_logged_in_users",
		Help: "Number of nicknames currently held in the registry",
	})

	EventsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "teaparty_events_total",
		Help: "Total events processed by type",
	}, []string{"type"})

	CommandsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "teaparty_commands_total",
		Help: "Total commands dispatched by verb; unrecognized verbs share one label",
	}, []string{"verb"})

	EventProcessingDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "teaparty_event_processing_seconds",
		Help:    "Time to process each event type",
		Buckets: prometheus.DefBuckets,
	}, []string{"type"})

	DroppedLines = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "teaparty_dropped_lines_total",
		Help: "Outbound lines dropped because a session's queue was full",
	})
)

func init() {
	prometheus.MustRegister(
		ConnectedSessions,
		LoggedInUsers,
		EventsTotal,
		CommandsTotal,
		EventProcessingDuration,
		DroppedLines,
	)
}
