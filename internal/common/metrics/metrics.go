package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	MessagesProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agent_messages_processed_total",
			Help: "Total number of user messages processed",
		},
		[]string{"intent", "status"},
	)

	PlanStepsExecuted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agent_plan_steps_executed_total",
			Help: "Total number of plan steps dispatched by the executor",
		},
		[]string{"action", "outcome"},
	)

	MessageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "agent_message_duration_seconds",
			Help: "Duration of end-to-end message handling in seconds",
		},
		[]string{"intent"},
	)

	ReservationsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "agent_reservations_created_total",
			Help: "Total number of reservations successfully created",
		},
	)

	ReservationsRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agent_reservations_rejected_total",
			Help: "Total number of reservation writes rejected by the store",
		},
		[]string{"reason"},
	)
)
