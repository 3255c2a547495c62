package engine

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/roach88/todosync/internal/todo"
)

var (
	commandsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "todosync",
		Name:      "commands_total",
		Help:      "Commands processed, by command and outcome.",
	}, []string{"command", "outcome"})

	commandDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "todosync",
		Name:      "command_duration_seconds",
		Help:      "Time to apply a command to the store.",
		Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
	}, []string{"command"})

	subscriptionsGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "todosync",
		Name:      "subscriptions",
		Help:      "Open live-view subscriptions.",
	})

	viewPushes = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "todosync",
		Name:      "view_pushes_total",
		Help:      "Views pushed to subscriptions.",
	})

	revisionGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "todosync",
		Name:      "revision",
		Help:      "Revision of the last committed command.",
	})
)

// Outcome labels for commandsTotal.
const (
	outcomeOK         = "ok"
	outcomeValidation = "validation"
	outcomeNotFound   = "not_found"
	outcomeTransient  = "transient"
	outcomeError      = "error"
)

func outcomeOf(err error) string {
	if err == nil {
		return outcomeOK
	}
	switch todo.CodeOf(err) {
	case todo.ErrCodeValidation:
		return outcomeValidation
	case todo.ErrCodeNotFound:
		return outcomeNotFound
	case todo.ErrCodeTransient:
		return outcomeTransient
	}
	return outcomeError
}

func observeCommand(kind CommandKind, err error, d time.Duration) {
	commandsTotal.WithLabelValues(string(kind), outcomeOf(err)).Inc()
	if err == nil {
		commandDuration.WithLabelValues(string(kind)).Observe(d.Seconds())
	}
}
