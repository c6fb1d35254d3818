package events

import (
	"context"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"simplecrud/internal/domain"
	"simplecrud/internal/utils"
)

// AuditListener logs every lifecycle event.
func AuditListener() Listener {
	return func(ctx context.Context, e *domain.LifecycleEvent) error {
		id := ""
		if e.Resource != nil {
			id = e.Resource.ResourceID()
		}
		utils.LogEvent(utils.RequestIDFrom(ctx), e.ResourceType, e.Kind.String(), "lifecycle event",
			zap.String("resource_id", id),
			zap.Int64("actor_id", domain.ActorFrom(ctx).UserID),
		)
		return nil
	}
}

var (
	registerOnce sync.Once

	lifecycleEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "simplecrud",
			Subsystem: "lifecycle",
			Name:      "events_total",
			Help:      "Lifecycle events dispatched per resource type and kind.",
		},
		[]string{"resource", "kind"},
	)
)

func registerMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(lifecycleEvents)
	})
}

// MetricsListener counts lifecycle events.
func MetricsListener() Listener {
	registerMetrics()
	return func(_ context.Context, e *domain.LifecycleEvent) error {
		lifecycleEvents.WithLabelValues(e.ResourceType, e.Kind.String()).Inc()
		return nil
	}
}
