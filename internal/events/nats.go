package events

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"go.opentelemetry.io/otel"

	"simplecrud/internal/domain"
	"simplecrud/internal/utils"
)

// MsgPublisher is satisfied by *nats.Conn.
type MsgPublisher interface {
	PublishMsg(m *nats.Msg) error
}

// Envelope is the JSON body published for each lifecycle event.
type Envelope struct {
	Kind       string    `json:"kind"`
	Resource   string    `json:"resource"`
	ResourceID string    `json:"resourceId,omitempty"`
	RequestID  string    `json:"requestId,omitempty"`
	ActorID    int64     `json:"actorId,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
	Data       any       `json:"data,omitempty"`
}

// natsHeaderCarrier adapts nats.Msg headers for OTel TextMapCarrier.
type natsHeaderCarrier nats.Msg

func (c *natsHeaderCarrier) Get(key string) string {
	if c.Header == nil {
		return ""
	}
	return c.Header.Get(key)
}

func (c *natsHeaderCarrier) Set(key, val string) {
	if c.Header == nil {
		c.Header = make(nats.Header)
	}
	c.Header.Set(key, val)
}

func (c *natsHeaderCarrier) Keys() []string {
	if c.Header == nil {
		return nil
	}
	keys := make([]string, 0, len(c.Header))
	for k := range c.Header {
		keys = append(keys, k)
	}
	return keys
}

// Subject returns "<prefix>.<resource>.<kind>", e.g. crud.vehicles.after_create.
func Subject(prefix, resource string, kind domain.EventKind) string {
	k := strings.TrimPrefix(kind.String(), "crud.")
	if prefix == "" {
		prefix = "crud"
	}
	return prefix + "." + resource + "." + k
}

// NATSListener forwards After* events to NATS. Publish failures are logged
// and never fail the request.
func NATSListener(pub MsgPublisher, prefix string) Listener {
	return func(ctx context.Context, e *domain.LifecycleEvent) error {
		env := Envelope{
			Kind:       e.Kind.String(),
			Resource:   e.ResourceType,
			RequestID:  utils.RequestIDFrom(ctx),
			ActorID:    domain.ActorFrom(ctx).UserID,
			OccurredAt: time.Now().UTC(),
		}
		if e.Resource != nil {
			env.ResourceID = e.Resource.ResourceID()
			env.Data = e.Resource
		}
		data, err := json.Marshal(env)
		if err != nil {
			return err
		}
		msg := &nats.Msg{Subject: Subject(prefix, e.ResourceType, e.Kind), Data: data}
		otel.GetTextMapPropagator().Inject(ctx, (*natsHeaderCarrier)(msg))
		if err := pub.PublishMsg(msg); err != nil {
			utils.LogEvent(env.RequestID, "nats", "publish", "publish failed: "+err.Error())
		}
		return nil
	}
}

// AfterKinds are the kinds forwarded to external subscribers.
var AfterKinds = []domain.EventKind{domain.AfterCreate, domain.AfterUpdate, domain.AfterDelete}
