package domain

// EventKind enumerates the lifecycle notifications emitted around mutations.
type EventKind int

const (
	AfterInstantiate EventKind = iota + 1
	BeforeCreate
	AfterCreate
	BeforeUpdate
	AfterUpdate
	BeforeDelete
	AfterDelete
)

// EventKinds lists every kind in emission order of a create/update/delete cycle.
var EventKinds = []EventKind{
	AfterInstantiate,
	BeforeCreate,
	AfterCreate,
	BeforeUpdate,
	AfterUpdate,
	BeforeDelete,
	AfterDelete,
}

func (k EventKind) String() string {
	switch k {
	case AfterInstantiate:
		return "crud.after_instantiate"
	case BeforeCreate:
		return "crud.before_create"
	case AfterCreate:
		return "crud.after_create"
	case BeforeUpdate:
		return "crud.before_update"
	case AfterUpdate:
		return "crud.after_update"
	case BeforeDelete:
		return "crud.before_delete"
	case AfterDelete:
		return "crud.after_delete"
	default:
		return "crud.unknown"
	}
}

// Valid reports whether k is one of the declared kinds.
func (k EventKind) Valid() bool {
	return k >= AfterInstantiate && k <= AfterDelete
}

// LifecycleEvent is delivered to listeners around state-changing operations.
type LifecycleEvent struct {
	Kind         EventKind
	ResourceType string
	Resource     Resource

	stopped bool
}

// NewLifecycleEvent builds an event for resource of the given type.
func NewLifecycleEvent(kind EventKind, resourceType string, resource Resource) *LifecycleEvent {
	return &LifecycleEvent{Kind: kind, ResourceType: resourceType, Resource: resource}
}

// StopPropagation prevents listeners registered later from receiving the event.
func (e *LifecycleEvent) StopPropagation() { e.stopped = true }

// PropagationStopped reports whether a listener stopped the event.
func (e *LifecycleEvent) PropagationStopped() bool { return e.stopped }
