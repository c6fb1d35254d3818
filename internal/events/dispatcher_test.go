package events

import (
	"context"
	"errors"
	"testing"

	"simplecrud/internal/domain"
	"simplecrud/internal/domain/models"
)

func TestBusDeliversInRegistrationOrder(t *testing.T) {
	bus := NewBus()
	var got []string
	bus.Subscribe(func(context.Context, *domain.LifecycleEvent) error { got = append(got, "first"); return nil }, domain.BeforeCreate)
	bus.Subscribe(func(context.Context, *domain.LifecycleEvent) error { got = append(got, "second"); return nil }, domain.BeforeCreate)
	bus.Subscribe(func(context.Context, *domain.LifecycleEvent) error { got = append(got, "other"); return nil }, domain.AfterDelete)

	ev := domain.NewLifecycleEvent(domain.BeforeCreate, "vehicles", &models.Vehicle{})
	if err := bus.Dispatch(context.Background(), ev); err != nil {
		t.Fatalf("Dispatch returned error: %v", err)
	}
	if len(got) != 2 || got[0] != "first" || got[1] != "second" {
		t.Fatalf("delivery order = %v", got)
	}
}

func TestBusSubscribeWithoutKindsReceivesAll(t *testing.T) {
	bus := NewBus()
	bus.Subscribe(func(context.Context, *domain.LifecycleEvent) error { return nil })
	for _, k := range domain.EventKinds {
		if bus.Count(k) != 1 {
			t.Fatalf("kind %s has %d listeners, want 1", k, bus.Count(k))
		}
	}
}

func TestBusStopPropagation(t *testing.T) {
	bus := NewBus()
	calledLater := false
	bus.Subscribe(func(_ context.Context, e *domain.LifecycleEvent) error { e.StopPropagation(); return nil }, domain.AfterUpdate)
	bus.Subscribe(func(context.Context, *domain.LifecycleEvent) error { calledLater = true; return nil }, domain.AfterUpdate)

	if err := bus.Dispatch(context.Background(), domain.NewLifecycleEvent(domain.AfterUpdate, "drivers", &models.Driver{})); err != nil {
		t.Fatalf("Dispatch returned error: %v", err)
	}
	if calledLater {
		t.Fatalf("listener after StopPropagation was called")
	}
}

func TestBusListenerErrorAborts(t *testing.T) {
	bus := NewBus()
	boom := errors.New("boom")
	calledLater := false
	bus.Subscribe(func(context.Context, *domain.LifecycleEvent) error { return boom }, domain.BeforeDelete)
	bus.Subscribe(func(context.Context, *domain.LifecycleEvent) error { calledLater = true; return nil }, domain.BeforeDelete)

	err := bus.Dispatch(context.Background(), domain.NewLifecycleEvent(domain.BeforeDelete, "users", &models.User{}))
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped boom, got %v", err)
	}
	if calledLater {
		t.Fatalf("listener after failing listener was called")
	}
}

func TestBusRejectsInvalidEvent(t *testing.T) {
	if err := NewBus().Dispatch(context.Background(), &domain.LifecycleEvent{}); err == nil {
		t.Fatalf("expected error for zero kind")
	}
}
