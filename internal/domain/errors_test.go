package domain

import (
	"fmt"
	"testing"
)

func TestErrorPredicatesSeeThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("locate: %w", NotFoundError{Resource: "vehicles", ID: "7"})
	if !IsNotFound(wrapped) {
		t.Fatalf("IsNotFound should match wrapped error")
	}
	if IsForbidden(wrapped) || IsValidation(wrapped) || IsConflict(wrapped) {
		t.Fatalf("unrelated predicates matched %v", wrapped)
	}
	if wrapped.Error() != "locate: vehicles 7 tidak ditemukan" {
		t.Fatalf("unexpected message %q", wrapped.Error())
	}
}

func TestValidationErrorListsFields(t *testing.T) {
	fields := FieldErrors{}
	fields.Add("plateNumber", "wajib diisi")
	fields.Add("color", "too long")

	err := fmt.Errorf("save: %w", ValidationError{Fields: fields})
	verr, ok := AsValidation(err)
	if !ok {
		t.Fatalf("AsValidation did not find the error")
	}
	if len(verr.Fields["plateNumber"]) != 1 {
		t.Fatalf("fields not carried: %#v", verr.Fields)
	}
	if verr.Error() != "data tidak valid: color, plateNumber" {
		t.Fatalf("unexpected message %q", verr.Error())
	}
}

func TestActorRoles(t *testing.T) {
	var a Actor
	if !a.Anonymous() || a.HasRole("owner") {
		t.Fatalf("zero actor should be anonymous without roles")
	}
	a = Actor{UserID: 3, Role: "Admin"}
	if !a.HasRole("owner", "admin") {
		t.Fatalf("role match should be case-insensitive")
	}
	if ActorFrom(WithActor(t.Context(), a)) != a {
		t.Fatalf("actor not carried by context")
	}
}

func TestEventKindNames(t *testing.T) {
	if len(EventKinds) != 7 {
		t.Fatalf("expected 7 kinds, got %d", len(EventKinds))
	}
	if AfterInstantiate.String() != "crud.after_instantiate" || AfterDelete.String() != "crud.after_delete" {
		t.Fatalf("unexpected kind names")
	}
	if EventKind(0).Valid() || EventKind(8).Valid() {
		t.Fatalf("out-of-range kinds reported valid")
	}
}
