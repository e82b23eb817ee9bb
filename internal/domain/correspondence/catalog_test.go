package correspondence

import (
	"errors"
	"testing"
)

func TestDefaultCatalogEdges(t *testing.T) {
	c := DefaultCatalog()

	cases := []struct {
		from State
		to   State
		want bool
	}{
		{StateReceived, StateInReview, true},
		{StateReceived, StateResolved, true},
		{StateReceived, StateDerived, true},
		{StateInReview, StateDerived, true},
		{StateDerived, StateDerived, true},
		{StateResolved, StateArchived, true},
		{StateResolved, StateReceived, false},
		{StateArchived, StateReceived, false},
		{StateReceived, StateArchived, false},
	}

	for _, tc := range cases {
		if got := c.CanTransition(tc.from, tc.to); got != tc.want {
			t.Errorf("CanTransition(%d, %d) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestDefaultCatalogRecipientRequirement(t *testing.T) {
	c := DefaultCatalog()

	if !c.RequiresRecipient(StateDerived) {
		t.Fatalf("Derived must require a recipient")
	}
	for _, s := range []State{StateReceived, StateInReview, StateResolved, StateArchived} {
		if c.RequiresRecipient(s) {
			t.Errorf("state %s must not require a recipient", c.StateName(s))
		}
	}
}

func TestNewCatalogRejectsUnknownEdgeTarget(t *testing.T) {
	_, err := NewCatalog(
		[]StateSpec{{ID: StateReceived, Name: "Received"}},
		map[State][]State{StateReceived: {State(99)}},
		nil,
	)
	if err == nil {
		t.Fatalf("expected error for edge to unknown state")
	}
}

func TestNewCatalogRejectsMissingInitialState(t *testing.T) {
	_, err := NewCatalog(
		[]StateSpec{{ID: StateResolved, Name: "Resolved"}},
		nil,
		nil,
	)
	if err == nil {
		t.Fatalf("expected error for catalog without the initial state")
	}
}

func TestNewCatalogRejectsTerminalOutgoingEdges(t *testing.T) {
	_, err := NewCatalog(
		[]StateSpec{
			{ID: StateReceived, Name: "Received"},
			{ID: StateArchived, Name: "Archived", Terminal: true},
		},
		map[State][]State{StateArchived: {StateReceived}},
		nil,
	)
	if err == nil {
		t.Fatalf("expected error for terminal state with outgoing edges")
	}
}

func TestCatalogScopes(t *testing.T) {
	c := DefaultCatalog()
	if !c.KnownScope("DPE-OCI") {
		t.Fatalf("default catalog must know scope DPE-OCI")
	}
	if c.KnownScope("XX-YY-ZZ-WW") {
		t.Fatalf("undeclared scope reported as known")
	}

	_, err := NewCatalog(
		[]StateSpec{{ID: StateReceived, Name: "Received"}},
		nil,
		map[string]string{"bad scope": "lowercase and spaces"},
	)
	if !errors.Is(err, ErrUnknownScope) {
		t.Fatalf("NewCatalog() error = %v, want ErrUnknownScope", err)
	}
}
