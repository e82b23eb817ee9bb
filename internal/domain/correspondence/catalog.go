package correspondence

import (
	"fmt"
	"sort"
)

// StateSpec describes one state of the workflow catalog.
type StateSpec struct {
	ID       State
	Name     string
	Deriving bool
	Terminal bool
}

// Catalog is the closed set of states, the legal transition edges between
// them and the known folio scopes. It is immutable once built; a reload
// produces a new Catalog.
type Catalog struct {
	states map[State]StateSpec
	edges  map[State]map[State]struct{}
	scopes map[string]string
}

// NewCatalog validates the given states, edges and scopes and builds a
// Catalog. The initial state must be present, edges may only reference
// known states and terminal states may not have outgoing edges.
func NewCatalog(states []StateSpec, edges map[State][]State, scopes map[string]string) (*Catalog, error) {
	if len(states) == 0 {
		return nil, fmt.Errorf("catalog needs at least one state")
	}

	byID := make(map[State]StateSpec, len(states))
	for _, s := range states {
		if s.ID <= 0 {
			return nil, fmt.Errorf("state %q has invalid id %d", s.Name, s.ID)
		}
		if s.Name == "" {
			return nil, fmt.Errorf("state %d has no name", s.ID)
		}
		if _, dup := byID[s.ID]; dup {
			return nil, fmt.Errorf("duplicate state id %d", s.ID)
		}
		byID[s.ID] = s
	}

	if _, ok := byID[InitialState]; !ok {
		return nil, fmt.Errorf("catalog is missing the initial state %d", InitialState)
	}

	edgeSet := make(map[State]map[State]struct{}, len(edges))
	for from, targets := range edges {
		spec, ok := byID[from]
		if !ok {
			return nil, fmt.Errorf("edge from unknown state %d", from)
		}
		if spec.Terminal && len(targets) > 0 {
			return nil, fmt.Errorf("terminal state %q cannot have outgoing edges", spec.Name)
		}
		set := make(map[State]struct{}, len(targets))
		for _, to := range targets {
			if _, ok := byID[to]; !ok {
				return nil, fmt.Errorf("edge from %q to unknown state %d", spec.Name, to)
			}
			set[to] = struct{}{}
		}
		edgeSet[from] = set
	}

	scopeSet := make(map[string]string, len(scopes))
	for key, description := range scopes {
		if err := ValidateScope(key); err != nil {
			return nil, err
		}
		scopeSet[key] = description
	}

	return &Catalog{states: byID, edges: edgeSet, scopes: scopeSet}, nil
}

// DefaultCatalog returns the built-in workflow: Received, InReview,
// Resolved, Derived plus the administrative Archived terminal state.
func DefaultCatalog() *Catalog {
	c, err := NewCatalog(
		[]StateSpec{
			{ID: StateReceived, Name: "Received"},
			{ID: StateInReview, Name: "InReview"},
			{ID: StateResolved, Name: "Resolved"},
			{ID: StateDerived, Name: "Derived", Deriving: true},
			{ID: StateArchived, Name: "Archived", Terminal: true},
		},
		map[State][]State{
			StateReceived: {StateInReview, StateResolved, StateDerived},
			StateInReview: {StateResolved, StateDerived},
			StateDerived:  {StateInReview, StateResolved, StateDerived},
			StateResolved: {StateArchived},
		},
		map[string]string{"DPE-OCI": "Correspondence desk"},
	)
	if err != nil {
		panic(err)
	}
	return c
}

// Known reports whether the state exists in the catalog.
func (c *Catalog) Known(s State) bool {
	_, ok := c.states[s]
	return ok
}

// StateName returns the catalog name of a state, or "state:<id>" when the
// state is not in the catalog.
func (c *Catalog) StateName(s State) string {
	if spec, ok := c.states[s]; ok {
		return spec.Name
	}
	return fmt.Sprintf("state:%d", s)
}

// RequiresRecipient reports whether transitioning into the state routes
// the correspondence to a new position and therefore needs a validated
// target.
func (c *Catalog) RequiresRecipient(s State) bool {
	spec, ok := c.states[s]
	return ok && spec.Deriving
}

// CanTransition reports whether a direct edge from one state to another
// exists. Re-submitting the current state is not an edge; idempotent
// re-confirmation is handled before this check.
func (c *Catalog) CanTransition(from State, to State) bool {
	targets, ok := c.edges[from]
	if !ok {
		return false
	}
	_, ok = targets[to]
	return ok
}

// KnownScope reports whether the folio scope is declared in the catalog.
func (c *Catalog) KnownScope(scope string) bool {
	_, ok := c.scopes[scope]
	return ok
}

// Scopes returns the declared folio scopes in stable order.
func (c *Catalog) Scopes() []string {
	keys := make([]string, 0, len(c.scopes))
	for key := range c.scopes {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// States returns all state specs ordered by id.
func (c *Catalog) States() []StateSpec {
	specs := make([]StateSpec, 0, len(c.states))
	for _, spec := range c.states {
		specs = append(specs, spec)
	}
	sort.Slice(specs, func(i, j int) bool { return specs[i].ID < specs[j].ID })
	return specs
}
