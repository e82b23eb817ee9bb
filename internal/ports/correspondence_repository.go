package ports

import (
	"context"
	"errors"
)

var (
	ErrCorrespondenceNotFound = errors.New("correspondence not found")

	// ErrStateConflict signals that the observed from-state no longer
	// matches the latest audit entry; the caller must re-read and retry.
	ErrStateConflict = errors.New("correspondence state changed concurrently")
)

// Correspondence is one inbound/outbound document record. CurrentState is
// a cached copy of the latest audit entry's ToState, maintained only
// inside the transaction that appends the entry.
type Correspondence struct {
	CorrespondenceID    uint64
	SystemFolio         string
	ExternalFolio       string
	ReceivedDate        string
	Summary             string
	PriorityID          uint64
	DeliveryMethodID    uint64
	DocumentPath        string
	Scope               string
	CreatedByUserID     uint64
	CreatedByPositionID uint64
	CreatedAt           string
	CurrentState        int
}

// StateEntry is one immutable audit record. FromState is nil only on the
// creation entry; TargetPositionID is set only for deriving transitions.
type StateEntry struct {
	EntryID          uint64
	CorrespondenceID uint64
	FromState        *int
	ToState          int
	ActingUserID     uint64
	ActingPositionID uint64
	TargetPositionID *uint64
	Notes            string
	CreatedAt        string
}

// StateEntryCreate is the append request for one transition. A nil
// FromState asserts that no prior entry exists (creation); a non-nil
// FromState is the optimistic precondition checked against the latest
// entry inside the transaction.
type StateEntryCreate struct {
	CorrespondenceID uint64
	FromState        *int
	ToState          int
	ActingUserID     uint64
	ActingPositionID uint64
	TargetPositionID *uint64
	Notes            string
}

// CorrespondenceEdit carries the creator-editable fields.
type CorrespondenceEdit struct {
	ExternalFolio    string
	ReceivedDate     string
	Summary          string
	PriorityID       uint64
	DeliveryMethodID uint64
	DocumentPath     string
}

// CorrespondenceFilter narrows searches. Zero values mean "no constraint".
type CorrespondenceFilter struct {
	ReceivedFrom       string
	ReceivedTo         string
	PriorityID         uint64
	DeliveryMethodID   uint64
	States             []int
	Scope              string
	CreatedByUserID    uint64
	AssignedPositionID uint64
	Limit              int
}

// SummaryQuery selects the per-scope aggregate. The state ids come from
// the workflow catalog so the store stays catalog-agnostic.
type SummaryQuery struct {
	AsOf          string
	PositionID    uint64
	ResolvedState int
	DerivedState  int
}

// ScopeSummary is one row of the per-area report.
type ScopeSummary struct {
	Scope    string
	Total    int64
	Resolved int64
	Derived  int64
}

// LookupItem is one row of the priority / delivery-method catalogs.
type LookupItem struct {
	ID   uint64
	Name string
}

type CorrespondenceReadRepository interface {
	GetCorrespondence(ctx context.Context, id uint64) (Correspondence, error)
	SearchCorrespondence(ctx context.Context, filter CorrespondenceFilter) ([]Correspondence, error)
	ListStateEntries(ctx context.Context, correspondenceID uint64) ([]StateEntry, error)
	LatestStateEntry(ctx context.Context, correspondenceID uint64) (StateEntry, error)
	SummaryByScope(ctx context.Context, query SummaryQuery) ([]ScopeSummary, error)
	PriorityExists(ctx context.Context, id uint64) (bool, error)
	DeliveryMethodExists(ctx context.Context, id uint64) (bool, error)
}

// CorrespondenceRepository owns correspondence rows, their audit entries
// and the per-scope folio counters. Audit entries are write-once: there is
// no update or delete operation, by contract.
type CorrespondenceRepository interface {
	CorrespondenceReadRepository

	// NextFolioSeq atomically reserves the next sequence number for a
	// scope. Must run inside a unit of work so an aborted creation rolls
	// the reservation back.
	NextFolioSeq(ctx context.Context, scope string) (uint64, error)

	CreateCorrespondence(ctx context.Context, record Correspondence) (Correspondence, error)

	// AppendStateEntry appends one audit entry and updates the cached
	// CurrentState in the same transaction. Fails with ErrStateConflict
	// when the FromState precondition no longer holds.
	AppendStateEntry(ctx context.Context, entry StateEntryCreate) (StateEntry, error)

	UpdateCorrespondenceFields(ctx context.Context, id uint64, edit CorrespondenceEdit) error
}
