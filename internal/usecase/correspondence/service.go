package correspondence

import (
	"context"
	"sync"

	domaincorr "promette/internal/domain/correspondence"
	"promette/internal/ports"
)

// Service is the workflow engine: it validates transition legality,
// applies changes transactionally through the store and fans committed
// transitions out to the notifier and cache, best-effort.
type Service struct {
	repo      ports.CorrespondenceRepository
	directory ports.PositionDirectory
	uow       ports.UnitOfWork
	cache     ports.Cache
	notifier  ports.TransitionNotifier

	catalogMu sync.RWMutex
	catalog   *domaincorr.Catalog
}

// NewService wires the correspondence usecases. cache and notifier are
// optional; a nil catalog selects the built-in default.
func NewService(
	repo ports.CorrespondenceRepository,
	directory ports.PositionDirectory,
	uow ports.UnitOfWork,
	cache ports.Cache,
	notifier ports.TransitionNotifier,
	catalog *domaincorr.Catalog,
) *Service {
	if catalog == nil {
		catalog = domaincorr.DefaultCatalog()
	}
	return &Service{
		repo:      repo,
		directory: directory,
		uow:       uow,
		cache:     cache,
		notifier:  notifier,
		catalog:   catalog,
	}
}

// Catalog returns the active workflow catalog.
func (s *Service) Catalog() *domaincorr.Catalog {
	s.catalogMu.RLock()
	defer s.catalogMu.RUnlock()
	return s.catalog
}

// ReplaceCatalog swaps the workflow catalog; in-flight requests keep the
// catalog they started with.
func (s *Service) ReplaceCatalog(catalog *domaincorr.Catalog) {
	if catalog == nil {
		return
	}
	s.catalogMu.Lock()
	s.catalog = catalog
	s.catalogMu.Unlock()
}

type CreateInput struct {
	Scope            string
	ExternalFolio    string
	ReceivedDate     string
	Summary          string
	PriorityID       uint64
	DeliveryMethodID uint64
	DocumentPath     string
	ActingUserID     uint64
	ActingPositionID uint64
	Notes            string
}

type TransitionInput struct {
	CorrespondenceID uint64
	ToState          int
	Notes            string
	ActingUserID     uint64
	ActingPositionID uint64
	TargetPositionID *uint64
}

// TransitionResult carries the appended entry and the updated record.
// Duplicate marks the idempotent re-confirmation case: the requested state
// already was the current state, nothing was written, and Entry is the
// existing latest entry.
type TransitionResult struct {
	Entry     ports.StateEntry
	Record    ports.Correspondence
	Duplicate bool
}

type EditInput struct {
	CorrespondenceID uint64
	ActingUserID     uint64
	Edit             ports.CorrespondenceEdit
}

// Detail is one correspondence with its full audit history.
type Detail struct {
	Record    ports.Correspondence
	Entries   []ports.StateEntry
	StateName string
}

// SearchItem is one search hit with its latest audit entry embedded.
type SearchItem struct {
	Record    ports.Correspondence
	Latest    ports.StateEntry
	StateName string
}

type SummaryInput struct {
	AsOf       string
	PositionID uint64
}

func (s *Service) setCacheBestEffort(ctx context.Context, key string, value string) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Set(ctx, key, value, 0)
}
