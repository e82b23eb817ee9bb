package repository

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"promette/internal/infrastructure/persistence/sqlite/model"
	"promette/internal/infrastructure/persistence/sqlite/uow"
	"promette/internal/ports"
)

func setupCorrespondenceRepository(t *testing.T) *CorrespondenceRepository {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "correspondence.sqlite")
	db, err := gorm.Open(gormsqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	if err := db.AutoMigrate(
		&model.Correspondence{},
		&model.StateEntry{},
		&model.FolioCounter{},
		&model.Position{},
		&model.Priority{},
		&model.DeliveryMethod{},
		&model.DirectoryKV{},
	); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}
	return NewCorrespondenceRepository(db)
}

func createTestCorrespondence(t *testing.T, repo *CorrespondenceRepository, folio, scope string) ports.Correspondence {
	t.Helper()
	ctx := context.Background()

	record, err := repo.CreateCorrespondence(ctx, ports.Correspondence{
		SystemFolio:         folio,
		ReceivedDate:        "2026-02-10",
		Summary:             "solicitud de informes",
		PriorityID:          1,
		DeliveryMethodID:    1,
		Scope:               scope,
		CreatedByUserID:     7,
		CreatedByPositionID: 3,
		CurrentState:        1,
	})
	if err != nil {
		t.Fatalf("create correspondence: %v", err)
	}
	if _, err := repo.AppendStateEntry(ctx, ports.StateEntryCreate{
		CorrespondenceID: record.CorrespondenceID,
		FromState:        nil,
		ToState:          1,
		ActingUserID:     7,
		ActingPositionID: 3,
	}); err != nil {
		t.Fatalf("append creation entry: %v", err)
	}
	return record
}

func intPtr(v int) *int { return &v }

func uintPtr(v uint64) *uint64 { return &v }

func TestNextFolioSeqIsMonotonicPerScope(t *testing.T) {
	repo := setupCorrespondenceRepository(t)
	ctx := context.Background()

	for want := uint64(1); want <= 3; want++ {
		seq, err := repo.NextFolioSeq(ctx, "DPE-OCI")
		if err != nil {
			t.Fatalf("NextFolioSeq(%d) error = %v", want, err)
		}
		if seq != want {
			t.Fatalf("NextFolioSeq() = %d, want %d", seq, want)
		}
	}

	seq, err := repo.NextFolioSeq(ctx, "DA-RH")
	if err != nil {
		t.Fatalf("NextFolioSeq(other scope) error = %v", err)
	}
	if seq != 1 {
		t.Fatalf("NextFolioSeq(other scope) = %d, want 1", seq)
	}
}

func TestAppendStateEntryRejectsDuplicateCreationEntry(t *testing.T) {
	repo := setupCorrespondenceRepository(t)
	ctx := context.Background()

	record := createTestCorrespondence(t, repo, "DPE-OCI-0001", "DPE-OCI")

	_, err := repo.AppendStateEntry(ctx, ports.StateEntryCreate{
		CorrespondenceID: record.CorrespondenceID,
		FromState:        nil,
		ToState:          1,
		ActingUserID:     7,
		ActingPositionID: 3,
	})
	if !errors.Is(err, ports.ErrStateConflict) {
		t.Fatalf("AppendStateEntry(duplicate creation) error = %v, want ErrStateConflict", err)
	}
}

func TestAppendStateEntryRejectsStaleFromState(t *testing.T) {
	repo := setupCorrespondenceRepository(t)
	ctx := context.Background()

	record := createTestCorrespondence(t, repo, "DPE-OCI-0001", "DPE-OCI")

	if _, err := repo.AppendStateEntry(ctx, ports.StateEntryCreate{
		CorrespondenceID: record.CorrespondenceID,
		FromState:        intPtr(1),
		ToState:          2,
		ActingUserID:     7,
		ActingPositionID: 3,
		Notes:            "en revisión",
	}); err != nil {
		t.Fatalf("append 1->2: %v", err)
	}

	// A second writer that also observed state 1 must lose.
	_, err := repo.AppendStateEntry(ctx, ports.StateEntryCreate{
		CorrespondenceID: record.CorrespondenceID,
		FromState:        intPtr(1),
		ToState:          3,
		ActingUserID:     9,
		ActingPositionID: 5,
		Notes:            "atendido",
	})
	if !errors.Is(err, ports.ErrStateConflict) {
		t.Fatalf("AppendStateEntry(stale) error = %v, want ErrStateConflict", err)
	}

	entries, err := repo.ListStateEntries(ctx, record.CorrespondenceID)
	if err != nil {
		t.Fatalf("ListStateEntries() error = %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("ListStateEntries() len = %d, want 2 (conflict must not write)", len(entries))
	}
}

func TestAppendStateEntryConcurrentWritersAppendOnce(t *testing.T) {
	repo := setupCorrespondenceRepository(t)
	ctx := context.Background()

	record := createTestCorrespondence(t, repo, "DPE-OCI-0001", "DPE-OCI")
	unit := uow.NewUnitOfWork(repo.db)

	// Two writers that both observed state 1 race inside real
	// transactions; exactly one may append.
	targets := []int{2, 3}
	results := make(chan error, len(targets))
	begin := make(chan struct{})
	var wg sync.WaitGroup
	for _, to := range targets {
		wg.Add(1)
		go func(to int) {
			defer wg.Done()
			<-begin
			results <- unit.WithTx(ctx, func(txCtx context.Context) error {
				_, err := repo.AppendStateEntry(txCtx, ports.StateEntryCreate{
					CorrespondenceID: record.CorrespondenceID,
					FromState:        intPtr(1),
					ToState:          to,
					ActingUserID:     7,
					ActingPositionID: 3,
					Notes:            "turno simultáneo",
				})
				return err
			})
		}(to)
	}
	close(begin)
	wg.Wait()
	close(results)

	succeeded, conflicted := 0, 0
	for err := range results {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, ports.ErrStateConflict):
			conflicted++
		default:
			t.Fatalf("unexpected writer error: %v", err)
		}
	}
	if succeeded != 1 || conflicted != 1 {
		t.Fatalf("succeeded = %d, conflicted = %d, want 1 and 1", succeeded, conflicted)
	}

	entries, err := repo.ListStateEntries(ctx, record.CorrespondenceID)
	if err != nil {
		t.Fatalf("ListStateEntries() error = %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries after race = %d, want 2", len(entries))
	}

	got, err := repo.GetCorrespondence(ctx, record.CorrespondenceID)
	if err != nil {
		t.Fatalf("GetCorrespondence() error = %v", err)
	}
	if got.CurrentState != entries[len(entries)-1].ToState {
		t.Fatalf("cached state = %d, latest entry = %d", got.CurrentState, entries[len(entries)-1].ToState)
	}
}

func TestAppendStateEntryKeepsCachedStateInStep(t *testing.T) {
	repo := setupCorrespondenceRepository(t)
	ctx := context.Background()

	record := createTestCorrespondence(t, repo, "DPE-OCI-0001", "DPE-OCI")

	if _, err := repo.AppendStateEntry(ctx, ports.StateEntryCreate{
		CorrespondenceID: record.CorrespondenceID,
		FromState:        intPtr(1),
		ToState:          4,
		ActingUserID:     7,
		ActingPositionID: 3,
		TargetPositionID: uintPtr(12),
		Notes:            "remitido",
	}); err != nil {
		t.Fatalf("append 1->4: %v", err)
	}

	got, err := repo.GetCorrespondence(ctx, record.CorrespondenceID)
	if err != nil {
		t.Fatalf("GetCorrespondence() error = %v", err)
	}
	if got.CurrentState != 4 {
		t.Fatalf("CurrentState = %d, want 4", got.CurrentState)
	}

	latest, err := repo.LatestStateEntry(ctx, record.CorrespondenceID)
	if err != nil {
		t.Fatalf("LatestStateEntry() error = %v", err)
	}
	if latest.ToState != got.CurrentState {
		t.Fatalf("latest entry to_state = %d, cached state = %d", latest.ToState, got.CurrentState)
	}
	if latest.TargetPositionID == nil || *latest.TargetPositionID != 12 {
		t.Fatalf("latest entry target_position_id = %v, want 12", latest.TargetPositionID)
	}
}

func TestSearchCorrespondenceByAssignedPosition(t *testing.T) {
	repo := setupCorrespondenceRepository(t)
	ctx := context.Background()

	first := createTestCorrespondence(t, repo, "DPE-OCI-0001", "DPE-OCI")
	second := createTestCorrespondence(t, repo, "DPE-OCI-0002", "DPE-OCI")

	if _, err := repo.AppendStateEntry(ctx, ports.StateEntryCreate{
		CorrespondenceID: first.CorrespondenceID,
		FromState:        intPtr(1),
		ToState:          4,
		ActingUserID:     7,
		ActingPositionID: 3,
		TargetPositionID: uintPtr(12),
		Notes:            "remitido",
	}); err != nil {
		t.Fatalf("append derive: %v", err)
	}
	// A later hop to another position must drop it from position 12's list.
	if _, err := repo.AppendStateEntry(ctx, ports.StateEntryCreate{
		CorrespondenceID: second.CorrespondenceID,
		FromState:        intPtr(1),
		ToState:          4,
		ActingUserID:     7,
		ActingPositionID: 3,
		TargetPositionID: uintPtr(12),
		Notes:            "remitido",
	}); err != nil {
		t.Fatalf("append derive second: %v", err)
	}
	if _, err := repo.AppendStateEntry(ctx, ports.StateEntryCreate{
		CorrespondenceID: second.CorrespondenceID,
		FromState:        intPtr(4),
		ToState:          4,
		ActingUserID:     8,
		ActingPositionID: 12,
		TargetPositionID: uintPtr(20),
		Notes:            "turnado de nuevo",
	}); err != nil {
		t.Fatalf("append re-derive: %v", err)
	}

	items, err := repo.SearchCorrespondence(ctx, ports.CorrespondenceFilter{AssignedPositionID: 12})
	if err != nil {
		t.Fatalf("SearchCorrespondence() error = %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("SearchCorrespondence() len = %d, want 1", len(items))
	}
	if items[0].CorrespondenceID != first.CorrespondenceID {
		t.Fatalf("SearchCorrespondence() id = %d, want %d", items[0].CorrespondenceID, first.CorrespondenceID)
	}
}

func TestSearchCorrespondenceByDateAndState(t *testing.T) {
	repo := setupCorrespondenceRepository(t)
	ctx := context.Background()

	early, err := repo.CreateCorrespondence(ctx, ports.Correspondence{
		SystemFolio:         "DPE-OCI-0001",
		ReceivedDate:        "2026-01-05",
		Summary:             "oficio enero",
		PriorityID:          1,
		DeliveryMethodID:    1,
		Scope:               "DPE-OCI",
		CreatedByUserID:     7,
		CreatedByPositionID: 3,
		CurrentState:        1,
	})
	if err != nil {
		t.Fatalf("create early: %v", err)
	}
	if _, err := repo.CreateCorrespondence(ctx, ports.Correspondence{
		SystemFolio:         "DPE-OCI-0002",
		ReceivedDate:        "2026-03-15",
		Summary:             "oficio marzo",
		PriorityID:          1,
		DeliveryMethodID:    1,
		Scope:               "DPE-OCI",
		CreatedByUserID:     7,
		CreatedByPositionID: 3,
		CurrentState:        3,
	}); err != nil {
		t.Fatalf("create late: %v", err)
	}

	items, err := repo.SearchCorrespondence(ctx, ports.CorrespondenceFilter{
		ReceivedTo: "2026-02-01",
		States:     []int{1, 2},
	})
	if err != nil {
		t.Fatalf("SearchCorrespondence() error = %v", err)
	}
	if len(items) != 1 || items[0].CorrespondenceID != early.CorrespondenceID {
		t.Fatalf("SearchCorrespondence() = %+v, want only the january record", items)
	}
}

func TestSummaryByScopeAggregates(t *testing.T) {
	repo := setupCorrespondenceRepository(t)
	ctx := context.Background()

	seed := []struct {
		folio string
		scope string
		state int
	}{
		{"DPE-OCI-0001", "DPE-OCI", 1},
		{"DPE-OCI-0002", "DPE-OCI", 3},
		{"DPE-OCI-0003", "DPE-OCI", 4},
		{"DA-RH-0001", "DA-RH", 3},
	}
	for _, s := range seed {
		if _, err := repo.CreateCorrespondence(ctx, ports.Correspondence{
			SystemFolio:         s.folio,
			ReceivedDate:        "2026-02-10",
			Summary:             "registro",
			PriorityID:          1,
			DeliveryMethodID:    1,
			Scope:               s.scope,
			CreatedByUserID:     7,
			CreatedByPositionID: 3,
			CurrentState:        s.state,
		}); err != nil {
			t.Fatalf("create %s: %v", s.folio, err)
		}
	}

	rows, err := repo.SummaryByScope(ctx, ports.SummaryQuery{ResolvedState: 3, DerivedState: 4})
	if err != nil {
		t.Fatalf("SummaryByScope() error = %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("SummaryByScope() len = %d, want 2", len(rows))
	}
	if rows[0].Scope != "DA-RH" || rows[0].Total != 1 || rows[0].Resolved != 1 || rows[0].Derived != 0 {
		t.Fatalf("SummaryByScope()[0] = %+v", rows[0])
	}
	if rows[1].Scope != "DPE-OCI" || rows[1].Total != 3 || rows[1].Resolved != 1 || rows[1].Derived != 1 {
		t.Fatalf("SummaryByScope()[1] = %+v", rows[1])
	}
}

func TestGetCorrespondenceNotFound(t *testing.T) {
	repo := setupCorrespondenceRepository(t)

	_, err := repo.GetCorrespondence(context.Background(), 404)
	if !errors.Is(err, ports.ErrCorrespondenceNotFound) {
		t.Fatalf("GetCorrespondence(missing) error = %v, want ErrCorrespondenceNotFound", err)
	}
}

func TestUpdateCorrespondenceFieldsNotFound(t *testing.T) {
	repo := setupCorrespondenceRepository(t)

	err := repo.UpdateCorrespondenceFields(context.Background(), 404, ports.CorrespondenceEdit{
		ReceivedDate:     "2026-02-10",
		Summary:          "actualizado",
		PriorityID:       1,
		DeliveryMethodID: 1,
	})
	if !errors.Is(err, ports.ErrCorrespondenceNotFound) {
		t.Fatalf("UpdateCorrespondenceFields(missing) error = %v, want ErrCorrespondenceNotFound", err)
	}
}
