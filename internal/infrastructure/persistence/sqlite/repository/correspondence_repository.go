package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"promette/internal/errs"
	"promette/internal/infrastructure/persistence/sqlite/model"
	"promette/internal/ports"
)

// CorrespondenceRepository implements ports.CorrespondenceRepository over
// SQLite. State entries are append-only; the cached current_state column
// is only written together with a new entry.
type CorrespondenceRepository struct {
	db *gorm.DB
}

var _ ports.CorrespondenceRepository = (*CorrespondenceRepository)(nil)

func NewCorrespondenceRepository(db *gorm.DB) *CorrespondenceRepository {
	return &CorrespondenceRepository{db: db}
}

func (r *CorrespondenceRepository) dbFromContext(ctx context.Context) (*gorm.DB, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}

	tx := ports.TxFromContext(ctx)
	if tx == nil {
		return r.db.WithContext(ctx), nil
	}

	gormTx, ok := tx.(*gorm.DB)
	if !ok || gormTx == nil {
		return nil, fmt.Errorf("invalid tx in context: %T", tx)
	}
	return gormTx.WithContext(ctx), nil
}

func (r *CorrespondenceRepository) GetCorrespondence(ctx context.Context, id uint64) (ports.Correspondence, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.Correspondence{}, err
	}
	return getCorrespondenceByID(db, id)
}

func (r *CorrespondenceRepository) SearchCorrespondence(ctx context.Context, filter ports.CorrespondenceFilter) ([]ports.Correspondence, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	query := db.Model(&model.Correspondence{})
	if from := strings.TrimSpace(filter.ReceivedFrom); from != "" {
		query = query.Where("received_date >= ?", from)
	}
	if to := strings.TrimSpace(filter.ReceivedTo); to != "" {
		query = query.Where("received_date <= ?", to)
	}
	if filter.PriorityID != 0 {
		query = query.Where("priority_id = ?", filter.PriorityID)
	}
	if filter.DeliveryMethodID != 0 {
		query = query.Where("delivery_method_id = ?", filter.DeliveryMethodID)
	}
	if len(filter.States) > 0 {
		query = query.Where("current_state IN ?", filter.States)
	}
	if scope := strings.TrimSpace(filter.Scope); scope != "" {
		query = query.Where("scope = ?", scope)
	}
	if filter.CreatedByUserID != 0 {
		query = query.Where("created_by_user_id = ?", filter.CreatedByUserID)
	}
	if filter.AssignedPositionID != 0 {
		query = query.Where("correspondence_id IN (?)", latestEntrySubquery(db).
			Where("target_position_id = ?", filter.AssignedPositionID).
			Select("correspondence_id"))
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var rows []model.Correspondence
	if err := query.Order("correspondence_id asc").Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query correspondences")
	}

	items := make([]ports.Correspondence, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapCorrespondence(row))
	}
	return items, nil
}

func (r *CorrespondenceRepository) ListStateEntries(ctx context.Context, correspondenceID uint64) ([]ports.StateEntry, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var rows []model.StateEntry
	if err := db.
		Where("correspondence_id = ?", correspondenceID).
		Order("entry_id asc").
		Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query state entries")
	}

	entries := make([]ports.StateEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, mapStateEntry(row))
	}
	return entries, nil
}

func (r *CorrespondenceRepository) LatestStateEntry(ctx context.Context, correspondenceID uint64) (ports.StateEntry, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.StateEntry{}, err
	}

	row, found, err := latestEntry(db, correspondenceID)
	if err != nil {
		return ports.StateEntry{}, err
	}
	if !found {
		return ports.StateEntry{}, ports.ErrCorrespondenceNotFound
	}
	return mapStateEntry(row), nil
}

func (r *CorrespondenceRepository) SummaryByScope(ctx context.Context, query ports.SummaryQuery) ([]ports.ScopeSummary, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	q := db.Model(&model.Correspondence{}).
		Select(
			"scope, count(*) as total, "+
				"sum(case when current_state = ? then 1 else 0 end) as resolved, "+
				"sum(case when current_state = ? then 1 else 0 end) as derived",
			query.ResolvedState, query.DerivedState,
		)
	if asOf := strings.TrimSpace(query.AsOf); asOf != "" {
		q = q.Where("received_date <= ?", asOf)
	}
	if query.PositionID != 0 {
		q = q.Where("correspondence_id IN (?)", latestEntrySubquery(db).
			Where("target_position_id = ?", query.PositionID).
			Select("correspondence_id"))
	}

	var rows []ports.ScopeSummary
	if err := q.Group("scope").Order("scope asc").Scan(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "aggregate summary by scope")
	}
	return rows, nil
}

func (r *CorrespondenceRepository) PriorityExists(ctx context.Context, id uint64) (bool, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return false, err
	}

	var count int64
	if err := db.Model(&model.Priority{}).Where("priority_id = ?", id).Count(&count).Error; err != nil {
		return false, errs.Wrap(err, "count priorities")
	}
	return count > 0, nil
}

func (r *CorrespondenceRepository) DeliveryMethodExists(ctx context.Context, id uint64) (bool, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return false, err
	}

	var count int64
	if err := db.Model(&model.DeliveryMethod{}).Where("delivery_method_id = ?", id).Count(&count).Error; err != nil {
		return false, errs.Wrap(err, "count delivery methods")
	}
	return count > 0, nil
}

// NextFolioSeq reserves the next sequence number for a scope with an
// atomic upsert-increment. Never computed as "max + 1" outside the
// statement; concurrent creations race on the row, not on a read.
func (r *CorrespondenceRepository) NextFolioSeq(ctx context.Context, scope string) (uint64, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return 0, err
	}

	counter := model.FolioCounter{Scope: scope, LastSeq: 1}
	if err := db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "scope"}},
		DoUpdates: clause.Assignments(map[string]any{
			"last_seq": gorm.Expr("last_seq + 1"),
		}),
	}).Create(&counter).Error; err != nil {
		return 0, errs.Wrapf(err, "increment folio counter %q", scope)
	}

	var row model.FolioCounter
	if err := db.Where("scope = ?", scope).Take(&row).Error; err != nil {
		return 0, errs.Wrapf(err, "read folio counter %q", scope)
	}
	return row.LastSeq, nil
}

func (r *CorrespondenceRepository) CreateCorrespondence(ctx context.Context, record ports.Correspondence) (ports.Correspondence, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.Correspondence{}, err
	}

	row := model.Correspondence{
		SystemFolio:         record.SystemFolio,
		ExternalFolio:       record.ExternalFolio,
		ReceivedDate:        record.ReceivedDate,
		Summary:             record.Summary,
		PriorityID:          record.PriorityID,
		DeliveryMethodID:    record.DeliveryMethodID,
		DocumentPath:        record.DocumentPath,
		Scope:               record.Scope,
		CreatedByUserID:     record.CreatedByUserID,
		CreatedByPositionID: record.CreatedByPositionID,
		CreatedAt:           nowUTCString(),
		CurrentState:        record.CurrentState,
	}
	if err := db.Create(&row).Error; err != nil {
		return ports.Correspondence{}, errs.Wrap(err, "insert correspondence")
	}
	return mapCorrespondence(row), nil
}

// AppendStateEntry appends one audit entry after re-deriving the current
// state from the latest entry under the caller's transaction. A stale
// FromState fails with ports.ErrStateConflict and writes nothing.
func (r *CorrespondenceRepository) AppendStateEntry(ctx context.Context, entry ports.StateEntryCreate) (ports.StateEntry, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.StateEntry{}, err
	}

	if _, err := getCorrespondenceByID(db, entry.CorrespondenceID); err != nil {
		return ports.StateEntry{}, err
	}

	latest, found, err := latestEntry(db, entry.CorrespondenceID)
	if err != nil {
		return ports.StateEntry{}, err
	}

	if entry.FromState == nil {
		if found {
			return ports.StateEntry{}, errs.Wrap(ports.ErrStateConflict, "creation entry already exists")
		}
	} else {
		if !found {
			return ports.StateEntry{}, errs.Wrap(ports.ErrStateConflict, "no prior entry for transition")
		}
		if latest.ToState != *entry.FromState {
			return ports.StateEntry{}, errs.Wrapf(
				ports.ErrStateConflict,
				"observed state %d, current state %d", *entry.FromState, latest.ToState,
			)
		}
	}

	row := model.StateEntry{
		CorrespondenceID: entry.CorrespondenceID,
		FromState:        entry.FromState,
		ToState:          entry.ToState,
		ActingUserID:     entry.ActingUserID,
		ActingPositionID: entry.ActingPositionID,
		TargetPositionID: entry.TargetPositionID,
		Notes:            entry.Notes,
		CreatedAt:        nowUTCString(),
	}
	if err := db.Create(&row).Error; err != nil {
		return ports.StateEntry{}, errs.Wrap(err, "insert state entry")
	}

	if err := db.Model(&model.Correspondence{}).
		Where("correspondence_id = ?", entry.CorrespondenceID).
		Update("current_state", entry.ToState).Error; err != nil {
		return ports.StateEntry{}, errs.Wrap(err, "update cached state")
	}

	return mapStateEntry(row), nil
}

func (r *CorrespondenceRepository) UpdateCorrespondenceFields(ctx context.Context, id uint64, edit ports.CorrespondenceEdit) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	result := db.Model(&model.Correspondence{}).
		Where("correspondence_id = ?", id).
		Updates(map[string]any{
			"external_folio":     edit.ExternalFolio,
			"received_date":      edit.ReceivedDate,
			"summary":            edit.Summary,
			"priority_id":        edit.PriorityID,
			"delivery_method_id": edit.DeliveryMethodID,
			"document_path":      edit.DocumentPath,
		})
	if result.Error != nil {
		return errs.Wrap(result.Error, "update correspondence fields")
	}
	if result.RowsAffected == 0 {
		return ports.ErrCorrespondenceNotFound
	}
	return nil
}

func getCorrespondenceByID(db *gorm.DB, id uint64) (ports.Correspondence, error) {
	var row model.Correspondence
	if err := db.Where("correspondence_id = ?", id).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.Correspondence{}, ports.ErrCorrespondenceNotFound
		}
		return ports.Correspondence{}, errs.Wrap(err, "query correspondence by id")
	}
	return mapCorrespondence(row), nil
}

func latestEntry(db *gorm.DB, correspondenceID uint64) (model.StateEntry, bool, error) {
	var row model.StateEntry
	err := db.
		Where("correspondence_id = ?", correspondenceID).
		Order("entry_id desc").
		Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.StateEntry{}, false, nil
		}
		return model.StateEntry{}, false, errs.Wrap(err, "query latest state entry")
	}
	return row, true, nil
}

// latestEntrySubquery selects the rows holding the newest entry per
// correspondence, for "currently assigned to position" filters.
func latestEntrySubquery(db *gorm.DB) *gorm.DB {
	newest := db.Session(&gorm.Session{NewDB: true}).
		Model(&model.StateEntry{}).
		Select("max(entry_id)").
		Group("correspondence_id")
	return db.Session(&gorm.Session{NewDB: true}).
		Model(&model.StateEntry{}).
		Where("entry_id IN (?)", newest)
}

func mapCorrespondence(row model.Correspondence) ports.Correspondence {
	return ports.Correspondence{
		CorrespondenceID:    row.CorrespondenceID,
		SystemFolio:         row.SystemFolio,
		ExternalFolio:       row.ExternalFolio,
		ReceivedDate:        row.ReceivedDate,
		Summary:             row.Summary,
		PriorityID:          row.PriorityID,
		DeliveryMethodID:    row.DeliveryMethodID,
		DocumentPath:        row.DocumentPath,
		Scope:               row.Scope,
		CreatedByUserID:     row.CreatedByUserID,
		CreatedByPositionID: row.CreatedByPositionID,
		CreatedAt:           row.CreatedAt,
		CurrentState:        row.CurrentState,
	}
}

func mapStateEntry(row model.StateEntry) ports.StateEntry {
	return ports.StateEntry{
		EntryID:          row.EntryID,
		CorrespondenceID: row.CorrespondenceID,
		FromState:        row.FromState,
		ToState:          row.ToState,
		ActingUserID:     row.ActingUserID,
		ActingPositionID: row.ActingPositionID,
		TargetPositionID: row.TargetPositionID,
		Notes:            row.Notes,
		CreatedAt:        row.CreatedAt,
	}
}

func nowUTCString() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}
