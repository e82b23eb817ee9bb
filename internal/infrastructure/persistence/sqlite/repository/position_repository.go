package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"promette/internal/errs"
	"promette/internal/infrastructure/persistence/sqlite/model"
	"promette/internal/ports"
)

// PositionRepository reads the organizational position directory. No
// write operations on purpose: the org chart is maintained elsewhere.
type PositionRepository struct {
	db *gorm.DB
}

var _ ports.PositionDirectory = (*PositionRepository)(nil)

func NewPositionRepository(db *gorm.DB) *PositionRepository {
	return &PositionRepository{db: db}
}

func (r *PositionRepository) dbFromContext(ctx context.Context) (*gorm.DB, error) {
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

func (r *PositionRepository) SearchPositions(ctx context.Context, term string, limit int) ([]ports.RoutablePosition, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	query := db.Model(&model.Position{}).Where("active = ?", true)
	if trimmed := strings.TrimSpace(term); trimmed != "" {
		pattern := "%" + strings.ToLower(trimmed) + "%"
		query = query.Where("lower(title) LIKE ? OR lower(holder_name) LIKE ?", pattern, pattern)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	var rows []model.Position
	if err := query.Order("position_id asc").Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query positions")
	}

	items := make([]ports.RoutablePosition, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapPosition(row))
	}
	return items, nil
}

func (r *PositionRepository) GetPosition(ctx context.Context, positionID uint64) (ports.RoutablePosition, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.RoutablePosition{}, err
	}

	var row model.Position
	if err := db.Where("position_id = ?", positionID).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.RoutablePosition{}, ports.ErrPositionNotFound
		}
		return ports.RoutablePosition{}, errs.Wrap(err, "query position by id")
	}
	return mapPosition(row), nil
}

func mapPosition(row model.Position) ports.RoutablePosition {
	return ports.RoutablePosition{
		PositionID:   row.PositionID,
		Title:        row.Title,
		HolderUserID: row.HolderUserID,
		HolderName:   row.HolderName,
		Area:         row.Area,
		Active:       row.Active,
	}
}
