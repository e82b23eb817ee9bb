package ports

import (
	"context"
	"errors"
)

var ErrPositionNotFound = errors.New("position not found")

// RoutablePosition is one organizational position a correspondence can be
// routed to: a person acting in a role, resolved from the read-only
// position directory.
type RoutablePosition struct {
	PositionID   uint64
	Title        string
	HolderUserID uint64
	HolderName   string
	Area         string
	Active       bool
}

// PositionDirectory resolves routable positions. This core only reads it;
// the org chart is maintained elsewhere.
type PositionDirectory interface {
	SearchPositions(ctx context.Context, term string, limit int) ([]RoutablePosition, error)
	GetPosition(ctx context.Context, positionID uint64) (RoutablePosition, error)
}
