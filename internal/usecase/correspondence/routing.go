package correspondence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	domaincorr "promette/internal/domain/correspondence"
	"promette/internal/errs"
	"promette/internal/ports"
)

const (
	defaultPositionSearchLimit = 20
	positionSearchCacheTTL     = 5 * time.Minute
)

// SearchRoutablePositions is step one of the routing protocol: a free-text
// term produces disambiguation candidates. The transition call itself only
// ever accepts an explicit position id (step two), so ambiguous text never
// reaches the state machine.
func (s *Service) SearchRoutablePositions(ctx context.Context, term string, limit int) ([]ports.RoutablePosition, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, errs.Wrap(err, "check context")
	}
	if s.directory == nil {
		return nil, errors.New("position directory is required")
	}

	if limit <= 0 {
		limit = defaultPositionSearchLimit
	}
	trimmed := strings.ToLower(strings.TrimSpace(term))

	cacheKey := cachePositionSearchKey(trimmed, limit)
	if s.cache != nil {
		if raw, found, err := s.cache.Get(ctx, cacheKey); err == nil && found {
			var cached []ports.RoutablePosition
			if err := json.Unmarshal([]byte(raw), &cached); err == nil {
				return cached, nil
			}
		}
	}

	candidates, err := s.directory.SearchPositions(ctx, trimmed, limit)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if raw, err := json.Marshal(candidates); err == nil {
			_ = s.cache.Set(ctx, cacheKey, string(raw), positionSearchCacheTTL)
		}
	}
	return candidates, nil
}

// ValidatePosition confirms a single routable position: it must exist and
// be active. Used for derivation targets and for the creator's own acting
// position.
func (s *Service) ValidatePosition(ctx context.Context, positionID uint64) (ports.RoutablePosition, error) {
	if ctx == nil {
		return ports.RoutablePosition{}, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return ports.RoutablePosition{}, errs.Wrap(err, "check context")
	}
	return s.validatePositionIn(ctx, positionID)
}

func (s *Service) validatePositionIn(ctx context.Context, positionID uint64) (ports.RoutablePosition, error) {
	if s.directory == nil {
		return ports.RoutablePosition{}, errors.New("position directory is required")
	}

	position, err := s.directory.GetPosition(ctx, positionID)
	if err != nil {
		if errors.Is(err, ports.ErrPositionNotFound) {
			return ports.RoutablePosition{}, fmt.Errorf("%w: %d", domaincorr.ErrUnknownPosition, positionID)
		}
		return ports.RoutablePosition{}, err
	}
	if !position.Active {
		return ports.RoutablePosition{}, fmt.Errorf("%w: %d is inactive", domaincorr.ErrUnknownPosition, positionID)
	}
	return position, nil
}
