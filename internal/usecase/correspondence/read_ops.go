package correspondence

import (
	"context"
	"errors"
	"log/slog"

	"promette/internal/bootstrap/logging"
	domaincorr "promette/internal/domain/correspondence"
	"promette/internal/errs"
	"promette/internal/ports"
)

// GetDetail returns one correspondence with its full audit history. The
// reported state comes from the latest entry; a cached column that
// disagrees is a data-integrity bug and is logged loudly.
func (s *Service) GetDetail(ctx context.Context, correspondenceID uint64) (Detail, error) {
	if ctx == nil {
		return Detail{}, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return Detail{}, errs.Wrap(err, "check context")
	}
	if s.repo == nil {
		return Detail{}, errors.New("correspondence repository is required")
	}

	record, err := s.repo.GetCorrespondence(ctx, correspondenceID)
	if err != nil {
		return Detail{}, err
	}

	entries, err := s.repo.ListStateEntries(ctx, correspondenceID)
	if err != nil {
		return Detail{}, err
	}
	if len(entries) == 0 {
		return Detail{}, errs.Wrap(ports.ErrStateConflict, "correspondence has no audit entries")
	}

	current := entries[len(entries)-1].ToState
	if record.CurrentState != current {
		logging.Error(ctx, "cached state diverged from audit trail",
			slog.Uint64("correspondence_id", correspondenceID),
			slog.Int("cached_state", record.CurrentState),
			slog.Int("derived_state", current),
		)
		record.CurrentState = current
	}

	return Detail{
		Record:    record,
		Entries:   entries,
		StateName: s.Catalog().StateName(domaincorr.State(current)),
	}, nil
}

// Search filters correspondence records and embeds each record's latest
// audit entry.
func (s *Service) Search(ctx context.Context, filter ports.CorrespondenceFilter) ([]SearchItem, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, errs.Wrap(err, "check context")
	}
	if s.repo == nil {
		return nil, errors.New("correspondence repository is required")
	}

	records, err := s.repo.SearchCorrespondence(ctx, filter)
	if err != nil {
		return nil, err
	}

	catalog := s.Catalog()
	items := make([]SearchItem, 0, len(records))
	for _, record := range records {
		latest, err := s.repo.LatestStateEntry(ctx, record.CorrespondenceID)
		if err != nil {
			return nil, err
		}
		items = append(items, SearchItem{
			Record:    record,
			Latest:    latest,
			StateName: catalog.StateName(domaincorr.State(latest.ToState)),
		})
	}
	return items, nil
}
