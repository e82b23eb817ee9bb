package correspondence

import (
	"context"
	"errors"

	domaincorr "promette/internal/domain/correspondence"
	"promette/internal/errs"
	"promette/internal/ports"
)

// SummaryByArea aggregates total/resolved/derived counts per folio scope.
// The external report renderer consumes the result as-is.
func (s *Service) SummaryByArea(ctx context.Context, input SummaryInput) ([]ports.ScopeSummary, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, errs.Wrap(err, "check context")
	}
	if s.repo == nil {
		return nil, errors.New("correspondence repository is required")
	}

	if input.AsOf != "" {
		if err := domaincorr.ValidateReceivedDate(input.AsOf); err != nil {
			return nil, err
		}
	}

	return s.repo.SummaryByScope(ctx, ports.SummaryQuery{
		AsOf:          input.AsOf,
		PositionID:    input.PositionID,
		ResolvedState: int(domaincorr.StateResolved),
		DerivedState:  int(domaincorr.StateDerived),
	})
}
