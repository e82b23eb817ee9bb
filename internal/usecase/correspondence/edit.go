package correspondence

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"promette/internal/bootstrap/logging"
	domaincorr "promette/internal/domain/correspondence"
	"promette/internal/errs"
	"promette/internal/ports"
)

// EditCorrespondence replaces the creator-editable fields. Permitted only
// while the current state is Received (checked against the audit trail,
// not the cached column) and only for the creating user.
func (s *Service) EditCorrespondence(ctx context.Context, input EditInput) (ports.Correspondence, error) {
	if ctx == nil {
		return ports.Correspondence{}, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return ports.Correspondence{}, errs.Wrap(err, "check context")
	}
	if s.repo == nil {
		return ports.Correspondence{}, errors.New("correspondence repository is required")
	}
	if s.uow == nil {
		return ports.Correspondence{}, errors.New("unit of work is required")
	}
	if input.ActingUserID == 0 {
		return ports.Correspondence{}, domaincorr.ErrActorRequired
	}

	edit := ports.CorrespondenceEdit{
		ExternalFolio:    strings.TrimSpace(input.Edit.ExternalFolio),
		ReceivedDate:     strings.TrimSpace(input.Edit.ReceivedDate),
		Summary:          strings.TrimSpace(input.Edit.Summary),
		PriorityID:       input.Edit.PriorityID,
		DeliveryMethodID: input.Edit.DeliveryMethodID,
		DocumentPath:     strings.TrimSpace(input.Edit.DocumentPath),
	}
	if err := domaincorr.ValidateSummary(edit.Summary); err != nil {
		return ports.Correspondence{}, err
	}
	if err := domaincorr.ValidateReceivedDate(edit.ReceivedDate); err != nil {
		return ports.Correspondence{}, err
	}

	var updated ports.Correspondence

	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		record, err := s.repo.GetCorrespondence(txCtx, input.CorrespondenceID)
		if err != nil {
			return err
		}

		latest, err := s.repo.LatestStateEntry(txCtx, input.CorrespondenceID)
		if err != nil {
			return err
		}
		if domaincorr.State(latest.ToState) != domaincorr.InitialState {
			return fmt.Errorf("%w: current state is %s",
				domaincorr.ErrEditLocked, s.Catalog().StateName(domaincorr.State(latest.ToState)))
		}
		if record.CreatedByUserID != input.ActingUserID {
			return domaincorr.ErrNotCreator
		}

		ok, err := s.repo.PriorityExists(txCtx, edit.PriorityID)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: %d", domaincorr.ErrUnknownPriority, edit.PriorityID)
		}
		ok, err = s.repo.DeliveryMethodExists(txCtx, edit.DeliveryMethodID)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: %d", domaincorr.ErrUnknownDeliveryMethod, edit.DeliveryMethodID)
		}

		if err := s.repo.UpdateCorrespondenceFields(txCtx, input.CorrespondenceID, edit); err != nil {
			return err
		}

		updated, err = s.repo.GetCorrespondence(txCtx, input.CorrespondenceID)
		return err
	}); err != nil {
		return ports.Correspondence{}, err
	}

	logging.Info(ctx, "correspondence edited",
		slog.Uint64("correspondence_id", input.CorrespondenceID),
		slog.Uint64("acting_user_id", input.ActingUserID),
	)
	return updated, nil
}
