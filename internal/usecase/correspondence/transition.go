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

// Transition applies one state change. All rule checks and the append run
// inside a single unit of work; re-submitting the current state is an
// idempotent no-op so client retries after a timeout cannot duplicate a
// transition.
func (s *Service) Transition(ctx context.Context, input TransitionInput) (TransitionResult, error) {
	if ctx == nil {
		return TransitionResult{}, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return TransitionResult{}, errs.Wrap(err, "check context")
	}
	if s.repo == nil {
		return TransitionResult{}, errors.New("correspondence repository is required")
	}
	if s.uow == nil {
		return TransitionResult{}, errors.New("unit of work is required")
	}

	catalog := s.Catalog()

	to := domaincorr.State(input.ToState)
	if !catalog.Known(to) {
		return TransitionResult{}, fmt.Errorf("%w: %d", domaincorr.ErrUnknownState, input.ToState)
	}

	notes := strings.TrimSpace(input.Notes)
	if notes == "" {
		return TransitionResult{}, domaincorr.ErrMissingNotes
	}
	if input.ActingUserID == 0 || input.ActingPositionID == 0 {
		return TransitionResult{}, domaincorr.ErrActorRequired
	}

	var result TransitionResult

	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		record, err := s.repo.GetCorrespondence(txCtx, input.CorrespondenceID)
		if err != nil {
			return err
		}

		latest, err := s.repo.LatestStateEntry(txCtx, input.CorrespondenceID)
		if err != nil {
			return err
		}
		current := domaincorr.State(latest.ToState)

		if to == current {
			// Idempotent re-confirmation: nothing is written. Re-submitting
			// a deriving state only counts as a retry when it names the same
			// recipient; a different recipient is a new routing hop and goes
			// through the full edge and recipient checks below.
			if !catalog.RequiresRecipient(to) || samePosition(input.TargetPositionID, latest.TargetPositionID) {
				result = TransitionResult{Entry: latest, Record: record, Duplicate: true}
				return nil
			}
		}

		if !catalog.CanTransition(current, to) {
			return fmt.Errorf("%w: %s -> %s",
				domaincorr.ErrIllegalTransition, catalog.StateName(current), catalog.StateName(to))
		}

		var target *uint64
		if catalog.RequiresRecipient(to) {
			if input.TargetPositionID == nil || *input.TargetPositionID == 0 {
				return domaincorr.ErrMissingRecipient
			}
			if _, err := s.validatePositionIn(txCtx, *input.TargetPositionID); err != nil {
				return err
			}
			target = input.TargetPositionID
		}

		fromState := int(current)
		entry, err := s.repo.AppendStateEntry(txCtx, ports.StateEntryCreate{
			CorrespondenceID: input.CorrespondenceID,
			FromState:        &fromState,
			ToState:          int(to),
			ActingUserID:     input.ActingUserID,
			ActingPositionID: input.ActingPositionID,
			TargetPositionID: target,
			Notes:            notes,
		})
		if err != nil {
			return err
		}

		record.CurrentState = int(to)
		result = TransitionResult{Entry: entry, Record: record}
		return nil
	}); err != nil {
		return TransitionResult{}, err
	}

	if result.Duplicate {
		logging.Info(ctx, "transition re-confirmed",
			slog.Uint64("correspondence_id", input.CorrespondenceID),
			slog.String("state", catalog.StateName(to)),
		)
		return result, nil
	}

	logging.Info(ctx, "correspondence transitioned",
		slog.Uint64("correspondence_id", input.CorrespondenceID),
		slog.String("from", catalog.StateName(domaincorr.State(derefInt(result.Entry.FromState)))),
		slog.String("to", catalog.StateName(to)),
	)

	s.setCacheBestEffort(ctx, cacheStateKey(input.CorrespondenceID), catalog.StateName(to))
	s.publishTransitionBestEffort(ctx, result)

	return result, nil
}

func (s *Service) publishTransitionBestEffort(ctx context.Context, result TransitionResult) {
	if s.notifier == nil {
		return
	}

	err := s.notifier.PublishTransition(ctx, ports.TransitionEvent{
		CorrespondenceID: result.Record.CorrespondenceID,
		SystemFolio:      result.Record.SystemFolio,
		FromState:        result.Entry.FromState,
		ToState:          result.Entry.ToState,
		ActingUserID:     result.Entry.ActingUserID,
		ActingPositionID: result.Entry.ActingPositionID,
		TargetPositionID: result.Entry.TargetPositionID,
		OccurredAt:       result.Entry.CreatedAt,
	})
	if err != nil {
		logging.Warn(ctx, "transition notification failed",
			slog.Uint64("correspondence_id", result.Record.CorrespondenceID),
			slog.Any("err", errs.Loggable(err)),
		)
	}
}

func samePosition(a *uint64, b *uint64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func derefInt(ptr *int) int {
	if ptr == nil {
		return 0
	}
	return *ptr
}
