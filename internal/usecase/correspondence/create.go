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

// CreateCorrespondence mints the system folio and persists the record
// together with its Received audit entry in one transaction. A client
// disconnect rolls the whole creation back; a reserved folio without a
// record cannot be observed.
func (s *Service) CreateCorrespondence(ctx context.Context, input CreateInput) (Detail, error) {
	if ctx == nil {
		return Detail{}, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return Detail{}, errs.Wrap(err, "check context")
	}
	if s.repo == nil {
		return Detail{}, errors.New("correspondence repository is required")
	}
	if s.uow == nil {
		return Detail{}, errors.New("unit of work is required")
	}

	catalog := s.Catalog()

	scope := strings.TrimSpace(input.Scope)
	if !catalog.KnownScope(scope) {
		return Detail{}, fmt.Errorf("%w: %q", domaincorr.ErrUnknownScope, scope)
	}

	summary := strings.TrimSpace(input.Summary)
	if err := domaincorr.ValidateSummary(summary); err != nil {
		return Detail{}, err
	}
	if err := domaincorr.ValidateReceivedDate(strings.TrimSpace(input.ReceivedDate)); err != nil {
		return Detail{}, err
	}
	if input.ActingUserID == 0 || input.ActingPositionID == 0 {
		return Detail{}, domaincorr.ErrActorRequired
	}

	if _, err := s.ValidatePosition(ctx, input.ActingPositionID); err != nil {
		return Detail{}, err
	}

	var record ports.Correspondence
	var entry ports.StateEntry

	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		ok, err := s.repo.PriorityExists(txCtx, input.PriorityID)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: %d", domaincorr.ErrUnknownPriority, input.PriorityID)
		}

		ok, err = s.repo.DeliveryMethodExists(txCtx, input.DeliveryMethodID)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: %d", domaincorr.ErrUnknownDeliveryMethod, input.DeliveryMethodID)
		}

		seq, err := s.repo.NextFolioSeq(txCtx, scope)
		if err != nil {
			return err
		}
		folio, err := domaincorr.FormatFolio(scope, seq)
		if err != nil {
			return err
		}

		record, err = s.repo.CreateCorrespondence(txCtx, ports.Correspondence{
			SystemFolio:         folio,
			ExternalFolio:       strings.TrimSpace(input.ExternalFolio),
			ReceivedDate:        strings.TrimSpace(input.ReceivedDate),
			Summary:             summary,
			PriorityID:          input.PriorityID,
			DeliveryMethodID:    input.DeliveryMethodID,
			DocumentPath:        strings.TrimSpace(input.DocumentPath),
			Scope:               scope,
			CreatedByUserID:     input.ActingUserID,
			CreatedByPositionID: input.ActingPositionID,
			CurrentState:        int(domaincorr.InitialState),
		})
		if err != nil {
			return err
		}

		entry, err = s.repo.AppendStateEntry(txCtx, ports.StateEntryCreate{
			CorrespondenceID: record.CorrespondenceID,
			FromState:        nil,
			ToState:          int(domaincorr.InitialState),
			ActingUserID:     input.ActingUserID,
			ActingPositionID: input.ActingPositionID,
			Notes:            strings.TrimSpace(input.Notes),
		})
		return err
	}); err != nil {
		return Detail{}, err
	}

	logging.Info(ctx, "correspondence created",
		slog.Uint64("correspondence_id", record.CorrespondenceID),
		slog.String("system_folio", record.SystemFolio),
		slog.String("scope", record.Scope),
	)

	s.setCacheBestEffort(ctx, cacheStateKey(record.CorrespondenceID), catalog.StateName(domaincorr.InitialState))

	return Detail{
		Record:    record,
		Entries:   []ports.StateEntry{entry},
		StateName: catalog.StateName(domaincorr.InitialState),
	}, nil
}
