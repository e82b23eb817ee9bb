package correspondence

import "errors"

var (
	ErrUnknownState      = errors.New("unknown correspondence state")
	ErrIllegalTransition = errors.New("transition is not allowed from the current state")
	ErrMissingNotes      = errors.New("transition notes are required")
	ErrMissingRecipient  = errors.New("derivation requires a target position")
	ErrUnknownPosition   = errors.New("target position is unknown or inactive")
	ErrNotCreator        = errors.New("only the creating user may edit the correspondence")
	ErrEditLocked        = errors.New("correspondence can no longer be edited in its current state")
	ErrActorRequired     = errors.New("acting user and position are required")

	ErrUnknownScope          = errors.New("unknown folio scope")
	ErrSequenceExhausted     = errors.New("folio sequence exhausted for scope")
	ErrInvalidReceivedDate   = errors.New("received date must be YYYY-MM-DD")
	ErrSummaryRequired       = errors.New("summary is required")
	ErrSummaryTooLong        = errors.New("summary exceeds the maximum length")
	ErrUnknownPriority       = errors.New("unknown priority")
	ErrUnknownDeliveryMethod = errors.New("unknown delivery method")
)
