package ports

import "context"

// TransitionEvent describes one committed state change. Published after
// the transaction commits, best-effort only.
type TransitionEvent struct {
	CorrespondenceID uint64  `json:"correspondence_id"`
	SystemFolio      string  `json:"system_folio"`
	FromState        *int    `json:"from_state"`
	ToState          int     `json:"to_state"`
	ActingUserID     uint64  `json:"acting_user_id"`
	ActingPositionID uint64  `json:"acting_position_id"`
	TargetPositionID *uint64 `json:"target_position_id,omitempty"`
	OccurredAt       string  `json:"occurred_at"`
}

// TransitionNotifier fans committed transitions out to downstream inboxes.
// A publish failure must never fail the request that caused it.
type TransitionNotifier interface {
	PublishTransition(ctx context.Context, event TransitionEvent) error
}
