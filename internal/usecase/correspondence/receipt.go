package correspondence

import (
	"context"

	domaincorr "promette/internal/domain/correspondence"
)

// Receipt is the data handed to the external PDF renderer; this core
// never renders documents itself.
type Receipt struct {
	SystemFolio   string        `json:"system_folio"`
	ExternalFolio string        `json:"external_folio,omitempty"`
	Scope         string        `json:"scope"`
	ReceivedDate  string        `json:"received_date"`
	Summary       string        `json:"summary"`
	CreatedAt     string        `json:"created_at"`
	CreatedBy     uint64        `json:"created_by"`
	CurrentState  string        `json:"current_state"`
	History       []ReceiptLine `json:"history"`
}

type ReceiptLine struct {
	State            string  `json:"state"`
	Notes            string  `json:"notes,omitempty"`
	ActingUserID     uint64  `json:"acting_user_id"`
	TargetPositionID *uint64 `json:"target_position_id,omitempty"`
	Timestamp        string  `json:"timestamp"`
}

// BuildReceipt assembles the receipt payload for one correspondence.
func (s *Service) BuildReceipt(ctx context.Context, correspondenceID uint64) (Receipt, error) {
	detail, err := s.GetDetail(ctx, correspondenceID)
	if err != nil {
		return Receipt{}, err
	}

	catalog := s.Catalog()
	history := make([]ReceiptLine, 0, len(detail.Entries))
	for _, entry := range detail.Entries {
		history = append(history, ReceiptLine{
			State:            catalog.StateName(domaincorr.State(entry.ToState)),
			Notes:            entry.Notes,
			ActingUserID:     entry.ActingUserID,
			TargetPositionID: entry.TargetPositionID,
			Timestamp:        entry.CreatedAt,
		})
	}

	return Receipt{
		SystemFolio:   detail.Record.SystemFolio,
		ExternalFolio: detail.Record.ExternalFolio,
		Scope:         detail.Record.Scope,
		ReceivedDate:  detail.Record.ReceivedDate,
		Summary:       detail.Record.Summary,
		CreatedAt:     detail.Record.CreatedAt,
		CreatedBy:     detail.Record.CreatedByUserID,
		CurrentState:  detail.StateName,
		History:       history,
	}, nil
}
