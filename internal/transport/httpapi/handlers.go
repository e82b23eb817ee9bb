package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	domaincorr "promette/internal/domain/correspondence"
	"promette/internal/ports"
	correspondenceuc "promette/internal/usecase/correspondence"
)

type handler struct {
	svc *correspondenceuc.Service
}

type correspondenceDTO struct {
	CorrespondenceID    uint64 `json:"correspondence_id"`
	SystemFolio         string `json:"system_folio"`
	ExternalFolio       string `json:"external_folio,omitempty"`
	ReceivedDate        string `json:"received_date"`
	Summary             string `json:"summary"`
	PriorityID          uint64 `json:"priority_id"`
	DeliveryMethodID    uint64 `json:"delivery_method_id"`
	DocumentPath        string `json:"document_path,omitempty"`
	Scope               string `json:"scope"`
	CreatedByUserID     uint64 `json:"created_by_user_id"`
	CreatedByPositionID uint64 `json:"created_by_position_id"`
	CreatedAt           string `json:"created_at"`
	State               int    `json:"state"`
	StateName           string `json:"state_name,omitempty"`
}

type entryDTO struct {
	EntryID          uint64  `json:"entry_id"`
	FromState        *int    `json:"from_state"`
	ToState          int     `json:"to_state"`
	ActingUserID     uint64  `json:"acting_user_id"`
	ActingPositionID uint64  `json:"acting_position_id"`
	TargetPositionID *uint64 `json:"target_position_id,omitempty"`
	Notes            string  `json:"notes,omitempty"`
	Timestamp        string  `json:"timestamp"`
}

type detailResponse struct {
	Record  correspondenceDTO `json:"record"`
	Entries []entryDTO        `json:"entries"`
}

func toCorrespondenceDTO(record ports.Correspondence, stateName string) correspondenceDTO {
	return correspondenceDTO{
		CorrespondenceID:    record.CorrespondenceID,
		SystemFolio:         record.SystemFolio,
		ExternalFolio:       record.ExternalFolio,
		ReceivedDate:        record.ReceivedDate,
		Summary:             record.Summary,
		PriorityID:          record.PriorityID,
		DeliveryMethodID:    record.DeliveryMethodID,
		DocumentPath:        record.DocumentPath,
		Scope:               record.Scope,
		CreatedByUserID:     record.CreatedByUserID,
		CreatedByPositionID: record.CreatedByPositionID,
		CreatedAt:           record.CreatedAt,
		State:               record.CurrentState,
		StateName:           stateName,
	}
}

func toEntryDTO(entry ports.StateEntry) entryDTO {
	return entryDTO{
		EntryID:          entry.EntryID,
		FromState:        entry.FromState,
		ToState:          entry.ToState,
		ActingUserID:     entry.ActingUserID,
		ActingPositionID: entry.ActingPositionID,
		TargetPositionID: entry.TargetPositionID,
		Notes:            entry.Notes,
		Timestamp:        entry.CreatedAt,
	}
}

func toDetailResponse(detail correspondenceuc.Detail) detailResponse {
	entries := make([]entryDTO, 0, len(detail.Entries))
	for _, entry := range detail.Entries {
		entries = append(entries, toEntryDTO(entry))
	}
	return detailResponse{
		Record:  toCorrespondenceDTO(detail.Record, detail.StateName),
		Entries: entries,
	}
}

func correspondenceID(r *http.Request) (uint64, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}

type createRequest struct {
	Scope            string `json:"scope"`
	ExternalFolio    string `json:"external_folio"`
	ReceivedDate     string `json:"received_date"`
	Summary          string `json:"summary"`
	PriorityID       uint64 `json:"priority_id"`
	DeliveryMethodID uint64 `json:"delivery_method_id"`
	DocumentPath     string `json:"document_path"`
	ActingUserID     uint64 `json:"acting_user_id"`
	ActingPositionID uint64 `json:"acting_position_id"`
	Notes            string `json:"notes"`
}

func (h *handler) create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	detail, err := h.svc.CreateCorrespondence(r.Context(), correspondenceuc.CreateInput{
		Scope:            req.Scope,
		ExternalFolio:    req.ExternalFolio,
		ReceivedDate:     req.ReceivedDate,
		Summary:          req.Summary,
		PriorityID:       req.PriorityID,
		DeliveryMethodID: req.DeliveryMethodID,
		DocumentPath:     req.DocumentPath,
		ActingUserID:     req.ActingUserID,
		ActingPositionID: req.ActingPositionID,
		Notes:            req.Notes,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toDetailResponse(detail))
}

type searchRequest struct {
	ReceivedFrom       string `json:"received_from"`
	ReceivedTo         string `json:"received_to"`
	PriorityID         uint64 `json:"priority_id"`
	DeliveryMethodID   uint64 `json:"delivery_method_id"`
	States             []int  `json:"states"`
	Scope              string `json:"scope"`
	CreatedByUserID    uint64 `json:"created_by_user_id"`
	AssignedPositionID uint64 `json:"assigned_position_id"`
	Limit              int    `json:"limit"`
}

type searchItemDTO struct {
	Record correspondenceDTO `json:"record"`
	Latest entryDTO          `json:"latest_entry"`
}

type searchResponse struct {
	Items []searchItemDTO `json:"items"`
}

func (h *handler) search(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	items, err := h.svc.Search(r.Context(), ports.CorrespondenceFilter{
		ReceivedFrom:       req.ReceivedFrom,
		ReceivedTo:         req.ReceivedTo,
		PriorityID:         req.PriorityID,
		DeliveryMethodID:   req.DeliveryMethodID,
		States:             req.States,
		Scope:              req.Scope,
		CreatedByUserID:    req.CreatedByUserID,
		AssignedPositionID: req.AssignedPositionID,
		Limit:              req.Limit,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	out := searchResponse{Items: make([]searchItemDTO, 0, len(items))}
	for _, item := range items {
		out.Items = append(out.Items, searchItemDTO{
			Record: toCorrespondenceDTO(item.Record, item.StateName),
			Latest: toEntryDTO(item.Latest),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := correspondenceID(r)
	if !ok {
		writeBadRequest(w, "invalid correspondence id")
		return
	}

	detail, err := h.svc.GetDetail(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toDetailResponse(detail))
}

type transitionRequest struct {
	ToState          int     `json:"to_state"`
	Notes            string  `json:"notes"`
	ActingUserID     uint64  `json:"acting_user_id"`
	ActingPositionID uint64  `json:"acting_position_id"`
	TargetPositionID *uint64 `json:"target_position_id"`
}

type transitionResponse struct {
	Entry     entryDTO          `json:"entry"`
	Record    correspondenceDTO `json:"record"`
	Duplicate bool              `json:"duplicate"`
}

func (h *handler) transition(w http.ResponseWriter, r *http.Request) {
	id, ok := correspondenceID(r)
	if !ok {
		writeBadRequest(w, "invalid correspondence id")
		return
	}

	var req transitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	result, err := h.svc.Transition(r.Context(), correspondenceuc.TransitionInput{
		CorrespondenceID: id,
		ToState:          req.ToState,
		Notes:            req.Notes,
		ActingUserID:     req.ActingUserID,
		ActingPositionID: req.ActingPositionID,
		TargetPositionID: req.TargetPositionID,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	stateName := h.svc.Catalog().StateName(domaincorr.State(result.Record.CurrentState))
	writeJSON(w, http.StatusOK, transitionResponse{
		Entry:     toEntryDTO(result.Entry),
		Record:    toCorrespondenceDTO(result.Record, stateName),
		Duplicate: result.Duplicate,
	})
}

type editRequest struct {
	ActingUserID     uint64 `json:"acting_user_id"`
	ExternalFolio    string `json:"external_folio"`
	ReceivedDate     string `json:"received_date"`
	Summary          string `json:"summary"`
	PriorityID       uint64 `json:"priority_id"`
	DeliveryMethodID uint64 `json:"delivery_method_id"`
	DocumentPath     string `json:"document_path"`
}

func (h *handler) edit(w http.ResponseWriter, r *http.Request) {
	id, ok := correspondenceID(r)
	if !ok {
		writeBadRequest(w, "invalid correspondence id")
		return
	}

	var req editRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	updated, err := h.svc.EditCorrespondence(r.Context(), correspondenceuc.EditInput{
		CorrespondenceID: id,
		ActingUserID:     req.ActingUserID,
		Edit: ports.CorrespondenceEdit{
			ExternalFolio:    req.ExternalFolio,
			ReceivedDate:     req.ReceivedDate,
			Summary:          req.Summary,
			PriorityID:       req.PriorityID,
			DeliveryMethodID: req.DeliveryMethodID,
			DocumentPath:     req.DocumentPath,
		},
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	stateName := h.svc.Catalog().StateName(domaincorr.State(updated.CurrentState))
	writeJSON(w, http.StatusOK, toCorrespondenceDTO(updated, stateName))
}

func (h *handler) receipt(w http.ResponseWriter, r *http.Request) {
	id, ok := correspondenceID(r)
	if !ok {
		writeBadRequest(w, "invalid correspondence id")
		return
	}

	receipt, err := h.svc.BuildReceipt(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, receipt)
}

type summaryResponse struct {
	Areas []ports.ScopeSummary `json:"areas"`
}

func (h *handler) summary(w http.ResponseWriter, r *http.Request) {
	asOf := strings.TrimSpace(r.URL.Query().Get("as_of"))

	var positionID uint64
	if raw := strings.TrimSpace(r.URL.Query().Get("position")); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			writeBadRequest(w, "invalid position")
			return
		}
		positionID = parsed
	}

	areas, err := h.svc.SummaryByArea(r.Context(), correspondenceuc.SummaryInput{
		AsOf:       asOf,
		PositionID: positionID,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summaryResponse{Areas: areas})
}

type positionDTO struct {
	PositionID   uint64 `json:"position_id"`
	Title        string `json:"title"`
	HolderUserID uint64 `json:"holder_user_id"`
	HolderName   string `json:"holder_name"`
	Area         string `json:"area,omitempty"`
}

type positionSearchResponse struct {
	Candidates []positionDTO `json:"candidates"`
}

func (h *handler) searchPositions(w http.ResponseWriter, r *http.Request) {
	term := strings.TrimSpace(r.URL.Query().Get("q"))
	if term == "" {
		writeBadRequest(w, "q is required")
		return
	}

	limit := 0
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			writeBadRequest(w, "invalid limit")
			return
		}
		limit = parsed
	}

	candidates, err := h.svc.SearchRoutablePositions(r.Context(), term, limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	out := positionSearchResponse{Candidates: make([]positionDTO, 0, len(candidates))}
	for _, candidate := range candidates {
		out.Candidates = append(out.Candidates, positionDTO{
			PositionID:   candidate.PositionID,
			Title:        candidate.Title,
			HolderUserID: candidate.HolderUserID,
			HolderName:   candidate.HolderName,
			Area:         candidate.Area,
		})
	}
	writeJSON(w, http.StatusOK, out)
}
