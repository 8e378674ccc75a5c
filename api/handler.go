package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi"
	"github.com/rs/zerolog/hlog"
	"github.com/tanpawarit/hcp-interaction-logger/agent/agents/orchestrator"
	contractx "github.com/tanpawarit/hcp-interaction-logger/agent/contract"
	"github.com/tanpawarit/hcp-interaction-logger/interaction"
)

const (
	msgLogged       = "Interaction logged successfully."
	msgUpdated      = "Interaction updated successfully."
	msgNotFound     = "Interaction not found."
	msgNoFetchMatch = "Could not find a matching interaction."
	msgNeedHCPName  = "hcpName is required."
)

// ChatWorkflows runs one chat turn per call.
type ChatWorkflows interface {
	LogFromChat(ctx context.Context, req orchestrator.Request) (contractx.TurnResult, error)
	UpdateFromChat(ctx context.Context, req orchestrator.Request) (contractx.TurnResult, error)
	FetchFromChat(ctx context.Context, req orchestrator.Request) (contractx.TurnResult, error)
}

type Handler struct {
	store     interaction.Store
	chat      ChatWorkflows
	extractor contractx.Extractor
}

func NewHandler(store interaction.Store, chat ChatWorkflows, extractor contractx.Extractor) (*Handler, error) {
	if store == nil {
		return nil, errors.New("interaction store is required")
	}
	if chat == nil {
		return nil, errors.New("chat workflows are required")
	}
	if extractor == nil {
		return nil, errors.New("extractor is required")
	}
	return &Handler{store: store, chat: chat, extractor: extractor}, nil
}

func (h *Handler) LogFromForm(w http.ResponseWriter, r *http.Request) {
	var body recordFields
	if err := decodeJSON(r, &body); err != nil {
		writeDetail(w, r, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}
	if strings.TrimSpace(body.HCPName) == "" {
		writeJSON(w, r, http.StatusBadRequest, statusResponse{Status: "failure", Message: msgNeedHCPName})
		return
	}

	saved, err := h.store.Insert(r.Context(), body.record(), interaction.MethodForm)
	if err != nil {
		if errors.Is(err, interaction.ErrValidation) {
			writeJSON(w, r, http.StatusBadRequest, statusResponse{Status: "failure", Message: err.Error()})
			return
		}
		writeInternal(w, r, err)
		return
	}

	hlog.FromRequest(r).Info().Int64("interaction_id", saved.ID).Msg("form interaction logged")
	writeJSON(w, r, http.StatusOK, statusResponse{Status: "success", Message: msgLogged, Data: saved})
}

func (h *Handler) LogFromChat(w http.ResponseWriter, r *http.Request) {
	req, ok := h.chatRequest(w, r)
	if !ok {
		return
	}

	out, err := h.chat.LogFromChat(r.Context(), req)
	if err != nil {
		h.writeWorkflowError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, turnResponse{
		Status:        string(out.Status),
		Response:      out.Response,
		InteractionID: out.InteractionID,
	})
}

func (h *Handler) EditInteraction(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeDetail(w, r, http.StatusBadRequest, "interaction id must be an integer")
		return
	}

	var patch interaction.Patch
	if err := decodeJSON(r, &patch); err != nil {
		writeDetail(w, r, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}

	updated, err := h.store.UpdatePartial(r.Context(), id, patch)
	if err != nil {
		if errors.Is(err, interaction.ErrValidation) {
			writeDetail(w, r, http.StatusBadRequest, err.Error())
			return
		}
		writeInternal(w, r, err)
		return
	}
	if !updated {
		writeDetail(w, r, http.StatusNotFound, msgNotFound)
		return
	}
	writeJSON(w, r, http.StatusOK, statusResponse{Status: "success", Message: msgUpdated})
}

func (h *Handler) ListInteractions(w http.ResponseWriter, r *http.Request) {
	recs, err := h.store.ListAll(r.Context())
	if err != nil {
		writeInternal(w, r, err)
		return
	}
	if recs == nil {
		recs = []interaction.Interaction{}
	}
	writeJSON(w, r, http.StatusOK, recs)
}

func (h *Handler) GetInteraction(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeDetail(w, r, http.StatusBadRequest, "interaction id must be an integer")
		return
	}

	rec, err := h.store.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, interaction.ErrNotFound) {
			writeDetail(w, r, http.StatusNotFound, msgNotFound)
			return
		}
		writeInternal(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, rec)
}

func (h *Handler) PopulateFormFromChat(w http.ResponseWriter, r *http.Request) {
	req, ok := h.chatRequest(w, r)
	if !ok {
		return
	}
	// lookups only see the current message
	req.History = nil

	out, err := h.chat.FetchFromChat(r.Context(), req)
	if err != nil {
		h.writeWorkflowError(w, r, err)
		return
	}
	if out.Fetched == nil || !out.Fetched.Found() {
		writeDetail(w, r, http.StatusNotFound, msgNoFetchMatch)
		return
	}
	writeJSON(w, r, http.StatusOK, statusResponse{Status: "success", Data: out.Fetched})
}

func (h *Handler) UpdateFromChat(w http.ResponseWriter, r *http.Request) {
	req, ok := h.chatRequest(w, r)
	if !ok {
		return
	}
	req.History = nil

	out, err := h.chat.UpdateFromChat(r.Context(), req)
	if err != nil {
		h.writeWorkflowError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, turnResponse{Status: string(out.Status), Response: out.Response})
}

func (h *Handler) ExtractAndPopulate(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Message string `json:"message"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeDetail(w, r, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}
	if strings.TrimSpace(body.Message) == "" {
		writeDetail(w, r, http.StatusBadRequest, "message is required")
		return
	}

	rec, err := h.extractor.FromText(r.Context(), body.Message)
	if err != nil {
		hlog.FromRequest(r).Warn().Err(err).Msg("extraction failed")
		rec = nil
	}
	if rec == nil || strings.TrimSpace(rec.HCPName) == "" {
		writeJSON(w, r, http.StatusOK, extractResponse{Status: "failure"})
		return
	}

	fields := fieldsOf(rec)
	writeJSON(w, r, http.StatusOK, extractResponse{Status: "success", Data: &fields})
}

func (h *Handler) chatRequest(w http.ResponseWriter, r *http.Request) (orchestrator.Request, bool) {
	var body chatRequest
	if err := decodeJSON(r, &body); err != nil {
		writeDetail(w, r, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return orchestrator.Request{}, false
	}
	return orchestrator.Request{
		Message:       body.Message,
		History:       body.history(),
		InteractionID: body.InteractionID,
	}, true
}

func (h *Handler) writeWorkflowError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, orchestrator.ErrInvalidMessage) || errors.Is(err, orchestrator.ErrInvalidInteraction) {
		writeDetail(w, r, http.StatusBadRequest, err.Error())
		return
	}
	writeInternal(w, r, err)
}
