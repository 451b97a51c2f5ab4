package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/cablecom/leads-api/internal/entity"
	"github.com/cablecom/leads-api/internal/infra/metrics"
	"github.com/cablecom/leads-api/internal/usecase"
)

type LeadService interface {
	SubmitLead(ctx context.Context, in usecase.SubmitLeadInput) (int64, error)
	ListLeads(ctx context.Context) ([]entity.Lead, error)
	GetLead(ctx context.Context, id int64) (*entity.Lead, error)
	SetLeadStatus(ctx context.Context, id int64, in usecase.UpdateLeadStatusInput) error
	GetStats(ctx context.Context) (entity.LeadStats, error)
}

type LeadHandler struct {
	Leads LeadService
	Log   *zap.Logger
}

func NewLeadHandler(leads LeadService, log *zap.Logger) *LeadHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &LeadHandler{Leads: leads, Log: log}
}

type SubmitLeadResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	LeadID  int64  `json:"leadId"`
}

type UpdateLeadResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Submit handles POST /leads from the public contact form.
func (h *LeadHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var input usecase.SubmitLeadInput
	if !decodeJSON(w, r, &input) {
		return
	}

	id, err := h.Leads.SubmitLead(r.Context(), input)
	if err != nil {
		writeUsecaseError(w, h.Log, err)
		return
	}
	metrics.RecordLeadSubmitted(input.Service)

	writeJSON(w, http.StatusCreated, SubmitLeadResponse{
		Success: true,
		Message: "Lead submitted successfully",
		LeadID:  id,
	})
}

func (h *LeadHandler) List(w http.ResponseWriter, r *http.Request) {
	leads, err := h.Leads.ListLeads(r.Context())
	if err != nil {
		writeUsecaseError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"leads": leads})
}

func (h *LeadHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := leadID(w, r)
	if !ok {
		return
	}

	lead, err := h.Leads.GetLead(r.Context(), id)
	if err != nil {
		writeUsecaseError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"lead": lead})
}

func (h *LeadHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := leadID(w, r)
	if !ok {
		return
	}

	var input usecase.UpdateLeadStatusInput
	if !decodeJSON(w, r, &input) {
		return
	}

	if err := h.Leads.SetLeadStatus(r.Context(), id, input); err != nil {
		writeUsecaseError(w, h.Log, err)
		return
	}
	metrics.RecordStatusChange(strings.TrimSpace(input.Status))

	writeJSON(w, http.StatusOK, UpdateLeadResponse{Success: true, Message: "Lead updated successfully"})
}

func (h *LeadHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Leads.GetStats(r.Context())
	if err != nil {
		writeUsecaseError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"stats": stats})
}

func leadID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeErrorResponse(w, http.StatusBadRequest, "INVALID_ID", "Invalid lead ID")
		return 0, false
	}
	return id, true
}
