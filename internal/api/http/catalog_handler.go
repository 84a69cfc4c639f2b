package http

import (
	"net/http"

	"planvault-backend/internal/domain"
	"planvault-backend/internal/service"
)

type CatalogHandler struct {
	catalog service.CatalogService
}

func NewCatalogHandler(catalog service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

func (h *CatalogHandler) ListPlans(w http.ResponseWriter, r *http.Request) {
	tpls, err := h.catalog.ListPlans(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"plans": tpls})
}

func (h *CatalogHandler) GetPlan(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	tpl, err := h.catalog.GetPlan(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tpl)
}

type planTemplateRequest struct {
	Name           string           `json:"name"`
	MinAmountCents int64            `json:"min_amount_cents"`
	MaxAmountCents int64            `json:"max_amount_cents"`
	YieldType      domain.YieldType `json:"yield_type"`
	DailyYield     int64            `json:"daily_yield"`
	DurationDays   int32            `json:"duration_days"`
	Currency       string           `json:"currency"`
	Active         bool             `json:"active"`
}

func (req *planTemplateRequest) toDomain() *domain.PlanTemplate {
	return &domain.PlanTemplate{
		Name:           req.Name,
		MinAmountCents: req.MinAmountCents,
		MaxAmountCents: req.MaxAmountCents,
		YieldType:      req.YieldType,
		DailyYield:     req.DailyYield,
		DurationDays:   req.DurationDays,
		Currency:       req.Currency,
		Active:         req.Active,
	}
}

func (h *CatalogHandler) CreatePlan(w http.ResponseWriter, r *http.Request) {
	var req planTemplateRequest
	if !decodeBody(w, r, &req) {
		return
	}
	tpl := req.toDomain()
	if err := h.catalog.CreatePlan(r.Context(), tpl); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, tpl)
}

func (h *CatalogHandler) UpdatePlan(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req planTemplateRequest
	if !decodeBody(w, r, &req) {
		return
	}
	tpl := req.toDomain()
	tpl.ID = id
	if err := h.catalog.UpdatePlan(r.Context(), tpl); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tpl)
}
