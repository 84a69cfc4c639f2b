package http

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"planvault-backend/internal/service"
)

type PlanHandler struct {
	plans service.PlanService
}

func NewPlanHandler(plans service.PlanService) *PlanHandler {
	return &PlanHandler{plans: plans}
}

func pathVar(r *http.Request, name string) string {
	return mux.Vars(r)[name]
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(pathVar(r, name), 10, 64)
	if err != nil || id <= 0 {
		writeBadRequest(w, "invalid "+name)
		return 0, false
	}
	return id, true
}

func (h *PlanHandler) Activate(w http.ResponseWriter, r *http.Request) {
	templateID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req struct {
		AmountCents int64 `json:"amount_cents"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.AmountCents <= 0 {
		writeBadRequest(w, "amount_cents must be positive")
		return
	}

	inst, err := h.plans.Activate(r.Context(), accountIDFromContext(r.Context()), templateID, req.AmountCents)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, inst)
}

func (h *PlanHandler) Collect(w http.ResponseWriter, r *http.Request) {
	profit, err := h.plans.Collect(r.Context(), accountIDFromContext(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"profit_cents": profit})
}

func (h *PlanHandler) Upgrade(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TemplateID int64 `json:"template_id"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.TemplateID <= 0 {
		writeBadRequest(w, "template_id is required")
		return
	}

	inst, err := h.plans.Upgrade(r.Context(), accountIDFromContext(r.Context()), req.TemplateID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, inst)
}

func (h *PlanHandler) Renew(w http.ResponseWriter, r *http.Request) {
	instanceID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	inst, err := h.plans.Renew(r.Context(), accountIDFromContext(r.Context()), instanceID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, inst)
}

func (h *PlanHandler) GetActiveInstance(w http.ResponseWriter, r *http.Request) {
	inst, err := h.plans.ActiveInstance(r.Context(), accountIDFromContext(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	if inst == nil {
		writeJSON(w, http.StatusOK, map[string]any{"active_instance": nil})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"active_instance": inst})
}

func (h *PlanHandler) ListInstances(w http.ResponseWriter, r *http.Request) {
	instances, err := h.plans.ListInstances(r.Context(), accountIDFromContext(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"instances": instances})
}
