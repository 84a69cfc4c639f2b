package http

import (
	"net/http"

	"planvault-backend/internal/service"
)

type SettlementHandler struct {
	settlements service.SettlementService
}

func NewSettlementHandler(settlements service.SettlementService) *SettlementHandler {
	return &SettlementHandler{settlements: settlements}
}

func (h *SettlementHandler) RequestDeposit(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AmountCents int64  `json:"amount_cents"`
		ProofURL    string `json:"proof_url"`
		Method      string `json:"method"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.AmountCents <= 0 {
		writeBadRequest(w, "amount_cents must be positive")
		return
	}
	if req.ProofURL == "" {
		writeBadRequest(w, "proof_url is required")
		return
	}

	entry, err := h.settlements.RequestDeposit(r.Context(), accountIDFromContext(r.Context()), req.AmountCents, req.ProofURL, req.Method)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

func (h *SettlementHandler) RequestWithdrawal(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AmountCents int64  `json:"amount_cents"`
		Destination string `json:"destination"`
		HolderName  string `json:"holder_name"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.AmountCents <= 0 {
		writeBadRequest(w, "amount_cents must be positive")
		return
	}
	if req.Destination == "" || req.HolderName == "" {
		writeBadRequest(w, "destination and holder_name are required")
		return
	}

	entry, err := h.settlements.RequestWithdrawal(r.Context(), accountIDFromContext(r.Context()), req.AmountCents, req.Destination, req.HolderName)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

func (h *SettlementHandler) ApproveDeposit(w http.ResponseWriter, r *http.Request) {
	entryID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	entry, err := h.settlements.ApproveDeposit(r.Context(), accountIDFromContext(r.Context()), entryID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (h *SettlementHandler) RejectDeposit(w http.ResponseWriter, r *http.Request) {
	entryID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req struct {
		Reason string `json:"reason"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Reason == "" {
		writeBadRequest(w, "reason is required")
		return
	}

	entry, err := h.settlements.RejectDeposit(r.Context(), accountIDFromContext(r.Context()), entryID, req.Reason)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (h *SettlementHandler) ApproveWithdrawal(w http.ResponseWriter, r *http.Request) {
	entryID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	entry, err := h.settlements.ApproveWithdrawal(r.Context(), accountIDFromContext(r.Context()), entryID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (h *SettlementHandler) RejectWithdrawal(w http.ResponseWriter, r *http.Request) {
	entryID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req struct {
		Reason string `json:"reason"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Reason == "" {
		writeBadRequest(w, "reason is required")
		return
	}

	entry, err := h.settlements.RejectWithdrawal(r.Context(), accountIDFromContext(r.Context()), entryID, req.Reason)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}
