package http

import (
	"net/http"

	"planvault-backend/internal/domain"
	"planvault-backend/internal/service"
)

type AccountHandler struct {
	accounts  service.AccountService
	referrals service.ReferralService
}

func NewAccountHandler(accounts service.AccountService, referrals service.ReferralService) *AccountHandler {
	return &AccountHandler{accounts: accounts, referrals: referrals}
}

type registerRequest struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Password     string `json:"password"`
	ReferralCode string `json:"referral_code,omitempty"`
}

type authResponse struct {
	Account      *domain.Account `json:"account"`
	AccessToken  string          `json:"access_token"`
	RefreshToken string          `json:"refresh_token"`
}

func (h *AccountHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Name == "" || req.Email == "" {
		writeBadRequest(w, "name and email are required")
		return
	}
	if len(req.Password) < 8 {
		writeBadRequest(w, "password must be at least 8 characters")
		return
	}

	acct, access, refresh, err := h.accounts.Register(r.Context(), req.Name, req.Email, req.Password, req.ReferralCode)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, authResponse{Account: acct, AccessToken: access, RefreshToken: refresh})
}

func (h *AccountHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	acct, access, refresh, err := h.accounts.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, authResponse{Account: acct, AccessToken: access, RefreshToken: refresh})
}

func (h *AccountHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	access, refresh, err := h.accounts.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"access_token":  access,
		"refresh_token": refresh,
	})
}

func (h *AccountHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	acct, err := h.accounts.GetProfile(r.Context(), accountIDFromContext(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, acct)
}

func (h *AccountHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	dash, err := h.accounts.GetDashboard(r.Context(), accountIDFromContext(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dash)
}

// GetCommissionFrom reports total commission earned from one referred
// account, identified by its public ID.
func (h *AccountHandler) GetCommissionFrom(w http.ResponseWriter, r *http.Request) {
	publicID := pathVar(r, "public_id")
	total, err := h.referrals.CommissionFrom(r.Context(), accountIDFromContext(r.Context()), publicID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"source_public_id":       publicID,
		"total_commission_cents": total,
	})
}
