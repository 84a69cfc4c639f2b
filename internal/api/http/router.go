package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"planvault-backend/internal/repository"
	"planvault-backend/internal/security"
	"planvault-backend/internal/service"
)

// RouterDeps bundles everything the HTTP surface needs.
type RouterDeps struct {
	Accounts    service.AccountService
	Plans       service.PlanService
	Referrals   service.ReferralService
	Settlements service.SettlementService
	Ledger      service.LedgerService
	Catalog     service.CatalogService
	Admin       service.AdminService
	Upload      *UploadHandler
	Tokens      security.TokenManager
	AccountRepo repository.AccountRepository
}

// NewRouter builds the full route table. Paths are versioned under /api/v1;
// admin routes additionally require the admin flag on the account.
func NewRouter(deps RouterDeps) *mux.Router {
	accountH := NewAccountHandler(deps.Accounts, deps.Referrals)
	planH := NewPlanHandler(deps.Plans)
	ledgerH := NewLedgerHandler(deps.Ledger)
	settlementH := NewSettlementHandler(deps.Settlements)
	catalogH := NewCatalogHandler(deps.Catalog)
	adminH := NewAdminHandler(deps.Admin)

	r := mux.NewRouter()
	r.Use(loggingMiddleware)

	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()

	// Public
	api.HandleFunc("/auth/register", accountH.Register).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", accountH.Login).Methods(http.MethodPost)
	api.HandleFunc("/auth/refresh", accountH.Refresh).Methods(http.MethodPost)
	api.HandleFunc("/plans", catalogH.ListPlans).Methods(http.MethodGet)
	api.HandleFunc("/plans/{id:[0-9]+}", catalogH.GetPlan).Methods(http.MethodGet)
	if deps.Upload != nil {
		api.HandleFunc("/proofs/{key}", deps.Upload.ServeProof).Methods(http.MethodGet)
	}

	// Authenticated
	auth := api.NewRoute().Subrouter()
	auth.Use(authMiddleware(deps.Tokens, deps.AccountRepo))

	auth.HandleFunc("/me", accountH.GetProfile).Methods(http.MethodGet)
	auth.HandleFunc("/dashboard", accountH.GetDashboard).Methods(http.MethodGet)
	auth.HandleFunc("/referrals/{public_id:[0-9]+}/commission", accountH.GetCommissionFrom).Methods(http.MethodGet)

	auth.HandleFunc("/plans/{id:[0-9]+}/activate", planH.Activate).Methods(http.MethodPost)
	auth.HandleFunc("/plan/collect", planH.Collect).Methods(http.MethodPost)
	auth.HandleFunc("/plan/upgrade", planH.Upgrade).Methods(http.MethodPost)
	auth.HandleFunc("/plan", planH.GetActiveInstance).Methods(http.MethodGet)
	auth.HandleFunc("/instances", planH.ListInstances).Methods(http.MethodGet)
	auth.HandleFunc("/instances/{id:[0-9]+}/renew", planH.Renew).Methods(http.MethodPost)

	auth.HandleFunc("/ledger", ledgerH.ListEntries).Methods(http.MethodGet)
	auth.HandleFunc("/ledger/summary", ledgerH.GetSummary).Methods(http.MethodGet)

	auth.HandleFunc("/deposits", settlementH.RequestDeposit).Methods(http.MethodPost)
	auth.HandleFunc("/withdrawals", settlementH.RequestWithdrawal).Methods(http.MethodPost)
	if deps.Upload != nil {
		auth.HandleFunc("/proofs", deps.Upload.UploadProof).Methods(http.MethodPost)
	}

	// Admin
	admin := auth.PathPrefix("/admin").Subrouter()
	admin.Use(adminOnly)

	admin.HandleFunc("/accounts", adminH.ListAccounts).Methods(http.MethodGet)
	admin.HandleFunc("/accounts/{id:[0-9]+}/block", adminH.BlockAccount).Methods(http.MethodPost)
	admin.HandleFunc("/settings", adminH.GetSettings).Methods(http.MethodGet)
	admin.HandleFunc("/settings", adminH.UpdateSettings).Methods(http.MethodPut)
	admin.HandleFunc("/plans", catalogH.CreatePlan).Methods(http.MethodPost)
	admin.HandleFunc("/plans/{id:[0-9]+}", catalogH.UpdatePlan).Methods(http.MethodPut)
	admin.HandleFunc("/deposits/{id:[0-9]+}/approve", settlementH.ApproveDeposit).Methods(http.MethodPost)
	admin.HandleFunc("/deposits/{id:[0-9]+}/reject", settlementH.RejectDeposit).Methods(http.MethodPost)
	admin.HandleFunc("/withdrawals/{id:[0-9]+}/approve", settlementH.ApproveWithdrawal).Methods(http.MethodPost)
	admin.HandleFunc("/withdrawals/{id:[0-9]+}/reject", settlementH.RejectWithdrawal).Methods(http.MethodPost)

	return r
}
