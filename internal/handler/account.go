package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/vasapolrittideah/account-api/internal/middleware"
	"github.com/vasapolrittideah/account-api/internal/model"
	"github.com/vasapolrittideah/account-api/internal/repository"
	"github.com/vasapolrittideah/account-api/internal/usecase"
)

// AccountHandler serves the account profile, self-service deletion, and
// administrative lifecycle endpoints.
type AccountHandler struct {
	lifecycleUsecase usecase.LifecycleUsecase
	validator        *Validator
	logger           *zerolog.Logger
}

// NewAccountHandler creates a new AccountHandler instance.
func NewAccountHandler(
	lifecycleUsecase usecase.LifecycleUsecase,
	validator *Validator,
	logger *zerolog.Logger,
) *AccountHandler {
	return &AccountHandler{
		lifecycleUsecase: lifecycleUsecase,
		validator:        validator,
		logger:           logger,
	}
}

// RegisterRoutes mounts the account and admin endpoints on the given router.
func (h *AccountHandler) RegisterRoutes(r chi.Router, guard *middleware.Guard) {
	r.Route("/account", func(r chi.Router) {
		r.Use(guard.RequireAuth)
		r.Get("/me", h.Me)
		r.Post("/deletion-request", h.RequestDeletion)
		r.Post("/deletion-cancel", h.CancelDeletionRequest)
		r.Post("/reactivate", h.Reactivate)
	})

	r.Route("/admin/accounts", func(r chi.Router) {
		r.Use(guard.RequireAuth, guard.RequireAdmin)
		r.Get("/", h.List)
		r.Get("/{id}", h.Get)
		r.Post("/{id}/activate", h.Activate)
		r.Post("/{id}/deactivate", h.Deactivate)
		r.Post("/{id}/block", h.Block)
		r.Post("/{id}/unblock", h.Unblock)
		r.Post("/{id}/role", h.ChangeRole)
		r.Delete("/{id}", h.Delete)
	})
}

func (h *AccountHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	account, err := h.lifecycleUsecase.GetAccount(r.Context(), user.UserID)
	if err != nil {
		writeUsecaseError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, AccountResponse{Account: account.Public()})
}

func (h *AccountHandler) RequestDeletion(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	req, ok := h.decodeReason(w, r)
	if !ok {
		return
	}

	account, err := h.lifecycleUsecase.RequestDeletion(r.Context(), user.UserID, req.Reason)
	if err != nil {
		writeUsecaseError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, AccountResponse{Account: account.Public()})
}

func (h *AccountHandler) CancelDeletionRequest(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	account, err := h.lifecycleUsecase.CancelDeletionRequest(r.Context(), user.UserID)
	if err != nil {
		writeUsecaseError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, AccountResponse{Account: account.Public()})
}

func (h *AccountHandler) Reactivate(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	account, err := h.lifecycleUsecase.Reactivate(r.Context(), user.UserID)
	if err != nil {
		writeUsecaseError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, AccountResponse{Account: account.Public()})
}

func (h *AccountHandler) List(w http.ResponseWriter, r *http.Request) {
	params := repository.FilterAccountsParams{}

	if status := r.URL.Query().Get("status"); status != "" {
		accountStatus := model.AccountStatus(status)
		params.Status = &accountStatus
	}
	if role := r.URL.Query().Get("role"); role != "" {
		params.Role = &role
	}
	if limit, err := strconv.ParseUint(r.URL.Query().Get("limit"), 10, 64); err == nil {
		params.Limit = limit
	}
	if offset, err := strconv.ParseUint(r.URL.Query().Get("offset"), 10, 64); err == nil {
		params.Offset = offset
	}

	accounts, err := h.lifecycleUsecase.ListAccounts(r.Context(), params)
	if err != nil {
		writeUsecaseError(w, h.logger, err)
		return
	}

	public := make([]*model.PublicAccount, 0, len(accounts))
	for _, account := range accounts {
		public = append(public, account.Public())
	}

	writeJSON(w, http.StatusOK, AccountListResponse{Accounts: public})
}

func (h *AccountHandler) Get(w http.ResponseWriter, r *http.Request) {
	account, err := h.lifecycleUsecase.GetAccount(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeUsecaseError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, AccountResponse{Account: account.Public()})
}

func (h *AccountHandler) Activate(w http.ResponseWriter, r *http.Request) {
	account, err := h.lifecycleUsecase.Activate(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeUsecaseError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, AccountResponse{Account: account.Public()})
}

func (h *AccountHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeReason(w, r)
	if !ok {
		return
	}

	account, err := h.lifecycleUsecase.Deactivate(r.Context(), chi.URLParam(r, "id"), req.Reason)
	if err != nil {
		writeUsecaseError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, AccountResponse{Account: account.Public()})
}

func (h *AccountHandler) Block(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeReason(w, r)
	if !ok {
		return
	}

	account, err := h.lifecycleUsecase.Block(r.Context(), chi.URLParam(r, "id"), req.Reason)
	if err != nil {
		writeUsecaseError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, AccountResponse{Account: account.Public()})
}

func (h *AccountHandler) Unblock(w http.ResponseWriter, r *http.Request) {
	account, err := h.lifecycleUsecase.Unblock(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeUsecaseError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, AccountResponse{Account: account.Public()})
}

func (h *AccountHandler) ChangeRole(w http.ResponseWriter, r *http.Request) {
	var req ChangeRoleRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if details := h.validator.Struct(req); details != nil {
		writeValidationError(w, details)
		return
	}

	account, err := h.lifecycleUsecase.ChangeRole(r.Context(), chi.URLParam(r, "id"), req.Role)
	if err != nil {
		writeUsecaseError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, AccountResponse{Account: account.Public()})
}

func (h *AccountHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.lifecycleUsecase.DeleteAccount(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeUsecaseError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: "account deleted"})
}

// decodeReason decodes an optional reason body. An empty body is fine.
func (h *AccountHandler) decodeReason(w http.ResponseWriter, r *http.Request) (*ReasonRequest, bool) {
	req := &ReasonRequest{}

	if r.Body != nil && r.ContentLength != 0 {
		if !decodeJSON(w, r, req) {
			return nil, false
		}

		if details := h.validator.Struct(*req); details != nil {
			writeValidationError(w, details)
			return nil, false
		}
	}

	return req, true
}
