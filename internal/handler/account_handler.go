package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"banking-service/internal/domain"
	apperrors "banking-service/internal/errors"
)

// AccountService is the service surface the account endpoints need.
type AccountService interface {
	GetAccounts(accountID int64) ([]domain.AccountView, error)
	CreateAccount(accountID int64, customerName string, totalBalance decimal.Decimal) (string, error)
	UpdateAccount(accountID int64, customerName string, totalBalance decimal.Decimal) (string, error)
	DeleteAccount(accountID int64) (string, error)
}

type AccountHandler struct {
	accountService AccountService
	logger         *slog.Logger
}

func NewAccountHandler(accountService AccountService, logger *slog.Logger) *AccountHandler {
	return &AccountHandler{
		accountService: accountService,
		logger:         logger,
	}
}

// AccountRequest is the body shared by create and update.
type AccountRequest struct {
	AccountID    int64  `json:"accountId" validate:"gt=0"`
	CustomerName string `json:"customerName" validate:"required,max=100"`
	TotalBalance string `json:"totalBalance" validate:"required"`
}

func (h *AccountHandler) GetAccounts(w http.ResponseWriter, r *http.Request) {
	var accountID int64
	if raw := r.URL.Query().Get("accountId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeError(w, h.logger, apperrors.NewAppError(apperrors.InvalidArgument, "accountId must be an integer"))
			return
		}
		accountID = id
	}

	accounts, err := h.accountService.GetAccounts(accountID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, accounts)
}

func (h *AccountHandler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	req, balance, err := h.decodeAccountRequest(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	message, err := h.accountService.CreateAccount(req.AccountID, req.CustomerName, balance)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, message)
}

func (h *AccountHandler) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	req, balance, err := h.decodeAccountRequest(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	message, err := h.accountService.UpdateAccount(req.AccountID, req.CustomerName, balance)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, message)
}

func (h *AccountHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	accountID, err := strconv.ParseInt(vars["accountId"], 10, 64)
	if err != nil || accountID <= 0 {
		writeError(w, h.logger, apperrors.NewAppError(apperrors.InvalidArgument, "accountId must be a positive integer"))
		return
	}

	message, err := h.accountService.DeleteAccount(accountID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, message)
}

func (h *AccountHandler) decodeAccountRequest(r *http.Request) (*AccountRequest, decimal.Decimal, error) {
	var req AccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, decimal.Zero, apperrors.NewAppError(apperrors.InvalidArgument, "invalid request body")
	}

	if err := validateRequest(&req); err != nil {
		return nil, decimal.Zero, err
	}

	balance, err := decimal.NewFromString(req.TotalBalance)
	if err != nil {
		return nil, decimal.Zero, apperrors.NewAppError(apperrors.InvalidArgument, "totalBalance must be a decimal number")
	}
	if balance.IsNegative() {
		return nil, decimal.Zero, apperrors.NewAppError(apperrors.InvalidArgument, "totalBalance must not be negative")
	}

	return &req, balance, nil
}
