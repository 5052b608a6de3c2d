package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"banking-service/internal/domain"
	apperrors "banking-service/internal/errors"
	"banking-service/internal/service"
)

// TransactionService is the service surface the transaction endpoints need.
type TransactionService interface {
	CreateTransaction(req *service.TransactionRequest) (string, error)
	GetTransactionHistoriesByAccount(toAccountID int64) ([]domain.TransactionHistoryView, error)
}

type TransactionHandler struct {
	transactionService TransactionService
	logger             *slog.Logger
}

func NewTransactionHandler(transactionService TransactionService, logger *slog.Logger) *TransactionHandler {
	return &TransactionHandler{
		transactionService: transactionService,
		logger:             logger,
	}
}

type TransactionHistoryRequest struct {
	FromAccountID   int64  `json:"fromAccountId" validate:"gt=0"`
	ToAccountID     int64  `json:"toAccountId" validate:"gt=0"`
	TransactionType string `json:"transactionType" validate:"required,len=3,oneof=DEP WTH TRF"`
	Amount          string `json:"amount" validate:"required"`
}

func (h *TransactionHandler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req TransactionHistoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, apperrors.NewAppError(apperrors.InvalidArgument, "invalid request body"))
		return
	}

	// Transaction codes are accepted case-insensitively.
	req.TransactionType = strings.ToUpper(req.TransactionType)

	if err := validateRequest(&req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		writeError(w, h.logger, apperrors.NewAppError(apperrors.InvalidArgument, "amount must be a decimal number"))
		return
	}
	if !amount.IsPositive() {
		writeError(w, h.logger, apperrors.NewAppError(apperrors.InvalidArgument, "amount must be greater than zero"))
		return
	}

	message, err := h.transactionService.CreateTransaction(&service.TransactionRequest{
		FromAccountID:   req.FromAccountID,
		ToAccountID:     req.ToAccountID,
		TransactionType: domain.TransactionType(req.TransactionType),
		Amount:          amount,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, message)
}

func (h *TransactionHandler) GetTransactionHistories(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	toAccountID, err := strconv.ParseInt(vars["toAccountId"], 10, 64)
	if err != nil || toAccountID <= 0 {
		writeError(w, h.logger, apperrors.NewAppError(apperrors.InvalidArgument, "toAccountId must be a positive integer"))
		return
	}

	histories, err := h.transactionService.GetTransactionHistoriesByAccount(toAccountID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, histories)
}
