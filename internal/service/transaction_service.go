package service

import (
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"banking-service/internal/domain"
	apperrors "banking-service/internal/errors"
	"banking-service/internal/events"
	"banking-service/internal/metrics"
)

type TransactionService struct {
	store     domain.Store
	publisher events.Publisher
	logger    *slog.Logger
}

func NewTransactionService(store domain.Store, publisher events.Publisher, logger *slog.Logger) *TransactionService {
	return &TransactionService{
		store:     store,
		publisher: publisher,
		logger:    logger,
	}
}

type TransactionRequest struct {
	FromAccountID   int64
	ToAccountID     int64
	TransactionType domain.TransactionType
	Amount          decimal.Decimal
}

// CreateTransaction dispatches the request to one of the three pipelines.
// Each pipeline runs inside a single database transaction with the involved
// account rows locked, so a failed precondition leaves no partial writes.
func (s *TransactionService) CreateTransaction(req *TransactionRequest) (string, error) {
	s.logger.Info("Processing transaction",
		"transaction_type", req.TransactionType,
		"from_account_id", req.FromAccountID,
		"to_account_id", req.ToAccountID,
		"amount", req.Amount)

	if req.TransactionType == domain.TypeTransfer && req.FromAccountID == req.ToAccountID {
		return "", apperrors.ErrSameAccountTransfer
	}

	var (
		message string
		record  *domain.TransactionHistory
		err     error
	)
	switch req.TransactionType {
	case domain.TypeDeposit:
		message, record, err = s.deposit(req)
	case domain.TypeWithdrawal:
		message, record, err = s.withdraw(req)
	case domain.TypeTransfer:
		message, record, err = s.transfer(req)
	default:
		// Boundary validation makes this unreachable, but the dispatch
		// still guards it.
		return "", apperrors.NewAppErrorf(apperrors.InvalidArgument, "unknown transaction type %q", req.TransactionType)
	}

	if err != nil {
		metrics.RecordTransaction(string(req.TransactionType), "failed")
		return "", err
	}

	metrics.RecordTransaction(string(req.TransactionType), "completed")
	s.publishCompleted(record)

	s.logger.Info("Transaction completed",
		"transaction_id", record.TransactionID,
		"transaction_type", record.TransactionType)
	return message, nil
}

// deposit credits the destination account. The from id is recorded as
// supplied by the caller, without validation; the ledger foreign key is its
// only backstop.
func (s *TransactionService) deposit(req *TransactionRequest) (string, *domain.TransactionHistory, error) {
	var (
		message string
		record  *domain.TransactionHistory
	)

	err := s.store.WithTransaction(func(store domain.Store) error {
		toAccount, err := store.Accounts().GetAccountByIDForUpdate(req.ToAccountID)
		if err != nil {
			return err
		}
		if toAccount == nil {
			return apperrors.NewAppErrorf(apperrors.InvalidAccount, "destination account %d does not exist", req.ToAccountID)
		}

		toAccount.TotalBalance = toAccount.TotalBalance.Add(req.Amount)
		if err := store.Accounts().UpdateAccount(toAccount); err != nil {
			return err
		}

		tx := &domain.TransactionHistory{
			FromAccountID:   req.FromAccountID,
			ToAccountID:     req.ToAccountID,
			TransactionType: domain.TypeDeposit,
			Amount:          req.Amount,
		}
		if err := store.Transactions().CreateTransaction(tx); err != nil {
			return err
		}

		record = tx
		message = fmt.Sprintf("Deposit of %s to account %d completed successfully. Transaction id: %d",
			req.Amount, req.ToAccountID, tx.TransactionID)
		return nil
	})
	if err != nil {
		return "", nil, err
	}

	return message, record, nil
}

func (s *TransactionService) withdraw(req *TransactionRequest) (string, *domain.TransactionHistory, error) {
	var (
		message string
		record  *domain.TransactionHistory
	)

	err := s.store.WithTransaction(func(store domain.Store) error {
		fromAccount, err := store.Accounts().GetAccountByIDForUpdate(req.FromAccountID)
		if err != nil {
			return err
		}
		if fromAccount == nil {
			return apperrors.NewAppErrorf(apperrors.InvalidAccount, "source account %d does not exist", req.FromAccountID)
		}

		if fromAccount.TotalBalance.LessThan(req.Amount) {
			return apperrors.ErrInsufficientBalance
		}

		fromAccount.TotalBalance = fromAccount.TotalBalance.Sub(req.Amount)
		if err := store.Accounts().UpdateAccount(fromAccount); err != nil {
			return err
		}

		tx := &domain.TransactionHistory{
			FromAccountID:   req.FromAccountID,
			ToAccountID:     req.ToAccountID,
			TransactionType: domain.TypeWithdrawal,
			Amount:          req.Amount,
		}
		if err := store.Transactions().CreateTransaction(tx); err != nil {
			return err
		}

		record = tx
		message = fmt.Sprintf("Withdrawal of %s from account %d completed successfully. Remaining balance: %s. Transaction id: %d",
			req.Amount, req.FromAccountID, fromAccount.TotalBalance, tx.TransactionID)
		return nil
	})
	if err != nil {
		return "", nil, err
	}

	return message, record, nil
}

func (s *TransactionService) transfer(req *TransactionRequest) (string, *domain.TransactionHistory, error) {
	var (
		message string
		record  *domain.TransactionHistory
	)

	err := s.store.WithTransaction(func(store domain.Store) error {
		accounts := store.Accounts()

		// Lock the two rows in ascending id order so concurrent opposite
		// transfers cannot deadlock.
		firstID, secondID := req.FromAccountID, req.ToAccountID
		if firstID > secondID {
			firstID, secondID = secondID, firstID
		}

		first, err := accounts.GetAccountByIDForUpdate(firstID)
		if err != nil {
			return err
		}
		second, err := accounts.GetAccountByIDForUpdate(secondID)
		if err != nil {
			return err
		}

		fromAccount, toAccount := first, second
		if req.FromAccountID != firstID {
			fromAccount, toAccount = second, first
		}

		if fromAccount == nil {
			return apperrors.NewAppErrorf(apperrors.InvalidAccount, "source account %d does not exist", req.FromAccountID)
		}
		if toAccount == nil {
			return apperrors.NewAppErrorf(apperrors.InvalidAccount, "destination account %d does not exist", req.ToAccountID)
		}

		if fromAccount.TotalBalance.LessThan(req.Amount) {
			return apperrors.ErrInsufficientBalance
		}

		// Debit the source first, then credit the destination.
		fromAccount.TotalBalance = fromAccount.TotalBalance.Sub(req.Amount)
		toAccount.TotalBalance = toAccount.TotalBalance.Add(req.Amount)

		if err := accounts.UpdateAccount(fromAccount); err != nil {
			return err
		}
		if err := accounts.UpdateAccount(toAccount); err != nil {
			return err
		}

		tx := &domain.TransactionHistory{
			FromAccountID:   req.FromAccountID,
			ToAccountID:     req.ToAccountID,
			TransactionType: domain.TypeTransfer,
			Amount:          req.Amount,
		}
		if err := store.Transactions().CreateTransaction(tx); err != nil {
			return err
		}

		record = tx
		message = fmt.Sprintf("Transfer of %s from account %d to account %d completed successfully. Transaction id: %d",
			req.Amount, req.FromAccountID, req.ToAccountID, tx.TransactionID)
		return nil
	})
	if err != nil {
		return "", nil, err
	}

	return message, record, nil
}

// GetTransactionHistoriesByAccount returns the ledger rows credited to the
// given account, annotated with the destination and source customer names.
// Source names are resolved with one batch lookup; deposit rows show the
// external-source placeholder instead.
func (s *TransactionService) GetTransactionHistoriesByAccount(toAccountID int64) ([]domain.TransactionHistoryView, error) {
	account, err := s.store.Accounts().GetAccountByID(toAccountID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, apperrors.ErrAccountNotFound
	}

	transactions, err := s.store.Transactions().GetTransactionsByDestination(toAccountID)
	if err != nil {
		return nil, err
	}

	sourceIDs := make([]int64, 0, len(transactions))
	seen := make(map[int64]bool)
	for i := range transactions {
		tx := &transactions[i]
		if tx.TransactionType == domain.TypeDeposit || seen[tx.FromAccountID] {
			continue
		}
		seen[tx.FromAccountID] = true
		sourceIDs = append(sourceIDs, tx.FromAccountID)
	}

	sourceNames, err := s.store.Accounts().GetCustomerNames(sourceIDs)
	if err != nil {
		return nil, err
	}

	views := make([]domain.TransactionHistoryView, 0, len(transactions))
	for i := range transactions {
		tx := &transactions[i]
		view := tx.View()
		view.CustomerName = account.CustomerName
		if tx.TransactionType == domain.TypeDeposit {
			view.FromCustomerName = domain.ExternalDepositSource
		} else {
			view.FromCustomerName = sourceNames[tx.FromAccountID]
		}
		views = append(views, view)
	}

	return views, nil
}

func (s *TransactionService) publishCompleted(record *domain.TransactionHistory) {
	event := events.TransactionCompleted{
		TransactionID:   record.TransactionID,
		TransactionType: string(record.TransactionType),
		FromAccountID:   record.FromAccountID,
		ToAccountID:     record.ToAccountID,
		Amount:          record.Amount.String(),
		OccurredAt:      record.TransactionDate,
	}

	if err := s.publisher.Publish(events.TopicTransactionCompleted, event); err != nil {
		s.logger.Warn("Failed to publish transaction event",
			"transaction_id", record.TransactionID,
			"error", err)
	}
}
