package repository

import (
	"log/slog"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"banking-service/internal/domain"
	apperrors "banking-service/internal/errors"
)

type transactionRepository struct {
	db     SQLExecutor
	logger *slog.Logger
}

func NewTransactionRepository(db SQLExecutor, logger *slog.Logger) domain.TransactionRepository {
	return &transactionRepository{
		db:     db,
		logger: logger,
	}
}

// CreateTransaction appends a ledger row and fills in the generated
// transaction id and date. A foreign-key violation means the row referenced
// an account that does not exist; deposits carry a caller-supplied source id
// the pipeline does not validate, so the constraint is the backstop for it.
func (r *transactionRepository) CreateTransaction(tx *domain.TransactionHistory) error {
	query := `
		INSERT INTO transactions_history (from_account_id, to_account_id, transaction_type, amount)
		VALUES ($1, $2, $3, $4)
		RETURNING transaction_id, transaction_date
	`

	err := r.db.QueryRow(
		query,
		tx.FromAccountID,
		tx.ToAccountID,
		string(tx.TransactionType),
		tx.Amount.String(),
	).Scan(&tx.TransactionID, &tx.TransactionDate)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" { // foreign_key_violation
			return apperrors.NewAppError(apperrors.InvalidAccount, "account referenced by the transaction does not exist")
		}
		return apperrors.NewInternalError("failed to create transaction", err)
	}

	r.logger.Info("Transaction recorded",
		"transaction_id", tx.TransactionID,
		"transaction_type", tx.TransactionType)
	return nil
}

// GetTransactionsByDestination returns the ledger rows credited to the given
// account, newest first.
func (r *transactionRepository) GetTransactionsByDestination(toAccountID int64) ([]domain.TransactionHistory, error) {
	query := `
		SELECT transaction_id, from_account_id, to_account_id, transaction_type, amount, transaction_date
		FROM transactions_history
		WHERE to_account_id = $1
		ORDER BY transaction_date DESC, transaction_id DESC
	`

	rows, err := r.db.Query(query, toAccountID)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list transactions", err)
	}
	defer rows.Close()

	transactions := []domain.TransactionHistory{}
	for rows.Next() {
		var tx domain.TransactionHistory
		var amountStr string

		if err := rows.Scan(
			&tx.TransactionID,
			&tx.FromAccountID,
			&tx.ToAccountID,
			&tx.TransactionType,
			&amountStr,
			&tx.TransactionDate,
		); err != nil {
			return nil, apperrors.NewInternalError("failed to scan transaction", err)
		}

		amount, err := decimal.NewFromString(amountStr)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to parse amount", err)
		}
		tx.Amount = amount

		transactions = append(transactions, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to list transactions", err)
	}

	return transactions, nil
}
