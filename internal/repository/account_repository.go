package repository

import (
	"database/sql"
	"log/slog"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"banking-service/internal/domain"
	apperrors "banking-service/internal/errors"
)

type accountRepository struct {
	db     SQLExecutor
	logger *slog.Logger
}

func NewAccountRepository(db SQLExecutor, logger *slog.Logger) domain.AccountRepository {
	return &accountRepository{
		db:     db,
		logger: logger,
	}
}

func (r *accountRepository) CreateAccount(account *domain.Account) error {
	query := `
		INSERT INTO accounts (account_id, customer_name, total_balance)
		VALUES ($1, $2, $3)
	`

	_, err := r.db.Exec(
		query,
		account.AccountID,
		account.CustomerName,
		account.TotalBalance.String(),
	)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" { // unique_violation
			if pqErr.Constraint == "accounts_pkey" {
				return apperrors.NewAppError(apperrors.EntityAlreadyExists, "an account with this id already exists")
			}
			return apperrors.ErrDuplicateCustomer
		}
		return apperrors.NewInternalError("failed to create account", err)
	}

	r.logger.Info("Account created", "account_id", account.AccountID)
	return nil
}

func (r *accountRepository) ListAccounts() ([]domain.Account, error) {
	query := `
		SELECT account_id, customer_name, total_balance
		FROM accounts ORDER BY account_id
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list accounts", err)
	}
	defer rows.Close()

	accounts := []domain.Account{}
	for rows.Next() {
		var account domain.Account
		var balanceStr string

		if err := rows.Scan(&account.AccountID, &account.CustomerName, &balanceStr); err != nil {
			return nil, apperrors.NewInternalError("failed to scan account", err)
		}

		balance, err := decimal.NewFromString(balanceStr)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to parse balance", err)
		}
		account.TotalBalance = balance

		accounts = append(accounts, account)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to list accounts", err)
	}

	return accounts, nil
}

func (r *accountRepository) GetAccountByID(id int64) (*domain.Account, error) {
	query := `
		SELECT account_id, customer_name, total_balance
		FROM accounts WHERE account_id = $1
	`

	return r.scanAccount(query, id)
}

// GetAccountByIDForUpdate locks the account row for the remainder of the
// surrounding transaction.
func (r *accountRepository) GetAccountByIDForUpdate(id int64) (*domain.Account, error) {
	query := `
		SELECT account_id, customer_name, total_balance
		FROM accounts WHERE account_id = $1 FOR UPDATE
	`

	return r.scanAccount(query, id)
}

func (r *accountRepository) GetAccountByName(name string) (*domain.Account, error) {
	query := `
		SELECT account_id, customer_name, total_balance
		FROM accounts WHERE customer_name = $1
	`

	return r.scanAccount(query, name)
}

func (r *accountRepository) scanAccount(query string, arg interface{}) (*domain.Account, error) {
	var account domain.Account
	var balanceStr string

	err := r.db.QueryRow(query, arg).Scan(
		&account.AccountID,
		&account.CustomerName,
		&balanceStr,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, apperrors.NewInternalError("failed to get account", err)
	}

	balance, err := decimal.NewFromString(balanceStr)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to parse balance", err)
	}
	account.TotalBalance = balance

	return &account, nil
}

func (r *accountRepository) UpdateAccount(account *domain.Account) error {
	query := `
		UPDATE accounts
		SET customer_name = $1, total_balance = $2
		WHERE account_id = $3
	`

	result, err := r.db.Exec(
		query,
		account.CustomerName,
		account.TotalBalance.String(),
		account.AccountID,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" { // unique_violation
			return apperrors.ErrDuplicateCustomer
		}
		return apperrors.NewInternalError("failed to update account", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return apperrors.ErrAccountNotFound
	}

	r.logger.Info("Account updated", "account_id", account.AccountID)
	return nil
}

func (r *accountRepository) DeleteAccount(id int64) error {
	query := `DELETE FROM accounts WHERE account_id = $1`

	result, err := r.db.Exec(query, id)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" { // foreign_key_violation
			return apperrors.NewInternalError("account still referenced by transaction history", err)
		}
		return apperrors.NewInternalError("failed to delete account", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return apperrors.ErrAccountNotFound
	}

	r.logger.Info("Account deleted", "account_id", id)
	return nil
}

// GetCustomerNames resolves the customer names for all given account ids in
// a single query. Ids without a matching account are absent from the result.
func (r *accountRepository) GetCustomerNames(ids []int64) (map[int64]string, error) {
	names := make(map[int64]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}

	query := `
		SELECT account_id, customer_name
		FROM accounts WHERE account_id = ANY($1)
	`

	rows, err := r.db.Query(query, pq.Array(ids))
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get customer names", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id int64
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, apperrors.NewInternalError("failed to scan customer name", err)
		}
		names[id] = name
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to get customer names", err)
	}

	return names, nil
}
