package repository

import (
	"database/sql"
	"log/slog"

	"banking-service/internal/domain"
	apperrors "banking-service/internal/errors"
)

// Store bundles the repositories behind one handle and provides the
// transaction scope the services run their pipelines in.
type Store struct {
	executor SQLExecutor
	db       *sql.DB // nil when the store is already transactional
	logger   *slog.Logger
}

var _ domain.Store = (*Store)(nil)

// NewStore creates a Store backed by db.
func NewStore(db *sql.DB, logger *slog.Logger) *Store {
	return &Store{
		executor: db,
		db:       db,
		logger:   logger,
	}
}

// Accounts returns an AccountRepository bound to the current executor.
func (s *Store) Accounts() domain.AccountRepository {
	return NewAccountRepository(s.executor, s.logger)
}

// Transactions returns a TransactionRepository bound to the current executor.
func (s *Store) Transactions() domain.TransactionRepository {
	return NewTransactionRepository(s.executor, s.logger)
}

// WithTransaction runs fn within a single database transaction, committing
// when fn returns nil and rolling back otherwise. Transient failures (lost
// connections, serialization conflicts, deadlocks) re-run fn in a fresh
// transaction, so fn must be re-entrant. Nesting is not supported.
func (s *Store) WithTransaction(fn func(domain.Store) error) error {
	if s.db == nil {
		return apperrors.NewInternalError("transaction already in progress", nil)
	}

	return withRetry(s.logger, "transaction", func() error {
		tx, err := s.db.Begin()
		if err != nil {
			return err
		}

		txStore := &Store{
			executor: tx,
			logger:   s.logger,
		}

		defer func() {
			if p := recover(); p != nil {
				tx.Rollback()
				panic(p)
			}
		}()

		if err := fn(txStore); err != nil {
			tx.Rollback()
			return err
		}

		return tx.Commit()
	})
}
