package service

import (
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"banking-service/internal/domain"
	apperrors "banking-service/internal/errors"
)

type AccountService struct {
	store  domain.Store
	logger *slog.Logger
}

func NewAccountService(store domain.Store, logger *slog.Logger) *AccountService {
	return &AccountService{
		store:  store,
		logger: logger,
	}
}

// GetAccounts returns all accounts, or at most the one matching accountID
// when it is positive. An empty result is not an error.
func (s *AccountService) GetAccounts(accountID int64) ([]domain.AccountView, error) {
	if accountID > 0 {
		account, err := s.store.Accounts().GetAccountByID(accountID)
		if err != nil {
			return nil, err
		}
		if account == nil {
			return []domain.AccountView{}, nil
		}
		return []domain.AccountView{account.View()}, nil
	}

	accounts, err := s.store.Accounts().ListAccounts()
	if err != nil {
		return nil, err
	}

	views := make([]domain.AccountView, 0, len(accounts))
	for i := range accounts {
		views = append(views, accounts[i].View())
	}
	return views, nil
}

// CreateAccount inserts a new account after checking that no other account
// holds the customer name (case-sensitive). The unique constraint backstops
// the check against concurrent creates.
func (s *AccountService) CreateAccount(accountID int64, customerName string, totalBalance decimal.Decimal) (string, error) {
	s.logger.Info("Creating account", "account_id", accountID, "customer_name", customerName)

	var message string
	err := s.store.WithTransaction(func(store domain.Store) error {
		existing, err := store.Accounts().GetAccountByName(customerName)
		if err != nil {
			return err
		}
		if existing != nil {
			return apperrors.ErrDuplicateCustomer
		}

		account := &domain.Account{
			AccountID:    accountID,
			CustomerName: customerName,
			TotalBalance: totalBalance,
		}
		if err := store.Accounts().CreateAccount(account); err != nil {
			return err
		}

		message = fmt.Sprintf("Account for customer %s created successfully", customerName)
		return nil
	})
	if err != nil {
		return "", err
	}

	return message, nil
}

// UpdateAccount overwrites the customer name and balance of an existing
// account. Renaming onto a name held by a different account is rejected.
func (s *AccountService) UpdateAccount(accountID int64, customerName string, totalBalance decimal.Decimal) (string, error) {
	s.logger.Info("Updating account", "account_id", accountID, "customer_name", customerName)

	var message string
	err := s.store.WithTransaction(func(store domain.Store) error {
		account, err := store.Accounts().GetAccountByIDForUpdate(accountID)
		if err != nil {
			return err
		}
		if account == nil {
			return apperrors.ErrAccountNotFound
		}

		holder, err := store.Accounts().GetAccountByName(customerName)
		if err != nil {
			return err
		}
		if holder != nil && holder.AccountID != accountID {
			return apperrors.ErrDuplicateCustomer
		}

		account.CustomerName = customerName
		account.TotalBalance = totalBalance
		if err := store.Accounts().UpdateAccount(account); err != nil {
			return err
		}

		message = fmt.Sprintf("Account %d updated successfully", accountID)
		return nil
	})
	if err != nil {
		return "", err
	}

	return message, nil
}

// DeleteAccount removes the account unconditionally; it performs no
// referential check against the ledger, leaving the foreign-key constraint
// as the only backstop.
func (s *AccountService) DeleteAccount(accountID int64) (string, error) {
	s.logger.Info("Deleting account", "account_id", accountID)

	var message string
	err := s.store.WithTransaction(func(store domain.Store) error {
		if err := store.Accounts().DeleteAccount(accountID); err != nil {
			return err
		}

		message = fmt.Sprintf("Account %d deleted successfully", accountID)
		return nil
	})
	if err != nil {
		return "", err
	}

	return message, nil
}
