package service

import (
	"io"
	"log/slog"
	"sort"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"banking-service/internal/domain"
	apperrors "banking-service/internal/errors"
	"banking-service/internal/events"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func dec(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

func assertDecimal(t *testing.T, expected string, actual decimal.Decimal) {
	t.Helper()
	assert.True(t, dec(expected).Equal(actual), "expected %s, got %s", expected, actual)
}

// fakeStore is an in-memory domain.Store that reproduces the repository
// layer's contract: lookups return copies, absent rows come back as
// (nil, nil), and constraint violations map to the same error codes the
// real repositories produce. WithTransaction runs the callback against a
// deep copy and adopts it only when the callback succeeds, so failed
// pipelines leave the base state untouched.
type fakeStore struct {
	accounts     map[int64]domain.Account
	transactions []domain.TransactionHistory
	nextTxID     int64

	accountErr     error
	transactionErr error
}

func newFakeStore(accounts ...domain.Account) *fakeStore {
	s := &fakeStore{accounts: make(map[int64]domain.Account, len(accounts))}
	for _, account := range accounts {
		s.accounts[account.AccountID] = account
	}
	return s
}

func (f *fakeStore) clone() *fakeStore {
	c := &fakeStore{
		accounts:       make(map[int64]domain.Account, len(f.accounts)),
		transactions:   append([]domain.TransactionHistory(nil), f.transactions...),
		nextTxID:       f.nextTxID,
		accountErr:     f.accountErr,
		transactionErr: f.transactionErr,
	}
	for id, account := range f.accounts {
		c.accounts[id] = account
	}
	return c
}

func (f *fakeStore) balance(accountID int64) decimal.Decimal {
	return f.accounts[accountID].TotalBalance
}

func (f *fakeStore) Accounts() domain.AccountRepository         { return f }
func (f *fakeStore) Transactions() domain.TransactionRepository { return f }

func (f *fakeStore) WithTransaction(fn func(domain.Store) error) error {
	tx := f.clone()
	if err := fn(tx); err != nil {
		return err
	}
	f.accounts = tx.accounts
	f.transactions = tx.transactions
	f.nextTxID = tx.nextTxID
	return nil
}

func (f *fakeStore) ListAccounts() ([]domain.Account, error) {
	accounts := make([]domain.Account, 0, len(f.accounts))
	for _, account := range f.accounts {
		accounts = append(accounts, account)
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].AccountID < accounts[j].AccountID })
	return accounts, nil
}

func (f *fakeStore) GetAccountByID(id int64) (*domain.Account, error) {
	account, ok := f.accounts[id]
	if !ok {
		return nil, nil
	}
	return &account, nil
}

func (f *fakeStore) GetAccountByIDForUpdate(id int64) (*domain.Account, error) {
	return f.GetAccountByID(id)
}

func (f *fakeStore) GetAccountByName(name string) (*domain.Account, error) {
	for _, account := range f.accounts {
		if account.CustomerName == name {
			match := account
			return &match, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) CreateAccount(account *domain.Account) error {
	if f.accountErr != nil {
		return f.accountErr
	}
	if _, ok := f.accounts[account.AccountID]; ok {
		return apperrors.NewAppError(apperrors.EntityAlreadyExists, "an account with this id already exists")
	}
	for _, existing := range f.accounts {
		if existing.CustomerName == account.CustomerName {
			return apperrors.ErrDuplicateCustomer
		}
	}
	f.accounts[account.AccountID] = *account
	return nil
}

func (f *fakeStore) UpdateAccount(account *domain.Account) error {
	if f.accountErr != nil {
		return f.accountErr
	}
	if _, ok := f.accounts[account.AccountID]; !ok {
		return apperrors.ErrAccountNotFound
	}
	for id, existing := range f.accounts {
		if id != account.AccountID && existing.CustomerName == account.CustomerName {
			return apperrors.ErrDuplicateCustomer
		}
	}
	f.accounts[account.AccountID] = *account
	return nil
}

func (f *fakeStore) DeleteAccount(id int64) error {
	if f.accountErr != nil {
		return f.accountErr
	}
	if _, ok := f.accounts[id]; !ok {
		return apperrors.ErrAccountNotFound
	}
	for _, tx := range f.transactions {
		if tx.FromAccountID == id || tx.ToAccountID == id {
			return apperrors.NewInternalError("account still referenced by transaction history", nil)
		}
	}
	delete(f.accounts, id)
	return nil
}

func (f *fakeStore) GetCustomerNames(ids []int64) (map[int64]string, error) {
	names := make(map[int64]string, len(ids))
	for _, id := range ids {
		if account, ok := f.accounts[id]; ok {
			names[id] = account.CustomerName
		}
	}
	return names, nil
}

func (f *fakeStore) CreateTransaction(tx *domain.TransactionHistory) error {
	if f.transactionErr != nil {
		return f.transactionErr
	}
	if _, ok := f.accounts[tx.FromAccountID]; !ok {
		return apperrors.NewAppError(apperrors.InvalidAccount, "account referenced by the transaction does not exist")
	}
	if _, ok := f.accounts[tx.ToAccountID]; !ok {
		return apperrors.NewAppError(apperrors.InvalidAccount, "account referenced by the transaction does not exist")
	}
	f.nextTxID++
	tx.TransactionID = f.nextTxID
	tx.TransactionDate = time.Now().UTC()
	f.transactions = append(f.transactions, *tx)
	return nil
}

func (f *fakeStore) GetTransactionsByDestination(toAccountID int64) ([]domain.TransactionHistory, error) {
	var rows []domain.TransactionHistory
	for i := len(f.transactions) - 1; i >= 0; i-- {
		if f.transactions[i].ToAccountID == toAccountID {
			rows = append(rows, f.transactions[i])
		}
	}
	return rows, nil
}

// recordingPublisher captures published events for assertions.
type recordingPublisher struct {
	topics []string
	events []events.TransactionCompleted
}

func (p *recordingPublisher) Publish(topic string, event any) error {
	p.topics = append(p.topics, topic)
	if completed, ok := event.(events.TransactionCompleted); ok {
		p.events = append(p.events, completed)
	}
	return nil
}
