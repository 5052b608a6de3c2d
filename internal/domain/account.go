package domain

import (
	"github.com/shopspring/decimal"
)

// Account is the persisted account record. AccountID is supplied by the
// caller at creation time; CustomerName is unique across all accounts.
type Account struct {
	AccountID    int64
	CustomerName string
	TotalBalance decimal.Decimal
}

// AccountView is the JSON shape returned by account queries.
type AccountView struct {
	AccountID    int64           `json:"accountId"`
	CustomerName string          `json:"customerName"`
	TotalBalance decimal.Decimal `json:"totalBalance"`
}

func (a *Account) View() AccountView {
	return AccountView{
		AccountID:    a.AccountID,
		CustomerName: a.CustomerName,
		TotalBalance: a.TotalBalance,
	}
}

// AccountRepository exposes the fixed set of account queries the services
// need. Lookups return (nil, nil) when no row matches; callers decide
// whether absence is an error and of which kind.
type AccountRepository interface {
	ListAccounts() ([]Account, error)
	GetAccountByID(id int64) (*Account, error)
	// GetAccountByIDForUpdate locks the row for the duration of the
	// enclosing transaction. Only meaningful inside WithTransaction.
	GetAccountByIDForUpdate(id int64) (*Account, error)
	GetAccountByName(name string) (*Account, error)
	CreateAccount(account *Account) error
	UpdateAccount(account *Account) error
	DeleteAccount(id int64) error
	// GetCustomerNames resolves customer names for a set of account ids in
	// a single query. Ids without a matching account are absent from the map.
	GetCustomerNames(ids []int64) (map[int64]string, error)
}
