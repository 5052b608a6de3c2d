package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType is the three-letter code recorded with every ledger row.
type TransactionType string

const (
	TypeDeposit    TransactionType = "DEP"
	TypeWithdrawal TransactionType = "WTH"
	TypeTransfer   TransactionType = "TRF"
)

// ExternalDepositSource is the display name substituted for the source
// account of DEP rows, whose from id is an unvalidated placeholder.
const ExternalDepositSource = "Depósito externo"

// TransactionHistory is an immutable ledger row documenting a completed
// balance mutation. TransactionID and TransactionDate are assigned by the
// database on insert; no update or delete operation exists.
type TransactionHistory struct {
	TransactionID   int64
	FromAccountID   int64
	ToAccountID     int64
	TransactionType TransactionType
	Amount          decimal.Decimal
	TransactionDate time.Time
}

// TransactionHistoryView is a ledger row annotated with the customer names
// of the accounts it references.
type TransactionHistoryView struct {
	TransactionID    int64           `json:"transactionId"`
	FromAccountID    int64           `json:"fromAccountId"`
	ToAccountID      int64           `json:"toAccountId"`
	TransactionType  TransactionType `json:"transactionType"`
	Amount           decimal.Decimal `json:"amount"`
	TransactionDate  time.Time       `json:"transactionDate"`
	CustomerName     string          `json:"customerName"`
	FromCustomerName string          `json:"fromCustomerName"`
}

// View copies the row into its annotated JSON shape; the caller fills in
// the customer names.
func (t *TransactionHistory) View() TransactionHistoryView {
	return TransactionHistoryView{
		TransactionID:   t.TransactionID,
		FromAccountID:   t.FromAccountID,
		ToAccountID:     t.ToAccountID,
		TransactionType: t.TransactionType,
		Amount:          t.Amount,
		TransactionDate: t.TransactionDate,
	}
}

// TransactionRepository persists and reads ledger rows.
type TransactionRepository interface {
	// CreateTransaction inserts the row and fills in the generated
	// TransactionID and server-assigned TransactionDate.
	CreateTransaction(tx *TransactionHistory) error
	GetTransactionsByDestination(toAccountID int64) ([]TransactionHistory, error)
}

// Store is the unit of work over both repositories. WithTransaction runs fn
// against a Store bound to a single database transaction, committing when fn
// returns nil and rolling back otherwise.
type Store interface {
	Accounts() AccountRepository
	Transactions() TransactionRepository
	WithTransaction(fn func(Store) error) error
}
