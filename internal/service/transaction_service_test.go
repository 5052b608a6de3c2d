package service

import (
	goerrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"banking-service/internal/domain"
	apperrors "banking-service/internal/errors"
	"banking-service/internal/events"
)

type failingPublisher struct{}

func (failingPublisher) Publish(string, any) error { return goerrors.New("broker unavailable") }

func newTestTransactionService(store *fakeStore) *TransactionService {
	return NewTransactionService(store, events.NoopPublisher{}, discardLogger())
}

func depositRequest(toAccountID int64, amount string) *TransactionRequest {
	return &TransactionRequest{
		FromAccountID:   toAccountID,
		ToAccountID:     toAccountID,
		TransactionType: domain.TypeDeposit,
		Amount:          dec(amount),
	}
}

func TestDeposit(t *testing.T) {
	store := newFakeStore(seedAccounts()...)
	svc := newTestTransactionService(store)

	message, err := svc.CreateTransaction(depositRequest(2, "100.00"))

	require.NoError(t, err)
	assert.Equal(t, "Deposit of 100 to account 2 completed successfully. Transaction id: 1", message)
	assertDecimal(t, "600.25", store.balance(2))

	require.Len(t, store.transactions, 1)
	row := store.transactions[0]
	assert.Equal(t, domain.TypeDeposit, row.TransactionType)
	assert.Equal(t, int64(2), row.ToAccountID)
	assertDecimal(t, "100.00", row.Amount)
	assert.False(t, row.TransactionDate.IsZero())
}

func TestDepositToUnknownAccount(t *testing.T) {
	store := newFakeStore(seedAccounts()...)
	svc := newTestTransactionService(store)

	_, err := svc.CreateTransaction(depositRequest(999, "100.00"))

	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.InvalidAccount, appErr.Code)
	assert.Contains(t, appErr.Message, "destination account 999")
	assert.Empty(t, store.transactions)
}

func TestWithdraw(t *testing.T) {
	store := newFakeStore(seedAccounts()...)
	svc := newTestTransactionService(store)

	message, err := svc.CreateTransaction(&TransactionRequest{
		FromAccountID:   1,
		ToAccountID:     1,
		TransactionType: domain.TypeWithdrawal,
		Amount:          dec("200.50"),
	})

	require.NoError(t, err)
	assert.Equal(t, "Withdrawal of 200.5 from account 1 completed successfully. Remaining balance: 800. Transaction id: 1", message)
	assertDecimal(t, "800.00", store.balance(1))
	require.Len(t, store.transactions, 1)
	assert.Equal(t, domain.TypeWithdrawal, store.transactions[0].TransactionType)
}

func TestWithdrawExactBalance(t *testing.T) {
	store := newFakeStore(seedAccounts()...)
	svc := newTestTransactionService(store)

	_, err := svc.CreateTransaction(&TransactionRequest{
		FromAccountID:   1,
		ToAccountID:     1,
		TransactionType: domain.TypeWithdrawal,
		Amount:          dec("1000.50"),
	})

	require.NoError(t, err)
	assertDecimal(t, "0", store.balance(1))
}

func TestWithdrawInsufficientBalance(t *testing.T) {
	store := newFakeStore(seedAccounts()...)
	svc := newTestTransactionService(store)

	_, err := svc.CreateTransaction(&TransactionRequest{
		FromAccountID:   1,
		ToAccountID:     1,
		TransactionType: domain.TypeWithdrawal,
		Amount:          dec("10000.00"),
	})

	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.InsufficientBalance, appErr.Code)
	assertDecimal(t, "1000.50", store.balance(1))
	assert.Empty(t, store.transactions)
}

func TestWithdrawFromUnknownAccount(t *testing.T) {
	store := newFakeStore(seedAccounts()...)
	svc := newTestTransactionService(store)

	_, err := svc.CreateTransaction(&TransactionRequest{
		FromAccountID:   999,
		ToAccountID:     999,
		TransactionType: domain.TypeWithdrawal,
		Amount:          dec("10.00"),
	})

	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.InvalidAccount, appErr.Code)
	assert.Contains(t, appErr.Message, "source account 999")
}

func TestTransfer(t *testing.T) {
	store := newFakeStore(
		domain.Account{AccountID: 1, CustomerName: "Alice Johnson", TotalBalance: dec("100.00")},
		domain.Account{AccountID: 2, CustomerName: "Bob Smith", TotalBalance: dec("50.00")},
	)
	svc := newTestTransactionService(store)

	message, err := svc.CreateTransaction(&TransactionRequest{
		FromAccountID:   1,
		ToAccountID:     2,
		TransactionType: domain.TypeTransfer,
		Amount:          dec("30.00"),
	})

	require.NoError(t, err)
	assert.Equal(t, "Transfer of 30 from account 1 to account 2 completed successfully. Transaction id: 1", message)
	assertDecimal(t, "70.00", store.balance(1))
	assertDecimal(t, "80.00", store.balance(2))

	require.Len(t, store.transactions, 1)
	row := store.transactions[0]
	assert.Equal(t, domain.TypeTransfer, row.TransactionType)
	assert.Equal(t, int64(1), row.FromAccountID)
	assert.Equal(t, int64(2), row.ToAccountID)
}

func TestTransferHigherToLowerID(t *testing.T) {
	store := newFakeStore(seedAccounts()...)
	svc := newTestTransactionService(store)

	_, err := svc.CreateTransaction(&TransactionRequest{
		FromAccountID:   2,
		ToAccountID:     1,
		TransactionType: domain.TypeTransfer,
		Amount:          dec("100.00"),
	})

	require.NoError(t, err)
	assertDecimal(t, "400.25", store.balance(2))
	assertDecimal(t, "1100.50", store.balance(1))
}

func TestTransferInsufficientBalance(t *testing.T) {
	store := newFakeStore(seedAccounts()...)
	svc := newTestTransactionService(store)

	_, err := svc.CreateTransaction(&TransactionRequest{
		FromAccountID:   2,
		ToAccountID:     1,
		TransactionType: domain.TypeTransfer,
		Amount:          dec("9999.00"),
	})

	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.InsufficientBalance, appErr.Code)
	assertDecimal(t, "1000.50", store.balance(1))
	assertDecimal(t, "500.25", store.balance(2))
	assert.Empty(t, store.transactions)
}

func TestTransferToSameAccount(t *testing.T) {
	store := newFakeStore(seedAccounts()...)
	svc := newTestTransactionService(store)

	_, err := svc.CreateTransaction(&TransactionRequest{
		FromAccountID:   1,
		ToAccountID:     1,
		TransactionType: domain.TypeTransfer,
		Amount:          dec("10.00"),
	})

	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.SameAccountTransaction, appErr.Code)
	assert.Empty(t, store.transactions)
}

func TestTransferMissingAccounts(t *testing.T) {
	store := newFakeStore(seedAccounts()...)
	svc := newTestTransactionService(store)

	tests := []struct {
		name            string
		from, to        int64
		expectedMessage string
	}{
		{"unknown source", 999, 1, "source account 999 does not exist"},
		{"unknown destination", 1, 999, "destination account 999 does not exist"},
		{"both unknown", 998, 999, "source account 998 does not exist"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateTransaction(&TransactionRequest{
				FromAccountID:   tt.from,
				ToAccountID:     tt.to,
				TransactionType: domain.TypeTransfer,
				Amount:          dec("10.00"),
			})

			appErr, ok := apperrors.AsAppError(err)
			require.True(t, ok)
			assert.Equal(t, apperrors.InvalidAccount, appErr.Code)
			assert.Equal(t, tt.expectedMessage, appErr.Message)
		})
	}
}

func TestUnknownTransactionType(t *testing.T) {
	store := newFakeStore(seedAccounts()...)
	svc := newTestTransactionService(store)

	_, err := svc.CreateTransaction(&TransactionRequest{
		FromAccountID:   1,
		ToAccountID:     2,
		TransactionType: "XYZ",
		Amount:          dec("10.00"),
	})

	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.InvalidArgument, appErr.Code)
	assert.Contains(t, appErr.Message, "unknown transaction type")
}

func TestFailedLedgerInsertRollsBackBalances(t *testing.T) {
	store := newFakeStore(seedAccounts()...)
	store.transactionErr = apperrors.NewInternalError("failed to create transaction", nil)
	svc := newTestTransactionService(store)

	_, err := svc.CreateTransaction(depositRequest(2, "100.00"))

	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.InternalError, appErr.Code)
	assertDecimal(t, "500.25", store.balance(2))
	assert.Empty(t, store.transactions)
}

func TestCompletedTransactionIsPublished(t *testing.T) {
	store := newFakeStore(seedAccounts()...)
	publisher := &recordingPublisher{}
	svc := NewTransactionService(store, publisher, discardLogger())

	_, err := svc.CreateTransaction(depositRequest(2, "100.00"))

	require.NoError(t, err)
	require.Len(t, publisher.events, 1)
	assert.Equal(t, []string{events.TopicTransactionCompleted}, publisher.topics)

	event := publisher.events[0]
	assert.Equal(t, int64(1), event.TransactionID)
	assert.Equal(t, "DEP", event.TransactionType)
	assert.Equal(t, int64(2), event.ToAccountID)
	assert.Equal(t, "100", event.Amount)
	assert.False(t, event.OccurredAt.IsZero())
}

func TestPublishFailureDoesNotFailTransaction(t *testing.T) {
	store := newFakeStore(seedAccounts()...)
	svc := NewTransactionService(store, failingPublisher{}, discardLogger())

	_, err := svc.CreateTransaction(depositRequest(2, "100.00"))

	require.NoError(t, err)
	assertDecimal(t, "600.25", store.balance(2))
}

func TestFailedTransactionIsNotPublished(t *testing.T) {
	store := newFakeStore(seedAccounts()...)
	publisher := &recordingPublisher{}
	svc := NewTransactionService(store, publisher, discardLogger())

	_, err := svc.CreateTransaction(depositRequest(999, "100.00"))

	require.Error(t, err)
	assert.Empty(t, publisher.events)
}

func TestGetTransactionHistories(t *testing.T) {
	store := newFakeStore(seedAccounts()...)
	svc := newTestTransactionService(store)

	_, err := svc.CreateTransaction(depositRequest(2, "100.00"))
	require.NoError(t, err)
	_, err = svc.CreateTransaction(&TransactionRequest{
		FromAccountID:   1,
		ToAccountID:     2,
		TransactionType: domain.TypeTransfer,
		Amount:          dec("30.00"),
	})
	require.NoError(t, err)

	views, err := svc.GetTransactionHistoriesByAccount(2)

	require.NoError(t, err)
	require.Len(t, views, 2)

	// Newest first: the transfer precedes the deposit.
	assert.Equal(t, domain.TypeTransfer, views[0].TransactionType)
	assert.Equal(t, "Bob Smith", views[0].CustomerName)
	assert.Equal(t, "Alice Johnson", views[0].FromCustomerName)
	assertDecimal(t, "30.00", views[0].Amount)

	assert.Equal(t, domain.TypeDeposit, views[1].TransactionType)
	assert.Equal(t, "Bob Smith", views[1].CustomerName)
	assert.Equal(t, domain.ExternalDepositSource, views[1].FromCustomerName)
	assertDecimal(t, "100.00", views[1].Amount)
}

func TestGetTransactionHistoriesEmpty(t *testing.T) {
	store := newFakeStore(seedAccounts()...)
	svc := newTestTransactionService(store)

	views, err := svc.GetTransactionHistoriesByAccount(1)

	require.NoError(t, err)
	assert.Empty(t, views)
}

func TestGetTransactionHistoriesUnknownAccount(t *testing.T) {
	store := newFakeStore(seedAccounts()...)
	svc := newTestTransactionService(store)

	_, err := svc.GetTransactionHistoriesByAccount(999)

	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.EntityNotFound, appErr.Code)
}
