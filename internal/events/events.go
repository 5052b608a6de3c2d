package events

import "time"

// TopicTransactionCompleted carries one event per successfully committed
// transaction pipeline.
const TopicTransactionCompleted = "transaction_completed"

// Publisher fans events out to interested consumers. Publishing happens
// after commit and is best effort; failures must not undo the transaction.
type Publisher interface {
	Publish(topic string, event any) error
}

// TransactionCompleted describes a committed ledger entry.
type TransactionCompleted struct {
	TransactionID   int64     `json:"transactionId"`
	TransactionType string    `json:"transactionType"`
	FromAccountID   int64     `json:"fromAccountId"`
	ToAccountID     int64     `json:"toAccountId"`
	Amount          string    `json:"amount"`
	OccurredAt      time.Time `json:"occurredAt"`
}

// NoopPublisher discards every event. Used when no brokers are configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(string, any) error { return nil }
