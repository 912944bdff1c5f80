package amqp

import (
	"encoding/json"
	"time"
)

// TransactionCreatedMessage announces a newly appended ledger record.
// It carries only identifiers; consumers fetch the full record from the
// store so the queue never holds stale field values.
type TransactionCreatedMessage struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	Timestamp time.Time `json:"timestamp"`
}

func NewTransactionCreatedMessage(id, ownerID string) *TransactionCreatedMessage {
	return &TransactionCreatedMessage{
		ID:        id,
		OwnerID:   ownerID,
		Timestamp: time.Now(),
	}
}

func (m *TransactionCreatedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func TransactionCreatedMessageFromJSON(data []byte) (*TransactionCreatedMessage, error) {
	var msg TransactionCreatedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
