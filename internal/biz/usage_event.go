package biz

import "time"

// UsageEvent is the message sent to RocketMQ for asynchronous batch persistence
// of usage ledger entries. Usage entries carry no provider reference, so the
// delayed append never weakens the purchase idempotency gate.
type UsageEvent struct {
	LedgerEntryID string    `json:"ledger_entry_id"`
	AccountID     string    `json:"account_id"`
	Delta         int64     `json:"delta"`
	Kind          string    `json:"kind"`
	Description   string    `json:"description"`
	DeductTime    time.Time `json:"deduct_time"`
}
