package model

import (
	"github.com/lilstex/elevate-cv/internal/constants"

	"time"
)

// 流水类型常量（引用 constants 包中的常量，保持一致性）
const (
	EntryKindPurchase = constants.EntryKindPurchase // 购买入账
	EntryKindUsage    = constants.EntryKindUsage    // 消耗出账
)

// LedgerEntry 积分流水表（append-only，幂等性保证）
// ProviderReference 为空时存 NULL，唯一索引只约束非空值
type LedgerEntry struct {
	LedgerEntryID     string    `gorm:"primaryKey;type:varchar(36)"`
	AccountID         string    `gorm:"type:varchar(36);not null;index:idx_account_created,priority:1"`
	Delta             int64     `gorm:"not null"` // 正数=购买/退款，负数=消耗
	Kind              string    `gorm:"type:enum('purchase','usage');not null"`
	ProviderReference *string   `gorm:"type:varchar(128);uniqueIndex"` // 支付网关流水号（幂等键）
	Gateway           string    `gorm:"type:varchar(16)"`
	AmountPaid        float64   `gorm:"type:decimal(10,2);default:0.00"`
	Description       string    `gorm:"type:varchar(255)"`
	CreatedAt         time.Time `gorm:"autoCreateTime;index:idx_account_created,priority:2"`
}

// TableName 指定表名
func (LedgerEntry) TableName() string {
	return "ledger_entry"
}
