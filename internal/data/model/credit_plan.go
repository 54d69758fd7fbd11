package model

import (
	"time"
)

// CreditPlan 积分套餐表（只读参考数据，不在扣费热路径上）
type CreditPlan struct {
	CreditPlanID  string    `gorm:"primaryKey;type:varchar(36)"`
	Slug          string    `gorm:"type:varchar(64);not null;uniqueIndex"`
	Name          string    `gorm:"type:varchar(128);not null"`
	Credits       int64     `gorm:"not null"`
	PriceNGN      float64   `gorm:"type:decimal(10,2);not null"`
	PriceUSD      float64   `gorm:"type:decimal(10,2);not null"`
	StripePriceID string    `gorm:"type:varchar(64)"`
	IsActive      bool      `gorm:"not null;default:true"`
	CreatedAt     time.Time `gorm:"autoCreateTime"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime"`
}

// TableName 指定表名
func (CreditPlan) TableName() string {
	return "credit_plan"
}
