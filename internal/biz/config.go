package biz

import (
	"github.com/lilstex/elevate-cv/internal/conf"
)

// 默认单次生成消耗的积分数
const defaultUnitCost = 10

// BillingConfig 计费配置
type BillingConfig struct {
	// UnitCost 单次生成消耗的积分数
	UnitCost int64
}

// NewBillingConfig 从配置创建 BillingConfig
func NewBillingConfig(c *conf.Bootstrap) *BillingConfig {
	config := &BillingConfig{
		UnitCost: defaultUnitCost,
	}
	if c.Billing != nil && c.Billing.UnitCost > 0 {
		config.UnitCost = c.Billing.UnitCost
	}
	return config
}
