package model

import (
	"time"
)

// Account 积分账户表
// Balance 只允许通过单条原子 UPDATE 修改，禁止读改写
type Account struct {
	AccountID string    `gorm:"primaryKey;type:varchar(36)"`
	Email     string    `gorm:"type:varchar(128);index"`
	Balance   int64     `gorm:"not null;default:0"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// TableName 指定表名
func (Account) TableName() string {
	return "account"
}
