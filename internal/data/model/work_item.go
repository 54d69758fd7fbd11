package model

import (
	"time"
)

// WorkItem 生成记录表
// (account_id, fingerprint) 唯一索引是重复提交的防线
type WorkItem struct {
	WorkItemID         string    `gorm:"primaryKey;type:varchar(36)"`
	AccountID          string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_account_fingerprint,priority:1"`
	Fingerprint        string    `gorm:"type:varchar(32);not null;uniqueIndex:idx_account_fingerprint,priority:2"`
	JobTitle           string    `gorm:"type:varchar(128)"`
	CompanyName        string    `gorm:"type:varchar(128)"`
	RawJobDescription  string    `gorm:"type:text"`
	GeneratedCVData    string    `gorm:"type:mediumtext"` // 结构化生成结果（JSON）
	GeneratedCoverText string    `gorm:"type:mediumtext"`
	TemplateID         string    `gorm:"type:varchar(64);default:'standard-chronological'"`
	Status             string    `gorm:"type:varchar(16);not null;default:'generated'"`
	CreatedAt          time.Time `gorm:"autoCreateTime"`
	UpdatedAt          time.Time `gorm:"autoUpdateTime"`
}

// TableName 指定表名
func (WorkItem) TableName() string {
	return "work_item"
}
