package data

import (
	"context"
	"errors"

	"github.com/lilstex/elevate-cv/internal/biz"
	"github.com/lilstex/elevate-cv/internal/data/model"

	"github.com/go-kratos/kratos/v2/log"
	"gorm.io/gorm"
)

// workItemRepo 生成记录相关数据访问
type workItemRepo struct {
	data *Data
	log  *log.Helper
}

// NewWorkItemRepo 创建生成记录 repo（返回 biz.WorkItemRepo 接口）
func NewWorkItemRepo(data *Data, logger log.Logger) biz.WorkItemRepo {
	return &workItemRepo{
		data: data,
		log:  log.NewHelper(logger),
	}
}

// Create 创建生成记录
// (account_id, fingerprint) 唯一索引裁决并发重复提交：输家拿到 duplicate=true
func (r *workItemRepo) Create(ctx context.Context, item *biz.WorkItem) (bool, error) {
	m := toWorkItemModel(item)
	if err := r.data.db.WithContext(ctx).Create(m).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return true, nil
		}
		return false, err
	}
	item.CreatedAt = m.CreatedAt
	item.UpdatedAt = m.UpdatedAt
	return false, nil
}

// GetByFingerprint 按 (账户, 指纹) 查询生成记录
func (r *workItemRepo) GetByFingerprint(ctx context.Context, accountID, fingerprint string) (*biz.WorkItem, error) {
	var m model.WorkItem
	if err := r.data.db.WithContext(ctx).
		Where("account_id = ? AND fingerprint = ?", accountID, fingerprint).
		First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return fromWorkItemModel(&m), nil
}

// GetByID 按 ID 查询生成记录
func (r *workItemRepo) GetByID(ctx context.Context, workItemID string) (*biz.WorkItem, error) {
	var m model.WorkItem
	if err := r.data.db.WithContext(ctx).
		Where("work_item_id = ?", workItemID).
		First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return fromWorkItemModel(&m), nil
}

// ListByAccount 按账户分页查询生成记录
func (r *workItemRepo) ListByAccount(ctx context.Context, accountID string, page, pageSize int) ([]*biz.WorkItem, int64, error) {
	var total int64
	if err := r.data.db.WithContext(ctx).Model(&model.WorkItem{}).
		Where("account_id = ?", accountID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var ms []model.WorkItem
	if err := r.data.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&ms).Error; err != nil {
		return nil, 0, err
	}

	items := make([]*biz.WorkItem, 0, len(ms))
	for i := range ms {
		items = append(items, fromWorkItemModel(&ms[i]))
	}
	return items, total, nil
}

// toWorkItemModel 领域对象转存储模型
func toWorkItemModel(item *biz.WorkItem) *model.WorkItem {
	return &model.WorkItem{
		WorkItemID:         item.WorkItemID,
		AccountID:          item.AccountID,
		Fingerprint:        item.Fingerprint,
		JobTitle:           item.JobTitle,
		CompanyName:        item.CompanyName,
		RawJobDescription:  item.RawJobDescription,
		GeneratedCVData:    item.GeneratedCVData,
		GeneratedCoverText: item.GeneratedCoverText,
		TemplateID:         item.TemplateID,
		Status:             item.Status,
	}
}

// fromWorkItemModel 存储模型转领域对象
func fromWorkItemModel(m *model.WorkItem) *biz.WorkItem {
	return &biz.WorkItem{
		WorkItemID:         m.WorkItemID,
		AccountID:          m.AccountID,
		Fingerprint:        m.Fingerprint,
		JobTitle:           m.JobTitle,
		CompanyName:        m.CompanyName,
		RawJobDescription:  m.RawJobDescription,
		GeneratedCVData:    m.GeneratedCVData,
		GeneratedCoverText: m.GeneratedCoverText,
		TemplateID:         m.TemplateID,
		Status:             m.Status,
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}
}
