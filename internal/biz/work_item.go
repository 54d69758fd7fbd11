package biz

import (
	"context"
	"time"

	"github.com/go-kratos/kratos/v2/log"
)

// WorkItem 生成记录领域对象
type WorkItem struct {
	WorkItemID         string
	AccountID          string
	Fingerprint        string
	JobTitle           string
	CompanyName        string
	RawJobDescription  string
	GeneratedCVData    string // 结构化生成结果（JSON）
	GeneratedCoverText string
	TemplateID         string
	Status             string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// WorkItemRepo 生成记录数据层接口（定义在 biz 层）
type WorkItemRepo interface {
	// Create 创建生成记录；(account_id, fingerprint) 已存在时返回 errDuplicate=true
	// 唯一约束在存储层，并发重复提交由它裁决
	Create(ctx context.Context, item *WorkItem) (duplicate bool, err error)
	// GetByFingerprint 按 (账户, 指纹) 查询，不存在时返回 (nil, nil)
	GetByFingerprint(ctx context.Context, accountID, fingerprint string) (*WorkItem, error)
	// GetByID 按 ID 查询，不存在时返回 (nil, nil)
	GetByID(ctx context.Context, workItemID string) (*WorkItem, error)
	// ListByAccount 按账户分页查询
	ListByAccount(ctx context.Context, accountID string, page, pageSize int) ([]*WorkItem, int64, error)
}

// WorkItemUseCase 生成记录查询业务逻辑
type WorkItemUseCase struct {
	repo WorkItemRepo
	log  *log.Helper
}

// NewWorkItemUseCase 创建生成记录 UseCase
func NewWorkItemUseCase(repo WorkItemRepo, logger log.Logger) *WorkItemUseCase {
	return &WorkItemUseCase{
		repo: repo,
		log:  log.NewHelper(logger),
	}
}

// GetWorkItem 按 ID 获取生成记录
func (uc *WorkItemUseCase) GetWorkItem(ctx context.Context, workItemID string) (*WorkItem, error) {
	return uc.repo.GetByID(ctx, workItemID)
}

// ListWorkItems 获取账户的生成记录
func (uc *WorkItemUseCase) ListWorkItems(ctx context.Context, accountID string, page, pageSize int) ([]*WorkItem, int64, error) {
	return uc.repo.ListByAccount(ctx, accountID, page, pageSize)
}
