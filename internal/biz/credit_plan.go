package biz

import (
	"context"
	"time"

	creditErrors "github.com/lilstex/elevate-cv/internal/errors"

	"github.com/go-kratos/kratos/v2/log"
)

// CreditPlan 积分套餐领域对象
type CreditPlan struct {
	CreditPlanID  string
	Slug          string
	Name          string
	Credits       int64
	PriceNGN      float64
	PriceUSD      float64
	StripePriceID string
	IsActive      bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// PlanRepo 套餐数据层接口（定义在 biz 层）
type PlanRepo interface {
	Create(ctx context.Context, plan *CreditPlan) error
	Update(ctx context.Context, plan *CreditPlan) error
	// Deactivate 下架套餐（不做物理删除）
	Deactivate(ctx context.Context, creditPlanID string) error
	// FindActiveBySlug 按 slug 查询在售套餐，不存在时返回 (nil, nil)
	FindActiveBySlug(ctx context.Context, slug string) (*CreditPlan, error)
	GetByID(ctx context.Context, creditPlanID string) (*CreditPlan, error)
	// ListActive 按积分数升序返回全部在售套餐
	ListActive(ctx context.Context) ([]*CreditPlan, error)
}

// PlanUseCase 套餐业务逻辑
type PlanUseCase struct {
	repo PlanRepo
	log  *log.Helper
}

// NewPlanUseCase 创建套餐 UseCase
func NewPlanUseCase(repo PlanRepo, logger log.Logger) *PlanUseCase {
	return &PlanUseCase{
		repo: repo,
		log:  log.NewHelper(logger),
	}
}

// FindActiveBySlug 按 slug 获取在售套餐
func (uc *PlanUseCase) FindActiveBySlug(ctx context.Context, slug string) (*CreditPlan, error) {
	plan, err := uc.repo.FindActiveBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, creditErrors.ErrorPlanNotFound("invalid or inactive plan: %s", slug)
	}
	return plan, nil
}

// ListActive 获取全部在售套餐
func (uc *PlanUseCase) ListActive(ctx context.Context) ([]*CreditPlan, error) {
	return uc.repo.ListActive(ctx)
}

// CreatePlan 创建套餐（管理端）
func (uc *PlanUseCase) CreatePlan(ctx context.Context, plan *CreditPlan) error {
	return uc.repo.Create(ctx, plan)
}

// UpdatePlan 更新套餐（管理端）
func (uc *PlanUseCase) UpdatePlan(ctx context.Context, plan *CreditPlan) error {
	existing, err := uc.repo.GetByID(ctx, plan.CreditPlanID)
	if err != nil {
		return err
	}
	if existing == nil {
		return creditErrors.ErrorPlanNotFound("plan %s not found", plan.CreditPlanID)
	}
	return uc.repo.Update(ctx, plan)
}

// DeactivatePlan 下架套餐（管理端）
func (uc *PlanUseCase) DeactivatePlan(ctx context.Context, creditPlanID string) error {
	existing, err := uc.repo.GetByID(ctx, creditPlanID)
	if err != nil {
		return err
	}
	if existing == nil {
		return creditErrors.ErrorPlanNotFound("plan %s not found", creditPlanID)
	}
	return uc.repo.Deactivate(ctx, creditPlanID)
}
