package data

import (
	"context"
	"errors"
	"time"

	"github.com/lilstex/elevate-cv/internal/biz"
	"github.com/lilstex/elevate-cv/internal/constants"
	"github.com/lilstex/elevate-cv/internal/metrics"
	"github.com/lilstex/elevate-cv/internal/data/model"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-redsync/redsync/v4"
	"gorm.io/gorm"
)

// planRepo 套餐相关数据访问
type planRepo struct {
	data    *Data
	sync    *redsync.Redsync
	log     *log.Helper
	metrics *metrics.CreditMetrics
}

// NewPlanRepo 创建套餐 repo（返回 biz.PlanRepo 接口）
func NewPlanRepo(data *Data, sync *redsync.Redsync, logger log.Logger) biz.PlanRepo {
	return &planRepo{
		data:    data,
		sync:    sync,
		log:     log.NewHelper(logger),
		metrics: metrics.GetMetrics(),
	}
}

// Create 创建套餐（管理端写入跨实例串行化）
func (r *planRepo) Create(ctx context.Context, plan *biz.CreditPlan) error {
	unlock, err := r.lockPlans()
	if err != nil {
		return err
	}
	defer unlock()

	m := toPlanModel(plan)
	m.IsActive = true
	return r.data.db.WithContext(ctx).Create(m).Error
}

// Update 更新套餐
func (r *planRepo) Update(ctx context.Context, plan *biz.CreditPlan) error {
	unlock, err := r.lockPlans()
	if err != nil {
		return err
	}
	defer unlock()

	return r.data.db.WithContext(ctx).Model(&model.CreditPlan{}).
		Where("credit_plan_id = ?", plan.CreditPlanID).
		Updates(map[string]interface{}{
			"slug":            plan.Slug,
			"name":            plan.Name,
			"credits":         plan.Credits,
			"price_ngn":       plan.PriceNGN,
			"price_usd":       plan.PriceUSD,
			"stripe_price_id": plan.StripePriceID,
			"is_active":       plan.IsActive,
		}).Error
}

// Deactivate 下架套餐（不做物理删除，历史流水还引用它）
func (r *planRepo) Deactivate(ctx context.Context, creditPlanID string) error {
	unlock, err := r.lockPlans()
	if err != nil {
		return err
	}
	defer unlock()

	return r.data.db.WithContext(ctx).Model(&model.CreditPlan{}).
		Where("credit_plan_id = ?", creditPlanID).
		Update("is_active", false).Error
}

// FindActiveBySlug 按 slug 查询在售套餐
func (r *planRepo) FindActiveBySlug(ctx context.Context, slug string) (*biz.CreditPlan, error) {
	var m model.CreditPlan
	if err := r.data.db.WithContext(ctx).
		Where("slug = ? AND is_active = ?", slug, true).
		First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return fromPlanModel(&m), nil
}

// GetByID 按 ID 查询套餐
func (r *planRepo) GetByID(ctx context.Context, creditPlanID string) (*biz.CreditPlan, error) {
	var m model.CreditPlan
	if err := r.data.db.WithContext(ctx).
		Where("credit_plan_id = ?", creditPlanID).
		First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return fromPlanModel(&m), nil
}

// ListActive 按积分数升序返回全部在售套餐
func (r *planRepo) ListActive(ctx context.Context) ([]*biz.CreditPlan, error) {
	var ms []model.CreditPlan
	if err := r.data.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("credits ASC").
		Find(&ms).Error; err != nil {
		return nil, err
	}

	plans := make([]*biz.CreditPlan, 0, len(ms))
	for i := range ms {
		plans = append(plans, fromPlanModel(&ms[i]))
	}
	return plans, nil
}

// lockPlans 获取套餐写锁（管理端低频操作，锁不在扣费热路径上）
func (r *planRepo) lockPlans() (func(), error) {
	if r.sync == nil {
		return func() {}, nil
	}

	lockStartTime := time.Now()
	mutex := r.sync.NewMutex(constants.RedisKeyPlanLock+"admin", redsync.WithExpiry(5*time.Second))
	if err := mutex.Lock(); err != nil {
		if r.metrics != nil {
			r.metrics.LockAcquireTotal.WithLabelValues(constants.LockResultFailed).Inc()
			r.metrics.LockAcquireDuration.Observe(time.Since(lockStartTime).Seconds())
		}
		return nil, err
	}
	if r.metrics != nil {
		r.metrics.LockAcquireTotal.WithLabelValues(constants.LockResultSuccess).Inc()
		r.metrics.LockAcquireDuration.Observe(time.Since(lockStartTime).Seconds())
	}

	return func() {
		if ok, err := mutex.Unlock(); !ok || err != nil {
			r.log.Warnf("failed to unlock plan admin mutex: %v", err)
		}
	}, nil
}

// toPlanModel 领域对象转存储模型
func toPlanModel(plan *biz.CreditPlan) *model.CreditPlan {
	return &model.CreditPlan{
		CreditPlanID:  plan.CreditPlanID,
		Slug:          plan.Slug,
		Name:          plan.Name,
		Credits:       plan.Credits,
		PriceNGN:      plan.PriceNGN,
		PriceUSD:      plan.PriceUSD,
		StripePriceID: plan.StripePriceID,
		IsActive:      plan.IsActive,
	}
}

// fromPlanModel 存储模型转领域对象
func fromPlanModel(m *model.CreditPlan) *biz.CreditPlan {
	return &biz.CreditPlan{
		CreditPlanID:  m.CreditPlanID,
		Slug:          m.Slug,
		Name:          m.Name,
		Credits:       m.Credits,
		PriceNGN:      m.PriceNGN,
		PriceUSD:      m.PriceUSD,
		StripePriceID: m.StripePriceID,
		IsActive:      m.IsActive,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}
