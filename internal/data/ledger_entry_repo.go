package data

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/lilstex/elevate-cv/internal/biz"
	creditErrors "github.com/lilstex/elevate-cv/internal/errors"
	"github.com/lilstex/elevate-cv/internal/data/model"

	"github.com/apache/rocketmq-client-go/v2/primitive"
	"github.com/go-kratos/kratos/v2/log"
	"gorm.io/gorm"
)

// 消耗流水异步落库的默认 topic，未配置时兜底
const defaultUsageEntryTopic = "credit_usage_entry_queue"

// ledgerEntryRepo 流水相关数据访问
type ledgerEntryRepo struct {
	data *Data
	log  *log.Helper
}

// NewLedgerEntryRepo 创建流水 repo（返回 biz.LedgerEntryRepo 接口）
func NewLedgerEntryRepo(data *Data, logger log.Logger) biz.LedgerEntryRepo {
	return &ledgerEntryRepo{
		data: data,
		log:  log.NewHelper(logger),
	}
}

// Append 追加流水
// provider_reference 的唯一索引是购买幂等性的真正闸门：
// 并发投递两条同引用流水时，输家在这里确定性失败
func (r *ledgerEntryRepo) Append(ctx context.Context, entry *biz.LedgerEntry) (*biz.LedgerEntry, error) {
	m := toEntryModel(entry)
	if err := r.data.db.WithContext(ctx).Create(m).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) && entry.ProviderReference != "" {
			return nil, creditErrors.ErrorDuplicateProviderReference("provider reference %s already recorded", entry.ProviderReference)
		}
		return nil, err
	}
	return fromEntryModel(m), nil
}

// Exists 判断支付流水号是否已入账
func (r *ledgerEntryRepo) Exists(ctx context.Context, providerReference string) (bool, error) {
	if providerReference == "" {
		return false, nil
	}
	var count int64
	if err := r.data.db.WithContext(ctx).Model(&model.LedgerEntry{}).
		Where("provider_reference = ?", providerReference).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// AppendUsage 追加消耗流水
// MQ 启用时发送到 RocketMQ 异步批量落库（消耗流水没有幂等键，延迟写入不影响购买闸门）；
// 发送失败或 MQ 未启用时降级为同步写入
func (r *ledgerEntryRepo) AppendUsage(ctx context.Context, entry *biz.LedgerEntry) error {
	if r.data.mq == nil {
		return r.appendUsageDB(ctx, entry)
	}

	event := &biz.UsageEvent{
		LedgerEntryID: entry.LedgerEntryID,
		AccountID:     entry.AccountID,
		Delta:         entry.Delta,
		Kind:          entry.Kind,
		Description:   entry.Description,
		DeductTime:    time.Now(),
	}
	topic := r.data.mqTopic
	if topic == "" {
		topic = defaultUsageEntryTopic
	}
	msgBytes, _ := json.Marshal(event)
	msg := primitive.NewMessage(topic, msgBytes)

	if _, err := r.data.mq.SendSync(ctx, msg); err != nil {
		r.log.Errorf("Send RocketMQ failed: %v", err)
		// 降级回同步落库
		return r.appendUsageDB(ctx, entry)
	}
	return nil
}

// BatchAppend 批量落库（MQ 消费侧调用）
func (r *ledgerEntryRepo) BatchAppend(ctx context.Context, entries []*biz.LedgerEntry) error {
	if len(entries) == 0 {
		return nil
	}

	return r.data.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, entry := range entries {
			if err := tx.Create(toEntryModel(entry)).Error; err != nil {
				// 消费重试会带来重复主键，跳过已经落库的那条
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					r.log.Warnf("BatchAppend: entry %s already persisted, skipping", entry.LedgerEntryID)
					continue
				}
				return err
			}
		}
		return nil
	})
}

// ListByAccount 按账户分页查询流水
func (r *ledgerEntryRepo) ListByAccount(ctx context.Context, accountID string, page, pageSize int) ([]*biz.LedgerEntry, int64, error) {
	var total int64
	if err := r.data.db.WithContext(ctx).Model(&model.LedgerEntry{}).
		Where("account_id = ?", accountID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var ms []model.LedgerEntry
	if err := r.data.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&ms).Error; err != nil {
		return nil, 0, err
	}

	entries := make([]*biz.LedgerEntry, 0, len(ms))
	for i := range ms {
		entries = append(entries, fromEntryModel(&ms[i]))
	}
	return entries, total, nil
}

// SumDeltas 汇总账户全部流水增量（对账任务用）
func (r *ledgerEntryRepo) SumDeltas(ctx context.Context, accountID string) (int64, error) {
	var sum int64
	if err := r.data.db.WithContext(ctx).Model(&model.LedgerEntry{}).
		Where("account_id = ?", accountID).
		Select("COALESCE(SUM(delta), 0)").
		Scan(&sum).Error; err != nil {
		return 0, err
	}
	return sum, nil
}

// appendUsageDB 消耗流水同步落库
func (r *ledgerEntryRepo) appendUsageDB(ctx context.Context, entry *biz.LedgerEntry) error {
	return r.data.db.WithContext(ctx).Create(toEntryModel(entry)).Error
}

// toEntryModel 领域对象转存储模型（空 provider reference 存 NULL）
func toEntryModel(entry *biz.LedgerEntry) *model.LedgerEntry {
	m := &model.LedgerEntry{
		LedgerEntryID: entry.LedgerEntryID,
		AccountID:     entry.AccountID,
		Delta:         entry.Delta,
		Kind:          entry.Kind,
		Gateway:       entry.Gateway,
		AmountPaid:    entry.AmountPaid,
		Description:   entry.Description,
		CreatedAt:     entry.CreatedAt,
	}
	if entry.ProviderReference != "" {
		ref := entry.ProviderReference
		m.ProviderReference = &ref
	}
	return m
}

// fromEntryModel 存储模型转领域对象
func fromEntryModel(m *model.LedgerEntry) *biz.LedgerEntry {
	entry := &biz.LedgerEntry{
		LedgerEntryID: m.LedgerEntryID,
		AccountID:     m.AccountID,
		Delta:         m.Delta,
		Kind:          m.Kind,
		Gateway:       m.Gateway,
		AmountPaid:    m.AmountPaid,
		Description:   m.Description,
		CreatedAt:     m.CreatedAt,
	}
	if m.ProviderReference != nil {
		entry.ProviderReference = *m.ProviderReference
	}
	return entry
}
