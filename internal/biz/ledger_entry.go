package biz

import (
	"context"
	"time"

	"github.com/go-kratos/kratos/v2/log"
)

// LedgerEntry 积分流水领域对象（不可变，append-only）
type LedgerEntry struct {
	LedgerEntryID     string
	AccountID         string
	Delta             int64 // 正数=购买/退款，负数=消耗
	Kind              string
	ProviderReference string // 支付网关流水号，仅购买流水有值
	Gateway           string
	AmountPaid        float64
	Description       string
	CreatedAt         time.Time
}

// LedgerEntryRepo 流水数据层接口（定义在 biz 层）
type LedgerEntryRepo interface {
	// Append 追加流水；provider_reference 非空且已存在时返回 DUPLICATE_PROVIDER_REFERENCE
	// 唯一约束在存储层，这是购买幂等性的真正闸门
	Append(ctx context.Context, entry *LedgerEntry) (*LedgerEntry, error)
	// Exists 判断支付流水号是否已入账
	Exists(ctx context.Context, providerReference string) (bool, error)
	// AppendUsage 追加消耗流水；MQ 启用时异步批量落库，否则同步写入
	AppendUsage(ctx context.Context, entry *LedgerEntry) error
	// BatchAppend 批量落库（MQ 消费侧调用）
	BatchAppend(ctx context.Context, entries []*LedgerEntry) error
	// ListByAccount 按账户分页查询流水
	ListByAccount(ctx context.Context, accountID string, page, pageSize int) ([]*LedgerEntry, int64, error)
	// SumDeltas 汇总账户全部流水增量（对账任务用）
	SumDeltas(ctx context.Context, accountID string) (int64, error)
}

// LedgerEntryUseCase 流水查询业务逻辑
type LedgerEntryUseCase struct {
	repo LedgerEntryRepo
	log  *log.Helper
}

// NewLedgerEntryUseCase 创建流水 UseCase
func NewLedgerEntryUseCase(repo LedgerEntryRepo, logger log.Logger) *LedgerEntryUseCase {
	return &LedgerEntryUseCase{
		repo: repo,
		log:  log.NewHelper(logger),
	}
}

// ListEntries 获取账户流水
func (uc *LedgerEntryUseCase) ListEntries(ctx context.Context, accountID string, page, pageSize int) ([]*LedgerEntry, int64, error) {
	return uc.repo.ListByAccount(ctx, accountID, page, pageSize)
}
