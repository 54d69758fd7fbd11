package biz

import (
	"context"
	"time"

	"github.com/go-kratos/kratos/v2/log"
)

// Account 积分账户领域对象
type Account struct {
	AccountID string
	Email     string
	Balance   int64
	UpdatedAt time.Time
}

// AccountRepo 账本原语数据层接口（定义在 biz 层）
// TryDebit/Credit 必须是单条原子存储操作，余额不变式由存储层保证
type AccountRepo interface {
	// GetAccount 按 ID 查询账户，不存在时返回 (nil, nil)
	GetAccount(ctx context.Context, accountID string) (*Account, error)
	// GetBalance 查询余额（可走缓存，只保证 AccountID 和 Balance 有值）
	GetBalance(ctx context.Context, accountID string) (*Account, error)
	// TryDebit 原子条件扣减：balance >= amount 时扣减并返回新余额，否则不做任何修改
	TryDebit(ctx context.Context, accountID string, amount int64) (bool, int64, error)
	// Credit 原子增加余额，账户不存在时返回 ACCOUNT_NOT_FOUND
	Credit(ctx context.Context, accountID string, amount int64) (int64, error)
	// ListAccountIDs 返回全部账户 ID（对账任务用）
	ListAccountIDs(ctx context.Context) ([]string, error)
}

// AccountUseCase 账户余额业务逻辑
type AccountUseCase struct {
	repo AccountRepo
	log  *log.Helper
}

// NewAccountUseCase 创建账户 UseCase
func NewAccountUseCase(repo AccountRepo, logger log.Logger) *AccountUseCase {
	return &AccountUseCase{
		repo: repo,
		log:  log.NewHelper(logger),
	}
}

// GetBalance 获取账户余额
func (uc *AccountUseCase) GetBalance(ctx context.Context, accountID string) (*Account, error) {
	return uc.repo.GetBalance(ctx, accountID)
}
