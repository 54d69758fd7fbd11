package data

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/lilstex/elevate-cv/internal/biz"
	"github.com/lilstex/elevate-cv/internal/constants"
	creditErrors "github.com/lilstex/elevate-cv/internal/errors"
	"github.com/lilstex/elevate-cv/internal/data/model"

	"github.com/go-kratos/kratos/v2/log"
	"gorm.io/gorm"
)

// accountRepo 账户余额相关数据访问
type accountRepo struct {
	data *Data
	log  *log.Helper
}

// NewAccountRepo 创建账户 repo（返回 biz.AccountRepo 接口）
func NewAccountRepo(data *Data, logger log.Logger) biz.AccountRepo {
	return &accountRepo{
		data: data,
		log:  log.NewHelper(logger),
	}
}

// GetBalance 获取账户余额（读穿缓存，只保证 AccountID 和 Balance 有值）
func (r *accountRepo) GetBalance(ctx context.Context, accountID string) (*biz.Account, error) {
	if accountID == "" {
		return nil, fmt.Errorf("accountID is required")
	}

	// 先尝试从 Redis 获取
	balanceKey := fmt.Sprintf("%s%s", constants.RedisKeyBalance, accountID)
	balanceStr, err := r.data.rdb.Get(ctx, balanceKey).Result()
	if err == nil {
		if balance, err := strconv.ParseInt(balanceStr, 10, 64); err == nil {
			return &biz.Account{
				AccountID: accountID,
				Balance:   balance,
			}, nil
		}
	}

	// 缓存未命中，回落到数据库
	return r.GetAccount(ctx, accountID)
}

// GetAccount 获取账户完整记录（直读数据库，顺带回写余额缓存）
func (r *accountRepo) GetAccount(ctx context.Context, accountID string) (*biz.Account, error) {
	if accountID == "" {
		return nil, fmt.Errorf("accountID is required")
	}

	var m model.Account
	if err := r.data.db.WithContext(ctx).Where("account_id = ?", accountID).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// 账户不存在，返回 nil 而不是错误（调用方区分处理）
			return nil, nil
		}
		r.log.Errorf("GetAccount failed: accountID=%s, error=%v", accountID, err)
		return nil, fmt.Errorf("failed to query account: %w", err)
	}

	r.cacheBalance(m.AccountID, m.Balance)

	return &biz.Account{
		AccountID: m.AccountID,
		Email:     m.Email,
		Balance:   m.Balance,
		UpdatedAt: m.UpdatedAt,
	}, nil
}

// TryDebit 原子条件扣减
// 单条 UPDATE 带 balance >= ? 守卫，一次往返，失败不产生任何修改
// 余额非负不变式由这条语句保证，禁止改成读改写
func (r *accountRepo) TryDebit(ctx context.Context, accountID string, amount int64) (bool, int64, error) {
	res := r.data.db.WithContext(ctx).Model(&model.Account{}).
		Where("account_id = ? AND balance >= ?", accountID, amount).
		Update("balance", gorm.Expr("balance - ?", amount))
	if res.Error != nil {
		return false, 0, res.Error
	}
	if res.RowsAffected == 0 {
		// 账户不存在或余额不足，都视为扣减失败
		return false, 0, nil
	}

	newBalance, err := r.readBalance(ctx, accountID)
	if err != nil {
		// 扣减已经成功，余额读取失败只影响返回值
		r.log.Warnf("TryDebit: read balance failed after debit: accountID=%s, error=%v", accountID, err)
		return true, 0, nil
	}
	r.cacheBalance(accountID, newBalance)
	return true, newBalance, nil
}

// Credit 原子增加余额，账户不存在返回 ACCOUNT_NOT_FOUND
func (r *accountRepo) Credit(ctx context.Context, accountID string, amount int64) (int64, error) {
	res := r.data.db.WithContext(ctx).Model(&model.Account{}).
		Where("account_id = ?", accountID).
		Update("balance", gorm.Expr("balance + ?", amount))
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, creditErrors.ErrorAccountNotFound("account %s not found", accountID)
	}

	newBalance, err := r.readBalance(ctx, accountID)
	if err != nil {
		r.log.Warnf("Credit: read balance failed after credit: accountID=%s, error=%v", accountID, err)
		return 0, nil
	}
	r.cacheBalance(accountID, newBalance)
	return newBalance, nil
}

// ListAccountIDs 返回全部账户 ID（对账任务用）
func (r *accountRepo) ListAccountIDs(ctx context.Context) ([]string, error) {
	var ids []string
	if err := r.data.db.WithContext(ctx).Model(&model.Account{}).
		Pluck("account_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// readBalance 读取当前余额
func (r *accountRepo) readBalance(ctx context.Context, accountID string) (int64, error) {
	var balance int64
	if err := r.data.db.WithContext(ctx).Model(&model.Account{}).
		Where("account_id = ?", accountID).
		Pluck("balance", &balance).Error; err != nil {
		return 0, err
	}
	return balance, nil
}

// cacheBalance 更新余额缓存（设置超时避免阻塞，失败不影响主流程）
func (r *accountRepo) cacheBalance(accountID string, balance int64) {
	balanceKey := fmt.Sprintf("%s%s", constants.RedisKeyBalance, accountID)
	cacheCtx, cacheCancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cacheCancel()
	if err := r.data.rdb.Set(cacheCtx, balanceKey, strconv.FormatInt(balance, 10), 5*time.Minute).Err(); err != nil {
		r.log.Warnf("failed to update balance cache: accountID=%s, error=%v", accountID, err)
	}
}
