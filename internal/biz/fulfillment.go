package biz

import (
	"context"
	"fmt"

	"github.com/lilstex/elevate-cv/internal/constants"
	creditErrors "github.com/lilstex/elevate-cv/internal/errors"
	"github.com/lilstex/elevate-cv/internal/metrics"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/uuid"
)

// PurchaseEvent 归一化的支付成功事件（网关校验器产出）
type PurchaseEvent struct {
	AccountID         string
	AmountPaid        float64
	CreditsGranted    int64
	ProviderReference string // 全局唯一幂等键
	Gateway           string // stripe | paystack
}

// FulfillmentUseCase 购买履约业务逻辑
// 顺序固定：先追加流水（唯一约束是幂等闸门），再入账余额
type FulfillmentUseCase struct {
	accounts AccountRepo
	entries  LedgerEntryRepo
	log      *log.Helper
	metrics  *metrics.CreditMetrics
}

// NewFulfillmentUseCase 创建履约 UseCase
func NewFulfillmentUseCase(accounts AccountRepo, entries LedgerEntryRepo, logger log.Logger) *FulfillmentUseCase {
	return &FulfillmentUseCase{
		accounts: accounts,
		entries:  entries,
		log:      log.NewHelper(logger),
		metrics:  metrics.GetMetrics(),
	}
}

// FulfillPurchase 处理一次支付成功事件
// 返回 nil 表示调用方应向网关确认收到（包括重复投递的 no-op 场景），
// 否则网关会无限重试
func (uc *FulfillmentUseCase) FulfillPurchase(ctx context.Context, ev *PurchaseEvent) error {
	// 签名已验过，载荷却缺引用或积分数：永久畸形，重投递也不会变好。
	// 和未知账户一样只告警丢弃，返回 nil 让网关停止重试
	if ev.ProviderReference == "" || ev.CreditsGranted <= 0 {
		uc.log.Errorf("FulfillPurchase: malformed %s event dropped: ref=%q credits=%d account=%s",
			ev.Gateway, ev.ProviderReference, ev.CreditsGranted, ev.AccountID)
		if uc.metrics != nil {
			uc.metrics.FulfillmentTotal.WithLabelValues(ev.Gateway, constants.FulfillResultRejected).Inc()
		}
		return nil
	}

	// 1. 账户必须存在；未知账户视为伪造或脏数据，只告警不入账，也不触发重试
	account, err := uc.accounts.GetAccount(ctx, ev.AccountID)
	if err != nil {
		return err
	}
	if account == nil {
		uc.log.Errorf("FulfillPurchase: account %s not found for %s ref=%s, dropping event",
			ev.AccountID, ev.Gateway, ev.ProviderReference)
		if uc.metrics != nil {
			uc.metrics.FulfillmentTotal.WithLabelValues(ev.Gateway, constants.FulfillResultRejected).Inc()
		}
		return nil
	}

	// 2. 预检：已入账的流水号直接 no-op
	// 预检只是省一次写入，真正的幂等保证在 Append 的唯一约束上
	exists, err := uc.entries.Exists(ctx, ev.ProviderReference)
	if err != nil {
		return err
	}
	if exists {
		uc.log.Warnf("Duplicate webhook received for %s ref: %s", ev.Gateway, ev.ProviderReference)
		if uc.metrics != nil {
			uc.metrics.FulfillmentTotal.WithLabelValues(ev.Gateway, constants.FulfillResultDuplicate).Inc()
		}
		return nil
	}

	// 3. 先追加流水：并发投递在这里被唯一约束裁决
	entry := &LedgerEntry{
		LedgerEntryID:     uuid.New().String(),
		AccountID:         ev.AccountID,
		Delta:             ev.CreditsGranted,
		Kind:              constants.EntryKindPurchase,
		ProviderReference: ev.ProviderReference,
		Gateway:           ev.Gateway,
		AmountPaid:        ev.AmountPaid,
		Description:       fmt.Sprintf("Purchased %d credits via %s", ev.CreditsGranted, ev.Gateway),
	}
	if _, err := uc.entries.Append(ctx, entry); err != nil {
		if creditErrors.IsDuplicateProviderReference(err) {
			uc.log.Warnf("Concurrent duplicate delivery for %s ref: %s", ev.Gateway, ev.ProviderReference)
			if uc.metrics != nil {
				uc.metrics.FulfillmentTotal.WithLabelValues(ev.Gateway, constants.FulfillResultDuplicate).Inc()
			}
			return nil
		}
		return err
	}

	// 4. 入账。流水已落库后入账失败是账本不一致：
	// 只告警等人工对账，绝不自动重放（账户修复后重放会二次入账）
	if _, err := uc.accounts.Credit(ctx, ev.AccountID, ev.CreditsGranted); err != nil {
		uc.log.Errorf("ALERT ledger inconsistency: entry %s appended but credit failed for account %s: %v",
			entry.LedgerEntryID, ev.AccountID, err)
		if uc.metrics != nil {
			uc.metrics.LedgerInconsistencyTotal.Inc()
		}
		return nil
	}

	if uc.metrics != nil {
		uc.metrics.FulfillmentTotal.WithLabelValues(ev.Gateway, constants.FulfillResultCredited).Inc()
		uc.metrics.FulfillmentCredits.WithLabelValues(ev.Gateway).Add(float64(ev.CreditsGranted))
	}
	uc.log.Infof("Successfully credited %d credits to account %s (ref=%s)", ev.CreditsGranted, ev.AccountID, ev.ProviderReference)
	return nil
}
