package biz

import (
	"context"
	"fmt"
	"time"

	"github.com/lilstex/elevate-cv/internal/constants"
	creditErrors "github.com/lilstex/elevate-cv/internal/errors"
	"github.com/lilstex/elevate-cv/internal/metrics"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/uuid"
)

// GenerateRequest 一次生成请求的输入
type GenerateRequest struct {
	JobTitle       string
	CompanyName    string
	JobDescription string
}

// GenerationOutput 上游生成结果
type GenerationOutput struct {
	CVData      string // 结构化生成结果（JSON）
	CoverLetter string
}

// GenerationClient 上游内容生成客户端接口（外部、可失败、可能超时）
type GenerationClient interface {
	GenerateTailored(ctx context.Context, req *GenerateRequest) (*GenerationOutput, error)
}

// UsageTicket InitiateUsage 的结果
// Duplicate 为 true 时 WorkItem 是已有记录，未发生任何账本变动
type UsageTicket struct {
	Duplicate   bool
	Fingerprint string
	WorkItem    *WorkItem
}

// UsageUseCase 计量消耗业务逻辑
// 状态推进：Received -> Deduplicated|Debited -> Fulfilled|Compensated
// 第 2~6 步之间不持有任何锁：防双扣靠指纹唯一约束加失败补偿，而不是互斥
type UsageUseCase struct {
	accounts  AccountRepo
	entries   LedgerEntryRepo
	workItems WorkItemRepo
	generator GenerationClient
	conf      *BillingConfig
	log       *log.Helper
	metrics   *metrics.CreditMetrics
}

// NewUsageUseCase 创建计量消耗 UseCase
func NewUsageUseCase(
	accounts AccountRepo,
	entries LedgerEntryRepo,
	workItems WorkItemRepo,
	generator GenerationClient,
	conf *BillingConfig,
	logger log.Logger,
) *UsageUseCase {
	return &UsageUseCase{
		accounts:  accounts,
		entries:   entries,
		workItems: workItems,
		generator: generator,
		conf:      conf,
		log:       log.NewHelper(logger),
		metrics:   metrics.GetMetrics(),
	}
}

// InitiateUsage 发起一次计量消耗：指纹去重，通过后原子扣费
// 重复提交返回已有记录，不产生任何账本变动
func (uc *UsageUseCase) InitiateUsage(ctx context.Context, accountID, text string) (*UsageTicket, error) {
	fingerprint := Fingerprint(text)

	existing, err := uc.workItems.GetByFingerprint(ctx, accountID, fingerprint)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		if uc.metrics != nil {
			uc.metrics.UsageTotal.WithLabelValues(constants.UsageResultDuplicate).Inc()
		}
		return &UsageTicket{Duplicate: true, Fingerprint: fingerprint, WorkItem: existing}, nil
	}

	ok, _, err := uc.accounts.TryDebit(ctx, accountID, uc.conf.UnitCost)
	if err != nil {
		return nil, err
	}
	if !ok {
		if uc.metrics != nil {
			uc.metrics.UsageTotal.WithLabelValues(constants.UsageResultInsufficient).Inc()
		}
		return nil, creditErrors.ErrorInsufficientCredits("account %s needs %d credits", accountID, uc.conf.UnitCost)
	}

	return &UsageTicket{Fingerprint: fingerprint}, nil
}

// CompleteUsage 生成成功后持久化记录并追加消耗流水
// 唯一约束裁决并发重复：落库撞唯一键说明赢家已付费，本次扣费要退还
func (uc *UsageUseCase) CompleteUsage(ctx context.Context, accountID, fingerprint string, req *GenerateRequest, out *GenerationOutput) (*WorkItem, bool, error) {
	item := &WorkItem{
		WorkItemID:         uuid.New().String(),
		AccountID:          accountID,
		Fingerprint:        fingerprint,
		JobTitle:           req.JobTitle,
		CompanyName:        req.CompanyName,
		RawJobDescription:  req.JobDescription,
		GeneratedCVData:    out.CVData,
		GeneratedCoverText: out.CoverLetter,
		Status:             constants.WorkItemStatusGenerated,
	}

	duplicate, err := uc.workItems.Create(ctx, item)
	if err != nil {
		return nil, false, err
	}
	if duplicate {
		uc.compensate(ctx, accountID, "lost duplicate race for fingerprint "+fingerprint)
		winner, err := uc.workItems.GetByFingerprint(ctx, accountID, fingerprint)
		if err != nil {
			return nil, true, err
		}
		if uc.metrics != nil {
			uc.metrics.UsageTotal.WithLabelValues(constants.UsageResultDuplicate).Inc()
		}
		return winner, true, nil
	}

	entry := &LedgerEntry{
		LedgerEntryID: uuid.New().String(),
		AccountID:     accountID,
		Delta:         -uc.conf.UnitCost,
		Kind:          constants.EntryKindUsage,
		Description:   fmt.Sprintf("Optimized CV for %s", req.CompanyName),
	}
	if err := uc.entries.AppendUsage(ctx, entry); err != nil {
		// 扣费已经发生，流水缺失交给对账任务，不回滚生成结果
		uc.log.Errorf("ALERT usage entry append failed for account %s item %s: %v", accountID, item.WorkItemID, err)
		if uc.metrics != nil {
			uc.metrics.LedgerInconsistencyTotal.Inc()
		}
	}

	if uc.metrics != nil {
		uc.metrics.UsageTotal.WithLabelValues(constants.UsageResultFulfilled).Inc()
	}
	return item, false, nil
}

// FailUsage 生成失败的补偿：无条件退还本次扣费
// 规则：没有落库的 WorkItem，就必须退钱
func (uc *UsageUseCase) FailUsage(ctx context.Context, accountID, fingerprint string) {
	uc.compensate(ctx, accountID, "generation failed for fingerprint "+fingerprint)
	if uc.metrics != nil {
		uc.metrics.UsageTotal.WithLabelValues(constants.UsageResultCompensated).Inc()
	}
}

// Generate 编排完整的计量操作：去重 -> 扣费 -> 生成 -> 落库或补偿
func (uc *UsageUseCase) Generate(ctx context.Context, accountID string, req *GenerateRequest) (*WorkItem, bool, error) {
	startTime := time.Now()

	ticket, err := uc.InitiateUsage(ctx, accountID, req.JobDescription)
	if err != nil {
		return nil, false, err
	}
	if ticket.Duplicate {
		return ticket.WorkItem, true, nil
	}

	genStart := time.Now()
	out, err := uc.generator.GenerateTailored(ctx, req)
	if uc.metrics != nil {
		uc.metrics.GenerationDuration.Observe(time.Since(genStart).Seconds())
	}
	if err != nil {
		uc.FailUsage(ctx, accountID, ticket.Fingerprint)
		if uc.metrics != nil {
			uc.metrics.UsageDuration.WithLabelValues(constants.UsageResultCompensated).Observe(time.Since(startTime).Seconds())
		}
		return nil, false, creditErrors.ErrorUpstreamGenerationFailure("generation failed: %v", err)
	}

	item, duplicate, err := uc.CompleteUsage(ctx, accountID, ticket.Fingerprint, req, out)
	if uc.metrics != nil && err == nil {
		result := constants.UsageResultFulfilled
		if duplicate {
			result = constants.UsageResultDuplicate
		}
		uc.metrics.UsageDuration.WithLabelValues(result).Observe(time.Since(startTime).Seconds())
	}
	return item, duplicate, err
}

// compensate 退还一次扣费；退款失败是账本不一致，只告警等人工对账
func (uc *UsageUseCase) compensate(ctx context.Context, accountID, cause string) {
	if _, err := uc.accounts.Credit(ctx, accountID, uc.conf.UnitCost); err != nil {
		uc.log.Errorf("ALERT ledger inconsistency: compensation of %d credits failed for account %s (%s): %v",
			uc.conf.UnitCost, accountID, cause, err)
		if uc.metrics != nil {
			uc.metrics.LedgerInconsistencyTotal.Inc()
		}
		return
	}
	uc.log.Infof("Compensated %d credits to account %s: %s", uc.conf.UnitCost, accountID, cause)
	if uc.metrics != nil {
		uc.metrics.CompensationTotal.Inc()
	}
}
