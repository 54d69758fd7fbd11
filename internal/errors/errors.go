package errors

import (
	"fmt"

	"github.com/go-kratos/kratos/v2/errors"
)

// 错误定义（kratos errors，reason 作为稳定的机器可读标识）
//
// 模块划分：
//   账本模块：积分余额相关
//   履约模块：购买入账相关
//   生成模块：计量消耗相关
//   套餐模块：积分套餐相关

// Reason 常量
const (
	ReasonInsufficientCredits        = "INSUFFICIENT_CREDITS"
	ReasonAccountNotFound            = "ACCOUNT_NOT_FOUND"
	ReasonDuplicateProviderReference = "DUPLICATE_PROVIDER_REFERENCE"
	ReasonUpstreamGenerationFailure  = "UPSTREAM_GENERATION_FAILURE"
	ReasonLedgerInconsistency        = "LEDGER_INCONSISTENCY"
	ReasonWorkItemNotFound           = "WORK_ITEM_NOT_FOUND"
	ReasonPlanNotFound               = "PLAN_NOT_FOUND"
	ReasonInvalidSignature           = "INVALID_SIGNATURE"
	ReasonInvalidArgument            = "INVALID_ARGUMENT"
)

// ErrorInsufficientCredits 积分不足（用户可处理，不重试）
func ErrorInsufficientCredits(format string, args ...interface{}) *errors.Error {
	return errors.New(402, ReasonInsufficientCredits, fmt.Sprintf(format, args...))
}

// IsInsufficientCredits 判断是否为积分不足错误
func IsInsufficientCredits(err error) bool {
	if err == nil {
		return false
	}
	return errors.FromError(err).Reason == ReasonInsufficientCredits
}

// ErrorAccountNotFound 账户不存在
func ErrorAccountNotFound(format string, args ...interface{}) *errors.Error {
	return errors.New(404, ReasonAccountNotFound, fmt.Sprintf(format, args...))
}

// IsAccountNotFound 判断是否为账户不存在错误
func IsAccountNotFound(err error) bool {
	if err == nil {
		return false
	}
	return errors.FromError(err).Reason == ReasonAccountNotFound
}

// ErrorDuplicateProviderReference 支付流水号重复（内部 no-op 信号，不出请求边界）
func ErrorDuplicateProviderReference(format string, args ...interface{}) *errors.Error {
	return errors.New(409, ReasonDuplicateProviderReference, fmt.Sprintf(format, args...))
}

// IsDuplicateProviderReference 判断是否为支付流水号重复错误
func IsDuplicateProviderReference(err error) bool {
	if err == nil {
		return false
	}
	return errors.FromError(err).Reason == ReasonDuplicateProviderReference
}

// ErrorUpstreamGenerationFailure 上游生成失败（已补偿，调用方可重试）
func ErrorUpstreamGenerationFailure(format string, args ...interface{}) *errors.Error {
	return errors.New(503, ReasonUpstreamGenerationFailure, fmt.Sprintf(format, args...))
}

// IsUpstreamGenerationFailure 判断是否为上游生成失败错误
func IsUpstreamGenerationFailure(err error) bool {
	if err == nil {
		return false
	}
	return errors.FromError(err).Reason == ReasonUpstreamGenerationFailure
}

// ErrorLedgerInconsistency 账本不一致（告警级，人工对账，不自动重放）
func ErrorLedgerInconsistency(format string, args ...interface{}) *errors.Error {
	return errors.New(500, ReasonLedgerInconsistency, fmt.Sprintf(format, args...))
}

// IsLedgerInconsistency 判断是否为账本不一致错误
func IsLedgerInconsistency(err error) bool {
	if err == nil {
		return false
	}
	return errors.FromError(err).Reason == ReasonLedgerInconsistency
}

// ErrorWorkItemNotFound 生成记录不存在
func ErrorWorkItemNotFound(format string, args ...interface{}) *errors.Error {
	return errors.New(404, ReasonWorkItemNotFound, fmt.Sprintf(format, args...))
}

// IsWorkItemNotFound 判断是否为生成记录不存在错误
func IsWorkItemNotFound(err error) bool {
	if err == nil {
		return false
	}
	return errors.FromError(err).Reason == ReasonWorkItemNotFound
}

// ErrorPlanNotFound 套餐不存在或已下架
func ErrorPlanNotFound(format string, args ...interface{}) *errors.Error {
	return errors.New(404, ReasonPlanNotFound, fmt.Sprintf(format, args...))
}

// IsPlanNotFound 判断是否为套餐不存在错误
func IsPlanNotFound(err error) bool {
	if err == nil {
		return false
	}
	return errors.FromError(err).Reason == ReasonPlanNotFound
}

// ErrorInvalidSignature 网关签名校验失败
func ErrorInvalidSignature(format string, args ...interface{}) *errors.Error {
	return errors.New(400, ReasonInvalidSignature, fmt.Sprintf(format, args...))
}

// IsInvalidSignature 判断是否为签名校验失败错误
func IsInvalidSignature(err error) bool {
	if err == nil {
		return false
	}
	return errors.FromError(err).Reason == ReasonInvalidSignature
}

// ErrorInvalidArgument 参数错误
func ErrorInvalidArgument(format string, args ...interface{}) *errors.Error {
	return errors.New(400, ReasonInvalidArgument, fmt.Sprintf(format, args...))
}
