package constants

// Redis Key 前缀常量
const (
	// RedisKeyBalance 积分余额缓存 key 前缀
	RedisKeyBalance = "credits:"
	// RedisKeyPlanLock 套餐管理写锁 key 前缀
	RedisKeyPlanLock = "plan:lock:"
)

// 流水类型常量
const (
	// EntryKindPurchase 购买入账
	EntryKindPurchase = "purchase"
	// EntryKindUsage 消耗出账
	EntryKindUsage = "usage"
)

// 支付网关常量
const (
	// GatewayStripe Stripe
	GatewayStripe = "stripe"
	// GatewayPaystack Paystack
	GatewayPaystack = "paystack"
)

// 生成任务状态常量
const (
	// WorkItemStatusGenerated 已生成
	WorkItemStatusGenerated = "generated"
	// WorkItemStatusEdited 已编辑
	WorkItemStatusEdited = "edited"
)

// 网关事件类型常量
const (
	// StripeEventCheckoutCompleted Stripe checkout 完成事件
	StripeEventCheckoutCompleted = "checkout.session.completed"
	// PaystackEventChargeSuccess Paystack 支付成功事件
	PaystackEventChargeSuccess = "charge.success"
)

// 操作结果常量（用于指标）
const (
	// UsageResultFulfilled 生成成功并扣费
	UsageResultFulfilled = "fulfilled"
	// UsageResultDuplicate 重复提交
	UsageResultDuplicate = "duplicate"
	// UsageResultInsufficient 积分不足
	UsageResultInsufficient = "insufficient"
	// UsageResultCompensated 生成失败已退款
	UsageResultCompensated = "compensated"

	// FulfillResultCredited 入账成功
	FulfillResultCredited = "credited"
	// FulfillResultDuplicate 重复投递
	FulfillResultDuplicate = "duplicate"
	// FulfillResultRejected 拒绝（账户不存在等）
	FulfillResultRejected = "rejected"

	// LockResultSuccess 成功
	LockResultSuccess = "success"
	// LockResultFailed 失败
	LockResultFailed = "failed"
)
