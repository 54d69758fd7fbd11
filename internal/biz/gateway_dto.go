package biz

import "context"

// StripeClient Stripe 网关客户端接口
type StripeClient interface {
	CreateCheckoutSession(ctx context.Context, req *CheckoutRequest) (*CheckoutReply, error)
}

// PaystackClient Paystack 网关客户端接口
type PaystackClient interface {
	InitializeTransaction(ctx context.Context, req *CheckoutRequest) (*CheckoutReply, error)
}

// CheckoutRequest 发起充值请求
type CheckoutRequest struct {
	AccountID     string
	Email         string
	Amount        float64 // 支付金额（主货币单位）
	Credits       int64   // 购买的积分数
	StripePriceID string  // 仅 stripe
}

// CheckoutReply 发起充值响应
type CheckoutReply struct {
	PaymentURL string
	Reference  string // 网关返回的引用（stripe 为 session id，paystack 为 reference）
}
