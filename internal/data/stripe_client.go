package data

import (
	"context"
	"fmt"
	"strconv"

	"github.com/lilstex/elevate-cv/internal/biz"
	"github.com/lilstex/elevate-cv/internal/conf"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/client"
)

// stripeClient Stripe 网关客户端
type stripeClient struct {
	api         *client.API
	frontendURL string
	log         *log.Helper
}

// NewStripeClient 创建 Stripe 客户端（返回 biz.StripeClient 接口）
func NewStripeClient(c *conf.Bootstrap, logger log.Logger) biz.StripeClient {
	api := &client.API{}
	secretKey := ""
	frontendURL := ""
	if c.Gateways != nil {
		frontendURL = c.Gateways.FrontendURL
		if c.Gateways.Stripe != nil {
			secretKey = c.Gateways.Stripe.SecretKey
		}
	}
	api.Init(secretKey, nil)

	return &stripeClient{
		api:         api,
		frontendURL: frontendURL,
		log:         log.NewHelper(logger),
	}
}

// CreateCheckoutSession 创建 Stripe checkout session
// metadata 带回 account_id/credits/amount，webhook 侧据此还原归一化购买事件
func (s *stripeClient) CreateCheckoutSession(ctx context.Context, req *biz.CheckoutRequest) (*biz.CheckoutReply, error) {
	params := &stripe.CheckoutSessionParams{
		Params: stripe.Params{Context: ctx},
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(req.StripePriceID),
				Quantity: stripe.Int64(1),
			},
		},
		Mode:          stripe.String(string(stripe.CheckoutSessionModePayment)),
		CustomerEmail: stripe.String(req.Email),
		SuccessURL:    stripe.String(s.frontendURL + "/dashboard?payment=success"),
		CancelURL:     stripe.String(s.frontendURL + "/dashboard?payment=cancelled"),
	}
	params.AddMetadata("account_id", req.AccountID)
	params.AddMetadata("credits", strconv.FormatInt(req.Credits, 10))
	params.AddMetadata("amount", strconv.FormatFloat(req.Amount, 'f', 2, 64))
	params.AddMetadata("gateway", "stripe")

	session, err := s.api.CheckoutSessions.New(params)
	if err != nil {
		s.log.Errorf("stripe checkout session creation failed: account=%s error=%v", req.AccountID, err)
		return nil, fmt.Errorf("stripe session creation failed: %w", err)
	}

	return &biz.CheckoutReply{
		PaymentURL: session.URL,
		Reference:  session.ID,
	}, nil
}
