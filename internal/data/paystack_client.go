package data

import (
	"context"
	"fmt"
	"time"

	"github.com/lilstex/elevate-cv/internal/biz"
	"github.com/lilstex/elevate-cv/internal/conf"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-resty/resty/v2"
)

// 默认的 Paystack API 地址
const defaultPaystackBaseURL = "https://api.paystack.co"

// paystackInitRequest Paystack initialize 请求体（金额以 kobo 计）
type paystackInitRequest struct {
	Email       string            `json:"email"`
	Amount      int64             `json:"amount"`
	CallbackURL string            `json:"callback_url"`
	Metadata    map[string]string `json:"metadata"`
}

// paystackInitReply Paystack initialize 响应体
type paystackInitReply struct {
	Status bool   `json:"status"`
	Msg    string `json:"message"`
	Data   struct {
		AuthorizationURL string `json:"authorization_url"`
		Reference        string `json:"reference"`
	} `json:"data"`
}

// paystackClient Paystack 网关客户端
type paystackClient struct {
	client      *resty.Client
	frontendURL string
	log         *log.Helper
}

// NewPaystackClient 创建 Paystack 客户端（返回 biz.PaystackClient 接口）
func NewPaystackClient(c *conf.Bootstrap, logger log.Logger) biz.PaystackClient {
	baseURL := defaultPaystackBaseURL
	secretKey := ""
	frontendURL := ""
	if c.Gateways != nil {
		frontendURL = c.Gateways.FrontendURL
		if c.Gateways.Paystack != nil {
			secretKey = c.Gateways.Paystack.SecretKey
			if c.Gateways.Paystack.BaseURL != "" {
				baseURL = c.Gateways.Paystack.BaseURL
			}
		}
	}

	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(15 * time.Second).
		SetAuthToken(secretKey).
		SetHeader("Content-Type", "application/json")

	return &paystackClient{
		client:      client,
		frontendURL: frontendURL,
		log:         log.NewHelper(logger),
	}
}

// InitializeTransaction 发起 Paystack 交易
// 金额换算成 kobo；metadata 带回 account_id/credits/amount
func (p *paystackClient) InitializeTransaction(ctx context.Context, req *biz.CheckoutRequest) (*biz.CheckoutReply, error) {
	body := &paystackInitRequest{
		Email:       req.Email,
		Amount:      int64(req.Amount * 100),
		CallbackURL: p.frontendURL + "/dashboard?payment=success",
		Metadata: map[string]string{
			"account_id": req.AccountID,
			"credits":    fmt.Sprintf("%d", req.Credits),
			"amount":     fmt.Sprintf("%.2f", req.Amount),
			"gateway":    "paystack",
		},
	}

	var reply paystackInitReply
	resp, err := p.client.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&reply).
		Post("/transaction/initialize")
	if err != nil {
		return nil, fmt.Errorf("paystack initialization failed: %w", err)
	}
	if resp.IsError() || !reply.Status {
		p.log.Errorf("paystack initialization rejected: status=%d message=%s", resp.StatusCode(), reply.Msg)
		return nil, fmt.Errorf("paystack initialization failed: %s", reply.Msg)
	}

	return &biz.CheckoutReply{
		PaymentURL: reply.Data.AuthorizationURL,
		Reference:  reply.Data.Reference,
	}, nil
}
