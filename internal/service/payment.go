package service

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/lilstex/elevate-cv/internal/biz"
	"github.com/lilstex/elevate-cv/internal/conf"
	"github.com/lilstex/elevate-cv/internal/constants"
	creditErrors "github.com/lilstex/elevate-cv/internal/errors"
	"github.com/lilstex/elevate-cv/internal/metrics"

	"github.com/go-kratos/kratos/v2/log"
	khttp "github.com/go-kratos/kratos/v2/transport/http"
	"github.com/google/uuid"
	stripewebhook "github.com/stripe/stripe-go/v81/webhook"
)

// TopUpRequestDTO 充值发起请求
type TopUpRequestDTO struct {
	AccountID string `json:"accountId"`
	PlanSlug  string `json:"planSlug"`
	Gateway   string `json:"gateway"` // stripe | paystack
}

// TopUpReplyDTO 充值发起响应
type TopUpReplyDTO struct {
	PaymentURL string `json:"paymentUrl"`
	Reference  string `json:"reference"`
}

// PlanDTO 套餐响应
type PlanDTO struct {
	ID            string  `json:"id"`
	Slug          string  `json:"slug"`
	Name          string  `json:"name"`
	Credits       int64   `json:"credits"`
	PriceNGN      float64 `json:"priceNgn"`
	PriceUSD      float64 `json:"priceUsd"`
	StripePriceID string  `json:"stripePriceId,omitempty"`
	IsActive      bool    `json:"isActive"`
}

// PlanRequestDTO 套餐管理请求
type PlanRequestDTO struct {
	Slug          string  `json:"slug"`
	Name          string  `json:"name"`
	Credits       int64   `json:"credits"`
	PriceNGN      float64 `json:"priceNgn"`
	PriceUSD      float64 `json:"priceUsd"`
	StripePriceID string  `json:"stripePriceId"`
	IsActive      bool    `json:"isActive"`
}

// BalanceReplyDTO 余额响应
type BalanceReplyDTO struct {
	AccountID string `json:"accountId"`
	Balance   int64  `json:"balance"`
}

// TransactionDTO 流水响应
type TransactionDTO struct {
	ID          string    `json:"id"`
	Delta       int64     `json:"delta"`
	Kind        string    `json:"kind"`
	Gateway     string    `json:"gateway,omitempty"`
	AmountPaid  float64   `json:"amountPaid,omitempty"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
}

// TransactionListDTO 流水分页响应
type TransactionListDTO struct {
	Data []*TransactionDTO `json:"data"`
	Meta struct {
		Total    int64 `json:"total"`
		Page     int   `json:"page"`
		LastPage int64 `json:"lastPage"`
	} `json:"meta"`
}

// PaymentService 支付服务：充值发起、webhook 履约、套餐与流水查询
type PaymentService struct {
	checkout    *biz.CheckoutUseCase
	fulfillment *biz.FulfillmentUseCase
	plans       *biz.PlanUseCase
	accounts    *biz.AccountUseCase
	entries     *biz.LedgerEntryUseCase
	gateways    *conf.Gateways
	log         *log.Helper
	metrics     *metrics.CreditMetrics
}

// NewPaymentService 创建 PaymentService
func NewPaymentService(
	checkout *biz.CheckoutUseCase,
	fulfillment *biz.FulfillmentUseCase,
	plans *biz.PlanUseCase,
	accounts *biz.AccountUseCase,
	entries *biz.LedgerEntryUseCase,
	c *conf.Bootstrap,
	logger log.Logger,
) *PaymentService {
	return &PaymentService{
		checkout:    checkout,
		fulfillment: fulfillment,
		plans:       plans,
		accounts:    accounts,
		entries:     entries,
		gateways:    c.Gateways,
		log:         log.NewHelper(logger),
		metrics:     metrics.GetMetrics(),
	}
}

// TopUp 按套餐发起一次充值
func (s *PaymentService) TopUp(ctx khttp.Context) error {
	var req TopUpRequestDTO
	if err := ctx.Bind(&req); err != nil {
		return err
	}
	if req.AccountID == "" || req.PlanSlug == "" {
		return creditErrors.ErrorInvalidArgument("accountId and planSlug are required")
	}

	reply, err := s.checkout.TopUp(ctx, req.AccountID, req.PlanSlug, req.Gateway)
	if err != nil {
		return err
	}
	return ctx.Result(200, &TopUpReplyDTO{
		PaymentURL: reply.PaymentURL,
		Reference:  reply.Reference,
	})
}

// ListPlans 获取全部在售套餐
func (s *PaymentService) ListPlans(ctx khttp.Context) error {
	plans, err := s.plans.ListActive(ctx)
	if err != nil {
		return err
	}
	reply := make([]*PlanDTO, 0, len(plans))
	for _, plan := range plans {
		reply = append(reply, toPlanDTO(plan))
	}
	return ctx.Result(200, reply)
}

// CreatePlan 创建套餐（管理端）
func (s *PaymentService) CreatePlan(ctx khttp.Context) error {
	var req PlanRequestDTO
	if err := ctx.Bind(&req); err != nil {
		return err
	}
	if req.Slug == "" || req.Credits <= 0 {
		return creditErrors.ErrorInvalidArgument("slug and a positive credits value are required")
	}

	plan := &biz.CreditPlan{
		CreditPlanID:  uuid.New().String(),
		Slug:          req.Slug,
		Name:          req.Name,
		Credits:       req.Credits,
		PriceNGN:      req.PriceNGN,
		PriceUSD:      req.PriceUSD,
		StripePriceID: req.StripePriceID,
		IsActive:      true,
	}
	if err := s.plans.CreatePlan(ctx, plan); err != nil {
		return err
	}
	return ctx.Result(200, toPlanDTO(plan))
}

// UpdatePlan 更新套餐（管理端）
func (s *PaymentService) UpdatePlan(ctx khttp.Context) error {
	id := ctx.Vars().Get("id")
	var req PlanRequestDTO
	if err := ctx.Bind(&req); err != nil {
		return err
	}

	plan := &biz.CreditPlan{
		CreditPlanID:  id,
		Slug:          req.Slug,
		Name:          req.Name,
		Credits:       req.Credits,
		PriceNGN:      req.PriceNGN,
		PriceUSD:      req.PriceUSD,
		StripePriceID: req.StripePriceID,
		IsActive:      req.IsActive,
	}
	if err := s.plans.UpdatePlan(ctx, plan); err != nil {
		return err
	}
	return ctx.Result(200, toPlanDTO(plan))
}

// DeactivatePlan 下架套餐（管理端）
func (s *PaymentService) DeactivatePlan(ctx khttp.Context) error {
	id := ctx.Vars().Get("id")
	if err := s.plans.DeactivatePlan(ctx, id); err != nil {
		return err
	}
	return ctx.Result(200, map[string]bool{"deactivated": true})
}

// GetBalance 查询账户余额
func (s *PaymentService) GetBalance(ctx khttp.Context) error {
	accountID := ctx.Query().Get("accountId")
	if accountID == "" {
		return creditErrors.ErrorInvalidArgument("accountId is required")
	}
	account, err := s.accounts.GetBalance(ctx, accountID)
	if err != nil {
		return err
	}
	if account == nil {
		return creditErrors.ErrorAccountNotFound("account %s not found", accountID)
	}
	if s.metrics != nil {
		s.metrics.BalanceQueryTotal.Inc()
	}
	return ctx.Result(200, &BalanceReplyDTO{
		AccountID: account.AccountID,
		Balance:   account.Balance,
	})
}

// ListTransactions 分页查询账户流水
func (s *PaymentService) ListTransactions(ctx khttp.Context) error {
	accountID := ctx.Query().Get("accountId")
	if accountID == "" {
		return creditErrors.ErrorInvalidArgument("accountId is required")
	}
	page, pageSize := pagination(ctx)

	entries, total, err := s.entries.ListEntries(ctx, accountID, page, pageSize)
	if err != nil {
		return err
	}

	reply := &TransactionListDTO{Data: make([]*TransactionDTO, 0, len(entries))}
	for _, entry := range entries {
		reply.Data = append(reply.Data, &TransactionDTO{
			ID:          entry.LedgerEntryID,
			Delta:       entry.Delta,
			Kind:        entry.Kind,
			Gateway:     entry.Gateway,
			AmountPaid:  entry.AmountPaid,
			Description: entry.Description,
			CreatedAt:   entry.CreatedAt,
		})
	}
	reply.Meta.Total = total
	reply.Meta.Page = page
	reply.Meta.LastPage = (total + int64(pageSize) - 1) / int64(pageSize)
	return ctx.Result(200, reply)
}

// stripeSessionData checkout.session.completed 事件载荷中用到的字段
type stripeSessionData struct {
	ID          string            `json:"id"`
	AmountTotal int64             `json:"amount_total"`
	Metadata    map[string]string `json:"metadata"`
}

// StripeWebhook 处理 Stripe webhook 回调
// 签名校验必须基于原始请求体，走不了框架的 JSON 绑定
func (s *PaymentService) StripeWebhook(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	defer func() {
		if s.metrics != nil {
			s.metrics.WebhookDuration.WithLabelValues(constants.GatewayStripe).Observe(time.Since(start).Seconds())
		}
	}()

	payload, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "failed to read request body", http.StatusBadRequest)
		return
	}

	// 事件携带的是商户账户的 API 版本，和 SDK 固定的版本不一定一致
	event, err := stripewebhook.ConstructEventWithOptions(payload, r.Header.Get("Stripe-Signature"), s.gateways.Stripe.WebhookSecret,
		stripewebhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		s.log.Warnf("Stripe webhook signature verification failed: %v", err)
		if s.metrics != nil {
			s.metrics.WebhookInvalidTotal.WithLabelValues(constants.GatewayStripe).Inc()
		}
		http.Error(w, "invalid signature", http.StatusBadRequest)
		return
	}

	if string(event.Type) != constants.StripeEventCheckoutCompleted {
		ackWebhook(w)
		return
	}

	var session stripeSessionData
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		// 载荷非预期格式：确认收到，重试也不会变好
		s.log.Errorf("Stripe webhook: failed to decode session payload: %v", err)
		ackWebhook(w)
		return
	}

	credits, _ := strconv.ParseInt(session.Metadata["credits"], 10, 64)
	amountPaid, _ := strconv.ParseFloat(session.Metadata["amount"], 64)
	if amountPaid == 0 {
		amountPaid = float64(session.AmountTotal) / 100
	}

	err = s.fulfillment.FulfillPurchase(r.Context(), &biz.PurchaseEvent{
		AccountID:         session.Metadata["account_id"],
		AmountPaid:        amountPaid,
		CreditsGranted:    credits,
		ProviderReference: session.ID,
		Gateway:           constants.GatewayStripe,
	})
	finishWebhook(w, s.log, constants.GatewayStripe, err)
}

// paystackEventData Paystack 事件载荷中用到的字段
type paystackEventData struct {
	Event string `json:"event"`
	Data  struct {
		Reference string            `json:"reference"`
		Amount    int64             `json:"amount"` // kobo
		Metadata  map[string]string `json:"metadata"`
	} `json:"data"`
}

// PaystackWebhook 处理 Paystack webhook 回调
// Paystack 用账户密钥对原始请求体做 HMAC-SHA512 签名
func (s *PaymentService) PaystackWebhook(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	defer func() {
		if s.metrics != nil {
			s.metrics.WebhookDuration.WithLabelValues(constants.GatewayPaystack).Observe(time.Since(start).Seconds())
		}
	}()

	payload, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "failed to read request body", http.StatusBadRequest)
		return
	}

	if !verifyPaystackSignature(payload, r.Header.Get("X-Paystack-Signature"), s.gateways.Paystack.SecretKey) {
		s.log.Warnf("Paystack webhook signature verification failed")
		if s.metrics != nil {
			s.metrics.WebhookInvalidTotal.WithLabelValues(constants.GatewayPaystack).Inc()
		}
		http.Error(w, "invalid signature", http.StatusBadRequest)
		return
	}

	var event paystackEventData
	if err := json.Unmarshal(payload, &event); err != nil {
		s.log.Errorf("Paystack webhook: failed to decode payload: %v", err)
		ackWebhook(w)
		return
	}
	if event.Event != constants.PaystackEventChargeSuccess {
		ackWebhook(w)
		return
	}

	credits, _ := strconv.ParseInt(event.Data.Metadata["credits"], 10, 64)

	err = s.fulfillment.FulfillPurchase(r.Context(), &biz.PurchaseEvent{
		AccountID:         event.Data.Metadata["account_id"],
		AmountPaid:        float64(event.Data.Amount) / 100,
		CreditsGranted:    credits,
		ProviderReference: event.Data.Reference,
		Gateway:           constants.GatewayPaystack,
	})
	finishWebhook(w, s.log, constants.GatewayPaystack, err)
}

// verifyPaystackSignature 校验 Paystack webhook 签名
func verifyPaystackSignature(payload []byte, signature, secret string) bool {
	if signature == "" || secret == "" {
		return false
	}
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// finishWebhook 统一收尾：业务侧返回 error 意味着瞬时故障，用 5xx 换网关重试
func finishWebhook(w http.ResponseWriter, logger *log.Helper, gateway string, err error) {
	if err != nil {
		logger.Errorf("%s webhook processing failed, requesting redelivery: %v", gateway, err)
		http.Error(w, "processing failed", http.StatusInternalServerError)
		return
	}
	ackWebhook(w)
}

// ackWebhook 向网关确认收到
func ackWebhook(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"received": true}`))
}

// toPlanDTO 领域对象转响应 DTO
func toPlanDTO(plan *biz.CreditPlan) *PlanDTO {
	return &PlanDTO{
		ID:            plan.CreditPlanID,
		Slug:          plan.Slug,
		Name:          plan.Name,
		Credits:       plan.Credits,
		PriceNGN:      plan.PriceNGN,
		PriceUSD:      plan.PriceUSD,
		StripePriceID: plan.StripePriceID,
		IsActive:      plan.IsActive,
	}
}
