package biz

import (
	"context"

	"github.com/lilstex/elevate-cv/internal/constants"
	creditErrors "github.com/lilstex/elevate-cv/internal/errors"

	"github.com/go-kratos/kratos/v2/log"
)

// CheckoutUseCase 充值发起业务逻辑
// 只负责把套餐换算成网关下单请求；实际入账走 webhook -> FulfillmentUseCase
type CheckoutUseCase struct {
	accounts AccountRepo
	plans    *PlanUseCase
	stripe   StripeClient
	paystack PaystackClient
	log      *log.Helper
}

// NewCheckoutUseCase 创建充值 UseCase
func NewCheckoutUseCase(
	accounts AccountRepo,
	plans *PlanUseCase,
	stripe StripeClient,
	paystack PaystackClient,
	logger log.Logger,
) *CheckoutUseCase {
	return &CheckoutUseCase{
		accounts: accounts,
		plans:    plans,
		stripe:   stripe,
		paystack: paystack,
		log:      log.NewHelper(logger),
	}
}

// TopUp 按套餐发起一次充值，返回支付跳转地址
func (uc *CheckoutUseCase) TopUp(ctx context.Context, accountID, planSlug, gateway string) (*CheckoutReply, error) {
	account, err := uc.accounts.GetAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, creditErrors.ErrorAccountNotFound("account %s not found", accountID)
	}

	plan, err := uc.plans.FindActiveBySlug(ctx, planSlug)
	if err != nil {
		return nil, err
	}

	switch gateway {
	case constants.GatewayStripe:
		reply, err := uc.stripe.CreateCheckoutSession(ctx, &CheckoutRequest{
			AccountID:     accountID,
			Email:         account.Email,
			Amount:        plan.PriceUSD,
			Credits:       plan.Credits,
			StripePriceID: plan.StripePriceID,
		})
		if err != nil {
			uc.log.Errorf("CreateCheckoutSession failed: account=%s plan=%s error=%v", accountID, planSlug, err)
			return nil, err
		}
		return reply, nil
	case constants.GatewayPaystack:
		reply, err := uc.paystack.InitializeTransaction(ctx, &CheckoutRequest{
			AccountID: accountID,
			Email:     account.Email,
			Amount:    plan.PriceNGN,
			Credits:   plan.Credits,
		})
		if err != nil {
			uc.log.Errorf("InitializeTransaction failed: account=%s plan=%s error=%v", accountID, planSlug, err)
			return nil, err
		}
		return reply, nil
	default:
		return nil, creditErrors.ErrorInvalidArgument("unsupported gateway: %s", gateway)
	}
}
