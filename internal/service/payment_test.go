package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/lilstex/elevate-cv/internal/biz"
	"github.com/lilstex/elevate-cv/internal/conf"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	stripe "github.com/stripe/stripe-go/v81"
	stripewebhook "github.com/stripe/stripe-go/v81/webhook"
)

const (
	testStripeSecret   = "whsec_test_secret"
	testPaystackSecret = "sk_test_paystack_secret"
)

type stubAccountRepo struct {
	mu       sync.Mutex
	balances map[string]int64
}

func (s *stubAccountRepo) GetAccount(_ context.Context, accountID string) (*biz.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	balance, ok := s.balances[accountID]
	if !ok {
		return nil, nil
	}
	return &biz.Account{AccountID: accountID, Balance: balance}, nil
}

func (s *stubAccountRepo) GetBalance(ctx context.Context, accountID string) (*biz.Account, error) {
	return s.GetAccount(ctx, accountID)
}

func (s *stubAccountRepo) TryDebit(_ context.Context, _ string, _ int64) (bool, int64, error) {
	return false, 0, nil
}

func (s *stubAccountRepo) Credit(_ context.Context, accountID string, amount int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.balances[accountID] += amount
	return s.balances[accountID], nil
}

func (s *stubAccountRepo) ListAccountIDs(_ context.Context) ([]string, error) {
	return nil, nil
}

func (s *stubAccountRepo) balance(accountID string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.balances[accountID]
}

type stubLedgerRepo struct {
	mu      sync.Mutex
	entries []*biz.LedgerEntry
	refs    map[string]bool
}

func (s *stubLedgerRepo) Append(_ context.Context, entry *biz.LedgerEntry) (*biz.LedgerEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if entry.ProviderReference != "" {
		s.refs[entry.ProviderReference] = true
	}
	s.entries = append(s.entries, entry)
	return entry, nil
}

func (s *stubLedgerRepo) Exists(_ context.Context, providerReference string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refs[providerReference], nil
}

func (s *stubLedgerRepo) AppendUsage(ctx context.Context, entry *biz.LedgerEntry) error {
	_, err := s.Append(ctx, entry)
	return err
}

func (s *stubLedgerRepo) BatchAppend(_ context.Context, _ []*biz.LedgerEntry) error { return nil }

func (s *stubLedgerRepo) ListByAccount(_ context.Context, _ string, _, _ int) ([]*biz.LedgerEntry, int64, error) {
	return nil, 0, nil
}

func (s *stubLedgerRepo) SumDeltas(_ context.Context, _ string) (int64, error) { return 0, nil }

func (s *stubLedgerRepo) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func newWebhookFixture() (*PaymentService, *stubAccountRepo, *stubLedgerRepo) {
	accounts := &stubAccountRepo{balances: map[string]int64{"acc-1": 0}}
	entries := &stubLedgerRepo{refs: make(map[string]bool)}
	logger := log.NewStdLogger(io.Discard)
	fulfillment := biz.NewFulfillmentUseCase(accounts, entries, logger)

	c := &conf.Bootstrap{
		Gateways: &conf.Gateways{
			Stripe:   &conf.StripeGateway{SecretKey: "sk_test", WebhookSecret: testStripeSecret},
			Paystack: &conf.PaystackGateway{SecretKey: testPaystackSecret},
		},
	}
	svc := NewPaymentService(nil, fulfillment, nil, nil, nil, c, logger)
	return svc, accounts, entries
}

func stripeSignedRequest(t *testing.T, payload string) *http.Request {
	t.Helper()
	now := time.Now()
	sig := stripewebhook.ComputeSignature(now, []byte(payload), testStripeSecret)
	req := httptest.NewRequest(http.MethodPost, "/v1/payment/webhook/stripe", strings.NewReader(payload))
	req.Header.Set("Stripe-Signature", fmt.Sprintf("t=%d,v1=%s", now.Unix(), hex.EncodeToString(sig)))
	return req
}

func stripeCheckoutPayload(sessionID string) string {
	return fmt.Sprintf(`{
		"id": "evt_1",
		"api_version": %q,
		"type": "checkout.session.completed",
		"data": {
			"object": {
				"id": %q,
				"amount_total": 999,
				"metadata": {
					"account_id": "acc-1",
					"credits": "50",
					"amount": "9.99",
					"gateway": "stripe"
				}
			}
		}
	}`, stripe.APIVersion, sessionID)
}

func TestStripeWebhook_CreditsOnValidSignature(t *testing.T) {
	svc, accounts, entries := newWebhookFixture()

	rec := httptest.NewRecorder()
	svc.StripeWebhook(rec, stripeSignedRequest(t, stripeCheckoutPayload("cs_test_123")))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"received": true}`, rec.Body.String())
	assert.Equal(t, int64(50), accounts.balance("acc-1"))
	assert.Equal(t, 1, entries.count())
}

func TestStripeWebhook_ReplayedDeliveryIsNoOp(t *testing.T) {
	svc, accounts, entries := newWebhookFixture()

	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		svc.StripeWebhook(rec, stripeSignedRequest(t, stripeCheckoutPayload("cs_test_replay")))
		require.Equal(t, http.StatusOK, rec.Code)
	}

	assert.Equal(t, int64(50), accounts.balance("acc-1"))
	assert.Equal(t, 1, entries.count())
}

func TestStripeWebhook_RejectsForgedSignature(t *testing.T) {
	svc, accounts, entries := newWebhookFixture()

	payload := stripeCheckoutPayload("cs_test_forged")
	req := httptest.NewRequest(http.MethodPost, "/v1/payment/webhook/stripe", strings.NewReader(payload))
	req.Header.Set("Stripe-Signature", "t=1,v1=deadbeef")

	rec := httptest.NewRecorder()
	svc.StripeWebhook(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, int64(0), accounts.balance("acc-1"))
	assert.Equal(t, 0, entries.count())
}

func TestStripeWebhook_IgnoresOtherEventTypes(t *testing.T) {
	svc, accounts, entries := newWebhookFixture()

	payload := fmt.Sprintf(`{"id": "evt_2", "api_version": %q, "type": "invoice.paid", "data": {"object": {}}}`, stripe.APIVersion)
	rec := httptest.NewRecorder()
	svc.StripeWebhook(rec, stripeSignedRequest(t, payload))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(0), accounts.balance("acc-1"))
	assert.Equal(t, 0, entries.count())
}

func paystackSignedRequest(payload, secret string) *http.Request {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write([]byte(payload))
	req := httptest.NewRequest(http.MethodPost, "/v1/payment/webhook/paystack", strings.NewReader(payload))
	req.Header.Set("X-Paystack-Signature", hex.EncodeToString(mac.Sum(nil)))
	return req
}

const paystackChargePayload = `{
	"event": "charge.success",
	"data": {
		"reference": "ps_ref_123",
		"amount": 500000,
		"metadata": {
			"account_id": "acc-1",
			"credits": "120",
			"amount": "5000.00"
		}
	}
}`

func TestPaystackWebhook_CreditsOnValidSignature(t *testing.T) {
	svc, accounts, entries := newWebhookFixture()

	rec := httptest.NewRecorder()
	svc.PaystackWebhook(rec, paystackSignedRequest(paystackChargePayload, testPaystackSecret))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(120), accounts.balance("acc-1"))
	assert.Equal(t, 1, entries.count())
}

func TestPaystackWebhook_AcksMalformedAuthenticEvent(t *testing.T) {
	svc, accounts, entries := newWebhookFixture()

	// 签名通过但 metadata 是空的：永久畸形，必须确认收到而不是让网关重投
	payload := `{"event": "charge.success", "data": {"reference": "ps_ref_bad", "amount": 500000, "metadata": {}}}`
	rec := httptest.NewRecorder()
	svc.PaystackWebhook(rec, paystackSignedRequest(payload, testPaystackSecret))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"received": true}`, rec.Body.String())
	assert.Equal(t, int64(0), accounts.balance("acc-1"))
	assert.Equal(t, 0, entries.count())
}

func TestStripeWebhook_AcksSessionWithoutMetadata(t *testing.T) {
	svc, accounts, entries := newWebhookFixture()

	payload := fmt.Sprintf(`{"id": "evt_3", "api_version": %q, "type": "checkout.session.completed", "data": {"object": {"id": "cs_test_bare", "amount_total": 999}}}`, stripe.APIVersion)
	rec := httptest.NewRecorder()
	svc.StripeWebhook(rec, stripeSignedRequest(t, payload))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"received": true}`, rec.Body.String())
	assert.Equal(t, int64(0), accounts.balance("acc-1"))
	assert.Equal(t, 0, entries.count())
}

func TestPaystackWebhook_RejectsWrongSecret(t *testing.T) {
	svc, accounts, _ := newWebhookFixture()

	rec := httptest.NewRecorder()
	svc.PaystackWebhook(rec, paystackSignedRequest(paystackChargePayload, "sk_wrong_secret"))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, int64(0), accounts.balance("acc-1"))
}

func TestVerifyPaystackSignature(t *testing.T) {
	payload := []byte(`{"event":"charge.success"}`)
	mac := hmac.New(sha512.New, []byte(testPaystackSecret))
	mac.Write(payload)
	valid := hex.EncodeToString(mac.Sum(nil))

	assert.True(t, verifyPaystackSignature(payload, valid, testPaystackSecret))
	assert.False(t, verifyPaystackSignature(payload, valid, "other-secret"))
	assert.False(t, verifyPaystackSignature(payload, "", testPaystackSecret))
	assert.False(t, verifyPaystackSignature(payload, valid, ""))
}
