package biz

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	creditErrors "github.com/lilstex/elevate-cv/internal/errors"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFulfillmentFixture(balance int64) (*FulfillmentUseCase, *fakeAccountRepo, *fakeLedgerRepo) {
	accounts := newFakeAccountRepo(&Account{AccountID: "acc-1", Email: "user@example.com", Balance: balance})
	entries := newFakeLedgerRepo()
	uc := NewFulfillmentUseCase(accounts, entries, log.NewStdLogger(io.Discard))
	return uc, accounts, entries
}

func TestFulfillPurchase_CreditsExactlyOnce(t *testing.T) {
	uc, accounts, entries := newFulfillmentFixture(0)
	ev := &PurchaseEvent{
		AccountID:         "acc-1",
		AmountPaid:        9.99,
		CreditsGranted:    50,
		ProviderReference: "cs_test_abc",
		Gateway:           "stripe",
	}

	// 网关会重复投递同一事件，每次都要确认收到且只入账一次
	for i := 0; i < 5; i++ {
		require.NoError(t, uc.FulfillPurchase(context.Background(), ev))
	}

	assert.Equal(t, int64(50), accounts.balance("acc-1"))
	assert.Equal(t, 1, entries.count())
}

func TestFulfillPurchase_ConcurrentDeliveries(t *testing.T) {
	uc, accounts, entries := newFulfillmentFixture(0)

	const deliveries = 10
	var wg sync.WaitGroup
	for i := 0; i < deliveries; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := uc.FulfillPurchase(context.Background(), &PurchaseEvent{
				AccountID:         "acc-1",
				AmountPaid:        5,
				CreditsGranted:    100,
				ProviderReference: "ref-concurrent",
				Gateway:           "paystack",
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(100), accounts.balance("acc-1"))
	assert.Equal(t, 1, entries.count())
}

func TestFulfillPurchase_UnknownAccountIsDropped(t *testing.T) {
	uc, _, entries := newFulfillmentFixture(0)

	err := uc.FulfillPurchase(context.Background(), &PurchaseEvent{
		AccountID:         "ghost",
		CreditsGranted:    30,
		ProviderReference: "ref-ghost",
		Gateway:           "stripe",
	})
	// 未知账户只丢弃：返回 nil 让网关停止重试
	require.NoError(t, err)
	assert.Equal(t, 0, entries.count())
}

func TestFulfillPurchase_MalformedEventIsDropped(t *testing.T) {
	uc, accounts, entries := newFulfillmentFixture(0)

	// 缺引用或积分数的事件是永久畸形：丢弃并确认收到，绝不触发网关重试
	err := uc.FulfillPurchase(context.Background(), &PurchaseEvent{AccountID: "acc-1", CreditsGranted: 10, Gateway: "stripe"})
	require.NoError(t, err)

	err = uc.FulfillPurchase(context.Background(), &PurchaseEvent{AccountID: "acc-1", ProviderReference: "ref", CreditsGranted: 0, Gateway: "paystack"})
	require.NoError(t, err)

	assert.Equal(t, int64(0), accounts.balance("acc-1"))
	assert.Equal(t, 0, entries.count())
}

func TestFulfillPurchase_CreditFailureIsNotRetried(t *testing.T) {
	uc, accounts, entries := newFulfillmentFixture(0)
	accounts.creditErr = errors.New("db down")

	ev := &PurchaseEvent{
		AccountID:         "acc-1",
		CreditsGranted:    20,
		ProviderReference: "ref-broken",
		Gateway:           "stripe",
	}
	// 流水已落库后入账失败：确认收到，留给人工对账，绝不自动重放
	require.NoError(t, uc.FulfillPurchase(context.Background(), ev))
	assert.Equal(t, 1, entries.count())
	assert.Equal(t, int64(0), accounts.balance("acc-1"))

	// 重新投递会命中幂等闸门，依然不会二次入账
	accounts.creditErr = nil
	require.NoError(t, uc.FulfillPurchase(context.Background(), ev))
	assert.Equal(t, 1, entries.count())
	assert.Equal(t, int64(0), accounts.balance("acc-1"))
}

func TestFulfillPurchase_DistinctReferencesAccumulate(t *testing.T) {
	uc, accounts, entries := newFulfillmentFixture(0)

	for _, ref := range []string{"ref-1", "ref-2", "ref-3"} {
		err := uc.FulfillPurchase(context.Background(), &PurchaseEvent{
			AccountID:         "acc-1",
			CreditsGranted:    25,
			ProviderReference: ref,
			Gateway:           "paystack",
		})
		require.NoError(t, err)
	}

	assert.Equal(t, int64(75), accounts.balance("acc-1"))
	assert.Equal(t, 3, entries.count())

	sum, err := entries.SumDeltas(context.Background(), "acc-1")
	require.NoError(t, err)
	assert.Equal(t, int64(75), sum)
}

func TestIsDuplicateProviderReference(t *testing.T) {
	err := creditErrors.ErrorDuplicateProviderReference("ref %s", "abc")
	assert.True(t, creditErrors.IsDuplicateProviderReference(err))
	assert.False(t, creditErrors.IsDuplicateProviderReference(errors.New("other")))
}
