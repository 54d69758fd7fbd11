package biz

import (
	"context"
	"io"
	"testing"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReconcile_AllBalancesMatch(t *testing.T) {
	accounts := newFakeAccountRepo(
		&Account{AccountID: "acc-1", Balance: 40},
		&Account{AccountID: "acc-2", Balance: 0},
	)
	entries := newFakeLedgerRepo()
	_, err := entries.Append(context.Background(), &LedgerEntry{LedgerEntryID: "e1", AccountID: "acc-1", Delta: 50, ProviderReference: "ref-1"})
	require.NoError(t, err)
	_, err = entries.Append(context.Background(), &LedgerEntry{LedgerEntryID: "e2", AccountID: "acc-1", Delta: -10})
	require.NoError(t, err)

	uc := NewReconcileUseCase(accounts, entries, log.NewStdLogger(io.Discard))
	count, mismatched, err := uc.Reconcile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Empty(t, mismatched)
}

func TestReconcile_DetectsDriftedBalance(t *testing.T) {
	accounts := newFakeAccountRepo(
		&Account{AccountID: "acc-1", Balance: 40},
		&Account{AccountID: "acc-2", Balance: 99}, // 流水和是 0，余额被改过
	)
	entries := newFakeLedgerRepo()
	_, err := entries.Append(context.Background(), &LedgerEntry{LedgerEntryID: "e1", AccountID: "acc-1", Delta: 40, ProviderReference: "ref-1"})
	require.NoError(t, err)

	uc := NewReconcileUseCase(accounts, entries, log.NewStdLogger(io.Discard))
	count, mismatched, err := uc.Reconcile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Equal(t, []string{"acc-2"}, mismatched)
}
