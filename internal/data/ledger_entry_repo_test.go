package data

import (
	"testing"

	"github.com/lilstex/elevate-cv/internal/biz"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 空流水号必须映射成 NULL，否则唯一索引会把全部消耗流水挡在第二条之外
func TestEntryModel_EmptyProviderReferenceMapsToNull(t *testing.T) {
	usage := toEntryModel(&biz.LedgerEntry{LedgerEntryID: "e1", AccountID: "acc-1", Delta: -10, Kind: "usage"})
	assert.Nil(t, usage.ProviderReference)

	purchase := toEntryModel(&biz.LedgerEntry{LedgerEntryID: "e2", AccountID: "acc-1", Delta: 50, Kind: "purchase", ProviderReference: "cs_test_1"})
	require.NotNil(t, purchase.ProviderReference)
	assert.Equal(t, "cs_test_1", *purchase.ProviderReference)
}

func TestEntryModel_RoundTrip(t *testing.T) {
	in := &biz.LedgerEntry{
		LedgerEntryID:     "e1",
		AccountID:         "acc-1",
		Delta:             50,
		Kind:              "purchase",
		ProviderReference: "ps_ref_1",
		Gateway:           "paystack",
		AmountPaid:        5000,
		Description:       "Purchased 50 credits via paystack",
	}
	out := fromEntryModel(toEntryModel(in))
	assert.Equal(t, in, out)

	noRef := fromEntryModel(toEntryModel(&biz.LedgerEntry{LedgerEntryID: "e2", AccountID: "acc-1", Delta: -10, Kind: "usage"}))
	assert.Empty(t, noRef.ProviderReference)
}
