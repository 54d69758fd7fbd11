package biz

import "github.com/google/wire"

// ProviderSet is biz providers.
var ProviderSet = wire.NewSet(
	NewBillingConfig,
	NewAccountUseCase,
	NewLedgerEntryUseCase,
	NewWorkItemUseCase,
	NewPlanUseCase,
	NewFulfillmentUseCase,
	NewUsageUseCase,
	NewCheckoutUseCase,
	NewReconcileUseCase,
)
