package biz

import (
	"context"
	"errors"
	"sort"
	"sync"

	creditErrors "github.com/lilstex/elevate-cv/internal/errors"
)

func duplicateRefErr(ref string) error {
	return creditErrors.ErrorDuplicateProviderReference("provider reference %s already recorded", ref)
}

// 内存版 repo 实现，行为对齐存储层的原子性约定

type fakeAccountRepo struct {
	mu        sync.Mutex
	accounts  map[string]*Account
	creditErr error
}

func newFakeAccountRepo(accounts ...*Account) *fakeAccountRepo {
	m := make(map[string]*Account, len(accounts))
	for _, a := range accounts {
		c := *a
		m[a.AccountID] = &c
	}
	return &fakeAccountRepo{accounts: m}
}

func (f *fakeAccountRepo) GetAccount(_ context.Context, accountID string) (*Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.accounts[accountID]
	if !ok {
		return nil, nil
	}
	c := *a
	return &c, nil
}

func (f *fakeAccountRepo) GetBalance(ctx context.Context, accountID string) (*Account, error) {
	return f.GetAccount(ctx, accountID)
}

func (f *fakeAccountRepo) TryDebit(_ context.Context, accountID string, amount int64) (bool, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.accounts[accountID]
	if !ok || a.Balance < amount {
		return false, 0, nil
	}
	a.Balance -= amount
	return true, a.Balance, nil
}

func (f *fakeAccountRepo) Credit(_ context.Context, accountID string, amount int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.creditErr != nil {
		return 0, f.creditErr
	}
	a, ok := f.accounts[accountID]
	if !ok {
		return 0, errors.New("account not found")
	}
	a.Balance += amount
	return a.Balance, nil
}

func (f *fakeAccountRepo) ListAccountIDs(_ context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := make([]string, 0, len(f.accounts))
	for id := range f.accounts {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (f *fakeAccountRepo) balance(accountID string) int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.accounts[accountID].Balance
}

type fakeLedgerRepo struct {
	mu      sync.Mutex
	entries []*LedgerEntry
	refs    map[string]bool
}

func newFakeLedgerRepo() *fakeLedgerRepo {
	return &fakeLedgerRepo{refs: make(map[string]bool)}
}

func (f *fakeLedgerRepo) Append(_ context.Context, entry *LedgerEntry) (*LedgerEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if entry.ProviderReference != "" && f.refs[entry.ProviderReference] {
		return nil, duplicateRefErr(entry.ProviderReference)
	}
	if entry.ProviderReference != "" {
		f.refs[entry.ProviderReference] = true
	}
	c := *entry
	f.entries = append(f.entries, &c)
	return &c, nil
}

func (f *fakeLedgerRepo) Exists(_ context.Context, providerReference string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.refs[providerReference], nil
}

func (f *fakeLedgerRepo) AppendUsage(ctx context.Context, entry *LedgerEntry) error {
	_, err := f.Append(ctx, entry)
	return err
}

func (f *fakeLedgerRepo) BatchAppend(ctx context.Context, entries []*LedgerEntry) error {
	for _, entry := range entries {
		if _, err := f.Append(ctx, entry); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeLedgerRepo) ListByAccount(_ context.Context, accountID string, _, _ int) ([]*LedgerEntry, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*LedgerEntry
	for _, e := range f.entries {
		if e.AccountID == accountID {
			out = append(out, e)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeLedgerRepo) SumDeltas(_ context.Context, accountID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var sum int64
	for _, e := range f.entries {
		if e.AccountID == accountID {
			sum += e.Delta
		}
	}
	return sum, nil
}

func (f *fakeLedgerRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.entries)
}

type fakeWorkItemRepo struct {
	mu    sync.Mutex
	items map[string]*WorkItem // account_id + "/" + fingerprint
}

func newFakeWorkItemRepo() *fakeWorkItemRepo {
	return &fakeWorkItemRepo{items: make(map[string]*WorkItem)}
}

func (f *fakeWorkItemRepo) Create(_ context.Context, item *WorkItem) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := item.AccountID + "/" + item.Fingerprint
	if _, ok := f.items[key]; ok {
		return true, nil
	}
	c := *item
	f.items[key] = &c
	return false, nil
}

func (f *fakeWorkItemRepo) GetByFingerprint(_ context.Context, accountID, fingerprint string) (*WorkItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	item, ok := f.items[accountID+"/"+fingerprint]
	if !ok {
		return nil, nil
	}
	c := *item
	return &c, nil
}

func (f *fakeWorkItemRepo) GetByID(_ context.Context, workItemID string) (*WorkItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, item := range f.items {
		if item.WorkItemID == workItemID {
			c := *item
			return &c, nil
		}
	}
	return nil, nil
}

func (f *fakeWorkItemRepo) ListByAccount(_ context.Context, accountID string, _, _ int) ([]*WorkItem, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*WorkItem
	for _, item := range f.items {
		if item.AccountID == accountID {
			c := *item
			out = append(out, &c)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeWorkItemRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.items)
}

type fakeGenerator struct {
	mu    sync.Mutex
	calls int
	out   *GenerationOutput
	err   error
}

func (f *fakeGenerator) GenerateTailored(_ context.Context, _ *GenerateRequest) (*GenerationOutput, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if f.out != nil {
		return f.out, nil
	}
	return &GenerationOutput{CVData: `{"professionalSummary":"..."}`, CoverLetter: "Dear Hiring Manager"}, nil
}

func (f *fakeGenerator) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}
