package walletsync

import (
	"context"
	"testing"
	"time"

	"github.com/gabapcia/walletsync/internal/pkg/types"

	"github.com/stretchr/testify/mock"
)

// Hand-maintained expecter-style test doubles for the collaborator
// interfaces, one per interface.

type ChainTipMock struct{ mock.Mock }

func NewChainTipMock(t *testing.T) *ChainTipMock {
	m := &ChainTipMock{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *ChainTipMock) GetTip(ctx context.Context) (HeaderHash, error) {
	args := m.Called(ctx)
	return args.Get(0).(HeaderHash), args.Error(1)
}

type chainTipExpecter struct{ m *mock.Mock }

func (m *ChainTipMock) EXPECT() *chainTipExpecter { return &chainTipExpecter{&m.Mock} }

func (e *chainTipExpecter) GetTip(ctx any) *mock.Call { return e.m.On("GetTip", ctx) }

type SlottingMock struct{ mock.Mock }

func NewSlottingMock(t *testing.T) *SlottingMock {
	m := &SlottingMock{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *SlottingMock) SystemStart(ctx context.Context) (time.Time, error) {
	args := m.Called(ctx)
	return args.Get(0).(time.Time), args.Error(1)
}

func (m *SlottingMock) SlotTimer(ctx context.Context) (func(Slot) time.Time, error) {
	args := m.Called(ctx)
	var timer func(Slot) time.Time
	if v := args.Get(0); v != nil {
		timer = v.(func(Slot) time.Time)
	}
	return timer, args.Error(1)
}

func (m *SlottingMock) CurrentEpochSlotDuration(ctx context.Context) (time.Duration, error) {
	args := m.Called(ctx)
	return args.Get(0).(time.Duration), args.Error(1)
}

type slottingExpecter struct{ m *mock.Mock }

func (m *SlottingMock) EXPECT() *slottingExpecter { return &slottingExpecter{&m.Mock} }

func (e *slottingExpecter) SystemStart(ctx any) *mock.Call { return e.m.On("SystemStart", ctx) }

func (e *slottingExpecter) SlotTimer(ctx any) *mock.Call { return e.m.On("SlotTimer", ctx) }

func (e *slottingExpecter) CurrentEpochSlotDuration(ctx any) *mock.Call {
	return e.m.On("CurrentEpochSlotDuration", ctx)
}

type WalletStoreMock struct{ mock.Mock }

func NewWalletStoreMock(t *testing.T) *WalletStoreMock {
	m := &WalletStoreMock{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *WalletStoreMock) WalletIDs(ctx context.Context) ([]WalletID, error) {
	args := m.Called(ctx)
	var wallets []WalletID
	if v := args.Get(0); v != nil {
		wallets = v.([]WalletID)
	}
	return wallets, args.Error(1)
}

func (m *WalletStoreMock) WalletSyncTip(ctx context.Context, wallet WalletID) (SyncTip, error) {
	args := m.Called(ctx, wallet)
	return args.Get(0).(SyncTip), args.Error(1)
}

func (m *WalletStoreMock) UsedAddresses(ctx context.Context) (types.Set[Address], error) {
	args := m.Called(ctx)
	var used types.Set[Address]
	if v := args.Get(0); v != nil {
		used = v.(types.Set[Address])
	}
	return used, args.Error(1)
}

func (m *WalletStoreMock) ApplyModifier(ctx context.Context, wallet WalletID, newTip HeaderHash, mod Modifier) error {
	args := m.Called(ctx, wallet, newTip, mod)
	return args.Error(0)
}

func (m *WalletStoreMock) RollbackModifier(ctx context.Context, wallet WalletID, newTip HeaderHash, mod Modifier) error {
	args := m.Called(ctx, wallet, newTip, mod)
	return args.Error(0)
}

type walletStoreExpecter struct{ m *mock.Mock }

func (m *WalletStoreMock) EXPECT() *walletStoreExpecter { return &walletStoreExpecter{&m.Mock} }

func (e *walletStoreExpecter) WalletIDs(ctx any) *mock.Call { return e.m.On("WalletIDs", ctx) }

func (e *walletStoreExpecter) WalletSyncTip(ctx, wallet any) *mock.Call {
	return e.m.On("WalletSyncTip", ctx, wallet)
}

func (e *walletStoreExpecter) UsedAddresses(ctx any) *mock.Call {
	return e.m.On("UsedAddresses", ctx)
}

func (e *walletStoreExpecter) ApplyModifier(ctx, wallet, newTip, mod any) *mock.Call {
	return e.m.On("ApplyModifier", ctx, wallet, newTip, mod)
}

func (e *walletStoreExpecter) RollbackModifier(ctx, wallet, newTip, mod any) *mock.Call {
	return e.m.On("RollbackModifier", ctx, wallet, newTip, mod)
}

type KeyStoreMock struct{ mock.Mock }

func NewKeyStoreMock(t *testing.T) *KeyStoreMock {
	m := &KeyStoreMock{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *KeyStoreMock) SecretKeyByID(ctx context.Context, wallet WalletID) (SecretKey, error) {
	args := m.Called(ctx, wallet)
	var key SecretKey
	if v := args.Get(0); v != nil {
		key = v.(SecretKey)
	}
	return key, args.Error(1)
}

type keyStoreExpecter struct{ m *mock.Mock }

func (m *KeyStoreMock) EXPECT() *keyStoreExpecter { return &keyStoreExpecter{&m.Mock} }

func (e *keyStoreExpecter) SecretKeyByID(ctx, wallet any) *mock.Call {
	return e.m.On("SecretKeyByID", ctx, wallet)
}

type TxTrackerMock struct{ mock.Mock }

func NewTxTrackerMock(t *testing.T) *TxTrackerMock {
	m := &TxTrackerMock{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *TxTrackerMock) TrackApplied(ctx context.Context, key SecretKey, used types.Set[Address], meta HeaderMeta, triples []Triple) (Modifier, error) {
	args := m.Called(ctx, key, used, meta, triples)
	return args.Get(0), args.Error(1)
}

func (m *TxTrackerMock) TrackRolledBack(ctx context.Context, key SecretKey, used types.Set[Address], meta HeaderMeta, triples []Triple) (Modifier, error) {
	args := m.Called(ctx, key, used, meta, triples)
	return args.Get(0), args.Error(1)
}

type txTrackerExpecter struct{ m *mock.Mock }

func (m *TxTrackerMock) EXPECT() *txTrackerExpecter { return &txTrackerExpecter{&m.Mock} }

func (e *txTrackerExpecter) TrackApplied(ctx, key, used, meta, triples any) *mock.Call {
	return e.m.On("TrackApplied", ctx, key, used, meta, triples)
}

func (e *txTrackerExpecter) TrackRolledBack(ctx, key, used, meta, triples any) *mock.Call {
	return e.m.On("TrackRolledBack", ctx, key, used, meta, triples)
}

type ErrorReporterMock struct{ mock.Mock }

func NewErrorReporterMock(t *testing.T) *ErrorReporterMock {
	m := &ErrorReporterMock{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *ErrorReporterMock) TryReport(ctx context.Context, report FailureReport) error {
	args := m.Called(ctx, report)
	return args.Error(0)
}

type errorReporterExpecter struct{ m *mock.Mock }

func (m *ErrorReporterMock) EXPECT() *errorReporterExpecter {
	return &errorReporterExpecter{&m.Mock}
}

func (e *errorReporterExpecter) TryReport(ctx, report any) *mock.Call {
	return e.m.On("TryReport", ctx, report)
}
