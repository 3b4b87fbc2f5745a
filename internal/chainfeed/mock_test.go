package chainfeed

import (
	"context"
	"testing"

	"github.com/gabapcia/walletsync/internal/walletsync"

	"github.com/stretchr/testify/mock"
)

type BlockchainMock struct{ mock.Mock }

func NewBlockchainMock(t *testing.T) *BlockchainMock {
	m := &BlockchainMock{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *BlockchainMock) TipHash(ctx context.Context) (walletsync.HeaderHash, error) {
	args := m.Called(ctx)
	return args.Get(0).(walletsync.HeaderHash), args.Error(1)
}

func (m *BlockchainMock) BlundByHash(ctx context.Context, hash walletsync.HeaderHash) (walletsync.Blund, error) {
	args := m.Called(ctx, hash)
	return args.Get(0).(walletsync.Blund), args.Error(1)
}

type blockchainExpecter struct{ m *mock.Mock }

func (m *BlockchainMock) EXPECT() *blockchainExpecter { return &blockchainExpecter{&m.Mock} }

func (e *blockchainExpecter) TipHash(ctx any) *mock.Call { return e.m.On("TipHash", ctx) }

func (e *blockchainExpecter) BlundByHash(ctx, hash any) *mock.Call {
	return e.m.On("BlundByHash", ctx, hash)
}

type ListenerMock struct{ mock.Mock }

func NewListenerMock(t *testing.T) *ListenerMock {
	m := &ListenerMock{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *ListenerMock) OnApplyBlocks(ctx context.Context, window walletsync.OldestFirst) (walletsync.BatchOp, error) {
	args := m.Called(ctx, window)
	return args.Get(0).(walletsync.BatchOp), args.Error(1)
}

func (m *ListenerMock) OnRollbackBlocks(ctx context.Context, window walletsync.NewestFirst) (walletsync.BatchOp, error) {
	args := m.Called(ctx, window)
	return args.Get(0).(walletsync.BatchOp), args.Error(1)
}

type listenerExpecter struct{ m *mock.Mock }

func (m *ListenerMock) EXPECT() *listenerExpecter { return &listenerExpecter{&m.Mock} }

func (e *listenerExpecter) OnApplyBlocks(ctx, window any) *mock.Call {
	return e.m.On("OnApplyBlocks", ctx, window)
}

func (e *listenerExpecter) OnRollbackBlocks(ctx, window any) *mock.Call {
	return e.m.On("OnRollbackBlocks", ctx, window)
}
