package walletsync_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/gabapcia/walletsync/internal/pkg/logger"
	"github.com/gabapcia/walletsync/internal/pkg/types"
	"github.com/gabapcia/walletsync/internal/txtracker"
	"github.com/gabapcia/walletsync/internal/walletsync"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	// Initialize logger for tests to prevent nil pointer dereference
	_ = logger.Init(logger.WithLevel("error"))
}

// indexStore implements WalletStore with the same add/remove delta semantics
// as the production store, kept in memory so an apply/rollback round trip
// can be checked against the full stored state.
type indexStore struct {
	tips    map[walletsync.WalletID]walletsync.SyncTip
	used    types.Set[walletsync.Address]
	entries map[string]txtracker.TxEntry
	balance int64
}

func newIndexStore(wallet walletsync.WalletID, tip walletsync.HeaderHash, used ...walletsync.Address) *indexStore {
	return &indexStore{
		tips:    map[walletsync.WalletID]walletsync.SyncTip{wallet: {Synced: true, Tip: tip}},
		used:    types.NewSet(used...),
		entries: make(map[string]txtracker.TxEntry),
	}
}

func (s *indexStore) WalletIDs(ctx context.Context) ([]walletsync.WalletID, error) {
	ids := make([]walletsync.WalletID, 0, len(s.tips))
	for id := range s.tips {
		ids = append(ids, id)
	}
	return ids, nil
}

func (s *indexStore) WalletSyncTip(ctx context.Context, wallet walletsync.WalletID) (walletsync.SyncTip, error) {
	tip, ok := s.tips[wallet]
	if !ok {
		return walletsync.SyncTip{}, walletsync.ErrWalletNotTracked
	}
	return tip, nil
}

func (s *indexStore) UsedAddresses(ctx context.Context) (types.Set[walletsync.Address], error) {
	return s.used.Clone(), nil
}

func (s *indexStore) ApplyModifier(ctx context.Context, wallet walletsync.WalletID, newTip walletsync.HeaderHash, mod walletsync.Modifier) error {
	delta, ok := mod.(*txtracker.Delta)
	if !ok {
		return fmt.Errorf("unexpected modifier type %T", mod)
	}

	for _, entry := range delta.Entries {
		s.entries[entry.TxHash] = entry
	}
	for _, addr := range delta.UsedAddresses {
		s.used.Add(addr)
	}
	s.balance += delta.BalanceChange()
	s.tips[wallet] = walletsync.SyncTip{Synced: true, Tip: newTip}
	return nil
}

func (s *indexStore) RollbackModifier(ctx context.Context, wallet walletsync.WalletID, newTip walletsync.HeaderHash, mod walletsync.Modifier) error {
	delta, ok := mod.(*txtracker.Delta)
	if !ok {
		return fmt.Errorf("unexpected modifier type %T", mod)
	}

	for _, entry := range delta.Entries {
		delete(s.entries, entry.TxHash)
	}
	for _, addr := range delta.UsedAddresses {
		s.used.Delete(addr)
	}
	s.balance -= delta.BalanceChange()
	s.tips[wallet] = walletsync.SyncTip{Synced: true, Tip: newTip}
	return nil
}

// movingTip is a chain tip source the test advances by hand.
type movingTip struct {
	tip walletsync.HeaderHash
}

func (c *movingTip) GetTip(ctx context.Context) (walletsync.HeaderHash, error) {
	return c.tip, nil
}

type fixedSlotting struct{}

func (fixedSlotting) SystemStart(ctx context.Context) (time.Time, error) {
	return time.Unix(0, 0).UTC(), nil
}

func (fixedSlotting) SlotTimer(ctx context.Context) (func(walletsync.Slot) time.Time, error) {
	return func(slot walletsync.Slot) time.Time {
		return time.Unix(0, 0).UTC().Add(time.Duration(slot) * 20 * time.Second)
	}, nil
}

func (fixedSlotting) CurrentEpochSlotDuration(ctx context.Context) (time.Duration, error) {
	return 20 * time.Second, nil
}

type singleKeyStore struct {
	key walletsync.SecretKey
}

func (s singleKeyStore) SecretKeyByID(ctx context.Context, wallet walletsync.WalletID) (walletsync.SecretKey, error) {
	return s.key, nil
}

func TestSynchronization_roundTrip(t *testing.T) {
	t.Run("rolling back an applied window restores the stored view and tip", func(t *testing.T) {
		ctx := t.Context()

		seed := make([]byte, 32)
		for i := range seed {
			seed[i] = byte(i)
		}
		key := walletsync.NewSecretKey(seed)
		owner, err := txtracker.WalletAddress(key)
		require.NoError(t, err)

		const wallet = walletsync.WalletID("wallet-1")
		store := newIndexStore(wallet, "h0", owner)

		chain := &movingTip{tip: "h0"}
		svc := walletsync.New(chain, fixedSlotting{}, store, singleKeyStore{key: key}, txtracker.New())

		// One payment to the wallet followed by a spend of that payment
		// with change back.
		window := walletsync.OldestFirst{
			{
				Block: walletsync.Block{
					Header: walletsync.MainHeader{Hash: "h1", Prev: "h0", Slot: 1, Difficulty: 1},
					Transactions: []walletsync.Transaction{{
						Hash:    "tx1",
						Outputs: []walletsync.TxOut{{Address: owner, Amount: 100}},
					}},
				},
				Undo: walletsync.Undo{{}},
			},
			{
				Block: walletsync.Block{
					Header: walletsync.MainHeader{Hash: "h2", Prev: "h1", Slot: 2, Difficulty: 2},
					Transactions: []walletsync.Transaction{{
						Hash:   "tx2",
						Inputs: []walletsync.OutPoint{{TxHash: "tx1", Index: 0}},
						Outputs: []walletsync.TxOut{
							{Address: "elsewhere", Amount: 60},
							{Address: owner, Amount: 40},
						},
					}},
				},
				Undo: walletsync.Undo{{SpentOutputs: []walletsync.TxOut{{Address: owner, Amount: 100}}}},
			},
		}

		_, err = svc.OnApplyBlocks(ctx, window)
		require.NoError(t, err)

		assert.Equal(t, walletsync.SyncTip{Synced: true, Tip: "h2"}, store.tips[wallet])
		assert.Len(t, store.entries, 2)
		assert.Equal(t, int64(40), store.balance)

		chain.tip = "h2"
		rollback := walletsync.NewestFirst{window[1], window[0]}

		_, err = svc.OnRollbackBlocks(ctx, rollback)
		require.NoError(t, err)

		assert.Equal(t, walletsync.SyncTip{Synced: true, Tip: "h0"}, store.tips[wallet])
		assert.Empty(t, store.entries)
		assert.Zero(t, store.balance)
		assert.Equal(t, []walletsync.Address{owner}, store.used.ToSlice())
	})
}
