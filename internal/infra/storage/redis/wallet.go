package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/gabapcia/walletsync/internal/pkg/types"
	"github.com/gabapcia/walletsync/internal/txtracker"
	"github.com/gabapcia/walletsync/internal/walletsync"

	redis "github.com/redis/go-redis/v9"
	"github.com/vmihailenco/msgpack/v5"
)

// ErrUnsupportedModifier is returned when a modifier is not the tracker's
// Delta type this store knows how to persist.
var ErrUnsupportedModifier = errors.New("modifier type is not supported by the redis store")

// walletSyncPrefix is the Redis key namespace for all wallet sync state.
const walletSyncPrefix = "walletsync"

// trackedWalletsKey is the set of tracked wallet ids.
//
// Format: "walletsync:wallets"
func trackedWalletsKey() string {
	return walletSyncPrefix + ":wallets"
}

// walletTipKey holds the wallet's recorded sync tip. Absent for a wallet
// that is tracked but has never been synchronized.
//
// Format: "walletsync:tip:{wallet}"
func walletTipKey(wallet walletsync.WalletID) string {
	return fmt.Sprintf("%s:tip:%s", walletSyncPrefix, wallet)
}

// usedAddressesKey is the set of addresses known to be used.
//
// Format: "walletsync:addresses:used"
func usedAddressesKey() string {
	return walletSyncPrefix + ":addresses:used"
}

// walletTxIndexKey is the hash holding the wallet's balance-affecting
// transaction index, keyed by transaction hash.
//
// Format: "walletsync:txindex:{wallet}"
func walletTxIndexKey(wallet walletsync.WalletID) string {
	return fmt.Sprintf("%s:txindex:%s", walletSyncPrefix, wallet)
}

// walletBalanceKey holds the wallet's derived balance as a signed counter.
//
// Format: "walletsync:balance:{wallet}"
func walletBalanceKey(wallet walletsync.WalletID) string {
	return fmt.Sprintf("%s:balance:%s", walletSyncPrefix, wallet)
}

// WalletIDs lists every tracked wallet from the tracked wallet set.
func (c *Client) WalletIDs(ctx context.Context) ([]walletsync.WalletID, error) {
	members, err := c.conn.SMembers(ctx, trackedWalletsKey()).Result()
	if err != nil {
		return nil, err
	}

	wallets := make([]walletsync.WalletID, len(members))
	for i, member := range members {
		wallets[i] = walletsync.WalletID(member)
	}
	return wallets, nil
}

// WalletSyncTip returns the wallet's recorded sync tip. A wallet outside
// the tracked set maps to walletsync.ErrWalletNotTracked; a tracked wallet
// with no tip key has never been synchronized.
func (c *Client) WalletSyncTip(ctx context.Context, wallet walletsync.WalletID) (walletsync.SyncTip, error) {
	tracked, err := c.conn.SIsMember(ctx, trackedWalletsKey(), string(wallet)).Result()
	if err != nil {
		return walletsync.SyncTip{}, err
	}
	if !tracked {
		return walletsync.SyncTip{}, walletsync.ErrWalletNotTracked
	}

	tip, err := c.conn.Get(ctx, walletTipKey(wallet)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return walletsync.SyncTip{Synced: false}, nil
		}
		return walletsync.SyncTip{}, err
	}

	return walletsync.SyncTip{Synced: true, Tip: walletsync.HeaderHash(tip)}, nil
}

// UsedAddresses returns the set of addresses known to be used.
func (c *Client) UsedAddresses(ctx context.Context) (types.Set[walletsync.Address], error) {
	members, err := c.conn.SMembers(ctx, usedAddressesKey()).Result()
	if err != nil {
		return nil, err
	}

	used := types.NewSet[walletsync.Address]()
	for _, member := range members {
		used.Add(walletsync.Address(member))
	}
	return used, nil
}

// ApplyModifier persists the delta and advances the wallet's sync tip in
// one pipeline: index entries are written msgpack-encoded, newly used
// addresses added, the balance counter moved, and the tip set to newTip.
func (c *Client) ApplyModifier(ctx context.Context, wallet walletsync.WalletID, newTip walletsync.HeaderHash, mod walletsync.Modifier) error {
	delta, ok := mod.(*txtracker.Delta)
	if !ok {
		return fmt.Errorf("%w: %T", ErrUnsupportedModifier, mod)
	}

	pipe := c.conn.TxPipeline()

	for _, entry := range delta.Entries {
		encoded, err := msgpack.Marshal(entry)
		if err != nil {
			return fmt.Errorf("encoding tx entry %s: %w", entry.TxHash, err)
		}
		pipe.HSet(ctx, walletTxIndexKey(wallet), entry.TxHash, encoded)
	}

	if len(delta.UsedAddresses) > 0 {
		addresses := make([]any, len(delta.UsedAddresses))
		for i, address := range delta.UsedAddresses {
			addresses[i] = string(address)
		}
		pipe.SAdd(ctx, usedAddressesKey(), addresses...)
	}

	if change := delta.BalanceChange(); change != 0 {
		pipe.IncrBy(ctx, walletBalanceKey(wallet), change)
	}

	pipe.Set(ctx, walletTipKey(wallet), string(newTip), 0)

	_, err := pipe.Exec(ctx)
	return err
}

// RollbackModifier reverses the delta and retreats the wallet's sync tip in
// one pipeline: index entries removed, the addresses the delta marked used
// unmarked, the balance counter moved back, and the tip set to newTip.
func (c *Client) RollbackModifier(ctx context.Context, wallet walletsync.WalletID, newTip walletsync.HeaderHash, mod walletsync.Modifier) error {
	delta, ok := mod.(*txtracker.Delta)
	if !ok {
		return fmt.Errorf("%w: %T", ErrUnsupportedModifier, mod)
	}

	pipe := c.conn.TxPipeline()

	if len(delta.Entries) > 0 {
		hashes := make([]string, len(delta.Entries))
		for i, entry := range delta.Entries {
			hashes[i] = entry.TxHash
		}
		pipe.HDel(ctx, walletTxIndexKey(wallet), hashes...)
	}

	if len(delta.UsedAddresses) > 0 {
		addresses := make([]any, len(delta.UsedAddresses))
		for i, address := range delta.UsedAddresses {
			addresses[i] = string(address)
		}
		pipe.SRem(ctx, usedAddressesKey(), addresses...)
	}

	if change := delta.BalanceChange(); change != 0 {
		pipe.DecrBy(ctx, walletBalanceKey(wallet), change)
	}

	pipe.Set(ctx, walletTipKey(wallet), string(newTip), 0)

	_, err := pipe.Exec(ctx)
	return err
}

// Compile-time assertion that *Client satisfies walletsync.WalletStore.
var _ walletsync.WalletStore = (*Client)(nil)
