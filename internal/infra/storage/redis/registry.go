package redis

import (
	"context"

	"github.com/gabapcia/walletsync/internal/walletsync"
)

// TrackWallet registers a wallet for synchronization. With an empty
// initialTip the wallet stays in the never-synchronized state and is
// skipped until a tip is recorded; with a tip it synchronizes from that
// point on.
func (c *Client) TrackWallet(ctx context.Context, wallet walletsync.WalletID, initialTip walletsync.HeaderHash) error {
	if err := c.conn.SAdd(ctx, trackedWalletsKey(), string(wallet)).Err(); err != nil {
		return err
	}

	if initialTip == "" {
		return nil
	}
	return c.conn.Set(ctx, walletTipKey(wallet), string(initialTip), 0).Err()
}

// UntrackWallet removes a wallet and its derived state. The used-address
// set is shared and left untouched.
func (c *Client) UntrackWallet(ctx context.Context, wallet walletsync.WalletID) error {
	if err := c.conn.SRem(ctx, trackedWalletsKey(), string(wallet)).Err(); err != nil {
		return err
	}

	return c.conn.Del(ctx,
		walletTipKey(wallet),
		walletTxIndexKey(wallet),
		walletBalanceKey(wallet),
	).Err()
}
