package walletsync

import (
	"context"
	"errors"

	"github.com/gabapcia/walletsync/internal/pkg/logger"
)

// guardTip runs action only when the wallet's recorded sync tip exactly
// matches the chain tip preceding the incoming window. A wallet whose tip
// fell behind or diverged is skipped with a log instead of silently skipping
// or double-processing blocks.
//
// Skips are not errors: the wallet simply does not take part in this window.
// Errors reading the sync record, and errors from action itself, are
// returned to the caller for per-wallet isolation.
func (s *service) guardTip(ctx context.Context, currentTip HeaderHash, wallet WalletID, action func(context.Context) error) error {
	syncTip, err := s.walletStore.WalletSyncTip(ctx, wallet)
	if err != nil {
		if errors.Is(err, ErrWalletNotTracked) {
			logger.Warn(ctx, "wallet has no sync record, skipping",
				"wallet.id", wallet,
			)
			return nil
		}
		return err
	}

	if !syncTip.Synced {
		logger.Info(ctx, "wallet has never been synchronized, skipping",
			"wallet.id", wallet,
		)
		return nil
	}

	if syncTip.Tip != currentTip {
		logger.Warn(ctx, "wallet sync tip does not match current chain tip, skipping",
			"wallet.id", wallet,
			"wallet.tip", syncTip.Tip,
			"chain.tip", currentTip,
		)
		return nil
	}

	return action(ctx)
}
