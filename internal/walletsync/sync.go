package walletsync

import (
	"context"
	"fmt"
	"time"

	"github.com/gabapcia/walletsync/internal/pkg/logger"
)

// Phase tags used in logs, failure reports, and overrun warnings.
const (
	phaseApply    = "apply"
	phaseRollback = "rollback"
)

// OnApplyBlocks flattens the window into an ordered transaction stream and
// synchronizes every tracked wallet whose recorded tip matches the chain tip
// preceding the window. After a successful per-wallet pass, the wallet's
// recorded tip is the hash of the window's newest block.
//
// Errors returned here come only from window validation and the shared
// reads that precede the wallet loop; per-wallet failures are isolated and
// never surface.
func (s *service) OnApplyBlocks(ctx context.Context, window OldestFirst) (BatchOp, error) {
	if len(window) == 0 {
		return BatchOp{}, ErrEmptyWindow
	}

	stop := s.watchOverrun(ctx, phaseApply)
	defer stop()

	triples, err := flattenApply(window)
	if err != nil {
		return BatchOp{}, fmt.Errorf("flattening apply window: %w", err)
	}
	newTip := window.newTip()

	currentTip, meta, wallets, err := s.prepare(ctx)
	if err != nil {
		return BatchOp{}, err
	}

	for _, wallet := range wallets {
		s.isolate(ctx, wallet, phaseApply, func(ctx context.Context) error {
			return s.guardTip(ctx, currentTip, wallet, func(ctx context.Context) error {
				return s.applyToWallet(ctx, wallet, newTip, meta, triples, len(window))
			})
		})
	}

	return BatchOp{}, nil
}

// OnRollbackBlocks is the structural inverse of OnApplyBlocks: the window
// arrives newest first, each block's transactions are streamed in reverse of
// their application order, and a successful per-wallet pass retreats the
// wallet's recorded tip to the previous-block hash of the window's oldest
// block.
func (s *service) OnRollbackBlocks(ctx context.Context, window NewestFirst) (BatchOp, error) {
	if len(window) == 0 {
		return BatchOp{}, ErrEmptyWindow
	}

	stop := s.watchOverrun(ctx, phaseRollback)
	defer stop()

	triples, err := flattenRollback(window)
	if err != nil {
		return BatchOp{}, fmt.Errorf("flattening rollback window: %w", err)
	}
	newTip := window.retreatTip()

	currentTip, meta, wallets, err := s.prepare(ctx)
	if err != nil {
		return BatchOp{}, err
	}

	for _, wallet := range wallets {
		s.isolate(ctx, wallet, phaseRollback, func(ctx context.Context) error {
			return s.guardTip(ctx, currentTip, wallet, func(ctx context.Context) error {
				return s.rollbackFromWallet(ctx, wallet, newTip, meta, triples, len(window))
			})
		})
	}

	return BatchOp{}, nil
}

// prepare performs the shared reads both entry points need before entering
// the wallet loop: the current chain tip, a slot-timer snapshot turned into
// a header metadata resolver, and the tracked wallet set.
func (s *service) prepare(ctx context.Context) (HeaderHash, HeaderMeta, []WalletID, error) {
	currentTip, err := s.chainTip.GetTip(ctx)
	if err != nil {
		return "", HeaderMeta{}, nil, fmt.Errorf("reading chain tip: %w", err)
	}

	timer, err := s.slotting.SlotTimer(ctx)
	if err != nil {
		return "", HeaderMeta{}, nil, fmt.Errorf("resolving slot timer: %w", err)
	}

	meta := HeaderMeta{
		Timestamp: func(h BlockHeader) (time.Time, bool) {
			return headerTime(timer, h)
		},
		Difficulty: headerDifficulty,
	}

	wallets, err := s.walletStore.WalletIDs(ctx)
	if err != nil {
		return "", HeaderMeta{}, nil, fmt.Errorf("listing tracked wallets: %w", err)
	}

	return currentTip, meta, wallets, nil
}

// applyToWallet runs the guarded apply action for one wallet: compute the
// delta from the triple stream and hand it to the store together with the
// advanced sync tip.
func (s *service) applyToWallet(ctx context.Context, wallet WalletID, newTip HeaderHash, meta HeaderMeta, triples []Triple, blockCount int) error {
	used, err := s.walletStore.UsedAddresses(ctx)
	if err != nil {
		return fmt.Errorf("loading used addresses: %w", err)
	}

	key, err := s.keyStore.SecretKeyByID(ctx, wallet)
	if err != nil {
		return fmt.Errorf("loading secret key: %w", err)
	}

	mod, err := s.txTracker.TrackApplied(ctx, key, used, meta, triples)
	if err != nil {
		return fmt.Errorf("tracking applied transactions: %w", err)
	}

	if err := s.walletStore.ApplyModifier(ctx, wallet, newTip, mod); err != nil {
		return fmt.Errorf("applying wallet modifier: %w", err)
	}

	logger.Info(ctx, "applied blocks to wallet",
		"wallet.id", wallet,
		"blocks.count", blockCount,
	)
	return nil
}

// rollbackFromWallet runs the guarded rollback action for one wallet,
// retreating the recorded sync tip after the delta is reversed.
func (s *service) rollbackFromWallet(ctx context.Context, wallet WalletID, newTip HeaderHash, meta HeaderMeta, triples []Triple, blockCount int) error {
	used, err := s.walletStore.UsedAddresses(ctx)
	if err != nil {
		return fmt.Errorf("loading used addresses: %w", err)
	}

	key, err := s.keyStore.SecretKeyByID(ctx, wallet)
	if err != nil {
		return fmt.Errorf("loading secret key: %w", err)
	}

	mod, err := s.txTracker.TrackRolledBack(ctx, key, used, meta, triples)
	if err != nil {
		return fmt.Errorf("tracking rolled back transactions: %w", err)
	}

	if err := s.walletStore.RollbackModifier(ctx, wallet, newTip, mod); err != nil {
		return fmt.Errorf("rolling back wallet modifier: %w", err)
	}

	logger.Info(ctx, "rolled back blocks from wallet",
		"wallet.id", wallet,
		"blocks.count", blockCount,
	)
	return nil
}
