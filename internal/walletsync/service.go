// Package walletsync keeps each tracked wallet's locally derived view
// (used addresses, balance-affecting transaction index, recorded sync tip)
// consistent with the canonical chain as block windows are applied or rolled
// back by the block-processing pipeline.
//
// The pipeline invokes the service exactly once per apply or rollback event
// and guarantees chain state is frozen for the duration of the callback.
// Wallets are synchronized independently and sequentially: one wallet's
// failure never blocks the others, and no per-wallet failure ever reaches
// the caller.
package walletsync

import (
	"context"
	"errors"
)

// ErrEmptyWindow is returned when an entry point receives a window with no
// blocks. The pipeline contract is that windows are never empty.
var ErrEmptyWindow = errors.New("block window is empty")

// BatchOp is the mutation batch an entry point hands back to the
// block-processing pipeline.
//
// It is currently always empty: wallet mutation happens through direct
// WalletStore calls while the returned batch stays a placeholder, pending a
// storage-engine change that can take wallet writes in the pipeline's own
// batch. The split is intentional; the empty batch is not a bug.
type BatchOp struct{}

// Service is the pair of listener entry points the block-processing
// pipeline drives.
type Service interface {
	// OnApplyBlocks synchronizes every tracked wallet with a window of
	// newly applied blocks, ordered oldest first.
	OnApplyBlocks(ctx context.Context, window OldestFirst) (BatchOp, error)

	// OnRollbackBlocks synchronizes every tracked wallet with a window of
	// rolled-back blocks, ordered newest first.
	OnRollbackBlocks(ctx context.Context, window NewestFirst) (BatchOp, error)
}

// service wires the collaborators the synchronization protocol needs. Every
// dependency is injected explicitly; the package keeps no globals.
type service struct {
	chainTip      ChainTip
	slotting      Slotting
	walletStore   WalletStore
	keyStore      KeyStore
	txTracker     TxTracker
	errorReporter ErrorReporter
}

// Compile-time check that *service implements the Service interface.
var _ Service = (*service)(nil)

// config holds the optional settings applied by New.
type config struct {
	errorReporter ErrorReporter
}

// Option configures the service during construction.
type Option func(*config)

// WithErrorReporter wires an external sink for redacted per-wallet failure
// reports. Without it, failures are only logged.
func WithErrorReporter(r ErrorReporter) Option {
	return func(c *config) {
		c.errorReporter = r
	}
}

// New builds the wallet synchronization service from its collaborators.
func New(chainTip ChainTip, slotting Slotting, walletStore WalletStore, keyStore KeyStore, txTracker TxTracker, opts ...Option) *service {
	cfg := config{
		errorReporter: nopReporter{},
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &service{
		chainTip:      chainTip,
		slotting:      slotting,
		walletStore:   walletStore,
		keyStore:      keyStore,
		txTracker:     txTracker,
		errorReporter: cfg.errorReporter,
	}
}
