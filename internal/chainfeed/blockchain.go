package chainfeed

import (
	"context"
	"errors"

	"github.com/gabapcia/walletsync/internal/walletsync"
)

// ErrBlockNotFound is returned by Blockchain implementations when the
// requested block is unknown to the node.
var ErrBlockNotFound = errors.New("block not found")

// Blockchain is the chain source the feed polls: a node exposing its
// current tip and blocks (with undo data) by hash.
type Blockchain interface {
	// TipHash returns the hash of the node's current best block.
	TipHash(ctx context.Context) (walletsync.HeaderHash, error)

	// BlundByHash returns the block with the given header hash paired
	// with its undo data, or ErrBlockNotFound.
	BlundByHash(ctx context.Context, hash walletsync.HeaderHash) (walletsync.Blund, error)
}

// Listener receives block windows from the feed. The feed invokes it from a
// single dispatch goroutine, exactly once per event, with windows that are
// never empty and always chain-linked; chain state observed by the feed
// does not change for the duration of a call.
//
// On a fork, the rollback window for the abandoned branch is delivered
// before the apply window for the replacement branch.
type Listener interface {
	// OnApplyBlocks delivers newly applied blocks, oldest first.
	OnApplyBlocks(ctx context.Context, window walletsync.OldestFirst) (walletsync.BatchOp, error)

	// OnRollbackBlocks delivers rolled-back blocks, newest first.
	OnRollbackBlocks(ctx context.Context, window walletsync.NewestFirst) (walletsync.BatchOp, error)
}
