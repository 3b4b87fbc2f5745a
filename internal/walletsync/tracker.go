package walletsync

import (
	"context"

	"github.com/gabapcia/walletsync/internal/pkg/types"
)

// Modifier is the opaque wallet-state delta produced by a TxTracker from a
// transaction stream. The synchronizer never inspects its contents; it only
// hands it to the wallet store to be applied or rolled back.
type Modifier any

// TxTracker computes a wallet's state delta from an ordered triple stream.
//
// TrackApplied and TrackRolledBack are expected to be exact inverses on
// matching undo data: applying a window's delta and then rolling back the
// delta computed from the same window restores the stored view.
type TxTracker interface {
	// TrackApplied computes the delta of applying the triples, oldest first,
	// to the wallet owning key.
	TrackApplied(ctx context.Context, key SecretKey, used types.Set[Address], meta HeaderMeta, triples []Triple) (Modifier, error)

	// TrackRolledBack computes the delta of rolling the triples back,
	// newest first with per-block transaction order reversed.
	TrackRolledBack(ctx context.Context, key SecretKey, used types.Set[Address], meta HeaderMeta, triples []Triple) (Modifier, error)
}
