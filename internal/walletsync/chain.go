package walletsync

import (
	"context"
	"time"
)

// ChainTip exposes the hash of the chain's current head block.
type ChainTip interface {
	// GetTip returns the current chain tip hash.
	//
	// The block-processing pipeline freezes chain state for the duration of
	// an apply or rollback callback, so the value is stable within one call.
	GetTip(ctx context.Context) (HeaderHash, error)
}

// Slotting resolves slots to wall-clock time.
//
// The synchronizer resolves a slot timer once per apply/rollback call and
// uses it to timestamp every main header in the window; it also derives its
// overrun threshold from the current epoch's slot duration.
type Slotting interface {
	// SystemStart returns the wall-clock time of slot zero.
	SystemStart(ctx context.Context) (time.Time, error)

	// SlotTimer returns a snapshot resolver mapping a slot to the
	// wall-clock start of that slot. The snapshot is consistent for the
	// duration of one apply/rollback call.
	SlotTimer(ctx context.Context) (func(Slot) time.Time, error)

	// CurrentEpochSlotDuration returns the slot duration of the current epoch.
	CurrentEpochSlotDuration(ctx context.Context) (time.Duration, error)
}

// HeaderMeta resolves per-header metadata for the transaction tracker.
// Both resolvers report false for genesis headers, which have no timestamp
// and no difficulty.
type HeaderMeta struct {
	Timestamp  func(BlockHeader) (time.Time, bool)
	Difficulty func(BlockHeader) (uint64, bool)
}

// headerTime resolves a header to the wall-clock start of its slot.
// Genesis headers never map to a timestamp.
func headerTime(timer func(Slot) time.Time, h BlockHeader) (time.Time, bool) {
	switch m := h.(type) {
	case MainHeader:
		return timer(m.Slot), true
	default:
		return time.Time{}, false
	}
}

// headerDifficulty extracts the difficulty of a main header.
func headerDifficulty(h BlockHeader) (uint64, bool) {
	switch m := h.(type) {
	case MainHeader:
		return m.Difficulty, true
	default:
		return 0, false
	}
}
