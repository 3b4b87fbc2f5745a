package chainfeed

import (
	"context"
	"errors"
	"sync"

	"github.com/gabapcia/walletsync/internal/walletsync"
)

// ErrNoPinnedTip is returned by TipPin.GetTip before the feed has pinned a
// tip, i.e. outside any listener call.
var ErrNoPinnedTip = errors.New("no chain tip pinned")

// TipPin freezes the chain tip the listener observes for the duration of one
// window delivery. The live node's tip has usually already moved past a
// window by the time it is dispatched, so reading the node directly would
// make every tip-consistency check fail; the feed instead pins the tip that
// preceded the in-flight window and the synchronizer reads that.
//
// Wire the same pin into both sides: pass it to the feed with WithTipPin and
// to the synchronizer as its ChainTip.
type TipPin struct {
	mu  sync.RWMutex
	tip walletsync.HeaderHash
	set bool
}

// Compile-time assertion that *TipPin implements walletsync.ChainTip.
var _ walletsync.ChainTip = (*TipPin)(nil)

// NewTipPin returns an unpinned TipPin.
func NewTipPin() *TipPin {
	return &TipPin{}
}

// pin freezes the tip for the next listener call.
func (p *TipPin) pin(tip walletsync.HeaderHash) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.tip, p.set = tip, true
}

// GetTip returns the tip frozen for the in-flight window.
func (p *TipPin) GetTip(ctx context.Context) (walletsync.HeaderHash, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if !p.set {
		return "", ErrNoPinnedTip
	}
	return p.tip, nil
}
