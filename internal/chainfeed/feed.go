package chainfeed

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/gabapcia/walletsync/internal/pkg/logger"
	"github.com/gabapcia/walletsync/internal/pkg/x/chflow"
	"github.com/gabapcia/walletsync/internal/walletsync"

	"github.com/google/uuid"
)

// ErrAncestorNotFound is reported when a fork reaches past the feed's
// retained history, so no rollback window can be built.
var ErrAncestorNotFound = errors.New("fork ancestor is outside retained history")

// chainEvent is one observed chain change. On a fork, rollback holds the
// abandoned branch (newest first) and is delivered before apply, which
// holds the new branch (oldest first).
type chainEvent struct {
	id       string // correlation id for logs
	rollback walletsync.NewestFirst
	apply    walletsync.OldestFirst
}

// watch polls the chain tip and emits chainEvents until the context is
// canceled. It owns the feed's chain walk state.
func (s *service) watch(ctx context.Context, events chan<- chainEvent) {
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		event, err := s.step(ctx)
		if err != nil {
			logger.Error(ctx, "chain poll failed", "error", err)
			continue
		}
		if event == nil {
			continue
		}

		if ok := chflow.Send(ctx, events, *event); !ok {
			return
		}
	}
}

// startWatch launches the watch loop in its own goroutine.
func (s *service) startWatch(ctx context.Context, events chan<- chainEvent) {
	go s.watch(ctx, events)
}

// step performs one tip observation. It returns nil when the chain did not
// move, and otherwise a chainEvent describing the extension or fork.
func (s *service) step(ctx context.Context) (*chainEvent, error) {
	tip, err := s.tipHash(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading node tip: %w", err)
	}

	// First observation: adopt the node's tip as the starting point.
	// Wallets begin synchronizing from here.
	if s.localTip == "" {
		blund, err := s.blundByHash(ctx, tip)
		if err != nil {
			return nil, fmt.Errorf("bootstrapping from tip %s: %w", tip, err)
		}

		s.localTip = tip
		s.recent = []walletsync.Blund{blund}
		logger.Info(ctx, "adopted chain tip as sync starting point", "chain.tip", tip)
		return nil, nil
	}

	if tip == s.localTip {
		return nil, nil
	}

	branch, ancestor, err := s.walkBranch(ctx, tip)
	if err != nil {
		return nil, err
	}

	event := chainEvent{id: uuid.Must(uuid.NewV7()).String()}

	if ancestor != s.localTip {
		// Fork: everything after the ancestor is abandoned, newest first.
		abandoned, err := s.abandonedAfter(ancestor)
		if err != nil {
			return nil, err
		}
		event.rollback = abandoned
	}

	slices.Reverse(branch)
	event.apply = walletsync.OldestFirst(branch)

	s.advance(ancestor, branch)
	return &event, nil
}

// walkBranch walks back from tip collecting blunds (newest first) until it
// reaches a hash the feed already knows: the local tip (pure extension) or
// an older retained block (fork ancestor). The walk is bounded by
// maxReorgDepth.
func (s *service) walkBranch(ctx context.Context, tip walletsync.HeaderHash) ([]walletsync.Blund, walletsync.HeaderHash, error) {
	var (
		branch []walletsync.Blund
		cursor = tip
	)

	for range s.maxReorgDepth {
		blund, err := s.blundByHash(ctx, cursor)
		if err != nil {
			return nil, "", fmt.Errorf("walking branch at %s: %w", cursor, err)
		}
		branch = append(branch, blund)

		prev := blund.Block.Header.PrevHash()
		if prev == s.localTip || s.isRetained(prev) {
			return branch, prev, nil
		}
		cursor = prev
	}

	return nil, "", fmt.Errorf("%w: walked %d blocks from %s", ErrAncestorNotFound, s.maxReorgDepth, tip)
}

// isRetained reports whether the hash is one of the feed's retained blocks.
func (s *service) isRetained(hash walletsync.HeaderHash) bool {
	for _, blund := range s.recent {
		if blund.Block.Header.HeaderHash() == hash {
			return true
		}
	}
	return false
}

// abandonedAfter returns the retained blocks after the ancestor, newest
// first: the rollback window of a fork.
func (s *service) abandonedAfter(ancestor walletsync.HeaderHash) (walletsync.NewestFirst, error) {
	idx := -1
	for i, blund := range s.recent {
		if blund.Block.Header.HeaderHash() == ancestor {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("%w: ancestor %s", ErrAncestorNotFound, ancestor)
	}

	abandoned := slices.Clone(s.recent[idx+1:])
	slices.Reverse(abandoned)
	return walletsync.NewestFirst(abandoned), nil
}

// advance updates the walk state after an event is built: retained history
// is cut back to the ancestor, the new branch appended, and the window
// capped at maxReorgDepth.
func (s *service) advance(ancestor walletsync.HeaderHash, branch []walletsync.Blund) {
	if ancestor != s.localTip {
		for i, blund := range s.recent {
			if blund.Block.Header.HeaderHash() == ancestor {
				s.recent = s.recent[:i+1]
				break
			}
		}
	}

	s.recent = append(s.recent, branch...)
	if overflow := len(s.recent) - s.maxReorgDepth; overflow > 0 {
		s.recent = slices.Clone(s.recent[overflow:])
	}
	s.localTip = s.recent[len(s.recent)-1].Block.Header.HeaderHash()
}

// tipHash reads the node tip under the retry policy.
func (s *service) tipHash(ctx context.Context) (walletsync.HeaderHash, error) {
	var tip walletsync.HeaderHash
	err := s.retry.Execute(ctx, func() error {
		var err error
		tip, err = s.chain.TipHash(ctx)
		return err
	})
	return tip, err
}

// blundByHash fetches a block with undo data under the retry policy.
func (s *service) blundByHash(ctx context.Context, hash walletsync.HeaderHash) (walletsync.Blund, error) {
	var blund walletsync.Blund
	err := s.retry.Execute(ctx, func() error {
		var err error
		blund, err = s.chain.BlundByHash(ctx, hash)
		return err
	})
	return blund, err
}

// dispatch forwards events to the listener one at a time, rollback before
// apply, preserving the serial exactly-once delivery the listener relies
// on. Before each call the tip pin, when wired, is frozen to the tip that
// preceded the window: the abandoned tip for a rollback, the window's parent
// for an apply.
func (s *service) dispatch(ctx context.Context, events <-chan chainEvent) {
	for {
		event, ok := chflow.Receive(ctx, events)
		if !ok {
			return
		}

		if len(event.rollback) > 0 {
			s.pinTip(event.rollback[0].Block.Header.HeaderHash())
			if _, err := s.listener.OnRollbackBlocks(ctx, event.rollback); err != nil {
				logger.Error(ctx, "rollback listener failed",
					"event.id", event.id,
					"blocks.count", len(event.rollback),
					"error", err,
				)
			}
		}

		if len(event.apply) > 0 {
			s.pinTip(event.apply[0].Block.Header.PrevHash())
			if _, err := s.listener.OnApplyBlocks(ctx, event.apply); err != nil {
				logger.Error(ctx, "apply listener failed",
					"event.id", event.id,
					"blocks.count", len(event.apply),
					"error", err,
				)
			}
		}
	}
}

// pinTip freezes the pinned tip for the next listener call, if a pin is
// wired.
func (s *service) pinTip(tip walletsync.HeaderHash) {
	if s.tipPin != nil {
		s.tipPin.pin(tip)
	}
}

// startDispatch launches the dispatch loop in its own goroutine.
func (s *service) startDispatch(ctx context.Context, events <-chan chainEvent) {
	go s.dispatch(ctx, events)
}
