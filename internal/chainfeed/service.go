// Package chainfeed drives wallet synchronization from a chain node: it
// polls the node's tip, reconstructs the windows of applied and rolled-back
// blocks since the last observation, and delivers them serially to a
// Listener. It is the block-processing pipeline the walletsync service
// plugs into.
package chainfeed

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/gabapcia/walletsync/internal/pkg/resilience/retry"
	"github.com/gabapcia/walletsync/internal/walletsync"
)

// ErrServiceAlreadyStarted is returned if Start is called more than once.
var ErrServiceAlreadyStarted = errors.New("service already started")

const (
	defaultPollInterval  = 5 * time.Second
	defaultMaxReorgDepth = 64
)

// Service is the feed lifecycle.
type Service interface {
	// Start begins polling the chain source and dispatching windows to the
	// listener. Returns ErrServiceAlreadyStarted on a second call. Call
	// Close to stop the background routines.
	Start(ctx context.Context) error

	// Close stops the feed and cancels all background routines. It is safe
	// to call Close even if the service was never started.
	Close()
}

// closeFunc stops the feed's background goroutines.
type closeFunc func()

// service implements Service around a Blockchain source and a Listener.
type service struct {
	mu        sync.Mutex // protects lifecycle state
	isStarted bool
	closeFunc closeFunc

	chain    Blockchain
	listener Listener
	retry    retry.Retry
	tipPin   *TipPin

	pollInterval  time.Duration
	maxReorgDepth int

	// Chain walk state, owned exclusively by the watch goroutine.
	localTip walletsync.HeaderHash
	recent   []walletsync.Blund // applied blocks, oldest to newest, capped at maxReorgDepth
}

// Compile-time check that *service implements the Service interface.
var _ Service = (*service)(nil)

// config holds the optional settings applied by New.
type config struct {
	pollInterval  time.Duration
	maxReorgDepth int
	retry         retry.Retry
	tipPin        *TipPin
}

// Option configures the feed during construction.
type Option func(*config)

// WithPollInterval sets how often the feed checks the node's tip.
func WithPollInterval(d time.Duration) Option {
	return func(c *config) {
		c.pollInterval = d
	}
}

// WithMaxReorgDepth bounds both the depth of a single window walk and the
// number of applied blocks retained for building rollback windows.
func WithMaxReorgDepth(n int) Option {
	return func(c *config) {
		c.maxReorgDepth = n
	}
}

// WithRetry replaces the retry policy used for chain source calls.
func WithRetry(r retry.Retry) Option {
	return func(c *config) {
		c.retry = r
	}
}

// WithTipPin makes the feed freeze pin to the tip preceding each delivered
// window: the abandoned tip before a rollback, the window's parent before an
// apply. A listener whose tip-consistency checks read the same pin then sees
// the chain as it was when the window began, not the node's already-moved
// tip.
func WithTipPin(pin *TipPin) Option {
	return func(c *config) {
		c.tipPin = pin
	}
}

// New builds a feed over the chain source, delivering windows to listener.
func New(chain Blockchain, listener Listener, opts ...Option) *service {
	cfg := config{
		pollInterval:  defaultPollInterval,
		maxReorgDepth: defaultMaxReorgDepth,
		retry:         retry.New(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &service{
		chain:         chain,
		listener:      listener,
		retry:         cfg.retry,
		tipPin:        cfg.tipPin,
		pollInterval:  cfg.pollInterval,
		maxReorgDepth: cfg.maxReorgDepth,
	}
}

// Start launches the watch and dispatch goroutines.
func (s *service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isStarted {
		return ErrServiceAlreadyStarted
	}

	ctx, cancel := context.WithCancel(ctx)

	events := make(chan chainEvent)
	s.startWatch(ctx, events)
	s.startDispatch(ctx, events)

	s.closeFunc = func() {
		cancel()
	}
	s.isStarted = true
	return nil
}

// Close stops the feed's background routines.
func (s *service) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closeFunc != nil {
		s.closeFunc()
	}

	s.closeFunc = nil
	s.isStarted = false
}
