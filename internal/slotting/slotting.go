// Package slotting maps absolute slot numbers to wall-clock time from a
// fixed system start and a uniform slot duration. It backs both the
// per-header timestamps in the wallet transaction index and the
// synchronizer's overrun threshold.
package slotting

import (
	"context"
	"errors"
	"time"

	"github.com/gabapcia/walletsync/internal/walletsync"
)

// ErrInvalidSchedule is returned by New for a schedule that cannot place
// slots on the clock.
var ErrInvalidSchedule = errors.New("slotting schedule is invalid")

// Service resolves slots against the configured schedule.
type Service struct {
	systemStart   time.Time
	slotsPerEpoch uint64
	slotDuration  time.Duration
}

// Compile-time assertion that *Service implements walletsync.Slotting.
var _ walletsync.Slotting = (*Service)(nil)

// New builds a slotting service. systemStart is the wall-clock time of slot
// zero; slotDuration must be positive and slotsPerEpoch non-zero.
func New(systemStart time.Time, slotsPerEpoch uint64, slotDuration time.Duration) (*Service, error) {
	if slotDuration <= 0 || slotsPerEpoch == 0 {
		return nil, ErrInvalidSchedule
	}

	return &Service{
		systemStart:   systemStart.UTC(),
		slotsPerEpoch: slotsPerEpoch,
		slotDuration:  slotDuration,
	}, nil
}

// SystemStart returns the wall-clock time of slot zero.
func (s *Service) SystemStart(ctx context.Context) (time.Time, error) {
	return s.systemStart, nil
}

// SlotTimer returns a snapshot resolver mapping a slot to the wall-clock
// start of that slot.
func (s *Service) SlotTimer(ctx context.Context) (func(walletsync.Slot) time.Time, error) {
	var (
		start    = s.systemStart
		duration = s.slotDuration
	)

	return func(slot walletsync.Slot) time.Time {
		return start.Add(time.Duration(slot) * duration)
	}, nil
}

// CurrentEpochSlotDuration returns the slot duration of the current epoch.
// The schedule is uniform, so every epoch shares one duration.
func (s *Service) CurrentEpochSlotDuration(ctx context.Context) (time.Duration, error) {
	return s.slotDuration, nil
}

// SlotAt returns the slot in progress at t. Times before the system start
// map to slot zero.
func (s *Service) SlotAt(t time.Time) walletsync.Slot {
	elapsed := t.UTC().Sub(s.systemStart)
	if elapsed < 0 {
		return 0
	}
	return walletsync.Slot(elapsed / s.slotDuration)
}

// EpochOf returns the epoch a slot falls into.
func (s *Service) EpochOf(slot walletsync.Slot) uint64 {
	return uint64(slot) / s.slotsPerEpoch
}
