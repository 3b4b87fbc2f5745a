package walletsync

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestService_watchOverrun(t *testing.T) {
	t.Run("stop is safe to call more than once", func(t *testing.T) {
		mockSlotting := NewSlottingMock(t)
		svc := &service{slotting: mockSlotting}

		ctx := t.Context()
		mockSlotting.EXPECT().CurrentEpochSlotDuration(ctx).Return(time.Minute, nil).Once()

		stop := svc.watchOverrun(ctx, phaseApply)
		stop()
		assert.NotPanics(t, stop)
	})

	t.Run("keeps observing while the call is in flight", func(t *testing.T) {
		mockSlotting := NewSlottingMock(t)
		svc := &service{slotting: mockSlotting}

		ctx := t.Context()
		mockSlotting.EXPECT().CurrentEpochSlotDuration(ctx).Return(10*time.Millisecond, nil).Once()

		stop := svc.watchOverrun(ctx, phaseApply)

		// Let the 5ms threshold pass a few times; the watchdog must only
		// warn, never interrupt the caller.
		time.Sleep(20 * time.Millisecond)
		stop()
	})

	t.Run("disabled when slot duration is unavailable", func(t *testing.T) {
		mockSlotting := NewSlottingMock(t)
		svc := &service{slotting: mockSlotting}

		ctx := t.Context()
		mockSlotting.EXPECT().CurrentEpochSlotDuration(ctx).Return(time.Duration(0), errors.New("schedule unknown")).Once()

		stop := svc.watchOverrun(ctx, phaseRollback)
		assert.NotPanics(t, stop)
	})

	t.Run("disabled for a zero slot duration", func(t *testing.T) {
		mockSlotting := NewSlottingMock(t)
		svc := &service{slotting: mockSlotting}

		ctx := t.Context()
		mockSlotting.EXPECT().CurrentEpochSlotDuration(ctx).Return(time.Duration(0), nil).Once()

		stop := svc.watchOverrun(ctx, phaseApply)
		assert.NotPanics(t, stop)
	})
}
