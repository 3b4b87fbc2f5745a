package walletsync

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestService_isolate(t *testing.T) {
	const wallet = WalletID("wallet-1")

	t.Run("does not report when the action succeeds", func(t *testing.T) {
		mockReporter := NewErrorReporterMock(t)
		svc := &service{errorReporter: mockReporter}

		ctx := t.Context()
		svc.isolate(ctx, wallet, phaseApply, func(context.Context) error {
			return nil
		})
	})

	t.Run("reports a redacted failure and swallows it", func(t *testing.T) {
		mockReporter := NewErrorReporterMock(t)
		svc := &service{errorReporter: mockReporter}

		ctx := t.Context()
		mockReporter.EXPECT().TryReport(ctx, mock.MatchedBy(func(report FailureReport) bool {
			return report.ID != "" &&
				report.Wallet == wallet &&
				report.Phase == phaseApply &&
				report.Reason == "tracker failed" &&
				!report.At.IsZero()
		})).Return(nil).Once()

		svc.isolate(ctx, wallet, phaseApply, func(context.Context) error {
			return errors.New("tracker failed")
		})
	})

	t.Run("continues when the reporter itself fails", func(t *testing.T) {
		mockReporter := NewErrorReporterMock(t)
		svc := &service{errorReporter: mockReporter}

		ctx := t.Context()
		mockReporter.EXPECT().TryReport(ctx, mock.Anything).Return(errors.New("sink unreachable")).Once()

		svc.isolate(ctx, wallet, phaseRollback, func(context.Context) error {
			return errors.New("store write failed")
		})
	})

	t.Run("report ids are unique per failure", func(t *testing.T) {
		mockReporter := NewErrorReporterMock(t)
		svc := &service{errorReporter: mockReporter}

		ctx := t.Context()
		var ids []string
		mockReporter.EXPECT().TryReport(ctx, mock.MatchedBy(func(report FailureReport) bool {
			ids = append(ids, report.ID)
			return true
		})).Return(nil).Times(2)

		for range 2 {
			svc.isolate(ctx, wallet, phaseApply, func(context.Context) error {
				return errors.New("boom")
			})
		}

		assert.Len(t, ids, 2)
		assert.NotEqual(t, ids[0], ids[1])
	})
}
