package walletsync

import (
	"context"
	"time"

	"github.com/gabapcia/walletsync/internal/pkg/logger"

	"github.com/google/uuid"
)

// FailureReport is the redacted representation of a per-wallet failure
// forwarded to the ErrorReporter. Reason carries the failure text only;
// secret key material never reaches it because SecretKey masks itself in
// every printable form.
type FailureReport struct {
	ID     string    `json:"id"`
	Wallet WalletID  `json:"wallet"`
	Phase  string    `json:"phase"`
	Reason string    `json:"reason"`
	At     time.Time `json:"at"`
}

// ErrorReporter forwards redacted failure reports to an external sink.
type ErrorReporter interface {
	// TryReport delivers the report best-effort. A non-nil error means the
	// sink itself failed; the caller swallows it.
	TryReport(ctx context.Context, report FailureReport) error
}

// nopReporter drops all reports. It is the default when no reporter is wired.
type nopReporter struct{}

func (nopReporter) TryReport(context.Context, FailureReport) error { return nil }

// isolate runs the per-wallet action and guarantees the wallet loop
// continues regardless of the outcome. On failure it forwards a redacted
// report to the error reporter (best effort, reporter failures swallowed)
// and logs a warning with the wallet id, the phase, and the failure text.
// It never propagates the failure.
func (s *service) isolate(ctx context.Context, wallet WalletID, phase string, action func(context.Context) error) {
	err := action(ctx)
	if err == nil {
		return
	}

	report := FailureReport{
		ID:     uuid.Must(uuid.NewV7()).String(),
		Wallet: wallet,
		Phase:  phase,
		Reason: err.Error(),
		At:     time.Now().UTC(),
	}
	if repErr := s.errorReporter.TryReport(ctx, report); repErr != nil {
		logger.Debug(ctx, "failure report not delivered",
			"wallet.id", wallet,
			"report.id", report.ID,
			"error", repErr,
		)
	}

	// Failure text can embed addresses and amounts from the store or
	// tracker, so it only reaches the log verbatim under a secure output.
	logger.Warn(ctx, "wallet skipped after processing failure",
		"wallet.id", wallet,
		"sync.phase", phase,
		"report.id", report.ID,
		"error", logger.Secret(err),
	)
}
