// Package webhook forwards redacted wallet failure reports to an HTTP
// endpoint. Delivery is best effort: the synchronizer swallows reporter
// errors, so a dead endpoint degrades to log-only failure visibility.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gabapcia/walletsync/internal/walletsync"

	"github.com/hashicorp/go-retryablehttp"
)

// Reporter posts failure reports as JSON to a fixed endpoint.
type Reporter struct {
	client   *retryablehttp.Client
	endpoint string
}

// Compile-time assertion that *Reporter implements walletsync.ErrorReporter.
var _ walletsync.ErrorReporter = (*Reporter)(nil)

// New builds a Reporter delivering to endpoint through client.
func New(client *retryablehttp.Client, endpoint string) *Reporter {
	return &Reporter{
		client:   client,
		endpoint: endpoint,
	}
}

// TryReport posts the report. Any transport or non-2xx failure is returned
// for the caller to swallow.
func (r *Reporter) TryReport(ctx context.Context, report walletsync.FailureReport) error {
	body, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("encoding failure report: %w", err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := r.client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode < http.StatusOK || res.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("report endpoint returned status %d", res.StatusCode)
	}
	return nil
}
