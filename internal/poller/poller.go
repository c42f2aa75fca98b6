package poller

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/jrcichra/alert-deleter/internal/metrics"
	"github.com/jrcichra/alert-deleter/internal/model"
)

type Poller struct {
	url string
	cl  *http.Client
}

func New(url string, timeout time.Duration) *Poller {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Poller{url: url, cl: &http.Client{Timeout: timeout}}
}

// Fetch does one GET against the alert source. No retry here; the poll loop
// retries naturally on its next tick.
func (p *Poller) Fetch(ctx context.Context) ([]model.Alert, error) {
	metrics.PollsTotal.Inc()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		metrics.PollErrors.Inc()
		return nil, err
	}
	resp, err := p.cl.Do(req)
	if err != nil {
		metrics.PollErrors.Inc()
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.PollErrors.Inc()
		return nil, fmt.Errorf("alert source returned %s", resp.Status)
	}
	var alerts []model.Alert
	if err := json.NewDecoder(resp.Body).Decode(&alerts); err != nil {
		metrics.PollErrors.Inc()
		return nil, fmt.Errorf("decode alerts: %w", err)
	}
	return alerts, nil
}
