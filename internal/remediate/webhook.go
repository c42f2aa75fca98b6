package remediate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/jrcichra/alert-deleter/internal/logger"
	"github.com/jrcichra/alert-deleter/internal/model"
)

// Webhook POSTs the full alert as JSON to the URL named by the alert itself.
type Webhook struct {
	log *logger.Logger
	cl  *http.Client
}

func NewWebhook(log *logger.Logger) *Webhook {
	return &Webhook{log: log, cl: &http.Client{Timeout: 10 * time.Second}}
}

func (w *Webhook) Forward(ctx context.Context, url string, alert model.Alert) error {
	body, err := json.Marshal(alert)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := w.cl.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("webhook returned %s", resp.Status)
	}
	w.log.Info().Str("fingerprint", alert.Fingerprint).Str("url", url).Msg("sent webhook for alert")
	return nil
}
