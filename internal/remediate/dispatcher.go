package remediate

import (
	"context"

	"github.com/jrcichra/alert-deleter/internal/logger"
	"github.com/jrcichra/alert-deleter/internal/metrics"
	"github.com/jrcichra/alert-deleter/internal/model"
)

// PodDeleter terminates one workload instance.
type PodDeleter interface {
	DeletePod(ctx context.Context, namespace, name string) error
}

// WebhookSender forwards one alert to an external receiver.
type WebhookSender interface {
	Forward(ctx context.Context, url string, alert model.Alert) error
}

// Dispatcher routes one matched alert to its executor. Dispatch never returns
// an error: one alert's failure must not stop the rest of the cycle, so every
// outcome is absorbed into logs and counters here.
type Dispatcher struct {
	log   *logger.Logger
	pods  PodDeleter
	hooks WebhookSender
}

func NewDispatcher(log *logger.Logger, pods PodDeleter, hooks WebhookSender) *Dispatcher {
	return &Dispatcher{log: log, pods: pods, hooks: hooks}
}

func (d *Dispatcher) Dispatch(ctx context.Context, alert model.Alert) {
	action := alert.Labels.ActionOrDefault()
	switch action {
	case model.ActionDeletePod:
		if alert.Labels.Pod == "" || alert.Labels.Namespace == "" {
			metrics.RemediationsTotal.WithLabelValues(action, "skipped").Inc()
			d.log.Error().Str("fingerprint", alert.Fingerprint).Msg("alert is missing pod or namespace label")
			return
		}
		if err := d.pods.DeletePod(ctx, alert.Labels.Namespace, alert.Labels.Pod); err != nil {
			metrics.RemediationsTotal.WithLabelValues(action, "error").Inc()
			d.log.Error().Err(err).
				Str("fingerprint", alert.Fingerprint).
				Str("ns", alert.Labels.Namespace).
				Str("pod", alert.Labels.Pod).
				Msg("failed to delete pod")
			return
		}
		metrics.RemediationsTotal.WithLabelValues(action, "ok").Inc()
	case model.ActionWebhook:
		if alert.Labels.WebhookURL == "" {
			metrics.RemediationsTotal.WithLabelValues(action, "skipped").Inc()
			d.log.Error().Str("fingerprint", alert.Fingerprint).Msg("no webhook URL specified in alert")
			return
		}
		if err := d.hooks.Forward(ctx, alert.Labels.WebhookURL, alert); err != nil {
			metrics.RemediationsTotal.WithLabelValues(action, "error").Inc()
			d.log.Error().Err(err).Str("fingerprint", alert.Fingerprint).Msg("failed to send webhook")
			return
		}
		metrics.RemediationsTotal.WithLabelValues(action, "ok").Inc()
	default:
		metrics.RemediationsTotal.WithLabelValues(action, "unknown").Inc()
		d.log.Warn().Str("fingerprint", alert.Fingerprint).Str("action", action).Msg("unknown action in alert")
	}
}
