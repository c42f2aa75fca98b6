package matcher

import "github.com/jrcichra/alert-deleter/internal/model"

// Match keeps alerts whose alertname is allow-listed and whose state equals
// the configured active literal. Stable: output preserves input order.
// Alerts are never mutated.
func Match(alerts []model.Alert, allowList []string, activeState string) []model.Alert {
	allow := make(map[string]struct{}, len(allowList))
	for _, n := range allowList {
		allow[n] = struct{}{}
	}
	var out []model.Alert
	for _, a := range alerts {
		if _, ok := allow[a.Labels.Alertname]; !ok {
			continue
		}
		if a.Status.State != activeState {
			continue
		}
		out = append(out, a)
	}
	return out
}
