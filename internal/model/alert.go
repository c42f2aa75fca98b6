package model

// Remediation actions selectable via the alert's "action" label.
const (
	ActionDeletePod = "delete_pod"
	ActionWebhook   = "webhook"
)

// Alert is one reported condition from the alert source. It is a point-in-time
// snapshot and flows read-only through matcher -> dispatcher -> executor.
type Alert struct {
	Fingerprint string      `json:"fingerprint"`
	Status      AlertStatus `json:"status"`
	Labels      Labels      `json:"labels"`
}

type AlertStatus struct {
	State string `json:"state"`
}

// Labels carries the subset of alert labels the agent interprets. Pod and
// Namespace may be absent on alerts that don't target a workload.
type Labels struct {
	Alertname  string `json:"alertname"`
	Pod        string `json:"pod,omitempty"`
	Namespace  string `json:"namespace,omitempty"`
	Action     string `json:"action,omitempty"`
	WebhookURL string `json:"webhook_url,omitempty"`
}

// ActionOrDefault resolves the action label, defaulting to delete_pod.
func (l Labels) ActionOrDefault() string {
	if l.Action == "" {
		return ActionDeletePod
	}
	return l.Action
}
