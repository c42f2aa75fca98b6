package matcher

import (
	"testing"

	"github.com/jrcichra/alert-deleter/internal/model"
)

func alert(fp, name, state string) model.Alert {
	return model.Alert{
		Fingerprint: fp,
		Status:      model.AlertStatus{State: state},
		Labels:      model.Labels{Alertname: name},
	}
}

func TestMatch(t *testing.T) {
	allow := []string{"HighMemory", "CrashLoop"}
	in := []model.Alert{
		alert("f1", "HighMemory", "active"),
		alert("f2", "HighMemory", "resolved"),
		alert("f3", "DiskFull", "active"),
		alert("f4", "CrashLoop", "active"),
		alert("f5", "CrashLoop", "suppressed"),
	}

	got := Match(in, allow, "active")
	want := []string{"f1", "f4"}
	if len(got) != len(want) {
		t.Fatalf("matched %d alerts, want %d", len(got), len(want))
	}
	for i, fp := range want {
		if got[i].Fingerprint != fp {
			t.Fatalf("alert %d: got %q want %q (order must be stable)", i, got[i].Fingerprint, fp)
		}
	}
}

func TestMatchActiveStateLiteral(t *testing.T) {
	// Some Alertmanager variants say "firing" instead of "active".
	in := []model.Alert{alert("f1", "HighMemory", "firing")}
	if got := Match(in, []string{"HighMemory"}, "active"); len(got) != 0 {
		t.Fatalf("state %q should not match literal %q", "firing", "active")
	}
	if got := Match(in, []string{"HighMemory"}, "firing"); len(got) != 1 {
		t.Fatalf("state %q should match literal %q", "firing", "firing")
	}
}

func TestMatchEmpty(t *testing.T) {
	if got := Match(nil, []string{"HighMemory"}, "active"); len(got) != 0 {
		t.Fatalf("nil input should match nothing, got %d", len(got))
	}
	if got := Match([]model.Alert{alert("f1", "HighMemory", "active")}, nil, "active"); len(got) != 0 {
		t.Fatalf("empty allow-list should match nothing, got %d", len(got))
	}
}
