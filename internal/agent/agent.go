package agent

import (
	"context"
	"sync"
	"time"

	"github.com/jrcichra/alert-deleter/internal/logger"
	"github.com/jrcichra/alert-deleter/internal/matcher"
	"github.com/jrcichra/alert-deleter/internal/metrics"
	"github.com/jrcichra/alert-deleter/internal/model"
)

// AlertSource yields the current alert list; satisfied by *poller.Poller.
type AlertSource interface {
	Fetch(ctx context.Context) ([]model.Alert, error)
}

// ActionDispatcher handles one matched alert; satisfied by
// *remediate.Dispatcher.
type ActionDispatcher interface {
	Dispatch(ctx context.Context, alert model.Alert)
}

// Status is a point-in-time snapshot for the /status endpoint.
type Status struct {
	LastPoll    time.Time `json:"lastPoll"`
	LastMatched int       `json:"lastMatched"`
	Cycles      uint64    `json:"cycles"`
}

// Agent is the poll-match-dispatch loop. It only runs after leadership is
// held; the renewal watchdog kills the process if that ever changes.
type Agent struct {
	log         *logger.Logger
	source      AlertSource
	dispatcher  ActionDispatcher
	allowList   []string
	activeState string
	interval    time.Duration

	mu     sync.Mutex
	status Status
}

func New(log *logger.Logger, source AlertSource, dispatcher ActionDispatcher, allowList []string, activeState string, interval time.Duration) *Agent {
	return &Agent{
		log:         log,
		source:      source,
		dispatcher:  dispatcher,
		allowList:   allowList,
		activeState: activeState,
		interval:    interval,
	}
}

// Run loops forever: one cycle immediately, then one per tick. Failures
// inside a cycle never unwind past it.
func (a *Agent) Run(ctx context.Context) {
	t := time.NewTicker(a.interval)
	defer t.Stop()

	a.log.Info().Dur("interval", a.interval).Strs("alert_names", a.allowList).Msg("remediation loop started")
	a.RunCycle(ctx)

	for {
		select {
		case <-ctx.Done():
			a.log.Info().Msg("remediation loop stopped")
			return
		case <-t.C:
			a.RunCycle(ctx)
		}
	}
}

// RunCycle does one poll-match-dispatch pass. Matched alerts are dispatched
// sequentially in matcher output order; each alert's outcome is independent.
func (a *Agent) RunCycle(ctx context.Context) {
	a.log.Debug().Msg("checking for alerts")
	alerts, err := a.source.Fetch(ctx)
	if err != nil {
		a.log.Error().Err(err).Msg("failed to get alerts")
		return
	}
	matched := matcher.Match(alerts, a.allowList, a.activeState)
	for _, alert := range matched {
		metrics.MatchedTotal.WithLabelValues(alert.Labels.Alertname).Inc()
		a.dispatcher.Dispatch(ctx, alert)
	}

	a.mu.Lock()
	a.status.LastPoll = time.Now()
	a.status.LastMatched = len(matched)
	a.status.Cycles++
	a.mu.Unlock()
}

func (a *Agent) Status() Status {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.status
}
