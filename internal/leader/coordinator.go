package leader

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jrcichra/alert-deleter/internal/logger"
	"github.com/jrcichra/alert-deleter/internal/metrics"
)

// LeaseClient is the single primitive the coordinator drives. Satisfied by
// *LeaseLock; stubbed in tests.
type LeaseClient interface {
	TryAcquireOrRenew(ctx context.Context) (bool, error)
	Params() Params
}

// State is the owned leadership value shared by the coordinator and the
// status endpoints. It is mutated only on return from TryAcquireOrRenew.
type State struct {
	acquired atomic.Bool
	params   Params
}

func (s *State) Acquired() bool { return s.acquired.Load() }
func (s *State) Params() Params { return s.params }

// Coordinator owns the acquire-then-renew protocol: block at startup until
// the lease is won, then renew on a fixed cadence from a watchdog goroutine.
// A confirmed loss of the lease fires the fatal callback exactly once; the
// main loop never renews.
type Coordinator struct {
	lock  LeaseClient
	log   *logger.Logger
	state *State
	fatal func()

	acquireEvery time.Duration
	renewEvery   time.Duration
	fatalOnce    sync.Once
}

func NewCoordinator(lock LeaseClient, log *logger.Logger, fatal func()) *Coordinator {
	return &Coordinator{
		lock:         lock,
		log:          log,
		state:        &State{params: lock.Params()},
		fatal:        fatal,
		acquireEvery: time.Second,
		renewEvery:   5 * time.Second,
	}
}

func (c *Coordinator) State() *State { return c.state }

// AcquireOrBlock retries acquisition until it succeeds. There is no timeout:
// if another replica holds a live lease this blocks until it lapses. An API
// error here is a startup failure and propagates; only the renewal watchdog
// tolerates transient errors.
func (c *Coordinator) AcquireOrBlock(ctx context.Context) error {
	c.log.Info().Str("lease", c.lock.Params().LeaseName).Str("holder", c.lock.Params().HolderID).Msg("waiting for lease")
	for {
		acquired, err := c.lock.TryAcquireOrRenew(ctx)
		if err != nil {
			metrics.RenewalsTotal.WithLabelValues("error").Inc()
			return fmt.Errorf("acquire lease: %w", err)
		}
		if acquired {
			c.state.acquired.Store(true)
			metrics.RenewalsTotal.WithLabelValues("acquired").Inc()
			metrics.Leader.Set(1)
			c.log.Info().Msg("acquired lease")
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.acquireEvery):
		}
	}
}

// RunRenewal is the watchdog loop; run it in its own goroutine after
// AcquireOrBlock returns. A transport error is transient and only logged; an
// explicit acquired=false is a confirmed loss and is fatal.
func (c *Coordinator) RunRenewal(ctx context.Context) {
	t := time.NewTicker(c.renewEvery)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			acquired, err := c.lock.TryAcquireOrRenew(ctx)
			if err != nil {
				metrics.RenewalsTotal.WithLabelValues("error").Inc()
				c.log.Warn().Err(err).Msg("lease renewal error")
				continue
			}
			if !acquired {
				c.state.acquired.Store(false)
				metrics.RenewalsTotal.WithLabelValues("lost").Inc()
				metrics.Leader.Set(0)
				c.log.Error().Str("lease", c.lock.Params().LeaseName).Msg("lost lease, shutting down")
				c.fatalOnce.Do(c.fatal)
				return
			}
			metrics.RenewalsTotal.WithLabelValues("renewed").Inc()
		}
	}
}
