// Package poller implements the convergence engine: it repeatedly queries
// a rendering backend for per-client status, accumulates outcomes, and
// decides when enough information has arrived to stop waiting.
package poller

import (
	"context"
	"time"

	"mailproof/internal/pkg/errors"
	"mailproof/internal/pkg/logger"
	"mailproof/internal/ports"
)

const (
	// absenceGraceAttempts is the floor before a client's absence from
	// snapshots is treated as informative.
	absenceGraceAttempts = 10
	// artifactGraceAttempts is the larger floor for screenshot URLs,
	// which often lag terminal status.
	artifactGraceAttempts = 15
)

// Config holds the polling tunables.
type Config struct {
	// MaxAttempts bounds the loop. Defaults to 60.
	MaxAttempts int
	// Delay is the inter-attempt wait. Defaults to 10s.
	Delay time.Duration
	// FetchTimeout caps a single status request so one slow call cannot
	// consume more than its slice of the delay. Defaults to Delay.
	FetchTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 60
	}
	if c.Delay <= 0 {
		c.Delay = 10 * time.Second
	}
	if c.FetchTimeout <= 0 {
		c.FetchTimeout = c.Delay
	}
	return c
}

// Poller drives the status loop for one job at a time. Independent
// sessions may run concurrently for independent jobs; a Poller itself
// holds no per-job state.
type Poller struct {
	provider ports.RenderingProvider
	cfg      Config
	log      *logger.Logger

	// sleep is injectable so termination logic can be tested without
	// real waiting.
	sleep func(ctx context.Context, d time.Duration) error
}

// New creates a poller over the given provider.
func New(provider ports.RenderingProvider, cfg Config, log *logger.Logger) *Poller {
	if log == nil {
		log = logger.NewDefault()
	}
	return &Poller{
		provider: provider,
		cfg:      cfg.withDefaults(),
		log:      log.WithComponent("poller"),
		sleep:    sleepContext,
	}
}

// Poll runs attempts 1..MaxAttempts against the job and returns the final
// session. Budget exhaustion is a clean stop, not an error: whatever was
// captured is returned. Only authentication failures and context
// cancellation surface as errors.
func (p *Poller) Poll(ctx context.Context, job ports.JobHandle, requested []string) (*Session, error) {
	log := p.log.FromContext(ctx).WithJobID(job.ID)
	session := NewSession(requested)

	for attempt := 1; attempt <= p.cfg.MaxAttempts; attempt++ {
		session.attempt = attempt

		fetchCtx, cancel := context.WithTimeout(ctx, p.cfg.FetchTimeout)
		snap, err := p.provider.FetchStatus(fetchCtx, job)
		cancel()

		if err != nil {
			if errors.IsUnauthorized(err) {
				log.Error("authentication rejected, aborting poll",
					"attempt", attempt,
					"error", err.Error(),
				)
				session.finalize()
				return session, errors.Wrap(err, "poller.fetch", "authentication rejected during polling")
			}

			// Soft failure: no new information this attempt.
			log.Warn("status fetch failed, skipping attempt",
				"attempt", attempt,
				"error", err.Error(),
			)
		} else {
			session.Apply(snap)
			logTransitions(log, session, snap, attempt)

			if p.converged(session, snap, attempt) {
				log.Info("polling converged",
					"attempt", attempt,
					"clients", len(session.Tracked()),
				)
				session.finalize()
				return session, nil
			}
		}

		if attempt < p.cfg.MaxAttempts {
			if err := p.sleep(ctx, p.cfg.Delay); err != nil {
				session.finalize()
				return session, err
			}
		}
	}

	log.Warn("attempt budget exhausted, materializing what was captured",
		"attempts", p.cfg.MaxAttempts,
	)
	session.finalize()
	return session, nil
}

// converged applies the termination rule in order, short-circuiting.
func (p *Poller) converged(s *Session, snap ports.StatusSnapshot, attempt int) bool {
	// Never terminate on an empty snapshot.
	if len(snap) == 0 {
		return false
	}
	if !s.AllFinished() {
		return false
	}

	waitedLongEnough := attempt >= absenceGraceAttempts
	if !s.AllRequestedAppeared() && !waitedLongEnough {
		return false
	}

	triedEnoughForScreenshots := attempt >= artifactGraceAttempts
	return s.AllCompleteHaveURLs() || triedEnoughForScreenshots
}

func logTransitions(log *logger.Logger, s *Session, snap ports.StatusSnapshot, attempt int) {
	for _, clientID := range s.Tracked() {
		if _, ok := snap[clientID]; !ok {
			continue
		}
		outcome := s.Outcome(clientID)
		log.Debug("client status",
			"attempt", attempt,
			"client", clientID,
			"outcome", outcome.Kind.String(),
		)
	}
}

// sleepContext waits for d or until ctx is done.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
