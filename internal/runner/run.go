// Package runner orchestrates one coordinator run: sanitize the task,
// submit the rendering job, poll until the convergence engine stops, and
// materialize the result artifacts.
package runner

import (
	"context"
	"os"
	"time"

	"github.com/google/uuid"

	"mailproof/internal/config"
	"mailproof/internal/pkg/errors"
	"mailproof/internal/pkg/logger"
	"mailproof/internal/poller"
	"mailproof/internal/ports"
	"mailproof/internal/preview"
	"mailproof/internal/sanitize"
)

// submitTimeout caps the submission request.
const submitTimeout = 60 * time.Second

// Deps carries the runner's collaborators.
type Deps struct {
	Provider ports.RenderingProvider
	Store    ports.StorageProvider
	Cfg      *config.Config
	Log      *logger.Logger
}

// Result summarizes a completed run. Per-client failures are part of a
// successful Result; only run-level fatal errors surface as errors.
type Result struct {
	RunID       string
	Key         string
	JobID       string
	Attempts    int
	Descriptors []preview.Descriptor
	Audit       preview.Audit
	Artifacts   preview.WriteResult
}

// Run executes one coordinator run end to end.
func Run(ctx context.Context, d Deps) (*Result, error) {
	log := d.Log
	if log == nil {
		log = logger.NewDefault()
	}
	log = log.WithComponent("runner")

	runID := uuid.NewString()
	ctx = logger.ContextWithRunID(ctx, runID)
	log = log.WithRunID(runID)

	key := sanitize.KeyWith(d.Cfg.Task, rune(d.Cfg.Separator[0]))
	if key == "" {
		return nil, errors.Validationf("task %q sanitizes to an empty key", d.Cfg.Task)
	}
	log.Info("run starting",
		"task", d.Cfg.Task,
		"key", key,
		"service", d.Provider.Name(),
		"clients", len(d.Cfg.Clients),
	)

	html, err := os.ReadFile(d.Cfg.ContentFile)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeValidation, "runner.content",
			"content file unreachable: "+d.Cfg.ContentFile)
	}

	startedAt := time.Now().UTC()

	submitCtx, cancel := context.WithTimeout(ctx, submitTimeout)
	job, err := d.Provider.SubmitJob(submitCtx, ports.SubmitRequest{
		Subject: d.Cfg.Subject,
		HTML:    string(html),
		Clients: d.Cfg.Clients,
	})
	cancel()
	if err != nil {
		return nil, errors.Wrap(err, "runner.submit", "rendering job submission failed")
	}

	log = log.WithJobID(job.ID)
	ctx = logger.ContextWithJobID(ctx, job.ID)
	log.Info("job submitted")

	p := poller.New(d.Provider, poller.Config{
		MaxAttempts: d.Cfg.MaxAttempts,
		Delay:       time.Duration(d.Cfg.WaitSeconds) * time.Second,
	}, log)

	session, err := p.Poll(ctx, job, d.Cfg.Clients)
	if err != nil {
		return nil, errors.Wrap(err, "runner.poll", "polling aborted")
	}

	descriptors, records := preview.Materialize(session)

	completed := len(descriptors)
	failed := len(records) - completed

	audit := preview.Audit{
		RunID:      runID,
		Task:       d.Cfg.Task,
		JobID:      job.ID,
		Service:    d.Provider.Name(),
		Attempts:   session.Attempt(),
		StartedAt:  startedAt,
		FinishedAt: time.Now().UTC(),
		Completed:  completed,
		Failed:     failed,
		Clients:    records,
	}

	writer := preview.NewWriter(d.Store, d.Cfg.ResultsPrefix, log)
	artifacts, err := writer.Write(ctx, key, descriptors, audit)
	if err != nil {
		return nil, errors.Wrap(err, "runner.write", "failed to persist run artifacts")
	}

	log.Info("run completed",
		"attempts", session.Attempt(),
		"completed", completed,
		"failed", failed,
		"duration_ms", time.Since(startedAt).Milliseconds(),
	)

	return &Result{
		RunID:       runID,
		Key:         key,
		JobID:       job.ID,
		Attempts:    session.Attempt(),
		Descriptors: descriptors,
		Audit:       audit,
		Artifacts:   artifacts,
	}, nil
}
