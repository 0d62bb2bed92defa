package ports

import (
	"context"
	"time"
)

// ClientState is the normalized per-client status reported by a rendering
// backend. Each provider adapter translates its own status vocabulary into
// these values.
type ClientState string

const (
	StatePending    ClientState = "pending"
	StateProcessing ClientState = "processing"
	StateComplete   ClientState = "complete"
	StateFailed     ClientState = "failed"
	StateBounced    ClientState = "bounced"
)

// Terminal reports whether the backend will not change this state further.
func (s ClientState) Terminal() bool {
	return s == StateComplete || s == StateFailed || s == StateBounced
}

// TerminalSuccess reports a successful terminal state.
func (s ClientState) TerminalSuccess() bool {
	return s == StateComplete
}

// TerminalFailure reports a failed or bounced terminal state.
func (s ClientState) TerminalFailure() bool {
	return s == StateFailed || s == StateBounced
}

// ClientStatus is the backend's current knowledge of one client.
// ScreenshotURL may lag State: backends routinely report Complete before
// the artifact is retrievable.
type ClientStatus struct {
	State         ClientState
	ScreenshotURL string
}

// StatusSnapshot maps client identifiers to their current status. It may
// be empty if the backend has not started processing the job yet.
type StatusSnapshot map[string]ClientStatus

// SubmitRequest carries the content and desired clients for one
// rendering job.
type SubmitRequest struct {
	Subject string
	HTML    string
	Clients []string
}

// JobHandle is the opaque identifier the backend assigns to a submitted
// job, plus the submission time for audit records.
type JobHandle struct {
	ID          string
	SubmittedAt time.Time
}

// RenderingProvider is the provider-agnostic contract over a remote
// rendering service. Implementations: emailonacid, litmus.
//
// FetchStatus reports transient network or backend errors with the
// UNAVAILABLE or TIMEOUT error codes ("no new information this attempt");
// authentication failures use UNAUTHORIZED and abort polling.
type RenderingProvider interface {
	Name() string

	SubmitJob(ctx context.Context, req SubmitRequest) (JobHandle, error)
	FetchStatus(ctx context.Context, job JobHandle) (StatusSnapshot, error)
}
