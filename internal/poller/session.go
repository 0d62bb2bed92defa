package poller

import (
	"sort"

	"mailproof/internal/ports"
)

// OutcomeKind enumerates the per-client outcome variants. Complete and
// Failed are terminal for the session: once recorded they never change.
type OutcomeKind int

const (
	// OutcomePending means no usable data has arrived for the client.
	OutcomePending OutcomeKind = iota
	// OutcomeAwaitingArtifact means the backend reported terminal success
	// but the screenshot is not yet retrievable.
	OutcomeAwaitingArtifact
	// OutcomeComplete means terminal success with a captured artifact URL.
	OutcomeComplete
	// OutcomeFailed means a terminal failure, a bounce, or a client that
	// never produced a usable artifact within the attempt budget.
	OutcomeFailed
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeAwaitingArtifact:
		return "awaiting_artifact"
	case OutcomeComplete:
		return "complete"
	case OutcomeFailed:
		return "failed"
	default:
		return "pending"
	}
}

// Outcome is the tagged per-client result. URL is set only for
// OutcomeComplete; Reason only for OutcomeFailed.
type Outcome struct {
	Kind   OutcomeKind
	URL    string
	Reason string
}

// Settled reports whether the outcome is immutable for the rest of the
// session.
func (o Outcome) Settled() bool {
	return o.Kind == OutcomeComplete || o.Kind == OutcomeFailed
}

// Session owns the per-client outcome map for one rendering job. It is
// mutated only by the poller: the attempt counter strictly increases and
// settled outcomes are never rewritten.
type Session struct {
	requested []string
	tracked   []string
	outcomes  map[string]Outcome
	// seen holds the latest backend-reported state for every client that
	// has appeared in any snapshot, requested or not. Termination checks
	// use the backend's own status field, not the local outcome map.
	seen    map[string]ports.ClientState
	attempt int
}

// NewSession creates a session for the requested clients. When requested
// is empty the session tracks whichever clients the backend names in its
// snapshots.
func NewSession(requested []string) *Session {
	tracked := make([]string, len(requested))
	copy(tracked, requested)

	return &Session{
		requested: requested,
		tracked:   tracked,
		outcomes:  make(map[string]Outcome),
		seen:      make(map[string]ports.ClientState),
	}
}

// Apply folds one status snapshot into the session. Transitions are
// one-way: a settled client ignores all later reports, so feeding the
// same snapshot twice is a no-op.
func (s *Session) Apply(snap ports.StatusSnapshot) {
	if len(s.requested) == 0 {
		s.adoptUnknown(snap)
	}

	for clientID, status := range snap {
		s.seen[clientID] = status.State
	}

	for _, clientID := range s.tracked {
		status, ok := snap[clientID]
		if !ok {
			continue
		}

		current := s.outcomes[clientID]
		if current.Settled() {
			continue
		}

		switch {
		case status.State.TerminalSuccess():
			if status.ScreenshotURL != "" {
				s.outcomes[clientID] = Outcome{Kind: OutcomeComplete, URL: status.ScreenshotURL}
			} else {
				s.outcomes[clientID] = Outcome{Kind: OutcomeAwaitingArtifact}
			}
		case status.State.TerminalFailure():
			s.outcomes[clientID] = Outcome{Kind: OutcomeFailed, Reason: string(status.State)}
		}
	}
}

// adoptUnknown adds snapshot clients the session is not yet tracking,
// in sorted order for deterministic output.
func (s *Session) adoptUnknown(snap ports.StatusSnapshot) {
	known := make(map[string]bool, len(s.tracked))
	for _, c := range s.tracked {
		known[c] = true
	}

	var added []string
	for clientID := range snap {
		if !known[clientID] {
			added = append(added, clientID)
		}
	}
	sort.Strings(added)
	s.tracked = append(s.tracked, added...)
}

// AllFinished reports whether every client that has appeared in any
// snapshot so far is in a terminal backend status.
func (s *Session) AllFinished() bool {
	for _, state := range s.seen {
		if !state.Terminal() {
			return false
		}
	}
	return true
}

// AllRequestedAppeared reports whether every tracked client has shown up
// in at least one snapshot.
func (s *Session) AllRequestedAppeared() bool {
	for _, clientID := range s.tracked {
		if _, ok := s.seen[clientID]; !ok {
			return false
		}
	}
	return true
}

// AllCompleteHaveURLs reports whether every tracked terminal-success
// client has a captured artifact URL.
func (s *Session) AllCompleteHaveURLs() bool {
	for _, clientID := range s.tracked {
		if state, ok := s.seen[clientID]; ok && state.TerminalSuccess() {
			if s.outcomes[clientID].Kind != OutcomeComplete {
				return false
			}
		}
	}
	return true
}

// Attempt returns the last attempt number the poller ran.
func (s *Session) Attempt() int {
	return s.attempt
}

// Tracked returns the clients the session accounts for, in request order
// (discovered clients follow, sorted).
func (s *Session) Tracked() []string {
	out := make([]string, len(s.tracked))
	copy(out, s.tracked)
	return out
}

// Outcome returns the recorded outcome for one client.
func (s *Session) Outcome(clientID string) Outcome {
	return s.outcomes[clientID]
}

// finalize classifies every unsettled client as Failed once polling has
// stopped. No successful outcome is ever retracted.
func (s *Session) finalize() {
	for _, clientID := range s.tracked {
		current := s.outcomes[clientID]
		if current.Settled() {
			continue
		}

		reason := "never appeared in any status report"
		if state, ok := s.seen[clientID]; ok {
			reason = "did not finish within the attempt budget"
			if current.Kind == OutcomeAwaitingArtifact || state.TerminalSuccess() {
				reason = "completed but no screenshot was captured"
			}
		}
		s.outcomes[clientID] = Outcome{Kind: OutcomeFailed, Reason: reason}
	}
}
