package poller

import (
	"reflect"
	"testing"

	"mailproof/internal/ports"
)

func TestApplyTransitions(t *testing.T) {
	tests := []struct {
		name string
		snap ports.StatusSnapshot
		want Outcome
	}{
		{
			name: "complete with url",
			snap: ports.StatusSnapshot{
				"a": {State: ports.StateComplete, ScreenshotURL: "https://img/a.png"},
			},
			want: Outcome{Kind: OutcomeComplete, URL: "https://img/a.png"},
		},
		{
			name: "complete without url",
			snap: ports.StatusSnapshot{
				"a": {State: ports.StateComplete},
			},
			want: Outcome{Kind: OutcomeAwaitingArtifact},
		},
		{
			name: "failed",
			snap: ports.StatusSnapshot{
				"a": {State: ports.StateFailed},
			},
			want: Outcome{Kind: OutcomeFailed, Reason: "failed"},
		},
		{
			name: "bounced",
			snap: ports.StatusSnapshot{
				"a": {State: ports.StateBounced},
			},
			want: Outcome{Kind: OutcomeFailed, Reason: "bounced"},
		},
		{
			name: "processing stays pending",
			snap: ports.StatusSnapshot{
				"a": {State: ports.StateProcessing},
			},
			want: Outcome{Kind: OutcomePending},
		},
		{
			name: "absent stays pending",
			snap: ports.StatusSnapshot{},
			want: Outcome{Kind: OutcomePending},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSession([]string{"a"})
			s.Apply(tt.snap)

			if got := s.Outcome("a"); got != tt.want {
				t.Errorf("outcome = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestApplyIsMonotonic(t *testing.T) {
	s := NewSession([]string{"a"})

	s.Apply(ports.StatusSnapshot{
		"a": {State: ports.StateComplete, ScreenshotURL: "https://img/first.png"},
	})

	// Later reports, even contradictory ones, must not retract the outcome.
	s.Apply(ports.StatusSnapshot{
		"a": {State: ports.StateComplete, ScreenshotURL: "https://img/other.png"},
	})
	s.Apply(ports.StatusSnapshot{
		"a": {State: ports.StateFailed},
	})

	got := s.Outcome("a")
	if got.Kind != OutcomeComplete || got.URL != "https://img/first.png" {
		t.Errorf("settled outcome changed: %+v", got)
	}
}

func TestApplyFailedIsOneWay(t *testing.T) {
	s := NewSession([]string{"a"})

	s.Apply(ports.StatusSnapshot{"a": {State: ports.StateFailed}})
	s.Apply(ports.StatusSnapshot{
		"a": {State: ports.StateComplete, ScreenshotURL: "https://img/late.png"},
	})

	if got := s.Outcome("a"); got.Kind != OutcomeFailed {
		t.Errorf("failed outcome was retracted: %+v", got)
	}
}

func TestApplyIdempotent(t *testing.T) {
	snap := ports.StatusSnapshot{
		"a": {State: ports.StateComplete, ScreenshotURL: "https://img/a.png"},
		"b": {State: ports.StateProcessing},
		"c": {State: ports.StateFailed},
	}

	s := NewSession([]string{"a", "b", "c"})
	s.Apply(snap)

	before := map[string]Outcome{}
	for _, c := range s.Tracked() {
		before[c] = s.Outcome(c)
	}

	s.Apply(snap)

	after := map[string]Outcome{}
	for _, c := range s.Tracked() {
		after[c] = s.Outcome(c)
	}

	if !reflect.DeepEqual(before, after) {
		t.Errorf("re-applying the same snapshot changed outcomes:\nbefore: %+v\nafter:  %+v", before, after)
	}
}

func TestAwaitingArtifactUpgrades(t *testing.T) {
	s := NewSession([]string{"a"})

	s.Apply(ports.StatusSnapshot{"a": {State: ports.StateComplete}})
	if got := s.Outcome("a"); got.Kind != OutcomeAwaitingArtifact {
		t.Fatalf("expected awaiting_artifact, got %+v", got)
	}

	s.Apply(ports.StatusSnapshot{
		"a": {State: ports.StateComplete, ScreenshotURL: "https://img/a.png"},
	})
	got := s.Outcome("a")
	if got.Kind != OutcomeComplete || got.URL != "https://img/a.png" {
		t.Errorf("expected complete with url, got %+v", got)
	}
}

func TestAdoptsSnapshotClientsWhenRequestedEmpty(t *testing.T) {
	s := NewSession(nil)

	s.Apply(ports.StatusSnapshot{
		"y": {State: ports.StateComplete, ScreenshotURL: "https://img/y.png"},
		"x": {State: ports.StateComplete, ScreenshotURL: "https://img/x.png"},
	})

	want := []string{"x", "y"}
	if got := s.Tracked(); !reflect.DeepEqual(got, want) {
		t.Errorf("tracked = %v, want %v (sorted)", got, want)
	}
	if !s.AllRequestedAppeared() {
		t.Error("adopted clients should count as appeared")
	}
}

func TestTerminationPredicates(t *testing.T) {
	s := NewSession([]string{"a", "b"})

	s.Apply(ports.StatusSnapshot{
		"a": {State: ports.StateComplete, ScreenshotURL: "https://img/a.png"},
	})

	if !s.AllFinished() {
		t.Error("AllFinished should be true: every seen client is terminal")
	}
	if s.AllRequestedAppeared() {
		t.Error("AllRequestedAppeared should be false: b never appeared")
	}
	if !s.AllCompleteHaveURLs() {
		t.Error("AllCompleteHaveURLs should be true: a has a url")
	}

	s.Apply(ports.StatusSnapshot{
		"a": {State: ports.StateComplete, ScreenshotURL: "https://img/a.png"},
		"b": {State: ports.StateProcessing},
	})

	if s.AllFinished() {
		t.Error("AllFinished should be false: b is processing")
	}
	if !s.AllRequestedAppeared() {
		t.Error("AllRequestedAppeared should be true: both appeared")
	}
}

func TestAllFinishedCountsUnrequestedClients(t *testing.T) {
	s := NewSession([]string{"a"})

	// The backend also reports a client nobody asked for; its non-terminal
	// state keeps the job unfinished per the backend's own status field.
	s.Apply(ports.StatusSnapshot{
		"a":     {State: ports.StateComplete, ScreenshotURL: "https://img/a.png"},
		"extra": {State: ports.StateProcessing},
	})

	if s.AllFinished() {
		t.Error("AllFinished should consider every client the backend reported")
	}
}

func TestFinalizeClassifiesLeftovers(t *testing.T) {
	s := NewSession([]string{"done", "stuck", "ghost", "noshot"})

	s.Apply(ports.StatusSnapshot{
		"done":   {State: ports.StateComplete, ScreenshotURL: "https://img/done.png"},
		"stuck":  {State: ports.StateProcessing},
		"noshot": {State: ports.StateComplete},
	})
	s.finalize()

	tests := []struct {
		client string
		kind   OutcomeKind
		reason string
	}{
		{"done", OutcomeComplete, ""},
		{"stuck", OutcomeFailed, "did not finish within the attempt budget"},
		{"ghost", OutcomeFailed, "never appeared in any status report"},
		{"noshot", OutcomeFailed, "completed but no screenshot was captured"},
	}

	for _, tt := range tests {
		t.Run(tt.client, func(t *testing.T) {
			got := s.Outcome(tt.client)
			if got.Kind != tt.kind {
				t.Errorf("kind = %s, want %s", got.Kind, tt.kind)
			}
			if got.Reason != tt.reason {
				t.Errorf("reason = %q, want %q", got.Reason, tt.reason)
			}
		})
	}
}
