// Package preview converts a finished polling session into the artifacts
// consumed by the comparison stage: an ordered list of preview
// descriptors plus a full audit record for diagnostics.
package preview

import (
	"strings"
	"time"

	"mailproof/internal/poller"
)

// Descriptor pairs a client with its rendered screenshot location. The
// comparison stage reads these and asserts pixel similarity against a
// baseline keyed by Client.
type Descriptor struct {
	Name   string `json:"name"`
	URL    string `json:"url"`
	Client string `json:"client"`
}

// ClientRecord is the audit view of one client, including the ones that
// failed or never appeared.
type ClientRecord struct {
	Client string `json:"client"`
	Status string `json:"status"`
	URL    string `json:"url,omitempty"`
	Reason string `json:"reason,omitempty"`
}

// Audit is the persisted diagnostic snapshot of one run.
type Audit struct {
	RunID      string         `json:"run_id"`
	Task       string         `json:"task"`
	JobID      string         `json:"job_id"`
	Service    string         `json:"service"`
	Attempts   int            `json:"attempts"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
	Completed  int            `json:"completed"`
	Failed     int            `json:"failed"`
	Clients    []ClientRecord `json:"clients"`
}

// Materialize filters the session down to completed clients with captured
// URLs and builds the full per-client audit records. The descriptor list
// preserves the session's client order. Pure transformation, no I/O.
func Materialize(s *poller.Session) ([]Descriptor, []ClientRecord) {
	tracked := s.Tracked()

	descriptors := make([]Descriptor, 0, len(tracked))
	records := make([]ClientRecord, 0, len(tracked))

	for _, clientID := range tracked {
		outcome := s.Outcome(clientID)

		record := ClientRecord{
			Client: clientID,
			Status: outcome.Kind.String(),
			URL:    outcome.URL,
			Reason: outcome.Reason,
		}
		records = append(records, record)

		if outcome.Kind == poller.OutcomeComplete {
			descriptors = append(descriptors, Descriptor{
				Name:   DisplayName(clientID),
				URL:    outcome.URL,
				Client: clientID,
			})
		}
	}

	return descriptors, records
}

// DisplayName derives a human-readable label from a client identifier:
// "outlook_2019" becomes "Outlook 2019".
func DisplayName(clientID string) string {
	parts := strings.FieldsFunc(clientID, func(r rune) bool {
		return r == '_' || r == '-'
	})

	for i, p := range parts {
		if p == "" {
			continue
		}
		parts[i] = strings.ToUpper(p[:1]) + p[1:]
	}
	return strings.Join(parts, " ")
}
