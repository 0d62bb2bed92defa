// Package litmus implements ports.RenderingProvider against the Litmus
// customer API.
package litmus

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"mailproof/internal/pkg/errors"
	"mailproof/internal/ports"
)

const defaultBaseURL = "https://api.litmus.com/v1"

// Client talks to the Litmus email-testing API using HTTP Basic auth
// (API key as username, account password as password).
type Client struct {
	baseURL  string
	apiKey   string
	password string
	client   *http.Client
}

// New creates a client. baseURL may be empty to use the production API.
func New(baseURL, apiKey, password string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		apiKey:   apiKey,
		password: password,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) Name() string { return "litmus" }

type submitPayload struct {
	Email struct {
		Subject  string   `json:"subject"`
		BodyHTML string   `json:"body_html"`
		Clients  []string `json:"clients,omitempty"`
	} `json:"email"`
}

func (c *Client) SubmitJob(ctx context.Context, req ports.SubmitRequest) (ports.JobHandle, error) {
	var payload submitPayload
	payload.Email.Subject = req.Subject
	payload.Email.BodyHTML = req.HTML
	payload.Email.Clients = req.Clients

	body, err := json.Marshal(payload)
	if err != nil {
		return ports.JobHandle{}, errors.Wrap(err, "litmus.submit", "failed to encode payload")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/emails.json", bytes.NewReader(body))
	if err != nil {
		return ports.JobHandle{}, errors.Wrap(err, "litmus.submit", "failed to build request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.SetBasicAuth(c.apiKey, c.password)

	res, err := c.client.Do(httpReq)
	if err != nil {
		return ports.JobHandle{}, errors.WrapWithCode(err, errors.CodeUnavailable, "litmus.submit", "request failed")
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusUnauthorized || res.StatusCode == http.StatusForbidden {
		return ports.JobHandle{}, errors.Unauthorized(fmt.Sprintf("litmus rejected credentials (http %d)", res.StatusCode))
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		excerpt, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return ports.JobHandle{}, errors.Newf(errors.CodeBadRequest,
			"litmus rejected submission: http %d: %s", res.StatusCode, strings.TrimSpace(string(excerpt)))
	}

	var sub struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(res.Body).Decode(&sub); err != nil {
		return ports.JobHandle{}, errors.WrapWithCode(err, errors.CodeBadRequest, "litmus.submit", "invalid response body")
	}
	if sub.ID == "" {
		return ports.JobHandle{}, errors.New(errors.CodeBadRequest, "litmus returned no job id")
	}

	return ports.JobHandle{ID: sub.ID, SubmittedAt: time.Now().UTC()}, nil
}

type previewEntry struct {
	Client string `json:"client"`
	Status string `json:"status"`
	Images struct {
		Full string `json:"full"`
	} `json:"images"`
}

func (c *Client) FetchStatus(ctx context.Context, job ports.JobHandle) (ports.StatusSnapshot, error) {
	url := fmt.Sprintf("%s/emails/%s/previews.json", c.baseURL, job.ID)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "litmus.status", "failed to build request")
	}
	httpReq.SetBasicAuth(c.apiKey, c.password)

	res, err := c.client.Do(httpReq)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeUnavailable, "litmus.status", "request failed")
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusUnauthorized || res.StatusCode == http.StatusForbidden {
		return nil, errors.Unauthorized(fmt.Sprintf("litmus rejected credentials (http %d)", res.StatusCode))
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, errors.Newf(errors.CodeUnavailable, "litmus status fetch: http %d", res.StatusCode)
	}

	var raw struct {
		Previews []previewEntry `json:"previews"`
	}
	if err := json.NewDecoder(res.Body).Decode(&raw); err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeUnavailable, "litmus.status", "invalid response body")
	}

	snap := make(ports.StatusSnapshot, len(raw.Previews))
	for _, p := range raw.Previews {
		if p.Client == "" {
			continue
		}
		snap[p.Client] = ports.ClientStatus{
			State:         normalizeState(p.Status),
			ScreenshotURL: p.Images.Full,
		}
	}
	return snap, nil
}

func normalizeState(raw string) ports.ClientState {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "complete", "completed":
		return ports.StateComplete
	case "error", "failed":
		return ports.StateFailed
	case "bounced":
		return ports.StateBounced
	case "processing", "building":
		return ports.StateProcessing
	default:
		return ports.StatePending
	}
}
