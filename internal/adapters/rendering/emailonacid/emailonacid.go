// Package emailonacid implements ports.RenderingProvider against the
// Email on Acid v5 API.
package emailonacid

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

const defaultBaseURL = "https://api.emailonacid.com/v5"

// Client talks to the Email on Acid email-testing API. Authentication is
// HTTP Basic with the API key as username and the account password as
// password.
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

func (c *Client) Name() string { return "emailonacid" }

type submitPayload struct {
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
	Clients []string `json:"clients,omitempty"`
}

type submitResponse struct {
	ID string `json:"id"`
}

func (c *Client) SubmitJob(ctx context.Context, req ports.SubmitRequest) (ports.JobHandle, error) {
	body, err := json.Marshal(submitPayload{
		Subject: req.Subject,
		HTML:    req.HTML,
		Clients: req.Clients,
	})
	if err != nil {
		return ports.JobHandle{}, errors.Wrap(err, "emailonacid.submit", "failed to encode payload")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/email/tests", bytes.NewReader(body))
	if err != nil {
		return ports.JobHandle{}, errors.Wrap(err, "emailonacid.submit", "failed to build request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.SetBasicAuth(c.apiKey, c.password)

	res, err := c.client.Do(httpReq)
	if err != nil {
		return ports.JobHandle{}, errors.WrapWithCode(err, errors.CodeUnavailable, "emailonacid.submit", "request failed")
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusUnauthorized || res.StatusCode == http.StatusForbidden {
		return ports.JobHandle{}, errors.Unauthorized(fmt.Sprintf("emailonacid rejected credentials (http %d)", res.StatusCode))
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		excerpt, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return ports.JobHandle{}, errors.Newf(errors.CodeBadRequest,
			"emailonacid rejected submission: http %d: %s", res.StatusCode, strings.TrimSpace(string(excerpt)))
	}

	var sub submitResponse
	if err := json.NewDecoder(res.Body).Decode(&sub); err != nil {
		return ports.JobHandle{}, errors.WrapWithCode(err, errors.CodeBadRequest, "emailonacid.submit", "invalid response body")
	}
	if sub.ID == "" {
		return ports.JobHandle{}, errors.New(errors.CodeBadRequest, "emailonacid returned no job id")
	}

	return ports.JobHandle{ID: sub.ID, SubmittedAt: time.Now().UTC()}, nil
}

type clientResult struct {
	Status      string `json:"status"`
	Screenshots struct {
		Default string `json:"default"`
	} `json:"screenshots"`
}

func (c *Client) FetchStatus(ctx context.Context, job ports.JobHandle) (ports.StatusSnapshot, error) {
	url := fmt.Sprintf("%s/email/tests/%s/results", c.baseURL, job.ID)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "emailonacid.status", "failed to build request")
	}
	httpReq.SetBasicAuth(c.apiKey, c.password)

	res, err := c.client.Do(httpReq)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeUnavailable, "emailonacid.status", "request failed")
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusUnauthorized || res.StatusCode == http.StatusForbidden {
		return nil, errors.Unauthorized(fmt.Sprintf("emailonacid rejected credentials (http %d)", res.StatusCode))
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, errors.Newf(errors.CodeUnavailable, "emailonacid status fetch: http %d", res.StatusCode)
	}

	var raw map[string]clientResult
	if err := json.NewDecoder(res.Body).Decode(&raw); err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeUnavailable, "emailonacid.status", "invalid response body")
	}

	snap := make(ports.StatusSnapshot, len(raw))
	for clientID, r := range raw {
		snap[clientID] = ports.ClientStatus{
			State:         normalizeState(r.Status),
			ScreenshotURL: r.Screenshots.Default,
		}
	}
	return snap, nil
}

func normalizeState(raw string) ports.ClientState {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "complete", "completed":
		return ports.StateComplete
	case "failed", "error":
		return ports.StateFailed
	case "bounced":
		return ports.StateBounced
	case "processing":
		return ports.StateProcessing
	default:
		return ports.StatePending
	}
}
