package runner

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"mailproof/internal/adapters/storage/localfs"
	"mailproof/internal/config"
	"mailproof/internal/pkg/errors"
	"mailproof/internal/ports"
	"mailproof/internal/preview"
)

// fakeProvider completes every requested client on the first status fetch.
type fakeProvider struct {
	submitErr error
	gotSubmit ports.SubmitRequest
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) SubmitJob(ctx context.Context, req ports.SubmitRequest) (ports.JobHandle, error) {
	if f.submitErr != nil {
		return ports.JobHandle{}, f.submitErr
	}
	f.gotSubmit = req
	return ports.JobHandle{ID: "job-1", SubmittedAt: time.Now().UTC()}, nil
}

func (f *fakeProvider) FetchStatus(ctx context.Context, job ports.JobHandle) (ports.StatusSnapshot, error) {
	snap := make(ports.StatusSnapshot, len(f.gotSubmit.Clients))
	for _, c := range f.gotSubmit.Clients {
		snap[c] = ports.ClientStatus{
			State:         ports.StateComplete,
			ScreenshotURL: "https://img/" + c + ".png",
		}
	}
	return snap, nil
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()

	contentFile := filepath.Join(t.TempDir(), "email.html")
	if err := os.WriteFile(contentFile, []byte("<html><body>hi</body></html>"), 0o644); err != nil {
		t.Fatal(err)
	}

	return &config.Config{
		Service:       "fake",
		APIKey:        "k",
		Password:      "p",
		Task:          "Welcome Email",
		Clients:       []string{"gmail", "outlook"},
		ContentFile:   contentFile,
		Subject:       "Welcome Email",
		MaxAttempts:   5,
		WaitSeconds:   1,
		Separator:     "-",
		ResultsPrefix: "previews",
	}
}

func TestRunEndToEnd(t *testing.T) {
	provider := &fakeProvider{}
	store := localfs.New(t.TempDir())
	cfg := testConfig(t)

	result, err := Run(context.Background(), Deps{
		Provider: provider,
		Store:    store,
		Cfg:      cfg,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if result.Key != "welcome-email" {
		t.Errorf("Key = %q, want welcome-email", result.Key)
	}
	if result.JobID != "job-1" {
		t.Errorf("JobID = %q", result.JobID)
	}
	if result.RunID == "" {
		t.Error("RunID is empty")
	}
	if result.Attempts != 1 {
		t.Errorf("Attempts = %d, want 1", result.Attempts)
	}
	if len(result.Descriptors) != 2 {
		t.Errorf("Descriptors = %+v, want 2 entries", result.Descriptors)
	}
	if result.Audit.Completed != 2 || result.Audit.Failed != 0 {
		t.Errorf("audit counts = %d/%d", result.Audit.Completed, result.Audit.Failed)
	}

	if provider.gotSubmit.Subject != "Welcome Email" {
		t.Errorf("submitted subject = %q", provider.gotSubmit.Subject)
	}

	// The preview file must exist and hold the descriptor list.
	rc, _, _, err := store.GetObject(context.Background(), result.Artifacts.PreviewKey)
	if err != nil {
		t.Fatalf("preview file missing: %v", err)
	}
	defer rc.Close()
	body, _ := io.ReadAll(rc)

	var descriptors []preview.Descriptor
	if err := json.Unmarshal(body, &descriptors); err != nil {
		t.Fatalf("preview file is not valid JSON: %v", err)
	}
	if len(descriptors) != 2 {
		t.Errorf("persisted descriptors = %+v", descriptors)
	}
}

func TestRunRejectsUnsanitizableTask(t *testing.T) {
	cfg := testConfig(t)
	cfg.Task = "!!!"

	_, err := Run(context.Background(), Deps{
		Provider: &fakeProvider{},
		Store:    localfs.New(t.TempDir()),
		Cfg:      cfg,
	})
	if !errors.IsCode(err, errors.CodeValidation) {
		t.Errorf("err = %v, want validation error", err)
	}
}

func TestRunMissingContentFile(t *testing.T) {
	cfg := testConfig(t)
	cfg.ContentFile = filepath.Join(t.TempDir(), "nope.html")

	_, err := Run(context.Background(), Deps{
		Provider: &fakeProvider{},
		Store:    localfs.New(t.TempDir()),
		Cfg:      cfg,
	})
	if !errors.IsCode(err, errors.CodeValidation) {
		t.Errorf("err = %v, want validation error", err)
	}
}

func TestRunSubmitFailureSurfaces(t *testing.T) {
	cfg := testConfig(t)

	_, err := Run(context.Background(), Deps{
		Provider: &fakeProvider{submitErr: errors.Unauthorized("bad credentials")},
		Store:    localfs.New(t.TempDir()),
		Cfg:      cfg,
	})
	if !errors.IsUnauthorized(err) {
		t.Errorf("err = %v, want unauthorized to survive wrapping", err)
	}
}
