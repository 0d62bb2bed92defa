package preview

import (
	"reflect"
	"testing"

	"mailproof/internal/poller"
	"mailproof/internal/ports"
)

func finishedSession(t *testing.T, requested []string, snap ports.StatusSnapshot) *poller.Session {
	t.Helper()
	s := poller.NewSession(requested)
	s.Apply(snap)
	return s
}

func TestMaterializePartialSuccess(t *testing.T) {
	s := finishedSession(t, []string{"gmail", "outlook_2019", "yahoo"}, ports.StatusSnapshot{
		"gmail":        {State: ports.StateComplete, ScreenshotURL: "https://img/gmail.png"},
		"outlook_2019": {State: ports.StateFailed},
	})

	descriptors, records := Materialize(s)

	wantDescriptors := []Descriptor{
		{Name: "Gmail", URL: "https://img/gmail.png", Client: "gmail"},
	}
	if !reflect.DeepEqual(descriptors, wantDescriptors) {
		t.Errorf("descriptors = %+v, want %+v", descriptors, wantDescriptors)
	}

	if len(records) != 3 {
		t.Fatalf("records = %d, want 3 (audit covers every tracked client)", len(records))
	}

	byClient := map[string]ClientRecord{}
	for _, r := range records {
		byClient[r.Client] = r
	}
	if got := byClient["gmail"]; got.Status != "complete" || got.URL == "" {
		t.Errorf("gmail record = %+v", got)
	}
	if got := byClient["outlook_2019"]; got.Status != "failed" || got.Reason != "failed" {
		t.Errorf("outlook_2019 record = %+v", got)
	}
	// yahoo never settled; its record reflects whatever the session holds.
	if got := byClient["yahoo"]; got.Status != "pending" {
		t.Errorf("yahoo record = %+v", got)
	}
}

func TestMaterializePreservesOrder(t *testing.T) {
	snap := ports.StatusSnapshot{
		"yahoo":   {State: ports.StateComplete, ScreenshotURL: "https://img/y.png"},
		"gmail":   {State: ports.StateComplete, ScreenshotURL: "https://img/g.png"},
		"outlook": {State: ports.StateComplete, ScreenshotURL: "https://img/o.png"},
	}
	s := finishedSession(t, []string{"yahoo", "gmail", "outlook"}, snap)

	descriptors, _ := Materialize(s)

	var order []string
	for _, d := range descriptors {
		order = append(order, d.Client)
	}
	want := []string{"yahoo", "gmail", "outlook"}
	if !reflect.DeepEqual(order, want) {
		t.Errorf("descriptor order = %v, want request order %v", order, want)
	}
}

func TestMaterializeEmptySession(t *testing.T) {
	s := poller.NewSession([]string{"gmail"})

	descriptors, records := Materialize(s)
	if len(descriptors) != 0 {
		t.Errorf("descriptors = %+v, want none", descriptors)
	}
	if len(records) != 1 {
		t.Errorf("records = %d, want 1", len(records))
	}
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"gmail", "Gmail"},
		{"outlook_2019", "Outlook 2019"},
		{"iphone-15-pro", "Iphone 15 Pro"},
		{"apple_mail-16", "Apple Mail 16"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := DisplayName(tt.in); got != tt.want {
				t.Errorf("DisplayName(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
