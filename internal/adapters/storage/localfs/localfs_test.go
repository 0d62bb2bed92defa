package localfs

import (
	"bytes"
	"context"
	"io"
	"testing"

	"mailproof/internal/ports"
)

func put(t *testing.T, l *LocalFS, key, body string) {
	t.Helper()
	out, err := l.PutObject(context.Background(), ports.PutObjectInput{
		ObjectKey:   key,
		ContentType: "application/json",
		Reader:      bytes.NewReader([]byte(body)),
		Size:        int64(len(body)),
	})
	if err != nil {
		t.Fatalf("PutObject(%s): %v", key, err)
	}
	if out.ObjectKey != key || out.Size != int64(len(body)) {
		t.Errorf("PutObject output = %+v", out)
	}
}

func TestPutGetRoundTrip(t *testing.T) {
	l := New(t.TempDir())
	put(t, l, "previews/welcome-email.json", `{"a":1}`)

	rc, contentType, size, err := l.GetObject(context.Background(), "previews/welcome-email.json")
	if err != nil {
		t.Fatalf("GetObject: %v", err)
	}
	defer rc.Close()

	body, _ := io.ReadAll(rc)
	if string(body) != `{"a":1}` {
		t.Errorf("body = %q", body)
	}
	if size != int64(len(body)) {
		t.Errorf("size = %d, want %d", size, len(body))
	}
	if contentType != "application/json" {
		t.Errorf("contentType = %q", contentType)
	}
}

func TestPutRequiresKey(t *testing.T) {
	l := New(t.TempDir())
	_, err := l.PutObject(context.Background(), ports.PutObjectInput{Reader: bytes.NewReader(nil)})
	if err == nil {
		t.Error("expected an error for empty object key")
	}
}

func TestOverwrite(t *testing.T) {
	l := New(t.TempDir())
	put(t, l, "previews/k.json", "old")
	put(t, l, "previews/k.json", "new")

	rc, _, _, err := l.GetObject(context.Background(), "previews/k.json")
	if err != nil {
		t.Fatal(err)
	}
	defer rc.Close()
	body, _ := io.ReadAll(rc)
	if string(body) != "new" {
		t.Errorf("body = %q, want new", body)
	}
}

func TestDeleteObject(t *testing.T) {
	l := New(t.TempDir())
	put(t, l, "previews/k.json", "x")

	if err := l.DeleteObject(context.Background(), "previews/k.json"); err != nil {
		t.Fatalf("DeleteObject: %v", err)
	}
	if _, _, _, err := l.GetObject(context.Background(), "previews/k.json"); err == nil {
		t.Error("GetObject should fail after delete")
	}
}

func TestListObjects(t *testing.T) {
	l := New(t.TempDir())
	put(t, l, "previews/archive/task-b.json", "1")
	put(t, l, "previews/archive/task-a.json", "2")
	put(t, l, "previews/audits/task-a.json", "3")

	infos, err := l.ListObjects(context.Background(), "previews/archive/")
	if err != nil {
		t.Fatalf("ListObjects: %v", err)
	}

	if len(infos) != 2 {
		t.Fatalf("got %d objects, want 2", len(infos))
	}
	if infos[0].ObjectKey != "previews/archive/task-a.json" || infos[1].ObjectKey != "previews/archive/task-b.json" {
		t.Errorf("keys not sorted: %+v", infos)
	}
	if infos[0].UpdatedAt.IsZero() {
		t.Error("UpdatedAt is zero")
	}
}

func TestListObjectsMissingRoot(t *testing.T) {
	l := New(t.TempDir() + "/does-not-exist")

	infos, err := l.ListObjects(context.Background(), "previews/")
	if err != nil {
		t.Fatalf("ListObjects on missing root: %v", err)
	}
	if len(infos) != 0 {
		t.Errorf("got %+v, want none", infos)
	}
}
