package preview

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"mailproof/internal/pkg/errors"
	"mailproof/internal/pkg/logger"
	"mailproof/internal/ports"
)

// archiveStamp is the timestamp layout for archive and audit copies.
const archiveStamp = "20060102T150405Z"

// Writer persists run artifacts through the storage provider: the primary
// preview file (overwritten each run), an append-only timestamped archive
// copy, and a timestamped audit record. The preview file is fully written
// before Write returns, so downstream comparisons never observe a partial
// list.
type Writer struct {
	sp     ports.StorageProvider
	prefix string
	log    *logger.Logger
	now    func() time.Time
}

// NewWriter creates a writer rooted at prefix (e.g. "previews").
func NewWriter(sp ports.StorageProvider, prefix string, log *logger.Logger) *Writer {
	if log == nil {
		log = logger.NewDefault()
	}
	return &Writer{
		sp:     sp,
		prefix: prefix,
		log:    log.WithComponent("preview-writer"),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// WriteResult names the objects a run produced.
type WriteResult struct {
	PreviewKey string
	ArchiveKey string
	AuditKey   string
}

// Write persists the descriptors and audit for one sanitized task key.
func (w *Writer) Write(ctx context.Context, key string, descriptors []Descriptor, audit Audit) (WriteResult, error) {
	if key == "" {
		return WriteResult{}, errors.Validation("task key is empty")
	}

	stamp := w.now().Format(archiveStamp)
	result := WriteResult{
		PreviewKey: fmt.Sprintf("%s/%s.json", w.prefix, key),
		ArchiveKey: fmt.Sprintf("%s/archive/%s-%s.json", w.prefix, key, stamp),
		AuditKey:   fmt.Sprintf("%s/audits/%s-%s.json", w.prefix, key, stamp),
	}

	previewBody, err := json.MarshalIndent(descriptors, "", "  ")
	if err != nil {
		return WriteResult{}, errors.Wrap(err, "preview.write", "failed to encode previews")
	}
	auditBody, err := json.MarshalIndent(audit, "", "  ")
	if err != nil {
		return WriteResult{}, errors.Wrap(err, "preview.write", "failed to encode audit")
	}

	if err := w.put(ctx, result.PreviewKey, previewBody); err != nil {
		return WriteResult{}, err
	}
	if err := w.put(ctx, result.ArchiveKey, previewBody); err != nil {
		return WriteResult{}, err
	}
	if err := w.put(ctx, result.AuditKey, auditBody); err != nil {
		return WriteResult{}, err
	}

	w.log.Info("run artifacts written",
		"preview", result.PreviewKey,
		"archive", result.ArchiveKey,
		"audit", result.AuditKey,
		"entries", len(descriptors),
	)
	return result, nil
}

func (w *Writer) put(ctx context.Context, key string, body []byte) error {
	_, err := w.sp.PutObject(ctx, ports.PutObjectInput{
		ObjectKey:   key,
		ContentType: "application/json",
		Reader:      bytes.NewReader(body),
		Size:        int64(len(body)),
	})
	if err != nil {
		return errors.Wrapf(err, "preview.write", "failed to store %s", key)
	}
	return nil
}
