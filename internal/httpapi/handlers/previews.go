package handlers

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"mailproof/internal/httpkit"
	"mailproof/internal/sanitize"
)

// GetPreviews streams the primary preview file for a task. The task path
// segment is run through the same sanitizer the runner uses, so clients
// may pass either the raw task name or the sanitized key.
func (h *Handler) GetPreviews(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	key := sanitize.Key(chi.URLParam(r, "task"))
	if key == "" {
		httpkit.WriteErr(w, 400, "VALIDATION_ERROR", "task sanitizes to an empty key", nil)
		return
	}

	objectKey := fmt.Sprintf("%s/%s.json", h.prefix, key)
	rc, contentType, size, err := h.sp.GetObject(ctx, objectKey)
	if err != nil {
		httpkit.WriteErr(w, 404, "NOT_FOUND", "no previews for task: "+key, nil)
		return
	}
	defer rc.Close()

	if contentType == "" {
		contentType = "application/json"
	}
	w.Header().Set("Content-Type", contentType)
	if size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(size, 10))
	}
	w.WriteHeader(200)
	_, _ = io.Copy(w, rc)
}

type archiveItem struct {
	ObjectKey string    `json:"object_key"`
	Size      int64     `json:"size"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ListArchive lists the append-only archive copies for a task.
func (h *Handler) ListArchive(w http.ResponseWriter, r *http.Request) {
	h.listByPrefix(w, r, "archive")
}

// ListAudits lists the timestamped audit records for a task.
func (h *Handler) ListAudits(w http.ResponseWriter, r *http.Request) {
	h.listByPrefix(w, r, "audits")
}

func (h *Handler) listByPrefix(w http.ResponseWriter, r *http.Request, kind string) {
	ctx := r.Context()

	key := sanitize.Key(chi.URLParam(r, "task"))
	if key == "" {
		httpkit.WriteErr(w, 400, "VALIDATION_ERROR", "task sanitizes to an empty key", nil)
		return
	}

	prefix := fmt.Sprintf("%s/%s/%s-", h.prefix, kind, key)
	infos, err := h.sp.ListObjects(ctx, prefix)
	if err != nil {
		h.log.FromContext(ctx).Error("list failed", "prefix", prefix, "error", err.Error())
		httpkit.WriteErr(w, 500, "INTERNAL_ERROR", "failed to list "+kind, nil)
		return
	}

	items := make([]archiveItem, 0, len(infos))
	for _, info := range infos {
		items = append(items, archiveItem{
			ObjectKey: info.ObjectKey,
			Size:      info.Size,
			UpdatedAt: info.UpdatedAt,
		})
	}

	httpkit.WriteJSON(w, 200, map[string]any{
		"task":  key,
		"items": items,
	})
}
