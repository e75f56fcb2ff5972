package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"github.com/trainlog/trainlog/internal/ctxkeys"
	"github.com/trainlog/trainlog/internal/respond"
	"github.com/trainlog/trainlog/internal/service"
)

type ExportHandler struct {
	exportService *service.ExportService
	now           func() time.Time
}

func NewExportHandler(exportService *service.ExportService) *ExportHandler {
	return &ExportHandler{
		exportService: exportService,
		now:           time.Now,
	}
}

func (h *ExportHandler) JSON(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	data, err := h.exportService.JSON(r.Context(), user.ID)
	if err != nil {
		handleError(w, r, err, "export workouts as json")
		return
	}

	respond.Attachment(w, respond.ContentTypeJSON, "json", h.now())
	if err := json.NewEncoder(w).Encode(data); err != nil {
		handleError(w, r, err, "encode json export")
	}
}

// CSV renders into a buffer first so a failure can still produce a clean
// error response.
func (h *ExportHandler) CSV(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	var buf bytes.Buffer
	if err := h.exportService.CSV(r.Context(), user.ID, &buf); err != nil {
		handleError(w, r, err, "export workouts as csv")
		return
	}

	respond.Attachment(w, respond.ContentTypeCSV, "csv", h.now())
	_, _ = w.Write(buf.Bytes())
}

func (h *ExportHandler) Archive(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	archive, err := h.exportService.Archive(r.Context(), user.ID)
	if err != nil {
		handleError(w, r, err, "archive export")
		return
	}
	respond.OK(w, archive)
}
