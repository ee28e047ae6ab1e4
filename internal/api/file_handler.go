package api

import (
	"errors"
	"log/slog"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/phrazzld/cityinfo-api/internal/api/shared"
	"github.com/phrazzld/cityinfo-api/internal/files"
	"github.com/phrazzld/cityinfo-api/internal/platform/logger"
)

// FileHandler serves downloadable files
type FileHandler struct {
	source files.Source
	logger *slog.Logger
}

// NewFileHandler creates a new FileHandler
func NewFileHandler(source files.Source, logger *slog.Logger) *FileHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileHandler{
		source: source,
		logger: logger.With(slog.String("component", "file_handler")),
	}
}

// GetFile handles GET /api/files/{fileId} requests. The file is sent as an
// attachment with its resolved content type.
func (h *FileHandler) GetFile(w http.ResponseWriter, r *http.Request) {
	fileID := chi.URLParam(r, "fileId")

	file, err := h.source.Open(r.Context(), fileID)
	if errors.Is(err, files.ErrFileNotFound) {
		shared.RespondNotFound(w, r, "file not found")
		return
	}
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, UnexpectedFaultMessage, err)
		return
	}

	w.Header().Set("Content-Type", file.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(file.Content)))
	w.Header().Set("Content-Disposition",
		mime.FormatMediaType("attachment", map[string]string{"filename": file.Name}))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(file.Content); err != nil {
		logger.FromContextOrDefault(r.Context(), h.logger).Warn("failed to write file",
			slog.String("file", file.Name),
			slog.String("error", err.Error()))
	}
}
