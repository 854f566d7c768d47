package http

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"rmspulse/internal/config"
	apierrors "rmspulse/internal/errors"
	custommw "rmspulse/internal/middleware"
	"rmspulse/internal/files"
	"rmspulse/internal/services"
)

// ReportHandler handles movement workbook processing with RFC 7807 compliance
type ReportHandler struct {
	service      *services.ReportService
	paths        *config.Paths
	maxUpload    int64
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewReportHandler creates a new report handler with RFC 7807 error handling
func NewReportHandler(service *services.ReportService, paths *config.Paths, maxUpload int64, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *ReportHandler {
	return &ReportHandler{
		service:      service,
		paths:        paths,
		maxUpload:    maxUpload,
		logger:       logger.With(slog.String("component", "report_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the report routes with proper Chi patterns
func (h *ReportHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.List)
	r.Post("/process", h.Process)
	r.Post("/sheets", h.Sheets)
	r.Get("/download/{filename}", h.Download)

	return r
}

// List handles GET /api/reports, returning previously generated reports
// newest first.
func (h *ReportHandler) List(w http.ResponseWriter, r *http.Request) {
	discovery := files.NewDiscovery(h.paths.ReportsDir)
	reports, err := discovery.FindProcessedReports(".")
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   reports,
		"count":  len(reports),
	})
}

// Process handles POST /api/reports/process. It accepts a multipart upload
// with the raw movement workbook and streams the processed workbook back.
// An optional "sheet" form field selects the sheet to read.
func (h *ReportHandler) Process(w http.ResponseWriter, r *http.Request) {
	reqID := custommw.GetReqID(r.Context())

	uploadPath, err := saveUpload(r, h.maxUpload, h.paths.UploadsDir)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	defer os.Remove(uploadPath)

	sheetName := r.FormValue("sheet")

	h.logger.InfoContext(r.Context(), "processing movement workbook",
		slog.String("request_id", reqID),
		slog.String("sheet", sheetName),
	)

	data, filename, err := h.service.ProcessToBytes(r.Context(), uploadPath, sheetName)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to process workbook",
			slog.String("error", err.Error()),
			slog.String("request_id", reqID),
		)
		h.errorHandler.HandleError(w, r, h.mapServiceError(err))
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", fmt.Sprintf("%d", len(data)))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// Sheets handles POST /api/reports/sheets. It accepts the same multipart
// upload and returns the workbook's sheet names so a client can pick one.
func (h *ReportHandler) Sheets(w http.ResponseWriter, r *http.Request) {
	uploadPath, err := saveUpload(r, h.maxUpload, h.paths.UploadsDir)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	defer os.Remove(uploadPath)

	names, err := h.service.SheetNames(r.Context(), uploadPath)
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"sheets": names,
		"count":  len(names),
	})
}

// Download handles GET /api/reports/download/{filename} for previously
// generated reports saved under the reports directory.
func (h *ReportHandler) Download(w http.ResponseWriter, r *http.Request) {
	filename := chi.URLParam(r, "filename")
	if filename == "" {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("filename", "Filename is required"))
		return
	}

	path, ok := config.SafeJoin(h.paths.ReportsDir, filename)
	if !ok {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("filename", "Invalid filename"))
		return
	}

	if !config.FileExists(path) {
		h.errorHandler.HandleError(w, r, apierrors.ErrNotFound)
		return
	}

	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	http.ServeFile(w, r, path)
}

// mapServiceError converts report service errors to API errors
func (h *ReportHandler) mapServiceError(err error) error {
	switch {
	case errors.Is(err, services.ErrNoMovementRows):
		return apierrors.New(
			http.StatusUnprocessableEntity,
			"NO_MOVEMENT_ROWS",
			"The workbook contains no movement rows",
		)
	case errors.Is(err, services.ErrSheetNotFound):
		return apierrors.ErrSheetNotFound
	default:
		return err
	}
}
