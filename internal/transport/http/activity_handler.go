package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"rmspulse/internal/config"
	apierrors "rmspulse/internal/errors"
	custommw "rmspulse/internal/middleware"
	"rmspulse/internal/services"
	"rmspulse/pkg/contracts/domain"
)

// defaultListDays bounds GET /records when no ?days= is given.
const defaultListDays = 7

// ActivityHandler handles activity record HTTP requests with RFC 7807 compliance
type ActivityHandler struct {
	service      *services.ActivityService
	paths        *config.Paths
	maxUpload    int64
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
	validation   *custommw.ValidationMiddleware
	query        *custommw.QueryParamValidator
}

// NewActivityHandler creates a new activity handler with RFC 7807 error handling
func NewActivityHandler(service *services.ActivityService, paths *config.Paths, maxUpload int64, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *ActivityHandler {
	return &ActivityHandler{
		service:      service,
		paths:        paths,
		maxUpload:    maxUpload,
		logger:       logger.With(slog.String("component", "activity_handler")),
		errorHandler: errorHandler,
		validation:   custommw.NewValidationMiddleware(logger, errorHandler),
		query:        custommw.NewQueryParamValidator(logger, errorHandler),
	}
}

// Routes returns the activity routes with proper Chi patterns
func (h *ActivityHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/", h.List)
	r.With(
		custommw.ContentTypeValidator("application/json"),
		h.validation.ValidateRequest,
	).Post("/", h.Create)
	r.Post("/upload", h.Upload)
	r.Get("/count", h.Count)

	r.Route("/{id}", func(r chi.Router) {
		r.Use(h.RecordCtx)
		r.Get("/", h.Get)
		r.Delete("/", h.Delete)
	})

	return r
}

type recordIDKey struct{}

func contextWithRecordID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, recordIDKey{}, id)
}

func recordIDFromContext(ctx context.Context) int64 {
	id, _ := ctx.Value(recordIDKey{}).(int64)
	return id
}

// RecordCtx middleware validates the record ID parameter
func (h *ActivityHandler) RecordCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil || id <= 0 {
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation("id", "Record ID must be a positive integer"))
			return
		}
		ctx := contextWithRecordID(r.Context(), id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Upload handles POST /api/records/upload. It accepts a multipart workbook
// and loads every row with a start time into the store, skipping duplicates.
func (h *ActivityHandler) Upload(w http.ResponseWriter, r *http.Request) {
	reqID := custommw.GetReqID(r.Context())

	uploadPath, err := saveUpload(r, h.maxUpload, h.paths.UploadsDir)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	defer os.Remove(uploadPath)

	sheetName := r.FormValue("sheet")

	result, err := h.service.Upload(r.Context(), uploadPath, sheetName)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to upload records",
			slog.String("error", err.Error()),
			slog.String("request_id", reqID),
		)
		h.errorHandler.HandleError(w, r, h.mapServiceError(err))
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"result": result,
	})
}

// List handles GET /api/records?days=N
func (h *ActivityHandler) List(w http.ResponseWriter, r *http.Request) {
	days, ok := h.query.ValidateInt(w, r, "days", 1, 365, defaultListDays)
	if !ok {
		return
	}

	records, err := h.service.ListSince(r.Context(), days)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   records,
		"count":  len(records),
		"days":   days,
	})
}

// Create handles POST /api/records with a single record body
func (h *ActivityHandler) Create(w http.ResponseWriter, r *http.Request) {
	var rec domain.StoredRecord
	if err := render.DecodeJSON(r.Body, &rec); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}
	if err := h.validation.ValidateStruct(rec); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	saved, err := h.service.Add(r.Context(), rec)
	if err != nil {
		h.errorHandler.HandleError(w, r, h.mapServiceError(err))
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   saved,
	})
}

// Get handles GET /api/records/{id}
func (h *ActivityHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := recordIDFromContext(r.Context())

	rec, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.errorHandler.HandleError(w, r, h.mapServiceError(err))
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   rec,
	})
}

// Delete handles DELETE /api/records/{id}
func (h *ActivityHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := recordIDFromContext(r.Context())

	if err := h.service.Delete(r.Context(), id); err != nil {
		h.errorHandler.HandleError(w, r, h.mapServiceError(err))
		return
	}

	render.Status(r, http.StatusNoContent)
	render.NoContent(w, r)
}

// Count handles GET /api/records/count
func (h *ActivityHandler) Count(w http.ResponseWriter, r *http.Request) {
	count, err := h.service.Count(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"count":  count,
	})
}

// mapServiceError converts activity service errors to API errors
func (h *ActivityHandler) mapServiceError(err error) error {
	switch {
	case errors.Is(err, services.ErrRecordNotFound):
		return apierrors.ErrRecordNotFound
	case errors.Is(err, services.ErrDuplicateRecord):
		return apierrors.New(
			http.StatusConflict,
			"DUPLICATE_RECORD",
			"A record with this start time already exists",
		)
	case errors.Is(err, services.ErrMissingStartTime):
		return apierrors.ErrValidation("start_time", "start_time is required")
	case errors.Is(err, services.ErrSheetNotFound):
		return apierrors.ErrSheetNotFound
	default:
		return err
	}
}
