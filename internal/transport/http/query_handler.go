package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"rmspulse/internal/assistant"
	apierrors "rmspulse/internal/errors"
	custommw "rmspulse/internal/middleware"
)

// supervisorHeader must be set to "true" for assistant queries. The
// assistant reads stored activity data, so it is gated to supervisor
// sessions only.
const supervisorHeader = "X-Supervisor-Mode"

// QueryHandler handles natural language questions about activity data
type QueryHandler struct {
	assistant    *assistant.Service
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewQueryHandler creates a new query handler. The assistant may be nil when
// no API key is configured; requests then get a 503.
func NewQueryHandler(svc *assistant.Service, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *QueryHandler {
	return &QueryHandler{
		assistant:    svc,
		logger:       logger.With(slog.String("component", "query_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the query routes with proper Chi patterns
func (h *QueryHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(render.SetContentType(render.ContentTypeJSON))
	r.Use(h.SupervisorOnly)

	r.Post("/", h.Ask)

	return r
}

// SupervisorOnly middleware rejects requests without supervisor mode
func (h *QueryHandler) SupervisorOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.EqualFold(r.Header.Get(supervisorHeader), "true") {
			h.logger.WarnContext(r.Context(), "assistant query without supervisor mode",
				slog.String("remote_addr", r.RemoteAddr),
			)
			h.errorHandler.HandleError(w, r, apierrors.ErrSupervisorOnly)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type queryRequest struct {
	Question string `json:"question"`
}

// Ask handles POST /api/query
func (h *QueryHandler) Ask(w http.ResponseWriter, r *http.Request) {
	reqID := custommw.GetReqID(r.Context())

	if h.assistant == nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrAssistantUnavailable())
		return
	}

	var req queryRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("question", "Question is required"))
		return
	}

	h.logger.InfoContext(r.Context(), "assistant query",
		slog.String("request_id", reqID),
		slog.Int("question_len", len(req.Question)),
	)

	answer, err := h.assistant.Answer(r.Context(), req.Question)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "assistant query failed",
			slog.String("error", err.Error()),
			slog.String("request_id", reqID),
		)
		h.errorHandler.HandleError(w, r, h.mapAssistantError(err))
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"answer": answer,
	})
}

// mapAssistantError converts assistant errors to API errors
func (h *QueryHandler) mapAssistantError(err error) error {
	switch {
	case errors.Is(err, assistant.ErrRateLimited):
		return apierrors.ErrRateLimitExceeded
	case errors.Is(err, assistant.ErrNoData):
		return apierrors.New(
			http.StatusUnprocessableEntity,
			"NO_ACTIVITY_DATA",
			"No activity data available for the lookback window",
		)
	default:
		return apierrors.NewWithDetails(
			http.StatusBadGateway,
			"ASSISTANT_ERROR",
			"The assistant could not answer the question",
			map[string]interface{}{"cause": err.Error()},
		)
	}
}
