package assistant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"rmspulse/internal/dataprocessing"
	"rmspulse/pkg/contracts/domain"
)

// Sentinel errors surfaced to the transport layer.
var (
	// ErrRateLimited marks a question rejected by the per-process LLM
	// request budget.
	ErrRateLimited = errors.New("question rate limit exceeded")
	// ErrNoData marks a question asked before any activity was stored.
	ErrNoData = errors.New("no activity records available")
)

// OffTopicAnswer is returned verbatim for questions outside the warehouse
// activity domain; no LLM call happens for those.
const OffTopicAnswer = "I can only answer questions about warehouse pallet activity, " +
	"shifts, stations and routes. Please rephrase your question around the stored movement data."

// activityKeywords gates questions: at least one must appear for the
// assistant to spend an LLM call.
var activityKeywords = []string{
	"pallet", "shift", "area", "agv", "cycle", "station", "fetch", "deliver",
	"batch", "quantity", "summary", "compare", "today", "yesterday", "route",
	"performance", "stock", "data",
}

const systemInstruction = "You are an operations analyst for a warehouse AGV system. " +
	"Answer questions using only the JSON activity summary provided. " +
	"Be concise, cite concrete numbers from the summary, and say so when the " +
	"summary does not cover the question."

// RecordLister is the slice of the activity store the assistant needs.
type RecordLister interface {
	ListSince(ctx context.Context, cutoff time.Time) ([]domain.StoredRecord, error)
}

// Service answers natural-language questions over recent stored activity.
// Each answer summarizes the lookback window and hands the summary, not raw
// rows, to the model.
type Service struct {
	store      RecordLister
	summarizer *dataprocessing.Summarizer
	provider   Provider
	limiter    *rate.Limiter
	logger     *slog.Logger
	lookback   time.Duration
	now        func() time.Time
}

// Config configures the assistant service.
type Config struct {
	LookbackDays      int
	RequestsPerMinute float64
}

// NewService creates the assistant service.
func NewService(store RecordLister, summarizer *dataprocessing.Summarizer, provider Provider, logger *slog.Logger, cfg Config) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.LookbackDays <= 0 {
		cfg.LookbackDays = 30
	}
	if cfg.RequestsPerMinute <= 0 {
		cfg.RequestsPerMinute = 10
	}
	return &Service{
		store:      store,
		summarizer: summarizer,
		provider:   provider,
		limiter:    rate.NewLimiter(rate.Limit(cfg.RequestsPerMinute/60), max(1, int(cfg.RequestsPerMinute))),
		logger:     logger,
		lookback:   time.Duration(cfg.LookbackDays) * 24 * time.Hour,
		now:        time.Now,
	}
}

// Answer resolves one question. Off-topic questions get the canned answer
// without touching the rate budget or the model.
func (s *Service) Answer(ctx context.Context, question string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", fmt.Errorf("question is empty")
	}

	if !onTopic(question) {
		s.logger.InfoContext(ctx, "question rejected by keyword gate",
			slog.Int("question_len", len(question)))
		return OffTopicAnswer, nil
	}

	if !s.limiter.Allow() {
		return "", ErrRateLimited
	}

	cutoff := s.now().Add(-s.lookback)
	records, err := s.store.ListSince(ctx, cutoff)
	if err != nil {
		return "", fmt.Errorf("failed to load recent activity: %w", err)
	}
	if len(records) == 0 {
		return "", ErrNoData
	}

	summary, err := s.summarizer.Summarize(ctx, records)
	if err != nil {
		return "", fmt.Errorf("failed to summarize activity: %w", err)
	}
	contextDoc, err := s.summarizer.ContextJSON(summary)
	if err != nil {
		return "", err
	}

	prompt := fmt.Sprintf("Activity summary:\n%s\n\nQuestion: %s", contextDoc, question)

	s.logger.InfoContext(ctx, "asking activity assistant",
		slog.Int("record_count", len(records)),
		slog.String("summary_date", summary.Date))

	answer, err := s.provider.Generate(ctx, systemInstruction, prompt)
	if err != nil {
		return "", fmt.Errorf("assistant generation failed: %w", err)
	}
	return answer, nil
}

func onTopic(question string) bool {
	q := strings.ToLower(question)
	for _, kw := range activityKeywords {
		if strings.Contains(q, kw) {
			return true
		}
	}
	return false
}
