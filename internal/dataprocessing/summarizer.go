package dataprocessing

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"

	"rmspulse/pkg/contracts/domain"
)

// Summarizer condenses stored activity records into the compact JSON
// context handed to the language model. It is the single source of truth
// for the daily/shift/route breakdowns the assistant reasons over.
type Summarizer struct {
	logger    *slog.Logger
	topRoutes int
}

// SummarizerConfig holds configuration options for the Summarizer.
type SummarizerConfig struct {
	TopRoutes int // number of routes to keep in the top-routes list
}

// DailySummary is the per-date slice of an ActivitySummary.
type DailySummary struct {
	TotalPallets int            `json:"total_pallets"`
	ShiftSummary map[string]int `json:"shift_summary"`
	Distribution map[string]int `json:"distribution"`
}

// RouteCount pairs a fetch->deliver route with its pallet volume.
type RouteCount struct {
	Route string `json:"route"`
	Count int    `json:"count"`
}

// ActivitySummary is the full LLM context document.
type ActivitySummary struct {
	Date         string                  `json:"date"`
	TotalPallets int                     `json:"total_pallets"`
	TopArea      string                  `json:"top_area"`
	PeakHour     string                  `json:"peak_hour"`
	ShiftSummary map[string]int          `json:"shift_summary"`
	Distribution map[string]int          `json:"distribution"`
	TopRoutes    []RouteCount            `json:"top_5_routes_by_pallet_volume"`
	Daily        map[string]DailySummary `json:"daily_summary"`
}

// NewSummarizer creates an activity summarizer.
func NewSummarizer(logger *slog.Logger, cfg SummarizerConfig) *Summarizer {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.TopRoutes <= 0 {
		cfg.TopRoutes = 5
	}
	return &Summarizer{logger: logger, topRoutes: cfg.TopRoutes}
}

// Summarize builds the activity summary from stored records. Records
// without a start time fall into the "unknown" date and shift buckets
// rather than being dropped.
func (s *Summarizer) Summarize(ctx context.Context, records []domain.StoredRecord) (*ActivitySummary, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("no records to summarize")
	}

	s.logger.InfoContext(ctx, "summarizing activity records",
		slog.Int("record_count", len(records)))

	daily := make(map[string]DailySummary)
	hourCounts := make(map[string]int)
	routeCounts := make(map[string]int)

	for _, rec := range records {
		date := "unknown"
		shift := "unknown"
		if rec.StartTime != nil {
			date = rec.StartTime.Format("2006-01-02")
			shift = shiftLabel(rec.StartTime.Hour())
			hourCounts[rec.StartTime.Format("15:00")]++
		}

		area := rec.FetchStation
		if area == "" {
			area = "unknown"
		}

		day, ok := daily[date]
		if !ok {
			day = DailySummary{
				ShiftSummary: map[string]int{"shift_1": 0, "shift_2": 0, "shift_3": 0},
				Distribution: make(map[string]int),
			}
		}
		day.TotalPallets++
		if shift != "unknown" {
			day.ShiftSummary[shift]++
		}
		day.Distribution[area]++
		daily[date] = day

		routeCounts[fmt.Sprintf("%s -> %s", rec.FetchStation, rec.DeliverStation)]++
	}

	latest := latestDate(daily)
	latestDay := daily[latest]

	summary := &ActivitySummary{
		Date:         latest,
		TotalPallets: latestDay.TotalPallets,
		TopArea:      maxKey(latestDay.Distribution),
		PeakHour:     maxKey(hourCounts),
		ShiftSummary: latestDay.ShiftSummary,
		Distribution: latestDay.Distribution,
		TopRoutes:    topRoutes(routeCounts, s.topRoutes),
		Daily:        daily,
	}

	return summary, nil
}

// ContextJSON renders a summary as the indented JSON document sent to the
// language model.
func (s *Summarizer) ContextJSON(summary *ActivitySummary) (string, error) {
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode activity summary: %w", err)
	}
	return string(data), nil
}

// shiftLabel maps a start hour to the shift labels the LLM context uses.
func shiftLabel(hour int) string {
	switch {
	case hour >= morningStart && hour < afternoonStart:
		return "shift_1"
	case hour >= afternoonStart && hour < nightStart:
		return "shift_2"
	default:
		return "shift_3"
	}
}

func latestDate(daily map[string]DailySummary) string {
	latest := ""
	for date := range daily {
		if date == "unknown" {
			continue
		}
		if date > latest {
			latest = date
		}
	}
	if latest == "" {
		latest = "unknown"
	}
	return latest
}

func maxKey(counts map[string]int) string {
	best := ""
	bestCount := -1
	for key, n := range counts {
		if n > bestCount || (n == bestCount && key < best) {
			best = key
			bestCount = n
		}
	}
	return best
}

func topRoutes(counts map[string]int, n int) []RouteCount {
	routes := make([]RouteCount, 0, len(counts))
	for route, count := range counts {
		routes = append(routes, RouteCount{Route: route, Count: count})
	}
	sort.Slice(routes, func(i, j int) bool {
		if routes[i].Count != routes[j].Count {
			return routes[i].Count > routes[j].Count
		}
		return routes[i].Route < routes[j].Route
	})
	if len(routes) > n {
		routes = routes[:n]
	}
	return routes
}
