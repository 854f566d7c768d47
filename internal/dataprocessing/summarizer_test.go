package dataprocessing

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rmspulse/pkg/contracts/domain"
)

func storedAt(station, deliver string, start time.Time) domain.StoredRecord {
	return domain.StoredRecord{
		FetchStation:   station,
		DeliverStation: deliver,
		StartTime:      &start,
	}
}

func TestSummarizer_Summarize(t *testing.T) {
	records := []domain.StoredRecord{
		storedAt("Pallet GR Position Tube 01", "RMS A 03", time.Date(2024, 1, 9, 8, 0, 0, 0, time.UTC)),
		storedAt("Pallet GR Position Tube 01", "RMS A 03", time.Date(2024, 1, 9, 8, 30, 0, 0, time.UTC)),
		storedAt("RMS C 01", "Conveyor Out 05", time.Date(2024, 1, 9, 15, 0, 0, 0, time.UTC)),
		storedAt("RMS C 01", "Conveyor Out 05", time.Date(2024, 1, 8, 23, 10, 0, 0, time.UTC)),
	}

	sum, err := NewSummarizer(testLogger(), SummarizerConfig{}).Summarize(context.Background(), records)
	require.NoError(t, err)

	// Headline figures describe the latest date only.
	assert.Equal(t, "2024-01-09", sum.Date)
	assert.Equal(t, 3, sum.TotalPallets)
	assert.Equal(t, "Pallet GR Position Tube 01", sum.TopArea)
	assert.Equal(t, "08:00", sum.PeakHour)
	assert.Equal(t, map[string]int{"shift_1": 2, "shift_2": 1, "shift_3": 0}, sum.ShiftSummary)

	// Routes aggregate across all dates.
	require.NotEmpty(t, sum.TopRoutes)
	assert.Equal(t, RouteCount{Route: "Pallet GR Position Tube 01 -> RMS A 03", Count: 2}, sum.TopRoutes[0])
	assert.Equal(t, RouteCount{Route: "RMS C 01 -> Conveyor Out 05", Count: 2}, sum.TopRoutes[1])

	require.Contains(t, sum.Daily, "2024-01-08")
	jan8 := sum.Daily["2024-01-08"]
	assert.Equal(t, 1, jan8.TotalPallets)
	assert.Equal(t, 1, jan8.ShiftSummary["shift_3"])
}

func TestSummarizer_Summarize_Empty(t *testing.T) {
	_, err := NewSummarizer(testLogger(), SummarizerConfig{}).Summarize(context.Background(), nil)
	require.Error(t, err)
}

func TestSummarizer_Summarize_UnknownBuckets(t *testing.T) {
	records := []domain.StoredRecord{
		{FetchStation: "", DeliverStation: "RMS A 03"},
	}

	sum, err := NewSummarizer(testLogger(), SummarizerConfig{}).Summarize(context.Background(), records)
	require.NoError(t, err)

	assert.Equal(t, "unknown", sum.Date)
	require.Contains(t, sum.Daily, "unknown")
	day := sum.Daily["unknown"]
	assert.Equal(t, 1, day.TotalPallets)
	assert.Equal(t, map[string]int{"shift_1": 0, "shift_2": 0, "shift_3": 0}, day.ShiftSummary)
	assert.Equal(t, 1, day.Distribution["unknown"])
}

func TestSummarizer_TopRoutesLimit(t *testing.T) {
	base := time.Date(2024, 1, 9, 9, 0, 0, 0, time.UTC)
	var records []domain.StoredRecord
	for _, station := range []string{"S1", "S2", "S3"} {
		records = append(records, storedAt(station, "D", base))
	}

	sum, err := NewSummarizer(testLogger(), SummarizerConfig{TopRoutes: 2}).Summarize(context.Background(), records)
	require.NoError(t, err)

	assert.Len(t, sum.TopRoutes, 2)
}

func TestSummarizer_ContextJSON(t *testing.T) {
	records := []domain.StoredRecord{
		storedAt("RMS A 01", "Dock", time.Date(2024, 1, 9, 7, 0, 0, 0, time.UTC)),
	}
	s := NewSummarizer(testLogger(), SummarizerConfig{})
	sum, err := s.Summarize(context.Background(), records)
	require.NoError(t, err)

	doc, err := s.ContextJSON(sum)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(doc), &decoded))
	assert.Contains(t, decoded, "top_5_routes_by_pallet_volume")
	assert.Equal(t, "2024-01-09", decoded["date"])
}
