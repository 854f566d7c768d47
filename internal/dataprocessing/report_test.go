package dataprocessing

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rmspulse/pkg/contracts/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestAssembler_Assemble_OvernightMovement(t *testing.T) {
	start, ok := ParseDateTime("2024/01/01 21.59.00")
	require.True(t, ok)
	fetch, ok := ParseDateTime("2024/01/01 23.30.00")
	require.True(t, ok)
	delivery, ok := ParseDateTime("2024/01/02 00.10.00")
	require.True(t, ok)

	records := []domain.ActivityRecord{{
		FetchStation:   "Pallet GR Position Tube 01",
		DeliverStation: "RMS A 03",
		StartTime:      &start,
		FetchTime:      &fetch,
		DeliveryTime:   &delivery,
	}}

	model, err := NewAssembler(testLogger()).Assemble(context.Background(), records)
	require.NoError(t, err)

	require.Len(t, model.Rows, 1)
	row := model.Rows[0]
	require.NotNil(t, row.Date)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), *row.Date)
	require.NotNil(t, row.DeliveryFetchGap)
	assert.Equal(t, "40:00", *row.DeliveryFetchGap)
	require.NotNil(t, row.DeliveryStartGap)
	assert.Equal(t, "131:00", *row.DeliveryStartGap)

	// Fetch at 23:30 lands in hour 23 and the night shift.
	assert.Equal(t, 1, model.TotalHourly[23])
	assert.Equal(t, domain.ShiftCounts{Night: 1}, model.TotalShifts)

	for _, stats := range model.RegionStats {
		if stats.Region == domain.RegionScanningRMSTube {
			assert.Equal(t, 1, stats.Hourly[23])
			assert.Equal(t, 1, stats.Shifts.Night)
		} else {
			assert.Zero(t, stats.Shifts.Night, "region %s", stats.Region)
		}
	}

	require.Len(t, model.Dates, 1)
	require.Len(t, model.Panels, 1)
	assert.Equal(t, 2024, model.Panels[0].Year)
	assert.Equal(t, 1, model.Panels[0].Week)
}

func TestAssembler_Assemble_EmptyAfterFilter(t *testing.T) {
	records := []domain.ActivityRecord{
		{FetchStation: "Conveyor Out 05"},
		{FetchStation: "Button Pallet Position Tube 01"},
	}

	model, err := NewAssembler(testLogger()).Assemble(context.Background(), records)

	assert.Nil(t, model)
	assert.ErrorIs(t, err, ErrEmptyAfterFilter)
}

func TestAssembler_Assemble_KeepsUnmarkedRowsInTable(t *testing.T) {
	fetch := time.Date(2024, 1, 8, 10, 0, 0, 0, time.UTC)
	records := []domain.ActivityRecord{
		{FetchStation: "Pallet GR Position Tube 01", FetchTime: &fetch},
		{FetchStation: "Conveyor Out 05", FetchTime: &fetch},
	}

	model, err := NewAssembler(testLogger()).Assemble(context.Background(), records)
	require.NoError(t, err)

	// The marker only gates emptiness; every input row reaches the table.
	assert.Len(t, model.Rows, 2)
	assert.Equal(t, 2, model.TotalHourly[10])
}

func TestFilterMovements(t *testing.T) {
	records := []domain.ActivityRecord{
		{FetchStation: "Pallet GR Position Non-Tube 02"},
		{FetchStation: "pallet gr position tube 01"},
		{FetchStation: "RMS A 03"},
		{FetchStation: ""},
	}

	got := FilterMovements(records)

	require.Len(t, got, 2)
	assert.Equal(t, "Pallet GR Position Non-Tube 02", got[0].FetchStation)
	assert.Equal(t, "pallet gr position tube 01", got[1].FetchStation)
}
