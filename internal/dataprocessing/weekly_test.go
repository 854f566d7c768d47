package dataprocessing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rmspulse/pkg/contracts/domain"
)

// derivedAt builds a derived record with a fetch event at the given clock
// time, classified under the given station name.
func derivedAt(t *testing.T, station string, year int, month time.Month, day, hour, min, sec int) domain.DerivedRecord {
	t.Helper()
	fetch := time.Date(year, month, day, hour, min, sec, 0, time.UTC)
	rec := domain.ActivityRecord{
		FetchStation: station,
		FetchTime:    &fetch,
	}
	return Derive(rec)
}

func TestAggregateWeekly_SkipsUndatedRecords(t *testing.T) {
	records := []domain.DerivedRecord{
		{}, // no fetch time, no date
		derivedAt(t, "RMS A 01", 2024, time.January, 8, 10, 0, 0),
	}

	panels := AggregateWeekly(records)

	require.Len(t, panels, 1)
	assert.Len(t, panels[0].Records, 1)
}

func TestAggregateWeekly_PanelOrdering(t *testing.T) {
	records := []domain.DerivedRecord{
		derivedAt(t, "RMS A 01", 2024, time.January, 15, 10, 0, 0), // week 3
		derivedAt(t, "RMS A 01", 2024, time.January, 8, 10, 0, 0),  // week 2
		derivedAt(t, "RMS A 01", 2023, time.December, 25, 10, 0, 0),
	}

	panels := AggregateWeekly(records)

	require.Len(t, panels, 3)
	assert.Equal(t, 2023, panels[0].Year)
	assert.Equal(t, 52, panels[0].Week)
	assert.Equal(t, 2024, panels[1].Year)
	assert.Equal(t, 2, panels[1].Week)
	assert.Equal(t, 2024, panels[2].Year)
	assert.Equal(t, 3, panels[2].Week)
}

func TestAggregateWeekly_DayWindowExcludesNight(t *testing.T) {
	records := []domain.DerivedRecord{
		derivedAt(t, "RMS A 01", 2024, time.January, 8, 21, 59, 59), // inside day window
		derivedAt(t, "RMS A 01", 2024, time.January, 8, 22, 0, 0),   // night tail, no successor date
	}

	panels := AggregateWeekly(records)

	require.Len(t, panels, 1)
	require.Len(t, panels[0].Days, 1)
	day := panels[0].Days[0]
	assert.Equal(t, 1, day.TotalPallets)
	assert.Equal(t, 1, day.ByRegion[domain.RegionRMSSupermarketTube])
	assert.Equal(t, 0, day.ByRegion[domain.RegionLoadingDockTube])
}

func TestAggregateWeekly_NightTailFoldsIntoNextDate(t *testing.T) {
	records := []domain.DerivedRecord{
		derivedAt(t, "RMS A 01", 2024, time.January, 8, 23, 30, 0), // Jan 8 night tail
		derivedAt(t, "RMS A 01", 2024, time.January, 9, 3, 0, 0),   // Jan 9 early morning
		derivedAt(t, "RMS A 01", 2024, time.January, 9, 10, 0, 0),
	}

	panels := AggregateWeekly(records)

	require.Len(t, panels, 1)
	require.Len(t, panels[0].Days, 2)

	jan8 := panels[0].Days[0]
	assert.Equal(t, time.Date(2024, time.January, 8, 0, 0, 0, 0, time.UTC), jan8.Date)
	assert.Equal(t, 0, jan8.TotalPallets, "night tail belongs to the following date")

	jan9 := panels[0].Days[1]
	assert.Equal(t, 3, jan9.TotalPallets, "two day-window records plus the Jan 8 tail")
	assert.Equal(t, 3, jan9.ByRegion[domain.RegionRMSSupermarketTube])
}

func TestAggregateWeekly_TailCrossesWeekBoundary(t *testing.T) {
	records := []domain.DerivedRecord{
		derivedAt(t, "RMS A 01", 2024, time.January, 7, 23, 0, 0),  // Sunday, week 1
		derivedAt(t, "RMS A 01", 2024, time.January, 8, 10, 0, 0), // Monday, week 2
	}

	panels := AggregateWeekly(records)

	require.Len(t, panels, 2)
	require.Len(t, panels[1].Days, 1)
	monday := panels[1].Days[0]
	assert.Equal(t, 2, monday.TotalPallets, "Sunday's night tail counts with Monday")
}

func TestAggregateWeekly_TailSkipsOverGapDates(t *testing.T) {
	// Jan 8 has a night-tail record; Jan 10 is the next distinct date in the
	// dataset, so it inherits the Jan 8 tail even though Jan 9 is absent.
	records := []domain.DerivedRecord{
		derivedAt(t, "RMS C 01", 2024, time.January, 8, 22, 30, 0),
		derivedAt(t, "RMS C 01", 2024, time.January, 10, 9, 0, 0),
	}

	panels := AggregateWeekly(records)

	require.Len(t, panels, 1)
	require.Len(t, panels[0].Days, 2)
	jan10 := panels[0].Days[1]
	assert.Equal(t, 2, jan10.TotalPallets)
	assert.Equal(t, 2, jan10.ByRegion[domain.RegionRMSSupermarketNT])
}
