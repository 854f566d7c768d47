package exporter

import (
	"bytes"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"rmspulse/pkg/contracts/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sampleModel() *domain.ReportModel {
	date := time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC)
	fetch := time.Date(2024, 1, 8, 23, 30, 0, 0, time.UTC)
	delivery := time.Date(2024, 1, 9, 0, 10, 0, 0, time.UTC)
	fetchFrac := (23.0*3600 + 30*60) / 86400.0
	gap := "40:00"

	rec := domain.DerivedRecord{
		Date:             &date,
		FetchFrac:        &fetchFrac,
		DeliveryFetchGap: &gap,
	}
	rec.FetchStation = "Pallet GR Position Tube 01"
	rec.DeliverStation = "RMS A 03"
	rec.FetchTime = &fetch
	rec.DeliveryTime = &delivery

	model := &domain.ReportModel{
		Rows:  []domain.DerivedRecord{rec},
		Dates: []time.Time{date},
		Panels: []domain.WeekPanel{{
			Year: 2024, Week: 2,
			Days: []domain.DayBreakdown{{
				Date:         date,
				TotalPallets: 1,
				ByRegion:     map[domain.Region]int{domain.RegionScanningRMSTube: 1},
			}},
		}},
	}
	for _, region := range domain.Regions {
		stats := domain.RegionStats{Region: region}
		if region == domain.RegionScanningRMSTube {
			stats.Hourly[23] = 1
			stats.Shifts.Night = 1
		}
		model.RegionStats = append(model.RegionStats, stats)
	}
	model.TotalHourly[23] = 1
	model.TotalShifts.Night = 1
	return model
}

func TestExcelWriter_Write(t *testing.T) {
	filePath := filepath.Join(t.TempDir(), "out", "processed.xlsx")

	require.NoError(t, NewExcelWriter(testLogger()).Write(sampleModel(), filePath))

	f, err := excelize.OpenFile(filePath)
	require.NoError(t, err)
	defer f.Close()

	assert.ElementsMatch(t, []string{ProcessedSheet, SummarySheet}, f.GetSheetList())

	rows, err := f.GetRows(ProcessedSheet)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, domain.TableHeaders, rows[0][:len(domain.TableHeaders)])
	assert.Equal(t, "Pallet GR Position Tube 01", rows[1][0])
	assert.Equal(t, "2024-01-08", rows[1][2])
	assert.Equal(t, "2024/01/08 23:30:00", rows[1][4])

	gap, err := f.GetCellValue(ProcessedSheet, "J2")
	require.NoError(t, err)
	assert.Equal(t, "40:00", gap)
}

func TestExcelWriter_LargeTable(t *testing.T) {
	model := sampleModel()
	rec := model.Rows[0]
	for len(model.Rows) < 5000 {
		model.Rows = append(model.Rows, rec)
	}

	data, err := NewExcelWriter(testLogger()).Bytes(model)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(ProcessedSheet)
	require.NoError(t, err)
	require.Len(t, rows, 5001)
	assert.Equal(t, "RMS A 03", rows[5000][1])

	// The clock fraction keeps its hh:mm:ss rendering on streamed rows.
	frac, err := f.GetCellValue(ProcessedSheet, "H5001")
	require.NoError(t, err)
	assert.Equal(t, "23:30:00", frac)
}

func TestExcelWriter_SummarySheet(t *testing.T) {
	data, err := NewExcelWriter(testLogger()).Bytes(sampleModel())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SummarySheet)
	require.NoError(t, err)
	require.NotEmpty(t, rows)

	assert.Equal(t, "Region", rows[0][0])

	var sawWeek, sawDate bool
	for _, row := range rows {
		if len(row) > 0 && row[0] == "Week 2, 2024" {
			sawWeek = true
		}
		if len(row) > 1 && row[0] == "2024-01-08" && row[1] == "1" {
			sawDate = true
		}
	}
	assert.True(t, sawWeek, "summary carries the week panel title")
	assert.True(t, sawDate, "summary carries the per-date breakdown")
}

func TestExcelWriter_Bytes_RoundTrip(t *testing.T) {
	data, err := NewExcelWriter(testLogger()).Bytes(sampleModel())
	require.NoError(t, err)
	require.NotEmpty(t, data)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	require.NoError(t, f.Close())
}
