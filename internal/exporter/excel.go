package exporter

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"

	"rmspulse/pkg/contracts/domain"
)

// Sheet names of the generated workbook.
const (
	ProcessedSheet = "Processed"
	SummarySheet   = "Summary"
)

const (
	dateFormat      = "2006-01-02"
	timestampFormat = "2006/01/02 15:04:05"
)

// ExcelWriter renders a ReportModel into the processed movement workbook:
// the derived table on one sheet, the hourly/shift/weekly breakdowns on a
// second.
type ExcelWriter struct {
	logger *slog.Logger
}

// NewExcelWriter creates a new Excel writer instance
func NewExcelWriter(logger *slog.Logger) *ExcelWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExcelWriter{logger: logger}
}

// Write renders the model and saves the workbook at filePath, creating the
// parent directory when needed.
func (w *ExcelWriter) Write(model *domain.ReportModel, filePath string) error {
	f, err := w.render(model)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := f.SaveAs(filePath); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}

	w.logger.Info("wrote processed workbook",
		slog.String("file_path", filePath),
		slog.Int("rows", len(model.Rows)))

	return nil
}

// Bytes renders the model and returns the workbook as an in-memory xlsx
// blob, for streaming straight into an HTTP response.
func (w *ExcelWriter) Bytes(model *domain.ReportModel) ([]byte, error) {
	f, err := w.render(model)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to encode workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func (w *ExcelWriter) render(model *domain.ReportModel) (*excelize.File, error) {
	f := excelize.NewFile()
	f.SetSheetName(f.GetSheetName(0), ProcessedSheet)
	if _, err := f.NewSheet(SummarySheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create summary sheet: %w", err)
	}

	if err := w.writeProcessed(f, model); err != nil {
		f.Close()
		return nil, err
	}
	if err := w.writeSummary(f, model); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

// writeProcessed fills the derived table through a stream writer, so a
// month of movement rows does not hold the whole sheet in memory at once.
func (w *ExcelWriter) writeProcessed(f *excelize.File, model *domain.ReportModel) error {
	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	// Clock fractions render with an hh:mm:ss number format so they read as
	// times in the spreadsheet while staying numeric for formulas.
	clockStyle, err := f.NewStyle(&excelize.Style{NumFmt: 21})
	if err != nil {
		return fmt.Errorf("failed to create clock style: %w", err)
	}

	sw, err := f.NewStreamWriter(ProcessedSheet)
	if err != nil {
		return fmt.Errorf("failed to open stream writer: %w", err)
	}

	header := make([]interface{}, len(domain.TableHeaders))
	for i, h := range domain.TableHeaders {
		header[i] = excelize.Cell{StyleID: headerStyle, Value: h}
	}
	if err := streamRow(sw, 1, header); err != nil {
		return err
	}

	for i, rec := range model.Rows {
		row := []interface{}{
			rec.FetchStation,
			rec.DeliverStation,
			cellDate(rec.Date),
			cellTimestamp(rec.StartTime),
			cellTimestamp(rec.FetchTime),
			cellTimestamp(rec.DeliveryTime),
			excelize.Cell{StyleID: clockStyle, Value: cellFrac(rec.StartFrac)},
			excelize.Cell{StyleID: clockStyle, Value: cellFrac(rec.FetchFrac)},
			excelize.Cell{StyleID: clockStyle, Value: cellFrac(rec.DeliveryFrac)},
			cellGap(rec.DeliveryFetchGap),
			cellGap(rec.DeliveryStartGap),
		}
		if err := streamRow(sw, i+2, row); err != nil {
			return err
		}
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("failed to flush processed sheet: %w", err)
	}
	return nil
}

func (w *ExcelWriter) writeSummary(f *excelize.File, model *domain.ReportModel) error {
	rowNum := 1

	// Shift table, one row per region plus the overall total.
	if err := setRow(f, SummarySheet, rowNum,
		[]interface{}{"Region", "Morning", "Afternoon", "Night", "Total"}); err != nil {
		return err
	}
	rowNum++
	for _, stats := range model.RegionStats {
		total := stats.Shifts.Morning + stats.Shifts.Afternoon + stats.Shifts.Night
		if err := setRow(f, SummarySheet, rowNum, []interface{}{
			string(stats.Region), stats.Shifts.Morning, stats.Shifts.Afternoon,
			stats.Shifts.Night, total,
		}); err != nil {
			return err
		}
		rowNum++
	}
	grand := model.TotalShifts.Morning + model.TotalShifts.Afternoon + model.TotalShifts.Night
	if err := setRow(f, SummarySheet, rowNum, []interface{}{
		"All", model.TotalShifts.Morning, model.TotalShifts.Afternoon,
		model.TotalShifts.Night, grand,
	}); err != nil {
		return err
	}
	rowNum += 2

	// Hourly histogram: hours down, regions across.
	histHeader := []interface{}{"Hour"}
	for _, stats := range model.RegionStats {
		histHeader = append(histHeader, string(stats.Region))
	}
	histHeader = append(histHeader, "All")
	if err := setRow(f, SummarySheet, rowNum, histHeader); err != nil {
		return err
	}
	rowNum++
	for hour := 0; hour < 24; hour++ {
		row := []interface{}{fmt.Sprintf("%02d:00", hour)}
		for _, stats := range model.RegionStats {
			row = append(row, stats.Hourly[hour])
		}
		row = append(row, model.TotalHourly[hour])
		if err := setRow(f, SummarySheet, rowNum, row); err != nil {
			return err
		}
		rowNum++
	}
	rowNum++

	// Weekly panels: per-date totals with the night tail folded forward.
	for _, panel := range model.Panels {
		if err := setRow(f, SummarySheet, rowNum,
			[]interface{}{fmt.Sprintf("Week %d, %d", panel.Week, panel.Year)}); err != nil {
			return err
		}
		rowNum++

		panelHeader := []interface{}{"Date", "Total"}
		for _, region := range domain.Regions {
			panelHeader = append(panelHeader, string(region))
		}
		if err := setRow(f, SummarySheet, rowNum, panelHeader); err != nil {
			return err
		}
		rowNum++

		for _, day := range panel.Days {
			row := []interface{}{day.Date.Format(dateFormat), day.TotalPallets}
			for _, region := range domain.Regions {
				row = append(row, day.ByRegion[region])
			}
			if err := setRow(f, SummarySheet, rowNum, row); err != nil {
				return err
			}
			rowNum++
		}
		rowNum++
	}

	return nil
}

func streamRow(sw *excelize.StreamWriter, rowNum int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return fmt.Errorf("failed to address row %d: %w", rowNum, err)
	}
	if err := sw.SetRow(cell, values); err != nil {
		return fmt.Errorf("failed to write row %d: %w", rowNum, err)
	}
	return nil
}

func setRow(f *excelize.File, sheet string, rowNum int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return fmt.Errorf("failed to address row %d: %w", rowNum, err)
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write row %d: %w", rowNum, err)
	}
	return nil
}

func cellDate(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.Format(dateFormat)
}

func cellTimestamp(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.Format(timestampFormat)
}

func cellFrac(f *float64) interface{} {
	if f == nil {
		return nil
	}
	return *f
}

func cellGap(s *string) interface{} {
	if s == nil {
		return nil
	}
	return *s
}
