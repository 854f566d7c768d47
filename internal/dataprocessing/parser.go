package dataprocessing

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"rmspulse/pkg/contracts/domain"
)

// DefaultSheetName is the sheet the AGV system exports movement logs to.
const DefaultSheetName = "Sheet4"

// ErrSheetNotFound is returned when the requested sheet does not exist in
// the workbook.
var ErrSheetNotFound = errors.New("sheet not found in workbook")

// Required movement columns, case-sensitive, as emitted by the AGV export.
var movementColumns = []string{
	"Fetch Station",
	"Deliver Station",
	"Start Time",
	"Fetch Time",
	"Delivery Time",
}

// etlColumns is the full column set the ETL upload expects; a superset of
// the movement columns including the inventory fields.
var etlColumns = []string{
	"PC", "MC", "Materiel Desc", "Vendor", "Quantity", "Uom", "Batch",
	"Pallet Id", "Mfg. Date", "Exp. Date",
	"Fetch Station", "Deliver Station", "Start Time", "Fetch Time", "Delivery Time",
}

// MissingColumnsError reports required input columns absent from the sheet
// header. It is fatal before any row processing begins.
type MissingColumnsError struct {
	Sheet   string
	Missing []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("sheet %q is missing required columns: %s",
		e.Sheet, strings.Join(e.Missing, ", "))
}

// SheetNames returns the sheet names of a workbook, in workbook order.
func SheetNames(filePath string) ([]string, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()
	return f.GetSheetList(), nil
}

// ParseMovements reads the movement columns from one sheet of a workbook.
// Header is the first row. Missing required columns abort before any row is
// read; unparseable timestamp cells become absent fields, never errors.
func ParseMovements(filePath, sheetName string, logger *slog.Logger) ([]domain.ActivityRecord, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if sheetName == "" {
		sheetName = DefaultSheetName
	}

	rows, columns, err := readSheet(filePath, sheetName, movementColumns)
	if err != nil {
		return nil, err
	}

	records := make([]domain.ActivityRecord, 0, len(rows))
	for i, row := range rows {
		rec := domain.ActivityRecord{
			FetchStation:   cell(row, columns["Fetch Station"]),
			DeliverStation: cell(row, columns["Deliver Station"]),
		}
		rec.StartTime = parseTimeCell(logger, sheetName, i+2, "Start Time", cell(row, columns["Start Time"]))
		rec.FetchTime = parseTimeCell(logger, sheetName, i+2, "Fetch Time", cell(row, columns["Fetch Time"]))
		rec.DeliveryTime = parseTimeCell(logger, sheetName, i+2, "Delivery Time", cell(row, columns["Delivery Time"]))
		records = append(records, rec)
	}

	logger.Info("parsed movement sheet",
		slog.String("sheet", sheetName),
		slog.Int("rows", len(records)))

	return records, nil
}

// ParseStoredRecords reads the full ETL column set from one sheet. Rows keep
// absent timestamps as nil; the store decides what to skip.
func ParseStoredRecords(filePath, sheetName string, logger *slog.Logger) ([]domain.StoredRecord, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if sheetName == "" {
		sheetName = DefaultSheetName
	}

	rows, columns, err := readSheet(filePath, sheetName, etlColumns)
	if err != nil {
		return nil, err
	}

	records := make([]domain.StoredRecord, 0, len(rows))
	for i, row := range rows {
		quantity, _ := strconv.ParseFloat(strings.TrimSpace(cell(row, columns["Quantity"])), 64)
		rec := domain.StoredRecord{
			PC:             cell(row, columns["PC"]),
			MC:             cell(row, columns["MC"]),
			MaterialDesc:   cell(row, columns["Materiel Desc"]),
			Vendor:         cell(row, columns["Vendor"]),
			Quantity:       quantity,
			UOM:            cell(row, columns["Uom"]),
			Batch:          cell(row, columns["Batch"]),
			PalletID:       cell(row, columns["Pallet Id"]),
			FetchStation:   cell(row, columns["Fetch Station"]),
			DeliverStation: cell(row, columns["Deliver Station"]),
		}
		rec.MfgDate = parseTimeCell(logger, sheetName, i+2, "Mfg. Date", cell(row, columns["Mfg. Date"]))
		rec.ExpDate = parseTimeCell(logger, sheetName, i+2, "Exp. Date", cell(row, columns["Exp. Date"]))
		rec.StartTime = parseTimeCell(logger, sheetName, i+2, "Start Time", cell(row, columns["Start Time"]))
		rec.FetchTime = parseTimeCell(logger, sheetName, i+2, "Fetch Time", cell(row, columns["Fetch Time"]))
		rec.DeliveryTime = parseTimeCell(logger, sheetName, i+2, "Delivery Time", cell(row, columns["Delivery Time"]))
		records = append(records, rec)
	}

	return records, nil
}

// readSheet loads a sheet, maps the header row, and enforces the required
// column list. Returned rows exclude the header.
func readSheet(filePath, sheetName string, required []string) ([][]string, map[string]int, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	if err != nil {
		var notExist excelize.ErrSheetNotExist
		if errors.As(err, &notExist) {
			return nil, nil, fmt.Errorf("%w: %q", ErrSheetNotFound, sheetName)
		}
		return nil, nil, fmt.Errorf("failed to read sheet %q: %w", sheetName, err)
	}
	if len(rows) == 0 {
		return nil, nil, &MissingColumnsError{Sheet: sheetName, Missing: append([]string(nil), required...)}
	}

	columns := make(map[string]int, len(rows[0]))
	for i, header := range rows[0] {
		columns[strings.TrimSpace(header)] = i
	}

	var missing []string
	for _, name := range required {
		if _, ok := columns[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, nil, &MissingColumnsError{Sheet: sheetName, Missing: missing}
	}

	return rows[1:], columns, nil
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func parseTimeCell(logger *slog.Logger, sheet string, row int, column, text string) *time.Time {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	t, ok := ParseDateTime(text)
	if !ok {
		logger.Warn("unparseable timestamp cell",
			slog.String("sheet", sheet),
			slog.Int("row", row),
			slog.String("column", column),
			slog.String("value", text))
		return nil
	}
	return &t
}
