package exporter

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"rmspulse/internal/config"
	"rmspulse/pkg/contracts/domain"
)

// CSVWriter provides CSV export functionality
type CSVWriter struct {
	paths *config.Paths
}

// NewCSVWriter creates a new CSV writer instance
func NewCSVWriter(paths *config.Paths) *CSVWriter {
	return &CSVWriter{paths: paths}
}

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	Headers   []string
	Records   [][]string
	Append    bool
	BOMPrefix bool // Add UTF-8 BOM for Excel compatibility
}

// WriteCSV writes data to a CSV file with the given options. Relative
// filenames land in the reports directory.
func (w *CSVWriter) WriteCSV(filePath string, options WriteOptions) error {
	fullPath := w.resolvePath(filePath)

	slog.Info("Writing CSV file",
		slog.String("file_path", filePath),
		slog.String("full_path", fullPath),
		slog.Int("record_count", len(options.Records)))

	dir := filepath.Dir(fullPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	flags := os.O_CREATE | os.O_WRONLY
	if options.Append {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}

	file, err := os.OpenFile(fullPath, flags, 0644)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	if options.BOMPrefix && !options.Append {
		if _, err := file.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if len(options.Headers) > 0 && !options.Append {
		if err := writer.Write(options.Headers); err != nil {
			return fmt.Errorf("failed to write headers: %w", err)
		}
	}

	for i, record := range options.Records {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	return nil
}

// WriteDerivedTable exports the processed movement table as CSV, with the
// same columns the workbook's Processed sheet carries. Fractions keep their
// raw numeric form; the workbook is the styled rendition.
func (w *CSVWriter) WriteDerivedTable(model *domain.ReportModel, filename string) error {
	records := make([][]string, 0, len(model.Rows))
	for _, rec := range model.Rows {
		records = append(records, []string{
			rec.FetchStation,
			rec.DeliverStation,
			textDate(rec.Date),
			textTimestamp(rec.StartTime),
			textTimestamp(rec.FetchTime),
			textTimestamp(rec.DeliveryTime),
			textFrac(rec.StartFrac),
			textFrac(rec.FetchFrac),
			textFrac(rec.DeliveryFrac),
			textGap(rec.DeliveryFetchGap),
			textGap(rec.DeliveryStartGap),
		})
	}

	return w.WriteCSV(filename, WriteOptions{
		Headers:   domain.TableHeaders,
		Records:   records,
		BOMPrefix: true,
	})
}

// resolvePath resolves a filename against the reports directory, leaving
// absolute paths untouched.
func (w *CSVWriter) resolvePath(filePath string) string {
	if filepath.IsAbs(filePath) {
		return filePath
	}
	return w.paths.GetReportPath(filePath)
}

func textDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(dateFormat)
}

func textTimestamp(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(timestampFormat)
}

func textFrac(f *float64) string {
	if f == nil {
		return ""
	}
	return strconv.FormatFloat(*f, 'f', -1, 64)
}

func textGap(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
