package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"rmspulse/internal/config"
	"rmspulse/internal/dataprocessing"
	"rmspulse/internal/exporter"
	"rmspulse/pkg/contracts/domain"
)

// ReportService turns an uploaded movement workbook into the processed
// report: parse, derive, aggregate, render.
type ReportService struct {
	paths     *config.Paths
	assembler *dataprocessing.Assembler
	excel     *exporter.ExcelWriter
	logger    *slog.Logger
	now       func() time.Time
}

// ProcessResult describes one completed report generation run.
type ProcessResult struct {
	ReportPath string      `json:"report_path"`
	Filename   string      `json:"filename"`
	Rows       int         `json:"rows"`
	Dates      []time.Time `json:"dates"`
	Weeks      int         `json:"weeks"`
}

// NewReportService creates a new report service
func NewReportService(paths *config.Paths, logger *slog.Logger) *ReportService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReportService{
		paths:     paths,
		assembler: dataprocessing.NewAssembler(logger),
		excel:     exporter.NewExcelWriter(logger),
		logger:    logger,
		now:       time.Now,
	}
}

// SheetNames lists the sheets of an uploaded workbook so the caller can pick
// one before processing.
func (s *ReportService) SheetNames(ctx context.Context, filePath string) ([]string, error) {
	names, err := dataprocessing.SheetNames(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to list sheets: %w", err)
	}
	return names, nil
}

// ProcessFile generates the processed workbook from one uploaded file and
// saves it under the reports directory with a timestamped name.
func (s *ReportService) ProcessFile(ctx context.Context, filePath, sheetName string) (*ProcessResult, error) {
	model, err := s.buildModel(ctx, filePath, sheetName)
	if err != nil {
		return nil, err
	}

	reportPath := s.paths.GetProcessedReportPath(s.now())
	if err := s.excel.Write(model, reportPath); err != nil {
		return nil, fmt.Errorf("failed to write report: %w", err)
	}

	result := &ProcessResult{
		ReportPath: reportPath,
		Filename:   filepath.Base(reportPath),
		Rows:       len(model.Rows),
		Dates:      model.Dates,
		Weeks:      len(model.Panels),
	}

	s.logger.InfoContext(ctx, "processed movement workbook",
		slog.String("source", filepath.Base(filePath)),
		slog.String("report", result.Filename),
		slog.Int("rows", result.Rows))

	return result, nil
}

// ProcessToBytes generates the processed workbook in memory, for streaming
// straight back in the HTTP response. Returns the blob and its suggested
// filename.
func (s *ReportService) ProcessToBytes(ctx context.Context, filePath, sheetName string) ([]byte, string, error) {
	model, err := s.buildModel(ctx, filePath, sheetName)
	if err != nil {
		return nil, "", err
	}

	data, err := s.excel.Bytes(model)
	if err != nil {
		return nil, "", fmt.Errorf("failed to render report: %w", err)
	}

	filename := filepath.Base(s.paths.GetProcessedReportPath(s.now()))
	return data, filename, nil
}

func (s *ReportService) buildModel(ctx context.Context, filePath, sheetName string) (*domain.ReportModel, error) {
	records, err := dataprocessing.ParseMovements(filePath, sheetName, s.logger)
	if err != nil {
		if errors.Is(err, dataprocessing.ErrSheetNotFound) {
			return nil, ErrSheetNotFound
		}
		return nil, fmt.Errorf("failed to parse workbook: %w", err)
	}

	model, err := s.assembler.Assemble(ctx, records)
	if err != nil {
		if errors.Is(err, dataprocessing.ErrEmptyAfterFilter) {
			return nil, ErrNoMovementRows
		}
		return nil, fmt.Errorf("failed to assemble report: %w", err)
	}
	return model, nil
}
