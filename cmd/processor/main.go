package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"rmspulse/internal/config"
	"rmspulse/internal/dataprocessing"
	"rmspulse/internal/exporter"
	"rmspulse/internal/infrastructure"
	"rmspulse/internal/validation"
)

func main() {
	inPath := flag.String("in", "", "input .xlsx file or directory of .xlsx files (defaults to data/uploads relative to executable)")
	outDir := flag.String("out", "", "output directory for processed reports (defaults to data/reports relative to executable)")
	sheet := flag.String("sheet", "", "sheet to read (defaults to "+dataprocessing.DefaultSheetName+")")
	writeCSV := flag.Bool("csv", false, "also write the derived table as CSV")
	flag.Parse()

	paths, err := config.GetPaths()
	if err != nil {
		slog.Error("Failed to initialize paths", "error", err)
		os.Exit(1)
	}

	if *inPath == "" {
		*inPath = paths.UploadsDir
	}
	if *outDir == "" {
		*outDir = paths.ReportsDir
	}

	if err := paths.EnsureDirectories(); err != nil {
		slog.Error("Failed to create required directories", "error", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Warn("Failed to load config, using defaults", "error", err)
		cfg = config.Default()
		cfg.Logging.FilePath = paths.GetLogPath("processor.log")
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Warn("Failed to initialize logger, using default", "error", err)
		logger = slog.Default()
	}

	logger.Info("Starting movement report processing",
		slog.String("input", *inPath),
		slog.String("output_dir", *outDir),
		slog.String("sheet", *sheet))

	validator := validation.NewFileValidator(logger)
	if err := validator.ValidateOutputDirectory(*outDir); err != nil {
		logger.Error("Output directory not usable", slog.String("error", err.Error()))
		os.Exit(1)
	}

	files, err := collectWorkbooks(*inPath)
	if err != nil {
		logger.Error("Failed to collect input files", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if len(files) == 0 {
		logger.Error("No .xlsx files found", slog.String("input", *inPath))
		os.Exit(1)
	}

	ctx := context.Background()
	assembler := dataprocessing.NewAssembler(logger)
	excel := exporter.NewExcelWriter(logger)
	csvWriter := exporter.NewCSVWriter(&config.Paths{ReportsDir: *outDir})

	failures := 0
	for _, file := range files {
		if err := validator.ValidateExcelFile(file); err != nil {
			logger.Warn("Skipping invalid workbook",
				slog.String("file", filepath.Base(file)),
				slog.String("error", err.Error()))
			failures++
			continue
		}
		if err := processWorkbook(ctx, file, *sheet, *outDir, *writeCSV, logger, assembler, excel, csvWriter); err != nil {
			logger.Error("Failed to process workbook",
				slog.String("file", filepath.Base(file)),
				slog.String("error", err.Error()))
			failures++
		}
	}

	logger.Info("Processing complete",
		slog.Int("files", len(files)),
		slog.Int("failures", failures))

	if failures > 0 {
		os.Exit(1)
	}
}

// collectWorkbooks returns the input file itself or every .xlsx directly
// inside the input directory, sorted by name.
func collectWorkbooks(inPath string) ([]string, error) {
	info, err := os.Stat(inPath)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{inPath}, nil
	}

	entries, err := os.ReadDir(inPath)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, "~$") {
			continue
		}
		ext := strings.ToLower(filepath.Ext(name))
		if ext == ".xlsx" || ext == ".xlsm" {
			files = append(files, filepath.Join(inPath, name))
		}
	}
	sort.Strings(files)
	return files, nil
}

func processWorkbook(ctx context.Context, file, sheet, outDir string, writeCSV bool, logger *slog.Logger, assembler *dataprocessing.Assembler, excel *exporter.ExcelWriter, csvWriter *exporter.CSVWriter) error {
	records, err := dataprocessing.ParseMovements(file, sheet, logger)
	if err != nil {
		return fmt.Errorf("parse: %w", err)
	}

	model, err := assembler.Assemble(ctx, records)
	if err != nil {
		return fmt.Errorf("assemble: %w", err)
	}

	// Include the source stem so a batch run never collides on the
	// minute-resolution timestamp.
	stem := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
	reportName := fmt.Sprintf("processed_RMS_%s_%s.xlsx", stem, time.Now().Format("02-01-2006_15-04"))
	reportPath := filepath.Join(outDir, reportName)
	if err := excel.Write(model, reportPath); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	logger.Info("Wrote processed report",
		slog.String("source", filepath.Base(file)),
		slog.String("report", reportName),
		slog.Int("rows", len(model.Rows)))

	if writeCSV {
		csvName := strings.TrimSuffix(reportName, ".xlsx") + ".csv"
		if err := csvWriter.WriteDerivedTable(model, csvName); err != nil {
			return fmt.Errorf("write csv: %w", err)
		}
		logger.Info("Wrote derived table CSV", slog.String("file", csvName))
	}

	return nil
}
