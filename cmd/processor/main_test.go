package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"rmspulse/internal/config"
	"rmspulse/internal/dataprocessing"
	"rmspulse/internal/exporter"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeWorkbook(t *testing.T, dir, name string, rows [][]interface{}) string {
	t.Helper()

	f := excelize.NewFile()
	sheet := dataprocessing.DefaultSheetName
	f.SetSheetName(f.GetSheetName(0), sheet)

	header := []string{"Fetch Station", "Deliver Station", "Start Time", "Fetch Time", "Delivery Time"}
	for colIdx, colName := range header {
		col, err := excelize.ColumnNumberToName(colIdx + 1)
		require.NoError(t, err)
		require.NoError(t, f.SetCellValue(sheet, col+"1", colName))
	}
	for rowIdx, row := range rows {
		for colIdx, val := range row {
			col, err := excelize.ColumnNumberToName(colIdx + 1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(sheet, col+strconv.Itoa(rowIdx+2), val))
		}
	}

	filePath := filepath.Join(dir, name)
	require.NoError(t, f.SaveAs(filePath))
	return filePath
}

func movementRows() [][]interface{} {
	return [][]interface{}{
		{"Pallet GR Position Tube 01", "RMS A 03", "2024/01/09 08.00.00", "2024/01/09 08.05.00", "2024/01/09 08.20.00"},
	}
}

func TestCollectWorkbooks_SingleFile(t *testing.T) {
	dir := t.TempDir()
	filePath := writeWorkbook(t, dir, "input.xlsx", movementRows())

	files, err := collectWorkbooks(filePath)
	require.NoError(t, err)
	assert.Equal(t, []string{filePath}, files)
}

func TestCollectWorkbooks_Directory(t *testing.T) {
	dir := t.TempDir()
	writeWorkbook(t, dir, "b.xlsx", movementRows())
	writeWorkbook(t, dir, "a.xlsx", movementRows())
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("skip"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "~$a.xlsx"), []byte("lock"), 0644))

	files, err := collectWorkbooks(dir)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, filepath.Join(dir, "a.xlsx"), files[0])
	assert.Equal(t, filepath.Join(dir, "b.xlsx"), files[1])
}

func TestProcessWorkbook(t *testing.T) {
	inDir := t.TempDir()
	outDir := t.TempDir()
	filePath := writeWorkbook(t, inDir, "input.xlsx", movementRows())

	logger := testLogger()
	assembler := dataprocessing.NewAssembler(logger)
	excel := exporter.NewExcelWriter(logger)
	csvWriter := exporter.NewCSVWriter(&config.Paths{ReportsDir: outDir})

	err := processWorkbook(context.Background(), filePath, "", outDir, true, logger, assembler, excel, csvWriter)
	require.NoError(t, err)

	entries, err := os.ReadDir(outDir)
	require.NoError(t, err)

	var haveXLSX, haveCSV bool
	for _, entry := range entries {
		switch filepath.Ext(entry.Name()) {
		case ".xlsx":
			haveXLSX = true
		case ".csv":
			haveCSV = true
		}
	}
	assert.True(t, haveXLSX)
	assert.True(t, haveCSV)
}

func TestProcessWorkbook_NoMovementRows(t *testing.T) {
	inDir := t.TempDir()
	outDir := t.TempDir()
	filePath := writeWorkbook(t, inDir, "input.xlsx", [][]interface{}{
		{"RMS A 03", "Conveyor Out 05", "2024/01/09 09.00.00", "2024/01/09 09.05.00", "2024/01/09 09.20.00"},
	})

	logger := testLogger()
	assembler := dataprocessing.NewAssembler(logger)
	excel := exporter.NewExcelWriter(logger)
	csvWriter := exporter.NewCSVWriter(&config.Paths{ReportsDir: outDir})

	err := processWorkbook(context.Background(), filePath, "", outDir, false, logger, assembler, excel, csvWriter)
	assert.Error(t, err)
}
