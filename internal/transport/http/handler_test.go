package http

import (
	"bytes"
	"io"
	"log/slog"
	"mime/multipart"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"rmspulse/internal/config"
	"rmspulse/internal/dataprocessing"
	apierrors "rmspulse/internal/errors"
)

func jsonID(id int64) string {
	return strconv.FormatInt(id, 10)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testErrorHandler() *apierrors.ErrorHandler {
	return apierrors.NewErrorHandler(testLogger(), false)
}

func testPaths(t *testing.T) *config.Paths {
	t.Helper()
	base := t.TempDir()
	paths := &config.Paths{
		UploadsDir: filepath.Join(base, "uploads"),
		ReportsDir: filepath.Join(base, "reports"),
	}
	require.NoError(t, os.MkdirAll(paths.UploadsDir, 0755))
	require.NoError(t, os.MkdirAll(paths.ReportsDir, 0755))
	return paths
}

// writeWorkbook builds an xlsx fixture with the given header and rows.
func writeWorkbook(t *testing.T, header []string, rows [][]interface{}) string {
	t.Helper()

	f := excelize.NewFile()
	sheet := dataprocessing.DefaultSheetName
	f.SetSheetName(f.GetSheetName(0), sheet)

	for colIdx, name := range header {
		col, err := excelize.ColumnNumberToName(colIdx + 1)
		require.NoError(t, err)
		require.NoError(t, f.SetCellValue(sheet, col+"1", name))
	}
	for rowIdx, row := range rows {
		for colIdx, val := range row {
			col, err := excelize.ColumnNumberToName(colIdx + 1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(sheet, col+strconv.Itoa(rowIdx+2), val))
		}
	}

	filePath := filepath.Join(t.TempDir(), "upload.xlsx")
	require.NoError(t, f.SaveAs(filePath))
	return filePath
}

func movementHeader() []string {
	return []string{"Fetch Station", "Deliver Station", "Start Time", "Fetch Time", "Delivery Time"}
}

func etlHeader() []string {
	return []string{
		"PC", "MC", "Materiel Desc", "Vendor", "Quantity", "Uom", "Batch",
		"Pallet Id", "Mfg. Date", "Exp. Date",
		"Fetch Station", "Deliver Station", "Start Time", "Fetch Time", "Delivery Time",
	}
}

// multipartUpload wraps a workbook file into a multipart body.
func multipartUpload(t *testing.T, filePath, sheet string) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile(uploadFieldName, filepath.Base(filePath))
	require.NoError(t, err)
	data, err := os.ReadFile(filePath)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)

	if sheet != "" {
		require.NoError(t, writer.WriteField("sheet", sheet))
	}
	require.NoError(t, writer.Close())

	return body, writer.FormDataContentType()
}
