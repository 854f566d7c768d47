package http

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	apierrors "rmspulse/internal/errors"
)

// uploadFieldName is the multipart form field carrying the workbook.
const uploadFieldName = "file"

// saveUpload copies the uploaded workbook from the multipart form into
// destDir and returns the saved path. The filename is sanitized to its
// base name so callers cannot escape the upload directory.
func saveUpload(r *http.Request, maxBytes int64, destDir string) (string, error) {
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		return "", apierrors.NewWithDetails(
			http.StatusBadRequest,
			"INVALID_UPLOAD",
			"Failed to parse multipart form",
			map[string]interface{}{"max_bytes": maxBytes},
		)
	}

	file, header, err := r.FormFile(uploadFieldName)
	if err != nil {
		return "", apierrors.ErrValidation(uploadFieldName, "A workbook file is required")
	}
	defer file.Close()

	filename := filepath.Base(header.Filename)
	if filename == "" || filename == "." {
		return "", apierrors.ErrValidation(uploadFieldName, "Uploaded file has no name")
	}
	ext := strings.ToLower(filepath.Ext(filename))
	if ext != ".xlsx" && ext != ".xlsm" {
		return "", apierrors.ErrValidation(uploadFieldName, fmt.Sprintf("Unsupported file type %q, expected .xlsx", ext))
	}

	destPath := filepath.Join(destDir, filename)
	dest, err := os.Create(destPath)
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}
	defer dest.Close()

	if _, err := io.Copy(dest, io.LimitReader(file, maxBytes)); err != nil {
		os.Remove(destPath)
		return "", fmt.Errorf("save upload: %w", err)
	}

	return destPath, nil
}
