package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Paths contains all the application paths
// This is the single source of truth for ALL file paths in the application
type Paths struct {
	ExecutableDir string
	DataDir       string
	UploadsDir    string
	ReportsDir    string
	CacheDir      string
	LogsDir       string
	DatabaseFile  string
}

// GetPaths returns the application paths relative to the executable location.
// All paths are resolved against the executable directory, never the current
// working directory, so the layout survives being launched from anywhere.
//
// Directory structure:
//
//	rmspulse/
//	  ├── data/
//	  │   ├── uploads/   (Excel files received over HTTP)
//	  │   ├── reports/   (generated workbooks)
//	  │   ├── cache/     (temporary files)
//	  │   └── activity.db
//	  └── logs/
func GetPaths() (*Paths, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("failed to get executable path: %v", err)
	}

	exe, err = filepath.EvalSymlinks(exe)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve executable symlinks: %v", err)
	}

	exeDir := filepath.Dir(exe)
	dataDir := filepath.Join(exeDir, "data")

	return &Paths{
		ExecutableDir: exeDir,
		DataDir:       dataDir,
		UploadsDir:    filepath.Join(dataDir, "uploads"),
		ReportsDir:    filepath.Join(dataDir, "reports"),
		CacheDir:      filepath.Join(dataDir, "cache"),
		LogsDir:       filepath.Join(exeDir, "logs"),
		DatabaseFile:  filepath.Join(dataDir, "activity.db"),
	}, nil
}

// EnsureDirectories creates all required directories if they don't exist
func (p *Paths) EnsureDirectories() error {
	directories := []string{
		p.DataDir,
		p.UploadsDir,
		p.ReportsDir,
		p.CacheDir,
		p.LogsDir,
	}

	for _, dir := range directories {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %v", dir, err)
		}
	}

	return nil
}

// GetUploadPath returns the path for an uploaded workbook
func (p *Paths) GetUploadPath(filename string) string {
	return filepath.Join(p.UploadsDir, filename)
}

// GetReportPath returns the path for a report file
func (p *Paths) GetReportPath(filename string) string {
	return filepath.Join(p.ReportsDir, filename)
}

// GetCachePath returns the path for a cache file
func (p *Paths) GetCachePath(filename string) string {
	return filepath.Join(p.CacheDir, filename)
}

// GetLogPath returns the path for a log file
func (p *Paths) GetLogPath(filename string) string {
	return filepath.Join(p.LogsDir, filename)
}

// GetDatabasePath returns the activity database file path
func (p *Paths) GetDatabasePath() string {
	return p.DatabaseFile
}

// GetProcessedReportPath returns the timestamped path for a processed
// movement report, e.g. processed_RMS_09-01-2024_15-04.xlsx.
func (p *Paths) GetProcessedReportPath(now time.Time) string {
	filename := fmt.Sprintf("processed_RMS_%s.xlsx", now.Format("02-01-2006_15-04"))
	return filepath.Join(p.ReportsDir, filename)
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

// SafeJoin joins filename onto dir and reports whether the result stays
// inside dir. Rejects traversal attempts like "../secret".
func SafeJoin(dir, filename string) (string, bool) {
	cleaned := filepath.Clean(filename)
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) || filepath.IsAbs(cleaned) {
		return "", false
	}
	return filepath.Join(dir, cleaned), true
}
