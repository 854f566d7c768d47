package files

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, dir, name string, modTime time.Time) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
	if !modTime.IsZero() {
		require.NoError(t, os.Chtimes(path, modTime, modTime))
	}
	return path
}

func TestDiscovery_FindExcelFiles(t *testing.T) {
	dir := t.TempDir()
	old := time.Now().Add(-2 * time.Hour)
	touch(t, dir, "b.xlsx", time.Now())
	touch(t, dir, "a.xlsx", old)
	touch(t, dir, "skip.txt", time.Time{})
	touch(t, dir, "~$a.xlsx", time.Time{})

	d := NewDiscovery(dir)
	files, err := d.FindExcelFiles(".")
	require.NoError(t, err)
	require.Len(t, files, 2)

	// Oldest first
	assert.Equal(t, "a.xlsx", files[0].Name)
	assert.Equal(t, "b.xlsx", files[1].Name)
}

func TestDiscovery_FindExcelFilesMissingDir(t *testing.T) {
	d := NewDiscovery(t.TempDir())
	_, err := d.FindExcelFiles("nope")
	assert.Error(t, err)
}

func TestDiscovery_FindProcessedReports(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "processed_RMS_08-01-2024_09-00.xlsx", time.Now().Add(-time.Hour))
	touch(t, dir, "processed_RMS_09-01-2024_09-00.xlsx", time.Now())
	touch(t, dir, "raw.xlsx", time.Time{})

	d := NewDiscovery(dir)
	reports, err := d.FindProcessedReports(".")
	require.NoError(t, err)
	require.Len(t, reports, 2)

	// Newest first
	assert.Equal(t, "processed_RMS_09-01-2024_09-00.xlsx", reports[0].Name)
}

func TestDiscovery_FindCSVFiles(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "table.csv", time.Time{})
	touch(t, dir, "other.xlsx", time.Time{})

	d := NewDiscovery(dir)
	files, err := d.FindCSVFiles(".")
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "table.csv", files[0].Name)
}

func TestGetLatestFile(t *testing.T) {
	_, ok := GetLatestFile(nil)
	assert.False(t, ok)

	now := time.Now()
	files := []FileInfo{
		{Name: "old", ModTime: now.Add(-time.Hour)},
		{Name: "new", ModTime: now},
		{Name: "mid", ModTime: now.Add(-30 * time.Minute)},
	}
	latest, ok := GetLatestFile(files)
	require.True(t, ok)
	assert.Equal(t, "new", latest.Name)
}

func TestFilterFilesByDateRange(t *testing.T) {
	now := time.Now()
	files := []FileInfo{
		{Name: "in", ModTime: now.Add(-time.Hour)},
		{Name: "out", ModTime: now.Add(-48 * time.Hour)},
	}

	filtered := FilterFilesByDateRange(files, now.Add(-2*time.Hour), now)
	require.Len(t, filtered, 1)
	assert.Equal(t, "in", filtered[0].Name)
}
