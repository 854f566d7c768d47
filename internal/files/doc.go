// Package files provides file system discovery utilities for RMS Pulse.
//
// Discovery finds Excel workbooks waiting to be processed, generated report
// workbooks, and CSV exports, with helpers for filtering by date range and
// picking the latest file.
//
// Example usage:
//
//	discovery := files.NewDiscovery("/path/to/data")
//
//	// Find workbooks waiting in the uploads directory
//	workbooks, err := discovery.FindExcelFiles("uploads")
//
//	// Find generated reports, newest first
//	reports, err := discovery.FindProcessedReports("reports")
package files
