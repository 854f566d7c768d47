package services

import "errors"

// Service-level sentinel errors. Handlers map these onto API error
// responses; everything else surfaces as an internal error.
var (
	// Report errors
	ErrNoMovementRows = errors.New("no recognized movement rows in sheet")
	ErrSheetNotFound  = errors.New("sheet not found in workbook")

	// Record errors
	ErrRecordNotFound   = errors.New("record not found")
	ErrDuplicateRecord  = errors.New("record with this start time already exists")
	ErrMissingStartTime = errors.New("record has no parseable start time")
)
