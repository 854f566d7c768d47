package domain

import (
	"time"
)

// Region identifies one dashboard scanning region: a movement stage crossed
// with the tube / non-tube handling class.
type Region string

const (
	RegionLoadingDockTube    Region = "loading_dock_scanning_tube"
	RegionLoadingDockNonTube Region = "loading_dock_scanning_non_tube"
	RegionScanningRMSTube    Region = "scanning_rms_tube"
	RegionScanningRMSNonTube Region = "scanning_rms_non_tube"
	RegionRMSSupermarketTube Region = "rms_supermarket_tube"
	RegionRMSSupermarketNT   Region = "rms_supermarket_non_tube"
)

// Regions lists all scanning regions in dashboard order.
var Regions = []Region{
	RegionLoadingDockTube,
	RegionLoadingDockNonTube,
	RegionScanningRMSTube,
	RegionScanningRMSNonTube,
	RegionRMSSupermarketTube,
	RegionRMSSupermarketNT,
}

// Shift is one of the three fixed 8-hour operational windows.
type Shift string

const (
	ShiftMorning   Shift = "morning"   // 06:00-14:00
	ShiftAfternoon Shift = "afternoon" // 14:00-22:00
	ShiftNight     Shift = "night"     // 22:00-06:00, spans midnight
)

// ShiftCounts holds per-shift pallet counts.
type ShiftCounts struct {
	Morning   int `json:"morning"`
	Afternoon int `json:"afternoon"`
	Night     int `json:"night"`
}

// RegionStats is the hour histogram and shift breakdown for one scanning
// region, computed over that region's filtered subset of the derived table.
type RegionStats struct {
	Region Region      `json:"region"`
	Hourly [24]int     `json:"hourly"`
	Shifts ShiftCounts `json:"shifts"`
}

// DayBreakdown is the shift-aligned per-date summary inside a week panel.
// Counts fold the previous date's 22:00-23:59:59 night tail into this date,
// so a day here matches the operational day/night shift boundaries rather
// than raw calendar midnight.
type DayBreakdown struct {
	Date         time.Time      `json:"date"`
	TotalPallets int            `json:"total_pallets"`
	ByRegion     map[Region]int `json:"by_region"`
}

// WeekPanel groups derived records by ISO week and carries the per-date
// region breakdowns rendered as one summary panel.
type WeekPanel struct {
	Year    int             `json:"year"`
	Week    int             `json:"week"`
	Records []DerivedRecord `json:"records"` // sorted by date ascending
	Days    []DayBreakdown  `json:"days"`    // dates ascending
}

// ReportModel is the complete, style-free result of one report generation
// run: everything the spreadsheet renderer needs, and nothing about layout.
type ReportModel struct {
	// Rows is the derived table, one row per input record, in input order.
	Rows []DerivedRecord `json:"rows"`
	// Dates is the distinct sorted list of calendar dates present.
	Dates []time.Time `json:"dates"`
	// Panels are the weekly summary panels ordered by (ISO year, ISO week).
	Panels []WeekPanel `json:"panels"`
	// RegionStats carries one histogram/shift pair per scanning region.
	RegionStats []RegionStats `json:"region_stats"`
	// TotalHourly and TotalShifts cover the whole filtered table.
	TotalHourly [24]int     `json:"total_hourly"`
	TotalShifts ShiftCounts `json:"total_shifts"`
}

// TableHeaders is the column order of the derived table as rendered in the
// "Processed" sheet. Case and order match the upstream export contract.
var TableHeaders = []string{
	"Fetch Station",
	"Deliver Station",
	"Date",
	"Start Time",
	"Fetch Time",
	"Delivery Time",
	"Start Time No-Date",
	"Fetch Time No-Date",
	"Delivery Time No-Date",
	"Delivery Time - Fetch Time No-Date",
	"Delivery Time - Start Time No-Date",
}
