package domain

import (
	"time"
)

// ActivityRecord is one AGV movement row as parsed from a spreadsheet export.
// Timestamps are optional because the upstream exports mix formats and leave
// cells blank; a nil pointer means the field could not be parsed.
// Records are immutable once parsed.
type ActivityRecord struct {
	FetchStation   string     `json:"fetch_station"`
	DeliverStation string     `json:"deliver_station"`
	StartTime      *time.Time `json:"start_time,omitempty"`
	FetchTime      *time.Time `json:"fetch_time,omitempty"`
	DeliveryTime   *time.Time `json:"delivery_time,omitempty"`
}

// StoredRecord is the full row shape persisted by the ETL upload: the
// movement fields plus the inventory columns of the source sheet.
type StoredRecord struct {
	ID             int64      `json:"id" db:"id"`
	PC             string     `json:"pc" db:"pc"`
	MC             string     `json:"mc" db:"mc"`
	MaterialDesc   string     `json:"material_desc" db:"material_desc"`
	Vendor         string     `json:"vendor" db:"vendor"`
	Quantity       float64    `json:"quantity" db:"quantity" validate:"min=0"`
	UOM            string     `json:"uom" db:"uom"`
	Batch          string     `json:"batch" db:"batch"`
	PalletID       string     `json:"pallet_id" db:"pallet_id"`
	MfgDate        *time.Time `json:"mfg_date,omitempty" db:"mfg_date"`
	ExpDate        *time.Time `json:"exp_date,omitempty" db:"exp_date"`
	FetchStation   string     `json:"fetch_station" db:"fetch_station" validate:"omitempty,station"`
	DeliverStation string     `json:"deliver_station" db:"deliver_station" validate:"omitempty,station"`
	StartTime      *time.Time `json:"start_time,omitempty" db:"start_time"`
	FetchTime      *time.Time `json:"fetch_time,omitempty" db:"fetch_time"`
	DeliveryTime   *time.Time `json:"delivery_time,omitempty" db:"delivery_time"`
}

// DerivedRecord is an ActivityRecord enriched with the timing columns of the
// processed report. Fractions are time-of-day as a fraction of a day in
// [0,1); gap strings are "MM:SS" with minutes uncapped (a 90 minute gap is
// "90:00"). A nil pointer means the source timestamp was absent.
type DerivedRecord struct {
	ActivityRecord

	// Date is the calendar date of the fetch event, date-only.
	Date *time.Time `json:"date,omitempty"`

	StartFrac    *float64 `json:"start_time_no_date,omitempty"`
	FetchFrac    *float64 `json:"fetch_time_no_date,omitempty"`
	DeliveryFrac *float64 `json:"delivery_time_no_date,omitempty"`

	// DeliveryFetchGap is delivery minus fetch; DeliveryStartGap is delivery
	// minus start. Both are corrected by +24h when the later time-of-day is
	// numerically smaller (overnight spans).
	DeliveryFetchGap *string `json:"delivery_fetch_gap,omitempty"`
	DeliveryStartGap *string `json:"delivery_start_gap,omitempty"`
}
