package dataprocessing

import (
	"rmspulse/pkg/contracts/domain"
)

// Shift window boundaries, in hours.
const (
	morningStart   = 6
	afternoonStart = 14
	nightStart     = 22
)

// HourOf assigns a no-date time fraction to an hour bucket 0..23. Buckets
// 0..22 are half-open [h:00, h+1:00); bucket 23 is closed at 23:59:59, the
// largest representable time-of-day. Returns false for a nil (absent) input,
// which contributes to no bucket.
func HourOf(frac *float64) (int, bool) {
	if frac == nil {
		return 0, false
	}
	sec := int(*frac * secondsPerDay)
	if sec < 0 || sec > secondsPerDay-1 {
		return 0, false
	}
	return sec / 3600, true
}

// ShiftOf maps an hour bucket to its operational shift: morning 06-14,
// afternoon 14-22, night otherwise (22-06, spanning midnight).
func ShiftOf(hour int) domain.Shift {
	switch {
	case hour >= morningStart && hour < afternoonStart:
		return domain.ShiftMorning
	case hour >= afternoonStart && hour < nightStart:
		return domain.ShiftAfternoon
	default:
		return domain.ShiftNight
	}
}

// countShift increments the matching field of a ShiftCounts.
func countShift(c *domain.ShiftCounts, s domain.Shift) {
	switch s {
	case domain.ShiftMorning:
		c.Morning++
	case domain.ShiftAfternoon:
		c.Afternoon++
	case domain.ShiftNight:
		c.Night++
	}
}
