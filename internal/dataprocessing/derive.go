package dataprocessing

import (
	"fmt"
	"time"

	"rmspulse/pkg/contracts/domain"
)

const secondsPerDay = 24 * 60 * 60

// TimeOfDayFraction converts a timestamp's time-of-day into a fraction of a
// day in [0,1), the "No-Date" representation used by the report columns.
func TimeOfDayFraction(t time.Time) float64 {
	return float64(t.Hour()*3600+t.Minute()*60+t.Second()) / secondsPerDay
}

// Derive computes the timing columns for one activity record: the calendar
// date (from the fetch event), the three no-date fractions, and the two
// stage gaps. Absent inputs propagate to absent outputs.
func Derive(rec domain.ActivityRecord) domain.DerivedRecord {
	out := domain.DerivedRecord{ActivityRecord: rec}

	if rec.FetchTime != nil {
		d := time.Date(rec.FetchTime.Year(), rec.FetchTime.Month(), rec.FetchTime.Day(),
			0, 0, 0, 0, rec.FetchTime.Location())
		out.Date = &d
	}

	out.StartFrac = optionalFraction(rec.StartTime)
	out.FetchFrac = optionalFraction(rec.FetchTime)
	out.DeliveryFrac = optionalFraction(rec.DeliveryTime)

	out.DeliveryFetchGap = gapBetween(rec.DeliveryTime, rec.FetchTime)
	out.DeliveryStartGap = gapBetween(rec.DeliveryTime, rec.StartTime)

	return out
}

// DeriveAll maps Derive over a batch, preserving input order.
func DeriveAll(records []domain.ActivityRecord) []domain.DerivedRecord {
	out := make([]domain.DerivedRecord, len(records))
	for i, rec := range records {
		out[i] = Derive(rec)
	}
	return out
}

func optionalFraction(t *time.Time) *float64 {
	if t == nil {
		return nil
	}
	f := TimeOfDayFraction(*t)
	return &f
}

// gapBetween computes later minus earlier on time-of-day only, adding 24h
// when the later clock reads before the earlier one (overnight spans). Gaps
// longer than 24h are not representable and fold into the 0-24h range.
func gapBetween(later, earlier *time.Time) *string {
	if later == nil || earlier == nil {
		return nil
	}

	laterSec := later.Hour()*3600 + later.Minute()*60 + later.Second()
	earlierSec := earlier.Hour()*3600 + earlier.Minute()*60 + earlier.Second()
	if laterSec < earlierSec {
		laterSec += secondsPerDay
	}

	s := FormatGap(laterSec - earlierSec)
	return &s
}

// FormatGap renders an elapsed duration in seconds as "MM:SS" with minutes
// deliberately uncapped: a 90 minute gap is "90:00", not "01:30:00". The
// report consumers read the minute column as total elapsed minutes.
func FormatGap(totalSeconds int) string {
	return fmt.Sprintf("%02d:%02d", totalSeconds/60, totalSeconds%60)
}
