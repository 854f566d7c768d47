package dataprocessing

import (
	"sort"
	"time"

	"rmspulse/pkg/contracts/domain"
)

// Day-shift window boundaries as no-date fractions. The day window covers
// [00:00, 22:00); the night tail of the previous date covers
// [22:00, 23:59:59] and is folded into the following date's breakdown.
var (
	dayWindowEnd   = float64(nightStart*3600) / secondsPerDay
	nightTailStart = dayWindowEnd
)

type weekKey struct {
	year int
	week int
}

// AggregateWeekly partitions derived records into per-ISO-week panels with
// per-date region breakdowns. Records without a calendar date (absent fetch
// time) are skipped. Panels come back ordered by (year, week) ascending,
// and dates ascend within each panel.
//
// The previous-date lookup uses the distinct-date list of the whole dataset,
// not just the week at hand: the first date of a week still inherits the
// night tail of the last date of the previous week.
func AggregateWeekly(records []domain.DerivedRecord) []domain.WeekPanel {
	dated := make([]domain.DerivedRecord, 0, len(records))
	for _, rec := range records {
		if rec.Date != nil {
			dated = append(dated, rec)
		}
	}
	sort.SliceStable(dated, func(i, j int) bool {
		return dated[i].Date.Before(*dated[j].Date)
	})

	prevDate := predecessorDates(dated)
	byDate := make(map[time.Time][]domain.DerivedRecord)
	for _, rec := range dated {
		byDate[*rec.Date] = append(byDate[*rec.Date], rec)
	}

	panels := make(map[weekKey]*domain.WeekPanel)
	var order []weekKey
	for _, rec := range dated {
		year, week := rec.Date.ISOWeek()
		key := weekKey{year: year, week: week}
		panel, ok := panels[key]
		if !ok {
			panel = &domain.WeekPanel{Year: year, Week: week}
			panels[key] = panel
			order = append(order, key)
		}
		panel.Records = append(panel.Records, rec)
	}

	sort.Slice(order, func(i, j int) bool {
		if order[i].year != order[j].year {
			return order[i].year < order[j].year
		}
		return order[i].week < order[j].week
	})

	out := make([]domain.WeekPanel, 0, len(order))
	for _, key := range order {
		panel := panels[key]
		panel.Days = dayBreakdowns(panel.Records, byDate, prevDate)
		out = append(out, *panel)
	}
	return out
}

// predecessorDates builds the date -> immediately preceding distinct date
// mapping over the whole sorted dataset. The earliest date has no entry.
// Precomputed once so per-date breakdowns avoid rescanning the date list.
func predecessorDates(sorted []domain.DerivedRecord) map[time.Time]time.Time {
	var distinct []time.Time
	seen := make(map[time.Time]bool)
	for _, rec := range sorted {
		if !seen[*rec.Date] {
			seen[*rec.Date] = true
			distinct = append(distinct, *rec.Date)
		}
	}

	prev := make(map[time.Time]time.Time, len(distinct))
	for i := 1; i < len(distinct); i++ {
		prev[distinct[i]] = distinct[i-1]
	}
	return prev
}

func dayBreakdowns(
	weekRecords []domain.DerivedRecord,
	byDate map[time.Time][]domain.DerivedRecord,
	prevDate map[time.Time]time.Time,
) []domain.DayBreakdown {
	var dates []time.Time
	seen := make(map[time.Time]bool)
	for _, rec := range weekRecords {
		if !seen[*rec.Date] {
			seen[*rec.Date] = true
			dates = append(dates, *rec.Date)
		}
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	days := make([]domain.DayBreakdown, 0, len(dates))
	for _, date := range dates {
		day := domain.DayBreakdown{
			Date:     date,
			ByRegion: make(map[domain.Region]int, len(domain.Regions)),
		}

		dayRecords := byDate[date]
		var tailRecords []domain.DerivedRecord
		if prev, ok := prevDate[date]; ok {
			tailRecords = byDate[prev]
		}

		day.TotalPallets = countWindow(dayRecords, 0, dayWindowEnd, nil) +
			countWindow(tailRecords, nightTailStart, 1, nil)
		for _, region := range domain.Regions {
			r := region
			day.ByRegion[region] = countWindow(dayRecords, 0, dayWindowEnd, &r) +
				countWindow(tailRecords, nightTailStart, 1, &r)
		}

		days = append(days, day)
	}
	return days
}

// countWindow counts records whose fetch time-of-day falls in [lo, hi) and,
// when region is non-nil, whose fetch station matches the region. Records
// with an absent fetch time never count.
func countWindow(records []domain.DerivedRecord, lo, hi float64, region *domain.Region) int {
	n := 0
	for _, rec := range records {
		if rec.FetchFrac == nil {
			continue
		}
		f := *rec.FetchFrac
		if f < lo || f >= hi {
			continue
		}
		if region != nil && !MatchesRegion(rec.ActivityRecord, *region) {
			continue
		}
		n++
	}
	return n
}
