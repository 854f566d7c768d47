package dataprocessing

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"time"

	"rmspulse/pkg/contracts/domain"
)

// MovementMarker identifies rows that describe a recognized pallet movement.
// Rows whose fetch station lacks it are dropped before any derivation.
const MovementMarker = "Pallet GR"

// ErrEmptyAfterFilter is returned when no input row carries the movement
// marker. Callers decide whether that is an error or a no-op; it never
// aborts the process.
var ErrEmptyAfterFilter = errors.New("no rows remain after movement marker filter")

// Assembler turns a parsed activity table into a ReportModel. It owns the
// whole derivation pipeline; rendering stays in the exporter.
type Assembler struct {
	logger *slog.Logger
}

// NewAssembler creates a report assembler.
func NewAssembler(logger *slog.Logger) *Assembler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Assembler{logger: logger}
}

// Assemble filters, derives and aggregates one batch of activity records
// into the complete report model. Each call works on its own copies; there
// is no shared state between concurrent runs.
func (a *Assembler) Assemble(ctx context.Context, records []domain.ActivityRecord) (*domain.ReportModel, error) {
	a.logger.InfoContext(ctx, "assembling report model",
		slog.Int("input_rows", len(records)))

	// The marker gates the whole run: a batch with no recognized movement
	// rows yields the sentinel instead of an empty report. Rows without the
	// marker still appear in the table once the gate passes.
	if len(FilterMovements(records)) == 0 {
		a.logger.WarnContext(ctx, "no rows carry the movement marker",
			slog.String("marker", MovementMarker))
		return nil, ErrEmptyAfterFilter
	}

	derived := DeriveAll(records)

	model := &domain.ReportModel{
		Rows:   derived,
		Dates:  distinctDates(derived),
		Panels: AggregateWeekly(derived),
	}

	for _, region := range domain.Regions {
		stats := domain.RegionStats{Region: region}
		for _, rec := range derived {
			if !MatchesRegion(rec.ActivityRecord, region) {
				continue
			}
			hour, ok := HourOf(rec.FetchFrac)
			if !ok {
				continue
			}
			stats.Hourly[hour]++
			countShift(&stats.Shifts, ShiftOf(hour))
		}
		model.RegionStats = append(model.RegionStats, stats)
	}

	for _, rec := range derived {
		hour, ok := HourOf(rec.FetchFrac)
		if !ok {
			continue
		}
		model.TotalHourly[hour]++
		countShift(&model.TotalShifts, ShiftOf(hour))
	}

	a.logger.InfoContext(ctx, "report model assembled",
		slog.Int("rows", len(model.Rows)),
		slog.Int("dates", len(model.Dates)),
		slog.Int("panels", len(model.Panels)))

	return model, nil
}

// FilterMovements keeps only rows whose fetch station carries the movement
// marker, case-insensitively.
func FilterMovements(records []domain.ActivityRecord) []domain.ActivityRecord {
	out := make([]domain.ActivityRecord, 0, len(records))
	for _, rec := range records {
		if containsFold(rec.FetchStation, MovementMarker) {
			out = append(out, rec)
		}
	}
	return out
}

func distinctDates(records []domain.DerivedRecord) []time.Time {
	seen := make(map[time.Time]bool)
	var dates []time.Time
	for _, rec := range records {
		if rec.Date != nil && !seen[*rec.Date] {
			seen[*rec.Date] = true
			dates = append(dates, *rec.Date)
		}
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates
}
