package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"rmspulse/pkg/contracts/domain"
)

const activityTable = "activity_records"

// timeLayout is the column encoding for every timestamp column. SQLite has
// no native time type; lexicographic order of this layout matches time order.
const timeLayout = "2006-01-02 15:04:05"

var (
	// ErrDuplicateStartTime marks an insert rejected by the start-time
	// uniqueness constraint.
	ErrDuplicateStartTime = errors.New("record with this start time already exists")
	// ErrNotFound marks a lookup or delete that matched no record.
	ErrNotFound = errors.New("record not found")
)

// BatchResult summarizes one bulk upload.
type BatchResult struct {
	Inserted   int `json:"inserted"`
	Skipped    int `json:"skipped"`
	Duplicates int `json:"duplicates"`
}

// ActivityStore persists ETL activity records in a SQLite database. Start
// times are unique across the table; the batch loader treats conflicts as
// duplicates rather than errors.
type ActivityStore struct {
	db *sql.DB
}

// Open opens (creating if needed) the SQLite database at path.
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", path, err)
	}
	// modernc.org/sqlite serializes writes itself; a single connection
	// avoids SQLITE_BUSY under concurrent handlers.
	db.SetMaxOpenConns(1)
	return db, nil
}

// NewActivityStore creates the store and ensures its schema.
func NewActivityStore(db *sql.DB) (*ActivityStore, error) {
	if db == nil {
		return nil, fmt.Errorf("db is nil")
	}
	if err := ensureSchema(db); err != nil {
		return nil, err
	}
	return &ActivityStore{db: db}, nil
}

func ensureSchema(db *sql.DB) error {
	stmts := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			pc TEXT NOT NULL DEFAULT '',
			mc TEXT NOT NULL DEFAULT '',
			material_desc TEXT NOT NULL DEFAULT '',
			vendor TEXT NOT NULL DEFAULT '',
			quantity REAL NOT NULL DEFAULT 0,
			uom TEXT NOT NULL DEFAULT '',
			batch TEXT NOT NULL DEFAULT '',
			pallet_id TEXT NOT NULL DEFAULT '',
			mfg_date TEXT,
			exp_date TEXT,
			fetch_station TEXT NOT NULL DEFAULT '',
			deliver_station TEXT NOT NULL DEFAULT '',
			start_time TEXT NOT NULL,
			fetch_time TEXT,
			delivery_time TEXT,
			UNIQUE(start_time)
		);`, activityTable),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%s_fetch_station ON %s(fetch_station);`,
			activityTable, activityTable),
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to ensure schema: %w", err)
		}
	}
	return nil
}

// Insert stores one record and returns its assigned id. A record without a
// start time is rejected, as is one whose start time is already stored.
func (s *ActivityStore) Insert(ctx context.Context, rec domain.StoredRecord) (int64, error) {
	if rec.StartTime == nil {
		return 0, fmt.Errorf("record has no start time")
	}

	res, err := s.db.ExecContext(ctx, fmt.Sprintf(`INSERT INTO %s (
		pc, mc, material_desc, vendor, quantity, uom, batch, pallet_id,
		mfg_date, exp_date, fetch_station, deliver_station,
		start_time, fetch_time, delivery_time
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, activityTable),
		rec.PC, rec.MC, rec.MaterialDesc, rec.Vendor, rec.Quantity, rec.UOM,
		rec.Batch, rec.PalletID,
		encodeTime(rec.MfgDate), encodeTime(rec.ExpDate),
		rec.FetchStation, rec.DeliverStation,
		rec.StartTime.Format(timeLayout),
		encodeTime(rec.FetchTime), encodeTime(rec.DeliveryTime),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, ErrDuplicateStartTime
		}
		return 0, fmt.Errorf("failed to insert record: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read inserted id: %w", err)
	}
	return id, nil
}

// SaveBatch loads a parsed sheet. Records without a start time are skipped,
// records whose start time is already stored count as duplicates, and the
// rest are inserted. The batch never fails part-way on dedup conflicts.
func (s *ActivityStore) SaveBatch(ctx context.Context, records []domain.StoredRecord) (BatchResult, error) {
	var result BatchResult
	for _, rec := range records {
		if rec.StartTime == nil {
			result.Skipped++
			continue
		}
		_, err := s.Insert(ctx, rec)
		switch {
		case err == nil:
			result.Inserted++
		case errors.Is(err, ErrDuplicateStartTime):
			result.Duplicates++
		default:
			return result, err
		}
	}
	return result, nil
}

// ListSince returns records whose start time is at or after the cutoff,
// ordered by start time ascending.
func (s *ActivityStore) ListSince(ctx context.Context, cutoff time.Time) ([]domain.StoredRecord, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`SELECT
		id, pc, mc, material_desc, vendor, quantity, uom, batch, pallet_id,
		mfg_date, exp_date, fetch_station, deliver_station,
		start_time, fetch_time, delivery_time
	FROM %s WHERE start_time >= ? ORDER BY start_time`, activityTable),
		cutoff.Format(timeLayout))
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer rows.Close()

	var records []domain.StoredRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate records: %w", err)
	}
	return records, nil
}

// Get returns one record by id.
func (s *ActivityStore) Get(ctx context.Context, id int64) (domain.StoredRecord, error) {
	row := s.db.QueryRowContext(ctx, fmt.Sprintf(`SELECT
		id, pc, mc, material_desc, vendor, quantity, uom, batch, pallet_id,
		mfg_date, exp_date, fetch_station, deliver_station,
		start_time, fetch_time, delivery_time
	FROM %s WHERE id = ?`, activityTable), id)

	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.StoredRecord{}, ErrNotFound
	}
	return rec, err
}

// Delete removes one record by id.
func (s *ActivityStore) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx,
		fmt.Sprintf("DELETE FROM %s WHERE id = ?", activityTable), id)
	if err != nil {
		return fmt.Errorf("failed to delete record %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read delete result: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Count returns the total number of stored records.
func (s *ActivityStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		fmt.Sprintf("SELECT COUNT(*) FROM %s", activityTable)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count records: %w", err)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (domain.StoredRecord, error) {
	var (
		rec                               domain.StoredRecord
		mfg, exp, start, fetch, delivered sql.NullString
	)
	err := row.Scan(
		&rec.ID, &rec.PC, &rec.MC, &rec.MaterialDesc, &rec.Vendor,
		&rec.Quantity, &rec.UOM, &rec.Batch, &rec.PalletID,
		&mfg, &exp, &rec.FetchStation, &rec.DeliverStation,
		&start, &fetch, &delivered,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return rec, err
		}
		return rec, fmt.Errorf("failed to scan record: %w", err)
	}

	rec.MfgDate = decodeTime(mfg)
	rec.ExpDate = decodeTime(exp)
	rec.StartTime = decodeTime(start)
	rec.FetchTime = decodeTime(fetch)
	rec.DeliveryTime = decodeTime(delivered)
	return rec, nil
}

func encodeTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format(timeLayout)
}

func decodeTime(s sql.NullString) *time.Time {
	if !s.Valid || s.String == "" {
		return nil
	}
	t, err := time.Parse(timeLayout, s.String)
	if err != nil {
		return nil
	}
	return &t
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
