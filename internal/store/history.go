// Package store provides SQLite-backed forecast history.
package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/theirongolddev/demandcast/internal/model"

	_ "modernc.org/sqlite" // register sqlite driver
)

// ErrNotFound is returned when no stored forecast matches an ID.
var ErrNotFound = errors.New("forecast not found")

// timeLayout is fixed-width so created_at sorts correctly as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// MinIDPrefix is the shortest ID prefix Get accepts.
const MinIDPrefix = 4

// Store provides SQLite-backed forecast history.
type Store struct {
	db *sql.DB
}

// Open opens or creates the history database at the given path.
func Open(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating history dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=foreign_keys(on)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening history db: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the history database.
func (s *Store) Close() error {
	return s.db.Close()
}

// FileInfo holds the tracked mtime and size for a file.
type FileInfo struct {
	MtimeNs    int64
	SizeBytes  int64
	ForecastID string
}

// GetTrackedFiles returns a map of file_path -> FileInfo for all tracked files.
func (s *Store) GetTrackedFiles() (map[string]FileInfo, error) {
	rows, err := s.db.Query("SELECT file_path, mtime_ns, size_bytes, forecast_id FROM file_tracker")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	result := make(map[string]FileInfo)
	for rows.Next() {
		var path string
		var fi FileInfo
		var id sql.NullString
		if err := rows.Scan(&path, &fi.MtimeNs, &fi.SizeBytes, &id); err != nil {
			return nil, err
		}
		fi.ForecastID = id.String
		result[path] = fi
	}
	return result, rows.Err()
}

// SaveForecast stores rec, assigning an ID and creation time when unset.
// The record is updated in place.
func (s *Store) SaveForecast(rec *model.ForecastRecord) error {
	return s.save(rec, "", FileInfo{})
}

// SaveFileForecast stores rec and records filePath's mtime and size so an
// unchanged file can be skipped next time.
func (s *Store) SaveFileForecast(rec *model.ForecastRecord, filePath string, mtimeNs, sizeBytes int64) error {
	return s.save(rec, filePath, FileInfo{MtimeNs: mtimeNs, SizeBytes: sizeBytes})
}

// TrackFailedFile records filePath's mtime and size with no forecast so a
// file that could not be forecast is only retried once it changes.
func (s *Store) TrackFailedFile(filePath string, mtimeNs, sizeBytes int64) error {
	_, err := s.db.Exec(`INSERT OR REPLACE INTO file_tracker (file_path, mtime_ns, size_bytes, forecast_id)
		VALUES (?, ?, ?, NULL)`, filePath, mtimeNs, sizeBytes)
	return err
}

func (s *Store) save(rec *model.ForecastRecord, filePath string, tracked FileInfo) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	blob, err := json.Marshal(rec.Result)
	if err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var seed sql.NullInt64
	if rec.Seed != nil {
		seed = sql.NullInt64{Int64: int64(*rec.Seed), Valid: true}
	}
	r := rec.Result
	_, err = tx.Exec(`INSERT OR REPLACE INTO forecasts
		(id, created_at, source, model, seed, row_count, predicted_units, confidence,
		 sales_trend, peak_period, accuracy, f1_score, mae, rmse, r_squared, result_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.CreatedAt.UTC().Format(timeLayout), rec.Source, rec.Model, seed, rec.Rows,
		r.PredictedUnits, r.Confidence, r.SalesTrend, r.PeakDemandPeriod,
		r.Accuracy, r.F1Score, r.MAE, r.RMSE, r.RSquared, string(blob),
	)
	if err != nil {
		return err
	}

	// Replace the per-period rows
	if _, err = tx.Exec("DELETE FROM forecast_points WHERE forecast_id = ?", rec.ID); err != nil {
		return err
	}
	for i, p := range r.Forecast {
		_, err = tx.Exec(`INSERT INTO forecast_points (forecast_id, idx, period, predicted)
			VALUES (?, ?, ?, ?)`, rec.ID, i, p.Month, p.Predicted)
		if err != nil {
			return err
		}
	}

	if filePath != "" {
		_, err = tx.Exec(`INSERT OR REPLACE INTO file_tracker (file_path, mtime_ns, size_bytes, forecast_id)
			VALUES (?, ?, ?, ?)`, filePath, tracked.MtimeNs, tracked.SizeBytes, rec.ID)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

const selectForecast = `SELECT id, created_at, source, model, seed, row_count, result_json FROM forecasts`

func scanRecord(scan func(...any) error) (model.ForecastRecord, error) {
	var (
		rec     model.ForecastRecord
		created string
		seed    sql.NullInt64
		blob    string
	)
	if err := scan(&rec.ID, &created, &rec.Source, &rec.Model, &seed, &rec.Rows, &blob); err != nil {
		return rec, err
	}
	rec.CreatedAt, _ = time.Parse(timeLayout, created)
	if seed.Valid {
		v := uint64(seed.Int64)
		rec.Seed = &v
	}
	if err := json.Unmarshal([]byte(blob), &rec.Result); err != nil {
		return rec, fmt.Errorf("decoding forecast %s: %w", rec.ID, err)
	}
	return rec, nil
}

// GetForecast returns the forecast whose ID equals id, or whose ID starts
// with id when id is at least MinIDPrefix characters and unambiguous.
func (s *Store) GetForecast(id string) (model.ForecastRecord, error) {
	id = strings.TrimSpace(id)
	rec, err := scanRecord(s.db.QueryRow(selectForecast+" WHERE id = ?", id).Scan)
	if err == nil {
		return rec, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return rec, err
	}
	if len(id) < MinIDPrefix {
		return model.ForecastRecord{}, ErrNotFound
	}

	rows, err := s.db.Query(selectForecast+" WHERE id LIKE ? ESCAPE '\\' LIMIT 2", escapeLike(id)+"%")
	if err != nil {
		return model.ForecastRecord{}, err
	}
	defer func() { _ = rows.Close() }()

	var matches []model.ForecastRecord
	for rows.Next() {
		rec, err := scanRecord(rows.Scan)
		if err != nil {
			return model.ForecastRecord{}, err
		}
		matches = append(matches, rec)
	}
	if err := rows.Err(); err != nil {
		return model.ForecastRecord{}, err
	}
	switch len(matches) {
	case 0:
		return model.ForecastRecord{}, ErrNotFound
	case 1:
		return matches[0], nil
	}
	return model.ForecastRecord{}, fmt.Errorf("id prefix %q is ambiguous", id)
}

// Latest returns the most recently created forecast.
func (s *Store) Latest() (model.ForecastRecord, error) {
	rec, err := scanRecord(s.db.QueryRow(selectForecast + " ORDER BY created_at DESC, rowid DESC LIMIT 1").Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return rec, ErrNotFound
	}
	return rec, err
}

// Resolve looks up "latest" or an ID (or ID prefix).
func (s *Store) Resolve(ref string) (model.ForecastRecord, error) {
	if ref == "" || strings.EqualFold(ref, "latest") {
		return s.Latest()
	}
	return s.GetForecast(ref)
}

// ListOptions filters ListForecasts. Zero values mean no filter.
type ListOptions struct {
	Model  string
	Source string
	Since  time.Time
	Limit  int
}

// ListForecasts returns stored forecasts, newest first.
func (s *Store) ListForecasts(opts ListOptions) ([]model.ForecastRecord, error) {
	var (
		where []string
		args  []any
	)
	if opts.Model != "" {
		where = append(where, "model = ?")
		args = append(args, opts.Model)
	}
	if opts.Source != "" {
		where = append(where, "source = ?")
		args = append(args, opts.Source)
	}
	if !opts.Since.IsZero() {
		where = append(where, "created_at >= ?")
		args = append(args, opts.Since.UTC().Format(timeLayout))
	}
	query := selectForecast
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC, rowid DESC"
	if opts.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", opts.Limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []model.ForecastRecord
	for rows.Next() {
		rec, err := scanRecord(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// DeleteForecast removes a forecast, its points and any file tracking
// entry pointing at it.
func (s *Store) DeleteForecast(id string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.Exec("DELETE FROM forecasts WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	if _, err := tx.Exec("DELETE FROM file_tracker WHERE forecast_id = ?", id); err != nil {
		return err
	}
	return tx.Commit()
}

// ForecastCount returns the number of stored forecasts.
func (s *Store) ForecastCount() (int, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM forecasts").Scan(&count)
	return count, err
}

// PeriodTotals sums predicted units per forecast period label across all
// stored forecasts, largest first.
func (s *Store) PeriodTotals(limit int) ([]model.ForecastPoint, error) {
	query := `SELECT period, SUM(predicted) AS total FROM forecast_points
		GROUP BY period ORDER BY total DESC, period`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}
	rows, err := s.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []model.ForecastPoint
	for rows.Next() {
		var p model.ForecastPoint
		if err := rows.Scan(&p.Month, &p.Predicted); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
