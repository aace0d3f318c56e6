package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrNotFound is returned when no row exists for a capture.
var ErrNotFound = errors.New("capture not found")

const recordColumns = `id, capture_name, timestamp, sensor, status, output_path, ndvi705,
    error_message, request_id, created_at, updated_at`

// Save inserts or replaces the row for rec.CaptureName. CreatedAt survives
// re-processing; UpdatedAt is always refreshed.
func (s *Store) Save(ctx context.Context, rec Record) error {
	if strings.TrimSpace(rec.CaptureName) == "" {
		return errors.New("capture name required")
	}
	if rec.Status == "" {
		rec.Status = StatusProcessing
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)

	var ndvi any
	if rec.NDVI705 != nil {
		ndvi = *rec.NDVI705
	}

	return retryOnBusy(ctx, func() error {
		_, err := s.db.ExecContext(ctx, `
INSERT INTO captures (capture_name, timestamp, sensor, status, output_path, ndvi705,
    error_message, request_id, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(capture_name) DO UPDATE SET
    timestamp = excluded.timestamp,
    sensor = excluded.sensor,
    status = excluded.status,
    output_path = excluded.output_path,
    ndvi705 = excluded.ndvi705,
    error_message = excluded.error_message,
    request_id = excluded.request_id,
    updated_at = excluded.updated_at`,
			rec.CaptureName,
			nullableString(rec.Timestamp),
			nullableString(rec.Sensor),
			string(rec.Status),
			nullableString(rec.OutputPath),
			ndvi,
			nullableString(rec.ErrorMessage),
			nullableString(rec.RequestID),
			now,
			now,
		)
		if err != nil {
			return fmt.Errorf("save capture %q: %w", rec.CaptureName, err)
		}
		return nil
	})
}

// Get returns the row for a capture name.
func (s *Store) Get(ctx context.Context, captureName string) (*Record, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+recordColumns+" FROM captures WHERE capture_name = ?", captureName)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get capture %q: %w", captureName, err)
	}
	return rec, nil
}

// IsProcessed reports whether the capture completed successfully before.
func (s *Store) IsProcessed(ctx context.Context, captureName string) (bool, error) {
	rec, err := s.Get(ctx, captureName)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return rec.Status == StatusCompleted, nil
}

// List returns rows newest first, optionally filtered by status.
func (s *Store) List(ctx context.Context, statuses ...Status) ([]Record, error) {
	query := "SELECT " + recordColumns + " FROM captures"
	args := make([]any, 0, len(statuses))
	if len(statuses) > 0 {
		placeholders := make([]string, len(statuses))
		for i, status := range statuses {
			placeholders[i] = "?"
			args = append(args, string(status))
		}
		query += " WHERE status IN (" + strings.Join(placeholders, ",") + ")"
	}
	query += " ORDER BY updated_at DESC, id DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list captures: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan capture: %w", err)
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}

func scanRecord(scanner interface{ Scan(dest ...any) error }) (*Record, error) {
	var (
		rec                                   Record
		timestamp, sensor, output, errMsg, rq sql.NullString
		ndvi                                  sql.NullFloat64
		status, created, updated              string
	)
	if err := scanner.Scan(&rec.ID, &rec.CaptureName, &timestamp, &sensor, &status, &output, &ndvi,
		&errMsg, &rq, &created, &updated); err != nil {
		return nil, err
	}
	rec.Timestamp = timestamp.String
	rec.Sensor = sensor.String
	rec.Status = Status(status)
	rec.OutputPath = output.String
	rec.ErrorMessage = errMsg.String
	rec.RequestID = rq.String
	if ndvi.Valid {
		value := ndvi.Float64
		rec.NDVI705 = &value
	}
	rec.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
	rec.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updated)
	return &rec, nil
}

func nullableString(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}
