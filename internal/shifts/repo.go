package shifts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"maqayees/internal/domain"
)

var ErrNotFound = errors.New("shift not found")

// Repo stores shift records in the `shifts` table: the merged document as a
// JSONB body plus denormalized columns for queries like "open shift for
// driver X". Last write wins on the whole record; concurrent submissions for
// the same id are not serialized (one driver posts start then end).
type Repo struct {
	pg *pgxpool.Pool
}

func NewRepo(pg *pgxpool.Pool) *Repo {
	return &Repo{pg: pg}
}

// Load returns the stored document for id, or ErrNotFound. The JSONB
// round-trip means callers always get a private copy.
func (r *Repo) Load(ctx context.Context, id string) (*ShiftRecord, error) {
	const q = `SELECT body FROM shifts WHERE id = $1 LIMIT 1`

	var body []byte
	if err := r.pg.QueryRow(ctx, q, id).Scan(&body); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load shift %s: %w", id, err)
	}
	var rec ShiftRecord
	if err := json.Unmarshal(body, &rec); err != nil {
		return nil, fmt.Errorf("decode shift %s: %w", id, err)
	}
	return &rec, nil
}

// Persist merges one submission into the record for id and upserts the
// result together with its denormalized columns. Returns the merged record.
func (r *Repo) Persist(ctx context.Context, id string, eventType domain.EventType, idn Identity, ev ShiftEvent) (*ShiftRecord, error) {
	existing, err := r.Load(ctx, id)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	rec := Merge(existing, id, eventType, idn, ev, time.Now().UTC())

	body, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("encode shift %s: %w", id, err)
	}

	const q = `
INSERT INTO shifts (id, body, driver_id, driver_name, driver_email, driver_phone,
                    vehicle_id, vehicle_plate, project_name, is_closed, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
ON CONFLICT (id) DO UPDATE SET
    body = EXCLUDED.body,
    driver_id = EXCLUDED.driver_id,
    driver_name = EXCLUDED.driver_name,
    driver_email = EXCLUDED.driver_email,
    driver_phone = EXCLUDED.driver_phone,
    vehicle_id = EXCLUDED.vehicle_id,
    vehicle_plate = EXCLUDED.vehicle_plate,
    project_name = EXCLUDED.project_name,
    is_closed = EXCLUDED.is_closed,
    updated_at = EXCLUDED.updated_at`

	_, err = r.pg.Exec(ctx, q,
		rec.ID, body,
		nullable(rec.Driver.ID), nullable(rec.Driver.Name), nullable(rec.Driver.Email), nullable(rec.Driver.Phone),
		nullable(rec.Vehicle.ID), nullable(rec.Vehicle.Plate), nullable(rec.Vehicle.Project),
		rec.IsClosed, rec.CreatedAt, rec.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("upsert shift %s: %w", id, err)
	}
	return rec, nil
}

// FindOpenByDriver returns the most recent record for the driver that has no
// end event yet, or ErrNotFound.
func (r *Repo) FindOpenByDriver(ctx context.Context, driverID string) (*ShiftRecord, error) {
	const q = `
SELECT body FROM shifts
WHERE driver_id = $1 AND is_closed = false
ORDER BY updated_at DESC
LIMIT 1`

	var body []byte
	if err := r.pg.QueryRow(ctx, q, driverID).Scan(&body); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find open shift for driver %s: %w", driverID, err)
	}
	var rec ShiftRecord
	if err := json.Unmarshal(body, &rec); err != nil {
		return nil, fmt.Errorf("decode open shift for driver %s: %w", driverID, err)
	}
	return &rec, nil
}

// ListRecent returns up to limit records, newest first, optionally filtered
// by driver id.
func (r *Repo) ListRecent(ctx context.Context, driverID string, limit int) ([]*ShiftRecord, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	var (
		rows pgx.Rows
		err  error
	)
	if driverID != "" {
		const q = `SELECT body FROM shifts WHERE driver_id = $1 ORDER BY updated_at DESC LIMIT $2`
		rows, err = r.pg.Query(ctx, q, driverID, limit)
	} else {
		const q = `SELECT body FROM shifts ORDER BY updated_at DESC LIMIT $1`
		rows, err = r.pg.Query(ctx, q, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("list shifts: %w", err)
	}
	defer rows.Close()

	var out []*ShiftRecord
	for rows.Next() {
		var body []byte
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("scan shift row: %w", err)
		}
		var rec ShiftRecord
		if err := json.Unmarshal(body, &rec); err != nil {
			return nil, fmt.Errorf("decode shift row: %w", err)
		}
		out = append(out, &rec)
	}
	return out, rows.Err()
}

// nullable maps "" to NULL so empty identity fields never overwrite the
// denormalized columns with empty strings.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
