package employee

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"HRM-backend/internal/geo"
	"HRM-backend/internal/platform/db"
	"HRM-backend/internal/platform/sentinel"
)

type profileStore interface {
	GetByID(ctx context.Context, id string) (*employeeRow, error)
	UpdateWorkLocation(ctx context.Context, id string, p geo.Policy, tz *string) error
}

type Store struct{ db db.DBTX }

func NewStore(conn db.DBTX) *Store { return &Store{db: conn} }

// GetByID: 見つからなければ (nil, nil)
func (s *Store) GetByID(ctx context.Context, id string) (*employeeRow, error) {
	const q = `
	SELECT employee_id, display_name, time_zone, geo_enabled,
	       work_latitude, work_longitude, work_radius_m, updated_at
	FROM employees
	WHERE employee_id = ?
	LIMIT 1`

	var r employeeRow
	err := s.db.QueryRowContext(ctx, q, id).Scan(
		&r.EmployeeID,
		&r.DisplayName,
		&r.TimeZone,
		&r.GeoEnabled,
		&r.WorkLatitude,
		&r.WorkLongitude,
		&r.WorkRadiusM,
		&r.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// UpdateWorkLocation: updated_at を必ず更新するので RowsAffected=0 は行なし
func (s *Store) UpdateWorkLocation(ctx context.Context, id string, p geo.Policy, tz *string) error {
	const q = `
	UPDATE employees
	SET geo_enabled = ?, work_latitude = ?, work_longitude = ?, work_radius_m = ?,
	    time_zone = COALESCE(?, time_zone), updated_at = UTC_TIMESTAMP(6)
	WHERE employee_id = ?`

	var zone any
	if tz != nil {
		zone = *tz
	}
	res, err := s.db.ExecContext(ctx, q, p.Enabled, p.Latitude, p.Longitude, p.RadiusMeters, zone, id)
	if err != nil {
		return err
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if aff == 0 {
		return fmt.Errorf("employee %s: %w", id, sentinel.ErrNotFound)
	}
	return nil
}
