package employee

import (
	"database/sql"
	"time"

	"HRM-backend/internal/geo"
)

// Profile は勤怠コアが参照する従業員情報
type Profile struct {
	EmployeeID  string
	DisplayName string
	TimeZone    string
	Location    *time.Location
	Policy      geo.Policy
}

// DB行に対応（スキャン用）
type employeeRow struct {
	EmployeeID    string
	DisplayName   string
	TimeZone      sql.NullString
	GeoEnabled    bool
	WorkLatitude  sql.NullFloat64
	WorkLongitude sql.NullFloat64
	WorkRadiusM   sql.NullFloat64
	UpdatedAt     time.Time
}

func (r employeeRow) policy() geo.Policy {
	return geo.Policy{
		Latitude:     r.WorkLatitude.Float64,
		Longitude:    r.WorkLongitude.Float64,
		RadiusMeters: r.WorkRadiusM.Float64,
		Enabled:      r.GeoEnabled,
	}
}

func (r employeeRow) toDTO() WorkLocationResponse {
	p := r.policy()
	return WorkLocationResponse{
		EmployeeID:   r.EmployeeID,
		Latitude:     p.Latitude,
		Longitude:    p.Longitude,
		RadiusMeters: p.RadiusMeters,
		Enabled:      p.Enabled,
		TimeZone:     r.TimeZone.String,
		UpdatedAt:    r.UpdatedAt.UTC(),
	}
}
