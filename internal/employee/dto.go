package employee

import "time"

type WorkLocationResponse struct {
	EmployeeID   string    `json:"employee_id"`
	Latitude     float64   `json:"latitude"`
	Longitude    float64   `json:"longitude"`
	RadiusMeters float64   `json:"radius_meters"`
	Enabled      bool      `json:"enabled"`
	TimeZone     string    `json:"timezone,omitempty"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type UpdateWorkLocationRequest struct {
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	RadiusMeters float64 `json:"radius_meters"`
	Enabled      *bool   `json:"enabled" binding:"required"`
	TimeZone     *string `json:"timezone,omitempty"` // IANA 名。未指定なら変更しない
}
