package attendance

import "time"

const (
	SortWorkDateDesc  = "work_date_desc"
	SortWorkDateAsc   = "work_date_asc"
	DefaultPageLimit  = 50
	MaxPageLimit      = 200
	DefaultSort       = SortWorkDateDesc
	DefaultHistory    = 30
	MaxHistory        = 366
	DefaultStatsLimit = 10
	DateLayout        = "2006-01-02"
)

// POST /attendance
type ActionRequest struct {
	Action   string       `json:"action" binding:"required" example:"clock-in"`
	Location *LocationDTO `json:"location"`
}

type LocationDTO struct {
	Latitude  *float64 `json:"latitude" example:"35.681236"`
	Longitude *float64 `json:"longitude" example:"139.767125"`
	Accuracy  float64  `json:"accuracy" example:"12.5"`
}

type AttendanceResponse struct {
	AttendanceID string          `json:"attendance_id"`
	EmployeeID   string          `json:"employee_id"`
	Date         string          `json:"date"` // YYYY-MM-DD
	TimeZone     string          `json:"timezone"`
	ClockIn      *time.Time      `json:"clock_in"`
	ClockOut     *time.Time      `json:"clock_out"`
	Breaks       []Interval      `json:"breaks"`
	TotalHours   *float64        `json:"total_hours"`
	LocationLog  []LocationEntry `json:"location_log"`
	Status       State           `json:"status"`
	Version      int64           `json:"version"`
}

type ActionResponse struct {
	CurrentState State              `json:"current_state"`
	Ledger       Ledger             `json:"ledger"`
	Attendance   AttendanceResponse `json:"attendance"`
}

// GET /attendance
type StatusResponse struct {
	CurrentState State                `json:"current_state"`
	Ledger       Ledger               `json:"ledger"`
	TodayLog     *AttendanceResponse  `json:"today_log"`
	History      []AttendanceResponse `json:"history"`
}

type ListQuery struct {
	EmployeeID *string
	From       *string
	To         *string
	Limit      int
	Offset     int
	Sort       string
}

type ListResponse struct {
	Items []AttendanceResponse `json:"items"`
	Total int64                `json:"total"`
}

type StatsRequest struct {
	From  string // YYYY-MM-DD
	To    string // YYYY-MM-DD
	Limit int
}

type StatsRow struct {
	EmployeeID    string  `json:"employee_id"`
	CompletedDays int64   `json:"completed_days"`
	TotalHours    float64 `json:"total_hours"`
}
