package attendance

import (
	"database/sql"
	"encoding/json"
	"time"
)

type Activity string

const (
	ActivityBreak   Activity = "break"
	ActivityMeeting Activity = "meeting"
)

type State string

const (
	StateNotStarted State = "NOT_STARTED"
	StateInProgress State = "IN_PROGRESS"
	StateCompleted  State = "COMPLETED"
)

// Phase は IN_PROGRESS 中の細分（未打刻・退勤済みでは空）
type Phase string

const (
	PhaseWorking   Phase = "WORKING"
	PhaseOnBreak   Phase = "ON_BREAK"
	PhaseInMeeting Phase = "IN_MEETING"
)

// Interval は休憩または会議の1区間。EndTime == nil なら進行中。
type Interval struct {
	Activity  Activity   `json:"activity"`
	StartTime time.Time  `json:"start_time"`
	EndTime   *time.Time `json:"end_time,omitempty"`
}

func (i Interval) Open() bool { return i.EndTime == nil }

// Duration: 進行中の区間は until までで数える
func (i Interval) Duration(until time.Time) time.Duration {
	end := until
	if i.EndTime != nil {
		end = *i.EndTime
	}
	if end.Before(i.StartTime) {
		return 0
	}
	return end.Sub(i.StartTime)
}

// LocationEntry: 出退勤時に受理した座標（監査・ジオフェンス異議用）
type LocationEntry struct {
	Action         ActionKind `json:"action"`
	Latitude       float64    `json:"latitude"`
	Longitude      float64    `json:"longitude"`
	Accuracy       float64    `json:"accuracy"`
	Verified       bool       `json:"verified"`
	DistanceMeters *float64   `json:"distance_meters,omitempty"`
	CapturedAt     time.Time  `json:"captured_at"`
}

// Record は (employee, 日付) ごとに1行の勤怠。Status は ClockIn/ClockOut から導出する。
type Record struct {
	AttendanceID string
	EmployeeID   string
	WorkDate     time.Time // 従業員のタイムゾーンでの 0:00
	TimeZone     string
	ClockIn      *time.Time
	ClockOut     *time.Time
	Intervals    []Interval
	TotalHours   *float64
	LocationLog  []LocationEntry
	Version      int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (r *Record) clone() *Record {
	if r == nil {
		return nil
	}
	c := *r
	c.ClockIn = copyTime(r.ClockIn)
	c.ClockOut = copyTime(r.ClockOut)
	if r.TotalHours != nil {
		h := *r.TotalHours
		c.TotalHours = &h
	}
	if r.Intervals != nil {
		c.Intervals = make([]Interval, len(r.Intervals))
		for i, iv := range r.Intervals {
			iv.EndTime = copyTime(iv.EndTime)
			c.Intervals[i] = iv
		}
	}
	if r.LocationLog != nil {
		c.LocationLog = make([]LocationEntry, len(r.LocationLog))
		copy(c.LocationLog, r.LocationLog)
	}
	return &c
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

// DB行に対応（スキャン用）
type attendanceRow struct {
	AttendanceID string
	EmployeeID   string
	WorkDate     string // DATE → "YYYY-MM-DD"
	TimeZone     string
	ClockIn      sql.NullTime
	ClockOut     sql.NullTime
	Intervals    []byte
	TotalHours   sql.NullFloat64
	LocationLog  []byte
	Version      int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (r attendanceRow) toModel() (Record, error) {
	loc, err := time.LoadLocation(r.TimeZone)
	if err != nil {
		loc = time.UTC
	}
	day, err := time.ParseInLocation(DateLayout, r.WorkDate, loc)
	if err != nil {
		return Record{}, err
	}

	rec := Record{
		AttendanceID: r.AttendanceID,
		EmployeeID:   r.EmployeeID,
		WorkDate:     day,
		TimeZone:     r.TimeZone,
		Version:      r.Version,
		CreatedAt:    r.CreatedAt.UTC(),
		UpdatedAt:    r.UpdatedAt.UTC(),
	}
	if r.ClockIn.Valid {
		t := r.ClockIn.Time.UTC()
		rec.ClockIn = &t
	}
	if r.ClockOut.Valid {
		t := r.ClockOut.Time.UTC()
		rec.ClockOut = &t
	}
	if r.TotalHours.Valid {
		h := r.TotalHours.Float64
		rec.TotalHours = &h
	}
	if len(r.Intervals) > 0 {
		if err := json.Unmarshal(r.Intervals, &rec.Intervals); err != nil {
			return Record{}, err
		}
	}
	if len(r.LocationLog) > 0 {
		if err := json.Unmarshal(r.LocationLog, &rec.LocationLog); err != nil {
			return Record{}, err
		}
	}
	return rec, nil
}

func (r Record) toDTO() AttendanceResponse {
	breaks := r.Intervals
	if breaks == nil {
		breaks = []Interval{}
	}
	locs := r.LocationLog
	if locs == nil {
		locs = []LocationEntry{}
	}
	return AttendanceResponse{
		AttendanceID: r.AttendanceID,
		EmployeeID:   r.EmployeeID,
		Date:         r.WorkDate.Format(DateLayout),
		TimeZone:     r.TimeZone,
		ClockIn:      r.ClockIn,
		ClockOut:     r.ClockOut,
		Breaks:       breaks,
		TotalHours:   r.TotalHours,
		LocationLog:  locs,
		Status:       CurrentState(&r),
		Version:      r.Version,
	}
}
