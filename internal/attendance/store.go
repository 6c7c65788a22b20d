package attendance

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"HRM-backend/internal/platform/db"
	"HRM-backend/internal/platform/sentinel"
)

const recordColumns = `
	attendance_id, employee_id, DATE_FORMAT(work_date, '%Y-%m-%d') AS work_date, time_zone,
	clock_in, clock_out, intervals, total_hours, location_log, version, created_at, updated_at`

type Store struct{ db *sql.DB }

func NewStore(conn *sql.DB) *Store { return &Store{db: conn} }

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(sc scanner) (Record, error) {
	var r attendanceRow
	if err := sc.Scan(
		&r.AttendanceID,
		&r.EmployeeID,
		&r.WorkDate,
		&r.TimeZone,
		&r.ClockIn,
		&r.ClockOut,
		&r.Intervals,
		&r.TotalHours,
		&r.LocationLog,
		&r.Version,
		&r.CreatedAt,
		&r.UpdatedAt,
	); err != nil {
		return Record{}, err
	}
	return r.toModel()
}

// FindByDay: (employee_id, work_date) で1行。なければ (nil, nil)
func (s *Store) FindByDay(ctx context.Context, employeeID string, day time.Time) (*Record, error) {
	row := s.db.QueryRowContext(ctx, `
	SELECT`+recordColumns+`
	FROM attendance_days
	WHERE employee_id = ? AND work_date = ?
	LIMIT 1`, employeeID, day.Format(DateLayout))

	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// Insert: その日最初の打刻。UNIQUE(employee_id, work_date) 違反は先を越された扱い。
func (s *Store) Insert(ctx context.Context, rec *Record) error {
	intervals, locations, err := encodeJSONColumns(rec)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
	INSERT INTO attendance_days
	  (attendance_id, employee_id, work_date, time_zone, clock_in, clock_out,
	   intervals, total_hours, location_log, version, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.AttendanceID,
		rec.EmployeeID,
		rec.WorkDate.Format(DateLayout),
		rec.TimeZone,
		nullTime(rec.ClockIn),
		nullTime(rec.ClockOut),
		intervals,
		nullFloat(rec.TotalHours),
		locations,
		rec.Version,
		rec.CreatedAt,
		rec.UpdatedAt,
	)
	if db.IsDuplicateKey(err) {
		return fmt.Errorf("attendance %s/%s already exists: %w", rec.EmployeeID, rec.WorkDate.Format(DateLayout), sentinel.ErrConflict)
	}
	return err
}

// Update: 読んだ時点の version と一致する場合のみ書き込み、成功すれば rec.Version を進める
func (s *Store) Update(ctx context.Context, rec *Record) error {
	intervals, locations, err := encodeJSONColumns(rec)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `
	UPDATE attendance_days
	SET clock_in = ?, clock_out = ?, intervals = ?, total_hours = ?, location_log = ?,
	    version = version + 1, updated_at = ?
	WHERE attendance_id = ? AND version = ?`,
		nullTime(rec.ClockIn),
		nullTime(rec.ClockOut),
		intervals,
		nullFloat(rec.TotalHours),
		locations,
		rec.UpdatedAt,
		rec.AttendanceID,
		rec.Version,
	)
	if err != nil {
		return err
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if aff == 0 {
		return fmt.Errorf("attendance %s version %d: %w", rec.AttendanceID, rec.Version, sentinel.ErrConflict)
	}
	rec.Version++
	return nil
}

// ListRecent: 新しい日付順（History のページ取得用）
func (s *Store) ListRecent(ctx context.Context, employeeID string, limit, offset int) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, `
	SELECT`+recordColumns+`
	FROM attendance_days
	WHERE employee_id = ?
	ORDER BY work_date DESC
	LIMIT ? OFFSET ?`, employeeID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// List: 条件に応じて動的WHERE + ORDER + LIMIT/OFFSET。件数と同一スナップショットで読む。
func (s *Store) List(ctx context.Context, q ListQuery) ([]Record, int64, error) {
	var (
		buf    bytes.Buffer
		args   []any
		wheres []string
	)

	buf.WriteString("SELECT" + recordColumns + "\n\tFROM attendance_days")
	// WHERE
	if q.EmployeeID != nil && *q.EmployeeID != "" {
		wheres = append(wheres, "employee_id = ?")
		args = append(args, *q.EmployeeID)
	}
	if q.From != nil && *q.From != "" {
		wheres = append(wheres, "work_date >= ?")
		args = append(args, *q.From)
	}
	if q.To != nil && *q.To != "" {
		wheres = append(wheres, "work_date <= ?")
		args = append(args, *q.To)
	}
	where := ""
	if len(wheres) > 0 {
		where = " WHERE " + strings.Join(wheres, " AND ")
	}
	buf.WriteString(where)

	// ORDER
	switch q.Sort {
	case SortWorkDateAsc:
		buf.WriteString(" ORDER BY work_date ASC, employee_id ASC")
	default:
		buf.WriteString(" ORDER BY work_date DESC, employee_id ASC")
	}

	// LIMIT/OFFSET
	limit := q.Limit
	if limit <= 0 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	buf.WriteString(fmt.Sprintf(" LIMIT %d OFFSET %d", limit, max(q.Offset, 0)))

	var (
		out   []Record
		total int64
	)
	err := db.ReadOnly(ctx, s.db, func(ctx context.Context, tx db.DBTX) error {
		rows, err := tx.QueryContext(ctx, buf.String(), args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			rec, err := scanRecord(rows)
			if err != nil {
				return err
			}
			out = append(out, rec)
		}
		if err := rows.Err(); err != nil {
			return err
		}

		// COUNT（ORDER BY より前までを再構築）
		return tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM attendance_days"+where, args...).Scan(&total)
	})
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// Stats: 期間内の退勤済み日数と合計時間をユーザ別に集計（TOP N）
func (s *Store) Stats(ctx context.Context, from, to time.Time, limit int) ([]StatsRow, error) {
	if limit <= 0 {
		limit = DefaultStatsLimit
	}
	rows, err := s.db.QueryContext(ctx, `
	SELECT employee_id, COUNT(*) AS days, COALESCE(SUM(total_hours), 0) AS hours
	FROM attendance_days
	WHERE work_date BETWEEN ? AND ?
	AND clock_out IS NOT NULL
	GROUP BY employee_id
	ORDER BY hours DESC, employee_id ASC
	LIMIT ?`, from.Format(DateLayout), to.Format(DateLayout), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []StatsRow
	for rows.Next() {
		var row StatsRow
		if err := rows.Scan(&row.EmployeeID, &row.CompletedDays, &row.TotalHours); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// ===== helpers =====

func encodeJSONColumns(rec *Record) (intervals, locations []byte, err error) {
	iv := rec.Intervals
	if iv == nil {
		iv = []Interval{}
	}
	ll := rec.LocationLog
	if ll == nil {
		ll = []LocationEntry{}
	}
	if intervals, err = json.Marshal(iv); err != nil {
		return nil, nil, err
	}
	if locations, err = json.Marshal(ll); err != nil {
		return nil, nil, err
	}
	return intervals, locations, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}
