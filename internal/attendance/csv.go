package attendance

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"
)

const (
	FormatJSON = "json"
	FormatCSV  = "csv"

	csvTimeLayout = "2006-01-02 15:04"
)

var csvHeader = []string{"従業員ID", "勤務日", "タイムゾーン", "出勤", "退勤", "休憩(分)", "会議(分)", "実働(時間)", "状態"}

// writeCSVcp932: 給与・人事システム取り込み用。Excel の「ANSI（CP932）」で開ける形にする
func writeCSVcp932(items []AttendanceResponse) ([]byte, error) {
	var b bytes.Buffer
	tw := transform.NewWriter(&b, japanese.ShiftJIS.NewEncoder())
	w := csv.NewWriter(tw)

	if err := w.Write(csvHeader); err != nil {
		return nil, err
	}
	for _, it := range items {
		if err := w.Write(csvRecord(it)); err != nil {
			return nil, fmt.Errorf("csv row %s/%s: %w", it.EmployeeID, it.Date, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	if err := tw.Close(); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

func csvRecord(it AttendanceResponse) []string {
	loc, err := time.LoadLocation(it.TimeZone)
	if err != nil {
		loc = time.UTC
	}
	// 集計済みの区間のみ（進行中は含めない）
	var breaks, meetings time.Duration
	for _, iv := range it.Breaks {
		if iv.Open() {
			continue
		}
		switch iv.Activity {
		case ActivityBreak:
			breaks += iv.Duration(*iv.EndTime)
		case ActivityMeeting:
			meetings += iv.Duration(*iv.EndTime)
		}
	}
	hours := ""
	if it.TotalHours != nil {
		hours = strconv.FormatFloat(*it.TotalHours, 'f', 2, 64)
	}
	return []string{
		it.EmployeeID,
		it.Date,
		it.TimeZone,
		csvTime(it.ClockIn, loc),
		csvTime(it.ClockOut, loc),
		strconv.FormatInt(int64(breaks/time.Minute), 10),
		strconv.FormatInt(int64(meetings/time.Minute), 10),
		hours,
		string(it.Status),
	}
}

func csvTime(t *time.Time, loc *time.Location) string {
	if t == nil {
		return ""
	}
	return t.In(loc).Format(csvTimeLayout)
}
