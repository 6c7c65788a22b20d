package attendance

import (
	"time"

	"HRM-backend/internal/geo"
)

// Apply validates a against rec and, when legal, mutates rec in place.
// rec is never touched when an error is returned.
func Apply(rec *Record, a Action, at time.Time, loc geo.VerifiedLocation) error {
	if err := check(rec, a); err != nil {
		return err
	}

	switch a := a.(type) {
	case ClockIn:
		rec.ClockIn = &at
		rec.LocationLog = append(rec.LocationLog, newLocationEntry(a.Kind(), at, loc))
	case ClockOut:
		rec.ClockOut = &at
		h := workedHours(rec)
		rec.TotalHours = &h
		rec.LocationLog = append(rec.LocationLog, newLocationEntry(a.Kind(), at, loc))
	case StartInterval:
		rec.Intervals = append(rec.Intervals, Interval{Activity: a.Activity, StartTime: at})
	case EndInterval:
		i := openIndex(rec)
		end := at
		rec.Intervals[i].EndTime = &end
	}
	return nil
}

// check: 遷移の可否のみ判定する（副作用なし）
func check(rec *Record, a Action) error {
	state := CurrentState(rec)

	switch a := a.(type) {
	case ClockIn:
		switch state {
		case StateInProgress:
			return ErrAlreadyClockedIn
		case StateCompleted:
			return ErrAlreadyCompleted
		}
		return nil

	case ClockOut:
		if err := requireInProgress(state); err != nil {
			return err
		}
		if openIndex(rec) >= 0 {
			return ErrOpenBreakPending
		}
		return nil

	case StartInterval:
		if err := requireInProgress(state); err != nil {
			return err
		}
		if openIndex(rec) >= 0 {
			return ErrIntervalAlreadyOpen
		}
		return nil

	case EndInterval:
		if err := requireInProgress(state); err != nil {
			return err
		}
		i := openIndex(rec)
		if i < 0 {
			return ErrNoOpenInterval
		}
		if open := rec.Intervals[i].Activity; open != a.Activity {
			return errActivityMismatch(open)
		}
		return nil

	default:
		return ErrInvalid("unsupported action")
	}
}

func requireInProgress(s State) error {
	switch s {
	case StateNotStarted:
		return ErrNotClockedIn
	case StateCompleted:
		return ErrAlreadyCompleted
	}
	return nil
}

// LegalActions は現在の記録から受け付け可能な操作を導出する
func LegalActions(rec *Record) []ActionKind {
	out := make([]ActionKind, 0, 2)
	for _, a := range allActions {
		if check(rec, a) == nil {
			out = append(out, a.Kind())
		}
	}
	return out
}

// openIndex: 終了していない区間の位置（なければ -1）
func openIndex(rec *Record) int {
	if rec == nil {
		return -1
	}
	for i := len(rec.Intervals) - 1; i >= 0; i-- {
		if rec.Intervals[i].Open() {
			return i
		}
	}
	return -1
}

// workedHours = (clockOut - clockIn) - Σ区間
func workedHours(rec *Record) float64 {
	worked := rec.ClockOut.Sub(*rec.ClockIn)
	for _, iv := range rec.Intervals {
		worked -= iv.Duration(*rec.ClockOut)
	}
	return worked.Hours()
}

func newLocationEntry(kind ActionKind, at time.Time, loc geo.VerifiedLocation) LocationEntry {
	return LocationEntry{
		Action:         kind,
		Latitude:       loc.Latitude,
		Longitude:      loc.Longitude,
		Accuracy:       loc.Accuracy,
		Verified:       loc.Verified,
		DistanceMeters: loc.DistanceMeters,
		CapturedAt:     at,
	}
}
