package attendance

import "time"

// Ledger is the read-only daily summary derived from a record.
type Ledger struct {
	State          State        `json:"state"`
	Phase          Phase        `json:"phase,omitempty"`
	ActiveInterval *Interval    `json:"active_interval"`
	ClockIn        *time.Time   `json:"clock_in"`
	ClockOut       *time.Time   `json:"clock_out"`
	ElapsedSeconds int64        `json:"elapsed_seconds"`
	BreakSeconds   int64        `json:"break_seconds"`
	MeetingSeconds int64        `json:"meeting_seconds"`
	TotalHours     *float64     `json:"total_hours"`
	LegalActions   []ActionKind `json:"legal_actions"`
	ComputedAt     time.Time    `json:"computed_at"`
}

func CurrentState(rec *Record) State {
	switch {
	case rec == nil || rec.ClockIn == nil:
		return StateNotStarted
	case rec.ClockOut != nil:
		return StateCompleted
	default:
		return StateInProgress
	}
}

// ActiveInterval returns a copy of the open break/meeting, or nil.
func ActiveInterval(rec *Record) *Interval {
	i := openIndex(rec)
	if i < 0 {
		return nil
	}
	iv := rec.Intervals[i]
	return &iv
}

func CurrentPhase(rec *Record) Phase {
	if CurrentState(rec) != StateInProgress {
		return ""
	}
	iv := ActiveInterval(rec)
	switch {
	case iv == nil:
		return PhaseWorking
	case iv.Activity == ActivityMeeting:
		return PhaseInMeeting
	default:
		return PhaseOnBreak
	}
}

// ElapsedWorkingTime: IN_PROGRESS のときだけ now - clockIn。蓄積はしない。
func ElapsedWorkingTime(rec *Record, now time.Time) time.Duration {
	if CurrentState(rec) != StateInProgress {
		return 0
	}
	d := now.Sub(*rec.ClockIn)
	if d < 0 {
		return 0
	}
	return d
}

// IntervalTotals sums break and meeting time; an open interval counts up to now.
func IntervalTotals(rec *Record, now time.Time) (breaks, meetings time.Duration) {
	if rec == nil {
		return 0, 0
	}
	until := now
	if rec.ClockOut != nil {
		until = *rec.ClockOut
	}
	for _, iv := range rec.Intervals {
		switch iv.Activity {
		case ActivityMeeting:
			meetings += iv.Duration(until)
		default:
			breaks += iv.Duration(until)
		}
	}
	return breaks, meetings
}

func BuildLedger(rec *Record, now time.Time) Ledger {
	breaks, meetings := IntervalTotals(rec, now)
	l := Ledger{
		State:          CurrentState(rec),
		Phase:          CurrentPhase(rec),
		ActiveInterval: ActiveInterval(rec),
		ElapsedSeconds: int64(ElapsedWorkingTime(rec, now) / time.Second),
		BreakSeconds:   int64(breaks / time.Second),
		MeetingSeconds: int64(meetings / time.Second),
		LegalActions:   LegalActions(rec),
		ComputedAt:     now,
	}
	if rec != nil {
		l.ClockIn = copyTime(rec.ClockIn)
		l.ClockOut = copyTime(rec.ClockOut)
		if rec.TotalHours != nil {
			h := *rec.TotalHours
			l.TotalHours = &h
		}
	}
	return l
}
