package attendance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clockedIn(t *testing.T, acts ...func(*Record)) *Record {
	t.Helper()
	rec := &Record{EmployeeID: "E001", WorkDate: day0}
	require.NoError(t, Apply(rec, ClockIn{}, at(9, 0), onSite))
	for _, a := range acts {
		a(rec)
	}
	return rec
}

func step(t *testing.T, a Action, when time.Time) func(*Record) {
	return func(rec *Record) {
		require.NoError(t, Apply(rec, a, when, onSite))
	}
}

func TestCurrentState(t *testing.T) {
	assert.Equal(t, StateNotStarted, CurrentState(nil))
	assert.Equal(t, StateNotStarted, CurrentState(&Record{}))

	rec := clockedIn(t)
	assert.Equal(t, StateInProgress, CurrentState(rec))

	require.NoError(t, Apply(rec, ClockOut{}, at(17, 0), onSite))
	assert.Equal(t, StateCompleted, CurrentState(rec))
}

func TestElapsedWorkingTime(t *testing.T) {
	rec := clockedIn(t)

	assert.Equal(t, 90*time.Minute, ElapsedWorkingTime(rec, at(10, 30)))
	// 呼び出しごとに now - clockIn を計算するだけで蓄積しない
	assert.Equal(t, 90*time.Minute, ElapsedWorkingTime(rec, at(10, 30)))
	assert.Equal(t, time.Duration(0), ElapsedWorkingTime(rec, at(8, 0)))
	assert.Equal(t, time.Duration(0), ElapsedWorkingTime(nil, at(10, 0)))

	require.NoError(t, Apply(rec, ClockOut{}, at(17, 0), onSite))
	assert.Equal(t, time.Duration(0), ElapsedWorkingTime(rec, at(18, 0)))
}

func TestActiveInterval(t *testing.T) {
	rec := clockedIn(t, step(t, StartInterval{Activity: ActivityMeeting}, at(10, 0)))

	iv := ActiveInterval(rec)
	require.NotNil(t, iv)
	assert.Equal(t, ActivityMeeting, iv.Activity)
	assert.Equal(t, PhaseInMeeting, CurrentPhase(rec))

	// 返り値はコピー
	end := at(11, 0)
	iv.EndTime = &end
	assert.True(t, rec.Intervals[0].Open())

	require.NoError(t, Apply(rec, EndInterval{Activity: ActivityMeeting}, at(10, 45), onSite))
	assert.Nil(t, ActiveInterval(rec))
	assert.Equal(t, PhaseWorking, CurrentPhase(rec))
	assert.Nil(t, ActiveInterval(nil))
}

func TestIntervalTotals(t *testing.T) {
	rec := clockedIn(t,
		step(t, StartInterval{Activity: ActivityMeeting}, at(10, 0)),
		step(t, EndInterval{Activity: ActivityMeeting}, at(10, 30)),
		step(t, StartInterval{Activity: ActivityBreak}, at(12, 0)),
	)

	breaks, meetings := IntervalTotals(rec, at(12, 20))
	assert.Equal(t, 20*time.Minute, breaks)
	assert.Equal(t, 30*time.Minute, meetings)

	breaks, meetings = IntervalTotals(nil, at(12, 20))
	assert.Zero(t, breaks)
	assert.Zero(t, meetings)
}

func TestBuildLedger(t *testing.T) {
	t.Run("not started", func(t *testing.T) {
		l := BuildLedger(nil, at(8, 0))
		assert.Equal(t, StateNotStarted, l.State)
		assert.Empty(t, l.Phase)
		assert.Nil(t, l.ClockIn)
		assert.Equal(t, []ActionKind{ActionClockIn}, l.LegalActions)
	})

	t.Run("on break", func(t *testing.T) {
		rec := clockedIn(t, step(t, StartInterval{Activity: ActivityBreak}, at(12, 0)))
		l := BuildLedger(rec, at(12, 15))

		assert.Equal(t, StateInProgress, l.State)
		assert.Equal(t, PhaseOnBreak, l.Phase)
		require.NotNil(t, l.ActiveInterval)
		assert.Equal(t, ActivityBreak, l.ActiveInterval.Activity)
		assert.Equal(t, int64((3*time.Hour+15*time.Minute)/time.Second), l.ElapsedSeconds)
		assert.Equal(t, int64(15*60), l.BreakSeconds)
		assert.Nil(t, l.TotalHours)
		assert.Equal(t, []ActionKind{ActionEndBreak}, l.LegalActions)
		assert.Equal(t, at(12, 15), l.ComputedAt)
	})

	t.Run("completed", func(t *testing.T) {
		rec := clockedIn(t,
			step(t, StartInterval{Activity: ActivityBreak}, at(12, 0)),
			step(t, EndInterval{Activity: ActivityBreak}, at(12, 15)),
			step(t, ClockOut{}, at(18, 0)),
		)
		l := BuildLedger(rec, at(20, 0))

		assert.Equal(t, StateCompleted, l.State)
		assert.Zero(t, l.ElapsedSeconds)
		assert.Equal(t, int64(15*60), l.BreakSeconds)
		require.NotNil(t, l.TotalHours)
		assert.InDelta(t, 8.75, *l.TotalHours, 1e-9)
		assert.Empty(t, l.LegalActions)

		// ledger は記録と値を共有しない
		*l.TotalHours = 0
		assert.InDelta(t, 8.75, *rec.TotalHours, 1e-9)
	})
}
