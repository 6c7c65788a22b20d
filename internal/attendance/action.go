package attendance

import "strings"

type ActionKind string

const (
	ActionClockIn      ActionKind = "clock-in"
	ActionClockOut     ActionKind = "clock-out"
	ActionStartBreak   ActionKind = "start-break"
	ActionEndBreak     ActionKind = "end-break"
	ActionStartMeeting ActionKind = "start-meeting"
	ActionEndMeeting   ActionKind = "end-meeting"
)

// Action は打刻操作の閉じた集合。Apply の型スイッチで網羅的に処理する。
type Action interface {
	Kind() ActionKind
	sealed()
}

type ClockIn struct{}

type ClockOut struct{}

type StartInterval struct{ Activity Activity }

type EndInterval struct{ Activity Activity }

func (ClockIn) Kind() ActionKind  { return ActionClockIn }
func (ClockOut) Kind() ActionKind { return ActionClockOut }

func (a StartInterval) Kind() ActionKind {
	if a.Activity == ActivityMeeting {
		return ActionStartMeeting
	}
	return ActionStartBreak
}

func (a EndInterval) Kind() ActionKind {
	if a.Activity == ActivityMeeting {
		return ActionEndMeeting
	}
	return ActionEndBreak
}

func (ClockIn) sealed()       {}
func (ClockOut) sealed()      {}
func (StartInterval) sealed() {}
func (EndInterval) sealed()   {}

// allActions: LegalActions が評価する順
var allActions = []Action{
	ClockIn{},
	ClockOut{},
	StartInterval{Activity: ActivityBreak},
	EndInterval{Activity: ActivityBreak},
	StartInterval{Activity: ActivityMeeting},
	EndInterval{Activity: ActivityMeeting},
}

// ParseAction は wire 上の action 名を Action に変換する
func ParseAction(s string) (Action, error) {
	switch ActionKind(strings.TrimSpace(strings.ToLower(s))) {
	case ActionClockIn:
		return ClockIn{}, nil
	case ActionClockOut:
		return ClockOut{}, nil
	case ActionStartBreak:
		return StartInterval{Activity: ActivityBreak}, nil
	case ActionEndBreak:
		return EndInterval{Activity: ActivityBreak}, nil
	case ActionStartMeeting:
		return StartInterval{Activity: ActivityMeeting}, nil
	case ActionEndMeeting:
		return EndInterval{Activity: ActivityMeeting}, nil
	}
	return nil, ErrInvalid("action must be one of clock-in, clock-out, start-break, end-break, start-meeting, end-meeting")
}
