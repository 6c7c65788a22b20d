package attendance

import (
	"context"
	"crypto/rand"
	"errors"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"HRM-backend/internal/employee"
	"HRM-backend/internal/geo"
	"HRM-backend/internal/platform/sentinel"
)

// ===== インターフェース群 =====

type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now()
}

type IDGen interface {
	New() (string, error)
}

type ulidGen struct{}

func (ulidGen) New() (string, error) {
	t := time.Now().UTC()
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(t), entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// Directory は従業員の勤務地ポリシーとタイムゾーンを引く（employee.Service が実装）
type Directory interface {
	Resolve(ctx context.Context, employeeID string) (employee.Profile, error)
}

var _ Directory = (*employee.Service)(nil)

// Repository は1日1行の勤怠の永続化。Insert/Update は競合時 sentinel.ErrConflict（ラップ可）を返す。
type Repository interface {
	FindByDay(ctx context.Context, employeeID string, day time.Time) (*Record, error)
	Insert(ctx context.Context, rec *Record) error
	Update(ctx context.Context, rec *Record) error
	ListRecent(ctx context.Context, employeeID string, limit, offset int) ([]Record, error)
	List(ctx context.Context, q ListQuery) ([]Record, int64, error)
	Stats(ctx context.Context, from, to time.Time, limit int) ([]StatsRow, error)
}

// ===== Service本体 =====

type Service struct {
	store        Repository
	dir          Directory
	clock        Clock
	id           IDGen
	log          *zap.Logger
	metrics      *Metrics
	historyLimit int
}

func NewService(store Repository, dir Directory, log *zap.Logger, m *Metrics, historyLimit int) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	if historyLimit <= 0 {
		historyLimit = DefaultHistory
	}
	return &Service{
		store:        store,
		dir:          dir,
		clock:        realClock{},
		id:           ulidGen{},
		log:          log.Named("attendance"),
		metrics:      m,
		historyLimit: min(historyLimit, MaxHistory),
	}
}

// Perform runs the location gate, applies a to today's record and persists it.
// Nothing is written when the gate or the transition rejects the action.
func (s *Service) Perform(ctx context.Context, employeeID string, a Action, pos *geo.Position) (ActionResponse, error) {
	if a == nil {
		return ActionResponse{}, ErrInvalid("action is required")
	}
	res, err := s.perform(ctx, employeeID, a, pos)
	s.metrics.action(a.Kind(), err)
	return res, err
}

func (s *Service) perform(ctx context.Context, employeeID string, a Action, pos *geo.Position) (ActionResponse, error) {
	p, err := s.resolve(ctx, employeeID)
	if err != nil {
		return ActionResponse{}, err
	}

	loc, err := geo.Verify(pos, p.Policy)
	if err != nil {
		return ActionResponse{}, s.gateError(employeeID, a, err)
	}

	// DATETIME(6) に合わせてマイクロ秒で切る
	now := s.clock.Now().UTC().Truncate(time.Microsecond)
	day := workDay(now, p.Location)

	cur, err := s.store.FindByDay(ctx, employeeID, day)
	if err != nil {
		s.log.Error("find attendance failed", zap.String("employee_id", employeeID), zap.Error(err))
		return ActionResponse{}, ErrInternal("failed to load attendance")
	}

	next := cur.clone()
	if next == nil {
		next = &Record{EmployeeID: employeeID, WorkDate: day, TimeZone: p.TimeZone}
	}
	if err := Apply(next, a, now, loc); err != nil {
		return ActionResponse{}, err
	}
	next.UpdatedAt = now

	if cur == nil {
		id, err := s.id.New()
		if err != nil {
			s.log.Error("id generation failed", zap.Error(err))
			return ActionResponse{}, ErrInternal("failed to allocate attendance id")
		}
		next.AttendanceID = id
		next.Version = 1
		next.CreatedAt = now
		err = s.store.Insert(ctx, next)
		if err != nil {
			return ActionResponse{}, s.writeError(employeeID, err)
		}
	} else if err := s.store.Update(ctx, next); err != nil {
		return ActionResponse{}, s.writeError(employeeID, err)
	}

	s.log.Info("attendance action",
		zap.String("employee_id", employeeID),
		zap.String("action", string(a.Kind())),
		zap.String("date", day.Format(DateLayout)),
		zap.Int64("version", next.Version),
	)
	return ActionResponse{
		CurrentState: CurrentState(next),
		Ledger:       BuildLedger(next, now),
		Attendance:   next.toDTO(),
	}, nil
}

// Status returns today's ledger and the most recent records (today included).
func (s *Service) Status(ctx context.Context, employeeID string, historyLimit int) (StatusResponse, error) {
	if historyLimit <= 0 {
		historyLimit = s.historyLimit
	}
	historyLimit = min(historyLimit, MaxHistory)

	p, err := s.resolve(ctx, employeeID)
	if err != nil {
		return StatusResponse{}, err
	}
	now := s.clock.Now().UTC()
	day := workDay(now, p.Location)

	var (
		today   *Record
		history []Record
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		r, err := s.store.FindByDay(gctx, employeeID, day)
		today = r
		return err
	})
	g.Go(func() error {
		h, err := collectHistory(History(gctx, s.store, employeeID, historyLimit))
		history = h
		return err
	})
	if err := g.Wait(); err != nil {
		s.log.Error("load attendance status failed", zap.String("employee_id", employeeID), zap.Error(err))
		return StatusResponse{}, ErrInternal("failed to load attendance")
	}

	out := StatusResponse{
		CurrentState: CurrentState(today),
		Ledger:       BuildLedger(today, now),
		History:      make([]AttendanceResponse, 0, len(history)),
	}
	if today != nil {
		dto := today.toDTO()
		out.TodayLog = &dto
	}
	for _, r := range history {
		out.History = append(out.History, r.toDTO())
	}
	return out, nil
}

// GET /attendance/days
func (s *Service) List(ctx context.Context, q ListQuery) (ListResponse, error) {
	switch q.Sort {
	case "":
		q.Sort = DefaultSort
	case SortWorkDateAsc, SortWorkDateDesc:
	default:
		return ListResponse{}, ErrInvalid("order must be work_date_desc or work_date_asc")
	}
	if q.Limit <= 0 {
		q.Limit = DefaultPageLimit
	}
	if q.Limit > MaxPageLimit {
		q.Limit = MaxPageLimit
	}
	if q.Offset < 0 {
		return ListResponse{}, ErrInvalid("offset must be >= 0")
	}

	from, err := parseOptionalDate(q.From)
	if err != nil {
		return ListResponse{}, ErrInvalid("from must be YYYY-MM-DD")
	}
	to, err := parseOptionalDate(q.To)
	if err != nil {
		return ListResponse{}, ErrInvalid("to must be YYYY-MM-DD")
	}
	if from != nil && to != nil && to.Before(*from) {
		return ListResponse{}, ErrInvalid("to must be >= from")
	}

	rows, total, err := s.store.List(ctx, q)
	if err != nil {
		s.log.Error("list attendance failed", zap.Error(err))
		return ListResponse{}, ErrInternal("failed to list attendance")
	}
	out := ListResponse{Items: make([]AttendanceResponse, 0, len(rows)), Total: total}
	for i := 0; i < len(rows); i++ {
		out.Items = append(out.Items, rows[i].toDTO())
	}
	return out, nil
}

// GET /attendance/stats
func (s *Service) Stats(ctx context.Context, req StatsRequest) ([]StatsRow, error) {
	from, err := time.ParseInLocation(DateLayout, req.From, time.UTC)
	if err != nil {
		return nil, ErrInvalid("from must be YYYY-MM-DD")
	}
	to, err := time.ParseInLocation(DateLayout, req.To, time.UTC)
	if err != nil {
		return nil, ErrInvalid("to must be YYYY-MM-DD")
	}
	if to.Before(from) {
		return nil, ErrInvalid("to must be >= from")
	}
	if req.Limit <= 0 {
		req.Limit = DefaultStatsLimit
	}
	req.Limit = min(req.Limit, MaxPageLimit)

	rows, err := s.store.Stats(ctx, from, to, req.Limit)
	if err != nil {
		s.log.Error("attendance stats failed", zap.Error(err))
		return nil, ErrInternal("failed to aggregate attendance")
	}
	if rows == nil {
		rows = []StatsRow{}
	}
	return rows, nil
}

// ===== helpers =====

func (s *Service) resolve(ctx context.Context, employeeID string) (employee.Profile, error) {
	if strings.TrimSpace(employeeID) == "" {
		return employee.Profile{}, ErrInvalid("employee_id is required")
	}
	p, err := s.dir.Resolve(ctx, employeeID)
	if err != nil {
		if errors.Is(err, employee.ErrUnknownEmployee) {
			return employee.Profile{}, ErrNotFound("employee not found")
		}
		s.log.Error("resolve employee failed", zap.String("employee_id", employeeID), zap.Error(err))
		return employee.Profile{}, ErrInternal("failed to resolve employee")
	}
	if p.Location == nil {
		p.Location = time.UTC
		p.TimeZone = time.UTC.String()
	}
	return p, nil
}

func (s *Service) gateError(employeeID string, a Action, err error) error {
	var oor *geo.OutOfRangeError
	switch {
	case errors.As(err, &oor):
		s.metrics.geofence(CodeOutOfRange)
		s.log.Info("attendance rejected outside work location",
			zap.String("employee_id", employeeID),
			zap.String("action", string(a.Kind())),
			zap.Float64("distance_m", oor.DistanceMeters),
			zap.Float64("radius_m", oor.RadiusMeters),
		)
		return ErrOutOfRange(oor.DistanceMeters, oor.RadiusMeters)
	case errors.Is(err, geo.ErrLocationUnavailable):
		s.metrics.geofence(CodeLocationUnavailable)
		return ErrLocationUnavailable
	default:
		s.log.Error("location gate failed", zap.Error(err))
		return ErrInternal("failed to verify location")
	}
}

func (s *Service) writeError(employeeID string, err error) error {
	if errors.Is(err, sentinel.ErrConflict) {
		s.log.Warn("attendance write conflict", zap.String("employee_id", employeeID), zap.Error(err))
		return ErrConcurrentModification
	}
	s.log.Error("save attendance failed", zap.String("employee_id", employeeID), zap.Error(err))
	return ErrInternal("failed to save attendance")
}

// workDay: 従業員のタイムゾーンでの暦日の 0:00
func workDay(now time.Time, loc *time.Location) time.Time {
	y, m, d := now.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

func parseOptionalDate(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(DateLayout, *s, time.UTC)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
