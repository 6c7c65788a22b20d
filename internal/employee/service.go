package employee

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"HRM-backend/internal/geo"
	"HRM-backend/internal/platform/sentinel"
)

// ===== Error model (attendance と同型) =====
type Code string

const (
	CodeInvalidArgument Code = "INVALID_ARGUMENT"
	CodeNotFound        Code = "NOT_FOUND"
	CodeInternal        Code = "INTERNAL"
)

type APIError struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string      { return fmt.Sprintf("%s: %s", e.Code, e.Message) }
func ErrInvalid(msg string) *APIError  { return &APIError{Code: CodeInvalidArgument, Message: msg} }
func ErrNotFound(msg string) *APIError { return &APIError{Code: CodeNotFound, Message: msg} }
func ErrInternal(msg string) *APIError { return &APIError{Code: CodeInternal, Message: msg} }

// ErrUnknownEmployee は Resolve で従業員が存在しないときに返す
var ErrUnknownEmployee = fmt.Errorf("unknown employee: %w", sentinel.ErrNotFound)

func toHTTPStatus(err error) int {
	var api *APIError
	if errors.As(err, &api) {
		switch api.Code {
		case CodeInvalidArgument:
			return 400
		case CodeNotFound:
			return 404
		default:
			return 500
		}
	}
	return 500
}

// ===== Service =====

type Service struct {
	store      profileStore
	defaultLoc *time.Location
}

func NewService(store profileStore, defaultTZ string) (*Service, error) {
	loc, err := time.LoadLocation(defaultTZ)
	if err != nil {
		return nil, fmt.Errorf("invalid default timezone %q: %w", defaultTZ, err)
	}
	return &Service{store: store, defaultLoc: loc}, nil
}

// Resolve は従業員IDから勤務地ポリシーとタイムゾーンを引く
func (s *Service) Resolve(ctx context.Context, employeeID string) (Profile, error) {
	row, err := s.store.GetByID(ctx, employeeID)
	if err != nil {
		return Profile{}, err
	}
	if row == nil {
		return Profile{}, fmt.Errorf("%w: %s", ErrUnknownEmployee, employeeID)
	}

	loc := s.defaultLoc
	if row.TimeZone.Valid && row.TimeZone.String != "" {
		// 不正なゾーン名は既定値にフォールバック
		if l, err := time.LoadLocation(row.TimeZone.String); err == nil {
			loc = l
		}
	}
	return Profile{
		EmployeeID:  row.EmployeeID,
		DisplayName: row.DisplayName,
		TimeZone:    loc.String(),
		Location:    loc,
		Policy:      row.policy(),
	}, nil
}

// GET /employees/:employee_id/work-location
func (s *Service) GetWorkLocation(ctx context.Context, employeeID string) (WorkLocationResponse, error) {
	if strings.TrimSpace(employeeID) == "" {
		return WorkLocationResponse{}, ErrInvalid("employee_id is required")
	}
	row, err := s.store.GetByID(ctx, employeeID)
	if err != nil {
		return WorkLocationResponse{}, ErrInternal("failed to get employee")
	}
	if row == nil {
		return WorkLocationResponse{}, ErrNotFound("employee not found")
	}
	return row.toDTO(), nil
}

// PUT /employees/:employee_id/work-location
func (s *Service) UpdateWorkLocation(ctx context.Context, employeeID string, req UpdateWorkLocationRequest) (WorkLocationResponse, error) {
	if strings.TrimSpace(employeeID) == "" {
		return WorkLocationResponse{}, ErrInvalid("employee_id is required")
	}
	p, err := normalizePolicy(req)
	if err != nil {
		return WorkLocationResponse{}, err
	}
	if req.TimeZone != nil {
		if _, err := time.LoadLocation(*req.TimeZone); err != nil || *req.TimeZone == "" {
			return WorkLocationResponse{}, ErrInvalid("timezone must be an IANA zone name")
		}
	}

	if err := s.store.UpdateWorkLocation(ctx, employeeID, p, req.TimeZone); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return WorkLocationResponse{}, ErrNotFound("employee not found")
		}
		return WorkLocationResponse{}, ErrInternal("failed to update work location")
	}
	return s.GetWorkLocation(ctx, employeeID)
}

func normalizePolicy(req UpdateWorkLocationRequest) (geo.Policy, error) {
	p := geo.Policy{
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
		RadiusMeters: req.RadiusMeters,
		Enabled:      req.Enabled != nil && *req.Enabled,
	}
	if !geo.ValidCoordinates(p.Latitude, p.Longitude) {
		return geo.Policy{}, ErrInvalid("latitude must be within [-90,90] and longitude within [-180,180]")
	}
	if p.RadiusMeters < 0 || (p.Enabled && p.RadiusMeters == 0) {
		return geo.Policy{}, ErrInvalid("radius_meters must be > 0 when enabled")
	}
	return p, nil
}
