package employee

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"HRM-backend/internal/geo"
	"HRM-backend/internal/platform/sentinel"
)

type memProfiles struct {
	rows map[string]*employeeRow
	err  error
}

func (m *memProfiles) GetByID(_ context.Context, id string) (*employeeRow, error) {
	if m.err != nil {
		return nil, m.err
	}
	r, ok := m.rows[id]
	if !ok {
		return nil, nil
	}
	cp := *r
	return &cp, nil
}

func (m *memProfiles) UpdateWorkLocation(_ context.Context, id string, p geo.Policy, tz *string) error {
	if m.err != nil {
		return m.err
	}
	r, ok := m.rows[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	r.GeoEnabled = p.Enabled
	r.WorkLatitude = sql.NullFloat64{Float64: p.Latitude, Valid: true}
	r.WorkLongitude = sql.NullFloat64{Float64: p.Longitude, Valid: true}
	r.WorkRadiusM = sql.NullFloat64{Float64: p.RadiusMeters, Valid: true}
	if tz != nil {
		r.TimeZone = sql.NullString{String: *tz, Valid: true}
	}
	return nil
}

func newProfiles() *memProfiles {
	return &memProfiles{rows: map[string]*employeeRow{
		"E001": {
			EmployeeID:    "E001",
			DisplayName:   "Sato",
			TimeZone:      sql.NullString{String: "Asia/Tokyo", Valid: true},
			GeoEnabled:    true,
			WorkLatitude:  sql.NullFloat64{Float64: 35.681236, Valid: true},
			WorkLongitude: sql.NullFloat64{Float64: 139.767125, Valid: true},
			WorkRadiusM:   sql.NullFloat64{Float64: 150, Valid: true},
		},
		"E002": {EmployeeID: "E002", DisplayName: "Suzuki"},
		"E003": {EmployeeID: "E003", TimeZone: sql.NullString{String: "Mars/Olympus", Valid: true}},
	}}
}

func newTestService(t *testing.T, store profileStore) *Service {
	t.Helper()
	svc, err := NewService(store, "UTC")
	require.NoError(t, err)
	return svc
}

func TestNewServiceRejectsBadZone(t *testing.T) {
	_, err := NewService(newProfiles(), "Nowhere/Land")
	assert.Error(t, err)
}

func TestResolve(t *testing.T) {
	svc := newTestService(t, newProfiles())
	ctx := context.Background()

	t.Run("policy and zone", func(t *testing.T) {
		p, err := svc.Resolve(ctx, "E001")
		require.NoError(t, err)
		assert.Equal(t, "Asia/Tokyo", p.TimeZone)
		assert.Equal(t, "Asia/Tokyo", p.Location.String())
		assert.Equal(t, geo.Policy{Latitude: 35.681236, Longitude: 139.767125, RadiusMeters: 150, Enabled: true}, p.Policy)
	})

	t.Run("no zone falls back to default", func(t *testing.T) {
		p, err := svc.Resolve(ctx, "E002")
		require.NoError(t, err)
		assert.Equal(t, time.UTC, p.Location)
		assert.False(t, p.Policy.Enabled)
	})

	t.Run("invalid zone falls back to default", func(t *testing.T) {
		p, err := svc.Resolve(ctx, "E003")
		require.NoError(t, err)
		assert.Equal(t, "UTC", p.TimeZone)
	})

	t.Run("unknown employee", func(t *testing.T) {
		_, err := svc.Resolve(ctx, "E999")
		assert.ErrorIs(t, err, ErrUnknownEmployee)
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})

	t.Run("store failure is not unknown", func(t *testing.T) {
		store := newProfiles()
		store.err = errors.New("db down")
		_, err := newTestService(t, store).Resolve(ctx, "E001")
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrUnknownEmployee)
	})
}

func TestUpdateWorkLocation(t *testing.T) {
	ctx := context.Background()
	enabled, disabled := true, false

	t.Run("updates policy and zone", func(t *testing.T) {
		svc := newTestService(t, newProfiles())
		tz := "Europe/Berlin"
		res, err := svc.UpdateWorkLocation(ctx, "E002", UpdateWorkLocationRequest{
			Latitude: 52.52, Longitude: 13.405, RadiusMeters: 80, Enabled: &enabled, TimeZone: &tz,
		})
		require.NoError(t, err)
		assert.True(t, res.Enabled)
		assert.Equal(t, 80.0, res.RadiusMeters)
		assert.Equal(t, "Europe/Berlin", res.TimeZone)

		p, err := svc.Resolve(ctx, "E002")
		require.NoError(t, err)
		assert.Equal(t, "Europe/Berlin", p.TimeZone)
	})

	t.Run("disabled policy may have zero radius", func(t *testing.T) {
		svc := newTestService(t, newProfiles())
		_, err := svc.UpdateWorkLocation(ctx, "E001", UpdateWorkLocationRequest{Enabled: &disabled})
		require.NoError(t, err)
	})

	t.Run("validation", func(t *testing.T) {
		svc := newTestService(t, newProfiles())
		bad := "Mars/Olympus"
		cases := []UpdateWorkLocationRequest{
			{Latitude: 91, Longitude: 0, RadiusMeters: 10, Enabled: &enabled},
			{Latitude: 0, Longitude: -181, RadiusMeters: 10, Enabled: &enabled},
			{Latitude: 0, Longitude: 0, RadiusMeters: 0, Enabled: &enabled},
			{Latitude: 0, Longitude: 0, RadiusMeters: -5, Enabled: &disabled},
			{Latitude: 0, Longitude: 0, RadiusMeters: 10, Enabled: &enabled, TimeZone: &bad},
		}
		for _, req := range cases {
			_, err := svc.UpdateWorkLocation(ctx, "E001", req)
			var api *APIError
			require.ErrorAs(t, err, &api)
			assert.Equal(t, CodeInvalidArgument, api.Code)
		}
	})

	t.Run("unknown employee", func(t *testing.T) {
		svc := newTestService(t, newProfiles())
		_, err := svc.UpdateWorkLocation(ctx, "E999", UpdateWorkLocationRequest{Latitude: 1, Longitude: 1, RadiusMeters: 10, Enabled: &enabled})
		var api *APIError
		require.ErrorAs(t, err, &api)
		assert.Equal(t, CodeNotFound, api.Code)
	})
}
