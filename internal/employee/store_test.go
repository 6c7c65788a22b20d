package employee

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"HRM-backend/internal/geo"
	"HRM-backend/internal/platform/sentinel"
)

func TestStore(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()
	store := NewStore(conn)
	ctx := context.Background()
	cols := []string{"employee_id", "display_name", "time_zone", "geo_enabled", "work_latitude", "work_longitude", "work_radius_m", "updated_at"}

	t.Run("get by id", func(t *testing.T) {
		mock.ExpectQuery(`FROM employees\s+WHERE employee_id = \?`).
			WithArgs("E001").
			WillReturnRows(sqlmock.NewRows(cols).
				AddRow("E001", "Sato", "Asia/Tokyo", true, 35.68, 139.76, 100.0, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)))

		row, err := store.GetByID(ctx, "E001")
		require.NoError(t, err)
		require.NotNil(t, row)
		assert.Equal(t, geo.Policy{Latitude: 35.68, Longitude: 139.76, RadiusMeters: 100, Enabled: true}, row.policy())
		assert.Equal(t, "Asia/Tokyo", row.TimeZone.String)
	})

	t.Run("null policy columns", func(t *testing.T) {
		mock.ExpectQuery(`FROM employees`).
			WithArgs("E002").
			WillReturnRows(sqlmock.NewRows(cols).
				AddRow("E002", "Suzuki", nil, false, nil, nil, nil, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)))

		row, err := store.GetByID(ctx, "E002")
		require.NoError(t, err)
		assert.False(t, row.TimeZone.Valid)
		assert.Equal(t, geo.Policy{}, row.policy())
	})

	t.Run("missing", func(t *testing.T) {
		mock.ExpectQuery(`FROM employees`).WithArgs("E999").WillReturnRows(sqlmock.NewRows(cols))

		row, err := store.GetByID(ctx, "E999")
		require.NoError(t, err)
		assert.Nil(t, row)
	})

	t.Run("update keeps zone when nil", func(t *testing.T) {
		mock.ExpectExec(`UPDATE employees`).
			WithArgs(true, 35.0, 139.0, 50.0, nil, "E001").
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := store.UpdateWorkLocation(ctx, "E001", geo.Policy{Latitude: 35, Longitude: 139, RadiusMeters: 50, Enabled: true}, nil)
		require.NoError(t, err)
	})

	t.Run("update missing row", func(t *testing.T) {
		mock.ExpectExec(`UPDATE employees`).WillReturnResult(sqlmock.NewResult(0, 0))

		err := store.UpdateWorkLocation(ctx, "E999", geo.Policy{}, nil)
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})

	require.NoError(t, mock.ExpectationsWereMet())
}
