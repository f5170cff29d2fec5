package database

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/Bebel19/rugby-wheelchair-backend/pkg/models"
	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newMockManager(t *testing.T) (*DatabaseManager, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewDatabaseManagerFromDB(db, zap.NewNop()), mock
}

func TestStoreShockReading_Commits(t *testing.T) {
	dm, mock := newMockManager(t)
	ts := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	reading := &models.ShockReading{
		SensorID:      "s1",
		AccelX:        1.0,
		AccelY:        0.2,
		AccelZ:        9.8,
		ShockDetected: true,
		Timestamp:     ts,
	}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO shock_readings")).
		WithArgs(sqlmock.AnyArg(), "s1", 1.0, 0.2, 9.8, true, ts).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	require.NoError(t, dm.StoreShockReading(context.Background(), reading))
	assert.NotEqual(t, uuid.Nil, reading.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreShockReading_RollsBackOnFailure(t *testing.T) {
	dm, mock := newMockManager(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO shock_readings")).
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err := dm.StoreShockReading(context.Background(), &models.ShockReading{SensorID: "s1", Timestamp: time.Now()})
	require.Error(t, err)
	assert.True(t, IsPersistenceError(err))
	assert.Contains(t, err.Error(), "disk full")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreEnvironmentReading_CommitFailure(t *testing.T) {
	dm, mock := newMockManager(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO environment_readings")).
		WithArgs(sqlmock.AnyArg(), "s1", 22.5, 40.0, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit().WillReturnError(errors.New("connection reset"))

	err := dm.StoreEnvironmentReading(context.Background(), &models.EnvironmentReading{
		SensorID:    "s1",
		Temperature: 22.5,
		Humidity:    40.0,
		Timestamp:   time.Now(),
	})

	var pe *PersistenceError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "store environment reading", pe.Op)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetShockReadings_FilteredBySensor(t *testing.T) {
	dm, mock := newMockManager(t)
	ts := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	id := uuid.New()

	rows := sqlmock.NewRows([]string{"id", "sensor_id", "accel_x", "accel_y", "accel_z", "shock_detected", "recorded_at"}).
		AddRow(id.String(), "s1", 1.0, 0.2, 9.8, true, ts)

	mock.ExpectQuery(regexp.QuoteMeta("FROM shock_readings WHERE sensor_id = $1 ORDER BY seq ASC")).
		WithArgs("s1").
		WillReturnRows(rows)

	readings, err := dm.GetShockReadings(context.Background(), "s1")
	require.NoError(t, err)
	require.Len(t, readings, 1)
	assert.Equal(t, id, readings[0].ID)
	assert.Equal(t, 9.8, readings[0].AccelZ)
	assert.True(t, readings[0].ShockDetected)
	assert.True(t, readings[0].Timestamp.Equal(ts))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetEnvironmentReadings_AllSensors(t *testing.T) {
	dm, mock := newMockManager(t)

	rows := sqlmock.NewRows([]string{"id", "sensor_id", "temperature", "humidity", "recorded_at"})
	mock.ExpectQuery(regexp.QuoteMeta("FROM environment_readings ORDER BY seq ASC")).
		WillReturnRows(rows)

	readings, err := dm.GetEnvironmentReadings(context.Background(), "")
	require.NoError(t, err)
	assert.NotNil(t, readings)
	assert.Empty(t, readings)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetSensorIDs(t *testing.T) {
	dm, mock := newMockManager(t)

	rows := sqlmock.NewRows([]string{"sensor_id"}).AddRow("s1").AddRow("s2")
	mock.ExpectQuery("SELECT sensor_id FROM shock_readings\\s+UNION").WillReturnRows(rows)

	sensors, err := dm.GetSensorIDs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"s1", "s2"}, sensors)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetSensorIDs_QueryError(t *testing.T) {
	dm, mock := newMockManager(t)

	mock.ExpectQuery("SELECT sensor_id").WillReturnError(errors.New("boom"))

	_, err := dm.GetSensorIDs(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to query sensors")
}

func TestConfig_DSN(t *testing.T) {
	cfg := Config{Host: "db", Port: "5432", User: "u", Password: "p", Name: "rugby", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=rugby sslmode=disable", cfg.DSN())
}

func TestStoreShockReading_Integration(t *testing.T) {
	dm := setupTestDatabaseManager(t)
	if dm == nil {
		t.Skip("Skipping test that requires real database connection")
	}
	defer dm.Close()

	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)

	for i := 0; i < 3; i++ {
		err := dm.StoreShockReading(ctx, &models.ShockReading{
			SensorID:  "s1",
			AccelX:    float64(i),
			Timestamp: now.Add(time.Duration(i) * time.Second),
		})
		if err != nil {
			t.Fatalf("Failed to store shock reading %d: %v", i, err)
		}
	}
	if err := dm.StoreEnvironmentReading(ctx, &models.EnvironmentReading{SensorID: "s2", Timestamp: now}); err != nil {
		t.Fatalf("Failed to store environment reading: %v", err)
	}

	readings, err := dm.GetShockReadings(ctx, "s1")
	if err != nil {
		t.Fatalf("Failed to get shock readings: %v", err)
	}
	if len(readings) != 3 {
		t.Fatalf("Expected 3 readings, got %d", len(readings))
	}
	for i, r := range readings {
		if r.AccelX != float64(i) {
			t.Errorf("Expected insertion order, reading %d has accelX=%f", i, r.AccelX)
		}
	}

	sensors, err := dm.GetSensorIDs(ctx)
	if err != nil {
		t.Fatalf("Failed to get sensors: %v", err)
	}
	if len(sensors) != 2 {
		t.Errorf("Expected 2 sensors, got %v", sensors)
	}
}
