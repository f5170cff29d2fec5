package timeline

import (
	"bytes"
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/Bebel19/rugby-wheelchair-backend/pkg/database"
	"github.com/Bebel19/rugby-wheelchair-backend/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

var base = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

func seed(t *testing.T, shocks []models.ShockReading, env []models.EnvironmentReading) *database.MemoryStore {
	t.Helper()
	store := database.NewMemoryStore()
	ctx := context.Background()
	for i := range shocks {
		require.NoError(t, store.StoreShockReading(ctx, &shocks[i]))
	}
	for i := range env {
		require.NoError(t, store.StoreEnvironmentReading(ctx, &env[i]))
	}
	return store
}

func TestReconcile_ShockThenEnvironment(t *testing.T) {
	store := seed(t,
		[]models.ShockReading{{SensorID: "s1", AccelX: 1.0, AccelY: 0.2, AccelZ: 9.8, ShockDetected: true, Timestamp: base}},
		[]models.EnvironmentReading{{SensorID: "s1", Temperature: 22.5, Humidity: 40.0, Timestamp: base.Add(5 * time.Second)}},
	)

	points, err := NewReconciler(store).Reconcile(context.Background(), "s1")
	require.NoError(t, err)
	require.Len(t, points, 2)

	first, second := points[0], points[1]
	require.NotNil(t, first.Shock)
	assert.Equal(t, 1, *first.Shock)
	assert.Nil(t, first.Temperature)
	assert.Nil(t, first.Humidity)

	assert.Nil(t, second.Shock)
	require.NotNil(t, second.Temperature)
	assert.Equal(t, 22.5, *second.Temperature)
	assert.Equal(t, 40.0, *second.Humidity)
	assert.Equal(t, "2024-03-01 10:00:05", second.Timestamp)
}

func TestReconcile_UnknownSensor(t *testing.T) {
	store := seed(t, []models.ShockReading{{SensorID: "s1", Timestamp: base}}, nil)

	points, err := NewReconciler(store).Reconcile(context.Background(), "no-such-sensor")
	require.NoError(t, err)
	assert.NotNil(t, points)
	assert.Empty(t, points)
}

func TestReconcile_FiltersBySensor(t *testing.T) {
	store := seed(t,
		[]models.ShockReading{{SensorID: "s1", Timestamp: base}, {SensorID: "s2", Timestamp: base}},
		[]models.EnvironmentReading{{SensorID: "s2", Timestamp: base}},
	)

	points, err := NewReconciler(store).Reconcile(context.Background(), "s2")
	require.NoError(t, err)
	assert.Len(t, points, 2)
}

func TestMerge_SortedByRenderedSecond(t *testing.T) {
	shocks := []models.ShockReading{
		{Timestamp: base.Add(3 * time.Second)},
		{Timestamp: base.Add(1 * time.Second)},
	}
	env := []models.EnvironmentReading{
		{Timestamp: base.Add(2 * time.Second)},
		{Timestamp: base},
	}

	points := Merge(shocks, env)

	require.Len(t, points, 4)
	assert.True(t, sort.SliceIsSorted(points, func(i, j int) bool {
		return points[i].Timestamp < points[j].Timestamp
	}))
	assert.Equal(t, "2024-03-01 10:00:00", points[0].Timestamp)
	assert.Nil(t, points[0].Shock)
	assert.NotNil(t, points[1].Shock)
}

func TestMerge_TiesKeepConcatenationOrder(t *testing.T) {
	// the environment reading is earlier in real time but shares the rendered second
	shocks := []models.ShockReading{
		{Timestamp: base.Add(900 * time.Millisecond), AccelX: 1},
		{Timestamp: base.Add(100 * time.Millisecond), AccelX: 2, ShockDetected: true},
	}
	env := []models.EnvironmentReading{
		{Timestamp: base.Add(50 * time.Millisecond), Temperature: 20},
	}

	points := Merge(shocks, env)

	require.Len(t, points, 3)
	for _, p := range points {
		assert.Equal(t, "2024-03-01 10:00:00", p.Timestamp)
	}
	require.NotNil(t, points[0].Shock)
	assert.Equal(t, 0, *points[0].Shock)
	require.NotNil(t, points[1].Shock)
	assert.Equal(t, 1, *points[1].Shock)
	assert.NotNil(t, points[2].Temperature)
}

func TestMerge_NoDeduplication(t *testing.T) {
	points := Merge(
		[]models.ShockReading{{Timestamp: base}},
		[]models.EnvironmentReading{{Timestamp: base}},
	)
	assert.Len(t, points, 2)
}

func TestMerge_RendersInUTC(t *testing.T) {
	cet := time.FixedZone("CET", 3600)
	points := Merge([]models.ShockReading{{Timestamp: time.Date(2024, 3, 1, 11, 0, 0, 0, cet)}}, nil)
	assert.Equal(t, "2024-03-01 10:00:00", points[0].Timestamp)
}

type brokenSource struct{}

func (brokenSource) GetShockReadings(ctx context.Context, sensorID string) ([]models.ShockReading, error) {
	return nil, errors.New("connection refused")
}

func (brokenSource) GetEnvironmentReadings(ctx context.Context, sensorID string) ([]models.EnvironmentReading, error) {
	return nil, nil
}

func TestReconcile_StoreFailure(t *testing.T) {
	_, err := NewReconciler(brokenSource{}).Reconcile(context.Background(), "s1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestWriteWorkbook(t *testing.T) {
	points := Merge(
		[]models.ShockReading{{Timestamp: base, ShockDetected: true}},
		[]models.EnvironmentReading{{Timestamp: base.Add(time.Second), Temperature: 22.5, Humidity: 40}},
	)

	var buf bytes.Buffer
	require.NoError(t, WriteWorkbook(&buf, "s1", points))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetName}, f.GetSheetList())

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, WorkbookHeader, rows[0])

	expected := map[string]string{
		"A2": "2024-03-01 10:00:00",
		"B2": "",
		"D2": "1",
		"A3": "2024-03-01 10:00:01",
		"B3": "22.5",
		"C3": "40",
		"D3": "",
	}
	for cell, want := range expected {
		got, err := f.GetCellValue(SheetName, cell)
		require.NoError(t, err)
		assert.Equal(t, want, got, "cell %s", cell)
	}
}

func TestWriteWorkbook_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteWorkbook(&buf, "nobody", nil))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
