package ingest

import (
	"testing"
	"time"

	"github.com/Bebel19/rugby-wheelchair-backend/pkg/models"
)

// MockValidator implements the Validator interface for testing
type MockValidator struct {
	kind     models.ReadingKind
	endpoint string
}

func (m *MockValidator) Kind() models.ReadingKind {
	return m.kind
}

func (m *MockValidator) Endpoint() string {
	return m.endpoint
}

func (m *MockValidator) Decode(payload map[string]any, now time.Time) (models.Reading, error) {
	return &models.ShockReading{SensorID: "mock", Timestamp: now}, nil
}

func TestNewRegistry(t *testing.T) {
	registry := NewRegistry()

	if registry == nil {
		t.Fatal("Expected registry to be created, got nil")
	}

	if len(registry.validators) != 0 {
		t.Errorf("Expected empty registry, got %d validators", len(registry.validators))
	}
}

func TestRegistry_Register(t *testing.T) {
	registry := NewRegistry()

	registry.Register(&MockValidator{kind: "vibration", endpoint: "/vibration"})
	registry.Register(nil)

	if len(registry.validators) != 1 {
		t.Fatalf("Expected 1 validator, got %d", len(registry.validators))
	}

	v, ok := registry.Get("vibration")
	if !ok {
		t.Fatal("Expected validator to be found")
	}
	if v.Endpoint() != "/vibration" {
		t.Errorf("Expected endpoint /vibration, got %s", v.Endpoint())
	}
}

func TestRegistry_RegisterOverwrites(t *testing.T) {
	registry := NewRegistry()

	registry.Register(&MockValidator{kind: "vibration", endpoint: "/v1"})
	registry.Register(&MockValidator{kind: "vibration", endpoint: "/v2"})

	v, _ := registry.Get("vibration")
	if v.Endpoint() != "/v2" {
		t.Errorf("Expected later registration to win, got %s", v.Endpoint())
	}
}

func TestRegistry_GetUnknown(t *testing.T) {
	registry := NewRegistry()

	if _, ok := registry.Get(models.KindShock); ok {
		t.Error("Expected unknown kind not to be found")
	}
}

func TestDefaultRegistry(t *testing.T) {
	registry := DefaultRegistry()

	all := registry.All()
	if len(all) != 2 {
		t.Fatalf("Expected 2 validators, got %d", len(all))
	}

	expected := []struct {
		kind     models.ReadingKind
		endpoint string
	}{
		{models.KindEnvironment, "/temperature_data"},
		{models.KindShock, "/data"},
	}

	for i, want := range expected {
		if all[i].Kind() != want.kind {
			t.Errorf("Expected kind %s at %d, got %s", want.kind, i, all[i].Kind())
		}
		if all[i].Endpoint() != want.endpoint {
			t.Errorf("Expected endpoint %s for %s, got %s", want.endpoint, want.kind, all[i].Endpoint())
		}
	}
}
