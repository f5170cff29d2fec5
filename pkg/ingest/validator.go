package ingest

import (
	"sort"
	"sync"
	"time"

	"github.com/Bebel19/rugby-wheelchair-backend/pkg/models"
)

// Validator defines the interface for all reading-kind validators
type Validator interface {
	// Kind returns the reading kind this validator produces
	Kind() models.ReadingKind

	// Endpoint returns the HTTP endpoint path devices post this kind to
	Endpoint() string

	// Decode checks every required field and builds the reading.
	// now is used when the payload carries no timestamp.
	Decode(payload map[string]any, now time.Time) (models.Reading, error)
}

// Registry holds all registered validators
type Registry struct {
	mu         sync.RWMutex
	validators map[models.ReadingKind]Validator
}

// NewRegistry creates a new validator registry
func NewRegistry() *Registry {
	return &Registry{
		validators: make(map[models.ReadingKind]Validator),
	}
}

// DefaultRegistry returns a registry with the shock and environment validators
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(&ShockValidator{})
	r.Register(&EnvironmentValidator{})
	return r
}

// Register adds a validator to the registry
func (r *Registry) Register(v Validator) {
	if v == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.validators[v.Kind()] = v
}

// Get retrieves a validator by reading kind
func (r *Registry) Get(kind models.ReadingKind) (Validator, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	v, ok := r.validators[kind]
	return v, ok
}

// All returns all registered validators ordered by kind
func (r *Registry) All() []Validator {
	r.mu.RLock()
	defer r.mu.RUnlock()

	validators := make([]Validator, 0, len(r.validators))
	for _, v := range r.validators {
		validators = append(validators, v)
	}
	sort.Slice(validators, func(i, j int) bool {
		return validators[i].Kind() < validators[j].Kind()
	})
	return validators
}
