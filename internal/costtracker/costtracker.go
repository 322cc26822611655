package costtracker

import (
	"context"
	"sync"

	log "github.com/sirupsen/logrus"
)

// CostEvent represents a single AI usage event and its cost.
type CostEvent struct {
	Operation string // e.g., "classification"
	AmountUSD float64
	Details   map[string]interface{}
}

// CostTracker provides methods to record and report costs.
type CostTracker interface {
	RecordCost(ctx context.Context, event CostEvent) error
	TotalCost(ctx context.Context) (float64, error)
}

// New returns an in-process tracker that logs each event and keeps a running total.
func New() CostTracker {
	return &memoryCostTracker{}
}

type memoryCostTracker struct {
	mu    sync.Mutex
	total float64
}

func (m *memoryCostTracker) RecordCost(ctx context.Context, event CostEvent) error {
	m.mu.Lock()
	m.total += event.AmountUSD
	m.mu.Unlock()

	log.WithFields(log.Fields(event.Details)).
		WithField("operation", event.Operation).
		Debugf("Recorded AI usage cost %.8f USD", event.AmountUSD)
	return nil
}

func (m *memoryCostTracker) TotalCost(ctx context.Context) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.total, nil
}
