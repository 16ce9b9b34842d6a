// internal/storage/storage.go
package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/rovshanmuradov/aptos-swap-bot/internal/storage/models"
)

// Storage persists swap history.
type Storage interface {
	SaveExecution(ctx context.Context, exec *models.Execution) error
	// ListExecutions returns the newest executions first. An empty wallet
	// address lists every wallet.
	ListExecutions(ctx context.Context, walletAddress string, limit int) ([]*models.Execution, error)
	SaveLeg(ctx context.Context, leg *models.SwapLeg) error

	RunMigrations() error
	Close() error
}

// Memory is a Storage kept in process memory. It backs runs without a
// database and the export of the current run.
type Memory struct {
	mu         sync.RWMutex
	executions []*models.Execution
	legs       []*models.SwapLeg
	nextID     uint
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) SaveExecution(_ context.Context, exec *models.Execution) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	exec.ID = m.nextID
	m.executions = append(m.executions, exec)
	return nil
}

func (m *Memory) ListExecutions(_ context.Context, walletAddress string, limit int) ([]*models.Execution, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*models.Execution, 0, len(m.executions))
	for _, e := range m.executions {
		if walletAddress == "" || e.WalletAddress == walletAddress {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *Memory) SaveLeg(_ context.Context, leg *models.SwapLeg) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	leg.ID = m.nextID
	m.legs = append(m.legs, leg)
	return nil
}

// Legs returns the stored legs in insertion order.
func (m *Memory) Legs() []*models.SwapLeg {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]*models.SwapLeg(nil), m.legs...)
}

func (m *Memory) RunMigrations() error { return nil }

func (m *Memory) Close() error { return nil }
