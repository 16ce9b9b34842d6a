// internal/storage/recorder.go
package storage

import (
	"context"

	"go.uber.org/zap"

	"github.com/rovshanmuradov/aptos-swap-bot/internal/events"
	"github.com/rovshanmuradov/aptos-swap-bot/internal/storage/models"
)

// Recorder writes swap events from the bus into one or more stores.
type Recorder struct {
	runID  string
	stores []Storage
	logger *zap.Logger
}

// NewRecorder creates a recorder tagging rows with runID.
func NewRecorder(runID string, logger *zap.Logger, stores ...Storage) *Recorder {
	return &Recorder{
		runID:  runID,
		stores: stores,
		logger: logger.Named("recorder"),
	}
}

// Subscribe attaches the recorder to bus.
func (r *Recorder) Subscribe(bus *events.Bus) []events.Subscription {
	return []events.Subscription{
		bus.Subscribe(events.SwapLegSubmitted, events.On(r.handleLeg)),
		bus.Subscribe(events.SwapCompleted, events.On(r.handleFinished)),
		bus.Subscribe(events.SwapFailed, events.On(r.handleFinished)),
	}
}

func (r *Recorder) handleLeg(ctx context.Context, leg *events.LegSubmittedEvent) error {
	row := &models.SwapLeg{
		RunID:      r.runID,
		TaskName:   leg.TaskName,
		WalletName: leg.WalletName,
		Direction:  string(leg.Direction),
		Status:     leg.Status.String(),
		TxHash:     leg.TxHash,
		AmountIn:   leg.AmountIn,
		AmountOut:  leg.AmountOut,
	}
	row.CreatedAt = leg.Timestamp()

	for _, s := range r.stores {
		if err := s.SaveLeg(ctx, row); err != nil {
			r.logger.Error("Failed to save swap leg", zap.String("task_name", leg.TaskName), zap.Error(err))
			return err
		}
	}
	return nil
}

func (r *Recorder) handleFinished(ctx context.Context, fin *events.SwapFinishedEvent) error {
	return r.Save(ctx, ExecutionFromEvent(r.runID, fin))
}

// Save writes exec to every store.
func (r *Recorder) Save(ctx context.Context, exec *models.Execution) error {
	for _, s := range r.stores {
		row := *exec
		if err := s.SaveExecution(ctx, &row); err != nil {
			r.logger.Error("Failed to save execution",
				zap.String("task_name", exec.TaskName),
				zap.Error(err))
			return err
		}
	}
	return nil
}

// ExecutionFromEvent converts a finished swap into a history row.
func ExecutionFromEvent(runID string, fin *events.SwapFinishedEvent) *models.Execution {
	exec := &models.Execution{
		RunID:         runID,
		TaskName:      fin.TaskName,
		WalletName:    fin.WalletName,
		WalletAddress: fin.WalletAddress,
		InputToken:    fin.InputToken,
		OutputToken:   fin.OutputToken,
		ReverseAction: fin.ReverseAction,
		Status:        fin.Status.String(),
		Info:          fin.Info,
		TxHash:        fin.TxHash,
		StartedAt:     fin.Timestamp().Add(-fin.Duration),
		FinishedAt:    fin.Timestamp(),
		DurationMs:    fin.Duration.Milliseconds(),
	}
	exec.CreatedAt = fin.Timestamp()
	return exec
}
