// internal/bot/worker.go
package bot

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rovshanmuradov/aptos-swap-bot/internal/task"
	"github.com/rovshanmuradov/aptos-swap-bot/internal/types"
	"github.com/rovshanmuradov/aptos-swap-bot/internal/utils/logger"
	"github.com/rovshanmuradov/aptos-swap-bot/internal/wallet"
)

// Executor runs one task to a terminal result.
type Executor interface {
	Execute(ctx context.Context) *types.ExecutionResult
}

// ExecutorFactory builds the executor for a task and its wallet. log
// already carries the wallet and task fields.
type ExecutorFactory func(t *task.SwapTask, w *wallet.Wallet, log *logger.Logger) (Executor, error)

// TaskResult pairs a task with its outcome.
type TaskResult struct {
	Task       *task.SwapTask
	Wallet     *wallet.Wallet
	Result     *types.ExecutionResult
	StartedAt  time.Time
	FinishedAt time.Time
}

// WorkerPool runs tasks with at most workers wallets active at once. Tasks
// of the same wallet run one after another so they never race on the
// account sequence number.
type WorkerPool struct {
	workers int
	wallets map[string]*wallet.Wallet
	factory ExecutorFactory
	log     *logger.Logger
	logger  *zap.Logger
}

func NewWorkerPool(workers int, wallets map[string]*wallet.Wallet, factory ExecutorFactory, log *logger.Logger) *WorkerPool {
	if workers <= 0 {
		workers = 1
	}
	return &WorkerPool{
		workers: workers,
		wallets: wallets,
		factory: factory,
		log:     log,
		logger:  log.Named("worker-pool"),
	}
}

// Run executes tasks and returns one result per task, in task order.
// Cancelling ctx interrupts running swaps and marks pending ones as ERROR.
func (wp *WorkerPool) Run(ctx context.Context, tasks []*task.SwapTask) []TaskResult {
	results := make([]TaskResult, len(tasks))

	// group by wallet, keeping file order inside a group
	var order []string
	byWallet := make(map[string][]int)
	for i, t := range tasks {
		if _, seen := byWallet[t.WalletName]; !seen {
			order = append(order, t.WalletName)
		}
		byWallet[t.WalletName] = append(byWallet[t.WalletName], i)
	}

	wp.logger.Info("Starting execution",
		zap.Int("tasks", len(tasks)),
		zap.Int("wallets", len(order)),
		zap.Int("workers", wp.workers))

	var g errgroup.Group
	g.SetLimit(wp.workers)

	for id, name := range order {
		indexes := byWallet[name]
		workerLog := wp.logger.With(zap.Int("worker_id", id+1), zap.String("wallet", name))
		g.Go(func() error {
			for _, i := range indexes {
				results[i] = wp.runTask(ctx, tasks[i], workerLog)
			}
			return nil
		})
	}

	_ = g.Wait()
	wp.logger.Info("All workers finished")
	return results
}

func (wp *WorkerPool) runTask(ctx context.Context, t *task.SwapTask, workerLog *zap.Logger) TaskResult {
	res := TaskResult{Task: t, StartedAt: time.Now()}

	finish := func(r *types.ExecutionResult) TaskResult {
		res.Result = r
		res.FinishedAt = time.Now()
		return res
	}

	if err := ctx.Err(); err != nil {
		return finish(types.NewResult(types.StatusError, "cancelled before start"))
	}

	w := wp.wallets[t.WalletName]
	if w == nil {
		workerLog.Warn("Skipping task - no wallet found", zap.String("task", t.Name))
		return finish(types.NewResult(types.StatusError, "wallet "+t.WalletName+" not found"))
	}
	res.Wallet = w

	exec, err := wp.factory(t, w, wp.log.WithWallet(w).WithTask(t))
	if err != nil {
		workerLog.Error("Executor init error", zap.String("task", t.Name), zap.Error(err))
		return finish((&types.ExecutionResult{}).SetError("init %s: %v", t.Module, err))
	}

	workerLog.Info("Executing task", zap.String("task", t.String()))
	r := exec.Execute(ctx)
	if r == nil {
		r = types.NewResult(types.StatusError, "no result")
	}
	workerLog.Info("Task finished",
		zap.String("task", t.Name),
		zap.String("status", r.Status.String()),
		zap.String("info", r.Info))
	return finish(r)
}
