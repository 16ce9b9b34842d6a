// internal/bot/runner.go
package bot

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/aptos-swap-bot/internal/blockchain/aptos"
	"github.com/rovshanmuradov/aptos-swap-bot/internal/blockchain/aptos/transaction"
	"github.com/rovshanmuradov/aptos-swap-bot/internal/config"
	"github.com/rovshanmuradov/aptos-swap-bot/internal/dex/pancake"
	"github.com/rovshanmuradov/aptos-swap-bot/internal/events"
	"github.com/rovshanmuradov/aptos-swap-bot/internal/export"
	"github.com/rovshanmuradov/aptos-swap-bot/internal/license"
	"github.com/rovshanmuradov/aptos-swap-bot/internal/storage"
	"github.com/rovshanmuradov/aptos-swap-bot/internal/storage/models"
	"github.com/rovshanmuradov/aptos-swap-bot/internal/storage/postgres"
	"github.com/rovshanmuradov/aptos-swap-bot/internal/task"
	"github.com/rovshanmuradov/aptos-swap-bot/internal/token"
	"github.com/rovshanmuradov/aptos-swap-bot/internal/utils/logger"
	"github.com/rovshanmuradov/aptos-swap-bot/internal/utils/metrics"
	"github.com/rovshanmuradov/aptos-swap-bot/internal/wallet"
)

// Report is what one run produced. Summary and the export are built from
// Results, which hold every task; Legs come from the event history.
type Report struct {
	RunID      string
	Results    []TaskResult
	Summary    export.Summary
	Legs       []*models.SwapLeg
	ExportPath string
}

// Runner wires the configured components together and executes the task file.
type Runner struct {
	config *config.Config
	log    *logger.Logger
	logger *zap.Logger

	httpClient *http.Client
}

func NewRunner(cfg *config.Config, log *logger.Logger) *Runner {
	return &Runner{
		config: cfg,
		log:    log,
		logger: log.Named("runner"),
	}
}

// Run executes every task once. SIGINT and SIGTERM cancel the run; swaps in
// flight finish with ERROR and their results are still reported.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := r.validateLicense(ctx); err != nil {
		return nil, fmt.Errorf("license validation failed: %w", err)
	}

	registry, err := r.loadRegistry()
	if err != nil {
		return nil, err
	}

	wallets, err := wallet.LoadWallets(r.config.WalletsFile)
	if err != nil {
		return nil, fmt.Errorf("load wallets: %w", err)
	}

	tasks, err := task.NewManager(r.log.Logger).LoadTasks(r.config.TasksFile)
	if err != nil {
		return nil, fmt.Errorf("load tasks: %w", err)
	}
	r.logger.Info("Loaded tasks", zap.Int("tasks", len(tasks)), zap.Int("wallets", len(wallets)))

	shutdown := NewShutdownHandler(r.log.Logger, 30*time.Second)
	defer func() {
		// signal context may already be done
		if err := shutdown.Shutdown(context.Background()); err != nil {
			r.logger.Warn("Shutdown finished with errors", zap.Error(err))
		}
	}()

	client, err := aptos.NewClient(r.config.NodeURLs(), aptos.Options{
		RequestTimeout: r.config.RequestTimeout(),
		Retries:        uint(r.config.Retries),
		HTTPClient:     r.httpClient,
	}, r.log.Logger)
	if err != nil {
		return nil, fmt.Errorf("create node client: %w", err)
	}
	shutdown.Add("aptos-client", client)

	submitter := transaction.NewSubmitter(client, transaction.Config{
		MaxGasAmount:        r.config.MaxGasAmount,
		GasUnitPrice:        r.config.GasUnitPrice,
		Expiration:          r.config.TxnExpiration(),
		ConfirmTimeout:      r.config.ConfirmTimeout(),
		WaitForConfirmation: r.config.WaitForConfirmation,
		TestMode:            r.config.TestMode,
	}, r.log.Logger)

	memory := storage.NewMemory()
	stores := []storage.Storage{memory}
	if r.config.PostgresURL != "" {
		pg, err := postgres.NewStorage(r.config.PostgresURL, r.log.Logger)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		if err := pg.RunMigrations(); err != nil {
			_ = pg.Close()
			return nil, fmt.Errorf("run migrations: %w", err)
		}
		shutdown.Add("postgres", pg)
		stores = append(stores, pg)
	}

	collector := metrics.NewCollector()
	if r.config.MetricsAddr != "" {
		r.serveMetrics(collector, shutdown)
	}

	runID := uuid.NewString()
	bus := events.NewBus(r.log.Logger, 0)
	collector.Subscribe(bus)
	storage.NewRecorder(runID, r.log.Logger, stores...).Subscribe(bus)

	factory := func(t *task.SwapTask, w *wallet.Wallet, log *logger.Logger) (Executor, error) {
		switch t.Module {
		case task.ModulePancake:
			return pancake.NewSwap(pancake.Params{
				Task:          t,
				Wallet:        w,
				Chain:         client,
				Submitter:     submitter,
				Registry:      registry,
				RouterAddress: r.config.RouterAddress,
				Events:        bus,
			}, log.Logger)
		default:
			return nil, fmt.Errorf("unsupported module %q", t.Module)
		}
	}

	r.logger.Info("Starting run",
		zap.String("run_id", runID),
		zap.Bool("test_mode", r.config.TestMode),
		zap.Int("workers", r.config.Workers))

	done := r.log.TrackPerformance("run_tasks")
	results := NewWorkerPool(r.config.Workers, wallets, factory, r.log).Run(ctx, tasks)
	done()

	// drain lifecycle events before reading history
	drainCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := bus.Shutdown(drainCtx); err != nil {
		r.logger.Warn("Event bus did not drain", zap.Error(err))
	}
	cancel()

	execs := executionsOf(runID, results)
	report := &Report{
		RunID:   runID,
		Results: results,
		Summary: export.Summarize(execs),
		Legs:    memory.Legs(),
	}

	if r.config.ExportDir != "" && len(execs) > 0 {
		path, err := export.NewExecutionExporter(r.log.Logger).Export(execs, export.ExportOptions{
			Format:    export.ExportFormat(r.config.ExportFormat),
			OutputDir: r.config.ExportDir,
		})
		if err != nil {
			r.logger.Error("Export failed", zap.Error(err))
		}
		report.ExportPath = path
	}

	r.logger.Info("Run finished",
		zap.String("run_id", runID),
		zap.Int("total", report.Summary.Total),
		zap.Int("accepted", report.Summary.Accepted),
		zap.Int("legs", len(report.Legs)),
		zap.Any("by_status", report.Summary.ByStatus))

	return report, nil
}

func (r *Runner) validateLicense(ctx context.Context) error {
	if r.config.License == "" && r.config.KeygenAccount == "" {
		return nil
	}

	validator := license.NewValidator(license.Config{
		AccountID:    r.config.KeygenAccount,
		ProductID:    r.config.KeygenProduct,
		ProductToken: r.config.KeygenToken,
	}, r.log.Logger)

	if err := validator.ValidateLicense(ctx, r.config.License); err != nil {
		return err
	}
	r.logger.Info("License validated")
	return nil
}

func (r *Runner) loadRegistry() (*token.Registry, error) {
	if r.config.TokensFile == "" {
		return token.DefaultRegistry(), nil
	}
	registry, err := token.LoadRegistry(r.config.TokensFile)
	if err != nil {
		return nil, fmt.Errorf("load tokens: %w", err)
	}
	return registry, nil
}

func (r *Runner) serveMetrics(collector *metrics.Collector, shutdown *ShutdownHandler) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", collector.Handler())

	srv := &http.Server{
		Addr:              r.config.MetricsAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		r.logger.Info("Serving metrics", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			r.logger.Error("Metrics server failed", zap.Error(err))
		}
	}()

	shutdown.AddFunc("metrics-server", func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	})
}

// executionsOf turns task results into history rows sorted by finish time.
// Tasks that never reached a swap (missing wallet, cancelled) are included.
func executionsOf(runID string, results []TaskResult) []*models.Execution {
	execs := make([]*models.Execution, 0, len(results))
	for _, res := range results {
		if res.Task == nil || res.Result == nil {
			continue
		}
		exec := &models.Execution{
			RunID:         runID,
			TaskName:      res.Task.Name,
			WalletName:    res.Task.WalletName,
			InputToken:    res.Task.InputToken,
			OutputToken:   res.Task.OutputToken,
			ReverseAction: res.Task.ReverseAction,
			Status:        res.Result.Status.String(),
			Info:          res.Result.Info,
			TxHash:        res.Result.TxHash,
			StartedAt:     res.StartedAt,
			FinishedAt:    res.FinishedAt,
			DurationMs:    res.FinishedAt.Sub(res.StartedAt).Milliseconds(),
		}
		if res.Wallet != nil {
			exec.WalletAddress = res.Wallet.Address
		}
		exec.CreatedAt = res.FinishedAt
		execs = append(execs, exec)
	}
	sort.SliceStable(execs, func(i, j int) bool { return execs[i].FinishedAt.Before(execs[j].FinishedAt) })
	return execs
}
