package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/rovshanmuradov/aptos-swap-bot/internal/storage/models"
	"github.com/rovshanmuradov/aptos-swap-bot/internal/types"
)

// ExportFormat represents the export file format
type ExportFormat string

const (
	FormatCSV  ExportFormat = "csv"
	FormatJSON ExportFormat = "json"
)

// ExportOptions configures the export behavior
type ExportOptions struct {
	Format       ExportFormat
	StartTime    time.Time
	EndTime      time.Time
	WalletFilter string // wallet address
	TaskFilter   string
	OnlyAccepted bool // SUCCESS and SENT only
	OutputDir    string
}

// ExecutionExporter writes swap execution history to files.
type ExecutionExporter struct {
	logger *zap.Logger
	now    func() time.Time
}

// NewExecutionExporter creates a new exporter
func NewExecutionExporter(logger *zap.Logger) *ExecutionExporter {
	return &ExecutionExporter{
		logger: logger.Named("export"),
		now:    time.Now,
	}
}

// Export writes the executions matching options and returns the file path.
func (ee *ExecutionExporter) Export(execs []*models.Execution, options ExportOptions) (string, error) {
	filtered := ee.filter(execs, options)
	if len(filtered) == 0 {
		return "", fmt.Errorf("no executions match the export criteria")
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].FinishedAt.Before(filtered[j].FinishedAt)
	})

	if options.Format == "" {
		options.Format = FormatCSV
	}
	outputPath := filepath.Join(options.OutputDir, ee.filename(options))

	if err := os.MkdirAll(options.OutputDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	var err error
	switch options.Format {
	case FormatCSV:
		err = ee.exportToCSV(filtered, outputPath)
	case FormatJSON:
		err = ee.exportToJSON(filtered, outputPath)
	default:
		err = fmt.Errorf("unsupported format: %s", options.Format)
	}
	if err != nil {
		return "", err
	}

	ee.logger.Info("Executions exported",
		zap.String("file", outputPath),
		zap.Int("count", len(filtered)),
		zap.String("format", string(options.Format)))

	return outputPath, nil
}

func (ee *ExecutionExporter) filter(execs []*models.Execution, options ExportOptions) []*models.Execution {
	var filtered []*models.Execution
	for _, e := range execs {
		if !options.StartTime.IsZero() && e.FinishedAt.Before(options.StartTime) {
			continue
		}
		if !options.EndTime.IsZero() && e.FinishedAt.After(options.EndTime) {
			continue
		}
		if options.WalletFilter != "" && e.WalletAddress != options.WalletFilter {
			continue
		}
		if options.TaskFilter != "" && e.TaskName != options.TaskFilter {
			continue
		}
		if options.OnlyAccepted && !types.ExecutionStatus(e.Status).IsAccepted() {
			continue
		}
		filtered = append(filtered, e)
	}
	return filtered
}

func (ee *ExecutionExporter) filename(options ExportOptions) string {
	prefix := "executions_all"
	if options.TaskFilter != "" {
		prefix = "executions_" + options.TaskFilter
	}
	return fmt.Sprintf("%s_%s.%s", prefix, ee.now().Format("20060102_150405"), options.Format)
}

// CSVHeaders are the columns of the CSV export.
func CSVHeaders() []string {
	return []string{
		"run_id", "task_name", "wallet_name", "wallet_address",
		"input_token", "output_token", "reverse_action",
		"status", "info", "tx_hash",
		"started_at", "finished_at", "duration_ms",
	}
}

func csvRow(e *models.Execution) []string {
	return []string{
		e.RunID, e.TaskName, e.WalletName, e.WalletAddress,
		e.InputToken, e.OutputToken, strconv.FormatBool(e.ReverseAction),
		e.Status, e.Info, e.TxHash,
		e.StartedAt.UTC().Format(time.RFC3339), e.FinishedAt.UTC().Format(time.RFC3339),
		strconv.FormatInt(e.DurationMs, 10),
	}
}

func (ee *ExecutionExporter) exportToCSV(execs []*models.Execution, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(CSVHeaders()); err != nil {
		return fmt.Errorf("failed to write CSV headers: %w", err)
	}
	for _, e := range execs {
		if err := writer.Write(csvRow(e)); err != nil {
			return fmt.Errorf("failed to write execution: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}

func (ee *ExecutionExporter) exportToJSON(execs []*models.Execution, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create JSON file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")

	exportData := struct {
		ExportTime     time.Time           `json:"export_time"`
		ExecutionCount int                 `json:"execution_count"`
		Summary        Summary             `json:"summary"`
		Executions     []*models.Execution `json:"executions"`
	}{
		ExportTime:     ee.now(),
		ExecutionCount: len(execs),
		Summary:        Summarize(execs),
		Executions:     execs,
	}

	if err := encoder.Encode(exportData); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// Summary counts executions per status.
type Summary struct {
	Total         int            `json:"total"`
	Accepted      int            `json:"accepted"`
	ByStatus      map[string]int `json:"by_status"`
	RoundTrips    int            `json:"round_trips"`
	AvgDurationMs int64          `json:"avg_duration_ms"`
	StartDate     time.Time      `json:"start_date"`
	EndDate       time.Time      `json:"end_date"`
}

// Summarize aggregates execs, which must be sorted by finish time.
func Summarize(execs []*models.Execution) Summary {
	s := Summary{Total: len(execs), ByStatus: make(map[string]int)}
	if len(execs) == 0 {
		return s
	}

	s.StartDate = execs[0].StartedAt
	s.EndDate = execs[len(execs)-1].FinishedAt

	var total int64
	for _, e := range execs {
		s.ByStatus[e.Status]++
		if types.ExecutionStatus(e.Status).IsAccepted() {
			s.Accepted++
		}
		if e.ReverseAction {
			s.RoundTrips++
		}
		total += e.DurationMs
	}
	s.AvgDurationMs = total / int64(len(execs))
	return s
}
