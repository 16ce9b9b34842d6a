package export

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/aptos-swap-bot/internal/storage/models"
)

func testExecutions() []*models.Execution {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return []*models.Execution{
		{RunID: "r", TaskName: "apt-usdc", WalletAddress: "0xa", Status: "success", ReverseAction: true,
			StartedAt: base, FinishedAt: base.Add(2 * time.Minute), DurationMs: 120_000, TxHash: "0x1"},
		{RunID: "r", TaskName: "apt-usdc", WalletAddress: "0xb", Status: "failed", Info: "vm_status: ABORTED, code 7",
			StartedAt: base, FinishedAt: base.Add(time.Minute), DurationMs: 60_000},
		{RunID: "r", TaskName: "usdt-apt", WalletAddress: "0xa", Status: "sent",
			StartedAt: base, FinishedAt: base.Add(3 * time.Minute), DurationMs: 180_000},
	}
}

func newTestExporter() *ExecutionExporter {
	e := NewExecutionExporter(zap.NewNop())
	e.now = func() time.Time { return time.Date(2026, 3, 1, 13, 0, 0, 0, time.UTC) }
	return e
}

func TestExportCSV(t *testing.T) {
	dir := t.TempDir()

	path, err := newTestExporter().Export(testExecutions(), ExportOptions{Format: FormatCSV, OutputDir: dir})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "executions_all_20260301_130000.csv"), path)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, CSVHeaders(), rows[0])
	assert.Equal(t, "failed", rows[1][7], "sorted by finish time")
	assert.Equal(t, "vm_status: ABORTED, code 7", rows[1][8])
	assert.Equal(t, "true", rows[2][6])
}

func TestExportJSONWithFilters(t *testing.T) {
	dir := t.TempDir()

	path, err := newTestExporter().Export(testExecutions(), ExportOptions{
		Format:       FormatJSON,
		OutputDir:    dir,
		WalletFilter: "0xa",
		OnlyAccepted: true,
	})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var out struct {
		ExecutionCount int                 `json:"execution_count"`
		Summary        Summary             `json:"summary"`
		Executions     []*models.Execution `json:"executions"`
	}
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, 2, out.ExecutionCount)
	assert.Equal(t, 2, out.Summary.Accepted)
	assert.Equal(t, 1, out.Summary.RoundTrips)
	assert.Equal(t, int64(150_000), out.Summary.AvgDurationMs)
	assert.Equal(t, "0x1", out.Executions[0].TxHash)
}

func TestExportNoMatches(t *testing.T) {
	_, err := newTestExporter().Export(testExecutions(), ExportOptions{
		Format:     FormatCSV,
		OutputDir:  t.TempDir(),
		TaskFilter: "missing",
	})
	assert.Error(t, err)
}

func TestExportUnsupportedFormat(t *testing.T) {
	_, err := newTestExporter().Export(testExecutions(), ExportOptions{Format: "xml", OutputDir: t.TempDir()})
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "unsupported"))
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)
	assert.Zero(t, s.Total)
	assert.NotNil(t, s.ByStatus)
}
