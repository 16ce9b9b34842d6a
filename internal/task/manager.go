package task

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Manager loads and parses task definitions.
type Manager struct {
	logger *zap.Logger
}

// fileTask is one entry of the tasks YAML file.
type fileTask struct {
	Name               string  `yaml:"name"`
	Module             string  `yaml:"module"`
	Wallet             string  `yaml:"wallet"`
	InputToken         string  `yaml:"input_token"`
	OutputToken        string  `yaml:"output_token"`
	Slippage           float64 `yaml:"slippage"`
	ReverseAction      bool    `yaml:"reverse_action"`
	MinDelaySec        float64 `yaml:"min_delay_sec"`
	MaxDelaySec        float64 `yaml:"max_delay_sec"`
	MinAmount          string  `yaml:"min_amount"`
	MaxAmount          string  `yaml:"max_amount"`
	UseAllBalance      bool    `yaml:"use_all_balance"`
	SendPercentBalance bool    `yaml:"send_percent_balance"`
}

// File represents the structure of the tasks YAML file.
type File struct {
	Tasks []fileTask `yaml:"tasks"`
}

// NewManager constructs a Manager with the given logger.
func NewManager(logger *zap.Logger) *Manager {
	return &Manager{logger: logger.Named("task-manager")}
}

// LoadTasks reads tasks from a YAML file. Invalid entries are logged and
// skipped; an empty result is an error.
func (m *Manager) LoadTasks(path string) ([]*SwapTask, error) {
	if filepath.IsAbs(path) {
		m.logger.Debug("Using absolute path for tasks file", zap.String("path", path))
	}

	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if len(file.Tasks) == 0 {
		return nil, fmt.Errorf("no tasks found in configuration")
	}

	tasks := make([]*SwapTask, 0, len(file.Tasks))
	for i, ft := range file.Tasks {
		t, err := ft.toTask(i)
		if err == nil {
			err = t.Validate()
		}
		if err != nil {
			m.logger.Warn("Skipping invalid task",
				zap.Int("index", i),
				zap.String("task_name", ft.Name),
				zap.Error(err))
			continue
		}
		tasks = append(tasks, t)
	}

	if len(tasks) == 0 {
		return nil, fmt.Errorf("no valid tasks loaded")
	}

	m.logger.Info("Loaded tasks", zap.Int("count", len(tasks)))
	return tasks, nil
}

func (ft fileTask) toTask(id int) (*SwapTask, error) {
	module := ModuleName(strings.ToLower(strings.TrimSpace(ft.Module)))
	if module == "" {
		module = ModulePancake
	}

	minAmount, err := parseDecimal(ft.MinAmount)
	if err != nil {
		return nil, fmt.Errorf("min_amount: %w", err)
	}
	maxAmount, err := parseDecimal(ft.MaxAmount)
	if err != nil {
		return nil, fmt.Errorf("max_amount: %w", err)
	}
	if ft.MaxAmount == "" {
		maxAmount = minAmount
	}

	return &SwapTask{
		ID:            id,
		Name:          ft.Name,
		Module:        module,
		WalletName:    ft.Wallet,
		InputToken:    strings.ToLower(strings.TrimSpace(ft.InputToken)),
		OutputToken:   strings.ToLower(strings.TrimSpace(ft.OutputToken)),
		Slippage:      ft.Slippage,
		ReverseAction: ft.ReverseAction,
		MinDelaySec:   ft.MinDelaySec,
		MaxDelaySec:   ft.MaxDelaySec,
		Amount: AmountSpec{
			MinAmount:          minAmount,
			MaxAmount:          maxAmount,
			UseAllBalance:      ft.UseAllBalance,
			SendPercentBalance: ft.SendPercentBalance,
		},
		CreatedAt: time.Now(),
	}, nil
}

func parseDecimal(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}
