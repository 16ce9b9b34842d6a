// ====================================
// File: cmd/bot/main.go
// ====================================
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/rovshanmuradov/aptos-swap-bot/internal/bot"
	"github.com/rovshanmuradov/aptos-swap-bot/internal/config"
	"github.com/rovshanmuradov/aptos-swap-bot/internal/types"
	"github.com/rovshanmuradov/aptos-swap-bot/internal/utils/logger"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to the config file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logCfg := logger.DefaultConfig()
	logCfg.LogFile = cfg.LogFile
	logCfg.Development = cfg.DebugLogging

	log, err := logger.New(logCfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}

	log.Info("Starting aptos swap bot",
		zap.String("config", *configPath),
		zap.String("node", cfg.NodeURL),
		zap.Bool("test_mode", cfg.TestMode))

	report, err := bot.NewRunner(cfg, log).Run(context.Background())
	if err != nil {
		log.LogError("Bot execution error", err)
		_ = log.Close()
		os.Exit(1)
	}

	for _, res := range report.Results {
		log.Info("Task result",
			zap.String("task", res.Task.String()),
			zap.String("status", res.Result.Status.String()),
			zap.String("info", res.Result.Info),
			zap.String("tx_hash", res.Result.TxHash))
	}

	code := 0
	for _, res := range report.Results {
		if res.Result.Status == types.StatusError {
			code = 2
			break
		}
	}

	_ = log.Close()
	os.Exit(code)
}
