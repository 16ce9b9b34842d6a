// internal/blockchain/aptos/transaction/submitter.go
package transaction

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/rovshanmuradov/aptos-swap-bot/internal/blockchain/aptos"
	"github.com/rovshanmuradov/aptos-swap-bot/internal/types"
	"github.com/rovshanmuradov/aptos-swap-bot/internal/wallet"
)

// Submitter signs and broadcasts entry function payloads.
type Submitter struct {
	node   Node
	config Config
	logger *zap.Logger
	now    func() time.Time
}

// NewSubmitter creates a submitter; zero config fields fall back to defaults.
func NewSubmitter(node Node, cfg Config, logger *zap.Logger) *Submitter {
	def := DefaultConfig()
	if cfg.MaxGasAmount == 0 {
		cfg.MaxGasAmount = def.MaxGasAmount
	}
	if cfg.GasUnitPrice == 0 {
		cfg.GasUnitPrice = def.GasUnitPrice
	}
	if cfg.Expiration <= 0 {
		cfg.Expiration = def.Expiration
	}
	if cfg.ConfirmTimeout <= 0 {
		cfg.ConfirmTimeout = def.ConfirmTimeout
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = def.PollInterval
	}

	return &Submitter{
		node:   node,
		config: cfg,
		logger: logger.Named("tx-submitter"),
		now:    time.Now,
	}
}

// Submit signs payload with w and sends it. The returned status is one of
// SUCCESS, SENT, FAILED, TIME_OUT or TEST_MODE.
func (s *Submitter) Submit(ctx context.Context, w *wallet.Wallet, payload *aptos.EntryFunctionPayload) *types.ExecutionResult {
	if w == nil {
		return types.NewResult(types.StatusFailed, ErrNoWallet.Error())
	}
	if payload == nil || payload.Function == "" {
		return types.NewResult(types.StatusFailed, ErrEmptyPayload.Error())
	}

	logger := s.logger.With(
		zap.String("wallet", w.ShortAddress()),
		zap.String("function", payload.Function))

	if s.config.TestMode {
		logger.Info("Test mode, transaction not broadcast",
			zap.Strings("type_arguments", payload.TypeArguments),
			zap.Any("arguments", payload.Arguments))
		return types.NewResult(types.StatusTestMode, "test mode: transaction was not sent")
	}

	req, err := s.prepare(ctx, w, payload)
	if err != nil {
		logger.Error("Failed to prepare transaction", zap.Error(err))
		return failure(err, "prepare transaction")
	}

	hash, err := s.node.SubmitTransaction(ctx, req)
	if err != nil {
		logger.Error("Failed to submit transaction", zap.Error(err))
		return failure(err, "submit transaction")
	}

	logger = logger.With(zap.String("tx_hash", hash))
	logger.Info("Transaction sent")

	result := types.NewResult(types.StatusSent, "transaction sent")
	result.TxHash = hash
	if !s.config.WaitForConfirmation {
		return result
	}

	waitCtx, cancel := context.WithTimeout(ctx, s.config.ConfirmTimeout)
	defer cancel()

	tx, err := s.node.WaitForTransaction(waitCtx, hash, s.config.PollInterval)
	if err != nil {
		logger.Warn("Transaction not confirmed", zap.Error(err))
		r := failure(err, "confirm transaction")
		r.TxHash = hash
		return r
	}

	if !tx.Success {
		logger.Error("Transaction failed on chain", zap.String("vm_status", tx.VMStatus))
		result.Status = types.StatusFailed
		result.Info = "transaction failed: " + tx.VMStatus
		return result
	}

	logger.Info("Transaction confirmed", zap.String("version", tx.Version))
	result.Status = types.StatusSuccess
	result.Info = "transaction confirmed"
	return result
}

func (s *Submitter) prepare(ctx context.Context, w *wallet.Wallet, payload *aptos.EntryFunctionPayload) (*aptos.TransactionRequest, error) {
	seq, err := s.node.GetSequenceNumber(ctx, w.Address)
	if err != nil {
		return nil, fmt.Errorf("get sequence number: %w", err)
	}

	req := &aptos.TransactionRequest{
		Sender:                  w.Address,
		SequenceNumber:          strconv.FormatUint(seq, 10),
		MaxGasAmount:            strconv.FormatUint(s.config.MaxGasAmount, 10),
		GasUnitPrice:            strconv.FormatUint(s.config.GasUnitPrice, 10),
		ExpirationTimestampSecs: strconv.FormatInt(s.now().Add(s.config.Expiration).Unix(), 10),
		Payload:                 payload,
	}

	message, err := s.node.EncodeSubmission(ctx, req)
	if err != nil {
		return nil, err
	}

	sig, err := w.SignHex(message)
	if err != nil {
		return nil, err
	}

	req.Signature = &aptos.Signature{
		Type:      "ed25519_signature",
		PublicKey: w.PublicKeyHex(),
		Signature: fmt.Sprintf("0x%x", sig),
	}
	return req, nil
}

func failure(err error, stage string) *types.ExecutionResult {
	if errors.Is(err, aptos.ErrTimeout) || errors.Is(err, context.DeadlineExceeded) {
		return types.NewResult(types.StatusTimeOut, fmt.Sprintf("%s: %v", stage, err))
	}
	return types.NewResult(types.StatusFailed, fmt.Sprintf("%s: %v", stage, err))
}
