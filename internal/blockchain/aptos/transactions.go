// internal/blockchain/aptos/transactions.go
package aptos

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// EncodeSubmission asks the node for the BCS signing message of req.
// The returned string is 0x-prefixed hex.
func (c *Client) EncodeSubmission(ctx context.Context, req *TransactionRequest) (string, error) {
	unsigned := *req
	unsigned.Signature = nil

	var message string
	if err := c.do(ctx, http.MethodPost, "/transactions/encode_submission", &unsigned, &message); err != nil {
		return "", fmt.Errorf("encode submission: %w", err)
	}
	return message, nil
}

// SubmitTransaction sends a signed transaction and returns its hash.
func (c *Client) SubmitTransaction(ctx context.Context, req *TransactionRequest) (string, error) {
	if req.Signature == nil {
		return "", errors.New("transaction is not signed")
	}

	var pending Transaction
	if err := c.do(ctx, http.MethodPost, "/transactions", req, &pending); err != nil {
		return "", fmt.Errorf("submit transaction: %w", err)
	}
	if pending.Hash == "" {
		return "", fmt.Errorf("%w: empty transaction hash", ErrInvalidResponse)
	}
	return pending.Hash, nil
}

// GetTransactionByHash fetches a pending or committed transaction.
func (c *Client) GetTransactionByHash(ctx context.Context, hash string) (*Transaction, error) {
	var tx Transaction
	if err := c.do(ctx, http.MethodGet, "/transactions/by_hash/"+hash, nil, &tx); err != nil {
		return nil, err
	}
	return &tx, nil
}

// WaitForTransaction polls until hash is committed or ctx ends.
// Not-yet-indexed hashes are polled again; ctx expiry yields ErrTimeout.
func (c *Client) WaitForTransaction(ctx context.Context, hash string, poll time.Duration) (*Transaction, error) {
	if poll <= 0 {
		poll = time.Second
	}
	ticker := time.NewTicker(poll)
	defer ticker.Stop()

	for {
		tx, err := c.GetTransactionByHash(ctx, hash)
		switch {
		case err == nil && !tx.IsPending():
			return tx, nil
		case err == nil:
			c.logger.Debug("Transaction pending", zap.String("hash", hash))
		case errors.Is(err, ErrTransactionNotFound):
			c.logger.Debug("Transaction not indexed yet", zap.String("hash", hash))
		case errors.Is(err, ErrTimeout):
			// keep waiting until the caller's deadline
		default:
			if ctx.Err() == nil {
				return nil, err
			}
		}

		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return nil, fmt.Errorf("%w: waiting for %s", ErrTimeout, hash)
			}
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}
