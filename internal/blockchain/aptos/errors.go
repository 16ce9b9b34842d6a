// internal/blockchain/aptos/errors.go
package aptos

import (
	"errors"
	"fmt"
)

var (
	// ErrResourceNotFound means the account exists but does not hold the
	// requested resource type.
	ErrResourceNotFound = errors.New("resource not found")

	// ErrAccountNotFound means the address has no on-chain account.
	ErrAccountNotFound = errors.New("account not found")

	// ErrTransactionNotFound means the node does not know the hash (yet).
	ErrTransactionNotFound = errors.New("transaction not found")

	// ErrTimeout is returned when a call exceeds its deadline.
	ErrTimeout = errors.New("request timeout")

	// ErrInvalidResponse is returned when a response body cannot be decoded.
	ErrInvalidResponse = errors.New("invalid node response")

	// ErrNoNodes is returned when the client is built without URLs.
	ErrNoNodes = errors.New("no node URLs configured")
)

// APIError is a non-2xx answer from the node REST API.
type APIError struct {
	StatusCode int
	ErrorCode  string `json:"error_code"`
	Message    string `json:"message"`
	VMErrCode  *int   `json:"vm_error_code"`
	Method     string
	Path       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("node error [%s %s] %d %s: %s", e.Method, e.Path, e.StatusCode, e.ErrorCode, e.Message)
}

// Unwrap maps well-known node error codes to package sentinels.
func (e *APIError) Unwrap() error {
	switch e.ErrorCode {
	case "resource_not_found":
		return ErrResourceNotFound
	case "account_not_found":
		return ErrAccountNotFound
	case "transaction_not_found":
		return ErrTransactionNotFound
	}
	return nil
}

// Temporary reports whether retrying the same request may succeed.
func (e *APIError) Temporary() bool {
	return e.StatusCode == 429 || e.StatusCode >= 500
}
