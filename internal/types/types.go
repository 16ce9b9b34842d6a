// internal/types/types.go
package types

import "fmt"

// ExecutionStatus is the terminal verdict of a module run.
type ExecutionStatus string

const (
	StatusSuccess  ExecutionStatus = "success"
	StatusSent     ExecutionStatus = "sent"
	StatusFailed   ExecutionStatus = "failed"
	StatusError    ExecutionStatus = "error"
	StatusRetry    ExecutionStatus = "retry"
	StatusTimeOut  ExecutionStatus = "time_out"
	StatusTestMode ExecutionStatus = "test_mode"
)

// Valid reports whether s is one of the known statuses.
func (s ExecutionStatus) Valid() bool {
	switch s {
	case StatusSuccess, StatusSent, StatusFailed, StatusError,
		StatusRetry, StatusTimeOut, StatusTestMode:
		return true
	default:
		return false
	}
}

// IsAccepted is true when the chain took the transaction, whether or not
// its outcome is known yet.
func (s ExecutionStatus) IsAccepted() bool {
	switch s {
	case StatusSuccess, StatusSent:
		return true
	case StatusFailed, StatusError, StatusRetry, StatusTimeOut, StatusTestMode:
		return false
	default:
		return false
	}
}

func (s ExecutionStatus) String() string {
	return string(s)
}

// ExecutionResult is the single verdict returned by a swap run.
type ExecutionResult struct {
	Status ExecutionStatus
	Info   string
	TxHash string
}

// NewResult creates a result in the given status.
func NewResult(status ExecutionStatus, info string) *ExecutionResult {
	return &ExecutionResult{Status: status, Info: info}
}

// SetError moves the result into the ERROR status.
func (r *ExecutionResult) SetError(format string, args ...interface{}) *ExecutionResult {
	r.Status = StatusError
	r.Info = fmt.Sprintf(format, args...)
	return r
}

// SetTimeout moves the result into the TIME_OUT status.
func (r *ExecutionResult) SetTimeout(format string, args ...interface{}) *ExecutionResult {
	r.Status = StatusTimeOut
	r.Info = fmt.Sprintf(format, args...)
	return r
}

func (r *ExecutionResult) String() string {
	if r.TxHash == "" {
		return fmt.Sprintf("%s: %s", r.Status, r.Info)
	}
	return fmt.Sprintf("%s: %s (tx %s)", r.Status, r.Info, r.TxHash)
}
