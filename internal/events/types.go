// internal/events/types.go
package events

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/rovshanmuradov/aptos-swap-bot/internal/types"
)

// EventType represents the type of event.
type EventType string

const (
	SwapStarted      EventType = "swap.started"
	SwapLegSubmitted EventType = "swap.leg_submitted"
	SwapCompleted    EventType = "swap.completed"
	SwapFailed       EventType = "swap.failed"
)

// Direction tells the forward leg from the reverse one.
type Direction string

const (
	DirectionForward Direction = "forward"
	DirectionReverse Direction = "reverse"
)

// Event is the base interface for all events.
type Event interface {
	Type() EventType
	Timestamp() time.Time
}

// BaseEvent provides common fields for all events.
type BaseEvent struct {
	EventType EventType
	EventTime time.Time
}

// Type returns the event type.
func (e BaseEvent) Type() EventType {
	return e.EventType
}

// Timestamp returns when the event occurred.
func (e BaseEvent) Timestamp() time.Time {
	return e.EventTime
}

// SwapStartedEvent is emitted when an orchestrator run begins.
type SwapStartedEvent struct {
	BaseEvent
	TaskID        int
	TaskName      string
	WalletName    string
	WalletAddress string
	InputToken    string
	OutputToken   string
	ReverseAction bool
}

// LegSubmittedEvent is emitted after each submission, forward or reverse.
type LegSubmittedEvent struct {
	BaseEvent
	TaskID     int
	TaskName   string
	WalletName string
	Direction  Direction
	Status     types.ExecutionStatus
	TxHash     string
	AmountIn   decimal.Decimal // spent, human units of the sold token
	AmountOut  decimal.Decimal // quoted, human units of the bought token
}

// SwapFinishedEvent carries the terminal result of a run. EventType is
// SwapCompleted for accepted results and SwapFailed otherwise.
type SwapFinishedEvent struct {
	BaseEvent
	TaskID        int
	TaskName      string
	WalletName    string
	WalletAddress string
	InputToken    string
	OutputToken   string
	ReverseAction bool
	Status        types.ExecutionStatus
	Info          string
	TxHash        string
	Duration      time.Duration
}

// NewSwapFinished picks the event type from the result status.
func NewSwapFinished(at time.Time, result *types.ExecutionResult) *SwapFinishedEvent {
	typ := SwapFailed
	if result.Status.IsAccepted() || result.Status == types.StatusTestMode {
		typ = SwapCompleted
	}
	return &SwapFinishedEvent{
		BaseEvent: BaseEvent{EventType: typ, EventTime: at},
		Status:    result.Status,
		Info:      result.Info,
		TxHash:    result.TxHash,
	}
}
