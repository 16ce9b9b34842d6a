// internal/storage/models/execution.go
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Execution is the terminal result of one swap run.
type Execution struct {
	BaseModel
	RunID         string    `gorm:"index;not null;type:varchar(36)" json:"run_id"`
	TaskName      string    `gorm:"index;not null;type:varchar(100)" json:"task_name"`
	WalletName    string    `gorm:"not null;type:varchar(100)" json:"wallet_name"`
	WalletAddress string    `gorm:"index;not null;type:varchar(66)" json:"wallet_address"`
	InputToken    string    `gorm:"not null;type:varchar(20)" json:"input_token"`
	OutputToken   string    `gorm:"not null;type:varchar(20)" json:"output_token"`
	ReverseAction bool      `json:"reverse_action"`
	Status        string    `gorm:"index;not null;type:varchar(20)" json:"status"`
	Info          string    `gorm:"type:text" json:"info"`
	TxHash        string    `gorm:"type:varchar(66)" json:"tx_hash"`
	StartedAt     time.Time `gorm:"not null" json:"started_at"`
	FinishedAt    time.Time `gorm:"not null" json:"finished_at"`
	DurationMs    int64     `json:"duration_ms"`
}

// SwapLeg is one submitted transaction of a run.
type SwapLeg struct {
	BaseModel
	RunID      string          `gorm:"index;not null;type:varchar(36)"`
	TaskName   string          `gorm:"not null;type:varchar(100)"`
	WalletName string          `gorm:"not null;type:varchar(100)"`
	Direction  string          `gorm:"not null;type:varchar(10)"`
	Status     string          `gorm:"not null;type:varchar(20)"`
	TxHash     string          `gorm:"type:varchar(66)"`
	AmountIn   decimal.Decimal `gorm:"type:numeric(38,18)"`
	AmountOut  decimal.Decimal `gorm:"type:numeric(38,18)"`
}
