// internal/storage/models/base.go
package models

import "time"

// BaseModel replaces gorm.Model; rows are append-only so there is no
// soft delete column.
type BaseModel struct {
	ID        uint      `gorm:"primarykey"`
	CreatedAt time.Time `gorm:"index;default:CURRENT_TIMESTAMP"`
}
