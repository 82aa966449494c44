package models

import (
	"time"

	"gorm.io/datatypes"
)

// SystemLog stores structured error logs emitted by the service.
type SystemLog struct {
	ID           string         `gorm:"size:36;primaryKey" json:"id"`
	Timestamp    time.Time      `gorm:"not null;index" json:"timestamp"`
	Level        string         `gorm:"size:10;not null;index" json:"level"`
	Message      string         `gorm:"type:text" json:"message"`
	RequestID    string         `gorm:"size:64;index" json:"request_id"`
	UserID       *string        `gorm:"size:36" json:"user_id"`
	NewsletterID *string        `gorm:"size:36" json:"newsletter_id"`
	Action       string         `gorm:"size:100" json:"action"`
	Error        string         `gorm:"type:text" json:"error"`
	Extra        datatypes.JSON `json:"extra"`
	CreatedAt    time.Time      `json:"created_at"`
}
