package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type AuditAction string

const (
	AuditInsert AuditAction = "INSERT"
	AuditUpdate AuditAction = "UPDATE"
	AuditDelete AuditAction = "DELETE"
)

// AuditLog records one change made through the API, with JSON snapshots of the row.
type AuditLog struct {
	ID        string         `gorm:"type:varchar(36);primaryKey" json:"id"`
	Entity    string         `gorm:"column:table_name;type:varchar(40);not null;index" json:"table_name"`
	Action    AuditAction    `gorm:"type:varchar(10);not null" json:"action"`
	RecordID  string         `gorm:"type:varchar(36);not null;index" json:"record_id"`
	UserID    *string        `gorm:"type:varchar(36)" json:"user_id"`
	UserEmail string         `json:"user_email"`
	OldData   datatypes.JSON `json:"old_data"`
	NewData   datatypes.JSON `json:"new_data"`
	CreatedAt time.Time      `gorm:"index" json:"created_at"`
}

// TableName specifies the table name for the AuditLog model
func (AuditLog) TableName() string {
	return "audit_logs"
}

func (a *AuditLog) BeforeCreate(tx *gorm.DB) error {
	ensureID(&a.ID)
	return nil
}
