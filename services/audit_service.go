package services

import (
	"context"
	"encoding/json"
	"log"

	"github.com/madeiras-ouro-preto/sales-api/access"
	"github.com/madeiras-ouro-preto/sales-api/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const defaultAuditLimit = 100

// AuditService writes and reads the change history
type AuditService struct {
	db *gorm.DB
}

func NewAuditService(db *gorm.DB) *AuditService {
	return &AuditService{db: db}
}

// AuditFilter narrows List. Zero values mean no filter.
type AuditFilter struct {
	Table    string
	RecordID string
	Limit    int
}

// Record stores one change. The change itself already happened, so failures
// are logged and swallowed.
func (s *AuditService) Record(ctx context.Context, caller access.Caller, action models.AuditAction, table, recordID string, before, after any) {
	entry := models.AuditLog{
		Entity:    table,
		Action:    action,
		RecordID:  recordID,
		UserEmail: caller.Email,
		OldData:   snapshot(before),
		NewData:   snapshot(after),
	}
	if caller.UserID != "" {
		userID := caller.UserID
		entry.UserID = &userID
	}

	if err := s.db.WithContext(ctx).Create(&entry).Error; err != nil {
		log.Printf("warning: failed to write audit log for %s %s: %v", table, recordID, err)
	}
}

// List returns the newest entries first
func (s *AuditService) List(ctx context.Context, f AuditFilter) ([]models.AuditLog, error) {
	limit := f.Limit
	if limit <= 0 || limit > 1000 {
		limit = defaultAuditLimit
	}

	q := s.db.WithContext(ctx).Model(&models.AuditLog{})
	if f.Table != "" {
		q = q.Where("table_name = ?", f.Table)
	}
	if f.RecordID != "" {
		q = q.Where("record_id = ?", f.RecordID)
	}

	var logs []models.AuditLog
	if err := q.Order("created_at DESC").Limit(limit).Find(&logs).Error; err != nil {
		return nil, classifyDBError("list audit logs", err)
	}
	return logs, nil
}

func snapshot(v any) datatypes.JSON {
	if v == nil {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		log.Printf("warning: failed to encode audit snapshot: %v", err)
		return nil
	}
	return datatypes.JSON(data)
}
