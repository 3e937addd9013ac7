package services

import (
	"context"
	"errors"
	"strings"

	"github.com/madeiras-ouro-preto/sales-api/access"
	"github.com/madeiras-ouro-preto/sales-api/models"
	"gorm.io/gorm"
)

// ClientService persists the customer register
type ClientService struct {
	db    *gorm.DB
	audit *AuditService
}

func NewClientService(db *gorm.DB, audit *AuditService) *ClientService {
	return &ClientService{db: db, audit: audit}
}

// List returns clients ordered by name, optionally matching search against name or document
func (s *ClientService) List(ctx context.Context, search string) ([]models.Client, error) {
	q := s.db.WithContext(ctx).Model(&models.Client{})
	if search = strings.TrimSpace(search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		q = q.Where("LOWER(name) LIKE ? OR document LIKE ?", like, like)
	}

	var clients []models.Client
	if err := q.Order("name ASC").Find(&clients).Error; err != nil {
		return nil, classifyDBError("list clients", err)
	}
	return clients, nil
}

func (s *ClientService) Get(ctx context.Context, id string) (*models.Client, error) {
	var client models.Client
	if err := s.db.WithContext(ctx).First(&client, "id = ?", id).Error; err != nil {
		return nil, classifyDBError("load client", err)
	}
	return &client, nil
}

// Save creates the client or replaces an existing one with the same id.
func (s *ClientService) Save(ctx context.Context, caller access.Caller, client *models.Client) (bool, error) {
	client.Name = strings.TrimSpace(client.Name)
	if client.Name == "" {
		return false, invalid("name", "is required")
	}
	if client.Type == "" {
		client.Type = models.ClientIndividual
	}
	if !client.Type.Valid() {
		return false, invalid("type", "must be PF or PJ")
	}

	db := s.db.WithContext(ctx)
	var before *models.Client
	if client.ID != "" {
		client.ID = models.NormalizeID(client.ID)
		var existing models.Client
		err := db.First(&existing, "id = ?", client.ID).Error
		switch {
		case err == nil:
			before = &existing
		case !isNotFound(err):
			return false, classifyDBError("load client", err)
		}
	}

	if before != nil {
		client.CreatedAt = before.CreatedAt
		if err := db.Save(client).Error; err != nil {
			return false, classifyDBError("update client", err)
		}
		s.audit.Record(ctx, caller, models.AuditUpdate, models.Client{}.TableName(), client.ID, before, client)
		return false, nil
	}

	if err := db.Create(client).Error; err != nil {
		return false, classifyDBError("create client", err)
	}
	s.audit.Record(ctx, caller, models.AuditInsert, models.Client{}.TableName(), client.ID, nil, client)
	return true, nil
}

func (s *ClientService) Delete(ctx context.Context, caller access.Caller, id string) error {
	client, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Delete(&models.Client{}, "id = ?", id).Error; err != nil {
		return classifyDBError("delete client", err)
	}
	s.audit.Record(ctx, caller, models.AuditDelete, models.Client{}.TableName(), id, client, nil)
	return nil
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
