package services

import (
	"context"
	"strings"

	"github.com/madeiras-ouro-preto/sales-api/access"
	"github.com/madeiras-ouro-preto/sales-api/models"
	"gorm.io/gorm"
)

// SellerService is the seller directory. It is not tied to user accounts.
type SellerService struct {
	db    *gorm.DB
	audit *AuditService
}

func NewSellerService(db *gorm.DB, audit *AuditService) *SellerService {
	return &SellerService{db: db, audit: audit}
}

// List returns sellers ordered by name
func (s *SellerService) List(ctx context.Context, activeOnly bool) ([]models.Seller, error) {
	q := s.db.WithContext(ctx).Model(&models.Seller{})
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}

	var sellers []models.Seller
	if err := q.Order("name ASC").Find(&sellers).Error; err != nil {
		return nil, classifyDBError("list sellers", err)
	}
	return sellers, nil
}

func (s *SellerService) Get(ctx context.Context, id string) (*models.Seller, error) {
	var seller models.Seller
	if err := s.db.WithContext(ctx).First(&seller, "id = ?", id).Error; err != nil {
		return nil, classifyDBError("load seller", err)
	}
	return &seller, nil
}

// Save creates the seller or replaces an existing one with the same id.
func (s *SellerService) Save(ctx context.Context, caller access.Caller, seller *models.Seller) (bool, error) {
	seller.Name = strings.TrimSpace(seller.Name)
	if seller.Name == "" {
		return false, invalid("name", "is required")
	}

	db := s.db.WithContext(ctx)
	var before *models.Seller
	if seller.ID != "" {
		seller.ID = models.NormalizeID(seller.ID)
		var existing models.Seller
		err := db.First(&existing, "id = ?", seller.ID).Error
		switch {
		case err == nil:
			before = &existing
		case !isNotFound(err):
			return false, classifyDBError("load seller", err)
		}
	}

	if before != nil {
		seller.CreatedAt = before.CreatedAt
		if err := db.Save(seller).Error; err != nil {
			return false, classifyDBError("update seller", err)
		}
		s.audit.Record(ctx, caller, models.AuditUpdate, models.Seller{}.TableName(), seller.ID, before, seller)
		return false, nil
	}

	if err := db.Create(seller).Error; err != nil {
		return false, classifyDBError("create seller", err)
	}
	s.audit.Record(ctx, caller, models.AuditInsert, models.Seller{}.TableName(), seller.ID, nil, seller)
	return true, nil
}

// Delete removes the directory entry. Orders keep the id and the name snapshot.
func (s *SellerService) Delete(ctx context.Context, caller access.Caller, id string) error {
	seller, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Delete(&models.Seller{}, "id = ?", id).Error; err != nil {
		return classifyDBError("delete seller", err)
	}
	s.audit.Record(ctx, caller, models.AuditDelete, models.Seller{}.TableName(), id, seller, nil)
	return nil
}
