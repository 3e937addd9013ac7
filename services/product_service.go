package services

import (
	"context"
	"strings"

	"github.com/madeiras-ouro-preto/sales-api/access"
	"github.com/madeiras-ouro-preto/sales-api/models"
	"gorm.io/gorm"
)

// ProductService persists the catalog
type ProductService struct {
	db    *gorm.DB
	audit *AuditService
}

func NewProductService(db *gorm.DB, audit *AuditService) *ProductService {
	return &ProductService{db: db, audit: audit}
}

// List returns products ordered by name, optionally restricted to one category
func (s *ProductService) List(ctx context.Context, category string) ([]models.Product, error) {
	q := s.db.WithContext(ctx).Model(&models.Product{})
	if category != "" {
		q = q.Where("category = ?", category)
	}

	var products []models.Product
	if err := q.Order("name ASC").Find(&products).Error; err != nil {
		return nil, classifyDBError("list products", err)
	}
	return products, nil
}

func (s *ProductService) Get(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	if err := s.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, classifyDBError("load product", err)
	}
	return &product, nil
}

// ByIDs loads the given products keyed by id. Unknown ids are skipped.
func (s *ProductService) ByIDs(ctx context.Context, ids []string) (map[string]models.Product, error) {
	out := make(map[string]models.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var products []models.Product
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, classifyDBError("load products", err)
	}
	for _, p := range products {
		out[p.ID] = p
	}
	return out, nil
}

// Save creates the product or replaces an existing one with the same id.
// The legacy price column is rewritten from price_bruto by the model hook.
func (s *ProductService) Save(ctx context.Context, caller access.Caller, product *models.Product) (bool, error) {
	product.Name = strings.TrimSpace(product.Name)
	if product.Name == "" {
		return false, invalid("name", "is required")
	}
	if !product.Unit.Valid() {
		return false, invalid("unit", "is not a catalog unit")
	}
	if product.PriceBruto.IsNegative() || product.PriceBenef.IsNegative() {
		return false, invalid("price_bruto", "prices cannot be negative")
	}
	if product.Cost != nil && product.Cost.IsNegative() {
		return false, invalid("cost", "cannot be negative")
	}

	db := s.db.WithContext(ctx)
	var before *models.Product
	if product.ID != "" {
		product.ID = models.NormalizeID(product.ID)
		var existing models.Product
		err := db.First(&existing, "id = ?", product.ID).Error
		switch {
		case err == nil:
			before = &existing
		case !isNotFound(err):
			return false, classifyDBError("load product", err)
		}
	}

	if before != nil {
		product.CreatedAt = before.CreatedAt
		if err := db.Save(product).Error; err != nil {
			return false, classifyDBError("update product", err)
		}
		s.audit.Record(ctx, caller, models.AuditUpdate, models.Product{}.TableName(), product.ID, before, product)
		return false, nil
	}

	if err := db.Create(product).Error; err != nil {
		return false, classifyDBError("create product", err)
	}
	s.audit.Record(ctx, caller, models.AuditInsert, models.Product{}.TableName(), product.ID, nil, product)
	return true, nil
}

func (s *ProductService) Delete(ctx context.Context, caller access.Caller, id string) error {
	product, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Delete(&models.Product{}, "id = ?", id).Error; err != nil {
		return classifyDBError("delete product", err)
	}
	s.audit.Record(ctx, caller, models.AuditDelete, models.Product{}.TableName(), id, product, nil)
	return nil
}
