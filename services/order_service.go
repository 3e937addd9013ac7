package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/madeiras-ouro-preto/sales-api/access"
	"github.com/madeiras-ouro-preto/sales-api/models"
	"github.com/madeiras-ouro-preto/sales-api/pricing"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OrderService persists quotes and orders
type OrderService struct {
	db       *gorm.DB
	audit    *AuditService
	products *ProductService
	now      func() time.Time
}

func NewOrderService(db *gorm.DB, audit *AuditService, products *ProductService) *OrderService {
	return &OrderService{db: db, audit: audit, products: products, now: time.Now}
}

// OrderFilter narrows List. Zero values mean no filter.
type OrderFilter struct {
	From     time.Time
	To       time.Time
	Type     models.OrderType
	Status   models.OrderStatus
	SellerID string
	ClientID string
}

// scoped starts a query restricted to what caller may see.
func (s *OrderService) scoped(ctx context.Context, caller access.Caller) *gorm.DB {
	q := s.db.WithContext(ctx).Model(&models.Order{})
	if !caller.IsAdmin() {
		q = q.Where("seller_id = ?", caller.OwnerID())
	}
	return q
}

func preloadItems(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

// List returns the caller's documents, newest first, with items.
// The date range is pushed into the query; the result is scoped again on the way out.
func (s *OrderService) List(ctx context.Context, caller access.Caller, f OrderFilter) (access.ScopedOrders, error) {
	q := s.scoped(ctx, caller).Preload("Items", preloadItems)
	if !f.From.IsZero() {
		q = q.Where("date >= ?", f.From.UTC())
	}
	if !f.To.IsZero() {
		q = q.Where("date <= ?", f.To.UTC())
	}
	if f.Type != "" {
		q = q.Where("type = ?", f.Type)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.SellerID != "" {
		q = q.Where("seller_id = ?", f.SellerID)
	}
	if f.ClientID != "" {
		q = q.Where("client_id = ?", f.ClientID)
	}

	var orders []models.Order
	if err := q.Order("date DESC").Find(&orders).Error; err != nil {
		return access.ScopedOrders{}, classifyDBError("list orders", err)
	}
	return access.Scope(caller, orders), nil
}

// Get loads one document with its items
func (s *OrderService) Get(ctx context.Context, caller access.Caller, id string) (*models.Order, error) {
	order, err := s.load(s.db.WithContext(ctx), id)
	if err != nil {
		return nil, err
	}
	if !caller.CanModify(*order) {
		return nil, ErrPermissionDenied
	}
	return order, nil
}

func (s *OrderService) load(db *gorm.DB, id string) (*models.Order, error) {
	var order models.Order
	if err := db.Preload("Items", preloadItems).First(&order, "id = ?", id).Error; err != nil {
		return nil, classifyDBError("load order", err)
	}
	return &order, nil
}

// Save validates and prices order, then writes the header and its full item
// set in one transaction. The returned flag is true when the order was new.
func (s *OrderService) Save(ctx context.Context, caller access.Caller, order *models.Order) (bool, error) {
	if err := s.prepare(ctx, caller, order); err != nil {
		return false, err
	}

	var before *models.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := s.load(tx, order.ID)
		switch {
		case err == nil:
			if !caller.CanModify(*existing) {
				return ErrPermissionDenied
			}
			before = existing
			order.CreatedAt = existing.CreatedAt
		case err != ErrNotFound:
			return err
		}

		if err := tx.Omit(clause.Associations).
			Clauses(clause.OnConflict{UpdateAll: true}).
			Create(order).Error; err != nil {
			return classifyDBError("save order", err)
		}
		return replaceItems(tx, order.ID, order.Items)
	})
	if err != nil {
		return false, err
	}

	if before != nil {
		s.audit.Record(ctx, caller, models.AuditUpdate, models.Order{}.TableName(), order.ID, before, order)
		return false, nil
	}
	s.audit.Record(ctx, caller, models.AuditInsert, models.Order{}.TableName(), order.ID, nil, order)
	return true, nil
}

// replaceItems deletes every item of the order and inserts items in their place.
// Two editors saving the same order concurrently will lose one set of changes:
// the later save wins wholesale.
func replaceItems(tx *gorm.DB, orderID string, items []models.OrderItem) error {
	if err := tx.Where("order_id = ?", orderID).Delete(&models.OrderItem{}).Error; err != nil {
		return classifyDBError("clear order items", err)
	}
	if len(items) == 0 {
		return nil
	}
	if err := tx.Create(&items).Error; err != nil {
		return classifyDBError("insert order items", err)
	}
	return nil
}

// prepare fills defaults, validates input and recomputes every total.
func (s *OrderService) prepare(ctx context.Context, caller access.Caller, order *models.Order) error {
	order.ID = models.NormalizeID(order.ID)
	if err := s.inheritHeader(ctx, order); err != nil {
		return err
	}

	if order.Type == "" {
		order.Type = models.TypeQuote
	}
	if !order.Type.Valid() {
		return invalid("type", fmt.Sprintf("must be %q or %q", models.TypeQuote, models.TypeOrder))
	}
	if order.Status == "" {
		order.Status = models.StatusDraft
	}
	if !order.Status.Valid() {
		return invalid("status", "is not a known status")
	}
	if order.Date.IsZero() {
		order.Date = s.now()
	}
	order.Date = order.Date.UTC()

	if err := s.resolveClient(ctx, order); err != nil {
		return err
	}
	if err := s.resolveSeller(ctx, caller, order); err != nil {
		return err
	}
	if err := s.fillFromCatalog(ctx, order); err != nil {
		return err
	}

	for i := range order.Items {
		item := &order.Items[i]
		item.ID = models.NormalizeID(item.ID)
		item.OrderID = order.ID
		item.Position = i
		item.Description = strings.TrimSpace(item.Description)
		if item.DiscountType == "" {
			item.DiscountType = pricing.DiscountPercentage
		}
		if item.Description == "" {
			return invalid(fmt.Sprintf("items[%d].description", i), "is required")
		}
	}
	if i, err := order.ValidateItems(); err != nil {
		return &ValidationError{Field: fmt.Sprintf("items[%d]", i), Message: err.Error(), Err: err}
	}

	order.ApplyPricing()
	return nil
}

// inheritHeader fills the header fields an update left out from the stored document.
func (s *OrderService) inheritHeader(ctx context.Context, order *models.Order) error {
	var stored models.Order
	err := s.db.WithContext(ctx).
		Select("id", "type", "status", "date", "seller_id", "seller_name").
		First(&stored, "id = ?", order.ID).Error
	switch {
	case isNotFound(err):
		return nil
	case err != nil:
		return classifyDBError("load order", err)
	}

	if order.Type == "" {
		order.Type = stored.Type
	}
	if order.Status == "" {
		order.Status = stored.Status
	}
	if order.Date.IsZero() {
		order.Date = stored.Date
	}
	if !order.HasSeller() {
		order.SellerID, order.SellerName = stored.SellerID, stored.SellerName
	}
	return nil
}

func (s *OrderService) resolveClient(ctx context.Context, order *models.Order) error {
	order.ClientName = strings.TrimSpace(order.ClientName)
	if order.ClientID != "" && order.ClientName == "" {
		var client models.Client
		err := s.db.WithContext(ctx).Select("id", "name").First(&client, "id = ?", order.ClientID).Error
		switch {
		case err == nil:
			order.ClientName = client.Name
		case isNotFound(err):
			return invalid("client_id", "does not exist")
		default:
			return classifyDBError("load client", err)
		}
	}
	if order.ClientName == "" {
		return invalid("client_name", "is required")
	}
	return nil
}

// resolveSeller assigns unowned documents to the caller and keeps the seller
// name snapshot current. Sales users cannot file documents under someone else.
func (s *OrderService) resolveSeller(ctx context.Context, caller access.Caller, order *models.Order) error {
	if !order.HasSeller() {
		owner := caller.OwnerID()
		order.SellerID = &owner
		if order.SellerName == "" {
			order.SellerName = caller.Name
		}
	}
	if !caller.IsAdmin() && *order.SellerID != caller.OwnerID() {
		return ErrPermissionDenied
	}

	var seller models.Seller
	err := s.db.WithContext(ctx).Select("id", "name").First(&seller, "id = ?", *order.SellerID).Error
	switch {
	case err == nil:
		order.SellerName = seller.Name
	case !isNotFound(err):
		return classifyDBError("load seller", err)
	}
	return nil
}

// fillFromCatalog completes items that reference a product and omit the price,
// description or unit. Complete items are snapshots and are left alone, even
// when their product has since left the catalog.
func (s *OrderService) fillFromCatalog(ctx context.Context, order *models.Order) error {
	var ids []string
	for i := range order.Items {
		item := &order.Items[i]
		if item.ProductID != nil && *item.ProductID == "" {
			item.ProductID = nil
		}
		if item.ProductID != nil && item.NeedsCatalog() {
			ids = append(ids, *item.ProductID)
		}
	}
	if len(ids) == 0 {
		return nil
	}

	products, err := s.products.ByIDs(ctx, ids)
	if err != nil {
		return err
	}

	for i := range order.Items {
		item := &order.Items[i]
		if item.ProductID == nil || !item.NeedsCatalog() {
			continue
		}
		product, ok := products[*item.ProductID]
		if !ok {
			return invalid(fmt.Sprintf("items[%d].product_id", i), "does not exist")
		}
		if item.PriceFromCatalog {
			item.UnitPrice = product.UnitPrice(item.Beneficiado)
			item.PriceFromCatalog = false
		}
		if item.Description == "" {
			item.Description = product.Name
		}
		if item.Unit == "" {
			item.Unit = product.Unit
		}
	}
	return nil
}

// Delete removes a document and its items. Only admins and the owning seller may do it.
func (s *OrderService) Delete(ctx context.Context, caller access.Caller, id string) error {
	var before *models.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := s.load(tx, id)
		if err != nil {
			return err
		}
		if !caller.CanModify(*existing) {
			return ErrPermissionDenied
		}
		before = existing

		if err := tx.Where("order_id = ?", id).Delete(&models.OrderItem{}).Error; err != nil {
			return classifyDBError("delete order items", err)
		}
		if err := tx.Delete(&models.Order{}, "id = ?", id).Error; err != nil {
			return classifyDBError("delete order", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.audit.Record(ctx, caller, models.AuditDelete, models.Order{}.TableName(), id, before, nil)
	return nil
}

// Convert turns a quote into an order. Converting an order is a no-op save.
func (s *OrderService) Convert(ctx context.Context, caller access.Caller, id string) (*models.Order, error) {
	order, err := s.Get(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	order.Type = models.TypeOrder
	if _, err := s.Save(ctx, caller, order); err != nil {
		return nil, err
	}
	return order, nil
}
