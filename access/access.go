// Package access is the authorization boundary between persistence and reporting.
//
// A Caller is built once per request from the authenticated account. Orders
// only reach the analytics package wrapped in ScopedOrders, and the only way
// to build one is Scope, so an unscoped slice cannot be aggregated by mistake.
package access

import "github.com/madeiras-ouro-preto/sales-api/models"

// Caller is the capability carried through a request: who is asking and with which role.
type Caller struct {
	UserID   string
	SellerID string
	Name     string
	Email    string
	Role     string
}

// FromUser builds the caller capability for an account.
func FromUser(u models.User) Caller {
	c := Caller{UserID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
	if u.SellerID != nil {
		c.SellerID = *u.SellerID
	}
	return c
}

// IsAdmin reports whether the caller may see and change every document.
func (c Caller) IsAdmin() bool {
	return c.Role == models.RoleAdmin
}

// OwnerID is the seller id the caller's documents are filed under: the linked
// directory entry when there is one, the account id otherwise.
func (c Caller) OwnerID() string {
	if c.SellerID != "" {
		return c.SellerID
	}
	return c.UserID
}

// Owns reports whether the order is assigned to the caller.
func (c Caller) Owns(o models.Order) bool {
	return o.HasSeller() && *o.SellerID == c.OwnerID()
}

// CanModify reports whether the caller may change or delete the order.
func (c Caller) CanModify(o models.Order) bool {
	return c.IsAdmin() || c.Owns(o)
}

// ScopedOrders is a collection already restricted to what a caller may see.
type ScopedOrders struct {
	caller Caller
	orders []models.Order
}

// Scope restricts orders to the caller. Admins keep everything; everyone
// else keeps only the orders assigned to them.
func Scope(c Caller, orders []models.Order) ScopedOrders {
	if c.IsAdmin() {
		return ScopedOrders{caller: c, orders: orders}
	}

	own := make([]models.Order, 0, len(orders))
	for _, o := range orders {
		if c.Owns(o) {
			own = append(own, o)
		}
	}
	return ScopedOrders{caller: c, orders: own}
}

// Orders returns the scoped collection.
func (s ScopedOrders) Orders() []models.Order {
	return s.orders
}

// Caller returns the capability the collection was scoped for.
func (s ScopedOrders) Caller() Caller {
	return s.caller
}

func (s ScopedOrders) Len() int {
	return len(s.orders)
}
