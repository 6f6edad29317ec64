package core

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Supplier is a master-data record from the supplier directory.
type Supplier struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Product is a sellable catalog item. Price is the retail price shown to the
// customer; allocation works off SupplierPartOption costs, not this field.
type Product struct {
	ID    int64           `json:"id"`
	Name  string          `json:"name"`
	SKU   string          `json:"sku"`
	Price decimal.Decimal `json:"price"`
}

// SupplierPartOption is one candidate source for a product: a supplier's part
// number with its pack requirement, unit cost and current stock. A product may
// have several options per supplier; a supplier is only usable for a line when
// every one of its options can be covered in full.
type SupplierPartOption struct {
	ID          int64           `json:"id"`
	ProductID   int64           `json:"product_id"`
	SupplierID  int64           `json:"supplier_id"`
	PartNumber  string          `json:"part_number"`
	PacksNeeded int             `json:"packs_needed"` // packs per ordered unit
	UnitCost    decimal.Decimal `json:"unit_cost"`
	Stock       int             `json:"stock"`
}

// RequiredPacks is the stock an option consumes for the given order quantity.
func (o SupplierPartOption) RequiredPacks(quantity int) int {
	return o.PacksNeeded * quantity
}

// Snapshot is the immutable view of catalog state the engine works over.
// The caller assembles it once, before invocation; the engine performs no
// lookups of its own.
type Snapshot struct {
	// PartsByProduct holds every SupplierPartOption for each product referenced
	// by the order, in stable catalog row order.
	PartsByProduct map[int64][]SupplierPartOption
	// Suppliers is the full supplier directory, keyed by id.
	Suppliers map[int64]Supplier
}

// PartsFor returns the catalog options for a product. A nil slice means the
// product has no supplier parts at all.
func (s *Snapshot) PartsFor(productID int64) []SupplierPartOption {
	return s.PartsByProduct[productID]
}

// SupplierName resolves a supplier id to its display name. A missing entry is
// a snapshot consistency fault, not a business outcome: callers are expected
// to guarantee referential integrity.
func (s *Snapshot) SupplierName(id int64) (string, error) {
	sup, ok := s.Suppliers[id]
	if !ok {
		return "", fmt.Errorf("supplier %d not present in snapshot", id)
	}
	return sup.Name, nil
}
