package core

import "github.com/shopspring/decimal"

// Outcome tags an AllocationResult variant so callers can branch exhaustively.
type Outcome string

const (
	// OutcomeManualReview — the order carries comments; no automatic decision.
	OutcomeManualReview Outcome = "MANUAL_REVIEW"
	// OutcomeUnfulfillable — no allocation exists for this snapshot.
	OutcomeUnfulfillable Outcome = "UNFULFILLABLE"
	// OutcomeFulfilled — a single supplier covers the whole order.
	OutcomeFulfilled Outcome = "FULFILLED"
	// OutcomeSplit — each line assigned independently to its cheapest supplier.
	OutcomeSplit Outcome = "SPLIT"
)

// OrderPart is one catalog row committed to an allocation, flattened with the
// descriptive fields downstream screens display.
type OrderPart struct {
	ProductID        int64           `json:"product_id"`
	ProductName      string          `json:"product_name"`
	PartNumber       string          `json:"part_number"`
	PacksPerUnit     int             `json:"packs_per_unit"`
	PacksNeededTotal int             `json:"packs_needed_total"`
	UnitCost         decimal.Decimal `json:"unit_cost"`
	TotalCost        decimal.Decimal `json:"total_cost"`
	BikeID           *int64          `json:"bike_id"`
	BikeName         string          `json:"bike_name"`
	FitmentID        *int64          `json:"fitment_id"`
	FitmentName      string          `json:"fitment_name"`
}

// SupplierAllocation is one supplier's share of an allocation: its total cost
// and the ordered list of parts it supplies. Reason is set in full mode only
// and records why this supplier won the selection.
type SupplierAllocation struct {
	SupplierName string          `json:"supplier_name"`
	TotalCost    decimal.Decimal `json:"total_cost"`
	OrderParts   []OrderPart     `json:"order_parts"`
	Reason       string          `json:"reason,omitempty"`
}

// Unfulfillable explains why no allocation exists, naming the offending
// product when one is identifiable.
type Unfulfillable struct {
	Reason      string `json:"reason"`
	ProductID   *int64 `json:"product_id,omitempty"`
	ProductName string `json:"product_name,omitempty"`
}

// CustomerEcho copies the order's contact data into the result verbatim, for
// downstream consumers (labels, receipts) that never see the order record.
type CustomerEcho struct {
	Name     string  `json:"name"`
	Email    string  `json:"email"`
	Phone    string  `json:"phone"`
	Address  Address `json:"address"`
	Comments string  `json:"comments"`
}

// AllocationResult is the engine's only output. Exactly one variant field is
// populated, matching Outcome. Results are never mutated after construction.
// Customer is present on every variant except MANUAL_REVIEW.
type AllocationResult struct {
	Outcome       Outcome                       `json:"outcome"`
	Unfulfillable *Unfulfillable                `json:"unfulfillable,omitempty"`
	Fulfilled     *SupplierAllocation           `json:"fulfilled,omitempty"`
	Split         map[string]SupplierAllocation `json:"split,omitempty"`
	Customer      *CustomerEcho                 `json:"customer,omitempty"`
}
