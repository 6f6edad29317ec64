package core

import (
	"fmt"

	"github.com/shopspring/decimal"
)

const reasonCheapest = "Cheapest supplier selected"

// Engine decides which supplier(s) should fulfill an order and at what cost,
// given a snapshot of the part catalog and supplier directory. It is a pure,
// single-pass computation: no I/O, no mutation of shared state, and no stock
// reservation — callers serialize stock commitment externally.
//
// Evaluation runs in four stages: an eligibility gate for orders needing
// human judgment, per-line feasibility over the catalog, the full-vs-split
// allocation decision, and a policy gate over the chosen supplier(s).
type Engine struct {
	cfg Config
}

// NewEngine constructs an Engine with the given policy thresholds.
func NewEngine(cfg Config) *Engine {
	return &Engine{cfg: cfg}
}

// lineOption is one supplier's complete offer for a single order line: the
// cost of covering every one of its catalog rows for the line's quantity.
type lineOption struct {
	supplierID int64
	totalCost  decimal.Decimal
	parts      []OrderPart
}

// linePlan holds the feasible offers for one line, in the order suppliers
// first appear among the product's catalog rows.
type linePlan struct {
	key     LineKey
	options []lineOption
}

func (p linePlan) option(supplierID int64) (lineOption, bool) {
	for _, opt := range p.options {
		if opt.supplierID == supplierID {
			return opt, true
		}
	}
	return lineOption{}, false
}

// Allocate evaluates one order against the snapshot and returns exactly one
// AllocationResult variant. The error return is reserved for snapshot
// inconsistencies (unknown supplier ids, duplicate line keys, non-positive
// quantities); business failures are result variants, never errors.
func (e *Engine) Allocate(order *Order, snap *Snapshot) (*AllocationResult, error) {
	// Orders carrying comments need a human before any cost analysis.
	if order.Comments != "" {
		return &AllocationResult{Outcome: OutcomeManualReview}, nil
	}

	plans, unfulfillable, err := e.evaluateLines(order, snap)
	if err != nil {
		return nil, err
	}
	if unfulfillable != nil {
		return withEcho(unfulfillableResult(unfulfillable), order), nil
	}

	if candidates := fullOrderCandidates(plans); len(candidates) > 0 {
		return e.allocateFull(order, snap, plans, candidates)
	}
	return e.allocateSplit(order, snap, plans)
}

// evaluateLines builds a feasibility plan per line, in input order,
// short-circuiting on the first line no supplier can cover.
func (e *Engine) evaluateLines(order *Order, snap *Snapshot) ([]linePlan, *Unfulfillable, error) {
	plans := make([]linePlan, 0, len(order.Lines))
	seen := make(map[LineKey]struct{}, len(order.Lines))

	for _, line := range order.Lines {
		if line.Quantity <= 0 {
			return nil, nil, fmt.Errorf("line %s: quantity must be positive, got %d", line.Key(), line.Quantity)
		}
		key := line.Key()
		if _, dup := seen[key]; dup {
			return nil, nil, fmt.Errorf("order %d: duplicate line key %s", order.ID, key)
		}
		seen[key] = struct{}{}

		parts := snap.PartsFor(line.ProductID)
		if len(parts) == 0 {
			// A single unsuppliable product voids the entire order.
			pid := line.ProductID
			return nil, &Unfulfillable{
				Reason:      fmt.Sprintf("%s has no supplier parts", line.ProductName),
				ProductID:   &pid,
				ProductName: line.ProductName,
			}, nil
		}

		plan, err := planLine(line, parts)
		if err != nil {
			return nil, nil, err
		}
		if len(plan.options) == 0 {
			pid := line.ProductID
			return nil, &Unfulfillable{
				Reason:      fmt.Sprintf("no supplier can fully supply all required parts for %s", line.ProductName),
				ProductID:   &pid,
				ProductName: line.ProductName,
			}, nil
		}
		plans = append(plans, plan)
	}
	return plans, nil, nil
}

// planLine groups a product's catalog rows by supplier and keeps only the
// suppliers that can cover every row in full. No partial credit: one short
// row disqualifies the supplier for the whole line.
func planLine(line OrderLine, parts []SupplierPartOption) (linePlan, error) {
	plan := linePlan{key: line.Key()}

	supplierOrder := make([]int64, 0, 2)
	grouped := make(map[int64][]SupplierPartOption)
	for _, part := range parts {
		if part.PacksNeeded <= 0 {
			return plan, fmt.Errorf("part %s: packs_needed must be positive, got %d", part.PartNumber, part.PacksNeeded)
		}
		if _, ok := grouped[part.SupplierID]; !ok {
			supplierOrder = append(supplierOrder, part.SupplierID)
		}
		grouped[part.SupplierID] = append(grouped[part.SupplierID], part)
	}

	for _, supplierID := range supplierOrder {
		group := grouped[supplierID]

		usable := true
		for _, part := range group {
			if part.Stock < part.RequiredPacks(line.Quantity) {
				usable = false
				break
			}
		}
		if !usable {
			continue
		}

		opt := lineOption{supplierID: supplierID, totalCost: decimal.Zero}
		for _, part := range group {
			packsTotal := part.RequiredPacks(line.Quantity)
			cost := part.UnitCost.Mul(decimal.NewFromInt(int64(packsTotal)))
			opt.parts = append(opt.parts, OrderPart{
				ProductID:        line.ProductID,
				ProductName:      line.ProductName,
				PartNumber:       part.PartNumber,
				PacksPerUnit:     part.PacksNeeded,
				PacksNeededTotal: packsTotal,
				UnitCost:         part.UnitCost,
				TotalCost:        cost,
				BikeID:           line.BikeID,
				BikeName:         line.DisplayBikeName(),
				FitmentID:        line.FitmentID,
				FitmentName:      line.DisplayFitmentName(),
			})
			opt.totalCost = opt.totalCost.Add(cost)
		}
		plan.options = append(plan.options, opt)
	}
	return plan, nil
}

// fullCandidate is a supplier able to cover every line of the order.
type fullCandidate struct {
	supplierID int64
	totalCost  decimal.Decimal
}

// fullOrderCandidates inverts the per-line plans and keeps the suppliers that
// cover every line, in the order they first appear across lines. The stable
// ordering makes tie-breaks deterministic.
func fullOrderCandidates(plans []linePlan) []fullCandidate {
	var supplierOrder []int64
	covered := make(map[int64]int)
	totals := make(map[int64]decimal.Decimal)

	for _, plan := range plans {
		for _, opt := range plan.options {
			if _, ok := covered[opt.supplierID]; !ok {
				supplierOrder = append(supplierOrder, opt.supplierID)
				totals[opt.supplierID] = decimal.Zero
			}
			covered[opt.supplierID]++
			totals[opt.supplierID] = totals[opt.supplierID].Add(opt.totalCost)
		}
	}

	var candidates []fullCandidate
	for _, id := range supplierOrder {
		if covered[id] == len(plans) {
			candidates = append(candidates, fullCandidate{supplierID: id, totalCost: totals[id]})
		}
	}
	return candidates
}

// allocateFull selects a single supplier for the whole order: the cheapest
// candidate, unless the preferred supplier is within the configured margin of
// it. First-encountered candidate wins exact cost ties.
func (e *Engine) allocateFull(order *Order, snap *Snapshot, plans []linePlan, candidates []fullCandidate) (*AllocationResult, error) {
	cheapest := candidates[0]
	var preferred *fullCandidate
	for i := range candidates {
		c := candidates[i]
		if c.totalCost.LessThan(cheapest.totalCost) {
			cheapest = c
		}
		if c.supplierID == e.cfg.PreferredSupplierID {
			preferred = &candidates[i]
		}
	}

	chosen := cheapest
	reason := reasonCheapest
	if preferred != nil && preferred.totalCost.Cmp(cheapest.totalCost.Add(e.cfg.PreferredMargin)) <= 0 {
		chosen = *preferred
		reason = fmt.Sprintf("Preferred supplier selected (within £%s of cheapest)", e.cfg.PreferredMargin.StringFixed(2))
	}

	name, err := snap.SupplierName(chosen.supplierID)
	if err != nil {
		return nil, err
	}
	if e.restrictedForAddress(name, order) {
		return withEcho(addressPolicyResult(name), order), nil
	}

	alloc := SupplierAllocation{
		SupplierName: name,
		TotalCost:    chosen.totalCost,
		Reason:       reason,
	}
	for _, plan := range plans {
		opt, ok := plan.option(chosen.supplierID)
		if !ok {
			return nil, fmt.Errorf("line %s: full-order candidate %d lost coverage", plan.key, chosen.supplierID)
		}
		alloc.OrderParts = append(alloc.OrderParts, opt.parts...)
	}

	return withEcho(&AllocationResult{Outcome: OutcomeFulfilled, Fulfilled: &alloc}, order), nil
}

// allocateSplit assigns every line independently to its cheapest feasible
// supplier (first-seen wins ties) and accumulates parts and cost per supplier.
func (e *Engine) allocateSplit(order *Order, snap *Snapshot, plans []linePlan) (*AllocationResult, error) {
	var supplierOrder []int64
	totals := make(map[int64]decimal.Decimal)
	parts := make(map[int64][]OrderPart)

	for _, plan := range plans {
		best := plan.options[0]
		for _, opt := range plan.options[1:] {
			if opt.totalCost.LessThan(best.totalCost) {
				best = opt
			}
		}
		if _, ok := totals[best.supplierID]; !ok {
			supplierOrder = append(supplierOrder, best.supplierID)
			totals[best.supplierID] = decimal.Zero
		}
		totals[best.supplierID] = totals[best.supplierID].Add(best.totalCost)
		parts[best.supplierID] = append(parts[best.supplierID], best.parts...)
	}

	// Unreachable while evaluateLines fails fast on infeasible lines, but an
	// empty order lands here, and the guard keeps the contract explicit.
	if len(supplierOrder) == 0 {
		return withEcho(unfulfillableResult(&Unfulfillable{
			Reason: "No supplier(s) can fulfill any part of this order.",
		}), order), nil
	}

	split := make(map[string]SupplierAllocation, len(supplierOrder))
	for _, id := range supplierOrder {
		name, err := snap.SupplierName(id)
		if err != nil {
			return nil, err
		}
		if e.restrictedForAddress(name, order) {
			return withEcho(addressPolicyResult(name), order), nil
		}
		split[name] = SupplierAllocation{
			SupplierName: name,
			TotalCost:    totals[id],
			OrderParts:   parts[id],
		}
	}

	return withEcho(&AllocationResult{Outcome: OutcomeSplit, Split: split}, order), nil
}

// restrictedForAddress reports whether the restricted-address policy bars the
// named supplier from this order. Lengths are byte lengths, matching the
// carrier's label limit. The check applies only to suppliers actually chosen.
func (e *Engine) restrictedForAddress(name string, order *Order) bool {
	if e.cfg.RestrictedSupplierName == "" || name != e.cfg.RestrictedSupplierName {
		return false
	}
	limit := e.cfg.MaxAddressFieldLen
	return len(order.Address.Line1) > limit ||
		len(order.Address.Line2) > limit ||
		len(order.Address.City) > limit
}

func unfulfillableResult(u *Unfulfillable) *AllocationResult {
	return &AllocationResult{Outcome: OutcomeUnfulfillable, Unfulfillable: u}
}

func addressPolicyResult(supplierName string) *AllocationResult {
	return unfulfillableResult(&Unfulfillable{
		Reason: fmt.Sprintf("%s cannot fulfill due to address line length limits", supplierName),
	})
}

// withEcho attaches the customer echo block. Every variant except
// MANUAL_REVIEW carries it.
func withEcho(res *AllocationResult, order *Order) *AllocationResult {
	res.Customer = &CustomerEcho{
		Name:     order.CustomerName,
		Email:    order.CustomerEmail,
		Phone:    order.CustomerPhone,
		Address:  order.Address,
		Comments: order.Comments,
	}
	return res
}
