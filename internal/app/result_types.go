package app

import (
	"github.com/google/uuid"

	"github.com/stuart-arnold/quickbooks-order-sync/internal/core"
)

// OrderListResult is returned by ListPendingOrders.
type OrderListResult struct {
	Orders []core.Order
}

// AllocationOutcome pairs an order with its allocation result.
type AllocationOutcome struct {
	OrderID int64                  `json:"order_id"`
	Status  string                 `json:"status,omitempty"` // written back by RunPending
	Result  *core.AllocationResult `json:"result"`
}

// RunResult is one batch allocation pass over all pending orders.
type RunResult struct {
	RunID    uuid.UUID           `json:"run_id"`
	Outcomes []AllocationOutcome `json:"outcomes"`
}
