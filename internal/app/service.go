package app

import (
	"context"

	"github.com/stuart-arnold/quickbooks-order-sync/internal/core"
)

// ApplicationService is the single interface all adapters call. It decouples
// presentation from the allocation logic; implementations contain no
// fmt.Println and no display logic of any kind.
type ApplicationService interface {
	// ListPendingOrders returns orders awaiting allocation, oldest first.
	ListPendingOrders(ctx context.Context) (*OrderListResult, error)

	// GetOrder returns a single order with its lines.
	GetOrder(ctx context.Context, orderID int64) (*core.Order, error)

	// AllocateOrder runs the allocation engine for one order. It is read-only:
	// order status is untouched, so the same order can be re-evaluated freely.
	AllocateOrder(ctx context.Context, orderID int64) (*AllocationOutcome, error)

	// RunPending allocates every pending order and writes back its status:
	// FULFILLED and SPLIT become processed, MANUAL_REVIEW and UNFULFILLABLE
	// become needs_attention.
	RunPending(ctx context.Context) (*RunResult, error)
}
