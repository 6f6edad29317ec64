package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/stuart-arnold/quickbooks-order-sync/internal/core"
)

type appService struct {
	catalog core.CatalogService
	engine  *core.Engine
	logger  *slog.Logger
}

// NewAppService constructs an appService that satisfies ApplicationService.
func NewAppService(catalog core.CatalogService, engine *core.Engine, logger *slog.Logger) ApplicationService {
	return &appService{
		catalog: catalog,
		engine:  engine,
		logger:  logger,
	}
}

func (s *appService) ListPendingOrders(ctx context.Context) (*OrderListResult, error) {
	orders, err := s.catalog.GetPendingOrders(ctx)
	if err != nil {
		return nil, err
	}
	return &OrderListResult{Orders: orders}, nil
}

func (s *appService) GetOrder(ctx context.Context, orderID int64) (*core.Order, error) {
	return s.catalog.GetOrder(ctx, orderID)
}

func (s *appService) AllocateOrder(ctx context.Context, orderID int64) (*AllocationOutcome, error) {
	order, err := s.catalog.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	snap, err := s.catalog.BuildSnapshot(ctx, order)
	if err != nil {
		return nil, err
	}

	result, err := s.engine.Allocate(order, snap)
	if err != nil {
		return nil, fmt.Errorf("allocation of order %d failed: %w", orderID, err)
	}

	return &AllocationOutcome{OrderID: order.ID, Result: result}, nil
}

func (s *appService) RunPending(ctx context.Context) (*RunResult, error) {
	run := &RunResult{RunID: uuid.New()}

	orders, err := s.catalog.GetPendingOrders(ctx)
	if err != nil {
		return nil, err
	}
	s.logger.Info("allocation run started",
		"run_id", run.RunID.String(), "pending_orders", len(orders))

	for i := range orders {
		order := &orders[i]

		snap, err := s.catalog.BuildSnapshot(ctx, order)
		if err != nil {
			return nil, err
		}
		result, err := s.engine.Allocate(order, snap)
		if err != nil {
			return nil, fmt.Errorf("allocation of order %d failed: %w", order.ID, err)
		}

		status := core.StatusNeedsAttention
		if result.Outcome == core.OutcomeFulfilled || result.Outcome == core.OutcomeSplit {
			status = core.StatusProcessed
		}
		if err := s.catalog.UpdateOrderStatus(ctx, order.ID, status); err != nil {
			return nil, err
		}

		s.logger.Info("order allocated",
			"run_id", run.RunID.String(),
			"order_id", order.ID,
			"outcome", string(result.Outcome),
			"status", status)

		run.Outcomes = append(run.Outcomes, AllocationOutcome{
			OrderID: order.ID,
			Status:  status,
			Result:  result,
		})
	}

	s.logger.Info("allocation run finished",
		"run_id", run.RunID.String(), "orders_processed", len(run.Outcomes))
	return run, nil
}
