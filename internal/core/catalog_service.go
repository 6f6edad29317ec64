package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CatalogService loads orders and assembles the read-only snapshots the
// allocation engine consumes. It is the single injection point between the
// engine and external state: the engine never queries anything itself.
type CatalogService interface {
	// GetOrder returns an order header with its lines, in line insertion order.
	GetOrder(ctx context.Context, orderID int64) (*Order, error)

	// GetPendingOrders returns every order awaiting allocation, oldest first,
	// with lines populated.
	GetPendingOrders(ctx context.Context) ([]Order, error)

	// BuildSnapshot gathers all supplier part options for the order's products
	// plus the full supplier directory.
	BuildSnapshot(ctx context.Context, order *Order) (*Snapshot, error)

	// UpdateOrderStatus records the outcome of an allocation run. The engine
	// itself never writes; only the batch runner calls this.
	UpdateOrderStatus(ctx context.Context, orderID int64, status string) error
}

type catalogService struct {
	pool *pgxpool.Pool
}

// NewCatalogService constructs a CatalogService backed by PostgreSQL.
func NewCatalogService(pool *pgxpool.Pool) CatalogService {
	return &catalogService{pool: pool}
}

func (s *catalogService) GetOrder(ctx context.Context, orderID int64) (*Order, error) {
	var o Order
	err := s.pool.QueryRow(ctx, `
		SELECT id, status,
		       COALESCE(customer_name, ''), COALESCE(customer_email, ''), COALESCE(customer_phone, ''),
		       COALESCE(address_line_1, ''), COALESCE(address_line_2, ''), COALESCE(city, ''),
		       COALESCE(postcode, ''), COALESCE(country, ''),
		       COALESCE(order_comments, ''), COALESCE(delivery_method, '')
		FROM orders
		WHERE id = $1
	`, orderID).Scan(
		&o.ID, &o.Status,
		&o.CustomerName, &o.CustomerEmail, &o.CustomerPhone,
		&o.Address.Line1, &o.Address.Line2, &o.Address.City,
		&o.Address.Postcode, &o.Address.Country,
		&o.Comments, &o.DeliveryMethod,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("order %d not found", orderID)
		}
		return nil, fmt.Errorf("failed to fetch order %d: %w", orderID, err)
	}

	lines, err := s.fetchOrderLines(ctx, orderID)
	if err != nil {
		return nil, err
	}
	o.Lines = lines
	return &o, nil
}

func (s *catalogService) GetPendingOrders(ctx context.Context) ([]Order, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, status,
		       COALESCE(customer_name, ''), COALESCE(customer_email, ''), COALESCE(customer_phone, ''),
		       COALESCE(address_line_1, ''), COALESCE(address_line_2, ''), COALESCE(city, ''),
		       COALESCE(postcode, ''), COALESCE(country, ''),
		       COALESCE(order_comments, ''), COALESCE(delivery_method, '')
		FROM orders
		WHERE status = $1
		ORDER BY id
	`, StatusPending)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending orders: %w", err)
	}
	defer rows.Close()

	var orders []Order
	for rows.Next() {
		var o Order
		if err := rows.Scan(
			&o.ID, &o.Status,
			&o.CustomerName, &o.CustomerEmail, &o.CustomerPhone,
			&o.Address.Line1, &o.Address.Line2, &o.Address.City,
			&o.Address.Postcode, &o.Address.Country,
			&o.Comments, &o.DeliveryMethod,
		); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read pending orders: %w", err)
	}

	for i := range orders {
		lines, err := s.fetchOrderLines(ctx, orders[i].ID)
		if err != nil {
			return nil, err
		}
		orders[i].Lines = lines
	}
	return orders, nil
}

func (s *catalogService) fetchOrderLines(ctx context.Context, orderID int64) ([]OrderLine, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT oi.id, oi.product_id, COALESCE(p.name, oi.product_name),
		       oi.quantity, oi.bike_id, COALESCE(oi.bike_name, ''),
		       oi.fitment_id, COALESCE(oi.fitment_name, '')
		FROM order_items oi
		LEFT JOIN products p ON p.id = oi.product_id
		WHERE oi.order_id = $1
		ORDER BY oi.id
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to query order lines: %w", err)
	}
	defer rows.Close()

	var lines []OrderLine
	for rows.Next() {
		var l OrderLine
		if err := rows.Scan(
			&l.ID, &l.ProductID, &l.ProductName,
			&l.Quantity, &l.BikeID, &l.BikeName,
			&l.FitmentID, &l.FitmentName,
		); err != nil {
			return nil, fmt.Errorf("failed to scan order line: %w", err)
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read order lines: %w", err)
	}
	return lines, nil
}

func (s *catalogService) BuildSnapshot(ctx context.Context, order *Order) (*Snapshot, error) {
	snap := &Snapshot{
		PartsByProduct: make(map[int64][]SupplierPartOption),
		Suppliers:      make(map[int64]Supplier),
	}

	productIDs := make([]int64, 0, len(order.Lines))
	seen := make(map[int64]struct{}, len(order.Lines))
	for _, line := range order.Lines {
		if _, ok := seen[line.ProductID]; ok {
			continue
		}
		seen[line.ProductID] = struct{}{}
		productIDs = append(productIDs, line.ProductID)
	}

	if len(productIDs) > 0 {
		rows, err := s.pool.Query(ctx, `
			SELECT id, product_id, supplier_id, supplier_part_number, packs_needed, cost, stock
			FROM supplier_part_numbers
			WHERE product_id = ANY($1)
			ORDER BY product_id, id
		`, productIDs)
		if err != nil {
			return nil, fmt.Errorf("failed to query supplier parts: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var p SupplierPartOption
			if err := rows.Scan(&p.ID, &p.ProductID, &p.SupplierID, &p.PartNumber, &p.PacksNeeded, &p.UnitCost, &p.Stock); err != nil {
				return nil, fmt.Errorf("failed to scan supplier part: %w", err)
			}
			snap.PartsByProduct[p.ProductID] = append(snap.PartsByProduct[p.ProductID], p)
		}
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("failed to read supplier parts: %w", err)
		}
	}

	supRows, err := s.pool.Query(ctx, `SELECT id, name FROM suppliers ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query suppliers: %w", err)
	}
	defer supRows.Close()

	for supRows.Next() {
		var sup Supplier
		if err := supRows.Scan(&sup.ID, &sup.Name); err != nil {
			return nil, fmt.Errorf("failed to scan supplier: %w", err)
		}
		snap.Suppliers[sup.ID] = sup
	}
	if err := supRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read suppliers: %w", err)
	}

	return snap, nil
}

func (s *catalogService) UpdateOrderStatus(ctx context.Context, orderID int64, status string) error {
	tag, err := s.pool.Exec(ctx,
		"UPDATE orders SET status = $1, updated_at = NOW() WHERE id = $2",
		status, orderID,
	)
	if err != nil {
		return fmt.Errorf("failed to update status of order %d: %w", orderID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("order %d not found", orderID)
	}
	return nil
}
