package core_test

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/stuart-arnold/quickbooks-order-sync/internal/core"
)

func setupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	_ = godotenv.Load("../../.env")

	// Use a dedicated TEST database to avoid wiping the live app database.
	// Set TEST_DATABASE_URL in your .env or environment to run integration tests.
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set — skipping integration test to protect live database")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	_, err = pool.Exec(ctx, `
		TRUNCATE TABLE order_items, orders, product_fitments, supplier_part_numbers,
			fitments, bikes, products, suppliers RESTART IDENTITY CASCADE;

		INSERT INTO suppliers (id, name) VALUES
		(1, 'Hendler'),
		(2, 'Hi-Level');

		INSERT INTO products (id, name, sku, price) VALUES
		(1, 'EBC HH Brake Pads', 'EBC-FA347HH', 32.99),
		(2, 'Brake Disc Wave', 'BRAKE-DISC-WAVE', 109.50),
		(3, 'Mirror Universal', 'MIRROR-UNI-BLK', 15.99);

		INSERT INTO bikes (id, name) VALUES (1, 'Yamaha R6 2006');
		INSERT INTO fitments (id, name) VALUES (1, 'Front');

		INSERT INTO supplier_part_numbers (product_id, supplier_id, supplier_part_number, packs_needed, cost, stock) VALUES
		(1, 1, 'SPN-EBC01', 1, 9.00, 40),
		(1, 2, 'SPN-EBC91', 1, 10.00, 40),
		(2, 1, 'SPN-DSC02', 1, 7.00, 25),
		(2, 2, 'SPN-DSC92', 1, 8.00, 25),
		(3, 2, 'SPN-MIR93', 2, 4.50, 30);

		INSERT INTO orders (id, status, customer_name, customer_email, customer_phone,
		                    address_line_1, address_line_2, city, postcode, country,
		                    order_comments, delivery_method) VALUES
		(1, 'pending', 'Alice Johnson', 'alice@example.com', '07123456789',
		 '12 Elm Street', 'Flat 2A', 'Sheffield', 'S1 2AB', 'UK', NULL, 'standard'),
		(2, 'pending', 'Edward King', 'edward@example.com', '07567890123',
		 '90 Market Square', 'Unit 5', 'Belfast', 'BT15 4DF', 'UK',
		 'Contact before delivery.', 'express'),
		(3, 'processed', 'Charlie Rose', 'charlie@example.com', '07345678901',
		 '56 Baker Street', NULL, 'Nottingham', 'NG1 5GH', 'UK', NULL, 'standard');

		INSERT INTO order_items (order_id, product_id, bike_id, fitment_id, bike_name, fitment_name,
		                         quantity, product_name, product_price, product_sku) VALUES
		(1, 1, 1, 1, 'Yamaha R6 2006', 'Front', 1, 'EBC HH Brake Pads', 32.99, 'EBC-FA347HH'),
		(1, 2, 1, 1, 'Yamaha R6 2006', 'Front', 1, 'Brake Disc Wave', 109.50, 'BRAKE-DISC-WAVE'),
		(2, 1, NULL, NULL, NULL, NULL, 1, 'EBC HH Brake Pads', 32.99, 'EBC-FA347HH'),
		(3, 3, NULL, NULL, NULL, NULL, 1, 'Mirror Universal', 15.99, 'MIRROR-UNI-BLK');

		SELECT setval('suppliers_id_seq', (SELECT MAX(id) FROM suppliers));
		SELECT setval('products_id_seq',  (SELECT MAX(id) FROM products));
		SELECT setval('bikes_id_seq',     (SELECT MAX(id) FROM bikes));
		SELECT setval('fitments_id_seq',  (SELECT MAX(id) FROM fitments));
		SELECT setval('orders_id_seq',    (SELECT MAX(id) FROM orders));
	`)
	if err != nil {
		t.Fatalf("Failed to seed test database: %v", err)
	}

	return pool
}

func TestCatalogService_GetOrder(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	catalog := core.NewCatalogService(pool)
	ctx := context.Background()

	order, err := catalog.GetOrder(ctx, 1)
	if err != nil {
		t.Fatalf("GetOrder failed: %v", err)
	}
	if order.CustomerName != "Alice Johnson" {
		t.Errorf("Expected Alice Johnson, got %s", order.CustomerName)
	}
	if order.Address.Line1 != "12 Elm Street" || order.Address.City != "Sheffield" {
		t.Errorf("Address not loaded: %+v", order.Address)
	}
	if len(order.Lines) != 2 {
		t.Fatalf("Expected 2 lines, got %d", len(order.Lines))
	}
	if order.Lines[0].ProductID != 1 || order.Lines[1].ProductID != 2 {
		t.Errorf("Lines out of insertion order: %d, %d",
			order.Lines[0].ProductID, order.Lines[1].ProductID)
	}
	if order.Lines[0].BikeName != "Yamaha R6 2006" || order.Lines[0].FitmentName != "Front" {
		t.Errorf("Snapshot bike/fitment names not loaded: %+v", order.Lines[0])
	}

	// Nullable columns come back as empty strings, not scan errors.
	order3, err := catalog.GetOrder(ctx, 3)
	if err != nil {
		t.Fatalf("GetOrder 3 failed: %v", err)
	}
	if order3.Address.Line2 != "" {
		t.Errorf("Expected empty line 2, got %q", order3.Address.Line2)
	}

	if _, err := catalog.GetOrder(ctx, 999); err == nil {
		t.Error("Expected error for missing order")
	}
}

func TestCatalogService_GetPendingOrders(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	catalog := core.NewCatalogService(pool)
	ctx := context.Background()

	orders, err := catalog.GetPendingOrders(ctx)
	if err != nil {
		t.Fatalf("GetPendingOrders failed: %v", err)
	}
	// Order 3 is already processed and must not appear.
	if len(orders) != 2 {
		t.Fatalf("Expected 2 pending orders, got %d", len(orders))
	}
	if orders[0].ID != 1 || orders[1].ID != 2 {
		t.Errorf("Expected oldest-first ids 1, 2; got %d, %d", orders[0].ID, orders[1].ID)
	}
	if len(orders[0].Lines) == 0 {
		t.Error("Pending orders must come with lines populated")
	}
	if orders[1].Comments != "Contact before delivery." {
		t.Errorf("Comments not loaded: %q", orders[1].Comments)
	}
}

func TestCatalogService_BuildSnapshot(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	catalog := core.NewCatalogService(pool)
	ctx := context.Background()

	order, err := catalog.GetOrder(ctx, 1)
	if err != nil {
		t.Fatalf("GetOrder failed: %v", err)
	}

	snap, err := catalog.BuildSnapshot(ctx, order)
	if err != nil {
		t.Fatalf("BuildSnapshot failed: %v", err)
	}

	// Only the order's products are loaded; product 3 stays out.
	if len(snap.PartsByProduct) != 2 {
		t.Errorf("Expected parts for 2 products, got %d", len(snap.PartsByProduct))
	}
	if _, ok := snap.PartsByProduct[3]; ok {
		t.Error("Snapshot must not include products the order does not reference")
	}
	pads := snap.PartsFor(1)
	if len(pads) != 2 {
		t.Fatalf("Expected 2 options for product 1, got %d", len(pads))
	}
	if !pads[0].UnitCost.Equal(decimal.RequireFromString("9.00")) {
		t.Errorf("Expected unit cost 9.00, got %s", pads[0].UnitCost)
	}

	// The supplier directory is always complete.
	if len(snap.Suppliers) != 2 {
		t.Errorf("Expected 2 suppliers, got %d", len(snap.Suppliers))
	}
	name, err := snap.SupplierName(2)
	if err != nil {
		t.Fatalf("SupplierName failed: %v", err)
	}
	if name != "Hi-Level" {
		t.Errorf("Expected Hi-Level, got %s", name)
	}
}

func TestCatalogService_UpdateOrderStatus(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	catalog := core.NewCatalogService(pool)
	ctx := context.Background()

	if err := catalog.UpdateOrderStatus(ctx, 1, core.StatusProcessed); err != nil {
		t.Fatalf("UpdateOrderStatus failed: %v", err)
	}
	order, err := catalog.GetOrder(ctx, 1)
	if err != nil {
		t.Fatalf("GetOrder failed: %v", err)
	}
	if order.Status != core.StatusProcessed {
		t.Errorf("Expected %s, got %s", core.StatusProcessed, order.Status)
	}

	if err := catalog.UpdateOrderStatus(ctx, 999, core.StatusProcessed); err == nil {
		t.Error("Expected error updating a missing order")
	}
}

func TestCatalogService_EndToEndAllocation(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	catalog := core.NewCatalogService(pool)
	engine := core.NewEngine(core.DefaultConfig())
	ctx := context.Background()

	order, err := catalog.GetOrder(ctx, 1)
	if err != nil {
		t.Fatalf("GetOrder failed: %v", err)
	}
	snap, err := catalog.BuildSnapshot(ctx, order)
	if err != nil {
		t.Fatalf("BuildSnapshot failed: %v", err)
	}

	result, err := engine.Allocate(order, snap)
	if err != nil {
		t.Fatalf("Allocate failed: %v", err)
	}
	if result.Outcome != core.OutcomeFulfilled {
		t.Fatalf("Expected FULFILLED, got %s", result.Outcome)
	}
	if result.Fulfilled.SupplierName != "Hendler" {
		t.Errorf("Expected Hendler, got %s", result.Fulfilled.SupplierName)
	}
	if !result.Fulfilled.TotalCost.Equal(decimal.RequireFromString("16.00")) {
		t.Errorf("Expected total 16.00, got %s", result.Fulfilled.TotalCost)
	}

	// The commented order must short-circuit to manual review.
	commented, err := catalog.GetOrder(ctx, 2)
	if err != nil {
		t.Fatalf("GetOrder 2 failed: %v", err)
	}
	snap2, err := catalog.BuildSnapshot(ctx, commented)
	if err != nil {
		t.Fatalf("BuildSnapshot 2 failed: %v", err)
	}
	result2, err := engine.Allocate(commented, snap2)
	if err != nil {
		t.Fatalf("Allocate 2 failed: %v", err)
	}
	if result2.Outcome != core.OutcomeManualReview {
		t.Errorf("Expected MANUAL_REVIEW, got %s", result2.Outcome)
	}
}
