package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/stuart-arnold/quickbooks-order-sync/internal/db"
)

// verify-db sanity-checks the schema and seed data: every core table must
// exist, and the catalog must contain suppliers and products before an
// allocation run can mean anything.
func main() {
	_ = godotenv.Load()

	ctx := context.Background()
	pool, err := db.NewPool(ctx)
	if err != nil {
		fmt.Printf("Failed to connect to DB: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	tables := []string{"suppliers", "products", "bikes", "fitments", "supplier_part_numbers", "orders", "order_items"}
	failed := false

	for _, table := range tables {
		var count int
		err := pool.QueryRow(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", table)).Scan(&count)
		if err != nil {
			fmt.Printf("  FAIL  %-22s %v\n", table, err)
			failed = true
			continue
		}
		fmt.Printf("  OK    %-22s %d row(s)\n", table, count)
	}

	var orphans int
	err = pool.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM supplier_part_numbers spn
		LEFT JOIN suppliers s ON s.id = spn.supplier_id
		WHERE s.id IS NULL
	`).Scan(&orphans)
	if err != nil {
		fmt.Printf("  FAIL  orphan check: %v\n", err)
		failed = true
	} else if orphans > 0 {
		fmt.Printf("  FAIL  %d supplier_part_numbers row(s) reference missing suppliers\n", orphans)
		failed = true
	} else {
		fmt.Println("  OK    no orphaned supplier parts")
	}

	if failed {
		os.Exit(1)
	}
	fmt.Println("Database verified.")
}
