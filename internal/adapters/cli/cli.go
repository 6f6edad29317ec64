package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/stuart-arnold/quickbooks-order-sync/internal/app"
	"github.com/stuart-arnold/quickbooks-order-sync/internal/core"
)

// Run executes a one-shot CLI command and exits.
// args is os.Args[1:] — the first element is the subcommand name.
func Run(ctx context.Context, svc app.ApplicationService, args []string) {
	switch args[0] {
	case "orders", "pending":
		result, err := svc.ListPendingOrders(ctx)
		if err != nil {
			log.Fatalf("Failed to list pending orders: %v", err)
		}
		printOrders(result.Orders)

	case "show":
		order, err := svc.GetOrder(ctx, parseOrderID(args))
		if err != nil {
			log.Fatalf("Failed to fetch order: %v", err)
		}
		printOrder(order)

	case "allocate", "alloc":
		outcome, err := svc.AllocateOrder(ctx, parseOrderID(args))
		if err != nil {
			log.Fatalf("Allocation failed: %v", err)
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		enc.Encode(outcome)

	case "run":
		result, err := svc.RunPending(ctx)
		if err != nil {
			log.Fatalf("Allocation run failed: %v", err)
		}
		printRun(result)

	default:
		log.Fatalf("Unknown command: %s\nAvailable: orders, show <id>, allocate <id>, run", args[0])
	}
}

func parseOrderID(args []string) int64 {
	if len(args) < 2 {
		log.Fatalf("Usage: app %s <order-id>", args[0])
	}
	id, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		log.Fatalf("Invalid order id %q", args[1])
	}
	return id
}

func printOrders(orders []core.Order) {
	fmt.Println()
	fmt.Printf("%-6s %-22s %-16s %-6s %s\n", "ID", "CUSTOMER", "CITY", "LINES", "COMMENTS")
	fmt.Println(strings.Repeat("-", 72))
	for _, o := range orders {
		comments := ""
		if o.Comments != "" {
			comments = "yes"
		}
		fmt.Printf("%-6d %-22s %-16s %-6d %s\n",
			o.ID, o.CustomerName, o.Address.City, len(o.Lines), comments)
	}
	fmt.Println(strings.Repeat("-", 72))
	fmt.Printf("%d pending order(s)\n", len(orders))
}

func printOrder(o *core.Order) {
	fmt.Printf("\nORDER #%d (%s)\n", o.ID, o.Status)
	fmt.Printf("Customer : %s <%s> %s\n", o.CustomerName, o.CustomerEmail, o.CustomerPhone)
	fmt.Printf("Address  : %s, %s, %s %s, %s\n",
		o.Address.Line1, o.Address.Line2, o.Address.City, o.Address.Postcode, o.Address.Country)
	if o.Comments != "" {
		fmt.Printf("Comments : %s\n", o.Comments)
	}
	fmt.Println("LINES:")
	for _, l := range o.Lines {
		fmt.Printf("  %d × %s (%s / %s)\n",
			l.Quantity, l.ProductName, l.DisplayBikeName(), l.DisplayFitmentName())
	}
}

func printRun(result *app.RunResult) {
	fmt.Printf("\nALLOCATION RUN %s\n", result.RunID)
	fmt.Printf("%-6s %-14s %-16s %-10s %s\n", "ORDER", "OUTCOME", "STATUS", "COST", "SUPPLIERS")
	fmt.Println(strings.Repeat("-", 76))
	for _, oc := range result.Outcomes {
		fmt.Printf("%-6d %-14s %-16s %-10s %s\n",
			oc.OrderID, oc.Result.Outcome, oc.Status, runCost(oc.Result), runSuppliers(oc.Result))
	}
	fmt.Println(strings.Repeat("-", 76))
	fmt.Printf("%d order(s) evaluated\n", len(result.Outcomes))
}

func runCost(r *core.AllocationResult) string {
	switch r.Outcome {
	case core.OutcomeFulfilled:
		return r.Fulfilled.TotalCost.StringFixed(2)
	case core.OutcomeSplit:
		total := decimal.Zero
		for _, alloc := range r.Split {
			total = total.Add(alloc.TotalCost)
		}
		return total.StringFixed(2)
	}
	return "-"
}

func runSuppliers(r *core.AllocationResult) string {
	switch r.Outcome {
	case core.OutcomeFulfilled:
		return r.Fulfilled.SupplierName
	case core.OutcomeSplit:
		names := make([]string, 0, len(r.Split))
		for name := range r.Split {
			names = append(names, name)
		}
		// Stable display order regardless of map iteration.
		sort.Strings(names)
		return strings.Join(names, ", ")
	case core.OutcomeUnfulfillable:
		return r.Unfulfillable.Reason
	}
	return "-"
}
