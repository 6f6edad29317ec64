package core

import (
	"fmt"
	"os"
	"strconv"

	"github.com/shopspring/decimal"
)

// Config holds the allocation policy thresholds that used to live as literals
// in the selection logic. It is passed into the engine at construction.
type Config struct {
	// PreferredSupplierID is favored in full-order selection when its total
	// cost is within PreferredMargin of the cheapest candidate. Zero disables
	// the preference.
	PreferredSupplierID int64
	// PreferredMargin is expressed in the order's currency.
	PreferredMargin decimal.Decimal
	// RestrictedSupplierName names the supplier whose carrier cannot print
	// address fields longer than MaxAddressFieldLen. Empty disables the policy.
	RestrictedSupplierName string
	MaxAddressFieldLen     int
}

// DefaultConfig mirrors the production policy: Hendler (supplier 1) preferred
// within £1.00, Hi-Level barred from addresses with any field over 30 bytes.
func DefaultConfig() Config {
	return Config{
		PreferredSupplierID:    1,
		PreferredMargin:        decimal.RequireFromString("1.00"),
		RestrictedSupplierName: "Hi-Level",
		MaxAddressFieldLen:     30,
	}
}

// ConfigFromEnv starts from DefaultConfig and applies environment overrides.
func ConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()

	if v := os.Getenv("PREFERRED_SUPPLIER_ID"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return cfg, fmt.Errorf("invalid PREFERRED_SUPPLIER_ID %q: %w", v, err)
		}
		cfg.PreferredSupplierID = id
	}
	if v := os.Getenv("PREFERRED_MARGIN"); v != "" {
		margin, err := decimal.NewFromString(v)
		if err != nil {
			return cfg, fmt.Errorf("invalid PREFERRED_MARGIN %q: %w", v, err)
		}
		if margin.IsNegative() {
			return cfg, fmt.Errorf("PREFERRED_MARGIN must not be negative, got %s", v)
		}
		cfg.PreferredMargin = margin
	}
	if v := os.Getenv("RESTRICTED_SUPPLIER_NAME"); v != "" {
		cfg.RestrictedSupplierName = v
	}
	if v := os.Getenv("MAX_ADDRESS_FIELD_LEN"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return cfg, fmt.Errorf("invalid MAX_ADDRESS_FIELD_LEN %q", v)
		}
		cfg.MaxAddressFieldLen = n
	}
	return cfg, nil
}
