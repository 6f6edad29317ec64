package core

import "fmt"

// Order statuses as persisted in the orders table.
const (
	StatusPending        = "pending"
	StatusProcessed      = "processed"
	StatusNeedsAttention = "needs_attention"
)

// Address is a customer shipping address.
type Address struct {
	Line1    string `json:"line_1"`
	Line2    string `json:"line_2"`
	City     string `json:"city"`
	Postcode string `json:"postcode"`
	Country  string `json:"country"`
}

// Order is a captured customer order. It is created by the order-capture
// process and read-only to the allocation engine. Non-empty Comments force
// manual handling before any cost analysis runs.
type Order struct {
	ID             int64       `json:"id"`
	Status         string      `json:"status"`
	CustomerName   string      `json:"customer_name"`
	CustomerEmail  string      `json:"customer_email"`
	CustomerPhone  string      `json:"customer_phone"`
	Address        Address     `json:"address"`
	Comments       string      `json:"comments"`
	DeliveryMethod string      `json:"delivery_method"`
	Lines          []OrderLine `json:"lines"`
}

// OrderLine is one line item on an order. BikeID/FitmentID and their names are
// optional descriptive labels used only for display.
type OrderLine struct {
	ID          int64  `json:"id"`
	ProductID   int64  `json:"product_id"`
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
	BikeID      *int64 `json:"bike_id,omitempty"`
	BikeName    string `json:"bike_name,omitempty"`
	FitmentID   *int64 `json:"fitment_id,omitempty"`
	FitmentName string `json:"fitment_name,omitempty"`
}

// Placeholder labels for lines captured without bike or fitment data.
const (
	UnknownBike    = "Unknown Bike"
	UnknownFitment = "Unknown Fitment"
)

// DisplayBikeName returns the bike label, falling back to the placeholder.
func (l OrderLine) DisplayBikeName() string {
	if l.BikeName == "" {
		return UnknownBike
	}
	return l.BikeName
}

// DisplayFitmentName returns the fitment label, falling back to the placeholder.
func (l OrderLine) DisplayFitmentName() string {
	if l.FitmentName == "" {
		return UnknownFitment
	}
	return l.FitmentName
}

// LineKey is the stable identity of one order line, used to correlate
// per-supplier feasibility across lines. It is the line's own id when the line
// has been persisted, otherwise a composite of product, bike and fitment ids.
// A dedicated value type rather than concatenated strings, so distinct lines
// can never collide.
type LineKey struct {
	ItemID    int64
	ProductID int64
	BikeID    int64
	FitmentID int64
}

// Key derives the LineKey for this line.
func (l OrderLine) Key() LineKey {
	if l.ID != 0 {
		return LineKey{ItemID: l.ID}
	}
	k := LineKey{ProductID: l.ProductID}
	if l.BikeID != nil {
		k.BikeID = *l.BikeID
	}
	if l.FitmentID != nil {
		k.FitmentID = *l.FitmentID
	}
	return k
}

func (k LineKey) String() string {
	if k.ItemID != 0 {
		return fmt.Sprintf("item:%d", k.ItemID)
	}
	return fmt.Sprintf("product:%d/bike:%d/fitment:%d", k.ProductID, k.BikeID, k.FitmentID)
}
