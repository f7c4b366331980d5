package order

// Item is one catalog entry: a flavor name and its unit price.
type Item struct {
	Name  string
	Price float64
}

// Catalog is the fixed product list. Order matters: extraction walks it
// front to back, so matched flavors come out in catalog order.
var Catalog = []Item{
	{Name: "uva", Price: 5.99},
	{Name: "limão", Price: 5.99},
	{Name: "guaraná", Price: 5.99},
	{Name: "laranja", Price: 5.99},
}

const (
	// UnitPrice is the flat per-unit price shared by every flavor.
	UnitPrice = 5.99
	// ShippingFee is a flat delivery fee, not derived from the CEP.
	ShippingFee = 5.00
)

// Fragment accumulates structured order data across conversation turns.
// Flavors and Quantities are parallel slices; they are only reconciled
// at pricing time. Quantities stay as the raw digit strings the customer
// typed until then.
type Fragment struct {
	Flavors    []string
	Quantities []string
	CEP        string
	Payment    string
}
