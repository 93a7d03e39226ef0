// Package sales is the sample Sales module served by the registry.
package sales

import (
	"time"

	"github.com/km-arc/go-resolver/framework/catalog"
	"github.com/km-arc/go-resolver/framework/providers"
)

// Module is the catalog module name.
const Module = "Sales"

type Customer struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

type Order struct {
	ID         string    `json:"id"`
	CustomerID string    `json:"customerId"`
	Total      float64   `json:"total"`
	PlacedAt   time.Time `json:"placedAt,omitzero"`
}

type Invoice struct {
	Number  string  `json:"number" registry:"id"`
	OrderID string  `json:"orderId"`
	Amount  float64 `json:"amount"`
	Paid    bool    `json:"paid"`
}

// Entities lists the module's entity types.
func Entities() []providers.Entity {
	return []providers.Entity{
		providers.EntityOf[Customer](catalog.WithTable("customers")),
		providers.EntityOf[Order](catalog.WithTable("orders")),
		providers.EntityOf[Invoice](catalog.WithTable("invoices"), catalog.WithSchema("billing")),
	}
}
