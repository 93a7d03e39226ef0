// Package inventory is the sample Inventory module. Its Order is a purchase
// order and shares a name with sales.Order; resolve it with the Inventory
// module or the inventory namespace.
package inventory

import (
	"github.com/km-arc/go-resolver/framework/catalog"
	"github.com/km-arc/go-resolver/framework/providers"
)

const Module = "Inventory"

type Product struct {
	ID    string `json:"id"`
	SKU   string `json:"sku"`
	Stock int    `json:"stock"`
}

type Order struct {
	ID        string `json:"id"`
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

func Entities() []providers.Entity {
	return []providers.Entity{
		providers.EntityOf[Product](catalog.WithTable("products")),
		providers.EntityOf[Order](catalog.WithTable("purchase_orders")),
	}
}
