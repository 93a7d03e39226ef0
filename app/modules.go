// Package app registers the sample modules on an application.
package app

import (
	"context"

	"github.com/km-arc/go-resolver/app/inventory"
	"github.com/km-arc/go-resolver/app/sales"
	kernel "github.com/km-arc/go-resolver/framework/app"
)

// Register adds every sample module to a, in catalog order.
func Register(ctx context.Context, a *kernel.Application) error {
	if err := a.Module(ctx, sales.Module, sales.Entities()...); err != nil {
		return err
	}
	return a.Module(ctx, inventory.Module, inventory.Entities()...)
}
