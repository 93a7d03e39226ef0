package resolver_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-resolver/framework/catalog"
	"github.com/km-arc/go-resolver/framework/resolver"
)

type Order struct{ ID int }
type Customer struct{ Name string }

func newResolver(t *testing.T) *resolver.Resolver {
	t.Helper()
	cat := catalog.New()
	require.NoError(t, cat.Register("Sales",
		catalog.Of[Order](catalog.WithNamespace("sales")),
		catalog.Of[Customer](catalog.WithNamespace("crm")),
	))
	require.NoError(t, cat.Register("Billing", catalog.Of[Order](catalog.WithNamespace("billing"))))
	return resolver.New(cat)
}

func TestTypeByName(t *testing.T) {
	r := newResolver(t)

	tests := []struct {
		name, namespace string
		wantModule      string
		wantOK          bool
	}{
		{"order", "", "Sales", true},
		{"Order", "billing", "Billing", true},
		{"ORDER", "BILLING", "Billing", true},
		{"customer", "crm", "Sales", true},
		{"customer", "sales", "", false},
		{"Widget", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name+"/"+tt.namespace, func(t *testing.T) {
			got, ok := r.TypeByName(tt.name, tt.namespace)
			require.Equal(t, tt.wantOK, ok)
			if ok {
				assert.Equal(t, tt.wantModule, got.Module)
			}
		})
	}
}

func TestTypeByNameInModule(t *testing.T) {
	r := newResolver(t)

	got, ok := r.TypeByNameInModule("order", "billing", "")
	require.True(t, ok)
	assert.Equal(t, "billing.Order", got.FullName())

	_, ok = r.TypeByNameInModule("customer", "Billing", "")
	assert.False(t, ok)

	_, ok = r.TypeByNameInModule("order", "Shipping", "")
	assert.False(t, ok)
	assert.False(t, r.HasModule("Shipping"))
	assert.True(t, r.HasModule("SALES"))
}

func TestTypeByFullName(t *testing.T) {
	r := newResolver(t)

	got, ok := r.TypeByFullName("Billing.order")
	require.True(t, ok)
	assert.Equal(t, "Billing", got.Module)

	_, ok = r.TypeByFullName("Order")
	assert.False(t, ok, "full name requires the namespace")
}

func TestResolve_PicksModuleScope(t *testing.T) {
	r := newResolver(t)

	got, ok := r.Resolve(catalog.Identifier{Name: "order"})
	require.True(t, ok)
	assert.Equal(t, "Sales", got.Module)

	got, ok = r.Resolve(catalog.Identifier{Name: "order", Module: "Billing"})
	require.True(t, ok)
	assert.Equal(t, "Billing", got.Module)
}
