package repository_test

import (
	"cmp"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-resolver/framework/repository"
	"github.com/km-arc/go-resolver/framework/repository/memory"
)

type Order struct {
	ID    int    `json:"id"`
	Total int    `json:"total"`
	Note  string `json:"note"`
}

type Tagged struct {
	Code string `registry:"id"`
	ID   int
}

type Ticket struct {
	ID string
}

type NoID struct{ Name string }

func TestIDOf(t *testing.T) {
	id, err := repository.IDOf(Order{ID: 3})
	require.NoError(t, err)
	assert.Equal(t, 3, id)

	id, err = repository.IDOf(&Tagged{Code: "A-1", ID: 9})
	require.NoError(t, err)
	assert.Equal(t, "A-1", id, "tagged field wins over ID")

	_, err = repository.IDOf(NoID{})
	assert.ErrorIs(t, err, repository.ErrNoIdentity)

	_, err = repository.IDOf((*Order)(nil))
	assert.ErrorIs(t, err, repository.ErrNoIdentity)
}

func TestEnsureID(t *testing.T) {
	tk, err := repository.EnsureID(Ticket{})
	require.NoError(t, err)
	assert.Len(t, tk.ID, 36)

	kept, err := repository.EnsureID(Ticket{ID: "T-1"})
	require.NoError(t, err)
	assert.Equal(t, "T-1", kept.ID)

	ptr, err := repository.EnsureID(&Ticket{})
	require.NoError(t, err)
	assert.NotEmpty(t, ptr.ID)

	o, err := repository.EnsureID(Order{})
	require.NoError(t, err)
	assert.Zero(t, o.ID, "non-string ids are left alone")
}

func TestApply(t *testing.T) {
	items := []Order{{ID: 1, Total: 30}, {ID: 2, Total: 10}, {ID: 3, Total: 20}, {ID: 4, Total: 5}}

	s := repository.Where(func(o Order) bool { return o.Total >= 10 }).
		OrderBy(func(a, b Order) int { return cmp.Compare(a.Total, b.Total) }).
		Skip(1).
		Take(1)

	got := repository.Apply(items, s)
	assert.Equal(t, []Order{{ID: 3, Total: 20}}, got)
	assert.Len(t, items, 4, "input is not modified")

	assert.Len(t, repository.Apply(items), 4)
	assert.Empty(t, repository.Apply(items, repository.Spec[Order]{}.Skip(10)))
}

func TestSpec_AndDoesNotAlias(t *testing.T) {
	base := repository.Where(func(o Order) bool { return o.Total > 0 })
	a := base.And(func(o Order) bool { return o.ID == 1 })
	b := base.And(func(o Order) bool { return o.ID == 2 })

	assert.True(t, a.Matches(Order{ID: 1, Total: 1}))
	assert.True(t, b.Matches(Order{ID: 2, Total: 1}))
}

func TestErase(t *testing.T) {
	ctx := context.Background()
	store := memory.New[Order]()
	anyRepo := store.Untyped()

	assert.Equal(t, "Order", anyRepo.EntityType().Name())

	_, err := anyRepo.Add(ctx, Order{ID: 1})
	require.NoError(t, err)
	_, err = anyRepo.Add(ctx, &Order{ID: 2})
	require.NoError(t, err)

	_, err = anyRepo.Add(ctx, Ticket{})
	assert.ErrorIs(t, err, repository.ErrWrongType)
	assert.ErrorIs(t, anyRepo.Update(ctx, (*Order)(nil)), repository.ErrWrongType)

	n, err := anyRepo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	got, err := anyRepo.GetByID(ctx, "2")
	require.NoError(t, err)
	assert.Equal(t, Order{ID: 2}, got)

	require.NoError(t, anyRepo.Update(ctx, Order{ID: 2, Note: "rush"}))
	require.NoError(t, anyRepo.Delete(ctx, Order{ID: 1}))

	all, err := anyRepo.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []any{Order{ID: 2, Note: "rush"}}, all)
}
