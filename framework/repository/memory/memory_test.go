package memory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-resolver/framework/repository"
	"github.com/km-arc/go-resolver/framework/repository/memory"
)

type Customer struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func TestStore_CRUD(t *testing.T) {
	ctx := context.Background()
	s := memory.New[Customer]()

	ada, err := s.Add(ctx, Customer{Name: "Ada"})
	require.NoError(t, err)
	require.NotEmpty(t, ada.ID, "empty string ids get a UUID")

	_, err = s.Add(ctx, ada)
	assert.Error(t, err, "duplicate id")

	got, err := s.GetByID(ctx, ada.ID)
	require.NoError(t, err)
	assert.Equal(t, ada, got)

	ada.Name = "Ada L."
	require.NoError(t, s.Update(ctx, ada))
	got, _ = s.GetByID(ctx, ada.ID)
	assert.Equal(t, "Ada L.", got.Name)

	require.NoError(t, s.Delete(ctx, ada))
	_, err = s.GetByID(ctx, ada.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.ErrorIs(t, s.Delete(ctx, ada), repository.ErrNotFound)
	assert.ErrorIs(t, s.Update(ctx, ada), repository.ErrNotFound)
}

func TestStore_ListKeepsInsertionOrder(t *testing.T) {
	ctx := context.Background()
	s := memory.New[Customer]()
	for _, id := range []string{"c", "a", "b"} {
		_, err := s.Add(ctx, Customer{ID: id})
		require.NoError(t, err)
	}

	all, err := s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []Customer{{ID: "c"}, {ID: "a"}, {ID: "b"}}, all)

	n, err := s.Count(ctx, repository.Where(func(c Customer) bool { return c.ID != "a" }))
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
