package product_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/hampers-api/internal/product"
)

func strPtr(s string) *string { return &s }

func TestFileStoreCRUD(t *testing.T) {
	dir := t.TempDir()
	store, err := product.NewFileStore(dir)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "products.json"))
	require.NoError(t, err)
	require.JSONEq(t, "[]", string(data))

	ctx := context.Background()

	created, err := store.Create(ctx, product.CreateInput{
		Name:        "Mooncake Gift Box",
		SupplyPrice: "58.50",
		ShopPrice:   strPtr("88.00"),
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	require.Equal(t, "58.50", created.SupplyPrice)
	require.NotNil(t, created.ShopPrice)
	require.Equal(t, "88.00", *created.ShopPrice)
	require.WithinDuration(t, time.Now().UTC(), created.CreatedAt, 5*time.Second)

	got, err := store.Get(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, created.ID, got.ID)
	require.Equal(t, "Mooncake Gift Box", got.Name)

	updated, err := store.Update(ctx, created.ID, product.UpdateInput{
		SupplyPrice: strPtr("60"),
	})
	require.NoError(t, err)
	require.Equal(t, "60", updated.SupplyPrice)
	require.Equal(t, "Mooncake Gift Box", updated.Name)
	require.NotNil(t, updated.ShopPrice)

	require.NoError(t, store.Delete(ctx, created.ID))

	_, err = store.Get(ctx, created.ID)
	require.ErrorIs(t, err, product.ErrNotFound)
	require.ErrorIs(t, store.Delete(ctx, created.ID), product.ErrNotFound)
	_, err = store.Update(ctx, created.ID, product.UpdateInput{Name: strPtr("x")})
	require.ErrorIs(t, err, product.ErrNotFound)
}

func TestFileStoreListFilterAndPaging(t *testing.T) {
	store, err := product.NewFileStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	names := []string{"Tea Sampler", "Chocolate Hamper", "Tea Ceremony Set"}
	for _, name := range names {
		_, err := store.Create(ctx, product.CreateInput{Name: name, SupplyPrice: "10"})
		require.NoError(t, err)
		time.Sleep(time.Millisecond)
	}

	all, total, err := store.List(ctx, product.ListParams{})
	require.NoError(t, err)
	require.EqualValues(t, 3, total)
	require.Len(t, all, 3)
	require.Equal(t, "Tea Ceremony Set", all[0].Name, "newest first")

	teas, total, err := store.List(ctx, product.ListParams{Query: "tea"})
	require.NoError(t, err)
	require.EqualValues(t, 2, total)
	require.Len(t, teas, 2)

	page, total, err := store.List(ctx, product.ListParams{Offset: 1, Limit: 1})
	require.NoError(t, err)
	require.EqualValues(t, 3, total)
	require.Len(t, page, 1)
	require.Equal(t, "Chocolate Hamper", page[0].Name)

	past, total, err := store.List(ctx, product.ListParams{Offset: 10, Limit: 5})
	require.NoError(t, err)
	require.EqualValues(t, 3, total)
	require.Empty(t, past)
}

func TestFileStorePersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	first, err := product.NewFileStore(dir)
	require.NoError(t, err)
	created, err := first.Create(ctx, product.CreateInput{Name: "Festival Box", SupplyPrice: "42.00"})
	require.NoError(t, err)

	second, err := product.NewFileStore(dir)
	require.NoError(t, err)
	got, err := second.Get(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, "Festival Box", got.Name)
}
