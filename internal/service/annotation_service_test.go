package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"datascout/internal/model"
)

func TestAnnotateConnectedSnapshot(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestConnectionService(t, 1)
	annotations := NewAnnotationService(repo, nil)

	result, err := svc.Connect(ctx, model.EngineSQLite, model.ConnectionParams{Path: newTargetDatabase(t, productsDDL)})
	require.NoError(t, err)

	ok, err := annotations.SetGlobalContext(ctx, result.ID, "online shop catalog")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = annotations.SetTableContext(ctx, result.ID, "products", "one row per sellable item")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = annotations.SetColumnDescription(ctx, result.ID, "products", "price", "price in USD")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = annotations.SetColumnDescription(ctx, result.ID, "products", "weight", "kg")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = annotations.SetTableContext(ctx, result.ID+1, "products", "x")
	require.NoError(t, err)
	assert.False(t, ok)

	rec, err := svc.GetConnection(ctx, result.ID)
	require.NoError(t, err)
	require.NotNil(t, rec.GlobalContext)
	assert.Equal(t, "online shop catalog", *rec.GlobalContext)

	products := rec.Table("products")
	require.NotNil(t, products)
	require.NotNil(t, products.Context)
	assert.Equal(t, "one row per sellable item", *products.Context)
	require.NotNil(t, products.Column("price").Description)
	assert.Equal(t, "price in USD", *products.Column("price").Description)
	assert.Nil(t, products.Column("name").Description)
	assert.Len(t, products.Columns, 3)
}
