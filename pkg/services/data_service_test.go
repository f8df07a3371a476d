package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dominik-gnepf/MS-CBLS-Tracker/pkg/models"
)

func TestDataService_EraseAll(t *testing.T) {
	store := newMemStore()
	seedInventory(t, store)
	require.NoError(t, (&memDatacenterRepo{store: store}).Upsert(context.Background(),
		&models.Datacenter{ID: "DC1", Name: "Amsterdam"}))
	svc := NewDataService(&memTransactor{store: store}, &memErasureRepo{store: store}, zap.NewNop())

	result, err := svc.EraseAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(4), result.ProductsDeleted)
	assert.Equal(t, int64(9), result.InventoryDeleted)
	assert.Equal(t, int64(2), result.ImportsDeleted)

	assert.Empty(t, store.catalog)
	assert.Empty(t, store.ledger)
	assert.Empty(t, store.imports)
	assert.Len(t, store.dcs, 1, "the datacenter registry survives")
	assert.Equal(t, 0, store.currentQuantity("A1", "DC1"))
}
