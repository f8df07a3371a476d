package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dominik-gnepf/MS-CBLS-Tracker/pkg/models"
)

func TestDataHandler_EraseAll(t *testing.T) {
	svc := &mockDataService{result: &models.ErasureResult{ProductsDeleted: 4, InventoryDeleted: 9, ImportsDeleted: 2}}
	mux := http.NewServeMux()
	NewDataHandler(svc, zap.NewNop()).RegisterRoutes(mux, noScope)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/data", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, svc.called)

	var resp struct {
		Success bool                 `json:"success"`
		Data    models.ErasureResult `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.True(t, resp.Success)
	assert.Equal(t, int64(4), resp.Data.ProductsDeleted)
	assert.Equal(t, int64(9), resp.Data.InventoryDeleted)
	assert.Equal(t, int64(2), resp.Data.ImportsDeleted)
}

func TestDataHandler_EraseAll_OnlyDelete(t *testing.T) {
	svc := &mockDataService{}
	mux := http.NewServeMux()
	NewDataHandler(svc, zap.NewNop()).RegisterRoutes(mux, noScope)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/data", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.False(t, svc.called)
}

func TestDataHandler_EraseAll_Failure(t *testing.T) {
	handler := NewDataHandler(&mockDataService{err: errors.New("tx aborted")}, zap.NewNop())

	rec := httptest.NewRecorder()
	handler.EraseAll(rec, httptest.NewRequest(http.MethodDelete, "/api/data", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "erase_failed")
}
