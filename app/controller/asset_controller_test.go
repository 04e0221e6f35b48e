package controller

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wali1264/mihangps/service"
)

func TestServeBlob(t *testing.T) {
	store := service.NewHandleStore()
	ctrl := NewAssetController(store)
	path := store.Put([]byte("jpeg-bytes"), "image/jpeg")

	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	ctrl.ServeBlob(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/jpeg", rec.Header().Get("Content-Type"))
	assert.Equal(t, "jpeg-bytes", rec.Body.String())
}

func TestServeBlobNotFound(t *testing.T) {
	ctrl := NewAssetController(service.NewHandleStore())

	req := httptest.NewRequest(http.MethodGet, service.HandleBasePath+"blob_missing", nil)
	rec := httptest.NewRecorder()
	ctrl.ServeBlob(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServeBlobDeleteReleases(t *testing.T) {
	store := service.NewHandleStore()
	ctrl := NewAssetController(store)
	path := store.Put([]byte("x"), "image/png")

	req := httptest.NewRequest(http.MethodDelete, path, nil)
	rec := httptest.NewRecorder()
	ctrl.ServeBlob(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, 0, store.Len())
}

func TestServeBlobMethodNotAllowed(t *testing.T) {
	ctrl := NewAssetController(service.NewHandleStore())

	req := httptest.NewRequest(http.MethodPost, service.HandleBasePath+"blob_1", nil)
	rec := httptest.NewRecorder()
	ctrl.ServeBlob(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
