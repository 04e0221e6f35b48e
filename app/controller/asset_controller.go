package controller

import (
	"net/http"
	"strings"

	"github.com/wali1264/mihangps/service"
)

// AssetController serves and releases in-memory blob handles. Print and
// export pipelines hand Chrome URLs under this path instead of raw bytes.
type AssetController struct {
	store *service.HandleStore
}

// NewAssetController creates a new AssetController
func NewAssetController(store *service.HandleStore) *AssetController {
	return &AssetController{store: store}
}

// ServeBlob handles GET and DELETE on /assets/blob/:id
func (c *AssetController) ServeBlob(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, service.HandleBasePath)
	if id == "" {
		http.Error(w, "blob id is required", http.StatusBadRequest)
		return
	}

	switch r.Method {
	case http.MethodGet:
		handle, ok := c.store.Get(id)
		if !ok {
			http.Error(w, "blob not found or already released", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", handle.ContentType)
		w.Header().Set("Cache-Control", "no-store")
		w.Write(handle.Data)
	case http.MethodDelete:
		c.store.Release(id)
		w.WriteHeader(http.StatusNoContent)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}
