package tools

import (
	"encoding/json"
	"net/http"

	"github.com/reagent-dev/reagent/internal/rpc"
)

// CatalogHandler serves the tool catalog of every hosted variant as JSON.
type CatalogHandler struct {
	Catalogs []rpc.VariantCatalog
}

// ServeHTTP renders the catalog.
func (h CatalogHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(h.Catalogs)
}
