package handlers

import (
	"encoding/json"
	"net/http"

	apierrors "github.com/pribylovaa/go-shop-client/internal/errors"
)

type searchOut struct {
	Hits   []json.RawMessage `json:"hits"`
	NbHits int               `json:"nbHits"`
}

// Search - GET /search: query string уходит в бэкенд как есть,
// хиты отдаются исходными объектами в порядке бэкенда.
func (h *Handlers) Search(w http.ResponseWriter, r *http.Request) {
	res, err := h.Backend.Search(r.Context(), r.URL.Query())
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	out := searchOut{Hits: make([]json.RawMessage, 0, len(res.Hits)), NbHits: res.NbHits}
	for _, hit := range res.Hits {
		if len(hit.Raw) > 0 {
			out.Hits = append(out.Hits, hit.Raw)
			continue
		}

		b, err := json.Marshal(hit)
		if err != nil {
			apierrors.WriteError(w, r, err)
			return
		}
		out.Hits = append(out.Hits, b)
	}

	if out.NbHits == 0 {
		out.NbHits = len(out.Hits)
	}

	writeJSON(w, http.StatusOK, out)
}

// Products - GET /products: JSON и статус бэкенда без изменений.
func (h *Handlers) Products(w http.ResponseWriter, r *http.Request) {
	p, err := h.Backend.Products(r.Context())
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	status := p.Status
	if status == 0 {
		status = http.StatusOK
	}

	writeRaw(w, status, p.Body)
}
