package handlers

import (
	"net/http"
	"strconv"

	"github.com/ghuser/catalog/pkg/errhttp"
	"github.com/ghuser/catalog/pkg/httpx"
	appsvcs "github.com/ghuser/catalog/services/catalog/application/services"
	"github.com/ghuser/catalog/services/catalog/domain/repositories"
)

// GetItemsHandler handles GET /items requests.
type GetItemsHandler struct {
	svc  *appsvcs.Services
	resp *errhttp.Responder
}

// NewGetItemsHandler returns a GetItemsHandler backed by the given services.
func NewGetItemsHandler(svc *appsvcs.Services, resp *errhttp.Responder) *GetItemsHandler {
	return &GetItemsHandler{svc: svc, resp: resp}
}

// Execute lists items, filtered and sorted per query parameters. Unparseable
// limit and offset values fall back to their defaults rather than failing
// the request; an unknown sortBy falls back to createdAt descending inside
// the repository.
func (h *GetItemsHandler) Execute(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	opts := repositories.ListOptions{
		Category:  q.Get("category"),
		SortBy:    q.Get("sortBy"),
		SortOrder: q.Get("sortOrder"),
	}
	if n, err := strconv.Atoi(q.Get("limit")); err == nil && n > 0 {
		opts.Limit = n
	}
	if n, err := strconv.Atoi(q.Get("offset")); err == nil && n > 0 {
		opts.Offset = n
	}

	items, err := h.svc.Item.List(r.Context(), opts)
	if err != nil {
		h.resp.WriteError(w, r, err)
		return
	}

	httpx.OKList(w, http.StatusOK, NewItemResponses(items), len(items))
}
