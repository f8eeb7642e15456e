package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/ghuser/catalog/pkg/app"
	"github.com/ghuser/catalog/services/catalog/application/handlers"
	appsvcs "github.com/ghuser/catalog/services/catalog/application/services"
)

// ItemRoutes registers item endpoints on the provided chi router. The
// /stats route is declared before /{id} so chi does not treat "stats" as an
// item id.
func ItemRoutes(r chi.Router, a *app.Application) {
	svcs := appsvcs.New(a)
	resp := a.Responder

	r.Group(func(r chi.Router) {
		r.Route("/items", func(r chi.Router) {
			r.Get("/", handlers.NewGetItemsHandler(svcs, resp).Execute)
			r.Get("/stats", handlers.NewGetStatsHandler(svcs, resp).Execute)
			r.Post("/", handlers.NewPostItemHandler(svcs, resp).Execute)
			r.Get("/{id}", handlers.NewGetItemHandler(svcs, resp).Execute)
			r.Put("/{id}", handlers.NewPutItemHandler(svcs, resp).Execute)
			r.Patch("/{id}/stock", handlers.NewPatchStockHandler(svcs, resp).Execute)
			r.Delete("/{id}", handlers.NewDeleteItemHandler(svcs, resp).Execute)
		})
	})
}
