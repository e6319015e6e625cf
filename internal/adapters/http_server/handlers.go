package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"safari_tours/internal/adapters/auth"
	"safari_tours/internal/adapters/media"
	"safari_tours/internal/app"
	"safari_tours/internal/opslog"
)

type Handlers struct {
	Catalog   *app.CatalogService
	Bookings  *app.BookingService
	Content   *app.ContentService
	Customers *app.CustomerService
	Reports   *app.ReportService
	Audit     *app.Auditor
	Ops       *opslog.Log
	Media     *media.Signer
	Verifier  auth.Verifier
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })

	s.mux.Route("/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(Timeout(s.timeout))
			r.Get("/packages", h.listPackages)
			r.Get("/packages/{id}", h.getPackage)
			r.Get("/blog", h.listPosts)
			r.Get("/blog/{id}", h.getPost)
			r.Get("/hero", h.hero)
			r.Post("/bookings", h.createBooking)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(Auth(h.Verifier))

			r.Group(func(r chi.Router) {
				r.Use(Timeout(s.bulkTimeout))
				r.Patch("/bookings", h.adminBulkStatus)
				r.Post("/customers/broadcast", h.adminBroadcast)
			})

			r.Group(func(r chi.Router) {
				r.Use(Timeout(s.timeout))

				r.Get("/bookings", h.adminListBookings)
				r.Get("/bookings/export", h.adminExportBookings)
				r.Get("/bookings/{id}", h.adminGetBooking)
				r.Patch("/bookings/{id}/status", h.adminSetStatus)
				r.Patch("/bookings/{id}/details", h.adminUpdateDetails)

				r.Get("/packages", h.adminListPackages)
				r.Post("/packages", h.adminCreatePackage)
				r.Get("/packages/{id}", h.adminGetPackage)
				r.Put("/packages/{id}", h.adminUpdatePackage)
				r.Delete("/packages/{id}", h.adminDeletePackage)

				r.Get("/blog", h.adminListPosts)
				r.Post("/blog", h.adminCreatePost)
				r.Get("/blog/{id}", h.adminGetPost)
				r.Put("/blog/{id}", h.adminUpdatePost)
				r.Delete("/blog/{id}", h.adminDeletePost)
				r.Post("/blog/{id}/publish", h.adminPublishPost)

				r.Get("/hero", h.adminListHero)
				r.Put("/hero/{position}", h.adminSetHero)

				r.Get("/customers", h.adminListCustomers)
				r.Get("/customers/export", h.adminExportCustomers)
				r.Get("/customers/{id}", h.adminGetCustomer)
				r.Patch("/customers/{id}", h.adminUpdateCustomer)

				r.Get("/audit", h.adminAudit)
				r.Get("/activity", h.adminActivity)
				r.Get("/notifications", h.adminNotifications)
				r.Post("/notifications/read-all", h.adminReadAll)
				r.Post("/notifications/{id}/read", h.adminRead)

				r.Get("/reports/summary", h.adminSummary)
				r.Get("/reports/revenue", h.adminRevenue)

				r.Post("/media/sign", h.adminSignUpload)
			})
		})
	})
}
