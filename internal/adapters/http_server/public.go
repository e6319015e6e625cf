package httpserver

import (
	"net/http"

	"safari_tours/internal/app"
)

func (h *Handlers) listPackages(w http.ResponseWriter, r *http.Request) {
	out, err := h.Catalog.ListPackages(r.Context(), r.URL.Query().Get("country"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeCached(w, r, map[string]any{"items": out})
}

func (h *Handlers) getPackage(w http.ResponseWriter, r *http.Request) {
	id, ok := int64Param(w, r, "id")
	if !ok {
		return
	}
	p, err := h.Catalog.GetPackage(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeCached(w, r, p)
}

func (h *Handlers) listPosts(w http.ResponseWriter, r *http.Request) {
	out, err := h.Catalog.ListPosts(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeCached(w, r, map[string]any{"items": out})
}

func (h *Handlers) getPost(w http.ResponseWriter, r *http.Request) {
	id, ok := int64Param(w, r, "id")
	if !ok {
		return
	}
	p, err := h.Catalog.GetPost(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeCached(w, r, p)
}

func (h *Handlers) hero(w http.ResponseWriter, r *http.Request) {
	out, err := h.Catalog.Hero(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeCached(w, r, map[string]any{"items": out})
}

// createBooking is the booking wizard's final step.
func (h *Handlers) createBooking(w http.ResponseWriter, r *http.Request) {
	var req app.BookingRequest
	if !decode(w, r, &req, false) {
		return
	}
	b, err := h.Bookings.Create(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"id":         b.ID,
		"status":     b.Status,
		"packageId":  b.PackageID,
		"travelDate": b.TravelDate.Format("2006-01-02"),
		"travellers": b.Travellers,
		"amount":     b.Amount,
	})
}
