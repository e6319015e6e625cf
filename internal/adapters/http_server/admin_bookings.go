package httpserver

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"safari_tours/internal/adapters/auth"
	"safari_tours/internal/adapters/observability"
	"safari_tours/internal/app"
	"safari_tours/internal/domain"
	"safari_tours/internal/export"
)

func (h *Handlers) adminListBookings(w http.ResponseWriter, r *http.Request) {
	st, err := statusParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out, err := h.Bookings.List(r.Context(), domain.BookingsQuery{Status: st, Q: r.URL.Query().Get("q")})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": out})
}

func (h *Handlers) adminGetBooking(w http.ResponseWriter, r *http.Request) {
	b, err := h.Bookings.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

type statusBody struct {
	Status string `json:"status"`
}

func parseStatus(s string) (domain.BookingStatus, error) {
	st, err := domain.ParseBookingStatus(s)
	if err != nil {
		return "", domain.Invalid("status", "must be one of: pending, confirmed, cancelled")
	}
	return st, nil
}

func (h *Handlers) adminSetStatus(w http.ResponseWriter, r *http.Request) {
	var body statusBody
	if !decode(w, r, &body, false) {
		return
	}
	to, err := parseStatus(body.Status)
	if err != nil {
		writeError(w, r, err)
		return
	}
	b, err := h.Bookings.SetStatus(r.Context(), chi.URLParam(r, "id"), to, auth.ActorFrom(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	observability.ObserveStatusChange(to.String(), "single", 1)
	writeJSON(w, http.StatusOK, b)
}

func (h *Handlers) adminUpdateDetails(w http.ResponseWriter, r *http.Request) {
	var req app.DetailsRequest
	if !decode(w, r, &req, false) {
		return
	}
	b, err := h.Bookings.UpdateDetails(r.Context(), chi.URLParam(r, "id"), req, auth.ActorFrom(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

type bulkBody struct {
	BookingIDs []string `json:"bookingIds"`
	Status     string   `json:"status"`
}

func (h *Handlers) adminBulkStatus(w http.ResponseWriter, r *http.Request) {
	var body bulkBody
	if !decode(w, r, &body, false) {
		return
	}
	to, err := parseStatus(body.Status)
	if err != nil {
		writeError(w, r, err)
		return
	}
	res, err := h.Bookings.BulkSetStatus(r.Context(), body.BookingIDs, to, auth.ActorFrom(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	observability.ObserveStatusChange(to.String(), "bulk", res.Updated)
	writeJSON(w, http.StatusOK, res)
}

func (h *Handlers) adminExportBookings(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f, err := export.ParseFormat(strings.ToLower(q.Get("format")))
	if err != nil {
		writeError(w, r, domain.Invalid("format", "must be one of: csv, xlsx"))
		return
	}
	st, err := statusParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	file, err := h.Bookings.Export(r.Context(), app.BookingExport{
		Format: f, Scope: q.Get("scope"), IDs: csvParam(r, "ids"), Status: st, Q: q.Get("q"),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeFile(w, file)
}
