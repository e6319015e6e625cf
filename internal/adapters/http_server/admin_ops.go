package httpserver

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"safari_tours/internal/domain"
)

func (h *Handlers) adminAudit(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if ls := r.URL.Query().Get("limit"); ls != "" {
		l, err := strconv.Atoi(ls)
		if err != nil || l <= 0 || l > 500 {
			writeProblem(w, http.StatusBadRequest, "Invalid limit", "limit must be an integer between 1 and 500")
			return
		}
		limit = l
	}
	out, err := h.Audit.List(r.Context(), limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": out})
}

func (h *Handlers) adminActivity(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"items": h.Ops.Activity()})
}

func (h *Handlers) adminNotifications(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"items": h.Ops.Notifications(), "unread": h.Ops.Unread()})
}

func (h *Handlers) adminRead(w http.ResponseWriter, r *http.Request) {
	if !h.Ops.MarkRead(chi.URLParam(r, "id")) {
		writeError(w, r, domain.ErrNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) adminReadAll(w http.ResponseWriter, r *http.Request) {
	h.Ops.MarkAllRead()
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) adminSummary(w http.ResponseWriter, r *http.Request) {
	s, err := h.Reports.Summary(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func (h *Handlers) adminRevenue(w http.ResponseWriter, r *http.Request) {
	months := 6
	if ms := r.URL.Query().Get("months"); ms != "" {
		m, err := strconv.Atoi(ms)
		if err != nil {
			writeError(w, r, domain.Invalid("months", "must be a number"))
			return
		}
		months = m
	}
	out, err := h.Reports.Revenue(r.Context(), months)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"months": out})
}

func (h *Handlers) adminSignUpload(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Folder string `json:"folder"`
	}
	if !decode(w, r, &body, true) {
		return
	}
	sig, err := h.Media.Sign(body.Folder)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sig)
}
