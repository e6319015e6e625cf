package httpserver

import (
	"net/http"
	"strconv"
	"strings"

	"safari_tours/internal/adapters/auth"
	"safari_tours/internal/app"
	"safari_tours/internal/domain"
	"safari_tours/internal/export"
)

func (h *Handlers) adminListCustomers(w http.ResponseWriter, r *http.Request) {
	seg, err := segmentParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out, err := h.Customers.List(r.Context(), domain.CustomersQuery{Segment: seg, Q: r.URL.Query().Get("q")})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": out})
}

func (h *Handlers) adminGetCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := int64Param(w, r, "id")
	if !ok {
		return
	}
	c, err := h.Customers.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *Handlers) adminUpdateCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := int64Param(w, r, "id")
	if !ok {
		return
	}
	var p app.CustomerPatch
	if !decode(w, r, &p, false) {
		return
	}
	c, err := h.Customers.Update(r.Context(), id, p, auth.ActorFrom(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *Handlers) adminBroadcast(w http.ResponseWriter, r *http.Request) {
	var req app.BroadcastRequest
	if !decode(w, r, &req, false) {
		return
	}
	res, err := h.Customers.Broadcast(r.Context(), req, auth.ActorFrom(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handlers) adminExportCustomers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f, err := export.ParseFormat(strings.ToLower(q.Get("format")))
	if err != nil {
		writeError(w, r, domain.Invalid("format", "must be one of: csv, xlsx"))
		return
	}
	seg, err := segmentParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var ids []int64
	for _, s := range csvParam(r, "ids") {
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			writeError(w, r, domain.Invalid("ids", "must be comma-separated numbers"))
			return
		}
		ids = append(ids, id)
	}
	file, err := h.Customers.Export(r.Context(), app.CustomerExport{
		Format: f, Scope: q.Get("scope"), IDs: ids, Segment: seg, Q: q.Get("q"),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeFile(w, file)
}
