package httpserver

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"safari_tours/internal/adapters/auth"
	"safari_tours/internal/app"
	"safari_tours/internal/domain"
)

// ---- packages ----

func (h *Handlers) adminListPackages(w http.ResponseWriter, r *http.Request) {
	q := domain.PackagesQuery{Country: strings.ToLower(r.URL.Query().Get("country"))}
	switch st := domain.PackageStatus(r.URL.Query().Get("status")); st {
	case "", "all":
	case domain.PackageActive, domain.PackageDraft:
		q.Status = &st
	default:
		writeError(w, r, domain.Invalid("status", "must be one of: active, draft"))
		return
	}
	out, err := h.Content.ListPackages(r.Context(), q)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": out})
}

func (h *Handlers) adminGetPackage(w http.ResponseWriter, r *http.Request) {
	id, ok := int64Param(w, r, "id")
	if !ok {
		return
	}
	p, err := h.Content.GetPackage(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handlers) adminCreatePackage(w http.ResponseWriter, r *http.Request) {
	var in app.PackageInput
	if !decode(w, r, &in, false) {
		return
	}
	p, err := h.Content.CreatePackage(r.Context(), in, auth.ActorFrom(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *Handlers) adminUpdatePackage(w http.ResponseWriter, r *http.Request) {
	id, ok := int64Param(w, r, "id")
	if !ok {
		return
	}
	var in app.PackageInput
	if !decode(w, r, &in, false) {
		return
	}
	p, err := h.Content.UpdatePackage(r.Context(), id, in, auth.ActorFrom(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handlers) adminDeletePackage(w http.ResponseWriter, r *http.Request) {
	id, ok := int64Param(w, r, "id")
	if !ok {
		return
	}
	if err := h.Content.DeletePackage(r.Context(), id, auth.ActorFrom(r.Context())); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ---- blog ----

func (h *Handlers) adminListPosts(w http.ResponseWriter, r *http.Request) {
	q := domain.PostsQuery{Category: r.URL.Query().Get("category")}
	switch st := domain.PostStatus(r.URL.Query().Get("status")); st {
	case "", "all":
	case domain.PostDraft, domain.PostPublished:
		q.Status = &st
	default:
		writeError(w, r, domain.Invalid("status", "must be one of: draft, published"))
		return
	}
	out, err := h.Content.ListPosts(r.Context(), q)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": out})
}

func (h *Handlers) adminGetPost(w http.ResponseWriter, r *http.Request) {
	id, ok := int64Param(w, r, "id")
	if !ok {
		return
	}
	p, err := h.Content.GetPost(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handlers) adminCreatePost(w http.ResponseWriter, r *http.Request) {
	var in app.PostInput
	if !decode(w, r, &in, false) {
		return
	}
	p, err := h.Content.CreatePost(r.Context(), in, auth.ActorFrom(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *Handlers) adminUpdatePost(w http.ResponseWriter, r *http.Request) {
	id, ok := int64Param(w, r, "id")
	if !ok {
		return
	}
	var in app.PostInput
	if !decode(w, r, &in, false) {
		return
	}
	p, err := h.Content.UpdatePost(r.Context(), id, in, auth.ActorFrom(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handlers) adminDeletePost(w http.ResponseWriter, r *http.Request) {
	id, ok := int64Param(w, r, "id")
	if !ok {
		return
	}
	if err := h.Content.DeletePost(r.Context(), id, auth.ActorFrom(r.Context())); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) adminPublishPost(w http.ResponseWriter, r *http.Request) {
	id, ok := int64Param(w, r, "id")
	if !ok {
		return
	}
	var body struct {
		Published *bool `json:"published"`
	}
	if !decode(w, r, &body, false) {
		return
	}
	if body.Published == nil {
		writeError(w, r, domain.Invalid("published", "is required"))
		return
	}
	p, err := h.Content.SetPublished(r.Context(), id, *body.Published, auth.ActorFrom(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// ---- hero ----

func (h *Handlers) adminListHero(w http.ResponseWriter, r *http.Request) {
	out, err := h.Content.ListHero(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": out})
}

func (h *Handlers) adminSetHero(w http.ResponseWriter, r *http.Request) {
	pos, err := strconv.Atoi(chi.URLParam(r, "position"))
	if err != nil {
		writeError(w, r, domain.Invalid("position", "must be a number"))
		return
	}
	var in app.HeroInput
	if !decode(w, r, &in, false) {
		return
	}
	deleted, err := h.Content.SetHero(r.Context(), pos, in, auth.ActorFrom(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if deleted {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	h.adminListHero(w, r)
}
