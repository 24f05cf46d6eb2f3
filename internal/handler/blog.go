package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/bloglist/internal/apperror"
	"github.com/sakif/bloglist/internal/auth"
	"github.com/sakif/bloglist/internal/model"
	"github.com/sakif/bloglist/internal/service"
)

// BlogHandler serves the /api/blogs routes.
//
// Handlers only parse requests and write responses. Validation, ownership
// and the two-store bookkeeping all happen in service.BlogService.
type BlogHandler struct {
	blogs  *service.BlogService
	logger *slog.Logger
}

// NewBlogHandler creates a BlogHandler.
func NewBlogHandler(blogs *service.BlogService, logger *slog.Logger) *BlogHandler {
	return &BlogHandler{blogs: blogs, logger: logger}
}

// HandleList returns every blog with its owner projected.
//
// HTTP: GET /api/blogs
func (h *BlogHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	blogs, err := h.blogs.List(r.Context())
	if err != nil {
		WriteError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, blogs)
}

// HandleGet returns a single blog.
//
// HTTP: GET /api/blogs/{id}
func (h *BlogHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	blog, err := h.blogs.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, blog)
}

// HandleCreate saves a new blog owned by the authenticated caller.
//
// HTTP: POST /api/blogs (behind auth.RequireUser)
// REQUEST BODY: {"title": "...", "author": "...", "url": "...", "likes": 0}
func (h *BlogHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		WriteError(w, r, apperror.Unauthenticated(auth.ErrMissingToken, "token missing"), h.logger)
		return
	}

	var in model.BlogInput
	if err := decodeJSON(r, &in); err != nil {
		WriteError(w, r, err, h.logger)
		return
	}

	blog, err := h.blogs.Create(r.Context(), user, in)
	if err != nil {
		WriteError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusCreated, blog)
}

// HandleUpdate applies a partial update. Authentication is optional: an
// anonymous caller may only touch blogs that have no owner.
//
// HTTP: PUT /api/blogs/{id} (behind auth.OptionalAuth)
// REQUEST BODY: any subset of {"title", "author", "url", "likes"}
func (h *BlogHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var patch model.BlogPatch
	if err := decodeJSON(r, &patch); err != nil {
		WriteError(w, r, err, h.logger)
		return
	}

	var caller *auth.Identity
	if id, ok := auth.IdentityFromContext(r.Context()); ok {
		caller = &id
	}

	blog, err := h.blogs.Update(r.Context(), caller, chi.URLParam(r, "id"), patch)
	if err != nil {
		WriteError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, blog)
}

// HandleDelete removes a blog owned by the caller.
//
// HTTP: DELETE /api/blogs/{id} (behind auth.RequireUser)
// Responds 204 with no body, also when the blog did not exist.
func (h *BlogHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	caller, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		WriteError(w, r, apperror.Unauthenticated(auth.ErrMissingToken, "token missing"), h.logger)
		return
	}

	if err := h.blogs.Delete(r.Context(), caller, chi.URLParam(r, "id")); err != nil {
		WriteError(w, r, err, h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleStats returns aggregate statistics over all blogs.
//
// HTTP: GET /api/blogs/stats
func (h *BlogHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	summary, err := h.blogs.Stats(r.Context())
	if err != nil {
		WriteError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
