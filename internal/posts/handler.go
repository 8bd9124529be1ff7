package posts

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/davberk/microblog/internal/authz"
	"github.com/davberk/microblog/internal/middleware"
	"github.com/davberk/microblog/internal/models"
	"github.com/davberk/microblog/internal/store"
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeErr maps service errors onto the HTTP surface: 401 for an
// anonymous actor, 403 for a wrong owner, 404 for a missing post.
func writeErr(w http.ResponseWriter, err error) {
	var denied *authz.DeniedError
	switch {
	case errors.As(err, &denied):
		if denied.Reason == authz.ReasonUnauthenticated {
			http.Error(w, `{"error":"not authenticated"}`, http.StatusUnauthorized)
		} else {
			http.Error(w, `{"error":"you do not own this post"}`, http.StatusForbidden)
		}
	case errors.Is(err, store.ErrNotFound):
		http.Error(w, `{"error":"post not found"}`, http.StatusNotFound)
	case errors.Is(err, ErrValidation):
		http.Error(w, `{"error":"title and content are required"}`, http.StatusBadRequest)
	case errors.Is(err, ErrInvalidState):
		log.Printf("invariant violation: %v", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
	default:
		http.Error(w, `{"error":"database error"}`, http.StatusInternalServerError)
	}
}

// Handler holds post HTTP handlers.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Create makes a new post authored by the current actor.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	actor := middleware.ActorFrom(r.Context())

	var req models.PostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
		return
	}

	post, err := h.svc.Create(r.Context(), actor, req.Title, req.Content)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, post)
}

// List returns a page of posts, newest first.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	size, _ := strconv.Atoi(r.URL.Query().Get("page_size"))

	posts, err := h.svc.List(r.Context(), page, size)
	if err != nil {
		http.Error(w, `{"error":"database error"}`, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, posts)
}

// Get returns a single post.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	post, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, post)
}

// Update replaces title and content of a post the actor owns.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	actor := middleware.ActorFrom(r.Context())

	var req models.PostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
		return
	}

	post, err := h.svc.Update(r.Context(), chi.URLParam(r, "id"), actor, req.Title, req.Content)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, post)
}

// Delete removes a post the actor owns.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	actor := middleware.ActorFrom(r.Context())

	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id"), actor); err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "post deleted"})
}
