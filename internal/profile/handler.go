package profile

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/davberk/microblog/internal/authz"
	"github.com/davberk/microblog/internal/middleware"
	"github.com/davberk/microblog/internal/models"
	"github.com/davberk/microblog/internal/store"
)

// maxAvatarSize caps avatar uploads at 5 MiB.
const maxAvatarSize = 5 << 20

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// Handler holds profile HTTP handlers.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type updateResponse struct {
	User    *models.User `json:"user"`
	Updated bool         `json:"updated"`
	Message string       `json:"message"`
}

// Update handles PUT /api/profile as multipart form data with optional
// "bio" and "avatar" fields. The response distinguishes an applied
// update from a no-op so clients can render different feedback.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	actor := middleware.ActorFrom(r.Context())

	if err := r.ParseMultipartForm(maxAvatarSize); err != nil {
		http.Error(w, `{"error":"invalid multipart form"}`, http.StatusBadRequest)
		return
	}

	var bio *string
	if vals, ok := r.MultipartForm.Value["bio"]; ok && len(vals) > 0 {
		bio = &vals[0]
	}

	var avatar []byte
	var contentType string
	if file, header, err := r.FormFile("avatar"); err == nil {
		defer file.Close()
		data, err := io.ReadAll(io.LimitReader(file, maxAvatarSize))
		if err != nil {
			http.Error(w, `{"error":"failed to read avatar"}`, http.StatusBadRequest)
			return
		}
		avatar = data
		contentType = header.Header.Get("Content-Type")
	}

	user, updated, err := h.svc.Update(r.Context(), actor, bio, avatar, contentType)
	var denied *authz.DeniedError
	switch {
	case errors.As(err, &denied):
		http.Error(w, `{"error":"not authenticated"}`, http.StatusUnauthorized)
		return
	case errors.Is(err, store.ErrNotFound):
		http.Error(w, `{"error":"user not found"}`, http.StatusNotFound)
		return
	case err != nil:
		http.Error(w, `{"error":"profile update failed"}`, http.StatusInternalServerError)
		return
	}

	msg := "profile updated"
	if !updated {
		msg = "nothing changed"
	}
	writeJSON(w, http.StatusOK, updateResponse{User: user, Updated: updated, Message: msg})
}

// Avatar handles GET /api/users/{id}/avatar, streaming the stored image.
func (h *Handler) Avatar(w http.ResponseWriter, r *http.Request) {
	data, contentType, err := h.svc.Avatar(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, store.ErrNotFound) || errors.Is(err, ErrNoAvatar) {
		http.Error(w, `{"error":"avatar not found"}`, http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, `{"error":"download failed"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.Write(data)
}
