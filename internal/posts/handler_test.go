package posts

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davberk/microblog/internal/authz"
	"github.com/davberk/microblog/internal/middleware"
	"github.com/davberk/microblog/internal/models"
)

type fakeResolver map[string]string

func (f fakeResolver) Resolve(_ context.Context, token string) (authz.Actor, error) {
	return authz.Actor{ID: f[token]}, nil
}

// newTestRouter mounts the post routes the way cmd/server does.
func newTestRouter(svc *Service, sessions fakeResolver) http.Handler {
	h := NewHandler(svc)
	r := chi.NewRouter()
	r.Use(middleware.WithActor("session_id", sessions))
	r.Route("/api/posts", func(r chi.Router) {
		r.Get("/", h.List)
		r.Get("/{id}", h.Get)
		r.With(middleware.RequireAuth).Post("/", h.Create)
		r.With(middleware.RequireAuth).Put("/{id}", h.Update)
		r.With(middleware.RequireAuth).Delete("/{id}", h.Delete)
	})
	return r
}

func doJSON(t *testing.T, h http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if token != "" {
		req.AddCookie(&http.Cookie{Name: "session_id", Value: token})
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestPostRoutes(t *testing.T) {
	svc := NewService(newFakeStore())
	router := newTestRouter(svc, fakeResolver{"alice-tok": "alice", "bob-tok": "bob"})

	t.Run("unauthenticated create is rejected", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/api/posts", "", `{"title":"T1","content":"C1"}`)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	var created models.Post
	t.Run("authenticated create", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/api/posts", "alice-tok", `{"title":"T1","content":"C1"}`)
		require.Equal(t, http.StatusCreated, rec.Code)
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
		assert.Equal(t, "alice", created.AuthorID)
	})

	t.Run("create with empty title", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/api/posts", "alice-tok", `{"title":"","content":"C1"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("public list", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodGet, "/api/posts", "", "")
		require.Equal(t, http.StatusOK, rec.Code)
		var list []models.Post
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
		require.Len(t, list, 1)
		assert.Equal(t, created.ID, list[0].ID)
	})

	t.Run("public get", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodGet, "/api/posts/"+created.ID, "", "")
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("get missing post", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodGet, "/api/posts/nope", "", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("edit by non-owner", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPut, "/api/posts/"+created.ID, "bob-tok", `{"title":"T2","content":"C2"}`)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("edit unauthenticated", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPut, "/api/posts/"+created.ID, "", `{"title":"T2","content":"C2"}`)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("edit by owner", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPut, "/api/posts/"+created.ID, "alice-tok", `{"title":"T2","content":"C2"}`)
		require.Equal(t, http.StatusOK, rec.Code)
		var p models.Post
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
		assert.Equal(t, "T2", p.Title)
	})

	t.Run("delete by non-owner", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodDelete, "/api/posts/"+created.ID, "bob-tok", "")
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("delete by owner then get", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodDelete, "/api/posts/"+created.ID, "alice-tok", "")
		require.Equal(t, http.StatusOK, rec.Code)

		rec = doJSON(t, router, http.MethodGet, "/api/posts/"+created.ID, "", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
