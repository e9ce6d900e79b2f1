package events

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"devevent/errs"

	"github.com/julienschmidt/httprouter"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(store *Store) *httprouter.Router {
	h := NewHandler(store, zerolog.Nop())
	router := httprouter.New()
	router.GET("/api/events/:slug", h.GetEvent)
	router.POST("/api/events", h.CreateEvent)
	router.PATCH("/api/events/:slug", h.UpdateEvent)
	return router
}

func serve(router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func body(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestGetEvent(t *testing.T) {
	store := NewStore(newFakeRepo())
	_, err := store.Create(context.Background(), validInput())
	require.NoError(t, err)
	router := newTestRouter(store)

	t.Run("found", func(t *testing.T) {
		rec := serve(router, http.MethodGet, "/api/events/GopherCon-EU-2026", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		b := body(t, rec)
		assert.Equal(t, "Event fetched successfully", b["message"])
		assert.Equal(t, "gophercon-eu-2026", b["event"].(map[string]any)["slug"])
	})

	t.Run("not found", func(t *testing.T) {
		rec := serve(router, http.MethodGet, "/api/events/rustconf", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "Event not found", body(t, rec)["message"])
	})

	t.Run("blank slug", func(t *testing.T) {
		rec := serve(router, http.MethodGet, "/api/events/%20%20", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Invalid or missing slug parameter", body(t, rec)["message"])
	})
}

func TestGetEvent_UnexpectedFailure(t *testing.T) {
	repo := newFakeRepo()
	repo.err = &errs.ConnectionError{Err: errors.New("server selection error")}
	router := newTestRouter(NewStore(repo))

	rec := serve(router, http.MethodGet, "/api/events/gophercon-eu-2026", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	b := body(t, rec)
	assert.Equal(t, "Failed to fetch event", b["message"])
	assert.Equal(t, "database unavailable", b["error"])
}

func TestCreateEvent(t *testing.T) {
	router := newTestRouter(NewStore(newFakeRepo()))

	rec := serve(router, http.MethodPost, "/api/events", validInput())
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "09:30", body(t, rec)["event"].(map[string]any)["time"])

	rec = serve(router, http.MethodPost, "/api/events", validInput())
	assert.Equal(t, http.StatusConflict, rec.Code)

	bad := validInput()
	bad.Image = ""
	rec = serve(router, http.MethodPost, "/api/events", bad)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Validation failed", body(t, rec)["message"])

	rec = serve(router, http.MethodPost, "/api/events", map[string]any{"title": 42})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid request payload", body(t, rec)["message"])
}

func TestUpdateEvent(t *testing.T) {
	store := NewStore(newFakeRepo())
	_, err := store.Create(context.Background(), validInput())
	require.NoError(t, err)
	router := newTestRouter(store)

	rec := serve(router, http.MethodPatch, "/api/events/gophercon-eu-2026", map[string]any{"description": "Updated."})
	require.Equal(t, http.StatusOK, rec.Code)
	ev := body(t, rec)["event"].(map[string]any)
	assert.Equal(t, "Updated.", ev["description"])
	assert.Equal(t, "gophercon-eu-2026", ev["slug"])

	rec = serve(router, http.MethodPatch, "/api/events/missing", map[string]any{"description": "x"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
