package main

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpadapter "questaroo.app/lightson/internal/adapters/http"
	"questaroo.app/lightson/internal/app"
	"questaroo.app/lightson/internal/platform/config"
	"questaroo.app/lightson/web"
)

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	h := requestLogger(logger, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = io.WriteString(w, "short and stout")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/pot", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
	line := buf.String()
	assert.Contains(t, line, "path=/pot")
	assert.Contains(t, line, "status=418")
	assert.Contains(t, line, "bytes=15")
}

func TestRouterServesPageAndAPI(t *testing.T) {
	cfg := config.Config{Storage: "fs", PersistPath: t.TempDir(), Solver: "linear", BoardSize: 5, ToggleProbability: 0.25}
	uc, _, closeFn, err := app.NewService(cfg, nil)
	require.NoError(t, err)
	defer closeFn()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	r := newRouter(httpadapter.New(uc, logger), web.Page{Title: "Lights On", DefaultSize: 5, MinSize: 1, MaxSize: 12})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<title>Lights On</title>")

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/static/app.js", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/sessions", strings.NewReader(`{"seed":5}`)))
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}
