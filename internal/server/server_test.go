package server

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/GriffinCanCode/kitprompt/internal/infrastructure/config"
	"github.com/GriffinCanCode/kitprompt/internal/infrastructure/logging"
	"github.com/bytedance/sonic"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "color.yaml"), []byte(`
description: Pick a color
choices:
  - name: red
  - name: blue
`), 0o644))

	docsPath := filepath.Join(t.TempDir(), "docs.json")
	require.NoError(t, os.WriteFile(docsPath, []byte(`[
		{"dir": "new", "file": "snippets", "title": "Snippets", "content": "# Snippets\n\nExpand **text**."}
	]`), 0o644))

	cfg := config.Default()
	cfg.Prompt.Dir = dir
	cfg.Docs.Path = docsPath
	cfg.RateLimit.Enabled = false

	srv, err := NewServer(cfg, logging.NewNop(), prometheus.NewRegistry())
	require.NoError(t, err)
	return srv
}

func get(t *testing.T, srv *Server, path string) (int, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	var body map[string]interface{}
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, sonic.Unmarshal(w.Body.Bytes(), &body))
	}
	return w.Code, body
}

func TestRoutes(t *testing.T) {
	srv := newTestServer(t)

	code, body := get(t, srv, "/")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "online", body["status"])

	code, body = get(t, srv, "/health")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(2), body["prompts"])
	assert.Equal(t, float64(1), body["docs"])

	code, body = get(t, srv, "/prompts")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(2), body["count"])

	code, body = get(t, srv, "/prompts/color")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Pick a color", body["description"])
	assert.Equal(t, "/prompt/color", body["socket"])

	code, _ = get(t, srv, "/prompts/missing")
	assert.Equal(t, http.StatusNotFound, code)

	code, body = get(t, srv, "/docs/new/snippets")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body["html"], "<strong>text</strong>")

	code, _ = get(t, srv, "/docs/new/missing")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t)
	get(t, srv, "/health")

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "kitprompt_http_requests_total")
}

func TestPromptSocket(t *testing.T) {
	srv := newTestServer(t)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/prompt/color?arg=blue"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg map[string]interface{}
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "VALUE", msg["channel"])
	assert.Equal(t, "blue", msg["value"])
}
