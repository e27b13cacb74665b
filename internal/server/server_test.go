package server_test

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mtlprog/chatpage/internal/config"
	"github.com/mtlprog/chatpage/internal/handler"
	"github.com/mtlprog/chatpage/internal/page"
	"github.com/mtlprog/chatpage/internal/server"
	"github.com/mtlprog/chatpage/internal/static"
)

func newRoutes(t *testing.T) http.Handler {
	t.Helper()
	p, err := page.New(static.FS, static.IndexTemplate, config.Default().Widget)
	require.NoError(t, err)
	return handler.New(p, discardLogger()).Routes()
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

// freePort reserves an ephemeral port and releases it for the server to bind.
func freePort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())
	return port
}

func waitForServer(t *testing.T, url string) *http.Response {
	t.Helper()
	var resp *http.Response
	require.Eventually(t, func() bool {
		r, err := http.Get(url)
		if err != nil {
			return false
		}
		resp = r
		return true
	}, 5*time.Second, 20*time.Millisecond)
	return resp
}

func TestRun_ServesIndexOnConfiguredPort(t *testing.T) {
	port := freePort(t)
	cfg := config.Default()
	cfg.Port = port

	ctx, cancel := context.WithCancel(context.Background())
	srv := server.New(cfg.Addr(), newRoutes(t), discardLogger())

	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	resp := waitForServer(t, fmt.Sprintf("http://127.0.0.1:%d/", port))
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/html; charset=utf-8", resp.Header.Get("Content-Type"))
	assert.Contains(t, string(body), "<title>Dialogflow Messenger</title>")

	missing, err := http.Get(fmt.Sprintf("http://127.0.0.1:%d/nope", port))
	require.NoError(t, err)
	missing.Body.Close()
	assert.Equal(t, http.StatusNotFound, missing.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestRun_BindFailure(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	srv := server.New(ln.Addr().String(), newRoutes(t), discardLogger())

	err = srv.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "listen on")
}

func TestServe_GracefulShutdownLogs(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	var logs bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logs, nil))
	srv := server.New(ln.Addr().String(), newRoutes(t), logger)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	resp := waitForServer(t, "http://"+ln.Addr().String()+"/healthz")
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	require.NoError(t, <-done)

	assert.Contains(t, logs.String(), "starting server")
	assert.Contains(t, logs.String(), "server stopped")
}

func TestServe_ClosedListener(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	require.NoError(t, ln.Close())

	srv := server.New(ln.Addr().String(), newRoutes(t), discardLogger())

	err = srv.Serve(context.Background(), ln)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server error")
}
