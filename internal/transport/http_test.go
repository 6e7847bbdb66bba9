package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func doRequest(h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestHTTPRoute(t *testing.T) {
	r := &stubRouter{}
	h := NewHTTP(r, "default").Handler()

	w := doRequest(h, http.MethodPost, "/api/route", Request{User: "ana", Text: "abre navegador"})
	require.Equal(t, http.StatusOK, w.Code)

	var res Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, "routed: abre navegador", res.Reply)
	assert.Equal(t, "ana", res.User)
	assert.NotEmpty(t, res.ID)

	w = doRequest(h, http.MethodPost, "/api/route", Request{Text: "hi", Backend: "coder"})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, "coder: hi", res.Reply)
}

func TestHTTPBadJSON(t *testing.T) {
	h := NewHTTP(&stubRouter{}, "default").Handler()

	req := httptest.NewRequest(http.MethodPost, "/api/route", bytes.NewBufferString("{nope"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHTTPClassifyAndClear(t *testing.T) {
	r := &stubRouter{}
	h := NewHTTP(r, "default").Handler()

	w := doRequest(h, http.MethodPost, "/api/classify", Request{Text: "python"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"intent": "coder", "reasons": ["programming terms: [python]"]}`, w.Body.String())

	w = doRequest(h, http.MethodDelete, "/api/pending/ana", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, []string{"ana"}, r.cleared)

	w = doRequest(h, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHTTPServeShutdown(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- NewHTTP(&stubRouter{}, "default").Serve(ctx, addr) }()

	require.Eventually(t, func() bool {
		res, err := http.Get("http://" + addr + "/healthz")
		if err != nil {
			return false
		}
		res.Body.Close()
		return res.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	assert.NoError(t, <-done)
	http.DefaultClient.CloseIdleConnections()
}
