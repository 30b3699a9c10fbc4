package main

import (
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeAddr(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{raw: "", want: "127.0.0.1:10000"},
		{raw: ":3000", want: "127.0.0.1:3000"},
		{raw: "0.0.0.0:8080", want: "127.0.0.1:8080"},
		{raw: "[::]:8080", want: "127.0.0.1:8080"},
		{raw: "10.0.0.5:9000", want: "10.0.0.5:9000"},
		{raw: "garbage", want: "127.0.0.1:10000"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizeAddr(tt.raw))
		})
	}
}

func TestListenAddr(t *testing.T) {
	t.Setenv("POSTPILOT_LISTEN_ADDR", "")
	t.Setenv("PORT", "4000")
	assert.Equal(t, ":4000", listenAddr())

	t.Setenv("POSTPILOT_LISTEN_ADDR", "127.0.0.1:5000")
	assert.Equal(t, "127.0.0.1:5000", listenAddr())
}

func TestCheck(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/health" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(server.Close)

	_, port, err := net.SplitHostPort(server.Listener.Addr().String())
	assert.NoError(t, err)

	t.Setenv("POSTPILOT_LISTEN_ADDR", ":"+port)
	assert.Equal(t, 0, check())

	server.Close()
	assert.Equal(t, 1, check())
}
