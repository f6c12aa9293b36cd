package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"
)

func TestRealIP(t *testing.T) {
	cases := []struct {
		name       string
		forwarded  string
		realHeader string
		remoteAddr string
		want       string
	}{
		{name: "first forwarded entry wins", forwarded: "1.2.3.4, 5.6.7.8", want: "1.2.3.4"},
		{name: "x-real-ip fallback", realHeader: "9.10.11.12", want: "9.10.11.12"},
		{name: "remote addr without port", remoteAddr: "192.168.1.1:54321", want: "192.168.1.1"},
		{name: "forwarded beats x-real-ip", forwarded: "1.1.1.1", realHeader: "2.2.2.2", want: "1.1.1.1"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.forwarded != "" {
				req.Header.Set("X-Forwarded-For", tc.forwarded)
			}
			if tc.realHeader != "" {
				req.Header.Set("X-Real-Ip", tc.realHeader)
			}
			if tc.remoteAddr != "" {
				req.RemoteAddr = tc.remoteAddr
			}
			assert.Equal(t, tc.want, realIP(req))
		})
	}
}

func TestLimit_RejectsAfterBurst(t *testing.T) {
	rl := NewRateLimiter(rate.Limit(1), 2)
	h := rl.Limit(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/v1/login", nil)
		req.RemoteAddr = "10.0.0.1:1000"
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		codes = append(codes, rr.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestLimit_TracksClientsIndependently(t *testing.T) {
	rl := NewRateLimiter(rate.Limit(1), 1)
	h := rl.Limit(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	first := httptest.NewRequest(http.MethodPost, "/v1/login", nil)
	first.RemoteAddr = "10.0.0.1:1000"
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, first)
	assert.Equal(t, http.StatusOK, rr.Code)

	// Same client is out of budget, a different one is not.
	again := httptest.NewRequest(http.MethodPost, "/v1/login", nil)
	again.RemoteAddr = "10.0.0.1:2000"
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, again)
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)

	other := httptest.NewRequest(http.MethodPost, "/v1/login", nil)
	other.RemoteAddr = "10.0.0.2:1000"
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, other)
	assert.Equal(t, http.StatusOK, rr.Code)
}
