package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRequireAuth(t *testing.T) {
	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{"valid token", "Bearer secret-key", http.StatusOK},
		{"missing header", "", http.StatusUnauthorized},
		{"wrong token", "Bearer wrong-key", http.StatusUnauthorized},
		{"malformed header", "Basic secret-key", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodPost, "/test", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			requireAuth("secret-key", next).ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if called != (tt.wantStatus == http.StatusOK) {
				t.Errorf("next called = %v", called)
			}
		})
	}
}

func TestNewServerRoutes(t *testing.T) {
	tests := []struct {
		name       string
		withStore  bool
		method     string
		path       string
		wantStatus int
	}{
		{"brokers are public", false, http.MethodGet, "/api/v1/brokers", http.StatusOK},
		{"import needs a token", false, http.MethodPost, "/api/v1/import", http.StatusUnauthorized},
		{"portfolios need a store", false, http.MethodGet, "/api/v1/portfolios", http.StatusNotFound},
		{"latest portfolio without data", true, http.MethodGet, "/api/v1/portfolios/latest", http.StatusNotFound},
		{"portfolio list", true, http.MethodGet, "/api/v1/portfolios", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHandler(nil)
			if tt.withStore {
				h = newTestHandler(&mockRepo{})
			}
			srv := NewServer("0", h, "secret-key")

			w := httptest.NewRecorder()
			srv.Handler.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
		})
	}
}
