// Package api exposes statement import, detection and stored portfolios over HTTP.
package api

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"
)

// NewServer creates an HTTP server with all routes configured. Portfolio routes are
// registered only when the handler has a store.
func NewServer(port string, handler *Handler, adminAPIKey string) *http.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/brokers", handler.ListBrokers)
	mux.HandleFunc("POST /api/v1/detect", handler.Detect)

	importHandler := http.HandlerFunc(handler.Import)
	if adminAPIKey != "" {
		mux.Handle("POST /api/v1/import", requireAuth(adminAPIKey, importHandler))
	} else {
		mux.Handle("POST /api/v1/import", importHandler)
	}

	if handler.store != nil {
		mux.HandleFunc("GET /api/v1/portfolios/latest", handler.GetLatestPortfolio)
		mux.HandleFunc("GET /api/v1/portfolios", handler.ListPortfolios)
	}

	return &http.Server{
		Addr:         ":" + port,
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

func requireAuth(apiKey string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		token := strings.TrimPrefix(auth, "Bearer ")
		if !strings.HasPrefix(auth, "Bearer ") || subtle.ConstantTimeCompare([]byte(token), []byte(apiKey)) != 1 {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}
