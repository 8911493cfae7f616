package httpserver

import (
	"net/http"
	"time"
)

// New builds the registry's HTTP server. Handler-level timeouts guard the
// slow paths; these bound the connection itself.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}
