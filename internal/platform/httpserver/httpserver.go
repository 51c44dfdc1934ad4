package httpserver

import (
	"net/http"
	"time"
)

// New builds the API server. The write timeout leaves headroom for deal
// execution, which runs the settlement transfers inline before responding.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}
