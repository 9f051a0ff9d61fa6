package httpserver

import (
	"net/http"
	"time"
)

// New builds the gateway's HTTP server. Timeouts are generous because score
// submission can trigger the synchronous scored-transition check, but bounded
// so a stalled store cannot pin connections open.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
