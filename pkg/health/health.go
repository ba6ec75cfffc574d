package health

import (
	"net/http"
	"time"
)

// DefaultHandler answers liveness probes. The process manager tears the
// listener down on shutdown, so serving at all means the workers are up.
func DefaultHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}
}

func NewHealthCheckServer(listen, path string, handler http.HandlerFunc) *http.Server {
	mux := http.NewServeMux()
	mux.HandleFunc(path, handler)

	return &http.Server{
		Addr:              listen,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
