package health

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/s-larionov/process-manager"
)

func NewHealthCheckServer(listen, path string, handler http.Handler) *http.Server {
	router := mux.NewRouter()
	router.Handle(path, handler).Methods(http.MethodGet)

	return &http.Server{
		Addr:              listen,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

// DefaultHandler answers 200 while the manager is running.
func DefaultHandler(manager *process.Manager) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if !manager.IsRunning() {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}

		w.WriteHeader(http.StatusOK)
	})
}
