package observability

import (
	"net/http"
)

func HealthLiveHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func HealthReadyHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Everything is in-memory; once the process is up it is ready.
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}
}
