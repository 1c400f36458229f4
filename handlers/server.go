package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/celerfi/stellar-ticker-go/utils"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
)

// NewRouter exposes the most recently generated artifacts. This is the read
// side downstream clients hit; generation itself stays a batch job.
func NewRouter(log *logrus.Entry) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Get("/ticker.json", func(w http.ResponseWriter, req *http.Request) {
		document, err := utils.LatestTickerSnapshot(req.Context())
		if err != nil {
			log.WithError(err).Error("failed to load ticker snapshot")
			http.Error(w, "no ticker available", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(document)
	})

	r.Get("/status.json", func(w http.ResponseWriter, req *http.Request) {
		status, err := utils.LatestRunStatus(req.Context())
		if err != nil {
			log.WithError(err).Error("failed to load run status")
			http.Error(w, "no status available", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(status)
	})

	return r
}
