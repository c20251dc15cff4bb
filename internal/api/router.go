package api

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterConfig holds router wiring options
type RouterConfig struct {
	RateLimitRPS int
	MaxBars      int
	Hub          *Hub // nil disables the websocket endpoint
}

// NewRouter builds the API router with the standard middleware chain.
func NewRouter(cfg RouterConfig) *mux.Router {
	handler := NewIndicatorHandler(cfg.MaxBars)

	router := mux.NewRouter()

	v1 := router.PathPrefix("/api/v1").Subrouter()
	v1.HandleFunc("/indicators", handler.ListIndicators).Methods("GET")
	v1.HandleFunc("/indicators/{name}", handler.GetIndicator).Methods("GET")
	v1.HandleFunc("/indicators/{name}/calculate", handler.Calculate).Methods("POST")
	v1.HandleFunc("/indicators/{name}/validate", handler.ValidateParams).Methods("POST")

	if cfg.Hub != nil {
		v1.HandleFunc("/stream", cfg.Hub.ServeWS).Methods("GET")
	}

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		respondWithJSON(w, http.StatusOK, map[string]interface{}{
			"status":    "UP",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	}).Methods("GET")

	router.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("READY"))
	}).Methods("GET")

	router.HandleFunc("/live", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("LIVE"))
	}).Methods("GET")

	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	chain := ChainMiddleware(
		RecoveryMiddleware(),
		CORSMiddleware(),
		LoggingMiddleware(),
		RateLimitMiddleware(cfg.RateLimitRPS),
	)
	router.Use(mux.MiddlewareFunc(chain))

	return router
}
