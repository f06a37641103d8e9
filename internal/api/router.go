package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"quick-route/internal/api/handlers"
)

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(planner handlers.RoutePlanner, allowedOrigins []string) http.Handler {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(handlers.NotFound)
	r.MethodNotAllowedHandler = http.HandlerFunc(handlers.MethodNotAllowed)

	planHandler := &handlers.PlanHandler{Planner: planner}

	r.HandleFunc("/health", handlers.Health).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/plans", planHandler.Plan).Methods(http.MethodPost)
	r.HandleFunc("/plans/current", planHandler.Current).Methods(http.MethodGet)
	r.HandleFunc("/plans/current/geojson", planHandler.CurrentGeoJSON).Methods(http.MethodGet)
	r.HandleFunc("/transport-mode", planHandler.SetTransportMode).Methods(http.MethodPut)

	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware)

	c := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", requestIDHeader},
		ExposedHeaders: []string{requestIDHeader},
		MaxAge:         86400,
	})

	return c.Handler(r)
}
