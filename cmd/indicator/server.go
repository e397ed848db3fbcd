package main

import (
	"encoding/json"
	"net/http"
	"sort"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mohamedkhairy/market-finance/internal/indicator"
)

// setupHealthAndMetricsServer sets up HTTP endpoints for health checks,
// indicator snapshots and metrics
func setupHealthAndMetricsServer(engine *indicator.Engine, health *streamHealth) *mux.Router {
	router := mux.NewRouter()

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		streams, up := health.snapshot()
		status := http.StatusOK
		healthStatus := map[string]interface{}{
			"status":    "UP",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"checks": map[string]interface{}{
				"streams": streams,
				"engine": map[string]interface{}{
					"status":       "ok",
					"symbol_count": engine.GetSymbolCount(),
				},
			},
		}
		if !up {
			status = http.StatusServiceUnavailable
			healthStatus["status"] = "DOWN"
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(healthStatus)
	}).Methods("GET")

	// Readiness probe
	router.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		if _, up := health.snapshot(); up {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("READY"))
		} else {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte("NOT READY"))
		}
	}).Methods("GET")

	// Liveness probe
	router.HandleFunc("/live", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("LIVE"))
	}).Methods("GET")

	router.HandleFunc("/indicators", func(w http.ResponseWriter, r *http.Request) {
		catalog := engine.Registry().GetAllMetadata()
		names := make([]string, 0, len(catalog))
		for name := range catalog {
			names = append(names, name)
		}
		sort.Strings(names)

		list := make([]indicator.IndicatorMetadata, 0, len(names))
		for _, name := range names {
			list = append(list, catalog[name])
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(list)
	}).Methods("GET")

	router.HandleFunc("/indicators/{symbol}", func(w http.ResponseWriter, r *http.Request) {
		symbol := mux.Vars(r)["symbol"]
		values, err := engine.GetIndicators(symbol)
		if err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}

		ordered := make([]map[string]interface{}, 0, len(values))
		for _, name := range sortedKeys(values) {
			ordered = append(ordered, map[string]interface{}{"name": name, "value": values[name]})
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{"symbol": symbol, "indicators": ordered})
	}).Methods("GET")

	router.Handle("/metrics", promhttp.Handler())

	return router
}
