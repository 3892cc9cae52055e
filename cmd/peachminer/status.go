package main

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/peachpow/gominer/pkg/stratum"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
)

// serveStatus exposes a read-only local status/control API over the
// running fleet: /health, /stats, /config.
func serveStatus(addr string, f *fleet, client *stratum.Client, log *logrus.Entry) {
	router := mux.NewRouter()
	router.HandleFunc("/health", handleHealth).Methods("GET")
	router.HandleFunc("/stats", handleStats(f, client)).Methods("GET")
	router.HandleFunc("/config", handleConfig(f)).Methods("GET")

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
	})

	log.WithField("addr", addr).Info("status API listening")
	if err := http.ListenAndServe(addr, c.Handler(router)); err != nil {
		log.WithError(err).Error("status API stopped")
	}
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status": "ok",
		"miner":  "peachminer",
	})
}

func handleStats(f *fleet, client *stratum.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f.mu.RLock()
		job := f.currentJob
		f.mu.RUnlock()

		jobID := ""
		if job != nil {
			jobID = job.JobID
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"devices":       f.states(),
			"hashrate_hs":   f.hashrate(),
			"shares_ok":     client.Accepted(),
			"shares_failed": client.Rejected(),
			"current_job":   jobID,
		})
	}
}

func handleConfig(f *fleet) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f.mu.RLock()
		n := len(f.devices)
		stats := f.acc.GetStats()
		f.mu.RUnlock()

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"device_count": n,
			"hardware":     stats,
		})
	}
}
