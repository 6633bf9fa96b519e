package handlers

import "net/http"

// Version is reported by the health endpoint
var Version = "0.1.0"

// HealthResponse is the body of GET /health
type HealthResponse struct {
	Status   string `json:"status"`
	Version  string `json:"version"`
	Provider bool   `json:"provider"`
}

// Health returns a handler reporting liveness and whether a provider is wired
func Health(providerConfigured bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, HealthResponse{
			Status:   "ok",
			Version:  Version,
			Provider: providerConfigured,
		})
	}
}
