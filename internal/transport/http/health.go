package http

import (
	stdhttp "net/http"
)

type healthResponse struct {
	Status string `json:"status"`
}

// HealthHandler reports basic liveness for the service.
func HealthHandler(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	writeJSON(w, stdhttp.StatusOK, healthResponse{Status: "ok"})
}
