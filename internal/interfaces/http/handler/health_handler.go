package handler

import (
	"encoding/json"
	"net/http"
)

// Health reports liveness together with the number of registered commands
func Health(commands int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"status":   "OK",
			"commands": commands,
		})
	}
}
