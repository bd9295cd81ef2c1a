package mux

import "net/http"

type healthResponse struct {
	OK      bool   `json:"ok"`
	Version string `json:"version"`
}

func (m *Mux) getHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, healthResponse{
			OK:      true,
			Version: m.version,
		})
	}
}
