package httpx

import (
	"net/http"
)

// HealthHandler reports liveness plus whether startup rehydration has finished.
type HealthHandler struct {
	Session SessionFacade
}

type healthResponse struct {
	Status  string `json:"status"`
	Session string `json:"session"`
}

func (h HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "ok", Session: "ready"}
	if h.Session == nil || h.Session.Session().Loading {
		resp.Session = "loading"
	}
	if r.Method == http.MethodHead {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		return
	}
	WriteJSON(w, http.StatusOK, resp)
}
