package api

import (
	"net/http"
	"time"

	"github.com/USSTM/swagger-analyzer/internal/middleware"
)

type healthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

type credentialResponse struct {
	Verified   bool      `json:"verified"`
	ModelCount int       `json:"model_count"`
	VerifiedAt time.Time `json:"verified_at"`
}

func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLoggerFromContext(r.Context())
	logger.Debug("Health check requested")

	writeJSON(w, http.StatusOK, healthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC(),
	})
}

// The credential is verified once before the listener starts; a running
// server therefore always reports verified.
func (s *Server) CredentialStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, credentialResponse{
		Verified:   true,
		ModelCount: s.credential.ModelCount,
		VerifiedAt: s.credential.VerifiedAt,
	})
}
