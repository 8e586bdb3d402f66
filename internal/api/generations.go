package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/USSTM/swagger-analyzer/internal/llm"
	"github.com/USSTM/swagger-analyzer/internal/middleware"
	"github.com/USSTM/swagger-analyzer/internal/session"
	"github.com/USSTM/swagger-analyzer/internal/synth"
)

type generationResponse struct {
	Document    string    `json:"document"`
	Filename    string    `json:"filename"`
	Model       string    `json:"model"`
	TotalTokens int       `json:"total_tokens"`
	GeneratedAt time.Time `json:"generated_at"`
}

func (s *Server) CreateGeneration(w http.ResponseWriter, r *http.Request) {
	state, err := s.sessions.Load(w, r)
	if err != nil {
		s.internalError(w, r, "Failed to load session", err)
		return
	}

	if apiErr := s.generate(r, state); apiErr != nil {
		writeError(w, apiErr)
		return
	}

	writeJSON(w, http.StatusOK, generationResponse{
		Document:    state.Result.Document,
		Filename:    synth.Filename,
		Model:       state.Result.Model,
		TotalTokens: state.Result.TotalTokens,
		GeneratedAt: state.Result.GeneratedAt,
	})
}

func (s *Server) DownloadLatest(w http.ResponseWriter, r *http.Request) {
	state, err := s.sessions.Load(w, r)
	if err != nil {
		s.internalError(w, r, "Failed to load session", err)
		return
	}

	doc, err := state.Download()
	if err != nil {
		writeError(w, NotFound("Synthesized document"))
		return
	}

	writeDownload(w, doc)
}

// generate runs exactly one synthesis for the session and records the
// outcome. A nil return means state.Result holds the new document.
func (s *Server) generate(r *http.Request, state *session.State) *ErrorBuilder {
	logger := middleware.GetLoggerFromContext(r.Context())

	if err := state.Begin(); err != nil {
		return ConflictErr("Upload a base schema and a sample exchange file first")
	}

	doc, err := state.Document()
	if err != nil {
		logger.Error("Stored document no longer parses", "session_id", state.ID, "error", err)
		return InternalError("Failed to parse stored document")
	}

	if err := s.sessions.Save(r, state); err != nil {
		logger.Warn("Failed to persist generating phase", "session_id", state.ID, "error", err)
	}

	result, err := s.synth.Synthesize(r.Context(), doc, state.Exchange)
	if err != nil {
		msg, status := describeSynthesisError(err)
		state.Fail(msg)
		if saveErr := s.sessions.Save(r, state); saveErr != nil {
			logger.Error("Failed to save session", "session_id", state.ID, "error", saveErr)
		}
		return UpstreamErr(msg, status)
	}

	state.Succeed(session.Generated{
		Document:    result.Document,
		Model:       result.Model,
		TotalTokens: result.Usage.TotalTokens,
		GeneratedAt: result.GeneratedAt,
	})
	if err := s.sessions.Save(r, state); err != nil {
		logger.Error("Failed to save session", "session_id", state.ID, "error", err)
		return InternalError("Failed to save session")
	}

	logger.Info("Synthesis completed",
		"session_id", state.ID,
		"model", result.Model,
		"document_bytes", len(result.Document))
	return nil
}

// describeSynthesisError renders a user-facing message. Upstream failures
// carry the response body text.
func describeSynthesisError(err error) (string, int) {
	var se *llm.StatusError
	if errors.As(err, &se) {
		return fmt.Sprintf("OpenRouter Error: %s", se.Body), se.StatusCode
	}
	return fmt.Sprintf("Error: %s", err.Error()), 0
}

func writeDownload(w http.ResponseWriter, doc string) {
	w.Header().Set("Content-Type", synth.MIMEType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", synth.Filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(doc))
}
