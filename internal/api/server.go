package api

import (
	"context"
	"html/template"
	"net/http"
	"time"

	"github.com/USSTM/swagger-analyzer/internal/schemadoc"
	"github.com/USSTM/swagger-analyzer/internal/session"
	"github.com/USSTM/swagger-analyzer/internal/synth"
)

const defaultMaxUploadBytes = 10 << 20

// SynthesizerService is satisfied by *synth.Synthesizer.
type SynthesizerService interface {
	Synthesize(ctx context.Context, doc *schemadoc.Document, sample string) (*synth.Result, error)
	Model() string
}

// SessionService is satisfied by *session.Manager.
type SessionService interface {
	Load(w http.ResponseWriter, r *http.Request) (*session.State, error)
	Save(r *http.Request, state *session.State) error
}

// CredentialStatus is the outcome of the startup credential check.
type CredentialStatus struct {
	ModelCount int
	VerifiedAt time.Time
}

type Server struct {
	synth          SynthesizerService
	sessions       SessionService
	credential     CredentialStatus
	maxUploadBytes int64
	pages          *template.Template
}

func NewServer(synth SynthesizerService, sessions SessionService, credential CredentialStatus, maxUploadBytes int64) *Server {
	if maxUploadBytes <= 0 {
		maxUploadBytes = defaultMaxUploadBytes
	}
	return &Server{
		synth:          synth,
		sessions:       sessions,
		credential:     credential,
		maxUploadBytes: maxUploadBytes,
		pages:          pageTemplates,
	}
}
