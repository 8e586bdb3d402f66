// Package session keeps the per-browser inputs and last synthesis outcome.
// Nothing outlives the session expiry.
package session

import (
	"errors"
	"time"

	"github.com/USSTM/swagger-analyzer/internal/schemadoc"
)

type Phase string

const (
	PhaseAwaitingInputs  Phase = "awaiting_inputs"
	PhaseAwaitingTrigger Phase = "awaiting_trigger"
	PhaseGenerating      Phase = "generating"
	PhaseResultShown     Phase = "result_shown"
	PhaseErrorShown      Phase = "error_shown"
)

var (
	ErrNotFound      = errors.New("session not found")
	ErrInputsMissing = errors.New("both input files are required")
	ErrNoResult      = errors.New("no synthesized document available")
)

// Generated is the last successful synthesis.
type Generated struct {
	Document    string    `json:"document"`
	Model       string    `json:"model"`
	TotalTokens int       `json:"total_tokens"`
	GeneratedAt time.Time `json:"generated_at"`
}

type State struct {
	ID               string     `json:"id"`
	Phase            Phase      `json:"phase"`
	SchemaFilename   string     `json:"schema_filename,omitempty"`
	SchemaSource     []byte     `json:"schema_source,omitempty"`
	ExchangeFilename string     `json:"exchange_filename,omitempty"`
	Exchange         string     `json:"exchange,omitempty"`
	Result           *Generated `json:"result,omitempty"`
	Error            string     `json:"error,omitempty"`
	Generations      int        `json:"generations"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

func NewState(id string) *State {
	return &State{
		ID:        id,
		Phase:     PhaseAwaitingInputs,
		UpdatedAt: time.Now().UTC(),
	}
}

func (s *State) HasInputs() bool {
	return len(s.SchemaSource) > 0 && s.ExchangeFilename != ""
}

// Document re-parses the stored schema source. Parsing the same bytes always
// yields the same dump.
func (s *State) Document() (*schemadoc.Document, error) {
	if len(s.SchemaSource) == 0 {
		return nil, ErrInputsMissing
	}
	return schemadoc.Parse(s.SchemaSource)
}

// SetInputs replaces both inputs and discards any previous outcome.
func (s *State) SetInputs(schemaFilename string, schemaSource []byte, exchangeFilename, exchange string) {
	s.SchemaFilename = schemaFilename
	s.SchemaSource = schemaSource
	s.ExchangeFilename = exchangeFilename
	s.Exchange = exchange
	s.Result = nil
	s.Error = ""
	s.Phase = PhaseAwaitingTrigger
	s.touch()
}

// Begin moves to generating. Allowed from awaiting-trigger and both terminal phases.
func (s *State) Begin() error {
	if !s.HasInputs() {
		return ErrInputsMissing
	}
	s.Phase = PhaseGenerating
	s.Generations++
	s.touch()
	return nil
}

func (s *State) Succeed(g Generated) {
	s.Result = &g
	s.Error = ""
	s.Phase = PhaseResultShown
	s.touch()
}

// Fail records the error; the previous document is dropped so no download is offered.
func (s *State) Fail(msg string) {
	s.Result = nil
	s.Error = msg
	s.Phase = PhaseErrorShown
	s.touch()
}

// Download returns the current synthesized document.
func (s *State) Download() (string, error) {
	if s.Phase != PhaseResultShown || s.Result == nil {
		return "", ErrNoResult
	}
	return s.Result.Document, nil
}

func (s *State) touch() {
	s.UpdatedAt = time.Now().UTC()
}
