package api

import (
	"bytes"
	"embed"
	"encoding/json"
	"html/template"
	"net/http"

	"github.com/USSTM/swagger-analyzer/internal/middleware"
	"github.com/USSTM/swagger-analyzer/internal/schemadoc"
	"github.com/USSTM/swagger-analyzer/internal/session"
	"github.com/USSTM/swagger-analyzer/internal/synth"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

type pageData struct {
	ModelCount       int
	HasInputs        bool
	SchemaFilename   string
	BaseDocument     string
	ExchangeFilename string
	Exchange         string
	Result           *session.Generated
	Error            string
	UploadError      string
	Filename         string
}

// Index renders the interactive page for the caller's session.
func (s *Server) Index(w http.ResponseWriter, r *http.Request) {
	state, err := s.sessions.Load(w, r)
	if err != nil {
		s.pageError(w, r, err)
		return
	}
	s.renderPage(w, r, http.StatusOK, state, "")
}

// UploadForm handles the HTML upload. On success it redirects back to the page.
func (s *Server) UploadForm(w http.ResponseWriter, r *http.Request) {
	state, err := s.sessions.Load(w, r)
	if err != nil {
		s.pageError(w, r, err)
		return
	}

	up, apiErr := s.readUpload(w, r)
	if apiErr != nil {
		s.renderPage(w, r, apiErr.Status(), state, uploadErrorText(apiErr))
		return
	}

	if err := s.storeUpload(r, state, up); err != nil {
		s.pageError(w, r, err)
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// GenerateForm runs one synthesis per submission then redirects to the page,
// which shows either the result or the error.
func (s *Server) GenerateForm(w http.ResponseWriter, r *http.Request) {
	state, err := s.sessions.Load(w, r)
	if err != nil {
		s.pageError(w, r, err)
		return
	}

	if apiErr := s.generate(r, state); apiErr != nil && apiErr.Code != CodeUpstreamError {
		s.renderPage(w, r, apiErr.Status(), state, apiErr.Message)
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) DownloadForm(w http.ResponseWriter, r *http.Request) {
	state, err := s.sessions.Load(w, r)
	if err != nil {
		s.pageError(w, r, err)
		return
	}

	doc, err := state.Download()
	if err != nil {
		http.Error(w, "No generated document available", http.StatusNotFound)
		return
	}
	writeDownload(w, doc)
}

func (s *Server) renderPage(w http.ResponseWriter, r *http.Request, status int, state *session.State, uploadErr string) {
	data := pageData{
		ModelCount:  s.credential.ModelCount,
		UploadError: uploadErr,
		Filename:    synth.Filename,
	}

	// idle and partial-input sessions show only the upload prompts
	if state.HasInputs() {
		doc, err := state.Document()
		if err != nil {
			s.pageError(w, r, err)
			return
		}
		echo, err := echoDocument(doc)
		if err != nil {
			s.pageError(w, r, err)
			return
		}

		data.HasInputs = true
		data.SchemaFilename = state.SchemaFilename
		data.BaseDocument = echo
		data.ExchangeFilename = state.ExchangeFilename
		data.Exchange = state.Exchange
		data.Error = state.Error
		if state.Phase == session.PhaseResultShown {
			data.Result = state.Result
		}
	}

	var buf bytes.Buffer
	if err := s.pages.ExecuteTemplate(&buf, "index", data); err != nil {
		s.pageError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// JSON view of the parsed tree, YAML when the tree cannot be encoded
func echoDocument(doc *schemadoc.Document) (string, error) {
	pretty, err := json.MarshalIndent(doc.Value(), "", "  ")
	if err == nil {
		return string(pretty), nil
	}
	return doc.Dump()
}

func (s *Server) pageError(w http.ResponseWriter, r *http.Request, err error) {
	middleware.GetLoggerFromContext(r.Context()).Error("Failed to render page", "error", err)
	http.Error(w, "Internal server error", http.StatusInternalServerError)
}

func uploadErrorText(e *ErrorBuilder) string {
	msg := e.Message
	for _, d := range e.Details {
		if d.Message != e.Message {
			msg += "\n" + d.Field + ": " + d.Message
		}
	}
	return msg
}
