package api

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/USSTM/swagger-analyzer/internal/middleware"
	"github.com/USSTM/swagger-analyzer/internal/schemadoc"
	"github.com/USSTM/swagger-analyzer/internal/session"
)

const (
	fieldBaseSchema     = "base_schema"
	fieldSampleExchange = "sample_exchange"
)

type upload struct {
	schemaFilename   string
	schemaSource     []byte
	document         *schemadoc.Document
	exchangeFilename string
	exchange         string
}

type inputsResponse struct {
	Phase            session.Phase `json:"phase"`
	SchemaFilename   string        `json:"schema_filename,omitempty"`
	ExchangeFilename string        `json:"exchange_filename,omitempty"`
	BaseDocument     any           `json:"base_document,omitempty"`
	SampleExchange   *string       `json:"sample_exchange,omitempty"`
	Error            string        `json:"error,omitempty"`
}

// UploadInputs accepts both files, parses the YAML eagerly and attaches the
// inputs to the session.
func (s *Server) UploadInputs(w http.ResponseWriter, r *http.Request) {
	state, err := s.sessions.Load(w, r)
	if err != nil {
		s.internalError(w, r, "Failed to load session", err)
		return
	}

	up, apiErr := s.readUpload(w, r)
	if apiErr != nil {
		writeError(w, apiErr)
		return
	}

	if err := s.storeUpload(r, state, up); err != nil {
		s.internalError(w, r, "Failed to save session", err)
		return
	}

	writeJSON(w, http.StatusOK, inputsView(state, up.document))
}

func (s *Server) GetInputs(w http.ResponseWriter, r *http.Request) {
	state, err := s.sessions.Load(w, r)
	if err != nil {
		s.internalError(w, r, "Failed to load session", err)
		return
	}

	var doc *schemadoc.Document
	if state.HasInputs() {
		doc, err = state.Document()
		if err != nil {
			s.internalError(w, r, "Failed to parse stored document", err)
			return
		}
	}

	writeJSON(w, http.StatusOK, inputsView(state, doc))
}

func (s *Server) storeUpload(r *http.Request, state *session.State, up *upload) error {
	state.SetInputs(up.schemaFilename, up.schemaSource, up.exchangeFilename, up.exchange)
	if err := s.sessions.Save(r, state); err != nil {
		return err
	}

	middleware.GetLoggerFromContext(r.Context()).Info("Inputs uploaded",
		"session_id", state.ID,
		"schema_file", up.schemaFilename,
		"schema_bytes", len(up.schemaSource),
		"exchange_file", up.exchangeFilename,
		"exchange_bytes", len(up.exchange))
	return nil
}

// readUpload parses the multipart form. Both files are required; a single
// file is reported as a validation error and nothing is stored.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (*upload, *ErrorBuilder) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	if err := r.ParseMultipartForm(s.maxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, ValidationErr("Upload too large", nil).
				WithContext(ErrorContext{"max_bytes": s.maxUploadBytes})
		}
		return nil, ValidationErr("Expected a multipart form upload", nil)
	}
	defer r.MultipartForm.RemoveAll()

	var details []ErrorDetail
	schemaName, schemaData, err := readFormFile(r, fieldBaseSchema)
	if err != nil {
		details = append(details, ErrorDetail{Field: fieldBaseSchema, Message: err.Error()})
	} else if !schemadoc.HasExtension(schemaName, schemadoc.SchemaExtensions) {
		details = append(details, ErrorDetail{Field: fieldBaseSchema, Message: "must be a .yaml or .yml file"})
	}

	exchangeName, exchangeData, err := readFormFile(r, fieldSampleExchange)
	if err != nil {
		details = append(details, ErrorDetail{Field: fieldSampleExchange, Message: err.Error()})
	} else if !schemadoc.HasExtension(exchangeName, schemadoc.ExchangeExtensions) {
		details = append(details, ErrorDetail{Field: fieldSampleExchange, Message: "must be a .txt file"})
	}

	if len(details) > 0 {
		return nil, ValidationErr("Both a base schema and a sample exchange file are required", details)
	}

	doc, err := schemadoc.Parse(schemaData)
	if err != nil {
		return nil, ValidationErr(err.Error(), []ErrorDetail{{Field: fieldBaseSchema, Message: err.Error()}})
	}

	text, err := schemadoc.DecodeText(exchangeData)
	if err != nil {
		return nil, ValidationErr(err.Error(), []ErrorDetail{{Field: fieldSampleExchange, Message: err.Error()}})
	}

	return &upload{
		schemaFilename:   schemaName,
		schemaSource:     schemaData,
		document:         doc,
		exchangeFilename: exchangeName,
		exchange:         text,
	}, nil
}

func readFormFile(r *http.Request, field string) (string, []byte, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return "", nil, errors.New("file is required")
		}
		return "", nil, err
	}
	defer func(f multipart.File) { _ = f.Close() }(file)

	data, err := io.ReadAll(file)
	if err != nil {
		return "", nil, fmt.Errorf("failed to read file: %w", err)
	}
	return header.Filename, data, nil
}

func inputsView(state *session.State, doc *schemadoc.Document) inputsResponse {
	resp := inputsResponse{
		Phase: state.Phase,
		Error: state.Error,
	}
	if state.HasInputs() {
		resp.SchemaFilename = state.SchemaFilename
		resp.ExchangeFilename = state.ExchangeFilename
		exchange := state.Exchange
		resp.SampleExchange = &exchange
		if doc != nil {
			resp.BaseDocument = doc.Value()
		}
	}
	return resp
}

func (s *Server) internalError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	middleware.GetLoggerFromContext(r.Context()).Error(msg, "error", err)
	writeError(w, InternalError(msg))
}
