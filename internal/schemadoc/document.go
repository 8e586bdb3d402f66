// Package schemadoc holds the uploaded base schema: a YAML value tree parsed
// once and re-serialized on demand.
package schemadoc

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

var (
	ErrEmptyDocument     = errors.New("document is empty")
	ErrMultipleDocuments = errors.New("expected a single YAML document")
	ErrInvalidUTF8       = errors.New("text is not valid UTF-8")
)

var (
	SchemaExtensions   = []string{".yaml", ".yml"}
	ExchangeExtensions = []string{".txt"}
)

// Document is a parsed YAML document. It is not modified after Parse.
type Document struct {
	root  yaml.Node
	value any
}

// ParseError wraps a YAML syntax error.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return "invalid YAML: " + e.Err.Error()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func Parse(data []byte) (*Document, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrEmptyDocument
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))

	var root yaml.Node
	if err := dec.Decode(&root); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyDocument
		}
		return nil, &ParseError{Err: err}
	}

	var extra yaml.Node
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		if err != nil {
			return nil, &ParseError{Err: err}
		}
		return nil, ErrMultipleDocuments
	}

	var raw any
	if err := root.Decode(&raw); err != nil {
		return nil, &ParseError{Err: err}
	}

	return &Document{root: root, value: normalize(raw)}, nil
}

// Dump serializes the document. Repeated calls return identical bytes.
func (d *Document) Dump() (string, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&d.root); err != nil {
		return "", fmt.Errorf("failed to serialize document: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("failed to serialize document: %w", err)
	}
	return buf.String(), nil
}

// Value returns the decoded tree with string map keys, safe to JSON-encode.
func (d *Document) Value() any {
	return d.value
}

// DecodeText validates sample exchange text as UTF-8. A leading BOM is dropped.
func DecodeText(data []byte) (string, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	if !utf8.Valid(data) {
		return "", ErrInvalidUTF8
	}
	return string(data), nil
}

// HasExtension reports whether name ends in one of exts, ignoring case.
func HasExtension(name string, exts []string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range exts {
		if ext == e {
			return true
		}
	}
	return false
}

func normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = normalize(val)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[fmt.Sprint(k)] = normalize(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = normalize(val)
		}
		return out
	case float64:
		// JSON has no spelling for these, keep the YAML one
		switch {
		case math.IsInf(t, 1):
			return ".inf"
		case math.IsInf(t, -1):
			return "-.inf"
		case math.IsNaN(t):
			return ".nan"
		}
		return t
	default:
		return v
	}
}
