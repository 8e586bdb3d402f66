package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// FakeUpstream is an httptest server that behaves like the hosted model API.
type FakeUpstream struct {
	*httptest.Server

	mu             sync.Mutex
	ModelCount     int
	ModelsStatus   int
	ModelsBody     string
	CompletionCode int
	CompletionBody string
	Content        string
	ModelCalls     int
	ChatCalls      int
	LastAuth       string
	LastChatBody   []byte
}

// NewFakeUpstream starts a fake API answering 200 to both endpoints
func NewFakeUpstream(t *testing.T) *FakeUpstream {
	t.Helper()
	f := &FakeUpstream{
		ModelCount:     2,
		ModelsStatus:   http.StatusOK,
		CompletionCode: http.StatusOK,
		Content:        "openapi: 3.0.0\ninfo:\n  title: Generated\n",
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/models", f.handleModels)
	mux.HandleFunc("/chat/completions", f.handleChat)

	f.Server = httptest.NewServer(mux)
	t.Cleanup(f.Server.Close)
	return f
}

// FailCompletions makes the chat endpoint answer with status and body
func (f *FakeUpstream) FailCompletions(status int, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.CompletionCode = status
	f.CompletionBody = body
}

// Calls returns the number of models and chat requests seen
func (f *FakeUpstream) Calls() (models, chat int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ModelCalls, f.ChatCalls
}

func (f *FakeUpstream) handleModels(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ModelCalls++
	f.LastAuth = r.Header.Get("Authorization")

	if f.ModelsStatus != http.StatusOK {
		w.WriteHeader(f.ModelsStatus)
		_, _ = io.WriteString(w, f.ModelsBody)
		return
	}

	data := make([]map[string]string, f.ModelCount)
	for i := range data {
		data[i] = map[string]string{"id": "model"}
	}
	_ = json.NewEncoder(w).Encode(map[string]any{"data": data})
}

func (f *FakeUpstream) handleChat(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.ChatCalls++
	f.LastAuth = r.Header.Get("Authorization")
	f.LastChatBody = body

	if f.CompletionCode != http.StatusOK {
		w.WriteHeader(f.CompletionCode)
		_, _ = io.WriteString(w, f.CompletionBody)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(CompletionResponse(f.Content))
}
