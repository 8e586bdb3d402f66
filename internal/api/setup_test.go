package api

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/USSTM/swagger-analyzer/internal/config"
	"github.com/USSTM/swagger-analyzer/internal/llm"
	"github.com/USSTM/swagger-analyzer/internal/metrics"
	"github.com/USSTM/swagger-analyzer/internal/session"
	"github.com/USSTM/swagger-analyzer/internal/synth"
	"github.com/USSTM/swagger-analyzer/internal/testutil"
	"github.com/stretchr/testify/require"
)

const baseSchema = `openapi: 3.0.0
info:
  title: Orders
  version: "1.0"
paths:
  /orders:
    post:
      summary: Create order
`

const sampleExchange = "POST /orders {\"sku\":\"A1\"}\n-> 201 {\"id\":7,\"sku\":\"A1\"}\n"

type testEnv struct {
	server   *httptest.Server
	client   *http.Client
	upstream *testutil.FakeUpstream
	prom     *metrics.Prom
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	upstream := testutil.NewFakeUpstream(t)
	prom := metrics.NewProm("api_test")

	llmClient, err := llm.NewClient(config.LLMConfig{
		APIKey:  "sk-test",
		BaseURL: upstream.URL,
		Timeout: 5 * time.Second,
	}, prom)
	require.NoError(t, err)

	tokens, err := session.NewTokenService([]byte("test-key"), "test", time.Hour)
	require.NoError(t, err)
	sessions := session.NewManager(session.NewMemoryStore(time.Hour), tokens, config.SessionConfig{
		CookieName: "sid",
		Expiry:     time.Hour,
	})

	srv := NewServer(synth.New(llmClient, "test-model", prom), sessions, CredentialStatus{
		ModelCount: 2,
		VerifiedAt: time.Now().UTC(),
	}, 1<<20)

	handler, err := NewRouter(srv, RouterOptions{Metrics: prom, MetricsHandler: prom.Handler()})
	require.NoError(t, err)

	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	return &testEnv{
		server:   ts,
		client:   &http.Client{Jar: jar},
		upstream: upstream,
		prom:     prom,
	}
}

type formFile struct {
	field, name, content string
}

func multipartBody(t *testing.T, files ...formFile) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, f := range files {
		part, err := mw.CreateFormFile(f.field, f.name)
		require.NoError(t, err)
		_, err = part.Write([]byte(f.content))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func bothFiles() []formFile {
	return []formFile{
		{field: fieldBaseSchema, name: "base.yaml", content: baseSchema},
		{field: fieldSampleExchange, name: "pairs.txt", content: sampleExchange},
	}
}

func (e *testEnv) post(t *testing.T, path string, files ...formFile) *http.Response {
	t.Helper()
	body, contentType := multipartBody(t, files...)
	resp, err := e.client.Post(e.server.URL+path, contentType, body)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func (e *testEnv) postEmpty(t *testing.T, path string) *http.Response {
	t.Helper()
	resp, err := e.client.Post(e.server.URL+path, "application/x-www-form-urlencoded", nil)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func (e *testEnv) get(t *testing.T, path string) *http.Response {
	t.Helper()
	resp, err := e.client.Get(e.server.URL + path)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}
