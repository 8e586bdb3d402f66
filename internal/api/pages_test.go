package api

import (
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readAll(t *testing.T, resp *http.Response) string {
	t.Helper()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(data)
}

func TestPages_Idle(t *testing.T) {
	env := newTestEnv(t)

	resp := env.get(t, "/")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	page := readAll(t, resp)

	assert.Contains(t, page, "Upload base Swagger YAML")
	assert.Contains(t, page, "2 models available")
	assert.NotContains(t, page, "Generate API Documentation")
	assert.NotContains(t, page, "Base Swagger File")
}

func TestPages_PartialUpload(t *testing.T) {
	env := newTestEnv(t)

	resp := env.post(t, "/inputs", formFile{field: fieldBaseSchema, name: "base.yaml", content: baseSchema})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	page := readAll(t, resp)

	assert.Contains(t, page, "Upload base Swagger YAML")
	assert.NotContains(t, page, "Generate API Documentation")
	assert.Contains(t, page, "sample_exchange: file is required")
}

func TestPages_GenerateFlow(t *testing.T) {
	env := newTestEnv(t)
	env.upstream.Content = "openapi: 3.0.0\n..."

	// upload redirects back to the page with both inputs echoed
	resp := env.post(t, "/inputs", bothFiles()...)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	page := readAll(t, resp)
	assert.Contains(t, page, "Base Swagger File")
	assert.Contains(t, page, "&#34;openapi&#34;: &#34;3.0.0&#34;")
	assert.Contains(t, page, "Generate API Documentation")
	assert.NotContains(t, page, "Download Swagger YAML")

	_, chat := env.upstream.Calls()
	assert.Zero(t, chat, "nothing is sent before the trigger")

	resp = env.postEmpty(t, "/generate")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	page = readAll(t, resp)
	assert.Contains(t, page, "Swagger Documentation Generated")
	assert.Contains(t, page, "openapi: 3.0.0\n...")
	assert.Contains(t, page, "Download Swagger YAML")

	_, chat = env.upstream.Calls()
	assert.Equal(t, 1, chat)

	download := env.get(t, "/download")
	require.Equal(t, http.StatusOK, download.StatusCode)
	assert.Equal(t, "text/yaml", download.Header.Get("Content-Type"))
	assert.Equal(t, "openapi: 3.0.0\n...", readAll(t, download))
}

func TestPages_GenerateFailure(t *testing.T) {
	env := newTestEnv(t)
	env.upstream.FailCompletions(http.StatusInternalServerError, "model exploded")

	require.Equal(t, http.StatusOK, env.post(t, "/inputs", bothFiles()...).StatusCode)

	resp := env.postEmpty(t, "/generate")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	page := readAll(t, resp)

	assert.Contains(t, page, "OpenRouter Error: model exploded")
	assert.NotContains(t, page, "Download Swagger YAML")
	assert.True(t, strings.Contains(page, "Generate API Documentation"), "trigger stays available")

	assert.Equal(t, http.StatusNotFound, env.get(t, "/download").StatusCode)
}

func TestPages_GenerateWithoutInputs(t *testing.T) {
	env := newTestEnv(t)

	resp := env.postEmpty(t, "/generate")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	_, chat := env.upstream.Calls()
	assert.Zero(t, chat)
}

func TestMetricsAndDocsMounted(t *testing.T) {
	env := newTestEnv(t)

	assert.Equal(t, http.StatusOK, env.get(t, "/swagger/doc.json").StatusCode)

	env.get(t, "/")
	metrics := readAll(t, env.get(t, "/metrics"))
	assert.Contains(t, metrics, "api_test_http_requests_total")
}
