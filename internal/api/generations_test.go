package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"testing"

	"github.com/USSTM/swagger-analyzer/internal/llm"
	"github.com/USSTM/swagger-analyzer/internal/synth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServer_CreateGeneration(t *testing.T) {
	t.Run("requires inputs", func(t *testing.T) {
		env := newTestEnv(t)

		resp := env.postEmpty(t, "/api/v1/generations")
		require.Equal(t, http.StatusConflict, resp.StatusCode)

		_, chat := env.upstream.Calls()
		assert.Zero(t, chat)
	})

	t.Run("success returns content verbatim", func(t *testing.T) {
		env := newTestEnv(t)
		env.upstream.Content = "openapi: 3.0.0\n..."

		require.Equal(t, http.StatusOK, env.post(t, "/api/v1/inputs", bothFiles()...).StatusCode)

		resp := env.postEmpty(t, "/api/v1/generations")
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var body generationResponse
		decodeBody(t, resp, &body)
		assert.Equal(t, "openapi: 3.0.0\n...", body.Document)
		assert.Equal(t, synth.Filename, body.Filename)

		_, chat := env.upstream.Calls()
		assert.Equal(t, 1, chat, "exactly one upstream request per trigger")

		var sent llm.ChatRequest
		require.NoError(t, json.Unmarshal(env.upstream.LastChatBody, &sent))
		assert.Equal(t, "test-model", sent.Model)
		require.Len(t, sent.Messages, 2)
		assert.Equal(t, synth.SystemRole, sent.Messages[0].Content)
		assert.Contains(t, sent.Messages[1].Content, sampleExchange)
		assert.Equal(t, "Bearer sk-test", env.upstream.LastAuth)

		download := env.get(t, "/api/v1/generations/latest")
		require.Equal(t, http.StatusOK, download.StatusCode)
		assert.Equal(t, synth.MIMEType, download.Header.Get("Content-Type"))
		assert.Contains(t, download.Header.Get("Content-Disposition"), `filename="swagger_generated.yaml"`)
		data, err := io.ReadAll(download.Body)
		require.NoError(t, err)
		assert.Equal(t, "openapi: 3.0.0\n...", string(data))
	})

	t.Run("upstream 500 reports body and offers no download", func(t *testing.T) {
		env := newTestEnv(t)
		env.upstream.FailCompletions(http.StatusInternalServerError, "provider returned error: overloaded")

		require.Equal(t, http.StatusOK, env.post(t, "/api/v1/inputs", bothFiles()...).StatusCode)

		resp := env.postEmpty(t, "/api/v1/generations")
		require.Equal(t, http.StatusBadGateway, resp.StatusCode)

		var body ErrorResponse
		decodeBody(t, resp, &body)
		assert.Equal(t, CodeUpstreamError, body.Error.Code)
		assert.Contains(t, body.Error.Message, "provider returned error: overloaded")
		assert.EqualValues(t, http.StatusInternalServerError, body.Error.Context["upstream_status"])

		_, chat := env.upstream.Calls()
		assert.Equal(t, 1, chat, "no retry")

		download := env.get(t, "/api/v1/generations/latest")
		assert.Equal(t, http.StatusNotFound, download.StatusCode)
	})

	t.Run("retry after failure succeeds", func(t *testing.T) {
		env := newTestEnv(t)
		env.upstream.FailCompletions(http.StatusInternalServerError, "boom")
		require.Equal(t, http.StatusOK, env.post(t, "/api/v1/inputs", bothFiles()...).StatusCode)
		require.Equal(t, http.StatusBadGateway, env.postEmpty(t, "/api/v1/generations").StatusCode)

		env.upstream.FailCompletions(http.StatusOK, "")
		require.Equal(t, http.StatusOK, env.postEmpty(t, "/api/v1/generations").StatusCode)

		_, chat := env.upstream.Calls()
		assert.Equal(t, 2, chat)
	})
}

func TestServer_DownloadLatest_NoResult(t *testing.T) {
	env := newTestEnv(t)

	resp := env.get(t, "/api/v1/generations/latest")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDescribeSynthesisError(t *testing.T) {
	msg, status := describeSynthesisError(&llm.StatusError{Op: "chat_completion", StatusCode: 429, Body: "rate limited"})
	assert.Equal(t, "OpenRouter Error: rate limited", msg)
	assert.Equal(t, 429, status)

	msg, status = describeSynthesisError(errors.New("dial tcp: refused"))
	assert.Equal(t, "Error: dial tcp: refused", msg)
	assert.Zero(t, status)
}
