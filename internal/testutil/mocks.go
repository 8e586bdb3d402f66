package testutil

import (
	"context"
	"testing"

	"github.com/USSTM/swagger-analyzer/internal/llm"
	"github.com/stretchr/testify/mock"
)

// MockChatClient is a mock implementation of the chat-completion client
type MockChatClient struct {
	mock.Mock
}

// NewMockChatClient creates a new mock chat client
func NewMockChatClient(t *testing.T) *MockChatClient {
	m := &MockChatClient{}
	m.Test(t)
	return m
}

// ChatCompletion mocks a chat-completion call
func (m *MockChatClient) ChatCompletion(ctx context.Context, request llm.ChatRequest) (*llm.ChatResponse, error) {
	args := m.Called(ctx, request)
	resp, _ := args.Get(0).(*llm.ChatResponse)
	return resp, args.Error(1)
}

// ExpectCompletion sets up a successful completion returning content
func (m *MockChatClient) ExpectCompletion(content string) *mock.Call {
	return m.On("ChatCompletion", mock.Anything, mock.AnythingOfType("llm.ChatRequest")).
		Return(CompletionResponse(content), nil)
}

// ExpectFailure sets up a failing completion
func (m *MockChatClient) ExpectFailure(err error) *mock.Call {
	return m.On("ChatCompletion", mock.Anything, mock.AnythingOfType("llm.ChatRequest")).
		Return(nil, err)
}

// MockCredentialVerifier is a mock of the startup credential check
type MockCredentialVerifier struct {
	mock.Mock
}

func NewMockCredentialVerifier(t *testing.T) *MockCredentialVerifier {
	m := &MockCredentialVerifier{}
	m.Test(t)
	return m
}

func (m *MockCredentialVerifier) VerifyCredential(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

// CompletionResponse builds a single-choice completion
func CompletionResponse(content string) *llm.ChatResponse {
	return &llm.ChatResponse{
		ID:    "gen-test",
		Model: "test-model",
		Choices: []llm.Choice{
			{Index: 0, Message: llm.Message{Role: "assistant", Content: content}},
		},
		Usage: llm.Usage{PromptTokens: 100, CompletionTokens: 50, TotalTokens: 150},
	}
}
