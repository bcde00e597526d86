package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Generate(t *testing.T) {
	var got Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(Response{Response: "  Check-in is at 3pm.\n"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/api/generate", "llama3.2:latest", 5*time.Second)
	out, err := c.Generate(context.Background(), "When is check-in?")

	require.NoError(t, err)
	assert.Equal(t, "Check-in is at 3pm.", out)
	assert.Equal(t, "llama3.2:latest", got.Model)
	assert.Equal(t, "When is check-in?", got.Prompt)
	assert.False(t, got.Stream)
	assert.Equal(t, "ollama", c.Name())
}

func TestClient_Generate_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(Response{Error: `model "nope" not found`})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "nope", time.Second)
	_, err := c.Generate(context.Background(), "hi")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "404")
	assert.Contains(t, err.Error(), "not found")
}

func TestClient_Generate_BadBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "not json")
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, "m", time.Second).Generate(context.Background(), "hi")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "decode")
}

func TestClient_Generate_ContextCanceled(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewClient(srv.URL, "m", 5*time.Second).Generate(ctx, "hi")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestClient_IsAvailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/tags" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusTeapot)
	}))
	defer srv.Close()

	assert.True(t, NewClient(srv.URL+"/api/generate", "m", time.Second).IsAvailable(context.Background()))
	assert.False(t, NewClient(srv.URL+"/other", "m", time.Second).IsAvailable(context.Background()))
}

func TestNewProviderFromConfig(t *testing.T) {
	p, err := NewProviderFromConfig("", "http://localhost:11434/api/generate", "m", "", time.Second)
	require.NoError(t, err)
	assert.Equal(t, "ollama", p.Name())

	_, err = NewProviderFromConfig("ollama", "", "m", "", time.Second)
	assert.Error(t, err)

	_, err = NewProviderFromConfig("openai", "", "m", "", time.Second)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported LLM provider")

	_, err = NewProviderFromConfig("bedrock", "", "", "us-east-1", time.Second)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "bedrock model is required")
}

func TestNormalizeModelID(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"anthropic.claude-3-haiku-20240307-v1", "anthropic.claude-3-haiku-20240307-v1:0"},
		{"anthropic.claude-3-haiku-20240307-v1:0", "anthropic.claude-3-haiku-20240307-v1:0"},
		{"arn:aws:bedrock:us-east-1::foundation-model/x", "arn:aws:bedrock:us-east-1::foundation-model/x"},
		{"inference-profile/us.anthropic.claude", "inference-profile/us.anthropic.claude"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, normalizeModelID(tt.in), tt.in)
	}
}

func TestDetectBedrockFamily(t *testing.T) {
	assert.Equal(t, "anthropic", detectBedrockFamily("us.anthropic.claude-3-5-sonnet"))
	assert.Equal(t, "meta", detectBedrockFamily("meta.llama3"))
	assert.Equal(t, "titan", detectBedrockFamily("amazon.titan-text"))
	assert.Equal(t, "", detectBedrockFamily("mistral.large"))
}

func TestBedrock_UnsupportedFamily(t *testing.T) {
	b := &BedrockClient{Model: "mistral.large"}
	_, err := b.Generate(context.Background(), "hi")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported Bedrock model family")
	assert.Equal(t, "bedrock", b.Name())
}

func TestParseAnthropicBody(t *testing.T) {
	out, err := parseAnthropicBody([]byte(`{"content":[{"type":"text","text":"  Welcome! "}]}`))
	require.NoError(t, err)
	assert.Equal(t, "Welcome!", out)

	out, err = parseAnthropicBody([]byte(`{"outputText":"legacy"}`))
	require.NoError(t, err)
	assert.Equal(t, "legacy", out)

	_, err = parseAnthropicBody([]byte(`{"content":[{"type":"text","text":"   "}]}`))
	assert.Error(t, err)

	_, err = parseAnthropicBody([]byte(`garbage`))
	assert.Error(t, err)
}

func TestAnnotateBedrockError(t *testing.T) {
	assert.NoError(t, annotateBedrockError(nil, "m"))

	apiErr := &smithy.GenericAPIError{Code: "ValidationException", Message: "Invocation with on-demand throughput isn't supported"}
	err := annotateBedrockError(fmt.Errorf("bedrock invoke error: %w", apiErr), "anthropic.x:0")
	assert.Contains(t, err.Error(), "code=ValidationException")
	assert.Contains(t, err.Error(), "inference profile")

	var ae smithy.APIError
	assert.True(t, errors.As(err, &ae), "annotated error keeps the API error in its chain")

	err = annotateBedrockError(errors.New("The provided model identifier is invalid"), "x")
	assert.Contains(t, err.Error(), "Verify the exact Bedrock ModelId")

	plain := errors.New("boom")
	assert.Equal(t, plain, annotateBedrockError(plain, "x"))
}
