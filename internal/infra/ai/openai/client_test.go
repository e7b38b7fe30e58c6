package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medibridge/carepipe/internal/domain/ai"
)

type capturedRequest struct {
	Model       string            `json:"model"`
	Temperature float32           `json:"temperature"`
	MaxTokens   int               `json:"max_tokens"`
	Messages    []json.RawMessage `json:"messages"`
}

func completionHandler(t *testing.T, got *capturedRequest, content string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(got))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":     "chatcmpl-1",
			"object": "chat.completion",
			"model":  got.Model,
			"choices": []map[string]any{{
				"index":         0,
				"message":       map[string]string{"role": "assistant", "content": content},
				"finish_reason": "stop",
			}},
		})
	}
}

func newTestClient(url string) *Client {
	return NewClient(Options{
		APIKey:      "test-key",
		BaseURL:     url + "/v1",
		Model:       "gpt-3.5-turbo",
		VisionModel: "gpt-4o-mini",
		Timeout:     2 * time.Second,
	})
}

func TestCompleteText(t *testing.T) {
	var got capturedRequest
	server := httptest.NewServer(completionHandler(t, &got, `{"urgency":"Low"}`))
	defer server.Close()

	out, err := newTestClient(server.URL).Complete(context.Background(), ai.Request{
		Prompt:      "Symptoms: cough",
		Temperature: 0.7,
	})
	require.NoError(t, err)
	assert.Equal(t, `{"urgency":"Low"}`, out)
	assert.Equal(t, "gpt-3.5-turbo", got.Model)
	assert.InDelta(t, 0.7, got.Temperature, 0.0001)
	assert.Equal(t, maxTokens, got.MaxTokens)
	require.Len(t, got.Messages, 1)

	var msg struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}
	require.NoError(t, json.Unmarshal(got.Messages[0], &msg))
	assert.Equal(t, "user", msg.Role)
	assert.Equal(t, "Symptoms: cough", msg.Content)
}

func TestCompleteVisionUsesImagePart(t *testing.T) {
	var got capturedRequest
	server := httptest.NewServer(completionHandler(t, &got, "ok"))
	defer server.Close()

	_, err := newTestClient(server.URL).Complete(context.Background(), ai.Request{
		Prompt:    "Analyze this X-ray",
		ImageURL:  "https://files.example.org/xray.png",
		MaxTokens: 500,
	})
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o-mini", got.Model)
	assert.Equal(t, 500, got.MaxTokens)
	require.Len(t, got.Messages, 1)

	var msg struct {
		Content []struct {
			Type     string `json:"type"`
			Text     string `json:"text"`
			ImageURL struct {
				URL string `json:"url"`
			} `json:"image_url"`
		} `json:"content"`
	}
	require.NoError(t, json.Unmarshal(got.Messages[0], &msg))
	require.Len(t, msg.Content, 2)
	assert.Equal(t, "text", msg.Content[0].Type)
	assert.Equal(t, "image_url", msg.Content[1].Type)
	assert.Equal(t, "https://files.example.org/xray.png", msg.Content[1].ImageURL.URL)
}

func TestCompleteServerErrorIsModelUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":{"message":"boom","type":"server_error"}}`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).Complete(context.Background(), ai.Request{Prompt: "x"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ai.ErrModelUnavailable)
	assert.NotErrorIs(t, err, ai.ErrQuotaExceeded)
}

func TestCompleteRateLimitIsQuotaExceeded(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"message":"quota","type":"insufficient_quota"}}`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).Complete(context.Background(), ai.Request{Prompt: "x"})
	assert.ErrorIs(t, err, ai.ErrModelUnavailable)
	assert.ErrorIs(t, err, ai.ErrQuotaExceeded)
}

func TestCompleteEmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"x","object":"chat.completion","choices":[]}`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).Complete(context.Background(), ai.Request{Prompt: "x"})
	assert.ErrorIs(t, err, ai.ErrModelUnavailable)
}

func TestIsReasoningModel(t *testing.T) {
	assert.True(t, isReasoningModel("o3-2025-04-16"))
	assert.True(t, isReasoningModel("gpt-5-mini"))
	assert.False(t, isReasoningModel("gpt-4o-mini"))
}
