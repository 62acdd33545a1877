package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LJTian/TrendingNews/internal/models"
)

func TestOpenAICompleteSendsPromptAndReturnsText(t *testing.T) {
	var got struct {
		Model       string  `json:"model"`
		MaxTokens   int     `json:"max_tokens"`
		Temperature float32 `json:"temperature"`
		Messages    []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"x","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"  제목: 날씨\n본문  "}}]}`))
	}))
	defer srv.Close()

	c := NewOpenAI("sk-test", "", srv.URL+"/v1", srv.Client())
	out, err := c.Complete(context.Background(), Request{System: "sys", User: "user", MaxTokens: 2000, Temperature: 0.3})
	require.NoError(t, err)
	assert.Equal(t, "제목: 날씨\n본문", out)

	assert.Equal(t, defaultOpenAIModel, got.Model)
	assert.Equal(t, 2000, got.MaxTokens)
	assert.InDelta(t, 0.3, got.Temperature, 1e-6)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "sys", got.Messages[0].Content)
	assert.Equal(t, "user", got.Messages[1].Role)
}

func TestOpenAIErrorsAreModelErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"rate limited","type":"requests"}}`))
	}))
	defer srv.Close()

	c := NewOpenAI("sk-test", "gpt-4o-mini", srv.URL+"/v1", srv.Client())
	_, err := c.Complete(context.Background(), Request{User: "hi"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrModel))
	assert.Contains(t, err.Error(), "rate limited")
}

func TestOpenAIEmptyChoicesIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	_, err := NewOpenAI("k", "", srv.URL+"/v1", srv.Client()).Complete(context.Background(), Request{User: "hi"})
	assert.ErrorIs(t, err, models.ErrModel)
}

func TestGeminiComplete(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1beta/models/gemini-test:generateContent", r.URL.Path)
		assert.Equal(t, "g-key", r.URL.Query().Get("key"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"안녕"},{"text":"하세요"}]}}]}`))
	}))
	defer srv.Close()

	g := NewGemini("g-key", "gemini-test", srv.URL, srv.Client())
	out, err := g.Complete(context.Background(), Request{System: "sys", User: "hi", MaxTokens: 150, Temperature: 0.7})
	require.NoError(t, err)
	assert.Equal(t, "안녕하세요", out)

	assert.Contains(t, body, "systemInstruction")
	gen, ok := body["generationConfig"].(map[string]any)
	require.True(t, ok)
	assert.EqualValues(t, 150, gen["maxOutputTokens"])
}

func TestGeminiHTTPErrorIsModelError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":{"code":403,"message":"bad key"}}`))
	}))
	defer srv.Close()

	_, err := NewGemini("k", "", srv.URL, srv.Client()).Complete(context.Background(), Request{User: "hi"})
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrModel)
	assert.Contains(t, err.Error(), "bad key")
}

func TestNewSelectsProvider(t *testing.T) {
	c, err := New(Options{Provider: "gemini", APIKey: "k"})
	require.NoError(t, err)
	assert.IsType(t, &Gemini{}, c)

	c, err = New(Options{APIKey: "k"})
	require.NoError(t, err)
	assert.IsType(t, &OpenAI{}, c)

	_, err = New(Options{Provider: "claude"})
	assert.Error(t, err)
}
