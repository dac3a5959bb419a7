package nlu

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_DisabledReturnsNoOp(t *testing.T) {
	c, err := New(DefaultConfig())
	require.NoError(t, err)
	assert.False(t, c.Available())
}

func TestNew_UnconfiguredProviderFails(t *testing.T) {
	_, err := New(Config{Enabled: true, Provider: "anthropic"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
}

func TestNew_UnknownProviderFails(t *testing.T) {
	_, err := New(Config{
		Enabled:   true,
		Provider:  "oracle",
		Providers: map[string]ProviderConfig{"oracle": {APIKey: "k"}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown provider")
}

func TestNew_RequiresAPIKey(t *testing.T) {
	_, err := New(Config{
		Enabled:   true,
		Provider:  "openai",
		Providers: map[string]ProviderConfig{"openai": {}},
	})
	require.Error(t, err)
}

func TestAnthropicExtractFields(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-API-Key"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"content": [{"type": "text", "text": "Sure! ` + "```json\\n" + `{\"category\": \"career\", \"hallucinated\": \"x\"}` + "\\n```" + `"}]
		}`))
	}))
	defer srv.Close()

	c, err := New(Config{
		Enabled:  true,
		Provider: "anthropic",
		Providers: map[string]ProviderConfig{
			"anthropic": {APIKey: "test-key", BaseURL: srv.URL},
		},
	})
	require.NoError(t, err)
	require.True(t, c.Available())

	fields, err := c.ExtractFields(context.Background(), Request{
		Task:   "interview_extraction",
		Fields: []FieldSpec{{Name: "category", Description: "inquiry category", Level: "required", Example: "career"}},
		Input:  "thinking about changing jobs",
	})
	require.NoError(t, err)
	assert.Equal(t, "career", fields["category"])
	// Keys outside the requested field list are filtered.
	assert.NotContains(t, fields, "hallucinated")
}

func TestOpenAINarrowHours(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"choices": [{"message": {"role": "assistant", "content": "{\"hours\": [21, 22, 23, 0], \"best_hour\": 22, \"confidence\": \"high\"}"}}]
		}`))
	}))
	defer srv.Close()

	c, err := New(Config{
		Enabled:  true,
		Provider: "openai",
		Providers: map[string]ProviderConfig{
			"openai": {APIKey: "test-key", BaseURL: srv.URL},
		},
	})
	require.NoError(t, err)

	resp, err := c.NarrowHours(context.Background(), HourRequest{
		Candidates: []int{0, 1, 2, 3, 21, 22, 23},
		Event:      "always on night shift",
	})
	require.NoError(t, err)
	assert.Equal(t, []int{21, 22, 23, 0}, resp.Hours)
	require.NotNil(t, resp.BestHour)
	assert.Equal(t, 22, *resp.BestHour)
	assert.Equal(t, ConfidenceHigh, resp.Confidence)
}

func TestAnthropicMalformedPayloadIsAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"content": [{"type": "text", "text": "no json here at all"}]}`))
	}))
	defer srv.Close()

	c, err := New(Config{
		Enabled:  true,
		Provider: "anthropic",
		Providers: map[string]ProviderConfig{
			"anthropic": {APIKey: "test-key", BaseURL: srv.URL},
		},
	})
	require.NoError(t, err)

	_, err = c.ExtractFields(context.Background(), Request{
		Fields: []FieldSpec{{Name: "category"}},
		Input:  "hello",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no parseable JSON")
}
