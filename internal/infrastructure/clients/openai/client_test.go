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

	"github.com/agrivalor/equipment-valuation/pkg/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(&config.OpenAIConfig{
		APIKey:        "test-key",
		VectorStoreID: "vs_123",
		BaseURL:       server.URL,
	}, 2*time.Second)
	require.NoError(t, err)
	return client
}

func TestSearchVectorStore_ReturnsTextFragments(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/vector_stores/vs_123/search", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, true, req["rewrite_query"])

		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"data": []map[string]interface{}{
				{"content": []map[string]string{{"type": "text", "text": "JOHN DEERE 8370R $ 165,000 08/12/2024"}}},
				{"content": []map[string]string{{"type": "image", "text": ""}}}, // skipped: no text content
				{"content": []map[string]string{{"type": "text", "text": "CASE IH MAGNUM $ 120,000 07/01/2024"}}},
			},
		})
	})

	fragments, err := client.SearchVectorStore(context.Background(), "8370R comps", 10)
	require.NoError(t, err)
	require.Len(t, fragments, 2)
	assert.Contains(t, fragments[0], "8370R")
	assert.Contains(t, fragments[1], "MAGNUM")
}

func TestSearchVectorStore_NonOKStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"invalid api key"}`, http.StatusUnauthorized)
	})

	_, err := client.SearchVectorStore(context.Background(), "anything", 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")
}

func TestNewClient_RequiresCredentials(t *testing.T) {
	_, err := NewClient(&config.OpenAIConfig{VectorStoreID: "vs_123"}, 0)
	assert.Error(t, err)

	_, err = NewClient(&config.OpenAIConfig{APIKey: "k"}, 0)
	assert.Error(t, err)
}
