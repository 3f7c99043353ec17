package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/agrivalor/equipment-valuation/pkg/config"
)

// Client talks to the OpenAI vector store search API, which backs the
// comparable-sales index.
type Client struct {
	apiKey        string
	vectorStoreID string
	baseURL       string
	httpClient    *http.Client
}

// NewClient creates a new OpenAI vector store client.
func NewClient(cfg *config.OpenAIConfig, timeout time.Duration) (*Client, error) {
	if cfg == nil || cfg.APIKey == "" {
		return nil, errors.New("openai api key is required")
	}
	if cfg.VectorStoreID == "" {
		return nil, errors.New("openai vector store id is required")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	if timeout <= 0 {
		timeout = 20 * time.Second
	}

	return &Client{
		apiKey:        cfg.APIKey,
		vectorStoreID: cfg.VectorStoreID,
		baseURL:       baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

type searchRequest struct {
	Query         string `json:"query"`
	MaxNumResults int    `json:"max_num_results"`
	RewriteQuery  bool   `json:"rewrite_query"`
}

type searchContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type searchResult struct {
	Content []searchContent `json:"content"`
}

type searchEnvelope struct {
	Data []searchResult `json:"data"`
}

// SearchVectorStore runs a semantic search and returns the raw text of
// each hit, in relevance order. Hits without text content are skipped.
func (c *Client) SearchVectorStore(ctx context.Context, query string, maxResults int) ([]string, error) {
	if maxResults <= 0 {
		maxResults = 10
	}

	body, err := json.Marshal(searchRequest{
		Query:         query,
		MaxNumResults: maxResults,
		RewriteQuery:  true,
	})
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/vector_stores/%s/search", c.baseURL, c.vectorStoreID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("vector store search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("vector store search returned status %d: %s", resp.StatusCode, string(payload))
	}

	var envelope searchEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("failed to decode vector store response: %w", err)
	}

	fragments := make([]string, 0, len(envelope.Data))
	for _, hit := range envelope.Data {
		for _, content := range hit.Content {
			if content.Type == "text" && content.Text != "" {
				fragments = append(fragments, content.Text)
				break
			}
		}
	}

	return fragments, nil
}
