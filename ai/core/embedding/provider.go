// Package embedding provides text embeddings for knowledge-base search over
// any OpenAI-protocol provider.
package embedding

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sashabaranov/go-openai"
)

// Provider generates dense vector embeddings for text.
type Provider interface {
	// Embed returns the embedding vector for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Config represents embedding provider configuration.
type Config struct {
	Provider string
	Model    string // e.g. text-embedding-3-small, BAAI/bge-m3
	APIKey   string
	BaseURL  string
	Timeout  int // request timeout in seconds (default: 30)
}

type provider struct {
	client  *openai.Client
	model   string
	timeout int
}

// NewProvider creates a new embedding provider.
func NewProvider(cfg *Config) (Provider, error) {
	if cfg.Model == "" {
		return nil, fmt.Errorf("embedding model is required")
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30
	}

	return &provider{
		client:  openai.NewClientWithConfig(clientConfig),
		model:   cfg.Model,
		timeout: timeout,
	}, nil
}

func (p *provider) Embed(ctx context.Context, text string) ([]float32, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Duration(p.timeout)*time.Second)
	defer cancel()

	start := time.Now()
	resp, err := p.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Model: openai.EmbeddingModel(p.model),
		Input: []string{text},
	})
	if err != nil {
		return nil, fmt.Errorf("create embedding: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("empty embedding response")
	}

	slog.Debug("embedding: generated",
		"model", p.model,
		"dimension", len(resp.Data[0].Embedding),
		"duration_ms", time.Since(start).Milliseconds())

	return resp.Data[0].Embedding, nil
}
