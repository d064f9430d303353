package embedding

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIEmbedder uses any OpenAI-compatible embedding API (openai, siliconflow,
// dashscope, ollama's /v1 endpoint, ...). Prefixes follow the e5 convention:
// documents are encoded as "passage: {text}", queries as "query: {text}".
type OpenAIEmbedder struct {
	client *openai.Client
	model  string
	dims   int
}

// NewOpenAIEmbedder creates an embedder against an OpenAI-compatible endpoint.
func NewOpenAIEmbedder(baseURL, apiKey, model string, dims int) *OpenAIEmbedder {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if model == "" {
		model = "intfloat/multilingual-e5-base"
	}
	if dims == 0 {
		dims = 768
	}
	return &OpenAIEmbedder{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
		dims:   dims,
	}
}

func (e *OpenAIEmbedder) EncodeDocument(ctx context.Context, text string) (Vector, error) {
	return e.encode(ctx, "passage: "+text)
}

func (e *OpenAIEmbedder) EncodeQuery(ctx context.Context, text string) (Vector, error) {
	return e.encode(ctx, "query: "+text)
}

func (e *OpenAIEmbedder) encode(ctx context.Context, text string) (Vector, error) {
	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: openai.EmbeddingModel(e.model),
	})
	if err != nil {
		return nil, fmt.Errorf("create embedding: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, errors.New("empty embedding response")
	}
	return resp.Data[0].Embedding, nil
}

func (e *OpenAIEmbedder) Dims() int { return e.dims }
