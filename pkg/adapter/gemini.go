package adapter

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/genai"

	"github.com/hanishkeloth/agentmemory/pkg/model"
)

// GeminiClient embeds text through the Gemini API on Vertex AI. The output
// dimensionality is pinned to the vector index dimension at construction.
type GeminiClient struct {
	client         *genai.Client
	embeddingModel string
	dimensions     int
}

type GeminiOption func(*GeminiClient)

func WithEmbeddingModel(model string) GeminiOption {
	return func(g *GeminiClient) {
		g.embeddingModel = model
	}
}

func WithDimensions(dimensions int) GeminiOption {
	return func(g *GeminiClient) {
		g.dimensions = dimensions
	}
}

func NewGemini(ctx context.Context, projectID, location string, opts ...GeminiOption) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		Project:  projectID,
		Location: location,
		Backend:  genai.BackendVertexAI,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create genai client")
	}

	g := &GeminiClient{
		client:         client,
		embeddingModel: "gemini-embedding-001",
		dimensions:     384,
	}

	for _, opt := range opts {
		opt(g)
	}

	return g, nil
}

func (g *GeminiClient) Embed(ctx context.Context, text string) ([]float32, error) {
	dims := int32(g.dimensions)
	resp, err := g.client.Models.EmbedContent(ctx, g.embeddingModel, genai.Text(text), &genai.EmbedContentConfig{
		OutputDimensionality: &dims,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to embed content")
	}

	if len(resp.Embeddings) == 0 || resp.Embeddings[0] == nil {
		return nil, goerr.New("empty embedding response", goerr.V("model", g.embeddingModel))
	}

	vec := resp.Embeddings[0].Values
	if len(vec) != g.dimensions {
		return nil, goerr.Wrap(model.ErrDimensionMismatch, "unexpected embedding length",
			goerr.V("got", len(vec)), goerr.V("want", g.dimensions))
	}
	return vec, nil
}

func (g *GeminiClient) Dimensions() int {
	return g.dimensions
}
