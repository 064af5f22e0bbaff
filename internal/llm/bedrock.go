package llm

import (
	"context"
	"encoding/json"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"

	"github.com/careops/wardagent/internal/config"
)

// DefaultBedrockEmbedModel is Amazon's Titan text embedding model.
const DefaultBedrockEmbedModel = "amazon.titan-embed-text-v2:0"

// BedrockEmbedder generates embeddings through Amazon Bedrock.
type BedrockEmbedder struct {
	client    *bedrockruntime.Client
	modelID   string
	dimension int
}

// NewBedrockEmbedder creates a Bedrock-backed embedder using the default
// AWS credential chain.
func NewBedrockEmbedder(ctx context.Context, cfg config.Config) (*BedrockEmbedder, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	modelID := cfg.EmbedModel
	if modelID == "" {
		modelID = DefaultBedrockEmbedModel
	}

	return &BedrockEmbedder{
		client:    bedrockruntime.NewFromConfig(awsCfg),
		modelID:   modelID,
		dimension: cfg.EmbedDimension,
	}, nil
}

type titanEmbedRequest struct {
	InputText  string `json:"inputText"`
	Dimensions int    `json:"dimensions,omitempty"`
}

type titanEmbedResponse struct {
	Embedding []float64 `json:"embedding"`
}

// Embed generates an embedding vector for text via Titan.
func (e *BedrockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	body, err := json.Marshal(titanEmbedRequest{
		InputText:  text,
		Dimensions: e.dimension,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal titan request: %w", err)
	}

	contentType := "application/json"
	out, err := e.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     &e.modelID,
		ContentType: &contentType,
		Accept:      &contentType,
		Body:        body,
	})
	if err != nil {
		return nil, fmt.Errorf("invoke bedrock model: %w", err)
	}

	var resp titanEmbedResponse
	if err := json.Unmarshal(out.Body, &resp); err != nil {
		return nil, fmt.Errorf("unmarshal titan response: %w", err)
	}
	if len(resp.Embedding) == 0 {
		return nil, fmt.Errorf("no embedding returned")
	}
	if e.dimension > 0 && len(resp.Embedding) != e.dimension {
		return nil, fmt.Errorf("dimension mismatch: got %d, want %d", len(resp.Embedding), e.dimension)
	}

	vector := make([]float32, len(resp.Embedding))
	for i, v := range resp.Embedding {
		vector[i] = float32(v)
	}
	return vector, nil
}

// Model returns the Bedrock model identifier.
func (e *BedrockEmbedder) Model() string {
	return e.modelID
}

// Dimension returns the expected embedding dimension.
func (e *BedrockEmbedder) Dimension() int {
	return e.dimension
}
