package factory

import (
	"fmt"

	"minima-be/pkg/embedding"
	"minima-be/pkg/embedding/jina"
)

func NewEmbeddingProvider(providerType, baseURL, model, apiKey string) (embedding.EmbeddingProvider, error) {
	switch providerType {
	case "gemini":
		return embedding.NewGeminiProvider(apiKey), nil
	case "ollama":
		return embedding.NewOllamaProvider(baseURL, model), nil
	case "jina":
		return jina.NewJinaProvider(apiKey), nil
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", providerType)
	}
}
