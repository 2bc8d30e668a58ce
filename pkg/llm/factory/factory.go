package factory

import (
	"ai-assistant-be/pkg/llm"
	"ai-assistant-be/pkg/llm/gemini"
	"ai-assistant-be/pkg/llm/ollama"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
)

func NewLLMProvider(ctx context.Context, providerType, apiKey, modelName, baseURL string) (llm.GenerativeClient, error) {
	switch providerType {
	case "gemini", "":
		if apiKey == "" {
			return nil, fmt.Errorf("gemini provider requires an api key")
		}
		return gemini.NewGeminiProvider(ctx, apiKey, modelName)
	case "ollama":
		if baseURL == "" {
			baseURL = "http://localhost:11434" // Default
		}
		return ollama.NewOllamaProvider(baseURL, modelName), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", providerType)
	}
}

// ClientPool hands out one GenerativeClient per API key. Clients idle for longer
// than the TTL are dropped.
type ClientPool struct {
	providerType string
	modelName    string
	baseURL      string
	cache        *cache.Cache
}

func NewClientPool(providerType, modelName, baseURL string) *ClientPool {
	return &ClientPool{
		providerType: providerType,
		modelName:    modelName,
		baseURL:      baseURL,
		cache:        cache.New(30*time.Minute, 10*time.Minute),
	}
}

func (p *ClientPool) Get(ctx context.Context, apiKey string) (llm.GenerativeClient, error) {
	key := poolKey(apiKey)
	if c, found := p.cache.Get(key); found {
		// Touch so active keys stay warm
		p.cache.SetDefault(key, c)
		return c.(llm.GenerativeClient), nil
	}

	client, err := NewLLMProvider(ctx, p.providerType, apiKey, p.modelName, p.baseURL)
	if err != nil {
		return nil, err
	}
	p.cache.SetDefault(key, client)
	return client, nil
}

// Keys are hashed so raw secrets never sit in the cache index.
func poolKey(apiKey string) string {
	sum := sha256.Sum256([]byte(apiKey))
	return hex.EncodeToString(sum[:])
}
