package llm

import (
	"fmt"
	"time"
)

// NewProviderFromConfig creates a Provider from config fields
func NewProviderFromConfig(provider, endpoint, model, region string, timeout time.Duration) (Provider, error) {
	switch provider {
	case "ollama", "":
		if endpoint == "" {
			return nil, fmt.Errorf("ollama endpoint is required")
		}
		return NewClient(endpoint, model, timeout), nil
	case "bedrock":
		return NewBedrock(region, model, timeout)
	default:
		return nil, fmt.Errorf("unsupported LLM provider %q", provider)
	}
}
