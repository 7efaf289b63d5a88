// Package imageapi implements the image generation HTTP service behind the
// ImagesFunction Lambda.
package imageapi

import (
	"fmt"
	"os"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// Config contains configuration for the service.
type Config struct {
	// APIKey for OpenAI (defaults to OPENAI_API_KEY env var)
	APIKey string
	// BaseURL overrides the OpenAI endpoint. Used by tests.
	BaseURL string
}

// Service handles image generation requests.
type Service struct {
	client *openai.Client
}

// New creates a new image generation service.
func New(config Config) (*Service, error) {
	apiKey := config.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY environment variable not set")
	}

	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if config.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(config.BaseURL))
	}

	client := openai.NewClient(opts...)

	return &Service{
		client: &client,
	}, nil
}
