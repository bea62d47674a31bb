package providers

import (
	"errors"
	"fmt"
	"sort"
)

// Provider describes a well-known OpenAI-compatible endpoint that
// `ccs add provider` can fill in when --base-url is omitted
type Provider interface {
	// Name returns the preset name (e.g., "openrouter", "deepseek")
	Name() string
	// DefaultBaseURL returns the api_base_url CCR expects for this provider
	DefaultBaseURL() string
	// ValidateConfig checks the provider-specific requirements
	ValidateConfig(apiKey string) error
}

// registry stores all registered providers
var registry = make(map[string]Provider)

// Register registers a new provider
func Register(provider Provider) {
	registry[provider.Name()] = provider
}

// Get returns a provider by name
func Get(name string) (Provider, error) {
	provider, ok := registry[name]
	if !ok {
		return nil, errors.New("unknown provider preset: " + name)
	}
	return provider, nil
}

// List returns all registered provider names, sorted
func List() []string {
	list := make([]string, 0, len(registry))
	for name := range registry {
		list = append(list, name)
	}
	sort.Strings(list)
	return list
}

// preset is a hosted or local endpoint with a fixed chat completions URL
type preset struct {
	name        string
	baseURL     string
	requiresKey bool
}

func (p *preset) Name() string {
	return p.name
}

func (p *preset) DefaultBaseURL() string {
	return p.baseURL
}

func (p *preset) ValidateConfig(apiKey string) error {
	if p.requiresKey && apiKey == "" {
		return fmt.Errorf("%s: an API key is required (--api-key)", p.name)
	}
	return nil
}

func init() {
	Register(&preset{name: "openai", baseURL: "https://api.openai.com/v1/chat/completions", requiresKey: true})
	Register(&preset{name: "openrouter", baseURL: "https://openrouter.ai/api/v1/chat/completions", requiresKey: true})
	Register(&preset{name: "deepseek", baseURL: "https://api.deepseek.com/chat/completions", requiresKey: true})
	Register(&preset{name: "groq", baseURL: "https://api.groq.com/openai/v1/chat/completions", requiresKey: true})
	Register(&preset{name: "ollama", baseURL: "http://localhost:11434/v1/chat/completions"})
}
