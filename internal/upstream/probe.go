package upstream

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"ccs/internal/utils"

	openai "github.com/sashabaranov/go-openai"
)

type probeOutcome int

const (
	probeOK probeOutcome = iota
	probeNotFound
	probeClientError
	probeServerError
	probeUnreachable
)

// Prober decides whether a provider expects "/v1" in its base URL
type Prober struct {
	opts options
}

// NewProber creates a Prober
func NewProber(opts ...Option) *Prober {
	return &Prober{opts: newOptions(opts)}
}

// ProbeBaseURL lists models against base+"/v1" and then base using an
// OpenAI-compatible client. Any answer other than 404 on the "/v1" form
// selects it; otherwise any 2xx or 4xx answer on the bare form selects
// that. A URL that already names an endpoint path, or one where neither
// form answers, comes back unchanged.
func (p *Prober) ProbeBaseURL(ctx context.Context, baseURL, apiKey string) string {
	base := utils.TrimBaseURL(baseURL)
	if hasEndpointPath(base) {
		return baseURL
	}

	root := strings.TrimSuffix(base, "/v1")
	withV1 := root + "/v1"
	log := p.opts.log.With().Str("base_url", baseURL).Logger()

	outcome := p.probe(ctx, withV1, apiKey)
	log.Debug().Str("url", withV1).Int("outcome", int(outcome)).Msg("probed base URL")
	switch outcome {
	case probeOK, probeClientError:
		return withV1
	case probeServerError:
		return baseURL
	}

	outcome = p.probe(ctx, root, apiKey)
	log.Debug().Str("url", root).Int("outcome", int(outcome)).Msg("probed base URL")
	switch outcome {
	case probeOK, probeClientError, probeNotFound:
		return root
	}
	return baseURL
}

func (p *Prober) probe(ctx context.Context, baseURL, apiKey string) probeOutcome {
	ctx, cancel := context.WithTimeout(ctx, p.opts.timeout)
	defer cancel()

	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = baseURL
	cfg.HTTPClient = p.opts.client
	client := openai.NewClientWithConfig(cfg)

	_, err := client.ListModels(ctx)
	if err == nil {
		return probeOK
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return probeUnreachable
	}

	status, ok := statusOf(err)
	switch {
	case !ok:
		// answered 2xx with a body that is not an OpenAI model list
		return probeOK
	case status == http.StatusNotFound:
		return probeNotFound
	case status >= 400 && status < 500:
		return probeClientError
	default:
		return probeServerError
	}
}

func statusOf(err error) (int, bool) {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode, true
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode, true
	}
	return 0, false
}

func hasEndpointPath(base string) bool {
	return strings.Contains(base, "/v1/") || stripEndpoint(base) != base
}
