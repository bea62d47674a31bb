package upstream

import (
	"net/http"
	"strings"
	"time"

	"ccs/internal/utils"

	"github.com/rs/zerolog"
)

// DefaultTimeout bounds every request to a provider
const DefaultTimeout = 10 * time.Second

// endpoint paths CCR configs commonly carry in api_base_url
var endpointSuffixes = []string{"/chat/completions", "/completions", "/messages"}

type options struct {
	client  *http.Client
	timeout time.Duration
	log     zerolog.Logger
}

// Option configures a Fetcher or Prober
type Option func(*options)

// WithHTTPClient replaces the HTTP client
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) {
		o.client = client
	}
}

// WithTimeout sets the per-request timeout
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithLogger sets the diagnostic logger
func WithLogger(log zerolog.Logger) Option {
	return func(o *options) {
		o.log = log
	}
}

func newOptions(opts []Option) options {
	o := options{
		timeout: DefaultTimeout,
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.client == nil {
		o.client = &http.Client{
			Timeout: o.timeout,
			Transport: &http.Transport{
				Proxy:                 http.ProxyFromEnvironment,
				MaxIdleConns:          10,
				IdleConnTimeout:       30 * time.Second,
				TLSHandshakeTimeout:   5 * time.Second,
				ExpectContinueTimeout: 1 * time.Second,
			},
		}
	}
	return o
}

// stripEndpoint removes a trailing chat/messages endpoint path
func stripEndpoint(base string) string {
	for _, suffix := range endpointSuffixes {
		if strings.HasSuffix(base, suffix) {
			return strings.TrimSuffix(base, suffix)
		}
	}
	return base
}

// CandidateURLs returns the model listing URLs to try for a provider base
// URL, "/v1/models" first, never doubling "/v1".
func CandidateURLs(baseURL string) []string {
	base := stripEndpoint(utils.TrimBaseURL(baseURL))

	switch {
	case strings.HasSuffix(base, "/v1"):
		root := strings.TrimSuffix(base, "/v1")
		return []string{base + "/models", root + "/models"}
	case strings.Contains(base, "/v1/"):
		root := base[:strings.Index(base, "/v1/")]
		return []string{root + "/v1/models", root + "/models"}
	default:
		return []string{base + "/v1/models", base + "/models"}
	}
}
