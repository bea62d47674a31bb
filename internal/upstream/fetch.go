package upstream

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"ccs/config/validation"

	"github.com/tidwall/gjson"
)

const maxBodySize = 8 << 20

// FetchResult holds the models a provider reported and any problems met
// along the way. Warnings never abort an update.
type FetchResult struct {
	Models   []string
	URL      string
	Warnings []string
}

// Fetcher lists the models a provider serves
type Fetcher struct {
	opts options
}

// NewFetcher creates a Fetcher
func NewFetcher(opts ...Option) *Fetcher {
	return &Fetcher{opts: newOptions(opts)}
}

// FetchModels tries each candidate URL in turn. A 404 moves on silently;
// auth failures, other statuses and network errors add a warning and move
// on. An empty result means nothing usable answered.
func (f *Fetcher) FetchModels(ctx context.Context, baseURL, apiKey string) FetchResult {
	var res FetchResult
	log := f.opts.log.With().Str("base_url", baseURL).Logger()

	for _, u := range CandidateURLs(baseURL) {
		status, body, err := f.get(ctx, u, apiKey)
		if err != nil {
			res.Warnings = append(res.Warnings, fmt.Sprintf("Failed to fetch models from %s: %s", u, DescribeNetworkError(err, f.opts.timeout)))
			continue
		}

		log.Debug().Str("url", u).Int("status", status).Msg("model listing response")
		switch category := CategorizeStatus(status); {
		case status >= 200 && status < 300:
			models, ok := parseModelList(body)
			if !ok {
				res.Warnings = append(res.Warnings, fmt.Sprintf("Unexpected response format from %s", u))
				return res
			}
			res.Models = validation.NormalizeModels(models)
			res.URL = u
			return res
		case category == CategoryEndpointNotFound:
			continue
		case category == CategoryAuthFailure:
			res.Warnings = append(res.Warnings, fmt.Sprintf("Authentication required for %s (HTTP %d, %s)", u, status, CategoryMessage(category)))
		default:
			res.Warnings = append(res.Warnings, fmt.Sprintf("HTTP %d from %s (%s)", status, u, CategoryMessage(category)))
		}
	}
	return res
}

func (f *Fetcher) get(ctx context.Context, url, apiKey string) (int, []byte, error) {
	ctx, cancel := context.WithTimeout(ctx, f.opts.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Accept", "application/json")
	if apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}

	resp, err := f.opts.client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return 0, nil, err
	}
	return resp.StatusCode, body, nil
}

// parseModelList accepts the OpenAI shape {"data":[{"id":..}]}, a
// {"models":[..]} object and a bare array. List items may be strings or
// objects carrying "id" or "name".
func parseModelList(body []byte) ([]string, bool) {
	if !gjson.ValidBytes(body) {
		return nil, false
	}

	root := gjson.ParseBytes(body)
	var list gjson.Result
	switch {
	case root.IsArray():
		list = root
	case root.Get("data").IsArray():
		list = root.Get("data")
	case root.Get("models").IsArray():
		list = root.Get("models")
	default:
		return nil, false
	}

	models := []string{}
	list.ForEach(func(_, item gjson.Result) bool {
		switch {
		case item.Type == gjson.String:
			models = append(models, item.String())
		case item.Get("id").Exists():
			models = append(models, item.Get("id").String())
		case item.Get("name").Exists():
			models = append(models, item.Get("name").String())
		}
		return true
	})
	return models, true
}
