package provider

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"nitro/markdown-render/internal/service"
)

// webErrorBodyLimit caps how much of a refused response is kept for the failure report.
const webErrorBodyLimit = 64 << 10

type webClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type webClientTransport struct {
	client webClient
}

func (w webClientTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	return w.client.Do(req)
}

// WebConfig holds the request configuration of an endpoint.
type WebConfig struct {
	Header http.Header
}

// Web delivers the rendered HTML to a preview endpoint, the view layer that owns the insertion of the fragment.
type Web struct {
	Endpoint string
	Config   WebConfig

	client webClient
	regex  regexp.Regexp
}

// Init internal state.
func (w *Web) Init() error {
	if w.Endpoint == "" {
		return errors.New("missing 'endpoint'")
	}

	if err := w.initRegex(); err != nil {
		return fmt.Errorf("fail to initialize the regex: %w", err)
	}
	if !w.regex.MatchString(w.Endpoint) {
		return fmt.Errorf("invalid endpoint '%s'", w.Endpoint)
	}
	if _, err := url.Parse(w.Endpoint); err != nil {
		return fmt.Errorf("fail to parse the endpoint: %w", err)
	}

	w.initHTTP()
	return nil
}

// Authority checks if the web provider is responsible to process the entry.
func (w Web) Authority(path string) bool {
	return strings.HasSuffix(path, ".md")
}

// Deliver posts the entry HTML to the endpoint.
func (w Web) Deliver(ctx context.Context, entry service.Entry) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.Endpoint, strings.NewReader(entry.HTML))
	if err != nil {
		return "", fmt.Errorf("fail to create the HTTP request: %w", err)
	}
	for key, values := range w.Config.Header {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}
	req.Header.Set("Content-Type", "text/html; charset=utf-8")
	req.Header.Set("X-Markdown-Path", entry.Path)

	resp, err := w.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fail to deliver to '%s': %w", w.Endpoint, err)
	}
	defer resp.Body.Close()

	if (resp.StatusCode >= 200) && (resp.StatusCode < 300) {
		return w.Endpoint, nil
	}

	body, err := ioutil.ReadAll(io.LimitReader(resp.Body, webErrorBodyLimit))
	if err != nil {
		return "", fmt.Errorf("fail to read the response body: %w", err)
	}
	return "", webError{
		path:           entry.Path,
		endpoint:       w.Endpoint,
		status:         resp.StatusCode,
		requestHeader:  req.Header,
		responseHeader: resp.Header,
		body:           string(body),
	}
}

func (w *Web) initRegex() error {
	expr := `^(http|https):\/\/`
	regex, err := regexp.Compile(expr)
	if err != nil {
		return fmt.Errorf("fail to compile the expression '%s': %w", expr, err)
	}
	w.regex = *regex
	return nil
}

func (w *Web) initHTTP() {
	if w.client == nil {
		w.client = &http.Client{}
	}

	w.client = &http.Client{
		Transport: webClientTransport{client: w.client},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return errors.New("redirect not allowed")
		},
	}
}
