// Package catalog is a read-only client for the third-party exercise catalog (ExerciseDB).
package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"golang.org/x/time/rate"
)

const (
	headerAPIKey  = "X-RapidAPI-Key"
	headerAPIHost = "X-RapidAPI-Host"

	defaultTimeout           = 15 * time.Second
	defaultRequestsPerSecond = 5
	defaultImageContentType  = "image/gif"

	// maxErrorBody caps how much of a failed response is kept for the error message.
	maxErrorBody = 512
)

// ErrNotFound is returned when the catalog has no record or asset for the requested id.
var ErrNotFound = errors.New("catalog: not found")

// StatusError describes a non-2xx catalog response.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("catalog: unexpected status %d: %s", e.Code, e.Body)
}

// Exercise is a catalog record as served by the API.
type Exercise struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	BodyPart         string   `json:"bodyPart"`
	Target           string   `json:"target"`
	Equipment        string   `json:"equipment"`
	SecondaryMuscles []string `json:"secondaryMuscles,omitempty"`
	Instructions     []string `json:"instructions,omitempty"`
	Difficulty       string   `json:"difficulty,omitempty"`
	Category         string   `json:"category,omitempty"`
	Description      string   `json:"description,omitempty"`
	Tags             []string `json:"tags,omitempty"`
}

// Image is a binary animation asset.
type Image struct {
	ContentType string
	Data        []byte
}

// Options configures a Client. Zero values fall back to defaults.
type Options struct {
	BaseURL           string
	APIKey            string
	Timeout           time.Duration
	RequestsPerSecond float64
	// Burst is how many requests may start at once before pacing applies. Defaults to 1.
	Burst             int
	HTTPClient        *http.Client
}

// Client talks to the catalog API. It is safe for concurrent use; every request
// waits on a shared limiter so a batch never exceeds the configured rate.
type Client struct {
	baseURL    string
	host       string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient builds a catalog client.
func NewClient(opts Options) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("catalog: invalid base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("catalog: base url %q must be absolute", opts.BaseURL)
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	rps := opts.RequestsPerSecond
	if rps <= 0 {
		rps = defaultRequestsPerSecond
	}

	burst := opts.Burst
	if burst <= 0 {
		burst = 1
	}

	return &Client{
		baseURL:    base.String(),
		host:       base.Hostname(),
		apiKey:     opts.APIKey,
		httpClient: httpClient,
		limiter:    rate.NewLimiter(rate.Limit(rps), burst),
	}, nil
}

// ListExercises fetches the bulk listing. A limit of zero or less omits the limit parameter.
func (c *Client) ListExercises(ctx context.Context, limit int) ([]Exercise, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	var exercises []Exercise
	if err := c.getJSON(ctx, "/exercises", q, &exercises); err != nil {
		return nil, err
	}
	return exercises, nil
}

// GetExercise fetches a single record by catalog id.
func (c *Client) GetExercise(ctx context.Context, id string) (*Exercise, error) {
	var ex Exercise
	if err := c.getJSON(ctx, "/exercises/exercise/"+url.PathEscape(id), nil, &ex); err != nil {
		return nil, err
	}
	if ex.ID == "" {
		// The API answers unknown ids with 200 and an empty body on some plans.
		return nil, ErrNotFound
	}
	return &ex, nil
}

// FetchImage downloads the animation asset for id at the given resolution.
// The API key travels in a header, never in the URL.
func (c *Client) FetchImage(ctx context.Context, id string, resolution int) (*Image, error) {
	q := url.Values{}
	q.Set("exerciseId", id)
	q.Set("resolution", strconv.Itoa(resolution))

	resp, err := c.do(ctx, "/image", q)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("catalog: reading image %s: %w", id, err)
	}
	if len(data) == 0 {
		return nil, ErrNotFound
	}
	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = defaultImageContentType
	}
	return &Image{ContentType: contentType, Data: data}, nil
}

func (c *Client) getJSON(ctx context.Context, path string, q url.Values, out interface{}) error {
	resp, err := c.do(ctx, path, q)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("catalog: decoding %s: %w", path, err)
	}
	return nil
}

// do sends an authenticated GET and returns the response when the status is 2xx.
func (c *Client) do(ctx context.Context, path string, q url.Values) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	u := c.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("catalog: creating request: %w", err)
	}
	req.Header.Set(headerAPIKey, c.apiKey)
	req.Header.Set(headerAPIHost, c.host)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("catalog: GET %s: %w", path, err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return nil, &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(body))}
}
