// Package lookup resolves paper metadata from external services: DOI
// content negotiation against doi.org and the Google Custom Search JSON
// API. All calls share one rate limiter so a batch never violates the
// configured inter-call floor, and transient failures are retried with
// exponential backoff.
package lookup

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultMinInterval is the default hard floor between external
	// calls. Callers usually add their own per-record delay on top.
	DefaultMinInterval = time.Second

	// DefaultMaxAttempts bounds retries on transient failures.
	DefaultMaxAttempts = 3

	// DefaultSearchResults is the number of CSE results requested.
	DefaultSearchResults = 5
)

// RetryBaseDelay is the base duration for exponential backoff between
// retry attempts: base, 2*base, 4*base. Tests override this to avoid
// real sleeps.
var RetryBaseDelay = 500 * time.Millisecond

// Base URLs. Declared as vars so tests can substitute httptest servers.
var (
	DOIBaseURL = "https://doi.org/"
	CSEBaseURL = "https://www.googleapis.com/customsearch/v1"
)

// Partial is a fragment of record metadata returned by one lookup.
// Missing fields in the upstream payload stay empty.
type Partial struct {
	Title         string
	Authors       []string
	Abstract      string
	Venue         string
	Year          int
	URL           string
	AuthorDetails map[string]string
}

// Client is a rate-limited client for metadata lookups. The limiter is
// the shared "last call time" state: every outbound request waits on it,
// so the inter-call floor holds across DOI and search calls alike.
type Client struct {
	httpClient  *http.Client
	limiter     *rate.Limiter
	apiKey      string
	cseID       string
	userAgent   string
	maxAttempts int
}

// Option configures a Client.
type Option func(*Client)

// WithCredentials sets the Google CSE API key and engine id.
func WithCredentials(apiKey, cseID string) Option {
	return func(c *Client) {
		c.apiKey = apiKey
		c.cseID = cseID
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithMinInterval sets the hard floor between external calls.
func WithMinInterval(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.limiter = rate.NewLimiter(rate.Every(d), 1)
		}
	}
}

// WithMaxAttempts sets the retry budget for transient failures.
func WithMaxAttempts(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxAttempts = n
		}
	}
}

// WithUserAgent sets the User-Agent header sent on every request.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// NewClient creates a lookup client with the given options.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient:  &http.Client{Timeout: DefaultTimeout},
		limiter:     rate.NewLimiter(rate.Every(DefaultMinInterval), 1),
		userAgent:   "academic-research-utilities/1.0",
		maxAttempts: DefaultMaxAttempts,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// HasCredentials reports whether web search is configured.
func (c *Client) HasCredentials() bool {
	return c.apiKey != "" && c.cseID != ""
}

// get performs one rate-limited GET with retry on transient failures.
// The response body is returned fully read.
func (c *Client) get(ctx context.Context, reqURL string, header http.Header) ([]byte, error) {
	var lastErr error

	for attempt := 0; attempt < c.maxAttempts; attempt++ {
		if attempt > 0 {
			backoff := RetryBaseDelay << (attempt - 1)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		// The limiter wait is the hard inter-call floor; it applies to
		// retries as well as fresh calls.
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}

		body, err := c.doOnce(ctx, reqURL, header)
		if err == nil {
			return body, nil
		}
		if !IsTransient(err) {
			return nil, err
		}
		lastErr = err
	}

	return nil, fmt.Errorf("giving up after %d attempts: %w", c.maxAttempts, lastErr)
}

// doOnce performs a single HTTP GET and classifies the outcome.
func (c *Client) doOnce(ctx context.Context, reqURL string, header http.Header) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetworkError, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		io.Copy(io.Discard, resp.Body)
		return nil, ErrNotFound
	case resp.StatusCode == http.StatusTooManyRequests:
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("%w: status %d", ErrRateLimited, resp.StatusCode)
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("%w: status %d", ErrAuthError, resp.StatusCode)
	case resp.StatusCode >= 400:
		io.Copy(io.Discard, resp.Body)
		return nil, &APIError{Service: serviceFor(reqURL), StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %v", ErrNetworkError, err)
	}
	return body, nil
}

func serviceFor(reqURL string) string {
	if strings.HasPrefix(reqURL, CSEBaseURL) {
		return "cse"
	}
	return "doi"
}

// cslItem is the subset of a CSL JSON payload we consume. Every field is
// optional; anything missing maps to an absent Partial field.
type cslItem struct {
	Title    string `json:"title"`
	Abstract string `json:"abstract"`
	URL      string `json:"URL"`
	Author   []struct {
		Given       string `json:"given"`
		Family      string `json:"family"`
		Literal     string `json:"literal"`
		Affiliation []struct {
			Name string `json:"name"`
		} `json:"affiliation"`
	} `json:"author"`
	ContainerTitle string `json:"container-title"`
	Issued         struct {
		DateParts [][]int `json:"date-parts"`
	} `json:"issued"`
}

// ResolveDOI resolves a DOI via doi.org content negotiation and returns
// the metadata the registrar holds for it. Returns ErrNotFound when the
// DOI does not resolve.
func (c *Client) ResolveDOI(ctx context.Context, doi string) (*Partial, error) {
	if doi == "" {
		return nil, ErrNotFound
	}

	header := http.Header{}
	header.Set("Accept", "application/vnd.citationstyles.csl+json")

	body, err := c.get(ctx, DOIBaseURL+url.PathEscape(doi), header)
	if err != nil {
		return nil, err
	}

	var item cslItem
	if err := json.Unmarshal(body, &item); err != nil {
		return nil, fmt.Errorf("%w: parsing CSL JSON: %v", ErrInvalidResponse, err)
	}

	p := &Partial{
		Title:    strings.TrimSpace(item.Title),
		Abstract: strings.TrimSpace(item.Abstract),
		Venue:    strings.TrimSpace(item.ContainerTitle),
		URL:      item.URL,
	}
	for _, a := range item.Author {
		name := a.Literal
		if name == "" {
			name = strings.TrimSpace(a.Given + " " + a.Family)
		}
		if name == "" {
			continue
		}
		p.Authors = append(p.Authors, name)
		if len(a.Affiliation) > 0 && a.Affiliation[0].Name != "" {
			if p.AuthorDetails == nil {
				p.AuthorDetails = make(map[string]string)
			}
			p.AuthorDetails[name] = a.Affiliation[0].Name
		}
	}
	if len(item.Issued.DateParts) > 0 && len(item.Issued.DateParts[0]) > 0 {
		p.Year = item.Issued.DateParts[0][0]
	}

	return p, nil
}

// cseResponse is the subset of a Custom Search JSON API payload we use.
type cseResponse struct {
	Items []struct {
		Title   string `json:"title"`
		Link    string `json:"link"`
		Snippet string `json:"snippet"`
	} `json:"items"`
}

// SearchWeb queries the configured Custom Search Engine and maps the top
// result into a Partial. Zero results is ErrNotFound.
func (c *Client) SearchWeb(ctx context.Context, query string) (*Partial, error) {
	if !c.HasCredentials() {
		return nil, fmt.Errorf("%w: missing API key or CSE id", ErrAuthError)
	}
	if strings.TrimSpace(query) == "" {
		return nil, ErrNotFound
	}

	params := url.Values{
		"key": {c.apiKey},
		"cx":  {c.cseID},
		"q":   {query},
		"num": {fmt.Sprintf("%d", DefaultSearchResults)},
	}

	body, err := c.get(ctx, CSEBaseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	var res cseResponse
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, fmt.Errorf("%w: parsing search results: %v", ErrInvalidResponse, err)
	}
	if len(res.Items) == 0 {
		return nil, ErrNotFound
	}

	top := res.Items[0]
	return &Partial{
		Title:    strings.TrimSpace(top.Title),
		Abstract: strings.TrimSpace(top.Snippet),
		URL:      top.Link,
	}, nil
}
