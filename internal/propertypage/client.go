// Package propertypage fetches a listing's public detail page and classifies
// the property from its text. It is the last stage of lead classification.
package propertypage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/net/html"

	"github.com/wolfman30/property-lead-bridge/internal/leads"
	"github.com/wolfman30/property-lead-bridge/pkg/logging"
)

var pageTracer = otel.Tracer("bridge.internal.propertypage")

const (
	// DefaultUserAgent is sent because listing sites refuse bare clients.
	DefaultUserAgent = "Mozilla/5.0"

	defaultTimeout  = 10 * time.Second
	maxPageBytes    = 5 << 20
	strippedElement = "script, style, noscript, template"
)

var (
	// ErrUnexpectedStatus is returned for any non-200 page response.
	ErrUnexpectedStatus = errors.New("propertypage: unexpected status")
	// ErrUnsupportedURL is returned for anything but absolute http(s) URLs.
	ErrUnsupportedURL = errors.New("propertypage: unsupported url")
)

// Client fetches and classifies property pages.
type Client struct {
	httpClient *http.Client
	userAgent  string
	cache      Cache
	logger     *logging.Logger
}

// ClientOption is a functional option for configuring the Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithTimeout sets the timeout of the default HTTP client.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithCache stores classifications so repeat inquiries skip the fetch.
func WithCache(cache Cache) ClientOption {
	return func(c *Client) {
		c.cache = cache
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *logging.Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient creates a property page client. Redirects are followed by the
// default http.Client policy.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: defaultTimeout},
		userAgent:  DefaultUserAgent,
		logger:     logging.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Classify returns the category suggested by the page text, or an empty
// category when the page carries no keyword. Only non-empty results are
// cached.
func (c *Client) Classify(ctx context.Context, pageURL string) (leads.Category, error) {
	ctx, span := pageTracer.Start(ctx, "propertypage.classify", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(attribute.String("page.url", pageURL))

	if c.cache != nil {
		category, ok, err := c.cache.Get(ctx, pageURL)
		if err != nil {
			c.logger.Warn("property page cache read failed", "error", err)
		} else if ok {
			span.SetAttributes(attribute.Bool("page.cached", true))
			return category, nil
		}
	}

	text, err := c.FetchText(ctx, pageURL)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch failed")
		return leads.CategoryNone, err
	}

	category := leads.ClassifyText(text)
	span.SetAttributes(attribute.String("page.category", string(category)))
	if category != leads.CategoryNone && c.cache != nil {
		if err := c.cache.Set(ctx, pageURL, category); err != nil {
			c.logger.Warn("property page cache write failed", "error", err)
		}
	}
	return category, nil
}

// FetchText downloads the page and returns its visible text with
// whitespace collapsed. Bodies beyond 5 MiB are truncated.
func (c *Client) FetchText(ctx context.Context, pageURL string) (string, error) {
	u, err := url.Parse(pageURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedURL, pageURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", fmt.Errorf("propertypage: create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("propertypage: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return "", fmt.Errorf("propertypage: parse html: %w", err)
	}
	doc.Find(strippedElement).Remove()

	c.logger.Debug("property page fetched", "url", pageURL, "final_url", resp.Request.URL.String())
	return visibleText(doc), nil
}

// visibleText joins text nodes with spaces so adjacent elements do not run
// together.
func visibleText(doc *goquery.Document) string {
	var b strings.Builder
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteByte(' ')
			return
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			collect(child)
		}
	}
	for _, n := range doc.Nodes {
		collect(n)
	}
	return strings.TrimSpace(leads.CollapseSpace(b.String()))
}
