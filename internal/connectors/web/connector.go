// Package web fetches single course pages over HTTP.
package web

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/html/charset"

	"github.com/custodia-labs/coursemate-cli/internal/core/domain"
	"github.com/custodia-labs/coursemate-cli/internal/core/ports/driven"
)

// Ensure Connector implements the interface.
var _ driven.Connector = (*Connector)(nil)

const (
	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultUserAgent looks like a desktop browser; some course sites
	// reject unknown clients.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
		"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	// MaxBodySize caps the bytes read from one response.
	MaxBodySize = 20 << 20
)

// Config holds web connector settings.
type Config struct {
	Timeout   time.Duration
	UserAgent string
}

// Connector fetches a URL and returns its body as one raw document.
type Connector struct {
	client    *http.Client
	userAgent string
}

// New creates a web connector.
func New(cfg Config) *Connector {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	return &Connector{
		client:    &http.Client{Timeout: cfg.Timeout},
		userAgent: cfg.UserAgent,
	}
}

// Type returns the connector type identifier.
func (c *Connector) Type() string {
	return "web"
}

// Fetch downloads source. Text responses are transcoded to UTF-8 using
// the declared or sniffed charset, so normalisers only see UTF-8.
func (c *Connector) Fetch(ctx context.Context, source string) (*driven.FetchResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/pdf;q=0.9,*/*;q=0.8")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", source, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		if resp.StatusCode == http.StatusTooManyRequests {
			return nil, fmt.Errorf("fetch %s: %w", source, domain.ErrRateLimited)
		}
		return nil, fmt.Errorf("fetch %s: status %d", source, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodySize))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(body)
	}
	mimeType := baseType(contentType)

	if isText(mimeType) {
		body, err = toUTF8(body, contentType)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", source, err)
		}
	}

	finalURL := source
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}

	doc := domain.RawDocument{
		URI:      finalURL,
		MIMEType: mimeType,
		Content:  body,
		Metadata: domain.Metadata{
			domain.KeySourceURL: finalURL,
			domain.KeyMIMEType:  mimeType,
			"status":            resp.StatusCode,
		},
	}
	return &driven.FetchResult{Documents: []domain.RawDocument{doc}}, nil
}

// toUTF8 transcodes body using the charset in contentType, a <meta>
// declaration, or content sniffing, in that order.
func toUTF8(body []byte, contentType string) ([]byte, error) {
	r, err := charset.NewReader(bytes.NewReader(body), contentType)
	if err != nil {
		return nil, err
	}
	return io.ReadAll(r)
}

func isText(mimeType string) bool {
	return strings.HasPrefix(mimeType, "text/") || mimeType == "application/xhtml+xml"
}

func baseType(contentType string) string {
	if mt, _, err := mime.ParseMediaType(contentType); err == nil {
		return mt
	}
	base, _, _ := strings.Cut(contentType, ";")
	return strings.ToLower(strings.TrimSpace(base))
}
