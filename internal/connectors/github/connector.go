package github

import (
	"context"
	"fmt"

	"github.com/custodia-labs/coursemate-cli/internal/core/ports/driven"
	"github.com/custodia-labs/coursemate-cli/internal/logger"
)

// Ensure Connector implements the interface.
var _ driven.Connector = (*Connector)(nil)

// Connector fetches course files from GitHub repositories.
type Connector struct {
	client *Client
	accept map[string]bool
}

// New creates a GitHub connector. With mimeTypes set, only files of those
// types are downloaded.
func New(client *Client, mimeTypes ...string) *Connector {
	c := &Connector{client: client}
	if len(mimeTypes) > 0 {
		c.accept = make(map[string]bool, len(mimeTypes))
		for _, t := range mimeTypes {
			c.accept[t] = true
		}
	}
	return c
}

// Type returns the connector type identifier.
func (c *Connector) Type() string {
	return "github"
}

// Fetch downloads the files named by a github: source.
func (c *Connector) Fetch(ctx context.Context, source string) (*driven.FetchResult, error) {
	src, err := ParseSource(source)
	if err != nil {
		return nil, err
	}

	repo, err := c.client.GetRepository(ctx, src.Owner, src.Repo)
	if err != nil {
		return nil, err
	}
	ref := resolveRef(src, repo)
	logger.Debug("Fetching %s at %s", src, ref)

	docs, failures, err := FetchFiles(ctx, c.client, src, ref, c.accepts)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", src, err)
	}
	if len(docs) == 0 && len(failures) == 0 && src.Path != "" {
		return nil, fmt.Errorf("%s: no files under %q", src, src.Path)
	}

	return &driven.FetchResult{Documents: docs, Failures: failures}, nil
}

func (c *Connector) accepts(mimeType string) bool {
	return c.accept == nil || c.accept[mimeType]
}
