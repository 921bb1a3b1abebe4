package connectors

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/coursemate-cli/internal/connectors/github"
	"github.com/custodia-labs/coursemate-cli/internal/core/domain"
	"github.com/custodia-labs/coursemate-cli/internal/core/ports/driven"
)

// Ensure Router implements the interface.
var _ driven.ConnectorResolver = (*Router)(nil)

// Router picks a connector from the shape of the source string:
// http(s) URLs go to the web connector, github: sources to GitHub and
// everything else to the filesystem.
type Router struct {
	filesystem driven.Connector
	web        driven.Connector
	github     driven.Connector
}

// NewRouter creates a router. Any connector may be nil, in which case
// sources of that kind are rejected.
func NewRouter(fs, web, gh driven.Connector) *Router {
	return &Router{filesystem: fs, web: web, github: gh}
}

// Resolve returns the connector responsible for source.
func (r *Router) Resolve(source string) (driven.Connector, error) {
	var (
		c    driven.Connector
		kind string
	)
	switch {
	case strings.TrimSpace(source) == "":
		return nil, fmt.Errorf("%w: empty source", domain.ErrInvalidInput)
	case isWeb(source):
		c, kind = r.web, "web"
	case github.IsSource(source):
		c, kind = r.github, "github"
	default:
		c, kind = r.filesystem, "filesystem"
	}
	if c == nil {
		return nil, fmt.Errorf("%w: no %s connector for %q", domain.ErrUnsupportedType, kind, source)
	}
	return c, nil
}

// IsLocal reports whether source is routed to the filesystem connector.
func IsLocal(source string) bool {
	if strings.TrimSpace(source) == "" {
		return false
	}
	return !isWeb(source) && !github.IsSource(source)
}

func isWeb(source string) bool {
	return hasPrefixFold(source, "http://") || hasPrefixFold(source, "https://")
}

func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}
