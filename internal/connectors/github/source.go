package github

import (
	"fmt"
	"strings"
)

// Prefix marks a source string as a GitHub repository.
const Prefix = "github:"

// Source identifies a repository, an optional path inside it and an
// optional ref.
type Source struct {
	Owner string
	Repo  string
	Path  string
	Ref   string
}

// IsSource reports whether s uses the github: prefix.
func IsSource(s string) bool {
	return strings.HasPrefix(s, Prefix)
}

// ParseSource parses "github:owner/repo[/path][@ref]".
func ParseSource(s string) (*Source, error) {
	if !IsSource(s) {
		return nil, fmt.Errorf("%w: %q has no %s prefix", ErrInvalidSource, s, Prefix)
	}
	rest := strings.TrimPrefix(strings.TrimPrefix(s, Prefix), "//")

	var ref string
	if at := strings.LastIndex(rest, "@"); at >= 0 {
		ref = rest[at+1:]
		rest = rest[:at]
		if ref == "" {
			return nil, fmt.Errorf("%w: %q has an empty ref", ErrInvalidSource, s)
		}
	}

	parts := strings.SplitN(strings.Trim(rest, "/"), "/", 3)
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return nil, fmt.Errorf("%w: %q needs owner/repo", ErrInvalidSource, s)
	}

	src := &Source{Owner: parts[0], Repo: parts[1], Ref: ref}
	if len(parts) == 3 {
		src.Path = strings.Trim(parts[2], "/")
	}
	return src, nil
}

// Contains reports whether a repository path is inside the source path.
func (s *Source) Contains(path string) bool {
	return s.Path == "" || path == s.Path || strings.HasPrefix(path, s.Path+"/")
}

// String returns the canonical source string.
func (s *Source) String() string {
	out := Prefix + s.Owner + "/" + s.Repo
	if s.Path != "" {
		out += "/" + s.Path
	}
	if s.Ref != "" {
		out += "@" + s.Ref
	}
	return out
}
