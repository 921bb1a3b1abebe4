// Package filesystem reads course material from local files and
// directories, and watches them for changes.
package filesystem

import (
	"context"
	"fmt"
	"io/fs"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/coursemate-cli/internal/core/domain"
	"github.com/custodia-labs/coursemate-cli/internal/core/ports/driven"
)

// Ensure Connector implements the interface.
var _ driven.Connector = (*Connector)(nil)

// DefaultMaxFileSize skips files larger than 50MB.
const DefaultMaxFileSize = 50 << 20

// Connector reads a single file or walks a directory tree.
type Connector struct {
	accept      map[string]bool
	maxFileSize int64
}

// New creates a filesystem connector that only reads files whose MIME
// type is in mimeTypes. With no MIME types every regular file is read.
func New(mimeTypes ...string) *Connector {
	c := &Connector{maxFileSize: DefaultMaxFileSize}
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
	return "filesystem"
}

// Fetch reads source as a file, or walks it when it is a directory.
// Hidden files and directories are skipped during a walk. Files that
// cannot be read are reported as failures without aborting the walk.
func (c *Connector) Fetch(ctx context.Context, source string) (*driven.FetchResult, error) {
	path, err := filepath.Abs(LocalPath(source))
	if err != nil {
		return nil, fmt.Errorf("resolve path: %w", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat source: %w", err)
	}

	result := &driven.FetchResult{}
	if !info.IsDir() {
		doc, err := c.read(path, info)
		if err != nil {
			return nil, err
		}
		result.Documents = append(result.Documents, *doc)
		return result, nil
	}

	err = filepath.WalkDir(path, func(p string, d fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if walkErr != nil {
			result.Failures = append(result.Failures, domain.SourceFailure{Source: p, Err: walkErr})
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if p != path && isHidden(d.Name()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		if !c.accepts(detectMIMEType(p)) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			result.Failures = append(result.Failures, domain.SourceFailure{Source: p, Err: err})
			return nil
		}
		doc, err := c.read(p, info)
		if err != nil {
			result.Failures = append(result.Failures, domain.SourceFailure{Source: p, Err: err})
			return nil
		}
		result.Documents = append(result.Documents, *doc)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (c *Connector) accepts(mimeType string) bool {
	return c.accept == nil || c.accept[mimeType]
}

func (c *Connector) read(path string, info fs.FileInfo) (*domain.RawDocument, error) {
	if c.maxFileSize > 0 && info.Size() > c.maxFileSize {
		return nil, fmt.Errorf("%s: file exceeds %d bytes", path, c.maxFileSize)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	mimeType := detectMIMEType(path)
	return &domain.RawDocument{
		URI:      path,
		MIMEType: mimeType,
		Content:  content,
		Metadata: domain.Metadata{
			domain.KeySourcePath: path,
			domain.KeyMIMEType:   mimeType,
			"filename":           filepath.Base(path),
			"size":               info.Size(),
			"modified":           info.ModTime().UTC(),
		},
	}, nil
}

// extMIMETypes covers extensions that Go's mime registry misses or
// maps differently across platforms.
var extMIMETypes = map[string]string{
	".md": "text/markdown", ".markdown": "text/markdown",
	".txt": "text/plain", ".text": "text/plain",
	".rst": "text/x-rst", ".csv": "text/csv", ".rtf": "text/rtf",
	".html": "text/html", ".htm": "text/html",
	".pdf":  "application/pdf",
	".yaml": "text/yaml", ".yml": "text/yaml", ".toml": "text/toml",
}

// detectMIMEType determines the MIME type from the file extension.
func detectMIMEType(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		return "text/plain"
	}
	if t, ok := extMIMETypes[ext]; ok {
		return t
	}

	mimeType := mime.TypeByExtension(ext)
	if mimeType == "" {
		return "application/octet-stream"
	}
	if idx := strings.Index(mimeType, ";"); idx != -1 {
		mimeType = strings.TrimSpace(mimeType[:idx])
	}
	return mimeType
}

// isHidden reports whether any element of path starts with a dot.
// "." and ".." are not hidden.
func isHidden(path string) bool {
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if len(part) > 1 && part[0] == '.' && part != ".." {
			return true
		}
	}
	return false
}
