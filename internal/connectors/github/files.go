package github

import (
	"context"
	"encoding/base64"
	"fmt"
	"mime"
	"path"
	"strings"

	gh "github.com/google/go-github/v80/github"

	"github.com/custodia-labs/coursemate-cli/internal/core/domain"
)

// MaxFileSize skips blobs larger than 20MB.
const MaxFileSize = 20 << 20

// FetchFiles reads every file under src at ref. Files are filtered by
// accept on their MIME type; unreadable blobs become failures.
func FetchFiles(
	ctx context.Context, client *Client, src *Source, ref string, accept func(string) bool,
) ([]domain.RawDocument, []domain.SourceFailure, error) {
	tree, err := client.GetTree(ctx, src.Owner, src.Repo, ref)
	if err != nil {
		return nil, nil, err
	}

	var (
		docs     []domain.RawDocument
		failures []domain.SourceFailure
	)
	for _, entry := range tree.Entries {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		if entry.GetType() != "blob" {
			continue
		}

		filePath := entry.GetPath()
		if !src.Contains(filePath) || isHidden(filePath) {
			continue
		}
		mimeType := detectFileMIMEType(filePath)
		if accept != nil && !accept(mimeType) {
			continue
		}

		uri := buildFileURI(src.Owner, src.Repo, ref, filePath)
		if entry.GetSize() > MaxFileSize {
			failures = append(failures, domain.SourceFailure{
				Source: uri,
				Err:    fmt.Errorf("file exceeds %d bytes", MaxFileSize),
			})
			continue
		}

		content, err := fetchBlobContent(ctx, client, src.Owner, src.Repo, entry.GetSHA())
		if err != nil {
			failures = append(failures, domain.SourceFailure{Source: uri, Err: err})
			continue
		}

		docs = append(docs, domain.RawDocument{
			URI:      uri,
			MIMEType: mimeType,
			Content:  content,
			Metadata: domain.Metadata{
				domain.KeyMIMEType: mimeType,
				"filename":         path.Base(filePath),
				"owner":            src.Owner,
				"repo":             src.Repo,
				"ref":              ref,
				"path":             filePath,
				"sha":              entry.GetSHA(),
				"html_url":         WebURL(uri),
			},
		})
	}

	return docs, failures, nil
}

// fetchBlobContent fetches the content of a blob and decodes it.
func fetchBlobContent(ctx context.Context, client *Client, owner, repo, sha string) ([]byte, error) {
	blob, err := client.GetBlob(ctx, owner, repo, sha)
	if err != nil {
		return nil, err
	}

	if blob.GetEncoding() == "base64" {
		content := strings.ReplaceAll(blob.GetContent(), "\n", "")
		return base64.StdEncoding.DecodeString(content)
	}
	return []byte(blob.GetContent()), nil
}

// buildFileURI creates a URI for a file.
func buildFileURI(owner, repo, ref, filePath string) string {
	return fmt.Sprintf("github://%s/%s/blob/%s/%s", owner, repo, ref, filePath)
}

// extMIMETypes maps extensions Go's registry misses or reports inconsistently.
var extMIMETypes = map[string]string{
	".md": "text/markdown", ".markdown": "text/markdown",
	".txt": "text/plain", ".rst": "text/x-rst", ".csv": "text/csv",
	".html": "text/html", ".htm": "text/html",
	".pdf":  "application/pdf",
	".yaml": "text/yaml", ".yml": "text/yaml", ".toml": "text/toml",
}

// detectFileMIMEType determines the MIME type from file extension.
func detectFileMIMEType(filePath string) string {
	ext := strings.ToLower(path.Ext(filePath))
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

// isHidden reports whether any path element starts with a dot.
func isHidden(filePath string) bool {
	for _, part := range strings.Split(filePath, "/") {
		if strings.HasPrefix(part, ".") {
			return true
		}
	}
	return false
}

// resolveRef returns the source ref, or the repository's default branch.
func resolveRef(src *Source, repo *gh.Repository) string {
	if src.Ref != "" {
		return src.Ref
	}
	if b := repo.GetDefaultBranch(); b != "" {
		return b
	}
	return "main"
}
