package github

import "strings"

// WebURL converts a github:// URI to its github.com page.
// github://owner/repo/blob/ref/path -> https://github.com/owner/repo/blob/ref/path
func WebURL(uri string) string {
	if strings.HasPrefix(uri, "github://") {
		return "https://github.com/" + strings.TrimPrefix(uri, "github://")
	}
	return ""
}
