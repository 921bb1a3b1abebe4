// Package github reads course material committed to a GitHub repository.
//
// Sources take the form
//
//	github:owner/repo[/path][@ref]
//
// where path limits the fetch to a subdirectory or single file and ref
// names a branch, tag or commit (the default branch when omitted). Each
// matching file becomes a raw document with a github:// URI.
//
// # Authentication
//
// A personal access token is optional. Without one requests are
// anonymous and limited to 60 per hour, which is enough for small
// course repositories. The token comes from settings or the GITHUB_TOKEN
// environment variable.
//
// # Rate Limiting
//
// Requests are throttled with a token bucket from golang.org/x/time/rate.
// The limiter also tracks the X-RateLimit-* response headers and waits
// for the reset when the remaining quota falls under a buffer.
package github
