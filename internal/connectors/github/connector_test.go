package github

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/coursemate-cli/internal/core/domain"
)

const treeJSON = `{"sha":"t1","truncated":false,"tree":[
 {"path":"notes","type":"tree","sha":"d1"},
 {"path":"notes/week1.md","type":"blob","sha":"b1","size":5},
 {"path":"notes/diagram.png","type":"blob","sha":"b2","size":3},
 {"path":"notes/broken.txt","type":"blob","sha":"b3","size":3},
 {"path":".github/ci.yml","type":"blob","sha":"b4","size":3},
 {"path":"README.md","type":"blob","sha":"b5","size":6}
]}`

func blobJSON(content string) string {
	return fmt.Sprintf(`{"sha":"x","encoding":"base64","content":%q}`,
		base64.StdEncoding.EncodeToString([]byte(content)))
}

func newFakeGitHub(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/hwu/f21ca", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"name":"f21ca","default_branch":"trunk"}`)
	})
	mux.HandleFunc("/repos/hwu/f21ca/git/trees/", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1", r.URL.Query().Get("recursive"))
		fmt.Fprint(w, treeJSON)
	})
	mux.HandleFunc("/repos/hwu/f21ca/git/blobs/b1", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, blobJSON("# W1\n"))
	})
	mux.HandleFunc("/repos/hwu/f21ca/git/blobs/b3", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, `{"message":"boom"}`)
	})
	mux.HandleFunc("/repos/hwu/f21ca/git/blobs/b5", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, blobJSON("readme"))
	})
	mux.HandleFunc("/repos/hwu/missing", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"message":"Not Found"}`)
	})
	mux.HandleFunc("/repos/hwu/limited", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(HeaderRateLimit, "60")
		w.Header().Set(HeaderRateRemaining, "0")
		w.Header().Set(HeaderRateReset, strconv.FormatInt(time.Now().Add(time.Hour).Unix(), 10))
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"message":"API rate limit exceeded for 127.0.0.1."}`)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestConnector(t *testing.T, srv *httptest.Server, mimeTypes ...string) *Connector {
	t.Helper()
	client, err := NewClientWithHTTPClient(srv.Client(), NewRateLimiter(1000)).WithBaseURL(srv.URL + "/")
	require.NoError(t, err)
	return New(client, mimeTypes...)
}

func TestConnector_Type(t *testing.T) {
	assert.Equal(t, "github", New(nil).Type())
}

func TestConnector_Fetch(t *testing.T) {
	srv := newFakeGitHub(t)

	t.Run("path filter and default branch", func(t *testing.T) {
		c := newTestConnector(t, srv, "text/markdown", "text/plain")

		result, err := c.Fetch(context.Background(), "github:hwu/f21ca/notes")

		require.NoError(t, err)
		require.Len(t, result.Documents, 1)
		doc := result.Documents[0]
		assert.Equal(t, "github://hwu/f21ca/blob/trunk/notes/week1.md", doc.URI)
		assert.Equal(t, "text/markdown", doc.MIMEType)
		assert.Equal(t, "# W1\n", string(doc.Content))
		assert.Equal(t, "https://github.com/hwu/f21ca/blob/trunk/notes/week1.md", doc.Metadata["html_url"])
		assert.Equal(t, "week1.md", doc.Metadata["filename"])

		require.Len(t, result.Failures, 1)
		assert.Contains(t, result.Failures[0].Source, "broken.txt")
	})

	t.Run("explicit ref and whole repo", func(t *testing.T) {
		c := newTestConnector(t, srv, "text/markdown")

		result, err := c.Fetch(context.Background(), "github:hwu/f21ca@v1")

		require.NoError(t, err)
		var uris []string
		for _, d := range result.Documents {
			uris = append(uris, d.URI)
		}
		assert.Equal(t, []string{
			"github://hwu/f21ca/blob/v1/notes/week1.md",
			"github://hwu/f21ca/blob/v1/README.md",
		}, uris)
	})

	t.Run("missing path", func(t *testing.T) {
		c := newTestConnector(t, srv)

		_, err := c.Fetch(context.Background(), "github:hwu/f21ca/slides")
		assert.Error(t, err)
	})

	t.Run("missing repo", func(t *testing.T) {
		c := newTestConnector(t, srv)

		_, err := c.Fetch(context.Background(), "github:hwu/missing")
		assert.ErrorIs(t, err, ErrRepoNotFound)
	})

	t.Run("rate limited", func(t *testing.T) {
		c := newTestConnector(t, srv)

		_, err := c.Fetch(context.Background(), "github:hwu/limited")
		assert.True(t, IsRateLimited(err))
		assert.ErrorIs(t, err, domain.ErrRateLimited)
	})

	t.Run("invalid source", func(t *testing.T) {
		c := newTestConnector(t, srv)

		_, err := c.Fetch(context.Background(), "github:nope")
		assert.ErrorIs(t, err, ErrInvalidSource)
	})
}

func TestRateLimiter_UpdateFromResponse(t *testing.T) {
	r := NewRateLimiter(1000)
	assert.Equal(t, AnonymousRateLimit, r.Limit())

	reset := time.Now().Add(time.Minute).Truncate(time.Second)
	resp := &http.Response{Header: http.Header{}}
	resp.Header.Set(HeaderRateLimit, "5000")
	resp.Header.Set(HeaderRateRemaining, "4999")
	resp.Header.Set(HeaderRateReset, strconv.FormatInt(reset.Unix(), 10))
	r.UpdateFromResponse(resp)

	assert.Equal(t, 5000, r.Limit())
	assert.Equal(t, 4999, r.Remaining())
	assert.True(t, reset.Equal(r.ResetTime()))
	require.NoError(t, r.Wait(context.Background()))
}

func TestRateLimiter_WaitHonoursContext(t *testing.T) {
	r := NewRateLimiter(1000)
	resp := &http.Response{Header: http.Header{}}
	resp.Header.Set(HeaderRateLimit, "60")
	resp.Header.Set(HeaderRateRemaining, "0")
	resp.Header.Set(HeaderRateReset, strconv.FormatInt(time.Now().Add(time.Hour).Unix(), 10))
	r.UpdateFromResponse(resp)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, r.Wait(ctx), context.DeadlineExceeded)
}

func TestRateLimiter_MalformedHeadersKeepPreviousValues(t *testing.T) {
	r := NewRateLimiter(1000)
	resp := &http.Response{Header: http.Header{}}
	resp.Header.Set(HeaderRateLimit, "5000")
	resp.Header.Set(HeaderRateRemaining, "42")
	r.UpdateFromResponse(resp)

	resp.Header.Set(HeaderRateLimit, "lots")
	resp.Header.Del(HeaderRateRemaining)
	r.UpdateFromResponse(resp)
	r.UpdateFromResponse(nil)

	assert.Equal(t, 5000, r.Limit())
	assert.Equal(t, 42, r.Remaining())
	assert.True(t, r.ResetTime().IsZero())
}
