package scrape

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hlsget/hlsget/internal/domain"
)

const pageHTML = `<!DOCTYPE html>
<html>
<head><title>Fallback Title</title></head>
<body>
  <div class="panel"><h3 class="panel-title">  Episode 12  </h3></div>
  <video>
    <source src="/hls/ep12/index.m3u8" type="application/x-mpegURL">
    <source src="https://cdn.example.com/hls/ep12/alt.m3u8" type="application/vnd.apple.mpegurl">
    <source src="/mp4/ep12.mp4" type="video/mp4">
    <source type="application/x-mpegurl">
  </video>
</body>
</html>`

func servePage(t *testing.T, html string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(html))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestResolveExtractsPlaylists(t *testing.T) {
	srv := servePage(t, pageHTML)
	s := New(5*time.Second, nil)

	urls, title, err := s.Resolve(context.Background(), srv.URL+"/watch/12")
	require.NoError(t, err)

	assert.Equal(t, "Episode 12", title)
	require.Len(t, urls, 2, "non-HLS and src-less sources are skipped")
	assert.Equal(t, srv.URL+"/hls/ep12/index.m3u8", urls[0], "relative src resolves against the page URL")
	assert.Equal(t, "https://cdn.example.com/hls/ep12/alt.m3u8", urls[1])
}

func TestResolveTitleFallsBackToDocumentTitle(t *testing.T) {
	html := `<html><head><title> Plain Title </title></head><body>
	  <source src="a.m3u8" type="application/x-mpegurl"></body></html>`
	srv := servePage(t, html)
	s := New(5*time.Second, nil)

	_, title, err := s.Resolve(context.Background(), srv.URL+"/watch/1")
	require.NoError(t, err)
	assert.Equal(t, "Plain Title", title)
}

func TestResolveNoPlaylistsOnPage(t *testing.T) {
	html := `<html><body><video><source src="/a.mp4" type="video/mp4"></video></body></html>`
	srv := servePage(t, html)
	s := New(5*time.Second, nil)

	_, _, err := s.Resolve(context.Background(), srv.URL+"/watch/1")
	require.Error(t, err)
	assert.Equal(t, domain.CodeInvalidInput, domain.CodeOf(err))
	assert.Contains(t, err.Error(), "no valid M3U8 URL found")
}

func TestResolveInvalidPageURL(t *testing.T) {
	s := New(5*time.Second, nil)

	for _, raw := range []string{"", "not a url", "/relative/page"} {
		_, _, err := s.Resolve(context.Background(), raw)
		require.Error(t, err, raw)
		assert.Equal(t, domain.CodeInvalidInput, domain.CodeOf(err), raw)
	}
}

func TestResolveHostAllowList(t *testing.T) {
	srv := servePage(t, pageHTML)
	s := New(5*time.Second, []string{"allowed.example.com"})

	_, _, err := s.Resolve(context.Background(), srv.URL+"/watch/12")
	require.Error(t, err)
	assert.Equal(t, domain.CodeInvalidInput, domain.CodeOf(err))
	assert.Contains(t, err.Error(), "not allowed")
}

func TestResolvePageFetchError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()
	s := New(5*time.Second, nil)

	_, _, err := s.Resolve(context.Background(), srv.URL+"/watch/12")
	require.Error(t, err)
	assert.Equal(t, domain.CodeTransport, domain.CodeOf(err))
}
