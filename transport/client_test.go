package transport

import (
	"compress/gzip"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vdobler/rq/httpspec"
)

func TestHTTPClientExecuteBasicGet(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Custom", "yes")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("hello"))
	}))
	defer ts.Close()

	client := NewHTTPClient()
	out, err := client.Execute(context.Background(), httpspec.RequestSpec{Method: "GET", URL: ts.URL}, CallOptions{FollowLocation: true})
	require.NoError(t, err)
	assert.Equal(t, 200, out.Response.Status)
	assert.Equal(t, "hello", string(out.Response.Body))
}

func TestHTTPClientExecuteDecodesGzip(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Encoding", "gzip")
		gz := gzip.NewWriter(w)
		gz.Write([]byte("compressed body"))
		gz.Close()
	}))
	defer ts.Close()

	client := NewHTTPClient()
	out, err := client.Execute(context.Background(), httpspec.RequestSpec{Method: "GET", URL: ts.URL}, CallOptions{})
	require.NoError(t, err)
	assert.Equal(t, "compressed body", string(out.Response.Body))
}

func TestHTTPClientExecuteUnsupportedEncodingFails(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Encoding", "br")
		w.Write([]byte("x"))
	}))
	defer ts.Close()

	client := NewHTTPClient()
	_, err := client.Execute(context.Background(), httpspec.RequestSpec{Method: "GET", URL: ts.URL}, CallOptions{})
	require.Error(t, err)
	terr, ok := err.(*TransportError)
	require.True(t, ok)
	assert.Equal(t, ErrUnsupportedContentEncoding, terr.Kind)
	assert.False(t, terr.Retryable())
}

func TestHTTPClientExecuteMaxFileSizeExceeded(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("0123456789"))
	}))
	defer ts.Close()

	client := NewHTTPClient()
	_, err := client.Execute(context.Background(), httpspec.RequestSpec{Method: "GET", URL: ts.URL}, CallOptions{MaxFileSize: 4})
	require.Error(t, err)
	terr, ok := err.(*TransportError)
	require.True(t, ok)
	assert.Equal(t, ErrAllowedResponseSizeExceeded, terr.Kind)
}

func TestHTTPClientExecuteFollowsRedirect(t *testing.T) {
	var final *httptest.Server
	final = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("landed"))
	}))
	defer final.Close()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, final.URL, http.StatusFound)
	}))
	defer ts.Close()

	client := NewHTTPClient()
	out, err := client.Execute(context.Background(), httpspec.RequestSpec{Method: "GET", URL: ts.URL}, CallOptions{FollowLocation: true, MaxRedirects: 5})
	require.NoError(t, err)
	assert.Equal(t, "landed", string(out.Response.Body))
	assert.Equal(t, 1, out.Response.RedirectCount)
}
