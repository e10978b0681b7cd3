package mockserver

import (
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestServerRoutesByMethodAndPath(t *testing.T) {
	srv := New(
		Route{Method: http.MethodGet, Path: "/users/{id}", Status: 200, Body: "hello"},
		Route{Method: http.MethodPost, Path: "/users", Status: 201},
	)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/users/42")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, 200, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	require.Equal(t, "hello", string(body))

	req := srv.LastRequest()
	require.Equal(t, "42", req.Vars["id"])
}

func TestServerRecordsRequestBody(t *testing.T) {
	srv := New(Route{Method: http.MethodPost, Path: "/echo", Status: 204})
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/echo", "text/plain", strings.NewReader("payload"))
	require.NoError(t, err)
	resp.Body.Close()

	reqs := srv.Requests()
	require.Len(t, reqs, 1)
	require.Equal(t, "payload", reqs[0].Body)
}

func TestServerUnmatchedRouteIs404(t *testing.T) {
	srv := New(Route{Method: http.MethodGet, Path: "/known", Status: 200})
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/unknown")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, 404, resp.StatusCode)
}
