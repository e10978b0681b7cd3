// Package mockserver provides a small gorilla/mux-routed HTTP server for
// exercising the parser/runner/transport stack end to end in tests, without
// reaching the network. It is grounded on the teacher's mock.Serve/mock.Mock
// (mock/mock.go): a set of declarative routes, one gorilla/mux router, and a
// recording of every request received for assertions — simplified down to
// what a unit test needs (no variable extraction, no checks, synchronous
// httptest.Server instead of a free-standing listener-per-port pool).
package mockserver

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync"

	"github.com/gorilla/mux"
)

// Route describes one mocked endpoint (spec.md has no notion of a mock
// server itself; this is purely test scaffolding for the engine's own
// tests).
type Route struct {
	Method  string // defaults to GET
	Path    string // gorilla/mux path template, e.g. "/users/{id}"
	Status  int    // defaults to 200
	Header  http.Header
	Body    string
	Handler http.HandlerFunc // overrides Status/Header/Body when set
}

// Request is a recorded inbound request, captured for test assertions.
type Request struct {
	Method string
	Path   string
	Header http.Header
	Body   string
	Vars   map[string]string // gorilla/mux path variables
}

// Server wraps an httptest.Server with a gorilla/mux router and a log of
// every request it has received.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	requests []Request
}

// New starts a Server handling the given routes. Unmatched requests get a
// 404 from gorilla/mux's default NotFoundHandler.
func New(routes ...Route) *Server {
	s := &Server{}
	r := mux.NewRouter()

	for _, route := range routes {
		route := route
		if route.Method == "" {
			route.Method = http.MethodGet
		}
		if route.Status == 0 {
			route.Status = http.StatusOK
		}
		r.HandleFunc(route.Path, s.wrap(route)).Methods(route.Method)
	}

	s.Server = httptest.NewServer(r)
	return s
}

func (s *Server) wrap(route Route) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)

		s.mu.Lock()
		s.requests = append(s.requests, Request{
			Method: r.Method,
			Path:   r.URL.Path,
			Header: r.Header.Clone(),
			Body:   string(body),
			Vars:   mux.Vars(r),
		})
		s.mu.Unlock()

		if route.Handler != nil {
			route.Handler(w, r)
			return
		}

		for key, vals := range route.Header {
			for _, v := range vals {
				w.Header().Add(key, v)
			}
		}
		w.WriteHeader(route.Status)
		io.WriteString(w, route.Body)
	}
}

// Requests returns every request received so far, in arrival order.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Request, len(s.requests))
	copy(out, s.requests)
	return out
}

// LastRequest returns the most recently received request, or the zero
// Request if none arrived yet.
func (s *Server) LastRequest() Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.requests) == 0 {
		return Request{}
	}
	return s.requests[len(s.requests)-1]
}
