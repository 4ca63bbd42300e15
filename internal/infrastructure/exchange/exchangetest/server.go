// Package exchangetest serves canned venue responses for package tests.
package exchangetest

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// Response canned reply; zero Status means 200
type Response struct {
	Status int
	Body   string
}

// Server routes by request URI first, then by path
type Server struct {
	*httptest.Server

	mu   sync.Mutex
	hits map[string]int
}

func NewServer(t testing.TB, routes map[string]Response) *Server {
	t.Helper()
	s := &Server{hits: make(map[string]int)}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.hits[r.URL.Path]++
		s.mu.Unlock()

		resp, ok := routes[r.URL.RequestURI()]
		if !ok {
			resp, ok = routes[r.URL.Path]
		}
		if !ok {
			http.NotFound(w, r)
			return
		}
		if resp.Status != 0 {
			w.WriteHeader(resp.Status)
		}
		_, _ = w.Write([]byte(resp.Body))
	}))
	t.Cleanup(s.Close)
	return s
}

// Hits number of requests seen for path
func (s *Server) Hits(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[path]
}

// OK shorthand for a 200 response
func OK(body string) Response { return Response{Body: body} }
