// Package testutil hosts a fake study-planner backend for tests. It
// serves the same wire shapes the real backend produces, checks the
// bearer credential, and counts hits per endpoint so tests can assert
// what was (and was not) fetched.
package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

// Backend is an httptest-backed fake of the planner API.
type Backend struct {
	Server *httptest.Server

	mu sync.Mutex

	// Token is the bearer token the backend accepts. Requests carrying
	// anything else get a 401.
	Token string

	// Response payloads, in wire shape. A nil entry yields a 404.
	Semesters []map[string]any
	Subjects  map[string][]map[string]any // semester id → subjects
	Tasks     map[string][]map[string]any // subject id → tasks
	Estimates []map[string]any
	Plan      map[string]any

	// Fail maps an endpoint name to a status code the next requests
	// should return instead of data.
	Fail map[string]int

	hits map[string]int
}

// NewBackend starts a fake backend with the default fixture set.
func NewBackend(t *testing.T) *Backend {
	t.Helper()
	b := &Backend{
		Token: "test-token",
		Fail:  make(map[string]int),
		hits:  make(map[string]int),
	}
	b.loadFixtures()
	b.Server = httptest.NewServer(http.HandlerFunc(b.handle))
	t.Cleanup(b.Server.Close)
	return b
}

// URL returns the backend's base URL.
func (b *Backend) URL() string { return b.Server.URL }

// Hits returns how many requests an endpoint received. Endpoint names
// are "semesters", "subjects", "tasks", "refresh", "plan", "parsing",
// "login".
func (b *Backend) Hits(endpoint string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.hits[endpoint]
}

// SetFail makes an endpoint return the given status until cleared with
// status 0.
func (b *Backend) SetFail(endpoint string, status int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if status == 0 {
		delete(b.Fail, endpoint)
		return
	}
	b.Fail[endpoint] = status
}

func (b *Backend) handle(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	endpoint := classify(r)
	b.hits[endpoint]++

	if endpoint != "login" {
		if r.Header.Get("Authorization") != "Bearer "+b.Token {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
	}
	if status, ok := b.Fail[endpoint]; ok {
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(map[string]string{"message": "backend failure injected for test"})
		return
	}

	switch endpoint {
	case "semesters":
		writeJSON(w, b.Semesters)
	case "subjects":
		id := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/api/semesters/"), "/subjects")
		subjects, ok := b.Subjects[id]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		writeJSON(w, subjects)
	case "tasks":
		id := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/api/subjects/"), "/tasks")
		tasks, ok := b.Tasks[id]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		writeJSON(w, tasks)
	case "refresh":
		writeJSON(w, b.Estimates)
	case "plan":
		writeJSON(w, b.Plan)
	case "parsing":
		w.WriteHeader(http.StatusNoContent)
	case "login":
		var req map[string]string
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req["password"] != "secret" {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]string{"message": "Неверный email или пароль"})
			return
		}
		writeJSON(w, map[string]any{
			"id": 1, "email": req["email"], "role": "STUDENT", "token": b.Token,
		})
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func classify(r *http.Request) string {
	p := r.URL.Path
	switch {
	case p == "/api/semesters":
		return "semesters"
	case strings.HasPrefix(p, "/api/semesters/") && strings.HasSuffix(p, "/subjects"):
		return "subjects"
	case strings.HasPrefix(p, "/api/subjects/") && strings.HasSuffix(p, "/tasks"):
		return "tasks"
	case p == "/api/tasks/time-estimate/semester/refresh":
		return "refresh"
	case p == "/api/tasks/time-estimate/study-plan/semester":
		return "plan"
	case p == "/api/user/initiate-parsing":
		return "parsing"
	case p == "/api/auth/login":
		return "login"
	default:
		return "unknown"
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
