// Package testutil provides a mock Unsplash API server and record fixtures.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"time"
)

// MockResponse defines the behavior for a mock endpoint response.
type MockResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
	Delay      time.Duration
}

// MockUnsplash is a configurable mock Unsplash API server.
//
// Unconfigured paths get generated data: /photos returns a full page of
// photos with IDs "p<page>-<n>", /search/photos reports the configured
// search total (1234 unless SetSearchTotal is called) and /photos/{id}
// returns that photo.
type MockUnsplash struct {
	server   *httptest.Server
	mu       sync.RWMutex
	handlers map[string]func(w http.ResponseWriter, r *http.Request)

	searchTotal int

	// Tracking
	RequestCount      int
	ConditionalCount  int
	LastRequestHeader http.Header
	LastQuery         map[string]string
}

// NewMockUnsplash creates and starts a mock server.
func NewMockUnsplash() *MockUnsplash {
	mock := &MockUnsplash{
		handlers:    make(map[string]func(w http.ResponseWriter, r *http.Request)),
		searchTotal: 1234,
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query := make(map[string]string)
		for key := range r.URL.Query() {
			query[key] = r.URL.Query().Get(key)
		}

		mock.mu.Lock()
		mock.RequestCount++
		mock.LastRequestHeader = r.Header.Clone()
		mock.LastQuery = query
		if r.Header.Get("If-None-Match") != "" || r.Header.Get("If-Modified-Since") != "" {
			mock.ConditionalCount++
		}
		handler, exists := mock.handlers[r.URL.Path]
		mock.mu.Unlock()

		if exists {
			handler(w, r)
			return
		}
		mock.defaultHandler(w, r)
	}))

	return mock
}

// URL returns the mock server URL.
func (m *MockUnsplash) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockUnsplash) Close() {
	m.server.Close()
}

// Reset clears all tracking counters.
func (m *MockUnsplash) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RequestCount = 0
	m.ConditionalCount = 0
	m.LastRequestHeader = nil
	m.LastQuery = nil
}

// SetHandler sets a custom handler for a specific path.
func (m *MockUnsplash) SetHandler(path string, handler func(w http.ResponseWriter, r *http.Request)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// SetResponse configures a fixed response for a path.
func (m *MockUnsplash) SetResponse(path string, resp MockResponse) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		if resp.Delay > 0 {
			select {
			case <-time.After(resp.Delay):
			case <-r.Context().Done():
				return
			}
		}
		for key, value := range resp.Headers {
			w.Header().Set(key, value)
		}
		w.WriteHeader(resp.StatusCode)
		if resp.Body != "" {
			_, _ = w.Write([]byte(resp.Body))
		}
	})
}

// SetSearchTotal sets the total reported by the default search handler.
func (m *MockUnsplash) SetSearchTotal(total int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.searchTotal = total
}

// GetRequestCount returns the number of requests made to the server.
func (m *MockUnsplash) GetRequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.RequestCount
}

// GetConditionalCount returns the number of conditional requests.
func (m *MockUnsplash) GetConditionalCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.ConditionalCount
}

// GetLastRequestHeader returns the headers of the latest request.
func (m *MockUnsplash) GetLastRequestHeader() http.Header {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.LastRequestHeader.Clone()
}

// GetLastQuery returns the query parameters of the latest request.
func (m *MockUnsplash) GetLastQuery() map[string]string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]string, len(m.LastQuery))
	for k, v := range m.LastQuery {
		out[k] = v
	}
	return out
}

func (m *MockUnsplash) defaultHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("X-Ratelimit-Limit", "50")
	w.Header().Set("X-Ratelimit-Remaining", "49")
	w.Header().Set("Content-Type", "application/json")

	page := intParam(r, "page", 1)
	perPage := intParam(r, "per_page", 10)

	switch {
	case r.URL.Path == "/photos":
		_, _ = w.Write([]byte(PhotosJSON(PageIDs(page, perPage)...)))

	case r.URL.Path == "/search/photos":
		m.mu.RLock()
		total := m.searchTotal
		m.mu.RUnlock()
		ids := PageIDs(page, perPage)
		if total < len(ids) {
			ids = ids[:total]
		}
		_, _ = w.Write([]byte(SearchJSON(total, ids...)))

	case strings.HasPrefix(r.URL.Path, "/photos/"):
		_, _ = w.Write([]byte(PhotoJSON(strings.TrimPrefix(r.URL.Path, "/photos/"))))

	default:
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"errors":["Not found"]}`))
	}
}

func intParam(r *http.Request, key string, fallback int) int {
	if v, err := strconv.Atoi(r.URL.Query().Get(key)); err == nil && v > 0 {
		return v
	}
	return fallback
}

// PageIDs returns the IDs the default handler serves for a page.
func PageIDs(page, perPage int) []string {
	ids := make([]string, perPage)
	for i := range ids {
		ids[i] = fmt.Sprintf("p%d-%d", page, i)
	}
	return ids
}

type photoRecord struct {
	ID          string            `json:"id"`
	User        map[string]any    `json:"user"`
	CreatedAt   string            `json:"created_at"`
	Width       int               `json:"width"`
	Height      int               `json:"height"`
	Color       string            `json:"color"`
	URLs        map[string]string `json:"urls"`
	Description *string           `json:"description"`
}

func newPhotoRecord(id string) photoRecord {
	base := "https://images.unsplash.com/photo-" + id
	description := "Photo " + id
	return photoRecord{
		ID: id,
		User: map[string]any{
			"id":         "user-" + id,
			"username":   "author_" + id,
			"first_name": "Ansel",
			"last_name":  nil,
			"profile_image": map[string]string{
				"small":  "https://images.unsplash.com/profile-" + id + "?w=32",
				"medium": "https://images.unsplash.com/profile-" + id + "?w=64",
				"large":  "https://images.unsplash.com/profile-" + id + "?w=128",
			},
		},
		CreatedAt: "2024-01-15T10:30:00Z",
		Width:     4000,
		Height:    6000,
		Color:     "#0c2626",
		URLs: map[string]string{
			"raw":     base,
			"full":    base + "?q=85",
			"regular": base + "?w=1080",
			"small":   base + "?w=400",
			"thumb":   base + "?w=200",
		},
		Description: &description,
	}
}

// PhotoJSON returns a valid photo record.
func PhotoJSON(id string) string {
	data, _ := json.Marshal(newPhotoRecord(id))
	return string(data)
}

// PhotosJSON returns a JSON array of valid photo records.
func PhotosJSON(ids ...string) string {
	records := make([]photoRecord, 0, len(ids))
	for _, id := range ids {
		records = append(records, newPhotoRecord(id))
	}
	data, _ := json.Marshal(records)
	return string(data)
}

// SearchJSON returns a search response body.
func SearchJSON(total int, ids ...string) string {
	records := make([]photoRecord, 0, len(ids))
	for _, id := range ids {
		records = append(records, newPhotoRecord(id))
	}
	totalPages := 0
	if len(ids) > 0 {
		totalPages = (total + len(ids) - 1) / len(ids)
	}
	data, _ := json.Marshal(map[string]any{
		"total":       total,
		"total_pages": totalPages,
		"results":     records,
	})
	return string(data)
}

// NewHealthyResponse creates a 200 OK response with rate limit headers.
func NewHealthyResponse(data string) MockResponse {
	return MockResponse{
		StatusCode: http.StatusOK,
		Body:       data,
		Headers: map[string]string{
			"X-Ratelimit-Limit":     "50",
			"X-Ratelimit-Remaining": "49",
			"ETag":                  `"test-etag-123"`,
			"Cache-Control":         "max-age=300",
			"Content-Type":          "application/json",
		},
	}
}

// NewRateLimitResponse creates the 403 the API sends once the hourly quota
// is used up.
func NewRateLimitResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusForbidden,
		Body:       `Rate Limit Exceeded`,
		Headers: map[string]string{
			"X-Ratelimit-Limit":     "50",
			"X-Ratelimit-Remaining": "0",
		},
	}
}

// NewServerErrorResponse creates a 500 Internal Server Error response.
func NewServerErrorResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusInternalServerError,
		Body:       `{"errors": ["Internal server error"]}`,
		Headers: map[string]string{
			"Content-Type": "application/json",
		},
	}
}
