package mock

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
)

// ApiMock is a recording HTTP server standing in for a third-party API. Responses are
// configured per method and path, and every received request can be inspected.
type ApiMock struct {
	mu       sync.Mutex
	server   *httptest.Server
	routes   map[string]*route
	fallback int
	mockUrl  string
}

type route struct {
	// responses by request index; index -1 answers any request without its own entry
	responses map[int]cannedResponse
	requests  []receivedRequest
}

type cannedResponse struct {
	status int
	body   map[string]any
}

type receivedRequest struct {
	body    map[string]any
	headers map[string]string
	queries map[string]string
}

func NewApiServer() *ApiMock {
	return &ApiMock{
		routes:   map[string]*route{},
		fallback: http.StatusOK,
	}
}

func (a *ApiMock) Start() {
	a.server = httptest.NewServer(http.HandlerFunc(a.handle))
	a.mockUrl = a.server.URL
}

func (a *ApiMock) Close() {
	if a.server != nil {
		a.server.Close()
	}
}

func (a *ApiMock) GetUrl() string {
	return a.mockUrl
}

func (a *ApiMock) handle(w http.ResponseWriter, r *http.Request) {
	raw, _ := io.ReadAll(r.Body)
	request := receivedRequest{
		body:    map[string]any{},
		headers: map[string]string{},
		queries: map[string]string{},
	}
	_ = json.Unmarshal(raw, &request.body)
	for key, value := range r.Header {
		request.headers[key] = value[0]
	}
	for key, value := range r.URL.Query() {
		request.queries[key] = value[0]
	}

	a.mu.Lock()
	rt := a.route(r.Method, r.URL.Path)
	index := len(rt.requests)
	rt.requests = append(rt.requests, request)
	response, ok := rt.responses[index]
	if !ok {
		response, ok = rt.responses[-1]
	}
	a.mu.Unlock()

	if !ok {
		response = cannedResponse{status: a.fallback, body: map[string]any{}}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(response.status)
	_ = json.NewEncoder(w).Encode(response.body)
}

// SetResponse answers the index-th request on method and path. An index of -1 sets the
// default answer for that route.
func (a *ApiMock) SetResponse(index int, method, path string, status int, response map[string]any) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if response == nil {
		response = map[string]any{}
	}
	a.route(method, path).responses[index] = cannedResponse{status: status, body: response}
}

// ClearResponses forgets the configured answers and received requests of a route.
func (a *ApiMock) ClearResponses(method, path string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	delete(a.routes, method+path)
}

// RequestCount returns how many requests were received on method and path.
func (a *ApiMock) RequestCount(method, path string) int {
	a.mu.Lock()
	defer a.mu.Unlock()

	if rt, ok := a.routes[method+path]; ok {
		return len(rt.requests)
	}
	return 0
}

func (a *ApiMock) GetRequestBody(method, path string, index int) map[string]any {
	if request, ok := a.request(method, path, index); ok {
		return request.body
	}
	return nil
}

func (a *ApiMock) GetRequestHeaders(method, path string, index int) map[string]string {
	if request, ok := a.request(method, path, index); ok {
		return request.headers
	}
	return nil
}

func (a *ApiMock) GetRequestQueries(method, path string, index int) map[string]string {
	if request, ok := a.request(method, path, index); ok {
		return request.queries
	}
	return nil
}

func (a *ApiMock) request(method, path string, index int) (receivedRequest, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	rt, ok := a.routes[method+path]
	if !ok || index < 0 || index >= len(rt.requests) {
		return receivedRequest{}, false
	}
	return rt.requests[index], true
}

// route must be called with mu held.
func (a *ApiMock) route(method, path string) *route {
	rt, ok := a.routes[method+path]
	if !ok {
		rt = &route{responses: map[int]cannedResponse{}}
		a.routes[method+path] = rt
	}
	return rt
}
