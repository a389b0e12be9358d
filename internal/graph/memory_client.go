package graph

import (
	"context"
	"sync"
)

// ExecutedQuery captures a cypher statement and parameters executed against the graph.
type ExecutedQuery struct {
	Query  string
	Params map[string]any
	Write  bool
}

// HandlerFunc answers a query on behalf of the fake client.
type HandlerFunc func(q ExecutedQuery) (Result, error)

// MemoryClient is an in-process Client for tests. Every call is recorded and
// answered by the configured handler, which lets tests emulate just the
// queries a component issues without a running database.
type MemoryClient struct {
	mu           sync.Mutex
	handler      HandlerFunc
	calls        []ExecutedQuery
	connectivity error
	closed       bool
}

// NewMemoryClient returns a client whose queries all succeed with empty results
// until a handler is installed.
func NewMemoryClient() *MemoryClient {
	return &MemoryClient{}
}

// WithHandler installs the function answering subsequent queries.
func (m *MemoryClient) WithHandler(h HandlerFunc) *MemoryClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handler = h
	return m
}

// WithConnectivityError forces VerifyConnectivity to return the supplied error.
func (m *MemoryClient) WithConnectivityError(err error) *MemoryClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connectivity = err
	return m
}

func (m *MemoryClient) ExecuteWrite(_ context.Context, cypher string, params map[string]any) (Result, error) {
	return m.execute(ExecutedQuery{Query: cypher, Params: cloneMap(params), Write: true})
}

func (m *MemoryClient) ExecuteRead(_ context.Context, cypher string, params map[string]any) (Result, error) {
	return m.execute(ExecutedQuery{Query: cypher, Params: cloneMap(params)})
}

func (m *MemoryClient) execute(q ExecutedQuery) (Result, error) {
	m.mu.Lock()
	m.calls = append(m.calls, q)
	h := m.handler
	m.mu.Unlock()

	if h == nil {
		return Result{}, nil
	}
	return h(q)
}

func (m *MemoryClient) VerifyConnectivity(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connectivity
}

func (m *MemoryClient) Close(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Closed reports whether Close has been called.
func (m *MemoryClient) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// Calls returns a snapshot of every executed query in order.
func (m *MemoryClient) Calls() []ExecutedQuery {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ExecutedQuery(nil), m.calls...)
}

func cloneMap(src map[string]any) map[string]any {
	if src == nil {
		return nil
	}
	dst := make(map[string]any, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
