package llm

import (
	"context"
	"fmt"
)

// MockGenerator is a scripted generator for tests. Responses are returned in
// order; when the script runs out the last response repeats. Err, when set,
// is returned for every call, or only for the FailAt-th call (1-based) when
// FailAt is positive.
type MockGenerator struct {
	Responses []string
	Err       error
	FailAt    int
	Requests  []*Request
}

// Generate records the request and returns the next scripted response.
func (m *MockGenerator) Generate(ctx context.Context, req *Request) (string, error) {
	m.Requests = append(m.Requests, req)
	if m.Err != nil && (m.FailAt <= 0 || m.FailAt == len(m.Requests)) {
		return "", m.Err
	}
	if len(m.Responses) == 0 {
		return "", fmt.Errorf("mock generator has no responses")
	}
	i := len(m.Requests) - 1
	if i >= len(m.Responses) {
		i = len(m.Responses) - 1
	}
	return m.Responses[i], nil
}

// Close is a no-op for MockGenerator.
func (m *MockGenerator) Close() error {
	return nil
}
