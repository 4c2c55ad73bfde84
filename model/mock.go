package model

import (
	"context"
	"sync"
)

// Mock is a test implementation of Generator.
//
// It returns scripted responses in order, records every call, and can inject
// errors. Thread-safe.
//
// Example:
//
//	mock := &Mock{Responses: []string{"first", "second"}}
//	text, _ := mock.Generate(ctx, "p", 0.1) // "first"
//
// Error injection, per call position:
//
//	mock := &Mock{
//	    Responses: []string{"ok", "", "ok again"},
//	    Errs:      map[int]error{1: errors.New("boom")},
//	}
type Mock struct {
	// Responses is the sequence of responses to return. When exhausted, the
	// last response repeats.
	Responses []string

	// Errs maps zero-based call index to an error returned instead of a
	// response at that position.
	Errs map[int]error

	// Err, if set, is returned by every call. Overrides Responses and Errs.
	Err error

	// Calls records every invocation.
	Calls []MockCall

	mu        sync.Mutex
	callIndex int
}

// MockCall records a single Generate invocation.
type MockCall struct {
	Prompt      string
	Temperature float64
}

// Generate implements the Generator interface.
func (m *Mock) Generate(ctx context.Context, prompt string, temperature float64) (string, error) {
	if ctx.Err() != nil {
		return "", ctx.Err()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	idx := m.callIndex
	m.callIndex++
	m.Calls = append(m.Calls, MockCall{Prompt: prompt, Temperature: temperature})

	if m.Err != nil {
		return "", m.Err
	}
	if err, ok := m.Errs[idx]; ok {
		return "", err
	}

	if len(m.Responses) == 0 {
		return "", nil
	}
	if idx >= len(m.Responses) {
		idx = len(m.Responses) - 1
	}
	return m.Responses[idx], nil
}

// CallCount returns the number of Generate invocations so far.
func (m *Mock) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// Reset clears call history and the response cursor.
func (m *Mock) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = nil
	m.callIndex = 0
}
