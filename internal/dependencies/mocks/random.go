package mocks

import (
	"fmt"
	"sync"

	"github.com/mcoot/robogamehub/internal/dependencies/random"
)

// MockRandom is a mock implementation of Random for testing
type MockRandom struct {
	mu sync.Mutex

	// Tokens is a queue of results to return from Token
	Tokens     []string
	tokenIndex int

	// Err, when set, is returned from every Token call
	Err error
}

// Ensure MockRandom implements Random
var _ random.Random = (*MockRandom)(nil)

// NewMockRandom creates a new MockRandom
func NewMockRandom() *MockRandom {
	return &MockRandom{}
}

// Token returns the next queued token, or a sequential fallback once the
// queue is drained
func (r *MockRandom) Token(n int) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return "", r.Err
	}
	defer func() { r.tokenIndex++ }()
	if r.tokenIndex >= len(r.Tokens) {
		return fmt.Sprintf("token-%d", r.tokenIndex), nil
	}
	return r.Tokens[r.tokenIndex], nil
}

// QueueTokens adds values to the Token result queue
func (r *MockRandom) QueueTokens(values ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Tokens = append(r.Tokens, values...)
}

// Reset clears all queued results
func (r *MockRandom) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Tokens = nil
	r.tokenIndex = 0
	r.Err = nil
}
