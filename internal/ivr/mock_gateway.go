package ivr

import (
	"context"
	"sync"
)

// Directive records one gateway call made by the engine, for assertions.
type Directive struct {
	Kind      string // "play", "recognize", "hangup", "transfer"
	CallID    string
	Play      PlayRequest
	Recognize RecognizeRequest
	Target    string // transfer target
}

// MockGateway implements Gateway for testing. It records every directive and
// can be told to fail specific operations.
type MockGateway struct {
	mu         sync.Mutex
	directives []Directive

	PlayErr      error
	RecognizeErr error
	HangupErr    error
	TransferErr  error
}

// NewMockGateway creates an empty MockGateway.
func NewMockGateway() *MockGateway {
	return &MockGateway{}
}

// Play records the directive.
func (m *MockGateway) Play(ctx context.Context, callID string, req PlayRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.directives = append(m.directives, Directive{Kind: "play", CallID: callID, Play: req})
	return m.PlayErr
}

// Recognize records the directive.
func (m *MockGateway) Recognize(ctx context.Context, callID string, req RecognizeRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.directives = append(m.directives, Directive{Kind: "recognize", CallID: callID, Recognize: req})
	return m.RecognizeErr
}

// Hangup records the directive.
func (m *MockGateway) Hangup(ctx context.Context, callID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.directives = append(m.directives, Directive{Kind: "hangup", CallID: callID})
	return m.HangupErr
}

// Transfer records the directive.
func (m *MockGateway) Transfer(ctx context.Context, callID, target string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.directives = append(m.directives, Directive{Kind: "transfer", CallID: callID, Target: target})
	return m.TransferErr
}

// Directives returns a copy of all recorded directives.
func (m *MockGateway) Directives() []Directive {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Directive, len(m.directives))
	copy(out, m.directives)
	return out
}

// Last returns the most recent directive, or a zero Directive if none.
func (m *MockGateway) Last() Directive {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.directives) == 0 {
		return Directive{}
	}
	return m.directives[len(m.directives)-1]
}

// Count returns the number of recorded directives.
func (m *MockGateway) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.directives)
}
