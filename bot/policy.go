package bot

import "sync"

// Policy holds the process-wide moderation mode. Safe for concurrent use.
type Policy struct {
	mu   sync.RWMutex
	mode string
}

// NewPolicy creates a policy starting in the given mode.
func NewPolicy(mode string) *Policy {
	return &Policy{mode: mode}
}

// Mode returns the current moderation mode.
func (p *Policy) Mode() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.mode
}

// SetMode switches the moderation mode. It applies to new listings only.
func (p *Policy) SetMode(mode string) {
	p.mu.Lock()
	p.mode = mode
	p.mu.Unlock()
}
