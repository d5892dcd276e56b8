package domain

import (
	"crypto/subtle"
	"strings"
	"sync"
)

// GateState is the position of the reveal gate.
type GateState int

const (
	GateLocked GateState = iota
	GateRevealed
)

func (s GateState) String() string {
	if s == GateRevealed {
		return "revealed"
	}
	return "locked"
}

// Gate guards decoded phrases behind a shared passphrase. It opens for a
// single reveal and must be locked again by the caller.
type Gate struct {
	secret []byte

	mu    sync.Mutex
	state GateState
}

// NewGate creates a locked gate for secret.
func NewGate(secret string) *Gate {
	return &Gate{secret: []byte(secret)}
}

// Unlock moves the gate to GateRevealed when the trimmed passphrase equals
// the secret. Empty input never unlocks.
func (g *Gate) Unlock(passphrase string) bool {
	p := strings.TrimSpace(passphrase)
	if p == "" || len(g.secret) == 0 {
		return false
	}
	if subtle.ConstantTimeCompare([]byte(p), g.secret) != 1 {
		return false
	}
	g.mu.Lock()
	g.state = GateRevealed
	g.mu.Unlock()
	return true
}

// Lock returns the gate to GateLocked.
func (g *Gate) Lock() {
	g.mu.Lock()
	g.state = GateLocked
	g.mu.Unlock()
}

// State reports the current gate position.
func (g *Gate) State() GateState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}
