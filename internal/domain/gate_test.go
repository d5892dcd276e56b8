package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGate_Unlock(t *testing.T) {
	tests := []struct {
		name       string
		passphrase string
		unlocked   bool
	}{
		{"exact", "Q-KEY", true},
		{"surrounding whitespace", "  Q-KEY\n", true},
		{"wrong", "q-key", false},
		{"prefix", "Q-KE", false},
		{"empty", "", false},
		{"blank", "   ", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGate("Q-KEY")
			assert.Equal(t, tt.unlocked, g.Unlock(tt.passphrase))
			if tt.unlocked {
				assert.Equal(t, GateRevealed, g.State())
			} else {
				assert.Equal(t, GateLocked, g.State())
			}
		})
	}
}

func TestGate_LockAfterReveal(t *testing.T) {
	g := NewGate("Q-KEY")
	assert.Equal(t, GateLocked, g.State())
	assert.True(t, g.Unlock("Q-KEY"))
	g.Lock()
	assert.Equal(t, GateLocked, g.State())
	assert.Equal(t, "locked", g.State().String())
}

func TestGate_EmptySecretNeverUnlocks(t *testing.T) {
	g := NewGate("")
	assert.False(t, g.Unlock(""))
	assert.False(t, g.Unlock("anything"))
}
