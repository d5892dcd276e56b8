// Package display holds the presentation state driven by observations.
package display

import (
	"fmt"
	"sync"
	"time"

	"github.com/couchcryptid/meteo-relay/internal/domain"
	"github.com/jonboulle/clockwork"
)

const fallbackLabel = "Clair"

var icons = map[domain.Category]string{
	domain.CategorySun:   "☀️",
	domain.CategoryCloud: "☁️",
	domain.CategoryRain:  "🌧️",
	domain.CategoryStorm: "⛈️",
	domain.CategorySnow:  "❄️",
}

// State is what the dashboard shows.
type State struct {
	Category        domain.Category `json:"category"`
	Icon            string          `json:"icon"`
	Temperature     int             `json:"temperature"`
	TemperatureText string          `json:"temperature_text"`
	Label           string          `json:"label"`
	AlertVisible    bool            `json:"alert_visible"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// Board renders observations into a State. It is safe for concurrent use.
type Board struct {
	clock clockwork.Clock
	onSet func(State)

	mu    sync.RWMutex
	state State
}

// Option configures a Board.
type Option func(*Board)

// WithClock sets the time source for UpdatedAt.
func WithClock(c clockwork.Clock) Option {
	return func(b *Board) { b.clock = c }
}

// WithObserver registers a callback invoked after every visible change.
func WithObserver(fn func(State)) Option {
	return func(b *Board) { b.onSet = fn }
}

// NewBoard creates a board already showing the initial observation.
func NewBoard(initial domain.Observation, opts ...Option) *Board {
	b := &Board{clock: clockwork.NewRealClock()}
	for _, opt := range opts {
		opt(b)
	}
	b.Render(initial)
	return b
}

// Render shows obs. Rendering the observation already on display is a no-op,
// so UpdatedAt only moves when the visible state changes.
func (b *Board) Render(obs domain.Observation) {
	next := project(obs)

	b.mu.Lock()
	if !b.state.UpdatedAt.IsZero() && sameView(b.state, next) {
		b.mu.Unlock()
		return
	}
	next.UpdatedAt = b.clock.Now()
	b.state = next
	b.mu.Unlock()

	if b.onSet != nil {
		b.onSet(next)
	}
}

// Snapshot returns the current state.
func (b *Board) Snapshot() State {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.state
}

func project(obs domain.Observation) State {
	icon, ok := icons[obs.Category]
	if !ok {
		icon = icons[domain.CategorySun]
	}
	label := fallbackLabel
	if d, ok := domain.DescriptorOf(obs.Category); ok {
		label = d.Label
	}
	return State{
		Category:        obs.Category,
		Icon:            icon,
		Temperature:     obs.Temperature,
		TemperatureText: fmt.Sprintf("%d°C", obs.Temperature),
		Label:           label,
		AlertVisible:    obs.Category == domain.CategoryRain,
	}
}

func sameView(a, b State) bool {
	a.UpdatedAt, b.UpdatedAt = time.Time{}, time.Time{}
	return a == b
}
