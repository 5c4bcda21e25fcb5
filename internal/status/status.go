// Package status keeps the live bot status and writes it to status.json.
//
// The decision loop updates the tracker every tick; the snapshot file and the
// optional HTTP endpoint read copies of it.
package status

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MaxActions is how many recent actions the snapshot keeps.
const MaxActions = 10

// Game is the screen state read on the last lobby tick.
type Game struct {
	Year        string         `json:"year"`
	Turn        string         `json:"turn"`
	Mood        string         `json:"mood"`
	Goal        string         `json:"goal"`
	Criteria    string         `json:"criteria"`
	CriteriaMet bool           `json:"criteriaMet"`
	Energy      float64        `json:"energy"`
	Stats       map[string]int `json:"stats"`
}

// Snapshot is the JSON document written to status.json.
type Snapshot struct {
	RunID     string         `json:"runId"`
	Mode      string         `json:"mode"`
	State     string         `json:"state"`
	Game      Game           `json:"game"`
	Decision  string         `json:"decision"`
	Actions   []string       `json:"actions"` // Last 10 actions
	Counters  map[string]int `json:"counters"`
	Careers   int            `json:"careers"`
	StartTime time.Time      `json:"-"`
	ElapsedMS int64          `json:"elapsed"` // ms since start
	Updated   time.Time      `json:"updated"`
}

// Tracker holds the current snapshot.
type Tracker struct {
	path string
	s    Snapshot
	mu   sync.RWMutex
}

// New creates a tracker with a fresh run id. An empty path disables Save.
func New(path, mode string) *Tracker {
	now := time.Now()
	return &Tracker{
		path: path,
		s: Snapshot{
			RunID:     uuid.New().String(),
			Mode:      mode,
			State:     "initializing",
			Actions:   make([]string, 0, MaxActions),
			Counters:  make(map[string]int),
			StartTime: now,
			Updated:   now,
		},
	}
}

// RunID returns the id of this run.
func (t *Tracker) RunID() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.s.RunID
}

// SetState records the screen state matched on the current tick.
func (t *Tracker) SetState(state string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.s.State = state
	t.s.Updated = time.Now()
}

// SetGame records the lobby state read on the current tick.
func (t *Tracker) SetGame(g Game) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.s.Game = g
	t.s.Updated = time.Now()
}

// SetDecision records the last decision made.
func (t *Tracker) SetDecision(d string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.s.Decision = d
}

// AddAction appends an action, dropping the oldest beyond MaxActions.
func (t *Tracker) AddAction(action string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.s.Actions = append(t.s.Actions, action)
	if len(t.s.Actions) > MaxActions {
		t.s.Actions = t.s.Actions[len(t.s.Actions)-MaxActions:]
	}
}

// Count increments a named counter.
func (t *Tracker) Count(name string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.s.Counters[name]++
}

// CareerFinished bumps the completed career count.
func (t *Tracker) CareerFinished() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.s.Careers++
	return t.s.Careers
}

// Snapshot returns a copy of the current status.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := t.s
	out.ElapsedMS = time.Since(t.s.StartTime).Milliseconds()
	out.Actions = append([]string(nil), t.s.Actions...)
	out.Counters = make(map[string]int, len(t.s.Counters))
	for k, v := range t.s.Counters {
		out.Counters[k] = v
	}
	if t.s.Game.Stats != nil {
		out.Game.Stats = make(map[string]int, len(t.s.Game.Stats))
		for k, v := range t.s.Game.Stats {
			out.Game.Stats[k] = v
		}
	}
	return out
}

// Save writes the snapshot to the status file.
func (t *Tracker) Save() error {
	if t.path == "" {
		return nil
	}

	data, err := json.MarshalIndent(t.Snapshot(), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal status: %w", err)
	}

	if err := os.WriteFile(t.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write status file: %w", err)
	}
	return nil
}
