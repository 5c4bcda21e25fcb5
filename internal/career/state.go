// Package career drives a training career from the lobby to the end screen.
//
// Every tick takes a fresh screenshot and walks a priority-ordered detector
// list. The first detector that matches runs its handler and the tick ends.
// A handler may decline (a goal race that found no race, a custom race that
// failed) and the walk continues with the next detector.
//
// Screen States (checked on the raw screenshot):
//   - CareerComplete: career end screen, restart or stop
//   - ClawMachine: claw game, hold the button
//   - OKDialog, Inspiration, Cancel, Close, Next: tap through
//   - Event: event choices are visible, pick one
//   - UnityCup: unity cup race banner (unity mode only)
//   - NotInLobby: nothing known and no lobby hint, wait
//
// Lobby States (checked on the game state read once per tick):
//   - Infirmary: infirmary button lit
//   - GoalRace: goal criteria not met outside pre-debut
//   - Finale: URA finale race day
//   - RaceDay: scheduled race
//   - CustomRace: a custom race is planned for this turn
//   - LowMood: mood below the minimum with energy to spare
//   - LowEnergy: energy below the minimum
//   - Training: score every training and pick one
//
// Only the last failed custom race day and the restart counters survive
// between ticks.
package career

import (
	"context"
	"image"

	"uma-bot/internal/screen"
)

// State is the detector that matched on a tick.
type State int

const (
	StateUnknown State = iota
	StateCareerComplete
	StateClawMachine
	StateOKDialog
	StateEvent
	StateUnityCup
	StateInspiration
	StateCancel
	StateClose
	StateNext
	StateNotInLobby
	StateInfirmary
	StateGoalRace
	StateFinale
	StateRaceDay
	StateCustomRace
	StateLowMood
	StateLowEnergy
	StateTraining
)

// String returns the string representation of the state
func (s State) String() string {
	switch s {
	case StateCareerComplete:
		return "CareerComplete"
	case StateClawMachine:
		return "ClawMachine"
	case StateOKDialog:
		return "OKDialog"
	case StateEvent:
		return "Event"
	case StateUnityCup:
		return "UnityCup"
	case StateInspiration:
		return "Inspiration"
	case StateCancel:
		return "Cancel"
	case StateClose:
		return "Close"
	case StateNext:
		return "Next"
	case StateNotInLobby:
		return "NotInLobby"
	case StateInfirmary:
		return "Infirmary"
	case StateGoalRace:
		return "GoalRace"
	case StateFinale:
		return "Finale"
	case StateRaceDay:
		return "RaceDay"
	case StateCustomRace:
		return "CustomRace"
	case StateLowMood:
		return "LowMood"
	case StateLowEnergy:
		return "LowEnergy"
	case StateTraining:
		return "Training"
	default:
		return "Unknown"
	}
}

// screenDetector matches a template on the raw screenshot.
type screenDetector struct {
	state     State
	template  string
	threshold float64
	region    screen.Box
	unityOnly bool
	// run handles the match; nil taps it. A false result lets the walk
	// continue with the next detector.
	run func(ctx context.Context, img image.Image, hit screen.Box) (bool, error)
}

// lobbyDetector matches on the game state read from the lobby.
type lobbyDetector struct {
	state State
	match func(gs GameState) bool
	run   func(ctx context.Context, img image.Image, gs GameState) (bool, error)
}
