package career

import (
	"image"

	"uma-bot/internal/config"
	"uma-bot/internal/scoring"
)

// Report is what one screenshot shows, read without touching the device.
type Report struct {
	// State is the first screen state whose template matched, or
	// StateNotInLobby/StateTraining when none did.
	State State
	Lobby bool
	Game  GameState

	// Training is the selected training when the screenshot is of the
	// training screen.
	Training *scoring.TrainingOption
}

// Analyze reads img the way a tick would, without acting on it.
func Analyze(img image.Image, m Matcher, r Reader, cfg *config.Config, rules scoring.Rules) Report {
	rep := Report{State: StateNotInLobby}

	probe := &Bot{cfg: cfg}
	for _, d := range probe.screenDetectors() {
		if d.unityOnly && !cfg.Unity() {
			continue
		}
		if _, ok := m.Locate(img, d.template, d.threshold, d.region); ok {
			rep.State = d.state
			return rep
		}
	}

	if _, ok := m.Locate(img, "ui/tazuna_hint", 0.8, Everywhere); ok {
		rep.Lobby = true
		rep.State = StateTraining
		rep.Game = ReadGame(img, m, r)
		return rep
	}

	// The failure rate only shows above the raised training button.
	best, bestConf, bestRate := "", 0.0, 0
	for _, stat := range trainingOrder {
		rate, conf, err := r.Failure(img, failureRegions[stat], stat, nil)
		if err == nil && conf > bestConf {
			best, bestConf, bestRate = stat, conf, rate
		}
	}
	if best == "" {
		return rep
	}
	opt := ReadTraining(img, best, m, cfg.Unity())
	opt.Failure = bestRate
	opt.Score = rules.Score(opt, "")
	rep.Training = &opt
	return rep
}
