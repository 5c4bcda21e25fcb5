package config

import (
	"os"

	"uma-bot/internal/scoring"
)

// Selector builds the training selector from the training section.
//
// A scalar min_score applies to every stat and min_wit_score then overrides
// wit. A per-stat map is used as given; stats missing from it use 1.0.
func (t Training) Selector() scoring.Selector {
	sel := scoring.DefaultSelector()
	sel.MaxFailure = t.MaxFailure
	if sel.MaxFailure < 0 {
		sel.MaxFailure = scoring.DefaultMaxFailure
	}
	if len(t.PriorityStat) > 0 {
		sel.Priority = t.PriorityStat
	}

	sel.MinScore = map[string]float64{}
	if t.MinScore.All != nil {
		for _, stat := range scoring.Stats {
			sel.MinScore[stat] = *t.MinScore.All
		}
		if t.MinWitScore != nil {
			sel.MinScore[scoring.Wit] = *t.MinWitScore
		}
	} else {
		for stat, v := range t.MinScore.PerStat {
			sel.MinScore[stat] = v
		}
	}

	sel.StatCaps = map[string]int{}
	for stat, v := range t.StatCaps {
		sel.StatCaps[stat] = v
	}
	return sel
}

// Rules loads the scoring weights for the active mode. Unity mode reads the
// unity file and falls back to the regular one when it is missing. Load
// errors fall back to the default weights and are returned for logging.
func (c *Config) Rules() (scoring.Rules, error) {
	path := c.Training.ScoreFile
	if c.Unity() && c.Training.UnityScoreFile != "" {
		if _, err := os.Stat(c.Training.UnityScoreFile); err == nil {
			path = c.Training.UnityScoreFile
		}
	}
	rules, err := scoring.LoadRules(path)
	rules.SpiritBurstStats = c.Training.SpiritBurstEnabledStat
	return rules, err
}

// MoodBelowMinimum reports whether mood is worse than the configured minimum.
// Unknown moods never count as low.
func (t Training) MoodBelowMinimum(mood string) bool {
	idx := MoodIndex(mood)
	if idx < 0 {
		return false
	}
	return idx < MoodIndex(t.MinimumMood)
}
