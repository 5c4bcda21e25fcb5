// Package scoring implements the training decision core: a weighted-sum score
// per trainable stat and the selector that picks the best safe training.
//
// Everything here is pure. Inputs are built fresh by the decision loop every
// lobby iteration and nothing is retained between calls.
package scoring

import (
	"encoding/json"
	"fmt"
	"os"
)

// Trainable stats and support card types.
const (
	Speed   = "spd"
	Stamina = "sta"
	Power   = "pwr"
	Guts    = "guts"
	Wit     = "wit"
	Friend  = "friend"
)

// Stats lists the five trainable stats in on-screen order.
var Stats = []string{Speed, Stamina, Power, Guts, Wit}

// SupportTypes lists every support card icon the training screen can show.
var SupportTypes = []string{Speed, Stamina, Power, Guts, Wit, Friend}

// DefaultPriority is the tie-break order used when none is configured.
var DefaultPriority = []string{Speed, Stamina, Wit, Power, Guts}

// Rules is the weight table used by Score. It is read-only once loaded.
type Rules struct {
	RainbowSupport      float64
	NotRainbowLow       float64
	NotRainbowHigh      float64
	Hint                float64
	SpiritTraining      float64
	SpiritTrainingExtra float64
	SpiritBurst         float64

	// SpiritBurstStats limits spirit burst points to these stats. Empty means all.
	SpiritBurstStats []string
}

// DefaultRules returns the built-in weights.
func DefaultRules() Rules {
	return Rules{
		RainbowSupport:      1.0,
		NotRainbowLow:       0.7,
		NotRainbowHigh:      0.0,
		Hint:                0.3,
		SpiritTraining:      0.5,
		SpiritTrainingExtra: 1.5,
		SpiritBurst:         1.0,
	}
}

type rulePoints struct {
	Points *float64 `json:"points"`
}

type rulesFile struct {
	ScoringRules map[string]rulePoints `json:"scoring_rules"`
}

// ParseRules reads a training score document of the form
// {"scoring_rules": {"rainbow_support": {"points": 1.0}, ...}}.
// Missing entries keep their default weight.
func ParseRules(data []byte) (Rules, error) {
	rules := DefaultRules()

	var doc rulesFile
	if err := json.Unmarshal(data, &doc); err != nil {
		return rules, fmt.Errorf("failed to parse scoring rules: %w", err)
	}

	set := func(dst *float64, keys ...string) {
		for _, k := range keys {
			if p, ok := doc.ScoringRules[k]; ok && p.Points != nil {
				*dst = *p.Points
				return
			}
		}
	}
	set(&rules.RainbowSupport, "rainbow_support")
	set(&rules.NotRainbowLow, "not_rainbow_support_low")
	set(&rules.NotRainbowHigh, "not_rainbow_support_high")
	set(&rules.Hint, "hint")
	// Older unity score files spell the key "spririt_training".
	set(&rules.SpiritTraining, "spirit_training", "spririt_training")
	set(&rules.SpiritTrainingExtra, "spirit_training_extra")
	set(&rules.SpiritBurst, "spirit_burst")

	return rules, nil
}

// LoadRules reads scoring rules from path. On any error the default rules are
// returned together with the error so callers can log and continue.
func LoadRules(path string) (Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return DefaultRules(), fmt.Errorf("failed to read scoring rules: %w", err)
	}
	return ParseRules(data)
}
