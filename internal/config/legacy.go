package config

import (
	"encoding/json"
	"fmt"
)

// legacyTraining maps flat top-level keys of older files to the field they feed.
// A key is only used when the nested section does not set it.
var legacyTraining = map[string]func(t *Training) any{
	"maximum_failure":           func(t *Training) any { return &t.MaxFailure },
	"min_score":                 func(t *Training) any { return &t.MinScore },
	"min_wit_score":             func(t *Training) any { return &t.MinWitScore },
	"priority_stat":             func(t *Training) any { return &t.PriorityStat },
	"stat_caps":                 func(t *Training) any { return &t.StatCaps },
	"min_energy":                func(t *Training) any { return &t.MinEnergy },
	"minimum_mood":              func(t *Training) any { return &t.MinimumMood },
	"do_race_when_bad_training": func(t *Training) any { return &t.DoRaceWhenBadTraining },
}

var legacyRacing = map[string]func(r *Racing) any{
	"retry_race":     func(r *Racing) any { return &r.RetryRace },
	"do_custom_race": func(r *Racing) any { return &r.DoCustomRace },
}

func (c *Config) applyLegacy(top map[string]json.RawMessage) error {
	training := section(top, "training")
	for key, field := range legacyTraining {
		raw, ok := top[key]
		if !ok {
			continue
		}
		if _, nested := training[key]; nested {
			continue
		}
		if err := json.Unmarshal(raw, field(&c.Training)); err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
	}

	racing := section(top, "racing")
	for key, field := range legacyRacing {
		raw, ok := top[key]
		if !ok {
			continue
		}
		if _, nested := racing[key]; nested {
			continue
		}
		if err := json.Unmarshal(raw, field(&c.Racing)); err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
	}
	return nil
}

func section(top map[string]json.RawMessage, name string) map[string]json.RawMessage {
	var out map[string]json.RawMessage
	if raw, ok := top[name]; ok {
		_ = json.Unmarshal(raw, &out)
	}
	return out
}
