package config

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// MinScore is the minimum training score. Files may give one number for all
// stats or a per-stat object.
type MinScore struct {
	All     *float64
	PerStat map[string]float64
}

// UnmarshalJSON accepts a number or an object of numbers.
func (m *MinScore) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*m = MinScore{PerStat: map[string]float64{}}

	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	if data[0] == '{' {
		if err := json.Unmarshal(data, &m.PerStat); err != nil {
			return fmt.Errorf("min_score: %w", err)
		}
		return nil
	}

	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("min_score: %w", err)
	}
	m.All = &v
	return nil
}

// MarshalJSON writes the scalar form when one was given.
func (m MinScore) MarshalJSON() ([]byte, error) {
	if m.All != nil {
		return json.Marshal(*m.All)
	}
	if m.PerStat == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(m.PerStat)
}

// MarshalYAML mirrors MarshalJSON.
func (m MinScore) MarshalYAML() (any, error) {
	if m.All != nil {
		return *m.All, nil
	}
	if m.PerStat == nil {
		return map[string]float64{}, nil
	}
	return m.PerStat, nil
}
