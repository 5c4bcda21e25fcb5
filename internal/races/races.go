// Package races holds the race calendar and picks which race to enter.
//
// The race data file maps a career year label ("Classic Year Early Apr")
// to the races held that turn. Custom race files map the same labels to
// one race name each.
package races

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"uma-bot/internal/config"
)

// Race is one calendar entry.
type Race struct {
	Name         string `json:"-"`
	Grade        string `json:"grade"`
	Surface      string `json:"surface"`
	DistanceType string `json:"distance_type"`
	Fans         int    `json:"fans"`
	Description  string `json:"description"`
}

// Calendar maps year label to race name to race.
type Calendar map[string]map[string]Race

// LoadCalendar reads the race data file.
func LoadCalendar(path string) (Calendar, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read race data: %w", err)
	}
	var c Calendar
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse race data: %w", err)
	}
	for _, byName := range c {
		for name, r := range byName {
			r.Name = name
			byName[name] = r
		}
	}
	return c, nil
}

// IsPreDebut reports whether the year label is the pre-debut phase. OCR
// often drops or doubles letters here, so any "Pre" counts.
func IsPreDebut(year string) bool {
	return strings.Contains(year, "Pre")
}

// IsAvailable reports whether races can be entered this turn. Pre-debut,
// the finale and the summer camp of the classic and senior years have no
// races.
func IsAvailable(year string) bool {
	if IsPreDebut(year) || strings.Contains(year, "Finale Underway") {
		return false
	}
	parts := strings.Split(year, " ")
	if len(parts) > 3 && parts[0] != "Junior" && (parts[3] == "Jul" || parts[3] == "Aug") {
		return false
	}
	return true
}

// GradePriority orders grades, lower is better. Unknown grades sort last.
func GradePriority(grade string) int {
	switch strings.ToUpper(grade) {
	case "G1":
		return 1
	case "G2":
		return 2
	case "G3":
		return 3
	case "OP":
		return 4
	case "PRE-OP":
		return 5
	}
	return 999
}

// Filter restricts which races are candidates. Empty track and distance
// lists allow everything.
type Filter struct {
	Grades    []string
	Tracks    []string
	Distances []string
}

// FilterFor builds the filter for a turn. A career goal naming a G1 race
// overrides the configured grades.
func FilterFor(cfg config.Racing, goal string) Filter {
	f := Filter{
		Grades:    cfg.AllowedGrades,
		Tracks:    cfg.AllowedTracks,
		Distances: cfg.AllowedDistances,
	}
	if len(f.Grades) == 0 {
		f.Grades = []string{"G1", "G2", "G3", "OP", "PRE-OP"}
	}
	if strings.Contains(goal, "G1") {
		f.Grades = []string{"G1"}
	}
	return f
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func (f Filter) allows(r Race) bool {
	if !contains(f.Grades, r.Grade) {
		return false
	}
	if len(f.Tracks) > 0 && !contains(f.Tracks, r.Surface) {
		return false
	}
	if len(f.Distances) > 0 && !contains(f.Distances, r.DistanceType) {
		return false
	}
	return true
}

// Races returns the races held in year, sorted by name.
func (c Calendar) Races(year string) []Race {
	var out []Race
	for _, r := range c[year] {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Best picks the race to enter in year: the best grade first, then the
// most fans. Equal races resolve by name.
func (c Calendar) Best(year string, f Filter) (Race, bool) {
	var best Race
	found := false
	for _, r := range c.Races(year) {
		if !f.allows(r) {
			continue
		}
		if !found {
			best, found = r, true
			continue
		}
		p, bp := GradePriority(r.Grade), GradePriority(best.Grade)
		if p < bp || (p == bp && r.Fans > best.Fans) {
			best = r
		}
	}
	return best, found
}

// Description returns the text shown under a race in the race list, or the
// race name when the calendar does not know it.
func (c Calendar) Description(year, name string) string {
	if r, ok := c[year][name]; ok && r.Description != "" {
		return r.Description
	}
	return name
}

// CustomRaces maps a year label to the race to enter that turn.
type CustomRaces map[string]string

// LoadCustomRaces reads a custom race file.
func LoadCustomRaces(path string) (CustomRaces, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read custom races: %w", err)
	}
	var c CustomRaces
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse custom races: %w", err)
	}
	return c, nil
}

// For returns the race planned for year. Blank entries mean no race.
func (c CustomRaces) For(year string) (string, bool) {
	name := strings.TrimSpace(c[year])
	return name, name != ""
}
