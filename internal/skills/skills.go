// Package skills plans which skills to buy from the skill list.
package skills

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"uma-bot/internal/fuzzy"
	"uma-bot/internal/logger"
	"uma-bot/internal/screen"
)

// MinSimilarity is the fuzzy match ratio at which an OCR'd skill name is
// taken to be a configured one.
const MinSimilarity = 0.9

// Config is the content of skills.json.
type Config struct {
	Priority []string `json:"skill_priority"`
	// GoldUpgrades maps a gold skill to the base skill it upgrades.
	GoldUpgrades map[string]string `json:"gold_skill_upgrades"`
}

// Load reads the skill file. A missing file is created empty.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		logger.LogWarn("%s not found, creating an empty skill list", path)
		cfg := Config{Priority: []string{}, GoldUpgrades: map[string]string{}}
		out, _ := json.MarshalIndent(cfg, "", "    ")
		if dir := filepath.Dir(path); dir != "" {
			_ = os.MkdirAll(dir, 0755)
		}
		if err := os.WriteFile(path, out, 0644); err != nil {
			return cfg, fmt.Errorf("failed to create skill file: %w", err)
		}
		return cfg, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("failed to read skill file: %w", err)
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse skill file: %w", err)
	}
	return cfg, nil
}

// Skill is one buyable entry of the skill list.
type Skill struct {
	Name  string
	Price int
	// Button is the skill_up button of the row.
	Button screen.Box
}

func (s Skill) String() string {
	return fmt.Sprintf("%s (%d)", s.Name, s.Price)
}

var punct = regexp.MustCompile(`[^\w\s]`)

// normalize lowercases and strips punctuation and repeated spaces.
func normalize(s string) string {
	return strings.Join(strings.Fields(punct.ReplaceAllString(strings.ToLower(s), "")), " ")
}

// Same reports whether an OCR'd skill name refers to the configured name.
func Same(ocrName, name string) bool {
	if ocrName == "" || name == "" {
		return false
	}
	return fuzzy.Ratio(normalize(ocrName), normalize(name)) >= MinSimilarity
}

// match finds name in available, skipping skills already taken. Exact
// (case-insensitive) names win over fuzzy ones.
func match(name string, available []Skill, taken map[int]bool) (int, bool) {
	want := strings.ToLower(strings.TrimSpace(name))
	for i, s := range available {
		if !taken[i] && strings.ToLower(strings.TrimSpace(s.Name)) == want {
			return i, true
		}
	}

	best, bestRatio := -1, 0.0
	for i, s := range available {
		if taken[i] {
			continue
		}
		if r := fuzzy.Ratio(normalize(s.Name), normalize(name)); r >= MinSimilarity && r > bestRatio {
			best, bestRatio = i, r
		}
	}
	return best, best >= 0
}

// Plan orders the skills to buy. Each priority entry that is a gold skill
// is bought when listed, otherwise its base skill is. A listed skill is
// matched at most once. At the end of a career every remaining skill is
// appended, cheapest first.
func Plan(available []Skill, cfg Config, endCareer bool) []Skill {
	taken := map[int]bool{}
	var plan []Skill

	take := func(name string) bool {
		i, ok := match(name, available, taken)
		if !ok {
			return false
		}
		taken[i] = true
		plan = append(plan, available[i])
		return true
	}

	for _, name := range cfg.Priority {
		if take(name) {
			logger.LogDebug("Planned skill %s", name)
			continue
		}
		if base, ok := cfg.GoldUpgrades[name]; ok && take(base) {
			logger.LogDebug("Planned base skill %s for %s", base, name)
		}
	}

	if endCareer {
		var rest []Skill
		for i, s := range available {
			if !taken[i] {
				rest = append(rest, s)
			}
		}
		sort.SliceStable(rest, func(i, j int) bool { return rest[i].Price < rest[j].Price })
		plan = append(plan, rest...)
	}
	return plan
}

// Affordable walks the plan in order and keeps every skill that still fits
// the remaining points.
func Affordable(plan []Skill, points int) ([]Skill, int) {
	var out []Skill
	total := 0
	for _, s := range plan {
		if total+s.Price > points {
			logger.LogDebug("Skipping %s, need %d more points", s.Name, s.Price-(points-total))
			continue
		}
		out = append(out, s)
		total += s.Price
	}
	return out, total
}

// RemoveOverlaps drops boxes that overlap a larger kept box by at least
// ratio of their own area. Larger boxes are kept first.
func RemoveOverlaps(boxes []screen.Box, ratio float64) []screen.Box {
	sorted := append([]screen.Box(nil), boxes...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Area() > sorted[j].Area() })

	var keep []screen.Box
	for _, b := range sorted {
		dup := false
		for _, k := range keep {
			inter := b.Rect().Intersect(k.Rect())
			if !inter.Empty() && b.Area() > 0 && float64(inter.Dx()*inter.Dy())/float64(b.Area()) >= ratio {
				dup = true
				break
			}
		}
		if !dup {
			keep = append(keep, b)
		}
	}
	return keep
}

// Dedupe drops skills whose name is at least similarity alike to a skill
// already kept. Cheaper skills are kept first; unnamed skills are dropped.
func Dedupe(list []Skill, similarity float64) []Skill {
	sorted := append([]Skill(nil), list...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Price < sorted[j].Price })

	var out []Skill
	for _, s := range sorted {
		if strings.TrimSpace(s.Name) == "" {
			continue
		}
		dup := false
		for _, k := range out {
			if fuzzy.Ratio(s.Name, k.Name) >= similarity {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, s)
		}
	}
	return out
}
