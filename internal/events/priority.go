package events

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
)

// Priorities lists reward keywords to seek and to avoid. Good choices are
// ordered best first.
type Priorities struct {
	Good []string `json:"Good_choices"`
	Bad  []string `json:"Bad_choices"`
}

// LoadPriorities reads event_priority.json. A missing file yields empty
// priorities together with the error.
func LoadPriorities(path string) (Priorities, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Priorities{}, fmt.Errorf("failed to read event priorities: %w", err)
	}
	var p Priorities
	if err := json.Unmarshal(data, &p); err != nil {
		return Priorities{}, fmt.Errorf("failed to parse event priorities: %w", err)
	}
	return p, nil
}

// OptionAnalysis is the keyword scan of one option.
type OptionAnalysis struct {
	Option
	Good []string
	Bad  []string
}

// Analysis is the outcome of Analyze.
type Analysis struct {
	Options []OptionAnalysis
	// Recommended is the option name to pick; empty means no preference.
	Recommended string
	Reason      string
	// NoGood is set when no option mentions any good keyword.
	NoGood bool
}

func matches(reward string, keywords []string) []string {
	lower := strings.ToLower(reward)
	var out []string
	for _, k := range keywords {
		if strings.Contains(lower, strings.ToLower(k)) {
			out = append(out, k)
		}
	}
	return out
}

func (p Priorities) rank(keyword string) int {
	for i, g := range p.Good {
		if g == keyword {
			return i
		}
	}
	return -1
}

// Analyze recommends an option.
//
// Options with a good keyword and no bad keyword compete on their best good
// keyword (earlier in the list is better; ties keep the earlier option).
// When no option is clean, the option with the fewest bad keywords wins.
// When no option mentions a good keyword at all, nothing is recommended.
func (p Priorities) Analyze(opts Options) Analysis {
	a := Analysis{NoGood: true}
	for _, o := range opts {
		oa := OptionAnalysis{Option: o, Good: matches(o.Reward, p.Good), Bad: matches(o.Reward, p.Bad)}
		if len(oa.Good) > 0 {
			a.NoGood = false
		}
		a.Options = append(a.Options, oa)
	}
	if a.NoGood {
		return a
	}

	best, bestRank := "", -1
	for _, oa := range a.Options {
		if len(oa.Bad) > 0 {
			continue
		}
		for _, g := range oa.Good {
			r := p.rank(g)
			if r >= 0 && (bestRank == -1 || r < bestRank) {
				best, bestRank = oa.Name, r
			}
		}
	}
	if best != "" {
		a.Recommended = best
		a.Reason = fmt.Sprintf("highest priority good choice: %q", p.Good[bestRank])
		return a
	}

	fewest := -1
	for _, oa := range a.Options {
		if fewest == -1 || len(oa.Bad) < fewest {
			fewest = len(oa.Bad)
			a.Recommended = oa.Name
		}
	}
	a.Reason = fmt.Sprintf("no clean option, fewest bad choices: %d", fewest)
	return a
}

var optionNumber = regexp.MustCompile(`option\s*(\d+)`)

// ChoiceNumber maps a recommended option name to a 1-based on-screen
// choice. Two and three option events use top/middle/bottom labels; larger
// events use "Option N". Anything unmapped, or beyond the choices visible
// on screen, is the top choice.
func ChoiceNumber(recommended string, optionCount, visible int) int {
	lower := strings.ToLower(recommended)
	choice := 1

	switch {
	case recommended == "":
	case optionCount == 2:
		if !strings.Contains(lower, "top") && strings.Contains(lower, "bottom") {
			choice = 2
		}
	case optionCount == 3:
		switch {
		case strings.Contains(lower, "top"):
			choice = 1
		case strings.Contains(lower, "middle"):
			choice = 2
		case strings.Contains(lower, "bottom"):
			choice = 3
		}
	case optionCount >= 4:
		if m := optionNumber.FindStringSubmatch(lower); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil {
				choice = n
			}
		}
	}

	if choice > visible || choice < 1 {
		return 1
	}
	return choice
}
