package scoring

import (
	"sort"
)

// Selector defaults.
const (
	DefaultMaxFailure = 15
	DefaultMinScore   = 1.0
	DefaultStatCap    = 1200
)

// Selector holds the thresholds used to pick a training.
type Selector struct {
	MaxFailure int
	// MinScore is the per-stat minimum; stats missing from the map use DefaultMin.
	MinScore   map[string]float64
	DefaultMin float64
	Priority   []string
	// StatCaps is the per-stat cap; stats missing from the map use DefaultCap.
	StatCaps   map[string]int
	DefaultCap int
}

// DefaultSelector returns a selector with the built-in thresholds.
func DefaultSelector() Selector {
	return Selector{
		MaxFailure: DefaultMaxFailure,
		MinScore:   map[string]float64{},
		DefaultMin: DefaultMinScore,
		Priority:   DefaultPriority,
		StatCaps:   map[string]int{},
		DefaultCap: DefaultStatCap,
	}
}

// Relaxed returns a copy of s that accepts any score.
func (s Selector) Relaxed() Selector {
	out := s
	out.MinScore = map[string]float64{}
	out.DefaultMin = 0
	return out
}

func (s Selector) minScore(stat string) float64 {
	if v, ok := s.MinScore[stat]; ok {
		return v
	}
	return s.DefaultMin
}

func (s Selector) statCap(stat string) int {
	if v, ok := s.StatCaps[stat]; ok {
		return v
	}
	if s.DefaultCap > 0 {
		return s.DefaultCap
	}
	return DefaultStatCap
}

func (s Selector) priorityIndex(stat string) int {
	for i, p := range s.Priority {
		if p == stat {
			return i
		}
	}
	return len(s.Priority)
}

// FilterSafe keeps options whose failure chance is at or below the ceiling.
func (s Selector) FilterSafe(opts []TrainingOption) []TrainingOption {
	out := make([]TrainingOption, 0, len(opts))
	for _, o := range opts {
		if o.Failure <= s.MaxFailure {
			out = append(out, o)
		}
	}
	return out
}

// FilterByStatCaps keeps options whose stat is still below its cap. Stats
// without a known current value are kept.
func (s Selector) FilterByStatCaps(opts []TrainingOption, current map[string]int) []TrainingOption {
	if len(current) == 0 {
		return opts
	}
	out := make([]TrainingOption, 0, len(opts))
	for _, o := range opts {
		v, ok := current[o.Stat]
		if ok && v >= s.statCap(o.Stat) {
			continue
		}
		out = append(out, o)
	}
	return out
}

// Rank applies every filter and returns the surviving options best first:
// score descending, ties broken by the priority list.
func (s Selector) Rank(opts []TrainingOption, current map[string]int) []TrainingOption {
	safe := s.FilterByStatCaps(s.FilterSafe(opts), current)

	ranked := make([]TrainingOption, 0, len(safe))
	for _, o := range safe {
		if o.Score >= s.minScore(o.Stat) {
			ranked = append(ranked, o)
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return s.priorityIndex(ranked[i].Stat) < s.priorityIndex(ranked[j].Stat)
	})
	return ranked
}

// Choose returns the best training stat, or false when nothing qualifies.
func (s Selector) Choose(opts []TrainingOption, current map[string]int) (string, bool) {
	if len(opts) == 0 {
		return "", false
	}
	ranked := s.Rank(opts, current)
	if len(ranked) == 0 {
		return "", false
	}
	return ranked[0].Stat, true
}

// AllUnsafe reports whether no option is at or below the failure ceiling.
// An empty list counts as unsafe.
func AllUnsafe(opts []TrainingOption, maxFailure int) bool {
	for _, o := range opts {
		if o.Failure <= maxFailure {
			return false
		}
	}
	return true
}

// Find returns the option for stat.
func Find(opts []TrainingOption, stat string) (TrainingOption, bool) {
	for _, o := range opts {
		if o.Stat == stat {
			return o, true
		}
	}
	return TrainingOption{}, false
}
