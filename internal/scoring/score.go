package scoring

import (
	"math"
	"slices"
)

// FinaleYear is the year label of the last training block before the URA finale.
const FinaleYear = "Finale Underway"

// Card is one support card detected on a training.
type Card struct {
	BondLevel int `json:"bond_level"`
}

// TrainingOption is everything the training screen showed for one stat.
type TrainingOption struct {
	Stat          string            `json:"stat"`
	SupportCounts map[string]int    `json:"support_counts"`
	Cards         map[string][]Card `json:"support_detail"`
	Hint          bool              `json:"hint"`
	Failure       int               `json:"failure"`

	// Unity cup icons; always zero in URA mode.
	SpiritCount      int `json:"spirit_count,omitempty"`
	SpiritBurstCount int `json:"spirit_burst_count,omitempty"`
	SpiritExtraCount int `json:"spirit_extra_count,omitempty"`

	Score float64 `json:"score"`
}

// Score computes the desirability of a training.
//
// A card of the trained stat with bond 4 or more is a rainbow card. Other
// cards add the low-bond weight below bond 4 and the high-bond weight
// otherwise. The hint weight is added once. Spirit icons add per-icon weights,
// except that spirit training icons are ignored during the finale year.
// The result is rounded to two decimals.
func (r Rules) Score(opt TrainingOption, year string) float64 {
	score := 0.0

	for cardType, cards := range opt.Cards {
		for _, c := range cards {
			switch {
			case cardType == opt.Stat && c.BondLevel >= 4:
				score += r.RainbowSupport
			case c.BondLevel < 4:
				score += r.NotRainbowLow
			default:
				score += r.NotRainbowHigh
			}
		}
	}

	if opt.Hint {
		score += r.Hint
	}

	if year != FinaleYear {
		score += r.SpiritTraining * float64(opt.SpiritCount)
		score += r.SpiritTrainingExtra * float64(opt.SpiritExtraCount)
	}

	if opt.SpiritBurstCount > 0 && (len(r.SpiritBurstStats) == 0 || slices.Contains(r.SpiritBurstStats, opt.Stat)) {
		score += r.SpiritBurst * float64(opt.SpiritBurstCount)
	}

	return round2(score)
}

// ScoreAll fills in Score on every option.
func (r Rules) ScoreAll(opts []TrainingOption, year string) {
	for i := range opts {
		opts[i].Score = r.Score(opts[i], year)
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
