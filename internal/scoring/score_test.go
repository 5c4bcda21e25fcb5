package scoring

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScore_RainbowPlusHint(t *testing.T) {
	opt := TrainingOption{
		Stat:  Speed,
		Cards: map[string][]Card{Speed: {{BondLevel: 5}}},
		Hint:  true,
	}

	assert.Equal(t, 1.3, DefaultRules().Score(opt, ""))
}

func TestScore_CardWeights(t *testing.T) {
	rules := DefaultRules()

	tests := []struct {
		name  string
		cards map[string][]Card
		hint  bool
		want  float64
	}{
		{"empty", nil, false, 0},
		{"hint only", nil, true, 0.3},
		{"low bond other type", map[string][]Card{Power: {{BondLevel: 2}}}, false, 0.7},
		{"high bond other type", map[string][]Card{Power: {{BondLevel: 5}}}, false, 0.0},
		{"low bond same type", map[string][]Card{Speed: {{BondLevel: 3}}}, false, 0.7},
		{"friend card low", map[string][]Card{Friend: {{BondLevel: 1}}}, false, 0.7},
		{"mixed", map[string][]Card{
			Speed: {{BondLevel: 4}, {BondLevel: 1}},
			Wit:   {{BondLevel: 2}},
		}, true, 2.7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opt := TrainingOption{Stat: Speed, Cards: tt.cards, Hint: tt.hint}
			assert.InDelta(t, tt.want, rules.Score(opt, ""), 1e-9)
		})
	}
}

func TestScore_MonotonicInBondForMatchingCard(t *testing.T) {
	rules := DefaultRules()
	// The monotonic property needs the rainbow weight to dominate the low-bond weight.
	require.GreaterOrEqual(t, rules.RainbowSupport, rules.NotRainbowLow)

	prev := -1.0
	for bond := 1; bond <= 5; bond++ {
		opt := TrainingOption{Stat: Guts, Cards: map[string][]Card{Guts: {{BondLevel: bond}}}}
		s := rules.Score(opt, "")
		assert.GreaterOrEqual(t, s, prev, "bond %d", bond)
		prev = s
	}
}

func TestScore_Spirit(t *testing.T) {
	rules := DefaultRules()
	opt := TrainingOption{Stat: Wit, SpiritCount: 2, SpiritExtraCount: 1, SpiritBurstCount: 1}

	assert.InDelta(t, 0.5*2+1.5+1.0, rules.Score(opt, "Senior Year Early Jun"), 1e-9)
	assert.InDelta(t, 1.0, rules.Score(opt, FinaleYear), 1e-9)

	rules.SpiritBurstStats = []string{Speed}
	assert.InDelta(t, 0.0, rules.Score(opt, FinaleYear), 1e-9)
}

func TestParseRules(t *testing.T) {
	rules, err := ParseRules([]byte(`{
		"scoring_rules": {
			"rainbow_support": {"points": 2.0},
			"hint": {"points": 0.5},
			"spririt_training": {"points": 0.25}
		}
	}`))
	require.NoError(t, err)

	assert.Equal(t, 2.0, rules.RainbowSupport)
	assert.Equal(t, 0.5, rules.Hint)
	assert.Equal(t, 0.25, rules.SpiritTraining)
	assert.Equal(t, 0.7, rules.NotRainbowLow)
	assert.Equal(t, 0.0, rules.NotRainbowHigh)
}

func TestParseRules_ZeroIsKept(t *testing.T) {
	rules, err := ParseRules([]byte(`{"scoring_rules": {"not_rainbow_support_low": {"points": 0}}}`))
	require.NoError(t, err)
	assert.Equal(t, 0.0, rules.NotRainbowLow)
}

func TestLoadRules_MissingFileFallsBack(t *testing.T) {
	rules, err := LoadRules(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
	assert.Equal(t, DefaultRules(), rules)
}

func TestLoadRules_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "training_score.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"scoring_rules":{"hint":{"points":1}}}`), 0644))

	rules, err := LoadRules(path)
	require.NoError(t, err)
	assert.Equal(t, 1.0, rules.Hint)
}
