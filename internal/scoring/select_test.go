package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func opts(scores map[string]float64, failure int) []TrainingOption {
	out := make([]TrainingOption, 0, len(scores))
	for _, stat := range Stats {
		if s, ok := scores[stat]; ok {
			out = append(out, TrainingOption{Stat: stat, Score: s, Failure: failure})
		}
	}
	return out
}

func TestChoose_Empty(t *testing.T) {
	_, ok := DefaultSelector().Choose(nil, nil)
	assert.False(t, ok)
}

func TestChoose_AllOverFailureCeiling(t *testing.T) {
	in := opts(map[string]float64{Speed: 3, Stamina: 2, Power: 2, Guts: 1, Wit: 4}, 20)

	_, ok := DefaultSelector().Choose(in, nil)
	assert.False(t, ok)
	assert.True(t, AllUnsafe(in, 15))
}

func TestChoose_HighestScoreWins(t *testing.T) {
	in := opts(map[string]float64{Speed: 1.4, Stamina: 2.1, Wit: 1.7}, 0)

	stat, ok := DefaultSelector().Choose(in, nil)
	assert.True(t, ok)
	assert.Equal(t, Stamina, stat)
}

func TestChoose_TieBrokenByPriority(t *testing.T) {
	in := opts(map[string]float64{Power: 2.0, Wit: 2.0, Guts: 2.0}, 0)

	stat, ok := DefaultSelector().Choose(in, nil)
	assert.True(t, ok)
	assert.Equal(t, Wit, stat)

	sel := DefaultSelector()
	sel.Priority = []string{Guts, Power}
	stat, _ = sel.Choose(in, nil)
	assert.Equal(t, Guts, stat)
}

func TestChoose_UnlistedStatsRankLast(t *testing.T) {
	in := opts(map[string]float64{Speed: 2.0, Power: 2.0}, 0)

	sel := DefaultSelector()
	sel.Priority = []string{Power}
	stat, _ := sel.Choose(in, nil)
	assert.Equal(t, Power, stat)
}

func TestChoose_NeverReturnsUnsafeStat(t *testing.T) {
	in := []TrainingOption{
		{Stat: Speed, Score: 5, Failure: 16},
		{Stat: Wit, Score: 1.1, Failure: 15},
	}

	stat, ok := DefaultSelector().Choose(in, nil)
	assert.True(t, ok)
	assert.Equal(t, Wit, stat)
	assert.False(t, AllUnsafe(in, 15))
}

func TestChoose_NeverReturnsCappedStat(t *testing.T) {
	in := opts(map[string]float64{Speed: 3, Stamina: 1.5}, 0)

	sel := DefaultSelector()
	sel.StatCaps = map[string]int{Speed: 600}

	stat, ok := sel.Choose(in, map[string]int{Speed: 600, Stamina: 300})
	assert.True(t, ok)
	assert.Equal(t, Stamina, stat)

	stat, _ = sel.Choose(in, map[string]int{Speed: 599})
	assert.Equal(t, Speed, stat)

	_, ok = sel.Choose(in, map[string]int{Speed: 1300, Stamina: 1200})
	assert.False(t, ok, "default cap of 1200 applies to stamina")
}

func TestChoose_MinScore(t *testing.T) {
	in := opts(map[string]float64{Speed: 0.7, Wit: 0.9}, 0)

	_, ok := DefaultSelector().Choose(in, nil)
	assert.False(t, ok)

	sel := DefaultSelector()
	sel.MinScore = map[string]float64{Wit: 0.5}
	stat, ok := sel.Choose(in, nil)
	assert.True(t, ok)
	assert.Equal(t, Wit, stat)

	stat, ok = DefaultSelector().Relaxed().Choose(in, nil)
	assert.True(t, ok)
	assert.Equal(t, Wit, stat)
}

func TestRank_Order(t *testing.T) {
	in := opts(map[string]float64{Speed: 1.0, Stamina: 3.0, Power: 2.0, Wit: 2.0}, 0)

	ranked := DefaultSelector().Rank(in, nil)
	var got []string
	for _, o := range ranked {
		got = append(got, o.Stat)
	}
	assert.Equal(t, []string{Stamina, Wit, Power, Speed}, got)
}

func TestAllUnsafe(t *testing.T) {
	assert.True(t, AllUnsafe(nil, 15))
	assert.False(t, AllUnsafe([]TrainingOption{{Stat: Speed, Failure: 0}}, 15))
}

func TestFind(t *testing.T) {
	in := opts(map[string]float64{Wit: 0.4}, 3)
	o, ok := Find(in, Wit)
	assert.True(t, ok)
	assert.Equal(t, 0.4, o.Score)
	_, ok = Find(in, Speed)
	assert.False(t, ok)
}
