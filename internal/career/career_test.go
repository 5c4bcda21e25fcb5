package career

import (
	"context"
	"image/color"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"uma-bot/internal/config"
	"uma-bot/internal/ocr"
	"uma-bot/internal/races"
	"uma-bot/internal/scoring"
	"uma-bot/internal/screen"
)

func TestState_String(t *testing.T) {
	assert.Equal(t, "Training", StateTraining.String())
	assert.Equal(t, "Unknown", State(99).String())
}

func TestMood(t *testing.T) {
	img := filled(color.Black)

	m := newFakeMatcher()
	m.confidence["mood/good"] = 0.7
	m.confidence["mood/great"] = 0.7
	assert.Equal(t, "GOOD", Mood(img, m), "ties keep the worse mood")

	m.confidence["mood/great"] = 0.9
	assert.Equal(t, "GREAT", Mood(img, m))

	low := newFakeMatcher()
	low.confidence["mood/normal"] = 0.5
	assert.Equal(t, UnknownMood, Mood(img, low))
}

func TestReadGame(t *testing.T) {
	img := filled(color.White)
	m := newFakeMatcher()
	m.energyErr = assert.AnError
	m.confidence["mood/bad"] = 0.8
	m.show("buttons/infirmary_btn2", screen.NewBox(100, 1500, 80, 80))
	r := &fakeReader{
		year:     "Classic Year Late Jun",
		turn:     ocr.Turn{Number: 3},
		criteria: "criteria met",
		stat:     250,
		points:   420,
	}

	gs := ReadGame(img, m, r)
	assert.Equal(t, "Classic Year Late Jun", gs.Year)
	assert.Equal(t, "BAD", gs.Mood)
	assert.Equal(t, -1.0, gs.Energy)
	assert.True(t, gs.CriteriaMet)
	assert.Equal(t, 420, gs.SkillPoints)
	assert.Len(t, gs.Stats, len(scoring.Stats))
	assert.Equal(t, 250, gs.Stats[scoring.Wit])
	assert.True(t, gs.Infirmary)
	assert.Equal(t, "Classic Year Late Jun|3", gs.DayKey())

	dark := ReadGame(filled(color.Black), m, r)
	assert.False(t, dark.Infirmary, "a greyed out infirmary button is not lit")
}

func TestGameState_Phases(t *testing.T) {
	assert.True(t, GameState{Year: "Junior Year Pre-Debut"}.PreDebut())
	assert.False(t, GameState{Year: "Junior Year Late Aug"}.PreDebut())
	assert.True(t, GameState{Year: scoring.FinaleYear, Turn: ocr.Turn{RaceDay: true}}.Finale())
	assert.False(t, GameState{Year: scoring.FinaleYear, Turn: ocr.Turn{Number: 2}}.Finale())
}

func TestBondLevel(t *testing.T) {
	icon := screen.NewBox(900, 400, 60, 60)
	assert.Equal(t, 4, BondLevel(filled(color.RGBA{255, 173, 30, 255}), icon))
	assert.Equal(t, 2, BondLevel(filled(color.RGBA{40, 190, 250, 255}), icon))
	assert.Equal(t, 1, BondLevel(filled(color.RGBA{100, 100, 110, 255}), icon))
}

func TestReadTraining(t *testing.T) {
	img := filled(color.RGBA{255, 173, 30, 255})
	m := newFakeMatcher()
	m.show("icons/support_card_type_spd",
		screen.NewBox(900, 300, 60, 60),
		screen.NewBox(905, 305, 60, 60),
		screen.NewBox(900, 600, 60, 60),
	)
	m.show("icons/support_card_type_wit", screen.NewBox(900, 900, 60, 60))
	m.show("icons/support_card_type_pwr", screen.NewBox(100, 900, 60, 60))
	m.show("icons/hint", screen.NewBox(900, 800, 40, 40))

	opt := ReadTraining(img, scoring.Speed, m, false)
	assert.Equal(t, scoring.Speed, opt.Stat)
	assert.Equal(t, 2, opt.SupportCounts[scoring.Speed])
	assert.Equal(t, 1, opt.SupportCounts[scoring.Wit])
	assert.Equal(t, 0, opt.SupportCounts[scoring.Power], "icons outside the support column are ignored")
	require.Len(t, opt.Cards[scoring.Speed], 2)
	assert.Equal(t, 4, opt.Cards[scoring.Speed][0].BondLevel)
	assert.True(t, opt.Hint)
	assert.Zero(t, opt.SpiritCount)
}

func TestReadTraining_Unity(t *testing.T) {
	img := filled(color.Black)
	m := newFakeMatcher()
	m.show("unity/spirit_training",
		screen.NewBox(950, 300, 40, 40),
		screen.NewBox(950, 600, 40, 40),
		screen.NewBox(950, 900, 40, 40),
		screen.NewBox(100, 1500, 40, 40),
		screen.NewBox(300, 1500, 40, 40),
	)
	m.show("unity/spirit_burst",
		screen.NewBox(950, 1000, 40, 40),
		screen.NewBox(100, 1700, 40, 40),
	)
	// Marker below the first spirit icon only.
	m.show("unity/burst_ed", screen.NewBox(950, 380, 20, 20))

	opt := ReadTraining(img, scoring.Guts, m, true)
	assert.Equal(t, 2, opt.SpiritCount, "icons outside the support panel are ignored")
	assert.Equal(t, 1, opt.SpiritExtraCount)
	assert.Equal(t, 1, opt.SpiritBurstCount)
}

func TestReadTraining_UnityIgnoresIconsOutsidePanel(t *testing.T) {
	m := newFakeMatcher()
	m.show("unity/spirit_training", screen.NewBox(100, 1500, 40, 40), screen.NewBox(300, 1500, 40, 40))
	m.show("unity/spirit_burst", screen.NewBox(100, 1700, 40, 40))

	opt := ReadTraining(filled(color.Black), scoring.Speed, m, true)
	assert.Zero(t, opt.SpiritCount)
	assert.Zero(t, opt.SpiritBurstCount)
	assert.Zero(t, scoring.DefaultRules().Score(opt, ""))
}

func TestEventChoices(t *testing.T) {
	m := newFakeMatcher()
	m.show("icons/event_choice_1",
		screen.NewBox(20, 900, 60, 60),
		screen.NewBox(20, 600, 60, 60),
		screen.NewBox(22, 610, 60, 60),
		screen.NewBox(600, 700, 60, 60),
	)

	choices := EventChoices(filled(color.White), m)
	require.Len(t, choices, 2)
	assert.Equal(t, 600, choices[0].Y)
	assert.Equal(t, 900, choices[1].Y)

	assert.Empty(t, EventChoices(filled(color.Black), m), "dark choices are not selectable")
}

func TestPickOpponent(t *testing.T) {
	opponents := []RankedBox{
		{Rank: "A", Box: screen.NewBox(0, 300, 10, 10)},
		{Rank: "C", Box: screen.NewBox(0, 600, 10, 10)},
		{Rank: "E", Box: screen.NewBox(0, 900, 10, 10)},
	}

	got, ok := PickOpponent("B", opponents)
	require.True(t, ok)
	assert.Equal(t, "C", got.Rank)

	got, ok = PickOpponent("A", opponents)
	require.True(t, ok)
	assert.Equal(t, "A", got.Rank)

	_, ok = PickOpponent("S", nil)
	assert.False(t, ok)

	_, ok = PickOpponent("?", opponents)
	assert.False(t, ok)
}

func TestDetectRanks(t *testing.T) {
	m := newFakeMatcher()
	m.show("unity/team_b", screen.NewBox(50, 100, 40, 40))
	m.show("unity/opponent_c", screen.NewBox(50, 400, 40, 40), screen.NewBox(55, 405, 40, 40))
	img := filled(color.Black)

	team := DetectRanks(img, m, "team", teamRanks, teamRankRegion)
	require.Len(t, team, 1)
	assert.Equal(t, "B", team[0].Rank)

	opponents := DetectRanks(img, m, "opponent", opponentRanks, opponentRankRegion)
	require.Len(t, opponents, 1)
	assert.Equal(t, "C", opponents[0].Rank)
}

func TestShouldRestart(t *testing.T) {
	assert.True(t, ShouldRestart(0, 5, 0, 0))
	assert.False(t, ShouldRestart(5, 5, 0, 0), "restart limit reached")
	assert.True(t, ShouldRestart(1, 5, 100000, 200000))
	assert.False(t, ShouldRestart(1, 5, 200000, 200000), "fan goal reached")
}

func TestController_TapImage(t *testing.T) {
	h := newHarness(nil)
	ctx := context.Background()

	ok, err := h.bot.ctl.TapImage(ctx, "buttons/ok_btn", 0.8, 3)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 3, h.dev.screenshots)
	assert.Empty(t, h.dev.taps)

	h.match.show("buttons/ok_btn", screen.NewBox(400, 1000, 200, 80))
	ok, err = h.bot.ctl.TapImage(ctx, "buttons/ok_btn", 0.8, 3)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []screen.Point{screen.Pt(500, 1040)}, h.dev.taps)
}

func TestController_WaitImage(t *testing.T) {
	h := newHarness(nil)
	ctx := context.Background()

	_, ok, err := h.bot.ctl.WaitImage(ctx, "buttons/next_btn", 0.8, 2*time.Second)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 4, h.dev.screenshots)

	h.dev.shotErr = assert.AnError
	_, _, err = h.bot.ctl.WaitImage(ctx, "buttons/next_btn", 0.8, time.Second)
	assert.ErrorIs(t, err, assert.AnError)
}

func TestController_Hold(t *testing.T) {
	h := newHarness(nil)
	for i := 0; i < 20; i++ {
		require.NoError(t, h.bot.ctl.Hold(context.Background(), screen.Pt(1, 1), time.Second, 3*time.Second))
	}
	require.Len(t, h.dev.presses, 20)
	for _, d := range h.dev.presses {
		assert.GreaterOrEqual(t, d, time.Second)
		assert.Less(t, d, 3*time.Second)
	}
}

func TestController_CancelledWait(t *testing.T) {
	h := newHarness(nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, h.bot.ctl.DoubleTap(ctx, screen.Pt(1, 1), "x"), context.Canceled)
	assert.Len(t, h.dev.taps, 1)
}

func TestBot_LowMood(t *testing.T) {
	h := newHarness(nil)

	assert.False(t, h.bot.lowMood(GameState{Mood: "GOOD", Energy: 95}), "energy too high for recreation")
	assert.True(t, h.bot.lowMood(GameState{Mood: "GOOD", Energy: 50}))
	assert.False(t, h.bot.lowMood(GameState{Mood: "GREAT", Energy: 50}))
	assert.False(t, h.bot.lowMood(GameState{Mood: UnknownMood, Energy: 50}))
}

func TestBot_LowEnergy(t *testing.T) {
	h := newHarness(nil)

	assert.True(t, h.bot.lowEnergy(GameState{Energy: 10}))
	assert.False(t, h.bot.lowEnergy(GameState{Energy: 30}))
	assert.False(t, h.bot.lowEnergy(GameState{Energy: -1}), "unknown energy never rests")
}

func TestBot_CustomRaceMemo(t *testing.T) {
	h := newHarness(func(cfg *config.Config) { cfg.Racing.DoCustomRace = true })
	h.bot.custom = races.CustomRaces{"Senior Year Early Apr": "Osaka Hai"}
	gs := GameState{Year: "Senior Year Early Apr", Turn: ocr.Turn{Number: 12}}

	assert.True(t, h.bot.customRacePlanned(gs))

	h.bot.lastFailedCustomDay = gs.DayKey()
	assert.False(t, h.bot.customRacePlanned(gs), "failed day is not retried")

	gs.Turn.Number = 11
	assert.True(t, h.bot.customRacePlanned(gs))

	assert.False(t, h.bot.customRacePlanned(GameState{Year: "Senior Year Late Apr"}))
}

func TestAnalyze(t *testing.T) {
	cfg := config.Default()
	img := filled(color.RGBA{255, 173, 30, 255})

	m := newFakeMatcher()
	m.show("buttons/ok_btn", screen.NewBox(400, 1000, 200, 80))
	rep := Analyze(img, m, &fakeReader{}, cfg, scoring.DefaultRules())
	assert.Equal(t, StateOKDialog, rep.State)
	assert.False(t, rep.Lobby)

	lobby := newFakeMatcher()
	lobby.show("ui/tazuna_hint", screen.NewBox(100, 100, 50, 50))
	rep = Analyze(img, lobby, &fakeReader{year: "Classic Year Early Jan"}, cfg, scoring.DefaultRules())
	assert.True(t, rep.Lobby)
	assert.Equal(t, "Classic Year Early Jan", rep.Game.Year)
	assert.Nil(t, rep.Training)

	training := newFakeMatcher()
	training.show("icons/support_card_type_pwr", screen.NewBox(900, 300, 60, 60))
	rep = Analyze(img, training, &fakeReader{failureStat: scoring.Power, failureRate: 12}, cfg, scoring.DefaultRules())
	require.NotNil(t, rep.Training)
	assert.Equal(t, StateNotInLobby, rep.State)
	assert.Equal(t, scoring.Power, rep.Training.Stat)
	assert.Equal(t, 12, rep.Training.Failure)
	assert.Equal(t, 1, rep.Training.SupportCounts[scoring.Power])
	assert.Positive(t, rep.Training.Score)
}
