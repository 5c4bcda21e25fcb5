package career

import (
	"context"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"uma-bot/internal/config"
	"uma-bot/internal/scoring"
	"uma-bot/internal/screen"
)

func TestTick_OKDialog(t *testing.T) {
	h := newHarness(nil)
	h.match.show("buttons/ok_btn", screen.NewBox(400, 1000, 200, 80))

	state, err := h.bot.Tick(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StateOKDialog, state)
	assert.Equal(t, []screen.Point{screen.Pt(500, 1040)}, h.dev.taps)
}

func TestTick_NotInLobby(t *testing.T) {
	h := newHarness(nil)

	state, err := h.bot.Tick(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StateNotInLobby, state)
	assert.Empty(t, h.dev.taps)
}

func TestTick_UnityOnlyDetectors(t *testing.T) {
	h := newHarness(nil)
	h.match.show("buttons/close", screen.NewBox(400, 1600, 200, 80))

	state, err := h.bot.Tick(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StateNotInLobby, state, "close is only tapped in unity mode")

	u := newHarness(func(cfg *config.Config) { cfg.Mode = config.ModeUnity })
	u.match.show("buttons/close", screen.NewBox(400, 1600, 200, 80))
	state, err = u.bot.Tick(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StateClose, state)
	assert.Len(t, u.dev.taps, 1)
}

func TestTick_EventNameUnreadableStops(t *testing.T) {
	h := newHarness(func(cfg *config.Config) { cfg.Event.StopOnDetectionFailure = true })
	h.match.show("icons/event_choice_1", screen.NewBox(20, 900, 60, 60))

	state, err := h.bot.Tick(context.Background())
	assert.ErrorIs(t, err, ErrStop)
	assert.Equal(t, StateEvent, state)
	assert.Empty(t, h.dev.taps)
}

func TestTick_UnknownEventTakesTopChoice(t *testing.T) {
	h := newHarness(nil)
	h.reader.title = "A Brand New Event"
	h.match.show("icons/event_choice_1",
		screen.NewBox(20, 1200, 60, 60),
		screen.NewBox(20, 900, 60, 60),
	)

	state, err := h.bot.Tick(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StateEvent, state)
	assert.Equal(t, []screen.Point{screen.Pt(50, 930)}, h.dev.taps)
	assert.Equal(t, 1, h.bot.status.Snapshot().Counters["event"])
}

func lobbyHarness(mutate func(cfg *config.Config)) *harness {
	h := newHarness(func(cfg *config.Config) {
		cfg.Racing.Enabled = false
		if mutate != nil {
			mutate(cfg)
		}
	})
	h.match.show("ui/tazuna_hint", screen.NewBox(100, 100, 50, 50))
	h.match.confidence["mood/great"] = 0.9
	return h
}

func TestTick_Infirmary(t *testing.T) {
	h := lobbyHarness(nil)
	h.match.show("buttons/infirmary_btn2", screen.NewBox(100, 1500, 80, 80))

	state, err := h.bot.Tick(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StateInfirmary, state)
	assert.Equal(t, []screen.Point{screen.Pt(140, 1540)}, h.dev.taps)
}

func TestTick_LowEnergyRests(t *testing.T) {
	h := lobbyHarness(nil)
	h.match.energy = 10
	h.match.show("buttons/rest_btn", screen.NewBox(200, 1500, 100, 100))

	state, err := h.bot.Tick(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StateLowEnergy, state)
	assert.Equal(t, []screen.Point{screen.Pt(250, 1550)}, h.dev.taps)

	snap := h.bot.status.Snapshot()
	assert.Equal(t, 1, snap.Counters["rest"])
	assert.Equal(t, 10.0, snap.Game.Energy)
}

func TestTick_LowMoodGoesOut(t *testing.T) {
	h := lobbyHarness(nil)
	h.match.confidence["mood/great"] = 0
	h.match.confidence["mood/normal"] = 0.9
	h.match.energy = 60
	h.match.show("buttons/recreation_btn", screen.NewBox(400, 1700, 100, 100))

	state, err := h.bot.Tick(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StateLowMood, state)
	assert.Equal(t, []screen.Point{screen.Pt(450, 1750)}, h.dev.taps)
}

func TestRun_StopsOnErrStop(t *testing.T) {
	h := newHarness(func(cfg *config.Config) { cfg.Event.StopOnDetectionFailure = true })
	h.match.show("icons/event_choice_1", screen.NewBox(20, 900, 60, 60))

	err := h.bot.Run(context.Background())
	assert.ErrorIs(t, err, ErrStop)
	assert.Equal(t, StateEvent.String(), h.bot.status.Snapshot().State)
}

func TestRun_ReturnsWhenCancelled(t *testing.T) {
	h := newHarness(nil)
	h.dev.img = filled(color.Black)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.NoError(t, h.bot.Run(ctx))
}

var (
	restTap     = screen.Pt(250, 1550)
	trainingTap = screen.Pt(550, 1750)
)

// trainingHarness sits in the lobby with the rest and training buttons
// visible.
func trainingHarness(mutate func(cfg *config.Config)) *harness {
	h := lobbyHarness(mutate)
	h.match.show("buttons/rest_btn", screen.NewBox(200, 1500, 100, 100))
	h.match.show("buttons/training_btn", screen.NewBox(500, 1700, 100, 100))
	return h
}

// trainingOptions builds one option per training in hover order.
func trainingOptions(failure int, scores ...float64) []scoring.TrainingOption {
	opts := make([]scoring.TrainingOption, len(scores))
	for i, score := range scores {
		opts[i] = scoring.TrainingOption{Stat: trainingOrder[i], Score: score, Failure: failure}
	}
	return opts
}

func tripleTap(stat string) []screen.Point {
	p := trainingButtons[stat]
	return []screen.Point{p, p, p}
}

func TestTick_PoorTrainingRests(t *testing.T) {
	h := trainingHarness(func(cfg *config.Config) { cfg.Training.DoRaceWhenBadTraining = false })
	h.reader.failureStat = scoring.Speed
	h.reader.failureRate = 5

	state, err := h.bot.Tick(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StateTraining, state)
	assert.Equal(t, 5, h.dev.swipes, "every training is hovered")
	assert.Equal(t, []screen.Point{trainingTap, restTap}, h.dev.taps)
	assert.Equal(t, 1, h.bot.status.Snapshot().Counters["rest"])
}

func TestBadTraining(t *testing.T) {
	spring := GameState{Year: "Senior Year Early Apr"}
	summer := GameState{Year: "Classic Year Early Jul"}

	tests := []struct {
		name     string
		mutate   func(cfg *config.Config)
		gs       GameState
		opts     []scoring.TrainingOption
		wantTaps []screen.Point
		decision string
	}{
		{
			name:     "racing on bad training off",
			mutate:   func(cfg *config.Config) { cfg.Training.DoRaceWhenBadTraining = false },
			gs:       spring,
			opts:     trainingOptions(5, 0.5, 0.5, 0.5, 0.5, 0.5),
			wantTaps: []screen.Point{restTap},
			decision: "Racing on bad training disabled, resting",
		},
		{
			name:     "all unsafe with weak wit",
			gs:       spring,
			opts:     trainingOptions(40, 0.5, 0.5, 0.5, 0.5, 0.5),
			wantTaps: []screen.Point{restTap},
			decision: "Every training is unsafe and wit scores 0.50, resting",
		},
		{
			name:     "all unsafe with strong wit",
			gs:       spring,
			opts:     trainingOptions(40, 0.5, 0.5, 0.5, 0.5, 1.5),
			wantTaps: []screen.Point{restTap},
			decision: "No viable training, every training is unsafe, resting",
		},
		{
			name:     "no races in summer",
			gs:       summer,
			opts:     trainingOptions(5, 0.2, 0.4, 0.9, 0.1, 0.3),
			wantTaps: tripleTap(scoring.Power),
			decision: "Training PWR anyway, no races this turn",
		},
		{
			name:     "race not found",
			gs:       spring,
			opts:     trainingOptions(5, 0.2, 0.8, 0.1, 0.1, 0.3),
			wantTaps: append([]screen.Point{trainingTap}, tripleTap(scoring.Stamina)...),
			decision: "Training STA anyway, no race found",
		},
		{
			name: "race not found and every stat capped",
			mutate: func(cfg *config.Config) {
				cfg.Training.StatCaps = map[string]int{scoring.Speed: 100, scoring.Stamina: 100}
			},
			gs: GameState{
				Year:  spring.Year,
				Stats: map[string]int{scoring.Speed: 300, scoring.Stamina: 300},
			},
			opts:     trainingOptions(5, 0.2, 0.8),
			wantTaps: []screen.Point{trainingTap, restTap},
			decision: "No viable training, no race found, resting",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := trainingHarness(tt.mutate)

			require.NoError(t, h.bot.badTraining(context.Background(), tt.gs, tt.opts))
			assert.Equal(t, tt.wantTaps, h.dev.taps)
			assert.Equal(t, tt.decision, h.bot.status.Snapshot().Decision)
		})
	}
}

func TestRetryIfFailed(t *testing.T) {
	clock := screen.NewBox(500, 800, 60, 60)

	t.Run("no lost race", func(t *testing.T) {
		h := newHarness(nil)
		retried, err := h.bot.retryIfFailed(context.Background())
		require.NoError(t, err)
		assert.False(t, retried)
	})

	t.Run("retry off stops the bot", func(t *testing.T) {
		h := newHarness(func(cfg *config.Config) { cfg.Racing.RetryRace = false })
		h.match.show("icons/clock", clock)

		retried, err := h.bot.retryIfFailed(context.Background())
		assert.ErrorIs(t, err, ErrStop)
		assert.False(t, retried)
		assert.Empty(t, h.dev.taps)
		assert.Equal(t, 1, h.bot.status.Snapshot().Counters["race_failed"])
	})

	t.Run("retry on taps try again", func(t *testing.T) {
		h := newHarness(nil)
		h.match.show("icons/clock", clock)
		h.match.show("buttons/try_again", screen.NewBox(600, 1600, 200, 80))

		retried, err := h.bot.retryIfFailed(context.Background())
		require.NoError(t, err)
		assert.True(t, retried)
		require.NotEmpty(t, h.dev.taps)
		assert.Equal(t, screen.Pt(700, 1640), h.dev.taps[0])
	})
}

func TestRun_StopsWhenLostRaceIsNotRetried(t *testing.T) {
	h := lobbyHarness(func(cfg *config.Config) {
		cfg.Racing.RetryRace = false
	})
	h.reader.turn.RaceDay = true
	h.match.show("buttons/race_day_btn", screen.NewBox(400, 1500, 200, 100))
	h.match.show("buttons/race_btn", screen.NewBox(400, 1700, 200, 100))
	h.match.show("buttons/view_results", screen.NewBox(100, 1700, 200, 100))
	h.match.show("icons/clock", screen.NewBox(500, 800, 60, 60))

	err := h.bot.Run(context.Background())
	assert.ErrorIs(t, err, ErrStop)
	assert.Equal(t, StateRaceDay.String(), h.bot.status.Snapshot().State)
}
