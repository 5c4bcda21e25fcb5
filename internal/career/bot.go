package career

import (
	"context"
	"errors"
	"fmt"
	"image"
	"time"

	"uma-bot/internal/config"
	"uma-bot/internal/events"
	"uma-bot/internal/history"
	"uma-bot/internal/logger"
	"uma-bot/internal/races"
	"uma-bot/internal/scoring"
	"uma-bot/internal/screen"
	"uma-bot/internal/skills"
	"uma-bot/internal/status"
)

// ErrStop ends the run. Handlers wrap it with the reason.
var ErrStop = errors.New("stop requested")

// Pauses of the decision loop.
const (
	lobbySettle = 500 * time.Millisecond
	tickPause   = time.Second
	idlePause   = 500 * time.Millisecond
)

// Deps is everything the bot needs. Zero Status and History are replaced by
// a file-less tracker and a no-op recorder.
type Deps struct {
	Device     Device
	Matcher    Matcher
	Reader     Reader
	Config     *config.Config
	Rules      scoring.Rules
	Events     *events.Database
	Priorities events.Priorities
	Calendar   races.Calendar
	Custom     races.CustomRaces
	Skills     skills.Config
	Status     *status.Tracker
	History    history.Recorder
}

// Bot plays one career after another.
type Bot struct {
	cfg      *config.Config
	ctl      *Controller
	match    Matcher
	read     Reader
	rules    scoring.Rules
	selector scoring.Selector
	events   *events.Database
	prio     events.Priorities
	calendar races.Calendar
	custom   races.CustomRaces
	skills   skills.Config
	status   *status.Tracker
	history  history.Recorder

	// Custom race memo
	lastFailedCustomDay string

	// Restart bookkeeping
	restarts  int
	totalFans int
}

// New creates a bot.
func New(d Deps) *Bot {
	if d.Status == nil {
		d.Status = status.New("", d.Config.Mode)
	}
	if d.History == nil {
		d.History = history.Nop{}
	}
	if d.Events == nil {
		d.Events = events.LoadDatabase(nil)
	}
	return &Bot{
		cfg:      d.Config,
		ctl:      NewController(d.Device, d.Matcher, d.Status),
		match:    d.Matcher,
		read:     d.Reader,
		rules:    d.Rules,
		selector: d.Config.Training.Selector(),
		events:   d.Events,
		prio:     d.Priorities,
		calendar: d.Calendar,
		custom:   d.Custom,
		skills:   d.Skills,
		status:   d.Status,
		history:  d.History,
	}
}

// Run ticks until ctx is done or a handler asks to stop. Other errors are
// logged and the loop goes on.
func (b *Bot) Run(ctx context.Context) error {
	logger.LogInfo("Starting %s career loop", b.cfg.Mode)
	for {
		state, err := b.Tick(ctx)
		b.status.SetState(state.String())
		if serr := b.status.Save(); serr != nil {
			logger.LogDebug("Status not saved: %v", serr)
		}

		switch {
		case errors.Is(err, ErrStop):
			logger.LogInfo("Stopping: %v", err)
			return err
		case ctx.Err() != nil:
			return nil
		case err != nil:
			logger.LogError("%s: %v", state, err)
		}

		pause := time.Duration(0)
		switch {
		case state == StateNotInLobby:
			pause = idlePause
		case state >= StateInfirmary:
			pause = tickPause
		}
		if pause > 0 {
			if err := b.ctl.Wait(ctx, pause); err != nil {
				return nil
			}
		}
	}
}

func (b *Bot) screenDetectors() []screenDetector {
	return []screenDetector{
		{state: StateCareerComplete, template: "buttons/complete_career", threshold: 0.8, run: b.careerComplete},
		{state: StateClawMachine, template: "buttons/claw", threshold: 0.8, run: b.clawMachine},
		{state: StateOKDialog, template: "buttons/ok_btn", threshold: 0.8},
		{state: StateEvent, template: "icons/event_choice_1", threshold: 0.7, region: eventChoiceRegion, run: b.handleEvent},
		{state: StateUnityCup, template: "unity/unity_cup", threshold: 0.8, unityOnly: true, run: b.unityCup},
		{state: StateInspiration, template: "buttons/inspiration_btn", threshold: 0.5},
		{state: StateCancel, template: "buttons/cancel_lobby", threshold: 0.8},
		{state: StateClose, template: "buttons/close", threshold: 0.8, unityOnly: true},
		{state: StateNext, template: "buttons/next_btn", threshold: 0.8},
	}
}

func (b *Bot) lobbyDetectors() []lobbyDetector {
	return []lobbyDetector{
		{StateInfirmary, func(gs GameState) bool { return gs.Infirmary }, b.infirmary},
		{StateGoalRace, b.needsGoalRace, b.goalRace},
		{StateFinale, GameState.Finale, b.finale},
		{StateRaceDay, func(gs GameState) bool { return gs.Turn.RaceDay }, b.raceDay},
		{StateCustomRace, b.customRacePlanned, b.customRace},
		{StateLowMood, b.lowMood, b.moodRecovery},
		{StateLowEnergy, b.lowEnergy, b.rest},
		{StateTraining, func(GameState) bool { return true }, b.train},
	}
}

// Tick runs one decision on a fresh screenshot and reports which state
// matched.
func (b *Bot) Tick(ctx context.Context) (State, error) {
	img, err := b.ctl.Capture(ctx)
	if err != nil {
		return StateUnknown, err
	}

	for _, d := range b.screenDetectors() {
		if d.unityOnly && !b.cfg.Unity() {
			continue
		}
		hit, ok := b.match.Locate(img, d.template, d.threshold, d.region)
		if !ok {
			continue
		}
		logger.LogDebug("Detected %s", d.state)
		if d.run == nil {
			return d.state, b.ctl.Tap(ctx, hit.Center(), d.template)
		}
		done, err := d.run(ctx, img, hit)
		if err != nil || done {
			return d.state, err
		}
	}

	if _, ok := b.match.Locate(img, "ui/tazuna_hint", 0.8, Everywhere); !ok {
		logger.LogDebug("Not in the career lobby")
		return StateNotInLobby, nil
	}

	if err := b.ctl.Wait(ctx, lobbySettle); err != nil {
		return StateUnknown, err
	}
	img, err = b.ctl.Capture(ctx)
	if err != nil {
		return StateUnknown, err
	}
	gs := ReadGame(img, b.match, b.read)
	b.status.SetGame(gs.status())
	logger.LogInfo("%s | turn %s | mood %s | energy %.0f%% | goal %q (%s)",
		gs.Year, gs.Turn, gs.Mood, gs.Energy, gs.Goal, gs.Criteria)

	for _, d := range b.lobbyDetectors() {
		if !d.match(gs) {
			continue
		}
		done, err := d.run(ctx, img, gs)
		if err != nil || done {
			return d.state, err
		}
	}
	return StateTraining, nil
}

func (b *Bot) decide(format string, v ...interface{}) {
	msg := fmt.Sprintf(format, v...)
	logger.LogInfo("%s", msg)
	b.status.SetDecision(msg)
}

func (b *Bot) clawMachine(ctx context.Context, _ image.Image, _ screen.Box) (bool, error) {
	if err := b.ctl.Wait(ctx, time.Second); err != nil {
		return true, err
	}
	img, err := b.ctl.Capture(ctx)
	if err != nil {
		return true, err
	}
	box, ok := b.match.Locate(img, "buttons/claw", 0.8, Everywhere)
	if !ok {
		logger.LogDebug("Claw button gone")
		return true, nil
	}
	b.decide("Claw machine")
	return true, b.ctl.Hold(ctx, box.Center(), time.Second, 3*time.Second)
}

func (b *Bot) infirmary(ctx context.Context, _ image.Image, gs GameState) (bool, error) {
	b.decide("Debuffed, going to the infirmary")
	b.status.Count("infirmary")
	return true, b.ctl.Tap(ctx, gs.InfirmaryBox.Center(), "infirmary")
}

func (b *Bot) needsGoalRace(gs GameState) bool {
	return b.cfg.Racing.Enabled && !gs.CriteriaMet && !gs.PreDebut()
}

func (b *Bot) goalRace(ctx context.Context, _ image.Image, gs GameState) (bool, error) {
	b.decide("Goal criteria not met, looking for a race")
	raced, err := b.findAndRace(ctx, gs)
	if err != nil || raced {
		return true, err
	}
	logger.LogInfo("No goal race found, going back")
	if _, err := b.ctl.TapImage(ctx, "buttons/back_btn", 0.8, 1); err != nil {
		return true, err
	}
	return false, b.ctl.Wait(ctx, 500*time.Millisecond)
}

func (b *Bot) customRacePlanned(gs GameState) bool {
	if !b.cfg.Racing.DoCustomRace {
		return false
	}
	if b.lastFailedCustomDay == gs.DayKey() {
		logger.LogDebug("Custom race already failed on %s", gs.DayKey())
		return false
	}
	_, ok := b.custom.For(gs.Year)
	return ok
}

func (b *Bot) customRace(ctx context.Context, _ image.Image, gs GameState) (bool, error) {
	name, _ := b.custom.For(gs.Year)
	b.decide("Custom race %s", name)
	raced, err := b.doCustomRace(ctx, gs, name)
	if err != nil {
		return true, err
	}
	if raced {
		b.lastFailedCustomDay = ""
		return true, nil
	}
	b.lastFailedCustomDay = gs.DayKey()
	return false, nil
}

func (b *Bot) lowMood(gs GameState) bool {
	if !b.cfg.Training.MoodBelowMinimum(gs.Mood) {
		return false
	}
	if gs.Energy > 90 {
		logger.LogInfo("Mood is %s but energy is %.0f%%, skipping recreation", gs.Mood, gs.Energy)
		return false
	}
	return true
}

func (b *Bot) lowEnergy(gs GameState) bool {
	return gs.Energy >= 0 && gs.Energy < float64(b.cfg.Training.MinEnergy)
}
