package career

import (
	"context"
	"fmt"
	"image"
	"sort"
	"strings"
	"time"

	"uma-bot/internal/logger"
	"uma-bot/internal/ocr"
	"uma-bot/internal/races"
	"uma-bot/internal/screen"
)

const (
	racePoll       = 200 * time.Millisecond
	racePrepPolls  = 100
	afterRacePolls = 150
	raceDayPolls   = 250
	raceListSwipes = 3
	raceListSwipe  = 240 * time.Millisecond
	strategyLit    = 160
	raceRetryPause = 5 * time.Second
	raceButtonWait = 10 * time.Second
)

// findAndRace enters the best calendar race for this turn.
func (b *Bot) findAndRace(ctx context.Context, gs GameState) (bool, error) {
	filter := races.FilterFor(b.cfg.Racing, gs.Goal)
	race, ok := b.calendar.Best(gs.Year, filter)
	if !ok {
		logger.LogInfo("No race on %s fits grades %v", gs.Year, filter.Grades)
		return false, nil
	}
	logger.LogInfo("Best race: %s (%s, %d fans)", race.Name, race.Grade, race.Fans)

	if ok, err := b.enterRaceList(ctx); err != nil || !ok {
		return false, err
	}
	return b.pickRace(ctx, b.calendar.Description(gs.Year, race.Name))
}

// doCustomRace enters the named race. On a miss it goes back to the lobby.
func (b *Bot) doCustomRace(ctx context.Context, gs GameState, name string) (bool, error) {
	if ok, err := b.enterRaceList(ctx); err != nil || !ok {
		return false, err
	}
	raced, err := b.pickRace(ctx, b.calendar.Description(gs.Year, name))
	if err != nil || raced {
		return raced, err
	}

	logger.LogInfo("Custom race %s not in the list, going back", name)
	ok, err := b.ctl.TapImage(ctx, "buttons/back_btn", 0.6, 3)
	if err != nil {
		return false, err
	}
	if !ok {
		if err := b.ctl.Tap(ctx, raceBackFallback, "back"); err != nil {
			return false, err
		}
	}
	return false, b.ctl.Wait(ctx, 500*time.Millisecond)
}

// pickRace selects a maiden race when one is listed, else the row whose
// text contains description, and runs it.
func (b *Bot) pickRace(ctx context.Context, description string) (bool, error) {
	ok, err := b.selectMaiden(ctx)
	if err != nil {
		return false, err
	}
	if !ok {
		if ok, err = b.searchRaceList(ctx, description); err != nil || !ok {
			return false, err
		}
	}
	return b.runSelectedRace(ctx)
}

func (b *Bot) enterRaceList(ctx context.Context) (bool, error) {
	ok, err := b.ctl.TapImage(ctx, "buttons/races_btn", 0.8, 10)
	if err != nil || !ok {
		if !ok && err == nil {
			logger.LogWarn("Races button not found")
		}
		return false, err
	}
	if err := b.ctl.Wait(ctx, 500*time.Millisecond); err != nil {
		return false, err
	}
	if _, err := b.ctl.TapImage(ctx, "buttons/ok_btn", 0.5, 2); err != nil {
		return false, err
	}
	_, ok, err = b.ctl.WaitImage(ctx, "buttons/race_btn", 0.8, raceButtonWait)
	if err == nil && !ok {
		logger.LogWarn("Race list did not load")
	}
	return ok, err
}

func (b *Bot) selectMaiden(ctx context.Context) (bool, error) {
	img, err := b.ctl.Capture(ctx)
	if err != nil {
		return false, err
	}
	maidens := b.match.Find(img, "races/maiden", 0.8, Everywhere)
	if len(maidens) == 0 {
		return false, nil
	}
	sort.SliceStable(maidens, func(i, j int) bool { return maidens[i].Y < maidens[j].Y })
	b.decide("Maiden race listed, entering it")
	if err := b.ctl.Tap(ctx, maidens[0].Center(), "maiden race"); err != nil {
		return false, err
	}
	return true, b.ctl.Wait(ctx, 500*time.Millisecond)
}

// FindRaceRow looks for description in the text next to each fan icon of
// the race list.
func FindRaceRow(img image.Image, description string, m Matcher, r Reader) (screen.Point, bool) {
	if description == "" {
		return screen.Point{}, false
	}
	want := strings.ToLower(description)
	fans := screen.Dedupe(m.Find(img, "races/fan", 0.8, raceListRegion), iconDedupe)
	for _, fan := range fans {
		c := fan.Center()
		text := r.Text(img, raceTextOffset.Offset(c.X, c.Y), ocr.Options{Mode: ocr.ModeAuto})
		logger.LogDebug("Race row at %s: %q", c, text)
		if text != "" && strings.Contains(strings.ToLower(text), want) {
			return c, true
		}
	}
	return screen.Point{}, false
}

func (b *Bot) searchRaceList(ctx context.Context, description string) (bool, error) {
	for swipe := 0; swipe <= raceListSwipes; swipe++ {
		if swipe > 0 {
			if err := b.ctl.Swipe(ctx, raceSwipeFrom, raceSwipeTo, raceListSwipe); err != nil {
				return false, err
			}
			if err := b.ctl.Wait(ctx, time.Second); err != nil {
				return false, err
			}
		}
		img, err := b.ctl.Capture(ctx)
		if err != nil {
			return false, err
		}
		if p, ok := FindRaceRow(img, description, b.match, b.read); ok {
			if err := b.ctl.Tap(ctx, p, "race row"); err != nil {
				return false, err
			}
			return true, b.ctl.Wait(ctx, 500*time.Millisecond)
		}
	}
	logger.LogInfo("Race %q not found after %d swipes", description, raceListSwipes)
	return false, nil
}

func (b *Bot) runSelectedRace(ctx context.Context) (bool, error) {
	_, ok, err := b.ctl.WaitImage(ctx, "buttons/race_btn", 0.8, raceButtonWait)
	if err != nil || !ok {
		return false, err
	}
	for i := 0; i < 2; i++ {
		tapped, err := b.ctl.TapImage(ctx, "buttons/race_btn", 0.8, 1)
		if err != nil {
			return false, err
		}
		if tapped {
			if err := b.ctl.Wait(ctx, 500*time.Millisecond); err != nil {
				return false, err
			}
		}
	}
	b.status.Count("race")
	if err := b.racePrep(ctx); err != nil {
		return true, err
	}
	return true, b.afterRace(ctx)
}

// pollTap captures until template name shows up, tapping the middle of the
// screen between captures.
func (b *Bot) pollTap(ctx context.Context, name string, threshold float64, polls int) (screen.Box, bool, error) {
	for i := 0; i < polls; i++ {
		img, err := b.ctl.Capture(ctx)
		if err != nil {
			return screen.Box{}, false, err
		}
		if box, ok := b.match.Locate(img, name, threshold, Everywhere); ok {
			return box, true, nil
		}
		if err := b.advance(ctx); err != nil {
			return screen.Box{}, false, err
		}
	}
	return screen.Box{}, false, nil
}

// advance taps the middle of the screen to skip an animation. These taps
// are not recorded as actions.
func (b *Bot) advance(ctx context.Context) error {
	if err := b.ctl.dev.Tap(ctx, screenMiddle); err != nil {
		return err
	}
	return b.ctl.Wait(ctx, racePoll)
}

// racePrep waits for the paddock, fixes the running style and starts the
// race.
func (b *Bot) racePrep(ctx context.Context) error {
	results, ok, err := b.pollTap(ctx, "buttons/view_results", 0.8, racePrepPolls)
	if err != nil {
		return err
	}
	if !ok {
		logger.LogWarn("View results button not found")
		return nil
	}

	if err := b.ensureStrategy(ctx); err != nil {
		return err
	}
	if err := b.ctl.Tap(ctx, results.Center(), "view results"); err != nil {
		return err
	}

	for i := 0; i < racePrepPolls; i++ {
		img, err := b.ctl.Capture(ctx)
		if err != nil {
			return err
		}
		if next, ok := b.match.Locate(img, "buttons/next_btn", 0.8, Everywhere); ok {
			return b.ctl.Tap(ctx, next.Center(), "next")
		}
		if _, ok := b.match.Locate(img, "buttons/view_results", 0.8, Everywhere); !ok {
			return nil
		}
		if err := b.advance(ctx); err != nil {
			return err
		}
	}
	logger.LogWarn("Race did not start")
	return nil
}

// CurrentStrategy returns the lit running style in the paddock.
func CurrentStrategy(img image.Image, m Matcher) (string, bool) {
	best, bestLight := "", 0.0
	for _, name := range []string{"front", "late", "pace", "end"} {
		boxes := m.Find(img, "icons/"+name, 0.5, strategyRegion)
		if len(boxes) == 0 {
			continue
		}
		light := screen.MeanBrightness(img, boxes[0])
		if light >= strategyLit && light > bestLight {
			best, bestLight = name, light
		}
	}
	return best, best != ""
}

func (b *Bot) ensureStrategy(ctx context.Context) error {
	want := strings.ToLower(strings.TrimSpace(b.cfg.Racing.Strategy))
	if want == "" {
		return nil
	}
	if _, ok := strategyButtons[want]; !ok {
		logger.LogWarn("Unknown strategy %q", want)
		return nil
	}

	for attempt := 0; attempt < 2; attempt++ {
		img, err := b.ctl.Capture(ctx)
		if err != nil {
			return err
		}
		current, ok := CurrentStrategy(img, b.match)
		if !ok {
			logger.LogDebug("Running style not readable")
			return nil
		}
		if current == want {
			return nil
		}
		if attempt > 0 {
			break
		}
		logger.LogInfo("Changing running style from %s to %s", current, want)
		if ok, err := b.changeStrategy(ctx, want); err != nil || !ok {
			return err
		}
	}
	logger.LogWarn("Running style is still not %s", want)
	return nil
}

func (b *Bot) changeStrategy(ctx context.Context, want string) (bool, error) {
	change, ok, err := b.ctl.WaitImage(ctx, "buttons/strategy_change", 0.8, raceButtonWait)
	if err != nil || !ok {
		return false, err
	}
	if err := b.ctl.Tap(ctx, change.Center(), "strategy change"); err != nil {
		return false, err
	}
	confirm, ok, err := b.ctl.WaitImage(ctx, "buttons/confirm", 0.8, raceButtonWait)
	if err != nil || !ok {
		return false, err
	}
	if err := b.ctl.Tap(ctx, strategyButtons[want], want); err != nil {
		return false, err
	}
	if err := b.ctl.Tap(ctx, confirm.Center(), "confirm"); err != nil {
		return false, err
	}
	return true, b.ctl.Wait(ctx, time.Second)
}

// retryIfFailed handles the lost race screen. It stops the bot when retries
// are disabled.
func (b *Bot) retryIfFailed(ctx context.Context) (bool, error) {
	img, err := b.ctl.Capture(ctx)
	if err != nil {
		return false, err
	}
	if _, ok := b.match.Locate(img, "icons/clock", 0.8, Everywhere); !ok {
		return false, nil
	}
	b.status.Count("race_failed")
	if !b.cfg.Racing.RetryRace {
		return false, fmt.Errorf("race lost and retry_race is off: %w", ErrStop)
	}

	if again, ok := b.match.Locate(img, "buttons/try_again", 0.8, Everywhere); ok {
		if err := b.ctl.Wait(ctx, 500*time.Millisecond); err != nil {
			return false, err
		}
		if err := b.ctl.Tap(ctx, again.Center(), "try again"); err != nil {
			return false, err
		}
	} else if _, err := b.ctl.TapImage(ctx, "buttons/try_again", 0.8, 10); err != nil {
		return false, err
	}

	b.decide("Race lost, retrying")
	if err := b.ctl.Wait(ctx, raceRetryPause); err != nil {
		return false, err
	}
	return true, b.racePrep(ctx)
}

// afterRace taps through the results: next, then next2. A lost race found
// on the way is retried.
func (b *Bot) afterRace(ctx context.Context) error {
	for _, name := range []string{"buttons/next_btn", "buttons/next2_btn"} {
		found := false
		for i := 0; i < afterRacePolls && !found; i++ {
			img, err := b.ctl.Capture(ctx)
			if err != nil {
				return err
			}
			if box, ok := b.match.Locate(img, name, 0.7, Everywhere); ok {
				if err := b.ctl.Tap(ctx, box.Center(), name); err != nil {
					return err
				}
				found = true
				continue
			}
			if _, ok := b.match.Locate(img, "icons/clock", 0.8, Everywhere); ok {
				if _, err := b.retryIfFailed(ctx); err != nil {
					return err
				}
				continue
			}
			if err := b.advance(ctx); err != nil {
				return err
			}
		}
		if !found {
			logger.LogDebug("%s not found after the race", name)
		}
	}
	return nil
}

func (b *Bot) raceDay(ctx context.Context, _ image.Image, gs GameState) (bool, error) {
	b.decide("Race day")
	if err := b.checkSkillCap(ctx, gs); err != nil {
		return true, err
	}

	ok, err := b.ctl.TapImage(ctx, "buttons/race_day_btn", 0.8, 10)
	if err != nil || !ok {
		return true, err
	}
	if err := b.ctl.Wait(ctx, 500*time.Millisecond); err != nil {
		return true, err
	}
	if _, err := b.ctl.TapImage(ctx, "buttons/ok_btn", 0.6, 2); err != nil {
		return true, err
	}
	if _, ok, err := b.ctl.WaitImage(ctx, "buttons/race_btn", 0.8, raceButtonWait); err != nil || !ok {
		return true, err
	}

	started := false
	for attempt := 0; attempt < 3 && !started; attempt++ {
		tapped, err := b.ctl.TapImage(ctx, "buttons/race_btn", 0.7, 1)
		if err != nil {
			return true, err
		}
		if !tapped {
			if err := b.ctl.Wait(ctx, 500*time.Millisecond); err != nil {
				return true, err
			}
			continue
		}
		if err := b.ctl.Wait(ctx, 500*time.Millisecond); err != nil {
			return true, err
		}
		for i := 0; i < 2; i++ {
			if _, err := b.ctl.TapImage(ctx, "buttons/race_btn", 0.7, 5); err != nil {
				return true, err
			}
			if err := b.ctl.Wait(ctx, 200*time.Millisecond); err != nil {
				return true, err
			}
		}
		started = true
	}
	if !started {
		logger.LogWarn("Race button could not be tapped")
		return true, nil
	}
	if err := b.ctl.Wait(ctx, 800*time.Millisecond); err != nil {
		return true, err
	}
	b.status.Count("race")

	if err := b.racePrep(ctx); err != nil {
		return true, err
	}
	for i := 0; i < raceDayPolls; i++ {
		img, err := b.ctl.Capture(ctx)
		if err != nil {
			return true, err
		}
		if _, ok := b.match.Locate(img, "icons/clock", 0.8, Everywhere); ok {
			if _, err := b.retryIfFailed(ctx); err != nil {
				return true, err
			}
			continue
		}
		if _, ok := b.match.Locate(img, "buttons/next_btn", 0.8, Everywhere); ok {
			break
		}
		if err := b.advance(ctx); err != nil {
			return true, err
		}
	}
	return true, b.afterRace(ctx)
}

func (b *Bot) finale(ctx context.Context, _ image.Image, gs GameState) (bool, error) {
	b.decide("URA finale race")
	if err := b.checkSkillCap(ctx, gs); err != nil {
		return true, err
	}

	ok, err := b.ctl.TapImage(ctx, "buttons/race_ura", 0.8, 10)
	if err != nil {
		return true, err
	}
	if ok {
		if err := b.ctl.Wait(ctx, 500*time.Millisecond); err != nil {
			return true, err
		}
		for i := 0; i < 2; i++ {
			tapped, err := b.ctl.TapImage(ctx, "buttons/race_btn", 0.8, 2)
			if err != nil {
				return true, err
			}
			if tapped {
				if err := b.ctl.Wait(ctx, 500*time.Millisecond); err != nil {
					return true, err
				}
			}
		}
	}
	b.status.Count("race")

	if err := b.racePrep(ctx); err != nil {
		return true, err
	}
	if _, err := b.retryIfFailed(ctx); err != nil {
		return true, err
	}
	return true, b.afterRace(ctx)
}
