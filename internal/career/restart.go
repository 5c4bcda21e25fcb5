package career

import (
	"context"
	"fmt"
	"image"
	"sort"
	"time"

	"uma-bot/internal/history"
	"uma-bot/internal/logger"
	"uma-bot/internal/screen"
	"uma-bot/internal/skills"
)

const (
	homeRounds     = 8
	homeSpamPolls  = 125
	homeSpamPause  = 80 * time.Millisecond
	homeChecks     = 5
	setupWait      = 30 * time.Second
	lobbyWait      = 60 * time.Second
	skipConfidence = 0.7
)

// ShouldRestart reports whether another career may start after restarts
// careers and totalFans fans.
func ShouldRestart(restarts, limit, totalFans, fanGoal int) bool {
	if restarts >= limit {
		return false
	}
	return fanGoal <= 0 || totalFans < fanGoal
}

func (b *Bot) careerComplete(ctx context.Context, img image.Image, hit screen.Box) (bool, error) {
	rc := b.cfg.Restart
	fans := b.read.Number(img, careerFansRegion)
	points := b.read.Number(img, careerPointsRegion)
	b.totalFans += fans
	careers := b.status.CareerFinished()
	logger.LogSuccess("Career %d complete: %d fans (%d total), %d skill points left", careers, fans, b.totalFans, points)

	restart := rc.Enabled && ShouldRestart(b.restarts, rc.RestartTimes, b.totalFans, rc.TotalFansRequirement)
	rec := history.NewRecord(b.status.RunID(), b.cfg.Mode, fans, points, b.restarts, restart)
	if err := b.history.Record(ctx, rec); err != nil {
		logger.LogWarn("Career not recorded: %v", err)
	}

	if !rc.Enabled {
		return true, fmt.Errorf("career complete and restarting is off: %w", ErrStop)
	}
	if !restart {
		return true, fmt.Errorf("career complete after %d restarts with %d fans: %w", b.restarts, b.totalFans, ErrStop)
	}
	b.restarts++
	b.decide("Restarting career %d of %d", b.restarts, rc.RestartTimes)

	if points > 0 {
		if err := b.spendEndSkills(ctx); err != nil {
			return true, err
		}
	}
	if err := b.finishCareer(ctx, hit); err != nil {
		return true, err
	}
	return true, b.startCareer(ctx)
}

// spendEndSkills buys every affordable skill before the career closes.
func (b *Bot) spendEndSkills(ctx context.Context) error {
	ok, err := b.ctl.TapImage(ctx, "buttons/end_skill", 0.8, 10)
	if err != nil || !ok {
		return err
	}
	if err := b.ctl.Wait(ctx, 2*time.Second); err != nil {
		return err
	}
	available, points, err := b.scanSkills(ctx)
	if err != nil {
		return err
	}
	plan, total := skills.Affordable(skills.Plan(skills.Dedupe(available, 0.8), b.skills, true), points)
	logger.LogInfo("End of career skills: %d for %d of %d points", len(plan), total, points)
	if err := b.buySkills(ctx, plan, "buttons/end_skill"); err != nil {
		return err
	}
	_, err = b.ctl.TapImage(ctx, "buttons/back_btn", 0.8, 10)
	return err
}

// finishCareer closes the career and taps through the results until the
// home screen shows up.
func (b *Bot) finishCareer(ctx context.Context, complete screen.Box) error {
	if err := b.ctl.Tap(ctx, complete.Center(), "complete career"); err != nil {
		return err
	}
	if err := b.ctl.Wait(ctx, 500*time.Millisecond); err != nil {
		return err
	}
	if _, err := b.ctl.TapImage(ctx, "buttons/finish", 0.8, 10); err != nil {
		return err
	}
	if err := b.ctl.Wait(ctx, 500*time.Millisecond); err != nil {
		return err
	}

	for round := 0; round < homeRounds; round++ {
		img, err := b.ctl.Capture(ctx)
		if err != nil {
			return err
		}
		if _, ok := b.match.Locate(img, "buttons/Career_Home", 0.8, Everywhere); ok {
			return nil
		}

		for i := 0; i < homeSpamPolls; i++ {
			img, err := b.ctl.Capture(ctx)
			if err != nil {
				return err
			}
			for _, name := range []string{"buttons/next_btn", "buttons/close", "buttons/to_home"} {
				if box, ok := b.match.Locate(img, name, 0.8, Everywhere); ok {
					if err := b.ctl.dev.Tap(ctx, box.Center()); err != nil {
						return err
					}
					break
				}
			}
			if err := b.ctl.Wait(ctx, homeSpamPause); err != nil {
				return err
			}
		}

		for i := 0; i < homeChecks; i++ {
			img, err := b.ctl.Capture(ctx)
			if err != nil {
				return err
			}
			if box, ok := b.match.Locate(img, "buttons/Career_Home", 0.8, Everywhere); ok {
				return b.ctl.DoubleTap(ctx, box.Center(), "career home")
			}
			if err := b.ctl.Wait(ctx, time.Second); err != nil {
				return err
			}
		}
	}
	logger.LogWarn("Home screen not reached after the career")
	return nil
}

// startCareer sets up and starts a new career from the home screen.
func (b *Bot) startCareer(ctx context.Context) error {
	steps := []struct {
		name  string
		tries int
		pause time.Duration
	}{
		{"buttons/Career_Home", 10, 10 * time.Second},
		{"buttons/next_btn", 3, time.Second},
		{"buttons/next_btn", 3, time.Second},
		{"buttons/next_btn", 3, time.Second},
		{"buttons/Friend_support_choose", 10, time.Second},
	}
	for _, s := range steps {
		if _, err := b.ctl.TapImage(ctx, s.name, 0.8, s.tries); err != nil {
			return err
		}
		if err := b.ctl.Wait(ctx, s.pause); err != nil {
			return err
		}
	}

	if err := b.pickFollowedSupport(ctx); err != nil {
		return err
	}

	if _, err := b.ctl.TapImage(ctx, "buttons/start_career_1", 0.8, 10); err != nil {
		return err
	}
	if err := b.ctl.Wait(ctx, 500*time.Millisecond); err != nil {
		return err
	}
	if _, err := b.ctl.TapImage(ctx, "buttons/start_career_2", 0.8, 10); err != nil {
		return err
	}

	if skip, ok, err := b.ctl.WaitImage(ctx, "buttons/skip_btn", 0.8, setupWait); err != nil {
		return err
	} else if ok {
		if err := b.ctl.DoubleTap(ctx, skip.Center(), "skip"); err != nil {
			return err
		}
	}

	confirm, ok, err := b.ctl.WaitImage(ctx, "buttons/confirm", 0.8, setupWait)
	if err != nil {
		return err
	}
	if ok {
		if err := b.ctl.Tap(ctx, legacyConfirmTap, "legacy"); err != nil {
			return err
		}
		if err := b.ctl.Wait(ctx, 500*time.Millisecond); err != nil {
			return err
		}
		if err := b.setSkipSpeed(ctx); err != nil {
			return err
		}
		if err := b.ctl.Tap(ctx, confirm.Center(), "confirm"); err != nil {
			return err
		}
	}

	if _, ok, err := b.ctl.WaitImage(ctx, "ui/tazuna_hint", 0.8, lobbyWait); err != nil {
		return err
	} else if !ok {
		logger.LogWarn("New career did not reach the lobby")
		return nil
	}
	logger.LogSuccess("New career started")
	return nil
}

// pickFollowedSupport picks the topmost followed friend support card.
func (b *Bot) pickFollowedSupport(ctx context.Context) error {
	img, err := b.ctl.Capture(ctx)
	if err != nil {
		return err
	}
	following := b.match.Find(img, "icons/following", 0.8, Everywhere)
	if len(following) == 0 {
		logger.LogWarn("No followed support card listed")
		return nil
	}
	sort.SliceStable(following, func(i, j int) bool { return following[i].Y < following[j].Y })
	if err := b.ctl.Tap(ctx, following[0].Center(), "support card"); err != nil {
		return err
	}
	return b.ctl.Wait(ctx, time.Second)
}

// setSkipSpeed turns the skip toggle to double speed.
func (b *Bot) setSkipSpeed(ctx context.Context) error {
	img, err := b.ctl.Capture(ctx)
	if err != nil {
		return err
	}
	best, bestConf := "", skipConfidence
	for _, name := range []string{"buttons/skip_off", "buttons/skip_x1", "buttons/skip_x2"} {
		if c := b.match.MaxConfidence(img, name, Everywhere); c > bestConf {
			best, bestConf = name, c
		}
	}
	taps := map[string]int{"buttons/skip_off": 2, "buttons/skip_x1": 1}[best]
	if taps == 0 {
		return nil
	}
	box, ok := b.match.Locate(img, best, skipConfidence, Everywhere)
	if !ok {
		return nil
	}
	if taps == 2 {
		return b.ctl.DoubleTap(ctx, box.Center(), "skip speed")
	}
	return b.ctl.Tap(ctx, box.Center(), "skip speed")
}
