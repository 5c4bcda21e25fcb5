package career

import (
	"context"
	"image"
	"time"

	"uma-bot/internal/logger"
)

func (b *Bot) rest(ctx context.Context, _ image.Image, gs GameState) (bool, error) {
	b.decide("Energy %.0f%% is low, resting", gs.Energy)
	return true, b.doRest(ctx)
}

// doRest leaves any sub screen and taps rest, or the summer camp rest.
func (b *Bot) doRest(ctx context.Context) error {
	img, err := b.ctl.Capture(ctx)
	if err != nil {
		return err
	}
	if box, ok := b.match.Locate(img, "buttons/back_btn", 0.8, Everywhere); ok {
		if err := b.ctl.Tap(ctx, box.Center(), "back"); err != nil {
			return err
		}
		if err := b.ctl.Wait(ctx, time.Second); err != nil {
			return err
		}
	}

	if _, ok, err := b.lobbyHint(ctx); err != nil {
		return err
	} else if !ok {
		logger.LogWarn("Lobby not confirmed before resting")
	}

	img, err = b.ctl.Capture(ctx)
	if err != nil {
		return err
	}
	for _, name := range []string{"buttons/rest_btn", "buttons/rest_summer_btn"} {
		box, ok := b.match.Locate(img, name, 0.5, Everywhere)
		if !ok {
			continue
		}
		b.status.Count("rest")
		if err := b.ctl.Tap(ctx, box.Center(), name); err != nil {
			return err
		}
		return b.ctl.Wait(ctx, 3*time.Second)
	}
	logger.LogWarn("Rest button not found")
	return nil
}

// lobbyHint looks for the lobby hint twice, 0.7 s apart.
func (b *Bot) lobbyHint(ctx context.Context) (image.Image, bool, error) {
	for attempt := 0; attempt < 2; attempt++ {
		if attempt > 0 {
			if err := b.ctl.Wait(ctx, 700*time.Millisecond); err != nil {
				return nil, false, err
			}
		}
		img, err := b.ctl.Capture(ctx)
		if err != nil {
			return nil, false, err
		}
		if _, ok := b.match.Locate(img, "ui/tazuna_hint", 0.7, Everywhere); ok {
			return img, true, nil
		}
	}
	return nil, false, nil
}

func (b *Bot) moodRecovery(ctx context.Context, img image.Image, gs GameState) (bool, error) {
	b.decide("Mood %s is below %s, going out", gs.Mood, b.cfg.Training.MinimumMood)
	for _, name := range []string{"buttons/recreation_btn", "buttons/rest_summer_btn"} {
		box, ok := b.match.Locate(img, name, 0.8, Everywhere)
		if !ok {
			continue
		}
		b.status.Count("recreation")
		if err := b.ctl.Tap(ctx, box.Center(), name); err != nil {
			return true, err
		}
		if b.cfg.Unity() {
			return true, b.recreationDate(ctx)
		}
		return true, nil
	}
	logger.LogWarn("Recreation button not found")
	return true, nil
}

// recreationDate picks the trainee outing when the unity recreation menu
// opens.
func (b *Bot) recreationDate(ctx context.Context) error {
	if _, ok, err := b.ctl.WaitImage(ctx, "buttons/cancel_recreation", 0.8, 5*time.Second); err != nil || !ok {
		return err
	}
	_, err := b.ctl.TapImage(ctx, "ui/trainee_date", 0.8, 1)
	return err
}
