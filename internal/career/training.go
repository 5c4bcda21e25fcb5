package career

import (
	"context"
	"image"
	"math"
	"strings"
	"time"

	"uma-bot/internal/logger"
	"uma-bot/internal/races"
	"uma-bot/internal/scoring"
	"uma-bot/internal/screen"
)

const (
	hoverSwipe  = 20 * time.Millisecond
	hoverSettle = 300 * time.Millisecond
	iconDedupe  = 30
)

func (b *Bot) train(ctx context.Context, _ image.Image, gs GameState) (bool, error) {
	if ok, err := b.openTraining(ctx); err != nil || !ok {
		return true, err
	}

	opts, err := b.checkTrainings(ctx)
	if err != nil {
		return true, err
	}
	b.rules.ScoreAll(opts, gs.Year)
	for _, o := range opts {
		logger.LogInfo("%-4s score %5.2f failure %3d%% supports %v hint %v",
			strings.ToUpper(o.Stat), o.Score, o.Failure, o.SupportCounts, o.Hint)
	}

	if stat, ok := b.selector.Choose(opts, gs.Stats); ok {
		b.decide("Training %s", strings.ToUpper(stat))
		return true, b.doTrain(ctx, stat)
	}
	logger.LogInfo("No training reaches the minimum score")
	return true, b.badTraining(ctx, gs, opts)
}

// badTraining decides what to do when no training qualified.
func (b *Bot) badTraining(ctx context.Context, gs GameState, opts []scoring.TrainingOption) error {
	relaxed := func(why string) error {
		if stat, ok := b.selector.Relaxed().Choose(opts, gs.Stats); ok {
			b.decide("Training %s anyway, %s", strings.ToUpper(stat), why)
			return b.doTrain(ctx, stat)
		}
		b.decide("No viable training, %s, resting", why)
		return b.doRest(ctx)
	}

	if !b.cfg.Training.DoRaceWhenBadTraining {
		b.decide("Racing on bad training disabled, resting")
		return b.doRest(ctx)
	}

	if scoring.AllUnsafe(opts, b.selector.MaxFailure) {
		wit, _ := scoring.Find(opts, scoring.Wit)
		if wit.Score < 1 {
			b.decide("Every training is unsafe and wit scores %.2f, resting", wit.Score)
			return b.doRest(ctx)
		}
		return relaxed("every training is unsafe")
	}

	if !races.IsAvailable(gs.Year) {
		return relaxed("no races this turn")
	}

	b.decide("Training is poor, looking for a race")
	if _, err := b.ctl.TapImage(ctx, "buttons/back_btn", 0.8, 3); err != nil {
		return err
	}
	if err := b.ctl.Wait(ctx, 500*time.Millisecond); err != nil {
		return err
	}
	raced, err := b.findAndRace(ctx, gs)
	if err != nil || raced {
		return err
	}

	if _, err := b.ctl.TapImage(ctx, "buttons/back_btn", 0.8, 1); err != nil {
		return err
	}
	if err := b.ctl.Wait(ctx, 500*time.Millisecond); err != nil {
		return err
	}
	if ok, err := b.openTraining(ctx); err != nil || !ok {
		return err
	}
	return relaxed("no race found")
}

func (b *Bot) openTraining(ctx context.Context) (bool, error) {
	ok, err := b.ctl.TapImage(ctx, "buttons/training_btn", 0.8, 10)
	if err != nil {
		return false, err
	}
	if !ok {
		logger.LogWarn("Training button not found")
		return false, nil
	}
	return true, b.ctl.Wait(ctx, 500*time.Millisecond)
}

func (b *Bot) doTrain(ctx context.Context, stat string) error {
	p, ok := trainingButtons[stat]
	if !ok {
		logger.LogWarn("Unknown training %s", stat)
		return nil
	}
	b.status.Count("training_" + stat)
	return b.ctl.TripleTap(ctx, p, "training "+stat, 100*time.Millisecond)
}

// checkTrainings hovers every training button and reads what it shows.
func (b *Bot) checkTrainings(ctx context.Context) ([]scoring.TrainingOption, error) {
	recapture := func() (image.Image, error) { return b.ctl.Capture(ctx) }

	opts := make([]scoring.TrainingOption, 0, len(trainingOrder))
	for _, stat := range trainingOrder {
		p := trainingButtons[stat]
		if err := b.ctl.Swipe(ctx, p, p.Add(screen.Pt(0, -hoverLift)), hoverSwipe); err != nil {
			return nil, err
		}
		if err := b.ctl.Wait(ctx, hoverSettle); err != nil {
			return nil, err
		}
		img, err := b.ctl.Capture(ctx)
		if err != nil {
			return nil, err
		}
		opt := ReadTraining(img, stat, b.match, b.cfg.Unity())

		rate, _, err := b.read.Failure(img, failureRegions[stat], stat, recapture)
		if err != nil {
			logger.LogWarn("%v", err)
		}
		opt.Failure = rate
		opts = append(opts, opt)
	}
	return opts, nil
}

// ReadTraining counts the support cards, hint and spirit icons of one hovered
// training. The failure rate is left at zero.
func ReadTraining(img image.Image, stat string, m Matcher, unity bool) scoring.TrainingOption {
	opt := scoring.TrainingOption{
		Stat:          stat,
		SupportCounts: make(map[string]int, len(scoring.SupportTypes)),
		Cards:         make(map[string][]scoring.Card),
	}

	for _, kind := range scoring.SupportTypes {
		icons := screen.Dedupe(m.Find(img, "icons/support_card_type_"+kind, 0.8, supportRegion), iconDedupe)
		opt.SupportCounts[kind] = len(icons)
		for _, icon := range icons {
			opt.Cards[kind] = append(opt.Cards[kind], scoring.Card{BondLevel: BondLevel(img, icon)})
		}
	}

	_, opt.Hint = m.Locate(img, "icons/hint", 0.8, supportRegion)

	if unity {
		spirits := screen.Dedupe(m.Find(img, "unity/spirit_training", 0.8, supportRegion), iconDedupe)
		bursts := screen.Dedupe(m.Find(img, "unity/spirit_burst", 0.8, supportRegion), iconDedupe)
		extra := 0
		for _, s := range spirits {
			c := s.Center().Add(burstMarkOffset)
			mark := screen.NewBox(c.X, c.Y, burstMarkSize.X, burstMarkSize.Y).Clamp(img.Bounds())
			if mark.Empty() {
				continue
			}
			if _, ok := m.Locate(img, "unity/burst_ed", 0.8, mark); ok {
				extra++
			}
		}
		opt.SpiritCount = int(math.Max(0, float64(len(spirits)-extra)))
		opt.SpiritBurstCount = len(bursts)
		opt.SpiritExtraCount = extra
	}
	return opt
}

// BondLevel reads the bond gauge under a support card icon.
func BondLevel(img image.Image, icon screen.Box) int {
	c := screen.ColorAt(img, icon.Center().Add(bondOffset))
	best, bestDist := 1, -1
	for _, p := range bondPalette {
		if d := c.Distance2(p.color); bestDist < 0 || d < bestDist {
			best, bestDist = p.level, d
		}
	}
	return best
}
