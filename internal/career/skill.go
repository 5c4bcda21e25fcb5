package career

import (
	"context"
	"image"
	"time"

	"uma-bot/internal/config"
	"uma-bot/internal/logger"
	"uma-bot/internal/screen"
	"uma-bot/internal/skills"
)

const (
	skillButtonThreshold = 0.9
	skillButtonLit       = 150
	skillOverlap         = 0.5
	skillMaxScrolls      = 20
	skillScrollDrag      = 1050 * time.Millisecond
)

// SkillRows reads every buyable row of the skill list on img. Rows whose
// skill_up button is dark cannot be bought and are skipped.
func SkillRows(img image.Image, m Matcher, r Reader) []skills.Skill {
	buttons := skills.RemoveOverlaps(m.Find(img, "buttons/skill_up", skillButtonThreshold, Everywhere), skillOverlap)
	screen.SortReading(buttons)

	var rows []skills.Skill
	for _, btn := range buttons {
		if screen.MeanBrightness(img, btn) < skillButtonLit {
			continue
		}
		dx, dy := btn.X-skillAnchor.X, btn.Y-skillAnchor.Y
		rows = append(rows, skills.Skill{
			Name:   r.SkillName(img, skillNameBox.Offset(dx, dy)),
			Price:  r.SkillPrice(img, skillPriceBox.Offset(dx, dy)),
			Button: btn,
		})
	}
	return rows
}

// scrollSkills drags the skill list one page down.
func (b *Bot) scrollSkills(ctx context.Context) error {
	if err := b.ctl.Wait(ctx, 500*time.Millisecond); err != nil {
		return err
	}
	if err := b.ctl.Scroll(ctx, skillSwipeFrom, skillSwipeTo, skillScrollDrag); err != nil {
		return err
	}
	return b.ctl.Wait(ctx, 1500*time.Millisecond)
}

// scanSkills reads the whole skill list and the available points. The scan
// ends at the first name seen twice, which means the list bottomed out.
func (b *Bot) scanSkills(ctx context.Context) ([]skills.Skill, int, error) {
	img, err := b.ctl.Capture(ctx)
	if err != nil {
		return nil, 0, err
	}
	points := b.read.SkillPoints(img, skillPointsRegion)

	seen := map[string]bool{}
	var all []skills.Skill
	for scroll := 0; scroll < skillMaxScrolls; scroll++ {
		rows := SkillRows(img, b.match, b.read)
		if len(rows) == 0 && scroll >= 3 && len(all) == 0 {
			logger.LogWarn("No skills after %d scrolls, not on the skill list?", scroll)
			break
		}
		repeated := false
		for _, row := range rows {
			if seen[row.Name] {
				logger.LogDebug("%s seen again, end of the skill list", row.Name)
				repeated = true
				break
			}
			seen[row.Name] = true
			all = append(all, row)
		}
		if repeated {
			break
		}

		if err := b.scrollSkills(ctx); err != nil {
			return nil, 0, err
		}
		if img, err = b.ctl.Capture(ctx); err != nil {
			return nil, 0, err
		}
	}
	logger.LogInfo("Skill list: %d skills, %d points", len(all), points)
	return all, points, nil
}

// buySkills reopens the skill list from the top and taps the skill_up button
// of every planned skill, then confirms. opener is the button that opens
// the list.
func (b *Bot) buySkills(ctx context.Context, plan []skills.Skill, opener string) error {
	if len(plan) == 0 {
		return nil
	}
	for _, s := range plan {
		logger.LogInfo("Buying %s", s)
	}

	if _, err := b.ctl.TapImage(ctx, "buttons/back_btn", 0.8, 10); err != nil {
		return err
	}
	if err := b.ctl.Wait(ctx, time.Second); err != nil {
		return err
	}
	ok, err := b.ctl.TapImage(ctx, opener, 0.8, 10)
	if err != nil {
		return err
	}
	if !ok {
		logger.LogError("Skill list did not reopen")
		return nil
	}
	if err := b.ctl.Wait(ctx, time.Second); err != nil {
		return err
	}

	remaining := append([]skills.Skill(nil), plan...)
	bought := 0
	for scroll := 0; len(remaining) > 0 && scroll < skillMaxScrolls; scroll++ {
		img, err := b.ctl.Capture(ctx)
		if err != nil {
			return err
		}
		rows := SkillRows(img, b.match, b.read)

		var left []skills.Skill
		for _, want := range remaining {
			hit := -1
			for i, row := range rows {
				if skills.Same(row.Name, want.Name) {
					hit = i
					break
				}
			}
			if hit < 0 {
				left = append(left, want)
				continue
			}
			if err := b.ctl.Tap(ctx, rows[hit].Button.Center(), "skill up "+want.Name); err != nil {
				return err
			}
			bought++
			b.status.Count("skill")
			if err := b.ctl.Wait(ctx, time.Second); err != nil {
				return err
			}
		}
		remaining = left
		if len(remaining) > 0 {
			if err := b.scrollSkills(ctx); err != nil {
				return err
			}
		}
	}
	for _, s := range remaining {
		logger.LogWarn("Skill %s not found in the list", s.Name)
	}
	if bought == 0 {
		return nil
	}

	for _, name := range []string{"buttons/confirm", "buttons/learn", "buttons/close"} {
		ok, err := b.tapButton(ctx, name)
		if err != nil {
			return err
		}
		if !ok {
			logger.LogWarn("%s not found, finish the purchase by hand", name)
			return nil
		}
		if err := b.ctl.Wait(ctx, time.Second); err != nil {
			return err
		}
	}
	b.decide("Bought %d skills", bought)
	return nil
}

// tapButton tries to tap name up to ten times, half a second apart.
func (b *Bot) tapButton(ctx context.Context, name string) (bool, error) {
	for attempt := 0; attempt < 10; attempt++ {
		ok, err := b.ctl.TapImage(ctx, name, 0.8, 1)
		if err != nil || ok {
			return ok, err
		}
		if err := b.ctl.Wait(ctx, 500*time.Millisecond); err != nil {
			return false, err
		}
	}
	return false, nil
}

// checkSkillCap spends skill points above the configured cap.
func (b *Bot) checkSkillCap(ctx context.Context, gs GameState) error {
	sc := b.cfg.Skills
	if !sc.EnableSkillPointCheck {
		return nil
	}
	if gs.SkillPoints <= sc.SkillPointCap {
		logger.LogDebug("Skill points %d within cap %d", gs.SkillPoints, sc.SkillPointCap)
		return nil
	}
	if sc.SkillPurchase != config.SkillPurchaseAuto {
		logger.LogWarn("Skill points %d exceed the cap of %d, spend them before racing", gs.SkillPoints, sc.SkillPointCap)
		return nil
	}

	b.decide("Skill points %d exceed the cap of %d, buying skills", gs.SkillPoints, sc.SkillPointCap)
	ok, err := b.ctl.TapImage(ctx, "buttons/skills_btn", 0.8, 10)
	if err != nil || !ok {
		return err
	}
	if err := b.ctl.Wait(ctx, time.Second); err != nil {
		return err
	}

	available, points, err := b.scanSkills(ctx)
	if err != nil {
		return err
	}
	plan, total := skills.Affordable(skills.Plan(available, b.skills, false), points)
	logger.LogInfo("Skill plan: %d skills for %d of %d points", len(plan), total, points)
	if err := b.buySkills(ctx, plan, "buttons/skills_btn"); err != nil {
		return err
	}

	if _, err := b.ctl.TapImage(ctx, "buttons/back_btn", 0.8, 10); err != nil {
		return err
	}
	return b.ctl.Wait(ctx, time.Second)
}
