package career

import (
	"context"
	"fmt"
	"image"
	"sort"
	"time"

	"uma-bot/internal/events"
	"uma-bot/internal/logger"
	"uma-bot/internal/screen"
)

const (
	eventSettle      = 1500 * time.Millisecond
	choiceThreshold  = 0.45
	choiceDedupe     = 150
	choiceBrightness = 160
)

// EventChoices finds the lit event choice buttons, top to bottom.
func EventChoices(img image.Image, m Matcher) []screen.Box {
	boxes := m.Find(img, "icons/event_choice_1", choiceThreshold, eventChoiceRegion)
	screen.SortReading(boxes)
	boxes = screen.Dedupe(boxes, choiceDedupe)

	lit := make([]screen.Box, 0, len(boxes))
	for _, box := range boxes {
		if screen.MeanBrightness(img, box) > choiceBrightness {
			lit = append(lit, box)
		}
	}
	sort.SliceStable(lit, func(i, j int) bool { return lit[i].Y < lit[j].Y })
	return lit
}

func (b *Bot) handleEvent(ctx context.Context, _ image.Image, first screen.Box) (bool, error) {
	if err := b.ctl.Wait(ctx, eventSettle); err != nil {
		return true, err
	}
	img, err := b.ctl.Capture(ctx)
	if err != nil {
		return true, err
	}
	choices := EventChoices(img, b.match)
	if len(choices) == 0 {
		logger.LogDebug("No visible event choices after settling")
		return true, nil
	}
	b.status.Count("event")

	choice, err := b.chooseEvent(img, len(choices))
	if err != nil {
		return true, err
	}
	if choice < 1 || choice > len(choices) {
		logger.LogWarn("Choice %d is not on screen, taking the top one", choice)
		return true, b.ctl.Tap(ctx, first.Center(), "event choice 1")
	}
	if err := b.ctl.Tap(ctx, choices[choice-1].Center(), fmt.Sprintf("event choice %d", choice)); err != nil {
		return true, err
	}
	return true, b.ctl.Wait(ctx, 500*time.Millisecond)
}

// chooseEvent reads the event name and picks a 1-based choice.
func (b *Bot) chooseEvent(img image.Image, visible int) (int, error) {
	title := b.read.EventTitle(img, eventTitleRegion)
	if title == "" {
		if b.cfg.Event.StopOnDetectionFailure {
			return 0, fmt.Errorf("event name not readable: %w", ErrStop)
		}
		b.decide("Event name not readable, taking the top choice")
		return 1, nil
	}

	ev, ok := b.events.Lookup(title)
	if !ok {
		b.decide("Unknown event %q, taking the top choice", title)
		return 1, nil
	}
	logger.LogInfo("Event %q from %s", ev.Name, ev.Source())

	analysis := b.prio.Analyze(ev.Options)
	for _, oa := range analysis.Options {
		logger.LogDebug("  %s: good %v bad %v", oa.Name, oa.Good, oa.Bad)
	}
	if analysis.NoGood {
		b.decide("Event %q has no good option, taking the top choice", ev.Name)
		return 1, nil
	}
	choice := events.ChoiceNumber(analysis.Recommended, len(ev.Options), visible)
	b.decide("Event %q: %s (%s) -> choice %d", ev.Name, analysis.Recommended, analysis.Reason, choice)
	return choice, nil
}
