package device

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"uma-bot/internal/logger"
	"uma-bot/internal/screen"
)

// TouchMode represents the kind of touch input
type TouchMode int

const (
	TouchTap   TouchMode = iota // Single tap
	TouchSwipe                  // Fast swipe, also used to hover over buttons
	TouchDrag                   // Slow swipe that scrolls a list; waits input_delay first
	TouchHold                   // Long press at one point
)

func (m TouchMode) String() string {
	switch m {
	case TouchTap:
		return "tap"
	case TouchSwipe:
		return "swipe"
	case TouchDrag:
		return "drag"
	case TouchHold:
		return "hold"
	default:
		return fmt.Sprintf("touch(%d)", int(m))
	}
}

// Touch is one touch gesture in screen coordinates.
type Touch struct {
	Mode     TouchMode
	From     screen.Point
	To       screen.Point
	Duration time.Duration
}

// args builds the "input" shell command for t.
//
// Swipe, drag and hold all map to "input swipe"; a hold is a swipe that
// starts and ends on the same point.
func (t Touch) args() ([]string, error) {
	itoa := strconv.Itoa
	switch t.Mode {
	case TouchTap:
		return []string{"input", "tap", itoa(t.From.X), itoa(t.From.Y)}, nil
	case TouchSwipe, TouchDrag:
		return []string{"input", "swipe",
			itoa(t.From.X), itoa(t.From.Y), itoa(t.To.X), itoa(t.To.Y),
			itoa(int(t.Duration.Milliseconds()))}, nil
	case TouchHold:
		return []string{"input", "swipe",
			itoa(t.From.X), itoa(t.From.Y), itoa(t.From.X), itoa(t.From.Y),
			itoa(int(t.Duration.Milliseconds()))}, nil
	default:
		return nil, fmt.Errorf("unsupported touch mode: %d", t.Mode)
	}
}

// Send performs a touch gesture on the device.
//
// Taps and fast swipes are sent immediately. Drags wait input_delay first so
// slow emulators do not drop the scroll.
func (a *ADB) Send(ctx context.Context, t Touch) error {
	args, err := t.args()
	if err != nil {
		return err
	}
	if t.Mode == TouchDrag && a.inputDelay > 0 {
		a.sleep(a.inputDelay)
	}

	if _, err := a.shell(ctx, args...); err != nil {
		logger.LogError("Failed to %s at %s: %v", t.Mode, t.From, err)
		return err
	}
	logger.LogDebug("Touch %s: %s -> %s (%s)", t.Mode, t.From, t.To, t.Duration)
	return nil
}

// Tap taps at p.
func (a *ADB) Tap(ctx context.Context, p screen.Point) error {
	return a.Send(ctx, Touch{Mode: TouchTap, From: p, To: p})
}

// Swipe swipes from one point to another over d.
func (a *ADB) Swipe(ctx context.Context, from, to screen.Point, d time.Duration) error {
	return a.Send(ctx, Touch{Mode: TouchSwipe, From: from, To: to, Duration: d})
}

// Drag scrolls from one point to another over d.
func (a *ADB) Drag(ctx context.Context, from, to screen.Point, d time.Duration) error {
	return a.Send(ctx, Touch{Mode: TouchDrag, From: from, To: to, Duration: d})
}

// LongPress holds at p for d.
func (a *ADB) LongPress(ctx context.Context, p screen.Point, d time.Duration) error {
	return a.Send(ctx, Touch{Mode: TouchHold, From: p, To: p, Duration: d})
}
