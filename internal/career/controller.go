package career

import (
	"context"
	"fmt"
	"image"
	"math/rand"
	"time"

	"uma-bot/internal/logger"
	"uma-bot/internal/screen"
	"uma-bot/internal/status"
)

// Device captures the screen and sends touch input.
type Device interface {
	Screenshot(ctx context.Context) (image.Image, error)
	Tap(ctx context.Context, p screen.Point) error
	Swipe(ctx context.Context, from, to screen.Point, d time.Duration) error
	Drag(ctx context.Context, from, to screen.Point, d time.Duration) error
	LongPress(ctx context.Context, p screen.Point, d time.Duration) error
}

// Matcher finds templates on a screenshot. Template names are paths under
// the assets directory without extension, for example "buttons/ok_btn".
type Matcher interface {
	Find(img image.Image, name string, threshold float64, region screen.Box) []screen.Box
	Locate(img image.Image, name string, threshold float64, region screen.Box) (screen.Box, bool)
	MaxConfidence(img image.Image, name string, region screen.Box) float64
	Energy(img image.Image) (float64, error)
}

// Everywhere is the empty region: search the whole screenshot.
var Everywhere = screen.Box{}

// pollInterval is the pause between two screenshots while waiting for a
// template to show up.
const pollInterval = 500 * time.Millisecond

// Controller turns workflow steps into device input.
//
// It is the only place that talks to the device. Every tap goes through it
// so the status tracker sees the recent actions.
//
// Not thread-safe. Only the decision loop goroutine uses it.
type Controller struct {
	dev    Device
	match  Matcher
	status *status.Tracker
	rng    *rand.Rand

	// sleep pauses between steps; tests replace it to run instantly.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewController creates a controller over dev.
func NewController(dev Device, m Matcher, st *status.Tracker) *Controller {
	return &Controller{
		dev:    dev,
		match:  m,
		status: st,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
		sleep:  sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Wait pauses for d or until ctx is done.
func (c *Controller) Wait(ctx context.Context, d time.Duration) error {
	return c.sleep(ctx, d)
}

// Capture takes a screenshot.
func (c *Controller) Capture(ctx context.Context) (image.Image, error) {
	img, err := c.dev.Screenshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to capture screen: %w", err)
	}
	return img, nil
}

func (c *Controller) record(format string, v ...interface{}) {
	msg := fmt.Sprintf(format, v...)
	logger.LogDebug("%s", msg)
	if c.status != nil {
		c.status.AddAction(msg)
	}
}

// Tap taps p.
func (c *Controller) Tap(ctx context.Context, p screen.Point, label string) error {
	c.record("tap %s at %s", label, p)
	return c.dev.Tap(ctx, p)
}

// DoubleTap taps p twice 100 ms apart.
func (c *Controller) DoubleTap(ctx context.Context, p screen.Point, label string) error {
	return c.repeatTap(ctx, p, label, 2, 100*time.Millisecond)
}

// TripleTap taps p three times interval apart.
func (c *Controller) TripleTap(ctx context.Context, p screen.Point, label string, interval time.Duration) error {
	return c.repeatTap(ctx, p, label, 3, interval)
}

func (c *Controller) repeatTap(ctx context.Context, p screen.Point, label string, n int, interval time.Duration) error {
	c.record("tap %s x%d at %s", label, n, p)
	for i := 0; i < n; i++ {
		if err := c.dev.Tap(ctx, p); err != nil {
			return err
		}
		if i < n-1 {
			if err := c.Wait(ctx, interval); err != nil {
				return err
			}
		}
	}
	return nil
}

// Swipe performs a quick swipe.
func (c *Controller) Swipe(ctx context.Context, from, to screen.Point, d time.Duration) error {
	c.record("swipe %s -> %s", from, to)
	return c.dev.Swipe(ctx, from, to, d)
}

// Scroll drags a list from one point to another.
func (c *Controller) Scroll(ctx context.Context, from, to screen.Point, d time.Duration) error {
	c.record("scroll %s -> %s", from, to)
	return c.dev.Drag(ctx, from, to, d)
}

// Hold presses p for a random duration between lo and hi.
func (c *Controller) Hold(ctx context.Context, p screen.Point, lo, hi time.Duration) error {
	d := lo
	if hi > lo {
		d += time.Duration(c.rng.Int63n(int64(hi - lo)))
	}
	c.record("hold at %s for %dms", p, d.Milliseconds())
	return c.dev.LongPress(ctx, p, d)
}

// TapImage looks for template name up to attempts times and taps the best
// match. It reports whether a tap happened.
func (c *Controller) TapImage(ctx context.Context, name string, threshold float64, attempts int) (bool, error) {
	if attempts < 1 {
		attempts = 1
	}
	for i := 0; i < attempts; i++ {
		img, err := c.Capture(ctx)
		if err != nil {
			return false, err
		}
		if box, ok := c.match.Locate(img, name, threshold, Everywhere); ok {
			return true, c.Tap(ctx, box.Center(), name)
		}
		if i < attempts-1 {
			if err := c.Wait(ctx, 50*time.Millisecond); err != nil {
				return false, err
			}
		}
	}
	logger.LogDebug("%s not found after %d attempts", name, attempts)
	return false, nil
}

// WaitImage polls until template name appears or timeout passes.
func (c *Controller) WaitImage(ctx context.Context, name string, threshold float64, timeout time.Duration) (screen.Box, bool, error) {
	polls := int(timeout / pollInterval)
	if polls < 1 {
		polls = 1
	}
	for i := 0; i < polls; i++ {
		img, err := c.Capture(ctx)
		if err != nil {
			return screen.Box{}, false, err
		}
		if box, ok := c.match.Locate(img, name, threshold, Everywhere); ok {
			return box, true, nil
		}
		if err := c.Wait(ctx, pollInterval); err != nil {
			return screen.Box{}, false, err
		}
	}
	logger.LogDebug("%s did not appear within %s", name, timeout)
	return screen.Box{}, false, nil
}

// WaitAndDoubleTap waits for template name and double taps it.
func (c *Controller) WaitAndDoubleTap(ctx context.Context, name string, timeout time.Duration) (bool, error) {
	box, ok, err := c.WaitImage(ctx, name, 0.8, timeout)
	if err != nil || !ok {
		if !ok && err == nil {
			logger.LogWarn("%s not found within %s", name, timeout)
		}
		return false, err
	}
	return true, c.DoubleTap(ctx, box.Center(), name)
}
