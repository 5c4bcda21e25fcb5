package device

import (
	"context"
	"fmt"
	"image"
	"time"

	"github.com/go-vgo/robotgo"
	"github.com/kbinani/screenshot"

	"uma-bot/internal/logger"
	"uma-bot/internal/screen"
)

// Desktop drives a game window mirrored on the local display. The window is
// assumed to fill display 0; screenshot coordinates are relative to it.
type Desktop struct {
	display int
	bounds  image.Rectangle
}

// NewDesktop creates a desktop backend for display.
func NewDesktop(display int) (*Desktop, error) {
	if n := screenshot.NumActiveDisplays(); display < 0 || display >= n {
		return nil, fmt.Errorf("display %d not found (%d active)", display, n)
	}
	return &Desktop{display: display, bounds: screenshot.GetDisplayBounds(display)}, nil
}

// Screenshot captures the display.
func (d *Desktop) Screenshot(ctx context.Context) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	img, err := screenshot.CaptureRect(d.bounds)
	if err != nil {
		return nil, fmt.Errorf("failed to capture display %d: %w", d.display, err)
	}
	return img, nil
}

func (d *Desktop) abs(p screen.Point) (int, int) {
	return d.bounds.Min.X + p.X, d.bounds.Min.Y + p.Y
}

// Send performs a touch gesture with the mouse.
func (d *Desktop) Send(ctx context.Context, t Touch) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	x, y := d.abs(t.From)
	switch t.Mode {
	case TouchTap:
		robotgo.Move(x, y)
		robotgo.Click("left")
	case TouchSwipe, TouchDrag:
		tx, ty := d.abs(t.To)
		robotgo.Move(x, y)
		robotgo.Toggle("left")
		robotgo.MoveSmooth(tx, ty)
		robotgo.MilliSleep(int(t.Duration.Milliseconds()))
		robotgo.Toggle("left", "up")
	case TouchHold:
		robotgo.Move(x, y)
		robotgo.Toggle("left")
		robotgo.MilliSleep(int(t.Duration.Milliseconds()))
		robotgo.Toggle("left", "up")
	default:
		return fmt.Errorf("unsupported touch mode: %d", t.Mode)
	}

	logger.LogDebug("Mouse %s: %s -> %s (%s)", t.Mode, t.From, t.To, t.Duration)
	return nil
}

// Tap clicks at p.
func (d *Desktop) Tap(ctx context.Context, p screen.Point) error {
	return d.Send(ctx, Touch{Mode: TouchTap, From: p, To: p})
}

// Swipe drags the mouse from one point to another.
func (d *Desktop) Swipe(ctx context.Context, from, to screen.Point, dur time.Duration) error {
	return d.Send(ctx, Touch{Mode: TouchSwipe, From: from, To: to, Duration: dur})
}

// Drag is a swipe; the desktop has no input queue to wait for.
func (d *Desktop) Drag(ctx context.Context, from, to screen.Point, dur time.Duration) error {
	return d.Send(ctx, Touch{Mode: TouchDrag, From: from, To: to, Duration: dur})
}

// LongPress holds the left button at p for dur.
func (d *Desktop) LongPress(ctx context.Context, p screen.Point, dur time.Duration) error {
	return d.Send(ctx, Touch{Mode: TouchHold, From: p, To: p, Duration: dur})
}
