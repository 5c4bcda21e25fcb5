package career

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/draw"
	"time"

	"uma-bot/internal/config"
	"uma-bot/internal/ocr"
	"uma-bot/internal/screen"
)

type fakeDevice struct {
	img         image.Image
	shotErr     error
	screenshots int
	taps        []screen.Point
	swipes      int
	drags       int
	presses     []time.Duration
}

func (d *fakeDevice) Screenshot(context.Context) (image.Image, error) {
	d.screenshots++
	if d.shotErr != nil {
		return nil, d.shotErr
	}
	return d.img, nil
}

func (d *fakeDevice) Tap(_ context.Context, p screen.Point) error {
	d.taps = append(d.taps, p)
	return nil
}

func (d *fakeDevice) Swipe(context.Context, screen.Point, screen.Point, time.Duration) error {
	d.swipes++
	return nil
}

func (d *fakeDevice) Drag(context.Context, screen.Point, screen.Point, time.Duration) error {
	d.drags++
	return nil
}

func (d *fakeDevice) LongPress(_ context.Context, _ screen.Point, dur time.Duration) error {
	d.presses = append(d.presses, dur)
	return nil
}

// fakeMatcher reports the boxes in visible for a template, keeping those
// whose center lies inside the search region.
type fakeMatcher struct {
	visible    map[string][]screen.Box
	confidence map[string]float64
	energy     float64
	energyErr  error
}

func newFakeMatcher() *fakeMatcher {
	return &fakeMatcher{
		visible:    map[string][]screen.Box{},
		confidence: map[string]float64{},
		energy:     80,
	}
}

func (m *fakeMatcher) show(name string, boxes ...screen.Box) {
	m.visible[name] = append(m.visible[name], boxes...)
}

func (m *fakeMatcher) Find(_ image.Image, name string, _ float64, region screen.Box) []screen.Box {
	var out []screen.Box
	for _, b := range m.visible[name] {
		if region.Empty() || region.Contains(b.Center()) {
			out = append(out, b)
		}
	}
	return out
}

func (m *fakeMatcher) Locate(img image.Image, name string, threshold float64, region screen.Box) (screen.Box, bool) {
	boxes := m.Find(img, name, threshold, region)
	if len(boxes) == 0 {
		return screen.Box{}, false
	}
	return boxes[0], true
}

func (m *fakeMatcher) MaxConfidence(_ image.Image, name string, _ screen.Box) float64 {
	return m.confidence[name]
}

func (m *fakeMatcher) Energy(image.Image) (float64, error) {
	return m.energy, m.energyErr
}

type fakeReader struct {
	year     string
	turn     ocr.Turn
	goal     string
	criteria string
	title    string
	stat     int
	points   int
	number   int

	// failureStat is the only training with a readable failure rate.
	failureStat string
	failureRate int
}

func (r *fakeReader) Text(image.Image, screen.Box, ocr.Options) string { return "" }

func (r *fakeReader) Failure(_ image.Image, _ screen.Box, label string, _ func() (image.Image, error)) (int, float64, error) {
	if label == r.failureStat {
		return r.failureRate, 0.95, nil
	}
	return 100, 0, errors.New("no failure text")
}

func (r *fakeReader) Turn(image.Image, screen.Box) ocr.Turn { return r.turn }
func (r *fakeReader) Year(image.Image, screen.Box) string { return r.year }
func (r *fakeReader) Criteria(image.Image, screen.Box) string { return r.criteria }
func (r *fakeReader) Goal(image.Image, screen.Box) string { return r.goal }
func (r *fakeReader) Stat(image.Image, screen.Box) int { return r.stat }
func (r *fakeReader) SkillPoints(image.Image, screen.Box) int { return r.points }
func (r *fakeReader) Number(image.Image, screen.Box) int { return r.number }
func (r *fakeReader) EventTitle(image.Image, screen.Box) string { return r.title }
func (r *fakeReader) SkillName(image.Image, screen.Box) string { return "" }
func (r *fakeReader) SkillPrice(image.Image, screen.Box) int { return 0 }

// filled returns a full screen image painted with c.
func filled(c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 1080, 1920))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: c}, image.Point{}, draw.Src)
	return img
}

func noSleep(ctx context.Context, _ time.Duration) error {
	return ctx.Err()
}

type harness struct {
	bot    *Bot
	dev    *fakeDevice
	match  *fakeMatcher
	reader *fakeReader
	cfg    *config.Config
}

func newHarness(mutate func(cfg *config.Config)) *harness {
	cfg := config.Default()
	cfg.Status.Path = ""
	if mutate != nil {
		mutate(cfg)
	}
	h := &harness{
		dev:    &fakeDevice{img: filled(color.White)},
		match:  newFakeMatcher(),
		reader: &fakeReader{year: "Senior Year Early Apr", turn: ocr.Turn{Number: 5}},
		cfg:    cfg,
	}
	h.bot = New(Deps{
		Device:  h.dev,
		Matcher: h.match,
		Reader:  h.reader,
		Config:  cfg,
	})
	h.bot.ctl.sleep = noSleep
	return h
}
