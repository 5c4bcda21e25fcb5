package ocr

import (
	"fmt"
	"image"
	"path/filepath"
	"strings"
	"time"

	"github.com/vcaesar/imgo"

	"uma-bot/internal/imgproc"
	"uma-bot/internal/logger"
	"uma-bot/internal/screen"
)

// Failure pass thresholds.
const (
	failureAttempts     = 3
	whiteMinConfidence  = 0.8
	yellowMinConfidence = 0.9
	eventWordConfidence = 70
)

// Reader runs the preprocessing passes for each field of the game screen.
type Reader struct {
	Engine Engine

	// Debug saves crops of failed reads into DebugDir and makes an
	// unreadable failure rate an error instead of a silent 100.
	Debug    bool
	DebugDir string

	// Retry pause between failure passes.
	Pause func(time.Duration)
}

// NewReader returns a reader over engine.
func NewReader(engine Engine, debug bool) *Reader {
	return &Reader{Engine: engine, Debug: debug, DebugDir: ".", Pause: time.Sleep}
}

func (r *Reader) recognize(img image.Image, opts Options) Result {
	res, err := r.Engine.Recognize(img, opts)
	if err != nil {
		logger.LogDebug("OCR failed: %v", err)
		return Result{}
	}
	res.Text = strings.TrimSpace(res.Text)
	return res
}

func (r *Reader) save(name string, img image.Image) string {
	if !r.Debug {
		return ""
	}
	path := filepath.Join(r.DebugDir, name)
	if err := imgo.Save(path, img); err != nil {
		logger.LogDebug("Failed to save debug image %s: %v", path, err)
		return ""
	}
	logger.LogDebug("Saved debug image %s", path)
	return path
}

// Text reads a region as free text.
func (r *Reader) Text(img image.Image, box screen.Box, opts Options) string {
	return r.recognize(screen.Crop(img, box), opts).Text
}

// Failure reads the failure percentage of a training. The white text pass
// runs up to three times, then the yellow text pass. Every retry after the
// first uses a fresh frame from recapture when one is given. When nothing is
// readable the rate is 100; in debug mode the crop is saved and an error is
// returned as well.
func (r *Reader) Failure(img image.Image, box screen.Box, label string, recapture func() (image.Image, error)) (int, float64, error) {
	frame := func(attempt int) image.Image {
		if attempt == 0 || recapture == nil {
			return img
		}
		next, err := recapture()
		if err != nil || next == nil {
			return img
		}
		return next
	}

	passes := []struct {
		name    string
		prepare func(image.Image) *image.Gray
		minConf float64
	}{
		{"white", imgproc.FailureWhite, whiteMinConfidence},
		{"yellow", imgproc.FailureYellow, yellowMinConfidence},
	}

	for _, pass := range passes {
		for attempt := 0; attempt < failureAttempts; attempt++ {
			crop := screen.Crop(frame(attempt), box)
			res := r.recognize(pass.prepare(crop), Options{Mode: ModeSingleBlock})
			conf := res.Confidence()

			if rate, ok := ParseFailure(res.Text); ok {
				logger.LogDebug("Failure %s (%s): %d%% confidence %.2f", label, pass.name, rate, conf)
				if conf >= pass.minConf {
					return rate, conf, nil
				}
			}
			if attempt < failureAttempts-1 && r.Pause != nil {
				r.Pause(100 * time.Millisecond)
			}
		}
	}

	if r.Debug {
		path := r.save(fmt.Sprintf("debug_failure_%s_failed_region.png", label), screen.Crop(img, box))
		return 100, 0, fmt.Errorf("failure rate for %s: %w (see %s)", label, ErrNoText, path)
	}
	logger.LogDebug("No failure rate for %s, assuming 100%%", label)
	return 100, 0, nil
}

// Turn reads the turn counter.
func (r *Reader) Turn(img image.Image, box screen.Box) Turn {
	res := r.recognize(imgproc.TurnDigits(screen.Crop(img, box)), Options{Mode: ModeSingleLine})
	turn := ParseTurn(res.Text)
	logger.LogDebug("Turn OCR '%s' -> %s", res.Text, turn)
	return turn
}

// Year reads the career year banner.
func (r *Reader) Year(img image.Image, box screen.Box) string {
	res := r.recognize(enhanced(screen.Crop(img, box)), Options{Mode: ModeAuto})
	return NormalizeYear(res.Text)
}

// Criteria reads the goal criteria line, falling back to automatic page
// segmentation when the single line pass is empty.
func (r *Reader) Criteria(img image.Image, box screen.Box) string {
	crop := enhanced(screen.Crop(img, box))
	res := r.recognize(crop, Options{Mode: ModeSingleLine})
	if res.Text == "" {
		res = r.recognize(crop, Options{Mode: ModeAuto})
	}
	return NormalizeCriteria(res.Text)
}

// Goal reads the goal name.
func (r *Reader) Goal(img image.Image, box screen.Box) string {
	crop := enhanced(screen.Crop(img, box))
	res := r.recognize(crop, Options{Mode: ModeSingleLine})
	if res.Text == "" {
		res = r.recognize(crop, Options{Mode: ModeAuto})
	}
	return res.Text
}

// Stat reads one stat value; unreadable values are 0.
func (r *Reader) Stat(img image.Image, box screen.Box) int {
	res := r.recognize(imgproc.StatDigits(screen.Crop(img, box)), Options{Mode: ModeSingleLine, Whitelist: Digits})
	n, _ := FirstNumber(res.Text)
	return n
}

// SkillPoints reads the skill point counter; unreadable values are 0.
func (r *Reader) SkillPoints(img image.Image, box screen.Box) int {
	res := r.recognize(imgproc.SkillPoints(screen.Crop(img, box)), Options{Mode: ModeSingleLine, Whitelist: Digits})
	return AllDigits(res.Text)
}

// Number reads a plain number such as a fan count; unreadable values are 0.
func (r *Reader) Number(img image.Image, box screen.Box) int {
	res := r.recognize(enhanced(screen.Crop(img, box)), Options{Mode: ModeSingleLine})
	return AllDigits(res.Text)
}

// EventTitle reads an event name keeping only confident words.
func (r *Reader) EventTitle(img image.Image, box screen.Box) string {
	prepared := imgproc.BrightText(screen.Crop(img, box))
	res := r.recognize(prepared, Options{Mode: ModeAuto})
	title := res.Confident(eventWordConfidence)
	if title == "" {
		r.save(fmt.Sprintf("debug_event_ocr_processed_%d.png", time.Now().Unix()), prepared)
	}
	return title
}

// SkillName reads a skill name from the skill list.
func (r *Reader) SkillName(img image.Image, box screen.Box) string {
	return CleanSkillName(r.recognize(screen.Crop(img, box), Options{Mode: ModeAuto}).Text)
}

// SkillPrice reads a skill price, trying a digits-only pass when the first
// pass is empty.
func (r *Reader) SkillPrice(img image.Image, box screen.Box) int {
	crop := screen.Crop(img, box)
	res := r.recognize(crop, Options{Mode: ModeAuto})
	if res.Text == "" {
		res = r.recognize(crop, Options{Mode: ModeSingleWord, Whitelist: Digits})
	}
	if res.Text == "" {
		res = r.recognize(crop, Options{Mode: ModeSingleLine})
	}
	return CleanSkillPrice(res.Text)
}

// enhanced is the default preparation for banner text: 2x bicubic gray with
// a mild contrast boost.
func enhanced(crop image.Image) *image.Gray {
	return imgproc.Contrast(imgproc.Gray(imgproc.Upscale(crop, 2)), 1.5)
}
