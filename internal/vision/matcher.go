// Package vision finds UI elements in screenshots using OpenCV.
//
// Templates live under the assets directory as PNG files and are addressed
// by their path relative to it without the extension, e.g. "buttons/ok_btn".
// Loaded templates are cached for the life of the Matcher.
package vision

import (
	"fmt"
	"image"
	"path/filepath"
	"sync"

	"gocv.io/x/gocv"

	"uma-bot/internal/logger"
	"uma-bot/internal/screen"
)

// Matcher runs normalized cross-correlation template matching.
type Matcher struct {
	dir       string
	templates map[string]gocv.Mat
	mu        sync.Mutex
}

// NewMatcher creates a matcher reading templates from dir.
func NewMatcher(dir string) *Matcher {
	return &Matcher{
		dir:       dir,
		templates: make(map[string]gocv.Mat),
	}
}

// Close releases every cached template.
func (m *Matcher) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for name, t := range m.templates {
		t.Close()
		delete(m.templates, name)
	}
}

func (m *Matcher) template(name string) (gocv.Mat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if t, ok := m.templates[name]; ok {
		return t, nil
	}

	path := filepath.Join(m.dir, name+".png")
	t := gocv.IMRead(path, gocv.IMReadColor)
	if t.Empty() {
		t.Close()
		return gocv.Mat{}, fmt.Errorf("failed to load template %s", path)
	}
	m.templates[name] = t
	return t, nil
}

// searchArea returns the part of img to search. An empty region means the
// whole image.
func searchArea(img image.Image, region screen.Box) screen.Box {
	if region.Empty() {
		return screen.FromRect(img.Bounds())
	}
	return region.Clamp(img.Bounds())
}

// match runs TM_CCOEFF_NORMED of template name over region of img and hands
// the result matrix to fn. The search area is skipped when it is smaller
// than the template.
func (m *Matcher) match(img image.Image, name string, region screen.Box, fn func(result gocv.Mat, area screen.Box, tw, th int)) error {
	tmpl, err := m.template(name)
	if err != nil {
		return err
	}

	area := searchArea(img, region)
	if area.W < tmpl.Cols() || area.H < tmpl.Rows() {
		return nil
	}

	src, err := gocv.ImageToMatRGB(screen.Crop(img, area))
	if err != nil {
		return fmt.Errorf("failed to convert screenshot: %w", err)
	}
	defer src.Close()

	result := gocv.NewMat()
	defer result.Close()
	mask := gocv.NewMat()
	defer mask.Close()

	gocv.MatchTemplate(src, tmpl, &result, gocv.TmCcoeffNormed, mask)
	fn(result, area, tmpl.Cols(), tmpl.Rows())
	return nil
}

// Find returns every location where template name matches at or above
// threshold, in row-major order. Boxes are in full screenshot coordinates.
// A missing template is logged and reported as no match.
func (m *Matcher) Find(img image.Image, name string, threshold float64, region screen.Box) []screen.Box {
	var boxes []screen.Box
	err := m.match(img, name, region, func(result gocv.Mat, area screen.Box, tw, th int) {
		for y := 0; y < result.Rows(); y++ {
			for x := 0; x < result.Cols(); x++ {
				if float64(result.GetFloatAt(y, x)) >= threshold {
					boxes = append(boxes, screen.NewBox(area.X+x, area.Y+y, tw, th))
				}
			}
		}
	})
	if err != nil {
		logger.LogError("Template %s: %v", name, err)
		return nil
	}
	return boxes
}

// Locate returns the best match of template name if it reaches threshold.
func (m *Matcher) Locate(img image.Image, name string, threshold float64, region screen.Box) (screen.Box, bool) {
	var (
		best  float64
		found screen.Box
		hit   bool
	)
	err := m.match(img, name, region, func(result gocv.Mat, area screen.Box, tw, th int) {
		_, maxVal, _, maxLoc := gocv.MinMaxLoc(result)
		best = float64(maxVal)
		if best >= threshold {
			found = screen.NewBox(area.X+maxLoc.X, area.Y+maxLoc.Y, tw, th)
			hit = true
		}
	})
	if err != nil {
		logger.LogError("Template %s: %v", name, err)
		return screen.Box{}, false
	}
	return found, hit
}

// MaxConfidence returns the best match score of template name in 0..1.
// Missing templates and search areas smaller than the template score 0.
func (m *Matcher) MaxConfidence(img image.Image, name string, region screen.Box) float64 {
	score := 0.0
	err := m.match(img, name, region, func(result gocv.Mat, _ screen.Box, _, _ int) {
		_, maxVal, _, _ := gocv.MinMaxLoc(result)
		score = float64(maxVal)
	})
	if err != nil {
		logger.LogError("Template %s: %v", name, err)
		return 0
	}
	return score
}

// Energy reads the energy bar of a lobby screenshot.
func (m *Matcher) Energy(img image.Image) (float64, error) {
	return Energy(img)
}
