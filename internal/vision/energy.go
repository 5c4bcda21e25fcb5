package vision

import (
	"fmt"
	"image"
	"sort"

	"gocv.io/x/gocv"

	"uma-bot/internal/logger"
	"uma-bot/internal/screen"
)

// EnergyRegion is the energy pill in the career lobby.
var EnergyRegion = screen.NewBox(330, 203, 602, 72)

// Energy bar tunables. The filled part of the pill is a saturated gradient;
// the empty part is gray.
const (
	energySatThreshold = 36
	energyLeftMargin   = 10
	energyRightOffset  = 16
	energyMinRunPx     = 12
	energyMinRunPct    = 0.06
	energyCloseKernel  = 7
	energyMinPillW     = 200
	energyMinPillH     = 20
	energyMinSpan      = 100
)

var energySampleOffsets = []int{-10, -6, -3, 0, 3, 6, 10}

// barMask holds the per-pixel analysis of the energy crop.
type barMask struct {
	w, h int
	gray []bool  // saturation <= threshold after horizontal closing
	sat  []uint8 // raw saturation
}

func (b barMask) grayAt(x, y int) bool { return b.gray[y*b.w+x] }

// Energy returns the energy percentage (0..100) shown in the lobby.
func Energy(img image.Image) (float64, error) {
	area := EnergyRegion.Clamp(img.Bounds())
	if area.Empty() {
		return 0, fmt.Errorf("energy region %s outside screenshot", EnergyRegion)
	}

	mat, err := gocv.ImageToMatRGB(screen.Crop(img, area))
	if err != nil {
		return 0, fmt.Errorf("failed to convert energy region: %w", err)
	}
	defer mat.Close()

	mask, err := energyMask(mat)
	if err != nil {
		return 0, err
	}
	pills := pillCandidates(mat)
	left, right, dynamic := pickMargins(pills, mask.w)

	pct := mask.percent(left, right)
	logger.LogDebug("Energy bar: dynamic=%v left=%d right=%d percent=%.1f%%", dynamic, left, right, pct)
	return pct, nil
}

// energyMask computes saturation and the closed gray mask of a BGR crop.
func energyMask(mat gocv.Mat) (barMask, error) {
	hsv := gocv.NewMat()
	defer hsv.Close()
	gocv.CvtColor(mat, &hsv, gocv.ColorBGRToHSV)

	channels := gocv.Split(hsv)
	defer func() {
		for _, c := range channels {
			c.Close()
		}
	}()
	if len(channels) < 3 {
		return barMask{}, fmt.Errorf("unexpected HSV channel count %d", len(channels))
	}

	lower := gocv.NewScalar(0, 0, 0, 0)
	upper := gocv.NewScalar(180, energySatThreshold, 255, 0)
	raw := gocv.NewMat()
	defer raw.Close()
	gocv.InRangeWithScalar(hsv, lower, upper, &raw)

	kernel := gocv.GetStructuringElement(gocv.MorphRect, image.Pt(energyCloseKernel, 1))
	defer kernel.Close()
	closed := gocv.NewMat()
	defer closed.Close()
	gocv.MorphologyEx(raw, &closed, gocv.MorphClose, kernel)

	w, h := mat.Cols(), mat.Rows()
	maskBytes, err := closed.DataPtrUint8()
	if err != nil {
		return barMask{}, fmt.Errorf("failed to read gray mask: %w", err)
	}
	satBytes, err := channels[1].DataPtrUint8()
	if err != nil {
		return barMask{}, fmt.Errorf("failed to read saturation: %w", err)
	}

	b := barMask{w: w, h: h, gray: make([]bool, w*h), sat: make([]uint8, w*h)}
	for i := 0; i < w*h; i++ {
		b.gray[i] = maskBytes[i] > 0
		b.sat[i] = satBytes[i]
	}
	return b, nil
}

// pillCandidates returns bounding boxes of the outlines found by edge
// detection over the crop.
func pillCandidates(mat gocv.Mat) []image.Rectangle {
	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(mat, &gray, gocv.ColorBGRToGray)

	edges := gocv.NewMat()
	defer edges.Close()
	gocv.Canny(gray, &edges, 60, 160)

	kernel := gocv.GetStructuringElement(gocv.MorphRect, image.Pt(3, 3))
	defer kernel.Close()
	dilated := gocv.NewMat()
	defer dilated.Close()
	gocv.Dilate(edges, &dilated, kernel)

	contours := gocv.FindContours(dilated, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	rects := make([]image.Rectangle, 0, contours.Size())
	for i := 0; i < contours.Size(); i++ {
		rects = append(rects, gocv.BoundingRect(contours.At(i)))
	}
	return rects
}

// pickMargins chooses the pill interior. The widest flat outline wins when
// it is large enough, inset past its stroke; otherwise fixed margins apply.
func pickMargins(rects []image.Rectangle, w int) (left, right int, dynamic bool) {
	var best image.Rectangle
	bestScore := -1.0
	for _, r := range rects {
		rw, rh := r.Dx(), r.Dy()
		if rw < energyMinPillW || rh < energyMinPillH {
			continue
		}
		score := float64(rw*rh) * (float64(rw) / (float64(rh) + 1e-3))
		if score > bestScore {
			best, bestScore = r, score
		}
	}

	if bestScore >= 0 {
		inset := max(4, int(float64(min(best.Dx(), best.Dy()))*0.05))
		l := max(0, best.Min.X+inset)
		r := min(w-1, best.Max.X-inset)
		if r-l > energyMinSpan {
			return l, r, true
		}
	}

	left = max(0, min(energyLeftMargin, w-1))
	right = max(left+1, min(w-energyRightOffset, w-1))
	return left, right, false
}

// grayBoundary scans one row from right to left for a contiguous gray run of
// at least minRun pixels. The boundary is the first pixel after the non-gray
// pixel that ends the run. A row that is gray all the way to left gives left.
func (b barMask) grayBoundary(y, left, right, minRun int) (int, bool) {
	run := 0
	for x := right; x >= left; x-- {
		if b.grayAt(x, y) {
			run++
			continue
		}
		if run >= minRun {
			return x + 1, true
		}
		run = 0
	}
	if run >= minRun {
		return left, true
	}
	return 0, false
}

// percent computes the filled share of the pill between left and right.
func (b barMask) percent(left, right int) float64 {
	width := right - left + 1
	minRun := max(energyMinRunPx, int(float64(width)*energyMinRunPct))
	midY := b.h / 2

	var boundaries []int
	for _, dy := range energySampleOffsets {
		y := midY + dy
		if y <= 6 || y >= b.h-7 {
			continue
		}
		if x, ok := b.grayBoundary(y, left, right, minRun); ok {
			boundaries = append(boundaries, x)
		}
	}

	if len(boundaries) > 0 {
		boundary := min(max(median(boundaries), left), right)
		pct := float64(boundary-left) / float64(width) * 100
		return min(100, max(0, pct))
	}

	return b.densityPercent(left, right, midY, width)
}

// densityPercent is used when no sample row has a long gray run. Nearly no
// gray means full, nearly all gray means empty; in between the rightmost
// saturated pixel on the midline marks the fill.
func (b barMask) densityPercent(left, right, midY, width int) float64 {
	y0, y1 := max(0, midY-3), min(b.h, midY+4)
	total, gray := 0, 0
	for y := y0; y < y1; y++ {
		for x := left; x <= right; x++ {
			total++
			if b.grayAt(x, y) {
				gray++
			}
		}
	}
	if total == 0 {
		return 0
	}

	ratio := float64(gray) / float64(total)
	switch {
	case ratio < 0.05:
		return 100
	case ratio > 0.95:
		return 0
	}

	rightmost := -1
	for x := b.w - 1; x >= 0; x-- {
		if b.sat[midY*b.w+x] > energySatThreshold {
			rightmost = x
			break
		}
	}
	if rightmost < 0 {
		return 0
	}
	filled := max(0, min(rightmost, right)-left+1)
	return float64(filled) / float64(width) * 100
}

// median of vals, truncated toward zero when the count is even.
func median(vals []int) int {
	s := append([]int(nil), vals...)
	sort.Ints(s)
	n := len(s)
	if n%2 == 1 {
		return s[n/2]
	}
	return (s[n/2-1] + s[n/2]) / 2
}
