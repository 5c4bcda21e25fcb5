package screen

import (
	"image"
	"image/color"
	"image/draw"
)

// Color represents an RGB color
type Color struct {
	R uint8
	G uint8
	B uint8
}

// RGB creates a new Color
func RGB(r, g, b uint8) Color {
	return Color{R: r, G: g, B: b}
}

// Distance2 returns the squared Euclidean distance between two colors.
func (c Color) Distance2(other Color) int {
	dr := int(c.R) - int(other.R)
	dg := int(c.G) - int(other.G)
	db := int(c.B) - int(other.B)
	return dr*dr + dg*dg + db*db
}

// ColorAt reads the pixel at p, clamping p into the image bounds.
func ColorAt(img image.Image, p Point) Color {
	b := img.Bounds()
	x := clamp(p.X, b.Min.X, b.Max.X-1)
	y := clamp(p.Y, b.Min.Y, b.Max.Y-1)
	r, g, bl, _ := img.At(x, y).RGBA()
	return Color{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(bl >> 8)}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Crop copies the part of img inside box into a new RGBA image whose origin
// is (0, 0). Boxes partly outside the image are clamped.
func Crop(img image.Image, box Box) *image.RGBA {
	r := box.Rect().Intersect(img.Bounds())
	out := image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	draw.Draw(out, out.Bounds(), img, r.Min, draw.Src)
	return out
}

// MeanBrightness returns the average grayscale value (0-255) inside box.
// It returns 0 when the box does not overlap the image.
func MeanBrightness(img image.Image, box Box) float64 {
	r := box.Rect().Intersect(img.Bounds())
	if r.Empty() {
		return 0
	}
	var sum uint64
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			g := color.GrayModel.Convert(img.At(x, y)).(color.Gray)
			sum += uint64(g.Y)
		}
	}
	return float64(sum) / float64(r.Dx()*r.Dy())
}
