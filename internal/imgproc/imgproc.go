// Package imgproc prepares screen crops for OCR.
//
// All functions return new images anchored at the origin and leave their
// input untouched.
package imgproc

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/nfnt/resize"
)

// ToRGBA copies img into an RGBA image at the origin.
func ToRGBA(img image.Image) *image.RGBA {
	b := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)
	return out
}

// Gray converts img to 8-bit luminance.
func Gray(img image.Image) *image.Gray {
	b := img.Bounds()
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			out.SetGray(x-b.Min.X, y-b.Min.Y, color.GrayModel.Convert(img.At(x, y)).(color.Gray))
		}
	}
	return out
}

// Upscale enlarges img by factor with bicubic interpolation.
func Upscale(img image.Image, factor float64) image.Image {
	if factor <= 0 || factor == 1 {
		return img
	}
	b := img.Bounds()
	w := uint(float64(b.Dx()) * factor)
	h := uint(float64(b.Dy()) * factor)
	return resize.Resize(w, h, img, resize.Bicubic)
}

// Mask returns white where keep reports true and black elsewhere.
func Mask(img image.Image, keep func(r, g, b uint8) bool) *image.Gray {
	b := img.Bounds()
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.RGBAModel.Convert(img.At(x, y)).(color.RGBA)
			if keep(c.R, c.G, c.B) {
				out.SetGray(x-b.Min.X, y-b.Min.Y, color.Gray{Y: 255})
			}
		}
	}
	return out
}

// MaskWhite keeps pixels whose three channels are all above level.
func MaskWhite(img image.Image, level uint8) *image.Gray {
	return Mask(img, func(r, g, b uint8) bool {
		return r > level && g > level && b > level
	})
}

// MaskYellow keeps the orange-yellow text used for risky failure rates.
func MaskYellow(img image.Image) *image.Gray {
	return Mask(img, func(r, g, b uint8) bool {
		return r > 180 && g > 120 && b < 80
	})
}

// Threshold keeps gray pixels above level as white.
func Threshold(img *image.Gray, level uint8) *image.Gray {
	out := image.NewGray(img.Rect)
	for i, v := range img.Pix {
		if v > level {
			out.Pix[i] = 255
		}
	}
	return out
}

// Contrast scales every pixel away from the mean gray level by factor.
// A factor of 1 returns a copy.
func Contrast(img *image.Gray, factor float64) *image.Gray {
	out := image.NewGray(img.Rect)
	if len(img.Pix) == 0 {
		return out
	}

	sum := 0
	for _, v := range img.Pix {
		sum += int(v)
	}
	mean := float64(int(float64(sum)/float64(len(img.Pix)) + 0.5))

	for i, v := range img.Pix {
		out.Pix[i] = clamp8(mean + factor*(float64(v)-mean))
	}
	return out
}

// Sharpen blends img with a smoothed copy. Factors above 1 sharpen.
// Border pixels are copied unchanged.
func Sharpen(img *image.Gray, factor float64) *image.Gray {
	out := image.NewGray(img.Rect)
	copy(out.Pix, img.Pix)

	w, h := img.Rect.Dx(), img.Rect.Dy()
	if w < 3 || h < 3 {
		return out
	}

	at := func(x, y int) float64 { return float64(img.Pix[y*img.Stride+x]) }
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			// 3x3 smoothing kernel with centre weight 5, total 13.
			sum := 5 * at(x, y)
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					if dx != 0 || dy != 0 {
						sum += at(x+dx, y+dy)
					}
				}
			}
			smooth := float64(int(sum/13 + 0.5))
			out.Pix[y*out.Stride+x] = clamp8(smooth + factor*(at(x, y)-smooth))
		}
	}
	return out
}

// Pad surrounds img with a border of px pixels in the given shade.
func Pad(img *image.Gray, px int, shade uint8) *image.Gray {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	out := image.NewGray(image.Rect(0, 0, w+2*px, h+2*px))
	draw.Draw(out, out.Bounds(), &image.Uniform{C: color.Gray{Y: shade}}, image.Point{}, draw.Src)
	draw.Draw(out, image.Rect(px, px, px+w, px+h), img, img.Rect.Min, draw.Src)
	return out
}

func clamp8(v float64) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 255:
		return 255
	}
	return uint8(v + 0.5)
}
