package imgproc

import (
	"image"
)

// FailureWhite prepares a failure-rate crop shown in white text.
func FailureWhite(crop image.Image) *image.Gray {
	return Contrast(MaskWhite(crop, 200), 2.0)
}

// FailureYellow prepares a failure-rate crop shown in yellow text.
func FailureYellow(crop image.Image) *image.Gray {
	return Contrast(MaskYellow(Upscale(crop, 2)), 1.5)
}

// TurnDigits prepares the turn counter.
func TurnDigits(crop image.Image) *image.Gray {
	g := Sharpen(Contrast(Gray(crop), 2.0), 2.0)
	return Gray(Upscale(g, 2))
}

// StatDigits prepares a stat value.
func StatDigits(crop image.Image) *image.Gray {
	return Contrast(Gray(Upscale(crop, 2)), 2.0)
}

// SkillPoints prepares the skill point counter.
func SkillPoints(crop image.Image) *image.Gray {
	return Sharpen(Gray(crop), 2.5)
}

// BrightText isolates white text on a darker banner, as used for event
// titles.
func BrightText(crop image.Image) *image.Gray {
	return Threshold(Gray(crop), 180)
}
