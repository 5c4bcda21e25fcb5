// Package ocr turns screen regions into text and numbers.
//
// Recognition itself is behind the Engine interface; the tesseract
// subpackage provides the real one. This package owns the preprocessing
// passes, the retry order and the parsing of what comes back.
package ocr

import (
	"errors"
	"image"
	"strings"
)

// PageMode is the Tesseract page segmentation mode.
type PageMode int

const (
	ModeAuto        PageMode = 3
	ModeSingleBlock PageMode = 6
	ModeSingleLine  PageMode = 7
	ModeSingleWord  PageMode = 8
)

// Digits is the whitelist for numeric fields.
const Digits = "0123456789"

// Options tune one recognition call.
type Options struct {
	Mode      PageMode
	Whitelist string
}

// Word is one recognized word with its confidence in 0..100.
type Word struct {
	Text       string
	Confidence float64
}

// Result is the output of one recognition call.
type Result struct {
	Text  string
	Words []Word
}

// Confidence is the mean word confidence scaled to 0..1. No words gives 0.
func (r Result) Confidence() float64 {
	if len(r.Words) == 0 {
		return 0
	}
	sum := 0.0
	for _, w := range r.Words {
		sum += w.Confidence
	}
	return sum / float64(len(r.Words)) / 100
}

// Confident joins the words at or above threshold confidence (0..100).
func (r Result) Confident(threshold float64) string {
	var parts []string
	for _, w := range r.Words {
		t := strings.TrimSpace(w.Text)
		if t != "" && w.Confidence >= threshold {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}

// Engine recognizes text in an image.
type Engine interface {
	Recognize(img image.Image, opts Options) (Result, error)
}

var (
	// ErrNoText means every pass came back without usable text.
	ErrNoText = errors.New("no text recognized")
)
