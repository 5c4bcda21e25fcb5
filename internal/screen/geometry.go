// Package screen defines the geometric primitives shared by the vision, OCR and
// decision layers.
//
// All coordinates are in device pixels of a 1080x1920 portrait screenshot.
// Boxes are stored as top-left corner plus size, the same shape template
// matching produces.
package screen

import (
	"fmt"
	"image"
	"math"
	"sort"
)

// Point represents a 2D coordinate in screen space.
type Point struct {
	X int
	Y int
}

// Pt creates a new Point
func Pt(x, y int) Point {
	return Point{X: x, Y: y}
}

// Distance calculates Euclidean distance to another point
func (p Point) Distance(other Point) float64 {
	dx := float64(p.X - other.X)
	dy := float64(p.Y - other.Y)
	return math.Sqrt(dx*dx + dy*dy)
}

// Add returns p shifted by d.
func (p Point) Add(d Point) Point {
	return Point{X: p.X + d.X, Y: p.Y + d.Y}
}

func (p Point) String() string {
	return fmt.Sprintf("(%d, %d)", p.X, p.Y)
}

// Box represents a rectangular area
type Box struct {
	X int // Top-left X coordinate
	Y int // Top-left Y coordinate
	W int // Width
	H int // Height
}

// NewBox creates a new Box
func NewBox(x, y, w, h int) Box {
	return Box{X: x, Y: y, W: w, H: h}
}

// Corners builds a Box from two corners (x1, y1) and (x2, y2).
func Corners(x1, y1, x2, y2 int) Box {
	if x2 < x1 {
		x1, x2 = x2, x1
	}
	if y2 < y1 {
		y1, y2 = y2, y1
	}
	return Box{X: x1, Y: y1, W: x2 - x1, H: y2 - y1}
}

// Center returns the center point of the box
func (b Box) Center() Point {
	return Point{
		X: b.X + b.W/2,
		Y: b.Y + b.H/2,
	}
}

// Area returns the area of the box
func (b Box) Area() int {
	return b.W * b.H
}

// Empty reports whether the box has no area.
func (b Box) Empty() bool {
	return b.W <= 0 || b.H <= 0
}

// Contains checks if a point is within the box
func (b Box) Contains(p Point) bool {
	return p.X >= b.X && p.X < b.X+b.W &&
		p.Y >= b.Y && p.Y < b.Y+b.H
}

// Offset moves the box by (dx, dy).
func (b Box) Offset(dx, dy int) Box {
	return Box{X: b.X + dx, Y: b.Y + dy, W: b.W, H: b.H}
}

// Rect converts the box to an image.Rectangle.
func (b Box) Rect() image.Rectangle {
	return image.Rect(b.X, b.Y, b.X+b.W, b.Y+b.H)
}

// Clamp returns the part of the box inside r. The result may be empty.
func (b Box) Clamp(r image.Rectangle) Box {
	in := b.Rect().Intersect(r)
	return Box{X: in.Min.X, Y: in.Min.Y, W: in.Dx(), H: in.Dy()}
}

func (b Box) String() string {
	return fmt.Sprintf("(%d,%d,%d,%d)", b.X, b.Y, b.W, b.H)
}

// FromRect converts an image.Rectangle to a Box.
func FromRect(r image.Rectangle) Box {
	return Box{X: r.Min.X, Y: r.Min.Y, W: r.Dx(), H: r.Dy()}
}

// Dedupe drops boxes whose center lies within threshold pixels of the center
// of a box already kept. Input order decides which box of a cluster survives.
func Dedupe(boxes []Box, threshold float64) []Box {
	kept := make([]Box, 0, len(boxes))
	for _, b := range boxes {
		c := b.Center()
		duplicate := false
		for _, k := range kept {
			if c.Distance(k.Center()) <= threshold {
				duplicate = true
				break
			}
		}
		if !duplicate {
			kept = append(kept, b)
		}
	}
	return kept
}

// SortReading sorts boxes top to bottom, then left to right.
func SortReading(boxes []Box) {
	sort.SliceStable(boxes, func(i, j int) bool {
		if boxes[i].Y != boxes[j].Y {
			return boxes[i].Y < boxes[j].Y
		}
		return boxes[i].X < boxes[j].X
	})
}
