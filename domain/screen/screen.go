// Package screen defines the coordinate model and the ports through which
// automation talks to the game window, the OCR engine and the template matcher.
package screen

import (
	"fmt"
	"image"
	"math"
)

// Point is a pixel position. Whether it is absolute (screen space) or
// window-relative depends on where it came from; the two are never mixed.
type Point struct {
	X int `yaml:"x" bson:"x"`
	Y int `yaml:"y" bson:"y"`
}

// Add returns p translated by o.
func (p Point) Add(o Point) Point {
	return Point{X: p.X + o.X, Y: p.Y + o.Y}
}

// Sub returns p translated by -o.
func (p Point) Sub(o Point) Point {
	return Point{X: p.X - o.X, Y: p.Y - o.Y}
}

// DistanceTo returns the Euclidean distance between two points.
func (p Point) DistanceTo(o Point) float64 {
	dx := float64(p.X - o.X)
	dy := float64(p.Y - o.Y)
	return math.Sqrt(dx*dx + dy*dy)
}

func (p Point) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// Region is a rectangle in absolute screen coordinates.
type Region struct {
	Left   int `yaml:"left" bson:"left"`
	Top    int `yaml:"top" bson:"top"`
	Width  int `yaml:"width" bson:"width"`
	Height int `yaml:"height" bson:"height"`
}

// RegionFromCorners builds a region spanning two opposite corners in any order.
func RegionFromCorners(a, b Point) Region {
	left, right := a.X, b.X
	if left > right {
		left, right = right, left
	}
	top, bottom := a.Y, b.Y
	if top > bottom {
		top, bottom = bottom, top
	}
	return Region{Left: left, Top: top, Width: right - left, Height: bottom - top}
}

// Valid reports whether the region has a positive area.
func (r Region) Valid() bool {
	return r.Width > 0 && r.Height > 0
}

// Origin returns the top-left corner.
func (r Region) Origin() Point {
	return Point{X: r.Left, Y: r.Top}
}

// Center returns the integer center of the region.
func (r Region) Center() Point {
	return Point{X: r.Left + r.Width/2, Y: r.Top + r.Height/2}
}

// Contains reports whether p lies inside the region.
func (r Region) Contains(p Point) bool {
	return p.X >= r.Left && p.X < r.Left+r.Width &&
		p.Y >= r.Top && p.Y < r.Top+r.Height
}

// Rectangle converts the region to an image.Rectangle.
func (r Region) Rectangle() image.Rectangle {
	return image.Rect(r.Left, r.Top, r.Left+r.Width, r.Top+r.Height)
}

func (r Region) String() string {
	return fmt.Sprintf("[%d,%d %dx%d]", r.Left, r.Top, r.Width, r.Height)
}

// RelativeTo converts an absolute point into coordinates relative to the
// origin of the given window rectangle.
func RelativeTo(rect Region, abs Point) Point {
	return abs.Sub(rect.Origin())
}
