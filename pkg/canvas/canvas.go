// Package canvas is the small 2D drawing layer shared by the marking
// surface, the beta overlay and the pose thumbnails. Shapes are rasterized
// with anti-aliasing by golang.org/x/image/vector and text is set with the
// embedded Go fonts.
package canvas

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"golang.org/x/image/vector"

	"github.com/menta2k/boulder-beta/pkg/types"
)

// Canvas wraps an RGBA image with vector drawing helpers
type Canvas struct {
	img *image.RGBA
}

// New creates a transparent canvas of the given size
func New(width, height int) *Canvas {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &Canvas{img: image.NewRGBA(image.Rect(0, 0, width, height))}
}

// FromImage creates a canvas holding a copy of src translated to the origin
func FromImage(src image.Image) *Canvas {
	b := src.Bounds()
	c := New(b.Dx(), b.Dy())
	draw.Draw(c.img, c.img.Bounds(), src, b.Min, draw.Src)
	return c
}

// Image returns the backing image
func (c *Canvas) Image() *image.RGBA {
	return c.img
}

// Bounds returns the canvas bounds
func (c *Canvas) Bounds() image.Rectangle {
	return c.img.Bounds()
}

// DrawImage composites src over the canvas at its origin
func (c *Canvas) DrawImage(src image.Image) {
	draw.Draw(c.img, c.img.Bounds(), src, src.Bounds().Min, draw.Over)
}

// Fill paints the whole canvas with col
func (c *Canvas) Fill(col color.Color) {
	draw.Draw(c.img, c.img.Bounds(), image.NewUniform(col), image.Point{}, draw.Src)
}

// FillPath fills one or more closed contours. Contours with opposite winding
// cut holes.
func (c *Canvas) FillPath(col color.Color, contours ...[]types.Point) {
	var minX, minY = math.Inf(1), math.Inf(1)
	var maxX, maxY = math.Inf(-1), math.Inf(-1)
	for _, contour := range contours {
		for _, p := range contour {
			minX = math.Min(minX, p.X)
			minY = math.Min(minY, p.Y)
			maxX = math.Max(maxX, p.X)
			maxY = math.Max(maxY, p.Y)
		}
	}
	if math.IsInf(minX, 0) || math.IsNaN(minX+minY+maxX+maxY) {
		return
	}

	box := image.Rect(
		int(math.Floor(minX)), int(math.Floor(minY)),
		int(math.Ceil(maxX))+1, int(math.Ceil(maxY))+1,
	).Intersect(c.img.Bounds())
	if box.Empty() {
		return
	}

	z := vector.NewRasterizer(box.Dx(), box.Dy())
	z.DrawOp = draw.Over
	ox, oy := float64(box.Min.X), float64(box.Min.Y)
	for _, contour := range contours {
		if len(contour) < 3 {
			continue
		}
		z.MoveTo(float32(contour[0].X-ox), float32(contour[0].Y-oy))
		for _, p := range contour[1:] {
			z.LineTo(float32(p.X-ox), float32(p.Y-oy))
		}
		z.ClosePath()
	}
	z.Draw(c.img, box, image.NewUniform(col), image.Point{})
}

// FillPolygon fills a single closed polygon
func (c *Canvas) FillPolygon(pts []types.Point, col color.Color) {
	c.FillPath(col, pts)
}

// FillCircle fills a disc
func (c *Canvas) FillCircle(center types.Point, radius float64, col color.Color) {
	if radius <= 0 {
		return
	}
	c.FillPath(col, circlePoints(center, radius, false))
}

// StrokeCircle draws a ring of the given width centered on the radius
func (c *Canvas) StrokeCircle(center types.Point, radius, width float64, col color.Color) {
	if radius <= 0 || width <= 0 {
		return
	}
	outer := radius + width/2
	inner := radius - width/2
	if inner <= 0 {
		c.FillCircle(center, outer, col)
		return
	}
	c.FillPath(col, circlePoints(center, outer, false), circlePoints(center, inner, true))
}

// StrokeLine draws a segment of the given width. Round caps add a disc at
// each end.
func (c *Canvas) StrokeLine(a, b types.Point, width float64, col color.Color, roundCap bool) {
	if width <= 0 {
		return
	}
	dx, dy := b.X-a.X, b.Y-a.Y
	length := math.Hypot(dx, dy)
	if length == 0 {
		if roundCap {
			c.FillCircle(a, width/2, col)
		}
		return
	}
	nx, ny := -dy/length*width/2, dx/length*width/2
	quad := []types.Point{
		{X: a.X + nx, Y: a.Y + ny},
		{X: b.X + nx, Y: b.Y + ny},
		{X: b.X - nx, Y: b.Y - ny},
		{X: a.X - nx, Y: a.Y - ny},
	}
	if !roundCap {
		c.FillPolygon(quad, col)
		return
	}
	// one path so overlapping caps do not double the alpha
	c.FillPath(col, quad, circlePoints(a, width/2, quadClockwise(quad)), circlePoints(b, width/2, quadClockwise(quad)))
}

// FillRoundedRect fills a rectangle with rounded corners
func (c *Canvas) FillRoundedRect(x, y, w, h, radius float64, col color.Color) {
	if w <= 0 || h <= 0 {
		return
	}
	radius = math.Max(0, math.Min(radius, math.Min(w, h)/2))
	if radius == 0 {
		c.FillPolygon([]types.Point{{X: x, Y: y}, {X: x + w, Y: y}, {X: x + w, Y: y + h}, {X: x, Y: y + h}}, col)
		return
	}

	const seg = 6
	corners := []struct {
		cx, cy, start float64
	}{
		{x + w - radius, y + radius, -math.Pi / 2},
		{x + w - radius, y + h - radius, 0},
		{x + radius, y + h - radius, math.Pi / 2},
		{x + radius, y + radius, math.Pi},
	}
	pts := make([]types.Point, 0, len(corners)*(seg+1))
	for _, k := range corners {
		for i := 0; i <= seg; i++ {
			a := k.start + float64(i)/seg*math.Pi/2
			pts = append(pts, types.Point{X: k.cx + radius*math.Cos(a), Y: k.cy + radius*math.Sin(a)})
		}
	}
	c.FillPolygon(pts, col)
}

func circlePoints(center types.Point, radius float64, reverse bool) []types.Point {
	n := int(math.Ceil(2 * math.Pi * radius / 1.5))
	if n < 24 {
		n = 24
	}
	pts := make([]types.Point, n)
	for i := 0; i < n; i++ {
		a := 2 * math.Pi * float64(i) / float64(n)
		if reverse {
			a = -a
		}
		pts[i] = types.Point{X: center.X + radius*math.Cos(a), Y: center.Y + radius*math.Sin(a)}
	}
	return pts
}

// quadClockwise reports whether the quad winds the opposite way to a
// non-reversed circle, so that cap discs can be emitted with matching winding.
func quadClockwise(q []types.Point) bool {
	var area float64
	for i := range q {
		j := (i + 1) % len(q)
		area += q[i].X*q[j].Y - q[j].X*q[i].Y
	}
	return area < 0
}
