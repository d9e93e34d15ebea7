package gfx

import (
	"structs"

	"github.com/oliverbestmann/maple/glm"
)

// Color is a straight rgba value in linear space, laid out the way the
// vertex buffer expects it.
type Color [4]float32

var (
	ColorWhite = Color{1, 1, 1, 1}
	ColorBlack = Color{0, 0, 0, 1}
)

func RGB(r, g, b float32) Color {
	return Color{r, g, b, 1}
}

// Vertex is one corner of a solid colored triangle, in pixel coordinates
// with the origin at the lower left of the window.
type Vertex struct {
	_ structs.HostLayout

	Position glm.Vec2f
	Color    Color
}

// Params is the per frame uniform block of the shader.
type Params struct {
	_ structs.HostLayout

	// Scale maps pixel coordinates to the [0,2] range; the shader
	// subtracts one to reach clip space.
	Scale glm.Vec2f

	_pad [2]float32
}

// ScaleFor computes the uniform scale for a surface of the given extent.
func ScaleFor(width, height uint32) glm.Vec2f {
	return glm.Vec2f{2 / float32(width), 2 / float32(height)}
}

// Rect is an axis aligned rectangle given by its lower left corner and its
// size, in pixels.
type Rect struct {
	Pos  glm.Vec2f
	Size glm.Vec2f
}

// Vertices returns the four corners, clockwise from the lower left.
func (r Rect) Vertices(color Color) [4]Vertex {
	x, y := r.Pos.XY()
	w, h := r.Size.XY()

	return [4]Vertex{
		{Position: glm.Vec2f{x, y}, Color: color},
		{Position: glm.Vec2f{x, y + h}, Color: color},
		{Position: glm.Vec2f{x + w, y + h}, Color: color},
		{Position: glm.Vec2f{x + w, y}, Color: color},
	}
}

// RectIndices is the index pattern of one rectangle, two triangles over
// the four corners of Vertices.
var RectIndices = [6]uint32{0, 1, 2, 2, 3, 0}

// TriangulateFan turns a convex polygon outline into a triangle list by
// fanning out from the first point.
func TriangulateFan(points []glm.Vec2f, color Color) []Vertex {
	if len(points) < 3 {
		return nil
	}

	vertices := make([]Vertex, 0, (len(points)-2)*3)
	for i := 1; i+1 < len(points); i++ {
		vertices = append(vertices,
			Vertex{Position: points[0], Color: color},
			Vertex{Position: points[i], Color: color},
			Vertex{Position: points[i+1], Color: color},
		)
	}

	return vertices
}
