package glm

import (
	"golang.org/x/mobile/exp/f32"
)

// Rad is an angle in radians.
type Rad float32

// Sincos returns the approximate sine and cosine of r. Good enough for
// animation, not for geometry that needs exact results.
func Sincos(r Rad) (float32, float32) {
	return Sin(r), Cos(r)
}

func Sin(r Rad) float32 {
	return f32.Sin(float32(r))
}

func Cos(r Rad) float32 {
	return f32.Cos(float32(r))
}
