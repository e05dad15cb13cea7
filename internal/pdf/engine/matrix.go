package engine

import (
	"math"

	"golang.org/x/image/math/f64"
)

// Transforms are f64.Aff3 values in row-major order:
//
//	x' = m[0]*x + m[1]*y + m[2]
//	y' = m[3]*x + m[4]*y + m[5]

var identity = f64.Aff3{1, 0, 0, 0, 1, 0}

// operandMatrix converts the six operands a b c d e f of a cm operator.
func operandMatrix(a, b, c, d, e, f float64) f64.Aff3 {
	return f64.Aff3{a, c, e, b, d, f}
}

// concat returns the transform that applies inner first and then outer.
func concat(outer, inner f64.Aff3) f64.Aff3 {
	return f64.Aff3{
		outer[0]*inner[0] + outer[1]*inner[3],
		outer[0]*inner[1] + outer[1]*inner[4],
		outer[0]*inner[2] + outer[1]*inner[5] + outer[2],
		outer[3]*inner[0] + outer[4]*inner[3],
		outer[3]*inner[1] + outer[4]*inner[4],
		outer[3]*inner[2] + outer[4]*inner[5] + outer[5],
	}
}

func apply(m f64.Aff3, x, y float64) (float64, float64) {
	return m[0]*x + m[1]*y + m[2], m[3]*x + m[4]*y + m[5]
}

// lengthScale is the factor by which m scales lengths on average.
func lengthScale(m f64.Aff3) float64 {
	return math.Sqrt(math.Abs(m[0]*m[4] - m[1]*m[3]))
}

// Box is a page boundary in PDF user space, normalized so that LLX <= URX
// and LLY <= URY.
type Box struct {
	LLX, LLY, URX, URY float64
}

// Width returns the horizontal extent of the box
func (b Box) Width() float64 { return b.URX - b.LLX }

// Height returns the vertical extent of the box
func (b Box) Height() float64 { return b.URY - b.LLY }

// deviceMatrix maps user space to device space for a page whose visible
// area is b: the origin moves to the top-left corner and y grows downward.
func (b Box) deviceMatrix() f64.Aff3 {
	return f64.Aff3{1, 0, -b.LLX, 0, -1, b.URY}
}
