package systems

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/fanflow/components"
)

// normEpsilon is the length below which a vector is treated as zero.
const normEpsilon = 1e-12

// clampFloat clamps v between minVal and maxVal.
func clampFloat(v, minVal, maxVal float64) float64 {
	if v < minVal {
		return minVal
	}
	if v > maxVal {
		return maxVal
	}
	return v
}

// falloff returns max(0, 1 - d/radius). A non-positive radius yields 0.
func falloff(d, radius float64) float64 {
	if radius <= 0 {
		return 0
	}
	return max(0, 1-d/radius)
}

// safeUnit returns the unit vector of v, or the zero vector when v has no length.
// r3.Unit would return NaN components for a zero vector.
func safeUnit(v r3.Vec) r3.Vec {
	n := r3.Norm(v)
	if n < normEpsilon {
		return r3.Vec{}
	}
	return r3.Scale(1/n, v)
}

// horizontal drops the vertical component.
func horizontal(v r3.Vec) r3.Vec {
	return r3.Vec{X: v.X, Y: v.Y}
}

// tangent returns the horizontal unit vector perpendicular to v,
// counter-clockwise when viewed from above.
func tangent(v r3.Vec) r3.Vec {
	return safeUnit(r3.Vec{X: -v.Y, Y: v.X})
}

func posVec(p *components.Position) r3.Vec {
	return r3.Vec{X: p.X, Y: p.Y, Z: p.Z}
}

func velVec(v *components.Velocity) r3.Vec {
	return r3.Vec{X: v.X, Y: v.Y, Z: v.Z}
}

// Speed returns the magnitude of a velocity.
func Speed(v components.Velocity) float64 {
	return r3.Norm(velVec(&v))
}
