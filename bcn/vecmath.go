package bcn

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// f32Epsilon is the float32 machine epsilon (2^-23).
const f32Epsilon = 1.1920929e-7

// sym3x3 is a symmetric 3x3 matrix packed as the upper triangle:
// [xx, xy, xz, yy, yz, zz].
type sym3x3 [6]float32

// computeWeightedCovariance builds the covariance matrix of points about
// their weighted centroid.
func computeWeightedCovariance(points []mgl32.Vec3, weights []float32) sym3x3 {
	var total float32
	centroid := mgl32.Vec3{}
	for i := range points {
		total += weights[i]
		centroid = centroid.Add(points[i].Mul(weights[i]))
	}
	if total > f32Epsilon {
		centroid = centroid.Mul(1 / total)
	}

	var cov sym3x3
	for i := range points {
		a := points[i].Sub(centroid)
		b := a.Mul(weights[i])
		cov[0] += a[0] * b[0]
		cov[1] += a[0] * b[1]
		cov[2] += a[0] * b[2]
		cov[3] += a[1] * b[1]
		cov[4] += a[1] * b[2]
		cov[5] += a[2] * b[2]
	}
	return cov
}

// computePrincipalComponent estimates the dominant eigenvector of m by
// power iteration. The result is a direction, not unit length.
func computePrincipalComponent(m sym3x3) mgl32.Vec3 {
	row0 := mgl32.Vec4{m[0], m[1], m[2], 0}
	row1 := mgl32.Vec4{m[1], m[3], m[4], 0}
	row2 := mgl32.Vec4{m[2], m[4], m[5], 0}

	v := mgl32.Vec4{1, 1, 1, 1}
	for i := 0; i < 8; i++ {
		w := row0.Mul(v[0]).Add(row1.Mul(v[1])).Add(row2.Mul(v[2]))
		a := maxf32(w[0], maxf32(w[1], w[2]))
		v = w.Mul(1 / a)
	}
	return v.Vec3()
}

func maxf32(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}

func minf32(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

// minVec3 and maxVec3 are component-wise.
func minVec3(a, b mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{minf32(a[0], b[0]), minf32(a[1], b[1]), minf32(a[2], b[2])}
}

func maxVec3(a, b mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{maxf32(a[0], b[0]), maxf32(a[1], b[1]), maxf32(a[2], b[2])}
}

func mulElem3(a, b mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{a[0] * b[0], a[1] * b[1], a[2] * b[2]}
}

func mulElem4(a, b mgl32.Vec4) mgl32.Vec4 {
	return mgl32.Vec4{a[0] * b[0], a[1] * b[1], a[2] * b[2], a[3] * b[3]}
}

func clampVec3(v mgl32.Vec3, lo, hi float32) mgl32.Vec3 {
	return mgl32.Vec3{
		minf32(maxf32(v[0], lo), hi),
		minf32(maxf32(v[1], lo), hi),
		minf32(maxf32(v[2], lo), hi),
	}
}

// truncVec3 truncates each component toward zero.
func truncVec3(v mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{
		float32(math.Trunc(float64(v[0]))),
		float32(math.Trunc(float64(v[1]))),
		float32(math.Trunc(float64(v[2]))),
	}
}

// snapToGrid clamps v to [0,1] and quantizes it onto the RGB565 lattice.
func snapToGrid(v mgl32.Vec3) mgl32.Vec3 {
	grid := mgl32.Vec3{31, 63, 31}
	gridrcp := mgl32.Vec3{1.0 / 31, 1.0 / 63, 1.0 / 31}
	half := mgl32.Vec3{0.5, 0.5, 0.5}
	v = clampVec3(v, 0, 1)
	return mulElem3(truncVec3(mulElem3(grid, v).Add(half)), gridrcp)
}

func clampVec4(v mgl32.Vec4, lo, hi float32) mgl32.Vec4 {
	return mgl32.Vec4{
		minf32(maxf32(v[0], lo), hi),
		minf32(maxf32(v[1], lo), hi),
		minf32(maxf32(v[2], lo), hi),
		minf32(maxf32(v[3], lo), hi),
	}
}

func truncVec4(v mgl32.Vec4) mgl32.Vec4 {
	return mgl32.Vec4{
		float32(math.Trunc(float64(v[0]))),
		float32(math.Trunc(float64(v[1]))),
		float32(math.Trunc(float64(v[2]))),
		float32(math.Trunc(float64(v[3]))),
	}
}

// snapToGrid4 is snapToGrid over Vec4; the w lane snaps to zero.
func snapToGrid4(v mgl32.Vec4) mgl32.Vec4 {
	grid := mgl32.Vec4{31, 63, 31, 0}
	gridrcp := mgl32.Vec4{1.0 / 31, 1.0 / 63, 1.0 / 31, 0}
	half := mgl32.Vec4{0.5, 0.5, 0.5, 0.5}
	v = clampVec4(v, 0, 1)
	return mulElem4(truncVec4(mulElem4(grid, v).Add(half)), gridrcp)
}

// f32ToI32Clamped rounds half away from zero and clamps to [0, limit].
func f32ToI32Clamped(a float32, limit int32) int32 {
	i := int32(math.Round(float64(a)))
	if i < 0 {
		return 0
	}
	if i > limit {
		return limit
	}
	return i
}
