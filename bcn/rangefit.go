package bcn

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// rangeFit picks endpoints at the extremes of the point set projected
// onto the principal axis.
type rangeFit struct {
	set       *colorSet
	metric    mgl32.Vec3
	start     mgl32.Vec3
	end       mgl32.Vec3
	bestError float32
}

func newRangeFit(set *colorSet, p Params) *rangeFit {
	fit := &rangeFit{
		set:       set,
		metric:    p.Weights,
		bestError: math.MaxFloat32,
	}

	values := set.points[:set.count]
	weights := set.weights[:set.count]
	cov := computeWeightedCovariance(values, weights)
	principle := computePrincipalComponent(cov)

	var start, end mgl32.Vec3
	if set.count > 0 {
		start = values[0]
		end = values[0]
		min := values[0].Dot(principle)
		max := min
		for i := 1; i < set.count; i++ {
			val := values[i].Dot(principle)
			if val < min {
				start = values[i]
				min = val
			} else if val > max {
				end = values[i]
				max = val
			}
		}
	}

	fit.start = snapToGrid(start)
	fit.end = snapToGrid(end)
	return fit
}

func (f *rangeFit) compress3(block []byte) {
	codes := [3]mgl32.Vec3{
		f.start,
		f.end,
		f.start.Mul(0.5).Add(f.end.Mul(0.5)),
	}
	f.compress(codes[:], block, writeColorBlock3)
}

func (f *rangeFit) compress4(block []byte) {
	codes := [4]mgl32.Vec3{
		f.start,
		f.end,
		f.start.Mul(2.0 / 3.0).Add(f.end.Mul(1.0 / 3.0)),
		f.start.Mul(1.0 / 3.0).Add(f.end.Mul(2.0 / 3.0)),
	}
	f.compress(codes[:], block, writeColorBlock4)
}

type blockWriter func(start, end mgl32.Vec3, indices *[16]byte, block []byte)

// compress assigns each point its nearest code and writes the block if the
// accumulated metric error beats the best so far.
func (f *rangeFit) compress(codes []mgl32.Vec3, block []byte, write blockWriter) {
	values := f.set.points[:f.set.count]

	var closest [16]byte
	var errSum float32
	for i := range values {
		dist := float32(math.MaxFloat32)
		idx := 0
		for j := range codes {
			diff := mulElem3(f.metric, values[i].Sub(codes[j]))
			d := diff.Dot(diff)
			if d < dist {
				dist = d
				idx = j
			}
		}
		closest[i] = byte(idx)
		errSum += dist
	}

	if errSum < f.bestError {
		var indices [16]byte
		f.set.remapIndices(closest[:], &indices)
		write(f.start, f.end, &indices, block)
		f.bestError = errSum
	}
}
