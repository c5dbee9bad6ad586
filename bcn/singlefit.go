package bcn

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// singleColorFit encodes a block whose texels collapsed to one color.
// Endpoints come from precomputed tables indexed by the 8-bit channel
// value, trying palette index 0 and the first interpolated index.
type singleColorFit struct {
	set       *colorSet
	color     [3]int32
	start     mgl32.Vec3
	end       mgl32.Vec3
	index     byte
	err       uint32
	bestError uint32
}

func newSingleColorFit(set *colorSet) *singleColorFit {
	p := set.points[0]
	return &singleColorFit{
		set: set,
		color: [3]int32{
			f32ToI32Clamped(p[0]*255, 255),
			f32ToI32Clamped(p[1]*255, 255),
			f32ToI32Clamped(p[2]*255, 255),
		},
		err:       math.MaxUint32,
		bestError: math.MaxUint32,
	}
}

func (f *singleColorFit) computeEndpoints(lut *[3]*singleLookup) {
	f.err = math.MaxUint32
	for index := 0; index < 2; index++ {
		var sources [3]sourceBlock
		var errSum uint32
		for channel := 0; channel < 3; channel++ {
			sources[channel] = lut[channel][f.color[channel]][index]
			diff := uint32(sources[channel].err)
			errSum += diff * diff
		}

		if errSum < f.err {
			f.start = mgl32.Vec3{
				float32(sources[0].start) / 31,
				float32(sources[1].start) / 63,
				float32(sources[2].start) / 31,
			}
			f.end = mgl32.Vec3{
				float32(sources[0].end) / 31,
				float32(sources[1].end) / 63,
				float32(sources[2].end) / 31,
			}
			f.index = byte(2 * index)
			f.err = errSum
		}
	}
}

func (f *singleColorFit) compress3(block []byte) {
	l53, l63, _, _ := singleLookups()
	lut := [3]*singleLookup{l53, l63, l53}
	f.computeEndpoints(&lut)

	if f.err < f.bestError {
		source := [16]byte{}
		for i := range source {
			source[i] = f.index
		}
		var indices [16]byte
		f.set.remapIndices(source[:], &indices)
		writeColorBlock3(f.start, f.end, &indices, block)
		f.bestError = f.err
	}
}

func (f *singleColorFit) compress4(block []byte) {
	_, _, l54, l64 := singleLookups()
	lut := [3]*singleLookup{l54, l64, l54}
	f.computeEndpoints(&lut)

	if f.err < f.bestError {
		source := [16]byte{}
		for i := range source {
			source[i] = f.index
		}
		var indices [16]byte
		f.set.remapIndices(source[:], &indices)
		writeColorBlock4(f.start, f.end, &indices, block)
		f.bestError = f.err
	}
}
