package bcn

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// colorSet is the deduplicated, weighted set of colors in one 4x4 block.
//
// remap carries, per texel, the index of its point in the set, or -1 for
// texels excluded by the mask or by BC1 punch-through.
type colorSet struct {
	count       int
	points      [16]mgl32.Vec3
	weights     [16]float32
	remap       [16]int8
	transparent bool
}

func newColorSet(rgba *[64]byte, mask uint32, format Format, weighByAlpha bool) colorSet {
	isBC1 := format == FormatBC1

	var set colorSet
	for i := 0; i < 16; i++ {
		bit := uint32(1) << uint(i)
		if mask&bit == 0 {
			set.remap[i] = -1
			continue
		}

		// BC1 encodes alpha < 128 as the transparent palette index.
		if isBC1 && rgba[4*i+3] < 128 {
			set.remap[i] = -1
			set.transparent = true
			continue
		}

		for j := 0; j <= i; j++ {
			if j == i {
				x := float32(rgba[4*i+0]) / 255
				y := float32(rgba[4*i+1]) / 255
				z := float32(rgba[4*i+2]) / 255

				// Zero-alpha texels still get a small non-zero weight.
				w := float32(1)
				if weighByAlpha {
					w = (float32(rgba[4*i+3]) + 1) / 256
				}

				set.points[set.count] = mgl32.Vec3{x, y, z}
				set.weights[set.count] = w
				set.remap[i] = int8(set.count)
				set.count++
				break
			}

			oldbit := uint32(1) << uint(j)
			match := mask&oldbit != 0 &&
				rgba[4*i+0] == rgba[4*j+0] &&
				rgba[4*i+1] == rgba[4*j+1] &&
				rgba[4*i+2] == rgba[4*j+2] &&
				(rgba[4*j+3] >= 128 || !isBC1)
			if match {
				index := set.remap[j]

				w := float32(1)
				if weighByAlpha {
					w = (float32(rgba[4*i+3]) + 1) / 256
				}

				set.weights[index] += w
				set.remap[i] = index
				break
			}
		}
	}

	for i := 0; i < set.count; i++ {
		set.weights[i] = float32(math.Sqrt(float64(set.weights[i])))
	}
	return set
}

// remapIndices expands per-point indices back to per-texel indices.
// Excluded texels take index 3 (the BC1 transparent slot).
func (s *colorSet) remapIndices(source []byte, target *[16]byte) {
	for i := 0; i < 16; i++ {
		j := s.remap[i]
		if j == -1 {
			target[i] = 3
		} else {
			target[i] = source[j]
		}
	}
}
