package bcn

import "github.com/go-gl/mathgl/mgl32"

// Format selects the compressed block format.
type Format uint8

const (
	// FormatBC1 is S3TC DXT1: 8-byte blocks, RGB with optional 1-bit
	// punch-through alpha.
	FormatBC1 Format = iota
	// FormatBC2 is S3TC DXT3: 16-byte blocks, explicit 4-bit alpha.
	FormatBC2
	// FormatBC3 is S3TC DXT5: 16-byte blocks, interpolated alpha.
	FormatBC3
	// FormatBC4 is RGTC1: 8-byte blocks, single interpolated channel (R).
	FormatBC4
	// FormatBC5 is RGTC2: 16-byte blocks, two interpolated channels (RG).
	FormatBC5
)

func (f Format) String() string {
	switch f {
	case FormatBC1:
		return "BC1"
	case FormatBC2:
		return "BC2"
	case FormatBC3:
		return "BC3"
	case FormatBC4:
		return "BC4"
	case FormatBC5:
		return "BC5"
	default:
		return "Format(unknown)"
	}
}

// BlockSize returns the encoded size in bytes of one 4x4 block, or 0 for
// an unknown format.
func (f Format) BlockSize() int {
	switch f {
	case FormatBC1, FormatBC4:
		return 8
	case FormatBC2, FormatBC3, FormatBC5:
		return 16
	default:
		return 0
	}
}

func (f Format) valid() bool {
	return f <= FormatBC5
}

// hasColor reports whether the format stores an RGB color block.
func (f Format) hasColor() bool {
	return f == FormatBC1 || f == FormatBC2 || f == FormatBC3
}

// Algorithm selects the endpoint fitting strategy for color blocks.
type Algorithm uint8

const (
	// AlgorithmClusterFit runs the least-squares cluster fit over one
	// ordering along the principal axis. The default.
	AlgorithmClusterFit Algorithm = iota
	// AlgorithmRangeFit projects onto the principal axis and uses the
	// extremes. Fast, lower quality.
	AlgorithmRangeFit
	// AlgorithmIterativeClusterFit retries the cluster fit on up to 8
	// orderings. Slow, best quality.
	AlgorithmIterativeClusterFit
)

func (a Algorithm) String() string {
	switch a {
	case AlgorithmClusterFit:
		return "cluster"
	case AlgorithmRangeFit:
		return "range"
	case AlgorithmIterativeClusterFit:
		return "iterative"
	default:
		return "Algorithm(unknown)"
	}
}

func (a Algorithm) valid() bool {
	return a <= AlgorithmIterativeClusterFit
}

// Channel weights for the fit error metric.
var (
	// WeightsPerceptual weighs channels by luminance contribution
	// (ITU-R BT.709). The default.
	WeightsPerceptual = mgl32.Vec3{0.2126, 0.7152, 0.0722}

	// WeightsUniform weighs all channels equally.
	WeightsUniform = mgl32.Vec3{1, 1, 1}
)

// Params controls per-block compression.
//
// The zero value selects the cluster fit with perceptual weights and no
// alpha weighting.
type Params struct {
	// Algorithm is the endpoint fitting strategy.
	Algorithm Algorithm

	// Weights is the per-channel error metric. A zero vector selects
	// WeightsPerceptual.
	Weights mgl32.Vec3

	// WeighColorByAlpha scales each texel's fit weight by its alpha.
	// Useful for textures that will be alpha-blended.
	WeighColorByAlpha bool
}

// normalized fills in defaults for zero-value fields.
func (p Params) normalized() Params {
	if p.Weights == (mgl32.Vec3{}) {
		p.Weights = WeightsPerceptual
	}
	return p
}

// CompressedSize returns the number of bytes needed to hold width x height
// texels compressed as format: ceil(w/4) * ceil(h/4) * block size.
//
// Returns 0 for non-positive dimensions or an unknown format.
func CompressedSize(width, height int, format Format) int {
	if width <= 0 || height <= 0 {
		return 0
	}
	bw := (width + 3) / 4
	bh := (height + 3) / 4
	return bw * bh * format.BlockSize()
}
