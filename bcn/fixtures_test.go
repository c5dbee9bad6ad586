package bcn_test

import "github.com/texcodec/bcn/bcn"

// Block fixtures with encodings cross-checked against AMD Compressonator
// and libsquish output. Each pattern is exactly representable, so it is
// usable in both directions: compressing decoded must yield encoded, and
// decompressing encoded must yield decoded.

// grayChecker7F is a gray checkerboard starting with 0xFF top-left, with
// the four middle texels at 0x7F.
var grayChecker7F = [16]byte{
	0xFF, 0x00, 0xFF, 0x00,
	0x00, 0x7F, 0x7F, 0xFF,
	0xFF, 0x7F, 0x7F, 0x00,
	0x00, 0xFF, 0x00, 0xFF,
}

// grayChecker55 swaps the middle texels to 0x55, which interpolates
// exactly as 1/3 between black and white.
var grayChecker55 = [16]byte{
	0xFF, 0x00, 0xFF, 0x00,
	0x00, 0x55, 0x55, 0xFF,
	0xFF, 0x55, 0x55, 0x00,
	0x00, 0x55, 0x55, 0xFF,
}

// greenChecker7F is the inverse checkerboard used as the BC5 green
// channel; the 0x7F middles stay in place.
var greenChecker7F = [16]byte{
	0x00, 0xFF, 0x00, 0xFF,
	0xFF, 0x7F, 0x7F, 0x00,
	0x00, 0x7F, 0x7F, 0xFF,
	0xFF, 0x00, 0xFF, 0x00,
}

// colorRowsRGB holds one color per row: row 0 (FF,96,4A), row 1
// (FF,78,34), rows 2-3 (FF,69,29).
var colorRowsRGB = [48]byte{
	0xFF, 0x96, 0x4A, 0xFF, 0x96, 0x4A, 0xFF, 0x96, 0x4A, 0xFF, 0x96, 0x4A,
	0xFF, 0x78, 0x34, 0xFF, 0x78, 0x34, 0xFF, 0x78, 0x34, 0xFF, 0x78, 0x34,
	0xFF, 0x69, 0x29, 0xFF, 0x69, 0x29, 0xFF, 0x69, 0x29, 0xFF, 0x69, 0x29,
	0xFF, 0x69, 0x29, 0xFF, 0x69, 0x29, 0xFF, 0x69, 0x29, 0xFF, 0x69, 0x29,
}

// linearRamp steps alpha from 0x00 to 0xFF in 0x11 increments, which the
// BC2 4-bit quantizer represents exactly.
var linearRamp = [16]byte{
	0x00, 0x11, 0x22, 0x33, 0x44, 0x55, 0x66, 0x77,
	0x88, 0x99, 0xAA, 0xBB, 0xCC, 0xDD, 0xEE, 0xFF,
}

// interpRamp is the 5-mode interpolated alpha ramp: endpoints 0x24/0xDB
// with 0 and 255 anchors.
var interpRamp = [16]byte{
	0x00, 0x24, 0x48, 0x6D, 0x91, 0xB6, 0xDB, 0xFF,
	0x00, 0x24, 0x48, 0x6D, 0x91, 0xB6, 0xDB, 0xFF,
}

var opaque16 = [16]byte{
	0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF,
	0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF,
}

// lumaRGBA replicates one value per texel across r, g and b.
func lumaRGBA(luma, alpha [16]byte) [64]byte {
	var out [64]byte
	for i := 0; i < 16; i++ {
		out[4*i+0] = luma[i]
		out[4*i+1] = luma[i]
		out[4*i+2] = luma[i]
		out[4*i+3] = alpha[i]
	}
	return out
}

func rgbRGBA(rgb [48]byte, alpha [16]byte) [64]byte {
	var out [64]byte
	for i := 0; i < 16; i++ {
		out[4*i+0] = rgb[3*i+0]
		out[4*i+1] = rgb[3*i+1]
		out[4*i+2] = rgb[3*i+2]
		out[4*i+3] = alpha[i]
	}
	return out
}

// rgRGBA builds a two-channel texel block with b = 0 and opaque alpha,
// the shape BC5 decodes to.
func rgRGBA(r, g [16]byte) [64]byte {
	var out [64]byte
	for i := 0; i < 16; i++ {
		out[4*i+0] = r[i]
		out[4*i+1] = g[i]
		out[4*i+3] = 0xFF
	}
	return out
}

type goldenBlock struct {
	name    string
	format  bcn.Format
	encoded []byte
	decoded [64]byte
}

var (
	bc1GrayEncoded  = []byte{0x00, 0x00, 0xFF, 0xFF, 0x11, 0x68, 0x29, 0x44}
	bc1ColorEncoded = []byte{0xA9, 0xFC, 0x45, 0xFB, 0x00, 0xFF, 0x55, 0x55}
	bc2AlphaEncoded = []byte{0x10, 0x32, 0x54, 0x76, 0x98, 0xBA, 0xDC, 0xFE}
	bc3AlphaEncoded = []byte{0x24, 0xDB, 0x86, 0xC6, 0xE6, 0x86, 0xC6, 0xE6}
	grayColorBytes  = []byte{0xFF, 0xFF, 0x00, 0x00, 0x44, 0x3D, 0x7C, 0x11}
	bc4GrayEncoded  = []byte{0x7F, 0x84, 0xF7, 0x6D, 0xE0, 0x07, 0xEC, 0xFB}
	bc5GreenEncoded = []byte{0x7F, 0x84, 0xBE, 0x7F, 0xC0, 0x06, 0x7E, 0xDF}
)

func cat(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func goldenBlocks() []goldenBlock {
	return []goldenBlock{
		{
			name:    "BC1 gray",
			format:  bcn.FormatBC1,
			encoded: bc1GrayEncoded,
			decoded: lumaRGBA(grayChecker7F, opaque16),
		},
		{
			name:    "BC1 color",
			format:  bcn.FormatBC1,
			encoded: bc1ColorEncoded,
			decoded: rgbRGBA(colorRowsRGB, opaque16),
		},
		{
			name:    "BC2 gray",
			format:  bcn.FormatBC2,
			encoded: cat(bc2AlphaEncoded, grayColorBytes),
			decoded: lumaRGBA(grayChecker55, linearRamp),
		},
		{
			name:    "BC2 color",
			format:  bcn.FormatBC2,
			encoded: cat(bc2AlphaEncoded, bc1ColorEncoded),
			decoded: rgbRGBA(colorRowsRGB, linearRamp),
		},
		{
			name:    "BC3 gray",
			format:  bcn.FormatBC3,
			encoded: cat(bc3AlphaEncoded, grayColorBytes),
			decoded: lumaRGBA(grayChecker55, interpRamp),
		},
		{
			name:    "BC3 color",
			format:  bcn.FormatBC3,
			encoded: cat(bc3AlphaEncoded, bc1ColorEncoded),
			decoded: rgbRGBA(colorRowsRGB, interpRamp),
		},
		{
			name:    "BC4 gray",
			format:  bcn.FormatBC4,
			encoded: bc4GrayEncoded,
			decoded: lumaRGBA(grayChecker7F, opaque16),
		},
		{
			name:    "BC5 gray",
			format:  bcn.FormatBC5,
			encoded: cat(bc4GrayEncoded, bc5GreenEncoded),
			decoded: rgRGBA(grayChecker7F, greenChecker7F),
		},
	}
}
