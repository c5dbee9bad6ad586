package bcn

import (
	"encoding/binary"

	"github.com/go-gl/mathgl/mgl32"
)

// pack565 quantizes a [0,1] RGB vector to RGB565.
func pack565(c mgl32.Vec3) uint16 {
	r := uint16(f32ToI32Clamped(31*c[0], 31))
	g := uint16(f32ToI32Clamped(63*c[1], 63))
	b := uint16(f32ToI32Clamped(31*c[2], 31))
	return r<<11 | g<<5 | b
}

// unpack565 expands RGB565 to RGB888 with bit replication; alpha is 255.
func unpack565(value uint16, color []byte) {
	r := byte(value >> 11 & 0x1F)
	g := byte(value >> 5 & 0x3F)
	b := byte(value & 0x1F)
	color[0] = r<<3 | r>>2
	color[1] = g<<2 | g>>4
	color[2] = b<<3 | b>>2
	color[3] = 255
}

// writeColorBlock stores two endpoints and sixteen 2-bit indices.
// Indices pack LSB-first, four per byte.
func writeColorBlock(a, b uint16, indices *[16]byte, block []byte) {
	binary.LittleEndian.PutUint16(block[0:2], a)
	binary.LittleEndian.PutUint16(block[2:4], b)
	for i := 0; i < 4; i++ {
		ind := indices[4*i:]
		block[4+i] = ind[0] | ind[1]<<2 | ind[2]<<4 | ind[3]<<6
	}
}

// writeColorBlock3 writes a 3-color block. Canonical order is a <= b;
// swapped endpoints exchange indices 0 and 1.
func writeColorBlock3(start, end mgl32.Vec3, indices *[16]byte, block []byte) {
	a := pack565(start)
	b := pack565(end)

	var remapped [16]byte
	if a <= b {
		remapped = *indices
	} else {
		a, b = b, a
		for i, x := range indices {
			switch x {
			case 0:
				remapped[i] = 1
			case 1:
				remapped[i] = 0
			default:
				remapped[i] = x
			}
		}
	}

	writeColorBlock(a, b, &remapped, block)
}

// writeColorBlock4 writes a 4-color block. Canonical order is a >= b;
// swapped endpoints flip the low index bit. Equal endpoints force all
// indices to 0.
func writeColorBlock4(start, end mgl32.Vec3, indices *[16]byte, block []byte) {
	a := pack565(start)
	b := pack565(end)

	var remapped [16]byte
	if a < b {
		a, b = b, a
		for i, x := range indices {
			remapped[i] = (x ^ 0x1) & 0x3
		}
	} else if a > b {
		remapped = *indices
	}

	writeColorBlock(a, b, &remapped, block)
}

// decompressColor expands an 8-byte color block into 16 RGBA texels.
// For BC1, a <= b selects the 3-color mode with a transparent black slot.
func decompressColor(rgba *[64]byte, block []byte, isBC1 bool) {
	a := binary.LittleEndian.Uint16(block[0:2])
	b := binary.LittleEndian.Uint16(block[2:4])

	var codes [16]byte
	unpack565(a, codes[0:4])
	unpack565(b, codes[4:8])

	threeMode := isBC1 && a <= b
	for i := 0; i < 3; i++ {
		c := uint32(codes[i])
		d := uint32(codes[4+i])
		if threeMode {
			codes[8+i] = byte((c + d) / 2)
			codes[12+i] = 0
		} else {
			codes[8+i] = byte((2*c + d) / 3)
			codes[12+i] = byte((c + 2*d) / 3)
		}
	}
	codes[8+3] = 255
	if threeMode {
		codes[12+3] = 0
	} else {
		codes[12+3] = 255
	}

	var indices [16]byte
	for i := 0; i < 4; i++ {
		packed := block[4+i]
		indices[4*i+0] = packed & 0x3
		indices[4*i+1] = packed >> 2 & 0x3
		indices[4*i+2] = packed >> 4 & 0x3
		indices[4*i+3] = packed >> 6 & 0x3
	}

	for i := 0; i < 16; i++ {
		offset := 4 * int(indices[i])
		copy(rgba[4*i:4*i+4], codes[offset:offset+4])
	}
}
