package bcn

import "math"

// compressAlphaBC2 packs explicit 4-bit alpha, two texels per byte,
// even texel in the low nibble. Masked texels encode zero.
func compressAlphaBC2(rgba *[64]byte, mask uint32, block []byte) {
	for i := 0; i < 8; i++ {
		alpha1 := float32(rgba[8*i+3]) * (15.0 / 255.0)
		alpha2 := float32(rgba[8*i+7]) * (15.0 / 255.0)
		quant1 := byte(f32ToI32Clamped(alpha1, 15))
		quant2 := byte(f32ToI32Clamped(alpha2, 15))

		bit1 := uint32(1) << uint(2*i)
		bit2 := uint32(1) << uint(2*i+1)
		if mask&bit1 == 0 {
			quant1 = 0
		}
		if mask&bit2 == 0 {
			quant2 = 0
		}

		block[i] = quant1 | quant2<<4
	}
}

// decompressAlphaBC2 expands 4-bit alpha by nibble replication.
func decompressAlphaBC2(rgba *[64]byte, block []byte) {
	for i := 0; i < 8; i++ {
		quant := block[i]
		lo := quant & 0x0F
		hi := quant >> 4
		rgba[8*i+3] = lo | lo<<4
		rgba[8*i+7] = hi | hi<<4
	}
}

// fixRange widens [min, max] to span at least steps values, preferring to
// raise max before lowering min.
func fixRange(min, max, steps int) (int, int) {
	if max-min < steps {
		max = min + steps
		if max > 255 {
			max = 255
		}
	}
	if max-min < steps {
		min = max - steps
		if min < 0 {
			min = 0
		}
	}
	return min, max
}

// fitAlphaCodes assigns each unmasked texel the nearest codebook entry
// (squared distance, lowest index on ties) and returns the total error.
// Masked texels take index 0 with no error.
func fitAlphaCodes(rgba *[64]byte, mask uint32, channel int, codes *[8]byte, indices *[16]byte) int {
	err := 0
	for i := 0; i < 16; i++ {
		bit := uint32(1) << uint(i)
		if mask&bit == 0 {
			indices[i] = 0
			continue
		}

		value := int(rgba[4*i+channel])
		least := math.MaxInt
		index := 0
		for j := 0; j < 8; j++ {
			dist := value - int(codes[j])
			dist *= dist
			if dist < least {
				least = dist
				index = j
			}
		}

		indices[i] = byte(index)
		err += least
	}
	return err
}

// writeAlphaBlock stores the endpoint pair and sixteen 3-bit indices in
// two LSB-first 3-byte groups.
func writeAlphaBlock(alpha0, alpha1 int, indices *[16]byte, block []byte) {
	block[0] = byte(alpha0)
	block[1] = byte(alpha1)

	dest := 2
	src := 0
	for i := 0; i < 2; i++ {
		value := 0
		for j := 0; j < 8; j++ {
			value |= int(indices[src]) << uint(3*j)
			src++
		}
		for j := 0; j < 3; j++ {
			block[dest] = byte(value >> uint(8*j))
			dest++
		}
	}
}

// writeAlphaBlock5 canonicalizes to alpha0 <= alpha1, which selects the
// 5-entry codebook (with 0 and 255 anchors) on decode.
func writeAlphaBlock5(alpha0, alpha1 int, indices *[16]byte, block []byte) {
	if alpha0 > alpha1 {
		var swapped [16]byte
		for i, index := range indices {
			switch {
			case index == 0:
				swapped[i] = 1
			case index == 1:
				swapped[i] = 0
			case index <= 5:
				swapped[i] = 7 - index
			default:
				swapped[i] = index
			}
		}
		writeAlphaBlock(alpha1, alpha0, &swapped, block)
		return
	}
	writeAlphaBlock(alpha0, alpha1, indices, block)
}

// writeAlphaBlock7 canonicalizes to alpha0 >= alpha1, which selects the
// 7-entry codebook on decode.
func writeAlphaBlock7(alpha0, alpha1 int, indices *[16]byte, block []byte) {
	if alpha0 < alpha1 {
		var swapped [16]byte
		for i, index := range indices {
			switch index {
			case 0:
				swapped[i] = 1
			case 1:
				swapped[i] = 0
			default:
				swapped[i] = 9 - index
			}
		}
		writeAlphaBlock(alpha1, alpha0, &swapped, block)
		return
	}
	writeAlphaBlock(alpha0, alpha1, indices, block)
}

// compressAlphaBlock fits one channel to both interpolated codebooks and
// writes the cheaper of the two encodings. Used for BC3 alpha and the
// BC4/BC5 color channels.
func compressAlphaBlock(rgba *[64]byte, mask uint32, block []byte, channel int) {
	min5, max5 := 255, 0
	min7, max7 := 255, 0
	for i := 0; i < 16; i++ {
		bit := uint32(1) << uint(i)
		if mask&bit == 0 {
			continue
		}
		value := int(rgba[4*i+channel])
		if value < min7 {
			min7 = value
		}
		if value > max7 {
			max7 = value
		}
		// The 5-entry codebook gets 0 and 255 for free.
		if value != 0 && value < min5 {
			min5 = value
		}
		if value != 255 && value > max5 {
			max5 = value
		}
	}

	if min5 > max5 {
		min5 = max5
	}
	if min7 > max7 {
		min7 = max7
	}

	min5, max5 = fixRange(min5, max5, 5)
	min7, max7 = fixRange(min7, max7, 7)

	var codes5, codes7 [8]byte
	codes5[0] = byte(min5)
	codes5[1] = byte(max5)
	for i := 1; i < 5; i++ {
		codes5[1+i] = byte(((5-i)*min5 + i*max5) / 5)
	}
	codes5[6] = 0
	codes5[7] = 255

	codes7[0] = byte(min7)
	codes7[1] = byte(max7)
	for i := 1; i < 7; i++ {
		codes7[1+i] = byte(((7-i)*min7 + i*max7) / 7)
	}

	var indices5, indices7 [16]byte
	err5 := fitAlphaCodes(rgba, mask, channel, &codes5, &indices5)
	err7 := fitAlphaCodes(rgba, mask, channel, &codes7, &indices7)

	if err5 <= err7 {
		writeAlphaBlock5(min5, max5, &indices5, block)
	} else {
		writeAlphaBlock7(min7, max7, &indices7, block)
	}
}

// decompressAlphaBlock expands an 8-byte interpolated block into one
// channel of the texel array.
func decompressAlphaBlock(rgba *[64]byte, block []byte, channel int) {
	alpha0 := int(block[0])
	alpha1 := int(block[1])

	var codes [8]byte
	codes[0] = byte(alpha0)
	codes[1] = byte(alpha1)
	if alpha0 <= alpha1 {
		for i := 1; i < 5; i++ {
			codes[1+i] = byte(((5-i)*alpha0 + i*alpha1) / 5)
		}
		codes[6] = 0
		codes[7] = 255
	} else {
		for i := 1; i < 7; i++ {
			codes[1+i] = byte(((7-i)*alpha0 + i*alpha1) / 7)
		}
	}

	var indices [16]byte
	src := 2
	dest := 0
	for i := 0; i < 2; i++ {
		value := 0
		for j := 0; j < 3; j++ {
			value |= int(block[src]) << uint(8*j)
			src++
		}
		for j := 0; j < 8; j++ {
			indices[dest] = byte(value >> uint(3*j) & 0x7)
			dest++
		}
	}

	for i := 0; i < 16; i++ {
		rgba[4*i+channel] = codes[indices[i]]
	}
}
