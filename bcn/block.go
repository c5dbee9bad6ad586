package bcn

// CompressBlockMasked compresses a 4x4 block of RGBA texels into block.
// Bit i of mask enables texel i (row-major); disabled texels do not
// constrain the fit and hold arbitrary values after decompression.
//
// block must hold format.BlockSize() bytes. BC1 stores the color block at
// block[0:8]. BC2 and BC3 store alpha at block[0:8] and color at
// block[8:16]. BC4 stores the red channel at block[0:8]; BC5 stores red
// at block[0:8] and green at block[8:16].
func CompressBlockMasked(rgba *[64]byte, mask uint32, block []byte, format Format, p Params) {
	p = p.normalized()

	switch format {
	case FormatBC2:
		compressAlphaBC2(rgba, mask, block[:8])
	case FormatBC3:
		compressAlphaBlock(rgba, mask, block[:8], 3)
	case FormatBC4:
		compressAlphaBlock(rgba, mask, block[:8], 0)
		return
	case FormatBC5:
		compressAlphaBlock(rgba, mask, block[:8], 0)
		compressAlphaBlock(rgba, mask, block[8:16], 1)
		return
	}

	set := newColorSet(rgba, mask, format, p.WeighColorByAlpha)
	colorBlock := block[:8]
	if format != FormatBC1 {
		colorBlock = block[8:16]
	}
	compressColorBlock(&set, format, p, colorBlock)
}

// CompressBlock compresses a full 4x4 block.
func CompressBlock(rgba *[64]byte, block []byte, format Format, p Params) {
	CompressBlockMasked(rgba, 0xFFFF, block, format, p)
}

// DecompressBlock expands one compressed block into 16 RGBA texels.
//
// BC4 replicates the decoded channel into r, g and b with opaque alpha.
// BC5 decodes r and g, zeroes b and sets opaque alpha.
func DecompressBlock(rgba *[64]byte, block []byte, format Format) {
	switch format {
	case FormatBC4:
		decompressAlphaBlock(rgba, block[:8], 0)
		for i := 0; i < 16; i++ {
			v := rgba[4*i]
			rgba[4*i+1] = v
			rgba[4*i+2] = v
			rgba[4*i+3] = 255
		}
		return
	case FormatBC5:
		decompressAlphaBlock(rgba, block[:8], 0)
		decompressAlphaBlock(rgba, block[8:16], 1)
		for i := 0; i < 16; i++ {
			rgba[4*i+2] = 0
			rgba[4*i+3] = 255
		}
		return
	}

	colorBlock := block[:8]
	if format != FormatBC1 {
		colorBlock = block[8:16]
	}
	decompressColor(rgba, colorBlock, format == FormatBC1)

	switch format {
	case FormatBC2:
		decompressAlphaBC2(rgba, block[:8])
	case FormatBC3:
		decompressAlphaBlock(rgba, block[:8], 3)
	}
}
