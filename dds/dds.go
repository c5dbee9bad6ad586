// Package dds reads and writes DDS containers for BC-compressed textures,
// plus the BCZ1 zstd payload sidecar used by asset pipelines.
//
// Encode always emits a DX10 extension header. Decode additionally accepts
// the legacy FourCC headers (DXT1/DXT3/DXT5, ATI1/BC4U, ATI2/BC5U) that
// older exporters write.
package dds

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/pkg/errors"

	"github.com/texcodec/bcn/bcn"
)

// DXGI_FORMAT values for the block formats this package understands.
const (
	dxgiBC1UNorm     = 71
	dxgiBC1UNormSRGB = 72
	dxgiBC2UNorm     = 74
	dxgiBC2UNormSRGB = 75
	dxgiBC3UNorm     = 77
	dxgiBC3UNormSRGB = 78
	dxgiBC4UNorm     = 80
	dxgiBC4SNorm     = 81
	dxgiBC5UNorm     = 83
	dxgiBC5SNorm     = 84
)

const (
	ddsMagic        = 0x20534444 // "DDS "
	headerSize      = 124
	pixelFormatSize = 32

	flagCaps        = 0x1
	flagHeight      = 0x2
	flagWidth       = 0x4
	flagPixelFormat = 0x1000
	flagMipMapCount = 0x20000
	flagLinearSize  = 0x80000

	capsTexture = 0x1000
	capsMipMap  = 0x400000

	pfFourCC = 0x4

	fourCCDX10 = 0x30315844 // "DX10"
	fourCCDXT1 = 0x31545844 // "DXT1"
	fourCCDXT3 = 0x33545844 // "DXT3"
	fourCCDXT5 = 0x35545844 // "DXT5"
	fourCCATI1 = 0x31495441 // "ATI1"
	fourCCATI2 = 0x32495441 // "ATI2"
	fourCCBC4U = 0x55344342 // "BC4U"
	fourCCBC5U = 0x55354342 // "BC5U"
)

// Texture is a decoded DDS payload: one format, one mip chain.
// Mips[0] is the full-resolution level.
type Texture struct {
	Format bcn.Format
	SRGB   bool
	Width  int
	Height int
	Mips   [][]byte
}

// Header is the parsed DDS metadata, without payload.
type Header struct {
	Width      int
	Height     int
	MipCount   int
	Format     bcn.Format
	SRGB       bool
	DXGIFormat uint32
	FourCC     uint32 // non-zero only for legacy headers
}

func (h *Header) String() string {
	return fmt.Sprintf("%s %dx%d mips=%d", FormatName(h.DXGIFormat), h.Width, h.Height, h.MipCount)
}

// DXGIFormat maps a block format to its DXGI_FORMAT value. BC4 and BC5
// have no sRGB variants; srgb is ignored for them.
func DXGIFormat(f bcn.Format, srgb bool) uint32 {
	switch f {
	case bcn.FormatBC1:
		if srgb {
			return dxgiBC1UNormSRGB
		}
		return dxgiBC1UNorm
	case bcn.FormatBC2:
		if srgb {
			return dxgiBC2UNormSRGB
		}
		return dxgiBC2UNorm
	case bcn.FormatBC3:
		if srgb {
			return dxgiBC3UNormSRGB
		}
		return dxgiBC3UNorm
	case bcn.FormatBC4:
		return dxgiBC4UNorm
	case bcn.FormatBC5:
		return dxgiBC5UNorm
	default:
		return 0
	}
}

// FormatName returns the DXGI_FORMAT identifier for known values.
func FormatName(dxgi uint32) string {
	switch dxgi {
	case dxgiBC1UNorm:
		return "BC1_UNORM"
	case dxgiBC1UNormSRGB:
		return "BC1_UNORM_SRGB"
	case dxgiBC2UNorm:
		return "BC2_UNORM"
	case dxgiBC2UNormSRGB:
		return "BC2_UNORM_SRGB"
	case dxgiBC3UNorm:
		return "BC3_UNORM"
	case dxgiBC3UNormSRGB:
		return "BC3_UNORM_SRGB"
	case dxgiBC4UNorm:
		return "BC4_UNORM"
	case dxgiBC4SNorm:
		return "BC4_SNORM"
	case dxgiBC5UNorm:
		return "BC5_UNORM"
	case dxgiBC5SNorm:
		return "BC5_SNORM"
	default:
		return fmt.Sprintf("DXGI_FORMAT(%d)", dxgi)
	}
}

func formatFromDXGI(dxgi uint32) (f bcn.Format, srgb, ok bool) {
	switch dxgi {
	case dxgiBC1UNorm:
		return bcn.FormatBC1, false, true
	case dxgiBC1UNormSRGB:
		return bcn.FormatBC1, true, true
	case dxgiBC2UNorm:
		return bcn.FormatBC2, false, true
	case dxgiBC2UNormSRGB:
		return bcn.FormatBC2, true, true
	case dxgiBC3UNorm:
		return bcn.FormatBC3, false, true
	case dxgiBC3UNormSRGB:
		return bcn.FormatBC3, true, true
	case dxgiBC4UNorm:
		return bcn.FormatBC4, false, true
	case dxgiBC5UNorm:
		return bcn.FormatBC5, false, true
	default:
		// SNORM variants share the bit layout but not the value
		// interpretation, so they are rejected rather than mis-decoded.
		return 0, false, false
	}
}

func formatFromFourCC(fourCC uint32) (bcn.Format, bool) {
	switch fourCC {
	case fourCCDXT1:
		return bcn.FormatBC1, true
	case fourCCDXT3:
		return bcn.FormatBC2, true
	case fourCCDXT5:
		return bcn.FormatBC3, true
	case fourCCATI1, fourCCBC4U:
		return bcn.FormatBC4, true
	case fourCCATI2, fourCCBC5U:
		return bcn.FormatBC5, true
	default:
		return 0, false
	}
}

func fourCCString(fourCC uint32) string {
	return string([]byte{
		byte(fourCC),
		byte(fourCC >> 8),
		byte(fourCC >> 16),
		byte(fourCC >> 24),
	})
}

// MipCount returns the number of stored mip levels.
func (t *Texture) MipCount() int { return len(t.Mips) }

// MipDimensions returns the texel size of mip level for a texture of the
// given full resolution. Each level halves both axes, clamped at 1.
func MipDimensions(width, height, level int) (int, int) {
	for ; level > 0; level-- {
		width, height = nextMip(width, height)
	}
	return width, height
}

// FullMipCount returns the chain length from width x height down to 1x1.
func FullMipCount(width, height int) int {
	count := 1
	for width > 1 || height > 1 {
		width, height = nextMip(width, height)
		count++
	}
	return count
}

func nextMip(w, h int) (int, int) {
	w /= 2
	h /= 2
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return w, h
}

func validateTexture(tex *Texture) error {
	if tex == nil {
		return errors.New("dds: nil texture")
	}
	if tex.Width <= 0 || tex.Height <= 0 {
		return errors.Errorf("dds: invalid dimensions %dx%d", tex.Width, tex.Height)
	}
	if tex.Format.BlockSize() == 0 {
		return errors.Errorf("dds: unsupported format %v", tex.Format)
	}
	if len(tex.Mips) == 0 {
		return errors.New("dds: no mip levels")
	}
	if max := FullMipCount(tex.Width, tex.Height); len(tex.Mips) > max {
		return errors.Errorf("dds: %d mip levels exceed the %d-level chain for %dx%d",
			len(tex.Mips), max, tex.Width, tex.Height)
	}

	w, h := tex.Width, tex.Height
	for level, mip := range tex.Mips {
		want := bcn.CompressedSize(w, h, tex.Format)
		if len(mip) != want {
			return errors.Errorf("dds: mip %d is %d bytes, want %d for %dx%d",
				level, len(mip), want, w, h)
		}
		w, h = nextMip(w, h)
	}
	return nil
}

// Encode writes tex as a DDS file with a DX10 extension header.
func Encode(w io.Writer, tex *Texture) error {
	if err := validateTexture(tex); err != nil {
		return err
	}

	header := make([]byte, 4+headerSize+20)
	binary.LittleEndian.PutUint32(header[0:4], ddsMagic)

	offset := 4
	put := func(v uint32) {
		binary.LittleEndian.PutUint32(header[offset:offset+4], v)
		offset += 4
	}

	put(headerSize)

	flags := uint32(flagCaps | flagHeight | flagWidth | flagPixelFormat | flagLinearSize)
	if len(tex.Mips) > 1 {
		flags |= flagMipMapCount
	}
	put(flags)

	put(uint32(tex.Height))
	put(uint32(tex.Width))
	put(uint32(len(tex.Mips[0]))) // dwPitchOrLinearSize
	put(0)                        // dwDepth
	put(uint32(len(tex.Mips)))
	offset += 44 // dwReserved1[11]

	put(pixelFormatSize)
	put(pfFourCC)
	put(fourCCDX10)
	offset += 20 // bit count and channel masks, zero for DX10

	caps := uint32(capsTexture)
	if len(tex.Mips) > 1 {
		caps |= capsMipMap
	}
	put(caps)
	offset += 12 // dwCaps2..4
	offset += 4  // dwReserved2

	put(DXGIFormat(tex.Format, tex.SRGB))
	put(3) // resourceDimension = TEXTURE2D
	put(0) // miscFlag
	put(1) // arraySize
	put(0) // miscFlags2

	if _, err := w.Write(header); err != nil {
		return errors.Wrap(err, "dds: writing header")
	}
	for level, mip := range tex.Mips {
		if _, err := w.Write(mip); err != nil {
			return errors.Wrapf(err, "dds: writing mip %d", level)
		}
	}
	return nil
}

// DecodeHeader reads the magic, the 124-byte header and, when present, the
// DX10 extension. The reader is left positioned at the payload.
func DecodeHeader(r io.Reader) (*Header, error) {
	var buf [4 + headerSize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return nil, errors.Wrap(err, "dds: reading header")
	}
	if binary.LittleEndian.Uint32(buf[0:4]) != ddsMagic {
		return nil, errors.New("dds: bad magic")
	}

	h := buf[4:]
	if size := binary.LittleEndian.Uint32(h[0:4]); size != headerSize {
		return nil, errors.Errorf("dds: header size %d, want %d", size, headerSize)
	}

	hdr := &Header{
		Height:   int(binary.LittleEndian.Uint32(h[8:12])),
		Width:    int(binary.LittleEndian.Uint32(h[12:16])),
		MipCount: int(binary.LittleEndian.Uint32(h[24:28])),
	}
	if hdr.MipCount == 0 {
		hdr.MipCount = 1
	}

	pflags := binary.LittleEndian.Uint32(h[76:80])
	fourCC := binary.LittleEndian.Uint32(h[80:84])
	if pflags&pfFourCC == 0 {
		return nil, errors.New("dds: uncompressed pixel formats are not supported")
	}

	if fourCC == fourCCDX10 {
		var ext [20]byte
		if _, err := io.ReadFull(r, ext[:]); err != nil {
			return nil, errors.Wrap(err, "dds: reading DX10 extension")
		}
		hdr.DXGIFormat = binary.LittleEndian.Uint32(ext[0:4])
		f, srgb, ok := formatFromDXGI(hdr.DXGIFormat)
		if !ok {
			return nil, errors.Errorf("dds: unsupported DXGI format %s", FormatName(hdr.DXGIFormat))
		}
		hdr.Format, hdr.SRGB = f, srgb
	} else {
		f, ok := formatFromFourCC(fourCC)
		if !ok {
			return nil, errors.Errorf("dds: unsupported FourCC %q", fourCCString(fourCC))
		}
		hdr.FourCC = fourCC
		hdr.Format = f
		hdr.DXGIFormat = DXGIFormat(f, false)
	}

	if hdr.Width <= 0 || hdr.Height <= 0 {
		return nil, errors.Errorf("dds: invalid dimensions %dx%d", hdr.Width, hdr.Height)
	}
	if max := FullMipCount(hdr.Width, hdr.Height); hdr.MipCount > max {
		return nil, errors.Errorf("dds: mip count %d exceeds the %d-level chain for %dx%d",
			hdr.MipCount, max, hdr.Width, hdr.Height)
	}
	return hdr, nil
}

// Decode reads a complete DDS file: header plus every mip level payload.
func Decode(r io.Reader) (*Texture, error) {
	hdr, err := DecodeHeader(r)
	if err != nil {
		return nil, err
	}

	tex := &Texture{
		Format: hdr.Format,
		SRGB:   hdr.SRGB,
		Width:  hdr.Width,
		Height: hdr.Height,
	}
	w, h := hdr.Width, hdr.Height
	for level := 0; level < hdr.MipCount; level++ {
		data := make([]byte, bcn.CompressedSize(w, h, hdr.Format))
		if _, err := io.ReadFull(r, data); err != nil {
			return nil, errors.Wrapf(err, "dds: reading mip %d (%dx%d)", level, w, h)
		}
		tex.Mips = append(tex.Mips, data)
		w, h = nextMip(w, h)
	}
	return tex, nil
}
