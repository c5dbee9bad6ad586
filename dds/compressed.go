package dds

import (
	"encoding/binary"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/pkg/errors"

	"github.com/texcodec/bcn/bcn"
)

// BCZ1 is a minimal sidecar for zstd-compressed BC payloads:
//
//	magic            [4]byte "BCZ1"
//	headerSize       uint32  (32)
//	uncompressedSize uint64
//	compressedSize   uint64
//	dxgiFormat       uint32
//	width, height    uint16
//	zstd frame       compressedSize bytes
//
// The payload is the concatenated mip chain; level boundaries are implied
// by the dimensions.
const (
	bczMagic      = 0x315A4342 // "BCZ1"
	bczHeaderSize = 32

	// Payload sizes beyond this are rejected before allocation.
	bczMaxPayload = 1 << 31
)

// EncodeCompressed writes tex as a BCZ1 stream at the given zstd level.
func EncodeCompressed(w io.Writer, tex *Texture, level zstd.EncoderLevel) error {
	if err := validateTexture(tex); err != nil {
		return err
	}
	if tex.Width > 0xFFFF || tex.Height > 0xFFFF {
		return errors.Errorf("dds: dimensions %dx%d exceed the BCZ1 limit", tex.Width, tex.Height)
	}

	total := 0
	for _, mip := range tex.Mips {
		total += len(mip)
	}
	payload := make([]byte, 0, total)
	for _, mip := range tex.Mips {
		payload = append(payload, mip...)
	}

	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(level))
	if err != nil {
		return errors.Wrap(err, "dds: creating zstd encoder")
	}
	frame := enc.EncodeAll(payload, nil)
	enc.Close()

	var hdr [bczHeaderSize]byte
	binary.LittleEndian.PutUint32(hdr[0:4], bczMagic)
	binary.LittleEndian.PutUint32(hdr[4:8], bczHeaderSize)
	binary.LittleEndian.PutUint64(hdr[8:16], uint64(len(payload)))
	binary.LittleEndian.PutUint64(hdr[16:24], uint64(len(frame)))
	binary.LittleEndian.PutUint32(hdr[24:28], DXGIFormat(tex.Format, tex.SRGB))
	binary.LittleEndian.PutUint16(hdr[28:30], uint16(tex.Width))
	binary.LittleEndian.PutUint16(hdr[30:32], uint16(tex.Height))

	if _, err := w.Write(hdr[:]); err != nil {
		return errors.Wrap(err, "dds: writing BCZ1 header")
	}
	if _, err := w.Write(frame); err != nil {
		return errors.Wrap(err, "dds: writing BCZ1 payload")
	}
	return nil
}

// DecodeCompressed reads a BCZ1 stream back into a texture.
func DecodeCompressed(r io.Reader) (*Texture, error) {
	var hdr [bczHeaderSize]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, errors.Wrap(err, "dds: reading BCZ1 header")
	}
	if binary.LittleEndian.Uint32(hdr[0:4]) != bczMagic {
		return nil, errors.New("dds: bad BCZ1 magic")
	}
	if size := binary.LittleEndian.Uint32(hdr[4:8]); size != bczHeaderSize {
		return nil, errors.Errorf("dds: BCZ1 header size %d, want %d", size, bczHeaderSize)
	}

	rawSize := binary.LittleEndian.Uint64(hdr[8:16])
	compSize := binary.LittleEndian.Uint64(hdr[16:24])
	dxgi := binary.LittleEndian.Uint32(hdr[24:28])
	width := int(binary.LittleEndian.Uint16(hdr[28:30]))
	height := int(binary.LittleEndian.Uint16(hdr[30:32]))

	format, srgb, ok := formatFromDXGI(dxgi)
	if !ok {
		return nil, errors.Errorf("dds: unsupported DXGI format %s", FormatName(dxgi))
	}
	if width <= 0 || height <= 0 {
		return nil, errors.Errorf("dds: invalid dimensions %dx%d", width, height)
	}
	if rawSize == 0 || rawSize > bczMaxPayload || compSize == 0 || compSize > bczMaxPayload {
		return nil, errors.Errorf("dds: unreasonable BCZ1 payload sizes (%d raw, %d compressed)", rawSize, compSize)
	}

	frame := make([]byte, compSize)
	if _, err := io.ReadFull(r, frame); err != nil {
		return nil, errors.Wrap(err, "dds: reading BCZ1 payload")
	}

	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, errors.Wrap(err, "dds: creating zstd decoder")
	}
	defer dec.Close()

	payload, err := dec.DecodeAll(frame, make([]byte, 0, rawSize))
	if err != nil {
		return nil, errors.Wrap(err, "dds: decompressing BCZ1 payload")
	}
	if uint64(len(payload)) != rawSize {
		return nil, errors.Errorf("dds: payload is %d bytes, header says %d", len(payload), rawSize)
	}

	tex := &Texture{Format: format, SRGB: srgb, Width: width, Height: height}
	w, h := width, height
	rest := payload
	for len(rest) > 0 {
		size := bcn.CompressedSize(w, h, format)
		if size > len(rest) {
			return nil, errors.Errorf("dds: %d trailing bytes do not fit a %dx%d mip", len(rest), w, h)
		}
		tex.Mips = append(tex.Mips, rest[:size:size])
		rest = rest[size:]
		if w == 1 && h == 1 && len(rest) > 0 {
			return nil, errors.Errorf("dds: %d bytes left after the 1x1 mip", len(rest))
		}
		w, h = nextMip(w, h)
	}
	return tex, nil
}
