package bcn_test

import (
	"bytes"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/texcodec/bcn/bcn"
)

func fillTestPattern(pix []byte, w, h int) {
	i := 0
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			pix[i+0] = byte(x*37 + y*11)
			pix[i+1] = byte(x*3 + y*53)
			pix[i+2] = byte(255 - x*7 - y*5)
			pix[i+3] = byte(200 + x - y)
			i += 4
		}
	}
}

func TestConfigInit_Defaults(t *testing.T) {
	cfg, err := bcn.ConfigInit(bcn.FormatBC1)
	if err != nil {
		t.Fatalf("ConfigInit: %v", err)
	}
	if cfg.Format != bcn.FormatBC1 {
		t.Fatalf("format: got %v want BC1", cfg.Format)
	}
	if cfg.Params.Algorithm != bcn.AlgorithmClusterFit {
		t.Fatalf("algorithm: got %v want cluster", cfg.Params.Algorithm)
	}
	if cfg.Params.Weights != bcn.WeightsPerceptual {
		t.Fatalf("weights: got %v want %v", cfg.Params.Weights, bcn.WeightsPerceptual)
	}
	if cfg.Params.WeighColorByAlpha {
		t.Fatalf("weigh by alpha: got true want false")
	}
}

func TestConfigInit_Options(t *testing.T) {
	cfg, err := bcn.ConfigInit(bcn.FormatBC3,
		bcn.WithAlgorithm(bcn.AlgorithmRangeFit),
		bcn.WithWeights(bcn.WeightsUniform),
		bcn.WithWeighColorByAlpha(true),
	)
	if err != nil {
		t.Fatalf("ConfigInit: %v", err)
	}
	if cfg.Params.Algorithm != bcn.AlgorithmRangeFit {
		t.Fatalf("algorithm: got %v want range", cfg.Params.Algorithm)
	}
	if cfg.Params.Weights != bcn.WeightsUniform {
		t.Fatalf("weights: got %v want uniform", cfg.Params.Weights)
	}
	if !cfg.Params.WeighColorByAlpha {
		t.Fatalf("weigh by alpha: got false want true")
	}
}

func TestConfigInit_Rejects(t *testing.T) {
	nan := float32(math.NaN())
	cases := []struct {
		name   string
		format bcn.Format
		opts   []bcn.Option
		want   bcn.ErrorCode
	}{
		{"unknown format", bcn.Format(99), nil, bcn.ErrBadFormat},
		{"unknown algorithm", bcn.FormatBC1,
			[]bcn.Option{bcn.WithAlgorithm(bcn.Algorithm(7))}, bcn.ErrBadParam},
		{"nan weight", bcn.FormatBC1,
			[]bcn.Option{bcn.WithWeights(mgl32.Vec3{nan, 1, 1})}, bcn.ErrBadParam},
		{"inf weight", bcn.FormatBC1,
			[]bcn.Option{bcn.WithWeights(mgl32.Vec3{1, float32(math.Inf(1)), 1})}, bcn.ErrBadParam},
		{"negative weight", bcn.FormatBC1,
			[]bcn.Option{bcn.WithWeights(mgl32.Vec3{-1, 1, 1})}, bcn.ErrBadParam},
	}
	for _, c := range cases {
		_, err := bcn.ConfigInit(c.format, c.opts...)
		if got := bcn.ErrorCodeOf(err); got != c.want {
			t.Fatalf("%s: got %d want %d", c.name, got, c.want)
		}
	}
}

func TestContextAlloc_Validation(t *testing.T) {
	if _, err := bcn.ContextAlloc(nil, 0); bcn.ErrorCodeOf(err) != bcn.ErrBadParam {
		t.Fatalf("nil config: got %v want bad param", err)
	}

	cfg, err := bcn.ConfigInit(bcn.FormatBC1)
	if err != nil {
		t.Fatalf("ConfigInit: %v", err)
	}
	if _, err := bcn.ContextAlloc(&cfg, -1); bcn.ErrorCodeOf(err) != bcn.ErrBadParam {
		t.Fatalf("negative threads: got %v want bad param", err)
	}

	// A hand-built config must not bypass validation.
	bad := bcn.Config{Format: bcn.FormatBC1, Params: bcn.Params{Algorithm: bcn.Algorithm(9)}}
	if _, err := bcn.ContextAlloc(&bad, 0); bcn.ErrorCodeOf(err) != bcn.ErrBadParam {
		t.Fatalf("bad algorithm: got %v want bad param", err)
	}

	ctx, err := bcn.ContextAlloc(&cfg, 2)
	if err != nil {
		t.Fatalf("ContextAlloc: %v", err)
	}
	if got := ctx.Config(); got.Format != bcn.FormatBC1 {
		t.Fatalf("Config().Format: got %v want BC1", got.Format)
	}
}

func TestCompressImage_Validation(t *testing.T) {
	cfg, err := bcn.ConfigInit(bcn.FormatBC1)
	if err != nil {
		t.Fatalf("ConfigInit: %v", err)
	}
	ctx, err := bcn.ContextAlloc(&cfg, 1)
	if err != nil {
		t.Fatalf("ContextAlloc: %v", err)
	}
	out := make([]byte, bcn.CompressedSize(8, 8, bcn.FormatBC1))

	if got := bcn.ErrorCodeOf(ctx.CompressImage(nil, out)); got != bcn.ErrBadParam {
		t.Fatalf("nil image: got %d want %d", got, bcn.ErrBadParam)
	}

	img := &bcn.Image{Width: 0, Height: 8}
	if got := bcn.ErrorCodeOf(ctx.CompressImage(img, out)); got != bcn.ErrBadDimensions {
		t.Fatalf("zero width: got %d want %d", got, bcn.ErrBadDimensions)
	}

	img = &bcn.Image{Width: 8, Height: 8, Pix: make([]byte, 10)}
	if got := bcn.ErrorCodeOf(ctx.CompressImage(img, out)); got != bcn.ErrBadDimensions {
		t.Fatalf("pixel buffer mismatch: got %d want %d", got, bcn.ErrBadDimensions)
	}

	img = &bcn.Image{Width: 8, Height: 8, Pix: make([]byte, 8*8*4)}
	if got := bcn.ErrorCodeOf(ctx.CompressImage(img, out[:len(out)-1])); got != bcn.ErrBadDimensions {
		t.Fatalf("short output: got %d want %d", got, bcn.ErrBadDimensions)
	}

	if err := ctx.CompressImage(img, out); err != nil {
		t.Fatalf("CompressImage: %v", err)
	}
}

func TestDecompressImage_TruncatedInput(t *testing.T) {
	cfg, err := bcn.ConfigInit(bcn.FormatBC3)
	if err != nil {
		t.Fatalf("ConfigInit: %v", err)
	}
	ctx, err := bcn.ContextAlloc(&cfg, 1)
	if err != nil {
		t.Fatalf("ContextAlloc: %v", err)
	}

	img := &bcn.Image{Width: 8, Height: 8, Pix: make([]byte, 8*8*4)}
	data := make([]byte, bcn.CompressedSize(8, 8, bcn.FormatBC3)-1)
	if got := bcn.ErrorCodeOf(ctx.DecompressImage(data, img)); got != bcn.ErrTruncatedInput {
		t.Fatalf("short data: got %d want %d", got, bcn.ErrTruncatedInput)
	}
}

func TestCompressedSize(t *testing.T) {
	cases := []struct {
		w, h   int
		format bcn.Format
		want   int
	}{
		{16, 32, bcn.FormatBC1, 256},
		{15, 30, bcn.FormatBC1, 256},
		{16, 32, bcn.FormatBC2, 512},
		{16, 32, bcn.FormatBC3, 512},
		{1, 1, bcn.FormatBC4, 8},
		{1, 1, bcn.FormatBC5, 16},
		{0, 16, bcn.FormatBC1, 0},
		{16, -1, bcn.FormatBC3, 0},
	}
	for _, c := range cases {
		if got := bcn.CompressedSize(c.w, c.h, c.format); got != c.want {
			t.Fatalf("CompressedSize(%d, %d, %v): got %d want %d", c.w, c.h, c.format, got, c.want)
		}
	}
}

func TestCompress_Validation(t *testing.T) {
	if _, err := bcn.Compress(nil, 0, 4, bcn.FormatBC1, bcn.Params{}); bcn.ErrorCodeOf(err) != bcn.ErrBadDimensions {
		t.Fatalf("zero width: got %v want bad dimensions", err)
	}
	if _, err := bcn.Compress(make([]byte, 64), 4, 4, bcn.Format(42), bcn.Params{}); bcn.ErrorCodeOf(err) != bcn.ErrBadFormat {
		t.Fatalf("bad format: got %v want bad format", err)
	}
	if _, err := bcn.Compress(make([]byte, 63), 4, 4, bcn.FormatBC1, bcn.Params{}); bcn.ErrorCodeOf(err) != bcn.ErrBadDimensions {
		t.Fatalf("pixel buffer mismatch: got %v want bad dimensions", err)
	}
	if _, err := bcn.Decompress(make([]byte, 7), 4, 4, bcn.FormatBC1); bcn.ErrorCodeOf(err) != bcn.ErrTruncatedInput {
		t.Fatalf("short data: got %v want truncated input", err)
	}
	if _, err := bcn.Decompress(make([]byte, 8), 0, 4, bcn.FormatBC1); bcn.ErrorCodeOf(err) != bcn.ErrBadDimensions {
		t.Fatalf("zero width: got %v want bad dimensions", err)
	}
}

// Width 6 leaves the right block two columns short; compression replicates
// the edge column, so an exactly representable image survives the trip.
func TestCompress_EdgeReplication(t *testing.T) {
	const w, h = 6, 4
	pix := make([]byte, w*h*4)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			o := 4 * (y*w + x)
			if x%2 == 0 {
				pix[o+0], pix[o+1], pix[o+2] = 0xFF, 0xFF, 0xFF
			}
			pix[o+3] = 0xFF
		}
	}

	data, err := bcn.Compress(pix, w, h, bcn.FormatBC1, bcn.Params{})
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}
	if want := bcn.CompressedSize(w, h, bcn.FormatBC1); len(data) != want {
		t.Fatalf("compressed size: got %d want %d", len(data), want)
	}

	back, err := bcn.Decompress(data, w, h, bcn.FormatBC1)
	if err != nil {
		t.Fatalf("Decompress: %v", err)
	}
	if !bytes.Equal(back, pix) {
		t.Fatalf("round trip:\n got % x\nwant % x", back, pix)
	}
}

func TestCompressImage_WorkerDeterminism(t *testing.T) {
	const w, h = 32, 32
	pix := make([]byte, w*h*4)
	fillTestPattern(pix, w, h)
	img := &bcn.Image{Width: w, Height: h, Pix: pix}

	cfg, err := bcn.ConfigInit(bcn.FormatBC3)
	if err != nil {
		t.Fatalf("ConfigInit: %v", err)
	}
	one, err := bcn.ContextAlloc(&cfg, 1)
	if err != nil {
		t.Fatalf("ContextAlloc(1): %v", err)
	}
	many, err := bcn.ContextAlloc(&cfg, 8)
	if err != nil {
		t.Fatalf("ContextAlloc(8): %v", err)
	}

	a := make([]byte, bcn.CompressedSize(w, h, bcn.FormatBC3))
	b := make([]byte, len(a))
	if err := one.CompressImage(img, a); err != nil {
		t.Fatalf("CompressImage(1 worker): %v", err)
	}
	if err := many.CompressImage(img, b); err != nil {
		t.Fatalf("CompressImage(8 workers): %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Fatalf("worker count changed the output")
	}
}

func TestCompressDecompress_AllFormats(t *testing.T) {
	const w, h = 20, 12
	pix := make([]byte, w*h*4)
	fillTestPattern(pix, w, h)

	formats := []bcn.Format{bcn.FormatBC1, bcn.FormatBC2, bcn.FormatBC3, bcn.FormatBC4, bcn.FormatBC5}
	for _, f := range formats {
		data, err := bcn.Compress(pix, w, h, f, bcn.Params{})
		if err != nil {
			t.Fatalf("%v: Compress: %v", f, err)
		}
		if want := bcn.CompressedSize(w, h, f); len(data) != want {
			t.Fatalf("%v: compressed size %d want %d", f, len(data), want)
		}

		back, err := bcn.Decompress(data, w, h, f)
		if err != nil {
			t.Fatalf("%v: Decompress: %v", f, err)
		}
		if len(back) != w*h*4 {
			t.Fatalf("%v: decoded %d bytes want %d", f, len(back), w*h*4)
		}

		switch f {
		case bcn.FormatBC2:
			for i := 3; i < len(back); i += 4 {
				if back[i]%17 != 0 {
					t.Fatalf("BC2: alpha %d is not a 4-bit level", back[i])
				}
			}
		case bcn.FormatBC4:
			for i := 0; i < len(back); i += 4 {
				if back[i+1] != back[i] || back[i+2] != back[i] || back[i+3] != 255 {
					t.Fatalf("BC4 texel %d: got %v want replicated red, opaque", i/4, back[i:i+4])
				}
			}
		case bcn.FormatBC5:
			for i := 0; i < len(back); i += 4 {
				if back[i+2] != 0 || back[i+3] != 255 {
					t.Fatalf("BC5 texel %d: got %v want zero blue, opaque", i/4, back[i:i+4])
				}
			}
		}
	}
}
