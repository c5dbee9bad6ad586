package bcn

import "math"

// ConfigInit validates format and options and returns a Config ready for
// ContextAlloc. Zero-value weights select WeightsPerceptual.
func ConfigInit(format Format, opts ...Option) (Config, error) {
	if !format.valid() {
		return Config{}, newError(ErrBadFormat, "bcn: unknown format")
	}

	cfg := Config{Format: format}
	for _, opt := range opts {
		opt(&cfg)
	}
	cfg.Params = cfg.Params.normalized()

	if !cfg.Params.Algorithm.valid() {
		return Config{}, newError(ErrBadParam, "bcn: unknown algorithm")
	}
	for _, w := range cfg.Params.Weights {
		if math.IsNaN(float64(w)) || math.IsInf(float64(w), 0) || w < 0 {
			return Config{}, newError(ErrBadParam, "bcn: channel weights must be finite and non-negative")
		}
	}

	return cfg, nil
}

// ContextAlloc creates a codec context from a validated config.
// threadCount fixes the worker pool size; zero selects one worker per CPU
// at call time.
func ContextAlloc(cfg *Config, threadCount int) (*Context, error) {
	if cfg == nil {
		return nil, newError(ErrBadParam, "bcn: nil config")
	}
	if threadCount < 0 {
		return nil, newError(ErrBadParam, "bcn: invalid thread count")
	}

	// Revalidate so a hand-built Config cannot smuggle bad values in.
	cfgi, err := ConfigInit(cfg.Format, WithParams(cfg.Params))
	if err != nil {
		return nil, err
	}

	return &Context{cfg: cfgi, workers: threadCount}, nil
}

// CompressImage compresses img into out, which must hold at least
// CompressedSize(img.Width, img.Height, format) bytes.
//
// All validation happens before any worker starts; the output is
// identical regardless of worker count.
func (c *Context) CompressImage(img *Image, out []byte) error {
	if c == nil {
		return newError(ErrBadParam, "bcn: nil context")
	}
	if err := validateImage(img); err != nil {
		return err
	}
	need, err := compressedSizeChecked(img.Width, img.Height, c.cfg.Format)
	if err != nil {
		return err
	}
	if len(out) < need {
		return newError(ErrBadDimensions, "bcn: output buffer too small")
	}

	compressBlocks(img.Pix, img.Width, img.Height, out, c.cfg.Format, c.cfg.Params, c.workers)
	return nil
}

// DecompressImage expands compressed block data into img.Pix, which must
// already hold img.Width*img.Height*4 bytes.
func (c *Context) DecompressImage(data []byte, img *Image) error {
	if c == nil {
		return newError(ErrBadParam, "bcn: nil context")
	}
	if err := validateImage(img); err != nil {
		return err
	}
	need, err := compressedSizeChecked(img.Width, img.Height, c.cfg.Format)
	if err != nil {
		return err
	}
	if len(data) < need {
		return newError(ErrTruncatedInput, "bcn: compressed data too short")
	}

	decompressBlocks(data, img.Pix, img.Width, img.Height, c.cfg.Format, c.workers)
	return nil
}

func validateImage(img *Image) error {
	if img == nil {
		return newError(ErrBadParam, "bcn: nil image")
	}
	if img.Width <= 0 || img.Height <= 0 {
		return newError(ErrBadDimensions, "bcn: invalid image dimensions")
	}
	need, err := pixelSizeChecked(img.Width, img.Height)
	if err != nil {
		return err
	}
	if len(img.Pix) != need {
		return newError(ErrBadDimensions, "bcn: pixel buffer does not match dimensions")
	}
	return nil
}

const maxInt = int(^uint(0) >> 1)

// compressedSizeChecked is CompressedSize with overflow detection.
// Dimensions must already be positive.
func compressedSizeChecked(width, height int, format Format) (int, error) {
	bw := (uint64(width) + 3) / 4
	bh := (uint64(height) + 3) / 4
	bs := uint64(format.BlockSize())
	if bw > uint64(maxInt)/bh/bs {
		return 0, newError(ErrOutOfMem, "bcn: compressed size overflows int")
	}
	return int(bw * bh * bs), nil
}

func pixelSizeChecked(width, height int) (int, error) {
	w := uint64(width)
	h := uint64(height)
	if w > uint64(maxInt)/h/4 {
		return 0, newError(ErrOutOfMem, "bcn: pixel buffer size overflows int")
	}
	return int(w * h * 4), nil
}
