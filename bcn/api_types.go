package bcn

import "github.com/go-gl/mathgl/mgl32"

// Config carries validated compression settings for a Context.
type Config struct {
	Format Format
	Params Params
}

// Option adjusts a Config during ConfigInit.
type Option func(*Config)

// WithAlgorithm selects the endpoint fitting strategy.
func WithAlgorithm(a Algorithm) Option {
	return func(c *Config) { c.Params.Algorithm = a }
}

// WithWeights sets the per-channel error metric.
func WithWeights(w mgl32.Vec3) Option {
	return func(c *Config) { c.Params.Weights = w }
}

// WithWeighColorByAlpha scales each texel's fit weight by its alpha.
func WithWeighColorByAlpha(on bool) Option {
	return func(c *Config) { c.Params.WeighColorByAlpha = on }
}

// WithParams replaces all per-block parameters at once.
func WithParams(p Params) Option {
	return func(c *Config) { c.Params = p }
}

// Image is a tightly-packed 8-bit RGBA image: 4 bytes per texel,
// row-major, no padding between rows.
type Image struct {
	Width  int
	Height int
	Pix    []byte
}

// Context is a reusable codec configured for one format. It is safe for
// concurrent use; each call runs its own worker pool.
type Context struct {
	cfg     Config
	workers int
}

// Config returns the validated configuration the context was built with.
func (c *Context) Config() Config {
	return c.cfg
}
