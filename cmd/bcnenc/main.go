package main

import (
	"bytes"
	"flag"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"os"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/klauspost/compress/zstd"
	"github.com/nfnt/resize"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/texcodec/bcn/bcn"
	"github.com/texcodec/bcn/dds"

	_ "image/gif"
	_ "image/jpeg"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "compress":
		compressCmd(os.Args[2:])
	case "decompress":
		decompressCmd(os.Args[2:])
	case "info":
		infoCmd(os.Args[2:])
	case "batch":
		batchCmd(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage:")
	fmt.Fprintln(os.Stderr, "  bcnenc compress -f bc1|bc2|bc3|bc4|bc5 [-fit cluster|range|iterative] [-uniform] [-alpha-weight] [-mips] [-srgb] [-z] [-zlevel fastest|default|better|best] [-j N] -o out.dds in.png")
	fmt.Fprintln(os.Stderr, "  bcnenc decompress [-mip N] -o out.png in.dds")
	fmt.Fprintln(os.Stderr, "  bcnenc info [-dump] in.dds")
	fmt.Fprintln(os.Stderr, "  bcnenc batch [-j N] manifest.yaml")
}

func compressCmd(args []string) {
	fs := flag.NewFlagSet("compress", flag.ExitOnError)
	var (
		format      string
		fit         string
		uniform     bool
		alphaWeight bool
		mips        bool
		srgb        bool
		sidecar     bool
		zstdLevel   string
		workers     int
		outPath     string
	)
	fs.StringVar(&format, "f", "bc1", "block format: bc1|bc2|bc3|bc4|bc5")
	fs.StringVar(&fit, "fit", "cluster", "endpoint fit: cluster|range|iterative")
	fs.BoolVar(&uniform, "uniform", false, "uniform channel weights instead of perceptual")
	fs.BoolVar(&alphaWeight, "alpha-weight", false, "weigh color error by texel alpha")
	fs.BoolVar(&mips, "mips", false, "build the full mip chain down to 1x1")
	fs.BoolVar(&srgb, "srgb", false, "tag the output with the sRGB DXGI format")
	fs.BoolVar(&sidecar, "z", false, "write a zstd BCZ1 stream instead of plain DDS")
	fs.StringVar(&zstdLevel, "zlevel", "default", "zstd level for -z: fastest|default|better|best")
	fs.IntVar(&workers, "j", 0, "worker goroutines (0 = one per CPU)")
	fs.StringVar(&outPath, "o", "", "output file")
	_ = fs.Parse(args)

	if fs.NArg() != 1 || outPath == "" {
		usage()
		os.Exit(2)
	}

	opt := encodeOptions{
		uniform: uniform,
		alphaW:  alphaWeight,
		mips:    mips,
		srgb:    srgb,
		sidecar: sidecar,
		workers: workers,
	}
	var err error
	if opt.format, err = parseFormat(format); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if opt.fit, err = parseFit(fit); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if opt.zstdLevel, err = parseZstdLevel(zstdLevel); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	if err := encodeFile(fs.Arg(0), outPath, opt); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func decompressCmd(args []string) {
	fs := flag.NewFlagSet("decompress", flag.ExitOnError)
	var (
		mip     int
		outPath string
	)
	fs.IntVar(&mip, "mip", 0, "mip level to decode")
	fs.StringVar(&outPath, "o", "", "output PNG file")
	_ = fs.Parse(args)

	if fs.NArg() != 1 || outPath == "" {
		usage()
		os.Exit(2)
	}

	data, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	tex, err := decodeTexture(data)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if mip < 0 || mip >= tex.MipCount() {
		fmt.Fprintf(os.Stderr, "mip %d out of range (file has %d levels)\n", mip, tex.MipCount())
		os.Exit(2)
	}

	w, h := dds.MipDimensions(tex.Width, tex.Height, mip)
	img := &bcn.Image{Width: w, Height: h, Pix: make([]byte, w*h*4)}

	cfg, err := bcn.ConfigInit(tex.Format)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	ctx, err := bcn.ContextAlloc(&cfg, 0)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := ctx.DecompressImage(tex.Mips[mip], img); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	out, err := os.Create(outPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer out.Close()

	std := &image.RGBA{Pix: img.Pix, Stride: w * 4, Rect: image.Rect(0, 0, w, h)}
	if err := png.Encode(out, std); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var spewConfig *spew.ConfigState

func init() {
	spewConfig = spew.NewDefaultConfig()
	spewConfig.DisableCapacities = true
}

func infoCmd(args []string) {
	fs := flag.NewFlagSet("info", flag.ExitOnError)
	var dump bool
	fs.BoolVar(&dump, "dump", false, "pretty-print the parsed header")
	_ = fs.Parse(args)

	if fs.NArg() != 1 {
		usage()
		os.Exit(2)
	}

	data, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	var hdr *dds.Header
	if bytes.HasPrefix(data, []byte("BCZ1")) {
		tex, err := dds.DecodeCompressed(bytes.NewReader(data))
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		hdr = &dds.Header{
			Width:      tex.Width,
			Height:     tex.Height,
			MipCount:   tex.MipCount(),
			Format:     tex.Format,
			SRGB:       tex.SRGB,
			DXGIFormat: dds.DXGIFormat(tex.Format, tex.SRGB),
		}
		fmt.Printf("BCZ1 %s\n", hdr)
	} else {
		hdr, err = dds.DecodeHeader(bytes.NewReader(data))
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Println(hdr)
	}

	w, h := hdr.Width, hdr.Height
	for level := 0; level < hdr.MipCount; level++ {
		fmt.Printf("  mip %d: %dx%d, %d bytes\n", level, w, h, bcn.CompressedSize(w, h, hdr.Format))
		w, h = dds.MipDimensions(w, h, 1)
	}

	if dump {
		fmt.Print(spewConfig.Sdump(hdr))
	}
}

// batchJob is one manifest entry. Empty or nil fields inherit from the
// manifest defaults.
type batchJob struct {
	Input  string `yaml:"input"`
	Output string `yaml:"output"`
	Format string `yaml:"format"`
	Fit    string `yaml:"fit"`
	Mips   *bool  `yaml:"mips"`
	SRGB   *bool  `yaml:"srgb"`
}

type batchManifest struct {
	Defaults batchJob   `yaml:"defaults"`
	Jobs     []batchJob `yaml:"jobs"`
}

func batchCmd(args []string) {
	fs := flag.NewFlagSet("batch", flag.ExitOnError)
	var workers int
	fs.IntVar(&workers, "j", 0, "worker goroutines per job (0 = one per CPU)")
	_ = fs.Parse(args)

	if fs.NArg() != 1 {
		usage()
		os.Exit(2)
	}

	f, err := os.Open(fs.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	var manifest batchManifest
	err = yaml.NewDecoder(f).Decode(&manifest)
	f.Close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "parsing %s: %v\n", fs.Arg(0), err)
		os.Exit(1)
	}
	if len(manifest.Jobs) == 0 {
		fmt.Fprintln(os.Stderr, "manifest has no jobs")
		os.Exit(1)
	}

	for i, job := range manifest.Jobs {
		opt, inPath, outPath, err := resolveJob(job, manifest.Defaults, workers)
		if err != nil {
			fmt.Fprintf(os.Stderr, "job %d: %v\n", i, err)
			os.Exit(2)
		}
		if err := encodeFile(inPath, outPath, opt); err != nil {
			fmt.Fprintf(os.Stderr, "job %d (%s): %v\n", i, inPath, err)
			os.Exit(1)
		}
		fmt.Printf("%s -> %s (%s)\n", inPath, outPath, opt.format)
	}
}

// resolveJob merges a job with the manifest defaults. Outputs ending in
// .bcz are written as BCZ1 streams.
func resolveJob(job, def batchJob, workers int) (encodeOptions, string, string, error) {
	var opt encodeOptions
	if job.Input == "" {
		return opt, "", "", fmt.Errorf("missing input")
	}
	if job.Output == "" {
		return opt, "", "", fmt.Errorf("missing output")
	}

	format := job.Format
	if format == "" {
		format = def.Format
	}
	if format == "" {
		format = "bc1"
	}
	fit := job.Fit
	if fit == "" {
		fit = def.Fit
	}
	if fit == "" {
		fit = "cluster"
	}

	var err error
	if opt.format, err = parseFormat(format); err != nil {
		return opt, "", "", err
	}
	if opt.fit, err = parseFit(fit); err != nil {
		return opt, "", "", err
	}
	opt.mips = boolOr(job.Mips, def.Mips)
	opt.srgb = boolOr(job.SRGB, def.SRGB)
	opt.workers = workers
	opt.sidecar = strings.HasSuffix(job.Output, ".bcz")
	opt.zstdLevel = zstd.SpeedDefault
	return opt, job.Input, job.Output, nil
}

func boolOr(v, def *bool) bool {
	if v != nil {
		return *v
	}
	return def != nil && *def
}

type encodeOptions struct {
	format    bcn.Format
	fit       bcn.Algorithm
	uniform   bool
	alphaW    bool
	mips      bool
	srgb      bool
	sidecar   bool
	zstdLevel zstd.EncoderLevel
	workers   int
}

func encodeFile(inPath, outPath string, opt encodeOptions) error {
	rgba, err := loadRGBA(inPath)
	if err != nil {
		return errors.Wrapf(err, "reading %s", inPath)
	}

	opts := []bcn.Option{bcn.WithAlgorithm(opt.fit)}
	if opt.uniform {
		opts = append(opts, bcn.WithWeights(bcn.WeightsUniform))
	}
	if opt.alphaW {
		opts = append(opts, bcn.WithWeighColorByAlpha(true))
	}
	cfg, err := bcn.ConfigInit(opt.format, opts...)
	if err != nil {
		return err
	}
	ctx, err := bcn.ContextAlloc(&cfg, opt.workers)
	if err != nil {
		return err
	}

	tex := &dds.Texture{
		Format: opt.format,
		SRGB:   opt.srgb,
		Width:  rgba.Rect.Dx(),
		Height: rgba.Rect.Dy(),
	}
	for _, level := range mipChain(rgba, opt.mips) {
		w, h := level.Rect.Dx(), level.Rect.Dy()
		out := make([]byte, bcn.CompressedSize(w, h, opt.format))
		img := &bcn.Image{Width: w, Height: h, Pix: level.Pix}
		if err := ctx.CompressImage(img, out); err != nil {
			return errors.Wrapf(err, "compressing %s", inPath)
		}
		tex.Mips = append(tex.Mips, out)
	}

	f, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer f.Close()

	if opt.sidecar {
		return dds.EncodeCompressed(f, tex, opt.zstdLevel)
	}
	return dds.Encode(f, tex)
}

func loadRGBA(path string) (*image.RGBA, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, errors.Wrap(err, "decoding image")
	}
	rgba := image.NewRGBA(image.Rect(0, 0, img.Bounds().Dx(), img.Bounds().Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, img.Bounds().Min, draw.Src)
	return rgba, nil
}

// mipChain returns img followed by Lanczos-resampled levels down to 1x1.
// Every level is resampled from the full-resolution image.
func mipChain(img *image.RGBA, enabled bool) []*image.RGBA {
	if !enabled {
		return []*image.RGBA{img}
	}
	w, h := img.Rect.Dx(), img.Rect.Dy()
	chain := make([]*image.RGBA, 0, dds.FullMipCount(w, h))
	chain = append(chain, img)
	for mw, mh := w, h; mw > 1 || mh > 1; {
		mw, mh = dds.MipDimensions(mw, mh, 1)
		scaled := resize.Resize(uint(mw), uint(mh), img, resize.Lanczos3)
		level := image.NewRGBA(image.Rect(0, 0, mw, mh))
		draw.Draw(level, level.Bounds(), scaled, scaled.Bounds().Min, draw.Src)
		chain = append(chain, level)
	}
	return chain
}

func parseFormat(s string) (bcn.Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "bc1", "dxt1":
		return bcn.FormatBC1, nil
	case "bc2", "dxt3":
		return bcn.FormatBC2, nil
	case "bc3", "dxt5":
		return bcn.FormatBC3, nil
	case "bc4", "ati1":
		return bcn.FormatBC4, nil
	case "bc5", "ati2":
		return bcn.FormatBC5, nil
	default:
		return 0, fmt.Errorf("invalid format %q (want bc1|bc2|bc3|bc4|bc5)", s)
	}
}

func parseFit(s string) (bcn.Algorithm, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "cluster":
		return bcn.AlgorithmClusterFit, nil
	case "range":
		return bcn.AlgorithmRangeFit, nil
	case "iterative", "iter":
		return bcn.AlgorithmIterativeClusterFit, nil
	default:
		return 0, fmt.Errorf("invalid fit %q (want cluster|range|iterative)", s)
	}
}

func parseZstdLevel(s string) (zstd.EncoderLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fastest":
		return zstd.SpeedFastest, nil
	case "default":
		return zstd.SpeedDefault, nil
	case "better":
		return zstd.SpeedBetterCompression, nil
	case "best":
		return zstd.SpeedBestCompression, nil
	default:
		return 0, fmt.Errorf("invalid zstd level %q (want fastest|default|better|best)", s)
	}
}

func decodeTexture(data []byte) (*dds.Texture, error) {
	if bytes.HasPrefix(data, []byte("BCZ1")) {
		return dds.DecodeCompressed(bytes.NewReader(data))
	}
	return dds.Decode(bytes.NewReader(data))
}
