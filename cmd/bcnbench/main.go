package main

import (
	"flag"
	"fmt"
	"os"
	"runtime/pprof"
	"strconv"
	"strings"
	"time"

	"github.com/texcodec/bcn/bcn"
)

func main() {
	var (
		width      int
		height     int
		iters      int
		formats    string
		fits       string
		workers    string
		decode     bool
		cpuprofile string
	)
	flag.IntVar(&width, "w", 1024, "image width")
	flag.IntVar(&height, "h", 1024, "image height")
	flag.IntVar(&iters, "iters", 8, "iterations per row")
	flag.StringVar(&formats, "formats", "bc1,bc2,bc3,bc4,bc5", "comma list of formats")
	flag.StringVar(&fits, "fits", "cluster,range,iterative", "comma list of endpoint fits")
	flag.StringVar(&workers, "j", "1,2,4,8", "comma list of worker counts")
	flag.BoolVar(&decode, "decode", false, "also benchmark decompression")
	flag.StringVar(&cpuprofile, "cpuprofile", "", "optional CPU profile output path")
	flag.Parse()

	if width <= 0 || height <= 0 {
		fmt.Fprintln(os.Stderr, "invalid dimensions")
		os.Exit(2)
	}
	if iters <= 0 {
		fmt.Fprintln(os.Stderr, "iters must be > 0")
		os.Exit(2)
	}

	formatList, err := parseFormats(formats)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	fitList, err := parseFits(fits)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	workerList, err := parseWorkerList(workers)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	if cpuprofile != "" {
		f, err := os.Create(cpuprofile)
		if err != nil {
			die(err)
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			_ = f.Close()
			die(err)
		}
		defer func() {
			pprof.StopCPUProfile()
			_ = f.Close()
		}()
	}

	pix := make([]byte, width*height*4)
	fillPattern(pix, width, height)
	img := &bcn.Image{Width: width, Height: height, Pix: pix}
	texels := float64(width*height) * float64(iters)

	fmt.Printf("compress %dx%d, %d iterations\n", width, height, iters)
	fmt.Printf("%-7s %-10s %4s %10s %10s\n", "format", "fit", "j", "seconds", "MTex/s")
	for _, format := range formatList {
		for _, fit := range fitList {
			cfg, err := bcn.ConfigInit(format, bcn.WithAlgorithm(fit))
			if err != nil {
				die(err)
			}
			out := make([]byte, bcn.CompressedSize(width, height, format))
			for _, j := range workerList {
				ctx, err := bcn.ContextAlloc(&cfg, j)
				if err != nil {
					die(err)
				}
				start := time.Now()
				for i := 0; i < iters; i++ {
					if err := ctx.CompressImage(img, out); err != nil {
						die(err)
					}
				}
				dur := time.Since(start)
				fmt.Printf("%-7s %-10s %4d %10.4f %10.2f\n",
					format, fit, j, dur.Seconds(), texels/dur.Seconds()/1e6)
			}
		}
	}

	if !decode {
		return
	}

	fmt.Printf("\ndecompress %dx%d, %d iterations\n", width, height, iters)
	fmt.Printf("%-7s %4s %10s %10s\n", "format", "j", "seconds", "MTex/s")
	for _, format := range formatList {
		cfg, err := bcn.ConfigInit(format)
		if err != nil {
			die(err)
		}
		encCtx, err := bcn.ContextAlloc(&cfg, 0)
		if err != nil {
			die(err)
		}
		data := make([]byte, bcn.CompressedSize(width, height, format))
		if err := encCtx.CompressImage(img, data); err != nil {
			die(err)
		}

		dst := &bcn.Image{Width: width, Height: height, Pix: make([]byte, len(pix))}
		for _, j := range workerList {
			ctx, err := bcn.ContextAlloc(&cfg, j)
			if err != nil {
				die(err)
			}
			start := time.Now()
			for i := 0; i < iters; i++ {
				if err := ctx.DecompressImage(data, dst); err != nil {
					die(err)
				}
			}
			dur := time.Since(start)
			fmt.Printf("%-7s %4d %10.4f %10.2f\n",
				format, j, dur.Seconds(), texels/dur.Seconds()/1e6)
		}
	}
}

func die(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}

// fillPattern mixes channel gradients with xorshift noise so endpoint fits
// see realistic, non-degenerate blocks.
func fillPattern(pix []byte, width, height int) {
	rng := uint32(2463534242)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			rng ^= rng << 13
			rng ^= rng >> 17
			rng ^= rng << 5
			off := (y*width + x) * 4
			pix[off+0] = uint8(x*3 + int(rng&15))
			pix[off+1] = uint8(y*5 + int(rng>>28))
			pix[off+2] = uint8((x ^ y) + int(rng>>8&31))
			pix[off+3] = 255 - uint8((x*5+y*7)&0xFF)
		}
	}
}

func parseFormats(s string) ([]bcn.Format, error) {
	var out []bcn.Format
	for _, part := range strings.Split(s, ",") {
		f, err := parseFormat(part)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

func parseFormat(s string) (bcn.Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "bc1":
		return bcn.FormatBC1, nil
	case "bc2":
		return bcn.FormatBC2, nil
	case "bc3":
		return bcn.FormatBC3, nil
	case "bc4":
		return bcn.FormatBC4, nil
	case "bc5":
		return bcn.FormatBC5, nil
	default:
		return 0, fmt.Errorf("invalid format %q (want bc1|bc2|bc3|bc4|bc5)", s)
	}
}

func parseFits(s string) ([]bcn.Algorithm, error) {
	var out []bcn.Algorithm
	for _, part := range strings.Split(s, ",") {
		switch strings.ToLower(strings.TrimSpace(part)) {
		case "cluster":
			out = append(out, bcn.AlgorithmClusterFit)
		case "range":
			out = append(out, bcn.AlgorithmRangeFit)
		case "iterative", "iter":
			out = append(out, bcn.AlgorithmIterativeClusterFit)
		default:
			return nil, fmt.Errorf("invalid fit %q (want cluster|range|iterative)", part)
		}
	}
	return out, nil
}

func parseWorkerList(s string) ([]int, error) {
	var out []int
	for _, part := range strings.Split(s, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid -j %q (want a comma list of counts)", s)
		}
		out = append(out, n)
	}
	return out, nil
}
