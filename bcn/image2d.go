package bcn

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// Images below this many blocks compress faster sequentially than the
// goroutine dispatch costs.
const minParallelBlocks = 32

// Compress compresses a tightly-packed RGBA image and returns the block
// data. Width and height need not be multiples of 4; edge blocks
// replicate the last row and column.
func Compress(rgba []byte, width, height int, format Format, p Params) ([]byte, error) {
	cfg, err := ConfigInit(format, WithParams(p))
	if err != nil {
		return nil, err
	}
	ctx, err := ContextAlloc(&cfg, 0)
	if err != nil {
		return nil, err
	}

	img := &Image{Width: width, Height: height, Pix: rgba}
	if err := validateImage(img); err != nil {
		return nil, err
	}
	size, err := compressedSizeChecked(width, height, format)
	if err != nil {
		return nil, err
	}

	out := make([]byte, size)
	if err := ctx.CompressImage(img, out); err != nil {
		return nil, err
	}
	return out, nil
}

// Decompress expands compressed block data into a tightly-packed RGBA
// image of the given dimensions.
func Decompress(data []byte, width, height int, format Format) ([]byte, error) {
	cfg, err := ConfigInit(format)
	if err != nil {
		return nil, err
	}
	ctx, err := ContextAlloc(&cfg, 0)
	if err != nil {
		return nil, err
	}

	if width <= 0 || height <= 0 {
		return nil, newError(ErrBadDimensions, "bcn: invalid image dimensions")
	}
	size, err := pixelSizeChecked(width, height)
	if err != nil {
		return nil, err
	}

	img := &Image{Width: width, Height: height, Pix: make([]byte, size)}
	if err := ctx.DecompressImage(data, img); err != nil {
		return nil, err
	}
	return img.Pix, nil
}

// gatherBlock copies the 4x4 window at (x0,y0) into dst, replicating the
// last valid row and column for blocks that overhang the image edge.
func gatherBlock(pix []byte, width, height, x0, y0 int, dst *[64]byte) {
	for by := 0; by < 4; by++ {
		y := y0 + by
		if y >= height {
			y = height - 1
		}
		row := y * width * 4
		for bx := 0; bx < 4; bx++ {
			x := x0 + bx
			if x >= width {
				x = width - 1
			}
			src := row + x*4
			off := (4*by + bx) * 4
			dst[off+0] = pix[src+0]
			dst[off+1] = pix[src+1]
			dst[off+2] = pix[src+2]
			dst[off+3] = pix[src+3]
		}
	}
}

// scatterBlock writes the decoded 4x4 window at (x0,y0), skipping texels
// that fall outside the image.
func scatterBlock(pix []byte, width, height, x0, y0 int, src *[64]byte) {
	for by := 0; by < 4; by++ {
		y := y0 + by
		if y >= height {
			return
		}
		row := y * width * 4
		for bx := 0; bx < 4; bx++ {
			x := x0 + bx
			if x >= width {
				break
			}
			dst := row + x*4
			off := (4*by + bx) * 4
			pix[dst+0] = src[off+0]
			pix[dst+1] = src[off+1]
			pix[dst+2] = src[off+2]
			pix[dst+3] = src[off+3]
		}
	}
}

func workerCount(workers, totalBlocks int) int {
	procs := workers
	if procs <= 0 {
		procs = runtime.GOMAXPROCS(0)
	}
	if procs < 1 {
		procs = 1
	}
	if procs > totalBlocks {
		procs = totalBlocks
	}
	return procs
}

// compressBlocks walks the block grid. Workers claim block indices from a
// shared counter; every block writes only its own output slice, so the
// result is identical to the sequential path.
func compressBlocks(pix []byte, width, height int, out []byte, format Format, p Params, workers int) {
	blocksWide := (width + 3) / 4
	blocksHigh := (height + 3) / 4
	totalBlocks := blocksWide * blocksHigh
	blockSize := format.BlockSize()

	procs := workerCount(workers, totalBlocks)

	// Small images are faster to compress sequentially.
	if procs == 1 || totalBlocks < minParallelBlocks {
		var rgba [64]byte
		for by := 0; by < blocksHigh; by++ {
			for bx := 0; bx < blocksWide; bx++ {
				gatherBlock(pix, width, height, 4*bx, 4*by, &rgba)
				idx := by*blocksWide + bx
				CompressBlockMasked(&rgba, 0xFFFF, out[idx*blockSize:(idx+1)*blockSize], format, p)
			}
		}
		return
	}

	var next uint32
	var wg sync.WaitGroup
	wg.Add(procs)
	for w := 0; w < procs; w++ {
		go func() {
			defer wg.Done()
			var rgba [64]byte
			for {
				idx := int(atomic.AddUint32(&next, 1) - 1)
				if idx >= totalBlocks {
					return
				}
				bx := idx % blocksWide
				by := idx / blocksWide
				gatherBlock(pix, width, height, 4*bx, 4*by, &rgba)
				CompressBlockMasked(&rgba, 0xFFFF, out[idx*blockSize:(idx+1)*blockSize], format, p)
			}
		}()
	}
	wg.Wait()
}

func decompressBlocks(data []byte, pix []byte, width, height int, format Format, workers int) {
	blocksWide := (width + 3) / 4
	blocksHigh := (height + 3) / 4
	totalBlocks := blocksWide * blocksHigh
	blockSize := format.BlockSize()

	procs := workerCount(workers, totalBlocks)

	if procs == 1 || totalBlocks < minParallelBlocks {
		var rgba [64]byte
		for by := 0; by < blocksHigh; by++ {
			for bx := 0; bx < blocksWide; bx++ {
				idx := by*blocksWide + bx
				DecompressBlock(&rgba, data[idx*blockSize:(idx+1)*blockSize], format)
				scatterBlock(pix, width, height, 4*bx, 4*by, &rgba)
			}
		}
		return
	}

	// Blocks map to disjoint pixel rectangles, so workers never overlap.
	var next uint32
	var wg sync.WaitGroup
	wg.Add(procs)
	for w := 0; w < procs; w++ {
		go func() {
			defer wg.Done()
			var rgba [64]byte
			for {
				idx := int(atomic.AddUint32(&next, 1) - 1)
				if idx >= totalBlocks {
					return
				}
				bx := idx % blocksWide
				by := idx / blocksWide
				DecompressBlock(&rgba, data[idx*blockSize:(idx+1)*blockSize], format)
				scatterBlock(pix, width, height, 4*bx, 4*by, &rgba)
			}
		}()
	}
	wg.Wait()
}
