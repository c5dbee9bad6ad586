package bcn

import "sync"

// sourceBlock is one LUT entry: the endpoint pair whose palette code lands
// closest to the target value, and the absolute error it leaves.
type sourceBlock struct {
	start uint8
	end   uint8
	err   uint8
}

// singleLookup maps an 8-bit channel target to the best endpoint pair for
// palette index 0 (entry 0) and for the first interpolated index (entry 1).
type singleLookup [256][2]sourceBlock

var (
	singleLutOnce sync.Once
	lookup53      singleLookup
	lookup63      singleLookup
	lookup54      singleLookup
	lookup64      singleLookup
)

func extend5(v int) int { return v<<3 | v>>2 }
func extend6(v int) int { return v<<2 | v>>4 }

// buildSingleLookup fills table for endpoints of the given bit width and
// palette size. Strict improvement with start as the outer loop keeps the
// lowest start, then the lowest end, on error ties.
func buildSingleLookup(bits, colors int, table *singleLookup) {
	extend := extend5
	if bits == 6 {
		extend = extend6
	}

	for target := range table {
		table[target][0].err = 255
		table[target][1].err = 255
	}

	limit := 1 << bits
	for start := 0; start < limit; start++ {
		for end := 0; end < limit; end++ {
			var codes [2]int
			codes[0] = extend(start)
			if colors == 3 {
				codes[1] = (extend(start) + extend(end)) / 2
			} else {
				codes[1] = (2*extend(start) + extend(end)) / 3
			}

			for index := 0; index < 2; index++ {
				for target := 0; target < 256; target++ {
					diff := codes[index] - target
					if diff < 0 {
						diff = -diff
					}
					if diff < int(table[target][index].err) {
						table[target][index] = sourceBlock{uint8(start), uint8(end), uint8(diff)}
					}
				}
			}
		}
	}
}

// singleLookups returns the four quantization tables, building them on
// first use.
func singleLookups() (l53, l63, l54, l64 *singleLookup) {
	singleLutOnce.Do(func() {
		buildSingleLookup(5, 3, &lookup53)
		buildSingleLookup(6, 3, &lookup63)
		buildSingleLookup(5, 4, &lookup54)
		buildSingleLookup(6, 4, &lookup64)
	})
	return &lookup53, &lookup63, &lookup54, &lookup64
}
