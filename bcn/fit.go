package bcn

// colorFit is one endpoint fitting strategy. compress3 and compress4 share
// best-error state, so a BC1 block can try both palette modes and keep the
// cheaper encoding.
type colorFit interface {
	compress3(block []byte)
	compress4(block []byte)
}

// compressColorBlock fits endpoints for one texel set and writes the
// 8-byte color block.
//
// Single-point sets use the lookup-table fit regardless of algorithm;
// empty sets degrade to the range fit, which emits the canonical
// all-transparent block for BC1.
func compressColorBlock(set *colorSet, format Format, p Params, block []byte) {
	var fit colorFit
	switch {
	case set.count == 1:
		fit = newSingleColorFit(set)
	case p.Algorithm == AlgorithmRangeFit || set.count == 0:
		fit = newRangeFit(set, p)
	default:
		fit = newClusterFit(set, p)
	}

	if format == FormatBC1 {
		fit.compress3(block)
		if !set.transparent {
			fit.compress4(block)
		}
	} else {
		fit.compress4(block)
	}
}
