package bcn

import (
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl32"
)

// maxClusterIterations bounds the ordering refinement of the iterative fit.
const maxClusterIterations = 8

// clusterFit searches every contiguous partition of the points, ordered
// along the principal axis, and solves the least-squares endpoints for
// each. The iterative variant re-sorts along the fitted axis and repeats
// on up to maxClusterIterations distinct orderings.
//
// Summation state lives in Vec4s: xyz carry the weighted position, w
// carries the weight itself, so alpha2_sum and friends fall out of the
// w lane for free.
type clusterFit struct {
	set            *colorSet
	weights        mgl32.Vec4
	iterationCount int
	principle      mgl32.Vec3
	order          [maxClusterIterations][16]byte
	pointsWeights  [16]mgl32.Vec4
	xsumWsum       mgl32.Vec4
	bestError      float32
}

func newClusterFit(set *colorSet, p Params) *clusterFit {
	fit := &clusterFit{
		set:            set,
		weights:        mgl32.Vec4{p.Weights[0], p.Weights[1], p.Weights[2], 1},
		iterationCount: 1,
		bestError:      math.MaxFloat32,
	}
	if p.Algorithm == AlgorithmIterativeClusterFit {
		fit.iterationCount = maxClusterIterations
	}

	cov := computeWeightedCovariance(set.points[:set.count], set.weights[:set.count])
	fit.principle = computePrincipalComponent(cov)
	return fit
}

// constructOrdering sorts the points along axis and accumulates the
// weighted sums for that ordering. It reports false when the ordering
// duplicates one from an earlier iteration.
func (f *clusterFit) constructOrdering(axis mgl32.Vec3, iteration int) bool {
	count := f.set.count
	values := f.set.points[:count]

	type dotIndex struct {
		index int
		dot   float32
	}
	var dps [16]dotIndex
	for i := 0; i < count; i++ {
		dps[i] = dotIndex{i, values[i].Dot(axis)}
	}

	// Ascending by dot product; non-finite values go last, ties keep the
	// lower point index first so the ordering is deterministic.
	sort.Slice(dps[:count], func(x, y int) bool {
		a, b := dps[x].dot, dps[y].dot
		af := !math.IsNaN(float64(a)) && !math.IsInf(float64(a), 0)
		bf := !math.IsNaN(float64(b)) && !math.IsInf(float64(b), 0)
		switch {
		case af && !bf:
			return true
		case !af && bf:
			return false
		case af && bf && a != b:
			return a < b
		default:
			return dps[x].index < dps[y].index
		}
	})

	for i := 0; i < count; i++ {
		f.order[iteration][i] = byte(dps[i].index)
	}
	for i := count; i < 16; i++ {
		f.order[iteration][i] = 0
	}

	for i := 0; i < iteration; i++ {
		if f.order[iteration] == f.order[i] {
			return false
		}
	}

	f.xsumWsum = mgl32.Vec4{}
	for i := 0; i < count; i++ {
		j := f.order[iteration][i]
		p := f.set.points[j]
		w := f.set.weights[j]
		x := mgl32.Vec4{p[0] * w, p[1] * w, p[2] * w, w}
		f.pointsWeights[i] = x
		f.xsumWsum = f.xsumWsum.Add(x)
	}
	return true
}

func (f *clusterFit) compress3(block []byte) {
	count := f.set.count
	halfHalf2 := mgl32.Vec4{0.5, 0.5, 0.5, 0.25}

	var bestStart, bestEnd mgl32.Vec4
	bestError := f.bestError
	bestIteration, bestI, bestJ := 0, 0, 0

	axis := f.principle
	for iteration := 0; iteration < f.iterationCount; iteration++ {
		if !f.constructOrdering(axis, iteration) {
			break
		}

		// First cluster [0,i) sits at the start endpoint.
		var part0 mgl32.Vec4
		for i := 0; i < count; i++ {
			// Second cluster [i,j) sits halfway along.
			var part1 mgl32.Vec4
			jmin := i
			if i == 0 {
				part1 = f.pointsWeights[0]
				jmin = 1
			}
			for j := jmin; j <= count; j++ {
				// Last cluster [j,count) sits at the end endpoint.
				part2 := f.xsumWsum.Sub(part1).Sub(part0)

				alphaxSum := mulElem4(part1, halfHalf2).Add(part0)
				alpha2Sum := alphaxSum[3]
				betaxSum := mulElem4(part1, halfHalf2).Add(part2)
				beta2Sum := betaxSum[3]
				alphabetaSum := part1[3] * halfHalf2[3]

				a, b := solveLeastSquares(alphaxSum, betaxSum, alpha2Sum, beta2Sum, alphabetaSum)
				err := f.partitionError(a, b, alphaxSum, betaxSum, alpha2Sum, beta2Sum, alphabetaSum)

				if err < bestError {
					bestStart = a
					bestEnd = b
					bestI = i
					bestJ = j
					bestError = err
					bestIteration = iteration
				}

				if j < count {
					part1 = part1.Add(f.pointsWeights[j])
				}
			}
			part0 = part0.Add(f.pointsWeights[i])
		}

		// Stop unless this iteration found a new best.
		if bestIteration != iteration {
			break
		}
		axis = bestEnd.Sub(bestStart).Vec3()
	}

	if bestError < f.bestError {
		order := &f.order[bestIteration]
		var unordered [16]byte
		for m := bestI; m < bestJ; m++ {
			unordered[order[m]] = 2
		}
		for m := bestJ; m < count; m++ {
			unordered[order[m]] = 1
		}

		var indices [16]byte
		f.set.remapIndices(unordered[:], &indices)
		writeColorBlock3(bestStart.Vec3(), bestEnd.Vec3(), &indices, block)
		f.bestError = bestError
	}
}

func (f *clusterFit) compress4(block []byte) {
	count := f.set.count
	onethird := mgl32.Vec4{1.0 / 3, 1.0 / 3, 1.0 / 3, 1.0 / 9}
	twothirds := mgl32.Vec4{2.0 / 3, 2.0 / 3, 2.0 / 3, 4.0 / 9}
	const twoninths = 2.0 / 9

	var bestStart, bestEnd mgl32.Vec4
	bestError := f.bestError
	bestIteration, bestI, bestJ, bestK := 0, 0, 0, 0

	axis := f.principle
	for iteration := 0; iteration < f.iterationCount; iteration++ {
		if !f.constructOrdering(axis, iteration) {
			break
		}

		// First cluster [0,i) sits at the start endpoint.
		var part0 mgl32.Vec4
		for i := 0; i < count; i++ {
			// Second cluster [i,j) sits one third along.
			var part1 mgl32.Vec4
			for j := i; j <= count; j++ {
				// Third cluster [j,k) sits two thirds along.
				var part2 mgl32.Vec4
				kmin := j
				if j == 0 {
					part2 = f.pointsWeights[0]
					kmin = 1
				}
				for k := kmin; k <= count; k++ {
					// Last cluster [k,count) sits at the end endpoint.
					part3 := f.xsumWsum.Sub(part2).Sub(part1).Sub(part0)

					alphaxSum := mulElem4(part2, onethird).Add(mulElem4(part1, twothirds).Add(part0))
					alpha2Sum := alphaxSum[3]
					betaxSum := mulElem4(part1, onethird).Add(mulElem4(part2, twothirds).Add(part3))
					beta2Sum := betaxSum[3]
					alphabetaSum := twoninths * (part1[3] + part2[3])

					a, b := solveLeastSquares(alphaxSum, betaxSum, alpha2Sum, beta2Sum, alphabetaSum)
					err := f.partitionError(a, b, alphaxSum, betaxSum, alpha2Sum, beta2Sum, alphabetaSum)

					if err < bestError {
						bestStart = a
						bestEnd = b
						bestI = i
						bestJ = j
						bestK = k
						bestError = err
						bestIteration = iteration
					}

					if k < count {
						part2 = part2.Add(f.pointsWeights[k])
					}
				}
				if j < count {
					part1 = part1.Add(f.pointsWeights[j])
				}
			}
			part0 = part0.Add(f.pointsWeights[i])
		}

		// Stop unless this iteration found a new best.
		if bestIteration != iteration {
			break
		}
		axis = bestEnd.Sub(bestStart).Vec3()
	}

	if bestError < f.bestError {
		order := &f.order[bestIteration]
		var unordered [16]byte
		for m := bestI; m < bestJ; m++ {
			unordered[order[m]] = 2
		}
		for m := bestJ; m < count; m++ {
			unordered[order[m]] = 3
		}
		for m := bestK; m < count; m++ {
			unordered[order[m]] = 1
		}

		var indices [16]byte
		f.set.remapIndices(unordered[:], &indices)
		writeColorBlock4(bestStart.Vec3(), bestEnd.Vec3(), &indices, block)
		f.bestError = bestError
	}
}

// solveLeastSquares computes the optimal endpoints for one partition and
// snaps them to the RGB565 grid. Degenerate partitions divide by zero
// here; the resulting non-finite error loses every comparison and the
// partition is skipped.
func solveLeastSquares(alphaxSum, betaxSum mgl32.Vec4, alpha2Sum, beta2Sum, alphabetaSum float32) (a, b mgl32.Vec4) {
	factor := 1 / (alpha2Sum*beta2Sum - alphabetaSum*alphabetaSum)
	a = alphaxSum.Mul(beta2Sum).Sub(betaxSum.Mul(alphabetaSum)).Mul(factor)
	b = betaxSum.Mul(alpha2Sum).Sub(alphaxSum.Mul(alphabetaSum)).Mul(factor)
	return snapToGrid4(a), snapToGrid4(b)
}

// partitionError evaluates the squared error of endpoints a,b for the
// accumulated partition sums, shifted by the constant point self-term,
// so values can be negative. Channel weights apply per lane.
func (f *clusterFit) partitionError(a, b, alphaxSum, betaxSum mgl32.Vec4, alpha2Sum, beta2Sum, alphabetaSum float32) float32 {
	e1 := mulElem4(a, a).Mul(alpha2Sum).Add(mulElem4(b, b).Mul(beta2Sum))
	e2 := mulElem4(a, b).Mul(alphabetaSum).Sub(mulElem4(a, alphaxSum))
	e3 := e2.Sub(mulElem4(b, betaxSum))
	e4 := e3.Mul(2).Add(e1)
	e5 := mulElem4(e4, f.weights)
	return e5[0] + e5[1] + e5[2]
}
