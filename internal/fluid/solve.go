package fluid

import "math"

const (
	bisectMaxIter = 200
	bisectTol     = 1e-10
)

// bisect finds a root of f on [lo, hi]. f must change sign over the bracket.
func bisect(f func(float64) float64, lo, hi float64) (float64, error) {
	return bisectErr(func(x float64) (float64, error) { return f(x), nil }, lo, hi)
}

func bisectErr(f func(float64) (float64, error), lo, hi float64) (float64, error) {
	flo, err := f(lo)
	if err != nil {
		return 0, err
	}
	if flo == 0 {
		return lo, nil
	}
	fhi, err := f(hi)
	if err != nil {
		return 0, err
	}
	if fhi == 0 {
		return hi, nil
	}
	if math.Signbit(flo) == math.Signbit(fhi) {
		return 0, outOfRange("no root bracketed in [%g, %g]", lo, hi)
	}
	for i := 0; i < bisectMaxIter; i++ {
		mid := 0.5 * (lo + hi)
		fm, err := f(mid)
		if err != nil {
			return 0, err
		}
		if fm == 0 || hi-lo < bisectTol*math.Max(1, math.Abs(mid)) {
			return mid, nil
		}
		if math.Signbit(fm) == math.Signbit(flo) {
			lo, flo = mid, fm
		} else {
			hi = mid
		}
	}
	return 0.5 * (lo + hi), nil
}
