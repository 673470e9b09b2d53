package clustering

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

const (
	lmMaxIterations = 200
	lmInitialDamp   = 1e-3
	lmMinStep       = 1e-12
)

// curve is the low-dimensional membership kernel 1/(1 + a*x^(2b)).
func curve(x, a, b float64) float64 {
	return 1 / (1 + a*math.Pow(x, 2*b))
}

func sumSquares(xs, ys []float64, a, b float64) float64 {
	s := 0.0
	for i, x := range xs {
		r := curve(x, a, b) - ys[i]
		s += r * r
	}
	return s
}

// levenbergMarquardt fits a and b of curve to the samples starting from
// (a0, b0). Steps that would make either parameter non-positive are rejected.
func levenbergMarquardt(xs, ys []float64, a0, b0 float64) (float64, float64) {
	a, b := a0, b0
	damp := lmInitialDamp
	cost := sumSquares(xs, ys, a, b)

	for iter := 0; iter < lmMaxIterations; iter++ {
		var jtj [3]float64 // aa, ab, bb
		var jtr [2]float64
		for i, x := range xs {
			if x <= 0 {
				continue
			}
			p := math.Pow(x, 2*b)
			den := (1 + a*p) * (1 + a*p)
			ja := -p / den
			jb := -a * p * 2 * math.Log(x) / den
			r := curve(x, a, b) - ys[i]
			jtj[0] += ja * ja
			jtj[1] += ja * jb
			jtj[2] += jb * jb
			jtr[0] += ja * r
			jtr[1] += jb * r
		}

		improved := false
		for attempt := 0; attempt < 20; attempt++ {
			lhs := mat.NewDense(2, 2, []float64{
				jtj[0] * (1 + damp), jtj[1],
				jtj[1], jtj[2] * (1 + damp),
			})
			rhs := mat.NewVecDense(2, []float64{-jtr[0], -jtr[1]})
			var step mat.VecDense
			if err := step.SolveVec(lhs, rhs); err != nil {
				damp *= 10
				continue
			}
			na, nb := a+step.AtVec(0), b+step.AtVec(1)
			if na <= 0 || nb <= 0 {
				damp *= 10
				continue
			}
			if c := sumSquares(xs, ys, na, nb); c < cost {
				converged := math.Abs(step.AtVec(0)) < lmMinStep && math.Abs(step.AtVec(1)) < lmMinStep
				a, b, cost = na, nb, c
				damp /= 10
				improved = true
				if converged {
					return a, b
				}
				break
			}
			damp *= 10
		}
		if !improved {
			break
		}
	}
	return a, b
}
