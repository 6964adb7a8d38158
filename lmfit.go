/* Copyright (C) 2016 Philipp Benner
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License
 * along with this program.  If not, see <http://www.gnu.org/licenses/>.
 */

package diffexpr

/* -------------------------------------------------------------------------- */

import "fmt"
import "math"
import "sync"

import "gonum.org/v1/gonum/mat"

import "github.com/pbenner/threadpool"

/* -------------------------------------------------------------------------- */

type LmFitOptions struct {
  // number of threads for the per-gene fits, values < 2 fit sequentially
  Threads  int
  // called with the number of genes fitted so far
  Progress func(i int)
}

// Gene-wise linear model fit. Matrices have one row per gene and one
// column per design coefficient.
type LinearFit struct {
  Design        DesignMatrix
  Coefficients  *mat.Dense
  StdevUnscaled *mat.Dense
  Sigma         []float64
  DfResidual    []float64
  Amean         []float64
}

func (fit LinearFit) NGenes() int {
  return len(fit.Sigma)
}

/* -------------------------------------------------------------------------- */

// Weighted least squares fit of a single gene. Observations with
// missing values or non-positive weights are ignored.
func lmFitGene(x *mat.Dense, y, w []float64, coef, stdev []float64) (float64, float64) {
  n, p := x.Dims()
  xtwx := mat.NewSymDense(p, nil)
  xtwy := mat.NewVecDense(p, nil)
  m    := 0
  for i := 0; i < n; i++ {
    wi := 1.0
    if w != nil {
      wi = w[i]
    }
    if math.IsNaN(y[i]) || !(wi > 0) {
      continue
    }
    m++
    for a := 0; a < p; a++ {
      xa := x.At(i, a)
      xtwy.SetVec(a, xtwy.AtVec(a) + wi*xa*y[i])
      for b := a; b < p; b++ {
        xtwx.SetSym(a, b, xtwx.At(a, b) + wi*xa*x.At(i, b))
      }
    }
  }
  setNaN := func() (float64, float64) {
    for k := 0; k < p; k++ {
      coef [k] = math.NaN()
      stdev[k] = math.NaN()
    }
    return math.NaN(), math.Max(float64(m-p), 0)
  }
  if m < p {
    return setNaN()
  }
  var chol mat.Cholesky
  if ok := chol.Factorize(xtwx); !ok {
    return setNaN()
  }
  beta := mat.NewVecDense(p, nil)
  if err := chol.SolveVecTo(beta, xtwy); err != nil {
    return setNaN()
  }
  var inv mat.SymDense
  if err := chol.InverseTo(&inv); err != nil {
    return setNaN()
  }
  for k := 0; k < p; k++ {
    coef [k] = beta.AtVec(k)
    stdev[k] = math.Sqrt(inv.At(k, k))
  }
  rss := 0.0
  for i := 0; i < n; i++ {
    wi := 1.0
    if w != nil {
      wi = w[i]
    }
    if math.IsNaN(y[i]) || !(wi > 0) {
      continue
    }
    r := y[i]
    for k := 0; k < p; k++ {
      r -= x.At(i, k)*coef[k]
    }
    rss += wi*r*r
  }
  df := float64(m - p)
  if df == 0 {
    return math.NaN(), df
  }
  return math.Sqrt(rss/df), df
}

// Fit a linear model to each row of y. If weights is not nil it must
// have the same dimension as y and contains observation precision
// weights.
func LmFit(y, weights *mat.Dense, design DesignMatrix, opts LmFitOptions) (LinearFit, error) {
  if y == nil {
    return LinearFit{}, fmt.Errorf("%w: no genes", ErrEmptyMatrix)
  }
  g, n := y.Dims()
  if n != design.NSamples() {
    return LinearFit{}, fmt.Errorf("expression matrix has %d samples, design matrix %d", n, design.NSamples())
  }
  if weights != nil {
    if wg, wn := weights.Dims(); wg != g || wn != n {
      return LinearFit{}, fmt.Errorf("weight matrix has dimension %dx%d, expected %dx%d", wg, wn, g, n)
    }
  }
  if err := design.CheckRank(); err != nil {
    return LinearFit{}, err
  }
  p   := design.NCoefficients()
  fit := LinearFit{
    Design       : design,
    Coefficients : mat.NewDense(g, p, nil),
    StdevUnscaled: mat.NewDense(g, p, nil),
    Sigma        : make([]float64, g),
    DfResidual   : make([]float64, g),
    Amean        : make([]float64, g) }

  mtx  := sync.Mutex{}
  done := 0
  fitRow := func(i int) {
    yi := mat.Row(nil, i, y)
    var wi []float64
    if weights != nil {
      wi = mat.Row(nil, i, weights)
    }
    fit.Sigma[i], fit.DfResidual[i] = lmFitGene(design.X, yi, wi,
      fit.Coefficients .RawRowView(i),
      fit.StdevUnscaled.RawRowView(i))
    s := 0.0
    k := 0
    for _, v := range yi {
      if !math.IsNaN(v) {
        s += v; k++
      }
    }
    fit.Amean[i] = s/float64(k)
    if opts.Progress != nil {
      mtx.Lock()
      done++
      opts.Progress(done)
      mtx.Unlock()
    }
  }
  if opts.Threads < 2 {
    for i := 0; i < g; i++ {
      fitRow(i)
    }
  } else {
    pool := threadpool.New(opts.Threads, 100*opts.Threads)
    defer pool.Stop()
    jg   := pool.NewJobGroup()
    if err := pool.AddRangeJob(0, g, jg, func(i int, pool threadpool.ThreadPool, erf func() error) error {
      fitRow(i)
      return nil
    }); err != nil {
      return LinearFit{}, err
    }
    if err := pool.Wait(jg); err != nil {
      return LinearFit{}, err
    }
  }
  return fit, nil
}

/* -------------------------------------------------------------------------- */

// Fitted values X beta^T, one row per gene.
func (fit LinearFit) FittedValues() *mat.Dense {
  var r mat.Dense
  r.Mul(fit.Coefficients, fit.Design.X.T())
  return &r
}
