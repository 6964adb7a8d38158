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

import "gonum.org/v1/gonum/mat"

/* -------------------------------------------------------------------------- */

type VoomOptions struct {
  Span float64
  LmFitOptions
}

func DefaultVoomOptions() VoomOptions {
  return VoomOptions{Span: 0.5}
}

// Log2 counts per million with observation level precision weights.
// TrendX and TrendY hold the mean-variance trend (average log count,
// square root of the residual standard deviation) for plotting.
type VoomResult struct {
  NormalizedExperiment
  Design  DesignMatrix
  E       *mat.Dense
  Weights *mat.Dense
  TrendX  []float64
  TrendY  []float64
}

/* -------------------------------------------------------------------------- */

// Log2 counts per million with a prior count of 0.5.
func LogCPM(counts *mat.Dense, libSizes []float64) *mat.Dense {
  g, n := counts.Dims()
  r := mat.NewDense(g, n, nil)
  for i := 0; i < g; i++ {
    for j := 0; j < n; j++ {
      r.Set(i, j, math.Log2((counts.At(i, j) + 0.5)/(libSizes[j] + 1.0)*1e6))
    }
  }
  return r
}

// Transform counts to log2-CPM values and estimate the mean-variance
// relationship to compute precision weights for each observation.
func Voom(n NormalizedExperiment, design DesignMatrix, opts VoomOptions) (VoomResult, error) {
  if n.NGenes() == 0 || n.NSamples() == 0 {
    return VoomResult{}, fmt.Errorf("%w: %d genes, %d samples", ErrEmptyMatrix, n.NGenes(), n.NSamples())
  }
  if n.NGenes() < 2 {
    return VoomResult{}, fmt.Errorf("%w: need at least two genes to fit a mean-variance trend", ErrEmptyMatrix)
  }
  lib := n.EffectiveLibSizes()
  y   := LogCPM(n.Counts, lib)

  fit, err := LmFit(y, nil, design, opts.LmFitOptions)
  if err != nil {
    return VoomResult{}, err
  }
  meanLogLib := 0.0
  for _, l := range lib {
    meanLogLib += math.Log2(l + 1.0)
  }
  meanLogLib /= float64(len(lib))

  sx := []float64{}
  sy := []float64{}
  for i := 0; i < n.NGenes(); i++ {
    total := 0.0
    for j := 0; j < n.NSamples(); j++ {
      total += n.Counts.At(i, j)
    }
    // all-zero rows are dropped from the trend, and so are rows whose
    // residual variance is undefined (no residual degrees of freedom)
    if total == 0 || math.IsNaN(fit.Sigma[i]) {
      continue
    }
    sx = append(sx, fit.Amean[i] + meanLogLib - math.Log2(1e6))
    sy = append(sy, math.Sqrt(fit.Sigma[i]))
  }
  if len(sx) == 0 {
    return VoomResult{}, fmt.Errorf("%w: no residual variance available for the mean-variance trend", ErrEmptyMatrix)
  }
  lx, ly := Lowess(sx, sy, opts.Span)
  trend  := newLinearInterpolator(lx, ly)

  fitted := fit.FittedValues()
  g, m   := fitted.Dims()
  w      := mat.NewDense(g, m, nil)
  for i := 0; i < g; i++ {
    for j := 0; j < m; j++ {
      fittedCount := 1e-6*math.Pow(2, fitted.At(i, j))*(lib[j] + 1.0)
      s := trend.Eval(math.Log2(fittedCount))
      w.Set(i, j, 1.0/math.Pow(s, 4))
    }
  }
  return VoomResult{
    NormalizedExperiment: n,
    Design : design,
    E      : y,
    Weights: w,
    TrendX : sx,
    TrendY : sy }, nil
}
