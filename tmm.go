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

/* -------------------------------------------------------------------------- */

type TMMOptions struct {
  LogRatioTrim float64
  SumTrim      float64
  DoWeighting  bool
  ACutoff      float64
}

func DefaultTMMOptions() TMMOptions {
  return TMMOptions{
    LogRatioTrim: 0.3,
    SumTrim     : 0.05,
    DoWeighting : true,
    ACutoff     : -1e10 }
}

// Filtered experiment with library sizes and TMM scaling factors. The
// effective library size of sample j is LibSizes[j]*NormFactors[j].
type NormalizedExperiment struct {
  FilteredExperiment
  LibSizes    []float64
  NormFactors []float64
}

func (n NormalizedExperiment) EffectiveLibSizes() []float64 {
  r := make([]float64, len(n.LibSizes))
  for j := range r {
    r[j] = n.LibSizes[j]*n.NormFactors[j]
  }
  return r
}

/* -------------------------------------------------------------------------- */

// Scaling factor of obs relative to ref computed as weighted trimmed
// mean of log expression ratios.
func tmmFactor(obs, ref []float64, libObs, libRef float64, opts TMMOptions) float64 {
  logR := []float64{}
  absE := []float64{}
  v    := []float64{}
  for i := range obs {
    lr := math.Log2((obs[i]/libObs)/(ref[i]/libRef))
    ae := (math.Log2(obs[i]/libObs) + math.Log2(ref[i]/libRef))/2
    if math.IsNaN(lr) || math.IsInf(lr, 0) || math.IsNaN(ae) || math.IsInf(ae, 0) || ae <= opts.ACutoff {
      continue
    }
    logR = append(logR, lr)
    absE = append(absE, ae)
    v    = append(v, (libObs-obs[i])/libObs/obs[i] + (libRef-ref[i])/libRef/ref[i])
  }
  if len(logR) == 0 {
    return 1.0
  }
  if m := maxAbs(logR); m < 1e-6 {
    return 1.0
  }
  n   := float64(len(logR))
  loL := math.Floor(n*opts.LogRatioTrim) + 1
  hiL := n + 1 - loL
  loS := math.Floor(n*opts.SumTrim) + 1
  hiS := n + 1 - loS

  rankR := rankAverage(logR)
  rankE := rankAverage(absE)

  num := 0.0
  den := 0.0
  for i := range logR {
    if rankR[i] < loL || rankR[i] > hiL || rankE[i] < loS || rankE[i] > hiS {
      continue
    }
    if opts.DoWeighting {
      num += logR[i]/v[i]
      den += 1.0/v[i]
    } else {
      num += logR[i]
      den += 1.0
    }
  }
  f := num/den
  if math.IsNaN(f) {
    f = 0
  }
  return math.Pow(2, f)
}

func maxAbs(x []float64) float64 {
  r := 0.0
  for _, v := range x {
    r = math.Max(r, math.Abs(v))
  }
  return r
}

// Index of the reference sample: the sample whose upper quartile of
// library size scaled counts is closest to the mean upper quartile.
func tmmRefColumn(a Experiment, lib []float64) int {
  f75 := make([]float64, a.NSamples())
  for j := range f75 {
    y := a.Column(j)
    for i := range y {
      y[i] /= lib[j]
    }
    f75[j] = quantile7(y, 0.75)
  }
  if median(f75) < 1e-20 {
    best := 0
    bestValue := math.Inf(-1)
    for j := range f75 {
      s := 0.0
      for _, y := range a.Column(j) {
        s += math.Sqrt(y)
      }
      if s > bestValue {
        best, bestValue = j, s
      }
    }
    return best
  }
  mean := 0.0
  for _, v := range f75 {
    mean += v
  }
  mean /= float64(len(f75))
  best := 0
  for j := range f75 {
    if math.Abs(f75[j]-mean) < math.Abs(f75[best]-mean) {
      best = j
    }
  }
  return best
}

// Trimmed mean of M-values normalization. Factors are scaled to have a
// geometric mean of one. The count matrix is not modified.
func CalcNormFactors(f FilteredExperiment, opts TMMOptions) (NormalizedExperiment, error) {
  if f.NGenes() == 0 || f.NSamples() == 0 {
    return NormalizedExperiment{}, fmt.Errorf("%w: %d genes, %d samples", ErrEmptyMatrix, f.NGenes(), f.NSamples())
  }
  lib := f.LibSizes()
  for j := range lib {
    if lib[j] <= 0 {
      return NormalizedExperiment{}, fmt.Errorf("%w: sample `%s' has no counts", ErrEmptyMatrix, f.SampleIds[j])
    }
  }
  ref := tmmRefColumn(f.Experiment, lib)
  y   := f.Column(ref)

  factors := make([]float64, f.NSamples())
  logSum  := 0.0
  for j := range factors {
    factors[j] = tmmFactor(f.Column(j), y, lib[j], lib[ref], opts)
    logSum += math.Log(factors[j])
  }
  g := math.Exp(logSum/float64(len(factors)))
  for j := range factors {
    factors[j] /= g
  }
  return NormalizedExperiment{FilteredExperiment: f, LibSizes: lib, NormFactors: factors}, nil
}
