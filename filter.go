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

// Parameters of the expression filter. If Group is set, the minimum
// sample size is the size of the smallest group, otherwise it is
// determined from the design (if given) or the number of samples.
type FilterOptions struct {
  MinCount      float64 `yaml:"min_count"`
  MinTotalCount float64 `yaml:"min_total_count"`
  LargeN        float64 `yaml:"large_n"`
  MinProp       float64 `yaml:"min_prop"`
  Group         string  `yaml:"group"`
}

func DefaultFilterOptions() FilterOptions {
  return FilterOptions{
    MinCount     : 10,
    MinTotalCount: 15,
    LargeN       : 10,
    MinProp      : 0.7,
    Group        : "genotype" }
}

/* -------------------------------------------------------------------------- */

type Retention struct {
  SamplesBefore int
  SamplesAfter  int
  GenesBefore   int
  GenesAfter    int
}

func percent(a, b int) float64 {
  if b == 0 {
    return math.NaN()
  }
  return 100.0*float64(a)/float64(b)
}

func (r Retention) SamplePercent() float64 {
  return percent(r.SamplesAfter, r.SamplesBefore)
}

func (r Retention) GenePercent() float64 {
  return percent(r.GenesAfter, r.GenesBefore)
}

func (r Retention) String() string {
  return fmt.Sprintf("samples: %d/%d (%.2f%%), genes: %d/%d (%.2f%%)",
    r.SamplesAfter, r.SamplesBefore, r.SamplePercent(),
    r.GenesAfter,   r.GenesBefore,   r.GenePercent())
}

type FilteredExperiment struct {
  AnnotatedExperiment
  Retention Retention
}

/* sample filter
 * -------------------------------------------------------------------------- */

// Keep samples with quality score strictly above the threshold. Samples
// with undefined quality are removed.
func FilterSamples(a AnnotatedExperiment, threshold float64) (AnnotatedExperiment, error) {
  q := a.Quality()
  if len(q) != a.NSamples() {
    return AnnotatedExperiment{}, fmt.Errorf("%w: quality score `%s' is missing", ErrMetadata, QualityColumn)
  }
  keep := []int{}
  for j := range q {
    if q[j] > threshold {
      keep = append(keep, j)
    }
  }
  return a.SubsetSamples(keep), nil
}

/* gene filter
 * -------------------------------------------------------------------------- */

// Diagonal of the hat matrix X (X^T X)^-1 X^T.
func hatValues(x *mat.Dense) ([]float64, error) {
  n, _ := x.Dims()
  var xtx mat.SymDense
  xtx.SymOuterK(1, x.T())
  var chol mat.Cholesky
  if ok := chol.Factorize(&xtx); !ok {
    return nil, ErrRankDeficient
  }
  var inv mat.SymDense
  if err := chol.InverseTo(&inv); err != nil {
    return nil, err
  }
  h := make([]float64, n)
  var t mat.Dense
  t.Mul(x, &inv)
  for i := 0; i < n; i++ {
    h[i] = mat.Dot(t.RowView(i), x.RowView(i))
  }
  return h, nil
}

func (opts FilterOptions) minSampleSize(a AnnotatedExperiment, design *DesignMatrix) (float64, error) {
  var n float64
  switch {
  case opts.Group != "":
    f, err := a.Factor(opts.Group)
    if err != nil {
      return 0, err
    }
    n = math.Inf(1)
    for _, k := range f.Table() {
      if k > 0 && float64(k) < n {
        n = float64(k)
      }
    }
    if math.IsInf(n, 1) {
      n = 0
    }
  case design != nil:
    h, err := hatValues(design.X)
    if err != nil {
      return 0, err
    }
    m := 0.0
    for _, v := range h {
      m = math.Max(m, v)
    }
    n = 1.0/m
  default:
    n = float64(a.NSamples())
  }
  if n > opts.LargeN {
    n = opts.LargeN + (n - opts.LargeN)*opts.MinProp
  }
  return n, nil
}

// Indicator for genes with sufficiently large counts to be retained in a
// statistical analysis. A gene is kept if it has at least MinCount reads
// (expressed as counts per million at the median library size) in a
// number of samples given by the minimum sample size, and at least
// MinTotalCount reads over all samples.
func FilterByExprMask(a AnnotatedExperiment, opts FilterOptions, design *DesignMatrix) ([]bool, error) {
  keep := make([]bool, a.NGenes())
  if a.NGenes() == 0 || a.NSamples() == 0 {
    return keep, nil
  }
  lib := a.LibSizes()
  cutoff := opts.MinCount/median(lib)*1e6
  minSampleSize, err := opts.minSampleSize(a, design)
  if err != nil {
    return nil, err
  }
  for i := 0; i < a.NGenes(); i++ {
    n     := 0.0
    total := 0.0
    for j := 0; j < a.NSamples(); j++ {
      y := a.Counts.At(i, j)
      total += y
      if lib[j] > 0 && y/lib[j]*1e6 >= cutoff {
        n += 1
      }
    }
    keep[i] = n >= minSampleSize - 1e-14 && total >= opts.MinTotalCount - 1e-14
  }
  return keep, nil
}

func FilterByExpr(a AnnotatedExperiment, opts FilterOptions, design *DesignMatrix) (AnnotatedExperiment, error) {
  mask, err := FilterByExprMask(a, opts, design)
  if err != nil {
    return AnnotatedExperiment{}, err
  }
  keep := []int{}
  for i, k := range mask {
    if k {
      keep = append(keep, i)
    }
  }
  return a.SubsetGenes(keep), nil
}

/* -------------------------------------------------------------------------- */

// Apply the sample filter followed by the gene filter. The gene filter
// is evaluated on the retained samples only.
func Filter(a AnnotatedExperiment, threshold float64, opts FilterOptions) (FilteredExperiment, error) {
  r := Retention{SamplesBefore: a.NSamples(), GenesBefore: a.NGenes()}
  s, err := FilterSamples(a, threshold)
  if err != nil {
    return FilteredExperiment{}, err
  }
  g, err := FilterByExpr(s, opts, nil)
  if err != nil {
    return FilteredExperiment{}, err
  }
  r.SamplesAfter = g.NSamples()
  r.GenesAfter   = g.NGenes()
  return FilteredExperiment{AnnotatedExperiment: g, Retention: r}, nil
}
