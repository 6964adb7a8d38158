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
import "sort"

import "gonum.org/v1/gonum/mat"

/* -------------------------------------------------------------------------- */

// Two-dimensional multidimensional scaling of samples. X and Y are the
// sample coordinates, VarExplained the proportion of the (positive)
// eigenvalue sum captured by each of the two dimensions.
type MDSResult struct {
  SampleIds    []string
  Distances    *mat.SymDense
  X            []float64
  Y            []float64
  VarExplained [2]float64
}

/* -------------------------------------------------------------------------- */

// Leading log-fold-change distances: for each pair of samples the root
// mean square of the top largest absolute differences over genes.
func LeadingLogFCDistances(e *mat.Dense, top int) *mat.SymDense {
  g, n := e.Dims()
  if top > g {
    top = g
  }
  d := mat.NewSymDense(n, nil)
  s := make([]float64, g)
  for a := 0; a < n; a++ {
    for b := a+1; b < n; b++ {
      for i := 0; i < g; i++ {
        v := e.At(i, a) - e.At(i, b)
        s[i] = v*v
      }
      sort.Sort(sort.Reverse(sort.Float64Slice(s)))
      m := 0.0
      for i := 0; i < top; i++ {
        m += s[i]
      }
      d.SetSym(a, b, math.Sqrt(m/float64(top)))
    }
  }
  return d
}

// Classical (Torgerson) multidimensional scaling of a distance matrix
// into k dimensions. Returns the coordinates (samples by k) and the
// eigenvalues in decreasing order.
func ClassicalScaling(d mat.Symmetric, k int) (*mat.Dense, []float64, error) {
  n := d.SymmetricDim()
  if k > n {
    return nil, nil, fmt.Errorf("cannot scale %d objects into %d dimensions", n, k)
  }
  // double centering of -1/2 d^2
  b := mat.NewSymDense(n, nil)
  rowMean := make([]float64, n)
  allMean := 0.0
  for i := 0; i < n; i++ {
    for j := 0; j < n; j++ {
      v := d.At(i, j)
      rowMean[i] += v*v
    }
    allMean    += rowMean[i]
    rowMean[i] /= float64(n)
  }
  allMean /= float64(n*n)
  for i := 0; i < n; i++ {
    for j := i; j < n; j++ {
      v := d.At(i, j)
      b.SetSym(i, j, -0.5*(v*v - rowMean[i] - rowMean[j] + allMean))
    }
  }
  var es mat.EigenSym
  if ok := es.Factorize(b, true); !ok {
    return nil, nil, fmt.Errorf("eigen decomposition failed")
  }
  values := es.Values(nil)
  var vectors mat.Dense
  es.VectorsTo(&vectors)

  // eigenvalues are in ascending order
  r := mat.NewDense(n, k, nil)
  l := make([]float64, n)
  for c := 0; c < n; c++ {
    l[c] = values[n-1-c]
  }
  for c := 0; c < k; c++ {
    s := math.Sqrt(math.Max(l[c], 0))
    for i := 0; i < n; i++ {
      r.Set(i, c, vectors.At(i, n-1-c)*s)
    }
  }
  return r, l, nil
}

// MDS plot coordinates of the columns of the log-expression matrix e
// using pairwise selection of the top genes.
func PlotMDS(e *mat.Dense, sampleIds []string, top int) (MDSResult, error) {
  if e == nil {
    return MDSResult{}, fmt.Errorf("%w: no genes", ErrEmptyMatrix)
  }
  if _, n := e.Dims(); n < 3 {
    return MDSResult{}, fmt.Errorf("%w: at least 3 samples are required for an MDS plot", ErrEmptyMatrix)
  }
  d := LeadingLogFCDistances(e, top)
  x, l, err := ClassicalScaling(d, 2)
  if err != nil {
    return MDSResult{}, err
  }
  r := MDSResult{
    SampleIds: append([]string{}, sampleIds...),
    Distances: d,
    X        : mat.Col(nil, 0, x),
    Y        : mat.Col(nil, 1, x) }
  sum := 0.0
  for _, v := range l {
    if v > 0 {
      sum += v
    }
  }
  if sum > 0 {
    r.VarExplained[0] = math.Max(l[0], 0)/sum
    r.VarExplained[1] = math.Max(l[1], 0)/sum
  }
  return r, nil
}
