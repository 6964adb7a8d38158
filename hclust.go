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

import "math"

import "gonum.org/v1/gonum/mat"

/* -------------------------------------------------------------------------- */

// Single merge step of an agglomerative clustering. Left and Right are
// leaf indices if negative (-1 for leaf 0) and previous merge steps
// otherwise.
type Merge struct {
  Left   int
  Right  int
  Height float64
}

type Dendrogram struct {
  Merges []Merge
  // leaves in plotting order
  Order  []int
}

/* -------------------------------------------------------------------------- */

// Euclidean distances between the rows of x.
func EuclideanDistances(x mat.Matrix) *mat.SymDense {
  n, m := x.Dims()
  d := mat.NewSymDense(n, nil)
  for a := 0; a < n; a++ {
    for b := a+1; b < n; b++ {
      s := 0.0
      for j := 0; j < m; j++ {
        v := x.At(a, j) - x.At(b, j)
        s += v*v
      }
      d.SetSym(a, b, math.Sqrt(s))
    }
  }
  return d
}

// Complete linkage hierarchical clustering. Ties are resolved by taking
// the first pair in row order.
func HClustComplete(d mat.Symmetric) Dendrogram {
  n := d.SymmetricDim()
  if n == 0 {
    return Dendrogram{}
  }
  if n == 1 {
    return Dendrogram{Order: []int{0}}
  }
  dist := mat.NewSymDense(n, nil)
  dist.CopySym(d)
  // label of each active cluster and its leaves in plotting order
  label  := make([]int, n)
  leaves := make([][]int, n)
  active := make([]bool, n)
  for i := 0; i < n; i++ {
    label [i] = -(i+1)
    leaves[i] = []int{i}
    active[i] = true
  }
  merges := make([]Merge, 0, n-1)
  for step := 0; step < n-1; step++ {
    ba, bb := -1, -1
    bd := math.Inf(1)
    for a := 0; a < n; a++ {
      if !active[a] {
        continue
      }
      for b := a+1; b < n; b++ {
        if active[b] && dist.At(a, b) < bd {
          ba, bb, bd = a, b, dist.At(a, b)
        }
      }
    }
    // singletons before clusters, earlier clusters first
    l, r := label[ba], label[bb]
    la, lb := leaves[ba], leaves[bb]
    if (l >= 0 && r < 0) || (l >= 0 && r >= 0 && r < l) || (l < 0 && r < 0 && r > l) {
      l, r   = r, l
      la, lb = lb, la
    }
    merges = append(merges, Merge{Left: l, Right: r, Height: bd})
    leaves[ba] = append(append([]int{}, la...), lb...)
    label [ba] = step
    active[bb] = false
    leaves[bb] = nil
    for c := 0; c < n; c++ {
      if active[c] && c != ba {
        dist.SetSym(ba, c, math.Max(dist.At(ba, c), dist.At(bb, c)))
      }
    }
  }
  for i := 0; i < n; i++ {
    if active[i] {
      return Dendrogram{Merges: merges, Order: leaves[i]}
    }
  }
  return Dendrogram{Merges: merges}
}
