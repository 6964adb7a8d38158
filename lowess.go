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
import "sort"

/* -------------------------------------------------------------------------- */

// Local weighted fit at xs using points nleft..nright (1-based, ties on
// the right are included). Returns false if all weights are zero.
func lowest(x, y []float64, n int, xs float64, nleft, nright int, w []float64, userw bool, rw []float64) (float64, bool) {
  rng := x[n] - x[1]
  h   := math.Max(xs - x[nleft], x[nright] - xs)
  h9  := 0.999*h
  h1  := 0.001*h

  a := 0.0
  j := nleft
  for j <= n {
    w[j] = 0.0
    r := math.Abs(x[j] - xs)
    if r <= h9 {
      if r <= h1 {
        w[j] = 1.0
      } else {
        q := r/h
        q  = 1.0 - q*q*q
        w[j] = q*q*q
      }
      if userw {
        w[j] *= rw[j]
      }
      a += w[j]
    } else if x[j] > xs {
      break
    }
    j++
  }
  nrt := j-1
  if a <= 0.0 {
    return 0.0, false
  }
  for j := nleft; j <= nrt; j++ {
    w[j] /= a
  }
  if h > 0.0 {
    a = 0.0
    for j := nleft; j <= nrt; j++ {
      a += w[j]*x[j]
    }
    b := xs - a
    c := 0.0
    for j := nleft; j <= nrt; j++ {
      c += w[j]*(x[j]-a)*(x[j]-a)
    }
    if math.Sqrt(c) > 0.001*rng {
      b /= c
      for j := nleft; j <= nrt; j++ {
        w[j] *= b*(x[j]-a) + 1.0
      }
    }
  }
  ys := 0.0
  for j := nleft; j <= nrt; j++ {
    ys += w[j]*y[j]
  }
  return ys, true
}

// Robust locally weighted regression of y on x (Cleveland 1979). The
// input must be sorted by x. f is the smoother span, nsteps the number of
// robustifying iterations and delta the distance within which linear
// interpolation replaces the local fit.
func clowess(xIn, yIn []float64, f float64, nsteps int, delta float64) []float64 {
  n := len(xIn)
  if n == 0 {
    return []float64{}
  }
  if n < 2 {
    return []float64{yIn[0]}
  }
  // use 1-based indices
  x  := append([]float64{0}, xIn...)
  y  := append([]float64{0}, yIn...)
  ys := make([]float64, n+1)
  rw := make([]float64, n+1)
  w  := make([]float64, n+1)
  res := make([]float64, n)

  ns := int(f*float64(n) + 1e-7)
  if ns > n {
    ns = n
  }
  if ns < 2 {
    ns = 2
  }
  for iter := 1; iter <= nsteps+1; iter++ {
    nleft  := 1
    nright := ns
    last   := 0
    i      := 1
    for {
      if nright < n {
        d1 := x[i] - x[nleft]
        d2 := x[nright+1] - x[i]
        if d1 > d2 {
          nleft++
          nright++
          continue
        }
      }
      if v, ok := lowest(x, y, n, x[i], nleft, nright, w, iter > 1, rw); ok {
        ys[i] = v
      } else {
        ys[i] = y[i]
      }
      if last < i-1 {
        denom := x[i] - x[last]
        for j := last+1; j < i; j++ {
          alpha := (x[j] - x[last])/denom
          ys[j] = alpha*ys[i] + (1.0-alpha)*ys[last]
        }
      }
      last = i
      cut := x[last] + delta
      for i = last+1; i <= n; i++ {
        if x[i] > cut {
          break
        }
        if x[i] == x[last] {
          ys[i] = ys[last]
          last  = i
        }
      }
      if i-1 > last+1 {
        i = i-1
      } else {
        i = last+1
      }
      if last >= n {
        break
      }
    }
    for i := 0; i < n; i++ {
      res[i] = y[i+1] - ys[i+1]
    }
    if iter > nsteps {
      break
    }
    sc := 0.0
    for i := 0; i < n; i++ {
      sc += math.Abs(res[i])
    }
    sc /= float64(n)

    ar := make([]float64, n)
    for i := 0; i < n; i++ {
      ar[i] = math.Abs(res[i])
    }
    sort.Float64s(ar)
    m1 := n/2
    var cmad float64
    if n % 2 == 0 {
      cmad = 3.0*(ar[m1] + ar[n-m1-1])
    } else {
      cmad = 6.0*ar[m1]
    }
    if cmad < 1e-7*sc {
      break
    }
    c9 := 0.999*cmad
    c1 := 0.001*cmad
    for i := 0; i < n; i++ {
      r := math.Abs(res[i])
      if r <= c1 {
        rw[i+1] = 1.0
      } else if r <= c9 {
        q := r/cmad
        q  = 1.0 - q*q
        rw[i+1] = q*q
      } else {
        rw[i+1] = 0.0
      }
    }
  }
  return ys[1:]
}

// Lowess smoother with default robustness iterations. Returns the input
// sorted by x together with the fitted values.
func Lowess(x, y []float64, span float64) ([]float64, []float64) {
  n := len(x)
  idx := make([]int, n)
  for i := range idx {
    idx[i] = i
  }
  sort.SliceStable(idx, func(a, b int) bool { return x[idx[a]] < x[idx[b]] })
  xs := make([]float64, n)
  ys := make([]float64, n)
  for i, j := range idx {
    xs[i] = x[j]
    ys[i] = y[j]
  }
  delta := 0.0
  if n > 0 {
    delta = 0.01*(xs[n-1] - xs[0])
  }
  return xs, clowess(xs, ys, span, 3, delta)
}

/* -------------------------------------------------------------------------- */

// Piecewise linear interpolation through sorted points. Tied x values
// are replaced by the mean of their y values, values outside the range
// are clamped to the boundary values.
type linearInterpolator struct {
  x []float64
  y []float64
}

func newLinearInterpolator(x, y []float64) linearInterpolator {
  r := linearInterpolator{}
  for i := 0; i < len(x); {
    j := i
    s := 0.0
    for j < len(x) && x[j] == x[i] {
      s += y[j]
      j++
    }
    r.x = append(r.x, x[i])
    r.y = append(r.y, s/float64(j-i))
    i = j
  }
  return r
}

func (f linearInterpolator) Eval(v float64) float64 {
  n := len(f.x)
  if n == 0 {
    return math.NaN()
  }
  if v <= f.x[0] {
    return f.y[0]
  }
  if v >= f.x[n-1] {
    return f.y[n-1]
  }
  // first index with x > v
  k := sort.Search(n, func(i int) bool { return f.x[i] > v })
  x0, x1 := f.x[k-1], f.x[k]
  y0, y1 := f.y[k-1], f.y[k]
  return y0 + (y1-y0)*(v-x0)/(x1-x0)
}
