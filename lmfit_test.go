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
import "math/rand"
import "runtime"
import "testing"
import "time"

import "gonum.org/v1/gonum/mat"

/* -------------------------------------------------------------------------- */

func newTwoGroupDesign(t *testing.T, n int) DesignMatrix {
  values := make([]string, n)
  for i := range values {
    if i < n/2 {
      values[i] = "a"
    } else {
      values[i] = "b"
    }
  }
  f, _ := NewFactor(values, nil)
  d, err := NewDesignMatrix(NewMeta([]string{"group"}, []interface{}{f}), []string{"group"})
  if err != nil {
    t.Fatal(err)
  }
  return d
}

func newRandomExpression(g, n int, seed int64) *mat.Dense {
  r := rand.New(rand.NewSource(seed))
  y := mat.NewDense(g, n, nil)
  for i := 0; i < g; i++ {
    for j := 0; j < n; j++ {
      v := 5 + r.NormFloat64()*(0.5 + float64(i%5)/5)
      if i % 4 == 0 && j >= n/2 {
        v += 2
      }
      y.Set(i, j, v)
    }
  }
  return y
}

/* -------------------------------------------------------------------------- */

func TestLmFit1(t *testing.T) {
  d := newTwoGroupDesign(t, 6)
  y := mat.NewDense(1, 6, []float64{1, 2, 3, 4, 5, 6})

  fit, err := LmFit(y, nil, d, LmFitOptions{})
  if err != nil {
    t.Fatal(err)
  }
  if math.Abs(fit.Coefficients.At(0, 0) - 2) > 1e-10 || math.Abs(fit.Coefficients.At(0, 1) - 3) > 1e-10 {
    t.Error("test failed")
  }
  if math.Abs(fit.Sigma[0] - 1) > 1e-10 || fit.DfResidual[0] != 4 {
    t.Error("test failed")
  }
  if math.Abs(fit.StdevUnscaled.At(0, 0) - math.Sqrt(1.0/3.0)) > 1e-10 ||
     math.Abs(fit.StdevUnscaled.At(0, 1) - math.Sqrt(2.0/3.0)) > 1e-10 {
    t.Error("test failed")
  }
  if math.Abs(fit.Amean[0] - 3.5) > 1e-10 {
    t.Error("test failed")
  }
  if math.Abs(fit.FittedValues().At(0, 4) - 5) > 1e-10 {
    t.Error("test failed")
  }
}

func TestLmFit2(t *testing.T) {
  d := newTwoGroupDesign(t, 6)
  // weights and missing values
  y := mat.NewDense(2, 6, []float64{
    1, 2, 3, 4, 5, 6,
    math.NaN(), math.NaN(), math.NaN(), math.NaN(), math.NaN(), math.NaN() })
  w := mat.NewDense(2, 6, []float64{
    1, 1, 0, 1, 1, 1,
    1, 1, 1, 1, 1, 1 })
  fit, err := LmFit(y, w, d, LmFitOptions{})
  if err != nil {
    t.Fatal(err)
  }
  // third observation is ignored
  if math.Abs(fit.Coefficients.At(0, 0) - 1.5) > 1e-10 || fit.DfResidual[0] != 3 {
    t.Error("test failed")
  }
  if !math.IsNaN(fit.Coefficients.At(1, 0)) || !math.IsNaN(fit.Sigma[1]) || fit.DfResidual[1] != 0 {
    t.Error("test failed")
  }
  if _, err := LmFit(y, mat.NewDense(1, 6, nil), d, LmFitOptions{}); err == nil {
    t.Error("test failed")
  }
  if _, err := LmFit(mat.NewDense(1, 5, nil), nil, d, LmFitOptions{}); err == nil {
    t.Error("test failed")
  }
}

func TestLmFit3(t *testing.T) {
  d := newTwoGroupDesign(t, 8)
  y := newRandomExpression(100, 8, 1)

  n := 0
  fit1, err1 := LmFit(y, nil, d, LmFitOptions{Threads: 1, Progress: func(i int) { n = i }})
  fit2, err2 := LmFit(y, nil, d, LmFitOptions{Threads: 4})
  if err1 != nil || err2 != nil {
    t.Fatal("test failed")
  }
  if n != 100 {
    t.Error("test failed")
  }
  if !mat.Equal(fit1.Coefficients, fit2.Coefficients) || !mat.Equal(fit1.StdevUnscaled, fit2.StdevUnscaled) {
    t.Error("test failed")
  }
  for i := range fit1.Sigma {
    if fit1.Sigma[i] != fit2.Sigma[i] {
      t.Error("test failed")
    }
  }
}

// Worker threads terminate when the fit returns.
func TestLmFit4(t *testing.T) {
  d := newTwoGroupDesign(t, 8)
  y := newRandomExpression(20, 8, 3)
  n := runtime.NumGoroutine()
  for k := 0; k < 10; k++ {
    if _, err := LmFit(y, nil, d, LmFitOptions{Threads: 4}); err != nil {
      t.Fatal(err)
    }
  }
  m := runtime.NumGoroutine()
  for k := 0; k < 100 && m > n+2; k++ {
    time.Sleep(10*time.Millisecond)
    m = runtime.NumGoroutine()
  }
  if m > n+2 {
    t.Errorf("test failed: %d goroutines before, %d after", n, m)
  }
}
