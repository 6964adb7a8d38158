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
import "gonum.org/v1/gonum/mathext"
import "gonum.org/v1/gonum/stat/distuv"

/* special functions
 * -------------------------------------------------------------------------- */

func trigamma(x float64) float64 {
  return mathext.Zeta(2, x)
}

func tetragamma(x float64) float64 {
  return -2.0*mathext.Zeta(3, x)
}

// Solve trigamma(y) = x for y by Newton iteration.
func trigammaInverse(x float64) float64 {
  switch {
  case math.IsNaN(x) || x < 0:
    return math.NaN()
  case x > 1e7:
    return 1.0/math.Sqrt(x)
  case x < 1e-6:
    return 1.0/x
  }
  y := 0.5 + 1.0/x
  for iter := 0; iter < 50; iter++ {
    tri := trigamma(y)
    dif := tri*(1.0 - tri/x)/tetragamma(y)
    y   += dif
    if -dif/y < 1e-8 {
      break
    }
  }
  return y
}

// Upper tail probability of the t distribution, the normal distribution
// is used for infinite degrees of freedom.
func ptUpper(t, df float64) float64 {
  if math.IsInf(df, 1) {
    return distuv.UnitNormal.Survival(t)
  }
  return distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}.Survival(t)
}

// Upper tail quantile of the t distribution.
func qtUpper(p, df float64) float64 {
  if math.IsInf(df, 1) {
    return -distuv.UnitNormal.Quantile(p)
  }
  return -distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}.Quantile(p)
}

/* -------------------------------------------------------------------------- */

// Moment estimation of the scale and degrees of freedom of a scaled F
// distribution from which the sample variances x with df1 degrees of
// freedom are drawn.
func FitFDist(x, df1 []float64) (scale, df2 float64) {
  xs := []float64{}
  ds := []float64{}
  for i := range x {
    if math.IsNaN(x[i]) || math.IsInf(x[i], 0) || math.IsNaN(df1[i]) || math.IsInf(df1[i], 0) {
      continue
    }
    if x[i] > -1e-15 && df1[i] > 1e-15 {
      xs = append(xs, math.Max(x[i], 0))
      ds = append(ds, df1[i])
    }
  }
  n := len(xs)
  if n == 0 {
    return math.NaN(), math.NaN()
  }
  if n == 1 {
    return xs[0], 0
  }
  m := median(xs)
  if m == 0 {
    m = 1
  }
  emean := 0.0
  e     := make([]float64, n)
  for i := range xs {
    z := math.Log(math.Max(xs[i], 1e-5*m))
    e[i] = z - mathext.Digamma(ds[i]/2) + math.Log(ds[i]/2)
    emean += e[i]
  }
  emean /= float64(n)
  evar := 0.0
  tri  := 0.0
  for i := range e {
    evar += (e[i]-emean)*(e[i]-emean)
    tri  += trigamma(ds[i]/2)
  }
  evar = evar/float64(n-1) - tri/float64(n)
  if evar > 0 {
    df2   = 2*trigammaInverse(evar)
    scale = math.Exp(emean + mathext.Digamma(df2/2) - math.Log(df2/2))
  } else {
    df2   = math.Inf(1)
    scale = 0
    for _, v := range xs {
      scale += v
    }
    scale /= float64(n)
  }
  return scale, df2
}

// Posterior variances given the prior estimated by FitFDist.
func SqueezeVar(v, df []float64) (post []float64, varPrior, dfPrior float64, err error) {
  varPrior, dfPrior = FitFDist(v, df)
  if math.IsNaN(dfPrior) {
    return nil, 0, 0, fmt.Errorf("%w: could not estimate prior variance", ErrEmptyMatrix)
  }
  post = make([]float64, len(v))
  for i := range v {
    vi := v[i]
    if df[i] == 0 || math.IsNaN(vi) {
      vi = 0
    }
    if math.IsInf(dfPrior, 1) {
      post[i] = varPrior
    } else {
      post[i] = (df[i]*vi + dfPrior*varPrior)/(df[i] + dfPrior)
    }
  }
  return post, varPrior, dfPrior, nil
}

/* -------------------------------------------------------------------------- */

// Estimate the prior variance of a coefficient from the largest
// moderated t-statistics assuming a proportion of differentially
// expressed genes. Returns NaN if there are too few genes.
func tmixture(tstat, stdevUnscaled, df []float64, proportion, v0Min, v0Max float64) float64 {
  t := []float64{}
  s := []float64{}
  d := []float64{}
  for i := range tstat {
    if !math.IsNaN(tstat[i]) {
      t = append(t, math.Abs(tstat[i]))
      s = append(s, stdevUnscaled[i])
      d = append(d, df[i])
    }
  }
  ngenes  := len(t)
  ntarget := int(math.Ceil(proportion/2*float64(ngenes)))
  if ntarget < 1 {
    return math.NaN()
  }
  p := math.Max(float64(ntarget)/float64(ngenes), proportion)

  maxDf := math.Inf(-1)
  for _, v := range d {
    maxDf = math.Max(maxDf, v)
  }
  for i := range t {
    if d[i] < maxDf {
      t[i] = qtUpper(ptUpper(t[i], d[i]), maxDf)
    }
  }
  o := make([]int, ngenes)
  for i := range o {
    o[i] = i
  }
  sort.SliceStable(o, func(a, b int) bool { return t[o[a]] > t[o[b]] })

  v0 := 0.0
  for r := 0; r < ntarget; r++ {
    ti := t[o[r]]
    v1 := s[o[r]]*s[o[r]]
    p0 := 2*ptUpper(ti, maxDf)
    pt := ((float64(r+1) - 0.5)/float64(ngenes) - (1-p)*p0)/p
    v  := 0.0
    if pt > p0 {
      q := qtUpper(pt/2, maxDf)
      v  = v1*((ti/q)*(ti/q) - 1)
    }
    v   = math.Min(math.Max(v, v0Min), v0Max)
    v0 += v
  }
  return v0/float64(ntarget)
}

/* -------------------------------------------------------------------------- */

type EBayesOptions struct {
  Proportion   float64
  StdevCoefMin float64
  StdevCoefMax float64
}

func DefaultEBayesOptions() EBayesOptions {
  return EBayesOptions{
    Proportion  : 0.01,
    StdevCoefMin: 0.1,
    StdevCoefMax: 4.0 }
}

// Linear fit with moderated statistics. T, PValue and Lods have one row
// per gene and one column per coefficient.
type EBayesFit struct {
  LinearFit
  S2Prior  float64
  DfPrior  float64
  S2Post   []float64
  DfTotal  []float64
  VarPrior []float64
  T        *mat.Dense
  PValue   *mat.Dense
  Lods     *mat.Dense
}

// Empirical Bayes moderation of the gene-wise standard errors.
func EBayes(fit LinearFit, opts EBayesOptions) (EBayesFit, error) {
  g := fit.NGenes()
  if g == 0 {
    return EBayesFit{}, fmt.Errorf("%w: no genes", ErrEmptyMatrix)
  }
  p  := fit.Design.NCoefficients()
  s2 := make([]float64, g)
  for i := range s2 {
    s2[i] = fit.Sigma[i]*fit.Sigma[i]
  }
  post, s2Prior, dfPrior, err := SqueezeVar(s2, fit.DfResidual)
  if err != nil {
    return EBayesFit{}, err
  }
  r := EBayesFit{
    LinearFit: fit,
    S2Prior  : s2Prior,
    DfPrior  : dfPrior,
    S2Post   : post,
    DfTotal  : make([]float64, g),
    VarPrior : make([]float64, p),
    T        : mat.NewDense(g, p, nil),
    PValue   : mat.NewDense(g, p, nil),
    Lods     : mat.NewDense(g, p, nil) }

  dfPooled := 0.0
  for _, d := range fit.DfResidual {
    if !math.IsNaN(d) {
      dfPooled += d
    }
  }
  for i := 0; i < g; i++ {
    r.DfTotal[i] = math.Min(fit.DfResidual[i] + dfPrior, dfPooled)
    for j := 0; j < p; j++ {
      t := fit.Coefficients.At(i, j)/fit.StdevUnscaled.At(i, j)/math.Sqrt(post[i])
      r.T.Set(i, j, t)
      if math.IsNaN(t) {
        r.PValue.Set(i, j, math.NaN())
      } else {
        r.PValue.Set(i, j, 2*ptUpper(math.Abs(t), r.DfTotal[i]))
      }
    }
  }
  // log-odds of differential expression
  varPriorMin := opts.StdevCoefMin*opts.StdevCoefMin/s2Prior
  varPriorMax := opts.StdevCoefMax*opts.StdevCoefMax/s2Prior
  for j := 0; j < p; j++ {
    t := mat.Col(nil, j, r.T)
    s := mat.Col(nil, j, fit.StdevUnscaled)
    v := tmixture(t, s, r.DfTotal, opts.Proportion, varPriorMin, varPriorMax)
    if math.IsNaN(v) {
      v = 1.0/s2Prior
    }
    r.VarPrior[j] = v
    for i := 0; i < g; i++ {
      su2 := s[i]*s[i]
      rr  := (su2 + v)/su2
      t2  := t[i]*t[i]
      var kernel float64
      if dfPrior > 1e6 {
        kernel = t2*(1 - 1/rr)/2
      } else {
        d := r.DfTotal[i]
        kernel = (1 + d)/2*math.Log((t2 + d)/(t2/rr + d))
      }
      r.Lods.Set(i, j, math.Log(opts.Proportion/(1 - opts.Proportion)) - math.Log(rr)/2 + kernel)
    }
  }
  return r, nil
}
