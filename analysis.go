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

// Expression values of the top genes for the heatmap. Values are z-scores
// of the log-expression of each gene (rows) across samples (columns).
// RowOrder and ColOrder give the leaf order of complete linkage
// clustering on both axes.
type Heatmap struct {
  GeneIds   []string
  Symbols   []string
  SampleIds []string
  Values    *mat.Dense
  RowOrder  []int
  ColOrder  []int
}

// Results of all stages of the analysis. Every stage holds its own
// copy of the data.
type Analysis struct {
  Config      Config
  Annotated   AnnotatedExperiment
  Filtered    FilteredExperiment
  Normalized  NormalizedExperiment
  Design      DesignMatrix
  Coefficient int
  Voom        VoomResult
  Fit         EBayesFit
  Table       DETable
  Heatmap     Heatmap
  MDS         MDSResult
}

/* -------------------------------------------------------------------------- */

// Row standardized values of the given genes, rows with zero variance
// are set to zero.
func rowZScores(e *mat.Dense, genes []int) *mat.Dense {
  _, n := e.Dims()
  r := mat.NewDense(len(genes), n, nil)
  for k, i := range genes {
    row  := mat.Row(nil, i, e)
    mean := 0.0
    for _, v := range row {
      mean += v
    }
    mean /= float64(n)
    sd := 0.0
    for _, v := range row {
      sd += (v-mean)*(v-mean)
    }
    if n > 1 {
      sd = math.Sqrt(sd/float64(n-1))
    }
    for j, v := range row {
      if sd > 0 {
        r.Set(k, j, (v-mean)/sd)
      }
    }
  }
  return r
}

// Select the top genes by adjusted p-value and cluster genes and
// samples.
func NewHeatmap(v VoomResult, table DETable, n int) Heatmap {
  genes := table.TopGenes(n)
  h := Heatmap{
    GeneIds  : subsetStrings(table.GeneId, genes),
    Symbols  : subsetStrings(table.Symbol, genes),
    SampleIds: append([]string{}, v.SampleIds...) }
  if len(genes) == 0 {
    return h
  }
  h.Values   = rowZScores(v.E, genes)
  h.RowOrder = HClustComplete(EuclideanDistances(h.Values)).Order
  h.ColOrder = HClustComplete(EuclideanDistances(h.Values.T())).Order
  return h
}

/* -------------------------------------------------------------------------- */

// Run all stages from an experiment with read counts to the table of
// differentially expressed genes.
func Analyze(e Experiment, config Config, opts LmFitOptions) (Analysis, error) {
  r := Analysis{Config: config}
  var err error
  if r.Annotated, err = Annotate(e, config.Schema); err != nil {
    return r, err
  }
  if r.Filtered, err = Filter(r.Annotated, config.QualityThreshold, config.Filter); err != nil {
    return r, err
  }
  if r.Filtered.NGenes() == 0 || r.Filtered.NSamples() == 0 {
    return r, fmt.Errorf("%w: %s", ErrEmptyMatrix, r.Filtered.Retention)
  }
  if r.Normalized, err = CalcNormFactors(r.Filtered, DefaultTMMOptions()); err != nil {
    return r, err
  }
  if r.Design, err = NewDesignMatrix(r.Normalized.Samples, config.Covariates); err != nil {
    return r, err
  }
  if r.Coefficient, err = r.Design.Column(config.Coefficient.Covariate, config.Coefficient.Level); err != nil {
    return r, err
  }
  voomOpts := DefaultVoomOptions()
  voomOpts.LmFitOptions = opts
  if r.Voom, err = Voom(r.Normalized, r.Design, voomOpts); err != nil {
    return r, err
  }
  fit, err := LmFit(r.Voom.E, r.Voom.Weights, r.Design, opts)
  if err != nil {
    return r, err
  }
  if r.Fit, err = EBayes(fit, DefaultEBayesOptions()); err != nil {
    return r, err
  }
  if r.Table, err = TopTable(r.Fit, r.Voom.Symbols(), r.Voom.GeneIds, r.Coefficient, SortNone); err != nil {
    return r, err
  }
  r.Heatmap = NewHeatmap(r.Voom, r.Table, config.HeatmapGenes)
  if r.Voom.NSamples() >= 3 {
    if r.MDS, err = PlotMDS(r.Voom.E, r.Voom.SampleIds, config.MDSTop); err != nil {
      return r, err
    }
  }
  return r, nil
}
