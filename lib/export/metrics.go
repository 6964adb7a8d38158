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

package export

/* -------------------------------------------------------------------------- */

import "time"

import "github.com/prometheus/client_golang/prometheus"

import "github.com/pbenner/diffexpr"

/* -------------------------------------------------------------------------- */

// Registry with gauges describing a finished analysis.
func NewMetrics(a diffexpr.Analysis, fdr float64, duration time.Duration) *prometheus.Registry {
  registry := prometheus.NewRegistry()

  samples := prometheus.NewGaugeVec(prometheus.GaugeOpts{
    Name: "diffexpr_samples",
    Help: "Number of samples before and after quality filtering."}, []string{"project", "stage"})
  genes := prometheus.NewGaugeVec(prometheus.GaugeOpts{
    Name: "diffexpr_genes",
    Help: "Number of genes before and after expression filtering."}, []string{"project", "stage"})
  significant := prometheus.NewGaugeVec(prometheus.GaugeOpts{
    Name: "diffexpr_significant_genes",
    Help: "Number of genes with adjusted p-value below the false discovery rate."}, []string{"project", "coefficient", "direction"})
  prior := prometheus.NewGaugeVec(prometheus.GaugeOpts{
    Name: "diffexpr_prior_df",
    Help: "Prior degrees of freedom of the empirical Bayes fit."}, []string{"project"})
  seconds := prometheus.NewGauge(prometheus.GaugeOpts{
    Name: "diffexpr_duration_seconds",
    Help: "Wall time of the analysis."})
  registry.MustRegister(samples, genes, significant, prior, seconds)

  project := a.Config.Project
  r := a.Filtered.Retention
  samples.WithLabelValues(project, "before").Set(float64(r.SamplesBefore))
  samples.WithLabelValues(project, "after" ).Set(float64(r.SamplesAfter))
  genes  .WithLabelValues(project, "before").Set(float64(r.GenesBefore))
  genes  .WithLabelValues(project, "after" ).Set(float64(r.GenesAfter))

  up, down := 0, 0
  for i := 0; i < a.Table.Length(); i++ {
    if a.Table.AdjPValue[i] < fdr {
      if a.Table.LogFC[i] > 0 {
        up++
      } else {
        down++
      }
    }
  }
  significant.WithLabelValues(project, a.Table.Coefficient, "up"  ).Set(float64(up))
  significant.WithLabelValues(project, a.Table.Coefficient, "down").Set(float64(down))
  prior.WithLabelValues(project).Set(a.Fit.DfPrior)
  seconds.Set(duration.Seconds())
  return registry
}

// Write metrics in the text exposition format, e.g. for the node
// exporter textfile collector.
func WriteMetrics(filename string, a diffexpr.Analysis, fdr float64, duration time.Duration) error {
  return prometheus.WriteToTextfile(filename, NewMetrics(a, fdr, duration))
}
