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

import "gonum.org/v1/gonum/mat"

/* -------------------------------------------------------------------------- */

// Container for a gene by sample matrix together with gene (row) and
// sample (column) annotations. Counts is nil if the matrix has no rows
// or no columns. Methods never modify the receiver, subsets are deep
// copies. Library sizes are fixed the first time genes are removed, so
// that they still refer to the full set of genes.
type Experiment struct {
  GeneIds   []string
  SampleIds []string
  Counts    *mat.Dense
  Genes     Meta
  Samples   Meta
  libSizes  []float64
}

/* constructors
 * -------------------------------------------------------------------------- */

func NewExperiment(geneIds, sampleIds []string, counts *mat.Dense, genes, samples Meta) (Experiment, error) {
  if counts == nil {
    if len(geneIds) != 0 && len(sampleIds) != 0 {
      return Experiment{}, fmt.Errorf("missing count matrix")
    }
  } else {
    if r, c := counts.Dims(); r != len(geneIds) || c != len(sampleIds) {
      return Experiment{}, fmt.Errorf("count matrix has dimension %dx%d, expected %dx%d", r, c, len(geneIds), len(sampleIds))
    }
  }
  if genes.MetaLength() > 0 && genes.Length() != len(geneIds) {
    return Experiment{}, fmt.Errorf("gene annotation has %d rows, expected %d", genes.Length(), len(geneIds))
  }
  if samples.MetaLength() > 0 && samples.Length() != len(sampleIds) {
    return Experiment{}, fmt.Errorf("sample annotation has %d rows, expected %d", samples.Length(), len(sampleIds))
  }
  return Experiment{
    GeneIds  : geneIds,
    SampleIds: sampleIds,
    Counts   : counts,
    Genes    : genes,
    Samples  : samples }, nil
}

func (e Experiment) Clone() Experiment {
  r := Experiment{}
  r.GeneIds   = append([]string{}, e.GeneIds...)
  r.SampleIds = append([]string{}, e.SampleIds...)
  if e.Counts != nil {
    r.Counts = mat.DenseCopyOf(e.Counts)
  }
  r.Genes   = e.Genes  .Clone()
  r.Samples = e.Samples.Clone()
  if e.libSizes != nil {
    r.libSizes = append([]float64{}, e.libSizes...)
  }
  return r
}

/* -------------------------------------------------------------------------- */

func (e Experiment) NGenes() int {
  return len(e.GeneIds)
}

func (e Experiment) NSamples() int {
  return len(e.SampleIds)
}

// Counts of a single sample.
func (e Experiment) Column(j int) []float64 {
  r := make([]float64, e.NGenes())
  mat.Col(r, j, e.Counts)
  return r
}

// Total counts per sample before any genes were removed.
func (e Experiment) LibSizes() []float64 {
  if e.libSizes != nil {
    return append([]float64{}, e.libSizes...)
  }
  r := make([]float64, e.NSamples())
  for j := range r {
    for i := 0; i < e.NGenes(); i++ {
      r[j] += e.Counts.At(i, j)
    }
  }
  return r
}

// Gene symbols if available, gene ids otherwise.
func (e Experiment) Symbols() []string {
  r := make([]string, e.NGenes())
  s := e.Genes.GetMetaStr("gene_name")
  for i := range r {
    if i < len(s) && s[i] != "" {
      r[i] = s[i]
    } else {
      r[i] = e.GeneIds[i]
    }
  }
  return r
}

/* -------------------------------------------------------------------------- */

func subsetDense(m *mat.Dense, rows, cols []int) *mat.Dense {
  if len(rows) == 0 || len(cols) == 0 {
    return nil
  }
  r := mat.NewDense(len(rows), len(cols), nil)
  for i, ii := range rows {
    for j, jj := range cols {
      r.Set(i, j, m.At(ii, jj))
    }
  }
  return r
}

func seqInt(n int) []int {
  r := make([]int, n)
  for i := range r {
    r[i] = i
  }
  return r
}

func subsetStrings(s []string, indices []int) []string {
  r := make([]string, len(indices))
  for i, j := range indices {
    r[i] = s[j]
  }
  return r
}

// Return a new experiment containing the given samples (columns).
func (e Experiment) SubsetSamples(indices []int) Experiment {
  r := Experiment{}
  r.GeneIds   = append([]string{}, e.GeneIds...)
  r.SampleIds = subsetStrings(e.SampleIds, indices)
  if e.Counts != nil {
    r.Counts = subsetDense(e.Counts, seqInt(e.NGenes()), indices)
  }
  r.Genes   = e.Genes  .Clone()
  r.Samples = e.Samples.Subset(indices)
  if e.libSizes != nil {
    r.libSizes = make([]float64, len(indices))
    for i, j := range indices {
      r.libSizes[i] = e.libSizes[j]
    }
  }
  return r
}

// Return a new experiment containing the given genes (rows).
func (e Experiment) SubsetGenes(indices []int) Experiment {
  r := Experiment{}
  r.GeneIds   = subsetStrings(e.GeneIds, indices)
  r.SampleIds = append([]string{}, e.SampleIds...)
  if e.Counts != nil {
    r.Counts = subsetDense(e.Counts, indices, seqInt(e.NSamples()))
  }
  r.Genes    = e.Genes  .Subset(indices)
  r.Samples  = e.Samples.Clone()
  r.libSizes = e.LibSizes()
  return r
}
