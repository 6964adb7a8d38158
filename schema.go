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
import "strings"

/* -------------------------------------------------------------------------- */

const AttributeColumn   = "sra.sample_attributes"
const AttributePrefix   = "sra_attribute."
const QualityColumn     = "assignedgene_prop"
const AssignedColumn    = "recount_qc.gene_fc_count_all.assigned"
const TotalColumn       = "recount_qc.gene_fc_count_all.total"

/* -------------------------------------------------------------------------- */

// Expected sample attribute. If Levels is non-empty, the attribute must
// take one of these values and the first level is the reference level.
type AttributeSpec struct {
  Name   string   `yaml:"name"`
  Levels []string `yaml:"levels,omitempty"`
}

type Schema struct {
  Attributes []AttributeSpec `yaml:"attributes"`
}

func DefaultSchema() Schema {
  return Schema{
    Attributes: []AttributeSpec{
      {Name: "genotype", Levels: []string{"wildtype", "Vglut3-/-"}},
      {Name: "age"},
      {Name: "tonotopic_location"} } }
}

func (s Schema) Names() []string {
  r := make([]string, len(s.Attributes))
  for i, a := range s.Attributes {
    r[i] = a.Name
  }
  return r
}

/* -------------------------------------------------------------------------- */

// Experiment with typed sample attributes and the per-sample quality
// score.
type AnnotatedExperiment struct {
  Experiment
  Schema Schema
}

/* -------------------------------------------------------------------------- */

// Normalize an attribute key as it appears in the free text field,
// i.e. `tonotopic location' becomes `tonotopic_location'.
func normalizeAttributeKey(key string) string {
  return strings.Replace(strings.TrimSpace(key), " ", "_", -1)
}

// Parse a free text attribute field of the form
// `key1;;value1|key2;;value2'.
func ParseSampleAttributes(field string) (map[string]string, error) {
  r := make(map[string]string)
  if strings.TrimSpace(field) == "" {
    return r, nil
  }
  for _, entry := range strings.Split(field, "|") {
    kv := strings.SplitN(entry, ";;", 2)
    if len(kv) != 2 {
      return nil, fmt.Errorf("invalid attribute entry `%s'", entry)
    }
    r[normalizeAttributeKey(kv[0])] = strings.TrimSpace(kv[1])
  }
  return r, nil
}

// Expand the free text attributes of all samples into individual string
// columns named `sra_attribute.<key>'.
func ExpandSampleAttributes(samples Meta) (Meta, error) {
  field := samples.GetMetaStr(AttributeColumn)
  if len(field) != samples.Length() {
    return Meta{}, fmt.Errorf("%w: column `%s' is missing", ErrMetadata, AttributeColumn)
  }
  parsed := make([]map[string]string, len(field))
  keys   := []string{}
  seen   := make(map[string]bool)
  for i := range field {
    if m, err := ParseSampleAttributes(field[i]); err != nil {
      return Meta{}, fmt.Errorf("%w: sample %d: %v", ErrMetadata, i, err)
    } else {
      parsed[i] = m
      for k := range m {
        if !seen[k] {
          seen[k] = true
          keys    = append(keys, k)
        }
      }
    }
  }
  result := samples.Clone()
  for _, k := range distinctSorted(keys) {
    col := make([]string, len(field))
    for i := range parsed {
      col[i] = parsed[i][k]
    }
    result.AddMeta(AttributePrefix+k, col)
  }
  return result, nil
}

// Fraction of reads assigned to annotated genes. A sample with zero
// total reads has quality NaN.
func AssignedGeneProportion(assigned, total []float64) []float64 {
  r := make([]float64, len(assigned))
  for i := range r {
    if total[i] == 0 {
      r[i] = math.NaN()
    } else {
      r[i] = assigned[i]/total[i]
    }
  }
  return r
}

/* -------------------------------------------------------------------------- */

// Expand and validate sample attributes and compute the quality score.
// Every attribute of the schema is stored as a Factor under its plain
// name (e.g. `genotype').
func Annotate(e Experiment, schema Schema) (AnnotatedExperiment, error) {
  samples, err := ExpandSampleAttributes(e.Samples)
  if err != nil {
    return AnnotatedExperiment{}, err
  }
  for _, attr := range schema.Attributes {
    values := samples.GetMetaStr(AttributePrefix+attr.Name)
    if len(values) == 0 && e.NSamples() > 0 {
      return AnnotatedExperiment{}, fmt.Errorf("%w: attribute `%s' not found in any sample", ErrMetadata, attr.Name)
    }
    for i, v := range values {
      if v == "" {
        return AnnotatedExperiment{}, fmt.Errorf("%w: sample `%s' has no attribute `%s'", ErrMetadata, e.SampleIds[i], attr.Name)
      }
    }
    f, err := NewFactor(values, attr.Levels)
    if err != nil {
      return AnnotatedExperiment{}, fmt.Errorf("%w: attribute `%s': %v", ErrMetadata, attr.Name, err)
    }
    samples.AddMeta(attr.Name, f)
  }
  assigned, err := samples.ParseFloat(AssignedColumn)
  if err != nil {
    return AnnotatedExperiment{}, fmt.Errorf("%w: %v", ErrMetadata, err)
  }
  total, err := samples.ParseFloat(TotalColumn)
  if err != nil {
    return AnnotatedExperiment{}, fmt.Errorf("%w: %v", ErrMetadata, err)
  }
  samples.AddMeta(QualityColumn, AssignedGeneProportion(assigned, total))

  r := e.Clone()
  r.Samples = samples
  return AnnotatedExperiment{Experiment: r, Schema: schema}, nil
}

/* -------------------------------------------------------------------------- */

func (a AnnotatedExperiment) Quality() []float64 {
  return a.Samples.GetMetaFloat(QualityColumn)
}

func (a AnnotatedExperiment) Factor(name string) (Factor, error) {
  if f, ok := a.Samples.GetMetaFactor(name); ok {
    return f, nil
  }
  return Factor{}, fmt.Errorf("%w: factor `%s' not found", ErrMetadata, name)
}

func (a AnnotatedExperiment) SubsetSamples(indices []int) AnnotatedExperiment {
  return AnnotatedExperiment{Experiment: a.Experiment.SubsetSamples(indices), Schema: a.Schema}
}

func (a AnnotatedExperiment) SubsetGenes(indices []int) AnnotatedExperiment {
  return AnnotatedExperiment{Experiment: a.Experiment.SubsetGenes(indices), Schema: a.Schema}
}
