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

import "bufio"
import "context"
import "errors"
import "fmt"
import "io"
import "math"
import "path"
import "strconv"
import "strings"

import "gonum.org/v1/gonum/mat"

import "github.com/pbenner/diffexpr/lib/remote"

/* -------------------------------------------------------------------------- */

const Recount3URL = "http://duffel.rail.bio/recount3"

// Vglut3-/- versus wildtype spiral ganglion study analyzed by the
// report.
const Vglut3Project = "SRP148537"

const AverageMappedLengthColumn = "recount_qc.star.average_mapped_length"

// Metadata tables of a recount3 project in addition to the table named
// after the data source.
var Recount3MetadataTables = []string{"recount_project", "recount_qc", "recount_seq_qc", "recount_pred"}

// Columns shared by all metadata tables.
var recount3KeyColumns = []string{"rail_id", "external_id", "study"}

// File extensions of the gene annotations.
var recount3AnnotationExt = map[string]map[string]string{
  "human": {
    "gencode_v26": "G026",
    "gencode_v29": "G029",
    "fantom6_cat": "F006",
    "refseq"     : "R109",
    "ercc"       : "ERCC",
    "sirv"       : "SIRV" },
  "mouse": {
    "gencode_v23": "M023" } }

/* -------------------------------------------------------------------------- */

// Gene by sample matrix of base-pair coverage as distributed by
// recount3, i.e. the sum of per-base coverage over all exons of a gene.
type RawExperiment struct {
  Experiment
}

// A single recount3 project.
type Recount3 struct {
  Source      remote.Source
  Project     string
  ProjectHome string
  Organism    string
  Annotation  string
  Type        string
  // called with a description of each file before it is read
  Verbose     func(format string, args ...interface{})
}

func NewRecount3(source remote.Source, project string) Recount3 {
  return Recount3{
    Source     : source,
    Project    : project,
    ProjectHome: "data_sources/sra",
    Organism   : "mouse",
    Annotation : "gencode_v23",
    Type       : "gene" }
}

/* file layout
 * -------------------------------------------------------------------------- */

func (r Recount3) sourceName() string {
  return path.Base(r.ProjectHome)
}

func (r Recount3) projectDir() string {
  if len(r.Project) < 2 {
    return r.Project
  }
  return r.Project[len(r.Project)-2:]
}

func (r Recount3) AnnotationExt() (string, error) {
  if m, ok := recount3AnnotationExt[r.Organism]; !ok {
    return "", fmt.Errorf("%w: unknown organism `%s'", ErrDataSource, r.Organism)
  } else {
    if ext, ok := m[r.Annotation]; !ok {
      return "", fmt.Errorf("%w: unknown annotation `%s' for organism `%s'", ErrDataSource, r.Annotation, r.Organism)
    } else {
      return ext, nil
    }
  }
}

func (r Recount3) CountsPath() (string, error) {
  if r.Type != "gene" {
    return "", fmt.Errorf("%w: unsupported feature type `%s'", ErrDataSource, r.Type)
  }
  ext, err := r.AnnotationExt()
  if err != nil {
    return "", err
  }
  src := r.sourceName()
  return path.Join(r.Organism, r.ProjectHome, "gene_sums", r.projectDir(), r.Project,
    fmt.Sprintf("%s.gene_sums.%s.%s.gz", src, r.Project, ext)), nil
}

func (r Recount3) MetadataPath(table string) string {
  src := r.sourceName()
  return path.Join(r.Organism, r.ProjectHome, "metadata", r.projectDir(), r.Project,
    fmt.Sprintf("%s.%s.%s.MD.gz", src, table, r.Project))
}

func (r Recount3) AnnotationPath() (string, error) {
  ext, err := r.AnnotationExt()
  if err != nil {
    return "", err
  }
  return path.Join(r.Organism, "annotations", "gene_sums",
    fmt.Sprintf("%s.gene_sums.%s.gtf.gz", r.Organism, ext)), nil
}

/* -------------------------------------------------------------------------- */

func (r Recount3) printf(format string, args ...interface{}) {
  if r.Verbose != nil {
    r.Verbose(format, args...)
  }
}

// Open a (possibly gzipped) file of the data source and pass it to f.
func (r Recount3) read(ctx context.Context, filename string, f func(io.Reader) error) error {
  size := ""
  if sizer, ok := r.Source.(remote.Sizer); ok && r.Verbose != nil {
    if n, err := sizer.Size(ctx, filename); err == nil {
      size = fmt.Sprintf(" (%d bytes)", n)
    }
  }
  r.printf("Reading `%s/%s'%s...\n", r.Source, filename, size)
  rc, err := r.Source.Open(ctx, filename)
  if err != nil {
    if errors.Is(err, remote.ErrNotFound) {
      return fmt.Errorf("%w: project `%s': %v", ErrDataSource, r.Project, err)
    }
    return fmt.Errorf("%w: %v", ErrDataSource, err)
  }
  defer rc.Close()
  g, closer, err := maybeGunzip(rc)
  if err != nil {
    return fmt.Errorf("%w: %s: %v", ErrDataSource, filename, err)
  }
  defer closer()
  if err := f(g); err != nil {
    return fmt.Errorf("%s: %w", filename, err)
  }
  return nil
}

// Parse a gene sums file. Returns gene ids, rail ids and the coverage
// matrix.
func ReadGeneSums(r io.Reader) ([]string, []string, *mat.Dense, error) {
  reader  := bufio.NewReader(r)
  railIds := []string{}
  geneIds := []string{}
  data    := []float64{}
  for {
    line, err := bufioReadLine(reader)
    if err == io.EOF {
      break
    }
    if err != nil {
      return nil, nil, nil, err
    }
    line = strings.TrimRight(line, "\r")
    if line == "" || strings.HasPrefix(line, "##") {
      continue
    }
    fields := strings.Split(line, "\t")
    if len(railIds) == 0 {
      if fields[0] != "gene_id" || len(fields) < 2 {
        return nil, nil, nil, fmt.Errorf("invalid gene sums header")
      }
      railIds = fields[1:]
      continue
    }
    if len(fields) != len(railIds)+1 {
      return nil, nil, nil, fmt.Errorf("gene `%s' has %d values, expected %d", fields[0], len(fields)-1, len(railIds))
    }
    geneIds = append(geneIds, fields[0])
    for _, s := range fields[1:] {
      v, err := strconv.ParseFloat(s, 64)
      if err != nil {
        return nil, nil, nil, fmt.Errorf("gene `%s': %v", fields[0], err)
      }
      data = append(data, v)
    }
  }
  if len(railIds) == 0 {
    return nil, nil, nil, fmt.Errorf("invalid gene sums file: missing header")
  }
  if len(geneIds) == 0 {
    return geneIds, railIds, nil, nil
  }
  return geneIds, railIds, mat.NewDense(len(geneIds), len(railIds), data), nil
}

// Join metadata tables on rail_id. Columns are prefixed with the name
// of the table, except for the key columns which are kept once. The
// rows of the result are in the order of the first table.
func JoinMetadata(names []string, tables []Meta) (Meta, error) {
  if len(tables) == 0 {
    return Meta{}, nil
  }
  railIds := tables[0].GetMetaStr("rail_id")
  if len(railIds) != tables[0].Length() {
    return Meta{}, fmt.Errorf("%w: table `%s' has no rail_id column", ErrMetadata, names[0])
  }
  isKey := make(map[string]bool)
  for _, k := range recount3KeyColumns {
    isKey[k] = true
  }
  result := Meta{}
  for _, k := range recount3KeyColumns {
    if tables[0].HasMeta(k) {
      result.AddMeta(k, tables[0].GetMetaStr(k))
    }
  }
  for t, table := range tables {
    ids := table.GetMetaStr("rail_id")
    if len(ids) != table.Length() {
      return Meta{}, fmt.Errorf("%w: table `%s' has no rail_id column", ErrMetadata, names[t])
    }
    index := make(map[string]int)
    for i, id := range ids {
      index[id] = i
    }
    rows := make([]int, len(railIds))
    for i, id := range railIds {
      if j, ok := index[id]; !ok {
        return Meta{}, fmt.Errorf("%w: sample with rail_id `%s' missing in table `%s'", ErrMetadata, id, names[t])
      } else {
        rows[i] = j
      }
    }
    table = table.Subset(rows)
    for j, name := range table.MetaName {
      if isKey[name] {
        continue
      }
      result.AddMeta(names[t]+"."+name, table.MetaData[j])
    }
  }
  return result, nil
}

/* -------------------------------------------------------------------------- */

// Fetch coverage matrix, sample metadata and gene annotation of the
// project. Samples are identified by their external id.
func (r Recount3) Fetch(ctx context.Context) (RawExperiment, error) {
  if r.Source == nil {
    return RawExperiment{}, fmt.Errorf("%w: no data source", ErrDataSource)
  }
  if r.Project == "" {
    return RawExperiment{}, fmt.Errorf("%w: no project", ErrDataSource)
  }
  countsPath, err := r.CountsPath()
  if err != nil {
    return RawExperiment{}, err
  }
  annotationPath, err := r.AnnotationPath()
  if err != nil {
    return RawExperiment{}, err
  }
  var geneIds, railIds []string
  var coverage *mat.Dense
  if err := r.read(ctx, countsPath, func(reader io.Reader) (err error) {
    geneIds, railIds, coverage, err = ReadGeneSums(reader)
    return
  }); err != nil {
    return RawExperiment{}, err
  }
  // metadata
  names  := append([]string{r.sourceName()}, Recount3MetadataTables...)
  tables := make([]Meta, len(names))
  for i, name := range names {
    if err := r.read(ctx, r.MetadataPath(name), tables[i].ReadTable); err != nil {
      return RawExperiment{}, err
    }
  }
  meta, err := JoinMetadata(names, tables)
  if err != nil {
    return RawExperiment{}, err
  }
  samples, err := alignSamples(meta, railIds)
  if err != nil {
    return RawExperiment{}, err
  }
  // gene annotation
  var genes Meta
  if err := r.read(ctx, annotationPath, func(reader io.Reader) (err error) {
    genes, err = ReadGeneAnnotation(reader, geneIds)
    return
  }); err != nil {
    return RawExperiment{}, err
  }
  e, err := NewExperiment(geneIds, samples.GetMetaStr("external_id"), coverage, genes, samples)
  if err != nil {
    return RawExperiment{}, err
  }
  return RawExperiment{e}, nil
}

// Reorder metadata rows to match the columns of the coverage matrix.
func alignSamples(meta Meta, railIds []string) (Meta, error) {
  ids := meta.GetMetaStr("rail_id")
  if !meta.HasMeta("external_id") {
    return Meta{}, fmt.Errorf("%w: metadata has no external_id column", ErrMetadata)
  }
  index := make(map[string]int)
  for i, id := range ids {
    index[id] = i
  }
  rows := make([]int, len(railIds))
  for i, id := range railIds {
    if j, ok := index[id]; !ok {
      return Meta{}, fmt.Errorf("%w: no metadata for rail_id `%s'", ErrMetadata, id)
    } else {
      rows[i] = j
    }
  }
  return meta.Subset(rows), nil
}

/* -------------------------------------------------------------------------- */

// Convert base-pair coverage into read counts by dividing by the
// average mapped read length of each sample. Counts are rounded half to
// even.
func ComputeReadCounts(raw RawExperiment) (Experiment, error) {
  lengths, err := raw.Samples.ParseFloat(AverageMappedLengthColumn)
  if err != nil {
    return Experiment{}, fmt.Errorf("%w: %v", ErrMetadata, err)
  }
  for j, l := range lengths {
    if math.IsNaN(l) || l <= 0 {
      return Experiment{}, fmt.Errorf("%w: sample `%s' has invalid average mapped length", ErrMetadata, raw.SampleIds[j])
    }
  }
  r := raw.Experiment.Clone()
  r.libSizes = nil
  if r.Counts == nil {
    return r, nil
  }
  g, n := r.Counts.Dims()
  for i := 0; i < g; i++ {
    for j := 0; j < n; j++ {
      r.Counts.Set(i, j, math.RoundToEven(r.Counts.At(i, j)/lengths[j]))
    }
  }
  return r, nil
}
