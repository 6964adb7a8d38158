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

package main

/* -------------------------------------------------------------------------- */

import   "context"
import   "fmt"
import   "log"
import   "os"
import   "path/filepath"

import   "github.com/pborman/getopt"

import . "github.com/pbenner/diffexpr"

/* -------------------------------------------------------------------------- */

func PrintStderr(verbose int, level int, format string, args ...interface{}) {
  if verbose >= level {
    fmt.Fprintf(os.Stderr, format, args...)
  }
}

/* -------------------------------------------------------------------------- */

// Read counts as a table with one column per sample.
func countsTable(e Experiment) Meta {
  m := NewMeta([]string{"gene_id"}, []interface{}{e.GeneIds})
  m.AddMeta("gene_name", e.Symbols())
  for j, id := range e.SampleIds {
    c := make([]int, e.NGenes())
    for i, v := range e.Column(j) {
      c[i] = int(v)
    }
    m.AddMeta(id, c)
  }
  return m
}

func recount3Fetch(config Config, outputDir string, compress bool, verbose int) {
  ctx := context.Background()

  source, err := config.Source.New(ctx)
  if err != nil {
    log.Fatal(err)
  }
  r := config.Recount3(source)
  if verbose >= 2 {
    r.Verbose = func(format string, args ...interface{}) {
      PrintStderr(verbose, 2, format, args...)
    }
  }
  PrintStderr(verbose, 1, "Fetching project `%s' from `%s'... ", config.Project, source)
  raw, err := r.Fetch(ctx)
  if err != nil {
    PrintStderr(verbose, 1, "failed\n")
    log.Fatal(err)
  }
  PrintStderr(verbose, 1, "done\n")

  e, err := ComputeReadCounts(raw)
  if err != nil {
    log.Fatal(err)
  }
  if err := os.MkdirAll(outputDir, 0755); err != nil {
    log.Fatal(err)
  }
  suffix := ".tsv"
  if compress {
    suffix = ".tsv.gz"
  }
  samples := e.Samples.Clone()
  samples.AddMeta("sample_id", e.SampleIds)
  if verbose >= 2 && e.Samples.HasMeta(AttributeColumn) {
    preview := NewMeta([]string{"sample_id", AttributeColumn}, []interface{}{e.SampleIds, e.Samples.GetMetaStr(AttributeColumn)})
    PrintStderr(verbose, 2, "Samples:\n%s", preview.PrintPretty(20))
  }

  for name, table := range map[string]Meta{"counts": countsTable(e), "samples": samples, "genes": e.Genes} {
    if table.MetaLength() == 0 {
      continue
    }
    filename := filepath.Join(outputDir, config.Project + "." + name + suffix)
    PrintStderr(verbose, 1, "Writing `%s'... ", filename)
    if err := table.ExportTable(filename, true, compress, OptionMetaSeparator{Value: "\t"}); err != nil {
      PrintStderr(verbose, 1, "failed\n")
      log.Fatal(err)
    }
    PrintStderr(verbose, 1, "done\n")
  }
}

/* -------------------------------------------------------------------------- */

func main() {
  log.SetFlags(0)

  config  := DefaultConfig()
  options := getopt.New()
  options.SetProgram(fmt.Sprintf("%s", os.Args[0]))

  optConfig     := options. StringLong("config",       0 , "", "read configuration from YAML file")
  optSourceURL  := options. StringLong("source-url",   0 , "", "recount3 repository url")
  optSourceDir  := options. StringLong("source-dir",   0 , "", "local copy of the recount3 repository")
  optS3Bucket   := options. StringLong("s3-bucket",    0 , "", "S3 bucket of a recount3 mirror")
  optOrganism   := options. StringLong("organism",     0 , "", "organism [default: mouse]")
  optAnnotation := options. StringLong("annotation",   0 , "", "gene annotation [default: gencode_v23]")
  optCompress   := options.   BoolLong("compress",     0 ,     "gzip output tables")
  optVerbose    := options.CounterLong("verbose",     'v',     "verbose level [-v or -vv]")
  optHelp       := options.   BoolLong("help",        'h',     "print help")

  options.SetParameters("<PROJECT> <OUTPUT_DIR>")
  options.Parse(os.Args)

  if *optHelp {
    options.PrintUsage(os.Stdout)
    os.Exit(0)
  }
  if len(options.Args()) != 2 {
    options.PrintUsage(os.Stderr)
    os.Exit(1)
  }
  if *optConfig != "" {
    if c, err := LoadConfig(*optConfig); err != nil {
      log.Fatal(err)
    } else {
      config = c
    }
  }
  if *optSourceURL != "" || *optSourceDir != "" || *optS3Bucket != "" {
    config.Source.URL      = *optSourceURL
    config.Source.Dir      = *optSourceDir
    config.Source.S3Bucket = *optS3Bucket
  }
  if *optOrganism != "" {
    config.Organism = *optOrganism
  }
  if *optAnnotation != "" {
    config.Annotation = *optAnnotation
  }
  config.Source.Debug = *optVerbose >= 3
  config.Project      = options.Args()[0]

  if err := config.Source.Verify(); err != nil {
    log.Fatal(err)
  }
  recount3Fetch(config, options.Args()[1], *optCompress, *optVerbose)
}
