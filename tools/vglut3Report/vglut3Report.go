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
import   "strconv"
import   "time"

import   "github.com/pborman/getopt"

import . "github.com/pbenner/diffexpr"
import   "github.com/pbenner/diffexpr/lib/export"
import   "github.com/pbenner/diffexpr/lib/progress"
import   "github.com/pbenner/diffexpr/lib/report"

/* -------------------------------------------------------------------------- */

type ToolConfig struct {
  Config
  Verbose      int
  ExportTable  string
  ExportSQLite string
  MetricsFile  string
}

/* i/o
 * -------------------------------------------------------------------------- */

func PrintStderr(config ToolConfig, level int, format string, args ...interface{}) {
  if config.Verbose >= level {
    fmt.Fprintf(os.Stderr, format, args...)
  }
}

/* -------------------------------------------------------------------------- */

func fetch(ctx context.Context, config ToolConfig) Experiment {
  source, err := config.Source.New(ctx)
  if err != nil {
    log.Fatal(err)
  }
  r := config.Recount3(source)
  if config.Verbose >= 2 {
    r.Verbose = func(format string, args ...interface{}) {
      PrintStderr(config, 2, format, args...)
    }
  }
  PrintStderr(config, 1, "Fetching project `%s' from `%s'... ", config.Project, source)
  raw, err := r.Fetch(ctx)
  if err != nil {
    PrintStderr(config, 1, "failed\n")
    log.Fatal(err)
  }
  PrintStderr(config, 1, "done\n")

  e, err := ComputeReadCounts(raw)
  if err != nil {
    log.Fatal(err)
  }
  PrintStderr(config, 1, "Read counts for %d genes and %d samples\n", e.NGenes(), e.NSamples())
  return e
}

func analyze(e Experiment, config ToolConfig) Analysis {
  opts := LmFitOptions{Threads: config.Threads}
  if config.Verbose >= 1 {
    p := progress.New(e.NGenes(), 100)
    p.Label = "Fitting linear models"
    opts.Progress = p.Print
  }
  a, err := Analyze(e, config.Config, opts)
  if err != nil {
    log.Fatal(err)
  }
  PrintStderr(config, 1, "Retained %s\n", a.Filtered.Retention)
  PrintStderr(config, 1, "Prior degrees of freedom: %f, prior variance: %f\n", a.Fit.DfPrior, a.Fit.S2Prior)
  if config.Verbose >= 1 {
    top := a.Table.Subset(a.Table.TopGenes(10)).AsMeta()
    PrintStderr(config, 1, "Top genes:\n%s", top.PrintPretty(10, OptionMetaScientific{Value: true}))
  }
  return a
}

func writeReport(ctx context.Context, a Analysis, config ToolConfig, outputDir string) {
  bibliography := report.DefaultBibliography()
  if config.Bibliography != "" {
    f, err := os.Open(config.Bibliography)
    if err != nil {
      log.Fatal(err)
    }
    bibliography, err = report.ReadBibliography(f)
    f.Close()
    if err != nil {
      log.Fatalf("reading bibliography `%s' failed: %v", config.Bibliography, err)
    }
  }
  r, err := report.NewReport(a, bibliography)
  if err != nil {
    log.Fatal(err)
  }
  if config.UCSCGenome != "" {
    PrintStderr(config, 1, "Importing gene descriptions from UCSC (%s)... ", config.UCSCGenome)
    t := r.TopTable()
    if d, err := ImportGeneDescriptionsFromUCSC(ctx, config.UCSCServer, config.UCSCGenome, t.Symbol); err != nil {
      PrintStderr(config, 1, "failed\n")
      log.Fatal(err)
    } else {
      r.Descriptions = d
    }
    PrintStderr(config, 1, "done\n")
  }
  PrintStderr(config, 1, "Writing report to `%s'... ", outputDir)
  if err := r.Save(outputDir); err != nil {
    PrintStderr(config, 1, "failed\n")
    log.Fatal(err)
  }
  PrintStderr(config, 1, "done\n")
}

func vglut3Report(config ToolConfig, outputDir string) {
  ctx   := context.Background()
  start := time.Now()

  a := analyze(fetch(ctx, config), config)

  writeReport(ctx, a, config, outputDir)

  if config.ExportTable != "" {
    PrintStderr(config, 1, "Exporting result table to `%s'... ", config.ExportTable)
    if err := a.Table.AsMeta().ExportTable(config.ExportTable, true, false, OptionMetaSeparator{Value: "\t"}, OptionMetaScientific{Value: true}); err != nil {
      PrintStderr(config, 1, "failed\n")
      log.Fatal(err)
    }
    PrintStderr(config, 1, "done\n")
  }
  if config.ExportSQLite != "" {
    PrintStderr(config, 1, "Exporting results to sqlite database `%s'... ", config.ExportSQLite)
    if err := export.SQLite(ctx, config.ExportSQLite, a); err != nil {
      PrintStderr(config, 1, "failed\n")
      log.Fatal(err)
    }
    PrintStderr(config, 1, "done\n")
  }
  if config.MetricsFile != "" {
    if err := export.WriteMetrics(config.MetricsFile, a, report.FDR, time.Since(start)); err != nil {
      log.Fatal(err)
    }
  }
}

/* -------------------------------------------------------------------------- */

func main() {
  log.SetFlags(0)

  config  := ToolConfig{Config: DefaultConfig()}
  options := getopt.New()
  options.SetProgram(fmt.Sprintf("%s", os.Args[0]))

  optConfig       := options. StringLong("config",             0 , "", "read configuration from YAML file")
  // data source
  optSourceURL    := options. StringLong("source-url",         0 , "", "recount3 repository url")
  optSourceDir    := options. StringLong("source-dir",         0 , "", "local copy of the recount3 repository")
  optS3Bucket     := options. StringLong("s3-bucket",          0 , "", "S3 bucket of a recount3 mirror")
  optS3Prefix     := options. StringLong("s3-prefix",          0 , "", "key prefix within the S3 bucket")
  optS3Endpoint   := options. StringLong("s3-endpoint",        0 , "", "S3 endpoint url")
  // analysis
  optThreshold    := options. StringLong("quality-threshold",  0 , "", "minimum assigned gene proportion of samples [default: 0.6]")
  optHeatmapGenes := options.    IntLong("heatmap-genes",      0 , -1, "number of genes shown in the heatmap [default: 50]")
  optThreads      := options.    IntLong("threads",            0 , -1, "number of threads for fitting linear models")
  // report
  optUCSCGenome   := options. StringLong("ucsc-genome",        0 , "", "import gene descriptions from the UCSC database of the given genome (e.g. mm10)")
  optBibliography := options. StringLong("bibliography",       0 , "", "CSL-YAML bibliography replacing the default references")
  // exports
  optExportTable  := options. StringLong("export-table",       0 , "", "write the result table to file")
  optExportSQLite := options. StringLong("export-sqlite",      0 , "", "write results and sample annotation to an sqlite database")
  optMetricsFile  := options. StringLong("metrics-file",       0 , "", "write run metrics in prometheus text format")
  // generic options
  optVerbose      := options.CounterLong("verbose",           'v',     "verbose level [-v or -vv]")
  optHelp         := options.   BoolLong("help",              'h',     "print help")

  options.SetParameters("[PROJECT] <OUTPUT_DIR>")
  options.Parse(os.Args)

  // parse options
  //////////////////////////////////////////////////////////////////////////////
  if *optHelp {
    options.PrintUsage(os.Stdout)
    os.Exit(0)
  }
  if len(options.Args()) != 1 && len(options.Args()) != 2 {
    options.PrintUsage(os.Stderr)
    os.Exit(1)
  }
  if *optConfig != "" {
    if c, err := LoadConfig(*optConfig); err != nil {
      log.Fatal(err)
    } else {
      config.Config = c
    }
  }
  config.Verbose = *optVerbose
  config.Source.Debug = config.Verbose >= 3
  if *optSourceURL != "" || *optSourceDir != "" || *optS3Bucket != "" {
    config.Source.URL      = *optSourceURL
    config.Source.Dir      = *optSourceDir
    config.Source.S3Bucket = *optS3Bucket
  }
  if *optS3Prefix != "" {
    config.Source.S3Prefix = *optS3Prefix
  }
  if *optS3Endpoint != "" {
    config.Source.S3Endpoint  = *optS3Endpoint
    config.Source.S3PathStyle = true
  }
  if *optThreshold != "" {
    v, err := strconv.ParseFloat(*optThreshold, 64)
    if err != nil {
      log.Fatal(err)
    }
    config.QualityThreshold = v
  }
  if *optHeatmapGenes != -1 {
    config.HeatmapGenes = *optHeatmapGenes
  }
  if *optThreads != -1 {
    config.Threads = *optThreads
  }
  if *optUCSCGenome != "" {
    config.UCSCGenome = *optUCSCGenome
  }
  if *optBibliography != "" {
    config.Bibliography = *optBibliography
  }
  config.ExportTable  = *optExportTable
  config.ExportSQLite = *optExportSQLite
  config.MetricsFile  = *optMetricsFile
  if len(options.Args()) == 2 {
    config.Project = options.Args()[0]
  }
  if err := config.Verify(); err != nil {
    log.Fatal(err)
  }
  vglut3Report(config, options.Args()[len(options.Args())-1])
}
