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
import "fmt"
import "io"
import "strconv"
import "strings"
import "unicode"

/* -------------------------------------------------------------------------- */

// Gene level annotation columns imported from GTF files.
var GeneAnnotationColumns = []string{"seqname", "start", "end", "strand", "gene_type", "gene_name", "bp_length"}

type gtfGene struct {
  seqname  string
  start    int
  end      int
  strand   string
  geneType string
  geneName string
  bpLength int
}

/* -------------------------------------------------------------------------- */

func readGTFParseLine(line string) []string {
  // if quoted
  q := false
  f := func(r rune) bool {
    if r == '"' {
      q = !q
    }
    // A quote is treated as a white space so that it is removed from the
    // line. Otherwise a white space is removed only if q (quote) is false.
    return r == '"' || ((unicode.IsSpace(r) || r == ';') && q == false)
  }
  return strings.FieldsFunc(line, f)
}

func readGTFParseOptional(fields []string) (map[string]string, error) {
  if len(fields) % 2 == 1 {
    return nil, fmt.Errorf("invalid optional fields `%s'", strings.Join(fields, " "))
  }
  r := make(map[string]string)
  for i := 0; i < len(fields); i += 2 {
    r[fields[i]] = fields[i+1]
  }
  return r, nil
}

// Read gene features from a GTF file. Only lines with feature type
// `gene' are used, genes are identified by the gene_id attribute. If no
// bp_length attribute is present, the length of the genomic interval is
// used.
func readGTFGenes(r io.Reader) (map[string]gtfGene, error) {
  genes   := make(map[string]gtfGene)
  scanner := bufio.NewScanner(r)
  scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
  for k := 1; scanner.Scan(); k++ {
    line := scanner.Text()
    if len(line) == 0 || line[0] == '#' {
      continue
    }
    columns := strings.Split(line, "\t")
    if len(columns) < 9 {
      return nil, fmt.Errorf("GTF line %d: file must have nine columns", k)
    }
    if columns[2] != "gene" {
      continue
    }
    start, err := strconv.Atoi(columns[3])
    if err != nil {
      return nil, fmt.Errorf("GTF line %d: %v", k, err)
    }
    end, err := strconv.Atoi(columns[4])
    if err != nil {
      return nil, fmt.Errorf("GTF line %d: %v", k, err)
    }
    opt, err := readGTFParseOptional(readGTFParseLine(columns[8]))
    if err != nil {
      return nil, fmt.Errorf("GTF line %d: %v", k, err)
    }
    id, ok := opt["gene_id"]
    if !ok {
      return nil, fmt.Errorf("GTF line %d: gene_id is missing", k)
    }
    g := gtfGene{
      seqname : columns[0],
      start   : start,
      end     : end,
      strand  : columns[6],
      geneType: opt["gene_type"],
      geneName: opt["gene_name"],
      bpLength: end-start+1 }
    if s, ok := opt["bp_length"]; ok {
      if g.bpLength, err = strconv.Atoi(s); err != nil {
        return nil, fmt.Errorf("GTF line %d: %v", k, err)
      }
    }
    genes[id] = g
  }
  if err := scanner.Err(); err != nil {
    return nil, err
  }
  return genes, nil
}

// Gene annotation for the given gene ids. Genes not present in the GTF
// file have empty annotation.
func ReadGeneAnnotation(r io.Reader, geneIds []string) (Meta, error) {
  genes, err := readGTFGenes(r)
  if err != nil {
    return Meta{}, err
  }
  n := len(geneIds)
  seqname  := make([]string, n)
  start    := make([]int,    n)
  end      := make([]int,    n)
  strand   := make([]string, n)
  geneType := make([]string, n)
  geneName := make([]string, n)
  bpLength := make([]int,    n)
  for i, id := range geneIds {
    if g, ok := genes[id]; ok {
      seqname [i] = g.seqname
      start   [i] = g.start
      end     [i] = g.end
      strand  [i] = g.strand
      geneType[i] = g.geneType
      geneName[i] = g.geneName
      bpLength[i] = g.bpLength
    }
  }
  return NewMeta(GeneAnnotationColumns,
    []interface{}{seqname, start, end, strand, geneType, geneName, bpLength}), nil
}
