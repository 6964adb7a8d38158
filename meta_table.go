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
import "bufio"
import "bytes"
import "io"
import "io/ioutil"
import "math"
import "strconv"
import "strings"

/* -------------------------------------------------------------------------- */

type OptionMetaScientific struct {
  Value bool
}

// Write cells separated by a single separator string instead of
// padding columns to equal width.
type OptionMetaSeparator struct {
  Value string
}

/* -------------------------------------------------------------------------- */

func (meta Meta) formatCell(i, j int, useScientific bool) string {
  switch v := meta.MetaData[j].(type) {
  case []string:
    if v[i] == "" {
      return "NA"
    }
    return v[i]
  case []float64:
    if math.IsNaN(v[i]) {
      return "NA"
    }
    if useScientific {
      return fmt.Sprintf("%e", v[i])
    } else {
      return fmt.Sprintf("%f", v[i])
    }
  case []int:
    return fmt.Sprintf("%d", v[i])
  case Factor:
    if v.Codes[i] < 0 {
      return "NA"
    }
    return v.At(i)
  default:
    panic("invalid meta data")
  }
}

func (meta Meta) WriteTable(writer io.Writer, header bool, args ...interface{}) error {
  useScientific := false
  separator     := ""
  for _, arg := range args {
    switch a := arg.(type) {
    case OptionMetaScientific:
      useScientific = a.Value
    case OptionMetaSeparator:
      separator = a.Value
    default:
    }
  }
  printCell := func(writer io.Writer, widths []int, i, j int) (int, error) {
    cell := meta.formatCell(i, j, useScientific)
    if separator != "" {
      if j == 0 {
        return fmt.Fprint(writer, cell)
      }
      return fmt.Fprintf(writer, "%s%s", separator, cell)
    }
    format := fmt.Sprintf(" %%%ds", widths[j]-1)
    return fmt.Fprintf(writer, format, cell)
  }
  printRow := func(writer io.Writer, widths []int, i int) error {
    for j := 0; j < meta.MetaLength(); j++ {
      if _, err := printCell(writer, widths, i, j); err != nil {
        return err
      }
    }
    if _, err := fmt.Fprintf(writer, "\n"); err != nil {
      return err
    }
    return nil
  }
  printHeader := func(writer io.Writer, widths []int) error {
    for j := 0; j < meta.MetaLength(); j++ {
      if separator != "" {
        if j != 0 {
          if _, err := fmt.Fprint(writer, separator); err != nil {
            return err
          }
        }
        if _, err := fmt.Fprint(writer, meta.MetaName[j]); err != nil {
          return err
        }
        continue
      }
      format := fmt.Sprintf(" %%%ds", widths[j]-1)
      if _, err := fmt.Fprintf(writer, format, meta.MetaName[j]); err != nil {
        return err
      }
    }
    if _, err := fmt.Fprintf(writer, "\n"); err != nil {
      return err
    }
    return nil
  }
  // maximum column widths
  widths := make([]int, meta.MetaLength())
  for j := 0; j < meta.MetaLength(); j++ {
    widths[j] = len(meta.MetaName[j]) + 1
  }
  if separator == "" {
    for i := 0; i < meta.Length(); i++ {
      for j := 0; j < meta.MetaLength(); j++ {
        if width, err := printCell(ioutil.Discard, widths, i, j); err != nil {
          return err
        } else if width > widths[j] {
          widths[j] = width
        }
      }
    }
  }
  if header {
    if err := printHeader(writer, widths); err != nil {
      return err
    }
  }
  for i := 0; i < meta.Length(); i++ {
    if err := printRow(writer, widths, i); err != nil {
      return err
    }
  }
  return nil
}

func (meta Meta) ExportTable(filename string, header, compress bool, args ...interface{}) error {
  var buffer bytes.Buffer

  w := bufio.NewWriter(&buffer)
  if err := meta.WriteTable(w, header, args...); err != nil {
    return err
  }
  w.Flush()

  return writeFile(filename, &buffer, compress)
}

/* -------------------------------------------------------------------------- */

// Read a tab separated table with a header line. All columns are
// imported as string columns, empty cells and `NA' are stored as empty
// strings. Lines starting with `#' are skipped.
func (meta *Meta) ReadTable(r io.Reader) error {
  reader := bufio.NewReader(r)
  header := []string{}
  data   := [][]string{}
  for {
    line, err := bufioReadLine(reader)
    if err == io.EOF {
      break
    }
    if err != nil {
      return err
    }
    line = strings.TrimRight(line, "\r")
    if line == "" || strings.HasPrefix(line, "#") {
      continue
    }
    fields := strings.Split(line, "\t")
    if len(header) == 0 {
      header = fields
      data   = make([][]string, len(fields))
      continue
    }
    if len(fields) != len(header) {
      return fmt.Errorf("invalid table: line has %d fields, header has %d", len(fields), len(header))
    }
    for j, f := range fields {
      f = removeQuotes(f)
      if f == "NA" {
        f = ""
      }
      data[j] = append(data[j], f)
    }
  }
  if len(header) == 0 {
    return fmt.Errorf("invalid table: missing header")
  }
  result := Meta{}
  for j, name := range header {
    if data[j] == nil {
      data[j] = []string{}
    }
    result.AddMeta(removeQuotes(name), data[j])
  }
  *meta = result
  return nil
}

// Convert a string column to float64. Empty cells become NaN.
func (meta *Meta) ParseFloat(name string) ([]float64, error) {
  s, ok := meta.GetMeta(name).([]string)
  if !ok {
    return nil, fmt.Errorf("string column `%s' not found", name)
  }
  r := make([]float64, len(s))
  for i := range s {
    if s[i] == "" {
      r[i] = math.NaN()
      continue
    }
    v, err := strconv.ParseFloat(s[i], 64)
    if err != nil {
      return nil, fmt.Errorf("column `%s': %v", name, err)
    }
    r[i] = v
  }
  return r, nil
}
