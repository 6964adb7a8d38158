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
import "bytes"
import "fmt"
import "io"

/* -------------------------------------------------------------------------- */

// Write a preview of the table with columns padded to equal width. If
// the table has more than n+1 rows, only the first and last n/2 rows
// are shown.
func (meta Meta) WritePretty(writer io.Writer, n int, args ...interface{}) error {
  useScientific := false
  for _, arg := range args {
    switch a := arg.(type) {
    case OptionMetaScientific:
      useScientific = a.Value
    default:
    }
  }
  rows := []int{}
  skip := -1
  if meta.Length() <= n+1 {
    rows = seqInt(meta.Length())
  } else {
    for i := 0; i < n/2; i++ {
      rows = append(rows, i)
    }
    skip = len(rows)
    for i := meta.Length() - n/2; i < meta.Length(); i++ {
      rows = append(rows, i)
    }
  }
  // cells of the preview, the gap is marked by `...'
  cells  := make([][]string, 0, len(rows)+2)
  widths := make([]int, meta.MetaLength())
  cells = append(cells, append([]string{}, meta.MetaName...))
  for k, i := range rows {
    if k == skip {
      gap := make([]string, meta.MetaLength())
      for j := range gap {
        gap[j] = "..."
      }
      cells = append(cells, gap)
    }
    row := make([]string, meta.MetaLength())
    for j := range row {
      row[j] = meta.formatCell(i, j, useScientific)
    }
    cells = append(cells, row)
  }
  for _, row := range cells {
    for j, c := range row {
      if len(c) > widths[j] {
        widths[j] = len(c)
      }
    }
  }
  for _, row := range cells {
    for j, c := range row {
      if _, err := fmt.Fprintf(writer, " %*s", widths[j], c); err != nil {
        return err
      }
    }
    if _, err := fmt.Fprintln(writer); err != nil {
      return err
    }
  }
  return nil
}

func (meta Meta) PrintPretty(n int, args ...interface{}) string {
  var buffer bytes.Buffer
  writer := bufio.NewWriter(&buffer)

  if err := meta.WritePretty(writer, n, args...); err != nil {
    return ""
  }
  writer.Flush()

  return buffer.String()
}
