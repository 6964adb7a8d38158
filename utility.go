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
import "io"
import "io/ioutil"
import "math"
import "regexp"
import "sort"

import gzip "github.com/klauspost/pgzip"

/* -------------------------------------------------------------------------- */

func writeFile(filename string, r io.Reader, compress bool) error {
  var buffer bytes.Buffer

  if compress {
    w := gzip.NewWriter(&buffer)
    io.Copy(w, r)
    w.Close()
  } else {
    w := bufio.NewWriter(&buffer)
    io.Copy(w, r)
    w.Flush()
  }
  return ioutil.WriteFile(filename, buffer.Bytes(), 0666)
}

// Wrap r with a gzip reader if the stream starts with the gzip magic
// number.
func maybeGunzip(r io.Reader) (io.Reader, func() error, error) {
  b := bufio.NewReader(r)
  magic, err := b.Peek(2)
  if err != nil && err != io.EOF {
    return nil, nil, err
  }
  if len(magic) == 2 && magic[0] == 31 && magic[1] == 139 {
    g, err := gzip.NewReader(b)
    if err != nil {
      return nil, nil, err
    }
    return g, g.Close, nil
  }
  return b, func() error { return nil }, nil
}

/* -------------------------------------------------------------------------- */

var quotesRegexp = regexp.MustCompile(`^"([^"]*)"$`)

func removeQuotes(str string) string {
  if quotesRegexp.MatchString(str) {
    return quotesRegexp.ReplaceAllString(str, "${1}")
  }
  return str
}

/* -------------------------------------------------------------------------- */

func bufioReadLine(reader *bufio.Reader) (string, error) {
  l, err := reader.ReadString('\n')
  if err != nil {
    // ignore EOF errors if some bytes were read
    if len(l) > 0 && err == io.EOF {
      return l, nil
    }
    return l, err
  }
  // remove newline character
  return l[0:len(l)-1], err
}

/* numerics
 * -------------------------------------------------------------------------- */

// Sample quantile with linear interpolation between order statistics
// (type 7 in Hyndman and Fan). x is not modified.
func quantile7(x []float64, p float64) float64 {
  n := len(x)
  if n == 0 {
    return math.NaN()
  }
  y := make([]float64, n)
  copy(y, x)
  sort.Float64s(y)
  h  := float64(n-1)*p
  lo := math.Floor(h)
  hi := math.Ceil (h)
  return y[int(lo)] + (h-lo)*(y[int(hi)]-y[int(lo)])
}

func median(x []float64) float64 {
  return quantile7(x, 0.5)
}

// Ranks of x with ties replaced by their average rank. Ranks start at 1.
func rankAverage(x []float64) []float64 {
  n := len(x)
  idx := make([]int, n)
  for i := range idx {
    idx[i] = i
  }
  sort.SliceStable(idx, func(a, b int) bool { return x[idx[a]] < x[idx[b]] })
  r := make([]float64, n)
  for i := 0; i < n; {
    j := i
    for j+1 < n && x[idx[j+1]] == x[idx[i]] {
      j++
    }
    v := float64(i+j)/2.0 + 1.0
    for k := i; k <= j; k++ {
      r[idx[k]] = v
    }
    i = j+1
  }
  return r
}

func iMin(a, b int) int {
  if a < b {
    return a
  } else {
    return b
  }
}
