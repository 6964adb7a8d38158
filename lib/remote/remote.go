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

package remote

/* -------------------------------------------------------------------------- */

import "context"
import "errors"
import "io"
import "strings"

/* -------------------------------------------------------------------------- */

var ErrNotFound = errors.New("object not found")

// Read-only access to files of a data repository. Paths are slash
// separated and relative to the root of the source.
type Source interface {
  Open(ctx context.Context, path string) (io.ReadCloser, error)
  String() string
}

// Implemented by sources that can report the size of a file without
// reading it.
type Sizer interface {
  Size(ctx context.Context, path string) (int64, error)
}

/* -------------------------------------------------------------------------- */

func joinPath(root, path string) string {
  root = strings.TrimRight(root, "/")
  path = strings.TrimLeft(path, "/")
  if root == "" {
    return path
  }
  return root + "/" + path
}
