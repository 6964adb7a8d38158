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
import "fmt"
import "io"
import "os"
import "path/filepath"

/* -------------------------------------------------------------------------- */

// Files below a local directory, e.g. a mirror of the data repository.
type Dir struct {
  Root string
}

func NewDir(root string) Dir {
  return Dir{Root: root}
}

func (s Dir) Open(ctx context.Context, path string) (io.ReadCloser, error) {
  if err := ctx.Err(); err != nil {
    return nil, err
  }
  f, err := os.Open(filepath.Join(s.Root, filepath.FromSlash(path)))
  if os.IsNotExist(err) {
    return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
  }
  return f, err
}

func (s Dir) Size(ctx context.Context, path string) (int64, error) {
  info, err := os.Stat(filepath.Join(s.Root, filepath.FromSlash(path)))
  if os.IsNotExist(err) {
    return 0, fmt.Errorf("%w: %s", ErrNotFound, path)
  }
  if err != nil {
    return 0, err
  }
  return info.Size(), nil
}

func (s Dir) String() string {
  return s.Root
}
