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
import "log"
import "net/http"
import "net/url"

/* -------------------------------------------------------------------------- */

// Files served by an HTTP server below URL.
type HTTP struct {
  URL    string
  Client *http.Client
  Debug  bool
}

func NewHTTP(url string) *HTTP {
  return &HTTP{URL: url}
}

/* -------------------------------------------------------------------------- */

// If no HTTP client is given, use the default one.
func (s *HTTP) init() {
  if s.Client == nil {
    s.Client = http.DefaultClient
  }
}

func (s *HTTP) newreq(ctx context.Context, method, path string) (*http.Request, error) {
  u, err := url.Parse(joinPath(s.URL, path))
  if err != nil {
    return nil, err
  }
  return http.NewRequestWithContext(ctx, method, u.String(), nil)
}

func (s *HTTP) Open(ctx context.Context, path string) (io.ReadCloser, error) {
  s.init()
  req, err := s.newreq(ctx, http.MethodGet, path)
  if err != nil {
    return nil, err
  }
  if s.Debug {
    log.Println("Start HTTP GET:", req.URL)
  }
  resp, err := s.Client.Do(req)
  if err != nil {
    return nil, err
  }
  switch resp.StatusCode {
  case http.StatusOK:
    if s.Debug {
      log.Println("HTTP ok.")
    }
    return resp.Body, nil
  case http.StatusNotFound:
    resp.Body.Close()
    return nil, fmt.Errorf("%w: %s", ErrNotFound, req.URL)
  default:
    resp.Body.Close()
    return nil, fmt.Errorf("GET %s: %s", req.URL, resp.Status)
  }
}

// Size uses an HTTP HEAD to find out how many bytes are available.
func (s *HTTP) Size(ctx context.Context, path string) (int64, error) {
  s.init()
  req, err := s.newreq(ctx, http.MethodHead, path)
  if err != nil {
    return 0, err
  }
  resp, err := s.Client.Do(req)
  if err != nil {
    return 0, err
  }
  resp.Body.Close()
  if resp.StatusCode == http.StatusNotFound {
    return 0, fmt.Errorf("%w: %s", ErrNotFound, req.URL)
  }
  if resp.StatusCode != http.StatusOK {
    return 0, fmt.Errorf("HEAD %s: %s", req.URL, resp.Status)
  }
  return resp.ContentLength, nil
}

func (s *HTTP) String() string {
  return s.URL
}
