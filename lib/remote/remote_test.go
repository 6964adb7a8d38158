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

import "bytes"
import "context"
import "errors"
import "fmt"
import "io"
import "io/ioutil"
import "net/http"
import "net/http/httptest"
import "os"
import "path/filepath"
import "strings"
import "testing"

import "github.com/aws/aws-sdk-go-v2/service/s3"

/* -------------------------------------------------------------------------- */

func readAll(t *testing.T, s Source, path string) string {
  r, err := s.Open(context.Background(), path)
  if err != nil {
    t.Fatal(err)
  }
  defer r.Close()
  b, err := ioutil.ReadAll(r)
  if err != nil {
    t.Fatal(err)
  }
  return string(b)
}

/* -------------------------------------------------------------------------- */

func TestHTTP(t *testing.T) {
  server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
    switch r.URL.Path {
    case "/recount3/mouse/file.txt":
      fmt.Fprint(w, "hello")
    case "/recount3/mouse/broken.txt":
      w.WriteHeader(http.StatusInternalServerError)
    default:
      http.NotFound(w, r)
    }
  }))
  defer server.Close()

  s := NewHTTP(server.URL + "/recount3/")

  if readAll(t, s, "mouse/file.txt") != "hello" {
    t.Error("test failed")
  }
  if _, err := s.Open(context.Background(), "mouse/missing.txt"); !errors.Is(err, ErrNotFound) {
    t.Error("test failed")
  }
  if _, err := s.Open(context.Background(), "mouse/broken.txt"); err == nil || errors.Is(err, ErrNotFound) {
    t.Error("test failed")
  }
  if n, err := s.Size(context.Background(), "mouse/file.txt"); err != nil || n != 5 {
    t.Error("test failed")
  }
}

func TestHTTPCanceled(t *testing.T) {
  server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
    fmt.Fprint(w, "hello")
  }))
  defer server.Close()

  ctx, cancel := context.WithCancel(context.Background())
  cancel()
  if _, err := NewHTTP(server.URL).Open(ctx, "file.txt"); err == nil {
    t.Error("test failed")
  }
}

func TestDir(t *testing.T) {
  root := t.TempDir()
  if err := os.MkdirAll(filepath.Join(root, "mouse", "sra"), 0755); err != nil {
    t.Fatal(err)
  }
  if err := ioutil.WriteFile(filepath.Join(root, "mouse", "sra", "a.txt"), []byte("abc"), 0644); err != nil {
    t.Fatal(err)
  }
  s := NewDir(root)
  if readAll(t, s, "mouse/sra/a.txt") != "abc" {
    t.Error("test failed")
  }
  if _, err := s.Open(context.Background(), "mouse/sra/b.txt"); !errors.Is(err, ErrNotFound) {
    t.Error("test failed")
  }
  if n, err := s.Size(context.Background(), "mouse/sra/a.txt"); err != nil || n != 3 {
    t.Error("test failed")
  }
  if _, err := s.Size(context.Background(), "mouse/sra/b.txt"); !errors.Is(err, ErrNotFound) {
    t.Error("test failed")
  }
}

/* -------------------------------------------------------------------------- */

// Minimal S3 server answering GetObject requests with path style
// addressing.
type s3RoundTripper struct {
  objects  map[string]string
  requests []string
}

func (m *s3RoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
  m.requests = append(m.requests, req.URL.Path)
  if req.Method == http.MethodGet {
    if body, ok := m.objects[strings.TrimPrefix(req.URL.Path, "/")]; ok {
      return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(strings.NewReader(body)), Header: http.Header{
        "Content-Length": {fmt.Sprintf("%d", len(body))} }}, nil
    }
  }
  body := "<?xml version=\"1.0\" encoding=\"UTF-8\"?><Error><Code>NoSuchKey</Code><Message>missing</Message></Error>"
  return &http.Response{StatusCode: http.StatusNotFound, Body: io.NopCloser(bytes.NewReader([]byte(body))), Header: http.Header{
    "Content-Type": {"application/xml"} }}, nil
}

func TestS3(t *testing.T) {
  rt := &s3RoundTripper{objects: map[string]string{
    "recount-opendata/recount3/release/mouse/file.txt": "hello" }}
  s, err := NewS3(context.Background(), S3Config{
    Bucket         : "recount-opendata",
    Prefix         : "recount3/release",
    Endpoint       : "https://mock.s3.local",
    PathStyle      : true,
    AccessKeyID    : "AKIDEXAMPLE",
    SecretAccessKey: "secret" },
    func(o *s3.Options) {
      o.HTTPClient = &http.Client{Transport: rt}
    })
  if err != nil {
    t.Fatal(err)
  }
  if readAll(t, s, "mouse/file.txt") != "hello" {
    t.Error("test failed")
  }
  if _, err := s.Open(context.Background(), "mouse/missing.txt"); err == nil {
    t.Error("test failed")
  }
  if s.String() != "s3://recount-opendata/recount3/release" {
    t.Error("test failed")
  }
  if len(rt.requests) != 2 {
    t.Error("test failed")
  }
}
