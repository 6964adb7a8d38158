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
import "fmt"
import "io"

import "github.com/aws/aws-sdk-go-v2/aws"
import "github.com/aws/aws-sdk-go-v2/config"
import "github.com/aws/aws-sdk-go-v2/credentials"
import "github.com/aws/aws-sdk-go-v2/service/s3"
import "github.com/aws/aws-sdk-go-v2/service/s3/types"

/* -------------------------------------------------------------------------- */

type S3Config struct {
  Bucket          string
  Prefix          string
  Region          string
  // optional endpoint of an S3 compatible server
  Endpoint        string
  PathStyle       bool
  // static credentials, anonymous access if empty
  AccessKeyID     string
  SecretAccessKey string
}

// Objects of an S3 bucket.
type S3 struct {
  client *s3.Client
  bucket string
  prefix string
}

func NewS3(ctx context.Context, cfg S3Config, optFns ...func(*s3.Options)) (*S3, error) {
  if cfg.Bucket == "" {
    return nil, fmt.Errorf("s3 bucket required")
  }
  region := cfg.Region
  if region == "" {
    region = "us-east-1"
  }
  var provider aws.CredentialsProvider = aws.AnonymousCredentials{}
  if cfg.AccessKeyID != "" {
    provider = credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")
  }
  awsCfg, err := config.LoadDefaultConfig(ctx,
    config.WithRegion(region),
    config.WithCredentialsProvider(provider))
  if err != nil {
    return nil, err
  }
  client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
    o.UsePathStyle     = cfg.PathStyle
    o.RetryMaxAttempts = 1
    if cfg.Endpoint != "" {
      o.BaseEndpoint = aws.String(cfg.Endpoint)
    }
    for _, f := range optFns {
      f(o)
    }
  })
  return &S3{client: client, bucket: cfg.Bucket, prefix: cfg.Prefix}, nil
}

func (s *S3) Open(ctx context.Context, path string) (io.ReadCloser, error) {
  key := joinPath(s.prefix, path)
  out, err := s.client.GetObject(ctx, &s3.GetObjectInput{Bucket: &s.bucket, Key: &key})
  if err != nil {
    var nsk *types.NoSuchKey
    if errors.As(err, &nsk) {
      return nil, fmt.Errorf("%w: s3://%s/%s", ErrNotFound, s.bucket, key)
    }
    return nil, fmt.Errorf("s3://%s/%s: %v", s.bucket, key, err)
  }
  return out.Body, nil
}

func (s *S3) String() string {
  return "s3://" + joinPath(s.bucket, s.prefix)
}
