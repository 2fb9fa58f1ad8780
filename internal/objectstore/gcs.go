// Copyright 2024 Google, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"time"

	credentials "cloud.google.com/go/iam/credentials/apiv1"
	"cloud.google.com/go/iam/credentials/apiv1/credentialspb"
	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
)

// GCSStore publishes to a Google Cloud Storage bucket.
type GCSStore struct {
	client      *storage.Client
	iamClient   *credentials.IamCredentialsClient
	bucket      string
	signerEmail string
}

// NewGCSStore returns a store on bucket. When signerEmail and iamClient are
// set, URLs are signed through the IAM Credentials API so no key file is
// needed; otherwise the client's own credentials sign.
func NewGCSStore(client *storage.Client, iamClient *credentials.IamCredentialsClient, bucket string, signerEmail string) *GCSStore {
	return &GCSStore{client: client, iamClient: iamClient, bucket: bucket, signerEmail: signerEmail}
}

func (s *GCSStore) Bucket() string {
	return s.bucket
}

// Put streams the file into the bucket. The object becomes visible when the
// writer closes.
func (s *GCSStore) Put(ctx context.Context, key string, path string, contentType string) (int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	w := s.client.Bucket(s.bucket).Object(key).NewWriter(ctx)
	w.ContentType = contentType
	n, err := io.Copy(w, f)
	if err != nil {
		_ = w.Close()
		return 0, fmt.Errorf("failed to write object: %w", err)
	}
	if err := w.Close(); err != nil {
		return 0, fmt.Errorf("failed to finalize object: %w", err)
	}
	return n, nil
}

// SignedURL returns a V4 signed GET URL.
func (s *GCSStore) SignedURL(ctx context.Context, key string, contentType string, ttl time.Duration) (string, error) {
	opts := &storage.SignedURLOptions{
		Scheme:  storage.SigningSchemeV4,
		Method:  "GET",
		Expires: time.Now().Add(ttl),
		QueryParameters: url.Values{
			"response-content-disposition": {Attachment(key)},
			"response-content-type":        {contentType},
		},
	}
	if s.signerEmail != "" && s.iamClient != nil {
		opts.GoogleAccessID = s.signerEmail
		opts.SignBytes = func(b []byte) ([]byte, error) {
			resp, err := s.iamClient.SignBlob(ctx, &credentialspb.SignBlobRequest{
				Name:    fmt.Sprintf("projects/-/serviceAccounts/%s", s.signerEmail),
				Payload: b,
			})
			if err != nil {
				return nil, fmt.Errorf("IAMClient.SignBlob: %w", err)
			}
			return resp.SignedBlob, nil
		}
	}
	u, err := s.client.Bucket(s.bucket).SignedURL(key, opts)
	if err != nil {
		return "", fmt.Errorf("Bucket(%q).SignedURL(%q): %w", s.bucket, key, err)
	}
	return u, nil
}

// List walks the bucket with the iterator API.
func (s *GCSStore) List(ctx context.Context, prefix string) ([]Object, error) {
	it := s.client.Bucket(s.bucket).Objects(ctx, &storage.Query{Prefix: prefix})
	var out []Object
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, err
		}
		out = append(out, Object{Key: attrs.Name, Size: attrs.Size, Updated: attrs.Updated})
	}
	return out, nil
}

// Delete removes key; a missing object is not an error.
func (s *GCSStore) Delete(ctx context.Context, key string) error {
	err := s.client.Bucket(s.bucket).Object(key).Delete(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil
	}
	return err
}
