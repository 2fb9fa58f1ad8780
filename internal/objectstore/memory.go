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
	"fmt"
	"net/url"
	"os"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemoryStore keeps objects in memory. Tests and dry runs use it.
type MemoryStore struct {
	mu      sync.Mutex
	bucket  string
	objects map[string][]byte
	types   map[string]string
}

// NewMemoryStore returns an empty store named bucket.
func NewMemoryStore(bucket string) *MemoryStore {
	return &MemoryStore{bucket: bucket, objects: make(map[string][]byte), types: make(map[string]string)}
}

func (s *MemoryStore) Bucket() string {
	return s.bucket
}

func (s *MemoryStore) Put(_ context.Context, key string, path string, contentType string) (int64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = data
	s.types[key] = contentType
	return int64(len(data)), nil
}

// SignedURL returns a memory:// URL carrying the same query parameters a real
// signed URL would.
func (s *MemoryStore) SignedURL(_ context.Context, key string, contentType string, ttl time.Duration) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.objects[key]; !ok {
		return "", fmt.Errorf("object %s not found", key)
	}
	q := url.Values{
		"response-content-disposition": {Attachment(key)},
		"response-content-type":        {contentType},
		"expires":                      {ttl.String()},
	}
	return fmt.Sprintf("memory://%s/%s?%s", s.bucket, key, q.Encode()), nil
}

func (s *MemoryStore) List(_ context.Context, prefix string) ([]Object, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Object
	for k, v := range s.objects {
		if strings.HasPrefix(k, prefix) {
			out = append(out, Object{Key: k, Size: int64(len(v))})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	delete(s.types, key)
	return nil
}

// PutBytes stores data under key directly.
func (s *MemoryStore) PutBytes(key string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = data
}

// ContentType returns the content type recorded for key.
func (s *MemoryStore) ContentType(key string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.types[key]
}

// Keys returns all keys in order.
func (s *MemoryStore) Keys() []string {
	objects, _ := s.List(context.Background(), "")
	out := make([]string, 0, len(objects))
	for _, o := range objects {
		out = append(out, o.Key)
	}
	return out
}
