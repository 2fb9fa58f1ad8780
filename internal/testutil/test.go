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

// Package test provides helpers shared by the test suites: configuration
// loading from a temporary directory, media pool fixtures, and an in-process
// Pub/Sub server.
package test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"cloud.google.com/go/pubsub"
	"cloud.google.com/go/pubsub/pstest"
	"google.golang.org/api/option"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/jaycherian/gcp-go-daily-reels/internal/cloud"
	"github.com/jaycherian/gcp-go-daily-reels/internal/core/pool"
)

// TestProjectId is the project the fake Pub/Sub server is addressed with.
const TestProjectId = "daily-reels-test"

// HandleErr fails the test when err is not nil.
//
// Inputs:
//   - err: The error to check.
//   - t: The *testing.T object from the current test.
func HandleErr(err error, t *testing.T) {
	t.Helper()
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

// GetTestTriggerMessageText returns the body Cloud Scheduler publishes to the
// trigger topic. The workflow ignores it; listeners pass it along as input.
func GetTestTriggerMessageText() string {
	return `{
  "job": "projects/daily-reels-test/locations/us-central1/jobs/daily-reel",
  "scheduled_for": "2025-02-15T07:00:00Z"
}`
}

// SetupOS points the configuration loader at dir and runtime for the
// duration of the test.
func SetupOS(t *testing.T, dir string, runtime string) {
	t.Helper()
	t.Setenv(cloud.EnvConfigFilePrefix, dir)
	t.Setenv(cloud.EnvConfigRuntime, runtime)
}

// WriteConfig writes a base configuration and, when overlay is not empty, the
// overlay of runtime into dir.
func WriteConfig(t *testing.T, dir string, runtime string, base string, overlay string) {
	t.Helper()
	baseFile, overlayFile := cloud.ConfigFiles(dir, runtime)
	if err := os.WriteFile(baseFile, []byte(base), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", baseFile, err)
	}
	if overlay == "" {
		return
	}
	if err := os.WriteFile(overlayFile, []byte(overlay), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", overlayFile, err)
	}
}

// GetConfig loads the configuration of runtime from dir on top of the
// defaults.
func GetConfig(t *testing.T, dir string, runtime string) *cloud.Config {
	t.Helper()
	SetupOS(t, dir, runtime)
	config := cloud.NewConfig()
	if err := cloud.LoadConfig(config); err != nil {
		t.Fatalf("failed to load configuration: %v", err)
	}
	return config
}

// NewPool creates an images and an audio directory under a temp dir holding
// the given number of empty media files, and returns a scanner over them.
// Names sort in creation order: image_00.jpg, audio_00.mp3, ...
func NewPool(t *testing.T, images int, audio int) *pool.Scanner {
	t.Helper()
	dir := t.TempDir()
	s := &pool.Scanner{
		ImagesDir: filepath.Join(dir, "images"),
		AudioDir:  filepath.Join(dir, "audio"),
	}
	for _, d := range []string{s.ImagesDir, s.AudioDir} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			t.Fatalf("failed to create %s: %v", d, err)
		}
	}
	for i := 0; i < images; i++ {
		Touch(t, filepath.Join(s.ImagesDir, fmt.Sprintf("image_%02d.jpg", i)))
	}
	for i := 0; i < audio; i++ {
		Touch(t, filepath.Join(s.AudioDir, fmt.Sprintf("audio_%02d.mp3", i)))
	}
	return s
}

// Touch creates an empty file.
func Touch(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatalf("failed to create %s: %v", path, err)
	}
}

// NewPubSub starts an in-process Pub/Sub server and returns a client bound to
// it. Both are closed when the test ends.
func NewPubSub(t *testing.T) (*pubsub.Client, *pstest.Server) {
	t.Helper()
	srv := pstest.NewServer()
	conn, err := grpc.NewClient(srv.Addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		t.Fatalf("failed to dial fake pubsub: %v", err)
	}
	client, err := pubsub.NewClient(context.Background(), TestProjectId, option.WithGRPCConn(conn))
	if err != nil {
		t.Fatalf("failed to create pubsub client: %v", err)
	}
	t.Cleanup(func() {
		_ = client.Close()
		_ = conn.Close()
		_ = srv.Close()
	})
	return client, srv
}

// NewTopicSubscription creates topicID and a subscription named subID on it.
func NewTopicSubscription(t *testing.T, client *pubsub.Client, topicID string, subID string) *pubsub.Topic {
	t.Helper()
	ctx := context.Background()
	topic, err := client.CreateTopic(ctx, topicID)
	if err != nil {
		t.Fatalf("failed to create topic: %v", err)
	}
	if subID != "" {
		if _, err := client.CreateSubscription(ctx, subID, pubsub.SubscriptionConfig{Topic: topic}); err != nil {
			t.Fatalf("failed to create subscription: %v", err)
		}
	}
	return topic
}
