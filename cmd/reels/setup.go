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

package main

import (
	"context"
	"fmt"
	"log/slog"

	"cloud.google.com/go/storage"

	"github.com/jaycherian/gcp-go-daily-reels/internal/caption"
	"github.com/jaycherian/gcp-go-daily-reels/internal/cloud"
	"github.com/jaycherian/gcp-go-daily-reels/internal/core/commands"
	"github.com/jaycherian/gcp-go-daily-reels/internal/core/pool"
	"github.com/jaycherian/gcp-go-daily-reels/internal/core/progress"
	"github.com/jaycherian/gcp-go-daily-reels/internal/core/series"
	"github.com/jaycherian/gcp-go-daily-reels/internal/core/services"
	"github.com/jaycherian/gcp-go-daily-reels/internal/core/workflow"
	"github.com/jaycherian/gcp-go-daily-reels/internal/notify"
	"github.com/jaycherian/gcp-go-daily-reels/internal/objectstore"
)

// StateManager holds the components a subcommand works with.
type StateManager struct {
	config   *cloud.Config
	cloud    *cloud.ServiceClients
	lock     *progress.Lock
	selector *series.Selector
	store    objectstore.Store

	seriesService *services.SeriesService
	reelService   *services.ReelService
	events        *notify.PubSubPublisher
}

// Close flushes pending events and releases the service clients.
func (s *StateManager) Close() {
	if s.events != nil {
		s.events.Stop()
	}
	if s.cloud != nil {
		if err := s.cloud.Close(); err != nil {
			slog.Warn("failed to close service clients", "error", err)
		}
	}
}

// InitProgressState prepares what status and reset need: the progress record,
// the lock and the pool. Only a gcs progress backend creates a client.
func InitProgressState(ctx context.Context, config *cloud.Config) (*StateManager, error) {
	state := &StateManager{config: config, cloud: &cloud.ServiceClients{}}
	if config.Progress.Backend == cloud.BackendGCS {
		client, err := storage.NewClient(ctx)
		if err != nil {
			return nil, fmt.Errorf("storage client: %w", err)
		}
		state.cloud.StorageClient = client
	}
	state.initSeries()
	return state, nil
}

// InitState creates every client the configuration asks for and the services
// built on them.
func InitState(ctx context.Context, config *cloud.Config) (*StateManager, error) {
	clients, err := cloud.NewCloudServiceClients(ctx, config)
	if err != nil {
		return nil, err
	}
	state := &StateManager{config: config, cloud: clients}
	state.initSeries()

	switch config.Storage.Backend {
	case cloud.BackendGCS:
		state.store = objectstore.NewGCSStore(clients.StorageClient, clients.IAMClient, config.Storage.Bucket, config.Application.SignerServiceAccountEmail)
	case cloud.BackendR2:
		state.store = objectstore.NewR2Store(clients.S3Client, config.Storage.Bucket)
	default:
		state.Close()
		return nil, fmt.Errorf("unknown storage backend %q", config.Storage.Backend)
	}
	state.reelService = &services.ReelService{
		Store:        state.store,
		ObjectPrefix: config.Storage.ObjectPrefix,
		SignedURLTTL: config.Storage.SignedURLTTL,
	}
	if config.Events.Topic != "" {
		state.events = notify.NewPubSubPublisher(clients.PubsubClient, config.Events.Topic)
	}
	return state, nil
}

func (s *StateManager) initSeries() {
	config := s.config
	var store progress.Store
	switch config.Progress.Backend {
	case cloud.BackendGCS:
		store = progress.NewGCSStore(s.cloud.StorageClient, config.Progress.Bucket, config.Progress.Object)
	default:
		store = progress.NewFileStore(config.Progress.Path)
	}
	if config.Progress.LockPath != "" {
		s.lock = progress.NewLock(config.Progress.LockPath)
	}
	s.selector = series.NewSelector(store, series.RandomSeeds{})
	s.seriesService = &services.SeriesService{
		Selector: s.selector,
		Scanner: &pool.Scanner{
			ImagesDir:       config.Pool.ImagesDir,
			AudioDir:        config.Pool.AudioDir,
			ImageExtensions: config.Pool.ImageExtensions,
			AudioExtensions: config.Pool.AudioExtensions,
		},
		Lock:      s.lock,
		Threshold: config.Pool.LowStockThreshold,
	}
}

// NewCaptioner picks the caption generator of the configured provider. Without
// a usable generator every caption is the fallback.
func (s *StateManager) NewCaptioner() (*caption.Captioner, error) {
	config := s.config
	var generator caption.Generator
	switch config.Caption.Provider {
	case cloud.ProviderGenAI:
		if m, ok := s.cloud.AgentModels[config.Caption.AgentModel]; ok {
			generator = caption.NewGenAIGenerator(m)
		}
	case cloud.ProviderOpenAI:
		if s.cloud.OpenAIClient != nil {
			generator = caption.NewOpenAIGenerator(s.cloud.OpenAIClient, config.Caption.OpenAIModel, config.Caption.System,
				config.Caption.Temperature, config.Caption.MaxTokens)
		}
	}
	return caption.NewCaptioner(generator, caption.Options{
		Themes:       config.Caption.Themes,
		Hashtags:     config.Caption.Hashtags,
		Prompt:       config.Caption.Prompt,
		Signature:    config.Caption.Signature,
		SeriesLength: config.Caption.SeriesLength,
	})
}

// NewNotifier returns the SMTP notifier.
func (s *StateManager) NewNotifier() (notify.Notifier, error) {
	email := s.config.Email
	client, err := notify.NewSMTPClient(email.Host, email.Port, email.Sender, email.Password)
	if err != nil {
		return nil, err
	}
	return notify.NewEmailNotifier(client, email.Sender, email.Receiver), nil
}

// NewWorkflow assembles the daily reel workflow from the state.
func (s *StateManager) NewWorkflow(reset bool) (*workflow.DailyReelWorkflow, error) {
	captioner, err := s.NewCaptioner()
	if err != nil {
		return nil, err
	}
	notifier, err := s.NewNotifier()
	if err != nil {
		return nil, err
	}
	deps := workflow.Dependencies{
		Selector:  s.selector,
		Store:     s.store,
		Captioner: captioner,
		Notifier:  notifier,
		Lock:      s.lock,
		Reset:     reset,
	}
	if s.events != nil {
		deps.Events = s.events
	}
	if s.config.NeedsBigQuery() {
		deps.Ledger = commands.NewLedgerInserter(s.cloud.BiqQueryClient, s.config.Ledger.DatasetName, s.config.Ledger.RunTable)
	}
	return workflow.NewDailyReelWorkflow(s.config, deps), nil
}
