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

// Package cloud. This file builds the container of external service clients.
// Only the clients the configuration asks for are created, so a local run
// against R2 with OpenAI captions needs no Google credentials at all.
//
// Logic Flow:
//  1. NewCloudServiceClients inspects the configuration.
//  2. Google Cloud clients (Storage, Pub/Sub, BigQuery, IAM credentials,
//     GenAI) are created when a configured feature uses them.
//  3. The R2 S3 client and the OpenAI client are created for the r2 backend
//     and the openai caption provider.
//  4. GenAI agent models are wrapped in QuotaAwareGenerativeAIModel.
package cloud

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"cloud.google.com/go/bigquery"
	credentials "cloud.google.com/go/iam/credentials/apiv1"
	"cloud.google.com/go/pubsub"
	"cloud.google.com/go/storage"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awscredentials "github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/sashabaranov/go-openai"
	"google.golang.org/genai"
)

// ServiceClients holds the clients shared by the workflow, the CLI and the
// status API. Fields are nil when the configuration does not need them.
type ServiceClients struct {
	StorageClient   *storage.Client
	PubsubClient    *pubsub.Client
	GenAIClient     *genai.Client
	BiqQueryClient  *bigquery.Client
	IAMClient       *credentials.IamCredentialsClient
	S3Client        *s3.Client
	OpenAIClient    *openai.Client
	TriggerListener *PubSubListener
	AgentModels     map[string]*QuotaAwareGenerativeAIModel
}

// Close releases every open client.
func (c *ServiceClients) Close() error {
	var errs []error
	if c.StorageClient != nil {
		errs = append(errs, c.StorageClient.Close())
	}
	if c.PubsubClient != nil {
		errs = append(errs, c.PubsubClient.Close())
	}
	if c.BiqQueryClient != nil {
		errs = append(errs, c.BiqQueryClient.Close())
	}
	if c.IAMClient != nil {
		errs = append(errs, c.IAMClient.Close())
	}
	return errors.Join(errs...)
}

// NeedsStorage reports whether any feature uses Google Cloud Storage.
func (c *Config) NeedsStorage() bool {
	return c.Storage.Backend == BackendGCS || c.Progress.Backend == BackendGCS
}

// NeedsPubSub reports whether events or triggers are configured.
func (c *Config) NeedsPubSub() bool {
	return c.Events.Topic != "" || c.Trigger.Name != ""
}

// NeedsBigQuery reports whether the run ledger is configured.
func (c *Config) NeedsBigQuery() bool {
	return c.Ledger.DatasetName != "" && c.Ledger.RunTable != ""
}

// NewCloudServiceClients creates the clients config needs.
//
// Inputs:
//   - ctx: The application context.
//   - config: The loaded configuration.
//
// Outputs:
//   - *ServiceClients: The clients; Close releases them.
//   - error: The first client that failed to initialize.
func NewCloudServiceClients(ctx context.Context, config *Config) (_ *ServiceClients, err error) {
	cloud := &ServiceClients{AgentModels: make(map[string]*QuotaAwareGenerativeAIModel)}
	defer func() {
		if err != nil {
			_ = cloud.Close()
		}
	}()

	if config.NeedsStorage() {
		if cloud.StorageClient, err = storage.NewClient(ctx); err != nil {
			return nil, fmt.Errorf("storage client: %w", err)
		}
		if config.Application.SignerServiceAccountEmail != "" {
			if cloud.IAMClient, err = credentials.NewIamCredentialsClient(ctx); err != nil {
				return nil, fmt.Errorf("iam credentials client: %w", err)
			}
		}
	}

	if config.NeedsPubSub() {
		if cloud.PubsubClient, err = pubsub.NewClient(ctx, config.Application.GoogleProjectId); err != nil {
			return nil, fmt.Errorf("pubsub client: %w", err)
		}
		if config.Trigger.Name != "" {
			cloud.TriggerListener = NewPubSubListener(cloud.PubsubClient, config.Trigger, nil)
		}
	}

	if config.NeedsBigQuery() {
		if cloud.BiqQueryClient, err = bigquery.NewClient(ctx, config.Application.GoogleProjectId); err != nil {
			return nil, fmt.Errorf("bigquery client: %w", err)
		}
	}

	if config.Storage.Backend == BackendR2 {
		if cloud.S3Client, err = NewR2Client(ctx, config.Storage.R2); err != nil {
			return nil, fmt.Errorf("r2 client: %w", err)
		}
	}

	switch config.Caption.Provider {
	case ProviderGenAI:
		cloud.GenAIClient, err = genai.NewClient(ctx, &genai.ClientConfig{
			Project:  config.Application.GoogleProjectId,
			Location: config.Application.GoogleLocation,
			Backend:  genai.BackendVertexAI,
		})
		if err != nil {
			return nil, fmt.Errorf("genai client: %w", err)
		}
		for key, values := range config.AgentModels {
			cloud.AgentModels[key] = NewQuotaAwareModel(NewGenerateContentConfig(values), values.Model, cloud.GenAIClient.Models, values.RateLimit)
		}
	case ProviderOpenAI:
		if config.Caption.OpenAIAPIKey == "" {
			slog.WarnContext(ctx, "OPENAI_API_KEY not set, captions will use the fallback")
		} else {
			cloud.OpenAIClient = openai.NewClient(config.Caption.OpenAIAPIKey)
		}
	}

	return cloud, nil
}

// NewR2Client returns an S3 client for a Cloudflare R2 account. R2 accepts
// SigV4 with region "auto" and path-style addressing.
func NewR2Client(ctx context.Context, account R2) (*s3.Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion("auto"),
		awsconfig.WithCredentialsProvider(awscredentials.NewStaticCredentialsProvider(account.AccessKey, account.SecretKey, "")),
	)
	if err != nil {
		return nil, err
	}
	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(account.Endpoint())
		o.UsePathStyle = true
	}), nil
}
