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

// Package cloud defines the application configuration, loaded from TOML files
// and the process environment, and the container of external service clients.
//
// This file centralizes the configuration structs. NewConfig returns a Config
// holding the defaults of the daily reel job; the TOML files only need to
// name what differs.
//
// Structs:
//   - Pool: Where images and audio clips are found.
//   - Progress: Where the progress record and the run lock live.
//   - Render: The ffmpeg binary and the reel format.
//   - Storage: Where reels are published, for how long links live and how long
//     reels are kept.
//   - Caption: Caption provider, themes, hashtags and prompt.
//   - VertexAiLLMModel: A rate-limited Vertex AI model.
//   - Email: SMTP settings; credentials come from the environment.
//   - BigQueryDataSource: The optional run ledger table.
//   - TopicSubscription: The optional trigger subscription used by `serve`.
//   - Config: The root of all of the above.
package cloud

import (
	"time"

	"github.com/jaycherian/gcp-go-daily-reels/internal/core/model"
	"google.golang.org/genai"
)

// Storage and progress backends.
const (
	BackendFile = "file"
	BackendGCS  = "gcs"
	BackendR2   = "r2"
)

// Caption providers.
const (
	ProviderGenAI  = "genai"
	ProviderOpenAI = "openai"
	ProviderNone   = "none"
)

// DefaultSafetySettings leaves every harm category unblocked. Captions are
// generated from a fixed prompt, never from user input.
var DefaultSafetySettings = []*genai.SafetySetting{
	{
		Category:  genai.HarmCategoryDangerousContent,
		Threshold: genai.HarmBlockThresholdBlockNone,
	},
	{
		Category:  genai.HarmCategoryHarassment,
		Threshold: genai.HarmBlockThresholdBlockNone,
	},
	{
		Category:  genai.HarmCategoryHateSpeech,
		Threshold: genai.HarmBlockThresholdBlockNone,
	},
	{
		Category:  genai.HarmCategorySexuallyExplicit,
		Threshold: genai.HarmBlockThresholdBlockNone,
	},
}

// Pool configures the directories scanned for pairs on every run.
type Pool struct {
	ImagesDir         string   `toml:"images_dir"`          // Directory holding the images.
	AudioDir          string   `toml:"audio_dir"`           // Directory holding the audio clips.
	ImageExtensions   []string `toml:"image_extensions"`    // Accepted image extensions, lower case with dot.
	AudioExtensions   []string `toml:"audio_extensions"`    // Accepted audio extensions, lower case with dot.
	LowStockThreshold int      `toml:"low_stock_threshold"` // Alert when this many pairs or fewer remain.
}

// Progress configures the progress record and the run lock.
type Progress struct {
	Backend  string `toml:"backend"`   // "file" or "gcs".
	Path     string `toml:"path"`      // Record path for the file backend.
	Bucket   string `toml:"bucket"`    // Bucket for the gcs backend.
	Object   string `toml:"object"`    // Object name for the gcs backend.
	LockPath string `toml:"lock_path"` // Lock file guarding run and reset; empty disables locking.
}

// Render configures the transcoder.
type Render struct {
	FFmpegPath     string `toml:"ffmpeg_path"`     // ffmpeg binary, looked up on PATH when not absolute.
	Width          int    `toml:"width"`           // Output width in pixels.
	Height         int    `toml:"height"`          // Output height in pixels.
	VideoCodec     string `toml:"video_codec"`     // e.g. libx264.
	Preset         string `toml:"preset"`          // e.g. veryfast.
	AudioCodec     string `toml:"audio_codec"`     // e.g. aac.
	AudioBitrate   string `toml:"audio_bitrate"`   // e.g. 192k.
	TimeoutSeconds int    `toml:"timeout_seconds"` // Upper bound for one render; 0 means none.
}

// Format returns the reel format described by r.
func (r Render) Format() model.ReelFormat {
	return model.ReelFormat{
		Width:        r.Width,
		Height:       r.Height,
		VideoCodec:   r.VideoCodec,
		Preset:       r.Preset,
		AudioCodec:   r.AudioCodec,
		AudioBitrate: r.AudioBitrate,
	}
}

// R2 holds the Cloudflare R2 account. The values are secrets and are read
// from the environment, never from TOML.
type R2 struct {
	AccountId string `toml:"-"`
	AccessKey string `toml:"-"`
	SecretKey string `toml:"-"`
}

// Endpoint returns the S3-compatible endpoint of the account.
func (r R2) Endpoint() string {
	return "https://" + r.AccountId + ".r2.cloudflarestorage.com"
}

// Storage configures where reels are published.
type Storage struct {
	Backend       string        `toml:"backend"`        // "gcs" or "r2".
	Bucket        string        `toml:"bucket"`         // Destination bucket.
	ObjectPrefix  string        `toml:"object_prefix"`  // Key prefix; keys are <prefix><YYYY-MM-DD>.mp4.
	SignedURLTTL  time.Duration `toml:"signed_url_ttl"` // Lifetime of download links, e.g. "24h".
	RetentionDays int           `toml:"retention_days"` // Reels older than this are deleted; 0 disables cleanup.
	R2            R2            `toml:"-"`
}

// Caption configures caption generation.
type Caption struct {
	Provider     string            `toml:"provider"`      // "genai", "openai" or "none".
	AgentModel   string            `toml:"agent_model"`   // Key into Config.AgentModels for the genai provider.
	OpenAIModel  string            `toml:"openai_model"`  // Model for the openai provider.
	Temperature  float32           `toml:"temperature"`   // Sampling temperature for the openai provider.
	MaxTokens    int               `toml:"max_tokens"`    // Completion limit for the openai provider.
	System       string            `toml:"system"`        // System instruction for the openai provider.
	Themes       []string          `toml:"themes"`        // Themes picked from at random.
	Hashtags     map[string]string `toml:"hashtags"`      // Hashtag block per theme.
	Prompt       string            `toml:"prompt"`        // text/template prompt.
	Signature    string            `toml:"signature"`     // Appended to every caption.
	SeriesLength int               `toml:"series_length"` // Shown as "Day N/<series_length>".
	OpenAIAPIKey string            `toml:"-"`
}

// VertexAiLLMModel configures a Vertex AI large language model.
type VertexAiLLMModel struct {
	Model              string  `toml:"model"`               // Model name.
	SystemInstructions string  `toml:"system_instructions"` // System instructions.
	Temperature        float32 `toml:"temperature"`         // Sampling temperature.
	TopP               float32 `toml:"top_p"`               // Nucleus sampling.
	TopK               float32 `toml:"top_k"`               // Top-k sampling.
	MaxTokens          int32   `toml:"max_tokens"`          // Output token limit.
	OutputFormat       string  `toml:"output_format"`       // Response MIME type, e.g. text/plain.
	RateLimit          int     `toml:"rate_limit"`          // Burst of requests allowed per second.
}

// Email configures SMTP delivery. Credentials and addresses come from the
// environment.
type Email struct {
	Host     string `toml:"host"` // SMTP host, implicit TLS.
	Port     int    `toml:"port"` // SMTP port, e.g. 465.
	Sender   string `toml:"-"`
	Password string `toml:"-"`
	Receiver string `toml:"-"`
}

// Events configures the optional ReelPublished topic.
type Events struct {
	Topic string `toml:"topic"` // Pub/Sub topic id; empty disables events.
}

// BigQueryDataSource configures the optional run ledger.
type BigQueryDataSource struct {
	DatasetName string `toml:"dataset"`   // Dataset; empty disables the ledger.
	RunTable    string `toml:"run_table"` // Table receiving one row per run.
}

// TopicSubscription configures the subscription `serve` listens on for run
// triggers.
type TopicSubscription struct {
	Name             string `toml:"name"`               // Subscription id; empty disables the listener.
	TimeoutInSeconds int    `toml:"timeout_in_seconds"` // Upper bound for one triggered run.
}

// Config is the root configuration of the application.
type Config struct {
	Application struct {
		Name                      string `toml:"name"`                         // Application name, used as service name in telemetry.
		GoogleProjectId           string `toml:"google_project_id"`            // Google Cloud project.
		GoogleLocation            string `toml:"location"`                     // Google Cloud location.
		SignerServiceAccountEmail string `toml:"signer_service_account_email"` // Service account signing GCS URLs without a key file.
		OutputDir                 string `toml:"output_dir"`                   // Where reels are rendered.
	} `toml:"application"`
	Pool        Pool                        `toml:"pool"`
	Progress    Progress                    `toml:"progress"`
	Render      Render                      `toml:"render"`
	Storage     Storage                     `toml:"storage"`
	Caption     Caption                     `toml:"caption"`
	AgentModels map[string]VertexAiLLMModel `toml:"agent_models"` // Vertex AI models keyed by a logical name.
	Email       Email                       `toml:"email"`
	Events      Events                      `toml:"events"`
	Ledger      BigQueryDataSource          `toml:"ledger"`
	Trigger     TopicSubscription           `toml:"trigger"`
	Telemetry   struct {
		Enabled bool `toml:"enabled"` // Export traces and metrics to Google Cloud.
	} `toml:"telemetry"`
	Logging struct {
		Level string `toml:"level"` // debug, info, warn or error.
		File  string `toml:"file"`  // Optional log file next to stdout.
	} `toml:"logging"`
	Server struct {
		Address        string   `toml:"address"`         // Listen address of the status API.
		AllowedOrigins []string `toml:"allowed_origins"` // Browser origins allowed to call the API cross-origin.
		ResetToken     string   `toml:"-"`               // Shared secret for POST /progress/reset; empty disables the route.
	} `toml:"server"`

	// ResetProgress requests a reset before the run; set from RESET_PROGRESS
	// or --reset.
	ResetProgress bool `toml:"-"`
}

// NewConfig returns a Config holding the defaults of the daily reel job.
//
// Outputs:
//   - *Config: The default configuration with its maps initialized.
func NewConfig() *Config {
	format := model.DefaultReelFormat()
	c := &Config{
		Pool: Pool{
			ImagesDir:         "images/sleep",
			AudioDir:          "audio/sleep",
			ImageExtensions:   []string{".jpg", ".jpeg", ".png"},
			AudioExtensions:   []string{".mp3", ".wav", ".m4a"},
			LowStockThreshold: 3,
		},
		Progress: Progress{
			Backend:  BackendFile,
			Path:     ".history.json",
			Object:   "progress/.history.json",
			LockPath: ".reels.lock",
		},
		Render: Render{
			FFmpegPath:   "ffmpeg",
			Width:        format.Width,
			Height:       format.Height,
			VideoCodec:   format.VideoCodec,
			Preset:       format.Preset,
			AudioCodec:   format.AudioCodec,
			AudioBitrate: format.AudioBitrate,
		},
		Storage: Storage{
			Backend:       BackendR2,
			Bucket:        "ig-reels",
			ObjectPrefix:  "reel_",
			SignedURLTTL:  24 * time.Hour,
			RetentionDays: 30,
		},
		Caption: Caption{
			Provider:     ProviderOpenAI,
			AgentModel:   "caption-flash",
			OpenAIModel:  "gpt-4o-mini",
			Temperature:  0.6,
			MaxTokens:    150,
			System:       "You write peaceful, minimal meditation captions.",
			Themes:       []string{"sleep", "healing", "focus"},
			Hashtags:     make(map[string]string),
			Signature:    "— Rufas Sam",
			SeriesLength: 365,
		},
		AgentModels: make(map[string]VertexAiLLMModel),
		Email: Email{
			Host: "smtp.gmail.com",
			Port: 465,
		},
	}
	c.Application.Name = "daily-reels"
	c.Application.OutputDir = "output"
	c.Logging.Level = "info"
	c.Server.Address = "127.0.0.1:8080"
	return c
}
