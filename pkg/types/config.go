package types

import "time"

// Provider identifies a text-generation backend adapter.
type Provider string

const (
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
	ProviderGemini    Provider = "gemini"
	ProviderStatic    Provider = "static"
)

// BackendConfig holds settings for the generation backend adapter.
type BackendConfig struct {
	// Provider selects the adapter: openai, anthropic, gemini or static.
	Provider Provider `json:"provider" yaml:"provider" mapstructure:"provider"`

	// Model is the model identifier sent with each request.
	Model string `json:"model" yaml:"model" mapstructure:"model"`

	// BaseURL overrides the provider endpoint. OpenAI-compatible services
	// (e.g. a regional chat API) are reached through this field.
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty" mapstructure:"base_url"`

	// APIKey is the authentication key. Falls back to .secrets/ when empty.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`

	// Timeout bounds a single request. The orchestrator enforces none.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// Temperature is the sampling temperature (default 0.7).
	Temperature float64 `json:"temperature" yaml:"temperature" mapstructure:"temperature"`

	// MaxTokens caps the response length (default 2048).
	MaxTokens int `json:"max_tokens" yaml:"max_tokens" mapstructure:"max_tokens"`

	// RateLimitRetries is the number of retries on HTTP 429. Zero disables
	// retrying entirely.
	RateLimitRetries int `json:"rate_limit_retries" yaml:"rate_limit_retries" mapstructure:"rate_limit_retries"`
}

// CacheDriver selects the ResultCache implementation.
type CacheDriver string

const (
	CacheMemory CacheDriver = "memory"
	CacheSQLite CacheDriver = "sqlite"
)

// CacheConfig holds settings for the process-lifetime result cache.
type CacheConfig struct {
	// Driver is memory (default) or sqlite (in-memory database).
	Driver CacheDriver `json:"driver" yaml:"driver" mapstructure:"driver"`

	// CacheDiagnostics controls whether Documents that contain failure
	// placeholders are cached. Off by default so a transient backend failure
	// is retried on the next identical request.
	CacheDiagnostics bool `json:"cache_diagnostics" yaml:"cache_diagnostics" mapstructure:"cache_diagnostics"`
}

// RenderConfig holds output settings.
type RenderConfig struct {
	// OutputDir is where rendered files are written (default "output").
	OutputDir string `json:"output_dir" yaml:"output_dir" mapstructure:"output_dir"`

	// Formats lists the encodings written per run (default text).
	Formats []string `json:"formats" yaml:"formats" mapstructure:"formats"`

	// FooterLabel is the fixed label in the paginated footer.
	FooterLabel string `json:"footer_label" yaml:"footer_label" mapstructure:"footer_label"`
}

// SourceConfig holds settings for decoding uploaded files.
type SourceConfig struct {
	// PDFImage is the container image used to turn PDFs into text.
	PDFImage string `json:"pdf_image" yaml:"pdf_image" mapstructure:"pdf_image"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is debug, info, warn or error (default info).
	Level string `json:"level" yaml:"level" mapstructure:"level"`

	// Development switches to the human-readable console encoder.
	Development bool `json:"development" yaml:"development" mapstructure:"development"`
}

// GenerationConfig groups all settings for a modulegen process.
type GenerationConfig struct {
	// Language is the default output language.
	Language string `json:"language" yaml:"language" mapstructure:"language"`

	Backend BackendConfig `json:"backend" yaml:"backend" mapstructure:"backend"`
	Cache   CacheConfig   `json:"cache" yaml:"cache" mapstructure:"cache"`
	Render  RenderConfig  `json:"render" yaml:"render" mapstructure:"render"`
	Source  SourceConfig  `json:"source" yaml:"source" mapstructure:"source"`
	Logging LoggingConfig `json:"logging" yaml:"logging" mapstructure:"logging"`
}

// Defaults used by WithDefaults.
const (
	DefaultLanguage    = "Portuguese"
	DefaultModel       = "gpt-4o-mini"
	DefaultClaudeModel = "claude-sonnet-4-5-20250929"
	DefaultGeminiModel = "gemini-2.5-flash"
	DefaultTemperature = 0.7
	DefaultMaxTokens   = 2048
	DefaultTimeout     = 120 * time.Second
	DefaultOutputDir   = "output"
	DefaultFooterLabel = "Module Generator"
	DefaultPDFImage    = "markitdown:latest"
)

// WithDefaults returns a copy of c with zero fields replaced by defaults.
func (c GenerationConfig) WithDefaults() GenerationConfig {
	if c.Language == "" {
		c.Language = DefaultLanguage
	}
	if c.Backend.Provider == "" {
		c.Backend.Provider = ProviderOpenAI
	}
	if c.Backend.Model == "" {
		switch c.Backend.Provider {
		case ProviderAnthropic:
			c.Backend.Model = DefaultClaudeModel
		case ProviderGemini:
			c.Backend.Model = DefaultGeminiModel
		default:
			c.Backend.Model = DefaultModel
		}
	}
	if c.Backend.Temperature == 0 {
		c.Backend.Temperature = DefaultTemperature
	}
	if c.Backend.MaxTokens <= 0 {
		c.Backend.MaxTokens = DefaultMaxTokens
	}
	if c.Backend.Timeout <= 0 {
		c.Backend.Timeout = DefaultTimeout
	}
	if c.Cache.Driver == "" {
		c.Cache.Driver = CacheMemory
	}
	if c.Render.OutputDir == "" {
		c.Render.OutputDir = DefaultOutputDir
	}
	if len(c.Render.Formats) == 0 {
		c.Render.Formats = []string{"text"}
	}
	if c.Render.FooterLabel == "" {
		c.Render.FooterLabel = DefaultFooterLabel
	}
	if c.Source.PDFImage == "" {
		c.Source.PDFImage = DefaultPDFImage
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	return c
}
