package types

import "time"

// HTTPConfig holds shared HTTP settings used by components that make
// network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout. Generation calls ignore it;
	// they are bounded by GenerationConfig.CallTimeout instead.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "evidence-engine/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// Effort is the reasoning-effort hint passed to the generation service.
type Effort string

const (
	EffortLow    Effort = "low"
	EffortMedium Effort = "medium"
	EffortHigh   Effort = "high"
)

// GenerationConfig holds settings for calls to the generation service.
// Per prd003-generation R1.2, R5.1-R5.4.
type GenerationConfig struct {
	HTTPConfig `yaml:",inline"`

	// Model is the generation model identifier.
	Model string `json:"model" yaml:"model"`

	// APIKey is the authentication key for the generation service.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// Effort is the reasoning-effort hint (default medium).
	Effort Effort `json:"effort" yaml:"effort"`

	// CallTimeout is the hard wall-clock deadline per generation call
	// (default 5m). On expiry the in-flight call is aborted.
	CallTimeout time.Duration `json:"call_timeout" yaml:"call_timeout"`

	// MaxOutputTokens caps the output length per call (default 8192).
	MaxOutputTokens int `json:"max_output_tokens" yaml:"max_output_tokens"`

	// MaxRetries is the number of retry attempts on rate limiting (default 5).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// LibraryConfig holds settings for the entry library.
// Per prd008-library R1.2.
type LibraryConfig struct {
	// LibraryDir is the directory holding the library database and exports.
	LibraryDir string `json:"library_dir" yaml:"library_dir"`

	// Capacity is the maximum number of entries (default 50). Inserting a
	// new entry at capacity evicts the oldest by insertion order.
	Capacity int `json:"capacity" yaml:"capacity"`
}

// SourceConfig holds settings for the source-document collaborator.
type SourceConfig struct {
	// SourcesDir is the directory holding registered source documents:
	// [slug].txt extracted text next to [slug].yaml metadata.
	SourcesDir string `json:"sources_dir" yaml:"sources_dir"`
}

// PipelineConfig groups all stage configurations for the pipeline.
type PipelineConfig struct {
	Generation GenerationConfig `json:"generation" yaml:"generation"`
	Library    LibraryConfig    `json:"library" yaml:"library"`
	Sources    SourceConfig     `json:"sources" yaml:"sources"`

	// DeepDive enables the optional thesis-deep-dive stage after
	// verified-claims.
	DeepDive bool `json:"deep_dive" yaml:"deep_dive"`
}
