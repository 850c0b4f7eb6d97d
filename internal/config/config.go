// SPDX-License-Identifier: Apache-2.0

package config

import "context"

// Names of the supported configuration sections. Each corresponds to one
// external integration; a section being absent from [ResolvedConfig] means
// the integration is disabled.
const (
	SectionTodoist  = "todoist"
	SectionGitHub   = "github"
	SectionLLM      = "llm"
	SectionJMAP     = "jmap"
	SectionDiscord  = "discord"
	SectionDatabase = "database"
)

// SectionNames lists every supported section in resolution order.
var SectionNames = []string{
	SectionTodoist,
	SectionGitHub,
	SectionLLM,
	SectionJMAP,
	SectionDiscord,
	SectionDatabase,
}

// Well-known environment variables and defaults used to locate the
// configuration sources themselves.
const (
	// EnvConfigFile names an environment variable that overrides the path
	// to the local configuration file.
	EnvConfigFile = "AGENTCONF_CONFIG"

	// EnvRemoteURL names an environment variable holding the base URL of
	// the remote key-value store. When unset and no remote source was
	// supplied explicitly, the remote layer is empty.
	EnvRemoteURL = "AGENTCONF_REMOTE_URL"

	// DefaultFileName is the well-known local file consulted when no
	// explicit path was given.
	DefaultFileName = "config.yaml"

	// DefaultNamespace is the key-value namespace queried on the remote
	// store.
	DefaultNamespace = "agentconf"
)

// TodoistConfig holds settings for the Todoist task provider.
type TodoistConfig struct {
	// APIKey authenticates against the Todoist API. Required.
	// Env: TODOIST_API_KEY
	APIKey string `yaml:"api_key" json:"api_key" validate:"required"`

	// ProjectName is the default project tasks are read from.
	// Env: TODOIST_PROJECT_NAME
	ProjectName string `yaml:"project_name" json:"project_name"`

	// SectionName is the default section within ProjectName.
	// Env: TODOIST_SECTION_NAME
	SectionName string `yaml:"section_name" json:"section_name"`

	// IdeatedLabel is the label applied to tasks the agent has processed.
	// Env: TODOIST_IDEATED_LABEL
	IdeatedLabel string `yaml:"ideated_label" json:"ideated_label"`
}

// GitHubConfig holds settings for the GitHub integration.
type GitHubConfig struct {
	// Token is the GitHub API token. Required.
	// Env: GITHUB_TOKEN
	Token string `yaml:"token" json:"token" validate:"required"`

	// Username is the GitHub account the agent operates as.
	// Env: GITHUB_USERNAME
	Username string `yaml:"username" json:"username"`

	// RepoPath is the local directory repositories are cloned into.
	// Env: GITHUB_REPO_PATH
	RepoPath string `yaml:"repo_path" json:"repo_path"`
}

// AnthropicConfig holds settings for the Anthropic LLM backend.
type AnthropicConfig struct {
	// APIKey authenticates against the Anthropic API. Required when the
	// llm section selects the "anthropic" provider.
	// Env: LLM_ANTHROPIC_API_KEY
	APIKey string `yaml:"api_key" json:"api_key" validate:"required"`

	// Model is the model identifier used for completions.
	// Env: LLM_ANTHROPIC_MODEL
	Model string `yaml:"model" json:"model"`

	// MaxTokens caps the response length.
	// Env: LLM_ANTHROPIC_MAX_TOKENS
	MaxTokens int `yaml:"max_tokens" json:"max_tokens"`

	// Temperature controls sampling randomness (0.0-1.0).
	// Env: LLM_ANTHROPIC_TEMPERATURE
	Temperature float64 `yaml:"temperature" json:"temperature"`
}

// GeminiConfig holds settings for the Gemini LLM backend.
type GeminiConfig struct {
	// APIKey authenticates against the Gemini API. Required when the llm
	// section selects the "gemini" provider.
	// Env: LLM_GEMINI_API_KEY
	APIKey string `yaml:"api_key" json:"api_key" validate:"required"`

	// Model is the model identifier used for completions.
	// Env: LLM_GEMINI_MODEL
	Model string `yaml:"model" json:"model"`
}

// Supported values of the llm section's provider discriminator.
const (
	LLMProviderAnthropic = "anthropic"
	LLMProviderGemini    = "gemini"
)

// LLMConfig is the resolved llm section. Provider selects the active
// backend; exactly the selected backend's sub-configuration is guaranteed to
// be non-nil, the other is non-nil only when its own settings were supplied
// and valid.
type LLMConfig struct {
	// Provider is "anthropic" or "gemini".
	// Env: LLM_PROVIDER
	Provider string `json:"provider"`

	// Anthropic holds the Anthropic backend settings.
	Anthropic *AnthropicConfig `json:"anthropic,omitempty"`

	// Gemini holds the Gemini backend settings.
	Gemini *GeminiConfig `json:"gemini,omitempty"`
}

// JMAPConfig holds settings for the JMAP (Fastmail) mail provider.
type JMAPConfig struct {
	// APIKey is the JMAP API token. Required.
	// Env: JMAP_API_KEY
	APIKey string `yaml:"api_key" json:"api_key" validate:"required"`

	// ServerURL is the JMAP session endpoint.
	// Env: JMAP_SERVER_URL
	ServerURL string `yaml:"server_url" json:"server_url"`

	// UserEmailAddress is the address the agent sends reports to.
	// Env: JMAP_USER_EMAIL_ADDRESS
	UserEmailAddress string `yaml:"user_email_address" json:"user_email_address"`

	// AgentEmailAddress is the identity the agent sends from.
	// Env: JMAP_AGENT_EMAIL_ADDRESS
	AgentEmailAddress string `yaml:"agent_email_address" json:"agent_email_address"`

	// InboxFolder is the mailbox the agent reads unread mail from.
	// Env: JMAP_INBOX_FOLDER
	InboxFolder string `yaml:"inbox_folder" json:"inbox_folder"`
}

// DiscordConfig holds settings for the Discord chat provider.
type DiscordConfig struct {
	// BotToken authenticates the agent's bot account. Required.
	// Env: DISCORD_BOT_TOKEN
	BotToken string `env:"BOT_TOKEN" yaml:"bot_token" json:"bot_token" validate:"required"`

	// ChannelID is the default channel messages are posted to.
	// Env: DISCORD_CHANNEL_ID
	ChannelID string `env:"CHANNEL_ID" yaml:"channel_id" json:"channel_id"`
}

// DatabaseConfig holds connection settings for the agent's database.
type DatabaseConfig struct {
	// DSN is the PostgreSQL Data Source Name. Required.
	// Env: DATABASE_DSN
	DSN string `env:"DSN" yaml:"dsn" json:"dsn" validate:"required"`
}

// ResolvedConfig is the final, validated configuration aggregate. Each
// section pointer is nil when that integration is disabled. Consumers treat
// the value as immutable after hand-off; the resolver never retains or
// mutates a returned config.
type ResolvedConfig struct {
	Todoist  *TodoistConfig  `json:"todoist,omitempty"`
	GitHub   *GitHubConfig   `json:"github,omitempty"`
	LLM      *LLMConfig      `json:"llm,omitempty"`
	JMAP     *JMAPConfig     `json:"jmap,omitempty"`
	Discord  *DiscordConfig  `json:"discord,omitempty"`
	Database *DatabaseConfig `json:"database,omitempty"`

	// Diagnostics records every non-fatal issue encountered during the
	// load: an unreachable remote store, coercion failures, omitted
	// sections. Never silently dropped.
	Diagnostics []Diagnostic `json:"diagnostics,omitempty"`
}

// EnabledSections returns the names of all present sections in resolution
// order.
func (c *ResolvedConfig) EnabledSections() []string {
	var enabled []string
	for _, name := range SectionNames {
		if c.has(name) {
			enabled = append(enabled, name)
		}
	}

	return enabled
}

func (c *ResolvedConfig) has(section string) bool {
	switch section {
	case SectionTodoist:
		return c.Todoist != nil
	case SectionGitHub:
		return c.GitHub != nil
	case SectionLLM:
		return c.LLM != nil
	case SectionJMAP:
		return c.JMAP != nil
	case SectionDiscord:
		return c.Discord != nil
	case SectionDatabase:
		return c.Database != nil
	default:
		return false
	}
}

// Load resolves, merges, and validates the configuration from all available
// sources in the following priority order (first source wins for any field
// it supplies):
//  1. Local YAML file
//  2. Environment variables
//  3. Remote key-value store
//
// Load is a stateless single-pass transform: given identical source states
// it returns field-for-field equal configs, and it caches nothing across
// calls. ctx bounds the remote fetch only.
//
// Returns a fully populated *ResolvedConfig, or an error if the local file
// is malformed or a section designated mandatory via [WithMandatory] could
// not be resolved.
func Load(ctx context.Context, opts ...Option) (*ResolvedConfig, error) {
	return newResolver(opts...).
		withFile().
		withEnv().
		withRemote(ctx).
		resolve()
}
