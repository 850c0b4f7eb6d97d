package config

import "reflect"

// sections is the raw mapping shape shared by all three layers. Every
// section is a value struct so that zero-ness doubles as "this source
// contributed nothing for this section". Section prefixes for the
// environment layer live in parseEnvLayer, which parses each section
// independently.
type sections struct {
	Todoist  todoistSection `yaml:"todoist" json:"todoist"`
	GitHub   githubSection  `yaml:"github" json:"github"`
	LLM      llmSection     `yaml:"llm" json:"llm"`
	JMAP     jmapSection    `yaml:"jmap" json:"jmap"`
	Discord  DiscordConfig  `yaml:"discord" json:"discord"`
	Database DatabaseConfig `yaml:"database" json:"database"`
}

// Raw section shapes. Fields that carry a default are pointers so that an
// explicitly supplied zero value ("", 0, 0.0) stays distinguishable from an
// unset field: the layer merge keeps a non-nil pointer from a higher layer,
// and materialize substitutes the default only for nil. Required fields have
// no default and stay plain values.

type todoistSection struct {
	APIKey       string  `env:"API_KEY" yaml:"api_key" json:"api_key"`
	ProjectName  *string `env:"PROJECT_NAME" yaml:"project_name" json:"project_name"`
	SectionName  *string `env:"SECTION_NAME" yaml:"section_name" json:"section_name"`
	IdeatedLabel *string `env:"IDEATED_LABEL" yaml:"ideated_label" json:"ideated_label"`
}

func (s todoistSection) materialize() TodoistConfig {
	return TodoistConfig{
		APIKey:       s.APIKey,
		ProjectName:  valueOr(s.ProjectName, todoistDefaults.ProjectName),
		SectionName:  valueOr(s.SectionName, todoistDefaults.SectionName),
		IdeatedLabel: valueOr(s.IdeatedLabel, todoistDefaults.IdeatedLabel),
	}
}

type githubSection struct {
	Token    string  `env:"TOKEN" yaml:"token" json:"token"`
	Username string  `env:"USERNAME" yaml:"username" json:"username"`
	RepoPath *string `env:"REPO_PATH" yaml:"repo_path" json:"repo_path"`
}

func (s githubSection) materialize() GitHubConfig {
	return GitHubConfig{
		Token:    s.Token,
		Username: s.Username,
		RepoPath: valueOr(s.RepoPath, githubDefaults.RepoPath),
	}
}

// llmSection is the raw shape of the llm section. The resolved [LLMConfig]
// replaces the backend value structs with presence pointers.
type llmSection struct {
	Provider  string           `env:"PROVIDER" yaml:"provider" json:"provider"`
	Anthropic anthropicSection `envPrefix:"ANTHROPIC_" yaml:"anthropic" json:"anthropic"`
	Gemini    geminiSection    `envPrefix:"GEMINI_" yaml:"gemini" json:"gemini"`
}

type anthropicSection struct {
	APIKey      string   `env:"API_KEY" yaml:"api_key" json:"api_key"`
	Model       *string  `env:"MODEL" yaml:"model" json:"model"`
	MaxTokens   *int     `env:"MAX_TOKENS" yaml:"max_tokens" json:"max_tokens"`
	Temperature *float64 `env:"TEMPERATURE" yaml:"temperature" json:"temperature"`
}

func (s anthropicSection) materialize() AnthropicConfig {
	return AnthropicConfig{
		APIKey:      s.APIKey,
		Model:       valueOr(s.Model, anthropicDefaults.Model),
		MaxTokens:   valueOr(s.MaxTokens, anthropicDefaults.MaxTokens),
		Temperature: valueOr(s.Temperature, anthropicDefaults.Temperature),
	}
}

type geminiSection struct {
	APIKey string  `env:"API_KEY" yaml:"api_key" json:"api_key"`
	Model  *string `env:"MODEL" yaml:"model" json:"model"`
}

func (s geminiSection) materialize() GeminiConfig {
	return GeminiConfig{
		APIKey: s.APIKey,
		Model:  valueOr(s.Model, geminiDefaults.Model),
	}
}

type jmapSection struct {
	APIKey            string  `env:"API_KEY" yaml:"api_key" json:"api_key"`
	ServerURL         *string `env:"SERVER_URL" yaml:"server_url" json:"server_url"`
	UserEmailAddress  string  `env:"USER_EMAIL_ADDRESS" yaml:"user_email_address" json:"user_email_address"`
	AgentEmailAddress string  `env:"AGENT_EMAIL_ADDRESS" yaml:"agent_email_address" json:"agent_email_address"`
	InboxFolder       *string `env:"INBOX_FOLDER" yaml:"inbox_folder" json:"inbox_folder"`
}

func (s jmapSection) materialize() JMAPConfig {
	return JMAPConfig{
		APIKey:            s.APIKey,
		ServerURL:         valueOr(s.ServerURL, jmapDefaults.ServerURL),
		UserEmailAddress:  s.UserEmailAddress,
		AgentEmailAddress: s.AgentEmailAddress,
		InboxFolder:       valueOr(s.InboxFolder, jmapDefaults.InboxFolder),
	}
}

// Per-section defaults, substituted during materialize for fields no source
// supplied. Values mirror the documented defaults of the generated agent
// projects.
var (
	todoistDefaults = TodoistConfig{
		ProjectName:  "MyProject",
		SectionName:  "Ideas",
		IdeatedLabel: "ideated",
	}

	githubDefaults = GitHubConfig{
		RepoPath: "./repos",
	}

	anthropicDefaults = AnthropicConfig{
		Model:       "claude-3-sonnet-20240229",
		MaxTokens:   2000,
		Temperature: 0.7,
	}

	geminiDefaults = GeminiConfig{
		Model: "gemini-2.0-flash-thinking-exp",
	}

	jmapDefaults = JMAPConfig{
		ServerURL:   "https://api.fastmail.com",
		InboxFolder: "Inbox",
	}
)

// valueOr dereferences p, falling back to def when no source set the field.
func valueOr[T any](p *T, def T) T {
	if p != nil {
		return *p
	}

	return def
}

// isZero reports whether v is the zero value of its type. Used to decide
// whether any source contributed values to a section.
func isZero(v any) bool {
	return reflect.ValueOf(v).IsZero()
}
