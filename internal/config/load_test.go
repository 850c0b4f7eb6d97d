package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRemote struct {
	data         []byte
	err          error
	gotNamespace string
}

func (f *fakeRemote) Fetch(_ context.Context, namespace string) ([]byte, error) {
	f.gotNamespace = namespace
	return f.data, f.err
}

func TestMain(m *testing.M) {
	// Shield the suite from configuration the host environment happens to
	// carry (developer shells commonly export GITHUB_TOKEN).
	for _, name := range []string{
		"TODOIST_API_KEY", "GITHUB_TOKEN", "GITHUB_USERNAME", "GITHUB_REPO_PATH",
		"DATABASE_DSN", "LLM_PROVIDER", "DISCORD_BOT_TOKEN", "JMAP_API_KEY",
		EnvConfigFile, EnvRemoteURL,
	} {
		os.Unsetenv(name)
	}

	os.Exit(m.Run())
}

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_PrecedenceFileOverEnvOverRemote(t *testing.T) {
	path := writeConfigFile(t, "todoist:\n  api_key: file-key\n")
	t.Setenv("TODOIST_API_KEY", "env-key")
	t.Setenv("TODOIST_SECTION_NAME", "env-section")
	remote := &fakeRemote{data: []byte(`{"todoist":{"api_key":"remote-key","section_name":"remote-section","ideated_label":"remote-label"}}`)}

	cfg, err := Load(context.Background(), WithFile(path), WithRemote(remote))
	require.NoError(t, err)
	require.NotNil(t, cfg.Todoist)

	// file wins over both environment and remote
	assert.Equal(t, "file-key", cfg.Todoist.APIKey)
	// environment wins over remote for keys the file does not supply
	assert.Equal(t, "env-section", cfg.Todoist.SectionName)
	// remote supplies keys nothing else does
	assert.Equal(t, "remote-label", cfg.Todoist.IdeatedLabel)
}

func TestLoad_RemoteOnlyKeyAppears(t *testing.T) {
	remote := &fakeRemote{data: []byte(`{"database":{"dsn":"postgres://remote/db"}}`)}

	cfg, err := Load(context.Background(), WithRemote(remote))
	require.NoError(t, err)
	require.NotNil(t, cfg.Database)
	assert.Equal(t, "postgres://remote/db", cfg.Database.DSN)
	assert.Equal(t, DefaultNamespace, remote.gotNamespace)
}

func TestLoad_EnvPrefixMapsToSectionField(t *testing.T) {
	t.Setenv("TODOIST_API_KEY", "abc123")

	cfg, err := Load(context.Background(), WithoutRemote())
	require.NoError(t, err)
	require.NotNil(t, cfg.Todoist)
	assert.Equal(t, "abc123", cfg.Todoist.APIKey)
}

func TestLoad_UnrecognizedEnvVariablesIgnored(t *testing.T) {
	t.Setenv("SOMETHING_API_KEY", "ignored")

	cfg, err := Load(context.Background(), WithoutRemote())
	require.NoError(t, err)
	assert.Empty(t, cfg.EnabledSections())
}

func TestLoad_DefaultsAppliedToPresentSectionsOnly(t *testing.T) {
	t.Setenv("TODOIST_API_KEY", "abc123")

	cfg, err := Load(context.Background(), WithoutRemote())
	require.NoError(t, err)
	require.NotNil(t, cfg.Todoist)
	assert.Equal(t, "MyProject", cfg.Todoist.ProjectName)
	assert.Equal(t, "Ideas", cfg.Todoist.SectionName)
	assert.Equal(t, "ideated", cfg.Todoist.IdeatedLabel)

	// absent sections stay absent instead of materializing from defaults
	assert.Nil(t, cfg.JMAP)
	assert.Nil(t, cfg.GitHub)
}

func TestLoad_CoercionFailureOmitsOnlyOwningSection(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "anthropic")
	t.Setenv("LLM_ANTHROPIC_API_KEY", "sk-test")
	t.Setenv("LLM_ANTHROPIC_MAX_TOKENS", "not-a-number")
	t.Setenv("TODOIST_API_KEY", "abc123")

	cfg, err := Load(context.Background(), WithoutRemote())
	require.NoError(t, err)

	assert.Nil(t, cfg.LLM, "section with failed coercion must be omitted")
	require.NotNil(t, cfg.Todoist, "unrelated sections must resolve normally")

	require.NotEmpty(t, cfg.Diagnostics)
	var found bool
	for _, d := range cfg.Diagnostics {
		if d.Section == SectionLLM && d.Severity == SeverityError {
			found = true
		}
	}
	assert.True(t, found, "expected an error diagnostic for the llm section, got %v", cfg.Diagnostics)
}

func TestLoad_CoercionFailureBeatsFileValues(t *testing.T) {
	// The poisoned section is omitted even when the file supplies a fully
	// valid version of it.
	path := writeConfigFile(t, `
llm:
  provider: anthropic
  anthropic:
    api_key: file-key
`)
	t.Setenv("LLM_ANTHROPIC_TEMPERATURE", "warm")

	cfg, err := Load(context.Background(), WithFile(path), WithoutRemote())
	require.NoError(t, err)
	assert.Nil(t, cfg.LLM)
	require.NotEmpty(t, cfg.Diagnostics)
	assert.Equal(t, SectionLLM, cfg.Diagnostics[0].Section)
}

func TestLoad_MalformedFileIsFatal(t *testing.T) {
	path := writeConfigFile(t, "todoist: [unclosed\n")

	cfg, err := Load(context.Background(), WithFile(path), WithoutRemote())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformedFile)
	assert.Contains(t, err.Error(), path, "error must name the offending file")
	assert.Nil(t, cfg)
}

func TestLoad_ExplicitMissingFileIsFatal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope.yaml")

	cfg, err := Load(context.Background(), WithFile(path), WithoutRemote())
	require.Error(t, err)
	assert.Nil(t, cfg)
}

func TestLoad_MissingDefaultFileIsSkipped(t *testing.T) {
	cfg, err := Load(context.Background(), WithoutRemote())
	require.NoError(t, err)
	assert.Empty(t, cfg.EnabledSections())
	assert.Empty(t, cfg.Diagnostics)
}

func TestLoad_FilePathFromEnvironment(t *testing.T) {
	path := writeConfigFile(t, "discord:\n  bot_token: tok\n")
	t.Setenv(EnvConfigFile, path)

	cfg, err := Load(context.Background(), WithoutRemote())
	require.NoError(t, err)
	require.NotNil(t, cfg.Discord)
	assert.Equal(t, "tok", cfg.Discord.BotToken)
}

func TestLoad_UnreachableRemoteMatchesEmptyRemote(t *testing.T) {
	t.Setenv("TODOIST_API_KEY", "abc123")
	remote := &fakeRemote{err: errors.New("connection refused")}

	withBrokenRemote, err := Load(context.Background(), WithRemote(remote))
	require.NoError(t, err, "unreachable remote must not fail the load")

	withoutRemote, err := Load(context.Background(), WithoutRemote())
	require.NoError(t, err)

	// equivalent resolution apart from the recorded warning
	assert.Equal(t, withoutRemote.Todoist, withBrokenRemote.Todoist)
	assert.Equal(t, withoutRemote.EnabledSections(), withBrokenRemote.EnabledSections())

	require.Len(t, withBrokenRemote.Diagnostics, 1)
	assert.Equal(t, SeverityWarn, withBrokenRemote.Diagnostics[0].Severity)
}

func TestLoad_MalformedRemoteDocumentIsRecoverable(t *testing.T) {
	t.Setenv("TODOIST_API_KEY", "abc123")
	remote := &fakeRemote{data: []byte(`{not json`)}

	cfg, err := Load(context.Background(), WithRemote(remote))
	require.NoError(t, err)
	require.NotNil(t, cfg.Todoist)
	require.Len(t, cfg.Diagnostics, 1)
	assert.Equal(t, SeverityWarn, cfg.Diagnostics[0].Severity)
}

func TestLoad_Idempotent(t *testing.T) {
	path := writeConfigFile(t, "todoist:\n  api_key: file-key\njmap:\n  api_key: jmap-key\n")
	t.Setenv("DATABASE_DSN", "postgres://localhost/agent")
	remote := &fakeRemote{data: []byte(`{"github":{"token":"gh-token"}}`)}

	first, err := Load(context.Background(), WithFile(path), WithRemote(remote))
	require.NoError(t, err)
	second, err := Load(context.Background(), WithFile(path), WithRemote(remote))
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestLoad_IncompleteSectionOmittedWithDiagnostic(t *testing.T) {
	// project_name alone cannot satisfy todoist's required api_key
	path := writeConfigFile(t, "todoist:\n  project_name: Side\n")

	cfg, err := Load(context.Background(), WithFile(path), WithoutRemote())
	require.NoError(t, err)
	assert.Nil(t, cfg.Todoist)

	require.Len(t, cfg.Diagnostics, 1)
	d := cfg.Diagnostics[0]
	assert.Equal(t, SectionTodoist, d.Section)
	assert.Equal(t, "api_key", d.Key)
	assert.Equal(t, SeverityError, d.Severity)
	assert.Equal(t, "todoist.api_key: required field missing", d.String())
}

func TestLoad_MandatorySectionAbsentIsFatal(t *testing.T) {
	_, err := Load(context.Background(), WithoutRemote(), WithMandatory(SectionDatabase))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMandatorySection)
	assert.Contains(t, err.Error(), SectionDatabase)
}

func TestLoad_MandatorySectionPresentSucceeds(t *testing.T) {
	t.Setenv("DATABASE_DSN", "postgres://localhost/agent")

	cfg, err := Load(context.Background(), WithoutRemote(), WithMandatory(SectionDatabase))
	require.NoError(t, err)
	require.NotNil(t, cfg.Database)
}

func TestLoad_MandatoryPoisonedSectionIsFatal(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "anthropic")
	t.Setenv("LLM_ANTHROPIC_MAX_TOKENS", "nope")

	_, err := Load(context.Background(), WithoutRemote(), WithMandatory(SectionLLM))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMandatorySection)
}

func TestLoad_UnknownMandatorySection(t *testing.T) {
	_, err := Load(context.Background(), WithoutRemote(), WithMandatory("prefect"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownSection)
}

func TestLoad_LLMAnthropicSelected(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "anthropic")
	t.Setenv("LLM_ANTHROPIC_API_KEY", "sk-test")

	cfg, err := Load(context.Background(), WithoutRemote())
	require.NoError(t, err)
	require.NotNil(t, cfg.LLM)
	assert.Equal(t, LLMProviderAnthropic, cfg.LLM.Provider)

	require.NotNil(t, cfg.LLM.Anthropic)
	assert.Equal(t, "sk-test", cfg.LLM.Anthropic.APIKey)
	assert.Equal(t, "claude-3-sonnet-20240229", cfg.LLM.Anthropic.Model)
	assert.Equal(t, 2000, cfg.LLM.Anthropic.MaxTokens)
	assert.InDelta(t, 0.7, cfg.LLM.Anthropic.Temperature, 1e-9)

	assert.Nil(t, cfg.LLM.Gemini, "unconfigured backend must stay absent")
}

func TestLoad_ExplicitZeroKeptOverDefault(t *testing.T) {
	path := writeConfigFile(t, `
llm:
  provider: anthropic
  anthropic:
    api_key: a-key
    temperature: 0
`)

	cfg, err := Load(context.Background(), WithFile(path), WithoutRemote())
	require.NoError(t, err)
	require.NotNil(t, cfg.LLM)
	require.NotNil(t, cfg.LLM.Anthropic)

	assert.Zero(t, cfg.LLM.Anthropic.Temperature, "a supplied zero is a value, not an absence")
	assert.Equal(t, 2000, cfg.LLM.Anthropic.MaxTokens, "fields no source set still take defaults")
}

func TestLoad_ExplicitZeroInFileBeatsEnv(t *testing.T) {
	path := writeConfigFile(t, `
llm:
  provider: anthropic
  anthropic:
    api_key: a-key
    temperature: 0
    max_tokens: 0
`)
	t.Setenv("LLM_ANTHROPIC_TEMPERATURE", "0.3")
	t.Setenv("LLM_ANTHROPIC_MAX_TOKENS", "900")

	cfg, err := Load(context.Background(), WithFile(path), WithoutRemote())
	require.NoError(t, err)
	require.NotNil(t, cfg.LLM)
	require.NotNil(t, cfg.LLM.Anthropic)

	assert.Zero(t, cfg.LLM.Anthropic.Temperature)
	assert.Zero(t, cfg.LLM.Anthropic.MaxTokens)
}

func TestLoad_LLMGeminiSelectedCarriesValidOtherBackend(t *testing.T) {
	path := writeConfigFile(t, `
llm:
  provider: gemini
  gemini:
    api_key: g-key
  anthropic:
    api_key: a-key
    max_tokens: 512
`)

	cfg, err := Load(context.Background(), WithFile(path), WithoutRemote())
	require.NoError(t, err)
	require.NotNil(t, cfg.LLM)
	assert.Equal(t, LLMProviderGemini, cfg.LLM.Provider)

	require.NotNil(t, cfg.LLM.Gemini)
	assert.Equal(t, "g-key", cfg.LLM.Gemini.APIKey)
	assert.Equal(t, "gemini-2.0-flash-thinking-exp", cfg.LLM.Gemini.Model)

	require.NotNil(t, cfg.LLM.Anthropic)
	assert.Equal(t, 512, cfg.LLM.Anthropic.MaxTokens)
}

func TestLoad_LLMSelectedBackendMissingKeyOmitsSection(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "gemini")
	t.Setenv("LLM_GEMINI_MODEL", "gemini-pro")

	cfg, err := Load(context.Background(), WithoutRemote())
	require.NoError(t, err)
	assert.Nil(t, cfg.LLM)

	require.NotEmpty(t, cfg.Diagnostics)
	assert.Equal(t, "gemini.api_key", cfg.Diagnostics[0].Key)
}

func TestLoad_LLMUnsupportedProviderOmitsSection(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "openai")

	cfg, err := Load(context.Background(), WithoutRemote())
	require.NoError(t, err)
	assert.Nil(t, cfg.LLM)

	require.Len(t, cfg.Diagnostics, 1)
	assert.Equal(t, "provider", cfg.Diagnostics[0].Key)
	assert.Contains(t, cfg.Diagnostics[0].Message, "openai")
}

func TestLoad_NamespaceOverride(t *testing.T) {
	remote := &fakeRemote{data: []byte(`{}`)}

	_, err := Load(context.Background(), WithRemote(remote), WithNamespace("staging"))
	require.NoError(t, err)
	assert.Equal(t, "staging", remote.gotNamespace)
}

func TestEnabledSections_Order(t *testing.T) {
	path := writeConfigFile(t, `
database:
  dsn: postgres://localhost/agent
todoist:
  api_key: abc
discord:
  bot_token: tok
`)

	cfg, err := Load(context.Background(), WithFile(path), WithoutRemote())
	require.NoError(t, err)
	assert.Equal(t, []string{SectionTodoist, SectionDiscord, SectionDatabase}, cfg.EnabledSections())
}
