// SPDX-License-Identifier: Apache-2.0

package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"

	"dario.cat/mergo"
	"github.com/google/uuid"

	"github.com/lherron/agentconf/internal/logger"
	"github.com/lherron/agentconf/internal/remotekv"
)

// resolver assembles one [ResolvedConfig]. It is created per Load call and
// holds no state beyond it.
type resolver struct {
	filePath      string
	remote        RemoteSource
	disableRemote bool
	namespace     string
	mandatory     []string
	log           *logger.Logger

	// layers in descending precedence: file, environment, remote.
	layers []*sections

	// poisoned maps section name to the reason its environment values
	// failed coercion; poisoned sections are omitted outright.
	poisoned map[string]string

	diags []Diagnostic
	err   error
}

func newResolver(opts ...Option) *resolver {
	r := &resolver{
		namespace: DefaultNamespace,
		log:       logger.Nop(),
		poisoned:  make(map[string]string),
	}

	for _, opt := range opts {
		opt(r)
	}

	// One trace id per load so every log line of a resolution can be
	// correlated.
	r.log = &logger.Logger{Logger: r.log.With().Str("load_id", uuid.NewString()).Logger()}

	return r
}

// withFile loads the highest-precedence layer. The default well-known file
// may be absent; an explicitly named one (option or AGENTCONF_CONFIG) may
// not. A file that exists but does not parse is always fatal.
func (r *resolver) withFile() *resolver {
	if r.err != nil {
		return r
	}

	path := r.filePath
	explicit := path != ""
	if !explicit {
		if envPath := os.Getenv(EnvConfigFile); envPath != "" {
			path, explicit = envPath, true
		} else {
			path = DefaultFileName
		}
	}

	cfg, err := parseFile(path)
	switch {
	case err == nil:
		r.log.Debug().Str("path", path).Msg("loaded file layer")
		r.layers = append(r.layers, cfg)
	case errors.Is(err, fs.ErrNotExist) && !explicit:
		r.log.Debug().Str("path", path).Msg("no config file present, skipping file layer")
	case errors.Is(err, ErrMalformedFile):
		r.err = errors.Join(r.err, err)
	default:
		r.err = errors.Join(r.err, fmt.Errorf("error reading config file %q: %w", path, err))
	}

	return r
}

func (r *resolver) withEnv() *resolver {
	if r.err != nil {
		return r
	}

	r.layers = append(r.layers, r.parseEnvLayer())
	return r
}

// withRemote loads the lowest-precedence layer. The remote store is
// best-effort: every failure mode degrades to an empty layer with a warning
// diagnostic, never a fatal error. When no source was supplied and
// AGENTCONF_REMOTE_URL is unset, the layer is simply disabled.
func (r *resolver) withRemote(ctx context.Context) *resolver {
	if r.err != nil || r.disableRemote {
		return r
	}

	src := r.remote
	if src == nil {
		baseURL := os.Getenv(EnvRemoteURL)
		if baseURL == "" {
			return r
		}

		client, err := remotekv.NewClient(remotekv.ClientConfig{BaseURL: baseURL})
		if err != nil {
			r.warnRemote(fmt.Sprintf("remote layer skipped: %v", err))
			return r
		}
		src = client
	}

	data, err := src.Fetch(ctx, r.namespace)
	if err != nil {
		r.warnRemote(fmt.Sprintf("remote layer unavailable, continuing without it: %v", err))
		return r
	}

	cfg, err := decodeRemote(data)
	if err != nil {
		r.warnRemote(fmt.Sprintf("remote layer discarded: %v", err))
		return r
	}

	r.log.Debug().Str("namespace", r.namespace).Msg("loaded remote layer")
	r.layers = append(r.layers, cfg)
	return r
}

func (r *resolver) warnRemote(msg string) {
	r.log.Warn().Msg(msg)
	r.diags = append(r.diags, Diagnostic{Severity: SeverityWarn, Message: msg})
}

// resolve merges the collected layers key-by-key (earlier layers win) and
// constructs the typed section objects.
func (r *resolver) resolve() (*ResolvedConfig, error) {
	if r.err != nil {
		return nil, fmt.Errorf("error resolving config: %w", r.err)
	}

	for _, name := range r.mandatory {
		if !slices.Contains(SectionNames, name) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownSection, name)
		}
	}

	// WithoutDereference keeps a non-nil pointer from a higher layer intact
	// even when it points at a zero value, so an explicitly configured "",
	// 0 or 0.0 still wins over lower layers.
	merged := new(sections)
	for _, layer := range r.layers {
		if err := mergo.Merge(merged, layer, mergo.WithoutDereference); err != nil {
			return nil, fmt.Errorf("error merging configuration layers: %w", err)
		}
	}

	cfg := &ResolvedConfig{
		Todoist:  resolveSection(r, SectionTodoist, merged.Todoist, todoistSection.materialize),
		GitHub:   resolveSection(r, SectionGitHub, merged.GitHub, githubSection.materialize),
		LLM:      r.resolveLLM(merged.LLM),
		JMAP:     resolveSection(r, SectionJMAP, merged.JMAP, jmapSection.materialize),
		Discord:  resolveSection(r, SectionDiscord, merged.Discord, sameShape[DiscordConfig]),
		Database: resolveSection(r, SectionDatabase, merged.Database, sameShape[DatabaseConfig]),
	}
	cfg.Diagnostics = r.diags

	if err := r.checkMandatory(cfg); err != nil {
		return nil, err
	}

	r.log.Debug().Strs("sections", cfg.EnabledSections()).Msg("configuration resolved")
	return cfg, nil
}

// resolveSection turns one merged raw section into its typed object via the
// section's materialize step, which substitutes defaults for fields no
// source set. Returns nil when the section is absent (no source contributed
// anything), poisoned, or fails validation; the latter two leave
// diagnostics behind.
func resolveSection[R, T any](r *resolver, name string, raw R, materialize func(R) T) *T {
	if _, bad := r.poisoned[name]; bad {
		return nil
	}

	if isZero(raw) {
		return nil
	}

	sec := materialize(raw)
	if diags := validateSection(name, "", &sec); len(diags) > 0 {
		r.diags = append(r.diags, diags...)
		r.log.Warn().Str("section", name).Msg("section omitted after validation failure")
		return nil
	}

	return &sec
}

// sameShape is the materialize step for sections whose raw and resolved
// shapes coincide (no defaulted fields).
func sameShape[T any](raw T) T { return raw }

// resolveLLM handles the llm section's tagged-union shape: the provider
// discriminator selects which backend sub-configuration is required. The
// non-selected backend is carried only when it was supplied and is valid on
// its own; otherwise it is dropped with a warning, not an omission.
func (r *resolver) resolveLLM(raw llmSection) *LLMConfig {
	if _, bad := r.poisoned[SectionLLM]; bad {
		return nil
	}

	if isZero(raw) {
		return nil
	}

	if raw.Provider == "" {
		r.omitLLM(Diagnostic{
			Section: SectionLLM, Key: "provider",
			Severity: SeverityError, Message: "required field missing",
		})
		return nil
	}

	switch raw.Provider {
	case LLMProviderAnthropic:
		selected := resolveLLMBackend(r, "anthropic", raw.Anthropic, anthropicSection.materialize, true)
		if selected == nil {
			return nil
		}

		out := &LLMConfig{Provider: raw.Provider, Anthropic: selected}
		if !isZero(raw.Gemini) {
			out.Gemini = resolveLLMBackend(r, "gemini", raw.Gemini, geminiSection.materialize, false)
		}
		return out

	case LLMProviderGemini:
		selected := resolveLLMBackend(r, "gemini", raw.Gemini, geminiSection.materialize, true)
		if selected == nil {
			return nil
		}

		out := &LLMConfig{Provider: raw.Provider, Gemini: selected}
		if !isZero(raw.Anthropic) {
			out.Anthropic = resolveLLMBackend(r, "anthropic", raw.Anthropic, anthropicSection.materialize, false)
		}
		return out

	default:
		r.omitLLM(Diagnostic{
			Section: SectionLLM, Key: "provider",
			Severity: SeverityError,
			Message:  fmt.Sprintf("unsupported provider %q (expected %q or %q)", raw.Provider, LLMProviderAnthropic, LLMProviderGemini),
		})
		return nil
	}
}

// resolveLLMBackend validates one LLM backend. For the selected backend a
// failure omits the whole llm section; for the other backend it only drops
// that backend.
func resolveLLMBackend[R, T any](r *resolver, key string, raw R, materialize func(R) T, selected bool) *T {
	sec := materialize(raw)
	diags := validateSection(SectionLLM, key, &sec)
	if len(diags) == 0 {
		return &sec
	}

	if selected {
		r.omitLLM(diags...)
	} else {
		for i := range diags {
			diags[i].Severity = SeverityWarn
		}
		r.diags = append(r.diags, diags...)
	}

	return nil
}

func (r *resolver) omitLLM(diags ...Diagnostic) {
	r.diags = append(r.diags, diags...)
	r.log.Warn().Str("section", SectionLLM).Msg("section omitted after validation failure")
}

// checkMandatory enforces the caller-supplied contract: a designated
// section that resolved absent aborts the load.
func (r *resolver) checkMandatory(cfg *ResolvedConfig) error {
	for _, name := range r.mandatory {
		if cfg.has(name) {
			continue
		}

		if reason, bad := r.poisoned[name]; bad {
			return fmt.Errorf("%w: %s (%s)", ErrMandatorySection, name, reason)
		}

		return fmt.Errorf("%w: %s", ErrMandatorySection, name)
	}

	return nil
}
