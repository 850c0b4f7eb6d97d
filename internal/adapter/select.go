// SPDX-License-Identifier: Apache-2.0

package adapter

import (
	"errors"
	"fmt"

	"github.com/lherron/agentconf/internal/config"
)

// ErrUnknownLLMProvider indicates an llm section whose provider
// discriminator names no known backend. The configuration engine validates
// the discriminator, so this surfaces only for hand-built configs.
var ErrUnknownLLMProvider = errors.New("unknown llm provider")

// LLMKind discriminates the LLM tagged union.
type LLMKind string

const (
	LLMAnthropic LLMKind = config.LLMProviderAnthropic
	LLMGemini    LLMKind = config.LLMProviderGemini
)

// LLM is the tagged union handed to the LLM factory: Kind names the selected
// backend and exactly that backend's settings pointer is non-nil.
type LLM struct {
	Kind      LLMKind
	Anthropic *config.AnthropicConfig
	Gemini    *config.GeminiConfig
}

// SelectLLM collapses a resolved llm section into the [LLM] tagged union.
func SelectLLM(cfg *config.LLMConfig) (LLM, error) {
	switch cfg.Provider {
	case config.LLMProviderAnthropic:
		return LLM{Kind: LLMAnthropic, Anthropic: cfg.Anthropic}, nil
	case config.LLMProviderGemini:
		return LLM{Kind: LLMGemini, Gemini: cfg.Gemini}, nil
	default:
		return LLM{}, fmt.Errorf("%w: %q", ErrUnknownLLMProvider, cfg.Provider)
	}
}

// Factories binds concrete provider constructors to the capabilities they
// implement. A nil factory means the application does not use that
// capability; the corresponding section is then ignored even when present.
type Factories struct {
	Tasks func(config.TodoistConfig) (TaskProvider, error)
	Mail  func(config.JMAPConfig) (MailProvider, error)
	Chat  func(config.DiscordConfig) (ChatProvider, error)
	LLM   func(LLM) (Completer, error)
}

// Providers is the set of constructed providers. A nil field means the
// integration is disabled: its configuration section was absent or no
// factory was bound for it.
type Providers struct {
	Tasks TaskProvider
	Mail  MailProvider
	Chat  ChatProvider
	LLM   Completer
}

// Select constructs one provider per populated configuration section using
// the bound factories. Selection is driven purely by section presence; no
// runtime probing is involved. A factory failure aborts selection with an
// error naming the integration.
func Select(cfg *config.ResolvedConfig, f Factories) (*Providers, error) {
	p := &Providers{}

	if cfg.Todoist != nil && f.Tasks != nil {
		tasks, err := f.Tasks(*cfg.Todoist)
		if err != nil {
			return nil, fmt.Errorf("error constructing task provider: %w", err)
		}
		p.Tasks = tasks
	}

	if cfg.JMAP != nil && f.Mail != nil {
		mail, err := f.Mail(*cfg.JMAP)
		if err != nil {
			return nil, fmt.Errorf("error constructing mail provider: %w", err)
		}
		p.Mail = mail
	}

	if cfg.Discord != nil && f.Chat != nil {
		chat, err := f.Chat(*cfg.Discord)
		if err != nil {
			return nil, fmt.Errorf("error constructing chat provider: %w", err)
		}
		p.Chat = chat
	}

	if cfg.LLM != nil && f.LLM != nil {
		union, err := SelectLLM(cfg.LLM)
		if err != nil {
			return nil, err
		}

		llm, err := f.LLM(union)
		if err != nil {
			return nil, fmt.Errorf("error constructing llm provider: %w", err)
		}
		p.LLM = llm
	}

	return p, nil
}
