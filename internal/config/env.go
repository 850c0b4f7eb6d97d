// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"

	"github.com/caarlos0/env/v11"
)

// parseEnvLayer populates the environment layer using the caarlos0/env
// library. Each section is parsed independently under its own prefix so that
// a coercion failure (e.g. a non-numeric LLM_ANTHROPIC_MAX_TOKENS) poisons
// only the owning section and leaves every other section intact.
//
// Variables whose names do not start with a recognized section prefix are
// never consulted and are therefore ignored.
func (r *resolver) parseEnvLayer() *sections {
	s := new(sections)

	targets := []struct {
		name   string
		prefix string
		target any
	}{
		{SectionTodoist, "TODOIST_", &s.Todoist},
		{SectionGitHub, "GITHUB_", &s.GitHub},
		{SectionLLM, "LLM_", &s.LLM},
		{SectionJMAP, "JMAP_", &s.JMAP},
		{SectionDiscord, "DISCORD_", &s.Discord},
		{SectionDatabase, "DATABASE_", &s.Database},
	}

	for _, t := range targets {
		if err := env.ParseWithOptions(t.target, env.Options{Prefix: t.prefix}); err != nil {
			r.poison(t.name, err)
		}
	}

	return s
}

// poison records that a section's environment values failed coercion. The
// section is omitted from the resolved config regardless of what other
// sources supplied, with one diagnostic per failed field.
func (r *resolver) poison(section string, err error) {
	r.poisoned[section] = err.Error()

	var agg env.AggregateError
	if errors.As(err, &agg) {
		for _, sub := range agg.Errors {
			r.diags = append(r.diags, Diagnostic{
				Section:  section,
				Severity: SeverityError,
				Message:  "environment: " + sub.Error(),
			})
		}
		return
	}

	r.diags = append(r.diags, Diagnostic{
		Section:  section,
		Severity: SeverityError,
		Message:  "environment: " + err.Error(),
	})
}
