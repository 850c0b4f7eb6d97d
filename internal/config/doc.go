// Package config provides configuration loading, merging, and validation
// facilities for agent projects.
//
// Configuration is assembled from three layered sources in descending
// priority order (a higher layer wins outright for any key it supplies):
//  1. Local YAML file
//  2. Environment variables
//  3. Remote key-value store (best-effort, never fatal)
//
// The main entry point is [Load], which returns a fully validated
// [ResolvedConfig] with one optional sub-configuration per supported
// integration. A section is present only when its required fields were
// resolved from at least one source; otherwise it is absent and the
// integration is considered disabled.
package config
