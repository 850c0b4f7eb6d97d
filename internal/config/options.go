package config

import (
	"context"

	"github.com/lherron/agentconf/internal/logger"
)

// RemoteSource fetches the raw JSON configuration document stored under a
// namespace on the remote key-value store. remotekv.Client implements it;
// tests substitute their own.
type RemoteSource interface {
	Fetch(ctx context.Context, namespace string) ([]byte, error)
}

// Option customizes a single [Load] call.
type Option func(*resolver)

// WithFile sets an explicit path to the local configuration file. Unlike the
// default well-known path, an explicitly named file that does not exist is a
// fatal error.
func WithFile(path string) Option {
	return func(r *resolver) {
		r.filePath = path
	}
}

// WithoutRemote disables the remote key-value layer for this load.
func WithoutRemote() Option {
	return func(r *resolver) {
		r.disableRemote = true
	}
}

// WithRemote supplies the remote key-value source to query. Overrides the
// AGENTCONF_REMOTE_URL discovery.
func WithRemote(src RemoteSource) Option {
	return func(r *resolver) {
		r.remote = src
	}
}

// WithNamespace overrides the key-value namespace queried on the remote
// store. Default is [DefaultNamespace].
func WithNamespace(namespace string) Option {
	return func(r *resolver) {
		r.namespace = namespace
	}
}

// WithMandatory designates sections whose absence aborts the load. By the
// engine's contract no section is mandatory unless the caller says so; a
// mandatory section that resolves absent, or is omitted after a validation
// failure, turns that condition fatal.
func WithMandatory(names ...string) Option {
	return func(r *resolver) {
		r.mandatory = append(r.mandatory, names...)
	}
}

// WithLogger attaches a logger to the load. Defaults to a no-op logger so
// library consumers stay quiet unless they opt in.
func WithLogger(log *logger.Logger) Option {
	return func(r *resolver) {
		r.log = log
	}
}
