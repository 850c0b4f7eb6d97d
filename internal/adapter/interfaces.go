// SPDX-License-Identifier: Apache-2.0

// Package adapter defines the capability-set interfaces for the external
// integrations an agent project can wire up (tasks, mail, chat, LLM), and
// the selection logic that decides which concrete variant to construct based
// on which sections of the resolved configuration are populated.
//
// The package deliberately contains no wire-protocol code. Generated
// projects supply concrete providers through [Factories]; this layer only
// maps "section is present" to "capability is enabled".
package adapter

import "context"

// Task is one work item fetched from a task provider.
type Task struct {
	ID      string
	Content string
	Due     string
}

// TaskProvider is the capability set of a task-management integration.
type TaskProvider interface {
	// Connect verifies credentials and prepares the provider for use.
	Connect(ctx context.Context) error

	// List returns the open tasks in the named project.
	List(ctx context.Context, project string) ([]Task, error)

	// Close releases any resources held by the provider.
	Close() error
}

// Message is one mail message exchanged with a mail provider.
type Message struct {
	From    string
	To      []string
	Subject string
	Body    string
}

// MailProvider is the capability set of a mail integration.
type MailProvider interface {
	// Connect verifies credentials and prepares the provider for use.
	Connect(ctx context.Context) error

	// Unread returns the unread messages in the named folder.
	Unread(ctx context.Context, folder string) ([]Message, error)

	// Send delivers msg through the provider.
	Send(ctx context.Context, msg Message) error

	// Close releases any resources held by the provider.
	Close() error
}

// ChatProvider is the capability set of a chat-platform integration.
type ChatProvider interface {
	// Connect verifies credentials and prepares the provider for use.
	Connect(ctx context.Context) error

	// Post sends text to the named channel.
	Post(ctx context.Context, channel, text string) error

	// Close releases any resources held by the provider.
	Close() error
}

// Completer is the capability set of an LLM integration.
type Completer interface {
	// Complete returns the model's completion of prompt.
	Complete(ctx context.Context, prompt string) (string, error)
}
