// Package chat defines the outbound messaging surface of the bot and its
// Slack Web API implementation. The rest of the codebase talks to the
// Client interface so tests can substitute an in-memory recorder.
package chat

import "context"

// Client posts messages and signals into the workspace channel.
type Client interface {
	// PostMessage posts a top-level channel message and returns its
	// timestamp, which doubles as the thread identifier for replies.
	PostMessage(ctx context.Context, channel, text string) (string, error)
	// PostInThread posts a reply inside the thread rooted at threadID.
	PostInThread(ctx context.Context, channel, threadID, text string) error
	// AddReaction attaches an emoji reaction to the message at ts.
	AddReaction(ctx context.Context, channel, ts, name string) error
	// PinMessage pins the message at ts to the channel.
	PinMessage(ctx context.Context, channel, ts string) error
	// OpenView opens a modal dialog for the interaction trigger.
	OpenView(ctx context.Context, triggerID string, view any) error
}
