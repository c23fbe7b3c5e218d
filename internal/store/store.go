// Package store persists the chat's append-only message log and serves the
// recency and kind queries the history endpoint and presence core rely on.
package store

import (
	"context"
	"fmt"

	"groupchat/internal/model"
)

// Error wraps a persistence I/O failure. Handlers use it to tell durable
// write failures apart from the silent validation drops of the chat core.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("store: %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// MessageStore is the durable append-only log of chat and presence events.
// Save assigns a strictly increasing id and a non-decreasing timestamp in
// insertion order; the transient connected-users roster is never persisted.
type MessageStore interface {
	Save(ctx context.Context, msg model.Message) (model.Message, error)
	Recent(ctx context.Context, limit int) ([]model.Message, error)
	ByKind(ctx context.Context, kind model.MessageType) ([]model.Message, error)
}
