package store

import (
	"context"
	"database/sql"
	"time"

	"groupchat/internal/model"
)

// MySQLStore implements MessageStore on the chat_messages table.
type MySQLStore struct {
	db *sql.DB
}

// NewMySQLStore creates a store over an initialized database connection.
func NewMySQLStore(db *sql.DB) *MySQLStore {
	return &MySQLStore{db: db}
}

// Save inserts msg and returns a copy carrying the AUTO_INCREMENT id and the
// server-assigned timestamp. The ConnectedUsers roster stays in memory on the
// returned copy for broadcasting but is not written to the table.
func (s *MySQLStore) Save(ctx context.Context, msg model.Message) (model.Message, error) {
	var content sql.NullString
	if msg.Content != nil {
		content = sql.NullString{String: *msg.Content, Valid: true}
	}

	now := time.Now()
	result, err := s.db.ExecContext(ctx,
		"INSERT INTO chat_messages (content, sender, type, timestamp) VALUES (?, ?, ?, ?)",
		content, msg.Sender, string(msg.Type), now)
	if err != nil {
		return model.Message{}, &Error{Op: "save", Err: err}
	}

	id, err := result.LastInsertId()
	if err != nil {
		return model.Message{}, &Error{Op: "save", Err: err}
	}

	saved := msg
	saved.ID = &id
	saved.Timestamp = &now
	return saved, nil
}

// Recent returns up to limit persisted messages, most recent first.
func (s *MySQLStore) Recent(ctx context.Context, limit int) ([]model.Message, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, content, sender, type, timestamp FROM chat_messages ORDER BY id DESC LIMIT ?",
		limit)
	if err != nil {
		return nil, &Error{Op: "recent", Err: err}
	}
	defer rows.Close()

	return scanMessages(rows, "recent")
}

// ByKind returns every persisted message of the given kind, oldest first.
func (s *MySQLStore) ByKind(ctx context.Context, kind model.MessageType) ([]model.Message, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, content, sender, type, timestamp FROM chat_messages WHERE type = ? ORDER BY id ASC",
		string(kind))
	if err != nil {
		return nil, &Error{Op: "byKind", Err: err}
	}
	defer rows.Close()

	return scanMessages(rows, "byKind")
}

func scanMessages(rows *sql.Rows, op string) ([]model.Message, error) {
	var msgs []model.Message
	for rows.Next() {
		var (
			id      int64
			content sql.NullString
			sender  string
			kind    string
			ts      time.Time
		)
		if err := rows.Scan(&id, &content, &sender, &kind, &ts); err != nil {
			return nil, &Error{Op: op, Err: err}
		}

		msg := model.Message{
			ID:        &id,
			Sender:    sender,
			Type:      model.MessageType(kind),
			Timestamp: &ts,
		}
		if content.Valid {
			value := content.String
			msg.Content = &value
		}
		msgs = append(msgs, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, &Error{Op: op, Err: err}
	}
	return msgs, nil
}
