package model

import "time"

// MessageType classifies a chat event.
type MessageType string

const (
	MessageTypeChat  MessageType = "CHAT"
	MessageTypeJoin  MessageType = "JOIN"
	MessageTypeLeave MessageType = "LEAVE"
)

// Message represents one chat or presence event.
//
// ID and Timestamp are assigned by the store at persistence time and stay
// null on broadcasts that are never persisted. ConnectedUsers is a transient
// roster snapshot carried only on presence broadcasts; it is never written
// to the database.
type Message struct {
	ID             *int64      `json:"id"`
	Content        *string     `json:"content"`
	Sender         string      `json:"sender"`
	Type           MessageType `json:"type"`
	Timestamp      *time.Time  `json:"timestamp"`
	ConnectedUsers []string    `json:"connectedUsers,omitempty"`
}
