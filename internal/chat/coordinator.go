// Package chat implements the presence-aware broadcast core: it receives
// inbound events from the transport layer, tracks online transitions,
// persists chat and presence messages and fans them out to the shared topic.
package chat

import (
	"context"
	"fmt"
	"log"
	"strings"

	"groupchat/internal/model"
	"groupchat/internal/presence"
	"groupchat/internal/session"
	"groupchat/internal/store"
)

// TopicPublic is the shared topic every connected client subscribes to.
const TopicPublic = "/topic/public"

// Session attribute keys. The principal is bound by the transport layer at
// authentication time; the username is bound by the join handler so that
// disconnect handling can recover the identity without re-authenticating.
const (
	attrPrincipal = "principal"
	attrUsername  = "username"
)

// BroadcastSink delivers a message to every current subscriber of a topic.
// Delivery is fire-and-forget, at-least-once best effort; there is no
// confirmation channel.
type BroadcastSink interface {
	Publish(topic string, msg model.Message)
}

// Coordinator orchestrates the inbound chat events. It consults the presence
// tracker and the session registry, writes through the message store and
// publishes outbound messages to the broadcast sink.
type Coordinator struct {
	presence *presence.Tracker
	sessions *session.Registry
	store    store.MessageStore
	sink     BroadcastSink
}

// NewCoordinator wires the core against its collaborators.
func NewCoordinator(tracker *presence.Tracker, sessions *session.Registry, messages store.MessageStore, sink BroadcastSink) *Coordinator {
	return &Coordinator{
		presence: tracker,
		sessions: sessions,
		store:    messages,
		sink:     sink,
	}
}

// BindPrincipal records the authenticated identity for a connection. The
// transport layer calls this once, right after a successful upgrade.
func (c *Coordinator) BindPrincipal(connID, identity string) {
	c.sessions.Set(connID, attrPrincipal, identity)
}

// identity resolves the authenticated identity bound to connID.
func (c *Coordinator) identity(connID string) (string, bool) {
	id, ok := c.sessions.Get(connID, attrPrincipal)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}

// presenceEvent is the internal form of a roster change before it collapses
// to the wire message. Transition records whether this was a genuine
// online/offline edge; non-transitional events go out as JOIN with null
// content, which clients read as a silent roster refresh.
type presenceEvent struct {
	identity   string
	kind       model.MessageType
	transition bool
	roster     []string
}

func (e presenceEvent) message() model.Message {
	msg := model.Message{
		Sender:         e.identity,
		Type:           e.kind,
		ConnectedUsers: e.roster,
	}
	if e.transition {
		var content string
		switch e.kind {
		case model.MessageTypeJoin:
			content = e.identity + " joined!"
		case model.MessageTypeLeave:
			content = e.identity + " left!"
		}
		msg.Content = &content
	}
	return msg
}

// HandleSendMessage processes a send-message event. The client-claimed sender
// is always overwritten with the authenticated identity. Non-CHAT kinds and
// blank content are dropped silently; a failed persist aborts the broadcast
// and is returned to the caller.
func (c *Coordinator) HandleSendMessage(ctx context.Context, connID string, payload model.Message) error {
	identity, ok := c.identity(connID)
	if !ok {
		log.Printf("[chat] ❌ send-message without authenticated principal (conn=%s); dropping", connID)
		return nil
	}

	payload.Sender = identity

	if payload.Type != model.MessageTypeChat {
		return nil
	}
	if payload.Content == nil || strings.TrimSpace(*payload.Content) == "" {
		return nil
	}

	// The roster never rides on CHAT messages.
	payload.ConnectedUsers = nil

	saved, err := c.store.Save(ctx, payload)
	if err != nil {
		return fmt.Errorf("persist chat message: %w", err)
	}

	c.sink.Publish(TopicPublic, saved)
	return nil
}

// HandleJoin processes an add-user event. The first connection of an identity
// persists and broadcasts a JOIN announcement; further connections of the
// same identity only broadcast an unpersisted roster refresh.
func (c *Coordinator) HandleJoin(ctx context.Context, connID string) error {
	identity, ok := c.identity(connID)
	if !ok {
		log.Printf("[chat] ❌ add-user without authenticated principal (conn=%s); dropping", connID)
		return nil
	}

	c.sessions.Set(connID, attrUsername, identity)

	first := c.presence.AddConnection(identity, connID)

	return c.publishPresence(ctx, presenceEvent{
		identity:   identity,
		kind:       model.MessageTypeJoin,
		transition: first,
		roster:     c.presence.ConnectedIdentities(),
	})
}

// HandleDisconnect processes a transport-level link closure. Presence cleanup
// and session release happen regardless of whether persisting the LEAVE
// message succeeds, so a user can never be left falsely online.
func (c *Coordinator) HandleDisconnect(ctx context.Context, connID string) error {
	defer c.sessions.Release(connID)

	identity, ok := c.sessions.Get(connID, attrUsername)
	if !ok || identity == "" {
		// Either the connection never completed a join or the attribute was
		// lost; in both cases there is nothing to clean up.
		log.Printf("[chat] ⚠️  disconnect for conn=%s without bound username; nothing to clean up", connID)
		return nil
	}

	last := c.presence.RemoveConnection(identity, connID)

	kind := model.MessageTypeJoin // roster refresh reuses JOIN on the wire
	if last {
		kind = model.MessageTypeLeave
	}

	return c.publishPresence(ctx, presenceEvent{
		identity:   identity,
		kind:       kind,
		transition: last,
		roster:     c.presence.ConnectedIdentities(),
	})
}

// publishPresence persists the event if it is a genuine transition, then
// broadcasts it. A failed persist aborts the broadcast.
func (c *Coordinator) publishPresence(ctx context.Context, event presenceEvent) error {
	msg := event.message()

	if event.transition {
		saved, err := c.store.Save(ctx, msg)
		if err != nil {
			return fmt.Errorf("persist %s event: %w", strings.ToLower(string(event.kind)), err)
		}
		msg = saved
	}

	c.sink.Publish(TopicPublic, msg)
	return nil
}
