package service

import (
	"context"
	"errors"
	"time"

	"github.com/athenalobo/muditha-platform/internal/bus"
	"github.com/athenalobo/muditha-platform/internal/dispatch"
	"github.com/athenalobo/muditha-platform/internal/domain"
	"github.com/athenalobo/muditha-platform/internal/hub"
	"github.com/athenalobo/muditha-platform/internal/presence"
	"github.com/athenalobo/muditha-platform/internal/room"
	"github.com/athenalobo/muditha-platform/pkg/log"
	"github.com/athenalobo/muditha-platform/pkg/pubsub"
)

// ChatGatewayService wires the connection protocol to the guard,
// dispatcher, presence tracker and fan-out.
type ChatGatewayService struct {
	hub        *hub.Hub
	guard      room.Guard
	dispatcher *dispatch.Dispatcher
	tracker    presence.Tracker
	fanout     *bus.Fanout
}

// NewChatGatewayService creates a gateway service.
func NewChatGatewayService(
	h *hub.Hub,
	guard room.Guard,
	dispatcher *dispatch.Dispatcher,
	tracker presence.Tracker,
	fanout *bus.Fanout,
) *ChatGatewayService {
	return &ChatGatewayService{
		hub:        h,
		guard:      guard,
		dispatcher: dispatcher,
		tracker:    tracker,
		fanout:     fanout,
	}
}

// HandleConnect registers the connection locator for out-of-band
// notifications. Registration failure is not fatal to the connection;
// read-receipt pushes just won't find this user.
func (s *ChatGatewayService) HandleConnect(ctx context.Context, client *hub.Client) {
	if err := s.tracker.Register(ctx, client.UserID, client.ID); err != nil {
		l := log.Ctx(ctx)
		l.Warn().Err(err).Str(log.FieldUserID, client.UserID).Msg("presence registration failed")
	}
}

// HandleJoinRoom subscribes an authorized client to a room's live
// stream, replacing any previous subscription.
func (s *ChatGatewayService) HandleJoinRoom(ctx context.Context, client *hub.Client, roomID string) error {
	l := log.Ctx(ctx)

	r, err := s.guard.Authorize(ctx, roomID, client.UserID)
	if err != nil {
		client.SendMessage(joinError(err))
		return err
	}

	s.hub.JoinRoom(client, roomID)

	s.fanout.Room(ctx, roomID, pubsub.EventUserJoined, &domain.UserJoinedMessage{
		Type:      domain.MsgTypeUserJoined,
		RoomID:    roomID,
		UserID:    client.UserID,
		Username:  client.Username,
		Timestamp: time.Now().UnixMilli(),
	}, client.ID)

	client.SendMessage(&domain.RoomJoinedMessage{
		Type:         domain.MsgTypeRoomJoined,
		RoomID:       roomID,
		RoomName:     r.Name,
		Participants: r.Participants,
	})

	l.Info().
		Str(log.FieldUserID, client.UserID).
		Str(log.FieldRoomID, roomID).
		Msg("client joined room stream")
	return nil
}

// HandleSendMessage dispatches a message from a live connection.
func (s *ChatGatewayService) HandleSendMessage(ctx context.Context, client *hub.Client, roomID, content, messageType string) error {
	if s.hub.Room(client) != roomID {
		client.SendMessage(domain.NewErrorMessage(domain.ErrCodeNotInRoom, "You are not in this room"))
		return room.ErrNotAMember
	}

	_, err := s.dispatcher.Send(ctx, roomID, client.UserID, client.Username, content, domain.MessageType(messageType))
	if err != nil {
		client.SendMessage(sendError(err))
		return err
	}
	return nil
}

// HandleTypingStart relays a typing indicator. Not persisted.
func (s *ChatGatewayService) HandleTypingStart(ctx context.Context, client *hub.Client, roomID string) {
	if s.hub.Room(client) != roomID {
		return
	}
	s.fanout.Room(ctx, roomID, pubsub.EventUserTyping, &domain.UserTypingMessage{
		Type:     domain.MsgTypeUserTyping,
		RoomID:   roomID,
		UserID:   client.UserID,
		Username: client.Username,
	}, client.ID)
}

// HandleTypingStop relays the end of a typing indicator.
func (s *ChatGatewayService) HandleTypingStop(ctx context.Context, client *hub.Client, roomID string) {
	if s.hub.Room(client) != roomID {
		return
	}
	s.fanout.Room(ctx, roomID, pubsub.EventUserStoppedTyping, &domain.UserStoppedTypingMessage{
		Type:   domain.MsgTypeUserStoppedTyping,
		RoomID: roomID,
		UserID: client.UserID,
	}, client.ID)
}

// HandleMarkRead records a read receipt. Failures are logged, never
// surfaced to the reader.
func (s *ChatGatewayService) HandleMarkRead(ctx context.Context, client *hub.Client, messageID string) {
	if err := s.dispatcher.MarkRead(ctx, messageID, client.UserID); err != nil {
		l := log.Ctx(ctx)
		l.Warn().Err(err).
			Str(log.FieldMessageID, messageID).
			Str(log.FieldUserID, client.UserID).
			Msg("failed to mark message read")
	}
}

// HandleDisconnect tears down the connection's presence and tells its
// room the user left.
func (s *ChatGatewayService) HandleDisconnect(ctx context.Context, client *hub.Client) {
	l := log.Ctx(ctx)

	roomID := s.hub.LeaveRoom(client)
	if roomID != "" {
		s.fanout.Room(ctx, roomID, pubsub.EventUserLeft, &domain.UserLeftMessage{
			Type:      domain.MsgTypeUserLeft,
			RoomID:    roomID,
			UserID:    client.UserID,
			Username:  client.Username,
			Timestamp: time.Now().UnixMilli(),
		}, client.ID)
	}

	if err := s.tracker.Deregister(ctx, client.UserID); err != nil {
		l.Warn().Err(err).Str(log.FieldUserID, client.UserID).Msg("presence deregistration failed")
	}

	l.Info().
		Str(log.FieldUserID, client.UserID).
		Str(log.FieldClientID, client.ID).
		Msg("client disconnected")
}

func joinError(err error) *domain.ErrorMessage {
	switch {
	case errors.Is(err, room.ErrRoomNotFound):
		return domain.NewErrorMessage(domain.ErrCodeRoomNotFound, "Chat room not found")
	case errors.Is(err, room.ErrNotAMember):
		return domain.NewErrorMessage(domain.ErrCodeUnauthorized, "Access denied to this chat room")
	default:
		return domain.NewErrorMessage(domain.ErrCodeInternalError, "Failed to join room")
	}
}

func sendError(err error) *domain.ErrorMessage {
	switch {
	case errors.Is(err, dispatch.ErrEmptyContent), errors.Is(err, dispatch.ErrContentTooLong):
		return domain.NewErrorMessage(domain.ErrCodeBadRequest, "Invalid message data")
	case errors.Is(err, room.ErrRoomNotFound):
		return domain.NewErrorMessage(domain.ErrCodeRoomNotFound, "Chat room not found")
	case errors.Is(err, room.ErrNotAMember):
		return domain.NewErrorMessage(domain.ErrCodeNotInRoom, "You are not in this room")
	default:
		return domain.NewErrorMessage(domain.ErrCodeInternalError, "Failed to send message")
	}
}
