package service

import (
	"context"

	"github.com/athenalobo/muditha-platform/internal/hub"
)

// GatewayService handles the per-connection protocol events after a
// connection has been authenticated and registered.
type GatewayService interface {
	// HandleConnect registers the connection with the presence tracker.
	HandleConnect(ctx context.Context, client *hub.Client)
	HandleJoinRoom(ctx context.Context, client *hub.Client, roomID string) error
	HandleSendMessage(ctx context.Context, client *hub.Client, roomID, content, messageType string) error
	HandleTypingStart(ctx context.Context, client *hub.Client, roomID string)
	HandleTypingStop(ctx context.Context, client *hub.Client, roomID string)
	HandleMarkRead(ctx context.Context, client *hub.Client, messageID string)
	// HandleDisconnect deregisters presence and notifies the room the
	// connection was subscribed to.
	HandleDisconnect(ctx context.Context, client *hub.Client)
}
