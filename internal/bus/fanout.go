package bus

import (
	"context"

	"github.com/athenalobo/muditha-platform/internal/hub"
	"github.com/athenalobo/muditha-platform/pkg/log"
	"github.com/athenalobo/muditha-platform/pkg/pubsub"
)

// Fanout delivers live events to local subscribers through the hub and
// mirrors them onto the event bus for other chat instances. Bus publish
// failures are logged, never surfaced: local delivery already happened.
type Fanout struct {
	hub        *hub.Hub
	bus        pubsub.Publisher
	instanceID string
}

// NewFanout creates a fanout. bus may be nil for single-instance setups.
func NewFanout(h *hub.Hub, bus pubsub.Publisher, instanceID string) *Fanout {
	return &Fanout{hub: h, bus: bus, instanceID: instanceID}
}

// Room broadcasts an event to every local connection subscribed to the
// room and publishes it for other instances.
func (f *Fanout) Room(ctx context.Context, roomID, eventType string, message interface{}, excludeClient string) {
	l := log.Ctx(ctx)

	if err := f.hub.BroadcastToRoom(roomID, message, excludeClient); err != nil {
		l.Error().Err(err).Str(log.FieldRoomID, roomID).Msg("failed to broadcast room event")
		return
	}

	if f.bus == nil {
		return
	}
	event, err := pubsub.NewEvent(eventType, roomID, message)
	if err != nil {
		l.Error().Err(err).Str(log.FieldRoomID, roomID).Msg("failed to encode room event")
		return
	}
	event.Origin = f.instanceID
	if err := f.bus.Publish(ctx, pubsub.RoomEventsChannel(roomID), event); err != nil {
		l.Warn().Err(err).Str(log.FieldRoomID, roomID).Msg("failed to publish room event to bus")
	}
}

// User pushes an event to one user's connections: directly when the
// located connection lives on this instance, via the bus otherwise.
// Returns true when delivered locally.
func (f *Fanout) User(ctx context.Context, userID, clientID, eventType string, message interface{}) bool {
	l := log.Ctx(ctx)

	if f.hub.SendToClient(clientID, message) {
		return true
	}

	if f.bus == nil {
		return false
	}
	event, err := pubsub.NewEvent(eventType, "", message)
	if err != nil {
		l.Error().Err(err).Str(log.FieldUserID, userID).Msg("failed to encode user event")
		return false
	}
	event.UserID = userID
	event.Origin = f.instanceID
	if err := f.bus.Publish(ctx, pubsub.UserNotifyChannel(userID), event); err != nil {
		l.Warn().Err(err).Str(log.FieldUserID, userID).Msg("failed to publish user event to bus")
	}
	return false
}
