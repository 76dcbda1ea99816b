package bus

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/athenalobo/muditha-platform/internal/hub"
	"github.com/athenalobo/muditha-platform/pkg/log"
	"github.com/athenalobo/muditha-platform/pkg/pubsub"
)

// Relay feeds events published by other chat instances into the local
// hub, so every instance's subscribers see the same room stream.
type Relay struct {
	hub        *hub.Hub
	bus        pubsub.Subscriber
	instanceID string
}

// NewRelay creates a relay.
func NewRelay(h *hub.Hub, bus pubsub.Subscriber, instanceID string) *Relay {
	return &Relay{hub: h, bus: bus, instanceID: instanceID}
}

// Run subscribes to the room and user channels and relays events until
// the context is cancelled.
func (r *Relay) Run(ctx context.Context) error {
	roomEvents, err := r.bus.SubscribePattern(ctx, fmt.Sprintf(pubsub.ChannelRoomEvents, "*"))
	if err != nil {
		return fmt.Errorf("failed to subscribe to room events: %w", err)
	}
	userEvents, err := r.bus.SubscribePattern(ctx, fmt.Sprintf(pubsub.ChannelUserNotify, "*"))
	if err != nil {
		return fmt.Errorf("failed to subscribe to user events: %w", err)
	}

	l := log.L()
	l.Info().Str(log.FieldService, "relay").Msg("event relay started")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-roomEvents:
			if !ok {
				return nil
			}
			if event.Origin == r.instanceID {
				continue
			}
			if err := r.hub.BroadcastToRoom(event.RoomID, json.RawMessage(event.Payload), ""); err != nil {
				l.Warn().Err(err).
					Str(log.FieldRoomID, event.RoomID).
					Str(log.FieldEvent, event.Type).
					Msg("failed to relay room event")
			}

		case event, ok := <-userEvents:
			if !ok {
				return nil
			}
			if event.Origin == r.instanceID {
				continue
			}
			r.hub.SendToUser(event.UserID, json.RawMessage(event.Payload))
		}
	}
}
