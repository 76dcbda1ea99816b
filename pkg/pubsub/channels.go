package pubsub

import "fmt"

// Channel naming conventions for the chat platform.
const (
	// ChannelRoomEvents carries live room events (messages, typing,
	// joins/leaves) between chat instances.
	ChannelRoomEvents = "chat:room:%s:events"

	// ChannelUserNotify carries out-of-band notifications (read receipts)
	// addressed to a single user's live connection.
	ChannelUserNotify = "chat:user:%s:notify"
)

// Event types published on room channels.
const (
	EventNewMessage        = "new_message"
	EventUserJoined        = "user_joined"
	EventUserLeft          = "user_left"
	EventUserTyping        = "user_typing"
	EventUserStoppedTyping = "user_stopped_typing"
)

// Event types published on user channels.
const (
	EventMessageRead = "message_read"
)

// RoomEventsChannel returns the channel name for a room's live events.
func RoomEventsChannel(roomID string) string {
	return fmt.Sprintf(ChannelRoomEvents, roomID)
}

// UserNotifyChannel returns the channel name for a user's notifications.
func UserNotifyChannel(userID string) string {
	return fmt.Sprintf(ChannelUserNotify, userID)
}
