package domain

// WebSocket message types from client.
const (
	MsgTypeJoinRoom    = "join_room"
	MsgTypeSendMessage = "send_message"
	MsgTypeTypingStart = "typing_start"
	MsgTypeTypingStop  = "typing_stop"
	MsgTypeMarkRead    = "mark_message_read"
	MsgTypePing        = "ping"
)

// WebSocket message types to client.
const (
	MsgTypeRoomJoined        = "room_joined"
	MsgTypeUserJoined        = "user_joined"
	MsgTypeNewMessage        = "new_message"
	MsgTypeUserTyping        = "user_typing"
	MsgTypeUserStoppedTyping = "user_stopped_typing"
	MsgTypeMessageRead       = "message_read"
	MsgTypeUserLeft          = "user_left"
	MsgTypeError             = "error"
	MsgTypePong              = "pong"
)

// Error codes
const (
	ErrCodeUnauthorized  = "UNAUTHORIZED"
	ErrCodeBadRequest    = "BAD_REQUEST"
	ErrCodeInternalError = "INTERNAL_ERROR"
	ErrCodeNotInRoom     = "NOT_IN_ROOM"
	ErrCodeRoomNotFound  = "ROOM_NOT_FOUND"
	ErrCodeRoomFull      = "ROOM_FULL"
)

// BaseMessage is the base structure for all WebSocket messages.
type BaseMessage struct {
	Type string `json:"type"`
}

// Client -> Server messages

type JoinRoomMessage struct {
	Type   string `json:"type"`
	RoomID string `json:"room_id"`
}

type SendMessageWS struct {
	Type        string `json:"type"`
	RoomID      string `json:"room_id"`
	Content     string `json:"content"`
	MessageType string `json:"message_type,omitempty"`
}

type TypingMessage struct {
	Type   string `json:"type"`
	RoomID string `json:"room_id"`
}

type MarkReadMessage struct {
	Type      string `json:"type"`
	MessageID string `json:"message_id"`
}

// Server -> Client messages

type RoomJoinedMessage struct {
	Type         string        `json:"type"`
	RoomID       string        `json:"room_id"`
	RoomName     string        `json:"room_name"`
	Participants []Participant `json:"participants"`
}

type UserJoinedMessage struct {
	Type      string `json:"type"`
	RoomID    string `json:"room_id"`
	UserID    string `json:"user_id"`
	Username  string `json:"username,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

type NewMessageOut struct {
	Type        string           `json:"type"`
	ID          string           `json:"id"`
	RoomID      string           `json:"room_id"`
	Sender      *SenderInfo      `json:"sender"`
	Content     string           `json:"content"`
	MessageType MessageType      `json:"message_type"`
	Metadata    *MessageMetadata `json:"metadata,omitempty"`
	IsAI        bool             `json:"is_ai"`
	CreatedAt   int64            `json:"created_at"`
}

type UserTypingMessage struct {
	Type     string `json:"type"`
	RoomID   string `json:"room_id"`
	UserID   string `json:"user_id"`
	Username string `json:"username,omitempty"`
}

type UserStoppedTypingMessage struct {
	Type   string `json:"type"`
	RoomID string `json:"room_id"`
	UserID string `json:"user_id"`
}

type MessageReadOut struct {
	Type      string `json:"type"`
	MessageID string `json:"message_id"`
	ReadBy    string `json:"read_by"`
	ReadAt    int64  `json:"read_at"`
}

type UserLeftMessage struct {
	Type      string `json:"type"`
	RoomID    string `json:"room_id"`
	UserID    string `json:"user_id"`
	Username  string `json:"username,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

type ErrorMessage struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func NewErrorMessage(code, message string) *ErrorMessage {
	return &ErrorMessage{
		Type:    MsgTypeError,
		Code:    code,
		Message: message,
	}
}

// NewMessageEvent builds the broadcast payload for a persisted message.
func NewMessageEvent(m *Message, senderUsername string) *NewMessageOut {
	var sender *SenderInfo
	if !m.Author.IsAssistant() {
		sender = &SenderInfo{UserID: m.Author.UserID, Username: senderUsername}
	}
	return &NewMessageOut{
		Type:        MsgTypeNewMessage,
		ID:          m.ID,
		RoomID:      m.RoomID,
		Sender:      sender,
		Content:     m.Content,
		MessageType: m.Type,
		Metadata:    m.Metadata,
		IsAI:        m.Author.IsAssistant(),
		CreatedAt:   m.CreatedAt.UnixMilli(),
	}
}
