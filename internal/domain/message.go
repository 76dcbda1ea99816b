package domain

import (
	"time"
)

// MessageType represents the kind of message payload.
type MessageType string

const (
	MessageTypeText       MessageType = "text"
	MessageTypeImage      MessageType = "image"
	MessageTypeFile       MessageType = "file"
	MessageTypeAIResponse MessageType = "ai_response"
	MessageTypeSystem     MessageType = "system"
)

// MaxContentLength bounds message content size.
const MaxContentLength = 2000

// Author identifies who wrote a message: a human user or the room's
// assistant. Use the constructors so assistant messages never carry a
// user id.
type Author struct {
	UserID    string
	Assistant bool
}

// HumanAuthor returns an Author for a user-sent message.
func HumanAuthor(userID string) Author {
	return Author{UserID: userID}
}

// AssistantAuthor returns the Author for AI-generated messages.
func AssistantAuthor() Author {
	return Author{Assistant: true}
}

// IsAssistant reports whether the message was written by the AI participant.
func (a Author) IsAssistant() bool {
	return a.Assistant
}

// ReadReceipt records that a user has read a message.
type ReadReceipt struct {
	UserID string    `json:"user_id"`
	ReadAt time.Time `json:"read_at"`
}

// Message represents a chat message. Content is append-only: edits and
// deletes only set flags, read receipts only accumulate.
type Message struct {
	ID        string
	RoomID    string
	Author    Author
	Content   string
	Type      MessageType
	Metadata  *MessageMetadata
	ReadBy    []ReadReceipt
	IsEdited  bool
	EditedAt  *time.Time
	IsDeleted bool
	DeletedAt *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// MarkRead appends a read receipt unless the user already has one.
// Returns true when a new receipt was added.
func (m *Message) MarkRead(userID string, at time.Time) bool {
	for i := range m.ReadBy {
		if m.ReadBy[i].UserID == userID {
			return false
		}
	}
	m.ReadBy = append(m.ReadBy, ReadReceipt{UserID: userID, ReadAt: at})
	return true
}

// SenderInfo identifies a human sender in API responses. Absent (null)
// for assistant messages.
type SenderInfo struct {
	UserID   string `json:"user_id"`
	Username string `json:"username,omitempty"`
}

// SendMessageRequest represents a send message request.
type SendMessageRequest struct {
	Content     string      `json:"content" binding:"required,min=1,max=2000"`
	MessageType MessageType `json:"message_type"`
}

// ListMessagesRequest represents a paginated history request.
type ListMessagesRequest struct {
	Page     int `form:"page"`
	PageSize int `form:"page_size"`
}

// MessageResponse represents a message in API responses.
type MessageResponse struct {
	ID          string           `json:"id"`
	RoomID      string           `json:"room_id"`
	Sender      *SenderInfo      `json:"sender"`
	Content     string           `json:"content"`
	MessageType MessageType      `json:"message_type"`
	Metadata    *MessageMetadata `json:"metadata,omitempty"`
	IsAI        bool             `json:"is_ai"`
	ReadBy      []ReadReceipt    `json:"read_by,omitempty"`
	IsEdited    bool             `json:"is_edited,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
}

// ListMessagesResponse represents a paginated history response,
// oldest message first.
type ListMessagesResponse struct {
	Messages   []MessageResponse `json:"messages"`
	Total      int               `json:"total"`
	Page       int               `json:"page"`
	PageSize   int               `json:"page_size"`
	TotalPages int               `json:"total_pages"`
}

// ToResponse converts Message to MessageResponse.
func (m *Message) ToResponse() MessageResponse {
	var sender *SenderInfo
	if !m.Author.IsAssistant() {
		sender = &SenderInfo{UserID: m.Author.UserID}
	}
	return MessageResponse{
		ID:          m.ID,
		RoomID:      m.RoomID,
		Sender:      sender,
		Content:     m.Content,
		MessageType: m.Type,
		Metadata:    m.Metadata,
		IsAI:        m.Author.IsAssistant(),
		ReadBy:      m.ReadBy,
		IsEdited:    m.IsEdited,
		CreatedAt:   m.CreatedAt,
	}
}
