package repository

import (
	"context"
	"errors"
	"time"

	"github.com/athenalobo/muditha-platform/internal/domain"
)

var (
	ErrRoomNotFound    = errors.New("room not found")
	ErrMessageNotFound = errors.New("message not found")
)

// RoomRepository defines the interface for room data persistence.
type RoomRepository interface {
	Create(ctx context.Context, room *domain.Room) error
	GetByID(ctx context.Context, id string) (*domain.Room, error)
	// ListUserRooms pages through the active rooms the user participates
	// in, most recently active first. roomType narrows the listing when
	// non-empty.
	ListUserRooms(ctx context.Context, userID string, roomType domain.RoomType, page, pageSize int) ([]domain.Room, int, error)
	// UpsertParticipant inserts or replaces a membership record keyed by
	// (room, user).
	UpsertParticipant(ctx context.Context, roomID string, p domain.Participant) error
	// BumpActivity sets the room's last-activity timestamp and atomically
	// increments its message counter.
	BumpActivity(ctx context.Context, roomID string, at time.Time) error
}

// MessageRepository defines the interface for message persistence.
type MessageRepository interface {
	Create(ctx context.Context, msg *domain.Message) error
	GetByID(ctx context.Context, id string) (*domain.Message, error)
	// ListRoomMessages returns a page of a room's messages, oldest first,
	// excluding soft-deleted ones.
	ListRoomMessages(ctx context.Context, roomID string, page, pageSize int) ([]domain.Message, int, error)
	// Recent returns the latest messages of a room, oldest first, bounded
	// by limit. Used as conversational context for reply generation.
	Recent(ctx context.Context, roomID string, limit int) ([]domain.Message, error)
	// MarkRead records a read receipt. Returns false when the user had
	// already read the message.
	MarkRead(ctx context.Context, messageID, userID string, at time.Time) (bool, error)
}
