package room

import (
	"context"
	"errors"

	"github.com/athenalobo/muditha-platform/internal/domain"
)

var (
	ErrRoomNotFound = errors.New("room not found")
	ErrRoomFull     = errors.New("room is full")
	ErrNotAMember   = errors.New("not a member of this room")
)

// Guard enforces who may join, view and post into a room.
type Guard interface {
	CreateRoom(ctx context.Context, userID string, req *domain.CreateRoomRequest) (*domain.Room, error)
	// Join adds the user to the room or reactivates their previous
	// membership. Returns the room and whether a new participant record
	// was created.
	Join(ctx context.Context, roomID, userID string) (*domain.Room, bool, error)
	// Authorize returns the room iff the user holds an active membership.
	Authorize(ctx context.Context, roomID, userID string) (*domain.Room, error)
	// Leave deactivates the user's membership. The record is kept so
	// history stays attributable.
	Leave(ctx context.Context, roomID, userID string) error
	ListUserRooms(ctx context.Context, userID string, roomType domain.RoomType, page, pageSize int) ([]domain.Room, int, error)
}
