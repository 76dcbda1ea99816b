package room

import (
	"context"
	"errors"
	"time"

	"github.com/athenalobo/muditha-platform/internal/auth"
	"github.com/athenalobo/muditha-platform/internal/domain"
	"github.com/athenalobo/muditha-platform/internal/repository"
	"github.com/athenalobo/muditha-platform/pkg/log"
)

// MembershipGuard implements Guard on top of the room repository. The
// identity store verifies invited participants; nil disables the check.
type MembershipGuard struct {
	rooms      repository.RoomRepository
	identities auth.IdentityStore
}

// NewMembershipGuard creates a new membership guard.
func NewMembershipGuard(rooms repository.RoomRepository, identities auth.IdentityStore) *MembershipGuard {
	return &MembershipGuard{rooms: rooms, identities: identities}
}

// CreateRoom creates a room with the creator as its admin participant.
func (g *MembershipGuard) CreateRoom(ctx context.Context, userID string, req *domain.CreateRoomRequest) (*domain.Room, error) {
	l := log.Ctx(ctx)

	now := time.Now()
	roomType := req.Type
	if roomType == "" {
		roomType = domain.RoomTypeGroup
	}

	settings := domain.RoomSettings{
		MaxParticipants: domain.DefaultMaxParticipants,
		AIModeration:    true,
		CrisisDetection: true,
	}
	if req.Settings != nil {
		settings = *req.Settings
		if settings.MaxParticipants <= 0 {
			settings.MaxParticipants = domain.DefaultMaxParticipants
		}
	}

	assistant := domain.AIAssistant{
		Enabled:     roomType == domain.RoomTypeAIChat,
		Personality: "supportive",
	}
	if req.AIAssistant != nil {
		assistant = *req.AIAssistant
		if roomType == domain.RoomTypeAIChat {
			assistant.Enabled = true
		}
		if assistant.Personality == "" {
			assistant.Personality = "supportive"
		}
	}

	participants := []domain.Participant{{
		UserID:   userID,
		Role:     domain.RoleAdmin,
		JoinedAt: now,
		IsActive: true,
	}}
	for _, invited := range g.resolveInvited(ctx, userID, req.Participants) {
		participants = append(participants, domain.Participant{
			UserID:   invited,
			Role:     domain.RoleMember,
			JoinedAt: now,
			IsActive: true,
		})
	}

	newRoom := &domain.Room{
		Name:         req.Name,
		Description:  req.Description,
		Type:         roomType,
		Participants: participants,
		Settings:     settings,
		AIAssistant:  assistant,
		LastActivity: now,
		IsActive:     true,
		CreatedBy:    userID,
	}

	if err := g.rooms.Create(ctx, newRoom); err != nil {
		return nil, err
	}

	l.Info().
		Str(log.FieldRoomID, newRoom.ID).
		Str(log.FieldUserID, userID).
		Str("room_type", string(roomType)).
		Msg("room created")
	return newRoom, nil
}

// Join adds the user to the room. Rejoining reactivates the previous
// membership record without resetting its role.
func (g *MembershipGuard) Join(ctx context.Context, roomID, userID string) (*domain.Room, bool, error) {
	l := log.Ctx(ctx)

	r, err := g.activeRoom(ctx, roomID)
	if err != nil {
		return nil, false, err
	}

	now := time.Now()
	if p, ok := r.Participant(userID); ok {
		p.IsActive = true
		p.JoinedAt = now
		if err := g.rooms.UpsertParticipant(ctx, roomID, *p); err != nil {
			return nil, false, err
		}
		l.Debug().
			Str(log.FieldRoomID, roomID).
			Str(log.FieldUserID, userID).
			Msg("participant reactivated")
		return r, false, nil
	}

	if r.ActiveParticipantCount() >= r.Capacity() {
		return nil, false, ErrRoomFull
	}

	participant := domain.Participant{
		UserID:   userID,
		Role:     domain.RoleMember,
		JoinedAt: now,
		IsActive: true,
	}
	if err := g.rooms.UpsertParticipant(ctx, roomID, participant); err != nil {
		return nil, false, err
	}
	r.Participants = append(r.Participants, participant)

	l.Info().
		Str(log.FieldRoomID, roomID).
		Str(log.FieldUserID, userID).
		Msg("participant joined room")
	return r, true, nil
}

// Authorize returns the room iff the user holds an active membership.
func (g *MembershipGuard) Authorize(ctx context.Context, roomID, userID string) (*domain.Room, error) {
	r, err := g.activeRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if !r.HasActiveParticipant(userID) {
		return nil, ErrNotAMember
	}
	return r, nil
}

// Leave deactivates the user's membership record.
func (g *MembershipGuard) Leave(ctx context.Context, roomID, userID string) error {
	l := log.Ctx(ctx)

	r, err := g.activeRoom(ctx, roomID)
	if err != nil {
		return err
	}

	p, ok := r.Participant(userID)
	if !ok || !p.IsActive {
		return ErrNotAMember
	}

	p.IsActive = false
	if err := g.rooms.UpsertParticipant(ctx, roomID, *p); err != nil {
		return err
	}

	l.Info().
		Str(log.FieldRoomID, roomID).
		Str(log.FieldUserID, userID).
		Msg("participant left room")
	return nil
}

// ListUserRooms lists the active rooms the user participates in.
func (g *MembershipGuard) ListUserRooms(ctx context.Context, userID string, roomType domain.RoomType, page, pageSize int) ([]domain.Room, int, error) {
	return g.rooms.ListUserRooms(ctx, userID, roomType, page, pageSize)
}

// resolveInvited filters invited user ids down to distinct, known, active
// users. The creator is always excluded; with no identity store every id
// is taken at face value.
func (g *MembershipGuard) resolveInvited(ctx context.Context, creatorID string, invited []string) []string {
	l := log.Ctx(ctx)

	seen := map[string]bool{creatorID: true}
	var resolved []string
	for _, id := range invited {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		if g.identities != nil {
			identity, err := g.identities.GetByID(ctx, id)
			if err != nil || !identity.IsActive {
				l.Debug().Str(log.FieldUserID, id).Msg("skipping invited participant")
				continue
			}
		}
		resolved = append(resolved, id)
	}
	return resolved
}

func (g *MembershipGuard) activeRoom(ctx context.Context, roomID string) (*domain.Room, error) {
	r, err := g.rooms.GetByID(ctx, roomID)
	if err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}
	if !r.IsActive {
		return nil, ErrRoomNotFound
	}
	return r, nil
}
