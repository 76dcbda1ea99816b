package domain

import (
	"time"
)

// RoomType represents the kind of chat room.
type RoomType string

const (
	RoomTypeOneOnOne       RoomType = "one_on_one"
	RoomTypeGroup          RoomType = "group"
	RoomTypeAIChat         RoomType = "ai_chat"
	RoomTypeTherapySession RoomType = "therapy_session"
	RoomTypePeerSupport    RoomType = "peer_support"
)

// Role represents a participant's role within a room.
type Role string

const (
	RoleMember    Role = "member"
	RoleModerator Role = "moderator"
	RoleTherapist Role = "therapist"
	RoleAdmin     Role = "admin"
)

// DefaultMaxParticipants is the room capacity used when none is configured.
const DefaultMaxParticipants = 50

// Participant is a user's membership record within a room. Leaving a room
// deactivates the record; it is never deleted, so history stays attributable.
type Participant struct {
	UserID   string    `json:"user_id"`
	Role     Role      `json:"role"`
	JoinedAt time.Time `json:"joined_at"`
	IsActive bool      `json:"is_active"`
}

// RoomSettings holds per-room behavior switches.
type RoomSettings struct {
	IsPrivate       bool `json:"is_private"`
	AllowAnonymous  bool `json:"allow_anonymous"`
	MaxParticipants int  `json:"max_participants"`
	AIModeration    bool `json:"ai_moderation"`
	CrisisDetection bool `json:"crisis_detection"`
}

// AIAssistant configures the automated participant for a room.
type AIAssistant struct {
	Enabled         bool     `json:"enabled"`
	Personality     string   `json:"personality,omitempty"`
	Specializations []string `json:"specializations,omitempty"`
}

// Room represents a chat room with its membership.
type Room struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Description  string        `json:"description,omitempty"`
	Type         RoomType      `json:"type"`
	Participants []Participant `json:"participants"`
	Settings     RoomSettings  `json:"settings"`
	AIAssistant  AIAssistant   `json:"ai_assistant"`
	LastActivity time.Time     `json:"last_activity"`
	MessageCount int64         `json:"message_count"`
	IsActive     bool          `json:"is_active"`
	CreatedBy    string        `json:"created_by"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// Participant returns the membership record for a user, active or not.
func (r *Room) Participant(userID string) (*Participant, bool) {
	for i := range r.Participants {
		if r.Participants[i].UserID == userID {
			return &r.Participants[i], true
		}
	}
	return nil, false
}

// HasActiveParticipant reports whether a user holds an active membership.
func (r *Room) HasActiveParticipant(userID string) bool {
	p, ok := r.Participant(userID)
	return ok && p.IsActive
}

// ActiveParticipantCount counts members that have not left the room.
func (r *Room) ActiveParticipantCount() int {
	count := 0
	for i := range r.Participants {
		if r.Participants[i].IsActive {
			count++
		}
	}
	return count
}

// Capacity returns the effective participant limit.
func (r *Room) Capacity() int {
	if r.Settings.MaxParticipants > 0 {
		return r.Settings.MaxParticipants
	}
	return DefaultMaxParticipants
}

// AIEnabled reports whether the automated participant responds in this room.
func (r *Room) AIEnabled() bool {
	return r.AIAssistant.Enabled
}

// CreateRoomRequest represents a create room request. Participants are
// additional user ids invited at creation; unknown or deactivated users
// are dropped silently.
type CreateRoomRequest struct {
	Name         string        `json:"name" binding:"required,min=1,max=100"`
	Description  string        `json:"description"`
	Type         RoomType      `json:"type"`
	Participants []string      `json:"participants"`
	Settings     *RoomSettings `json:"settings"`
	AIAssistant  *AIAssistant  `json:"ai_assistant"`
}

// ListRoomsRequest represents a paginated list request. Type optionally
// filters to one room type.
type ListRoomsRequest struct {
	Page     int      `form:"page"`
	PageSize int      `form:"page_size"`
	Type     RoomType `form:"type"`
}

// RoomResponse represents a room in API responses.
type RoomResponse struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Description  string        `json:"description,omitempty"`
	Type         RoomType      `json:"type"`
	Participants []Participant `json:"participants"`
	Settings     RoomSettings  `json:"settings"`
	AIAssistant  AIAssistant   `json:"ai_assistant"`
	LastActivity time.Time     `json:"last_activity"`
	MessageCount int64         `json:"message_count"`
	CreatedBy    string        `json:"created_by"`
	CreatedAt    time.Time     `json:"created_at"`
}

// ListRoomsResponse represents a paginated list response.
type ListRoomsResponse struct {
	Rooms      []RoomResponse `json:"rooms"`
	Total      int            `json:"total"`
	Page       int            `json:"page"`
	PageSize   int            `json:"page_size"`
	TotalPages int            `json:"total_pages"`
}

// ToResponse converts Room to RoomResponse.
func (r *Room) ToResponse() RoomResponse {
	return RoomResponse{
		ID:           r.ID,
		Name:         r.Name,
		Description:  r.Description,
		Type:         r.Type,
		Participants: r.Participants,
		Settings:     r.Settings,
		AIAssistant:  r.AIAssistant,
		LastActivity: r.LastActivity,
		MessageCount: r.MessageCount,
		CreatedBy:    r.CreatedBy,
		CreatedAt:    r.CreatedAt,
	}
}
