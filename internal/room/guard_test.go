package room

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/athenalobo/muditha-platform/internal/auth"
	"github.com/athenalobo/muditha-platform/internal/domain"
	"github.com/athenalobo/muditha-platform/internal/repository"
)

// fakeRoomRepo keeps rooms in memory and records upserts.
type fakeRoomRepo struct {
	rooms     map[string]*domain.Room
	upserts   []domain.Participant
	createErr error
	upsertErr error
}

func newFakeRoomRepo() *fakeRoomRepo {
	return &fakeRoomRepo{rooms: make(map[string]*domain.Room)}
}

func (f *fakeRoomRepo) Create(ctx context.Context, r *domain.Room) error {
	if f.createErr != nil {
		return f.createErr
	}
	if r.ID == "" {
		r.ID = "room-1"
	}
	f.rooms[r.ID] = r
	return nil
}

func (f *fakeRoomRepo) GetByID(ctx context.Context, id string) (*domain.Room, error) {
	r, ok := f.rooms[id]
	if !ok {
		return nil, repository.ErrRoomNotFound
	}
	return r, nil
}

func (f *fakeRoomRepo) ListUserRooms(ctx context.Context, userID string, roomType domain.RoomType, page, pageSize int) ([]domain.Room, int, error) {
	var out []domain.Room
	for _, r := range f.rooms {
		if r.HasActiveParticipant(userID) {
			out = append(out, *r)
		}
	}
	return out, len(out), nil
}

func (f *fakeRoomRepo) UpsertParticipant(ctx context.Context, roomID string, p domain.Participant) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.upserts = append(f.upserts, p)
	return nil
}

func (f *fakeRoomRepo) BumpActivity(ctx context.Context, roomID string, at time.Time) error {
	return nil
}

func seedRoom(repo *fakeRoomRepo, r *domain.Room) *domain.Room {
	repo.rooms[r.ID] = r
	return r
}

func TestCreateRoomDefaults(t *testing.T) {
	repo := newFakeRoomRepo()
	guard := NewMembershipGuard(repo, nil)

	created, err := guard.CreateRoom(context.Background(), "alice", &domain.CreateRoomRequest{Name: "support circle"})
	require.NoError(t, err)

	assert.Equal(t, domain.RoomTypeGroup, created.Type)
	assert.Equal(t, domain.DefaultMaxParticipants, created.Settings.MaxParticipants)
	assert.True(t, created.Settings.AIModeration)
	assert.True(t, created.Settings.CrisisDetection)
	assert.False(t, created.AIAssistant.Enabled)
	assert.True(t, created.IsActive)
	assert.Equal(t, "alice", created.CreatedBy)

	require.Len(t, created.Participants, 1)
	assert.Equal(t, "alice", created.Participants[0].UserID)
	assert.Equal(t, domain.RoleAdmin, created.Participants[0].Role)
	assert.True(t, created.Participants[0].IsActive)
}

func TestCreateRoomAIChatEnablesAssistant(t *testing.T) {
	repo := newFakeRoomRepo()
	guard := NewMembershipGuard(repo, nil)

	created, err := guard.CreateRoom(context.Background(), "alice", &domain.CreateRoomRequest{
		Name: "late night talk",
		Type: domain.RoomTypeAIChat,
	})
	require.NoError(t, err)

	assert.True(t, created.AIAssistant.Enabled)
	assert.Equal(t, "supportive", created.AIAssistant.Personality)
}

func TestCreateRoomAIChatAssistantCannotBeDisabled(t *testing.T) {
	repo := newFakeRoomRepo()
	guard := NewMembershipGuard(repo, nil)

	created, err := guard.CreateRoom(context.Background(), "alice", &domain.CreateRoomRequest{
		Name:        "late night talk",
		Type:        domain.RoomTypeAIChat,
		AIAssistant: &domain.AIAssistant{Enabled: false, Personality: "clinical"},
	})
	require.NoError(t, err)

	assert.True(t, created.AIAssistant.Enabled)
	assert.Equal(t, "clinical", created.AIAssistant.Personality)
}

// stubIdentities resolves only the ids it knows about.
type stubIdentities struct {
	identities map[string]*auth.Identity
}

func (s *stubIdentities) GetByID(ctx context.Context, userID string) (*auth.Identity, error) {
	identity, ok := s.identities[userID]
	if !ok {
		return nil, errors.New("identity not found")
	}
	return identity, nil
}

func TestCreateRoomInvitedParticipants(t *testing.T) {
	repo := newFakeRoomRepo()
	store := &stubIdentities{identities: map[string]*auth.Identity{
		"bob":   {UserID: "bob", IsActive: true},
		"carol": {UserID: "carol", IsActive: false},
	}}
	guard := NewMembershipGuard(repo, store)

	created, err := guard.CreateRoom(context.Background(), "alice", &domain.CreateRoomRequest{
		Name:         "peer circle",
		Participants: []string{"bob", "carol", "mallory", "bob", "alice", ""},
	})
	require.NoError(t, err)

	// Only the creator and bob survive: carol is deactivated, mallory is
	// unknown, duplicates and the creator's own id are dropped.
	require.Len(t, created.Participants, 2)
	assert.Equal(t, "alice", created.Participants[0].UserID)
	assert.Equal(t, domain.RoleAdmin, created.Participants[0].Role)
	assert.Equal(t, "bob", created.Participants[1].UserID)
	assert.Equal(t, domain.RoleMember, created.Participants[1].Role)
	assert.True(t, created.Participants[1].IsActive)
}

func TestCreateRoomInvitedWithoutIdentityStore(t *testing.T) {
	repo := newFakeRoomRepo()
	guard := NewMembershipGuard(repo, nil)

	created, err := guard.CreateRoom(context.Background(), "alice", &domain.CreateRoomRequest{
		Name:         "peer circle",
		Participants: []string{"bob"},
	})
	require.NoError(t, err)

	require.Len(t, created.Participants, 2)
	assert.Equal(t, "bob", created.Participants[1].UserID)
}

func TestJoinNewParticipant(t *testing.T) {
	repo := newFakeRoomRepo()
	seedRoom(repo, &domain.Room{
		ID:       "r1",
		IsActive: true,
		Settings: domain.RoomSettings{MaxParticipants: 10},
		Participants: []domain.Participant{
			{UserID: "alice", Role: domain.RoleAdmin, IsActive: true},
		},
	})
	guard := NewMembershipGuard(repo, nil)

	joined, isNew, err := guard.Join(context.Background(), "r1", "bob")
	require.NoError(t, err)
	assert.True(t, isNew)
	assert.True(t, joined.HasActiveParticipant("bob"))

	require.Len(t, repo.upserts, 1)
	assert.Equal(t, domain.RoleMember, repo.upserts[0].Role)
}

func TestJoinFullRoomRejected(t *testing.T) {
	repo := newFakeRoomRepo()
	seedRoom(repo, &domain.Room{
		ID:       "r1",
		IsActive: true,
		Settings: domain.RoomSettings{MaxParticipants: 2},
		Participants: []domain.Participant{
			{UserID: "alice", Role: domain.RoleAdmin, IsActive: true},
			{UserID: "bob", Role: domain.RoleMember, IsActive: true},
		},
	})
	guard := NewMembershipGuard(repo, nil)

	_, _, err := guard.Join(context.Background(), "r1", "carol")
	assert.ErrorIs(t, err, ErrRoomFull)
	assert.Empty(t, repo.upserts, "a rejected join must not write membership")
}

func TestRejoinReactivatesAndKeepsRole(t *testing.T) {
	repo := newFakeRoomRepo()
	seedRoom(repo, &domain.Room{
		ID:       "r1",
		IsActive: true,
		Settings: domain.RoomSettings{MaxParticipants: 2},
		Participants: []domain.Participant{
			{UserID: "alice", Role: domain.RoleAdmin, IsActive: true},
			{UserID: "bob", Role: domain.RoleModerator, IsActive: false},
		},
	})
	guard := NewMembershipGuard(repo, nil)

	joined, isNew, err := guard.Join(context.Background(), "r1", "bob")
	require.NoError(t, err)
	assert.False(t, isNew)
	assert.True(t, joined.HasActiveParticipant("bob"))

	require.Len(t, repo.upserts, 1)
	assert.Equal(t, domain.RoleModerator, repo.upserts[0].Role)
	assert.True(t, repo.upserts[0].IsActive)
}

func TestRejoinAllowedWhenRoomIsFull(t *testing.T) {
	repo := newFakeRoomRepo()
	seedRoom(repo, &domain.Room{
		ID:       "r1",
		IsActive: true,
		Settings: domain.RoomSettings{MaxParticipants: 2},
		Participants: []domain.Participant{
			{UserID: "alice", Role: domain.RoleAdmin, IsActive: true},
			{UserID: "bob", Role: domain.RoleMember, IsActive: true},
			{UserID: "carol", Role: domain.RoleMember, IsActive: false},
		},
	})
	guard := NewMembershipGuard(repo, nil)

	// The capacity check only applies to brand-new participants.
	_, isNew, err := guard.Join(context.Background(), "r1", "carol")
	require.NoError(t, err)
	assert.False(t, isNew)
}

func TestJoinUnknownRoom(t *testing.T) {
	guard := NewMembershipGuard(newFakeRoomRepo(), nil)

	_, _, err := guard.Join(context.Background(), "missing", "bob")
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestJoinInactiveRoom(t *testing.T) {
	repo := newFakeRoomRepo()
	seedRoom(repo, &domain.Room{ID: "r1", IsActive: false})
	guard := NewMembershipGuard(repo, nil)

	_, _, err := guard.Join(context.Background(), "r1", "bob")
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestAuthorizeActiveMember(t *testing.T) {
	repo := newFakeRoomRepo()
	seedRoom(repo, &domain.Room{
		ID:       "r1",
		IsActive: true,
		Participants: []domain.Participant{
			{UserID: "alice", Role: domain.RoleMember, IsActive: true},
		},
	})
	guard := NewMembershipGuard(repo, nil)

	r, err := guard.Authorize(context.Background(), "r1", "alice")
	require.NoError(t, err)
	assert.Equal(t, "r1", r.ID)
}

func TestAuthorizeInactiveMemberRejected(t *testing.T) {
	repo := newFakeRoomRepo()
	seedRoom(repo, &domain.Room{
		ID:       "r1",
		IsActive: true,
		Participants: []domain.Participant{
			{UserID: "alice", Role: domain.RoleMember, IsActive: false},
		},
	})
	guard := NewMembershipGuard(repo, nil)

	_, err := guard.Authorize(context.Background(), "r1", "alice")
	assert.ErrorIs(t, err, ErrNotAMember)
}

func TestAuthorizeNonMemberRejected(t *testing.T) {
	repo := newFakeRoomRepo()
	seedRoom(repo, &domain.Room{ID: "r1", IsActive: true})
	guard := NewMembershipGuard(repo, nil)

	_, err := guard.Authorize(context.Background(), "r1", "stranger")
	assert.ErrorIs(t, err, ErrNotAMember)
}

func TestLeaveDeactivatesMembership(t *testing.T) {
	repo := newFakeRoomRepo()
	seedRoom(repo, &domain.Room{
		ID:       "r1",
		IsActive: true,
		Participants: []domain.Participant{
			{UserID: "alice", Role: domain.RoleAdmin, IsActive: true},
		},
	})
	guard := NewMembershipGuard(repo, nil)

	err := guard.Leave(context.Background(), "r1", "alice")
	require.NoError(t, err)

	require.Len(t, repo.upserts, 1)
	assert.False(t, repo.upserts[0].IsActive)
	assert.Equal(t, domain.RoleAdmin, repo.upserts[0].Role)
}

func TestLeaveByNonMember(t *testing.T) {
	repo := newFakeRoomRepo()
	seedRoom(repo, &domain.Room{ID: "r1", IsActive: true})
	guard := NewMembershipGuard(repo, nil)

	err := guard.Leave(context.Background(), "r1", "stranger")
	assert.ErrorIs(t, err, ErrNotAMember)
}

func TestLeaveTwice(t *testing.T) {
	repo := newFakeRoomRepo()
	seedRoom(repo, &domain.Room{
		ID:       "r1",
		IsActive: true,
		Participants: []domain.Participant{
			{UserID: "alice", Role: domain.RoleMember, IsActive: false},
		},
	})
	guard := NewMembershipGuard(repo, nil)

	err := guard.Leave(context.Background(), "r1", "alice")
	assert.ErrorIs(t, err, ErrNotAMember)
}

func TestCreateRoomRepositoryFailure(t *testing.T) {
	repo := newFakeRoomRepo()
	repo.createErr = errors.New("db down")
	guard := NewMembershipGuard(repo, nil)

	_, err := guard.CreateRoom(context.Background(), "alice", &domain.CreateRoomRequest{Name: "x"})
	assert.Error(t, err)
}
