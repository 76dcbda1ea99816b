package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/athenalobo/muditha-platform/internal/analysis"
	"github.com/athenalobo/muditha-platform/internal/bus"
	"github.com/athenalobo/muditha-platform/internal/config"
	"github.com/athenalobo/muditha-platform/internal/dispatch"
	"github.com/athenalobo/muditha-platform/internal/domain"
	"github.com/athenalobo/muditha-platform/internal/hub"
	"github.com/athenalobo/muditha-platform/internal/oracle"
	"github.com/athenalobo/muditha-platform/internal/repository"
	"github.com/athenalobo/muditha-platform/internal/room"
	"github.com/athenalobo/muditha-platform/pkg/jwt"
	"github.com/athenalobo/muditha-platform/pkg/middleware"
)

type fakeGuard struct {
	room     *domain.Room
	isNew    bool
	err      error
	leaveErr error
}

func (f *fakeGuard) CreateRoom(ctx context.Context, userID string, req *domain.CreateRoomRequest) (*domain.Room, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.room, nil
}

func (f *fakeGuard) Join(ctx context.Context, roomID, userID string) (*domain.Room, bool, error) {
	if f.err != nil {
		return nil, false, f.err
	}
	return f.room, f.isNew, nil
}

func (f *fakeGuard) Authorize(ctx context.Context, roomID, userID string) (*domain.Room, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.room, nil
}

func (f *fakeGuard) Leave(ctx context.Context, roomID, userID string) error {
	return f.leaveErr
}

func (f *fakeGuard) ListUserRooms(ctx context.Context, userID string, roomType domain.RoomType, page, pageSize int) ([]domain.Room, int, error) {
	if f.err != nil {
		return nil, 0, f.err
	}
	if f.room == nil {
		return nil, 0, nil
	}
	return []domain.Room{*f.room}, 1, nil
}

type memMessages struct {
	messages []domain.Message
}

func (m *memMessages) Create(ctx context.Context, msg *domain.Message) error {
	msg.ID = fmt.Sprintf("m%d", len(m.messages)+1)
	msg.CreatedAt = time.Now()
	m.messages = append(m.messages, *msg)
	return nil
}

func (m *memMessages) GetByID(ctx context.Context, id string) (*domain.Message, error) {
	for i := range m.messages {
		if m.messages[i].ID == id {
			return &m.messages[i], nil
		}
	}
	return nil, repository.ErrMessageNotFound
}

func (m *memMessages) ListRoomMessages(ctx context.Context, roomID string, page, pageSize int) ([]domain.Message, int, error) {
	return m.messages, len(m.messages), nil
}

func (m *memMessages) Recent(ctx context.Context, roomID string, limit int) ([]domain.Message, error) {
	return nil, nil
}

func (m *memMessages) MarkRead(ctx context.Context, messageID, userID string, at time.Time) (bool, error) {
	return true, nil
}

type memRooms struct{}

func (memRooms) Create(ctx context.Context, r *domain.Room) error { return nil }

func (memRooms) GetByID(ctx context.Context, id string) (*domain.Room, error) {
	return nil, repository.ErrRoomNotFound
}

func (memRooms) ListUserRooms(ctx context.Context, userID string, roomType domain.RoomType, page, pageSize int) ([]domain.Room, int, error) {
	return nil, 0, nil
}

func (memRooms) UpsertParticipant(ctx context.Context, roomID string, p domain.Participant) error {
	return nil
}

func (memRooms) BumpActivity(ctx context.Context, roomID string, at time.Time) error { return nil }

type noopTracker struct{}

func (noopTracker) Register(ctx context.Context, userID, locator string) error { return nil }

func (noopTracker) Locate(ctx context.Context, userID string) (string, bool, error) {
	return "", false, nil
}

func (noopTracker) Deregister(ctx context.Context, userID string) error { return nil }

func memberRoom() *domain.Room {
	return &domain.Room{
		ID:       "r1",
		Name:     "evening check-in",
		Type:     domain.RoomTypeGroup,
		IsActive: true,
		Participants: []domain.Participant{
			{UserID: "u1", Role: domain.RoleAdmin, IsActive: true},
		},
	}
}

func setupRouter(t *testing.T, guard room.Guard) (*gin.Engine, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	manager := jwt.NewManager("test-secret", time.Hour, "muditha-auth")
	token, err := manager.Generate("u1", "alice@example.com", "alice")
	require.NoError(t, err)

	messages := &memMessages{}
	analysisCfg := &config.AnalysisConfig{
		CrisisWeight:        3,
		UrgencyWeight:       2,
		HighRiskThreshold:   5,
		MediumRiskThreshold: 3,
		FallbackReply:       "stock reply",
	}
	pipeline := analysis.NewPipeline(analysis.NewLexiconScorer(), analysis.NewCrisisMatcher(analysisCfg), oracle.NewDisabledClient(), analysisCfg, 10)
	fanout := bus.NewFanout(hub.NewHub(config.WebSocketConfig{}), nil, "test-instance")
	dispatcher := dispatch.NewDispatcher(guard, messages, memRooms{}, pipeline, fanout, noopTracker{}, 10)

	h := NewHandler(guard, dispatcher, messages, middleware.NewAuthMiddleware(manager))
	r := gin.New()
	h.RegisterRoutes(r)
	return r, token
}

func doRequest(r *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		payload, _ := json.Marshal(body)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func TestCreateRoomRequiresAuth(t *testing.T) {
	r, _ := setupRouter(t, &fakeGuard{room: memberRoom()})

	resp := doRequest(r, http.MethodPost, "/api/v1/chat/rooms", "", map[string]string{"name": "x"})
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestCreateRoom(t *testing.T) {
	r, token := setupRouter(t, &fakeGuard{room: memberRoom()})

	resp := doRequest(r, http.MethodPost, "/api/v1/chat/rooms", token, map[string]string{"name": "evening check-in"})
	assert.Equal(t, http.StatusCreated, resp.Code)
	assert.Contains(t, resp.Body.String(), `"success":true`)
	assert.Contains(t, resp.Body.String(), "evening check-in")
}

func TestCreateRoomMissingName(t *testing.T) {
	r, token := setupRouter(t, &fakeGuard{room: memberRoom()})

	resp := doRequest(r, http.MethodPost, "/api/v1/chat/rooms", token, map[string]string{})
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestGetRoomNotFound(t *testing.T) {
	r, token := setupRouter(t, &fakeGuard{err: room.ErrRoomNotFound})

	resp := doRequest(r, http.MethodGet, "/api/v1/chat/rooms/missing", token, nil)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestGetRoomForbiddenForNonMember(t *testing.T) {
	r, token := setupRouter(t, &fakeGuard{err: room.ErrNotAMember})

	resp := doRequest(r, http.MethodGet, "/api/v1/chat/rooms/r1", token, nil)
	assert.Equal(t, http.StatusForbidden, resp.Code)
}

func TestJoinFullRoomConflict(t *testing.T) {
	r, token := setupRouter(t, &fakeGuard{err: room.ErrRoomFull})

	resp := doRequest(r, http.MethodPost, "/api/v1/chat/rooms/r1/join", token, nil)
	assert.Equal(t, http.StatusConflict, resp.Code)
}

func TestJoinRoom(t *testing.T) {
	r, token := setupRouter(t, &fakeGuard{room: memberRoom(), isNew: true})

	resp := doRequest(r, http.MethodPost, "/api/v1/chat/rooms/r1/join", token, nil)
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"is_new_participant":true`)
}

func TestSendMessage(t *testing.T) {
	r, token := setupRouter(t, &fakeGuard{room: memberRoom()})

	resp := doRequest(r, http.MethodPost, "/api/v1/chat/rooms/r1/messages", token, map[string]string{"content": "hello"})
	assert.Equal(t, http.StatusCreated, resp.Code)
	assert.Contains(t, resp.Body.String(), `"content":"hello"`)
	assert.NotContains(t, resp.Body.String(), "ai_reply")
}

func TestSendMessageToAIRoom(t *testing.T) {
	aiRoom := memberRoom()
	aiRoom.Type = domain.RoomTypeAIChat
	aiRoom.AIAssistant = domain.AIAssistant{Enabled: true}
	r, token := setupRouter(t, &fakeGuard{room: aiRoom})

	resp := doRequest(r, http.MethodPost, "/api/v1/chat/rooms/r1/messages", token, map[string]string{"content": "hello"})
	assert.Equal(t, http.StatusCreated, resp.Code)
	assert.Contains(t, resp.Body.String(), "ai_reply")
	assert.Contains(t, resp.Body.String(), "stock reply")
}

func TestSendMessageEmptyContent(t *testing.T) {
	r, token := setupRouter(t, &fakeGuard{room: memberRoom()})

	resp := doRequest(r, http.MethodPost, "/api/v1/chat/rooms/r1/messages", token, map[string]string{"content": ""})
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestListMessages(t *testing.T) {
	guard := &fakeGuard{room: memberRoom()}
	r, token := setupRouter(t, guard)

	resp := doRequest(r, http.MethodPost, "/api/v1/chat/rooms/r1/messages", token, map[string]string{"content": "hello"})
	require.Equal(t, http.StatusCreated, resp.Code)

	resp = doRequest(r, http.MethodGet, "/api/v1/chat/rooms/r1/messages", token, nil)
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"total":1`)
	assert.Contains(t, resp.Body.String(), `"content":"hello"`)
}

func TestLeaveRoomNotAMember(t *testing.T) {
	r, token := setupRouter(t, &fakeGuard{room: memberRoom(), leaveErr: room.ErrNotAMember})

	resp := doRequest(r, http.MethodPost, "/api/v1/chat/rooms/r1/leave", token, nil)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestListMyRooms(t *testing.T) {
	r, token := setupRouter(t, &fakeGuard{room: memberRoom()})

	resp := doRequest(r, http.MethodGet, "/api/v1/chat/rooms", token, nil)
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"total":1`)
}
