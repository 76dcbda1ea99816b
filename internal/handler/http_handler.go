package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/athenalobo/muditha-platform/internal/dispatch"
	"github.com/athenalobo/muditha-platform/internal/domain"
	"github.com/athenalobo/muditha-platform/internal/repository"
	"github.com/athenalobo/muditha-platform/internal/room"
	"github.com/athenalobo/muditha-platform/pkg/log"
	"github.com/athenalobo/muditha-platform/pkg/middleware"
	"github.com/athenalobo/muditha-platform/pkg/response"
)

// Handler handles the stateless HTTP surface. It is backed by the same
// guard and dispatcher as the live gateway, so both paths share one
// contract.
type Handler struct {
	guard          room.Guard
	dispatcher     *dispatch.Dispatcher
	messages       repository.MessageRepository
	authMiddleware *middleware.AuthMiddleware
}

// NewHandler creates a new HTTP handler.
func NewHandler(guard room.Guard, dispatcher *dispatch.Dispatcher, messages repository.MessageRepository, authMiddleware *middleware.AuthMiddleware) *Handler {
	return &Handler{
		guard:          guard,
		dispatcher:     dispatcher,
		messages:       messages,
		authMiddleware: authMiddleware,
	}
}

// RegisterRoutes registers all routes.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api/v1/chat", h.authMiddleware.RequireAuth())
	{
		rooms := api.Group("/rooms")
		{
			rooms.POST("", h.CreateRoom)
			rooms.GET("", h.ListMyRooms)
			rooms.GET("/:id", h.GetRoom)
			rooms.GET("/:id/messages", h.ListMessages)
			rooms.POST("/:id/messages", h.SendMessage)
			rooms.POST("/:id/join", h.JoinRoom)
			rooms.POST("/:id/leave", h.LeaveRoom)
		}
	}
}

// CreateRoom creates a new chat room.
func (h *Handler) CreateRoom(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	userID := middleware.GetUserID(c)
	if userID == "" {
		response.Unauthorized(c, "unauthorized")
		return
	}

	var req domain.CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		l.Warn().Err(err).Msg("failed to bind create room request")
		response.BadRequest(c, err.Error())
		return
	}

	created, err := h.guard.CreateRoom(ctx, userID, &req)
	if err != nil {
		l.Error().Err(err).Msg("failed to create room")
		response.InternalError(c, "failed to create room")
		return
	}

	response.Created(c, created.ToResponse())
}

// ListMyRooms lists the caller's active rooms.
func (h *Handler) ListMyRooms(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	userID := middleware.GetUserID(c)

	var req domain.ListRoomsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if req.Page < 1 {
		req.Page = 1
	}
	if req.PageSize < 1 || req.PageSize > 100 {
		req.PageSize = 20
	}

	rooms, total, err := h.guard.ListUserRooms(ctx, userID, req.Type, req.Page, req.PageSize)
	if err != nil {
		l.Error().Err(err).Msg("failed to list rooms")
		response.InternalError(c, "failed to list rooms")
		return
	}

	items := make([]domain.RoomResponse, len(rooms))
	for i := range rooms {
		items[i] = rooms[i].ToResponse()
	}
	response.Success(c, domain.ListRoomsResponse{
		Rooms:      items,
		Total:      total,
		Page:       req.Page,
		PageSize:   req.PageSize,
		TotalPages: totalPages(total, req.PageSize),
	})
}

// GetRoom returns a room's detail to one of its participants.
func (h *Handler) GetRoom(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	roomID := c.Param("id")
	userID := middleware.GetUserID(c)

	r, err := h.guard.Authorize(ctx, roomID, userID)
	if err != nil {
		switch {
		case errors.Is(err, room.ErrRoomNotFound):
			response.NotFound(c, "chat room not found")
		case errors.Is(err, room.ErrNotAMember):
			response.Forbidden(c, "access denied to this chat room")
		default:
			l.Error().Err(err).Str(log.FieldRoomID, roomID).Msg("failed to get room")
			response.InternalError(c, "failed to get room")
		}
		return
	}

	response.Success(c, r.ToResponse())
}

// ListMessages returns a page of room history, oldest first.
func (h *Handler) ListMessages(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	roomID := c.Param("id")
	userID := middleware.GetUserID(c)

	var req domain.ListMessagesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if req.Page < 1 {
		req.Page = 1
	}
	if req.PageSize < 1 || req.PageSize > 100 {
		req.PageSize = 50
	}

	if _, err := h.guard.Authorize(ctx, roomID, userID); err != nil {
		switch {
		case errors.Is(err, room.ErrRoomNotFound):
			response.NotFound(c, "chat room not found")
		case errors.Is(err, room.ErrNotAMember):
			response.Forbidden(c, "access denied to this chat room")
		default:
			l.Error().Err(err).Str(log.FieldRoomID, roomID).Msg("failed to authorize history read")
			response.InternalError(c, "failed to get messages")
		}
		return
	}

	messages, total, err := h.messages.ListRoomMessages(ctx, roomID, req.Page, req.PageSize)
	if err != nil {
		l.Error().Err(err).Str(log.FieldRoomID, roomID).Msg("failed to list messages")
		response.InternalError(c, "failed to get messages")
		return
	}

	items := make([]domain.MessageResponse, len(messages))
	for i := range messages {
		items[i] = messages[i].ToResponse()
	}
	response.Success(c, domain.ListMessagesResponse{
		Messages:   items,
		Total:      total,
		Page:       req.Page,
		PageSize:   req.PageSize,
		TotalPages: totalPages(total, req.PageSize),
	})
}

// SendMessage is the non-live send path, contract-identical to the
// send_message wire event.
func (h *Handler) SendMessage(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	roomID := c.Param("id")
	userID := middleware.GetUserID(c)
	username := middleware.GetUsername(c)

	var req domain.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.dispatcher.Send(ctx, roomID, userID, username, req.Content, req.MessageType)
	if err != nil {
		switch {
		case errors.Is(err, dispatch.ErrEmptyContent), errors.Is(err, dispatch.ErrContentTooLong):
			response.BadRequest(c, "invalid message data")
		case errors.Is(err, room.ErrRoomNotFound):
			response.NotFound(c, "chat room not found")
		case errors.Is(err, room.ErrNotAMember):
			response.Forbidden(c, "access denied to this chat room")
		default:
			l.Error().Err(err).Str(log.FieldRoomID, roomID).Msg("failed to send message")
			response.InternalError(c, "failed to send message")
		}
		return
	}

	payload := gin.H{"message": result.UserMessage.ToResponse()}
	if result.AIReply != nil {
		payload["ai_reply"] = result.AIReply.ToResponse()
	}
	response.Created(c, payload)
}

// JoinRoom adds the caller to a room's membership.
func (h *Handler) JoinRoom(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	roomID := c.Param("id")
	userID := middleware.GetUserID(c)

	joined, isNew, err := h.guard.Join(ctx, roomID, userID)
	if err != nil {
		switch {
		case errors.Is(err, room.ErrRoomNotFound):
			response.NotFound(c, "chat room not found")
		case errors.Is(err, room.ErrRoomFull):
			response.Conflict(c, "chat room is full")
		default:
			l.Error().Err(err).Str(log.FieldRoomID, roomID).Msg("failed to join room")
			response.InternalError(c, "failed to join room")
		}
		return
	}

	response.Success(c, gin.H{
		"room_id":            joined.ID,
		"is_new_participant": isNew,
	})
}

// LeaveRoom deactivates the caller's membership.
func (h *Handler) LeaveRoom(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	roomID := c.Param("id")
	userID := middleware.GetUserID(c)

	if err := h.guard.Leave(ctx, roomID, userID); err != nil {
		switch {
		case errors.Is(err, room.ErrRoomNotFound):
			response.NotFound(c, "chat room not found")
		case errors.Is(err, room.ErrNotAMember):
			response.BadRequest(c, "you are not a member of this chat room")
		default:
			l.Error().Err(err).Str(log.FieldRoomID, roomID).Msg("failed to leave room")
			response.InternalError(c, "failed to leave room")
		}
		return
	}

	response.Success(c, gin.H{"room_id": roomID})
}

func totalPages(total, pageSize int) int {
	if pageSize <= 0 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}
