package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/athenalobo/muditha-platform/internal/auth"
	"github.com/athenalobo/muditha-platform/internal/config"
	"github.com/athenalobo/muditha-platform/internal/domain"
	"github.com/athenalobo/muditha-platform/internal/hub"
	"github.com/athenalobo/muditha-platform/internal/service"
	"github.com/athenalobo/muditha-platform/pkg/log"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WSHandler is the connection gateway: it authenticates the upgrade
// request, runs the per-connection pumps, and routes wire events to the
// gateway service.
type WSHandler struct {
	hub           *hub.Hub
	authenticator auth.Authenticator
	service       service.GatewayService
	wsCfg         config.WebSocketConfig
}

func NewWSHandler(h *hub.Hub, authenticator auth.Authenticator, svc service.GatewayService, wsCfg config.WebSocketConfig) *WSHandler {
	return &WSHandler{
		hub:           h,
		authenticator: authenticator,
		service:       svc,
		wsCfg:         wsCfg,
	}
}

// HandleWebSocket authenticates and upgrades a connection. A rejected
// credential refuses the connection before any session state exists.
func (h *WSHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := log.Ctx(ctx)

	identity, err := h.authenticator.Authenticate(ctx, bearerToken(r))
	if err != nil {
		l.Debug().Err(err).Msg("websocket connection rejected")
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		l.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := hub.NewClient(uuid.New().String(), identity.UserID, identity.Username, h.hub, conn, h.wsCfg)
	h.hub.Register(client)
	h.service.HandleConnect(h.clientCtx(client), client)

	go client.WritePump()
	go client.ReadPump(h.handleMessage, func(c *hub.Client) {
		h.service.HandleDisconnect(h.clientCtx(c), c)
	})

	l.Info().
		Str(log.FieldUserID, identity.UserID).
		Str(log.FieldClientID, client.ID).
		Msg("websocket connection established")
}

// handleMessage decodes one wire event. A panic in any event handler is
// contained here and surfaces only as an error event to this connection.
func (h *WSHandler) handleMessage(client *hub.Client, message []byte) {
	defer func() {
		if rec := recover(); rec != nil {
			l := log.L()
			l.Error().
				Interface("panic", rec).
				Str(log.FieldClientID, client.ID).
				Msg("event handler panicked")
			client.SendMessage(domain.NewErrorMessage(domain.ErrCodeInternalError, "Internal error"))
		}
	}()

	var base domain.BaseMessage
	if err := json.Unmarshal(message, &base); err != nil {
		client.SendMessage(domain.NewErrorMessage(domain.ErrCodeBadRequest, "Invalid message format"))
		return
	}

	ctx := h.clientCtx(client)
	l := log.Ctx(ctx)

	switch base.Type {
	case domain.MsgTypeJoinRoom:
		var msg domain.JoinRoomMessage
		if err := json.Unmarshal(message, &msg); err != nil || msg.RoomID == "" {
			client.SendMessage(domain.NewErrorMessage(domain.ErrCodeBadRequest, "Invalid join_room message"))
			return
		}
		if err := h.service.HandleJoinRoom(ctx, client, msg.RoomID); err != nil {
			l.Debug().Err(err).Str(log.FieldRoomID, msg.RoomID).Msg("join room failed")
		}

	case domain.MsgTypeSendMessage:
		var msg domain.SendMessageWS
		if err := json.Unmarshal(message, &msg); err != nil || msg.RoomID == "" {
			client.SendMessage(domain.NewErrorMessage(domain.ErrCodeBadRequest, "Invalid send_message"))
			return
		}
		if err := h.service.HandleSendMessage(ctx, client, msg.RoomID, msg.Content, msg.MessageType); err != nil {
			l.Debug().Err(err).Str(log.FieldRoomID, msg.RoomID).Msg("send message failed")
		}

	case domain.MsgTypeTypingStart:
		var msg domain.TypingMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			return
		}
		h.service.HandleTypingStart(ctx, client, msg.RoomID)

	case domain.MsgTypeTypingStop:
		var msg domain.TypingMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			return
		}
		h.service.HandleTypingStop(ctx, client, msg.RoomID)

	case domain.MsgTypeMarkRead:
		var msg domain.MarkReadMessage
		if err := json.Unmarshal(message, &msg); err != nil || msg.MessageID == "" {
			return
		}
		h.service.HandleMarkRead(ctx, client, msg.MessageID)

	case domain.MsgTypePing:
		client.SendMessage(map[string]string{"type": domain.MsgTypePong})

	default:
		client.SendMessage(domain.NewErrorMessage(domain.ErrCodeBadRequest, "Unknown message type"))
	}
}

func (h *WSHandler) clientCtx(client *hub.Client) context.Context {
	logger := log.L().With().
		Str(log.FieldUserID, client.UserID).
		Str(log.FieldClientID, client.ID).
		Logger()
	return log.WithLogger(context.Background(), logger)
}

// bearerToken extracts the credential from the Authorization header or,
// for browser clients that cannot set headers on upgrade requests, the
// token query parameter.
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return r.URL.Query().Get("token")
}
