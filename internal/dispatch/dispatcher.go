package dispatch

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/athenalobo/muditha-platform/internal/analysis"
	"github.com/athenalobo/muditha-platform/internal/bus"
	"github.com/athenalobo/muditha-platform/internal/domain"
	"github.com/athenalobo/muditha-platform/internal/oracle"
	"github.com/athenalobo/muditha-platform/internal/presence"
	"github.com/athenalobo/muditha-platform/internal/repository"
	"github.com/athenalobo/muditha-platform/internal/room"
	"github.com/athenalobo/muditha-platform/pkg/log"
	"github.com/athenalobo/muditha-platform/pkg/pubsub"
)

var (
	ErrEmptyContent   = errors.New("message content is empty")
	ErrContentTooLong = errors.New("message content too long")
	ErrStorage        = errors.New("storage error")
)

// SendResult is the outcome of a dispatched send. AIReply is nil for
// rooms without the assistant, and also when the assistant's reply could
// not be persisted.
type SendResult struct {
	UserMessage *domain.Message
	AIReply     *domain.Message
}

// Dispatcher orchestrates a send: persist, bump room activity, fan out,
// and run the assistant turn for AI-enabled rooms. Sends within one room
// are serialized so persistence order equals broadcast order; different
// rooms dispatch concurrently.
type Dispatcher struct {
	guard    room.Guard
	messages repository.MessageRepository
	rooms    repository.RoomRepository
	pipeline *analysis.Pipeline
	fanout   *bus.Fanout
	tracker  presence.Tracker
	window   int

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewDispatcher creates a dispatcher.
func NewDispatcher(
	guard room.Guard,
	messages repository.MessageRepository,
	rooms repository.RoomRepository,
	pipeline *analysis.Pipeline,
	fanout *bus.Fanout,
	tracker presence.Tracker,
	historyWindow int,
) *Dispatcher {
	if historyWindow <= 0 {
		historyWindow = 10
	}
	return &Dispatcher{
		guard:    guard,
		messages: messages,
		rooms:    rooms,
		pipeline: pipeline,
		fanout:   fanout,
		tracker:  tracker,
		window:   historyWindow,
		locks:    make(map[string]*sync.Mutex),
	}
}

// Send dispatches a message into a room on behalf of a user.
func (d *Dispatcher) Send(ctx context.Context, roomID, senderID, senderUsername, content string, msgType domain.MessageType) (*SendResult, error) {
	l := log.Ctx(ctx)

	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyContent
	}
	if len(content) > domain.MaxContentLength {
		return nil, ErrContentTooLong
	}
	if msgType == "" {
		msgType = domain.MessageTypeText
	}

	r, err := d.guard.Authorize(ctx, roomID, senderID)
	if err != nil {
		return nil, err
	}

	lock := d.roomLock(roomID)
	lock.Lock()

	// Snapshot prior turns before the new message lands, so the
	// assistant sees them as conversational context.
	var history []oracle.Turn
	if r.AIEnabled() {
		history = d.historyTurns(ctx, roomID)
	}

	msg := &domain.Message{
		RoomID:  roomID,
		Author:  domain.HumanAuthor(senderID),
		Content: content,
		Type:    msgType,
	}
	if err := d.messages.Create(ctx, msg); err != nil {
		lock.Unlock()
		l.Error().Err(err).Str(log.FieldRoomID, roomID).Msg("message persistence failed")
		return nil, ErrStorage
	}

	if err := d.rooms.BumpActivity(ctx, roomID, msg.CreatedAt); err != nil {
		l.Warn().Err(err).Str(log.FieldRoomID, roomID).Msg("failed to bump room activity")
	}

	d.fanout.Room(ctx, roomID, pubsub.EventNewMessage, domain.NewMessageEvent(msg, senderUsername), "")
	lock.Unlock()

	result := &SendResult{UserMessage: msg}
	if r.AIEnabled() {
		result.AIReply = d.assistantTurn(ctx, roomID, content, history, lock)
	}
	return result, nil
}

// assistantTurn runs the analysis pipeline and delivers the assistant's
// reply. Any failure here is contained: the user message already went
// out, so the turn simply produces no reply.
func (d *Dispatcher) assistantTurn(ctx context.Context, roomID, content string, history []oracle.Turn, lock *sync.Mutex) (reply *domain.Message) {
	l := log.Ctx(ctx)

	defer func() {
		if rec := recover(); rec != nil {
			l.Error().Interface("panic", rec).Str(log.FieldRoomID, roomID).Msg("assistant turn panicked")
			reply = nil
		}
	}()

	// The pipeline runs outside the room lock: a slow oracle must not
	// stall other senders.
	res := d.pipeline.Evaluate(ctx, content, history)

	metadata := res.Metadata
	aiMsg := &domain.Message{
		RoomID:   roomID,
		Author:   domain.AssistantAuthor(),
		Content:  res.Reply,
		Type:     domain.MessageTypeAIResponse,
		Metadata: &metadata,
	}

	lock.Lock()
	defer lock.Unlock()

	if err := d.messages.Create(ctx, aiMsg); err != nil {
		l.Warn().Err(err).Str(log.FieldRoomID, roomID).Msg("assistant reply dropped, persistence failed")
		return nil
	}
	if err := d.rooms.BumpActivity(ctx, roomID, aiMsg.CreatedAt); err != nil {
		l.Warn().Err(err).Str(log.FieldRoomID, roomID).Msg("failed to bump room activity")
	}

	d.fanout.Room(ctx, roomID, pubsub.EventNewMessage, domain.NewMessageEvent(aiMsg, ""), "")
	return aiMsg
}

// MarkRead records a read receipt and notifies the sender's live
// connection when one can be located. A sender that is offline or
// unlocatable is silently skipped.
func (d *Dispatcher) MarkRead(ctx context.Context, messageID, readerID string) error {
	l := log.Ctx(ctx)

	msg, err := d.messages.GetByID(ctx, messageID)
	if err != nil {
		return err
	}

	now := time.Now()
	if _, err := d.messages.MarkRead(ctx, messageID, readerID, now); err != nil {
		return err
	}

	if msg.Author.IsAssistant() || msg.Author.UserID == readerID {
		return nil
	}

	locator, ok, err := d.tracker.Locate(ctx, msg.Author.UserID)
	if err != nil || !ok {
		return nil
	}

	notice := &domain.MessageReadOut{
		Type:      domain.MsgTypeMessageRead,
		MessageID: messageID,
		ReadBy:    readerID,
		ReadAt:    now.UnixMilli(),
	}
	d.fanout.User(ctx, msg.Author.UserID, locator, pubsub.EventMessageRead, notice)
	l.Debug().
		Str(log.FieldMessageID, messageID).
		Str(log.FieldUserID, readerID).
		Msg("read receipt recorded")
	return nil
}

// historyTurns loads the newest prior messages of a room as oracle
// turns, oldest first. Best-effort: on error the assistant just sees an
// empty context.
func (d *Dispatcher) historyTurns(ctx context.Context, roomID string) []oracle.Turn {
	msgs, err := d.messages.Recent(ctx, roomID, d.window)
	if err != nil {
		l := log.Ctx(ctx)
		l.Warn().Err(err).Str(log.FieldRoomID, roomID).Msg("failed to load history for assistant context")
		return nil
	}

	turns := make([]oracle.Turn, 0, len(msgs))
	for i := range msgs {
		role := oracle.RoleUser
		if msgs[i].Author.IsAssistant() {
			role = oracle.RoleAssistant
		}
		turns = append(turns, oracle.Turn{Role: role, Content: msgs[i].Content})
	}
	return turns
}

func (d *Dispatcher) roomLock(roomID string) *sync.Mutex {
	d.mu.Lock()
	defer d.mu.Unlock()
	lock, ok := d.locks[roomID]
	if !ok {
		lock = &sync.Mutex{}
		d.locks[roomID] = lock
	}
	return lock
}
