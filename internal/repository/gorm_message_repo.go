package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/athenalobo/muditha-platform/internal/domain"
	"github.com/athenalobo/muditha-platform/pkg/log"
)

// GormMessageRepository implements MessageRepository using GORM.
type GormMessageRepository struct {
	db *gorm.DB
}

// NewGormMessageRepository creates a new GORM-based message repository.
func NewGormMessageRepository(db *gorm.DB) *GormMessageRepository {
	return &GormMessageRepository{db: db}
}

// Create persists a new message.
func (r *GormMessageRepository) Create(ctx context.Context, msg *domain.Message) error {
	l := log.Ctx(ctx)

	if msg.ID == "" {
		msg.ID = uuid.New().String()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}

	model := domain.MessageToModel(msg)
	result := r.db.WithContext(ctx).Create(model)
	if result.Error != nil {
		l.Error().Err(result.Error).Str(log.FieldRoomID, msg.RoomID).Msg("failed to create message in db")
		return result.Error
	}

	msg.CreatedAt = model.CreatedAt
	l.Debug().
		Str(log.FieldMessageID, msg.ID).
		Str(log.FieldRoomID, msg.RoomID).
		Msg("message created in db")
	return nil
}

// GetByID retrieves a message with its read receipts.
func (r *GormMessageRepository) GetByID(ctx context.Context, id string) (*domain.Message, error) {
	l := log.Ctx(ctx)

	var model domain.MessageModel
	result := r.db.WithContext(ctx).Preload("ReadBy").First(&model, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrMessageNotFound
		}
		l.Error().Err(result.Error).Str(log.FieldMessageID, id).Msg("failed to get message by id")
		return nil, result.Error
	}
	return model.ToDomain(), nil
}

// ListRoomMessages retrieves a page of a room's messages. Pages count
// back from the newest message, but each page is returned oldest first.
// Soft-deleted messages are excluded.
func (r *GormMessageRepository) ListRoomMessages(ctx context.Context, roomID string, page, pageSize int) ([]domain.Message, int, error) {
	l := log.Ctx(ctx)

	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 50
	}

	offset := (page - 1) * pageSize

	query := r.db.WithContext(ctx).Model(&domain.MessageModel{}).
		Where("room_id = ? AND is_deleted = ?", roomID, false)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		l.Error().Err(err).Str(log.FieldRoomID, roomID).Msg("failed to count room messages")
		return nil, 0, err
	}

	var models []domain.MessageModel
	if err := query.Preload("ReadBy").
		Order("created_at DESC").
		Offset(offset).Limit(pageSize).
		Find(&models).Error; err != nil {
		l.Error().Err(err).Str(log.FieldRoomID, roomID).Msg("failed to list room messages from db")
		return nil, 0, err
	}

	// Reverse so each page reads oldest first.
	messages := make([]domain.Message, len(models))
	for i := range models {
		messages[len(models)-1-i] = *models[i].ToDomain()
	}

	return messages, int(total), nil
}

// Recent retrieves the latest messages of a room, oldest first.
func (r *GormMessageRepository) Recent(ctx context.Context, roomID string, limit int) ([]domain.Message, error) {
	l := log.Ctx(ctx)

	if limit < 1 {
		return nil, nil
	}

	var models []domain.MessageModel
	result := r.db.WithContext(ctx).
		Where("room_id = ? AND is_deleted = ?", roomID, false).
		Order("created_at DESC").
		Limit(limit).
		Find(&models)
	if result.Error != nil {
		l.Error().Err(result.Error).Str(log.FieldRoomID, roomID).Msg("failed to load recent messages from db")
		return nil, result.Error
	}

	messages := make([]domain.Message, len(models))
	for i := range models {
		messages[len(models)-1-i] = *models[i].ToDomain()
	}
	return messages, nil
}

// MarkRead records a read receipt for a user. The insert is keyed by
// (message, user), so marking twice is a no-op.
func (r *GormMessageRepository) MarkRead(ctx context.Context, messageID, userID string, at time.Time) (bool, error) {
	l := log.Ctx(ctx)

	var exists int64
	if err := r.db.WithContext(ctx).Model(&domain.MessageModel{}).
		Where("id = ?", messageID).
		Count(&exists).Error; err != nil {
		l.Error().Err(err).Str(log.FieldMessageID, messageID).Msg("failed to check message existence")
		return false, err
	}
	if exists == 0 {
		return false, ErrMessageNotFound
	}

	receipt := domain.ReadReceiptModel{
		MessageID: messageID,
		UserID:    userID,
		ReadAt:    at,
	}
	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "message_id"}, {Name: "user_id"}},
		DoNothing: true,
	}).Create(&receipt)
	if result.Error != nil {
		l.Error().Err(result.Error).
			Str(log.FieldMessageID, messageID).
			Str(log.FieldUserID, userID).
			Msg("failed to record read receipt in db")
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}
