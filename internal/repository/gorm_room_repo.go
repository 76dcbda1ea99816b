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

// GormRoomRepository implements RoomRepository using GORM.
type GormRoomRepository struct {
	db *gorm.DB
}

// NewGormRoomRepository creates a new GORM-based room repository.
func NewGormRoomRepository(db *gorm.DB) *GormRoomRepository {
	return &GormRoomRepository{db: db}
}

// Create creates a new room with its initial participants.
func (r *GormRoomRepository) Create(ctx context.Context, room *domain.Room) error {
	l := log.Ctx(ctx)

	room.ID = uuid.New().String()
	room.IsActive = true
	if room.LastActivity.IsZero() {
		room.LastActivity = time.Now()
	}

	model := domain.RoomToModel(room)
	result := r.db.WithContext(ctx).Create(model)
	if result.Error != nil {
		l.Error().Err(result.Error).Msg("failed to create room in db")
		return result.Error
	}

	room.CreatedAt = model.CreatedAt
	l.Debug().Str(log.FieldRoomID, room.ID).Msg("room created in db")
	return nil
}

// GetByID retrieves a room with its full membership.
func (r *GormRoomRepository) GetByID(ctx context.Context, id string) (*domain.Room, error) {
	l := log.Ctx(ctx)

	var model domain.RoomModel
	result := r.db.WithContext(ctx).Preload("Participants").First(&model, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrRoomNotFound
		}
		l.Error().Err(result.Error).Str(log.FieldRoomID, id).Msg("failed to get room by id")
		return nil, result.Error
	}
	return model.ToDomain(), nil
}

// ListUserRooms retrieves the active rooms a user participates in,
// most recently active first.
func (r *GormRoomRepository) ListUserRooms(ctx context.Context, userID string, roomType domain.RoomType, page, pageSize int) ([]domain.Room, int, error) {
	l := log.Ctx(ctx)

	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}

	offset := (page - 1) * pageSize

	query := r.db.WithContext(ctx).Model(&domain.RoomModel{}).
		Joins("JOIN room_participants ON room_participants.room_id = chat_rooms.id").
		Where("room_participants.user_id = ? AND room_participants.is_active = ?", userID, true).
		Where("chat_rooms.is_active = ?", true)
	if roomType != "" {
		query = query.Where("chat_rooms.type = ?", string(roomType))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		l.Error().Err(err).Str(log.FieldUserID, userID).Msg("failed to count user rooms")
		return nil, 0, err
	}

	var models []domain.RoomModel
	if err := query.Preload("Participants").
		Order("chat_rooms.last_activity DESC").
		Offset(offset).Limit(pageSize).
		Find(&models).Error; err != nil {
		l.Error().Err(err).Str(log.FieldUserID, userID).Msg("failed to list user rooms from db")
		return nil, 0, err
	}

	rooms := make([]domain.Room, len(models))
	for i := range models {
		rooms[i] = *models[i].ToDomain()
	}

	return rooms, int(total), nil
}

// UpsertParticipant inserts a membership record or replaces its role,
// joined-at and active flag when one already exists for the user.
func (r *GormRoomRepository) UpsertParticipant(ctx context.Context, roomID string, p domain.Participant) error {
	l := log.Ctx(ctx)

	model := domain.ParticipantModel{
		RoomID:   roomID,
		UserID:   p.UserID,
		Role:     string(p.Role),
		JoinedAt: p.JoinedAt,
		IsActive: p.IsActive,
	}
	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "room_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"role", "joined_at", "is_active"}),
	}).Create(&model)
	if result.Error != nil {
		l.Error().Err(result.Error).
			Str(log.FieldRoomID, roomID).
			Str(log.FieldUserID, p.UserID).
			Msg("failed to upsert participant in db")
		return result.Error
	}
	return nil
}

// BumpActivity updates the room's last-activity timestamp and increments
// its message counter atomically.
func (r *GormRoomRepository) BumpActivity(ctx context.Context, roomID string, at time.Time) error {
	l := log.Ctx(ctx)

	result := r.db.WithContext(ctx).Model(&domain.RoomModel{}).
		Where("id = ?", roomID).
		Updates(map[string]interface{}{
			"last_activity": at,
			"message_count": gorm.Expr("message_count + 1"),
		})
	if result.Error != nil {
		l.Error().Err(result.Error).Str(log.FieldRoomID, roomID).Msg("failed to bump room activity in db")
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrRoomNotFound
	}
	return nil
}
