package auth

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/athenalobo/muditha-platform/pkg/log"
)

// IdentityModel maps the auth service's users table. Read-only here.
type IdentityModel struct {
	ID       string `gorm:"type:varchar(36);primaryKey"`
	Email    string `gorm:"type:varchar(255)"`
	Username string `gorm:"type:varchar(50)"`
	IsActive bool   `gorm:"default:true"`
}

// TableName specifies the table name for IdentityModel.
func (IdentityModel) TableName() string {
	return "users"
}

// GormIdentityStore implements IdentityStore against the shared users table.
type GormIdentityStore struct {
	db *gorm.DB
}

// NewGormIdentityStore creates a new GORM-based identity store.
func NewGormIdentityStore(db *gorm.DB) *GormIdentityStore {
	return &GormIdentityStore{db: db}
}

// GetByID retrieves an identity by user id.
func (s *GormIdentityStore) GetByID(ctx context.Context, userID string) (*Identity, error) {
	l := log.Ctx(ctx)

	var model IdentityModel
	result := s.db.WithContext(ctx).First(&model, "id = ?", userID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrUnauthenticated
		}
		l.Error().Err(result.Error).Str(log.FieldUserID, userID).Msg("failed to load identity from db")
		return nil, result.Error
	}

	return &Identity{
		UserID:   model.ID,
		Email:    model.Email,
		Username: model.Username,
		IsActive: model.IsActive,
	}, nil
}
