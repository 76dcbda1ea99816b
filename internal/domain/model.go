package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/athenalobo/muditha-platform/pkg/database"
)

// RoomModel is the GORM model for the chat_rooms table.
type RoomModel struct {
	ID                string               `gorm:"type:varchar(36);primaryKey"`
	Name              string               `gorm:"type:varchar(100);not null"`
	Description       string               `gorm:"type:text"`
	Type              string               `gorm:"type:varchar(20);index;not null;default:'group'"`
	IsPrivate         bool                 `gorm:"default:false"`
	AllowAnonymous    bool                 `gorm:"default:false"`
	MaxParticipants   int                  `gorm:"default:50"`
	AIModeration      bool                 `gorm:"default:false"`
	CrisisDetection   bool                 `gorm:"default:true"`
	AIEnabled         bool                 `gorm:"default:false"`
	AIPersonality     string               `gorm:"type:varchar(50)"`
	AISpecializations database.StringArray `gorm:"type:text"`
	LastActivity      time.Time
	MessageCount      int64  `gorm:"default:0"`
	IsActive          bool   `gorm:"index;default:true"`
	CreatedBy         string `gorm:"type:varchar(36);index;not null"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
	Participants      []ParticipantModel `gorm:"foreignKey:RoomID"`
}

// TableName specifies the table name for RoomModel.
func (RoomModel) TableName() string {
	return "chat_rooms"
}

// ParticipantModel is the GORM model for room membership records.
type ParticipantModel struct {
	ID       uint   `gorm:"primaryKey;autoIncrement"`
	RoomID   string `gorm:"type:varchar(36);uniqueIndex:idx_room_user;not null"`
	UserID   string `gorm:"type:varchar(36);uniqueIndex:idx_room_user;not null"`
	Role     string `gorm:"type:varchar(20);not null;default:'member'"`
	JoinedAt time.Time
	IsActive bool `gorm:"default:true"`
}

// TableName specifies the table name for ParticipantModel.
func (ParticipantModel) TableName() string {
	return "room_participants"
}

// MessageModel is the GORM model for the chat_messages table.
// SenderID is NULL exactly when the message was written by the assistant.
type MessageModel struct {
	ID        string  `gorm:"type:varchar(36);primaryKey"`
	RoomID    string  `gorm:"type:varchar(36);index:idx_room_created,priority:1;not null"`
	SenderID  *string `gorm:"type:varchar(36);index"`
	Content   string  `gorm:"type:text;not null"`
	Type      string  `gorm:"type:varchar(20);not null;default:'text'"`
	Metadata  *MetadataColumn `gorm:"type:text"`
	IsEdited  bool    `gorm:"default:false"`
	EditedAt  *time.Time
	IsDeleted bool `gorm:"index;default:false"`
	DeletedAt *time.Time
	CreatedAt time.Time `gorm:"index:idx_room_created,priority:2"`
	UpdatedAt time.Time
	ReadBy    []ReadReceiptModel `gorm:"foreignKey:MessageID"`
}

// TableName specifies the table name for MessageModel.
func (MessageModel) TableName() string {
	return "chat_messages"
}

// ReadReceiptModel is the GORM model for per-user read receipts.
type ReadReceiptModel struct {
	ID        uint   `gorm:"primaryKey;autoIncrement"`
	MessageID string `gorm:"type:varchar(36);uniqueIndex:idx_message_user;not null"`
	UserID    string `gorm:"type:varchar(36);uniqueIndex:idx_message_user;not null"`
	ReadAt    time.Time
}

// TableName specifies the table name for ReadReceiptModel.
func (ReadReceiptModel) TableName() string {
	return "message_read_receipts"
}

// MetadataColumn stores MessageMetadata as a JSON text column, the same
// storage scheme as database.StringArray.
type MetadataColumn MessageMetadata

// Scan implements the sql.Scanner interface.
func (m *MetadataColumn) Scan(value interface{}) error {
	if value == nil {
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	default:
		return errors.New("MetadataColumn: unsupported scan type")
	}
}

// Value implements the driver.Valuer interface.
func (m MetadataColumn) Value() (driver.Value, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// GormDataType returns the GORM data type hint.
func (MetadataColumn) GormDataType() string {
	return "text"
}

// ToDomain converts ParticipantModel to domain Participant.
func (m *ParticipantModel) ToDomain() Participant {
	return Participant{
		UserID:   m.UserID,
		Role:     Role(m.Role),
		JoinedAt: m.JoinedAt,
		IsActive: m.IsActive,
	}
}

// ToDomain converts RoomModel to domain Room.
func (m *RoomModel) ToDomain() *Room {
	participants := make([]Participant, 0, len(m.Participants))
	for i := range m.Participants {
		participants = append(participants, m.Participants[i].ToDomain())
	}
	return &Room{
		ID:           m.ID,
		Name:         m.Name,
		Description:  m.Description,
		Type:         RoomType(m.Type),
		Participants: participants,
		Settings: RoomSettings{
			IsPrivate:       m.IsPrivate,
			AllowAnonymous:  m.AllowAnonymous,
			MaxParticipants: m.MaxParticipants,
			AIModeration:    m.AIModeration,
			CrisisDetection: m.CrisisDetection,
		},
		AIAssistant: AIAssistant{
			Enabled:         m.AIEnabled,
			Personality:     m.AIPersonality,
			Specializations: []string(m.AISpecializations),
		},
		LastActivity: m.LastActivity,
		MessageCount: m.MessageCount,
		IsActive:     m.IsActive,
		CreatedBy:    m.CreatedBy,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

// RoomToModel converts domain Room to RoomModel.
func RoomToModel(r *Room) *RoomModel {
	participants := make([]ParticipantModel, 0, len(r.Participants))
	for i := range r.Participants {
		p := r.Participants[i]
		participants = append(participants, ParticipantModel{
			RoomID:   r.ID,
			UserID:   p.UserID,
			Role:     string(p.Role),
			JoinedAt: p.JoinedAt,
			IsActive: p.IsActive,
		})
	}
	return &RoomModel{
		ID:                r.ID,
		Name:              r.Name,
		Description:       r.Description,
		Type:              string(r.Type),
		IsPrivate:         r.Settings.IsPrivate,
		AllowAnonymous:    r.Settings.AllowAnonymous,
		MaxParticipants:   r.Settings.MaxParticipants,
		AIModeration:      r.Settings.AIModeration,
		CrisisDetection:   r.Settings.CrisisDetection,
		AIEnabled:         r.AIAssistant.Enabled,
		AIPersonality:     r.AIAssistant.Personality,
		AISpecializations: database.StringArray(r.AIAssistant.Specializations),
		LastActivity:      r.LastActivity,
		MessageCount:      r.MessageCount,
		IsActive:          r.IsActive,
		CreatedBy:         r.CreatedBy,
		CreatedAt:         r.CreatedAt,
		UpdatedAt:         r.UpdatedAt,
		Participants:      participants,
	}
}

// ToDomain converts MessageModel to domain Message.
func (m *MessageModel) ToDomain() *Message {
	author := AssistantAuthor()
	if m.SenderID != nil {
		author = HumanAuthor(*m.SenderID)
	}
	var metadata *MessageMetadata
	if m.Metadata != nil {
		md := MessageMetadata(*m.Metadata)
		metadata = &md
	}
	readBy := make([]ReadReceipt, 0, len(m.ReadBy))
	for i := range m.ReadBy {
		readBy = append(readBy, ReadReceipt{
			UserID: m.ReadBy[i].UserID,
			ReadAt: m.ReadBy[i].ReadAt,
		})
	}
	return &Message{
		ID:        m.ID,
		RoomID:    m.RoomID,
		Author:    author,
		Content:   m.Content,
		Type:      MessageType(m.Type),
		Metadata:  metadata,
		ReadBy:    readBy,
		IsEdited:  m.IsEdited,
		EditedAt:  m.EditedAt,
		IsDeleted: m.IsDeleted,
		DeletedAt: m.DeletedAt,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// MessageToModel converts domain Message to MessageModel.
func MessageToModel(msg *Message) *MessageModel {
	var senderID *string
	if !msg.Author.IsAssistant() {
		id := msg.Author.UserID
		senderID = &id
	}
	var metadata *MetadataColumn
	if msg.Metadata != nil {
		md := MetadataColumn(*msg.Metadata)
		metadata = &md
	}
	return &MessageModel{
		ID:        msg.ID,
		RoomID:    msg.RoomID,
		SenderID:  senderID,
		Content:   msg.Content,
		Type:      string(msg.Type),
		Metadata:  metadata,
		IsEdited:  msg.IsEdited,
		EditedAt:  msg.EditedAt,
		IsDeleted: msg.IsDeleted,
		DeletedAt: msg.DeletedAt,
		CreatedAt: msg.CreatedAt,
		UpdatedAt: msg.UpdatedAt,
	}
}
