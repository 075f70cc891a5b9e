package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	UploadStatusProcessing = "processing"
	UploadStatusProcessed  = "processed"
	UploadStatusFailed     = "failed"
)

type UploadedFile struct {
	ID           uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID       uuid.UUID      `gorm:"index;not null;column:user_id" json:"user_id"`
	User         *User          `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"-"`
	FileName     string         `gorm:"not null;column:file_name" json:"file_name"`
	FileSize     int64          `gorm:"not null;column:file_size" json:"file_size"`
	MimeType     string         `gorm:"column:mime_type" json:"mime_type"`
	Status       string         `gorm:"not null;default:processing;column:status" json:"status"`
	TripsCreated int            `gorm:"not null;default:0;column:trips_created" json:"trips_created"`
	ErrorMessage string         `gorm:"type:text;column:error_message" json:"error_message"`
	Extraction   datatypes.JSON `gorm:"column:extraction" json:"extraction,omitempty"`
	CreatedAt    time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"not null;default:now()" json:"updated_at"`
}

func (UploadedFile) TableName() string {
	return "uploaded_file"
}
