package types

import (
	"time"

	"github.com/google/uuid"
)

const (
	TripPurposeBusiness = "business"
	TripPurposePersonal = "personal"
	TripPurposeMixed    = "mixed"
)

const (
	TripSourceManual      = "manual"
	TripSourcePDFUpload   = "pdf_upload"
	TripSourceGPSTracking = "gps_tracking"
)

type Trip struct {
	ID            uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID        uuid.UUID  `gorm:"index:idx_trip_user_start;not null;column:user_id" json:"user_id"`
	User          *User      `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"-"`
	StartDate     time.Time  `gorm:"index:idx_trip_user_start;not null;column:start_date" json:"start_date"`
	EndDate       time.Time  `gorm:"not null;column:end_date" json:"end_date"`
	StartMileage  int        `gorm:"not null;column:start_mileage" json:"start_mileage"`
	EndMileage    int        `gorm:"not null;column:end_mileage" json:"end_mileage"`
	TotalMiles    int        `gorm:"not null;column:total_miles" json:"total_miles"`
	StartLocation string     `gorm:"column:start_location" json:"start_location"`
	EndLocation   string     `gorm:"column:end_location" json:"end_location"`
	Purpose       string     `gorm:"not null;default:business;column:purpose" json:"purpose"`
	BusinessMiles int        `gorm:"column:business_miles" json:"business_miles"`
	PersonalMiles int        `gorm:"column:personal_miles" json:"personal_miles"`
	Notes         string     `gorm:"type:text;column:notes" json:"notes"`
	Source        string     `gorm:"not null;default:manual;column:source" json:"source"`
	SourceFile    string     `gorm:"column:source_file" json:"source_file"`
	IsVerified    bool       `gorm:"not null;default:false;column:is_verified" json:"is_verified"`
	VerifiedAt    *time.Time `gorm:"column:verified_at" json:"verified_at,omitempty"`
	CreatedAt     time.Time  `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"not null;default:now()" json:"updated_at"`
}

func (Trip) TableName() string {
	return "trip"
}
