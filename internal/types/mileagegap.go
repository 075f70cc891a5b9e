package types

import (
	"time"

	"github.com/google/uuid"
)

const (
	GapTypeDateGap              = "date_gap"
	GapTypeMileageInconsistency = "mileage_inconsistency"
	GapTypeOdometerRollover     = "odometer_rollover"
	GapTypeUnusualPattern       = "unusual_pattern"
)

const (
	SeverityLow      = "low"
	SeverityMedium   = "medium"
	SeverityHigh     = "high"
	SeverityCritical = "critical"
)

const (
	GapStatusOpen          = "open"
	GapStatusInvestigating = "investigating"
	GapStatusResolved      = "resolved"
	GapStatusIgnored       = "ignored"
)

// GapTypes and Severities list every valid value in a stable order, used to
// zero-fill summary maps.
var (
	GapTypes   = []string{GapTypeDateGap, GapTypeMileageInconsistency, GapTypeOdometerRollover, GapTypeUnusualPattern}
	Severities = []string{SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical}
)

type MileageGap struct {
	ID              uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID          uuid.UUID  `gorm:"index:idx_gap_user_status;not null;column:user_id" json:"user_id"`
	User            *User      `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"-"`
	GapStartDate    time.Time  `gorm:"index:idx_gap_range;not null;column:gap_start_date" json:"gap_start_date"`
	GapEndDate      time.Time  `gorm:"index:idx_gap_range;not null;column:gap_end_date" json:"gap_end_date"`
	StartMileage    int        `gorm:"not null;column:start_mileage" json:"start_mileage"`
	EndMileage      int        `gorm:"not null;column:end_mileage" json:"end_mileage"`
	MissingMiles    int        `gorm:"not null;column:missing_miles" json:"missing_miles"`
	GapType         string     `gorm:"not null;column:gap_type" json:"gap_type"`
	Severity        string     `gorm:"not null;default:medium;column:severity" json:"severity"`
	Status          string     `gorm:"index:idx_gap_user_status;not null;default:open;column:status" json:"status"`
	Description     string     `gorm:"type:text;column:description" json:"description"`
	SuggestedAction string     `gorm:"type:text;column:suggested_action" json:"suggested_action"`
	ResolvedAt      *time.Time `gorm:"column:resolved_at" json:"resolved_at,omitempty"`
	ResolvedBy      *uuid.UUID `gorm:"type:uuid;column:resolved_by" json:"resolved_by,omitempty"`
	ResolutionNotes string     `gorm:"type:text;column:resolution_notes" json:"resolution_notes"`
	CreatedAt       time.Time  `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"not null;default:now()" json:"updated_at"`
}

func (MileageGap) TableName() string {
	return "mileage_gap"
}
