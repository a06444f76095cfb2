package database

import (
	"time"

	"gorm.io/datatypes"
)

// User status values.
const (
	UserStatusActive   = "active"
	UserStatusInactive = "inactive"
)

// RepresentativeLevel is the level of the 대표 position. Such accounts cannot be deactivated or deleted.
const RepresentativeLevel = 1

// Position is a job title with its rank; level 1 is the highest.
type Position struct {
	ID    uint   `gorm:"primaryKey" json:"id"`
	Name  string `gorm:"type:varchar(50);not null" json:"name"`
	Level int    `gorm:"not null;index" json:"level"`
}

// TableName overrides the table name used by gorm.
func (Position) TableName() string {
	return "position"
}

// User is a staff account. Passwords are stored as entered.
type User struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	UserID        string    `gorm:"type:varchar(10);uniqueIndex;not null" json:"user_id"`
	Name          string    `gorm:"type:varchar(50);not null" json:"name"`
	PositionID    *uint     `gorm:"index" json:"position_id"`
	Position      *Position `gorm:"foreignKey:PositionID" json:"position,omitempty"`
	Password      string    `gorm:"type:varchar(255);not null" json:"-"`
	Phone         string    `gorm:"type:varchar(20)" json:"phone"`
	EmailDisplay  string    `gorm:"type:varchar(255)" json:"email_display"`
	Address       string    `gorm:"type:varchar(255)" json:"address"`
	AddressDetail string    `gorm:"type:varchar(255)" json:"address_detail"`
	CompanyName   string    `gorm:"type:varchar(50)" json:"company_name"`
	Status        string    `gorm:"type:varchar(20);not null;default:active" json:"status"`
	CreatedAt     time.Time `json:"created_at"`
}

// TableName overrides the table name used by gorm.
func (User) TableName() string {
	return "users"
}

// IsRepresentative reports whether the user holds the level-1 position.
func (u User) IsRepresentative() bool {
	return u.Position != nil && u.Position.Level == RepresentativeLevel
}

// AttachedFile is one file attached to a document.
type AttachedFile struct {
	Name string `json:"name"`
	Path string `json:"path"`
	Size int64  `json:"size"`
}

// Document is a submitted document and its review progress.
// The combination of status and progress_status is not validated on save.
type Document struct {
	ID                 uint                              `gorm:"primaryKey" json:"id"`
	UserID             string                            `gorm:"type:varchar(10);index" json:"user_id"`
	UserName           string                            `gorm:"type:varchar(50)" json:"user_name"`
	DocumentType       string                            `gorm:"type:varchar(50)" json:"document_type"`
	Title              string                            `gorm:"type:varchar(255)" json:"title"`
	CompanyName        string                            `gorm:"type:varchar(50)" json:"company_name"`
	RepresentativeName string                            `gorm:"type:varchar(50)" json:"representative_name"`
	ManagerName        string                            `gorm:"type:varchar(50)" json:"manager_name"`
	ProgressDetails    string                            `gorm:"type:varchar(20)" json:"progress_details"`
	Status             string                            `gorm:"type:varchar(20);index;not null;default:waiting" json:"status"`
	ProgressStatus     string                            `gorm:"type:varchar(20);not null;default:not_started" json:"progress_status"`
	SubmittedDate      string                            `gorm:"type:varchar(20)" json:"submitted_date"`
	CompletedDate      string                            `gorm:"type:varchar(20)" json:"completed_date"`
	ProgressStartDate  *time.Time                        `json:"progress_start_date"`
	ProgressEndTime    string                            `gorm:"type:varchar(50)" json:"progress_end_time"`
	StoppedTime        string                            `gorm:"type:varchar(20)" json:"stopped_time"`
	Reason             string                            `gorm:"type:text" json:"reason"`
	ReasonRead         bool                              `gorm:"not null;default:false" json:"reason_read"`
	AttachedFiles      datatypes.JSONSlice[AttachedFile] `json:"attached_files"`
	CreatedAt          time.Time                         `json:"created_at"`
}

// TableName overrides the table name used by gorm.
func (Document) TableName() string {
	return "documents"
}
