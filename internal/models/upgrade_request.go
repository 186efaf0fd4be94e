package models

import (
	"time"
)

type UpgradeStatus string

const (
	UpgradePending  UpgradeStatus = "pending"
	UpgradeApproved UpgradeStatus = "approved"
	UpgradeRejected UpgradeStatus = "rejected"
)

// UpgradeRequest is a guest's request to become a student or a teacher.
// PendingKey holds the user id while the request is pending; its unique
// index keeps one outstanding request per guest.
type UpgradeRequest struct {
	ID         uint     `json:"id" gorm:"primaryKey"`
	UserID     uint     `json:"user_id" gorm:"not null;index"`
	TargetRole UserRole `json:"target_role" gorm:"not null;size:20"`

	// Student fields
	StudentID *string `json:"student_id" gorm:"size:20"`
	ClassName *string `json:"class_name" gorm:"size:50"`

	// Teacher fields
	TeacherID  *string `json:"teacher_id" gorm:"size:20"`
	Department *string `json:"department" gorm:"size:100"`
	Title      *string `json:"title" gorm:"size:50"`

	Reason          *string       `json:"reason" gorm:"type:text"`
	Status          UpgradeStatus `json:"status" gorm:"not null;size:20;default:pending;index"`
	PendingKey      *uint         `json:"-" gorm:"uniqueIndex"`
	ProcessedAt     *time.Time    `json:"processed_at"`
	ProcessedBy     *uint         `json:"processed_by"`
	RejectionReason *string       `json:"rejection_reason" gorm:"type:text"`

	CreatedAt time.Time `json:"created_at" gorm:"index"`
	UpdatedAt time.Time `json:"updated_at"`

	User *User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

func (UpgradeRequest) TableName() string {
	return "upgrade_requests"
}

func (r *UpgradeRequest) IsPending() bool {
	return r.Status == UpgradePending
}

// Identifier returns the role-specific id carried by the request.
func (r *UpgradeRequest) Identifier() *string {
	if r.TargetRole == RoleTeacher {
		return r.TeacherID
	}
	return r.StudentID
}
