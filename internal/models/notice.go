package models

import (
	"time"

	"gorm.io/datatypes"
)

type NoticePriority string

const (
	PriorityLow    NoticePriority = "low"
	PriorityNormal NoticePriority = "normal"
	PriorityHigh   NoticePriority = "high"
	PriorityUrgent NoticePriority = "urgent"
)

type NoticeAudience string

const (
	AudienceAll      NoticeAudience = "all"
	AudienceStudents NoticeAudience = "students"
	AudienceTeachers NoticeAudience = "teachers"
)

type Notice struct {
	ID             uint           `json:"id" gorm:"primaryKey"`
	Title          string         `json:"title" gorm:"not null;size:200"`
	Content        string         `json:"content" gorm:"type:text;not null"`
	Priority       NoticePriority `json:"priority" gorm:"not null;size:20;default:normal"`
	TargetAudience NoticeAudience `json:"target_audience" gorm:"not null;size:20;default:all;index"`
	AuthorID       uint           `json:"author_id" gorm:"not null;index"`
	IsActive       bool           `json:"is_active" gorm:"not null;default:true;index"`

	CreatedAt time.Time `json:"created_at" gorm:"index"`
	UpdatedAt time.Time `json:"updated_at"`

	Author *User `json:"author,omitempty" gorm:"foreignKey:AuthorID"`
}

func (Notice) TableName() string {
	return "notices"
}

type LogStatus string

const (
	LogSuccess LogStatus = "success"
	LogFailed  LogStatus = "failed"
	LogWarning LogStatus = "warning"
)

type SystemLog struct {
	ID           uint           `json:"id" gorm:"primaryKey"`
	UserID       *uint          `json:"user_id" gorm:"index"`
	Action       string         `json:"action" gorm:"not null;size:200"`
	ResourceType *string        `json:"resource_type" gorm:"size:50"`
	ResourceID   *string        `json:"resource_id" gorm:"size:50"`
	IPAddress    *string        `json:"ip_address" gorm:"size:45"`
	Status       LogStatus      `json:"status" gorm:"not null;size:20;default:success;index"`
	Details      datatypes.JSON `json:"details" gorm:"type:jsonb"`
	CreatedAt    time.Time      `json:"created_at" gorm:"index"`

	User *User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

func (SystemLog) TableName() string {
	return "system_logs"
}
