package events

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/SAP-F-2025/student-service/internal/models"
)

type EventType string

const (
	UserRegistered    EventType = "user.registered"
	UserStatusChanged EventType = "user.status_changed"

	FriendRequested EventType = "friend.requested"
	FriendAccepted  EventType = "friend.accepted"
	FriendRejected  EventType = "friend.rejected"
	FriendRemoved   EventType = "friend.removed"

	UpgradeSubmitted EventType = "upgrade.submitted"
	UpgradeApproved  EventType = "upgrade.approved"
	UpgradeRejected  EventType = "upgrade.rejected"

	CourseUpdated       EventType = "course.updated"
	CourseStatusChanged EventType = "course.status_changed"
	EnrollmentCreated   EventType = "enrollment.created"
	ExamCreated         EventType = "exam.created"
	NoticeCreated       EventType = "notice.created"
	GradeSubmitted      EventType = "grade.submitted"
	AttendanceRecorded  EventType = "attendance.recorded"
)

// Event is a domain side effect. Action is the human readable line shown in
// the admin activity feed.
type Event struct {
	ID           string                 `json:"id"`
	Type         EventType              `json:"type"`
	ActorID      *uint                  `json:"actor_id,omitempty"`
	Action       string                 `json:"action"`
	ResourceType string                 `json:"resource_type"`
	ResourceID   string                 `json:"resource_id"`
	Status       models.LogStatus       `json:"status"`
	IPAddress    *string                `json:"ip_address,omitempty"`
	Data         map[string]interface{} `json:"data,omitempty"`
	OccurredAt   time.Time              `json:"occurred_at"`
}

// NewEvent builds a successful event performed by actorID on a resource.
func NewEvent(eventType EventType, actorID uint, action, resourceType string, resourceID uint) *Event {
	return &Event{
		ID:           uuid.NewString(),
		Type:         eventType,
		ActorID:      &actorID,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   strconv.FormatUint(uint64(resourceID), 10),
		Status:       models.LogSuccess,
		OccurredAt:   time.Now().UTC(),
	}
}

// WithData attaches a detail field and returns the event for chaining.
func (e *Event) WithData(key string, value interface{}) *Event {
	if e.Data == nil {
		e.Data = make(map[string]interface{})
	}
	e.Data[key] = value
	return e
}

// EventPublisher publishes domain events
type EventPublisher interface {
	Publish(ctx context.Context, event *Event) error
	Close() error
}

type ipKey struct{}

// WithClientIP stores the caller's address so published events can carry it.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, ipKey{}, ip)
}

func clientIP(ctx context.Context) *string {
	if ip, ok := ctx.Value(ipKey{}).(string); ok && ip != "" {
		return &ip
	}
	return nil
}
