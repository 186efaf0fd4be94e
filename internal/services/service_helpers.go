package services

import (
	"context"
	"log/slog"
	"math"
	"strings"

	"github.com/SAP-F-2025/student-service/internal/events"
	"github.com/SAP-F-2025/student-service/internal/models"
	"github.com/SAP-F-2025/student-service/internal/repositories"
	"gorm.io/gorm"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

func withTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	return db.WithContext(ctx).Transaction(fn)
}

// publishEvent hands an event to the bus. Publishing never fails the
// operation that produced the event.
func publishEvent(ctx context.Context, publisher events.EventPublisher, logger *slog.Logger, event *events.Event) {
	if publisher == nil {
		return
	}
	if err := publisher.Publish(ctx, event); err != nil {
		logger.Warn("Failed to publish event", "event_type", event.Type, "error", err)
	}
}

func roundFloat(val float64, precision int) float64 {
	ratio := math.Pow(10, float64(precision))
	return math.Round(val*ratio) / ratio
}

// normalizePage clamps paging input to sane bounds
func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return page, pageSize
}

func stringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// trimmedPtr returns nil for nil or blank input
func trimmedPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

// studentOf loads the caller's student profile
func studentOf(ctx context.Context, repo repositories.Repository, db *gorm.DB, actor *models.User) (*models.Student, error) {
	student, err := repo.Profile().GetStudentByUserID(ctx, db, actor.ID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrStudentProfileNotFound
		}
		return nil, err
	}
	return student, nil
}

// teacherOf loads the caller's teacher profile
func teacherOf(ctx context.Context, repo repositories.Repository, db *gorm.DB, actor *models.User) (*models.Teacher, error) {
	teacher, err := repo.Profile().GetTeacherByUserID(ctx, db, actor.ID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrTeacherProfileNotFound
		}
		return nil, err
	}
	return teacher, nil
}
