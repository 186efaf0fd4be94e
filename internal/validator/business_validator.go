package validator

import (
	"fmt"

	"github.com/SAP-F-2025/student-service/internal/models"
)

// BusinessValidator handles cross-field rules that depend on stored state
type BusinessValidator struct{}

func newBusinessValidator() *BusinessValidator {
	return &BusinessValidator{}
}

// ValidateCourseBounds checks the numeric bounds of a course update. The
// messages are returned to clients verbatim.
func (bv *BusinessValidator) ValidateCourseBounds(req *CourseUpdateRequest, activeEnrollments int64) ValidationErrors {
	var errors ValidationErrors

	if req.Credits != nil && (*req.Credits < models.MinCredits || *req.Credits > models.MaxCredits) {
		errors = append(errors, ValidationError{
			Field:   "credits",
			Message: fmt.Sprintf("Credits must be between %d and %d", models.MinCredits, models.MaxCredits),
			Value:   *req.Credits,
			Rule:    "range",
		})
	}

	if req.MaxStudents != nil {
		switch {
		case *req.MaxStudents < models.MinMaxStudents || *req.MaxStudents > models.MaxMaxStudents:
			errors = append(errors, ValidationError{
				Field:   "max_students",
				Message: fmt.Sprintf("Max students must be between %d and %d", models.MinMaxStudents, models.MaxMaxStudents),
				Value:   *req.MaxStudents,
				Rule:    "range",
			})
		case int64(*req.MaxStudents) < activeEnrollments:
			errors = append(errors, ValidationError{
				Field:   "max_students",
				Message: fmt.Sprintf("Cannot reduce max students below current enrollment count (%d)", activeEnrollments),
				Value:   *req.MaxStudents,
				Rule:    "business_logic",
			})
		}
	}

	return errors
}

// ValidateEnrollment checks course state and capacity before enrolling
func (bv *BusinessValidator) ValidateEnrollment(course *models.Course, activeEnrollments int64) ValidationErrors {
	var errors ValidationErrors

	if !course.IsActive {
		errors = append(errors, ValidationError{
			Field:   "course",
			Message: "Course is not active",
			Value:   course.ID,
			Rule:    "business_logic",
		})
	}

	if activeEnrollments >= int64(course.MaxStudents) {
		errors = append(errors, ValidationError{
			Field:   "max_students",
			Message: "Course is full",
			Value:   course.MaxStudents,
			Rule:    "business_logic",
		})
	}

	return errors
}
