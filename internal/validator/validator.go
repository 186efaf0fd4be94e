package validator

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/SAP-F-2025/student-service/internal/models"
)

// ValidationError describes one failed rule
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
	Rule    string      `json:"rule,omitempty"`
}

type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "validation failed"
	}
	if len(ve) == 1 {
		return fmt.Sprintf("validation failed: %s %s", ve[0].Field, ve[0].Message)
	}
	return fmt.Sprintf("validation failed: %d field errors", len(ve))
}

// Validator wraps go-playground/validator with the service's custom rules
type Validator struct {
	validate *validator.Validate
	business *BusinessValidator
}

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_.-]{3,50}$`)

func New() *Validator {
	validate := validator.New()

	// report json names rather than Go field names
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})

	registerCustomRules(validate)

	return &Validator{
		validate: validate,
		business: newBusinessValidator(),
	}
}

// Validate runs struct validation and returns ValidationErrors on failure
func (v *Validator) Validate(s interface{}) error {
	if err := v.validate.Struct(s); err != nil {
		return ToValidationErrors(err)
	}
	return nil
}

func (v *Validator) GetBusinessValidator() *BusinessValidator {
	return v.business
}

// ToValidationErrors converts validator errors into ValidationErrors
func ToValidationErrors(err error) ValidationErrors {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return ValidationErrors{{Field: "request", Message: err.Error(), Rule: "invalid"}}
	}

	out := make(ValidationErrors, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, ValidationError{
			Field:   fe.Field(),
			Message: messageFor(fe),
			Value:   fe.Value(),
			Rule:    fe.Tag(),
		})
	}
	return out
}

// HasRule reports whether err is a ValidationErrors that failed on rule
func HasRule(err error, rule string) bool {
	var verrs ValidationErrors
	if !errors.As(err, &verrs) {
		return false
	}
	for _, fe := range verrs {
		if fe.Rule == rule {
			return true
		}
	}
	return false
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "username":
		return "must be 3-50 letters, digits, '.', '_' or '-'"
	case "user_role":
		return "must be one of guest, student, teacher, admin"
	case "upgrade_role":
		return "must be student or teacher"
	case "notice_priority":
		return "must be one of low, normal, high, urgent"
	case "notice_audience":
		return "must be one of all, students, teachers"
	case "attendance_status":
		return "must be one of present, absent, late, excused"
	case "exam_type":
		return "must be one of midterm, final, quiz"
	case "score":
		return "must be between 0 and 100"
	case "notblank":
		return "must not be blank"
	default:
		return fmt.Sprintf("failed on the '%s' rule", fe.Tag())
	}
}

func registerCustomRules(v *validator.Validate) {
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	})

	_ = v.RegisterValidation("user_role", func(fl validator.FieldLevel) bool {
		return models.UserRole(fl.Field().String()).IsValid()
	})

	_ = v.RegisterValidation("upgrade_role", func(fl validator.FieldLevel) bool {
		role := models.UserRole(strings.TrimSpace(fl.Field().String()))
		return role == models.RoleStudent || role == models.RoleTeacher
	})

	_ = v.RegisterValidation("notice_priority", func(fl validator.FieldLevel) bool {
		switch models.NoticePriority(fl.Field().String()) {
		case models.PriorityLow, models.PriorityNormal, models.PriorityHigh, models.PriorityUrgent:
			return true
		}
		return false
	})

	_ = v.RegisterValidation("notice_audience", func(fl validator.FieldLevel) bool {
		switch models.NoticeAudience(fl.Field().String()) {
		case models.AudienceAll, models.AudienceStudents, models.AudienceTeachers:
			return true
		}
		return false
	})

	_ = v.RegisterValidation("attendance_status", func(fl validator.FieldLevel) bool {
		switch models.AttendanceStatus(fl.Field().String()) {
		case models.AttendancePresent, models.AttendanceAbsent, models.AttendanceLate, models.AttendanceExcused:
			return true
		}
		return false
	})

	_ = v.RegisterValidation("exam_type", func(fl validator.FieldLevel) bool {
		switch models.ExamType(fl.Field().String()) {
		case models.ExamMidterm, models.ExamFinal, models.ExamQuiz:
			return true
		}
		return false
	})

	// score applies to float fields; pointers are dereferenced by the validator
	_ = v.RegisterValidation("score", func(fl validator.FieldLevel) bool {
		score := fl.Field().Float()
		return score >= 0 && score <= 100
	})

	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
}
