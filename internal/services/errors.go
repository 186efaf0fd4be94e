package services

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a service failure for the transport layer
type ErrorKind int

const (
	KindValidation ErrorKind = iota + 1
	KindUnauthenticated
	KindForbidden
	KindNotFound
	// KindConflict covers duplicates and pending-state clashes. The public
	// API reports them as 400.
	KindConflict
	KindUnavailable
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindUnavailable:
		return "unavailable"
	default:
		return "internal"
	}
}

// ServiceError is a domain failure with a client-facing message
type ServiceError struct {
	Kind    ErrorKind
	Message string
}

func (e *ServiceError) Error() string {
	return e.Message
}

func newError(kind ErrorKind, message string) *ServiceError {
	return &ServiceError{Kind: kind, Message: message}
}

// Errorf builds a one-off error of the given kind
func Errorf(kind ErrorKind, format string, args ...interface{}) *ServiceError {
	return newError(kind, fmt.Sprintf(format, args...))
}

// KindOf returns the kind of the first ServiceError in err's chain
func KindOf(err error) (ErrorKind, bool) {
	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		return svcErr.Kind, true
	}
	return 0, false
}

// Auth
var (
	ErrInvalidCredentials = newError(KindUnauthenticated, "Incorrect username or password")
	ErrInactiveUser       = newError(KindValidation, "Inactive user")
	ErrUsernameTaken      = newError(KindConflict, "Username already registered")
	ErrEmailTaken         = newError(KindConflict, "Email already registered")
	ErrInvalidRole        = newError(KindValidation, "Invalid role")
	ErrUserNotFound       = newError(KindNotFound, "User not found")
)

// Friends
var (
	ErrSelfRequest        = newError(KindValidation, "cannot add yourself")
	ErrUnknownUser        = newError(KindNotFound, "user not found")
	ErrAlreadyFriends     = newError(KindConflict, "already friends")
	ErrDuplicatePending   = newError(KindConflict, "a pending friend request already exists")
	ErrRequestNotFound    = newError(KindNotFound, "friend request not found or already processed")
	ErrFriendshipNotFound = newError(KindNotFound, "friendship not found")
	ErrEmptySearchQuery   = newError(KindValidation, "search query must not be empty")
)

// Role upgrade
var (
	ErrNotGuest             = newError(KindValidation, "Only guest users can upgrade their role")
	ErrGuestOnly            = newError(KindForbidden, "Only guest users have upgrade requests")
	ErrInvalidTargetRole    = newError(KindValidation, "Target role must be student or teacher")
	ErrPendingUpgradeExists = newError(KindConflict, "You already have a pending upgrade request")
	ErrUpgradeNotFound      = newError(KindNotFound, "Upgrade request not found")
	ErrAlreadyProcessed     = newError(KindValidation, "Upgrade request already processed")
	ErrRejectionReason      = newError(KindValidation, "Rejection reason is required")
	ErrStudentIDRequired    = newError(KindValidation, "Student ID is required for student role")
	ErrStudentIDTaken       = newError(KindConflict, "Student ID already exists")
	ErrTeacherIDRequired    = newError(KindValidation, "Teacher ID is required for teacher role")
	ErrTeacherIDTaken       = newError(KindConflict, "Teacher ID already exists")
)

// Profiles and academic records
var (
	ErrStudentProfileNotFound = newError(KindNotFound, "Student profile not found")
	ErrTeacherProfileNotFound = newError(KindNotFound, "Teacher profile not found")
	ErrCourseNotOwned         = newError(KindNotFound, "Course not found or not authorized")
	ErrStudentNotEnrolled     = newError(KindNotFound, "Student not enrolled in this course")
	ErrStudentNotFound        = newError(KindNotFound, "Student not found")
)

// Admin
var (
	ErrAdminStatus        = newError(KindValidation, "Cannot change admin status")
	ErrCourseNotFound     = newError(KindNotFound, "Course not found")
	ErrCourseNameTaken    = newError(KindConflict, "Course name already exists")
	ErrCourseCodeTaken    = newError(KindConflict, "Course code already exists")
	ErrTeacherNotFound    = newError(KindValidation, "Teacher not found")
	ErrAlreadyEnrolled    = newError(KindConflict, "Student already enrolled in this course")
	ErrInvalidLogStatus   = newError(KindValidation, "Invalid log status")
	ErrInvalidDateFilter  = newError(KindValidation, "Dates must use the YYYY-MM-DD format")
	ErrEmptyChatMessage   = newError(KindValidation, "Message must not be empty")
	ErrServiceUnavailable = newError(KindUnavailable, "Service temporarily unavailable")
)
