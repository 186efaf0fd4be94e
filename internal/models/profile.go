package models

// Profile is the role-specific part of a user snapshot. Kind always matches
// the user's role; Student or Teacher is set only for those roles and only
// when the profile row exists.
type Profile struct {
	Kind    UserRole        `json:"kind"`
	Student *StudentProfile `json:"student,omitempty"`
	Teacher *TeacherProfile `json:"teacher,omitempty"`
}

type StudentProfile struct {
	StudentID string  `json:"student_id"`
	ClassName *string `json:"class_name"`
}

type TeacherProfile struct {
	TeacherID  string  `json:"teacher_id"`
	Department *string `json:"department"`
	Title      *string `json:"title"`
}

// ProfileOf builds the profile variant from a user with its Student and
// Teacher relations preloaded.
func ProfileOf(u *User) Profile {
	p := Profile{Kind: u.Role}
	switch u.Role {
	case RoleStudent:
		if u.Student != nil {
			p.Student = &StudentProfile{
				StudentID: u.Student.StudentID,
				ClassName: u.Student.ClassName,
			}
		}
	case RoleTeacher:
		if u.Teacher != nil {
			p.Teacher = &TeacherProfile{
				TeacherID:  u.Teacher.TeacherID,
				Department: u.Teacher.Department,
				Title:      u.Teacher.Title,
			}
		}
	}
	return p
}

// UserSnapshot is the public view of a user used by login, /auth/me and
// the admin user list.
type UserSnapshot struct {
	ID       uint     `json:"id"`
	Username string   `json:"username"`
	Email    string   `json:"email"`
	FullName string   `json:"full_name"`
	Role     UserRole `json:"role"`
	IsActive bool     `json:"is_active"`
	Profile  Profile  `json:"profile"`
}

func SnapshotOf(u *User) UserSnapshot {
	return UserSnapshot{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		FullName: u.FullName,
		Role:     u.Role,
		IsActive: u.IsActive,
		Profile:  ProfileOf(u),
	}
}
