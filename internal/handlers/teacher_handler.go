package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/student-service/internal/services"
	"github.com/SAP-F-2025/student-service/internal/utils"
)

type TeacherHandler struct {
	BaseHandler
	service services.TeacherService
}

func NewTeacherHandler(service services.TeacherService, logger utils.Logger) *TeacherHandler {
	return &TeacherHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// GetDashboard returns the teacher's overview
// @Summary Get teacher dashboard
// @Tags teachers
// @Produce json
// @Success 200 {object} services.TeacherDashboard
// @Failure 404 {object} ErrorResponse "Teacher profile not found"
// @Router /teachers/dashboard [get]
func (h *TeacherHandler) GetDashboard(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	dashboard, err := h.service.Dashboard(c.Request.Context(), user)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dashboard)
}

func (h *TeacherHandler) GetCourses(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	courses, err := h.service.Courses(c.Request.Context(), user)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, courses)
}

// GetCourseStudents lists the students actively enrolled in one of the
// teacher's courses
// @Param id path uint true "Course ID"
// @Failure 404 {object} ErrorResponse "Course not found or not authorized"
// @Router /teachers/courses/{id}/students [get]
func (h *TeacherHandler) GetCourseStudents(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}
	courseID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	students, err := h.service.CourseStudents(c.Request.Context(), user, courseID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, students)
}

// SubmitGrade creates or updates one grade
// @Summary Submit grade
// @Description Upserts by student, course and semester; missing score parts keep their stored value
// @Tags teachers
// @Accept json
// @Param grade body services.GradeSubmitRequest true "Score parts"
// @Success 200 {object} services.GradeSubmitResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /teachers/grades [post]
func (h *TeacherHandler) SubmitGrade(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	var req services.GradeSubmitRequest
	if !h.bind(c, &req) {
		return
	}

	h.LogRequest(c, "Submitting grade", "course_id", req.CourseID, "student_id", req.StudentID)

	resp, err := h.service.SubmitGrade(c.Request.Context(), user, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *TeacherHandler) GetAttendance(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}
	courseID, ok := h.parseIDParam(c, "course_id")
	if !ok {
		return
	}

	records, err := h.service.CourseAttendance(c.Request.Context(), user, courseID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, records)
}

func (h *TeacherHandler) RecordAttendance(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}
	courseID, ok := h.parseIDParam(c, "course_id")
	if !ok {
		return
	}

	var req services.AttendanceRecordRequest
	if !h.bind(c, &req) {
		return
	}

	resp, err := h.service.RecordAttendance(c.Request.Context(), user, courseID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp.Body())
}
