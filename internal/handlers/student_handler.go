package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/student-service/internal/services"
	"github.com/SAP-F-2025/student-service/internal/utils"
)

type StudentHandler struct {
	BaseHandler
	service services.StudentService
}

func NewStudentHandler(service services.StudentService, logger utils.Logger) *StudentHandler {
	return &StudentHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// ===== STUDENT ENDPOINTS =====

// GetDashboard returns the student's overview
// @Summary Get student dashboard
// @Description Student info, active courses, grades, upcoming exams and credit/GPA stats
// @Tags students
// @Produce json
// @Success 200 {object} services.StudentDashboard
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 404 {object} ErrorResponse "Student profile not found"
// @Router /students/dashboard [get]
func (h *StudentHandler) GetDashboard(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Getting student dashboard", "user_id", user.ID)

	dashboard, err := h.service.Dashboard(c.Request.Context(), user)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dashboard)
}

// GetCourses returns the student's active enrollments
// @Router /students/courses [get]
func (h *StudentHandler) GetCourses(c *gin.Context) {
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

// GetGrades returns the student's grades
// @Param semester query string false "Filter by semester, e.g. 2024-1"
// @Router /students/grades [get]
func (h *StudentHandler) GetGrades(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	var semester *string
	if value, present := c.GetQuery("semester"); present {
		semester = &value
	}

	grades, err := h.service.Grades(c.Request.Context(), user, semester)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, grades)
}

func (h *StudentHandler) GetSchedule(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	schedule, err := h.service.Schedule(c.Request.Context(), user)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, schedule)
}

func (h *StudentHandler) GetExams(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	exams, err := h.service.Exams(c.Request.Context(), user)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, exams)
}

func (h *StudentHandler) GetProfile(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	profile, err := h.service.Profile(c.Request.Context(), user)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}
