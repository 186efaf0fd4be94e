package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/student-service/internal/services"
	"github.com/SAP-F-2025/student-service/internal/utils"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type AdminHandler struct {
	BaseHandler
	service services.AdminService
	export  services.ExportService
}

func NewAdminHandler(service services.AdminService, export services.ExportService, logger utils.Logger) *AdminHandler {
	return &AdminHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
		export:      export,
	}
}

// ===== DASHBOARD =====

// GetDashboard returns system statistics for the admin console
// @Summary Get admin dashboard
// @Description System stats, recent activities, six months of user growth and active notices
// @Tags admin
// @Produce json
// @Success 200 {object} services.AdminDashboard
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /admin/dashboard [get]
func (h *AdminHandler) GetDashboard(c *gin.Context) {
	h.LogRequest(c, "Getting admin dashboard")

	dashboard, err := h.service.Dashboard(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dashboard)
}

// ===== USERS =====

// ListUsers lists users with optional filtering
// @Summary List users
// @Tags admin
// @Param page query int false "Page number (default: 1)"
// @Param page_size query int false "Page size (default: 20)"
// @Param role query string false "Filter by role (guest, student, teacher, admin)"
// @Param is_active query bool false "Filter by active flag"
// @Success 200 {object} services.UserListResponse
// @Failure 400 {object} ErrorResponse "Invalid role"
// @Router /admin/users [get]
func (h *AdminHandler) ListUsers(c *gin.Context) {
	query := services.UserListQuery{
		Role:     c.Query("role"),
		Page:     h.parseIntQuery(c, "page", 1),
		PageSize: h.parseIntQuery(c, "page_size", services.DefaultPageSize),
	}

	if raw := c.Query("is_active"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Message: "Invalid is_active",
				Details: "is_active must be true or false",
			})
			return
		}
		query.IsActive = &active
	}

	users, err := h.service.Users(c.Request.Context(), query)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, users)
}

func (h *AdminHandler) ToggleUserStatus(c *gin.Context) {
	admin, ok := h.currentUser(c)
	if !ok {
		return
	}
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	resp, err := h.service.ToggleUserStatus(c.Request.Context(), admin, id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ===== COURSES =====

func (h *AdminHandler) ListCourses(c *gin.Context) {
	page := h.parseIntQuery(c, "page", 1)
	pageSize := h.parseIntQuery(c, "page_size", services.DefaultPageSize)

	courses, err := h.service.Courses(c.Request.Context(), page, pageSize)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, courses)
}

// UpdateCourse applies a partial update
// @Summary Update course
// @Description Only the fields present in the body are changed
// @Tags admin
// @Accept json
// @Param id path uint true "Course ID"
// @Param course body services.CourseUpdateRequest true "Fields to change"
// @Success 200 {object} services.MessageResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse "Course not found"
// @Router /admin/courses/{id} [put]
func (h *AdminHandler) UpdateCourse(c *gin.Context) {
	admin, ok := h.currentUser(c)
	if !ok {
		return
	}
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	var req services.CourseUpdateRequest
	if !h.bind(c, &req) {
		return
	}

	h.LogRequest(c, "Updating course", "course_id", id)

	resp, err := h.service.UpdateCourse(c.Request.Context(), admin, id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *AdminHandler) ToggleCourseStatus(c *gin.Context) {
	admin, ok := h.currentUser(c)
	if !ok {
		return
	}
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	resp, err := h.service.ToggleCourseStatus(c.Request.Context(), admin, id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *AdminHandler) EnrollStudent(c *gin.Context) {
	admin, ok := h.currentUser(c)
	if !ok {
		return
	}
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	var req services.EnrollmentCreateRequest
	if !h.bind(c, &req) {
		return
	}

	resp, err := h.service.Enroll(c.Request.Context(), admin, id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp.Body())
}

func (h *AdminHandler) CreateExam(c *gin.Context) {
	admin, ok := h.currentUser(c)
	if !ok {
		return
	}
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	var req services.ExamCreateRequest
	if !h.bind(c, &req) {
		return
	}

	resp, err := h.service.CreateExam(c.Request.Context(), admin, id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp.Body())
}

// ===== NOTICES AND LOGS =====

func (h *AdminHandler) CreateNotice(c *gin.Context) {
	admin, ok := h.currentUser(c)
	if !ok {
		return
	}

	var req services.NoticeCreateRequest
	if !h.bind(c, &req) {
		return
	}

	resp, err := h.service.CreateNotice(c.Request.Context(), admin, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp.Body())
}

// ListLogs returns system logs, newest first
// @Param page query int false "Page number (default: 1)"
// @Param page_size query int false "Page size (default: 50)"
// @Param action query string false "Case-insensitive substring of the action"
// @Param status query string false "success, failed or warning"
// @Param start_date query string false "YYYY-MM-DD"
// @Param end_date query string false "YYYY-MM-DD, inclusive"
// @Router /admin/logs [get]
func (h *AdminHandler) ListLogs(c *gin.Context) {
	query := services.LogQuery{
		Page:      h.parseIntQuery(c, "page", 1),
		PageSize:  h.parseIntQuery(c, "page_size", services.DefaultLogPageSize),
		Action:    c.Query("action"),
		Status:    c.Query("status"),
		StartDate: c.Query("start_date"),
		EndDate:   c.Query("end_date"),
	}

	logs, err := h.service.Logs(c.Request.Context(), query)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, logs)
}

// ===== EXPORTS =====

func (h *AdminHandler) ExportUsers(c *gin.Context) {
	data, err := h.export.ExportUsers(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.sendWorkbook(c, "users", data)
}

func (h *AdminHandler) ExportGrades(c *gin.Context) {
	data, err := h.export.ExportGrades(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.sendWorkbook(c, "grades", data)
}

func (h *AdminHandler) sendWorkbook(c *gin.Context, name string, data []byte) {
	filename := fmt.Sprintf("%s_%s.xlsx", name, time.Now().UTC().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, xlsxContentType, data)
}
