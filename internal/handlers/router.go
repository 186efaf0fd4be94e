package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/student-service/internal/models"
	"github.com/SAP-F-2025/student-service/internal/services"
	"github.com/SAP-F-2025/student-service/internal/utils"
)

const serviceName = "student-service"

type HandlerManager struct {
	authHandler    *AuthHandler
	friendHandler  *FriendHandler
	studentHandler *StudentHandler
	teacherHandler *TeacherHandler
	adminHandler   *AdminHandler
	aiHandler      *AIHandler
	guard          *AuthGuard
	serviceManager services.ServiceManager
}

func NewHandlerManager(serviceManager services.ServiceManager, logger utils.Logger) *HandlerManager {
	return &HandlerManager{
		authHandler:    NewAuthHandler(serviceManager.Auth(), serviceManager.Upgrade(), logger),
		friendHandler:  NewFriendHandler(serviceManager.Friend(), logger),
		studentHandler: NewStudentHandler(serviceManager.Student(), logger),
		teacherHandler: NewTeacherHandler(serviceManager.Teacher(), logger),
		adminHandler:   NewAdminHandler(serviceManager.Admin(), serviceManager.Export(), logger),
		aiHandler:      NewAIHandler(serviceManager.AI(), logger),
		guard:          NewAuthGuard(serviceManager.Auth()),
		serviceManager: serviceManager,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	authenticated := hm.guard.AuthMiddleware()
	adminOnly := hm.guard.RequireRoleMiddleware(models.RoleAdmin)

	// Auth routes; login and register are public
	authGroup := router.Group("/auth")
	{
		authGroup.POST("/login", hm.authHandler.Login)
		authGroup.POST("/register", hm.authHandler.Register)

		authGroup.GET("/me", authenticated, hm.authHandler.Me)

		// The service rejects non-guests with a domain error
		authGroup.POST("/upgrade-role", authenticated, hm.authHandler.SubmitUpgrade)
		authGroup.GET("/my-upgrade-request", authenticated, hm.authHandler.MyUpgradeRequest)

		authGroup.GET("/upgrade-requests", authenticated, adminOnly, hm.authHandler.PendingUpgrades)
		authGroup.POST("/approve-upgrade/:id", authenticated, adminOnly, hm.authHandler.ApproveUpgrade)
		authGroup.POST("/reject-upgrade/:id", authenticated, adminOnly, hm.authHandler.RejectUpgrade)
	}

	// Friend routes - any authenticated user
	friends := router.Group("/friends")
	friends.Use(authenticated)
	{
		friends.GET("/search", hm.friendHandler.SearchUsers)
		friends.POST("/request", hm.friendHandler.SendRequest)
		friends.GET("/requests/sent", hm.friendHandler.SentRequests)
		friends.GET("/requests/received", hm.friendHandler.ReceivedRequests)
		friends.POST("/requests/:id/accept", hm.friendHandler.Accept)
		friends.POST("/requests/:id/reject", hm.friendHandler.Reject)
		friends.GET("/list", hm.friendHandler.ListFriends)
		friends.DELETE("/remove/:id", hm.friendHandler.RemoveFriend)
	}

	// Student routes - Students only
	students := router.Group("/students")
	students.Use(authenticated, hm.guard.RequireRoleMiddleware(models.RoleStudent))
	{
		students.GET("/dashboard", hm.studentHandler.GetDashboard)
		students.GET("/courses", hm.studentHandler.GetCourses)
		students.GET("/grades", hm.studentHandler.GetGrades)
		students.GET("/schedule", hm.studentHandler.GetSchedule)
		students.GET("/exams", hm.studentHandler.GetExams)
		students.GET("/profile", hm.studentHandler.GetProfile)
	}

	// Teacher routes - Teachers only
	teachers := router.Group("/teachers")
	teachers.Use(authenticated, hm.guard.RequireRoleMiddleware(models.RoleTeacher))
	{
		teachers.GET("/dashboard", hm.teacherHandler.GetDashboard)
		teachers.GET("/courses", hm.teacherHandler.GetCourses)
		teachers.GET("/courses/:id/students", hm.teacherHandler.GetCourseStudents)
		teachers.POST("/grades", hm.teacherHandler.SubmitGrade)
		teachers.GET("/attendance/:course_id", hm.teacherHandler.GetAttendance)
		teachers.POST("/attendance/:course_id", hm.teacherHandler.RecordAttendance)
	}

	// Admin routes - Admins only
	admin := router.Group("/admin")
	admin.Use(authenticated, adminOnly)
	{
		admin.GET("/dashboard", hm.adminHandler.GetDashboard)

		admin.GET("/users", hm.adminHandler.ListUsers)
		admin.POST("/users/:id/toggle-status", hm.adminHandler.ToggleUserStatus)

		admin.GET("/courses", hm.adminHandler.ListCourses)
		admin.PUT("/courses/:id", hm.adminHandler.UpdateCourse)
		admin.POST("/courses/:id/toggle-status", hm.adminHandler.ToggleCourseStatus)
		admin.POST("/courses/:id/enrollments", hm.adminHandler.EnrollStudent)
		admin.POST("/courses/:id/exams", hm.adminHandler.CreateExam)

		admin.POST("/notices", hm.adminHandler.CreateNotice)
		admin.GET("/logs", hm.adminHandler.ListLogs)

		admin.GET("/export/users", hm.adminHandler.ExportUsers)
		admin.GET("/export/grades", hm.adminHandler.ExportGrades)
	}

	// AI routes - any authenticated user
	ai := router.Group("/ai")
	ai.Use(authenticated)
	{
		ai.POST("/chat", hm.aiHandler.Chat)
		ai.GET("/health", hm.aiHandler.Health)
	}

	router.GET("/health", hm.health)
	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "Welcome to the Student Management System API",
			"version": "1.0.0",
		})
	})
}

func (hm *HandlerManager) health(c *gin.Context) {
	if err := hm.serviceManager.HealthCheck(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "unhealthy",
			"service": serviceName,
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": serviceName,
	})
}
