package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/student-service/internal/services"
	"github.com/SAP-F-2025/student-service/internal/utils"
)

type AuthHandler struct {
	BaseHandler
	authService    services.AuthService
	upgradeService services.UpgradeService
}

func NewAuthHandler(authService services.AuthService, upgradeService services.UpgradeService, logger utils.Logger) *AuthHandler {
	return &AuthHandler{
		BaseHandler:    NewBaseHandler(logger),
		authService:    authService,
		upgradeService: upgradeService,
	}
}

// Register creates a guest account
// @Summary Register
// @Description Self-registration; the account starts as a guest regardless of the requested role
// @Tags auth
// @Accept json
// @Produce json
// @Param user body services.RegisterRequest true "Registration data"
// @Success 200 {object} services.RegisterResponse
// @Failure 400 {object} ErrorResponse
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req services.RegisterRequest
	if !h.bind(c, &req) {
		return
	}

	resp, err := h.authService.Register(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Login exchanges credentials for a bearer token
// @Summary Login
// @Description Accepts JSON or form-encoded username and password
// @Tags auth
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Success 200 {object} services.LoginResponse
// @Failure 400 {object} ErrorResponse "Inactive user"
// @Failure 401 {object} ErrorResponse "Incorrect username or password"
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req services.LoginRequest
	if !h.bind(c, &req) {
		return
	}

	resp, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Me returns the caller's snapshot
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	snapshot, err := h.authService.Me(c.Request.Context(), user.ID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, snapshot)
}

// ===== ROLE UPGRADE =====

func (h *AuthHandler) SubmitUpgrade(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	var req services.UpgradeRoleRequest
	if !h.bind(c, &req) {
		return
	}

	h.LogRequest(c, "Submitting upgrade request", "user_id", user.ID, "target_role", req.TargetRole)

	resp, err := h.upgradeService.Submit(c.Request.Context(), user, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp.Body())
}

func (h *AuthHandler) MyUpgradeRequest(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	resp, err := h.upgradeService.MyRequest(c.Request.Context(), user)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *AuthHandler) PendingUpgrades(c *gin.Context) {
	requests, err := h.upgradeService.PendingRequests(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, requests)
}

func (h *AuthHandler) ApproveUpgrade(c *gin.Context) {
	admin, ok := h.currentUser(c)
	if !ok {
		return
	}
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.upgradeService.Approve(c.Request.Context(), admin, id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, services.MessageResponse{Message: "Upgrade request approved successfully"})
}

// RejectUpgrade takes the reason from a JSON or form body
func (h *AuthHandler) RejectUpgrade(c *gin.Context) {
	admin, ok := h.currentUser(c)
	if !ok {
		return
	}
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	var req services.RejectUpgradeRequest
	if !h.bind(c, &req) {
		return
	}

	if err := h.upgradeService.Reject(c.Request.Context(), admin, id, req.RejectionReason); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, services.MessageResponse{Message: "Upgrade request rejected successfully"})
}
