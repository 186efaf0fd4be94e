package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/student-service/internal/services"
	"github.com/SAP-F-2025/student-service/internal/utils"
)

type FriendHandler struct {
	BaseHandler
	service services.FriendService
}

func NewFriendHandler(service services.FriendService, logger utils.Logger) *FriendHandler {
	return &FriendHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// SearchUsers finds other users by username or full name
// @Summary Search users
// @Tags friends
// @Param q query string true "Search query"
// @Success 200 {array} services.UserSearchItem
// @Failure 400 {object} ErrorResponse
// @Router /friends/search [get]
func (h *FriendHandler) SearchUsers(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	results, err := h.service.SearchUsers(c.Request.Context(), user, c.Query("q"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, results)
}

// SendRequest opens a pending friend request
// @Summary Send friend request
// @Tags friends
// @Accept json
// @Param request body services.FriendRequestCreate true "Receiver and optional message"
// @Success 200 {object} map[string]interface{} "message and request_id"
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /friends/request [post]
func (h *FriendHandler) SendRequest(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	var req services.FriendRequestCreate
	if !h.bind(c, &req) {
		return
	}

	resp, err := h.service.SendRequest(c.Request.Context(), user, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp.Body())
}

func (h *FriendHandler) SentRequests(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	requests, err := h.service.SentRequests(c.Request.Context(), user)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, requests)
}

func (h *FriendHandler) ReceivedRequests(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	requests, err := h.service.ReceivedRequests(c.Request.Context(), user)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, requests)
}

func (h *FriendHandler) Accept(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.service.Accept(c.Request.Context(), user, id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, services.MessageResponse{Message: "Friend request accepted"})
}

func (h *FriendHandler) Reject(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.service.Reject(c.Request.Context(), user, id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, services.MessageResponse{Message: "Friend request rejected"})
}

func (h *FriendHandler) ListFriends(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	friends, err := h.service.ListFriends(c.Request.Context(), user)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, friends)
}

// RemoveFriend ends the friendship with the user named by :id
func (h *FriendHandler) RemoveFriend(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}
	friendID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.service.RemoveFriend(c.Request.Context(), user, friendID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, services.MessageResponse{Message: "Friend removed"})
}
