package http

import (
	"net/http"
	"strconv"

	"punto_kennedy_crm/internal/infrastructure"

	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	userRepo  userStore
	waManager *infrastructure.WhatsAppManager
}

func (a *AdminHandler) GetAllUsers(c *gin.Context) {
	users, err := a.userRepo.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list users"})
		return
	}
	c.JSON(http.StatusOK, users)
}

func (a *AdminHandler) UpdateUserStatus(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user id"})
		return
	}
	var payload struct {
		IsActive bool `json:"is_active"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if err := a.userRepo.SetActive(c.Request.Context(), id, payload.IsActive); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update user"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}

func (a *AdminHandler) UpdateUserQuota(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user id"})
		return
	}
	var payload struct {
		DailyQuota int `json:"daily_quota"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil || payload.DailyQuota < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid quota"})
		return
	}
	if err := a.userRepo.SetDailyQuota(c.Request.Context(), id, payload.DailyQuota); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update quota"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}

// DisconnectUserWA force-logs-out another user's WhatsApp line.
func (a *AdminHandler) DisconnectUserWA(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user id"})
		return
	}
	if a.waManager == nil {
		c.JSON(http.StatusOK, gin.H{"status": "disconnected"})
		return
	}
	if err := a.waManager.LogoutClient(id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "disconnected"})
}
