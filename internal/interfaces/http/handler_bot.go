package http

import (
	"errors"
	"net/http"

	"punto_kennedy_crm/internal/repository"
	"punto_kennedy_crm/internal/usecases"

	"github.com/gin-gonic/gin"
)

// BotAnalyze answers a staff question about one student.
func (h *Handler) BotAnalyze(c *gin.Context) {
	var payload struct {
		StudentID int    `json:"student_id" binding:"required"`
		Question  string `json:"question" binding:"required"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	question := SanitizeString(payload.Question)
	if !ValidateLength(question, 1, MaxQuestionLength) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid question"})
		return
	}

	// Daily quota per staff user (0 = unlimited)
	userID := getUserID(c)
	if user, err := h.userRepo.GetByID(c.Request.Context(), userID); err == nil && user != nil {
		ok, err := h.usageRepo.CanAsk(c.Request.Context(), userID, user.DailyQuota)
		if err == nil && !ok {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "Daily question quota reached"})
			return
		}
	}

	answer, err := h.botUsecase.Analyze(c.Request.Context(), payload.StudentID, question)
	if err != nil {
		if errors.Is(err, usecases.ErrStudentNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Student not found"})
			return
		}
		h.log.Errorw("bot analyze failed", "student_id", payload.StudentID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate answer"})
		return
	}

	// A refusal while the bot is disabled costs no quota
	if answer != usecases.DisabledReply {
		if err := h.usageRepo.IncrementQuestions(c.Request.Context(), userID); err != nil {
			h.log.Warnw("usage increment failed", "user_id", userID, "error", err)
		}
	}

	c.JSON(http.StatusOK, gin.H{"answer": answer})
}

func (h *Handler) ListChatSessions(c *gin.Context) {
	sessions, err := h.chats.ListSessions(c.Request.Context())
	if err != nil {
		h.log.Errorw("list sessions failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list sessions"})
		return
	}
	c.JSON(http.StatusOK, sessions)
}

// Settings

func (h *Handler) GetAllSettings(c *gin.Context) {
	settings, err := h.settings.GetAll(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load settings"})
		return
	}
	c.JSON(http.StatusOK, settings)
}

func (h *Handler) SetSetting(c *gin.Context) {
	var payload struct {
		Key   string `json:"key"`
		Value string `json:"value"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if !ValidConfigKey(payload.Key) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid config key"})
		return
	}
	if !ValidateLength(payload.Value, 0, MaxConfigValLength) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Config value too long"})
		return
	}
	payload.Value = SanitizeString(payload.Value)

	if err := h.settings.Set(c.Request.Context(), payload.Key, payload.Value); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save config"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}

// GetDashboardStats returns counts and the caller's bot usage.
func (h *Handler) GetDashboardStats(c *gin.Context) {
	ctx := c.Request.Context()
	userID := getUserID(c)

	students, _ := h.students.List(ctx)
	sessions, _ := h.chats.ListSessions(ctx)
	botEnabled, _ := h.settings.Get(ctx, repository.SettingBotEnabled)

	waConnected := false
	waPhone := ""
	if h.waManager != nil {
		if client := h.waManager.GetClient(userID); client != nil && client.IsConnected() {
			waConnected = true
			waPhone, _ = client.LineInfo()
		}
	}

	todayQuestions, _ := h.usageRepo.GetTodayCount(ctx, userID)
	history, _ := h.usageRepo.GetHistory(ctx, userID, 7)

	c.JSON(http.StatusOK, gin.H{
		"student_count":   len(students),
		"session_count":   len(sessions),
		"bot_enabled":     usecases.IsBotEnabled(botEnabled),
		"wa_connected":    waConnected,
		"wa_phone":        waPhone,
		"today_questions": todayQuestions,
		"usage_history":   history,
	})
}
