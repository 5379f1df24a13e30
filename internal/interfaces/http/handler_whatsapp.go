package http

import (
	"net/http"

	"punto_kennedy_crm/internal/usecases"

	"github.com/gin-gonic/gin"
	"github.com/skip2/go-qrcode"
)

// ConnectWhatsApp creates and connects the caller's WhatsApp line.
func (h *Handler) ConnectWhatsApp(c *gin.Context) {
	userID := getUserID(c)
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid user"})
		return
	}
	if h.waManager == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "WhatsApp not configured"})
		return
	}

	client, err := h.waManager.ConnectClient(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	phone, name := client.LineInfo()
	c.JSON(http.StatusOK, gin.H{
		"status":    "connecting",
		"connected": client.IsLoggedIn(),
		"phone":     phone,
		"name":      name,
	})
}

// GetWhatsAppQR returns the pairing QR as PNG.
func (h *Handler) GetWhatsAppQR(c *gin.Context) {
	userID := getUserID(c)
	if userID == 0 {
		c.String(http.StatusUnauthorized, "Invalid user")
		return
	}
	if h.waManager == nil {
		c.String(http.StatusServiceUnavailable, "WhatsApp not configured")
		return
	}

	client, err := h.waManager.GetOrCreateClient(userID)
	if err != nil {
		c.String(http.StatusInternalServerError, "Failed to create client: "+err.Error())
		return
	}

	if client.Client.Store.ID == nil && !client.Client.IsConnected() {
		if err := client.Connect(); err != nil {
			c.String(http.StatusInternalServerError, "Failed to connect: "+err.Error())
			return
		}
	}

	qrCodeString := client.GetQR()
	if qrCodeString == "" {
		if client.IsLoggedIn() {
			c.String(http.StatusOK, "Already logged in")
			return
		}
		c.String(http.StatusAccepted, "QR code not yet available. Please wait...")
		return
	}

	png, err := qrcode.Encode(qrCodeString, qrcode.Medium, 256)
	if err != nil {
		c.String(http.StatusInternalServerError, "Failed to generate QR code")
		return
	}

	c.Data(http.StatusOK, "image/png", png)
}

func (h *Handler) GetWhatsAppStatus(c *gin.Context) {
	userID := getUserID(c)
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid user"})
		return
	}
	if h.waManager == nil {
		c.JSON(http.StatusOK, gin.H{"connected": false, "error": "WhatsApp not configured"})
		return
	}

	client := h.waManager.GetClient(userID)
	if client == nil {
		client, _ = h.waManager.GetOrCreateClient(userID)
	}
	if client == nil {
		c.JSON(http.StatusOK, gin.H{"connected": false, "initialized": false})
		return
	}

	phone, name := client.LineInfo()
	c.JSON(http.StatusOK, gin.H{
		"connected":   client.IsLoggedIn(),
		"initialized": true,
		"phone":       phone,
		"name":        name,
		"hasQR":       client.GetQR() != "",
	})
}

// SendWhatsAppMessage sends a text from the caller's line and appends it to the
// chat log, so advisor replies show up in the transcript as assistant turns.
func (h *Handler) SendWhatsAppMessage(c *gin.Context) {
	userID := getUserID(c)
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid user"})
		return
	}
	if h.waManager == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "WhatsApp not configured"})
		return
	}

	var payload struct {
		Phone   string `json:"phone" binding:"required"`
		Message string `json:"message" binding:"required"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	phone := usecases.NormalizePhone(payload.Phone)
	if phone == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid phone number"})
		return
	}
	message := SanitizeString(payload.Message)
	if !ValidateLength(message, 1, MaxQuestionLength) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid message"})
		return
	}

	client := h.waManager.GetClient(userID)
	if client == nil || !client.IsConnected() {
		c.JSON(http.StatusConflict, gin.H{"error": "WhatsApp line not connected"})
		return
	}

	if err := client.SendMessage(phone, message); err != nil {
		h.log.Errorw("whatsapp send failed", "user_id", userID, "phone", phone, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send message"})
		return
	}

	// Outbound text lands in the chat log raw, so the classifier tags it assistant
	if err := h.chats.Append(c.Request.Context(), phone, message); err != nil {
		h.log.Warnw("chat log append failed after send", "phone", phone, "error", err)
	}

	c.JSON(http.StatusOK, gin.H{"status": "sent"})
}

func (h *Handler) LogoutWhatsApp(c *gin.Context) {
	userID := getUserID(c)
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid user"})
		return
	}
	if h.waManager == nil {
		c.JSON(http.StatusOK, gin.H{"status": "logged_out", "message": "WhatsApp not configured"})
		return
	}

	// Errors here mean "already logged out"; log and report success
	if err := h.waManager.LogoutClient(userID); err != nil {
		h.log.Warnw("whatsapp logout warning", "user_id", userID, "error", err)
	}

	c.JSON(http.StatusOK, gin.H{"status": "logged_out"})
}
