package http

import (
	"context"
	"net/http"

	"punto_kennedy_crm/internal/entities"
	"punto_kennedy_crm/internal/infrastructure"
	"punto_kennedy_crm/internal/interfaces"
	"punto_kennedy_crm/internal/repository"
	"punto_kennedy_crm/internal/usecases"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// userStore and usageStore are the slices of the user and usage repositories the
// handlers consume.
type userStore interface {
	GetByID(ctx context.Context, id int) (*entities.User, error)
	List(ctx context.Context) ([]entities.User, error)
	SetActive(ctx context.Context, id int, active bool) error
	SetDailyQuota(ctx context.Context, id, quota int) error
}

type usageStore interface {
	CanAsk(ctx context.Context, userID, dailyQuota int) (bool, error)
	IncrementQuestions(ctx context.Context, userID int) error
	GetTodayCount(ctx context.Context, userID int) (int, error)
	GetHistory(ctx context.Context, userID, days int) ([]repository.DailyUsage, error)
}

type Handler struct {
	botUsecase *usecases.BotUsecase
	students   interfaces.StudentStore
	chats      interfaces.ChatStore
	documents  interfaces.DocumentStore
	blobs      interfaces.BlobStore
	settings   *repository.SettingsRepository
	userRepo   userStore
	usageRepo  usageStore
	waManager  *infrastructure.WhatsAppManager
	log        *zap.SugaredLogger
}

type Deps struct {
	Auth      *usecases.AuthUsecase
	Bot       *usecases.BotUsecase
	Students  interfaces.StudentStore
	Chats     interfaces.ChatStore
	Documents interfaces.DocumentStore
	Blobs     interfaces.BlobStore
	Settings  *repository.SettingsRepository
	UserRepo  *repository.UserRepository
	UsageRepo *repository.UsageRepository
	WAManager *infrastructure.WhatsAppManager
	Log       *zap.SugaredLogger
}

func SetupRoutes(r *gin.Engine, deps Deps, middleware *Middleware) {
	h := &Handler{
		botUsecase: deps.Bot,
		students:   deps.Students,
		chats:      deps.Chats,
		documents:  deps.Documents,
		blobs:      deps.Blobs,
		settings:   deps.Settings,
		userRepo:   deps.UserRepo,
		usageRepo:  deps.UsageRepo,
		waManager:  deps.WAManager,
		log:        deps.Log,
	}
	adminHandler := &AdminHandler{userRepo: deps.UserRepo, waManager: deps.WAManager}

	// Apply Security Middleware
	r.Use(SecurityHeaders())
	r.Use(RequestSizeLimiter(MaxUploadBytes))
	r.Use(middleware.CORSMiddleware())

	// Public Auth Routes
	authGroup := r.Group("/api/auth")
	{
		authGroup.POST("/login", func(c *gin.Context) {
			var loginReq struct {
				Username string `json:"username"`
				Password string `json:"password"`
			}
			if err := c.ShouldBindJSON(&loginReq); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
				return
			}
			token, err := deps.Auth.Login(c.Request.Context(), loginReq.Username, loginReq.Password)
			if err != nil {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
				return
			}
			c.JSON(http.StatusOK, gin.H{"token": token})
		})

		authGroup.POST("/register", func(c *gin.Context) {
			var regReq struct {
				Username string `json:"username"`
				Password string `json:"password"`
			}
			if err := c.ShouldBindJSON(&regReq); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
				return
			}
			if !ValidUsername(regReq.Username) || len(regReq.Password) < 6 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid username or password (min 6 chars)"})
				return
			}
			if err := deps.Auth.Register(c.Request.Context(), regReq.Username, regReq.Password); err != nil {
				c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusCreated, gin.H{"status": "registered"})
		})
	}

	// Protected Routes
	api := r.Group("/api")
	api.Use(middleware.AuthRequired())
	api.Use(middleware.RateLimitPerUser(5, 10))
	{
		api.GET("/dashboard/stats", h.GetDashboardStats)

		// Settings
		api.GET("/config", h.GetAllSettings)
		api.POST("/config", h.SetSetting)

		// Students
		api.GET("/students", h.ListStudents)
		api.GET("/students/search", h.SearchStudents)
		api.GET("/students/:id", h.GetStudent)
		api.POST("/students", h.CreateStudent)
		api.PUT("/students/:id", h.UpdateStudent)
		api.DELETE("/students/:id", h.DeleteStudent)
		api.GET("/students/:id/conversation", h.GetStudentConversation)

		// Documents
		api.POST("/students/:id/documents", h.UploadDocument)
		api.GET("/students/:id/documents", h.ListStudentDocuments)
		api.GET("/documents/:id/download", h.DownloadDocument)

		// Chat log
		api.GET("/chats/sessions", h.ListChatSessions)

		// Bot
		api.POST("/bot/analyze", h.BotAnalyze)

		// WhatsApp line management
		api.GET("/whatsapp/qr", h.GetWhatsAppQR)
		api.GET("/whatsapp/status", h.GetWhatsAppStatus)
		api.POST("/whatsapp/connect", h.ConnectWhatsApp)
		api.POST("/whatsapp/send", h.SendWhatsAppMessage)
		api.POST("/whatsapp/logout", h.LogoutWhatsApp)
	}

	// Admin-only Routes
	admin := r.Group("/api/admin")
	admin.Use(middleware.AuthRequired())
	admin.Use(middleware.AdminRequired())
	{
		admin.GET("/users", adminHandler.GetAllUsers)
		admin.PUT("/users/:id/status", adminHandler.UpdateUserStatus)
		admin.PUT("/users/:id/quota", adminHandler.UpdateUserQuota)
		admin.POST("/users/:id/disconnect-wa", adminHandler.DisconnectUserWA)
	}
}

// getUserID extracts user_id from JWT context
func getUserID(c *gin.Context) int {
	userIDFloat, _ := c.Get("user_id")
	if uid, ok := userIDFloat.(float64); ok {
		return int(uid)
	}
	return 0
}
