package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"punto_kennedy_crm/internal/config"
	"punto_kennedy_crm/internal/infrastructure"
	"punto_kennedy_crm/internal/interfaces"
	"punto_kennedy_crm/internal/interfaces/http"
	"punto_kennedy_crm/internal/repository"
	"punto_kennedy_crm/internal/usecases"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.mau.fi/whatsmeow/types/events"
)

func main() {
	// Load .env file (optional outside dev)
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file loaded:", err)
	}

	cfg := config.Load()

	log, err := infrastructure.NewLogger(cfg.LogMode)
	if err != nil {
		panic("Failed to build logger: " + err.Error())
	}
	defer log.Sync()

	// Connect to PostgreSQL
	pgClient, err := infrastructure.NewPostgresClient(cfg.DatabaseURL)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pgClient.Close()

	// Repositories
	userRepo := repository.NewUserRepository(pgClient.Pool)
	chatRepo := repository.NewChatRepository(pgClient.Pool)
	docRepo := repository.NewDocumentRepository(pgClient.Pool)
	settingsRepo := repository.NewSettingsRepository(pgClient.Pool)
	usageRepo := repository.NewUsageRepository(pgClient.Pool)

	// Student records live in Postgres by default; Airtable is the alternate
	// backend used by the sede that never migrated.
	var students interfaces.StudentStore = repository.NewStudentRepository(pgClient.Pool)
	if strings.EqualFold(cfg.StudentStore, "airtable") {
		if cfg.AirtableAPIKey == "" || cfg.AirtableBaseID == "" {
			log.Fatalw("airtable student store selected but AIRTABLE_API_KEY/AIRTABLE_BASE_ID missing")
		}
		students = repository.NewAirtableStudentStore(cfg.AirtableAPIKey, cfg.AirtableBaseID, cfg.AirtableTable)
		log.Infow("using airtable student store", "base", cfg.AirtableBaseID, "table", cfg.AirtableTable)
	}

	// Auth
	authUsecase := usecases.NewAuthUsecase(userRepo, cfg.JWTSecret)
	if err := authUsecase.EnsureAdmin(context.Background(), cfg.AdminUser, cfg.AdminPass); err != nil {
		log.Warnw("failed to ensure admin user", "error", err)
	}

	// Google Drive document storage
	var blobs interfaces.BlobStore
	if _, err := os.Stat(cfg.DriveCredentials); err == nil {
		driveStore, err := infrastructure.NewDriveStore(context.Background(), cfg.DriveCredentials, cfg.DriveFolderID)
		if err != nil {
			log.Fatalw("failed to init drive storage", "error", err)
		}
		blobs = driveStore
	} else {
		log.Warnw("drive credentials not found, document storage disabled", "path", cfg.DriveCredentials)
	}

	// Staff alerts
	notifier := infrastructure.NewTelegramNotifier(cfg.TelegramToken, cfg.TelegramChatID, log)
	notifyLimiter := infrastructure.NewNotifyLimiter(1.0/60, 2) // ~1 alert/min per phone, burst 2

	// Support bot
	generator := infrastructure.NewOpenRouterClient(cfg.OpenRouterAPIKey, cfg.OpenRouterModel)
	botUsecase := usecases.NewBotUsecase(students, chatRepo, docRepo, blobs, settingsRepo, generator, notifier, log, cfg.BotHistoryLimit)

	// WhatsApp lines feed the chat log
	waManager := infrastructure.NewWhatsAppManager(cfg.WhatsAppDir, log)
	waManager.HandlerFactory = func(userID int) func(interface{}) {
		return func(evt interface{}) {
			msg, ok := evt.(*events.Message)
			if !ok {
				return
			}
			if msg.Info.IsGroup {
				return
			}

			client := waManager.GetClient(userID)
			if client == nil {
				return
			}

			_, content := client.ParseMessage(msg)
			if content == "" {
				return
			}
			sessionID := msg.Info.Chat.User

			ctx := context.Background()
			payload := content
			if !msg.Info.IsFromMe {
				// Inbound text gets the person marker the transcript builder keys on
				payload = usecases.PersonPrefix + " " + content
			}
			if err := chatRepo.Append(ctx, sessionID, payload); err != nil {
				log.Errorw("chat log append failed", "session", sessionID, "error", err)
				return
			}

			// Alert staff about messages from phones with no student record
			if !msg.Info.IsFromMe {
				phone := usecases.NormalizePhone(sessionID)
				if phone == "" {
					return
				}
				matches, err := students.Search(ctx, phone)
				if err == nil && len(matches) == 0 && notifyLimiter.Allow(phone) {
					notifier.Notify(fmt.Sprintf("📱 Mensaje de un número sin ficha: +%s\n%s", phone, content))
				}
			}
		}
	}
	defer waManager.DisconnectAll()

	// HTTP server
	authMiddleware := http.NewMiddleware(cfg.JWTSecret)
	r := gin.Default()
	http.SetupRoutes(r, http.Deps{
		Auth:      authUsecase,
		Bot:       botUsecase,
		Students:  students,
		Chats:     chatRepo,
		Documents: docRepo,
		Blobs:     blobs,
		Settings:  settingsRepo,
		UserRepo:  userRepo,
		UsageRepo: usageRepo,
		WAManager: waManager,
		Log:       log,
	}, authMiddleware)

	addr := fmt.Sprintf("0.0.0.0:%d", cfg.Port)
	log.Infow("starting http server", "addr", addr)
	if err := r.Run(addr); err != nil {
		log.Fatalw("http server failed", "error", err)
	}
}
