package usecases

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"punto_kennedy_crm/internal/entities"
	"punto_kennedy_crm/internal/interfaces"
	"punto_kennedy_crm/internal/repository"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DisabledReply is returned (HTTP 200) when the global bot flag is off; no
// generation call is made in that case.
const DisabledReply = "El asistente está deshabilitado en este momento. Por favor contactá a un asesor del equipo."

// ApologyReply covers the case where the model answered with no choices.
const ApologyReply = "Lo siento, no pude generar una respuesta en este momento. Intentá nuevamente más tarde."

var ErrStudentNotFound = errors.New("student not found")

// BotUsecase assembles the analysis prompt for one student — profile facts,
// recent WhatsApp transcript, document text — and relays the model's answer.
// Everything is recomputed per request; there is no derived-state cache.
type BotUsecase struct {
	students  interfaces.StudentStore
	chats     interfaces.ChatStore
	docs      interfaces.DocumentStore
	blobs     interfaces.BlobStore
	settings  interfaces.SettingsStore
	generator interfaces.TextGenerator
	notifier  interfaces.Notifier
	log       *zap.SugaredLogger

	historyLimit int
}

func NewBotUsecase(
	students interfaces.StudentStore,
	chats interfaces.ChatStore,
	docs interfaces.DocumentStore,
	blobs interfaces.BlobStore,
	settings interfaces.SettingsStore,
	generator interfaces.TextGenerator,
	notifier interfaces.Notifier,
	log *zap.SugaredLogger,
	historyLimit int,
) *BotUsecase {
	if historyLimit <= 0 {
		historyLimit = 30
	}
	return &BotUsecase{
		students:     students,
		chats:        chats,
		docs:         docs,
		blobs:        blobs,
		settings:     settings,
		generator:    generator,
		notifier:     notifier,
		log:          log,
		historyLimit: historyLimit,
	}
}

// Analyze answers a staff question about one student.
func (u *BotUsecase) Analyze(ctx context.Context, studentID int, question string) (string, error) {
	// The flag is read fresh on every request; no in-process caching.
	enabled, err := u.settings.Get(ctx, repository.SettingBotEnabled)
	if err != nil {
		return "", fmt.Errorf("read bot flag: %w", err)
	}
	if !IsBotEnabled(enabled) {
		return DisabledReply, nil
	}

	// Optional system-prompt override set by staff through /api/config
	header, err := u.settings.Get(ctx, repository.SettingBotPrompt)
	if err != nil {
		u.log.Warnw("read prompt override failed", "error", err)
		header = ""
	}

	student, err := u.students.GetByID(ctx, studentID)
	if err != nil {
		return "", fmt.Errorf("lookup student %d: %w", studentID, err)
	}
	if student == nil {
		return "", ErrStudentNotFound
	}

	phone := NormalizePhone(student.Phone)

	// The two fetches are independent; run them together for latency only.
	var transcript []entities.TranscriptEntry
	var docBlocks []string

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if phone == "" {
			return nil
		}
		messages, err := u.chats.RecentByPhone(gctx, phone, u.historyLimit)
		if err != nil {
			// A failed chat lookup yields an empty transcript, not an error
			u.log.Warnw("chat lookup failed", "student_id", studentID, "error", err)
			return nil
		}
		transcript = BuildTranscript(messages)
		return nil
	})
	g.Go(func() error {
		docBlocks = u.collectDocBlocks(gctx, student)
		return nil
	})
	_ = g.Wait() // both branches return nil

	prompt := buildPrompt(header, student, transcript, docBlocks, question)

	answer, err := u.generator.Complete(ctx, []interfaces.GenMessage{{Role: "user", Content: prompt}})
	if err != nil {
		if errors.Is(err, interfaces.ErrNoChoices) {
			return ApologyReply, nil
		}
		u.notifier.Notify(fmt.Sprintf("⚠️ El bot no pudo responder una consulta sobre %s: %v", student.FullName, err))
		return "", fmt.Errorf("generate answer: %w", err)
	}

	return answer, nil
}

// collectDocBlocks downloads and extracts every document for the student.
// Per-document failures are logged and skipped.
func (u *BotUsecase) collectDocBlocks(ctx context.Context, student *entities.Student) []string {
	if u.blobs == nil {
		return nil
	}
	docs, err := u.docs.ListByStudent(ctx, student.ID)
	if err != nil {
		u.log.Warnw("document lookup failed", "student_id", student.ID, "error", err)
		return nil
	}

	blocks := []string{}
	for _, doc := range docs {
		rc, err := u.blobs.Download(ctx, doc.DriveFileID)
		if err != nil {
			u.log.Warnw("document download failed", "document_id", doc.ID, "error", err)
			continue
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			u.log.Warnw("document read failed", "document_id", doc.ID, "error", err)
			continue
		}
		text, err := ExtractDocumentText(doc.FileName, doc.MimeType, data)
		if err != nil {
			u.log.Warnw("document extraction failed", "document_id", doc.ID, "error", err)
			continue
		}
		blocks = append(blocks, FormatDocBlock(doc, text))
	}
	return blocks
}

func buildPrompt(header string, student *entities.Student, transcript []entities.TranscriptEntry, docBlocks []string, question string) string {
	var sb strings.Builder

	if strings.TrimSpace(header) == "" {
		header = "Sos el asistente interno del equipo de admisiones de Punto Kennedy."
	}
	sb.WriteString(strings.TrimSpace(header))
	sb.WriteString("\n\n")
	sb.WriteString(fmt.Sprintf("Estudiante: %s\n", student.FullName))
	if student.Status != "" {
		sb.WriteString(fmt.Sprintf("Estado: %s\n", student.Status))
	}
	if student.Site != "" {
		sb.WriteString(fmt.Sprintf("Sede: %s\n", student.Site))
	}
	if student.Career != "" {
		sb.WriteString(fmt.Sprintf("Carrera de interés: %s\n", student.Career))
	}

	if len(transcript) > 0 {
		sb.WriteString("\nConversación reciente por WhatsApp:\n")
		for _, entry := range transcript {
			sb.WriteString(fmt.Sprintf("[%s] %s\n", entry.Role, entry.Content))
		}
	}

	if len(docBlocks) > 0 {
		sb.WriteString("\nDocumentos presentados:\n")
		for _, block := range docBlocks {
			sb.WriteString(block)
			sb.WriteString("\n")
		}
	}

	sb.WriteString(fmt.Sprintf("\nPregunta del asesor: %s\n", question))
	sb.WriteString("\nRespondé en español, de forma breve y concreta, usando solo la información anterior.")

	return sb.String()
}

// IsBotEnabled interprets the stored flag value.
func IsBotEnabled(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "1", "yes", "on":
		return true
	}
	return false
}
