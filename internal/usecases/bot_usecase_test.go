package usecases

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"punto_kennedy_crm/internal/entities"
	"punto_kennedy_crm/internal/interfaces"
	"punto_kennedy_crm/internal/repository"

	"go.uber.org/zap"
)

type fakeStudents struct {
	student *entities.Student
	err     error
}

func (f *fakeStudents) GetByID(ctx context.Context, id int) (*entities.Student, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.student != nil && f.student.ID == id {
		return f.student, nil
	}
	return nil, nil
}
func (f *fakeStudents) List(ctx context.Context) ([]entities.Student, error)   { return nil, nil }
func (f *fakeStudents) Search(ctx context.Context, q string) ([]entities.Student, error) {
	return nil, nil
}
func (f *fakeStudents) Create(ctx context.Context, s *entities.Student) error { return nil }
func (f *fakeStudents) Update(ctx context.Context, s *entities.Student) error { return nil }
func (f *fakeStudents) Delete(ctx context.Context, id int) error              { return nil }

type fakeChats struct {
	messages []entities.ChatMessage
	err      error
}

func (f *fakeChats) RecentByPhone(ctx context.Context, phone string, limit int) ([]entities.ChatMessage, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.messages, nil
}
func (f *fakeChats) Append(ctx context.Context, sessionID, payload string) error { return nil }
func (f *fakeChats) ListSessions(ctx context.Context) ([]entities.ChatSession, error) {
	return nil, nil
}

type fakeDocs struct {
	docs []entities.Document
}

func (f *fakeDocs) ListByStudent(ctx context.Context, studentID int) ([]entities.Document, error) {
	return f.docs, nil
}
func (f *fakeDocs) GetByID(ctx context.Context, id string) (*entities.Document, error) {
	return nil, nil
}
func (f *fakeDocs) Create(ctx context.Context, d *entities.Document) error { return nil }

type fakeBlobs struct {
	data map[string][]byte
}

func (f *fakeBlobs) Upload(ctx context.Context, name, mimeType string, r io.Reader) (string, error) {
	return "file-id", nil
}
func (f *fakeBlobs) Download(ctx context.Context, fileID string) (io.ReadCloser, error) {
	b, ok := f.data[fileID]
	if !ok {
		return nil, errors.New("not found")
	}
	return io.NopCloser(bytes.NewReader(b)), nil
}

type fakeSettings struct {
	botEnabled string
	botPrompt  string
}

func (f *fakeSettings) Get(ctx context.Context, key string) (string, error) {
	switch key {
	case repository.SettingBotEnabled:
		return f.botEnabled, nil
	case repository.SettingBotPrompt:
		return f.botPrompt, nil
	}
	return "", nil
}
func (f *fakeSettings) Set(ctx context.Context, key, value string) error { return nil }

type fakeGenerator struct {
	reply string
	err   error

	calls      int
	lastPrompt string
}

func (f *fakeGenerator) Complete(ctx context.Context, messages []interfaces.GenMessage) (string, error) {
	f.calls++
	if len(messages) > 0 {
		f.lastPrompt = messages[len(messages)-1].Content
	}
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

type fakeNotifier struct {
	notes []string
}

func (f *fakeNotifier) Notify(text string) { f.notes = append(f.notes, text) }

func testStudent() *entities.Student {
	return &entities.Student{
		ID:       7,
		FullName: "Lucía Gómez",
		Phone:    "+54 9 11 5555-1234",
		Status:   "interesada",
		Career:   "Sistemas",
	}
}

func newTestBot(students interfaces.StudentStore, chats interfaces.ChatStore, docs interfaces.DocumentStore, blobs interfaces.BlobStore, settings interfaces.SettingsStore, gen interfaces.TextGenerator, notifier interfaces.Notifier) *BotUsecase {
	return NewBotUsecase(students, chats, docs, blobs, settings, gen, notifier, zap.NewNop().Sugar(), 30)
}

func TestAnalyzeBotDisabled(t *testing.T) {
	gen := &fakeGenerator{reply: "no debería llamarse"}
	bot := newTestBot(&fakeStudents{student: testStudent()}, &fakeChats{}, &fakeDocs{}, nil, &fakeSettings{botEnabled: "false"}, gen, &fakeNotifier{})

	answer, err := bot.Analyze(context.Background(), 7, "¿Cómo viene esta alumna?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if answer != DisabledReply {
		t.Errorf("answer = %q, want disabled reply", answer)
	}
	if gen.calls != 0 {
		t.Errorf("generator called %d times while disabled", gen.calls)
	}
}

func TestAnalyzeStudentNotFound(t *testing.T) {
	bot := newTestBot(&fakeStudents{}, &fakeChats{}, &fakeDocs{}, nil, &fakeSettings{botEnabled: "true"}, &fakeGenerator{}, &fakeNotifier{})

	_, err := bot.Analyze(context.Background(), 99, "pregunta")
	if !errors.Is(err, ErrStudentNotFound) {
		t.Errorf("err = %v, want ErrStudentNotFound", err)
	}
}

func TestAnalyzeHappyPath(t *testing.T) {
	chats := &fakeChats{messages: []entities.ChatMessage{
		{ID: 12, Payload: `{"output":{"mensaje_1":"Abren en marzo."}}`},
		{ID: 11, Payload: "Mensaje de la persona: Cuándo abren las inscripciones?"},
		{ID: 10, Payload: "Hola! Soy el asistente de Punto Kennedy."},
	}}
	gen := &fakeGenerator{reply: "Está interesada y espera la fecha de inscripción."}
	bot := newTestBot(&fakeStudents{student: testStudent()}, chats, &fakeDocs{}, nil, &fakeSettings{botEnabled: "true"}, gen, &fakeNotifier{})

	answer, err := bot.Analyze(context.Background(), 7, "¿Cómo viene esta alumna?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if answer != gen.reply {
		t.Errorf("answer = %q", answer)
	}
	if gen.calls != 1 {
		t.Fatalf("generator called %d times, want exactly 1", gen.calls)
	}

	prompt := gen.lastPrompt
	if !strings.Contains(prompt, "Lucía Gómez") {
		t.Error("student name missing from prompt")
	}
	if !strings.Contains(prompt, "¿Cómo viene esta alumna?") {
		t.Error("question missing from prompt")
	}

	// Transcript is chronological: greeting, question, answer
	first := strings.Index(prompt, "Soy el asistente")
	second := strings.Index(prompt, "Cuándo abren las inscripciones?")
	third := strings.Index(prompt, "Abren en marzo.")
	if first < 0 || second < 0 || third < 0 {
		t.Fatalf("transcript lines missing from prompt:\n%s", prompt)
	}
	if !(first < second && second < third) {
		t.Errorf("transcript out of order: %d %d %d", first, second, third)
	}
	if !strings.Contains(prompt, "[user] Cuándo abren") {
		t.Error("user role tag missing from transcript line")
	}
}

func TestAnalyzePromptOverride(t *testing.T) {
	gen := &fakeGenerator{reply: "ok"}
	settings := &fakeSettings{botEnabled: "true", botPrompt: "Sos un analista de admisiones escueto."}
	bot := newTestBot(&fakeStudents{student: testStudent()}, &fakeChats{}, &fakeDocs{}, nil, settings, gen, &fakeNotifier{})

	if _, err := bot.Analyze(context.Background(), 7, "pregunta"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(gen.lastPrompt, "Sos un analista de admisiones escueto.") {
		t.Errorf("prompt override not applied:\n%s", gen.lastPrompt)
	}
}

func TestAnalyzeChatLookupFailureYieldsEmptyTranscript(t *testing.T) {
	chats := &fakeChats{err: errors.New("db down")}
	gen := &fakeGenerator{reply: "Sin historial disponible."}
	bot := newTestBot(&fakeStudents{student: testStudent()}, chats, &fakeDocs{}, nil, &fakeSettings{botEnabled: "true"}, gen, &fakeNotifier{})

	answer, err := bot.Analyze(context.Background(), 7, "pregunta")
	if err != nil {
		t.Fatalf("chat failure must not fail the request: %v", err)
	}
	if answer != gen.reply {
		t.Errorf("answer = %q", answer)
	}
	if strings.Contains(gen.lastPrompt, "Conversación reciente") {
		t.Error("prompt contains a transcript section despite chat failure")
	}
}

func TestAnalyzeIncludesDocumentPlaceholder(t *testing.T) {
	docs := &fakeDocs{docs: []entities.Document{
		{ID: "d1", FileName: "dni_frente.jpg", MimeType: "image/jpeg", DriveFileID: "f1"},
	}}
	blobs := &fakeBlobs{data: map[string][]byte{"f1": {0xFF, 0xD8, 0xFF}}}
	gen := &fakeGenerator{reply: "ok"}
	bot := newTestBot(&fakeStudents{student: testStudent()}, &fakeChats{}, docs, blobs, &fakeSettings{botEnabled: "true"}, gen, &fakeNotifier{})

	if _, err := bot.Analyze(context.Background(), 7, "pregunta"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(gen.lastPrompt, "[archivo binario no legible: dni_frente.jpg]") {
		t.Errorf("document placeholder missing from prompt:\n%s", gen.lastPrompt)
	}
}

func TestAnalyzeNoChoicesReturnsApology(t *testing.T) {
	notifier := &fakeNotifier{}
	gen := &fakeGenerator{err: interfaces.ErrNoChoices}
	bot := newTestBot(&fakeStudents{student: testStudent()}, &fakeChats{}, &fakeDocs{}, nil, &fakeSettings{botEnabled: "true"}, gen, notifier)

	answer, err := bot.Analyze(context.Background(), 7, "pregunta")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if answer != ApologyReply {
		t.Errorf("answer = %q, want apology", answer)
	}
	if len(notifier.notes) != 0 {
		t.Errorf("empty-choices case should not alert staff, got %v", notifier.notes)
	}
}

func TestAnalyzeGeneratorFailureAlertsStaff(t *testing.T) {
	notifier := &fakeNotifier{}
	gen := &fakeGenerator{err: errors.New("timeout")}
	bot := newTestBot(&fakeStudents{student: testStudent()}, &fakeChats{}, &fakeDocs{}, nil, &fakeSettings{botEnabled: "true"}, gen, notifier)

	_, err := bot.Analyze(context.Background(), 7, "pregunta")
	if err == nil {
		t.Fatal("expected an error")
	}
	if len(notifier.notes) != 1 {
		t.Errorf("got %d staff alerts, want 1", len(notifier.notes))
	}
}

func TestIsBotEnabled(t *testing.T) {
	for _, v := range []string{"true", "TRUE", "1", "yes", "on", " true "} {
		if !IsBotEnabled(v) {
			t.Errorf("IsBotEnabled(%q) = false", v)
		}
	}
	for _, v := range []string{"", "false", "0", "off", "enabled"} {
		if IsBotEnabled(v) {
			t.Errorf("IsBotEnabled(%q) = true", v)
		}
	}
}
