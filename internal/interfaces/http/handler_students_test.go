package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"punto_kennedy_crm/internal/entities"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type stubStudents struct {
	student *entities.Student
}

func (s *stubStudents) GetByID(ctx context.Context, id int) (*entities.Student, error) {
	if s.student != nil && s.student.ID == id {
		return s.student, nil
	}
	return nil, nil
}
func (s *stubStudents) List(ctx context.Context) ([]entities.Student, error) { return nil, nil }
func (s *stubStudents) Search(ctx context.Context, q string) ([]entities.Student, error) {
	return nil, nil
}
func (s *stubStudents) Create(ctx context.Context, st *entities.Student) error { return nil }
func (s *stubStudents) Update(ctx context.Context, st *entities.Student) error { return nil }
func (s *stubStudents) Delete(ctx context.Context, id int) error               { return nil }

type stubChats struct {
	messages []entities.ChatMessage
}

func (s *stubChats) RecentByPhone(ctx context.Context, phone string, limit int) ([]entities.ChatMessage, error) {
	return s.messages, nil
}
func (s *stubChats) Append(ctx context.Context, sessionID, payload string) error { return nil }
func (s *stubChats) ListSessions(ctx context.Context) ([]entities.ChatSession, error) {
	return nil, nil
}

func newStudentRouter(students *stubStudents, chats *stubChats) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := &Handler{students: students, chats: chats, log: zap.NewNop().Sugar()}
	r := gin.New()
	r.GET("/api/students/:id", h.GetStudent)
	r.GET("/api/students/:id/conversation", h.GetStudentConversation)
	return r
}

func TestGetStudentNotFound(t *testing.T) {
	r := newStudentRouter(&stubStudents{}, &stubChats{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/students/42", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestGetStudentConversation(t *testing.T) {
	students := &stubStudents{student: &entities.Student{
		ID:       7,
		FullName: "Lucía Gómez",
		Phone:    "+54 9 11 5555-1234",
	}}
	chats := &stubChats{messages: []entities.ChatMessage{
		{ID: 11, Payload: `{"output":{"mensaje_1":"Abren en marzo."}}`},
		{ID: 10, Payload: "Mensaje de la persona: Cuándo abren?"},
	}}
	r := newStudentRouter(students, chats)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/students/7/conversation", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp struct {
		Transcript []entities.TranscriptEntry `json:"transcript"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Transcript) != 2 {
		t.Fatalf("got %d entries, want 2", len(resp.Transcript))
	}
	if resp.Transcript[0].Role != "user" || resp.Transcript[0].Content != "Cuándo abren?" {
		t.Errorf("entry 0 = %+v", resp.Transcript[0])
	}
	if resp.Transcript[1].Role != "assistant" || !strings.Contains(resp.Transcript[1].Content, "Abren en marzo.") {
		t.Errorf("entry 1 = %+v", resp.Transcript[1])
	}
}

func TestGetStudentConversationNoPhone(t *testing.T) {
	students := &stubStudents{student: &entities.Student{ID: 7, FullName: "Sin Teléfono"}}
	r := newStudentRouter(students, &stubChats{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/students/7/conversation", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"transcript":[]`) {
		t.Errorf("body = %s, want empty transcript", w.Body.String())
	}
}
