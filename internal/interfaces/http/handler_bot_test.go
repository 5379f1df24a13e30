package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"punto_kennedy_crm/internal/entities"
	"punto_kennedy_crm/internal/interfaces"
	"punto_kennedy_crm/internal/repository"
	"punto_kennedy_crm/internal/usecases"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type stubDocStore struct{}

func (s *stubDocStore) ListByStudent(ctx context.Context, studentID int) ([]entities.Document, error) {
	return nil, nil
}
func (s *stubDocStore) GetByID(ctx context.Context, id string) (*entities.Document, error) {
	return nil, nil
}
func (s *stubDocStore) Create(ctx context.Context, d *entities.Document) error { return nil }

type stubSettingStore struct {
	botEnabled string
}

func (s *stubSettingStore) Get(ctx context.Context, key string) (string, error) {
	if key == repository.SettingBotEnabled {
		return s.botEnabled, nil
	}
	return "", nil
}
func (s *stubSettingStore) Set(ctx context.Context, key, value string) error { return nil }

type stubGen struct {
	reply string
	calls int
}

func (s *stubGen) Complete(ctx context.Context, messages []interfaces.GenMessage) (string, error) {
	s.calls++
	return s.reply, nil
}

type stubNotify struct{}

func (s *stubNotify) Notify(text string) {}

type stubUsers struct {
	user *entities.User
}

func (s *stubUsers) GetByID(ctx context.Context, id int) (*entities.User, error) {
	return s.user, nil
}
func (s *stubUsers) List(ctx context.Context) ([]entities.User, error) { return nil, nil }
func (s *stubUsers) SetActive(ctx context.Context, id int, active bool) error { return nil }
func (s *stubUsers) SetDailyQuota(ctx context.Context, id, quota int) error { return nil }

type stubUsage struct {
	canAsk     bool
	today      int
	increments int
}

func (s *stubUsage) CanAsk(ctx context.Context, userID, dailyQuota int) (bool, error) {
	return s.canAsk, nil
}
func (s *stubUsage) IncrementQuestions(ctx context.Context, userID int) error {
	s.increments++
	return nil
}
func (s *stubUsage) GetTodayCount(ctx context.Context, userID int) (int, error) {
	return s.today, nil
}
func (s *stubUsage) GetHistory(ctx context.Context, userID, days int) ([]repository.DailyUsage, error) {
	return nil, nil
}

func newBotRouter(botEnabled string, usage *stubUsage, user *entities.User) (*gin.Engine, *stubGen) {
	gin.SetMode(gin.TestMode)
	gen := &stubGen{reply: "Está interesada."}
	bot := usecases.NewBotUsecase(
		&stubStudents{student: &entities.Student{ID: 7, FullName: "Lucía Gómez", Phone: "5491155551234"}},
		&stubChats{},
		&stubDocStore{},
		nil,
		&stubSettingStore{botEnabled: botEnabled},
		gen,
		&stubNotify{},
		zap.NewNop().Sugar(),
		30,
	)
	h := &Handler{
		botUsecase: bot,
		userRepo:   &stubUsers{user: user},
		usageRepo:  usage,
		log:        zap.NewNop().Sugar(),
	}
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("user_id", float64(1))
		c.Next()
	})
	r.POST("/api/bot/analyze", h.BotAnalyze)
	return r, gen
}

func postAnalyze(r *gin.Engine) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/bot/analyze",
		strings.NewReader(`{"student_id":7,"question":"¿Cómo viene esta alumna?"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestBotAnalyzeIncrementsUsage(t *testing.T) {
	usage := &stubUsage{canAsk: true}
	r, gen := newBotRouter("true", usage, &entities.User{ID: 1, DailyQuota: 0})

	w := postAnalyze(r)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if gen.calls != 1 {
		t.Errorf("generator called %d times, want 1", gen.calls)
	}
	if usage.increments != 1 {
		t.Errorf("usage incremented %d times, want 1", usage.increments)
	}
}

func TestBotAnalyzeDisabledCostsNoQuota(t *testing.T) {
	usage := &stubUsage{canAsk: true}
	r, gen := newBotRouter("false", usage, &entities.User{ID: 1, DailyQuota: 5})

	w := postAnalyze(r)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), usecases.DisabledReply) {
		t.Errorf("body = %s, want disabled reply", w.Body.String())
	}
	if gen.calls != 0 {
		t.Errorf("generator called %d times while disabled", gen.calls)
	}
	if usage.increments != 0 {
		t.Errorf("refusal consumed quota: increments = %d", usage.increments)
	}
}

func TestBotAnalyzeQuotaReached(t *testing.T) {
	usage := &stubUsage{canAsk: false}
	r, gen := newBotRouter("true", usage, &entities.User{ID: 1, DailyQuota: 5})

	w := postAnalyze(r)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", w.Code)
	}
	if gen.calls != 0 {
		t.Errorf("generator called %d times past quota", gen.calls)
	}
}
