package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// UsageRepository meters bot questions per staff user per day.
type UsageRepository struct {
	db *pgxpool.Pool
}

type DailyUsage struct {
	Date           time.Time `json:"date"`
	QuestionsAsked int       `json:"questions_asked"`
}

func NewUsageRepository(db *pgxpool.Pool) *UsageRepository {
	return &UsageRepository{db: db}
}

// IncrementQuestions bumps today's counter for the user.
func (r *UsageRepository) IncrementQuestions(ctx context.Context, userID int) error {
	today := time.Now().Format("2006-01-02")
	_, err := r.db.Exec(ctx, `
		INSERT INTO bot_usage (user_id, date, questions_asked)
		VALUES ($1, $2, 1)
		ON CONFLICT (user_id, date)
		DO UPDATE SET questions_asked = bot_usage.questions_asked + 1
	`, userID, today)
	return err
}

// GetTodayCount returns today's question count; a missing row means 0.
func (r *UsageRepository) GetTodayCount(ctx context.Context, userID int) (int, error) {
	today := time.Now().Format("2006-01-02")
	var count int
	err := r.db.QueryRow(ctx, `
		SELECT COALESCE(questions_asked, 0)
		FROM bot_usage WHERE user_id = $1 AND date = $2
	`, userID, today).Scan(&count)
	if err != nil {
		return 0, nil
	}
	return count, nil
}

// GetHistory returns the last N days of usage for a user.
func (r *UsageRepository) GetHistory(ctx context.Context, userID, days int) ([]DailyUsage, error) {
	startDate := time.Now().AddDate(0, 0, -days).Format("2006-01-02")
	rows, err := r.db.Query(ctx, `
		SELECT date, questions_asked
		FROM bot_usage
		WHERE user_id = $1 AND date >= $2
		ORDER BY date ASC
	`, userID, startDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	usage := []DailyUsage{}
	for rows.Next() {
		var u DailyUsage
		if err := rows.Scan(&u.Date, &u.QuestionsAsked); err != nil {
			return nil, err
		}
		usage = append(usage, u)
	}
	return usage, rows.Err()
}

// CanAsk checks the user's daily quota (0 = unlimited).
func (r *UsageRepository) CanAsk(ctx context.Context, userID, dailyQuota int) (bool, error) {
	if dailyQuota <= 0 {
		return true, nil
	}
	count, err := r.GetTodayCount(ctx, userID)
	if err != nil {
		return false, err
	}
	return count < dailyQuota, nil
}
