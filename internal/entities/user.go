package entities

type User struct {
	ID           int    `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"`
	Role         string `json:"role"`
	IsActive     bool   `json:"is_active"`
	DailyQuota   int    `json:"daily_quota"` // Max bot questions per day (0 = unlimited)
}
