package domain

import "time"

// User is a Telegram account cached for feed display. Hosted backend
// only; created on first bot interaction and upserted on every one
// after that. Never deleted by this system.
type User struct {
	TelegramID   int64     `json:"telegram_id" db:"telegram_id"`
	Username     string    `json:"username,omitempty" db:"username"`
	FirstName    string    `json:"first_name" db:"first_name"`
	LastName     string    `json:"last_name,omitempty" db:"last_name"`
	IsPremium    bool      `json:"is_premium" db:"is_premium"`
	LanguageCode string    `json:"language_code,omitempty" db:"language_code"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// DisplayName is the owner string recorded on bot-ingested photos.
func (u *User) DisplayName() string {
	if u.Username != "" {
		return "@" + u.Username
	}
	return u.FirstName
}
