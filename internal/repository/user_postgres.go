package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"matreshka-feed/internal/domain"
)

type userPostgresRepository struct {
	db *sqlx.DB
}

func NewPostgresUserRepository(db *sqlx.DB) UserRepository {
	return &userPostgresRepository{db: db}
}

func (r *userPostgresRepository) Upsert(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (telegram_id, username, first_name, last_name, is_premium, language_code)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (telegram_id) DO UPDATE
		SET username = EXCLUDED.username,
		    first_name = EXCLUDED.first_name,
		    last_name = EXCLUDED.last_name,
		    is_premium = EXCLUDED.is_premium,
		    updated_at = NOW()
		RETURNING created_at, updated_at`

	return r.db.QueryRowxContext(ctx, query,
		user.TelegramID, user.Username, user.FirstName, user.LastName,
		user.IsPremium, user.LanguageCode,
	).Scan(&user.CreatedAt, &user.UpdatedAt)
}

func (r *userPostgresRepository) GetByTelegramID(ctx context.Context, telegramID int64) (*domain.User, error) {
	var user domain.User
	query := `SELECT * FROM users WHERE telegram_id = $1`
	err := r.db.GetContext(ctx, &user, query, telegramID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}
