package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/icancodefyi/sarthi-ai/internal/model"
)

// UserRepo stores directory users
type UserRepo struct {
	db *sql.DB
}

// NewUserRepo creates a user repository
func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{db: db}
}

// Upsert creates a user or refreshes its profile
func (r *UserRepo) Upsert(ctx context.Context, user *model.User) error {
	now := time.Now().UTC().Format(time.RFC3339)
	planType := user.PlanType
	if planType == "" {
		planType = model.PlanFree
	}

	query := `
		INSERT INTO users (id, name, email, plan_type, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			email = excluded.email,
			plan_type = excluded.plan_type
	`

	_, err := execRetry(ctx, r.db, query, user.ID, user.Name, user.Email, string(planType), now)
	return err
}

// GetByID gets a user by ID
func (r *UserRepo) GetByID(ctx context.Context, userID string) (*model.User, error) {
	query := `SELECT id, name, email, plan_type, created_at FROM users WHERE id = ?`

	user := &model.User{}
	var email sql.NullString
	var planType string

	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&user.ID, &user.Name, &email, &planType, &user.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if email.Valid {
		user.Email = email.String
	}
	user.PlanType = model.PlanType(planType)

	return user, nil
}
