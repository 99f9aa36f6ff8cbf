package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"order_service/internal/domain"

	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

type postgresUserRepository struct {
	db  *sql.DB
	log *logrus.Logger
}

func NewPostgresUserRepository(db *sql.DB, logger *logrus.Logger) domain.UserRepository {
	return &postgresUserRepository{
		db:  db,
		log: logger,
	}
}

func (r *postgresUserRepository) CreateUser(ctx context.Context, user *domain.User) (*domain.User, error) {
	query := `
        INSERT INTO users (username, password_hash, role)
        VALUES ($1, $2, $3)
        RETURNING id
    `
	err := r.db.QueryRowContext(ctx, query, user.Username, user.PasswordHash, user.Role).Scan(&user.ID)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			r.log.Warnf("Attempted to create user with duplicate username: %s", user.Username)
			return nil, domain.ErrUserAlreadyExists
		}
		r.log.Errorf("Failed to create user %q: %v", user.Username, err)
		return nil, fmt.Errorf("could not create user: %w", err)
	}

	r.log.Infof("User created with ID %d, username %q", user.ID, user.Username)
	return user, nil
}

func (r *postgresUserRepository) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	query := `
        SELECT id, username, password_hash, role
        FROM users
        WHERE username = $1
    `
	user := &domain.User{}
	err := r.db.QueryRowContext(ctx, query, username).Scan(
		&user.ID,
		&user.Username,
		&user.PasswordHash,
		&user.Role,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.Warnf("User %q not found", username)
			return nil, domain.ErrUserNotFound
		}
		r.log.Errorf("Failed to get user %q: %v", username, err)
		return nil, fmt.Errorf("could not get user by username: %w", err)
	}
	return user, nil
}

func (r *postgresUserRepository) UpdateUserRole(ctx context.Context, username string, role domain.Role) error {
	result, err := r.db.ExecContext(ctx, `UPDATE users SET role = $1 WHERE username = $2`, role, username)
	if err != nil {
		r.log.Errorf("Failed to update role for user %q: %v", username, err)
		return fmt.Errorf("could not update user role: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("could not check updated rows: %w", err)
	}
	if affected == 0 {
		return domain.ErrUserNotFound
	}
	r.log.Infof("User %q role updated to %s", username, role)
	return nil
}
