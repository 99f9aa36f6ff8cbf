package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"order_service/internal/domain"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

var _ domain.UserUseCase = (*userUseCase)(nil)

// TokenIssuer abstracts token generation so the use case does not depend on
// the concrete JWT implementation.
type TokenIssuer interface {
	Generate(username string, role domain.Role) (string, error)
}

type userUseCase struct {
	userRepo domain.UserRepository
	tokens   TokenIssuer
	log      *logrus.Logger
}

func NewUserUseCase(repo domain.UserRepository, tokens TokenIssuer, logger *logrus.Logger) domain.UserUseCase {
	return &userUseCase{
		userRepo: repo,
		tokens:   tokens,
		log:      logger,
	}
}

func (uc *userUseCase) Register(ctx context.Context, username, password string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, domain.ErrEmptyUsername
	}
	if len(password) < 8 {
		return nil, domain.ErrWeakPassword
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		uc.log.Errorf("Use Case: failed to hash password for %s: %v", username, err)
		return nil, fmt.Errorf("internal error processing password: %w", err)
	}

	newUser := &domain.User{
		Username:     username,
		PasswordHash: string(hashedPassword),
		Role:         domain.RoleUser,
	}

	createdUser, err := uc.userRepo.CreateUser(ctx, newUser)
	if err != nil {
		uc.log.Warnf("Use Case: repository failed to create user %s: %v", username, err)
		return nil, err
	}

	uc.log.Infof("Use Case: user registered, ID %d, username %s", createdUser.ID, createdUser.Username)
	return createdUser, nil
}

func (uc *userUseCase) Login(ctx context.Context, username, password string) (string, error) {
	username = strings.TrimSpace(username)

	user, err := uc.userRepo.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			uc.log.Warnf("Use Case: login failed, user %s not found", username)
			return "", domain.ErrInvalidCredentials
		}
		uc.log.Errorf("Use Case: error retrieving user %s during login: %v", username, err)
		return "", fmt.Errorf("failed to retrieve user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			uc.log.Warnf("Use Case: login failed, incorrect password for user %s", username)
			return "", domain.ErrInvalidCredentials
		}
		uc.log.Errorf("Use Case: error comparing password hash for user %s: %v", username, err)
		return "", fmt.Errorf("internal error during authentication: %w", err)
	}

	token, err := uc.tokens.Generate(user.Username, user.Role)
	if err != nil {
		uc.log.Errorf("Use Case: failed to issue token for user %s: %v", username, err)
		return "", fmt.Errorf("could not issue token: %w", err)
	}

	uc.log.Infof("Use Case: user %s authenticated", username)
	return token, nil
}

func (uc *userUseCase) ProvideAdminRole(ctx context.Context, username string) error {
	if err := uc.userRepo.UpdateUserRole(ctx, username, domain.RoleAdmin); err != nil {
		uc.log.Warnf("Use Case: failed to grant admin role to %s: %v", username, err)
		return err
	}
	uc.log.Infof("Use Case: admin role granted to user %s", username)
	return nil
}
