package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mlanina/auth_service/internal/mailer"
	"github.com/mlanina/auth_service/internal/models"
	"github.com/mlanina/auth_service/internal/mykafka"
	"github.com/mlanina/auth_service/internal/repo"
	"github.com/mlanina/auth_service/pkg/hash"
	"github.com/mlanina/auth_service/pkg/logging"
	"github.com/mlanina/auth_service/pkg/tokens"
)

var (
	ErrValidation = errors.New("validation failed")

	// ErrInvalidCredentials covers both unknown username and wrong password;
	// callers must not be able to tell which.
	ErrInvalidCredentials = errors.New("invalid username or password")

	ErrDuplicateUsername = errors.New("username already exists")
)

type AuthService struct {
	Repo     repo.GormRepo
	Access   *tokens.AccessTokenService
	Reset    *tokens.ResetTokenService
	Mailer   mailer.Mailer
	Producer *mykafka.Producer
	APIBase  string
}

type LoginResult struct {
	AccessToken string
	TokenType   string
	ExpiresAt   time.Time
}

func (s *AuthService) Register(ctx context.Context, username, fullName, email, password string) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register")

	if username == "" || password == "" {
		return nil, ErrValidation
	}

	pwHash, err := hash.HashPassword(password)
	if err != nil {
		l.Error("register_failed", "reason", "cannot hash the password", "error", err)
		return nil, err
	}

	user := &models.User{
		Username:     username,
		FullName:     fullName,
		Email:        email,
		Role:         "user",
		PasswordHash: pwHash,
	}

	if err := s.Repo.CreateIfNotExists(ctx, user); err != nil {
		if errors.Is(err, repo.ErrUserAlreadyExist) {
			l.Warn("register_failed", "reason", "username taken", "username", username)
			return nil, ErrDuplicateUsername
		}
		l.Error("register_failed", "error", err)
		return nil, err
	}

	s.publish(ctx, fmt.Sprint(user.ID), map[string]interface{}{
		"type":     "user_registered",
		"username": user.Username,
	})

	l.Info("user_registered", "username", user.Username)
	return user, nil
}

func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login", "username", username)

	if username == "" || password == "" {
		return nil, ErrValidation
	}

	user, err := s.Repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repo.ErrUserNotFound) {
			l.Warn("login_failed", "reason", "unknown username")
			return nil, ErrInvalidCredentials
		}
		l.Error("login_failed", "error", err)
		return nil, err
	}

	if !hash.CheckPassword(user.PasswordHash, password) {
		l.Warn("login_failed", "reason", "password mismatch")
		return nil, ErrInvalidCredentials
	}

	token, err := s.Access.Issue(user.Username, user.Role)
	if err != nil {
		l.Error("login_failed", "error", err)
		return nil, err
	}

	l.Info("login_successful", "role", user.Role)
	return &LoginResult{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresAt:   time.Now().Add(s.Access.TTL()),
	}, nil
}

// ForgotPassword mints a reset token for the account and mails a reset link.
// An unknown username fails visibly with repo.ErrUserNotFound; the token
// carries the address from the request, which is also where the link is sent.
func (s *AuthService) ForgotPassword(ctx context.Context, username, email string) error {
	l := logging.FromContext(ctx).With("svc", "auth.forgot_password", "username", username)

	if username == "" || email == "" {
		return ErrValidation
	}

	user, err := s.Repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repo.ErrUserNotFound) {
			l.Warn("forgot_password_failed", "reason", "unknown username")
		} else {
			l.Error("forgot_password_failed", "error", err)
		}
		return err
	}

	token, err := s.Reset.Issue(username, email)
	if err != nil {
		l.Error("forgot_password_failed", "error", err)
		return err
	}

	resetLink := fmt.Sprintf("%s/reset-password?token=%s", s.APIBase, token)
	if err := s.Mailer.Send(email, "Reset your password", mailer.ResetBody(resetLink)); err != nil {
		l.Error("forgot_password_failed", "reason", "mail delivery", "error", err)
		return err
	}

	s.publish(ctx, fmt.Sprint(user.ID), map[string]interface{}{
		"type":     "password_reset_requested",
		"username": username,
	})

	l.Info("reset_link_sent")
	return nil
}

// ResetPassword verifies the reset token, re-hashes the new secret and
// persists it. Every token failure surfaces as the uniform
// tokens.ErrInvalidResetToken.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	l := logging.FromContext(ctx).With("svc", "auth.reset_password")

	if newPassword == "" {
		return ErrValidation
	}

	payload, err := s.Reset.Verify(token)
	if err != nil {
		l.Warn("reset_password_failed", "reason", "invalid token")
		return err
	}

	pwHash, err := hash.HashPassword(newPassword)
	if err != nil {
		l.Error("reset_password_failed", "reason", "cannot hash the password", "error", err)
		return err
	}

	if err := s.Repo.UpdatePassword(ctx, payload.Username, pwHash); err != nil {
		l.Error("reset_password_failed", "error", err)
		return err
	}

	s.publish(ctx, payload.Username, map[string]interface{}{
		"type":     "password_reset_completed",
		"username": payload.Username,
	})

	l.Info("password_reset", "username", payload.Username)
	return nil
}

// publish sends an auth event with a bounded context. Delivery failure is
// logged and never fails the request.
func (s *AuthService) publish(ctx context.Context, key string, event map[string]interface{}) {
	pubCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := s.Producer.PublishEvent(pubCtx, mykafka.UserEventsTopic, key, event); err != nil {
		logging.FromContext(ctx).Error("kafka_publish_error", "error", err)
	}
}
