// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/taibuivan/yamdb/internal/platform/constants"
	"github.com/taibuivan/yamdb/internal/platform/ctxutil"
	"github.com/taibuivan/yamdb/internal/platform/dberr"
	"github.com/taibuivan/yamdb/internal/platform/metrics"
	"github.com/taibuivan/yamdb/internal/platform/sec"
	"github.com/taibuivan/yamdb/internal/platform/validate"
	"github.com/taibuivan/yamdb/pkg/uuid"
)

// # Definitions & Constructors

// Lifetimes configures how long codes and tokens stay valid.
type Lifetimes struct {
	Code  time.Duration
	Token time.Duration
}

// Service implements the signup and token use cases.
//
// # Concurrency
//
// Service holds no mutable state. Races between a reissue and a verification
// of the same account resolve through the compare-and-set in
// [UserRepository.SetActive] and the last-write-wins [CodeStore].
type Service struct {
	userRepository UserRepository
	codeStore      CodeStore
	codeGenerator  CodeGenerator
	notifier       Notifier
	tokenProvider  TokenProvider
	lifetimes      Lifetimes
}

// NewService constructs a [Service] with its collaborators.
func NewService(
	userRepo UserRepository,
	codeStore CodeStore,
	generator CodeGenerator,
	notifier Notifier,
	tokenProv TokenProvider,
	lifetimes Lifetimes,
) *Service {
	return &Service{
		userRepository: userRepo,
		codeStore:      codeStore,
		codeGenerator:  generator,
		notifier:       notifier,
		tokenProvider:  tokenProv,
		lifetimes:      lifetimes,
	}
}

// # Signup Flow

// SignupInput is the identity a caller asks a code for.
type SignupInput struct {
	Username string
	Email    string
}

// SignupResult echoes the canonical identity. It never carries the code.
type SignupResult struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

// maxSignupAttempts bounds the retry after losing a concurrent create race.
const maxSignupAttempts = 2

/*
Signup issues a confirmation code for (username, email).

Decision table:
  - username known with the same email: reissue a code and deactivate the account.
  - username known with another email: [ErrUsernameTaken], nothing stored.
  - username unknown, email used by another username: [ErrEmailTaken], nothing stored.
  - both unknown: create an inactive user and issue a code.

The code is stored before notification. A notifier failure returns
[ErrNotificationFailed] with the code still live.
*/
func (service *Service) Signup(ctx context.Context, input SignupInput) (*SignupResult, error) {
	username := validate.NormalizeUsername(input.Username)
	email := validate.NormalizeEmail(input.Email)

	if err := ValidateIdentity(username, email); err != nil {
		return nil, err
	}

	for attempt := 1; ; attempt++ {
		err := service.signupOnce(ctx, username, email)

		// Another request created the same username or email between our
		// lookup and insert; re-run the table against the committed row.
		if dberr.IsDuplicate(err) && attempt < maxSignupAttempts {
			continue
		}
		if err != nil {
			return nil, err
		}
		return &SignupResult{Username: username, Email: email}, nil
	}
}

// signupOnce runs the decision table once against the directory.
func (service *Service) signupOnce(ctx context.Context, username, email string) error {
	existing, err := service.userRepository.FindByUsername(ctx, username)
	switch {
	case err == nil:
		if existing.Email != email {
			return ErrUsernameTaken
		}
		return service.reissue(ctx, existing)

	case errors.Is(err, ErrUserNotFound):
		// fall through to the email check

	default:
		return fmt.Errorf("auth_service_signup_lookup_failed: %w", err)
	}

	_, err = service.userRepository.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return ErrEmailTaken
	case !errors.Is(err, ErrUserNotFound):
		return fmt.Errorf("auth_service_signup_lookup_failed: %w", err)
	}

	return service.create(ctx, username, email)
}

// create persists a new inactive user and sends the first code.
func (service *Service) create(ctx context.Context, username, email string) error {
	user := &User{
		ID:       uuid.New(),
		Username: username,
		Email:    email,
		Role:     sec.RoleUser,
		IsActive: false,
	}

	if err := service.userRepository.Create(ctx, user); err != nil {
		if dberr.IsDuplicate(err) {
			return err
		}
		return fmt.Errorf("auth_service_signup_create_failed: %w", err)
	}

	code, err := service.storeCode(ctx, email)
	if err != nil {
		return err
	}

	metrics.CodeIssued(metrics.IssueCreate)
	ctxutil.GetLogger(ctx).InfoContext(ctx, "signup_code_issued", slog.String("user_id", user.ID))

	return service.notify(ctx, email, code)
}

// reissue replaces the live code and moves the account back to pending verification.
func (service *Service) reissue(ctx context.Context, user *User) error {
	code, err := service.storeCode(ctx, user.Email)
	if err != nil {
		return err
	}

	// false just means the account was already pending
	if _, err := service.userRepository.SetActive(ctx, user.ID, true, false); err != nil {
		return fmt.Errorf("auth_service_signup_deactivate_failed: %w", err)
	}

	metrics.CodeIssued(metrics.IssueReissue)
	ctxutil.GetLogger(ctx).InfoContext(ctx, "signup_code_reissued",
		slog.String("user_id", user.ID),
		slog.Bool("was_active", user.IsActive),
	)

	return service.notify(ctx, user.Email, code)
}

// storeCode draws a fresh code and makes it the only live one for email.
func (service *Service) storeCode(ctx context.Context, email string) (string, error) {
	code, err := service.codeGenerator.Generate()
	if err != nil {
		return "", fmt.Errorf("auth_service_code_generate_failed: %w", err)
	}

	if err := service.codeStore.Put(ctx, email, code, service.lifetimes.Code); err != nil {
		return "", fmt.Errorf("auth_service_code_store_failed: %w", err)
	}
	return code, nil
}

// notify delivers the code within [constants.NotifyTimeout].
func (service *Service) notify(ctx context.Context, email, code string) error {
	notifyCtx, cancel := context.WithTimeout(ctx, constants.NotifyTimeout)
	defer cancel()

	if err := service.notifier.Send(notifyCtx, email, code); err != nil {
		metrics.NotificationFailed()
		ctxutil.GetLogger(ctx).ErrorContext(ctx, "notification_failed", slog.Any("error", err))
		return ErrNotificationFailed.WithCause(err)
	}
	return nil
}

// # Token Flow

// TokenInput is a verification attempt.
type TokenInput struct {
	Username         string
	ConfirmationCode string
}

// AccessToken is the credential returned after a successful verification.
type AccessToken struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"-"`
}

/*
IssueToken verifies the confirmation code of username and returns an access token.

An unknown username and a wrong, expired or consumed code all return
[ErrInvalidCode]. On success the account is activated and the code is deleted
so it cannot be replayed within its ttl.
*/
func (service *Service) IssueToken(ctx context.Context, input TokenInput) (*AccessToken, error) {
	username := validate.NormalizeUsername(input.Username)

	validator := &validate.Validator{}
	err := validator.
		Required(FieldUsername, username).
		Digits(FieldConfirmationCode, input.ConfirmationCode, constants.ConfirmationCodeLength).
		Err()
	if err != nil {
		return nil, err
	}

	user, err := service.userRepository.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			metrics.CodeVerified(metrics.VerifyInvalid)
			return nil, ErrInvalidCode
		}
		return nil, fmt.Errorf("auth_service_token_lookup_failed: %w", err)
	}

	stored, err := service.codeStore.Get(ctx, user.Email)
	if err != nil && !errors.Is(err, ErrCodeNotFound) {
		return nil, fmt.Errorf("auth_service_code_fetch_failed: %w", err)
	}
	if err != nil || subtle.ConstantTimeCompare([]byte(stored), []byte(input.ConfirmationCode)) != 1 {
		metrics.CodeVerified(metrics.VerifyInvalid)
		ctxutil.GetLogger(ctx).InfoContext(ctx, "confirmation_code_rejected", slog.String("user_id", user.ID))
		return nil, ErrInvalidCode
	}

	// false just means the account was already active
	if _, err := service.userRepository.SetActive(ctx, user.ID, false, true); err != nil {
		return nil, fmt.Errorf("auth_service_activate_failed: %w", err)
	}
	user.IsActive = true

	token, expiresAt, err := service.tokenProvider.GenerateAccessToken(user.Identity(), service.lifetimes.Token)
	if err != nil {
		return nil, fmt.Errorf("auth_service_token_sign_failed: %w", err)
	}

	if err := service.codeStore.Delete(ctx, user.Email, stored); err != nil {
		ctxutil.GetLogger(ctx).WarnContext(ctx, "confirmation_code_delete_failed",
			slog.String("user_id", user.ID),
			slog.Any("error", err),
		)
	}

	metrics.CodeVerified(metrics.VerifySuccess)
	ctxutil.GetLogger(ctx).InfoContext(ctx, "account_activated", slog.String("user_id", user.ID))

	return &AccessToken{Token: token, ExpiresAt: expiresAt}, nil
}

// # Validation

// ValidateIdentity applies the username and email rules to normalized input.
func ValidateIdentity(username, email string) error {
	validator := &validate.Validator{}
	return validator.
		Required(FieldUsername, username).
		MaxLen(FieldUsername, username, MaxUsernameLength).
		Username(FieldUsername, username).
		Required(FieldEmail, email).
		MaxLen(FieldEmail, email, MaxEmailLength).
		Email(FieldEmail, email).
		Err()
}

