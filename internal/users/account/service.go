// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/taibuivan/yamdb/internal/platform/sec"
	"github.com/taibuivan/yamdb/internal/platform/validate"
	"github.com/taibuivan/yamdb/internal/users/auth"
	"github.com/taibuivan/yamdb/pkg/pagination"
	"github.com/taibuivan/yamdb/pkg/pointer"
	"github.com/taibuivan/yamdb/pkg/uuid"
)

// Service implements profile and user management use cases.
type Service struct {
	accountRepository AccountRepository
	logger            *slog.Logger
}

// NewService constructs a [Service].
func NewService(repo AccountRepository, logger *slog.Logger) *Service {
	return &Service{accountRepository: repo, logger: logger}
}

// # Own Profile

// GetProfile returns the account of the authenticated caller.
func (service *Service) GetProfile(ctx context.Context, userID string) (*auth.User, error) {
	user, err := service.accountRepository.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("account_service_get_profile_failed: %w", err)
	}
	return user, nil
}

/*
UpdateProfile applies patch to the caller's own account.

The role field is always ignored here; a caller can never change their own
role through this path, admins included.
*/
func (service *Service) UpdateProfile(ctx context.Context, userID string, patch Patch) (*auth.User, error) {
	user, err := service.accountRepository.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("account_service_update_lookup_failed: %w", err)
	}

	patch.Role = nil
	if err := applyPatch(user, patch); err != nil {
		return nil, err
	}

	if err := service.accountRepository.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("account_service_update_failed: %w", err)
	}

	service.logger.InfoContext(ctx, "user_profile_updated", slog.String("user_id", userID))
	return user, nil
}

// # User Management

// List returns one page of accounts and its pagination metadata.
func (service *Service) List(ctx context.Context, input ListInput) ([]*auth.User, pagination.Meta, error) {
	validator := &validate.Validator{}
	if input.Role != "" {
		validator.OneOf(auth.FieldRole, input.Role, sec.RoleNames()...)
	}
	if err := validator.Err(); err != nil {
		return nil, pagination.Meta{}, err
	}

	params := pagination.Params{Page: input.Page, Limit: input.Limit}
	users, total, err := service.accountRepository.List(ctx, auth.ListFilter{
		Search: strings.TrimSpace(input.Search),
		Role:   sec.UserRole(input.Role),
		Limit:  params.Limit,
		Offset: params.Offset(),
	})
	if err != nil {
		return nil, pagination.Meta{}, fmt.Errorf("account_service_list_failed: %w", err)
	}

	return users, pagination.NewMeta(params.Page, params.Limit, total), nil
}

// Get returns the account with the given username.
func (service *Service) Get(ctx context.Context, username string) (*auth.User, error) {
	user, err := service.accountRepository.FindByUsername(ctx, validate.NormalizeUsername(username))
	if err != nil {
		return nil, fmt.Errorf("account_service_get_failed: %w", err)
	}
	return user, nil
}

/*
Create adds an account on behalf of an administrator.

The account starts inactive; its owner activates it through the normal
signup and token flow. Role defaults to user.
*/
func (service *Service) Create(ctx context.Context, input CreateInput) (*auth.User, error) {
	if input.Role == "" {
		input.Role = string(sec.RoleUser)
	}

	user := &auth.User{ID: uuid.New(), IsActive: false}
	err := applyPatch(user, Patch{
		Username:  &input.Username,
		Email:     &input.Email,
		FirstName: &input.FirstName,
		LastName:  &input.LastName,
		Bio:       &input.Bio,
		Role:      &input.Role,
	})
	if err != nil {
		return nil, err
	}

	if err := service.accountRepository.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("account_service_create_failed: %w", err)
	}

	service.logger.InfoContext(ctx, "user_created",
		slog.String("user_id", user.ID),
		slog.String("role", string(user.Role)),
	)
	return user, nil
}

// Update applies patch to the account with the given username, role included.
func (service *Service) Update(ctx context.Context, username string, patch Patch) (*auth.User, error) {
	user, err := service.Get(ctx, username)
	if err != nil {
		return nil, err
	}

	previousRole := user.Role
	if err := applyPatch(user, patch); err != nil {
		return nil, err
	}

	if err := service.accountRepository.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("account_service_update_failed: %w", err)
	}

	if user.Role != previousRole {
		service.logger.InfoContext(ctx, "user_role_changed",
			slog.String("user_id", user.ID),
			slog.String("from", string(previousRole)),
			slog.String("to", string(user.Role)),
		)
	}
	return user, nil
}

// Delete removes the account with the given username.
func (service *Service) Delete(ctx context.Context, username string) error {
	user, err := service.Get(ctx, username)
	if err != nil {
		return err
	}

	if err := service.accountRepository.Delete(ctx, user.ID); err != nil {
		return fmt.Errorf("account_service_delete_failed: %w", err)
	}

	service.logger.InfoContext(ctx, "user_deleted", slog.String("user_id", user.ID))
	return nil
}

// # Validation

// applyPatch normalizes and validates patch, then copies it onto user.
//
// user is left untouched when validation fails.
func applyPatch(user *auth.User, patch Patch) error {
	updated := *user

	if patch.Username != nil {
		updated.Username = validate.NormalizeUsername(*patch.Username)
	}
	if patch.Email != nil {
		updated.Email = validate.NormalizeEmail(*patch.Email)
	}
	updated.FirstName = strings.TrimSpace(pointer.Fallback(patch.FirstName, updated.FirstName))
	updated.LastName = strings.TrimSpace(pointer.Fallback(patch.LastName, updated.LastName))
	updated.Bio = pointer.Fallback(patch.Bio, updated.Bio)

	validator := &validate.Validator{}
	validator.
		MaxLen(auth.FieldFirstName, updated.FirstName, auth.MaxNameLength).
		MaxLen(auth.FieldLastName, updated.LastName, auth.MaxNameLength)
	if patch.Role != nil {
		validator.OneOf(auth.FieldRole, *patch.Role, sec.RoleNames()...)
		updated.Role = sec.UserRole(*patch.Role)
	}

	if err := validator.Err(); err != nil {
		return err
	}
	if err := auth.ValidateIdentity(updated.Username, updated.Email); err != nil {
		return err
	}

	*user = updated
	return nil
}
