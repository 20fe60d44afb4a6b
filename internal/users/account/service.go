// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/taibuivan/lessons/internal/platform/apperr"
	"github.com/taibuivan/lessons/internal/platform/sec"
	"github.com/taibuivan/lessons/internal/platform/validate"
	"github.com/taibuivan/lessons/pkg/uuid"
)

// # Service Layer

// Service orchestrates the user directory.
type Service struct {
	repository Repository
	logger     *slog.Logger
}

// NewService constructs a new [Service] with its repository dependency.
func NewService(repository Repository, logger *slog.Logger) *Service {
	return &Service{repository: repository, logger: logger}
}

// # Provisioning

/*
Provision maps a verified identity to its account, creating it on first sight.

It satisfies middleware.Provisioner so the auth chain can hand the resulting
principal to every downstream handler.

Parameters:
  - context: context.Context
  - identity: *sec.Identity

Returns:
  - *sec.Principal: The acting account
  - error: Validation, conflict or storage failures
*/
func (service *Service) Provision(context context.Context, identity *sec.Identity) (*sec.Principal, error) {
	if identity == nil || strings.TrimSpace(identity.UID) == "" {
		return nil, apperr.Unauthorized("Verified identity has no subject")
	}

	seed := *identity
	if strings.TrimSpace(seed.Name) == "" {
		seed.Name = defaultDisplayName(seed.Email)
	}

	user, err := service.repository.Provision(context, uuid.New(), &seed)
	if err != nil {
		return nil, fmt.Errorf("account_service_provision_failed: %w", err)
	}

	return user.Principal(), nil
}

// defaultDisplayName derives a name for identities that carry none.
func defaultDisplayName(email string) string {
	if local, _, found := strings.Cut(email, "@"); found && local != "" {
		return local
	}
	return "Anonymous"
}

// # Profile Management

/*
Me returns the caller's profile after recomputing its counters from the
lesson and favorite ledgers.
*/
func (service *Service) Me(context context.Context, principal *sec.Principal) (*User, error) {
	user, err := service.repository.RecountTotals(context, principal.UID)
	if err != nil {
		return nil, fmt.Errorf("account_service_me_failed: %w", err)
	}
	return user, nil
}

/*
UpdateProfile applies a partial set of changes to the caller's profile.

Parameters:
  - context: context.Context
  - principal: *sec.Principal
  - input: UpdateProfileInput

Returns:
  - *User: The updated profile
  - error: Validation or storage failures
*/
func (service *Service) UpdateProfile(context context.Context, principal *sec.Principal, input UpdateProfileInput) (*User, error) {
	validator := &validate.Validator{}

	if input.DisplayName != nil {
		trimmed := strings.TrimSpace(*input.DisplayName)
		input.DisplayName = &trimmed
		validator.Required("displayName", trimmed).MaxLen("displayName", trimmed, 100)
	}

	if input.PhotoURL != nil {
		validator.OptionalURL("photoURL", *input.PhotoURL)
	}

	if err := validator.Err(); err != nil {
		return nil, err
	}

	user, err := service.repository.UpdateProfile(context, principal.UID, input)
	if err != nil {
		return nil, fmt.Errorf("account_service_update_failed: %w", err)
	}

	service.logger.Info("user_profile_updated", slog.String("uid", principal.UID))

	return user, nil
}

/*
RoleByEmail looks up the role of the account registered under email.
Only the account itself or an administrator may ask.
*/
func (service *Service) RoleByEmail(context context.Context, principal *sec.Principal, email string) (sec.UserRole, error) {
	if err := (&validate.Validator{}).Email("email", email).Err(); err != nil {
		return "", err
	}

	if err := sec.Authorize(principal, "Forbidden access", sec.Self{Email: email}, sec.Admin{}); err != nil {
		return "", err
	}

	user, err := service.repository.FindByEmail(context, email)
	if err != nil {
		return "", fmt.Errorf("account_service_role_lookup_failed: %w", err)
	}

	return user.Role, nil
}

// Dashboard returns the caller's totals and most recent lessons.
func (service *Service) Dashboard(context context.Context, principal *sec.Principal) (*Dashboard, error) {
	dashboard, err := service.repository.Dashboard(context, principal.UID, DashboardRecentLimit)
	if err != nil {
		return nil, fmt.Errorf("account_service_dashboard_failed: %w", err)
	}
	return dashboard, nil
}

// # Administration

// ListUsers returns a page of accounts for the admin console.
func (service *Service) ListUsers(context context.Context, limit, offset int) ([]*User, int, error) {
	users, total, err := service.repository.List(context, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("account_service_list_failed: %w", err)
	}
	return users, total, nil
}

/*
UpdateRole changes the role of an account.

Parameters:
  - context: context.Context
  - actor: *sec.Principal (the acting admin, for the audit log)
  - userID: string (row id)
  - role: string

Returns:
  - *User: The updated account
  - error: apperr.ValidationError for unknown roles, apperr.NotFound
*/
func (service *Service) UpdateRole(context context.Context, actor *sec.Principal, userID string, role string) (*User, error) {
	if !sec.UserRole(role).Valid() {
		return nil, apperr.ValidationError("Invalid role value", apperr.FieldError{
			Field:   "role",
			Message: "Must be one of: user, admin",
		})
	}

	user, err := service.repository.UpdateRole(context, userID, sec.UserRole(role))
	if err != nil {
		return nil, fmt.Errorf("account_service_update_role_failed: %w", err)
	}

	service.logger.Warn("user_role_changed",
		slog.String("user_id", userID),
		slog.String("role", role),
		slog.String("actor_uid", actor.UID),
	)

	return user, nil
}

// SetPremium upgrades the account after a confirmed payment.
func (service *Service) SetPremium(context context.Context, uid string) error {
	if strings.TrimSpace(uid) == "" {
		return apperr.ValidationError("Missing uid")
	}

	if err := service.repository.SetPremium(context, uid); err != nil {
		return fmt.Errorf("account_service_set_premium_failed: %w", err)
	}

	service.logger.Info("user_premium_activated", slog.String("uid", uid))

	return nil
}
