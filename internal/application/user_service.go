package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/example/course-planner/internal/persistence"
)

// UserStore captures the user persistence operations needed by the service.
type UserStore interface {
	CreateUser(ctx context.Context, user persistence.User) error
	UpdateUser(ctx context.Context, user persistence.User) error
	GetUser(ctx context.Context, id string) (persistence.User, error)
	GetUserByEmail(ctx context.Context, email string) (persistence.User, error)
	ListUsers(ctx context.Context) ([]persistence.User, error)
	DeleteUser(ctx context.Context, id string) error
}

// PasswordHasher derives a storable hash from a plaintext password.
type PasswordHasher func(password string) (string, error)

// UserService orchestrates validation, authorization, and persistence for
// administrator accounts.
type UserService struct {
	users        UserStore
	hashPassword PasswordHasher
	idGenerator  func() string
	logger       *slog.Logger
}

// NewUserService constructs a user service with the provided dependencies.
func NewUserService(users UserStore, hashPassword PasswordHasher, idGenerator func() string) *UserService {
	return NewUserServiceWithLogger(users, hashPassword, idGenerator, nil)
}

// NewUserServiceWithLogger constructs a user service with a specified logger.
func NewUserServiceWithLogger(users UserStore, hashPassword PasswordHasher, idGenerator func() string, logger *slog.Logger) *UserService {
	if hashPassword == nil {
		hashPassword = func(password string) (string, error) {
			return HashPassword(password, DefaultArgon2idParams)
		}
	}
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	return &UserService{
		users:        users,
		hashPassword: hashPassword,
		idGenerator:  idGenerator,
		logger:       defaultLogger(logger),
	}
}

func (s *UserService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "UserService", operation, attrs...)
}

func toUser(stored persistence.User) User {
	return User{
		ID:          stored.ID,
		Email:       stored.Email,
		DisplayName: stored.DisplayName,
		IsAdmin:     stored.IsAdmin,
		CreatedAt:   stored.CreatedAt,
		UpdatedAt:   stored.UpdatedAt,
	}
}

// CreateUser validates input and persists a new account for administrators.
func (s *UserService) CreateUser(ctx context.Context, params CreateUserParams) (user User, err error) {
	if s == nil {
		err = fmt.Errorf("UserService is nil")
		return
	}
	if s.users == nil {
		err = fmt.Errorf("user store not configured")
		return
	}

	logger := s.loggerWith(ctx, "CreateUser", "principal_id", params.Principal.UserID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create user", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("user_id", user.ID).InfoContext(ctx, "user created")
	}()

	if !params.Principal.IsAdmin {
		err = ErrUnauthorized
		return
	}

	vErr := validateUserInput(params.Input, true)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	var hash string
	hash, err = s.hashPassword(params.Input.Password)
	if err != nil {
		return
	}

	stored := persistence.User{
		ID:           s.idGenerator(),
		Email:        strings.TrimSpace(strings.ToLower(params.Input.Email)),
		DisplayName:  strings.TrimSpace(params.Input.DisplayName),
		PasswordHash: hash,
		IsAdmin:      params.Input.IsAdmin,
	}
	if err = s.users.CreateUser(ctx, stored); err != nil {
		err = mapRepoError(err)
		return
	}

	user = toUser(stored)
	return
}

// UpdateUser validates input and updates an existing account for
// administrators. An empty password keeps the stored hash.
func (s *UserService) UpdateUser(ctx context.Context, params UpdateUserParams) (user User, err error) {
	if s == nil {
		err = fmt.Errorf("UserService is nil")
		return
	}
	if s.users == nil {
		err = fmt.Errorf("user store not configured")
		return
	}

	logger := s.loggerWith(ctx, "UpdateUser",
		"principal_id", params.Principal.UserID,
		"user_id", params.UserID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update user", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("user_id", user.ID).InfoContext(ctx, "user updated")
	}()

	if !params.Principal.IsAdmin {
		err = ErrUnauthorized
		return
	}

	var existing persistence.User
	existing, err = s.users.GetUser(ctx, params.UserID)
	if err != nil {
		err = mapRepoError(err)
		return
	}

	vErr := validateUserInput(params.Input, false)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	updated := existing
	updated.Email = strings.TrimSpace(strings.ToLower(params.Input.Email))
	updated.DisplayName = strings.TrimSpace(params.Input.DisplayName)
	updated.IsAdmin = params.Input.IsAdmin
	if params.Input.Password != "" {
		updated.PasswordHash, err = s.hashPassword(params.Input.Password)
		if err != nil {
			return
		}
	}

	if err = s.users.UpdateUser(ctx, updated); err != nil {
		err = mapRepoError(err)
		return
	}

	user = toUser(updated)
	return
}

// GetUser returns one account for administrators.
func (s *UserService) GetUser(ctx context.Context, principal Principal, userID string) (User, error) {
	if s == nil {
		return User{}, fmt.Errorf("UserService is nil")
	}
	if s.users == nil {
		return User{}, fmt.Errorf("user store not configured")
	}
	if !principal.IsAdmin && principal.UserID != userID {
		return User{}, ErrUnauthorized
	}

	stored, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return User{}, mapRepoError(err)
	}
	return toUser(stored), nil
}

// ListUsers returns all accounts for administrators.
func (s *UserService) ListUsers(ctx context.Context, principal Principal) ([]User, error) {
	if s == nil {
		return nil, fmt.Errorf("UserService is nil")
	}
	if s.users == nil {
		return nil, fmt.Errorf("user store not configured")
	}
	if !principal.IsAdmin {
		return nil, ErrUnauthorized
	}

	stored, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, mapRepoError(err)
	}

	users := make([]User, 0, len(stored))
	for _, u := range stored {
		users = append(users, toUser(u))
	}
	return users, nil
}

// DeleteUser removes an account for administrators. Principals cannot delete
// themselves.
func (s *UserService) DeleteUser(ctx context.Context, principal Principal, userID string) error {
	if s == nil {
		return fmt.Errorf("UserService is nil")
	}
	if s.users == nil {
		return fmt.Errorf("user store not configured")
	}
	if !principal.IsAdmin {
		return ErrUnauthorized
	}
	if principal.UserID == userID {
		vErr := &ValidationError{}
		vErr.add("user_id", "cannot delete the acting user")
		return vErr
	}

	logger := s.loggerWith(ctx, "DeleteUser",
		"principal_id", principal.UserID,
		"user_id", userID,
	)

	if err := s.users.DeleteUser(ctx, userID); err != nil {
		err = mapRepoError(err)
		logger.ErrorContext(ctx, "failed to delete user", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	logger.InfoContext(ctx, "user deleted")
	return nil
}

func validateUserInput(input UserInput, passwordRequired bool) *ValidationError {
	vErr := &ValidationError{}

	email := strings.TrimSpace(input.Email)
	if email == "" {
		vErr.add("email", "email is required")
	} else if !strings.Contains(email, "@") {
		vErr.add("email", "email is invalid")
	}
	if strings.TrimSpace(input.DisplayName) == "" {
		vErr.add("display_name", "display_name is required")
	}
	if passwordRequired && input.Password == "" {
		vErr.add("password", "password is required")
	}
	if input.Password != "" && len(input.Password) < 8 {
		vErr.add("password", "password must be at least 8 characters")
	}

	return vErr
}
