package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"unicode/utf8"

	"github.com/sakif/bloglist/internal/apperror"
	"github.com/sakif/bloglist/internal/auth"
	"github.com/sakif/bloglist/internal/model"
	"github.com/sakif/bloglist/internal/repository"
)

// Minimum lengths, in characters, accepted at registration.
const (
	MinUsernameLength = 3
	MinPasswordLength = 3
)

// UserService handles registration, login and identity resolution.
//
// DEPENDENCIES (injected via NewUserService):
//   - users      repository.UserRepository  → read/write user records
//   - blogs      repository.BlogRepository  → blog projection in List
//   - tokens     *auth.TokenService         → issue tokens on login
//   - passwords  *auth.PasswordService      → bcrypt hashing
//   - logger     *slog.Logger               → structured logging
type UserService struct {
	users     repository.UserRepository
	blogs     repository.BlogRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	logger    *slog.Logger
}

// NewUserService creates a UserService with all required dependencies.
func NewUserService(
	users repository.UserRepository,
	blogs repository.BlogRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *UserService {
	return &UserService{
		users:     users,
		blogs:     blogs,
		tokens:    tokens,
		passwords: passwords,
		logger:    logger,
	}
}

// RegisterInput is the client-supplied data for a new account.
// Password is nil when the client sent no password or a non-string one.
type RegisterInput struct {
	Username string
	Password *string
	Name     string
}

// LoginResult is returned by Login.
type LoginResult struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	Name     string `json:"name"`
}

// Register validates input and creates a user. Checks run in a fixed order
// and the first failure is returned:
//
//  1. password present and 3..72 bytes long
//  2. username at least 3 characters
//  3. username not taken
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	// === 1. PASSWORD ===
	if in.Password == nil ||
		utf8.RuneCountInString(*in.Password) < MinPasswordLength ||
		len(*in.Password) > auth.MaxPasswordBytes {
		return nil, apperror.ValidationFailed("password", "invalid password")
	}

	// === 2. USERNAME ===
	if in.Username == "" {
		return nil, apperror.ValidationFailed("username", "username is required")
	}
	if utf8.RuneCountInString(in.Username) < MinUsernameLength {
		return nil, apperror.ValidationFailed("username",
			fmt.Sprintf("username must be at least %d characters long", MinUsernameLength))
	}

	// === 3. UNIQUENESS ===
	// The UNIQUE constraint catches a concurrent registration that slips
	// between this lookup and the insert.
	if _, err := s.users.GetByUsername(ctx, in.Username); err == nil {
		return nil, apperror.Duplicate("username", in.Username)
	} else if !errors.Is(err, apperror.ErrNotFound) {
		return nil, fmt.Errorf("checking username %q: %w", in.Username, err)
	}

	hash, err := s.passwords.Hash(*in.Password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user := &model.User{
		Username:     in.Username,
		PasswordHash: hash,
		Name:         in.Name,
		BlogIDs:      []string{},
	}
	if err := s.users.Create(ctx, user); err != nil {
		if !errors.Is(err, apperror.ErrDuplicate) {
			s.logger.Error("failed to create user",
				slog.String("username", in.Username),
				slog.String("error", err.Error()),
			)
		}
		return nil, fmt.Errorf("creating user: %w", err)
	}

	s.logger.Info("user registered",
		slog.String("id", user.ID),
		slog.String("username", user.Username),
	)

	return user, nil
}

// List returns every user with their blogs projected in blogIds order.
// Ids that no longer resolve to a blog are skipped.
func (s *UserService) List(ctx context.Context) ([]model.UserWithBlogs, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	blogs, err := s.blogs.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing blogs for users: %w", err)
	}

	byID := make(map[string]model.Blog, len(blogs))
	for _, b := range blogs {
		byID[b.ID] = b
	}

	result := make([]model.UserWithBlogs, 0, len(users))
	for _, u := range users {
		projected := make([]model.BlogSummary, 0, len(u.BlogIDs))
		for _, id := range u.BlogIDs {
			b, ok := byID[id]
			if !ok {
				continue
			}
			projected = append(projected, model.BlogSummary{
				ID:     b.ID,
				Title:  b.Title,
				Author: b.Author,
				URL:    b.URL,
			})
		}
		result = append(result, model.UserWithBlogs{User: u, Blogs: projected})
	}

	return result, nil
}

// ResolveIdentity returns the stored user named by a verified token.
// A subject that names no user is an authentication failure, not a 404.
func (s *UserService) ResolveIdentity(ctx context.Context, id auth.Identity) (*model.User, error) {
	user, err := s.users.GetUserByID(ctx, id.SubjectID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) || errors.Is(err, apperror.ErrInvalidID) {
			return nil, apperror.Unauthenticated(auth.ErrUnknownUser, "invalid user")
		}
		return nil, fmt.Errorf("resolving token subject %s: %w", id.SubjectID, err)
	}
	return user, nil
}

// Login checks a username/password pair and issues a token.
// Unknown usernames and wrong passwords get the same error.
func (s *UserService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	if username == "" || password == "" {
		return nil, apperror.ValidationFailed("credentials", "username and password are required")
	}

	invalid := apperror.Unauthenticated(nil, "invalid username or password")

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, invalid
		}
		return nil, fmt.Errorf("looking up user %q: %w", username, err)
	}

	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			s.logger.Info("login failed", slog.String("username", username))
			return nil, invalid
		}
		return nil, fmt.Errorf("verifying password of %q: %w", username, err)
	}

	token, err := s.tokens.Generate(user.ID, user.Username)
	if err != nil {
		return nil, fmt.Errorf("generating token for user %s: %w", user.ID, err)
	}

	s.logger.Info("user logged in", slog.String("id", user.ID))

	return &LoginResult{Token: token, Username: user.Username, Name: user.Name}, nil
}
