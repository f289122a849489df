package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"forum/api/internal/auth"
	"forum/api/internal/authz"
	"forum/api/internal/session"
	"forum/api/internal/store"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type RegisterUserInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
}

type LoginInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type UpdateUserInput struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Email    string    `json:"email"`
}

type DeleteUserInput struct {
	ID uuid.UUID `json:"id"`
}

// Register creates a new account with the User role. Registration does not
// broadcast; accounts are not forum content.
func (s *Service) Register(ctx context.Context, input *RegisterUserInput) (map[string]any, error) {
	if input == nil {
		return nil, invalidArgument("Register user request can not be null.")
	}
	if strings.TrimSpace(input.Username) == "" {
		return nil, invalidArgument("Username is required.")
	}
	if input.Password == "" {
		return nil, invalidArgument("Password is required.")
	}
	if strings.TrimSpace(input.Email) == "" {
		return nil, invalidArgument("Email is required")
	}

	existing, err := s.store.GetUserByUsername(ctx, input.Username)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err == nil && existing.ID != uuid.Nil {
		return nil, conflict(fmt.Sprintf("User with username %s already exists.", input.Username))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := store.User{
		ID:           uuid.New(),
		Username:     input.Username,
		PasswordHash: string(hash),
		Email:        input.Email,
		Role:         string(authz.RoleUser),
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.store.AddUser(ctx, user); err != nil {
		return nil, err
	}

	return userPayload(user), nil
}

// Login verifies credentials and issues a session. Unknown usernames and
// wrong passwords both yield a nil session with no error; the caller turns
// that into a 401 without leaking which part failed.
func (s *Service) Login(ctx context.Context, input *LoginInput) (*Session, error) {
	if input == nil {
		return nil, invalidArgument("Login user request can not be null.")
	}

	user, err := s.store.GetUserByUsername(ctx, input.Username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)) != nil {
		return nil, nil
	}

	issued, err := s.issueSession(ctx, user)
	if err != nil {
		return nil, err
	}
	return &issued, nil
}

func (s *Service) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	if s.sessions == nil {
		return nil, nil
	}
	tokenHash := auth.HashToken(refreshToken)
	data, err := s.sessions.LookupRefreshSession(ctx, tokenHash)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if err := s.sessions.RevokeRefreshSession(ctx, tokenHash); err != nil {
		return nil, err
	}

	user, err := s.store.GetUserByID(ctx, data.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	issued, err := s.issueSession(ctx, user)
	if err != nil {
		return nil, err
	}
	return &issued, nil
}

func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	if s.sessions == nil || refreshToken == "" {
		return nil
	}
	return s.sessions.RevokeRefreshSession(ctx, auth.HashToken(refreshToken))
}

func (s *Service) issueSession(ctx context.Context, user store.User) (Session, error) {
	if s.cfg.JWTSecret == "" {
		return Session{}, notFound("Jwt key not found.")
	}

	now := time.Now()
	expiresAt := now.Add(s.cfg.AccessTTL)
	jti := uuid.NewString()

	token, err := auth.IssueToken([]byte(s.cfg.JWTSecret), auth.Claims{
		Sub:  user.ID.String(),
		Name: user.Username,
		Role: user.Role,
		JTI:  jti,
		Exp:  expiresAt.Unix(),
	})
	if err != nil {
		return Session{}, err
	}

	issued := Session{
		Token:     token,
		UserID:    user.ID,
		Username:  user.Username,
		Role:      user.Role,
		JTI:       jti,
		ExpiresAt: expiresAt,
	}

	if s.sessions != nil {
		refresh := uuid.NewString() + uuid.NewString()
		refreshExpires := now.Add(s.cfg.RefreshTTL)
		err := s.sessions.SaveRefreshSession(ctx, auth.HashToken(refresh), session.TokenData{
			UserID:   user.ID,
			Username: user.Username,
			Role:     user.Role,
		}, refreshExpires)
		if err != nil {
			return Session{}, err
		}
		issued.RefreshToken = refresh
	}

	return issued, nil
}

// ActorFromToken verifies a bearer token and derives the caller's identity.
func (s *Service) ActorFromToken(token string) (authz.Actor, error) {
	claims, err := auth.ParseToken([]byte(s.cfg.JWTSecret), token)
	if err != nil {
		return authz.Actor{}, err
	}
	userID, err := uuid.Parse(claims.Sub)
	if err != nil {
		return authz.Actor{}, auth.ErrInvalidToken
	}
	return authz.Actor{
		UserID: userID,
		Role:   authz.Role(claims.Role),
		Known:  true,
	}, nil
}

func (s *Service) GetUser(ctx context.Context, userID uuid.UUID) (map[string]any, error) {
	if userID == uuid.Nil {
		return nil, invalidArgument("User id can not be empty.")
	}
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound(fmt.Sprintf("User with id %s not found.", userID))
		}
		return nil, err
	}
	return userPayload(user), nil
}

func (s *Service) ListUsers(ctx context.Context) ([]map[string]any, error) {
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	payloads := make([]map[string]any, 0, len(users))
	for _, user := range users {
		payloads = append(payloads, userPayload(user))
	}
	return payloads, nil
}

func (s *Service) UpdateUser(ctx context.Context, actor authz.Actor, input *UpdateUserInput) (map[string]any, error) {
	if input == nil {
		return nil, invalidArgument("Update user request can not be null.")
	}
	if strings.TrimSpace(input.Username) == "" {
		return nil, invalidArgument("Username is required.")
	}
	if strings.TrimSpace(input.Email) == "" {
		return nil, invalidArgument("Email is required")
	}

	user, err := s.store.GetUserByID(ctx, input.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound(fmt.Sprintf("User with id %s not found.", input.ID))
		}
		return nil, err
	}
	if err := s.authz.EnsureCanManageUserAccount(actor, user.ID); err != nil {
		return nil, err
	}

	user.Username = input.Username
	user.Email = input.Email
	if err := s.store.UpdateUser(ctx, user); err != nil {
		return nil, err
	}

	return userPayload(user), nil
}

func (s *Service) DeleteUser(ctx context.Context, actor authz.Actor, input *DeleteUserInput) error {
	if input == nil {
		return invalidArgument("Delete user request can not be null.")
	}

	user, err := s.store.GetUserByID(ctx, input.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return notFound(fmt.Sprintf("User with id %s not found.", input.ID))
		}
		return err
	}
	if err := s.authz.EnsureCanManageUserAccount(actor, user.ID); err != nil {
		return err
	}

	return s.store.DeleteUser(ctx, user.ID)
}
