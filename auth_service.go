package kamiwaza

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"
)

// User is a platform account.
type User struct {
	ID          uuid.UUID `json:"id"`
	Username    string    `json:"username"`
	Email       string    `json:"email,omitempty"`
	FullName    string    `json:"full_name,omitempty"`
	IsSuperuser bool      `json:"is_superuser,omitempty"`
	IsActive    bool      `json:"is_active,omitempty"`
	CreatedAt   time.Time `json:"created_at,omitzero"`
}

// UserCreate is the payload for creating a local user.
type UserCreate struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email,omitempty"`
	FullName string `json:"full_name,omitempty"`
}

// UserUpdate is the payload for updating a user. Nil fields are left
// unchanged.
type UserUpdate struct {
	Email    *string `json:"email,omitempty"`
	FullName *string `json:"full_name,omitempty"`
	IsActive *bool   `json:"is_active,omitempty"`
}

// AuthService wraps the platform's authentication and user management
// endpoints. Its token endpoints skip the credential step, since they are
// what produces credentials in the first place.
type AuthService struct {
	client *Client
}

// Compile-time check to ensure AuthService implements AuthAPI
var _ AuthAPI = (*AuthService)(nil)

// LoginWithPassword exchanges a username and password for a session token.
func (s *AuthService) LoginWithPassword(ctx context.Context, username, password string) (*TokenResponse, error) {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	var token TokenResponse
	err := s.client.Post(ctx, "auth/token", &token, WithFormBody(form), WithSkipAuth())
	if err != nil {
		return nil, err
	}
	return &token, nil
}

// RefreshAccessToken exchanges a refresh token for a new session token.
func (s *AuthService) RefreshAccessToken(ctx context.Context, refreshToken string) (*TokenResponse, error) {
	payload := map[string]string{"refresh_token": refreshToken}

	var token TokenResponse
	err := s.client.Post(ctx, "auth/token/refresh", &token, WithJSONBody(payload), WithSkipAuth())
	if err != nil {
		return nil, err
	}
	return &token, nil
}

// VerifyToken asks the server to validate the current credential.
func (s *AuthService) VerifyToken(ctx context.Context) (map[string]any, error) {
	var result map[string]any
	if err := s.client.Get(ctx, "auth/verify-token", &result); err != nil {
		return nil, err
	}
	return result, nil
}

// CurrentUser returns the account behind the current credential.
func (s *AuthService) CurrentUser(ctx context.Context) (*User, error) {
	var user User
	if err := s.client.Get(ctx, "auth/users/me/", &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ListUsers returns all user accounts.
func (s *AuthService) ListUsers(ctx context.Context) ([]User, error) {
	var users []User
	if err := s.client.Get(ctx, "auth/users/", &users); err != nil {
		return nil, err
	}
	return users, nil
}

// CreateLocalUser creates a local (non-federated) user account.
func (s *AuthService) CreateLocalUser(ctx context.Context, create UserCreate) (*User, error) {
	var user User
	if err := s.client.Post(ctx, "auth/users/local", &user, WithJSONBody(create)); err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUser returns a single user account.
func (s *AuthService) GetUser(ctx context.Context, id uuid.UUID) (*User, error) {
	var user User
	if err := s.client.Get(ctx, fmt.Sprintf("auth/users/%s", id), &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateUser applies a partial update to a user account.
func (s *AuthService) UpdateUser(ctx context.Context, id uuid.UUID, update UserUpdate) (*User, error) {
	var user User
	if err := s.client.Put(ctx, fmt.Sprintf("auth/users/%s", id), &user, WithJSONBody(update)); err != nil {
		return nil, err
	}
	return &user, nil
}

// DeleteUser removes a user account.
func (s *AuthService) DeleteUser(ctx context.Context, id uuid.UUID) error {
	return s.client.Delete(ctx, fmt.Sprintf("auth/users/%s", id), nil)
}
