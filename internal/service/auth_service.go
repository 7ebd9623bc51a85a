package service

import (
	"context"
	"time"

	"rps_api/internal/domain"
	"rps_api/internal/logger"

	"golang.org/x/crypto/bcrypt"
)

const refreshTokenTTL = 30 * 24 * time.Hour

// AuthResult is a successful login/registration/refresh.
type AuthResult struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	User         *domain.User `json:"user"`
}

// AuthService owns user accounts and sessions. The engine itself never sees
// credentials, only the resolved actor id.
type AuthService struct {
	users    UserRepo
	tokens   RefreshTokenRepo
	matchSvc *MatchService
	gestures *GestureService
}

func NewAuthService(users UserRepo, tokens RefreshTokenRepo, matchSvc *MatchService, gestures *GestureService) *AuthService {
	return &AuthService{users: users, tokens: tokens, matchSvc: matchSvc, gestures: gestures}
}

func (a *AuthService) Register(ctx context.Context, username, email, password string, deviceID int64) (*AuthResult, error) {
	if existing, err := a.users.GetByUsernameOrEmail(ctx, username); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, domain.E(domain.KindBadInput, "username already taken")
	}
	if existing, err := a.users.GetByUsernameOrEmail(ctx, email); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, domain.E(domain.KindBadInput, "email already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, domain.Wrap(domain.KindStorage, "failed to hash password", err)
	}

	u := &domain.User{Username: username, Email: email, PasswordHash: string(hash)}
	if err := a.users.Create(ctx, u); err != nil {
		return nil, err
	}
	logger.Info("user registered", "user_id", u.ID, "username", u.Username)
	return a.issueTokens(ctx, u, deviceID)
}

func (a *AuthService) Login(ctx context.Context, usernameOrEmail, password string, deviceID int64) (*AuthResult, error) {
	u, err := a.users.GetByUsernameOrEmail(ctx, usernameOrEmail)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, domain.E(domain.KindNotFound, "user not found")
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, domain.E(domain.KindUnauthorized, "invalid password")
	}
	return a.issueTokens(ctx, u, deviceID)
}

// Refresh rotates the refresh token: the presented token is consumed and a
// new pair is issued.
func (a *AuthService) Refresh(ctx context.Context, refreshTokenID string, deviceID int64) (*AuthResult, error) {
	t, err := a.tokens.Get(ctx, refreshTokenID)
	if err != nil {
		return nil, err
	}
	if t == nil || t.Revoked || time.Now().After(t.ExpiresAt) || t.DeviceID != deviceID {
		return nil, domain.E(domain.KindUnauthorized, "invalid refresh token")
	}

	u, err := a.users.GetByID(ctx, t.UserID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, domain.E(domain.KindNotFound, "user not found")
	}
	return a.issueTokens(ctx, u, deviceID)
}

// Logout revokes the device session, or every session when deviceID is nil.
func (a *AuthService) Logout(ctx context.Context, userID int64, deviceID *int64) error {
	if deviceID == nil {
		return a.tokens.RevokeAll(ctx, userID)
	}
	return a.tokens.Revoke(ctx, userID, *deviceID)
}

// UpdateProfile changes the user's username and/or email. Empty fields are
// left untouched; uniqueness is enforced by the repository.
func (a *AuthService) UpdateProfile(ctx context.Context, userID int64, username, email string) (*domain.User, error) {
	if username == "" && email == "" {
		return nil, domain.E(domain.KindBadInput, "nothing to update")
	}

	u, err := a.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, domain.E(domain.KindNotFound, "user not found")
	}

	if username != "" {
		u.Username = username
	}
	if email != "" {
		u.Email = email
	}
	if err := a.users.Update(ctx, u); err != nil {
		return nil, err
	}
	logger.Info("profile updated", "user_id", u.ID)
	return u, nil
}

// DeleteAccount removes the user and everything hanging off the account:
// active matches are force-cancelled, moves and stored images deleted,
// sessions revoked. Cleanup failures surface as partial failures rather than
// blocking the deletion silently.
func (a *AuthService) DeleteAccount(ctx context.Context, userID int64) error {
	if err := a.matchSvc.CancelAllForPlayer(ctx, userID); err != nil {
		return err
	}
	if err := a.gestures.DeleteAllForPlayer(ctx, userID); err != nil {
		return err
	}
	if err := a.tokens.RevokeAll(ctx, userID); err != nil {
		return err
	}
	if err := a.users.Delete(ctx, userID); err != nil {
		return err
	}
	logger.Info("account deleted", "user_id", userID)
	return nil
}

func (a *AuthService) issueTokens(ctx context.Context, u *domain.User, deviceID int64) (*AuthResult, error) {
	access, err := GenerateJWT(u.ID)
	if err != nil {
		return nil, domain.Wrap(domain.KindStorage, "failed to sign access token", err)
	}
	refresh, err := a.tokens.Create(ctx, u.ID, deviceID, refreshTokenTTL)
	if err != nil {
		return nil, err
	}
	return &AuthResult{AccessToken: access, RefreshToken: refresh.ID, User: u}, nil
}
