package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"watchlist/proj/internal/domain/models"
	"watchlist/proj/internal/lib/id"
	"watchlist/proj/internal/storage"
)

type UsersStorage interface {
	InsertUser(ctx context.Context, user *models.User) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

type SessionsStorage interface {
	InsertSession(ctx context.Context, session *models.Session) (*models.Session, error)
	GetSessionByToken(ctx context.Context, tokenHash string) (*models.Session, error)
	ExtendSession(ctx context.Context, id string, expiresAt time.Time) error
	DeleteSessionByToken(ctx context.Context, tokenHash string) error
}

type LocalProviderConfig struct {
	SessionTTL       time.Duration
	SessionUpdateAge time.Duration
	BcryptCost       int
}

// LocalProvider keeps users and opaque session tokens in the application database.
// Only a SHA-256 digest of each token is stored.
type LocalProvider struct {
	log          *slog.Logger
	users        UsersStorage
	sessions     SessionsStorage
	taskExecutor TaskExecutor
	cfg          LocalProviderConfig
	now          func() time.Time
}

func NewLocalProvider(
	log *slog.Logger,
	users UsersStorage,
	sessions SessionsStorage,
	taskExecutor TaskExecutor,
	cfg LocalProviderConfig,
) *LocalProvider {
	return &LocalProvider{
		log:          log,
		users:        users,
		sessions:     sessions,
		taskExecutor: taskExecutor,
		cfg:          cfg,
		now:          time.Now,
	}
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func (p *LocalProvider) Signup(ctx context.Context, name, email, password string) (*models.User, error) {
	const op = "auth.LocalProvider.Signup"
	hash, err := bcrypt.GenerateFromPassword([]byte(password), p.cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	now := p.now().UTC()
	user, err := p.users.InsertUser(ctx, &models.User{
		ID:           id.NewUUID(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		if errors.Is(err, storage.ErrConflict) {
			return nil, ErrUserAlreadyExists
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return user, nil
}

func (p *LocalProvider) Login(ctx context.Context, email, password string, client models.ClientInfo) (*LoginResult, error) {
	const op = "auth.LocalProvider.Login"
	user, err := p.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	token, err := id.NewToken()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	sessionID, err := id.Generate("ses")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	now := p.now().UTC()
	session, err := p.sessions.InsertSession(ctx, &models.Session{
		ID:        sessionID,
		TokenHash: hashToken(token),
		UserID:    user.ID,
		ExpiresAt: now.Add(p.cfg.SessionTTL),
		IPAddress: client.IPAddress,
		UserAgent: client.UserAgent,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &LoginResult{User: user, Session: session, Token: token}, nil
}

// Resolve looks the session up by token digest. Sessions whose last refresh is
// older than SessionUpdateAge get their expiry pushed forward in the background.
func (p *LocalProvider) Resolve(ctx context.Context, token string) (*Principal, error) {
	const op = "auth.LocalProvider.Resolve"
	tokenHash := hashToken(token)
	session, err := p.sessions.GetSessionByToken(ctx, tokenHash)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	now := p.now()
	if !now.Before(session.ExpiresAt) {
		p.taskExecutor.Add(func() { p.deleteSession(tokenHash) })
		return nil, ErrSessionNotFound
	}
	user, err := p.users.GetUserByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if session.ExpiresAt.Sub(now) < p.cfg.SessionTTL-p.cfg.SessionUpdateAge {
		expiresAt := now.UTC().Add(p.cfg.SessionTTL)
		session.ExpiresAt = expiresAt
		sessionID := session.ID
		p.taskExecutor.Add(func() { p.extendSession(sessionID, expiresAt) })
	}
	return &Principal{User: user, Session: session}, nil
}

func (p *LocalProvider) Logout(ctx context.Context, token string) error {
	err := p.sessions.DeleteSessionByToken(ctx, hashToken(token))
	if errors.Is(err, storage.ErrNotFound) {
		return ErrSessionNotFound
	}
	return err
}

func (p *LocalProvider) extendSession(id string, expiresAt time.Time) {
	const op = "auth.LocalProvider.extendSession"
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := p.sessions.ExtendSession(ctx, id, expiresAt); err != nil && !errors.Is(err, storage.ErrNotFound) {
		p.log.Error("Error extending session", "op", op, "session_id", id, "errMsg", err.Error())
	}
}

func (p *LocalProvider) deleteSession(tokenHash string) {
	const op = "auth.LocalProvider.deleteSession"
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := p.sessions.DeleteSessionByToken(ctx, tokenHash); err != nil && !errors.Is(err, storage.ErrNotFound) {
		p.log.Error("Error deleting expired session", "op", op, "errMsg", err.Error())
	}
}
