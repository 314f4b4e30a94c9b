package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	govalidator "github.com/go-playground/validator/v10"

	"watchlist/proj/internal/domain/models"
	"watchlist/proj/internal/lib/validator"
)

type MailProvider interface {
	Send(recipient string, tmplName string, tmplData any) error
}

type TaskExecutor interface {
	Add(task func())
}

// LoginResult carries the session token, which is shown to the client exactly once.
type LoginResult struct {
	User    *models.User    `json:"user"`
	Session *models.Session `json:"session"`
	Token   string          `json:"token"`
}

// IdentityProvider owns credentials and sessions. Resolve reports an unknown,
// revoked or expired token as ErrSessionNotFound.
type IdentityProvider interface {
	Resolve(ctx context.Context, token string) (*Principal, error)
	Signup(ctx context.Context, name, email, password string) (*models.User, error)
	Login(ctx context.Context, email, password string, client models.ClientInfo) (*LoginResult, error)
	Logout(ctx context.Context, token string) error
}

type AuthService struct {
	log          *slog.Logger
	provider     IdentityProvider
	mailer       MailProvider
	taskExecutor TaskExecutor
	validator    *govalidator.Validate
}

// New builds the service. mailer may be nil, then no welcome mails are sent.
func New(
	log *slog.Logger,
	provider IdentityProvider,
	mailer MailProvider,
	taskExecutor TaskExecutor,
) *AuthService {
	return &AuthService{
		log:          log,
		provider:     provider,
		mailer:       mailer,
		taskExecutor: taskExecutor,
		validator:    validator.New(),
	}
}

// Authenticate resolves a transport token. A missing, unknown or expired
// token yields a nil principal rather than an error.
func (a *AuthService) Authenticate(ctx context.Context, token string) (*Principal, error) {
	const op = "auth.AuthService.Authenticate"
	if token == "" {
		return nil, nil
	}
	principal, err := a.provider.Resolve(ctx, token)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			a.log.Debug("session token rejected", "op", op)
			return nil, nil
		}
		a.log.Error("Error resolving session", "op", op, "errMsg", err.Error())
		return nil, err
	}
	return principal, nil
}

func (a *AuthService) sendWelcomeEmail(user *models.User) {
	a.log.Info("sending welcome email", "user_id", user.ID)
	err := a.mailer.Send(
		user.Email,
		"user_welcome.html",
		map[string]any{
			"name":  user.Name,
			"email": user.Email,
		})
	if err != nil {
		a.log.Error("Error sending welcome email", "errMsg", err.Error())
	}
}

func (a *AuthService) Signup(ctx context.Context, in SignupInput) (*models.User, error) {
	const op = "auth.AuthService.Signup"
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Name = strings.TrimSpace(in.Name)
	log := a.log.With("op", op, "email", in.Email)
	if err := validator.ValidateStruct(a.validator, in); err != nil {
		return nil, err
	}
	user, err := a.provider.Signup(ctx, in.Name, in.Email, in.Password)
	if err != nil {
		if errors.Is(err, ErrUserAlreadyExists) {
			log.Info("user already exists")
			return nil, err
		}
		log.Error("Error signing up", "errMsg", err.Error())
		return nil, err
	}
	if a.mailer != nil {
		a.taskExecutor.Add(func() { a.sendWelcomeEmail(user) })
	}
	return user, nil
}

func (a *AuthService) Login(ctx context.Context, in LoginInput, client models.ClientInfo) (*LoginResult, error) {
	const op = "auth.AuthService.Login"
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	log := a.log.With("op", op, "email", in.Email)
	if err := validator.ValidateStruct(a.validator, in); err != nil {
		return nil, err
	}
	res, err := a.provider.Login(ctx, in.Email, in.Password, client)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			log.Info("invalid credentials")
			return nil, err
		}
		log.Error("Error logging in", "errMsg", err.Error())
		return nil, err
	}
	return res, nil
}

// Logout revokes the session behind token. Unknown tokens are ignored.
func (a *AuthService) Logout(ctx context.Context, token string) error {
	const op = "auth.AuthService.Logout"
	if token == "" {
		return nil
	}
	if err := a.provider.Logout(ctx, token); err != nil && !errors.Is(err, ErrSessionNotFound) {
		a.log.Error("Error logging out", "op", op, "errMsg", err.Error())
		return err
	}
	return nil
}
