package services

import (
	"fmt"
	"log/slog"

	"watchlist/proj/internal/clients/sso/grpc"
	"watchlist/proj/internal/config"
	"watchlist/proj/internal/mails"
	"watchlist/proj/internal/services/auth"
	"watchlist/proj/internal/services/movies"
)

// Storage is implemented by both the postgres models and the sqlite store.
type Storage interface {
	movies.MoviesStorage
	auth.UsersStorage
	auth.SessionsStorage
}

type Services struct {
	Auth   *auth.AuthService
	Movies *movies.MovieService
}

func New(
	log *slog.Logger,
	cfg *config.Config,
	storage Storage,
	taskExecutor auth.TaskExecutor,
	observer movies.OperationObserver,
) (*Services, error) {
	var mailer auth.MailProvider
	if cfg.SMTP.Enabled {
		mailer = mails.New(
			cfg.SMTP.Host,
			cfg.SMTP.Port,
			cfg.SMTP.Timeout,
			cfg.SMTP.Username,
			cfg.SMTP.Password,
			cfg.SMTP.Sender,
			cfg.SMTP.RetriesCount,
		)
	}
	var provider auth.IdentityProvider
	switch cfg.Auth.Provider {
	case config.AuthProviderSSO:
		sso, err := grpc.New(
			log,
			cfg.AppID,
			cfg.AppSecret,
			cfg.Clients.SSO.Addr,
			cfg.Clients.SSO.RetryTimeout,
			cfg.Clients.SSO.RetriesCount,
		)
		if err != nil {
			return nil, fmt.Errorf("create sso client: %w", err)
		}
		provider = sso
	default:
		provider = auth.NewLocalProvider(log, storage, storage, taskExecutor, auth.LocalProviderConfig{
			SessionTTL:       cfg.Auth.SessionTTL,
			SessionUpdateAge: cfg.Auth.SessionUpdateAge,
			BcryptCost:       cfg.Auth.BcryptCost,
		})
	}
	return &Services{
		Auth:   auth.New(log, provider, mailer, taskExecutor),
		Movies: movies.New(log, storage, observer),
	}, nil
}
