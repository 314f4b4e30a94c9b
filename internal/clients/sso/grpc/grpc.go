package grpc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	ssov1 "github.com/AlexeySHA256/protos/gen/go/sso"
	grpclogging "github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/logging"
	grpcretry "github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/retry"
	"github.com/sony/gobreaker/v2"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"

	"watchlist/proj/internal/domain/models"
	"watchlist/proj/internal/services/auth"
)

// Client is an auth.IdentityProvider backed by the SSO service. Session tokens
// are the JWT access tokens the SSO service issues.
type Client struct {
	api       ssov1.AuthClient
	log       *slog.Logger
	appId     int32
	appSecret []byte
	cb        *gobreaker.CircuitBreaker[any]
}

var _ auth.IdentityProvider = (*Client)(nil)

/*
	New creates a new Client instance.

It takes a logger, the application id and secret registered in SSO, an address of the gRPC server,
a timeout for retry call, and a retries count as parameters.
Returns a Client instance and an error.
*/
func New(
	log *slog.Logger,
	appId int32,
	appSecret string,
	addr string,
	timeout time.Duration,
	retriesCount int,
) (*Client, error) {
	retryOpts := []grpcretry.CallOption{
		grpcretry.WithPerRetryTimeout(timeout),
		grpcretry.WithMax(uint(retriesCount)),
		grpcretry.WithCodes(codes.Aborted, codes.DeadlineExceeded),
	}
	logOpts := []grpclogging.Option{
		grpclogging.WithLogOnEvents(grpclogging.StartCall, grpclogging.FinishCall),
	}
	cc, err := grpc.NewClient(
		addr,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithChainUnaryInterceptor(
			grpcretry.UnaryClientInterceptor(retryOpts...),
			grpclogging.UnaryClientInterceptor(InterceptorLogger(log), logOpts...),
		),
	)
	if err != nil {
		return nil, err
	}
	return newClient(log, ssov1.NewAuthClient(cc), appId, appSecret), nil
}

func newClient(log *slog.Logger, api ssov1.AuthClient, appId int32, appSecret string) *Client {
	return &Client{
		api:       api,
		log:       log,
		appId:     appId,
		appSecret: []byte(appSecret),
		cb:        newBreaker(log),
	}
}

// newBreaker opens after 5 consecutive transport failures. Business errors
// (bad credentials, unknown user) do not count.
func newBreaker(log *slog.Logger) *gobreaker.CircuitBreaker[any] {
	return gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        "sso",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     15 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			switch status.Code(err) {
			case codes.Unavailable, codes.DeadlineExceeded, codes.Internal, codes.Unknown, codes.ResourceExhausted:
				return false
			}
			return true
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
		},
	})
}

func call[T any](c *Client, fn func() (T, error)) (T, error) {
	res, err := c.cb.Execute(func() (any, error) { return fn() })
	if err != nil {
		var zero T
		return zero, err
	}
	return res.(T), nil
}

func (c *Client) Login(ctx context.Context, email, password string, _ models.ClientInfo) (*auth.LoginResult, error) {
	const op = "grpc.Client.Login"
	log := c.log.With("op", op)
	token, err := call(c, func() (string, error) {
		resp, err := c.api.Login(ctx, &ssov1.LoginRequest{Email: email, Password: password, AppId: c.appId})
		return resp.GetAccessToken(), err
	})
	if err != nil {
		switch status.Code(err) {
		case codes.InvalidArgument, codes.NotFound, codes.Unauthenticated:
			return nil, auth.ErrInvalidCredentials
		}
		log.Error("Error", "errMsg", err.Error())
		return nil, err
	}
	principal, err := c.Resolve(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &auth.LoginResult{User: principal.User, Session: principal.Session, Token: token}, nil
}

func (c *Client) Signup(ctx context.Context, name, email, password string) (*models.User, error) {
	const op = "grpc.Client.Signup"
	log := c.log.With("op", op)
	userID, err := call(c, func() (int64, error) {
		resp, err := c.api.Register(
			ctx,
			&ssov1.RegisterRequest{Email: email, Password: password, Username: name},
		)
		return resp.GetUserId(), err
	})
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return nil, auth.ErrUserAlreadyExists
		}
		log.Error("Error", "errMsg", err.Error())
		return nil, err
	}
	return c.getUser(ctx, userID)
}

// Resolve verifies the access token locally and loads its owner from SSO.
func (c *Client) Resolve(ctx context.Context, token string) (*auth.Principal, error) {
	claims, err := parseAccessToken(token, c.appSecret)
	if err != nil {
		c.log.Debug("access token rejected", "op", "grpc.Client.Resolve", "errMsg", err.Error())
		return nil, auth.ErrSessionNotFound
	}
	user, err := c.getUser(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			return nil, auth.ErrSessionNotFound
		}
		return nil, err
	}
	return &auth.Principal{
		User: user,
		Session: &models.Session{
			ID:        claims.SessionID(),
			UserID:    user.ID,
			ExpiresAt: claims.ExpiresAt,
			CreatedAt: claims.IssuedAt,
			UpdatedAt: claims.IssuedAt,
		},
	}, nil
}

// Logout is a no-op: access tokens are stateless and expire on their own.
func (c *Client) Logout(context.Context, string) error {
	return nil
}

type ssoUser struct {
	id                   int64
	email, username      string
	createdAt, updatedAt string
}

func (c *Client) getUser(ctx context.Context, userID int64) (*models.User, error) {
	const op = "grpc.Client.GetUser"
	log := c.log.With("op", op)
	u, err := call(c, func() (ssoUser, error) {
		resp, err := c.api.GetUser(ctx, &ssov1.GetUserRequest{Id: userID, IsActive: true})
		user := resp.GetUser()
		return ssoUser{
			id:        user.GetId(),
			email:     user.GetEmail(),
			username:  user.GetUsername(),
			createdAt: user.GetCreatedAt(),
			updatedAt: user.GetUpdatedAt(),
		}, err
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, auth.ErrUserNotFound
		}
		log.Error("Error", "errMsg", err.Error())
		return nil, err
	}
	return toUser(u), nil
}

const timeParseLayout = "2006-01-02 15:04:05.999999 -0700 MST"

func toUser(u ssoUser) *models.User {
	// SSO timestamps are informational; a format change must not break authentication
	createdAt, _ := time.Parse(timeParseLayout, u.createdAt)
	updatedAt, _ := time.Parse(timeParseLayout, u.updatedAt)
	return &models.User{
		ID:        strconv.FormatInt(u.id, 10),
		Name:      u.username,
		Email:     u.email,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}
}

// Adapter for grpclogging.Logger used to adapt it to slog.Logger
func InterceptorLogger(log *slog.Logger) grpclogging.Logger {
	return grpclogging.LoggerFunc(
		func(ctx context.Context, level grpclogging.Level, msg string, fields ...any) {
			log.Log(ctx, slog.Level(level), msg, fields...)
		},
	)
}
