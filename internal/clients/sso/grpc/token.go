package grpc

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var errMalformedClaims = errors.New("malformed token claims")

type accessClaims struct {
	UserID    int64
	ID        string
	ExpiresAt time.Time
	IssuedAt  time.Time
}

// SessionID names the synthetic session behind an access token.
func (c accessClaims) SessionID() string {
	if c.ID != "" {
		return "sso-" + c.ID
	}
	return "sso-" + strconv.FormatInt(c.UserID, 10) + "-" + strconv.FormatInt(c.IssuedAt.Unix(), 10)
}

func parseAccessToken(token string, secret []byte) (*accessClaims, error) {
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(
		token,
		claims,
		func(*jwt.Token) (any, error) { return secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, err
	}
	uid, ok := claims["uid"].(float64)
	if !ok || uid <= 0 {
		return nil, fmt.Errorf("%w: uid", errMalformedClaims)
	}
	exp, err := claims.GetExpirationTime()
	if err != nil {
		return nil, err
	}
	parsed := &accessClaims{UserID: int64(uid), ExpiresAt: exp.Time}
	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		parsed.IssuedAt = iat.Time
	}
	if jti, ok := claims["jti"].(string); ok {
		parsed.ID = jti
	}
	return parsed, nil
}
