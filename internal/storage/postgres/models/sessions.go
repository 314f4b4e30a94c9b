package models

import (
	"context"
	"errors"
	"time"

	"watchlist/proj/internal/domain/models"
	"watchlist/proj/internal/storage"
	"watchlist/proj/internal/storage/postgres"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const sessionColumns = "id, token_hash, user_id, expires_at, ip_address, user_agent, created_at, updated_at"

type SessionModel struct {
	DB *pgxpool.Pool
}

func mapErr(err error) error {
	var pgxErr *pgconn.PgError
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return storage.ErrNotFound
	case errors.As(err, &pgxErr) && pgxErr.Code == postgres.ErrConflictCode:
		return storage.ErrConflict
	}
	return err
}

func collectSession(rows pgx.Rows) (*models.Session, error) {
	session, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[models.Session])
	if err != nil {
		return nil, mapErr(err)
	}
	return &session, nil
}

func (m *SessionModel) InsertSession(ctx context.Context, session *models.Session) (*models.Session, error) {
	rows, _ := m.DB.Query(
		ctx,
		`INSERT INTO sessions (id, token_hash, user_id, expires_at, ip_address, user_agent, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING `+sessionColumns,
		session.ID,
		session.TokenHash,
		session.UserID,
		session.ExpiresAt,
		session.IPAddress,
		session.UserAgent,
		session.CreatedAt,
		session.UpdatedAt,
	)
	return collectSession(rows)
}

func (m *SessionModel) GetSessionByToken(ctx context.Context, tokenHash string) (*models.Session, error) {
	rows, _ := m.DB.Query(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE token_hash = $1`, tokenHash)
	return collectSession(rows)
}

func (m *SessionModel) ExtendSession(ctx context.Context, id string, expiresAt time.Time) error {
	status, err := m.DB.Exec(
		ctx,
		`UPDATE sessions SET expires_at = $2, updated_at = now() WHERE id = $1`,
		id,
		expiresAt,
	)
	if err != nil {
		return err
	}
	if status.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (m *SessionModel) DeleteSessionByToken(ctx context.Context, tokenHash string) error {
	status, err := m.DB.Exec(ctx, `DELETE FROM sessions WHERE token_hash = $1`, tokenHash)
	if err != nil {
		return err
	}
	if status.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}
