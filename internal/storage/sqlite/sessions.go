package sqlite

import (
	"context"
	"fmt"
	"time"

	"watchlist/proj/internal/domain/models"
	"watchlist/proj/internal/storage"
)

const sessionColumns = "id, token_hash, user_id, expires_at, ip_address, user_agent, created_at, updated_at"

func scanSession(row scanner) (*models.Session, error) {
	var (
		ses                             models.Session
		expiresAt, createdAt, updatedAt string
	)
	err := row.Scan(
		&ses.ID,
		&ses.TokenHash,
		&ses.UserID,
		&expiresAt,
		&ses.IPAddress,
		&ses.UserAgent,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}
	if ses.ExpiresAt, err = parseTime(expiresAt); err != nil {
		return nil, fmt.Errorf("parse expires_at: %w", err)
	}
	if ses.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if ses.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}
	return &ses, nil
}

func (s *Storage) InsertSession(ctx context.Context, session *models.Session) (*models.Session, error) {
	ses, err := scanSession(s.db.QueryRowContext(
		ctx,
		`INSERT INTO sessions (id, token_hash, user_id, expires_at, ip_address, user_agent, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?) RETURNING `+sessionColumns,
		session.ID,
		session.TokenHash,
		session.UserID,
		formatTime(session.ExpiresAt),
		session.IPAddress,
		session.UserAgent,
		formatTime(session.CreatedAt),
		formatTime(session.UpdatedAt),
	))
	if err != nil {
		return nil, mapErr(err)
	}
	return ses, nil
}

func (s *Storage) GetSessionByToken(ctx context.Context, tokenHash string) (*models.Session, error) {
	ses, err := scanSession(s.db.QueryRowContext(
		ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE token_hash = ?`,
		tokenHash,
	))
	if err != nil {
		return nil, mapErr(err)
	}
	return ses, nil
}

func (s *Storage) ExtendSession(ctx context.Context, id string, expiresAt time.Time) error {
	res, err := s.db.ExecContext(
		ctx,
		`UPDATE sessions SET expires_at = ?, updated_at = ? WHERE id = ?`,
		formatTime(expiresAt),
		formatTime(time.Now()),
		id,
	)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (s *Storage) DeleteSessionByToken(ctx context.Context, tokenHash string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE token_hash = ?`, tokenHash)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func requireAffected(res interface{ RowsAffected() (int64, error) }) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}
