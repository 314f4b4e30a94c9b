package models

import (
	"context"

	"watchlist/proj/internal/domain/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const userColumns = "id, name, email, password_hash, created_at, updated_at"

type UserModel struct {
	DB *pgxpool.Pool
}

func collectUser(rows pgx.Rows) (*models.User, error) {
	user, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[models.User])
	if err != nil {
		return nil, mapErr(err)
	}
	return &user, nil
}

func (m *UserModel) InsertUser(ctx context.Context, user *models.User) (*models.User, error) {
	rows, _ := m.DB.Query(
		ctx,
		`INSERT INTO users (id, name, email, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING `+userColumns,
		user.ID,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.CreatedAt,
		user.UpdatedAt,
	)
	return collectUser(rows)
}

func (m *UserModel) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	rows, _ := m.DB.Query(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	return collectUser(rows)
}

func (m *UserModel) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	rows, _ := m.DB.Query(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return collectUser(rows)
}
