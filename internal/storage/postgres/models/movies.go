package models

import (
	"context"

	"watchlist/proj/internal/domain/filters"
	"watchlist/proj/internal/domain/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const movieColumns = "id, title, year, genre, rating, watched, notes, user_id, created_at"

type MovieModel struct {
	DB *pgxpool.Pool
}

func collectMovie(rows pgx.Rows) (*models.Movie, error) {
	movie, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[models.Movie])
	if err != nil {
		return nil, mapErr(err)
	}
	return &movie, nil
}

func (m *MovieModel) Get(ctx context.Context, id, ownerID string) (*models.Movie, error) {
	rows, _ := m.DB.Query(
		ctx,
		`SELECT `+movieColumns+` FROM movies WHERE id = $1 AND user_id = $2`,
		id,
		ownerID,
	)
	return collectMovie(rows)
}

func (m *MovieModel) Insert(ctx context.Context, movie *models.Movie) (*models.Movie, error) {
	rows, _ := m.DB.Query(
		ctx,
		`INSERT INTO movies (id, title, year, genre, rating, watched, notes, user_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING `+movieColumns,
		movie.ID,
		movie.Title,
		movie.Year,
		movie.Genre,
		movie.Rating,
		movie.Watched,
		movie.Notes,
		movie.UserID,
		movie.CreatedAt,
	)
	return collectMovie(rows)
}

func (m *MovieModel) List(ctx context.Context, ownerID string, f filters.MovieFilter) ([]models.Movie, error) {
	args := append([]any{ownerID}, f.Args()...)
	rows, _ := m.DB.Query(
		ctx,
		`SELECT `+movieColumns+` FROM movies
		WHERE user_id = $1
		AND ($2::int IS NULL OR year = $2)
		AND ($3::text IS NULL OR genre = $3)
		AND ($4::int IS NULL OR rating >= $4)
		AND ($5::bool IS NULL OR watched = $5)
		ORDER BY created_at DESC, id DESC`,
		args...,
	)
	movies, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.Movie])
	if err != nil {
		return nil, err
	}
	return movies, nil
}

// Update applies the non-nil fields of patch in a single statement scoped to the owner.
func (m *MovieModel) Update(ctx context.Context, id, ownerID string, patch models.MoviePatch) (*models.Movie, error) {
	rows, _ := m.DB.Query(
		ctx,
		`UPDATE movies SET
			title = COALESCE($3, title),
			year = COALESCE($4, year),
			genre = COALESCE($5, genre),
			rating = COALESCE($6, rating),
			watched = COALESCE($7, watched),
			notes = COALESCE($8, notes)
		WHERE id = $1 AND user_id = $2 RETURNING `+movieColumns,
		id,
		ownerID,
		patch.Title,
		patch.Year,
		patch.Genre,
		patch.Rating,
		patch.Watched,
		patch.Notes,
	)
	return collectMovie(rows)
}

func (m *MovieModel) ToggleWatched(ctx context.Context, id, ownerID string) (*models.Movie, error) {
	rows, _ := m.DB.Query(
		ctx,
		`UPDATE movies SET watched = NOT watched WHERE id = $1 AND user_id = $2 RETURNING `+movieColumns,
		id,
		ownerID,
	)
	return collectMovie(rows)
}

func (m *MovieModel) Delete(ctx context.Context, id, ownerID string) (*models.Movie, error) {
	rows, _ := m.DB.Query(
		ctx,
		`DELETE FROM movies WHERE id = $1 AND user_id = $2 RETURNING `+movieColumns,
		id,
		ownerID,
	)
	return collectMovie(rows)
}

// Stats computes all counters in one statement so they describe the same snapshot.
func (m *MovieModel) Stats(ctx context.Context, ownerID string) (*models.MovieStats, error) {
	var stats models.MovieStats
	err := m.DB.QueryRow(
		ctx,
		`SELECT count(*), count(*) FILTER (WHERE watched), avg(rating)::float8
		FROM movies WHERE user_id = $1`,
		ownerID,
	).Scan(&stats.Total, &stats.Watched, &stats.AverageRating)
	if err != nil {
		return nil, err
	}
	return &stats, nil
}
