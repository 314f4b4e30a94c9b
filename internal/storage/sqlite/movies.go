package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"watchlist/proj/internal/domain/filters"
	"watchlist/proj/internal/domain/models"
)

// movieColumns must match the scan order in scanMovie.
const movieColumns = "id, title, year, genre, rating, watched, notes, user_id, created_at"

func scanMovie(row scanner) (*models.Movie, error) {
	var (
		m         models.Movie
		year      sql.NullInt32
		genre     sql.NullString
		rating    sql.NullInt32
		notes     sql.NullString
		createdAt string
	)
	err := row.Scan(&m.ID, &m.Title, &year, &genre, &rating, &m.Watched, &notes, &m.UserID, &createdAt)
	if err != nil {
		return nil, err
	}
	if m.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if year.Valid {
		m.Year = &year.Int32
	}
	if genre.Valid {
		m.Genre = &genre.String
	}
	if rating.Valid {
		m.Rating = &rating.Int32
	}
	if notes.Valid {
		m.Notes = &notes.String
	}
	return &m, nil
}

func (s *Storage) queryMovie(ctx context.Context, query string, args ...any) (*models.Movie, error) {
	movie, err := scanMovie(s.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, mapErr(err)
	}
	return movie, nil
}

func (s *Storage) Get(ctx context.Context, id, ownerID string) (*models.Movie, error) {
	return s.queryMovie(
		ctx,
		`SELECT `+movieColumns+` FROM movies WHERE id = ? AND user_id = ?`,
		id, ownerID,
	)
}

func (s *Storage) Insert(ctx context.Context, movie *models.Movie) (*models.Movie, error) {
	return s.queryMovie(
		ctx,
		`INSERT INTO movies (id, title, year, genre, rating, watched, notes, user_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING `+movieColumns,
		movie.ID,
		movie.Title,
		nullable(movie.Year),
		nullable(movie.Genre),
		nullable(movie.Rating),
		movie.Watched,
		nullable(movie.Notes),
		movie.UserID,
		formatTime(movie.CreatedAt),
	)
}

func (s *Storage) List(ctx context.Context, ownerID string, f filters.MovieFilter) ([]models.Movie, error) {
	conds := []string{"user_id = ?"}
	args := []any{ownerID}
	if f.Year != nil {
		conds = append(conds, "year = ?")
		args = append(args, *f.Year)
	}
	if f.Genre != nil {
		conds = append(conds, "genre = ?")
		args = append(args, *f.Genre)
	}
	if f.MinRating != nil {
		conds = append(conds, "rating >= ?")
		args = append(args, *f.MinRating)
	}
	if f.Watched != nil {
		conds = append(conds, "watched = ?")
		args = append(args, *f.Watched)
	}
	query := `SELECT ` + movieColumns + ` FROM movies WHERE ` + strings.Join(conds, " AND ") +
		` ORDER BY created_at DESC, rowid DESC`
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	movies := make([]models.Movie, 0)
	for rows.Next() {
		movie, err := scanMovie(rows)
		if err != nil {
			return nil, err
		}
		movies = append(movies, *movie)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return movies, nil
}

func (s *Storage) Update(ctx context.Context, id, ownerID string, patch models.MoviePatch) (*models.Movie, error) {
	return s.queryMovie(
		ctx,
		`UPDATE movies SET
			title = COALESCE(?, title),
			year = COALESCE(?, year),
			genre = COALESCE(?, genre),
			rating = COALESCE(?, rating),
			watched = COALESCE(?, watched),
			notes = COALESCE(?, notes)
		WHERE id = ? AND user_id = ? RETURNING `+movieColumns,
		nullable(patch.Title),
		nullable(patch.Year),
		nullable(patch.Genre),
		nullable(patch.Rating),
		nullable(patch.Watched),
		nullable(patch.Notes),
		id,
		ownerID,
	)
}

func (s *Storage) ToggleWatched(ctx context.Context, id, ownerID string) (*models.Movie, error) {
	return s.queryMovie(
		ctx,
		`UPDATE movies SET watched = NOT watched WHERE id = ? AND user_id = ? RETURNING `+movieColumns,
		id, ownerID,
	)
}

func (s *Storage) Delete(ctx context.Context, id, ownerID string) (*models.Movie, error) {
	return s.queryMovie(
		ctx,
		`DELETE FROM movies WHERE id = ? AND user_id = ? RETURNING `+movieColumns,
		id, ownerID,
	)
}

func (s *Storage) Stats(ctx context.Context, ownerID string) (*models.MovieStats, error) {
	var (
		stats models.MovieStats
		avg   sql.NullFloat64
	)
	err := s.db.QueryRowContext(
		ctx,
		`SELECT COUNT(*), COALESCE(SUM(CASE WHEN watched THEN 1 ELSE 0 END), 0), AVG(rating)
		FROM movies WHERE user_id = ?`,
		ownerID,
	).Scan(&stats.Total, &stats.Watched, &avg)
	if err != nil {
		return nil, err
	}
	if avg.Valid {
		stats.AverageRating = &avg.Float64
	}
	return &stats, nil
}
