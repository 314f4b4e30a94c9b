package models

import "watchlist/proj/internal/storage/postgres"

// Models bundles the table models. Their method sets do not overlap, so Models
// satisfies the movie, user and session storage contracts at once.
type Models struct {
	*MovieModel
	*UserModel
	*SessionModel
}

func New(db *postgres.PostgresDB) *Models {
	return &Models{
		MovieModel:   &MovieModel{db.Conn},
		UserModel:    &UserModel{db.Conn},
		SessionModel: &SessionModel{db.Conn},
	}
}
