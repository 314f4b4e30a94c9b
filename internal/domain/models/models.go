package models

import "time"

type Movie struct {
	ID        string    `json:"id" db:"id"`                // Opaque movie identifier, assigned on creation
	Title     string    `json:"title" db:"title"`          // Movie title
	Year      *int32    `json:"year" db:"year"`            // Release year
	Genre     *string   `json:"genre" db:"genre"`          // Free-form genre (i.e. Drama, Sci-Fi)
	Rating    *int32    `json:"rating" db:"rating"`        // Personal rating from 1 to 10
	Watched   bool      `json:"watched" db:"watched"`      // Whether the owner has already watched the movie
	Notes     *string   `json:"notes" db:"notes"`          // Owner's notes
	UserID    string    `json:"ownerId" db:"user_id"`      // Owner of the record, always taken from the session
	CreatedAt time.Time `json:"createdAt" db:"created_at"` // Timestamp for when the movie was added to the watchlist
}

// MoviePatch holds the fields of a partial update. Nil fields keep their stored value.
type MoviePatch struct {
	Title   *string
	Year    *int32
	Genre   *string
	Rating  *int32
	Watched *bool
	Notes   *string
}

func (p MoviePatch) IsEmpty() bool {
	return p.Title == nil && p.Year == nil && p.Genre == nil &&
		p.Rating == nil && p.Watched == nil && p.Notes == nil
}

type MovieStats struct {
	Total         int      `json:"total"`
	Watched       int      `json:"watched"`
	Unwatched     int      `json:"unwatched"`
	AverageRating *float64 `json:"averageRating"` // nil when the owner has no rated movies
}

type User struct {
	ID           string    `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Email        string    `json:"email" db:"email"`
	PasswordHash []byte    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

type Session struct {
	ID        string    `json:"id" db:"id"`
	TokenHash string    `json:"-" db:"token_hash"`
	UserID    string    `json:"userId" db:"user_id"`
	ExpiresAt time.Time `json:"expiresAt" db:"expires_at"`
	IPAddress string    `json:"ipAddress,omitempty" db:"ip_address"`
	UserAgent string    `json:"userAgent,omitempty" db:"user_agent"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

func (s *Session) IsExpired() bool {
	return !time.Now().Before(s.ExpiresAt)
}

// Identity is the resolved caller of a protected operation.
// It is produced by the auth service and never built from request input.
type Identity struct {
	UserID    string
	SessionID string
}

func (i Identity) IsAnonymous() bool {
	return i.UserID == ""
}

type ClientInfo struct {
	IPAddress string
	UserAgent string
}
