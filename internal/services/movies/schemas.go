package movies

import (
	"watchlist/proj/internal/domain/filters"
	"watchlist/proj/internal/domain/models"
)

type CreateMovieInput struct {
	Title   string  `json:"title" validate:"required,min=1,max=200"`
	Year    *int32  `json:"year" validate:"omitnil,gte=1800,lte=2100"`
	Genre   *string `json:"genre" validate:"omitnil,max=100"`
	Rating  *int32  `json:"rating" validate:"omitnil,min=1,max=10"`
	Watched *bool   `json:"watched"`
	Notes   *string `json:"notes" validate:"omitnil,max=1000"`
}

// UpdateMovieInput is a partial update: nil fields are left untouched.
type UpdateMovieInput struct {
	ID      string  `json:"id" validate:"required"`
	Title   *string `json:"title" validate:"omitnil,min=1,max=200"`
	Year    *int32  `json:"year" validate:"omitnil,gte=1800,lte=2100"`
	Genre   *string `json:"genre" validate:"omitnil,max=100"`
	Rating  *int32  `json:"rating" validate:"omitnil,min=1,max=10"`
	Watched *bool   `json:"watched"`
	Notes   *string `json:"notes" validate:"omitnil,max=1000"`
}

func (in UpdateMovieInput) Patch() models.MoviePatch {
	return models.MoviePatch{
		Title:   in.Title,
		Year:    in.Year,
		Genre:   in.Genre,
		Rating:  in.Rating,
		Watched: in.Watched,
		Notes:   in.Notes,
	}
}

type MovieIDInput struct {
	ID string `json:"id" validate:"required"`
}

// FilterInput is decoded from the query string. Omitted keys stay nil and do not constrain the listing.
type FilterInput struct {
	Year      *int32  `schema:"year" json:"year" validate:"omitnil,gte=1800,lte=2100"`
	Genre     *string `schema:"genre" json:"genre" validate:"omitnil,max=100"`
	MinRating *int32  `schema:"minRating" json:"minRating" validate:"omitnil,min=1,max=10"`
	Watched   *bool   `schema:"watched" json:"watched"`
}

func (in FilterInput) Filter() filters.MovieFilter {
	return filters.MovieFilter{
		Year:      in.Year,
		Genre:     in.Genre,
		MinRating: in.MinRating,
		Watched:   in.Watched,
	}
}
